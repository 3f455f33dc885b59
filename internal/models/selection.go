package models

import (
	"time"

	"github.com/noah-isme/uniplanner-api/internal/curriculum"
)

// SelectionSession is a stored selection workflow.
type SelectionSession struct {
	ID              string              `json:"id"`
	CurrentSemester int                 `json:"current_semester"`
	Snapshot        curriculum.Snapshot `json:"snapshot"`
	Finalized       bool                `json:"finalized"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

type StartSelectionRequest struct {
	CurrentSemester int  `json:"current_semester" validate:"omitempty,min=1,max=12"`
	Preselect       bool `json:"preselect"`
}

// SelectionView is the client-facing state of a session.
type SelectionView struct {
	ID                   string                    `json:"id"`
	Phase                curriculum.Phase          `json:"phase"`
	Finalized            bool                      `json:"finalized"`
	Approved             []string                  `json:"approved"`
	InProgress           []string                  `json:"in_progress"`
	FreeElectiveCode     string                    `json:"free_elective_code"`
	FreeElectiveCredits  int                       `json:"free_elective_credits"`
	FreeElectiveCap      int                       `json:"free_elective_cap"`
	NextFreeElectiveSlot string                    `json:"next_free_elective_slot"`
	Progress             curriculum.Progress       `json:"progress"`
	Semesters            []curriculum.SemesterView `json:"semesters"`
}

// ToggleResult reports the outcome of a toggle and the resulting view.
type ToggleResult struct {
	Code     string        `json:"code"`
	Selected bool          `json:"selected"`
	Session  SelectionView `json:"session"`
}

// SelectionOutcome is returned by finalize and skip. Payload is nil when
// skipping moved the session to its next phase.
type SelectionOutcome struct {
	Session SelectionView                 `json:"session"`
	Payload *curriculum.SubmissionPayload `json:"payload,omitempty"`
}
