package curriculum

import (
	"errors"
	"fmt"
)

var (
	ErrCourseNotFound = errors.New("course not found")
	ErrInvalidCourse  = errors.New("invalid course")
	ErrInvalidPhase   = errors.New("invalid phase operation")
	ErrInvalidState   = errors.New("invalid session state")
)

// NotFoundError reports a code absent from the index.
type NotFoundError struct {
	Code string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("course %q not found", e.Code)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrCourseNotFound
}

// PhaseError is returned when an operation is invoked in the wrong phase.
// It indicates a caller bug rather than a user-facing outcome.
type PhaseError struct {
	Op    string
	Phase Phase
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s not allowed in phase %s", e.Op, e.Phase)
}

func (e *PhaseError) Unwrap() error { return ErrInvalidPhase }

type RejectionKind string

const (
	RejectInsufficientCredits  RejectionKind = "insufficient_credits"
	RejectMissingPrerequisites RejectionKind = "missing_prerequisites"
	RejectFreeElectiveCap      RejectionKind = "free_elective_cap_exceeded"
	RejectAlreadyApproved      RejectionKind = "already_approved"
	RejectCourseNotFound       RejectionKind = "course_not_found"
)

// CapExceeded carries the accumulator value at the time of rejection.
type CapExceeded struct {
	Current int `json:"current"`
	Cap     int `json:"cap"`
}

// Rejection is the structured outcome of a refused toggle. Session state is
// unchanged whenever one is returned.
type Rejection struct {
	Code        string        `json:"code"`
	Kind        RejectionKind `json:"kind"`
	Block       *BlockReason  `json:"block,omitempty"`
	CapExceeded *CapExceeded  `json:"cap_exceeded,omitempty"`
}

func (r *Rejection) Error() string {
	switch r.Kind {
	case RejectFreeElectiveCap:
		if r.CapExceeded != nil {
			return fmt.Sprintf("%s: free elective credits %d would exceed cap %d", r.Code, r.CapExceeded.Current, r.CapExceeded.Cap)
		}
	case RejectInsufficientCredits:
		if r.Block != nil && r.Block.InsufficientCredits != nil {
			return fmt.Sprintf("%s: requires %d credits, have %d", r.Code, r.Block.InsufficientCredits.Required, r.Block.InsufficientCredits.Have)
		}
	case RejectMissingPrerequisites:
		if r.Block != nil {
			return fmt.Sprintf("%s: missing prerequisites %v", r.Code, r.Block.MissingPrerequisites)
		}
	}
	return fmt.Sprintf("%s: %s", r.Code, r.Kind)
}

// Is lets errors.Is(err, ErrCourseNotFound) see not-found rejections.
func (r *Rejection) Is(target error) bool {
	return r.Kind == RejectCourseNotFound && target == ErrCourseNotFound
}

// AsRejection unwraps err into a *Rejection.
func AsRejection(err error) (*Rejection, bool) {
	var r *Rejection
	if errors.As(err, &r) {
		return r, true
	}
	return nil, false
}

func rejectionFromBlock(code string, reason *BlockReason) *Rejection {
	kind := RejectMissingPrerequisites
	if reason.Kind == BlockInsufficientCredits {
		kind = RejectInsufficientCredits
	}
	return &Rejection{Code: code, Kind: kind, Block: reason}
}
