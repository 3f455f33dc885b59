package curriculum

type StatusKind string

const (
	StatusApproved   StatusKind = "approved"
	StatusInProgress StatusKind = "in_progress"
	StatusAvailable  StatusKind = "available"
	StatusBlocked    StatusKind = "blocked"
)

type BlockKind string

const (
	BlockInsufficientCredits  BlockKind = "insufficient_credits"
	BlockMissingPrerequisites BlockKind = "missing_prerequisites"
)

type CreditShortfall struct {
	Required int `json:"required"`
	Have     int `json:"have"`
}

// BlockReason explains a blocked status. Exactly one of the detail fields is
// set, matching Kind.
type BlockReason struct {
	Kind                 BlockKind        `json:"kind"`
	InsufficientCredits  *CreditShortfall `json:"insufficient_credits,omitempty"`
	MissingPrerequisites []string         `json:"missing_prerequisites,omitempty"`
}

type Status struct {
	Kind   StatusKind   `json:"status"`
	Reason *BlockReason `json:"reason,omitempty"`
}

func (s Status) Blocked() bool { return s.Kind == StatusBlocked }

// CourseStatus pairs a course with its evaluated status.
type CourseStatus struct {
	Course
	Status
}

// AccumulatedCredits sums the credits of approved codes. Codes unknown to
// the index count zero.
func AccumulatedCredits(state State, index *Index) int {
	total := 0
	for code := range state.Approved {
		if c, err := index.ByCode(code); err == nil {
			total += c.Credits
		}
	}
	return total
}

// Evaluate computes the status of course for state. Checks run in a fixed
// order: approved, in progress, required credits, prerequisites. A course
// short on both credits and prerequisites reports insufficient credits.
// Only direct prerequisites are inspected, so cyclic catalogs are harmless.
func Evaluate(course Course, state State, index *Index) Status {
	if state.Approved.Has(course.Code) {
		return Status{Kind: StatusApproved}
	}
	if state.InProgress.Has(course.Code) {
		return Status{Kind: StatusInProgress}
	}
	return evaluateOpen(course, state, AccumulatedCredits(state, index))
}

func evaluate(course Course, state State, credits int) Status {
	if state.Approved.Has(course.Code) {
		return Status{Kind: StatusApproved}
	}
	if state.InProgress.Has(course.Code) {
		return Status{Kind: StatusInProgress}
	}
	return evaluateOpen(course, state, credits)
}

func evaluateOpen(course Course, state State, credits int) Status {
	if course.RequiredCredits > credits {
		return Status{Kind: StatusBlocked, Reason: &BlockReason{
			Kind:                BlockInsufficientCredits,
			InsufficientCredits: &CreditShortfall{Required: course.RequiredCredits, Have: credits},
		}}
	}
	var missing []string
	for _, p := range course.PrerequisiteCodes {
		if !state.Approved.Has(p) {
			missing = append(missing, p)
		}
	}
	if len(missing) > 0 {
		return Status{Kind: StatusBlocked, Reason: &BlockReason{
			Kind:                 BlockMissingPrerequisites,
			MissingPrerequisites: missing,
		}}
	}
	return Status{Kind: StatusAvailable}
}

// EvaluateAll returns the status of every indexed course keyed by code.
func EvaluateAll(state State, index *Index) map[string]Status {
	credits := AccumulatedCredits(state, index)
	out := make(map[string]Status, index.Len())
	for _, c := range index.courses {
		out[c.Code] = evaluate(c, state, credits)
	}
	return out
}

// EvaluateSemester evaluates the courses of one semester in catalog order.
func EvaluateSemester(n int, state State, index *Index) []CourseStatus {
	credits := AccumulatedCredits(state, index)
	courses := index.BySemester(n)
	out := make([]CourseStatus, len(courses))
	for i, c := range courses {
		out[i] = CourseStatus{Course: c, Status: evaluate(c, state, credits)}
	}
	return out
}
