package curriculum

import "fmt"

type Phase string

const (
	PhaseApproved   Phase = "approved"
	PhaseInProgress Phase = "in_progress"
)

func (p Phase) Valid() bool {
	return p == PhaseApproved || p == PhaseInProgress
}

const (
	DefaultFreeElectiveCode = "167396-1"
	DefaultFreeElectiveCap  = 19
	// maxPreselectSemester bounds preselection for students past the
	// nominal program length.
	maxPreselectSemester = 9
)

// Policy identifies the free-elective marker course and its credit cap.
type Policy struct {
	FreeElectiveCode string
	FreeElectiveCap  int
}

func DefaultPolicy() Policy {
	return Policy{FreeElectiveCode: DefaultFreeElectiveCode, FreeElectiveCap: DefaultFreeElectiveCap}
}

// WithDefaults fills the marker code and cap when unset.
func (p Policy) WithDefaults() Policy {
	if p.FreeElectiveCode == "" {
		p.FreeElectiveCode = DefaultFreeElectiveCode
	}
	if p.FreeElectiveCap <= 0 {
		p.FreeElectiveCap = DefaultFreeElectiveCap
	}
	return p
}

// IsFreeElective reports whether code is the marker or one of its slots.
func (p Policy) IsFreeElective(code string) bool {
	return BaseCode(code) == p.FreeElectiveCode
}

// SubmissionPayload is the final selection handed to persistence.
type SubmissionPayload struct {
	Approved   []string `json:"approved"`
	InProgress []string `json:"in_progress"`
}

// Snapshot is the serialisable form of a Session.
type Snapshot struct {
	Phase               Phase    `json:"phase"`
	Approved            []string `json:"approved"`
	InProgress          []string `json:"in_progress"`
	FreeElectiveCredits int      `json:"free_elective_credits"`
}

// Session is the two-phase selection workflow. Approved courses are picked
// first, then Advance moves to the in-progress phase for good.
//
// Approved and in-progress sets never share a code, and the free-elective
// accumulator always equals the credits of marker codes held in progress.
type Session struct {
	index       *Index
	policy      Policy
	phase       Phase
	approved    CodeSet
	inProgress  CodeSet
	freeCredits int
}

func NewSession(index *Index, policy Policy) *Session {
	return &Session{
		index:      index,
		policy:     policy.WithDefaults(),
		phase:      PhaseApproved,
		approved:   CodeSet{},
		inProgress: CodeSet{},
	}
}

func (s *Session) Phase() Phase             { return s.phase }
func (s *Session) Policy() Policy           { return s.policy }
func (s *Session) FreeElectiveCredits() int { return s.freeCredits }

// State returns a copy of the selected sets.
func (s *Session) State() State {
	return State{Approved: s.approved.Clone(), InProgress: s.inProgress.Clone()}
}

func (s *Session) view() State {
	return State{Approved: s.approved, InProgress: s.inProgress}
}

func (s *Session) requirePhase(op string, p Phase) error {
	if s.phase != p {
		return &PhaseError{Op: op, Phase: s.phase}
	}
	return nil
}

func (s *Session) resolve(code string) (Course, *Rejection) {
	c, err := s.index.ByCode(code)
	if err != nil {
		return Course{}, &Rejection{Code: code, Kind: RejectCourseNotFound}
	}
	return c, nil
}

// ToggleApproved flips code in the approved set and reports whether it is
// now selected. No credit cap applies in this phase.
func (s *Session) ToggleApproved(code string) (bool, error) {
	if err := s.requirePhase("toggle_approved", PhaseApproved); err != nil {
		return false, err
	}
	if s.approved.Has(code) {
		s.approved.Remove(code)
		return false, nil
	}
	if _, rej := s.resolve(code); rej != nil {
		return false, rej
	}
	s.approved.Add(code)
	return true, nil
}

// ToggleInProgress flips code in the in-progress set. Deselecting always
// succeeds. Selecting is refused for approved or blocked courses and for
// free-elective slots that would push the accumulator past the cap.
func (s *Session) ToggleInProgress(code string) (bool, error) {
	if err := s.requirePhase("toggle_in_progress", PhaseInProgress); err != nil {
		return false, err
	}
	course, rej := s.resolve(code)
	if s.inProgress.Has(code) {
		s.inProgress.Remove(code)
		if rej == nil && s.policy.IsFreeElective(code) {
			s.freeCredits -= course.Credits
		}
		return false, nil
	}
	if rej != nil {
		return false, rej
	}

	status := Evaluate(course, s.view(), s.index)
	switch status.Kind {
	case StatusApproved:
		return false, &Rejection{Code: code, Kind: RejectAlreadyApproved}
	case StatusBlocked:
		return false, rejectionFromBlock(code, status.Reason)
	}

	if s.policy.IsFreeElective(code) {
		total := s.freeCredits + course.Credits
		if total > s.policy.FreeElectiveCap {
			return false, &Rejection{
				Code:        code,
				Kind:        RejectFreeElectiveCap,
				CapExceeded: &CapExceeded{Current: s.freeCredits, Cap: s.policy.FreeElectiveCap},
			}
		}
		s.freeCredits = total
	}
	s.inProgress.Add(code)
	return true, nil
}

// NextFreeElectiveSlot returns the lowest free-elective slot code not held
// in either set.
func (s *Session) NextFreeElectiveSlot() string {
	for n := 1; ; n++ {
		code := SlotCode(s.policy.FreeElectiveCode, n)
		if !s.approved.Has(code) && !s.inProgress.Has(code) {
			return code
		}
	}
}

// Advance moves from the approved phase to the in-progress phase.
func (s *Session) Advance() error {
	if err := s.requirePhase("advance", PhaseApproved); err != nil {
		return err
	}
	s.phase = PhaseInProgress
	return nil
}

// Finalize returns the current selection without changing it.
func (s *Session) Finalize() (SubmissionPayload, error) {
	if err := s.requirePhase("finalize", PhaseInProgress); err != nil {
		return SubmissionPayload{}, err
	}
	return s.payload(), nil
}

// Skip empties the current phase's set. In the approved phase it then
// advances and returns nil; in the in-progress phase it returns the final
// payload.
func (s *Session) Skip() (*SubmissionPayload, error) {
	switch s.phase {
	case PhaseApproved:
		s.approved = CodeSet{}
		s.phase = PhaseInProgress
		return nil, nil
	case PhaseInProgress:
		s.inProgress = CodeSet{}
		s.freeCredits = 0
		p := s.payload()
		return &p, nil
	}
	return nil, &PhaseError{Op: "skip", Phase: s.phase}
}

// Preselect marks every course of semesters before currentSemester as
// approved, except the free-elective marker. Past semester 10 only the
// first nine semesters are marked. It returns the number of codes added.
func (s *Session) Preselect(currentSemester int) (int, error) {
	if err := s.requirePhase("preselect", PhaseApproved); err != nil {
		return 0, err
	}
	upTo := currentSemester - 1
	if currentSemester > 10 {
		upTo = maxPreselectSemester
	}
	added := 0
	for n := 1; n <= upTo; n++ {
		for _, c := range s.index.BySemester(n) {
			if s.policy.IsFreeElective(c.Code) || s.approved.Has(c.Code) {
				continue
			}
			s.approved.Add(c.Code)
			added++
		}
	}
	return added, nil
}

// Evaluate returns the status of code under the session's current state.
func (s *Session) Evaluate(code string) (Status, error) {
	c, err := s.index.ByCode(code)
	if err != nil {
		return Status{}, err
	}
	return Evaluate(c, s.view(), s.index), nil
}

func (s *Session) payload() SubmissionPayload {
	return SubmissionPayload{Approved: s.approved.Sorted(), InProgress: s.inProgress.Sorted()}
}

func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		Phase:               s.phase,
		Approved:            s.approved.Sorted(),
		InProgress:          s.inProgress.Sorted(),
		FreeElectiveCredits: s.freeCredits,
	}
}

// RestoreSession rebuilds a session from snap. The free-elective
// accumulator is recomputed from the in-progress codes. A snapshot that
// breaks set disjointness or the cap, or holds in-progress codes while still
// in the approved phase, is rejected with ErrInvalidState.
func RestoreSession(index *Index, policy Policy, snap Snapshot) (*Session, error) {
	if !snap.Phase.Valid() {
		return nil, fmt.Errorf("%w: unknown phase %q", ErrInvalidState, snap.Phase)
	}
	if snap.Phase == PhaseApproved && len(snap.InProgress) > 0 {
		return nil, fmt.Errorf("%w: in-progress codes before the in-progress phase", ErrInvalidState)
	}
	s := NewSession(index, policy)
	s.phase = snap.Phase
	s.approved = NewCodeSet(snap.Approved...)
	s.inProgress = NewCodeSet(snap.InProgress...)

	for code := range s.inProgress {
		if s.approved.Has(code) {
			return nil, fmt.Errorf("%w: %s is both approved and in progress", ErrInvalidState, code)
		}
		if !s.policy.IsFreeElective(code) {
			continue
		}
		if c, err := index.ByCode(code); err == nil {
			s.freeCredits += c.Credits
		}
	}
	if s.freeCredits > s.policy.FreeElectiveCap {
		return nil, fmt.Errorf("%w: free elective credits %d exceed cap %d", ErrInvalidState, s.freeCredits, s.policy.FreeElectiveCap)
	}
	return s, nil
}

// Replay runs payload through a fresh session: every approved code is
// toggled on, then every in-progress code. Repeated free-elective codes
// (marker or slot) are assigned to consecutive slots; other duplicates are
// ignored. The first rejection stops the replay.
func Replay(index *Index, policy Policy, payload SubmissionPayload) (*Session, error) {
	s := NewSession(index, policy)
	for _, code := range dedupe(s, payload.Approved) {
		if _, err := s.ToggleApproved(code); err != nil {
			return nil, err
		}
	}
	if err := s.Advance(); err != nil {
		return nil, err
	}
	for _, code := range dedupe(s, payload.InProgress) {
		if _, err := s.ToggleInProgress(code); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// dedupe drops repeated codes and numbers free-elective entries onto slots
// not yet held by the session.
func dedupe(s *Session, codes []string) []string {
	seen := make(map[string]struct{}, len(codes))
	out := make([]string, 0, len(codes))
	slot := 0
	for _, code := range codes {
		if s.policy.IsFreeElective(code) {
			for {
				slot++
				candidate := SlotCode(s.policy.FreeElectiveCode, slot)
				if !s.approved.Has(candidate) && !s.inProgress.Has(candidate) {
					out = append(out, candidate)
					break
				}
			}
			continue
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}
	return out
}
