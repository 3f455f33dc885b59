package curriculum

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const marker = "FE"

func testPolicy() Policy {
	return Policy{FreeElectiveCode: marker, FreeElectiveCap: 19}
}

func inProgressSession(t *testing.T, approved ...string) *Session {
	t.Helper()
	s := NewSession(Build(sampleCatalog(), marker), testPolicy())
	for _, code := range approved {
		_, err := s.ToggleApproved(code)
		require.NoError(t, err)
	}
	require.NoError(t, s.Advance())
	return s
}

func requireRejection(t *testing.T, err error, kind RejectionKind) *Rejection {
	t.Helper()
	rej, ok := AsRejection(err)
	require.True(t, ok, "expected rejection, got %v", err)
	assert.Equal(t, kind, rej.Kind)
	return rej
}

func TestNewSessionDefaults(t *testing.T) {
	s := NewSession(Build(nil), Policy{})
	assert.Equal(t, PhaseApproved, s.Phase())
	assert.Equal(t, DefaultPolicy(), s.Policy())
	assert.Equal(t, 0, s.FreeElectiveCredits())
}

func TestToggleApprovedIsIdempotentPair(t *testing.T) {
	s := NewSession(Build(sampleCatalog(), marker), testPolicy())

	on, err := s.ToggleApproved("A")
	require.NoError(t, err)
	assert.True(t, on)

	off, err := s.ToggleApproved("A")
	require.NoError(t, err)
	assert.False(t, off)
	assert.Empty(t, s.State().Approved)
}

func TestToggleApprovedUnknownCode(t *testing.T) {
	s := NewSession(Build(sampleCatalog(), marker), testPolicy())
	_, err := s.ToggleApproved("ZZ")
	requireRejection(t, err, RejectCourseNotFound)
	assert.ErrorIs(t, err, ErrCourseNotFound)

	_, err = s.ToggleApproved("A#2")
	requireRejection(t, err, RejectCourseNotFound)

	_, err = s.Evaluate("A#2")
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestRemovingApprovedDowngradesDependent(t *testing.T) {
	s := NewSession(Build(sampleCatalog(), marker), testPolicy())
	_, err := s.ToggleApproved("A")
	require.NoError(t, err)

	st, err := s.Evaluate("B")
	require.NoError(t, err)
	assert.Equal(t, StatusAvailable, st.Kind)

	_, err = s.ToggleApproved("A")
	require.NoError(t, err)

	st, err = s.Evaluate("B")
	require.NoError(t, err)
	assert.Equal(t, StatusBlocked, st.Kind)
	assert.Equal(t, BlockInsufficientCredits, st.Reason.Kind)
}

func TestPhaseGuards(t *testing.T) {
	s := NewSession(Build(sampleCatalog(), marker), testPolicy())

	_, err := s.ToggleInProgress("A")
	assert.ErrorIs(t, err, ErrInvalidPhase)
	_, err = s.Finalize()
	assert.ErrorIs(t, err, ErrInvalidPhase)

	require.NoError(t, s.Advance())

	_, err = s.ToggleApproved("A")
	assert.ErrorIs(t, err, ErrInvalidPhase)
	var pe *PhaseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, PhaseInProgress, pe.Phase)

	assert.ErrorIs(t, s.Advance(), ErrInvalidPhase)
	_, err = s.Preselect(3)
	assert.ErrorIs(t, err, ErrInvalidPhase)
}

func TestAdvanceWithNothingApproved(t *testing.T) {
	s := inProgressSession(t)
	payload, err := s.Finalize()
	require.NoError(t, err)
	assert.Empty(t, payload.Approved)
	assert.Empty(t, payload.InProgress)
}

func TestToggleInProgressRejectsBlocked(t *testing.T) {
	s := inProgressSession(t)

	_, err := s.ToggleInProgress("B")
	rej := requireRejection(t, err, RejectInsufficientCredits)
	require.NotNil(t, rej.Block)
	assert.Equal(t, 3, rej.Block.InsufficientCredits.Required)
	assert.Empty(t, s.State().InProgress)
}

func TestToggleInProgressRejectsApproved(t *testing.T) {
	s := inProgressSession(t, "A")
	_, err := s.ToggleInProgress("A")
	requireRejection(t, err, RejectAlreadyApproved)

	payload, err := s.Finalize()
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, payload.Approved)
	assert.Empty(t, payload.InProgress)
}

func TestDeselectAlwaysAllowed(t *testing.T) {
	idx := Build(sampleCatalog(), marker)
	s, err := RestoreSession(idx, testPolicy(), Snapshot{Phase: PhaseInProgress, InProgress: []string{"B"}})
	require.NoError(t, err)

	// B is blocked with nothing approved but was already selected.
	on, err := s.ToggleInProgress("B")
	require.NoError(t, err)
	assert.False(t, on)
	assert.Empty(t, s.State().InProgress)
}

func TestFreeElectiveCap(t *testing.T) {
	s := inProgressSession(t)

	for i := 0; i < 6; i++ {
		on, err := s.ToggleInProgress(s.NextFreeElectiveSlot())
		require.NoError(t, err)
		require.True(t, on)
		assert.LessOrEqual(t, s.FreeElectiveCredits(), 19)
	}
	assert.Equal(t, 18, s.FreeElectiveCredits())

	next := s.NextFreeElectiveSlot()
	assert.Equal(t, "FE#7", next)
	_, err := s.ToggleInProgress(next)
	rej := requireRejection(t, err, RejectFreeElectiveCap)
	assert.Equal(t, &CapExceeded{Current: 18, Cap: 19}, rej.CapExceeded)
	assert.Equal(t, 18, s.FreeElectiveCredits())
	assert.Len(t, s.State().InProgress, 6)
}

func TestFreeElectiveAccumulatorMatchesSelection(t *testing.T) {
	s := inProgressSession(t)
	for i := 0; i < 4; i++ {
		_, err := s.ToggleInProgress(s.NextFreeElectiveSlot())
		require.NoError(t, err)
	}
	assert.Equal(t, 12, s.FreeElectiveCredits())

	_, err := s.ToggleInProgress("FE#2")
	require.NoError(t, err)
	assert.Equal(t, 9, s.FreeElectiveCredits())
	assert.Equal(t, "FE#2", s.NextFreeElectiveSlot())

	_, err = s.ToggleInProgress("FE#2")
	require.NoError(t, err)
	assert.Equal(t, 12, s.FreeElectiveCredits())

	sum := 0
	for code := range s.State().InProgress {
		if s.Policy().IsFreeElective(code) {
			sum += 3
		}
	}
	assert.Equal(t, sum, s.FreeElectiveCredits())
}

func TestToggleInProgressTwiceRestoresState(t *testing.T) {
	s := inProgressSession(t, "A")
	before := s.Snapshot()

	for _, code := range []string{"B", "FE"} {
		_, err := s.ToggleInProgress(code)
		require.NoError(t, err)
		_, err = s.ToggleInProgress(code)
		require.NoError(t, err)
		assert.Equal(t, before, s.Snapshot())
	}
}

func TestSkipApprovedPhaseClearsAndAdvances(t *testing.T) {
	s := NewSession(Build(sampleCatalog(), marker), testPolicy())
	_, err := s.ToggleApproved("A")
	require.NoError(t, err)

	payload, err := s.Skip()
	require.NoError(t, err)
	assert.Nil(t, payload)
	assert.Equal(t, PhaseInProgress, s.Phase())
	assert.Empty(t, s.State().Approved)
}

func TestSkipInProgressPhaseReturnsPayload(t *testing.T) {
	s := inProgressSession(t, "A")
	_, err := s.ToggleInProgress("B")
	require.NoError(t, err)
	_, err = s.ToggleInProgress("FE")
	require.NoError(t, err)

	payload, err := s.Skip()
	require.NoError(t, err)
	require.NotNil(t, payload)
	assert.Equal(t, []string{"A"}, payload.Approved)
	assert.Empty(t, payload.InProgress)
	assert.Equal(t, 0, s.FreeElectiveCredits())
}

func TestFinalizeDoesNotMutate(t *testing.T) {
	s := inProgressSession(t, "A")
	_, err := s.ToggleInProgress("C")
	require.NoError(t, err)

	first, err := s.Finalize()
	require.NoError(t, err)
	second, err := s.Finalize()
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, SubmissionPayload{Approved: []string{"A"}, InProgress: []string{"C"}}, first)
}

func TestPreselect(t *testing.T) {
	catalog := []Course{
		{Code: "S1", Credits: 3, Semester: 1},
		{Code: "S2", Credits: 3, Semester: 2},
		{Code: "FE", Credits: 3, Semester: 2},
		{Code: "S3", Credits: 3, Semester: 3},
		{Code: "S9", Credits: 3, Semester: 9},
		{Code: "S10", Credits: 3, Semester: 10},
	}

	s := NewSession(Build(catalog), testPolicy())
	added, err := s.Preselect(3)
	require.NoError(t, err)
	assert.Equal(t, 2, added)
	assert.Equal(t, []string{"S1", "S2"}, s.State().Approved.Sorted())

	s = NewSession(Build(catalog), testPolicy())
	_, err = s.Preselect(12)
	require.NoError(t, err)
	assert.Equal(t, []string{"S1", "S2", "S3", "S9"}, s.State().Approved.Sorted())

	s = NewSession(Build(catalog), testPolicy())
	added, err = s.Preselect(1)
	require.NoError(t, err)
	assert.Zero(t, added)
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	idx := Build(sampleCatalog(), marker)
	s := inProgressSession(t, "A")
	_, err := s.ToggleInProgress("FE")
	require.NoError(t, err)
	_, err = s.ToggleInProgress("FE#2")
	require.NoError(t, err)

	restored, err := RestoreSession(idx, testPolicy(), s.Snapshot())
	require.NoError(t, err)
	assert.Equal(t, s.Snapshot(), restored.Snapshot())
	assert.Equal(t, 6, restored.FreeElectiveCredits())
}

func TestRestoreRejectsInvalidSnapshots(t *testing.T) {
	idx := Build(sampleCatalog(), marker)

	_, err := RestoreSession(idx, testPolicy(), Snapshot{Phase: "done"})
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = RestoreSession(idx, testPolicy(), Snapshot{Phase: PhaseInProgress, Approved: []string{"A"}, InProgress: []string{"A"}})
	assert.ErrorIs(t, err, ErrInvalidState)

	slots := []string{"FE", "FE#2", "FE#3", "FE#4", "FE#5", "FE#6", "FE#7"}
	_, err = RestoreSession(idx, testPolicy(), Snapshot{Phase: PhaseInProgress, InProgress: slots})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestRestoreKeepsApprovedPhaseFreeOfInProgress(t *testing.T) {
	idx := Build(sampleCatalog(), marker)

	_, err := RestoreSession(idx, testPolicy(), Snapshot{Phase: PhaseApproved, InProgress: []string{"A"}})
	require.ErrorIs(t, err, ErrInvalidState)

	s, err := RestoreSession(idx, testPolicy(), Snapshot{Phase: PhaseApproved, Approved: []string{"C"}})
	require.NoError(t, err)
	on, err := s.ToggleApproved("A")
	require.NoError(t, err)
	assert.True(t, on)
	assert.Empty(t, s.State().InProgress)
}

func TestReplayAssignsSlotsAndEnforcesRules(t *testing.T) {
	idx := Build(sampleCatalog(), marker)

	s, err := Replay(idx, testPolicy(), SubmissionPayload{
		Approved:   []string{"A", "A", "FE"},
		InProgress: []string{"B", "FE", "FE", "B"},
	})
	require.NoError(t, err)
	payload, err := s.Finalize()
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "FE"}, payload.Approved)
	assert.Equal(t, []string{"B", "FE#2", "FE#3"}, payload.InProgress)
	assert.Equal(t, 6, s.FreeElectiveCredits())

	_, err = Replay(idx, testPolicy(), SubmissionPayload{InProgress: []string{"B"}})
	requireRejection(t, err, RejectInsufficientCredits)

	_, err = Replay(idx, testPolicy(), SubmissionPayload{InProgress: []string{"FE", "FE", "FE", "FE", "FE", "FE", "FE"}})
	requireRejection(t, err, RejectFreeElectiveCap)

	_, err = Replay(idx, testPolicy(), SubmissionPayload{Approved: []string{"nope"}})
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestRejectionMessages(t *testing.T) {
	rej := &Rejection{Code: "FE#7", Kind: RejectFreeElectiveCap, CapExceeded: &CapExceeded{Current: 18, Cap: 19}}
	assert.Contains(t, rej.Error(), "cap 19")

	rej = &Rejection{Code: "X", Kind: RejectAlreadyApproved}
	assert.Equal(t, "X: already_approved", rej.Error())
	assert.False(t, errors.Is(rej, ErrCourseNotFound))
}
