package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/noah-isme/uniplanner-api/internal/curriculum"
	appErrors "github.com/noah-isme/uniplanner-api/pkg/errors"
)

func TestCurriculumErrorMapping(t *testing.T) {
	logger := zap.NewNop()
	cases := []struct {
		name string
		err  error
		code string
	}{
		{"cap", &curriculum.Rejection{Code: "X#7", Kind: curriculum.RejectFreeElectiveCap, CapExceeded: &curriculum.CapExceeded{Current: 18, Cap: 19}}, appErrors.ErrFreeElectiveCap.Code},
		{"credits", &curriculum.Rejection{Code: "C1", Kind: curriculum.RejectInsufficientCredits}, appErrors.ErrCourseBlocked.Code},
		{"prereqs", &curriculum.Rejection{Code: "B1", Kind: curriculum.RejectMissingPrerequisites}, appErrors.ErrCourseBlocked.Code},
		{"approved", &curriculum.Rejection{Code: "A1", Kind: curriculum.RejectAlreadyApproved}, appErrors.ErrAlreadyApproved.Code},
		{"rejected unknown", &curriculum.Rejection{Code: "Q", Kind: curriculum.RejectCourseNotFound}, appErrors.ErrCourseNotFound.Code},
		{"not found", &curriculum.NotFoundError{Code: "Q"}, appErrors.ErrCourseNotFound.Code},
		{"phase", &curriculum.PhaseError{Op: "advance", Phase: curriculum.PhaseInProgress}, appErrors.ErrInvalidPhase.Code},
		{"state", fmt.Errorf("%w: broken", curriculum.ErrInvalidState), appErrors.ErrValidation.Code},
		{"other", errors.New("boom"), appErrors.ErrInternal.Code},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := curriculumError(tc.err, logger, nil)
			requireAppErrorCode(t, err, tc.code)
		})
	}
	assert.NoError(t, curriculumError(nil, logger, nil))
}

func TestCurriculumErrorCountsRejections(t *testing.T) {
	metrics := NewMetricsService()
	_ = curriculumError(&curriculum.Rejection{Code: "C1", Kind: curriculum.RejectInsufficientCredits}, zap.NewNop(), metrics)
	_ = curriculumError(&curriculum.Rejection{Code: "C1", Kind: curriculum.RejectInsufficientCredits}, zap.NewNop(), metrics)

	assert.Equal(t, uint64(2), metrics.Snapshot().SelectionRejections)
}
