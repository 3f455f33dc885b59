package service

import (
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/uniplanner-api/internal/curriculum"
	appErrors "github.com/noah-isme/uniplanner-api/pkg/errors"
)

// curriculumError converts errors from the curriculum package into API
// errors. Phase errors are programming errors and are logged loudly.
func curriculumError(err error, logger *zap.Logger, metrics *MetricsService) error {
	if err == nil {
		return nil
	}
	if rej, ok := curriculum.AsRejection(err); ok {
		metrics.RecordRejection(rej.Kind)
		return rejectionError(rej)
	}
	var notFound *curriculum.NotFoundError
	if errors.As(err, &notFound) {
		return appErrors.Clone(appErrors.ErrCourseNotFound, "course "+notFound.Code+" not found").
			WithDetails(map[string]string{"code": notFound.Code})
	}
	if errors.Is(err, curriculum.ErrInvalidPhase) {
		logger.Error("selection phase violation", zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrInvalidPhase.Code, appErrors.ErrInvalidPhase.Status, err.Error())
	}
	if errors.Is(err, curriculum.ErrInvalidState) {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid selection state")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "curriculum evaluation failed")
}

func rejectionError(rej *curriculum.Rejection) error {
	switch rej.Kind {
	case curriculum.RejectCourseNotFound:
		return appErrors.Clone(appErrors.ErrCourseNotFound, "course "+rej.Code+" not found").
			WithDetails(rej)
	case curriculum.RejectFreeElectiveCap:
		return appErrors.Clone(appErrors.ErrFreeElectiveCap, rej.Error()).WithDetails(rej)
	case curriculum.RejectAlreadyApproved:
		return appErrors.Clone(appErrors.ErrAlreadyApproved, "course "+rej.Code+" is already approved").WithDetails(rej)
	default:
		return appErrors.Clone(appErrors.ErrCourseBlocked, rej.Error()).WithDetails(rej)
	}
}
