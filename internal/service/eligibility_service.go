package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/uniplanner-api/internal/curriculum"
	"github.com/noah-isme/uniplanner-api/internal/models"
	appErrors "github.com/noah-isme/uniplanner-api/pkg/errors"
)

type catalogProvider interface {
	Index(ctx context.Context) (*curriculum.Index, error)
	Get(ctx context.Context, code string) (*models.Course, error)
}

type recordCodeStore interface {
	ListCodes(ctx context.Context, userID string) (approved, inProgress []string, err error)
}

// EligibilityService evaluates a student's stored record against the
// catalog, the "semáforo" view.
type EligibilityService struct {
	catalog catalogProvider
	records recordCodeStore
	metrics *MetricsService
	logger  *zap.Logger
}

func NewEligibilityService(catalog catalogProvider, records recordCodeStore, metrics *MetricsService, logger *zap.Logger) *EligibilityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EligibilityService{catalog: catalog, records: records, metrics: metrics, logger: logger}
}

// Map returns every catalog course grouped by semester with its status.
func (s *EligibilityService) Map(ctx context.Context, userID string) (*models.SemaforoView, error) {
	index, state, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &models.SemaforoView{
		Progress:  curriculum.Summarize(state, index),
		Semesters: curriculum.Overview(state, index),
	}, nil
}

// Course evaluates a single course for the student.
func (s *EligibilityService) Course(ctx context.Context, userID, code string) (*models.CourseEligibility, error) {
	course, err := s.catalog.Get(ctx, code)
	if err != nil {
		return nil, err
	}
	index, state, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	resolved, err := index.ByCode(course.Code)
	if err != nil {
		return nil, curriculumError(err, s.logger, s.metrics)
	}
	return &models.CourseEligibility{
		Course:             *course,
		Status:             curriculum.Evaluate(resolved, state, index),
		AccumulatedCredits: curriculum.AccumulatedCredits(state, index),
	}, nil
}

func (s *EligibilityService) load(ctx context.Context, userID string) (*curriculum.Index, curriculum.State, error) {
	index, err := s.catalog.Index(ctx)
	if err != nil {
		return nil, curriculum.State{}, err
	}
	approved, inProgress, err := s.records.ListCodes(ctx, userID)
	if err != nil {
		return nil, curriculum.State{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load academic record")
	}
	return index, curriculum.NewState(approved, inProgress), nil
}
