package service

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/uniplanner-api/internal/curriculum"
	"github.com/noah-isme/uniplanner-api/internal/models"
	appErrors "github.com/noah-isme/uniplanner-api/pkg/errors"
)

type studentUserStore interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindStudyConfig(ctx context.Context, userID string) (*models.StudyConfig, error)
}

type studentRecordStore interface {
	ListCodes(ctx context.Context, userID string) (approved, inProgress []string, err error)
	ListCourses(ctx context.Context, userID string, status models.RecordStatus) ([]models.StudentCourse, error)
	Enroll(ctx context.Context, userID, code string, semester int) error
	Cancel(ctx context.Context, userID, code string) error
}

type taskStatsStore interface {
	Stats(ctx context.Context, userID string) (*models.StudentStats, error)
}

// StudentService exposes a student's profile and academic record.
type StudentService struct {
	users     studentUserStore
	records   studentRecordStore
	tasks     taskStatsStore
	catalog   catalogProvider
	policy    curriculum.Policy
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
}

func NewStudentService(users studentUserStore, records studentRecordStore, tasks taskStatsStore, catalog catalogProvider, policy curriculum.Policy, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &StudentService{
		users:     users,
		records:   records,
		tasks:     tasks,
		catalog:   catalog,
		policy:    policy.WithDefaults(),
		validator: validate,
		metrics:   metrics,
		logger:    logger,
	}
}

// Profile returns the user, aggregated statistics and study plan.
func (s *StudentService) Profile(ctx context.Context, userID string) (*models.Profile, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats, err := s.Stats(ctx, userID)
	if err != nil {
		return nil, err
	}
	cfg, err := s.users.FindStudyConfig(ctx, userID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load study config")
	}
	return &models.Profile{User: user.Info(), Stats: *stats, StudyConfig: cfg}, nil
}

// Stats combines task counters with course counts and credits.
func (s *StudentService) Stats(ctx context.Context, userID string) (*models.StudentStats, error) {
	stats, err := s.tasks.Stats(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load task statistics")
	}
	approved, inProgress, err := s.records.ListCodes(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load academic record")
	}
	index, err := s.catalog.Index(ctx)
	if err != nil {
		return nil, err
	}

	stats.ApprovedCourses = len(approved)
	stats.InProgressCourses = len(inProgress)
	stats.ApprovedCredits = creditsOf(index, approved)
	stats.InProgressCredits = creditsOf(index, inProgress)
	if stats.TotalTasks > 0 {
		stats.TaskCompletionPercent = math.Round(float64(stats.CompletedTasks)/float64(stats.TotalTasks)*1000) / 10
	}
	return stats, nil
}

func (s *StudentService) Approved(ctx context.Context, userID string) ([]models.StudentCourse, error) {
	return s.listCourses(ctx, userID, models.RecordApproved)
}

func (s *StudentService) InProgress(ctx context.Context, userID string) ([]models.StudentCourse, error) {
	return s.listCourses(ctx, userID, models.RecordInProgress)
}

// Enroll marks a course in progress if the eligibility rules allow it. The
// free-elective marker is stored under the next unused slot code.
func (s *StudentService) Enroll(ctx context.Context, userID string, req models.CourseCodeRequest) (*models.EnrollResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enroll payload")
	}
	code := strings.TrimSpace(req.Code)

	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	approved, inProgress, err := s.records.ListCodes(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load academic record")
	}
	index, err := s.catalog.Index(ctx)
	if err != nil {
		return nil, err
	}

	session, err := curriculum.RestoreSession(index, s.policy, curriculum.Snapshot{
		Phase:      curriculum.PhaseInProgress,
		Approved:   approved,
		InProgress: inProgress,
	})
	if err != nil {
		s.logger.Error("stored academic record is inconsistent", zap.String("user_id", userID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "academic record is inconsistent")
	}

	if code == s.policy.FreeElectiveCode {
		code = session.NextFreeElectiveSlot()
	} else if session.State().InProgress.Has(code) {
		return nil, appErrors.Clone(appErrors.ErrAlreadyEnrolled, "course "+code+" is already in progress")
	}

	if _, err := session.ToggleInProgress(code); err != nil {
		return nil, curriculumError(err, s.logger, s.metrics)
	}
	if err := s.records.Enroll(ctx, userID, code, user.CurrentSemester); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enroll course")
	}
	s.logger.Info("course enrolled", zap.String("user_id", userID), zap.String("code", code))
	return &models.EnrollResult{Code: code, Status: models.RecordInProgress}, nil
}

// Cancel withdraws an in-progress course.
func (s *StudentService) Cancel(ctx context.Context, userID string, req models.CourseCodeRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid cancel payload")
	}
	code := strings.TrimSpace(req.Code)
	if err := s.records.Cancel(ctx, userID, code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrEnrollmentAbsent, "course "+code+" is not in progress")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel course")
	}
	return nil
}

func (s *StudentService) listCourses(ctx context.Context, userID string, status models.RecordStatus) ([]models.StudentCourse, error) {
	courses, err := s.records.ListCourses(ctx, userID, status)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	return courses, nil
}

func (s *StudentService) findUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	return user, nil
}

func creditsOf(index *curriculum.Index, codes []string) int {
	total := 0
	for _, code := range codes {
		if c, err := index.ByCode(code); err == nil {
			total += c.Credits
		}
	}
	return total
}
