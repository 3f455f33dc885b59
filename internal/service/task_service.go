package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/uniplanner-api/internal/models"
	appErrors "github.com/noah-isme/uniplanner-api/pkg/errors"
)

const defaultUrgentDays = 3

type taskStore interface {
	List(ctx context.Context, filter models.TaskFilter) ([]models.Task, error)
	ListDueBefore(ctx context.Context, userID string, deadline time.Time) ([]models.Task, error)
	FindByID(ctx context.Context, userID, id string) (*models.Task, error)
	Create(ctx context.Context, task *models.Task) error
	Complete(ctx context.Context, userID, id string, percent int, at time.Time) error
	UpdateProgress(ctx context.Context, userID, id string, percent int) error
	Delete(ctx context.Context, userID, id string) error
}

// TaskService manages student tasks. Every operation is scoped to the
// owner; foreign tasks behave as missing.
type TaskService struct {
	repo      taskStore
	catalog   catalogProvider
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

func NewTaskService(repo taskStore, catalog catalogProvider, validate *validator.Validate, logger *zap.Logger) *TaskService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &TaskService{repo: repo, catalog: catalog, validator: validate, logger: logger, now: time.Now}
}

func (s *TaskService) List(ctx context.Context, userID string, pendingOnly bool) ([]models.Task, error) {
	tasks, err := s.repo.List(ctx, models.TaskFilter{UserID: userID, PendingOnly: pendingOnly})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list tasks")
	}
	return s.withDaysRemaining(tasks), nil
}

// Urgent returns pending tasks due within days, overdue ones included.
func (s *TaskService) Urgent(ctx context.Context, userID string, days int) ([]models.Task, error) {
	if days <= 0 {
		days = defaultUrgentDays
	}
	deadline := s.now().Add(time.Duration(days) * 24 * time.Hour)
	tasks, err := s.repo.ListDueBefore(ctx, userID, deadline)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list urgent tasks")
	}
	return s.withDaysRemaining(tasks), nil
}

func (s *TaskService) Create(ctx context.Context, userID string, req models.CreateTaskRequest) (*models.Task, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid task payload")
	}
	due, err := parseDueDate(req.DueDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "due_date must be YYYY-MM-DD, YYYY-MM-DD HH:MM:SS or RFC 3339")
	}
	course, err := s.catalog.Get(ctx, strings.TrimSpace(req.CourseCode))
	if err != nil {
		return nil, err
	}

	task := &models.Task{
		UserID:         userID,
		CourseCode:     course.Code,
		CourseName:     course.Name,
		Title:          strings.TrimSpace(req.Title),
		Description:    req.Description,
		Type:           req.Type,
		DueAt:          due,
		EstimatedHours: req.EstimatedHours,
		Difficulty:     req.Difficulty,
		Notes:          req.Notes,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.repo.Create(ctx, task); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create task")
	}
	task.DaysRemaining = task.DaysUntilDue(s.now())
	return task, nil
}

// Complete marks a task done with the given percentage, 100 by default.
func (s *TaskService) Complete(ctx context.Context, userID, id string, req models.CompleteTaskRequest) (*models.Task, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid completion payload")
	}
	percent := 100
	if req.Percent != nil {
		percent = *req.Percent
	}
	if err := s.repo.Complete(ctx, userID, id, percent, s.now().UTC()); err != nil {
		return nil, s.mapTaskError(err, "failed to complete task")
	}
	return s.get(ctx, userID, id)
}

func (s *TaskService) UpdateProgress(ctx context.Context, userID, id string, req models.TaskProgressRequest) (*models.Task, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid progress payload")
	}
	if err := s.repo.UpdateProgress(ctx, userID, id, req.Percent); err != nil {
		return nil, s.mapTaskError(err, "failed to update task progress")
	}
	return s.get(ctx, userID, id)
}

func (s *TaskService) Delete(ctx context.Context, userID, id string) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return s.mapTaskError(err, "failed to delete task")
	}
	return nil
}

func (s *TaskService) get(ctx context.Context, userID, id string) (*models.Task, error) {
	task, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, s.mapTaskError(err, "failed to load task")
	}
	task.DaysRemaining = task.DaysUntilDue(s.now())
	return task, nil
}

func (s *TaskService) mapTaskError(err error, message string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.ErrTaskNotFound
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

func (s *TaskService) withDaysRemaining(tasks []models.Task) []models.Task {
	now := s.now()
	for i := range tasks {
		tasks[i].DaysRemaining = tasks[i].DaysUntilDue(now)
	}
	return tasks
}

// parseDueDate accepts a bare date, which is due at the end of that day in
// local time.
func parseDueDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.ParseInLocation("2006-01-02", raw, time.Local); err == nil {
		return t.Add(23*time.Hour + 59*time.Minute + 59*time.Second), nil
	}
	if t, err := time.ParseInLocation("2006-01-02 15:04:05", raw, time.Local); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}
