package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/uniplanner-api/internal/models"
	appErrors "github.com/noah-isme/uniplanner-api/pkg/errors"
)

const (
	defaultUpcomingDays = 90
	defaultEventColor   = "#3B82F6"
	defaultEventIcon    = "📅"
)

type calendarStore interface {
	ListBySemester(ctx context.Context, semester string) ([]models.CalendarEvent, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]models.CalendarEvent, error)
	Create(ctx context.Context, event *models.CalendarEvent) error
}

// CalendarService serves the institutional academic calendar.
type CalendarService struct {
	repo      calendarStore
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

func NewCalendarService(repo calendarStore, validate *validator.Validate, logger *zap.Logger) *CalendarService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CalendarService{repo: repo, validator: validate, logger: logger, now: time.Now}
}

// List returns the events of a semester, or the upcoming events within
// filter.Days (90 by default) when no semester is given.
func (s *CalendarService) List(ctx context.Context, filter models.CalendarFilter) ([]models.CalendarEvent, error) {
	var (
		events []models.CalendarEvent
		err    error
	)
	if semester := strings.TrimSpace(filter.Semester); semester != "" {
		events, err = s.repo.ListBySemester(ctx, semester)
	} else {
		days := filter.Days
		if days <= 0 {
			days = defaultUpcomingDays
		}
		now := s.now()
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		events, err = s.repo.ListBetween(ctx, today, today.AddDate(0, 0, days))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list calendar events")
	}
	return events, nil
}

func (s *CalendarService) Create(ctx context.Context, req models.CreateCalendarEventRequest) (*models.CalendarEvent, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid calendar event payload")
	}
	startsOn, _ := time.Parse("2006-01-02", req.StartsOn)
	event := &models.CalendarEvent{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		StartsOn:    startsOn,
		Type:        req.Type,
		Icon:        req.Icon,
		Color:       req.Color,
	}
	if req.EndsOn != "" {
		endsOn, _ := time.Parse("2006-01-02", req.EndsOn)
		if endsOn.Before(startsOn) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "ends_on must not be before starts_on")
		}
		event.EndsOn = &endsOn
	}
	if req.Semester != "" {
		semester := req.Semester
		event.Semester = &semester
	}
	if event.Icon == "" {
		event.Icon = defaultEventIcon
	}
	if event.Color == "" {
		event.Color = defaultEventColor
	}
	if err := s.repo.Create(ctx, event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create calendar event")
	}
	return event, nil
}
