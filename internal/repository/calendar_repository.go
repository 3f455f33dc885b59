package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uniplanner-api/internal/models"
)

const calendarColumns = `id, name, description, starts_on, ends_on, type, semester, icon, color`

// CalendarRepository persists institutional calendar events.
type CalendarRepository struct {
	db *sqlx.DB
}

func NewCalendarRepository(db *sqlx.DB) *CalendarRepository {
	return &CalendarRepository{db: db}
}

// ListBySemester returns events of a semester plus events with no
// semester, in date order.
func (r *CalendarRepository) ListBySemester(ctx context.Context, semester string) ([]models.CalendarEvent, error) {
	const query = `SELECT ` + calendarColumns + ` FROM calendar_events WHERE semester = $1 OR semester IS NULL ORDER BY starts_on ASC, name ASC`
	var events []models.CalendarEvent
	if err := r.db.SelectContext(ctx, &events, query, semester); err != nil {
		return nil, fmt.Errorf("list calendar events by semester: %w", err)
	}
	return events, nil
}

// ListBetween returns events starting within [from, to].
func (r *CalendarRepository) ListBetween(ctx context.Context, from, to time.Time) ([]models.CalendarEvent, error) {
	const query = `SELECT ` + calendarColumns + ` FROM calendar_events WHERE starts_on >= $1 AND starts_on <= $2 ORDER BY starts_on ASC, name ASC`
	var events []models.CalendarEvent
	if err := r.db.SelectContext(ctx, &events, query, from, to); err != nil {
		return nil, fmt.Errorf("list calendar events between: %w", err)
	}
	return events, nil
}

func (r *CalendarRepository) Create(ctx context.Context, event *models.CalendarEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	const query = `INSERT INTO calendar_events (` + calendarColumns + `) VALUES (:id, :name, :description, :starts_on, :ends_on, :type, :semester, :icon, :color)`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("create calendar event: %w", err)
	}
	return nil
}

// Seed inserts events that are not already present by name and start date.
// It returns how many rows were added.
func (r *CalendarRepository) Seed(ctx context.Context, events []models.CalendarEvent) (int, error) {
	const query = `INSERT INTO calendar_events (` + calendarColumns + `)
SELECT :id, :name, :description, :starts_on, :ends_on, :type, :semester, :icon, :color
WHERE NOT EXISTS (SELECT 1 FROM calendar_events WHERE name = :name AND starts_on = :starts_on)`
	inserted := 0
	for i := range events {
		if events[i].ID == "" {
			events[i].ID = uuid.NewString()
		}
		res, err := r.db.NamedExecContext(ctx, query, events[i])
		if err != nil {
			return inserted, fmt.Errorf("seed calendar event %s: %w", events[i].Name, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}
	return inserted, nil
}
