// Package seed holds the reference data loaded by pensumctl: the
// Ingeniería de Sistemas pensum and the 2025 institutional calendar.
package seed

import (
	"embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/noah-isme/uniplanner-api/internal/models"
)

//go:embed data/*.json
var dataFS embed.FS

const dateLayout = "2006-01-02"

// Pensum returns the 52 courses of the systems engineering curriculum.
func Pensum() ([]models.Course, error) {
	var courses []models.Course
	if err := decode("data/pensum_sistemas.json", &courses); err != nil {
		return nil, err
	}
	for i := range courses {
		if courses[i].Prerequisites == nil {
			courses[i].Prerequisites = []string{}
		}
	}
	return courses, nil
}

// Calendar2025 returns the academic calendar for both 2025 terms plus the
// national holidays that fall inside them.
func Calendar2025() ([]models.CalendarEvent, error) {
	var raw []models.CreateCalendarEventRequest
	if err := decode("data/calendar_2025.json", &raw); err != nil {
		return nil, err
	}
	events := make([]models.CalendarEvent, 0, len(raw))
	for _, r := range raw {
		startsOn, err := time.Parse(dateLayout, r.StartsOn)
		if err != nil {
			return nil, fmt.Errorf("event %q: %w", r.Name, err)
		}
		event := models.CalendarEvent{
			Name:        r.Name,
			Description: r.Description,
			StartsOn:    startsOn,
			Type:        r.Type,
			Icon:        r.Icon,
			Color:       r.Color,
		}
		if r.EndsOn != "" {
			endsOn, err := time.Parse(dateLayout, r.EndsOn)
			if err != nil {
				return nil, fmt.Errorf("event %q: %w", r.Name, err)
			}
			event.EndsOn = &endsOn
		}
		if r.Semester != "" {
			semester := r.Semester
			event.Semester = &semester
		}
		events = append(events, event)
	}
	return events, nil
}

func decode(name string, dest interface{}) error {
	body, err := dataFS.ReadFile(name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}
