package models

import "time"

// CalendarEvent is an institutional calendar entry. Semester is nil for
// events that apply to every term, such as public holidays.
type CalendarEvent struct {
	ID          string     `db:"id" json:"id"`
	Name        string     `db:"name" json:"name"`
	Description string     `db:"description" json:"description"`
	StartsOn    time.Time  `db:"starts_on" json:"starts_on"`
	EndsOn      *time.Time `db:"ends_on" json:"ends_on,omitempty"`
	Type        string     `db:"type" json:"type"`
	Semester    *string    `db:"semester" json:"semester,omitempty"`
	Icon        string     `db:"icon" json:"icon"`
	Color       string     `db:"color" json:"color"`
}

// CalendarFilter selects events either by semester label or by a window of
// upcoming days.
type CalendarFilter struct {
	Semester string
	Days     int
}

type CreateCalendarEventRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=1000"`
	StartsOn    string `json:"starts_on" validate:"required,datetime=2006-01-02"`
	EndsOn      string `json:"ends_on" validate:"omitempty,datetime=2006-01-02"`
	Type        string `json:"type" validate:"required,oneof=parcial final cancelacion inscripcion festivo inicio_clases fin_clases"`
	Semester    string `json:"semester" validate:"omitempty,max=20"`
	Icon        string `json:"icon" validate:"max=16"`
	Color       string `json:"color" validate:"omitempty,hexcolor"`
}
