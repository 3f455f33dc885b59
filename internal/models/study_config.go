package models

import "github.com/lib/pq"

// StudyConfig is the per-student study plan preference.
type StudyConfig struct {
	UserID         string        `db:"user_id" json:"-"`
	StudyType      StudyType     `db:"study_type" json:"study_type"`
	DailyHours     float64       `db:"daily_hours" json:"daily_hours"`
	WeekDays       pq.Int64Array `db:"week_days" json:"week_days"`
	PreferredStart string        `db:"preferred_start" json:"preferred_start"`
	PreferredEnd   string        `db:"preferred_end" json:"preferred_end"`
	BreakMinutes   int           `db:"break_minutes" json:"break_minutes"`
}

// NewStudyConfig returns the default plan for a study type: weekdays from
// 08:00 to 22:00 with 15 minute breaks.
func NewStudyConfig(userID string, t StudyType) StudyConfig {
	return StudyConfig{
		UserID:         userID,
		StudyType:      t,
		DailyHours:     t.DailyHours(),
		WeekDays:       pq.Int64Array{1, 2, 3, 4, 5},
		PreferredStart: "08:00",
		PreferredEnd:   "22:00",
		BreakMinutes:   15,
	}
}
