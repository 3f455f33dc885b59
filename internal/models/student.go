package models

import "github.com/noah-isme/uniplanner-api/internal/curriculum"

// StudentStats aggregates task and course counters for the profile.
type StudentStats struct {
	TotalTasks            int     `db:"total_tasks" json:"total_tasks"`
	PendingTasks          int     `db:"pending_tasks" json:"pending_tasks"`
	CompletedTasks        int     `db:"completed_tasks" json:"completed_tasks"`
	PendingHours          float64 `db:"pending_hours" json:"pending_hours"`
	ApprovedCourses       int     `json:"approved_courses"`
	InProgressCourses     int     `json:"in_progress_courses"`
	ApprovedCredits       int     `json:"approved_credits"`
	InProgressCredits     int     `json:"in_progress_credits"`
	TaskCompletionPercent float64 `json:"task_completion_percent"`
}

type Profile struct {
	User        UserInfo     `json:"user"`
	Stats       StudentStats `json:"stats"`
	StudyConfig *StudyConfig `json:"study_config,omitempty"`
}

// SemaforoView is the prerequisite map of one student.
type SemaforoView struct {
	Progress  curriculum.Progress       `json:"progress"`
	Semesters []curriculum.SemesterView `json:"semesters"`
}

// CourseEligibility is the status of a single course for a student.
type CourseEligibility struct {
	Course             Course            `json:"course"`
	Status             curriculum.Status `json:"eligibility"`
	AccumulatedCredits int               `json:"accumulated_credits"`
}
