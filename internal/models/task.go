package models

import (
	"math"
	"time"
)

type TaskType string

const (
	TaskWorkshop     TaskType = "taller"
	TaskExam         TaskType = "parcial"
	TaskProject      TaskType = "proyecto"
	TaskReading      TaskType = "lectura"
	TaskPresentation TaskType = "exposicion"
	TaskQuiz         TaskType = "quiz"
)

// Task is a student assignment tied to a course.
type Task struct {
	ID             string     `db:"id" json:"id"`
	UserID         string     `db:"user_id" json:"user_id"`
	CourseCode     string     `db:"course_code" json:"course_code"`
	CourseName     string     `db:"course_name" json:"course_name"`
	Title          string     `db:"title" json:"title"`
	Description    string     `db:"description" json:"description"`
	Type           TaskType   `db:"type" json:"type"`
	DueAt          time.Time  `db:"due_at" json:"due_at"`
	EstimatedHours float64    `db:"estimated_hours" json:"estimated_hours"`
	Difficulty     int        `db:"difficulty" json:"difficulty"`
	Priority       int        `db:"priority" json:"priority"`
	Completed      bool       `db:"completed" json:"completed"`
	Progress       int        `db:"progress" json:"progress"`
	Notes          string     `db:"notes" json:"notes"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	CompletedAt    *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	DaysRemaining  int        `db:"-" json:"days_remaining"`
}

// DaysUntilDue returns whole days left until DueAt, negative once overdue.
// Partial days round toward negative infinity.
func (t Task) DaysUntilDue(now time.Time) int {
	return int(math.Floor(t.DueAt.Sub(now).Hours() / 24))
}

type TaskFilter struct {
	UserID      string
	PendingOnly bool
}

// CreateTaskRequest accepts DueDate as YYYY-MM-DD, YYYY-MM-DD HH:MM:SS or
// RFC 3339. A bare date is due at 23:59:59 local time.
type CreateTaskRequest struct {
	CourseCode     string   `json:"course_code" validate:"required,max=40"`
	Title          string   `json:"title" validate:"required,max=200"`
	Description    string   `json:"description" validate:"max=2000"`
	Type           TaskType `json:"type" validate:"required,oneof=taller parcial proyecto lectura exposicion quiz"`
	DueDate        string   `json:"due_date" validate:"required"`
	EstimatedHours float64  `json:"estimated_hours" validate:"required,gt=0,lte=500"`
	Difficulty     int      `json:"difficulty" validate:"required,min=1,max=5"`
	Notes          string   `json:"notes" validate:"max=2000"`
}

// CompleteTaskRequest marks a task done. Percent defaults to 100.
type CompleteTaskRequest struct {
	Percent *int `json:"percent" validate:"omitempty,min=0,max=100"`
}

type TaskProgressRequest struct {
	Percent int `json:"percent" validate:"min=0,max=100"`
}
