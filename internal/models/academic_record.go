package models

import "time"

// RecordStatus is the lifecycle state of a course on a student record.
type RecordStatus string

const (
	RecordApproved   RecordStatus = "approved"
	RecordInProgress RecordStatus = "in_progress"
	RecordCancelled  RecordStatus = "cancelled"
)

// AcademicRecord links a student to a course code. Free-elective slots are
// stored with their slot code.
type AcademicRecord struct {
	ID         string       `db:"id" json:"id"`
	UserID     string       `db:"user_id" json:"user_id"`
	CourseCode string       `db:"course_code" json:"course_code"`
	Status     RecordStatus `db:"status" json:"status"`
	Semester   *int         `db:"semester" json:"semester,omitempty"`
	CreatedAt  time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time    `db:"updated_at" json:"updated_at"`
}

// StudentCourse is a record joined with its catalog course.
type StudentCourse struct {
	Code      string       `db:"course_code" json:"code"`
	Name      string       `db:"name" json:"name"`
	Credits   int          `db:"credits" json:"credits"`
	Semester  int          `db:"semester" json:"semester"`
	Status    RecordStatus `db:"status" json:"status"`
	UpdatedAt time.Time    `db:"updated_at" json:"updated_at"`
}

// CourseCodeRequest carries the code for enroll and cancel calls.
type CourseCodeRequest struct {
	Code string `json:"code" validate:"required,max=40"`
}

// EnrollResult reports the stored code, which differs from the requested one
// for free-elective slots.
type EnrollResult struct {
	Code   string       `json:"code"`
	Status RecordStatus `json:"status"`
}
