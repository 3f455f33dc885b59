package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uniplanner-api/internal/models"
)

const insertRecordQuery = `INSERT INTO academic_records (id, user_id, course_code, status, semester, created_at, updated_at) VALUES (:id, :user_id, :course_code, :status, :semester, :created_at, :updated_at)`

// AcademicRecordRepository stores approved and in-progress courses.
type AcademicRecordRepository struct {
	db *sqlx.DB
}

func NewAcademicRecordRepository(db *sqlx.DB) *AcademicRecordRepository {
	return &AcademicRecordRepository{db: db}
}

// ListCodes returns the approved and in-progress codes of a student.
func (r *AcademicRecordRepository) ListCodes(ctx context.Context, userID string) (approved, inProgress []string, err error) {
	const query = `SELECT course_code, status FROM academic_records WHERE user_id = $1 AND status IN ('approved', 'in_progress') ORDER BY course_code`
	var rows []struct {
		Code   string              `db:"course_code"`
		Status models.RecordStatus `db:"status"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, nil, fmt.Errorf("list record codes: %w", err)
	}
	for _, row := range rows {
		switch row.Status {
		case models.RecordApproved:
			approved = append(approved, row.Code)
		case models.RecordInProgress:
			inProgress = append(inProgress, row.Code)
		}
	}
	return approved, inProgress, nil
}

// ListCourses joins records of one status with the catalog. Slot codes
// resolve to their base course.
func (r *AcademicRecordRepository) ListCourses(ctx context.Context, userID string, status models.RecordStatus) ([]models.StudentCourse, error) {
	const query = `SELECT ar.course_code, c.name, c.credits, c.semester, ar.status, ar.updated_at
FROM academic_records ar
JOIN courses c ON c.code = split_part(ar.course_code, '#', 1)
WHERE ar.user_id = $1 AND ar.status = $2
ORDER BY c.semester ASC, ar.course_code ASC`
	var courses []models.StudentCourse
	if err := r.db.SelectContext(ctx, &courses, query, userID, status); err != nil {
		return nil, fmt.Errorf("list student courses: %w", err)
	}
	return courses, nil
}

// Enroll marks code in progress, reviving a cancelled record if present.
func (r *AcademicRecordRepository) Enroll(ctx context.Context, userID, code string, semester int) error {
	now := time.Now().UTC()
	rec := models.AcademicRecord{
		ID:         uuid.NewString(),
		UserID:     userID,
		CourseCode: code,
		Status:     models.RecordInProgress,
		Semester:   &semester,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	const query = insertRecordQuery + ` ON CONFLICT (user_id, course_code) DO UPDATE SET status = EXCLUDED.status, semester = EXCLUDED.semester, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, rec); err != nil {
		return fmt.Errorf("enroll course: %w", err)
	}
	return nil
}

// Cancel moves an in-progress record to cancelled. It returns
// sql.ErrNoRows when no in-progress record matched.
func (r *AcademicRecordRepository) Cancel(ctx context.Context, userID, code string) error {
	const query = `UPDATE academic_records SET status = 'cancelled', updated_at = $3 WHERE user_id = $1 AND course_code = $2 AND status = 'in_progress'`
	res, err := r.db.ExecContext(ctx, query, userID, code, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("cancel course: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("cancel course rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
