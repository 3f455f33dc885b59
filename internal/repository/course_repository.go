package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uniplanner-api/internal/models"
)

const courseColumns = `code, name, credits, semester, iit, hp, prerequisites, required_credits`

// CourseRepository reads and seeds the pensum.
type CourseRepository struct {
	db *sqlx.DB
}

func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// ListAll returns the whole catalog ordered by semester then code.
func (r *CourseRepository) ListAll(ctx context.Context) ([]models.Course, error) {
	return r.List(ctx, models.CourseFilter{})
}

func (r *CourseRepository) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.Semester > 0 {
		args = append(args, filter.Semester)
		where = append(where, fmt.Sprintf("semester = $%d", len(args)))
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		args = append(args, "%"+strings.ToLower(s)+"%")
		where = append(where, fmt.Sprintf("(LOWER(code) LIKE $%d OR LOWER(name) LIKE $%d)", len(args), len(args)))
	}

	query := `SELECT ` + courseColumns + ` FROM courses`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY semester ASC, code ASC"

	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

func (r *CourseRepository) FindByCode(ctx context.Context, code string) (*models.Course, error) {
	const query = `SELECT ` + courseColumns + ` FROM courses WHERE code = $1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find course: %w", err)
	}
	return &course, nil
}

// Upsert inserts or updates courses in one transaction.
func (r *CourseRepository) Upsert(ctx context.Context, courses []models.Course) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin course upsert: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const query = `INSERT INTO courses (` + courseColumns + `) VALUES (:code, :name, :credits, :semester, :iit, :hp, :prerequisites, :required_credits)
ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name, credits = EXCLUDED.credits, semester = EXCLUDED.semester, iit = EXCLUDED.iit, hp = EXCLUDED.hp, prerequisites = EXCLUDED.prerequisites, required_credits = EXCLUDED.required_credits`
	for i := range courses {
		if courses[i].Prerequisites == nil {
			courses[i].Prerequisites = []string{}
		}
		if _, err = tx.NamedExecContext(ctx, query, courses[i]); err != nil {
			return fmt.Errorf("upsert course %s: %w", courses[i].Code, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit course upsert: %w", err)
	}
	return nil
}
