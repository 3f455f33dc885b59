package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uniplanner-api/internal/models"
)

const taskSelect = `SELECT t.id, t.user_id, t.course_code, COALESCE(c.name, '') AS course_name, t.title, t.description, t.type, t.due_at, t.estimated_hours, t.difficulty, t.priority, t.completed, t.progress, t.notes, t.created_at, t.completed_at
FROM tasks t
LEFT JOIN courses c ON c.code = split_part(t.course_code, '#', 1)`

// TaskRepository persists student tasks. Every mutation is scoped to the
// owning user and returns sql.ErrNoRows when nothing matched.
type TaskRepository struct {
	db *sqlx.DB
}

func NewTaskRepository(db *sqlx.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// List orders pending tasks first, then by due date.
func (r *TaskRepository) List(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	query := taskSelect + ` WHERE t.user_id = $1`
	if filter.PendingOnly {
		query += ` AND t.completed = FALSE`
	}
	query += ` ORDER BY t.completed ASC, t.due_at ASC`

	var tasks []models.Task
	if err := r.db.SelectContext(ctx, &tasks, query, filter.UserID); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// ListDueBefore returns pending tasks due before the deadline, overdue ones
// included.
func (r *TaskRepository) ListDueBefore(ctx context.Context, userID string, deadline time.Time) ([]models.Task, error) {
	query := taskSelect + ` WHERE t.user_id = $1 AND t.completed = FALSE AND t.due_at <= $2 ORDER BY t.due_at ASC`
	var tasks []models.Task
	if err := r.db.SelectContext(ctx, &tasks, query, userID, deadline); err != nil {
		return nil, fmt.Errorf("list due tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) FindByID(ctx context.Context, userID, id string) (*models.Task, error) {
	query := taskSelect + ` WHERE t.id = $1 AND t.user_id = $2`
	var task models.Task
	if err := r.db.GetContext(ctx, &task, query, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	return &task, nil
}

func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO tasks (id, user_id, course_code, title, description, type, due_at, estimated_hours, difficulty, priority, completed, progress, notes, created_at, completed_at)
VALUES (:id, :user_id, :course_code, :title, :description, :type, :due_at, :estimated_hours, :difficulty, :priority, :completed, :progress, :notes, :created_at, :completed_at)`
	if _, err := r.db.NamedExecContext(ctx, query, task); err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (r *TaskRepository) Complete(ctx context.Context, userID, id string, percent int, at time.Time) error {
	const query = `UPDATE tasks SET completed = TRUE, progress = $3, completed_at = $4 WHERE id = $1 AND user_id = $2`
	return r.execOwned(ctx, "complete task", query, id, userID, percent, at)
}

func (r *TaskRepository) UpdateProgress(ctx context.Context, userID, id string, percent int) error {
	const query = `UPDATE tasks SET progress = $3 WHERE id = $1 AND user_id = $2`
	return r.execOwned(ctx, "update task progress", query, id, userID, percent)
}

func (r *TaskRepository) Delete(ctx context.Context, userID, id string) error {
	const query = `DELETE FROM tasks WHERE id = $1 AND user_id = $2`
	return r.execOwned(ctx, "delete task", query, id, userID)
}

// Stats aggregates task counters for a user.
func (r *TaskRepository) Stats(ctx context.Context, userID string) (*models.StudentStats, error) {
	const query = `SELECT COUNT(*) AS total_tasks,
COUNT(*) FILTER (WHERE completed = FALSE) AS pending_tasks,
COUNT(*) FILTER (WHERE completed = TRUE) AS completed_tasks,
COALESCE(SUM(estimated_hours) FILTER (WHERE completed = FALSE), 0) AS pending_hours
FROM tasks WHERE user_id = $1`
	var stats models.StudentStats
	if err := r.db.GetContext(ctx, &stats, query, userID); err != nil {
		return nil, fmt.Errorf("task stats: %w", err)
	}
	return &stats, nil
}

func (r *TaskRepository) execOwned(ctx context.Context, op, query string, args ...interface{}) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows: %w", op, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
