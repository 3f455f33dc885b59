package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uniplanner-api/internal/models"
)

var taskRowColumns = []string{"id", "user_id", "course_code", "course_name", "title", "description", "type", "due_at", "estimated_hours", "difficulty", "priority", "completed", "progress", "notes", "created_at", "completed_at"}

func TestTaskListPendingOnly(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTaskRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(taskRowColumns).
		AddRow("t1", "u1", "167389", "Cálculo Diferencial", "Taller 1", "", "taller", now, 3.0, 2, 5, false, 0, "", now, nil)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE t.user_id = $1 AND t.completed = FALSE ORDER BY t.completed ASC, t.due_at ASC")).
		WithArgs("u1").
		WillReturnRows(rows)

	tasks, err := repo.List(context.Background(), models.TaskFilter{UserID: "u1", PendingOnly: true})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Cálculo Diferencial", tasks[0].CourseName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskDeleteForeignTask(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTaskRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM tasks WHERE id = $1 AND user_id = $2")).
		WithArgs("t1", "other").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "other", "t1")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskComplete(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTaskRepository(db)

	at := time.Now()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE tasks SET completed = TRUE, progress = $3, completed_at = $4 WHERE id = $1 AND user_id = $2")).
		WithArgs("t1", "u1", 100, at).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Complete(context.Background(), "u1", "t1", 100, at))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskStats(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTaskRepository(db)

	rows := sqlmock.NewRows([]string{"total_tasks", "pending_tasks", "completed_tasks", "pending_hours"}).AddRow(5, 2, 3, 7.5)
	mock.ExpectQuery("FROM tasks WHERE user_id = \\$1").WithArgs("u1").WillReturnRows(rows)

	stats, err := repo.Stats(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 5, stats.TotalTasks)
	assert.Equal(t, 7.5, stats.PendingHours)
	assert.NoError(t, mock.ExpectationsWereMet())
}
