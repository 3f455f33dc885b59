package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uniplanner-api/internal/models"
)

var courseRowColumns = []string{"code", "name", "credits", "semester", "iit", "hp", "prerequisites", "required_credits"}

func TestCourseListAll(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	rows := sqlmock.NewRows(courseRowColumns).
		AddRow("167389", "Cálculo Diferencial", 4, 1, 8, 4, "{}", 0).
		AddRow("167394", "Cálculo Integral", 4, 2, 8, 4, "{167389}", 0)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + courseColumns + " FROM courses ORDER BY semester ASC, code ASC")).
		WillReturnRows(rows)

	courses, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, []string{"167389"}, []string(courses[1].Prerequisites))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseListFilters(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM courses WHERE semester = $1 AND (LOWER(code) LIKE $2 OR LOWER(name) LIKE $2) ORDER BY")).
		WithArgs(2, "%integral%").
		WillReturnRows(sqlmock.NewRows(courseRowColumns))

	courses, err := repo.List(context.Background(), models.CourseFilter{Semester: 2, Search: " Integral "})
	require.NoError(t, err)
	assert.Empty(t, courses)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseUpsertRollsBackOnError(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO courses").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO courses").WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	err := repo.Upsert(context.Background(), []models.Course{
		{Code: "A", Name: "A", Credits: 3, Semester: 1},
		{Code: "B", Name: "B", Credits: 3, Semester: 1},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upsert course B")
	assert.NoError(t, mock.ExpectationsWereMet())
}
