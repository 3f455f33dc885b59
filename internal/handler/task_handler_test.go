package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uniplanner-api/internal/middleware"
	"github.com/noah-isme/uniplanner-api/internal/models"
	appErrors "github.com/noah-isme/uniplanner-api/pkg/errors"
)

type taskServiceMock struct {
	pendingOnly bool
	days        int
	complete    models.CompleteTaskRequest
	deleted     string
}

func (m *taskServiceMock) List(ctx context.Context, userID string, pendingOnly bool) ([]models.Task, error) {
	m.pendingOnly = pendingOnly
	return []models.Task{{ID: "t1"}}, nil
}

func (m *taskServiceMock) Urgent(ctx context.Context, userID string, days int) ([]models.Task, error) {
	m.days = days
	return nil, nil
}

func (m *taskServiceMock) Create(ctx context.Context, userID string, req models.CreateTaskRequest) (*models.Task, error) {
	return &models.Task{ID: "t2", UserID: userID, CourseCode: req.CourseCode, Title: req.Title}, nil
}

func (m *taskServiceMock) Complete(ctx context.Context, userID, id string, req models.CompleteTaskRequest) (*models.Task, error) {
	m.complete = req
	return &models.Task{ID: id, Completed: true, Progress: 100}, nil
}

func (m *taskServiceMock) UpdateProgress(ctx context.Context, userID, id string, req models.TaskProgressRequest) (*models.Task, error) {
	return &models.Task{ID: id, Progress: req.Percent}, nil
}

func (m *taskServiceMock) Delete(ctx context.Context, userID, id string) error {
	if id != "t1" {
		return appErrors.ErrTaskNotFound
	}
	m.deleted = id
	return nil
}

func TestTaskHandlerListPending(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &taskServiceMock{}
	handler := NewTaskHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/tasks?pending=true", nil)
	c.Set(middleware.ContextUserKey, studentClaims())
	handler.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, mockSvc.pendingOnly)
}

func TestTaskHandlerUrgentDays(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &taskServiceMock{}
	handler := NewTaskHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/tasks/urgent?days=5", nil)
	c.Set(middleware.ContextUserKey, studentClaims())
	handler.Urgent(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, mockSvc.days)

	c, w = newGinContext(http.MethodGet, "/tasks/urgent?days=-1", nil)
	c.Set(middleware.ContextUserKey, studentClaims())
	handler.Urgent(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTaskHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewTaskHandler(&taskServiceMock{})

	body := []byte(`{"course_code":"A1","title":"Taller 1","type":"taller","due_date":"2025-03-10","estimated_hours":2,"difficulty":3}`)
	c, w := newGinContext(http.MethodPost, "/tasks", body)
	c.Set(middleware.ContextUserKey, studentClaims())
	handler.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "Taller 1")
}

func TestTaskHandlerCompleteWithoutBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &taskServiceMock{}
	handler := NewTaskHandler(mockSvc)

	c, w := newGinContext(http.MethodPost, "/tasks/t1/complete", nil)
	c.Params = gin.Params{{Key: "id", Value: "t1"}}
	c.Set(middleware.ContextUserKey, studentClaims())
	handler.Complete(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, mockSvc.complete.Percent)
}

func TestTaskHandlerDelete(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &taskServiceMock{}
	handler := NewTaskHandler(mockSvc)

	c, w := newGinContext(http.MethodDelete, "/tasks/t1", nil)
	c.Params = gin.Params{{Key: "id", Value: "t1"}}
	c.Set(middleware.ContextUserKey, studentClaims())
	handler.Delete(c)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "t1", mockSvc.deleted)

	c, w = newGinContext(http.MethodDelete, "/tasks/t9", nil)
	c.Params = gin.Params{{Key: "id", Value: "t9"}}
	c.Set(middleware.ContextUserKey, studentClaims())
	handler.Delete(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
