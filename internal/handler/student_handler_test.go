package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uniplanner-api/internal/middleware"
	"github.com/noah-isme/uniplanner-api/internal/models"
	appErrors "github.com/noah-isme/uniplanner-api/pkg/errors"
)

type studentServiceMock struct {
	enrolled  string
	cancelled string
	enrollErr error
}

func (m *studentServiceMock) Profile(ctx context.Context, userID string) (*models.Profile, error) {
	return &models.Profile{User: models.UserInfo{ID: userID}}, nil
}

func (m *studentServiceMock) Stats(ctx context.Context, userID string) (*models.StudentStats, error) {
	return &models.StudentStats{TotalTasks: 4, PendingTasks: 1}, nil
}

func (m *studentServiceMock) Approved(ctx context.Context, userID string) ([]models.StudentCourse, error) {
	return []models.StudentCourse{{Code: "A1", Credits: 3}, {Code: "A2", Credits: 3}}, nil
}

func (m *studentServiceMock) InProgress(ctx context.Context, userID string) ([]models.StudentCourse, error) {
	return nil, nil
}

func (m *studentServiceMock) Enroll(ctx context.Context, userID string, req models.CourseCodeRequest) (*models.EnrollResult, error) {
	m.enrolled = req.Code
	if m.enrollErr != nil {
		return nil, m.enrollErr
	}
	return &models.EnrollResult{Code: req.Code, Status: models.RecordInProgress}, nil
}

func (m *studentServiceMock) Cancel(ctx context.Context, userID string, req models.CourseCodeRequest) error {
	m.cancelled = req.Code
	return nil
}

func TestStudentHandlerProfileRequiresClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewStudentHandler(&studentServiceMock{})

	c, w := newGinContext(http.MethodGet, "/me/profile", nil)
	handler.Profile(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestStudentHandlerApprovedSumsCredits(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewStudentHandler(&studentServiceMock{})

	c, w := newGinContext(http.MethodGet, "/me/courses/approved", nil)
	c.Set(middleware.ContextUserKey, studentClaims())
	handler.Approved(c)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.EqualValues(t, 2, body.Meta["count"])
	assert.EqualValues(t, 6, body.Meta["credits"])
}

func TestStudentHandlerEnroll(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &studentServiceMock{}
	handler := NewStudentHandler(mockSvc)

	c, w := newGinContext(http.MethodPost, "/me/courses/enroll", []byte(`{"code":"B1"}`))
	c.Set(middleware.ContextUserKey, studentClaims())
	handler.Enroll(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "B1", mockSvc.enrolled)
}

func TestStudentHandlerEnrollBlocked(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewStudentHandler(&studentServiceMock{enrollErr: appErrors.Clone(appErrors.ErrCourseBlocked, "missing prerequisites")})

	c, w := newGinContext(http.MethodPost, "/me/courses/enroll", []byte(`{"code":"C1"}`))
	c.Set(middleware.ContextUserKey, studentClaims())
	handler.Enroll(c)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestStudentHandlerCancel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &studentServiceMock{}
	handler := NewStudentHandler(mockSvc)

	c, w := newGinContext(http.MethodPost, "/me/courses/cancel", []byte(`{"code":"B1"}`))
	c.Set(middleware.ContextUserKey, studentClaims())
	handler.Cancel(c)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "B1", mockSvc.cancelled)
}
