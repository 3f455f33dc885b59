package handler

import (
	"context"
	"errors"
	"io"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/uniplanner-api/internal/middleware"
	"github.com/noah-isme/uniplanner-api/internal/models"
	appErrors "github.com/noah-isme/uniplanner-api/pkg/errors"
	"github.com/noah-isme/uniplanner-api/pkg/response"
)

type taskService interface {
	List(ctx context.Context, userID string, pendingOnly bool) ([]models.Task, error)
	Urgent(ctx context.Context, userID string, days int) ([]models.Task, error)
	Create(ctx context.Context, userID string, req models.CreateTaskRequest) (*models.Task, error)
	Complete(ctx context.Context, userID, id string, req models.CompleteTaskRequest) (*models.Task, error)
	UpdateProgress(ctx context.Context, userID, id string, req models.TaskProgressRequest) (*models.Task, error)
	Delete(ctx context.Context, userID, id string) error
}

// TaskHandler manages the current student's tasks.
type TaskHandler struct {
	service taskService
}

func NewTaskHandler(svc taskService) *TaskHandler {
	return &TaskHandler{service: svc}
}

// List godoc
// @Summary List tasks
// @Tags Tasks
// @Produce json
// @Security BearerAuth
// @Param pending query bool false "Only pending tasks"
// @Success 200 {object} response.Envelope
// @Router /tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	pendingOnly, _ := strconv.ParseBool(c.DefaultQuery("pending", "false"))
	tasks, err := h.service.List(c.Request.Context(), claims.UserID, pendingOnly)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetMeta(c, "count", len(tasks))
	response.OK(c, tasks, middleware.ResponseMeta(c))
}

// Urgent godoc
// @Summary Tasks due soon
// @Description Pending tasks due within the given number of days, overdue ones included
// @Tags Tasks
// @Produce json
// @Security BearerAuth
// @Param days query int false "Window in days (default 3)"
// @Success 200 {object} response.Envelope
// @Router /tasks/urgent [get]
func (h *TaskHandler) Urgent(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	days, ok := queryInt(c, "days")
	if !ok {
		return
	}
	tasks, err := h.service.Urgent(c.Request.Context(), claims.UserID, days)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetMeta(c, "count", len(tasks))
	response.OK(c, tasks, middleware.ResponseMeta(c))
}

// Create godoc
// @Summary Create task
// @Tags Tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.CreateTaskRequest true "Task payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req models.CreateTaskRequest
	if !bindJSON(c, &req, "invalid task payload") {
		return
	}
	task, err := h.service.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, task)
}

// Complete godoc
// @Summary Complete task
// @Tags Tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Task ID"
// @Param payload body models.CompleteTaskRequest false "Completion percent"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /tasks/{id}/complete [post]
func (h *TaskHandler) Complete(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req models.CompleteTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid completion payload"))
		return
	}
	task, err := h.service.Complete(c.Request.Context(), claims.UserID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, task)
}

// Progress godoc
// @Summary Update task progress
// @Tags Tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Task ID"
// @Param payload body models.TaskProgressRequest true "Progress percent"
// @Success 200 {object} response.Envelope
// @Router /tasks/{id}/progress [post]
func (h *TaskHandler) Progress(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req models.TaskProgressRequest
	if !bindJSON(c, &req, "invalid progress payload") {
		return
	}
	task, err := h.service.UpdateProgress(c.Request.Context(), claims.UserID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, task)
}

// Delete godoc
// @Summary Delete task
// @Tags Tasks
// @Security BearerAuth
// @Param id path string true "Task ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	if err := h.service.Delete(c.Request.Context(), claims.UserID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
