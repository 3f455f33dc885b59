package handler

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/uniplanner-api/internal/models"
	appErrors "github.com/noah-isme/uniplanner-api/pkg/errors"
	"github.com/noah-isme/uniplanner-api/pkg/response"
)

type selectionWorkflow interface {
	Start(ctx context.Context, req models.StartSelectionRequest) (*models.SelectionView, error)
	Get(ctx context.Context, id string) (*models.SelectionView, error)
	ToggleApproved(ctx context.Context, id, code string) (*models.ToggleResult, error)
	ToggleInProgress(ctx context.Context, id, code string) (*models.ToggleResult, error)
	Advance(ctx context.Context, id string) (*models.SelectionView, error)
	Skip(ctx context.Context, id string) (*models.SelectionOutcome, error)
	Finalize(ctx context.Context, id string) (*models.SelectionOutcome, error)
	Discard(ctx context.Context, id string) error
}

// SelectionHandler exposes the two-phase course selection used before
// registration. Sessions are anonymous and addressed by their id.
type SelectionHandler struct {
	service selectionWorkflow
}

func NewSelectionHandler(svc selectionWorkflow) *SelectionHandler {
	return &SelectionHandler{service: svc}
}

// Start godoc
// @Summary Start a selection session
// @Description Opens a session in the approved phase. With preselect, every course below current_semester starts approved.
// @Tags Selection
// @Accept json
// @Produce json
// @Param payload body models.StartSelectionRequest false "Session options"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /selection-sessions [post]
func (h *SelectionHandler) Start(c *gin.Context) {
	var req models.StartSelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid selection payload"))
		return
	}
	view, err := h.service.Start(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, view)
}

// Get godoc
// @Summary Get a selection session
// @Tags Selection
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /selection-sessions/{id} [get]
func (h *SelectionHandler) Get(c *gin.Context) {
	view, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, view)
}

// ToggleApproved godoc
// @Summary Toggle an approved course
// @Description Selects or deselects a course in the approved phase. Rejections come back as 422 with the rejection kind in details.
// @Tags Selection
// @Produce json
// @Param id path string true "Session ID"
// @Param code path string true "Course code"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /selection-sessions/{id}/approved/{code} [post]
func (h *SelectionHandler) ToggleApproved(c *gin.Context) {
	res, err := h.service.ToggleApproved(c.Request.Context(), c.Param("id"), strings.TrimSpace(c.Param("code")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

// ToggleInProgress godoc
// @Summary Toggle an in-progress course
// @Tags Selection
// @Produce json
// @Param id path string true "Session ID"
// @Param code path string true "Course code"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /selection-sessions/{id}/in-progress/{code} [post]
func (h *SelectionHandler) ToggleInProgress(c *gin.Context) {
	res, err := h.service.ToggleInProgress(c.Request.Context(), c.Param("id"), strings.TrimSpace(c.Param("code")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

// Advance godoc
// @Summary Move to the in-progress phase
// @Tags Selection
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /selection-sessions/{id}/advance [post]
func (h *SelectionHandler) Advance(c *gin.Context) {
	view, err := h.service.Advance(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, view)
}

// Skip godoc
// @Summary Skip the current phase
// @Description Clears the current phase. Skipping the in-progress phase finalizes the session.
// @Tags Selection
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /selection-sessions/{id}/skip [post]
func (h *SelectionHandler) Skip(c *gin.Context) {
	out, err := h.service.Skip(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, out)
}

// Finalize godoc
// @Summary Finalize the session
// @Description Returns the submission payload used by registration
// @Tags Selection
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /selection-sessions/{id}/finalize [post]
func (h *SelectionHandler) Finalize(c *gin.Context) {
	out, err := h.service.Finalize(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, out)
}

// Discard godoc
// @Summary Discard a selection session
// @Tags Selection
// @Param id path string true "Session ID"
// @Success 204
// @Router /selection-sessions/{id} [delete]
func (h *SelectionHandler) Discard(c *gin.Context) {
	if err := h.service.Discard(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
