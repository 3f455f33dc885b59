package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/uniplanner-api/internal/models"
	"github.com/noah-isme/uniplanner-api/pkg/response"
)

type semaforoService interface {
	Map(ctx context.Context, userID string) (*models.SemaforoView, error)
	Course(ctx context.Context, userID, code string) (*models.CourseEligibility, error)
}

// SemaforoHandler renders the prerequisite map of the current student.
type SemaforoHandler struct {
	service semaforoService
}

func NewSemaforoHandler(svc semaforoService) *SemaforoHandler {
	return &SemaforoHandler{service: svc}
}

// Map godoc
// @Summary Prerequisite map
// @Description Every course grouped by semester with its status for the current student
// @Tags Semaforo
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /me/semaforo [get]
func (h *SemaforoHandler) Map(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	view, err := h.service.Map(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, view)
}

// Course godoc
// @Summary Status of one course
// @Tags Semaforo
// @Produce json
// @Security BearerAuth
// @Param code path string true "Course code"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /me/semaforo/{code} [get]
func (h *SemaforoHandler) Course(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	res, err := h.service.Course(c.Request.Context(), claims.UserID, c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}
