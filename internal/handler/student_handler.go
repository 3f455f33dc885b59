package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/uniplanner-api/internal/middleware"
	"github.com/noah-isme/uniplanner-api/internal/models"
	"github.com/noah-isme/uniplanner-api/pkg/response"
)

type studentRecordService interface {
	Profile(ctx context.Context, userID string) (*models.Profile, error)
	Stats(ctx context.Context, userID string) (*models.StudentStats, error)
	Approved(ctx context.Context, userID string) ([]models.StudentCourse, error)
	InProgress(ctx context.Context, userID string) ([]models.StudentCourse, error)
	Enroll(ctx context.Context, userID string, req models.CourseCodeRequest) (*models.EnrollResult, error)
	Cancel(ctx context.Context, userID string, req models.CourseCodeRequest) error
}

// StudentHandler serves the authenticated student's profile and record.
type StudentHandler struct {
	service studentRecordService
}

func NewStudentHandler(svc studentRecordService) *StudentHandler {
	return &StudentHandler{service: svc}
}

// Profile godoc
// @Summary Current student profile
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /me/profile [get]
func (h *StudentHandler) Profile(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	profile, err := h.service.Profile(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, profile)
}

// Stats godoc
// @Summary Task and credit counters
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /me/stats [get]
func (h *StudentHandler) Stats(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	stats, err := h.service.Stats(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, stats)
}

// Approved godoc
// @Summary Approved courses
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /me/courses/approved [get]
func (h *StudentHandler) Approved(c *gin.Context) {
	h.listCourses(c, h.service.Approved)
}

// InProgress godoc
// @Summary Courses in progress
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /me/courses/in-progress [get]
func (h *StudentHandler) InProgress(c *gin.Context) {
	h.listCourses(c, h.service.InProgress)
}

func (h *StudentHandler) listCourses(c *gin.Context, list func(context.Context, string) ([]models.StudentCourse, error)) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	courses, err := list(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	credits := 0
	for _, course := range courses {
		credits += course.Credits
	}
	middleware.SetMeta(c, "count", len(courses))
	middleware.SetMeta(c, "credits", credits)
	response.OK(c, courses, middleware.ResponseMeta(c))
}

// Enroll godoc
// @Summary Enroll in a course
// @Description Adds a course as in progress after checking eligibility. The free elective is stored under its next slot code.
// @Tags Students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.CourseCodeRequest true "Course code"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /me/courses/enroll [post]
func (h *StudentHandler) Enroll(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req models.CourseCodeRequest
	if !bindJSON(c, &req, "invalid course payload") {
		return
	}
	res, err := h.service.Enroll(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, res)
}

// Cancel godoc
// @Summary Cancel an in-progress course
// @Tags Students
// @Accept json
// @Security BearerAuth
// @Param payload body models.CourseCodeRequest true "Course code"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /me/courses/cancel [post]
func (h *StudentHandler) Cancel(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req models.CourseCodeRequest
	if !bindJSON(c, &req, "invalid course payload") {
		return
	}
	if err := h.service.Cancel(c.Request.Context(), claims.UserID, req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
