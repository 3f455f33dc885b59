package handler

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/uniplanner-api/internal/middleware"
	"github.com/noah-isme/uniplanner-api/internal/models"
	"github.com/noah-isme/uniplanner-api/pkg/response"
)

type courseCatalog interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, error)
	Get(ctx context.Context, code string) (*models.Course, error)
	Invalidate(ctx context.Context) error
}

type courseEligibility interface {
	Course(ctx context.Context, userID, code string) (*models.CourseEligibility, error)
}

// CourseHandler serves the pensum catalog.
type CourseHandler struct {
	catalog     courseCatalog
	eligibility courseEligibility
}

func NewCourseHandler(catalog courseCatalog, eligibility courseEligibility) *CourseHandler {
	return &CourseHandler{catalog: catalog, eligibility: eligibility}
}

// List godoc
// @Summary List courses
// @Description List pensum courses, optionally filtered by semester or a name/code search
// @Tags Courses
// @Produce json
// @Param semester query int false "Semester number"
// @Param search query string false "Name or code fragment"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /courses [get]
func (h *CourseHandler) List(c *gin.Context) {
	semester, ok := queryInt(c, "semester")
	if !ok {
		return
	}
	filter := models.CourseFilter{Semester: semester, Search: strings.TrimSpace(c.Query("search"))}

	courses, err := h.catalog.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetMeta(c, "count", len(courses))
	if filter.Semester > 0 {
		middleware.SetMeta(c, "semester", filter.Semester)
	}
	response.OK(c, courses, middleware.ResponseMeta(c))
}

// Get godoc
// @Summary Get course
// @Description Returns a course. Authenticated callers also receive their eligibility for it.
// @Tags Courses
// @Produce json
// @Param code path string true "Course code"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{code} [get]
func (h *CourseHandler) Get(c *gin.Context) {
	code := strings.TrimSpace(c.Param("code"))
	claims := claimsFromContext(c)
	if claims != nil && h.eligibility != nil {
		res, err := h.eligibility.Course(c.Request.Context(), claims.UserID, code)
		if err != nil {
			response.Error(c, err)
			return
		}
		status := res.Status
		response.OK(c, models.CourseDetail{Course: res.Course, Status: &status})
		return
	}

	course, err := h.catalog.Get(c.Request.Context(), code)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, models.CourseDetail{Course: *course})
}

// InvalidateCache godoc
// @Summary Invalidate catalog cache
// @Description Drops the cached catalog so the next read reloads it from the database
// @Tags Courses
// @Security BearerAuth
// @Success 204
// @Failure 403 {object} response.Envelope
// @Router /courses/cache/invalidate [post]
func (h *CourseHandler) InvalidateCache(c *gin.Context) {
	if err := h.catalog.Invalidate(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
