package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/uniplanner-api/internal/middleware"
	"github.com/noah-isme/uniplanner-api/internal/models"
	"github.com/noah-isme/uniplanner-api/pkg/response"
)

type calendarService interface {
	List(ctx context.Context, filter models.CalendarFilter) ([]models.CalendarEvent, error)
	Create(ctx context.Context, req models.CreateCalendarEventRequest) (*models.CalendarEvent, error)
}

// CalendarHandler exposes the institutional academic calendar.
type CalendarHandler struct {
	service calendarService
}

func NewCalendarHandler(svc calendarService) *CalendarHandler {
	return &CalendarHandler{service: svc}
}

// List godoc
// @Summary List calendar events
// @Description Events of a semester such as 2025-1, or upcoming events within days (default 90)
// @Tags Calendar
// @Produce json
// @Param semester query string false "Semester label"
// @Param days query int false "Upcoming window in days"
// @Success 200 {object} response.Envelope
// @Router /calendar/events [get]
func (h *CalendarHandler) List(c *gin.Context) {
	days, ok := queryInt(c, "days")
	if !ok {
		return
	}
	events, err := h.service.List(c.Request.Context(), models.CalendarFilter{Semester: c.Query("semester"), Days: days})
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetMeta(c, "count", len(events))
	response.OK(c, events, middleware.ResponseMeta(c))
}

// Create godoc
// @Summary Create calendar event
// @Tags Calendar
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.CreateCalendarEventRequest true "Event payload"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /calendar/events [post]
func (h *CalendarHandler) Create(c *gin.Context) {
	var req models.CreateCalendarEventRequest
	if !bindJSON(c, &req, "invalid calendar event payload") {
		return
	}
	event, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, event)
}
