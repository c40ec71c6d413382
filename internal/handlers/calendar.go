package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	apierrors "github.com/visionarieshub/portal-api/internal/errors"
	"github.com/visionarieshub/portal-api/internal/middleware"
	"github.com/visionarieshub/portal-api/internal/models"
	"github.com/visionarieshub/portal-api/internal/repository"
	"github.com/visionarieshub/portal-api/internal/services"
)

// CalendarHandler coordinates project calendar HTTP handlers.
type CalendarHandler struct {
	calendarService *services.CalendarService
}

// NewCalendarHandler creates a new CalendarHandler.
func NewCalendarHandler(calendarService *services.CalendarService) *CalendarHandler {
	return &CalendarHandler{
		calendarService: calendarService,
	}
}

// ListEvents returns the loaded project's events, with optional range and
// type filters.
func (h *CalendarHandler) ListEvents(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.NotFound(c, "Project not found")
		return
	}

	filter := repository.CalendarFilter{ProjectID: project.ID}

	if fromStr := c.Query("from"); fromStr != "" {
		from, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			apierrors.BadRequest(c, "Invalid from date")
			return
		}
		filter.From = &from
	}
	if toStr := c.Query("to"); toStr != "" {
		to, err := time.Parse(time.RFC3339, toStr)
		if err != nil {
			apierrors.BadRequest(c, "Invalid to date")
			return
		}
		filter.To = &to
	}
	if eventType := c.Query("type"); eventType != "" {
		t := models.CalendarEventType(eventType)
		filter.Type = &t
	}

	events, err := h.calendarService.ListEvents(filter)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch events")
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events})
}

// CreateEvent creates an event on the loaded project's calendar.
func (h *CalendarHandler) CreateEvent(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.NotFound(c, "Project not found")
		return
	}

	type CreateEventRequest struct {
		Title       string     `json:"title" binding:"required,max=255"`
		Description string     `json:"description"`
		Type        string     `json:"type"`
		StartsAt    time.Time  `json:"starts_at" binding:"required"`
		EndsAt      *time.Time `json:"ends_at"`
		Attendees   []string   `json:"attendees"`
	}

	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	var createdBy string
	if user, ok := middleware.GetUser(c); ok {
		createdBy = user.Email
	}

	event, err := h.calendarService.CreateEvent(services.CreateEventInput{
		ProjectID:   project.ID,
		Title:       req.Title,
		Description: req.Description,
		Type:        models.CalendarEventType(req.Type),
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		Attendees:   req.Attendees,
		CreatedBy:   createdBy,
	})
	if err != nil {
		respondCalendarError(c, err)
		return
	}

	c.JSON(http.StatusCreated, event)
}

// UpdateEvent applies a partial update to an event.
func (h *CalendarHandler) UpdateEvent(c *gin.Context) {
	eventID, err := strconv.ParseUint(c.Param("eventId"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid event ID")
		return
	}

	type UpdateEventRequest struct {
		Title       *string    `json:"title"`
		Description *string    `json:"description"`
		Type        *string    `json:"type"`
		StartsAt    *time.Time `json:"starts_at"`
		EndsAt      *time.Time `json:"ends_at"`
		Attendees   *[]string  `json:"attendees"`
	}

	var req UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.UpdateEventInput{
		Title:       req.Title,
		Description: req.Description,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		Attendees:   req.Attendees,
	}
	if req.Type != nil {
		t := models.CalendarEventType(*req.Type)
		input.Type = &t
	}

	event, err := h.calendarService.UpdateEvent(eventID, input)
	if err != nil {
		respondCalendarError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}

// DeleteEvent deletes an event.
func (h *CalendarHandler) DeleteEvent(c *gin.Context) {
	eventID, err := strconv.ParseUint(c.Param("eventId"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid event ID")
		return
	}

	if err := h.calendarService.DeleteEvent(eventID); err != nil {
		respondCalendarError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Event deleted successfully"})
}

// Sync upserts delivery events from the project's feature due dates.
func (h *CalendarHandler) Sync(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.NotFound(c, "Project not found")
		return
	}

	result, err := h.calendarService.SyncFromFeatures(project.ID)
	if err != nil {
		apierrors.InternalError(c, "Failed to sync calendar")
		return
	}

	c.JSON(http.StatusOK, result)
}

func respondCalendarError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrEventNotFound),
		errors.Is(err, services.ErrProjectNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrEventTitleNeeded),
		errors.Is(err, services.ErrEventTimeNeeded):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "")
	}
}
