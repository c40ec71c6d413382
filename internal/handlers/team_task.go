package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/visionarieshub/portal-api/internal/dto"
	apierrors "github.com/visionarieshub/portal-api/internal/errors"
	"github.com/visionarieshub/portal-api/internal/middleware"
	"github.com/visionarieshub/portal-api/internal/models"
	"github.com/visionarieshub/portal-api/internal/repository"
	"github.com/visionarieshub/portal-api/internal/services"
	"github.com/visionarieshub/portal-api/internal/utils"
)

// TeamTaskHandler coordinates team task HTTP handlers.
type TeamTaskHandler struct {
	taskService *services.TeamTaskService
	authService *services.AuthService
}

// NewTeamTaskHandler creates a new TeamTaskHandler.
func NewTeamTaskHandler(taskService *services.TeamTaskService, authService *services.AuthService) *TeamTaskHandler {
	return &TeamTaskHandler{
		taskService: taskService,
		authService: authService,
	}
}

func (h *TeamTaskHandler) currentUserEmail(c *gin.Context) string {
	if user, ok := middleware.GetUser(c); ok {
		return user.Email
	}
	userID, exists := middleware.GetUserID(c)
	if !exists {
		return ""
	}
	user, err := h.authService.GetUser(userID)
	if err != nil {
		return ""
	}
	return user.Email
}

// CreateTask creates a team task.
func (h *TeamTaskHandler) CreateTask(c *gin.Context) {
	type CreateTaskRequest struct {
		Title          string     `json:"title" binding:"required,max=255"`
		Description    string     `json:"description"`
		Category       string     `json:"category" binding:"required"`
		CustomCategory string     `json:"custom_category"`
		Priority       string     `json:"priority"`
		Assignee       string     `json:"assignee"`
		ProjectID      *uint64    `json:"project_id"`
		ProjectName    string     `json:"project_name"`
		DueDate        *time.Time `json:"due_date"`
		EstimatedHours float64    `json:"estimated_hours"`
		Comentarios    string     `json:"comentarios"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.CreateTask(services.CreateTeamTaskInput{
		Title:          req.Title,
		Description:    req.Description,
		Category:       req.Category,
		CustomCategory: req.CustomCategory,
		Priority:       models.TaskPriority(req.Priority),
		Assignee:       req.Assignee,
		ProjectID:      req.ProjectID,
		ProjectName:    req.ProjectName,
		DueDate:        req.DueDate,
		EstimatedHours: req.EstimatedHours,
		Comentarios:    req.Comentarios,
		CreatedBy:      h.currentUserEmail(c),
	})
	if err != nil {
		respondTeamTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTeamTaskDTO(*task, time.Now()))
}

// ListTasks returns team tasks with optional filters and pagination.
func (h *TeamTaskHandler) ListTasks(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	filter := repository.TeamTaskFilter{
		Page:     params.Page,
		PageSize: params.Limit,
	}

	if status := c.Query("status"); status != "" {
		s := models.TeamTaskStatus(status)
		filter.Status = &s
	}
	if category := c.Query("category"); category != "" {
		filter.Category = &category
	}
	if assignee := c.Query("assignee"); assignee != "" {
		filter.Assignee = &assignee
	}
	if projectIDStr := c.Query("project_id"); projectIDStr != "" {
		projectID, err := strconv.ParseUint(projectIDStr, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid project_id")
			return
		}
		filter.ProjectID = &projectID
	}

	tasks, total, err := h.taskService.ListTasks(filter)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch tasks")
		return
	}

	c.JSON(http.StatusOK, dto.ToTeamTaskListResponse(tasks, params.Page, params.Limit, total))
}

// GetTask returns a single team task.
func (h *TeamTaskHandler) GetTask(c *gin.Context) {
	id, ok := parseTaskID(c)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(id)
	if err != nil {
		respondTeamTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTeamTaskDTO(*task, time.Now()))
}

// UpdateTask applies a partial update to a team task.
func (h *TeamTaskHandler) UpdateTask(c *gin.Context) {
	id, ok := parseTaskID(c)
	if !ok {
		return
	}

	type UpdateTaskRequest struct {
		Title          *string    `json:"title"`
		Description    *string    `json:"description"`
		Category       *string    `json:"category"`
		CustomCategory *string    `json:"custom_category"`
		Status         *string    `json:"status"`
		Priority       *string    `json:"priority"`
		Assignee       *string    `json:"assignee"`
		DueDate        *time.Time `json:"due_date"`
		ClearDueDate   bool       `json:"clear_due_date"`
		EstimatedHours *float64   `json:"estimated_hours"`
		ActualHours    *float64   `json:"actual_hours"`
		Comentarios    *string    `json:"comentarios"`
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.UpdateTeamTaskInput{
		Title:          req.Title,
		Description:    req.Description,
		Category:       req.Category,
		CustomCategory: req.CustomCategory,
		Assignee:       req.Assignee,
		DueDate:        req.DueDate,
		ClearDueDate:   req.ClearDueDate,
		EstimatedHours: req.EstimatedHours,
		ActualHours:    req.ActualHours,
		Comentarios:    req.Comentarios,
	}
	if req.Status != nil {
		status := models.TeamTaskStatus(*req.Status)
		input.Status = &status
	}
	if req.Priority != nil {
		priority := models.TaskPriority(*req.Priority)
		input.Priority = &priority
	}

	task, err := h.taskService.UpdateTask(id, input)
	if err != nil {
		respondTeamTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTeamTaskDTO(*task, time.Now()))
}

// DeleteTask deletes a team task.
func (h *TeamTaskHandler) DeleteTask(c *gin.Context) {
	id, ok := parseTaskID(c)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(id); err != nil {
		respondTeamTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

// TrackTime applies a timer action (start, pause, complete) to a task.
func (h *TeamTaskHandler) TrackTime(c *gin.Context) {
	id, ok := parseTaskID(c)
	if !ok {
		return
	}

	type TrackTimeRequest struct {
		Action string `json:"action" binding:"required"`
	}

	var req TrackTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, message, err := h.taskService.TrackTime(id, services.TimerAction(req.Action), time.Now())
	if err != nil {
		respondTeamTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"task":    dto.ToTeamTaskDTO(*task, time.Now()),
		"message": message,
	})
}

// GenerateFromTranscript turns a meeting transcript into task drafts.
func (h *TeamTaskHandler) GenerateFromTranscript(c *gin.Context) {
	type GenerateRequest struct {
		Transcript string `json:"transcript" binding:"required"`
	}

	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	drafts, err := h.taskService.GenerateFromTranscript(c.Request.Context(), req.Transcript)
	if err != nil {
		respondTeamTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": drafts})
}

// ConfirmGenerated persists the drafts the user accepted.
func (h *TeamTaskHandler) ConfirmGenerated(c *gin.Context) {
	type ConfirmRequest struct {
		Tasks []struct {
			Title          string  `json:"title" binding:"required"`
			Description    string  `json:"description"`
			Category       string  `json:"category"`
			CustomCategory string  `json:"custom_category"`
			Priority       string  `json:"priority"`
			Assignee       string  `json:"assignee"`
			EstimatedHours float64 `json:"estimated_hours"`
		} `json:"tasks" binding:"required"`
	}

	var req ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	createdBy := h.currentUserEmail(c)
	drafts := make([]services.CreateTeamTaskInput, len(req.Tasks))
	for i, t := range req.Tasks {
		drafts[i] = services.CreateTeamTaskInput{
			Title:          t.Title,
			Description:    t.Description,
			Category:       t.Category,
			CustomCategory: t.CustomCategory,
			Priority:       models.TaskPriority(t.Priority),
			Assignee:       t.Assignee,
			EstimatedHours: t.EstimatedHours,
			CreatedBy:      createdBy,
		}
	}

	created, errs := h.taskService.CreateConfirmedDrafts(drafts)
	c.JSON(http.StatusOK, gin.H{
		"created": len(created),
		"errors":  errs,
	})
}

// ImportTrelloJSON ingests a Trello board export.
func (h *TeamTaskHandler) ImportTrelloJSON(c *gin.Context) {
	var export services.TrelloExport
	if err := c.ShouldBindJSON(&export); err != nil {
		apierrors.BadRequest(c, "Invalid Trello export")
		return
	}

	result, err := h.taskService.ImportTrelloJSON(c.Request.Context(), export, h.currentUserEmail(c))
	if err != nil {
		respondTeamTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// DisconnectTrello clears Trello links from all imported tasks.
func (h *TeamTaskHandler) DisconnectTrello(c *gin.Context) {
	cleared, err := h.taskService.DisconnectTrello()
	if err != nil {
		apierrors.InternalError(c, "Failed to disconnect Trello")
		return
	}

	c.JSON(http.StatusOK, gin.H{"cleared": cleared})
}

func parseTaskID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID")
		return 0, false
	}
	return id, true
}

func respondTeamTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTeamTaskNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrUnknownCategory),
		errors.Is(err, services.ErrCustomCategoryRequired),
		errors.Is(err, services.ErrTranscriptTooShort),
		errors.Is(err, services.ErrTranscriptTooLong),
		errors.Is(err, services.ErrTrelloCardsMissing),
		errors.Is(err, services.ErrInvalidTimerAction):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrAIServiceNotConfigured),
		errors.Is(err, services.ErrAINoTasksGenerated):
		apierrors.ServiceUnavailable(c, err.Error())
	default:
		apierrors.InternalError(c, "")
	}
}
