package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	apierrors "github.com/visionarieshub/portal-api/internal/errors"
	"github.com/visionarieshub/portal-api/internal/middleware"
	"github.com/visionarieshub/portal-api/internal/models"
	"github.com/visionarieshub/portal-api/internal/services"
)

// FeatureHandler coordinates feature HTTP handlers.
type FeatureHandler struct {
	featureService *services.FeatureService
}

// NewFeatureHandler creates a new FeatureHandler.
func NewFeatureHandler(featureService *services.FeatureService) *FeatureHandler {
	return &FeatureHandler{
		featureService: featureService,
	}
}

func actorEmail(c *gin.Context) string {
	if user, ok := middleware.GetUser(c); ok {
		return user.Email
	}
	return ""
}

// CreateFeature creates a feature inside the loaded project.
func (h *FeatureHandler) CreateFeature(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.NotFound(c, "Project not found")
		return
	}

	type CreateFeatureRequest struct {
		EpicTitle           string     `json:"epic_title" binding:"required,max=255"`
		Title               string     `json:"title" binding:"required,max=255"`
		Description         string     `json:"description"`
		CriteriosAceptacion string     `json:"criterios_aceptacion"`
		Comentarios         string     `json:"comentarios"`
		Tipo                string     `json:"tipo"`
		Categoria           string     `json:"categoria"`
		Priority            string     `json:"priority"`
		Assignee            string     `json:"assignee"`
		EstimatedHours      float64    `json:"estimated_hours"`
		DueDate             *time.Time `json:"due_date"`
		StoryPoints         int        `json:"story_points"`
		Sprint              string     `json:"sprint"`
	}

	var req CreateFeatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	feature, err := h.featureService.CreateFeature(project.ID, services.CreateFeatureInput{
		EpicTitle:           req.EpicTitle,
		Title:               req.Title,
		Description:         req.Description,
		CriteriosAceptacion: req.CriteriosAceptacion,
		Comentarios:         req.Comentarios,
		Tipo:                models.FeatureType(req.Tipo),
		Categoria:           req.Categoria,
		Priority:            models.TaskPriority(req.Priority),
		Assignee:            req.Assignee,
		EstimatedHours:      req.EstimatedHours,
		DueDate:             req.DueDate,
		StoryPoints:         req.StoryPoints,
		Sprint:              req.Sprint,
		CreatedBy:           actorEmail(c),
	})
	if err != nil {
		respondFeatureError(c, err)
		return
	}

	c.JSON(http.StatusCreated, feature)
}

// ListFeatures returns the project's features ordered by id suffix, plus the
// same features grouped by epic.
func (h *FeatureHandler) ListFeatures(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.NotFound(c, "Project not found")
		return
	}

	features, epics, err := h.featureService.ListFeatures(project.ID)
	if err != nil {
		respondFeatureError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"features": features,
		"epics":    epics,
	})
}

// GetFeature returns a single feature.
func (h *FeatureHandler) GetFeature(c *gin.Context) {
	feature, err := h.featureService.GetFeature(c.Param("featureId"))
	if err != nil {
		respondFeatureError(c, err)
		return
	}

	c.JSON(http.StatusOK, feature)
}

// UpdateFeature applies a partial update to a feature.
func (h *FeatureHandler) UpdateFeature(c *gin.Context) {
	type UpdateFeatureRequest struct {
		EpicTitle           *string    `json:"epic_title"`
		Title               *string    `json:"title"`
		Description         *string    `json:"description"`
		CriteriosAceptacion *string    `json:"criterios_aceptacion"`
		Comentarios         *string    `json:"comentarios"`
		Tipo                *string    `json:"tipo"`
		Categoria           *string    `json:"categoria"`
		Status              *string    `json:"status"`
		Priority            *string    `json:"priority"`
		Assignee            *string    `json:"assignee"`
		EstimatedHours      *float64   `json:"estimated_hours"`
		ActualHours         *float64   `json:"actual_hours"`
		DueDate             *time.Time `json:"due_date"`
		GithubBranch        *string    `json:"github_branch"`
		Commits             *int       `json:"commits"`
		StoryPoints         *int       `json:"story_points"`
		Sprint              *string    `json:"sprint"`
	}

	var req UpdateFeatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.UpdateFeatureInput{
		EpicTitle:           req.EpicTitle,
		Title:               req.Title,
		Description:         req.Description,
		CriteriosAceptacion: req.CriteriosAceptacion,
		Comentarios:         req.Comentarios,
		Assignee:            req.Assignee,
		EstimatedHours:      req.EstimatedHours,
		ActualHours:         req.ActualHours,
		DueDate:             req.DueDate,
		GithubBranch:        req.GithubBranch,
		Commits:             req.Commits,
		StoryPoints:         req.StoryPoints,
		Sprint:              req.Sprint,
	}
	if req.Tipo != nil {
		tipo := models.FeatureType(*req.Tipo)
		input.Tipo = &tipo
	}
	if req.Categoria != nil {
		input.Categoria = req.Categoria
	}
	if req.Status != nil {
		status := models.FeatureStatus(*req.Status)
		input.Status = &status
	}
	if req.Priority != nil {
		priority := models.TaskPriority(*req.Priority)
		input.Priority = &priority
	}

	feature, err := h.featureService.UpdateFeature(c.Param("featureId"), input, actorEmail(c))
	if err != nil {
		respondFeatureError(c, err)
		return
	}

	c.JSON(http.StatusOK, feature)
}

// DeleteFeature deletes a feature.
func (h *FeatureHandler) DeleteFeature(c *gin.Context) {
	if err := h.featureService.DeleteFeature(c.Param("featureId")); err != nil {
		respondFeatureError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Feature deleted successfully"})
}

// BulkDelete deletes the selected features, excluding terminal ones.
func (h *FeatureHandler) BulkDelete(c *gin.Context) {
	type BulkDeleteRequest struct {
		IDs []string `json:"ids" binding:"required"`
	}

	var req BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.featureService.BulkDelete(req.IDs)
	if err != nil {
		respondFeatureError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// MoveToQA creates (or returns the existing) QA task for a feature.
func (h *FeatureHandler) MoveToQA(c *gin.Context) {
	qaTask, created, err := h.featureService.MoveToQA(c.Param("featureId"), actorEmail(c))
	if err != nil {
		respondFeatureError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, qaTask)
}

// TrackTime applies a timer action to a feature.
func (h *FeatureHandler) TrackTime(c *gin.Context) {
	type TrackTimeRequest struct {
		Action string `json:"action" binding:"required"`
	}

	var req TrackTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	feature, message, err := h.featureService.TrackTime(c.Param("featureId"), services.TimerAction(req.Action), time.Now())
	if err != nil {
		respondFeatureError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"feature": feature,
		"message": message,
	})
}

// AnalyzeCSV suggests a column mapping for an uploaded feature CSV.
func (h *FeatureHandler) AnalyzeCSV(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		apierrors.BadRequest(c, "CSV file is required")
		return
	}
	defer file.Close()

	analysis, err := h.featureService.AnalyzeCSV(file)
	if err != nil {
		respondFeatureError(c, err)
		return
	}

	c.JSON(http.StatusOK, analysis)
}

// UploadCSV creates features from a CSV with a confirmed column mapping.
func (h *FeatureHandler) UploadCSV(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.NotFound(c, "Project not found")
		return
	}

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		apierrors.BadRequest(c, "CSV file is required")
		return
	}
	defer file.Close()

	mapping := map[string]string{}
	if raw := c.PostForm("mapping"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &mapping); err != nil {
			apierrors.BadRequest(c, "Invalid column mapping")
			return
		}
	}

	result, err := h.featureService.UploadCSV(project.ID, file, mapping, actorEmail(c))
	if err != nil {
		respondFeatureError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ReEstimate asks the AI for fresh estimates on open features.
func (h *FeatureHandler) ReEstimate(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.NotFound(c, "Project not found")
		return
	}

	result, err := h.featureService.ReEstimate(c.Request.Context(), project.ID)
	if err != nil {
		respondFeatureError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func respondFeatureError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrFeatureNotFound),
		errors.Is(err, services.ErrProjectNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrFeatureTerminal):
		apierrors.TerminalState(c, err.Error())
	case errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrEpicTitleRequired),
		errors.Is(err, services.ErrNoFeaturesSelected),
		errors.Is(err, services.ErrEmptyCSV),
		errors.Is(err, services.ErrInvalidTimerAction):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrAIServiceNotConfigured):
		apierrors.ServiceUnavailable(c, err.Error())
	default:
		apierrors.InternalError(c, "")
	}
}
