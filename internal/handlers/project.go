package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	apierrors "github.com/visionarieshub/portal-api/internal/errors"
	"github.com/visionarieshub/portal-api/internal/middleware"
	"github.com/visionarieshub/portal-api/internal/models"
	"github.com/visionarieshub/portal-api/internal/services"
)

// ProjectHandler coordinates project and QA task HTTP handlers.
type ProjectHandler struct {
	projectService *services.ProjectService
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
	}
}

// CreateProject creates a project.
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	type CreateProjectRequest struct {
		Name      string `json:"name" binding:"required,max=255"`
		Siglas    string `json:"siglas" binding:"required"`
		Phase     int    `json:"phase"`
		ClienteID string `json:"cliente_id"`
	}

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	var createdBy string
	if user, ok := middleware.GetUser(c); ok {
		createdBy = user.Email
	}

	project, err := h.projectService.CreateProject(services.CreateProjectInput{
		Name:      req.Name,
		Siglas:    req.Siglas,
		Phase:     req.Phase,
		ClienteID: req.ClienteID,
		CreatedBy: createdBy,
	})
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusCreated, project)
}

// ListProjects returns all projects.
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	projects, err := h.projectService.ListProjects()
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch projects")
		return
	}

	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

// GetProject returns the project loaded by RequireProject.
func (h *ProjectHandler) GetProject(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.NotFound(c, "Project not found")
		return
	}

	c.JSON(http.StatusOK, project)
}

// UpdateProject applies a partial update to a project.
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.NotFound(c, "Project not found")
		return
	}

	type UpdateProjectRequest struct {
		Name      *string `json:"name"`
		Phase     *int    `json:"phase"`
		ClienteID *string `json:"cliente_id"`
		Status    *string `json:"status"`
	}

	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.UpdateProjectInput{
		Name:      req.Name,
		Phase:     req.Phase,
		ClienteID: req.ClienteID,
	}
	if req.Status != nil {
		status := models.ProjectStatus(*req.Status)
		input.Status = &status
	}

	updated, err := h.projectService.UpdateProject(project.ID, input)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// DeleteProject deletes a project.
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.NotFound(c, "Project not found")
		return
	}

	if err := h.projectService.DeleteProject(project.ID); err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Project deleted successfully"})
}

// ListQATasks returns the QA tasks of the loaded project.
func (h *ProjectHandler) ListQATasks(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.NotFound(c, "Project not found")
		return
	}

	tasks, err := h.projectService.ListQATasks(project.ID)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"qa_tasks": tasks})
}

// UpdateQAEstado sets the estado of a QA task.
func (h *ProjectHandler) UpdateQAEstado(c *gin.Context) {
	qaTaskID, err := strconv.ParseUint(c.Param("qaTaskId"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid QA task ID")
		return
	}

	type UpdateEstadoRequest struct {
		Estado string `json:"estado" binding:"required"`
	}

	var req UpdateEstadoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.projectService.UpdateQAEstado(qaTaskID, models.QATaskEstado(req.Estado))
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

func respondProjectError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrProjectNotFound),
		errors.Is(err, services.ErrQATaskNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrNombreRequerido),
		errors.Is(err, services.ErrSiglasInvalidas):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "")
	}
}
