package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/visionarieshub/portal-api/internal/constants"
	"github.com/visionarieshub/portal-api/internal/database"
	apierrors "github.com/visionarieshub/portal-api/internal/errors"
	"github.com/visionarieshub/portal-api/internal/models"
)

// RequireProject resolves the :id URL parameter into a project record and
// stores it in context for the handlers below it.
func RequireProject() gin.HandlerFunc {
	return func(c *gin.Context) {
		projectIDStr := c.Param("id")
		projectID, err := strconv.ParseUint(projectIDStr, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid project ID")
			c.Abort()
			return
		}

		var project models.Project
		if err := database.GetDB().First(&project, projectID).Error; err != nil {
			apierrors.NotFound(c, "Project not found")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyProject, project)
		c.Next()
	}
}

// GetProject retrieves the loaded project from context
func GetProject(c *gin.Context) (*models.Project, bool) {
	value, exists := c.Get(constants.ContextKeyProject)
	if !exists {
		return nil, false
	}
	project, ok := value.(models.Project)
	if !ok {
		return nil, false
	}
	return &project, true
}
