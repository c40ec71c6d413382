package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/visionarieshub/portal-api/internal/dto"
	apierrors "github.com/visionarieshub/portal-api/internal/errors"
	"github.com/visionarieshub/portal-api/internal/models"
	"github.com/visionarieshub/portal-api/internal/services"
)

// AdminHandler coordinates internal-user administration handlers.
type AdminHandler struct {
	adminService *services.AdminService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(adminService *services.AdminService) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
	}
}

// ListInternalUsers returns every internal user.
func (h *AdminHandler) ListInternalUsers(c *gin.Context) {
	users, err := h.adminService.ListInternalUsers()
	if err != nil {
		apierrors.InternalError(c, "Failed to list internal users")
		return
	}

	items := make([]dto.UserDTO, len(users))
	for i, user := range users {
		items[i] = dto.ToUserDTO(user)
	}

	c.JSON(http.StatusOK, gin.H{"users": items})
}

// AssignAccess flags a user as internal with a role and portal routes.
func (h *AdminHandler) AssignAccess(c *gin.Context) {
	type AssignAccessRequest struct {
		Email  string   `json:"email" binding:"required,email"`
		Role   string   `json:"role" binding:"required"`
		Routes []string `json:"routes"`
	}

	var req AssignAccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.adminService.AssignAccess(req.Email, models.UserRole(req.Role), req.Routes)
	if err != nil {
		respondAdminError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// SetPortalAccess replaces an internal user's allowed routes.
func (h *AdminHandler) SetPortalAccess(c *gin.Context) {
	type SetPortalAccessRequest struct {
		Email  string   `json:"email" binding:"required,email"`
		Routes []string `json:"routes" binding:"required"`
	}

	var req SetPortalAccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.adminService.SetPortalAccess(req.Email, req.Routes)
	if err != nil {
		respondAdminError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// UpdateUserRole changes an internal user's role.
func (h *AdminHandler) UpdateUserRole(c *gin.Context) {
	type UpdateUserRoleRequest struct {
		Email string `json:"email" binding:"required,email"`
		Role  string `json:"role" binding:"required"`
	}

	var req UpdateUserRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.adminService.UpdateUserRole(req.Email, models.UserRole(req.Role))
	if err != nil {
		respondAdminError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// RevokeInternalAccess demotes an internal user back to client.
func (h *AdminHandler) RevokeInternalAccess(c *gin.Context) {
	type RevokeAccessRequest struct {
		Email string `json:"email" binding:"required,email"`
	}

	var req RevokeAccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.adminService.RevokeInternalAccess(req.Email)
	if err != nil {
		respondAdminError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

func respondAdminError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrInvalidRole):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrNotInternalUser):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrLastSuperadmin):
		apierrors.Conflict(c, err.Error())
	default:
		apierrors.InternalError(c, "")
	}
}
