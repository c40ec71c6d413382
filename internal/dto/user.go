package dto

import (
	"sort"

	"github.com/visionarieshub/portal-api/internal/models"
	"github.com/visionarieshub/portal-api/internal/services"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID            uint64          `json:"id"`
	Email         string          `json:"email"`
	Name          string          `json:"name"`
	Role          models.UserRole `json:"role"`
	Internal      bool            `json:"internal"`
	Superadmin    bool            `json:"superadmin"`
	AllowedRoutes []string        `json:"allowed_routes"`
}

// SessionDTO is the authenticated-user payload, including the derived
// capability list the portal uses to decide what to show.
type SessionDTO struct {
	UserDTO
	Capabilities []string `json:"capabilities"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	routes := user.AllowedRoutes
	if routes == nil {
		routes = []string{}
	}
	return UserDTO{
		ID:            user.ID,
		Email:         user.Email,
		Name:          user.Name,
		Role:          user.Role,
		Internal:      user.Internal,
		Superadmin:    user.Superadmin,
		AllowedRoutes: routes,
	}
}

// ToSessionDTO converts a User model to SessionDTO
func ToSessionDTO(user models.User) SessionDTO {
	caps := services.Capabilities(user.Role, user.Superadmin, user.AllowedRoutes)
	names := make([]string, 0, len(caps))
	for c := range caps {
		names = append(names, string(c))
	}
	sort.Strings(names)
	return SessionDTO{
		UserDTO:      ToUserDTO(user),
		Capabilities: names,
	}
}
