package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/visionarieshub/portal-api/internal/logging"
	"github.com/visionarieshub/portal-api/internal/models"
	"github.com/visionarieshub/portal-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrInvalidRole     = errors.New("invalid role")
	ErrLastSuperadmin  = errors.New("cannot revoke the last superadmin")
	ErrNotInternalUser = errors.New("user is not an internal user")
)

var validRoles = map[models.UserRole]bool{
	models.RoleAdmin:     true,
	models.RolePM:        true,
	models.RoleDeveloper: true,
	models.RoleQA:        true,
	models.RoleClient:    true,
}

// AdminService manages internal-user administration
type AdminService struct {
	userRepo repository.UserRepository
}

// NewAdminService creates a new AdminService
func NewAdminService(userRepo repository.UserRepository) *AdminService {
	return &AdminService{userRepo: userRepo}
}

// ListInternalUsers returns every user flagged as internal
func (s *AdminService) ListInternalUsers() ([]models.User, error) {
	users, err := s.userRepo.ListInternal()
	if err != nil {
		return nil, fmt.Errorf("failed to list internal users: %w", err)
	}
	return users, nil
}

func (s *AdminService) findByEmail(email string) (*models.User, error) {
	user, err := s.userRepo.FindByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// AssignAccess marks a user as internal and grants the given portal routes.
func (s *AdminService) AssignAccess(email string, role models.UserRole, routes []string) (*models.User, error) {
	if !validRoles[role] {
		return nil, ErrInvalidRole
	}

	user, err := s.findByEmail(email)
	if err != nil {
		return nil, err
	}

	user.Internal = true
	user.Role = role
	user.AllowedRoutes = normalizeRoutes(routes)

	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	logging.Logger.Infof("Granted internal access to %s (role %s)", user.Email, role)
	return user, nil
}

// SetPortalAccess replaces the allowed routes of an internal user.
func (s *AdminService) SetPortalAccess(email string, routes []string) (*models.User, error) {
	user, err := s.findByEmail(email)
	if err != nil {
		return nil, err
	}
	if !user.Internal {
		return nil, ErrNotInternalUser
	}

	user.AllowedRoutes = normalizeRoutes(routes)
	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// UpdateUserRole changes an internal user's role.
func (s *AdminService) UpdateUserRole(email string, role models.UserRole) (*models.User, error) {
	if !validRoles[role] {
		return nil, ErrInvalidRole
	}

	user, err := s.findByEmail(email)
	if err != nil {
		return nil, err
	}
	if !user.Internal {
		return nil, ErrNotInternalUser
	}

	user.Role = role
	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// RevokeInternalAccess demotes a user to client and clears their routes.
// The last remaining superadmin cannot be revoked.
func (s *AdminService) RevokeInternalAccess(email string) (*models.User, error) {
	user, err := s.findByEmail(email)
	if err != nil {
		return nil, err
	}

	if user.Superadmin {
		internal, err := s.userRepo.ListInternal()
		if err != nil {
			return nil, fmt.Errorf("failed to list internal users: %w", err)
		}
		superadmins := 0
		for _, u := range internal {
			if u.Superadmin {
				superadmins++
			}
		}
		if superadmins <= 1 {
			return nil, ErrLastSuperadmin
		}
	}

	user.Internal = false
	user.Superadmin = false
	user.Role = models.RoleClient
	user.AllowedRoutes = models.StringList{}

	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	logging.Logger.Infof("Revoked internal access for %s", user.Email)
	return user, nil
}

func normalizeRoutes(routes []string) models.StringList {
	seen := make(map[string]bool, len(routes))
	normalized := make(models.StringList, 0, len(routes))
	for _, route := range routes {
		route = strings.TrimSpace(route)
		if route == "" || seen[route] {
			continue
		}
		if !strings.HasPrefix(route, "/") {
			route = "/" + route
		}
		seen[route] = true
		normalized = append(normalized, route)
	}
	return normalized
}
