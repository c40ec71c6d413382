package services

import (
	"github.com/visionarieshub/portal-api/internal/models"
)

// Capability is a named permission within the portal.
type Capability string

const (
	CapViewProjects       Capability = "projects:view"
	CapManageProjects     Capability = "projects:manage"
	CapViewTasks          Capability = "tasks:view"
	CapManageTasks        Capability = "tasks:manage"
	CapViewFinanzas       Capability = "finanzas:view"
	CapManageFinanzas     Capability = "finanzas:manage"
	CapViewCotizaciones   Capability = "cotizaciones:view"
	CapManageCotizaciones Capability = "cotizaciones:manage"
	CapManageUsers        Capability = "users:manage"
	CapManageIntegrations Capability = "integrations:manage"
)

// CapabilitySet is the set of permissions derived for a session.
type CapabilitySet map[Capability]bool

// Has reports whether the set contains the capability.
func (s CapabilitySet) Has(c Capability) bool {
	return s[c]
}

// routeCapabilities maps portal routes (as stored in allowedRoutes) to extra
// capabilities granted on top of the role baseline.
var routeCapabilities = map[string][]Capability{
	"/finanzas":     {CapViewFinanzas},
	"/cotizaciones": {CapViewCotizaciones},
	"/projects":     {CapViewProjects},
	"/equipo":       {CapViewTasks},
}

// Capabilities derives the permission set for a user from role, superadmin
// flag and allowed routes. Pure: no session or request state involved.
func Capabilities(role models.UserRole, superadmin bool, allowedRoutes []string) CapabilitySet {
	caps := CapabilitySet{}

	if superadmin {
		for _, c := range []Capability{
			CapViewProjects, CapManageProjects,
			CapViewTasks, CapManageTasks,
			CapViewFinanzas, CapManageFinanzas,
			CapViewCotizaciones, CapManageCotizaciones,
			CapManageUsers, CapManageIntegrations,
		} {
			caps[c] = true
		}
		return caps
	}

	switch role {
	case models.RoleAdmin:
		caps[CapViewProjects] = true
		caps[CapManageProjects] = true
		caps[CapViewTasks] = true
		caps[CapManageTasks] = true
		caps[CapViewFinanzas] = true
		caps[CapManageFinanzas] = true
		caps[CapViewCotizaciones] = true
		caps[CapManageCotizaciones] = true
		caps[CapManageIntegrations] = true
	case models.RolePM:
		caps[CapViewProjects] = true
		caps[CapManageProjects] = true
		caps[CapViewTasks] = true
		caps[CapManageTasks] = true
		caps[CapViewCotizaciones] = true
	case models.RoleDeveloper, models.RoleQA:
		caps[CapViewProjects] = true
		caps[CapViewTasks] = true
		caps[CapManageTasks] = true
	case models.RoleClient:
		caps[CapViewProjects] = true
	}

	for _, route := range allowedRoutes {
		for _, c := range routeCapabilities[route] {
			caps[c] = true
		}
	}

	return caps
}
