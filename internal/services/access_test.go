package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/visionarieshub/portal-api/internal/models"
)

func TestCapabilities_Superadmin(t *testing.T) {
	caps := Capabilities(models.RoleClient, true, nil)

	assert.True(t, caps.Has(CapManageUsers))
	assert.True(t, caps.Has(CapManageFinanzas))
	assert.True(t, caps.Has(CapManageIntegrations))
}

func TestCapabilities_Admin(t *testing.T) {
	caps := Capabilities(models.RoleAdmin, false, nil)

	assert.True(t, caps.Has(CapManageFinanzas))
	assert.True(t, caps.Has(CapManageCotizaciones))
	// User administration stays superadmin-only
	assert.False(t, caps.Has(CapManageUsers))
}

func TestCapabilities_PM(t *testing.T) {
	caps := Capabilities(models.RolePM, false, nil)

	assert.True(t, caps.Has(CapManageProjects))
	assert.True(t, caps.Has(CapViewCotizaciones))
	assert.False(t, caps.Has(CapManageCotizaciones))
	assert.False(t, caps.Has(CapViewFinanzas))
}

func TestCapabilities_Developer(t *testing.T) {
	caps := Capabilities(models.RoleDeveloper, false, nil)

	assert.True(t, caps.Has(CapViewTasks))
	assert.True(t, caps.Has(CapManageTasks))
	assert.False(t, caps.Has(CapManageProjects))
	assert.False(t, caps.Has(CapViewFinanzas))
}

func TestCapabilities_AllowedRoutesGrantExtras(t *testing.T) {
	caps := Capabilities(models.RoleDeveloper, false, []string{"/finanzas", "/cotizaciones"})

	assert.True(t, caps.Has(CapViewFinanzas))
	assert.True(t, caps.Has(CapViewCotizaciones))
	// Route grants are view-only
	assert.False(t, caps.Has(CapManageFinanzas))
}

func TestCapabilities_UnknownRouteIgnored(t *testing.T) {
	caps := Capabilities(models.RoleClient, false, []string{"/no-such-page"})

	assert.True(t, caps.Has(CapViewProjects))
	assert.Len(t, caps, 1)
}
