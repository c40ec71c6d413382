package middleware

import (
	"github.com/gin-gonic/gin"
	apierrors "github.com/visionarieshub/portal-api/internal/errors"
	"github.com/visionarieshub/portal-api/internal/services"
)

// RequireInternal allows only users flagged as internal.
// Must run after LoadUser.
func RequireInternal() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, exists := GetUser(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		if !user.Internal {
			apierrors.Forbidden(c, "Internal access required")
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireSuperadmin allows only superadmins.
// Must run after LoadUser.
func RequireSuperadmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, exists := GetUser(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		if !user.Superadmin {
			apierrors.Forbidden(c, "Superadmin access required")
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireCapability gates a route on a derived permission.
// Must run after LoadUser.
func RequireCapability(capability services.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, exists := GetUser(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		caps := services.Capabilities(user.Role, user.Superadmin, user.AllowedRoutes)
		if !caps.Has(capability) {
			apierrors.Forbidden(c, "")
			c.Abort()
			return
		}

		c.Next()
	}
}
