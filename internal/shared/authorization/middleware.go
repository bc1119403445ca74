package authorization

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openhelpdesk/helpdesk/internal/shared/constants"
	"github.com/openhelpdesk/helpdesk/internal/shared/utils"
)

// CurrentRole reads the role the auth middleware stored on the context.
func CurrentRole(c *gin.Context) UserRole {
	return ParseUserRole(c.GetString(constants.ContextKeyUserRole))
}

// RequireStaff must run after RequireAuth.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !CurrentRole(c).IsStaff() {
			utils.ErrorResponse(c, http.StatusForbidden, "staff access required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireSuperuser guards the admin-only API endpoints.
func RequireSuperuser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !CurrentRole(c).IsSuperuser() {
			utils.ErrorResponse(c, http.StatusForbidden, "admin access required")
			c.Abort()
			return
		}
		c.Next()
	}
}
