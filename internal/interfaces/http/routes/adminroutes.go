package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/openhelpdesk/helpdesk/internal/interfaces/http/handlers"
	"github.com/openhelpdesk/helpdesk/internal/interfaces/http/middleware"
	"github.com/openhelpdesk/helpdesk/internal/shared/authorization"
)

// AdminRouteConfig holds dependencies for superuser administration routes.
type AdminRouteConfig struct {
	PermissionHandler *handlers.PermissionHandler
	AuthMiddleware    *middleware.AuthMiddleware
}

// SetupAdminRoutes configures per-queue staff grants.
func SetupAdminRoutes(engine *gin.Engine, config *AdminRouteConfig) {
	admin := engine.Group("/admin")
	admin.Use(config.AuthMiddleware.RequireAuth(), authorization.RequireSuperuser())
	{
		admin.GET("/users/:id/queues", config.PermissionHandler.ListUserQueues)
		admin.POST("/users/:id/queues/:queue_id", config.PermissionHandler.GrantQueue)
		admin.DELETE("/users/:id/queues/:queue_id", config.PermissionHandler.RevokeQueue)
	}
}
