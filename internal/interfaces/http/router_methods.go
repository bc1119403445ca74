package http

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/openhelpdesk/helpdesk/docs"
	"github.com/openhelpdesk/helpdesk/internal/interfaces/http/middleware"
	"github.com/openhelpdesk/helpdesk/internal/interfaces/http/routes"
)

// SetupRoutes installs the global middleware chain and every route group.
// Authenticate runs before CSRF because the CSRF check only applies to
// requests that carry a signed-in user.
func (c *Container) SetupRoutes() {
	e := c.engine
	h := c.hdlrs

	e.Use(middleware.RequestID())
	e.Use(middleware.CustomLogger(c.log.Named("http")))
	e.Use(middleware.Recovery(c.log))
	e.Use(middleware.CORS(c.cfg.Server.AllowedOrigins))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.Metrics(c.metrics))
	e.Use(c.authMiddleware.Authenticate())
	e.Use(middleware.CSRF())

	e.GET("/health", h.healthHandler.HealthCheck)
	if c.cfg.Metrics.Enabled {
		path := c.cfg.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		e.GET(path, gin.WrapH(c.metrics.Handler()))
	}
	e.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	routes.SetupAuthRoutes(e, &routes.AuthRouteConfig{
		AuthHandler:    h.authHandler,
		AuthMiddleware: c.authMiddleware,
		LoginLimiter:   c.loginLimiter,
	})
	routes.SetupTicketRoutes(e, &routes.TicketRouteConfig{
		TicketHandler:  h.ticketHandler,
		AuthMiddleware: c.authMiddleware,
	})
	routes.SetupQueueRoutes(e, &routes.QueueRouteConfig{
		QueueHandler:   h.queueHandler,
		AuthMiddleware: c.authMiddleware,
	})
	if c.cfg.Helpdesk.KBEnabled {
		routes.SetupKBRoutes(e, &routes.KBRouteConfig{
			KBHandler:      h.kbHandler,
			AuthMiddleware: c.authMiddleware,
		})
	}
	routes.SetupAdminRoutes(e, &routes.AdminRouteConfig{
		PermissionHandler: h.permissionHandler,
		AuthMiddleware:    c.authMiddleware,
	})
	routes.SetupAPIRoutes(e, &routes.APIRouteConfig{
		APIHandler:     h.apiHandler,
		AuthMiddleware: c.authMiddleware,
	})
}
