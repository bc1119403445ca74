package routes

import (
	"github.com/gin-gonic/gin"

	apihandlers "github.com/openhelpdesk/helpdesk/internal/interfaces/http/handlers/api"
	"github.com/openhelpdesk/helpdesk/internal/interfaces/http/middleware"
	"github.com/openhelpdesk/helpdesk/internal/shared/authorization"
)

// APIRouteConfig holds dependencies for the JSON API.
type APIRouteConfig struct {
	APIHandler     *apihandlers.Handler
	AuthMiddleware *middleware.AuthMiddleware
}

// SetupAPIRoutes configures /api. Only the queue list and the caller's own
// tickets are open to non-superusers.
func SetupAPIRoutes(engine *gin.Engine, config *APIRouteConfig) {
	h := config.APIHandler

	api := engine.Group("/api")
	{
		api.GET("/queues", h.ListQueues)
		api.GET("/user_tickets", config.AuthMiddleware.RequireAuth(), h.UserTickets)
	}

	admin := api.Group("")
	admin.Use(config.AuthMiddleware.RequireAuth(), authorization.RequireSuperuser())
	{
		admin.GET("/tickets", h.ListTickets)
		admin.POST("/tickets", h.CreateTicket)
		admin.GET("/tickets/:id", h.GetTicket)
		admin.PATCH("/tickets/:id", h.UpdateTicket)
		admin.PUT("/tickets/:id", h.UpdateTicket)
		admin.DELETE("/tickets/:id", h.DeleteTicket)

		admin.GET("/followups", h.ListFollowUps)
		admin.POST("/followups", h.CreateFollowUp)
		admin.GET("/followups/:id", h.GetFollowUp)
		admin.PATCH("/followups/:id", h.UpdateFollowUp)
		admin.PUT("/followups/:id", h.UpdateFollowUp)
		admin.DELETE("/followups/:id", h.DeleteFollowUp)

		admin.GET("/followups-attachments", h.ListAttachments)
		admin.POST("/followups-attachments", h.CreateAttachment)
		admin.DELETE("/followups-attachments/:id", h.DeleteAttachment)

		admin.POST("/users", h.CreateUser)
	}
}
