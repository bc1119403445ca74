package routes

import (
	"github.com/gin-gonic/gin"

	tickethandlers "github.com/openhelpdesk/helpdesk/internal/interfaces/http/handlers/ticket"
	"github.com/openhelpdesk/helpdesk/internal/interfaces/http/middleware"
	"github.com/openhelpdesk/helpdesk/internal/shared/authorization"
)

type TicketRouteConfig struct {
	TicketHandler  *tickethandlers.TicketHandler
	AuthMiddleware *middleware.AuthMiddleware
}

func SetupTicketRoutes(engine *gin.Engine, config *TicketRouteConfig) {
	h := config.TicketHandler

	// Submission and the submitter's view work without an account.
	engine.POST("/tickets/submit", h.SubmitTicket)
	engine.GET("/view", h.PublicView)
	engine.POST("/view/close", h.PublicClose)
	engine.GET("/attachments/:id", h.DownloadAttachment)

	tickets := engine.Group("/tickets")
	tickets.Use(config.AuthMiddleware.RequireAuth())
	{
		// Collection operations (no ID parameter)
		tickets.GET("", authorization.RequireStaff(), h.ListTickets)
		tickets.POST("/merge", authorization.RequireStaff(), h.MergeTickets)
		tickets.POST("/mass-update", authorization.RequireStaff(), h.MassUpdate)

		// Specific action endpoints
		tickets.POST("/:id/update", h.UpdateTicket)
		tickets.POST("/:id/hold", authorization.RequireStaff(), h.HoldTicket)
		tickets.POST("/:id/unhold", authorization.RequireStaff(), h.UnholdTicket)

		tickets.GET("/:id/cc", authorization.RequireStaff(), h.ListCCs)
		tickets.POST("/:id/cc", authorization.RequireStaff(), h.AddCC)
		tickets.DELETE("/:id/cc/:cc_id", authorization.RequireStaff(), h.DeleteCC)

		tickets.GET("/:id/followup_edit/:followup_id", authorization.RequireStaff(), h.GetFollowUp)
		tickets.POST("/:id/followup_edit/:followup_id", authorization.RequireStaff(), h.EditFollowUp)
		tickets.DELETE("/:id/followup_delete/:followup_id", authorization.RequireStaff(), h.DeleteFollowUp)

		// Generic parameterized routes
		tickets.GET("/:id", h.GetTicket)
		tickets.PATCH("/:id", authorization.RequireStaff(), h.EditTicket)
		tickets.DELETE("/:id", authorization.RequireStaff(), h.DeleteTicket)
	}

	staff := engine.Group("")
	staff.Use(config.AuthMiddleware.RequireAuth(), authorization.RequireStaff())
	{
		staff.GET("/sla", h.SLA)
		staff.GET("/dashboard", h.Dashboard)
	}
}
