package routes

import (
	"github.com/gin-gonic/gin"

	queuehandlers "github.com/openhelpdesk/helpdesk/internal/interfaces/http/handlers/queue"
	"github.com/openhelpdesk/helpdesk/internal/interfaces/http/middleware"
	"github.com/openhelpdesk/helpdesk/internal/shared/authorization"
)

type QueueRouteConfig struct {
	QueueHandler   *queuehandlers.Handler
	AuthMiddleware *middleware.AuthMiddleware
}

func SetupQueueRoutes(engine *gin.Engine, config *QueueRouteConfig) {
	h := config.QueueHandler

	queues := engine.Group("/queues")
	queues.Use(config.AuthMiddleware.RequireAuth(), authorization.RequireStaff())
	{
		queues.GET("", h.ListQueues)
		queues.POST("", h.CreateQueue)

		queues.POST("/:id/test-mailbox", h.TestMailbox)

		queues.GET("/:id", h.GetQueue)
		queues.PATCH("/:id", h.UpdateQueue)
		queues.DELETE("/:id", h.DeleteQueue)
	}
}
