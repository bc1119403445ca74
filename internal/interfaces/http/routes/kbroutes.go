package routes

import (
	"github.com/gin-gonic/gin"

	kbhandlers "github.com/openhelpdesk/helpdesk/internal/interfaces/http/handlers/kb"
	"github.com/openhelpdesk/helpdesk/internal/interfaces/http/middleware"
	"github.com/openhelpdesk/helpdesk/internal/shared/authorization"
)

// KBRouteConfig holds dependencies for knowledge base routes.
type KBRouteConfig struct {
	KBHandler      *kbhandlers.Handler
	AuthMiddleware *middleware.AuthMiddleware
}

// SetupKBRoutes configures the public knowledge base and its staff editor.
func SetupKBRoutes(engine *gin.Engine, config *KBRouteConfig) {
	h := config.KBHandler
	ref := "/:" + kbhandlers.RefParam

	kb := engine.Group("/kb")
	{
		kb.GET("", h.ListCategories)
		kb.GET("/item/:id", h.GetItem)
		kb.GET(ref, h.GetCategory)
		kb.POST(ref+"/vote/:direction", config.AuthMiddleware.RequireAuth(), h.Vote)
	}

	admin := engine.Group("/admin/kb")
	admin.Use(config.AuthMiddleware.RequireAuth(), authorization.RequireStaff())
	{
		admin.POST("/categories", h.CreateCategory)
		admin.PUT("/categories/:id", h.UpdateCategory)
		admin.DELETE("/categories/:id", h.DeleteCategory)

		admin.POST("/items", h.CreateItem)
		admin.PUT("/items/:id", h.UpdateItem)
		admin.DELETE("/items/:id", h.DeleteItem)
	}
}
