package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/openhelpdesk/helpdesk/internal/interfaces/http/handlers"
	"github.com/openhelpdesk/helpdesk/internal/interfaces/http/middleware"
)

// AuthRouteConfig holds dependencies for authentication and account routes.
type AuthRouteConfig struct {
	AuthHandler    *handlers.AuthHandler
	AuthMiddleware *middleware.AuthMiddleware
	LoginLimiter   *middleware.RateLimiter
}

// SetupAuthRoutes configures login, registration, password reset and user
// settings routes.
func SetupAuthRoutes(engine *gin.Engine, cfg *AuthRouteConfig) {
	engine.POST("/login", cfg.LoginLimiter.Limit(), cfg.AuthHandler.Login)
	engine.POST("/logout", cfg.AuthMiddleware.RequireAuth(), cfg.AuthHandler.Logout)
	engine.POST("/register", cfg.LoginLimiter.Limit(), cfg.AuthHandler.Register)
	engine.POST("/setup", cfg.AuthHandler.Setup)

	reset := engine.Group("/password-reset")
	{
		reset.GET("", cfg.AuthHandler.PasswordResetForm)
		// Per-IP and per-email limits live in the use case.
		reset.POST("", cfg.AuthHandler.RequestPasswordReset)
		reset.GET("/confirm", cfg.AuthHandler.CheckPasswordReset)
		reset.POST("/confirm", cfg.AuthHandler.ConfirmPasswordReset)
	}

	account := engine.Group("")
	account.Use(cfg.AuthMiddleware.RequireAuth())
	{
		account.GET("/me", cfg.AuthHandler.Me)
		account.GET("/settings", cfg.AuthHandler.GetSettings)
		account.PUT("/settings", cfg.AuthHandler.SaveSettings)
	}
}
