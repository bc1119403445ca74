package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openhelpdesk/helpdesk/internal/shared/logger"
	"github.com/openhelpdesk/helpdesk/internal/shared/version"
)

const healthPingTimeout = 2 * time.Second

// Pinger checks that a backing service answers.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	db     Pinger
	logger logger.Interface
}

func NewHealthHandler(db Pinger, logger logger.Interface) *HealthHandler {
	return &HealthHandler{db: db, logger: logger}
}

// HealthCheck handles GET /health. It answers 503 when the database is
// unreachable so load balancers stop routing to this instance.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthPingTimeout)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		h.logger.Warnw("health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unhealthy",
			"database": "unreachable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "helpdesk",
		"version": version.Current,
	})
}
