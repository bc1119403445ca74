package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openhelpdesk/helpdesk/internal/shared/logger"
	"github.com/openhelpdesk/helpdesk/internal/shared/utils"
)

// Limiter counts attempts per key inside a window. Both the Redis and the
// in-memory limiters satisfy it.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RateLimiter limits a route group per client IP. Limiter errors let the
// request through so an unavailable Redis never blocks logins.
type RateLimiter struct {
	limiter Limiter
	prefix  string
	limit   int
	window  time.Duration
	logger  logger.Interface
}

func NewRateLimiter(limiter Limiter, prefix string, limit int, window time.Duration, logger logger.Interface) *RateLimiter {
	return &RateLimiter{
		limiter: limiter,
		prefix:  prefix,
		limit:   limit,
		window:  window,
		logger:  logger,
	}
}

// Limit returns a Gin middleware that enforces the limit per client IP.
func (rl *RateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.limit <= 0 {
			c.Next()
			return
		}

		key := rl.prefix + ":" + c.ClientIP()
		allowed, err := rl.limiter.Allow(c.Request.Context(), key, rl.limit, rl.window)
		if err != nil {
			rl.logger.Warnw("rate limiter unavailable, allowing request", "key", key, "error", err)
			c.Next()
			return
		}
		if !allowed {
			utils.ErrorResponse(c, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
			c.Abort()
			return
		}

		c.Next()
	}
}
