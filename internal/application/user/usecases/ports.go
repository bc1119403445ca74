package usecases

import (
	"context"
	"time"

	"github.com/openhelpdesk/helpdesk/internal/domain/user"
)

// SessionIssuer signs the session cookie value for a logged-in user.
type SessionIssuer interface {
	Issue(u *user.User) (token string, expiresAt time.Time, err error)
}

// RateLimiter counts attempts per key inside a fixed window.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// ResetMailer delivers password reset links.
type ResetMailer interface {
	SendPasswordReset(ctx context.Context, to, username, link string) error
}
