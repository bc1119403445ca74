package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/openhelpdesk/helpdesk/internal/application/user/usecases"
	"github.com/openhelpdesk/helpdesk/internal/infrastructure/auth"
	"github.com/openhelpdesk/helpdesk/internal/shared/authorization"
	"github.com/openhelpdesk/helpdesk/internal/shared/biztime"
	"github.com/openhelpdesk/helpdesk/internal/shared/config"
	"github.com/openhelpdesk/helpdesk/internal/shared/constants"
	"github.com/openhelpdesk/helpdesk/internal/shared/logger"
	"github.com/openhelpdesk/helpdesk/internal/shared/utils"
)

// SessionVerifier validates a session token and returns its claims.
type SessionVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// RememberAuthenticator turns a remember-me cookie into a fresh session.
type RememberAuthenticator interface {
	Execute(ctx context.Context, cookie, userAgent string) *usecases.RememberAuthResult
}

type AuthMiddleware struct {
	sessions     SessionVerifier
	remember     RememberAuthenticator
	cookieConfig config.CookieConfig
	rememberName string
	logger       logger.Interface
}

func NewAuthMiddleware(sessions SessionVerifier, remember RememberAuthenticator, authConfig config.AuthConfig, logger logger.Interface) *AuthMiddleware {
	return &AuthMiddleware{
		sessions:     sessions,
		remember:     remember,
		cookieConfig: authConfig.Cookie,
		rememberName: authConfig.Remember.CookieName,
		logger:       logger,
	}
}

// Authenticate identifies the caller when it can and never rejects. The
// session cookie wins over a Bearer token; when neither verifies, a valid
// remember-me cookie re-issues the session.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims := m.verify(c); claims != nil {
			userID, err := claims.UserID()
			if err == nil {
				setUser(c, userID, claims.Email, claims.Role)
				c.Next()
				return
			}
		}

		m.tryRemember(c)
		c.Next()
	}
}

// RequireAuth rejects requests without an authenticated user. It must run
// after Authenticate.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id, _ := c.Get(constants.ContextKeyUserID); id == nil || id.(uint) == 0 {
			utils.ErrorResponse(c, http.StatusUnauthorized, "authentication required")
			c.Abort()
			return
		}
		c.Next()
	}
}

func (m *AuthMiddleware) verify(c *gin.Context) *auth.Claims {
	token := utils.GetCookie(c, utils.SessionCookie)
	if token == "" {
		token = bearerToken(c)
	}
	if token == "" {
		return nil
	}
	claims, err := m.sessions.Verify(token)
	if err != nil {
		m.logger.Debugw("session token rejected", "error", err)
		return nil
	}
	return claims
}

func (m *AuthMiddleware) tryRemember(c *gin.Context) {
	if m.remember == nil || m.rememberName == "" {
		return
	}
	cookie := utils.GetCookie(c, m.rememberName)
	if cookie == "" {
		return
	}

	res := m.remember.Execute(c.Request.Context(), cookie, c.Request.UserAgent())
	if res == nil {
		utils.ClearRememberCookie(c, m.cookieConfig, m.rememberName)
		return
	}

	maxAge := int(res.SessionExpiresAt.Sub(biztime.NowUTC()).Seconds())
	utils.SetSessionCookie(c, m.cookieConfig, res.SessionToken, maxAge)
	utils.SetCSRFCookie(c, m.cookieConfig, maxAge)

	setUser(c, res.User.ID(), res.User.Email().String(), res.User.Role())
	c.Set(constants.ContextKeyRemembered, true)
}

func setUser(c *gin.Context, userID uint, email string, role authorization.UserRole) {
	c.Set(constants.ContextKeyUserID, userID)
	c.Set(constants.ContextKeyUserEmail, email)
	c.Set(constants.ContextKeyUserRole, role.String())
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader(constants.HeaderAuthorization)
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// usesBearer reports whether the request authenticates with a header token
// instead of cookies.
func usesBearer(c *gin.Context) bool {
	return utils.GetCookie(c, utils.SessionCookie) == "" && bearerToken(c) != ""
}
