package utils

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openhelpdesk/helpdesk/internal/shared/config"
)

const (
	// SessionCookie carries the signed session JWT.
	SessionCookie   = "helpdesk_session"
	CSRFTokenCookie = "csrf_token"
	CSRFTokenHeader = "X-CSRF-Token"

	csrfTokenBytes = 32
)

// SetSessionCookie issues the HttpOnly session cookie.
func SetSessionCookie(c *gin.Context, cookieConfig config.CookieConfig, token string, maxAge int) {
	setHTTPOnly(c, cookieConfig, SessionCookie, token, maxAge)
}

func ClearSessionCookie(c *gin.Context, cookieConfig config.CookieConfig) {
	setHTTPOnly(c, cookieConfig, SessionCookie, "", -1)
}

// SetRememberCookie issues the persistent login cookie under name.
// The value is "<userID>:<rawToken>".
func SetRememberCookie(c *gin.Context, cookieConfig config.CookieConfig, name, value string, maxAge int) {
	setHTTPOnly(c, cookieConfig, name, value, maxAge)
}

func ClearRememberCookie(c *gin.Context, cookieConfig config.CookieConfig, name string) {
	setHTTPOnly(c, cookieConfig, name, "", -1)
}

// GetCookie returns the cookie value or "" when absent.
func GetCookie(c *gin.Context, name string) string {
	v, err := c.Cookie(name)
	if err != nil {
		return ""
	}
	return v
}

// SetCSRFCookie issues a fresh double-submit token. It is readable by
// scripts so the frontend can echo it in X-CSRF-Token.
func SetCSRFCookie(c *gin.Context, cookieConfig config.CookieConfig, maxAge int) {
	c.SetSameSite(parseSameSite(cookieConfig.SameSite))
	c.SetCookie(CSRFTokenCookie, generateCSRFToken(), maxAge, cookieConfig.Path, cookieConfig.Domain, cookieConfig.Secure, false)
}

func ClearCSRFCookie(c *gin.Context, cookieConfig config.CookieConfig) {
	c.SetSameSite(parseSameSite(cookieConfig.SameSite))
	c.SetCookie(CSRFTokenCookie, "", -1, cookieConfig.Path, cookieConfig.Domain, cookieConfig.Secure, false)
}

func generateCSRFToken() string {
	b := make([]byte, csrfTokenBytes)
	if _, err := rand.Read(b); err != nil {
		panic("csrf: failed to generate random token: " + err.Error())
	}
	return hex.EncodeToString(b)
}

func setHTTPOnly(c *gin.Context, cookieConfig config.CookieConfig, name, value string, maxAge int) {
	c.SetSameSite(parseSameSite(cookieConfig.SameSite))
	c.SetCookie(name, value, maxAge, cookieConfig.Path, cookieConfig.Domain, cookieConfig.Secure, true)
}

func parseSameSite(sameSite string) http.SameSite {
	switch sameSite {
	case "Strict":
		return http.SameSiteStrictMode
	case "None":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
