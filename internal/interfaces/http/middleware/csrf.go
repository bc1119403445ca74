package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/openhelpdesk/helpdesk/internal/shared/constants"
	"github.com/openhelpdesk/helpdesk/internal/shared/utils"
)

// csrfExactPaths lists exact paths exempt from CSRF validation.
// These are reachable without a session, so there is no cookie to protect.
var csrfExactPaths = map[string]struct{}{
	"/login":          {},
	"/register":       {},
	"/setup":          {},
	"/tickets/submit": {},
	"/view/close":     {},
	// Logout is exempt because the CSRF cookie may have expired with the session.
	"/logout": {},
}

// csrfPrefixPaths lists path prefixes exempt from CSRF validation.
var csrfPrefixPaths = []string{
	"/password-reset",
}

// CSRF validates the double-submit token on mutating requests: the
// csrf_token cookie must equal the X-CSRF-Token header. Requests
// authenticated by a Bearer header carry no ambient credentials and skip the
// check.
func CSRF() gin.HandlerFunc {
	return func(c *gin.Context) {
		if isSafeMethod(c.Request.Method) || usesBearer(c) {
			c.Next()
			return
		}

		path := c.Request.URL.Path
		if _, ok := csrfExactPaths[path]; ok {
			c.Next()
			return
		}
		for _, prefix := range csrfPrefixPaths {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		// Anonymous callers hold no session to ride on. Runs after Authenticate,
		// so a session restored from a remember cookie is still checked.
		if _, ok := c.Get(constants.ContextKeyUserID); !ok {
			c.Next()
			return
		}

		cookieToken, err := c.Cookie(utils.CSRFTokenCookie)
		if err != nil || cookieToken == "" {
			utils.ErrorResponse(c, http.StatusForbidden, "missing CSRF token")
			c.Abort()
			return
		}

		headerToken := c.GetHeader(utils.CSRFTokenHeader)
		if headerToken == "" {
			utils.ErrorResponse(c, http.StatusForbidden, "missing CSRF token header")
			c.Abort()
			return
		}

		if subtle.ConstantTimeCompare([]byte(cookieToken), []byte(headerToken)) != 1 {
			utils.ErrorResponse(c, http.StatusForbidden, "invalid CSRF token")
			c.Abort()
			return
		}

		c.Next()
	}
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	default:
		return false
	}
}
