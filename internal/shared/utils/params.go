package utils

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/openhelpdesk/helpdesk/internal/shared/errors"
)

// ParseIDParam parses a positive numeric ID from a URL path parameter.
// entityName is used in error messages (e.g. "ticket", "follow-up").
func ParseIDParam(c *gin.Context, paramName, entityName string) (uint, error) {
	raw := c.Param(paramName)
	if raw == "" {
		return 0, errors.NewValidationError(entityName + " ID is required")
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, errors.NewValidationError("invalid " + entityName + " ID")
	}
	return uint(id), nil
}

// ParseCSVQuery splits a comma separated query value, dropping empty entries.
func ParseCSVQuery(c *gin.Context, key string) []string {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Truncate shortens s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// ParseIDsQuery reads a comma separated list of positive ids.
func ParseIDsQuery(c *gin.Context, key string) ([]uint, error) {
	raw := ParseCSVQuery(c, key)
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]uint, 0, len(raw))
	for _, s := range raw {
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil || n == 0 {
			return nil, errors.NewValidationError("invalid id in "+key+": "+s, key)
		}
		out = append(out, uint(n))
	}
	return out, nil
}
