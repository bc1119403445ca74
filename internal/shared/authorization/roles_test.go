package authorization

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/openhelpdesk/helpdesk/internal/shared/constants"
)

func TestRoleFor(t *testing.T) {
	assert.Equal(t, RoleSuperuser, RoleFor(false, true))
	assert.Equal(t, RoleStaff, RoleFor(true, false))
	assert.Equal(t, RoleUser, RoleFor(false, false))
	assert.True(t, RoleSuperuser.IsStaff())
	assert.False(t, RoleStaff.IsSuperuser())
	assert.Equal(t, RoleUser, ParseUserRole("root"))
}

func runGuard(t *testing.T, guard gin.HandlerFunc, role string) int {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	if role != "" {
		c.Set(constants.ContextKeyUserRole, role)
	}
	guard(c)
	if c.IsAborted() {
		return w.Code
	}
	return http.StatusOK
}

func TestGuards(t *testing.T) {
	assert.Equal(t, http.StatusOK, runGuard(t, RequireStaff(), "staff"))
	assert.Equal(t, http.StatusForbidden, runGuard(t, RequireStaff(), "user"))
	assert.Equal(t, http.StatusForbidden, runGuard(t, RequireStaff(), ""))
	assert.Equal(t, http.StatusOK, runGuard(t, RequireSuperuser(), "superuser"))
	assert.Equal(t, http.StatusForbidden, runGuard(t, RequireSuperuser(), "staff"))
}
