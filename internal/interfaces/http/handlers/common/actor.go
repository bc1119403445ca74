// Package common provides shared HTTP handler utilities.
package common

import (
	"github.com/gin-gonic/gin"

	"github.com/openhelpdesk/helpdesk/internal/application/access"
	"github.com/openhelpdesk/helpdesk/internal/shared/authorization"
	"github.com/openhelpdesk/helpdesk/internal/shared/constants"
)

// Actor builds the caller from what the auth middleware stored on the
// context. Requests without a session are anonymous and carry no key.
func Actor(c *gin.Context) access.Actor {
	userID, ok := CurrentUserID(c)
	if !ok {
		return access.AnonymousActor("", "")
	}

	role := authorization.CurrentRole(c)
	kind := access.ActorUser
	if role.IsStaff() {
		kind = access.ActorStaff
	}
	return access.Actor{
		Kind:        kind,
		UserID:      userID,
		Email:       c.GetString(constants.ContextKeyUserEmail),
		IsSuperuser: role.IsSuperuser(),
	}
}

// CurrentUserID returns the authenticated user, if any.
func CurrentUserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id != 0
}
