package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openhelpdesk/helpdesk/internal/application/access"
	"github.com/openhelpdesk/helpdesk/internal/application/permission"
	"github.com/openhelpdesk/helpdesk/internal/interfaces/http/handlers/common"
	"github.com/openhelpdesk/helpdesk/internal/shared/logger"
	"github.com/openhelpdesk/helpdesk/internal/shared/utils"
)

type queueGrantService interface {
	Grant(ctx context.Context, actor access.Actor, userID, queueID uint) error
	Revoke(ctx context.Context, actor access.Actor, userID, queueID uint) error
	List(ctx context.Context, actor access.Actor, userID uint) ([]permission.QueueGrantDTO, error)
}

// PermissionHandler manages which queues a staff member may work on when
// per-queue permissions are enabled.
type PermissionHandler struct {
	permissionService queueGrantService
	logger            logger.Interface
}

func NewPermissionHandler(permissionService queueGrantService, logger logger.Interface) *PermissionHandler {
	return &PermissionHandler{
		permissionService: permissionService,
		logger:            logger,
	}
}

// ListUserQueues godoc
// @Summary List a staff member's queues
// @Tags permissions
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} utils.APIResponse
// @Failure 403 {object} utils.APIResponse
// @Router /admin/users/{id}/queues [get]
func (h *PermissionHandler) ListUserQueues(c *gin.Context) {
	userID, err := utils.ParseIDParam(c, "id", "user")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	grants, err := h.permissionService.List(c.Request.Context(), common.Actor(c), userID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", grants)
}

// GrantQueue godoc
// @Summary Grant a staff member access to a queue
// @Tags permissions
// @Produce json
// @Param id path int true "User ID"
// @Param queue_id path int true "Queue ID"
// @Success 200 {object} utils.APIResponse
// @Failure 403 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /admin/users/{id}/queues/{queue_id} [post]
func (h *PermissionHandler) GrantQueue(c *gin.Context) {
	h.change(c, true)
}

// RevokeQueue handles DELETE /admin/users/:id/queues/:queue_id
func (h *PermissionHandler) RevokeQueue(c *gin.Context) {
	h.change(c, false)
}

func (h *PermissionHandler) change(c *gin.Context, grant bool) {
	userID, err := utils.ParseIDParam(c, "id", "user")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	queueID, err := utils.ParseIDParam(c, "queue_id", "queue")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	actor := common.Actor(c)
	if grant {
		err = h.permissionService.Grant(c.Request.Context(), actor, userID, queueID)
	} else {
		err = h.permissionService.Revoke(c.Request.Context(), actor, userID, queueID)
	}
	if err != nil {
		h.logger.Warnw("queue permission change failed", "user_id", userID, "queue_id", queueID, "grant", grant, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	msg := "queue access revoked"
	if grant {
		msg = "queue access granted"
	}
	utils.SuccessResponse(c, http.StatusOK, msg, nil)
}
