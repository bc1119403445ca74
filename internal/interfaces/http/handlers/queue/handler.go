// Package queue exposes queue administration and the public queue list.
package queue

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openhelpdesk/helpdesk/internal/application/access"
	"github.com/openhelpdesk/helpdesk/internal/application/queue/dto"
	"github.com/openhelpdesk/helpdesk/internal/application/queue/usecases"
	"github.com/openhelpdesk/helpdesk/internal/interfaces/http/handlers/common"
	"github.com/openhelpdesk/helpdesk/internal/shared/logger"
	"github.com/openhelpdesk/helpdesk/internal/shared/utils"
)

type Manager interface {
	Create(ctx context.Context, actor access.Actor, in usecases.QueueInput) (*dto.QueueDTO, error)
	Update(ctx context.Context, actor access.Actor, id uint, in usecases.QueueInput) (*dto.QueueDTO, error)
	Delete(ctx context.Context, actor access.Actor, id uint) error
	Get(ctx context.Context, actor access.Actor, id uint) (*dto.QueueDTO, error)
	ListStaff(ctx context.Context, actor access.Actor) ([]*dto.QueueDTO, error)
	ListPublic(ctx context.Context, actor access.Actor) ([]dto.PublicQueueDTO, error)
}

type MailboxTester interface {
	Execute(ctx context.Context, actor access.Actor, queueID uint) error
}

type Handler struct {
	manage Manager
	tester MailboxTester
	logger logger.Interface
}

func NewHandler(manage Manager, tester MailboxTester, log logger.Interface) *Handler {
	return &Handler{manage: manage, tester: tester, logger: log}
}

// QueueRequest carries the editable queue settings. Omitted fields keep
// their current value on update.
type QueueRequest struct {
	Title                 *string `json:"title" binding:"omitempty,max=100"`
	Slug                  *string `json:"slug" binding:"omitempty,max=50"`
	EmailAddress          *string `json:"email_address" binding:"omitempty,email"`
	Locale                *string `json:"locale"`
	AllowPublicSubmission *bool   `json:"allow_public_submission"`
	AllowEmailSubmission  *bool   `json:"allow_email_submission"`
	EscalateDays          *int    `json:"escalate_days" binding:"omitempty,min=0"`
	NewTicketCC           *string `json:"new_ticket_cc"`
	UpdatedTicketCC       *string `json:"updated_ticket_cc"`
	NotifyOnEmailEvents   *bool   `json:"enable_notifications_on_email_events"`
	MailboxType           *string `json:"email_box_type" binding:"omitempty,oneof=pop3 imap local oauth"`
	MailboxHost           *string `json:"email_box_host"`
	MailboxPort           *int    `json:"email_box_port" binding:"omitempty,min=1,max=65535"`
	MailboxSSL            *bool   `json:"email_box_ssl"`
	MailboxUser           *string `json:"email_box_user"`
	MailboxPassword       *string `json:"email_box_pass"`
	MailboxIMAPFolder     *string `json:"email_box_imap_folder"`
	MailboxLocalDir       *string `json:"email_box_local_dir"`
	MailboxInterval       *int    `json:"email_box_interval" binding:"omitempty,min=1"`
	DefaultOwnerID        *uint   `json:"default_owner"`
	DedicatedTimeMinutes  *int    `json:"dedicated_time" binding:"omitempty,min=0"`
}

func (r *QueueRequest) input() usecases.QueueInput {
	return usecases.QueueInput{
		Title:                 r.Title,
		Slug:                  r.Slug,
		EmailAddress:          r.EmailAddress,
		Locale:                r.Locale,
		AllowPublicSubmission: r.AllowPublicSubmission,
		AllowEmailSubmission:  r.AllowEmailSubmission,
		EscalateDays:          r.EscalateDays,
		NewTicketCC:           r.NewTicketCC,
		UpdatedTicketCC:       r.UpdatedTicketCC,
		NotifyOnEmailEvents:   r.NotifyOnEmailEvents,
		MailboxType:           r.MailboxType,
		MailboxHost:           r.MailboxHost,
		MailboxPort:           r.MailboxPort,
		MailboxSSL:            r.MailboxSSL,
		MailboxUser:           r.MailboxUser,
		MailboxPassword:       r.MailboxPassword,
		MailboxIMAPFolder:     r.MailboxIMAPFolder,
		MailboxLocalDir:       r.MailboxLocalDir,
		MailboxInterval:       r.MailboxInterval,
		DefaultOwnerID:        r.DefaultOwnerID,
		DedicatedTimeMinutes:  r.DedicatedTimeMinutes,
	}
}

// ListQueues handles GET /queues. Staff get full settings; everyone else
// gets the queues open to public submission.
// @Summary List queues
// @Tags queues
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Router /queues [get]
func (h *Handler) ListQueues(c *gin.Context) {
	actor := common.Actor(c)
	if actor.Kind == access.ActorStaff {
		queues, err := h.manage.ListStaff(c.Request.Context(), actor)
		if err != nil {
			utils.ErrorResponseWithError(c, err)
			return
		}
		utils.SuccessResponse(c, http.StatusOK, "", queues)
		return
	}
	queues, err := h.manage.ListPublic(c.Request.Context(), actor)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", queues)
}

// GetQueue handles GET /queues/:id
func (h *Handler) GetQueue(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id", "queue")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	q, err := h.manage.Get(c.Request.Context(), common.Actor(c), id)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", q)
}

// CreateQueue handles POST /queues
func (h *Handler) CreateQueue(c *gin.Context) {
	var req QueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BindErrorResponse(c, err)
		return
	}
	q, err := h.manage.Create(c.Request.Context(), common.Actor(c), req.input())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.CreatedResponse(c, q, "Queue created")
}

// UpdateQueue handles PATCH /queues/:id
func (h *Handler) UpdateQueue(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id", "queue")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	var req QueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BindErrorResponse(c, err)
		return
	}
	q, err := h.manage.Update(c.Request.Context(), common.Actor(c), id, req.input())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Queue updated", q)
}

// DeleteQueue handles DELETE /queues/:id
// @Summary Delete a queue
// @Description Refused while the queue still holds tickets.
// @Tags queues
// @Param id path int true "Queue ID"
// @Success 204
// @Failure 409 {object} utils.APIResponse
// @Router /queues/{id} [delete]
func (h *Handler) DeleteQueue(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id", "queue")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	if err := h.manage.Delete(c.Request.Context(), common.Actor(c), id); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.NoContentResponse(c)
}

// TestMailbox handles POST /queues/:id/test-mailbox
func (h *Handler) TestMailbox(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id", "queue")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	if err := h.tester.Execute(c.Request.Context(), common.Actor(c), id); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Mailbox connection succeeded", nil)
}
