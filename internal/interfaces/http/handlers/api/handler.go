// Package api is the JSON REST surface under /api. Writes are limited to
// superusers; reads are scoped to the requesting user.
package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openhelpdesk/helpdesk/internal/application/ticket/forms"
	ticketuc "github.com/openhelpdesk/helpdesk/internal/application/ticket/usecases"
	useruc "github.com/openhelpdesk/helpdesk/internal/application/user/usecases"
	"github.com/openhelpdesk/helpdesk/internal/interfaces/http/handlers/common"
	"github.com/openhelpdesk/helpdesk/internal/shared/constants"
	"github.com/openhelpdesk/helpdesk/internal/shared/errors"
	"github.com/openhelpdesk/helpdesk/internal/shared/logger"
	"github.com/openhelpdesk/helpdesk/internal/shared/utils"
)

// UseCases groups what the API executes.
type UseCases struct {
	UserTickets userTicketLister
	ListTickets ticketLister
	GetTicket   ticketGetter
	Submit      ticketSubmitter
	Edit        ticketEditor
	Update      ticketUpdater
	Delete      ticketDeleter
	FollowUps   followUpService
	Attachments attachmentService
	Queues      queueLister
	Users       userCreator
}

type Handler struct {
	uc     UseCases
	logger logger.Interface
}

func NewHandler(uc UseCases, log logger.Interface) *Handler {
	return &Handler{uc: uc, logger: log}
}

type TicketRequest struct {
	QueueID        uint       `json:"queue" binding:"required"`
	Title          string     `json:"title" binding:"required,max=200"`
	Description    string     `json:"description"`
	SubmitterEmail string     `json:"submitter_email" binding:"omitempty,email"`
	Priority       int        `json:"priority" binding:"omitempty,min=1,max=5"`
	DueDate        *time.Time `json:"due_date"`
	AssignedTo     *uint      `json:"assigned_to"`
}

type TicketPatchRequest struct {
	Title          *string    `json:"title" binding:"omitempty,max=200"`
	Description    *string    `json:"description"`
	Priority       *int       `json:"priority" binding:"omitempty,min=1,max=5"`
	DueDate        *time.Time `json:"due_date"`
	SubmitterEmail *string    `json:"submitter_email" binding:"omitempty,email"`
	AssignedTo     *uint      `json:"assigned_to"`
}

type FollowUpRequest struct {
	TicketID  uint   `json:"ticket" binding:"required"`
	Title     string `json:"title" binding:"max=200"`
	Comment   string `json:"comment"`
	Public    bool   `json:"public"`
	NewStatus string `json:"new_status"`
	TimeSpent int    `json:"time_spent" binding:"min=0"`
}

type FollowUpPatchRequest struct {
	Title     string `json:"title" binding:"max=200"`
	Comment   string `json:"comment"`
	Public    bool   `json:"public"`
	TimeSpent int    `json:"time_spent" binding:"min=0"`
}

type UserRequest struct {
	Username    string `json:"username" binding:"required,max=150"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required"`
	FirstName   string `json:"first_name" binding:"max=150"`
	LastName    string `json:"last_name" binding:"max=150"`
	IsStaff     bool   `json:"is_staff"`
	IsSuperuser bool   `json:"is_superuser"`
}

// UserTickets handles GET /api/user_tickets
// @Summary List the caller's own tickets
// @Tags api
// @Produce json
// @Param queue query string false "comma separated queue ids"
// @Param status query string false "comma separated statuses"
// @Param sort query string false "asc or desc on created"
// @Param page query int false "page"
// @Success 200 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse
// @Router /api/user_tickets [get]
func (h *Handler) UserTickets(c *gin.Context) {
	queueIDs, err := utils.ParseIDsQuery(c, "queue")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	result, err := h.uc.UserTickets.Execute(c.Request.Context(), ticketuc.ListUserTicketsQuery{
		Actor:    common.Actor(c),
		QueueIDs: queueIDs,
		Statuses: utils.ParseCSVQuery(c, "status"),
		SortDesc: !strings.EqualFold(c.Query("sort"), "asc"),
		Page:     utils.FixedPagination(c, constants.UserTicketsPageSize).Page,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.ListSuccessResponse(c, result.Tickets, result.Total, result.Page, result.PageSize)
}

// ListTickets handles GET /api/tickets
func (h *Handler) ListTickets(c *gin.Context) {
	p := utils.FixedPagination(c, constants.AdminAPIPageSize)
	result, err := h.uc.ListTickets.Execute(c.Request.Context(), ticketuc.ListTicketsQuery{
		Actor:    common.Actor(c),
		Statuses: utils.ParseCSVQuery(c, "status"),
		Page:     p.Page,
		PageSize: p.PageSize,
		SortBy:   "created",
		SortDesc: true,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.ListSuccessResponse(c, result.Tickets, result.Total, result.Page, result.PageSize)
}

// GetTicket handles GET /api/tickets/:id
func (h *Handler) GetTicket(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id", "ticket")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	view, err := h.uc.GetTicket.Execute(c.Request.Context(), ticketuc.GetTicketQuery{TicketID: id, Actor: common.Actor(c)})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", view.Ticket)
}

// CreateTicket handles POST /api/tickets through the staff submission path.
func (h *Handler) CreateTicket(c *gin.Context) {
	var req TicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BindErrorResponse(c, err)
		return
	}
	result, err := h.uc.Submit.Execute(c.Request.Context(), ticketuc.SubmitTicketCommand{
		Actor: common.Actor(c),
		Input: forms.Input{
			QueueID:        req.QueueID,
			Title:          req.Title,
			Body:           req.Description,
			SubmitterEmail: req.SubmitterEmail,
			Priority:       req.Priority,
			DueDate:        req.DueDate,
			AssignedTo:     req.AssignedTo,
		},
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessWithWarnings(c, http.StatusCreated, "Ticket created", result.Ticket, result.Warnings)
}

// UpdateTicket handles PATCH and PUT /api/tickets/:id
func (h *Handler) UpdateTicket(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id", "ticket")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	var req TicketPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BindErrorResponse(c, err)
		return
	}
	result, err := h.uc.Edit.Execute(c.Request.Context(), ticketuc.EditTicketCommand{
		TicketID:       id,
		Actor:          common.Actor(c),
		Title:          req.Title,
		Description:    req.Description,
		Priority:       req.Priority,
		DueDate:        req.DueDate,
		SubmitterEmail: req.SubmitterEmail,
		Owner:          req.AssignedTo,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessWithWarnings(c, http.StatusOK, "Ticket updated", result.Ticket, result.Warnings)
}

// DeleteTicket handles DELETE /api/tickets/:id
func (h *Handler) DeleteTicket(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id", "ticket")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	if err := h.uc.Delete.Execute(c.Request.Context(), ticketuc.DeleteTicketCommand{TicketID: id, Actor: common.Actor(c)}); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.NoContentResponse(c)
}

// ListFollowUps handles GET /api/followups
func (h *Handler) ListFollowUps(c *gin.Context) {
	p := utils.FixedPagination(c, constants.AdminAPIPageSize)
	result, err := h.uc.FollowUps.List(c.Request.Context(), common.Actor(c), p.Page, p.PageSize)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.ListSuccessResponse(c, result.FollowUps, result.Total, result.Page, result.PageSize)
}

// GetFollowUp handles GET /api/followups/:id
func (h *Handler) GetFollowUp(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id", "follow-up")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	f, err := h.uc.FollowUps.Get(c.Request.Context(), common.Actor(c), id)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", f)
}

// CreateFollowUp handles POST /api/followups. It runs the same update
// pipeline as the ticket page, so status changes and notifications apply.
// @Summary Add a follow-up
// @Tags api
// @Accept json
// @Produce json
// @Param followup body FollowUpRequest true "Follow-up"
// @Success 201 {object} utils.APIResponse
// @Failure 403 {object} utils.APIResponse
// @Router /api/followups [post]
func (h *Handler) CreateFollowUp(c *gin.Context) {
	var req FollowUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BindErrorResponse(c, err)
		return
	}
	result, err := h.uc.Update.Execute(c.Request.Context(), ticketuc.UpdateTicketCommand{
		TicketID:  req.TicketID,
		Actor:     common.Actor(c),
		Title:     req.Title,
		Comment:   req.Comment,
		Public:    req.Public,
		NewStatus: req.NewStatus,
		TimeSpent: time.Duration(req.TimeSpent) * time.Minute,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessWithWarnings(c, http.StatusCreated, "Follow-up created", result.FollowUp, result.Warnings)
}

// UpdateFollowUp handles PATCH and PUT /api/followups/:id
func (h *Handler) UpdateFollowUp(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id", "follow-up")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	var req FollowUpPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BindErrorResponse(c, err)
		return
	}
	f, err := h.uc.FollowUps.Edit(c.Request.Context(), ticketuc.EditFollowUpCommand{
		FollowUpID: id,
		Actor:      common.Actor(c),
		Title:      req.Title,
		Comment:    req.Comment,
		Public:     req.Public,
		TimeSpent:  time.Duration(req.TimeSpent) * time.Minute,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Follow-up updated", f)
}

// DeleteFollowUp handles DELETE /api/followups/:id
func (h *Handler) DeleteFollowUp(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id", "follow-up")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	if err := h.uc.FollowUps.Delete(c.Request.Context(), common.Actor(c), id); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.NoContentResponse(c)
}

// ListAttachments handles GET /api/followups-attachments
func (h *Handler) ListAttachments(c *gin.Context) {
	p := utils.FixedPagination(c, constants.AdminAPIPageSize)
	result, err := h.uc.Attachments.List(c.Request.Context(), common.Actor(c), p.Page, p.PageSize)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.ListSuccessResponse(c, result.Attachments, result.Total, result.Page, result.PageSize)
}

// CreateAttachment handles POST /api/followups-attachments. The body is a
// multipart form with followup and one attachment file.
func (h *Handler) CreateAttachment(c *gin.Context) {
	followUpID, err := strconv.ParseUint(c.PostForm("followup"), 10, 64)
	if err != nil || followUpID == 0 {
		utils.ErrorResponseWithError(c, errors.NewValidationError("followup is required", "followup"))
		return
	}
	uploads, err := common.ReadUploads(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	if len(uploads) != 1 {
		utils.ErrorResponseWithError(c, errors.NewValidationError("exactly one file is required", common.AttachmentField))
		return
	}
	a, err := h.uc.Attachments.Create(c.Request.Context(), common.Actor(c), uint(followUpID), uploads[0])
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.CreatedResponse(c, a, "Attachment created")
}

// DeleteAttachment handles DELETE /api/followups-attachments/:id
func (h *Handler) DeleteAttachment(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id", "attachment")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	if err := h.uc.Attachments.Delete(c.Request.Context(), common.Actor(c), id); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.NoContentResponse(c)
}

// ListQueues handles GET /api/queues
func (h *Handler) ListQueues(c *gin.Context) {
	queues, err := h.uc.Queues.ListPublic(c.Request.Context(), common.Actor(c))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", queues)
}

// CreateUser handles POST /api/users
func (h *Handler) CreateUser(c *gin.Context) {
	var req UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BindErrorResponse(c, err)
		return
	}
	u, err := h.uc.Users.Create(c.Request.Context(), common.Actor(c), useruc.CreateAccountCommand{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		IsStaff:     req.IsStaff,
		IsSuperuser: req.IsSuperuser,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.CreatedResponse(c, u, "User created")
}
