package ticket

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openhelpdesk/helpdesk/internal/application/ticket/usecases"
	"github.com/openhelpdesk/helpdesk/internal/interfaces/http/handlers/common"
	"github.com/openhelpdesk/helpdesk/internal/shared/logger"
	"github.com/openhelpdesk/helpdesk/internal/shared/utils"
)

// UseCases groups everything the ticket handlers execute.
type UseCases struct {
	Submit      SubmitTicketExecutor
	Get         GetTicketExecutor
	List        ListTicketsExecutor
	Update      UpdateTicketExecutor
	Edit        EditTicketExecutor
	Hold        HoldTicketExecutor
	Delete      DeleteTicketExecutor
	Merge       MergeTicketsExecutor
	MassUpdate  MassUpdateExecutor
	CCs         CCManager
	FollowUps   FollowUpManager
	Attachments AttachmentOpener
	PublicView  PublicViewExecutor
	SLA         SLAExecutor
	Dashboard   DashboardExecutor
}

type TicketHandler struct {
	uc     UseCases
	logger logger.Interface
}

func NewTicketHandler(uc UseCases, log logger.Interface) *TicketHandler {
	return &TicketHandler{uc: uc, logger: log}
}

// SubmitTicket handles POST /tickets/submit
// @Summary Submit a ticket
// @Description Opens a ticket from the public or staff form. Anonymous
// @Description callers must give a submitter email.
// @Tags tickets
// @Accept json,mpfd
// @Produce json
// @Param ticket body SubmitTicketRequest true "Ticket data"
// @Success 201 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Failure 403 {object} utils.APIResponse
// @Router /tickets/submit [post]
func (h *TicketHandler) SubmitTicket(c *gin.Context) {
	var req SubmitTicketRequest
	if err := c.ShouldBind(&req); err != nil {
		h.logger.Warnw("invalid request body for submit ticket", "error", err)
		utils.BindErrorResponse(c, err)
		return
	}
	uploads, err := common.ReadUploads(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.uc.Submit.Execute(c.Request.Context(), req.ToCommand(common.Actor(c), uploads))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessWithWarnings(c, http.StatusCreated, "Ticket submitted", result.Ticket, result.Warnings)
}

// ListTickets handles GET /tickets
// @Summary List tickets
// @Tags tickets
// @Produce json
// @Param queue query string false "comma separated queue ids"
// @Param status query string false "comma separated statuses"
// @Param owner query string false "me, none or a user id"
// @Param q query string false "keyword"
// @Param sort query string false "sort column"
// @Param page query int false "page"
// @Param page_size query int false "page size"
// @Success 200 {object} utils.APIResponse
// @Router /tickets [get]
func (h *TicketHandler) ListTickets(c *gin.Context) {
	query, err := parseListQuery(c, common.Actor(c))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	result, err := h.uc.List.Execute(c.Request.Context(), query)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.ListSuccessResponse(c, result.Tickets, result.Total, result.Page, result.PageSize)
}

// GetTicket handles GET /tickets/:id
func (h *TicketHandler) GetTicket(c *gin.Context) {
	ticketID, err := utils.ParseIDParam(c, "id", "ticket")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	view, err := h.uc.Get.Execute(c.Request.Context(), usecases.GetTicketQuery{TicketID: ticketID, Actor: common.Actor(c)})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", toTicketViewResponse(view))
}

// UpdateTicket handles POST /tickets/:id/update
// @Summary Post a follow-up
// @Description Adds a comment, changes status, and edits fields in one step.
// @Tags tickets
// @Accept json,mpfd
// @Produce json
// @Param id path int true "Ticket ID"
// @Param update body UpdateTicketRequest true "Update"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Failure 403 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /tickets/{id}/update [post]
func (h *TicketHandler) UpdateTicket(c *gin.Context) {
	ticketID, err := utils.ParseIDParam(c, "id", "ticket")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	var req UpdateTicketRequest
	if err := c.ShouldBind(&req); err != nil {
		h.logger.Warnw("invalid request body for update ticket", "ticket_id", ticketID, "error", err)
		utils.BindErrorResponse(c, err)
		return
	}
	uploads, err := common.ReadUploads(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.uc.Update.Execute(c.Request.Context(), req.ToCommand(ticketID, common.Actor(c), uploads))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessWithWarnings(c, http.StatusOK, "Ticket updated", toUpdateResponse(result), result.Warnings)
}

// EditTicket handles PATCH /tickets/:id
func (h *TicketHandler) EditTicket(c *gin.Context) {
	ticketID, err := utils.ParseIDParam(c, "id", "ticket")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	var req EditTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BindErrorResponse(c, err)
		return
	}
	result, err := h.uc.Edit.Execute(c.Request.Context(), req.ToCommand(ticketID, common.Actor(c)))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessWithWarnings(c, http.StatusOK, "Ticket edited", result.Ticket, result.Warnings)
}

// HoldTicket handles POST /tickets/:id/hold
func (h *TicketHandler) HoldTicket(c *gin.Context) {
	h.setHold(c, true)
}

// UnholdTicket handles POST /tickets/:id/unhold
func (h *TicketHandler) UnholdTicket(c *gin.Context) {
	h.setHold(c, false)
}

func (h *TicketHandler) setHold(c *gin.Context, hold bool) {
	ticketID, err := utils.ParseIDParam(c, "id", "ticket")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	result, err := h.uc.Hold.Execute(c.Request.Context(), usecases.HoldTicketCommand{
		TicketID: ticketID,
		Actor:    common.Actor(c),
		Hold:     hold,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessWithWarnings(c, http.StatusOK, "", result.Ticket, result.Warnings)
}

// DeleteTicket handles DELETE /tickets/:id
// @Summary Delete a ticket
// @Tags tickets
// @Param id path int true "Ticket ID"
// @Success 204
// @Failure 403 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /tickets/{id} [delete]
func (h *TicketHandler) DeleteTicket(c *gin.Context) {
	ticketID, err := utils.ParseIDParam(c, "id", "ticket")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	if err := h.uc.Delete.Execute(c.Request.Context(), usecases.DeleteTicketCommand{TicketID: ticketID, Actor: common.Actor(c)}); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.NoContentResponse(c)
}

// MergeTickets handles POST /tickets/merge
func (h *TicketHandler) MergeTickets(c *gin.Context) {
	var req MergeTicketsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BindErrorResponse(c, err)
		return
	}
	result, err := h.uc.Merge.Execute(c.Request.Context(), usecases.MergeTicketsCommand{
		Actor:     common.Actor(c),
		MainID:    req.MainID,
		TicketIDs: req.TicketIDs,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Tickets merged", gin.H{
		"ticket": result.Ticket,
		"merged": result.Merged,
	})
}

// MassUpdate handles POST /tickets/mass-update
// @Summary Apply a bulk action
// @Description Actions: take, assign, unassign, close, close_public, hold, unhold, delete.
// @Tags tickets
// @Accept json
// @Produce json
// @Param body body MassUpdateRequest true "Bulk action"
// @Success 200 {object} utils.APIResponse
// @Router /tickets/mass-update [post]
func (h *TicketHandler) MassUpdate(c *gin.Context) {
	var req MassUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BindErrorResponse(c, err)
		return
	}
	result, err := h.uc.MassUpdate.Execute(c.Request.Context(), usecases.MassUpdateCommand{
		Actor:     common.Actor(c),
		TicketIDs: req.TicketIDs,
		Action:    req.Action,
		AssignTo:  req.AssignTo,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessWithWarnings(c, http.StatusOK, "", result, result.Warnings)
}

// SLA handles GET /sla
func (h *TicketHandler) SLA(c *gin.Context) {
	items, err := h.uc.SLA.Execute(c.Request.Context(), common.Actor(c))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", items)
}

// Dashboard handles GET /dashboard
func (h *TicketHandler) Dashboard(c *gin.Context) {
	d, err := h.uc.Dashboard.Execute(c.Request.Context(), common.Actor(c))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", d)
}
