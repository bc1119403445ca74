package ticket

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openhelpdesk/helpdesk/internal/application/access"
	"github.com/openhelpdesk/helpdesk/internal/application/ticket/dto"
	"github.com/openhelpdesk/helpdesk/internal/application/ticket/usecases"
	"github.com/openhelpdesk/helpdesk/internal/interfaces/http/handlers/common"
	"github.com/openhelpdesk/helpdesk/internal/shared/errors"
	"github.com/openhelpdesk/helpdesk/internal/shared/utils"
)

// ListCCs handles GET /tickets/:id/cc
func (h *TicketHandler) ListCCs(c *gin.Context) {
	ticketID, err := utils.ParseIDParam(c, "id", "ticket")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	ccs, err := h.uc.CCs.List(c.Request.Context(), common.Actor(c), ticketID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", ccs)
}

// AddCC handles POST /tickets/:id/cc
func (h *TicketHandler) AddCC(c *gin.Context) {
	ticketID, err := utils.ParseIDParam(c, "id", "ticket")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	var req AddCCRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BindErrorResponse(c, err)
		return
	}
	cc, err := h.uc.CCs.Add(c.Request.Context(), usecases.AddCCCommand{
		TicketID:  ticketID,
		Actor:     common.Actor(c),
		UserID:    req.UserID,
		Email:     req.Email,
		CanView:   req.CanView,
		CanUpdate: req.CanUpdate,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.CreatedResponse(c, cc, "CC added")
}

// DeleteCC handles DELETE /tickets/:id/cc/:cc_id
func (h *TicketHandler) DeleteCC(c *gin.Context) {
	ticketID, err := utils.ParseIDParam(c, "id", "ticket")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	ccID, err := utils.ParseIDParam(c, "cc_id", "cc")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	if err := h.uc.CCs.Delete(c.Request.Context(), common.Actor(c), ticketID, ccID); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.NoContentResponse(c)
}

// followUpOnTicket loads the follow-up named in the path and checks it
// belongs to the ticket in the same path.
func (h *TicketHandler) followUpOnTicket(c *gin.Context, actor access.Actor) (*dto.FollowUpDTO, bool) {
	ticketID, err := utils.ParseIDParam(c, "id", "ticket")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return nil, false
	}
	followUpID, err := utils.ParseIDParam(c, "followup_id", "follow-up")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return nil, false
	}
	f, err := h.uc.FollowUps.Get(c.Request.Context(), actor, followUpID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return nil, false
	}
	if f.TicketID != ticketID {
		utils.ErrorResponseWithError(c, errors.NewNotFoundError("follow-up not found"))
		return nil, false
	}
	return f, true
}

// GetFollowUp handles GET /tickets/:id/followup_edit/:followup_id
func (h *TicketHandler) GetFollowUp(c *gin.Context) {
	f, ok := h.followUpOnTicket(c, common.Actor(c))
	if !ok {
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", f)
}

// EditFollowUp handles POST /tickets/:id/followup_edit/:followup_id
func (h *TicketHandler) EditFollowUp(c *gin.Context) {
	actor := common.Actor(c)
	f, ok := h.followUpOnTicket(c, actor)
	if !ok {
		return
	}
	var req EditFollowUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BindErrorResponse(c, err)
		return
	}
	edited, err := h.uc.FollowUps.Edit(c.Request.Context(), usecases.EditFollowUpCommand{
		FollowUpID: f.ID,
		Actor:      actor,
		Title:      req.Title,
		Comment:    req.Comment,
		Public:     req.Public,
		TimeSpent:  time.Duration(req.TimeSpent) * time.Minute,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Follow-up updated", edited)
}

// DeleteFollowUp handles DELETE /tickets/:id/followup_delete/:followup_id
func (h *TicketHandler) DeleteFollowUp(c *gin.Context) {
	actor := common.Actor(c)
	f, ok := h.followUpOnTicket(c, actor)
	if !ok {
		return
	}
	if err := h.uc.FollowUps.Delete(c.Request.Context(), actor, f.ID); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.NoContentResponse(c)
}

// DownloadAttachment handles GET /attachments/:id. Callers without a
// session may pass email and key to reach attachments on their own ticket.
func (h *TicketHandler) DownloadAttachment(c *gin.Context) {
	attachmentID, err := utils.ParseIDParam(c, "id", "attachment")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	actor := common.Actor(c)
	if !actor.IsAuthenticated() {
		actor = access.AnonymousActor(c.Query("email"), c.Query("key"))
	}

	file, err := h.uc.Attachments.Open(c.Request.Context(), actor, attachmentID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	defer file.Content.Close()

	c.DataFromReader(http.StatusOK, file.Size, file.MimeType, file.Content, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", file.Filename),
	})
}

// PublicView handles GET /view
// @Summary View a ticket as its submitter
// @Tags public
// @Produce json
// @Param ticket query string true "ticket id or queue-slug-id"
// @Param email query string true "submitter email"
// @Param key query string false "secret key from the notification mail"
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /view [get]
func (h *TicketHandler) PublicView(c *gin.Context) {
	var req PublicViewRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		utils.BindErrorResponse(c, err)
		return
	}
	h.publicView(c, req, false)
}

// PublicClose handles POST /view/close, accepting a resolution.
func (h *TicketHandler) PublicClose(c *gin.Context) {
	var req PublicViewRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.BindErrorResponse(c, err)
		return
	}
	h.publicView(c, req, true)
}

func (h *TicketHandler) publicView(c *gin.Context, req PublicViewRequest, closeTicket bool) {
	result, err := h.uc.PublicView.Execute(c.Request.Context(), usecases.PublicViewQuery{
		TicketRef: req.Ticket,
		Email:     req.Email,
		Key:       req.Key,
		Actor:     common.Actor(c),
		Close:     closeTicket,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	resp := PublicViewResponse{TicketViewResponse: toTicketViewResponse(result.View), Closed: result.Closed}
	utils.SuccessWithWarnings(c, http.StatusOK, "", resp, result.Warnings)
}
