package ticket

import (
	"github.com/openhelpdesk/helpdesk/internal/application/ticket/dto"
	"github.com/openhelpdesk/helpdesk/internal/application/ticket/usecases"
)

type TicketViewResponse struct {
	Ticket *dto.TicketDTO `json:"ticket"`
	Access string         `json:"access"`
	// Transitions lists the statuses the caller may move the ticket to.
	Transitions []string `json:"transitions"`
}

type UpdateResponse struct {
	Ticket   *dto.TicketDTO  `json:"ticket"`
	FollowUp dto.FollowUpDTO `json:"followup"`
}

type PublicViewResponse struct {
	TicketViewResponse
	Closed bool `json:"closed"`
}

func toTicketViewResponse(v *usecases.TicketView) TicketViewResponse {
	targets := v.Targets
	if targets == nil {
		targets = []string{}
	}
	return TicketViewResponse{Ticket: v.Ticket, Access: v.Level.String(), Transitions: targets}
}

func toUpdateResponse(r *usecases.UpdateTicketResult) UpdateResponse {
	return UpdateResponse{Ticket: r.Ticket, FollowUp: r.FollowUp}
}
