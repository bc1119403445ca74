package usecases

import (
	"context"
	"time"

	"github.com/openhelpdesk/helpdesk/internal/application/access"
	"github.com/openhelpdesk/helpdesk/internal/shared/errors"
	"github.com/openhelpdesk/helpdesk/internal/shared/logger"
)

type EditTicketCommand struct {
	TicketID       uint
	Actor          access.Actor
	Title          *string
	Description    *string
	Priority       *int
	DueDate        *time.Time
	ClearDueDate   bool
	SubmitterEmail *string
	Owner          *uint
}

// EditTicketUseCase is the staff edit form. Every changed field is audited
// through the update pipeline.
type EditTicketUseCase struct {
	policy *access.Policy
	update *UpdateTicketUseCase
	logger logger.Interface
}

func NewEditTicketUseCase(policy *access.Policy, update *UpdateTicketUseCase, logger logger.Interface) *EditTicketUseCase {
	return &EditTicketUseCase{
		policy: policy,
		update: update,
		logger: logger,
	}
}

func (uc *EditTicketUseCase) Execute(ctx context.Context, cmd EditTicketCommand) (*UpdateTicketResult, error) {
	uc.logger.Infow("executing edit ticket use case", "ticket_id", cmd.TicketID, "user_id", cmd.Actor.UserID)

	if err := uc.policy.RequireStaff(cmd.Actor); err != nil {
		return nil, err
	}
	edits := &FieldEdits{
		Title:          cmd.Title,
		Description:    cmd.Description,
		Priority:       cmd.Priority,
		DueDate:        cmd.DueDate,
		ClearDueDate:   cmd.ClearDueDate,
		SubmitterEmail: cmd.SubmitterEmail,
		Owner:          cmd.Owner,
	}
	if !edits.Any() {
		return nil, errors.NewValidationError("no changes given")
	}
	return uc.update.Execute(ctx, UpdateTicketCommand{
		TicketID: cmd.TicketID,
		Actor:    cmd.Actor,
		Title:    "Ticket edited",
		Public:   false,
		Edits:    edits,
	})
}

type HoldTicketCommand struct {
	TicketID uint
	Actor    access.Actor
	Hold     bool
}

type HoldTicketUseCase struct {
	policy *access.Policy
	update *UpdateTicketUseCase
	logger logger.Interface
}

func NewHoldTicketUseCase(policy *access.Policy, update *UpdateTicketUseCase, logger logger.Interface) *HoldTicketUseCase {
	return &HoldTicketUseCase{
		policy: policy,
		update: update,
		logger: logger,
	}
}

func (uc *HoldTicketUseCase) Execute(ctx context.Context, cmd HoldTicketCommand) (*UpdateTicketResult, error) {
	uc.logger.Infow("executing hold ticket use case", "ticket_id", cmd.TicketID, "hold", cmd.Hold)

	if err := uc.policy.RequireStaff(cmd.Actor); err != nil {
		return nil, err
	}
	title := "Ticket taken off hold"
	if cmd.Hold {
		title = "Ticket placed on hold"
	}
	hold := cmd.Hold
	return uc.update.Execute(ctx, UpdateTicketCommand{
		TicketID: cmd.TicketID,
		Actor:    cmd.Actor,
		Title:    title,
		Public:   false,
		Edits:    &FieldEdits{OnHold: &hold},
		Silent:   true,
	})
}
