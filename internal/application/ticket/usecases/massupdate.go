package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/openhelpdesk/helpdesk/internal/application/access"
	vo "github.com/openhelpdesk/helpdesk/internal/domain/ticket/valueobjects"
	"github.com/openhelpdesk/helpdesk/internal/shared/errors"
	"github.com/openhelpdesk/helpdesk/internal/shared/logger"
)

type MassAction string

const (
	MassTake        MassAction = "take"
	MassAssign      MassAction = "assign"
	MassUnassign    MassAction = "unassign"
	MassClose       MassAction = "close"
	MassClosePublic MassAction = "close_public"
	MassHold        MassAction = "hold"
	MassUnhold      MassAction = "unhold"
	MassDelete      MassAction = "delete"
)

const bulkCloseComment = "Closed in bulk update"

func ParseMassAction(s string) (MassAction, error) {
	a := MassAction(strings.ToLower(strings.TrimSpace(s)))
	switch a {
	case MassTake, MassAssign, MassUnassign, MassClose, MassClosePublic, MassHold, MassUnhold, MassDelete:
		return a, nil
	}
	return "", fmt.Errorf("unknown bulk action: %s", s)
}

type MassUpdateCommand struct {
	Actor     access.Actor
	TicketIDs []uint
	Action    string
	// AssignTo is required for assign.
	AssignTo uint
}

type MassUpdateResult struct {
	Updated  int      `json:"updated"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// MassUpdateUseCase applies one action to many tickets. Each ticket goes
// through the pipeline on its own; one failure does not stop the rest.
type MassUpdateUseCase struct {
	policy *access.Policy
	update *UpdateTicketUseCase
	delete *DeleteTicketUseCase
	logger logger.Interface
}

func NewMassUpdateUseCase(policy *access.Policy, update *UpdateTicketUseCase, del *DeleteTicketUseCase, logger logger.Interface) *MassUpdateUseCase {
	return &MassUpdateUseCase{
		policy: policy,
		update: update,
		delete: del,
		logger: logger,
	}
}

func (uc *MassUpdateUseCase) Execute(ctx context.Context, cmd MassUpdateCommand) (*MassUpdateResult, error) {
	uc.logger.Infow("executing mass update use case",
		"action", cmd.Action,
		"tickets", len(cmd.TicketIDs),
		"user_id", cmd.Actor.UserID,
	)

	if err := uc.policy.RequireStaff(cmd.Actor); err != nil {
		return nil, err
	}
	action, err := ParseMassAction(cmd.Action)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}
	if len(cmd.TicketIDs) == 0 {
		return nil, errors.NewValidationError("no tickets selected")
	}
	if action == MassAssign && cmd.AssignTo == 0 {
		return nil, errors.NewValidationError("assign requires a user")
	}
	if action == MassTake && !cmd.Actor.IsAuthenticated() {
		return nil, errors.NewValidationError("take requires a logged in user")
	}

	result := &MassUpdateResult{}
	for _, id := range cmd.TicketIDs {
		warnings, err := uc.apply(ctx, cmd, action, id)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("ticket %d: %s", id, err.Error()))
			uc.logger.Warnw("bulk action failed", "ticket_id", id, "action", action, "error", err)
			continue
		}
		result.Updated++
		result.Warnings = append(result.Warnings, warnings...)
	}

	uc.logger.Infow("mass update completed", "action", action, "updated", result.Updated, "failed", result.Failed)
	return result, nil
}

func (uc *MassUpdateUseCase) apply(ctx context.Context, cmd MassUpdateCommand, action MassAction, ticketID uint) ([]string, error) {
	if action == MassDelete {
		return nil, uc.delete.Execute(ctx, DeleteTicketCommand{TicketID: ticketID, Actor: cmd.Actor})
	}

	upd := UpdateTicketCommand{TicketID: ticketID, Actor: cmd.Actor, Edits: &FieldEdits{}}
	switch action {
	case MassTake:
		owner := cmd.Actor.UserID
		upd.Edits.Owner = &owner
	case MassAssign:
		owner := cmd.AssignTo
		upd.Edits.Owner = &owner
	case MassUnassign:
		var none uint
		upd.Edits.Owner = &none
	case MassClose:
		upd.NewStatus = vo.StatusClosed.String()
		upd.Comment = bulkCloseComment
		upd.Silent = true
	case MassClosePublic:
		upd.NewStatus = vo.StatusClosed.String()
		upd.Comment = bulkCloseComment
		upd.Public = true
	case MassHold, MassUnhold:
		hold := action == MassHold
		upd.Edits.OnHold = &hold
		upd.Silent = true
	}
	res, err := uc.update.Execute(ctx, upd)
	if err != nil {
		return nil, err
	}
	return res.Warnings, nil
}
