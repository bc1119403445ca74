package usecases

import (
	"context"

	"github.com/openhelpdesk/helpdesk/internal/application/access"
	"github.com/openhelpdesk/helpdesk/internal/domain/ticket"
	"github.com/openhelpdesk/helpdesk/internal/shared/db"
	"github.com/openhelpdesk/helpdesk/internal/shared/errors"
	"github.com/openhelpdesk/helpdesk/internal/shared/logger"
)

type DeleteTicketCommand struct {
	TicketID uint
	Actor    access.Actor
}

// DeleteTicketUseCase removes a ticket with everything hanging off it.
// Attachment files are removed only after the rows are gone.
type DeleteTicketUseCase struct {
	loader      ticketLoader
	attachments ticket.AttachmentRepository
	txMgr       db.TxRunner
	policy      *access.Policy
	files       FileStore
	logger      logger.Interface
}

func NewDeleteTicketUseCase(deps PipelineDeps, logger logger.Interface) *DeleteTicketUseCase {
	return &DeleteTicketUseCase{
		loader:      deps.loader(logger),
		attachments: deps.Attachments,
		txMgr:       deps.TxMgr,
		policy:      deps.Policy,
		files:       deps.Files,
		logger:      logger,
	}
}

func (uc *DeleteTicketUseCase) Execute(ctx context.Context, cmd DeleteTicketCommand) error {
	uc.logger.Infow("executing delete ticket use case", "ticket_id", cmd.TicketID, "user_id", cmd.Actor.UserID)

	if err := uc.policy.RequireStaff(cmd.Actor); err != nil {
		return err
	}
	lt, err := uc.loader.load(ctx, cmd.TicketID)
	if err != nil {
		return err
	}
	if uc.policy.TicketLevel(cmd.Actor, lt.ticket, lt.queue, lt.ccs) != access.LevelFull {
		return errors.NewForbiddenError("you may not delete this ticket")
	}

	var paths []string
	err = uc.txMgr.RunInTransaction(ctx, func(txCtx context.Context) error {
		atts, err := uc.attachments.ListByTicket(txCtx, cmd.TicketID)
		if err != nil {
			return err
		}
		for _, a := range atts {
			paths = append(paths, a.Path())
		}
		return uc.loader.tickets.Delete(txCtx, cmd.TicketID)
	})
	if err != nil {
		uc.logger.Errorw("failed to delete ticket", "ticket_id", cmd.TicketID, "error", err)
		return errors.NewInternalError("failed to delete ticket")
	}
	removeFiles(uc.files, paths, uc.logger)

	uc.logger.Infow("ticket deleted successfully", "ticket_id", cmd.TicketID, "attachments", len(paths))
	return nil
}
