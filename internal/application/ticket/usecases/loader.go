package usecases

import (
	"context"
	"fmt"

	"github.com/openhelpdesk/helpdesk/internal/domain/queue"
	"github.com/openhelpdesk/helpdesk/internal/domain/ticket"
	"github.com/openhelpdesk/helpdesk/internal/shared/errors"
	"github.com/openhelpdesk/helpdesk/internal/shared/logger"
)

// ticketLoader fetches a ticket together with what permission checks need.
type ticketLoader struct {
	tickets ticket.TicketRepository
	queues  queue.Repository
	ccs     ticket.CCRepository
	logger  logger.Interface
}

type loadedTicket struct {
	ticket *ticket.Ticket
	queue  *queue.Queue
	ccs    []*ticket.CC
}

func (l ticketLoader) load(ctx context.Context, ticketID uint) (*loadedTicket, error) {
	return l.loadWith(ctx, ticketID, l.tickets.GetByID)
}

// loadForUpdate must run inside a transaction; the ticket row stays locked
// until it commits.
func (l ticketLoader) loadForUpdate(ctx context.Context, ticketID uint) (*loadedTicket, error) {
	return l.loadWith(ctx, ticketID, l.tickets.GetByIDForUpdate)
}

func (l ticketLoader) loadWith(
	ctx context.Context,
	ticketID uint,
	get func(context.Context, uint) (*ticket.Ticket, error),
) (*loadedTicket, error) {
	t, err := get(ctx, ticketID)
	if err != nil {
		l.logger.Errorw("failed to get ticket", "ticket_id", ticketID, "error", err)
		return nil, errors.NewInternalError("failed to load ticket")
	}
	if t == nil {
		return nil, errors.NewNotFoundError(fmt.Sprintf("ticket %d not found", ticketID))
	}
	q, err := l.queues.GetByID(ctx, t.QueueID())
	if err != nil {
		l.logger.Errorw("failed to get queue", "queue_id", t.QueueID(), "error", err)
		return nil, errors.NewInternalError("failed to load queue")
	}
	if q == nil {
		return nil, errors.NewNotFoundError(fmt.Sprintf("queue %d not found", t.QueueID()))
	}
	ccs, err := l.ccs.ListByTicket(ctx, ticketID)
	if err != nil {
		l.logger.Errorw("failed to list ticket CCs", "ticket_id", ticketID, "error", err)
		return nil, errors.NewInternalError("failed to load ticket")
	}
	return &loadedTicket{ticket: t, queue: q, ccs: ccs}, nil
}
