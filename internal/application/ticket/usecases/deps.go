package usecases

import (
	"github.com/openhelpdesk/helpdesk/internal/application/access"
	"github.com/openhelpdesk/helpdesk/internal/domain/queue"
	"github.com/openhelpdesk/helpdesk/internal/domain/ticket"
	vo "github.com/openhelpdesk/helpdesk/internal/domain/ticket/valueobjects"
	"github.com/openhelpdesk/helpdesk/internal/domain/user"
	"github.com/openhelpdesk/helpdesk/internal/shared/db"
	"github.com/openhelpdesk/helpdesk/internal/shared/logger"
)

// PipelineDeps groups what the ticket-writing use cases share.
type PipelineDeps struct {
	Tickets     ticket.TicketRepository
	FollowUps   ticket.FollowUpRepository
	Attachments ticket.AttachmentRepository
	CCs         ticket.CCRepository
	Queues      queue.Repository
	Users       user.Repository
	TxMgr       db.TxRunner
	Machine     *vo.StatusMachine
	Policy      *access.Policy
	Validator   *AttachmentValidator
	Files       FileStore
	Notifier    *Notifier
	Metrics     Metrics
}

func (d PipelineDeps) loader(logger logger.Interface) ticketLoader {
	return ticketLoader{
		tickets: d.Tickets,
		queues:  d.Queues,
		ccs:     d.CCs,
		logger:  logger,
	}
}

func (d PipelineDeps) metrics() Metrics {
	if d.Metrics == nil {
		return NopMetrics()
	}
	return d.Metrics
}
