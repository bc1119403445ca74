package usecases

import (
	"context"
	"io"

	"github.com/openhelpdesk/helpdesk/internal/domain/queue"
	"github.com/openhelpdesk/helpdesk/internal/domain/ticket"
)

// FileStore keeps attachment blobs. Paths it returns are opaque to callers.
type FileStore interface {
	Save(ctx context.Context, dir, filename string, content []byte) (string, error)
	Open(path string) (io.ReadCloser, error)
	Remove(path string) error
}

// Mail templates known to the mailer.
const (
	MailNewTicketSubmitter = "newticket_submitter"
	MailNewTicketCC        = "newticket_cc"
	MailUpdatedSubmitter   = "updated_submitter"
	MailResolvedSubmitter  = "resolved_submitter"
	MailClosedSubmitter    = "closed_submitter"
	MailUpdatedOwner       = "updated_owner"
	MailAssignedOwner      = "assigned_owner"
	MailUpdatedCC          = "updated_cc"
	MailEscalated          = "escalated"
	MailMerged             = "merged"
)

// TicketMail is one outgoing ticket notification.
type TicketMail struct {
	Template string
	To       string
	From     string
	Ticket   *ticket.Ticket
	Queue    *queue.Queue
	FollowUp *ticket.FollowUp
}

type TicketMailer interface {
	SendTicketMail(ctx context.Context, m TicketMail) error
}

// Metrics receives ticket activity counters.
type Metrics interface {
	TicketCreated(queueSlug string)
	FollowUpRecorded(newStatus string)
	NotificationSent(template string, err error)
	TicketEscalated(queueSlug string)
}

type nopMetrics struct{}

func (nopMetrics) TicketCreated(string)           {}
func (nopMetrics) FollowUpRecorded(string)        {}
func (nopMetrics) NotificationSent(string, error) {}
func (nopMetrics) TicketEscalated(string)         {}

// NopMetrics discards everything.
func NopMetrics() Metrics {
	return nopMetrics{}
}
