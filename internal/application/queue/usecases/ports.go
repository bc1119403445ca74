package usecases

import (
	"context"
	"io"

	ticketuc "github.com/openhelpdesk/helpdesk/internal/application/ticket/usecases"
	qvo "github.com/openhelpdesk/helpdesk/internal/domain/queue/valueobjects"
)

// MessageHandler processes one raw message. Returning nil marks the
// message as consumed; the client may then delete it.
type MessageHandler func(ctx context.Context, raw io.Reader) error

// MailboxClient talks to one kind of mailbox.
type MailboxClient interface {
	// Test connects and authenticates without reading messages.
	Test(ctx context.Context, cfg qvo.MailboxConfig) error
	Fetch(ctx context.Context, cfg qvo.MailboxConfig, handle MessageHandler) error
}

// InboundMessage is a parsed email ready to become a ticket or follow-up.
type InboundMessage struct {
	MessageID   string
	From        string
	FromName    string
	Subject     string
	Body        string
	Attachments []ticketuc.AttachmentUpload
}

type MessageParser interface {
	Parse(raw io.Reader) (*InboundMessage, error)
}

// MailboxMetrics counts processed messages per queue. Outcomes are
// "ticket", "followup" and "rejected".
type MailboxMetrics interface {
	MailboxMessage(queueSlug, outcome string)
}
