package ticket

import (
	"context"

	vo "github.com/openhelpdesk/helpdesk/internal/domain/ticket/valueobjects"
)

// Repositories return (nil, nil) when a single entity is not found.

type TicketRepository interface {
	Create(ctx context.Context, t *Ticket) error
	// Update writes the fields changed since the ticket was loaded.
	Update(ctx context.Context, t *Ticket) error
	// Delete removes the ticket with its follow-ups, changes, attachment
	// rows and CCs.
	Delete(ctx context.Context, ticketID uint) error
	GetByID(ctx context.Context, ticketID uint) (*Ticket, error)
	// GetByIDForUpdate locks the row for the rest of the transaction in ctx.
	GetByIDForUpdate(ctx context.Context, ticketID uint) (*Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]*Ticket, int64, error)
	CountByStatus(ctx context.Context) (map[vo.TicketStatus]int64, error)
	CountUnassigned(ctx context.Context, statuses []vo.TicketStatus) (int64, error)
	CountAssignedTo(ctx context.Context, userID uint, statuses []vo.TicketStatus) (int64, error)
	// ListByQueues returns every ticket in the given queues and statuses.
	ListByQueues(ctx context.Context, queueIDs []uint, statuses []vo.TicketStatus) ([]*Ticket, error)
}

type TicketFilter struct {
	IDs            []uint
	QueueIDs       []uint
	Statuses       []vo.TicketStatus
	AssignedTo     *uint
	Unassigned     bool
	SubmitterEmail string
	Keyword        string
	Page           int
	PageSize       int
	SortBy         string
	SortDesc       bool
}

type FollowUpRepository interface {
	// Create writes the follow-up together with its changes and attachment rows.
	Create(ctx context.Context, f *FollowUp) error
	Update(ctx context.Context, f *FollowUp) error
	// Delete removes the follow-up with its changes and attachment rows.
	Delete(ctx context.Context, followUpID uint) error
	GetByID(ctx context.Context, followUpID uint) (*FollowUp, error)
	ListByTicket(ctx context.Context, ticketID uint, publicOnly bool) ([]*FollowUp, error)
	List(ctx context.Context, page, pageSize int) ([]*FollowUp, int64, error)
	MoveToTicket(ctx context.Context, fromTicketID, toTicketID uint) (int64, error)
}

type AttachmentRepository interface {
	Create(ctx context.Context, a *Attachment) error
	Delete(ctx context.Context, attachmentID uint) error
	GetByID(ctx context.Context, attachmentID uint) (*Attachment, error)
	List(ctx context.Context, page, pageSize int) ([]*Attachment, int64, error)
	ListByFollowUp(ctx context.Context, followUpID uint) ([]*Attachment, error)
	ListByTicket(ctx context.Context, ticketID uint) ([]*Attachment, error)
}

type CCRepository interface {
	Create(ctx context.Context, cc *CC) error
	Delete(ctx context.Context, ccID uint) error
	GetByID(ctx context.Context, ccID uint) (*CC, error)
	ListByTicket(ctx context.Context, ticketID uint) ([]*CC, error)
	// ListForUser returns CCs naming the user or the address.
	ListForUser(ctx context.Context, userID uint, email string) ([]*CC, error)
}
