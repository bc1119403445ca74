package ticket

import (
	"context"

	"github.com/openhelpdesk/helpdesk/internal/application/access"
	"github.com/openhelpdesk/helpdesk/internal/application/ticket/dto"
	"github.com/openhelpdesk/helpdesk/internal/application/ticket/usecases"
)

type SubmitTicketExecutor interface {
	Execute(ctx context.Context, cmd usecases.SubmitTicketCommand) (*usecases.SubmitTicketResult, error)
}

type GetTicketExecutor interface {
	Execute(ctx context.Context, query usecases.GetTicketQuery) (*usecases.TicketView, error)
}

type ListTicketsExecutor interface {
	Execute(ctx context.Context, query usecases.ListTicketsQuery) (*usecases.ListTicketsResult, error)
}

type UpdateTicketExecutor interface {
	Execute(ctx context.Context, cmd usecases.UpdateTicketCommand) (*usecases.UpdateTicketResult, error)
}

type EditTicketExecutor interface {
	Execute(ctx context.Context, cmd usecases.EditTicketCommand) (*usecases.UpdateTicketResult, error)
}

type HoldTicketExecutor interface {
	Execute(ctx context.Context, cmd usecases.HoldTicketCommand) (*usecases.UpdateTicketResult, error)
}

type DeleteTicketExecutor interface {
	Execute(ctx context.Context, cmd usecases.DeleteTicketCommand) error
}

type MergeTicketsExecutor interface {
	Execute(ctx context.Context, cmd usecases.MergeTicketsCommand) (*usecases.MergeTicketsResult, error)
}

type MassUpdateExecutor interface {
	Execute(ctx context.Context, cmd usecases.MassUpdateCommand) (*usecases.MassUpdateResult, error)
}

type CCManager interface {
	Add(ctx context.Context, cmd usecases.AddCCCommand) (*dto.CCDTO, error)
	List(ctx context.Context, actor access.Actor, ticketID uint) ([]dto.CCDTO, error)
	Delete(ctx context.Context, actor access.Actor, ticketID, ccID uint) error
}

type FollowUpManager interface {
	Get(ctx context.Context, actor access.Actor, followUpID uint) (*dto.FollowUpDTO, error)
	Edit(ctx context.Context, cmd usecases.EditFollowUpCommand) (*dto.FollowUpDTO, error)
	Delete(ctx context.Context, actor access.Actor, followUpID uint) error
}

type AttachmentOpener interface {
	Open(ctx context.Context, actor access.Actor, attachmentID uint) (*usecases.AttachmentDownload, error)
}

type PublicViewExecutor interface {
	Execute(ctx context.Context, query usecases.PublicViewQuery) (*usecases.PublicViewResult, error)
}

type SLAExecutor interface {
	Execute(ctx context.Context, actor access.Actor) ([]dto.SLAItemDTO, error)
}

type DashboardExecutor interface {
	Execute(ctx context.Context, actor access.Actor) (*dto.DashboardDTO, error)
}
