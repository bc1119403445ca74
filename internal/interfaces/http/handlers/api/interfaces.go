package api

import (
	"context"

	"github.com/openhelpdesk/helpdesk/internal/application/access"
	queuedto "github.com/openhelpdesk/helpdesk/internal/application/queue/dto"
	ticketdto "github.com/openhelpdesk/helpdesk/internal/application/ticket/dto"
	ticketuc "github.com/openhelpdesk/helpdesk/internal/application/ticket/usecases"
	userdto "github.com/openhelpdesk/helpdesk/internal/application/user/dto"
	useruc "github.com/openhelpdesk/helpdesk/internal/application/user/usecases"
)

type userTicketLister interface {
	Execute(ctx context.Context, query ticketuc.ListUserTicketsQuery) (*ticketuc.ListTicketsResult, error)
}

type ticketLister interface {
	Execute(ctx context.Context, query ticketuc.ListTicketsQuery) (*ticketuc.ListTicketsResult, error)
}

type ticketGetter interface {
	Execute(ctx context.Context, query ticketuc.GetTicketQuery) (*ticketuc.TicketView, error)
}

type ticketSubmitter interface {
	Execute(ctx context.Context, cmd ticketuc.SubmitTicketCommand) (*ticketuc.SubmitTicketResult, error)
}

type ticketEditor interface {
	Execute(ctx context.Context, cmd ticketuc.EditTicketCommand) (*ticketuc.UpdateTicketResult, error)
}

type ticketUpdater interface {
	Execute(ctx context.Context, cmd ticketuc.UpdateTicketCommand) (*ticketuc.UpdateTicketResult, error)
}

type ticketDeleter interface {
	Execute(ctx context.Context, cmd ticketuc.DeleteTicketCommand) error
}

type followUpService interface {
	Get(ctx context.Context, actor access.Actor, followUpID uint) (*ticketdto.FollowUpDTO, error)
	Edit(ctx context.Context, cmd ticketuc.EditFollowUpCommand) (*ticketdto.FollowUpDTO, error)
	Delete(ctx context.Context, actor access.Actor, followUpID uint) error
	List(ctx context.Context, actor access.Actor, page, pageSize int) (*ticketuc.ListFollowUpsResult, error)
}

type attachmentService interface {
	List(ctx context.Context, actor access.Actor, page, pageSize int) (*ticketuc.ListAttachmentsResult, error)
	Create(ctx context.Context, actor access.Actor, followUpID uint, upload ticketuc.AttachmentUpload) (*ticketdto.AttachmentDTO, error)
	Delete(ctx context.Context, actor access.Actor, attachmentID uint) error
}

type queueLister interface {
	ListPublic(ctx context.Context, actor access.Actor) ([]queuedto.PublicQueueDTO, error)
}

type userCreator interface {
	Create(ctx context.Context, actor access.Actor, cmd useruc.CreateAccountCommand) (*userdto.UserDTO, error)
}
