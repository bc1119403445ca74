package usecases

import (
	"context"

	"github.com/openhelpdesk/helpdesk/internal/application/access"
	"github.com/openhelpdesk/helpdesk/internal/application/ticket/dto"
	"github.com/openhelpdesk/helpdesk/internal/domain/ticket"
	vo "github.com/openhelpdesk/helpdesk/internal/domain/ticket/valueobjects"
	"github.com/openhelpdesk/helpdesk/internal/shared/errors"
	"github.com/openhelpdesk/helpdesk/internal/shared/logger"
	"github.com/openhelpdesk/helpdesk/internal/shared/mapper"
	"github.com/openhelpdesk/helpdesk/internal/shared/services/markdown"
)

type GetTicketQuery struct {
	TicketID uint
	Actor    access.Actor
}

// TicketView is a ticket with its follow-up log, as the actor may see it.
type TicketView struct {
	Ticket *dto.TicketDTO
	Level  access.Level
	// Targets are the statuses the actor may move the ticket to.
	Targets []string
}

type GetTicketUseCase struct {
	loader    ticketLoader
	followUps ticket.FollowUpRepository
	machine   *vo.StatusMachine
	policy    *access.Policy
	renderer  markdown.Renderer
	logger    logger.Interface
}

func NewGetTicketUseCase(deps PipelineDeps, renderer markdown.Renderer, logger logger.Interface) *GetTicketUseCase {
	return &GetTicketUseCase{
		loader:    deps.loader(logger),
		followUps: deps.FollowUps,
		machine:   deps.Machine,
		policy:    deps.Policy,
		renderer:  renderer,
		logger:    logger,
	}
}

func (uc *GetTicketUseCase) Execute(ctx context.Context, query GetTicketQuery) (*TicketView, error) {
	uc.logger.Infow("executing get ticket use case", "ticket_id", query.TicketID, "user_id", query.Actor.UserID)

	if query.TicketID == 0 {
		return nil, errors.NewValidationError("ticket ID is required")
	}
	lt, err := uc.loader.load(ctx, query.TicketID)
	if err != nil {
		return nil, err
	}
	level := uc.policy.TicketLevel(query.Actor, lt.ticket, lt.queue, lt.ccs)
	if level < access.LevelRead {
		uc.logger.Warnw("ticket view denied", "ticket_id", query.TicketID, "user_id", query.Actor.UserID)
		return nil, errors.NewForbiddenError("you may not view this ticket")
	}
	return buildTicketView(ctx, uc.followUps, uc.machine, uc.renderer, uc.policy, query.Actor, lt, level, uc.logger)
}

func buildTicketView(
	ctx context.Context,
	followUps ticket.FollowUpRepository,
	machine *vo.StatusMachine,
	renderer markdown.Renderer,
	policy *access.Policy,
	actor access.Actor,
	lt *loadedTicket,
	level access.Level,
	log logger.Interface,
) (*TicketView, error) {
	full := level == access.LevelFull
	fs, err := followUps.ListByTicket(ctx, lt.ticket.ID(), !full)
	if err != nil {
		log.Errorw("failed to list follow-ups", "ticket_id", lt.ticket.ID(), "error", err)
		return nil, errors.NewInternalError("failed to load follow-ups")
	}

	d := dto.ToTicketDTO(lt.ticket, lt.queue, machine, full)
	d.FollowUps = dto.ToFollowUpDTOs(fs)
	for i := range d.FollowUps {
		if renderer != nil {
			d.FollowUps[i].CommentHTML = renderer.Render(d.FollowUps[i].Comment)
		}
	}
	if full {
		d.CCs = mapper.MapSlice(lt.ccs, dto.ToCCDTO)
	}

	view := &TicketView{Ticket: d, Level: level}
	switch {
	case full:
		for _, s := range machine.Targets(lt.ticket.Status(), true) {
			view.Targets = append(view.Targets, s.String())
		}
	case policy.IsResolutionAccept(actor, lt.ticket, vo.StatusClosed):
		view.Targets = []string{vo.StatusClosed.String()}
	}
	return view, nil
}
