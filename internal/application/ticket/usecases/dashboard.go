package usecases

import (
	"context"

	"github.com/openhelpdesk/helpdesk/internal/application/access"
	"github.com/openhelpdesk/helpdesk/internal/application/ticket/dto"
	"github.com/openhelpdesk/helpdesk/internal/domain/kb"
	"github.com/openhelpdesk/helpdesk/internal/domain/ticket"
	vo "github.com/openhelpdesk/helpdesk/internal/domain/ticket/valueobjects"
	"github.com/openhelpdesk/helpdesk/internal/domain/user"
	"github.com/openhelpdesk/helpdesk/internal/shared/errors"
	"github.com/openhelpdesk/helpdesk/internal/shared/logger"
)

type DashboardUseCase struct {
	tickets ticket.TicketRepository
	users   user.Repository
	kbItems kb.ItemRepository
	machine *vo.StatusMachine
	policy  *access.Policy
	logger  logger.Interface
}

func NewDashboardUseCase(deps PipelineDeps, kbItems kb.ItemRepository, logger logger.Interface) *DashboardUseCase {
	return &DashboardUseCase{
		tickets: deps.Tickets,
		users:   deps.Users,
		kbItems: kbItems,
		machine: deps.Machine,
		policy:  deps.Policy,
		logger:  logger,
	}
}

func (uc *DashboardUseCase) Execute(ctx context.Context, actor access.Actor) (*dto.DashboardDTO, error) {
	uc.logger.Infow("executing dashboard use case", "user_id", actor.UserID)

	if err := uc.policy.RequireStaff(actor); err != nil {
		return nil, err
	}
	counts, err := uc.tickets.CountByStatus(ctx)
	if err != nil {
		uc.logger.Errorw("failed to count tickets by status", "error", err)
		return nil, errors.NewInternalError("failed to load dashboard")
	}
	open := uc.machine.OpenClassStatuses()

	out := &dto.DashboardDTO{StatusCounts: make(map[string]int64, len(counts))}
	for _, s := range uc.machine.Statuses() {
		out.StatusCounts[s.Name.String()] = counts[s.Name]
		if s.OpenClass {
			out.OpenClassTotal += counts[s.Name]
		}
	}
	if out.Unassigned, err = uc.tickets.CountUnassigned(ctx, open); err != nil {
		uc.logger.Errorw("failed to count unassigned tickets", "error", err)
		return nil, errors.NewInternalError("failed to load dashboard")
	}
	if actor.IsAuthenticated() {
		if out.AssignedToMe, err = uc.tickets.CountAssignedTo(ctx, actor.UserID, open); err != nil {
			uc.logger.Errorw("failed to count assigned tickets", "user_id", actor.UserID, "error", err)
			return nil, errors.NewInternalError("failed to load dashboard")
		}
	}
	if out.TotalUsers, err = uc.users.Count(ctx); err != nil {
		uc.logger.Errorw("failed to count users", "error", err)
		return nil, errors.NewInternalError("failed to load dashboard")
	}
	if uc.kbItems != nil {
		if out.KBLikes, out.KBDislikes, err = uc.kbItems.VoteTotals(ctx); err != nil {
			uc.logger.Errorw("failed to total kb votes", "error", err)
			return nil, errors.NewInternalError("failed to load dashboard")
		}
	}
	return out, nil
}
