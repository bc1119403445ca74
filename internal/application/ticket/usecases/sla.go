package usecases

import (
	"context"
	"sort"
	"time"

	"github.com/openhelpdesk/helpdesk/internal/application/access"
	"github.com/openhelpdesk/helpdesk/internal/application/ticket/dto"
	"github.com/openhelpdesk/helpdesk/internal/domain/queue"
	vo "github.com/openhelpdesk/helpdesk/internal/domain/ticket/valueobjects"
	"github.com/openhelpdesk/helpdesk/internal/shared/biztime"
	"github.com/openhelpdesk/helpdesk/internal/shared/errors"
	"github.com/openhelpdesk/helpdesk/internal/shared/logger"
)

// SLAUseCase lists open-class tickets in queues that escalate, oldest first.
type SLAUseCase struct {
	loader  ticketLoader
	machine *vo.StatusMachine
	policy  *access.Policy
	now     func() time.Time
	logger  logger.Interface
}

func NewSLAUseCase(deps PipelineDeps, logger logger.Interface) *SLAUseCase {
	return &SLAUseCase{
		loader:  deps.loader(logger),
		machine: deps.Machine,
		policy:  deps.Policy,
		now:     biztime.NowUTC,
		logger:  logger,
	}
}

func (uc *SLAUseCase) Execute(ctx context.Context, actor access.Actor) ([]dto.SLAItemDTO, error) {
	uc.logger.Infow("executing sla use case", "user_id", actor.UserID)

	if err := uc.policy.RequireStaff(actor); err != nil {
		return nil, err
	}
	queues, err := uc.loader.queues.ListWithEscalation(ctx)
	if err != nil {
		uc.logger.Errorw("failed to list escalating queues", "error", err)
		return nil, errors.NewInternalError("failed to load queues")
	}
	byID := make(map[uint]*queue.Queue, len(queues))
	ids := make([]uint, 0, len(queues))
	for _, q := range queues {
		if q.EscalateDays() <= 0 || !uc.policy.CanAccessQueue(actor, q) {
			continue
		}
		byID[q.ID()] = q
		ids = append(ids, q.ID())
	}
	out := []dto.SLAItemDTO{}
	if len(ids) == 0 {
		return out, nil
	}

	tickets, err := uc.loader.tickets.ListByQueues(ctx, ids, uc.machine.OpenClassStatuses())
	if err != nil {
		uc.logger.Errorw("failed to list sla tickets", "error", err)
		return nil, errors.NewInternalError("failed to list tickets")
	}
	now := uc.now()
	for _, t := range tickets {
		q := byID[t.QueueID()]
		if q == nil {
			continue
		}
		age := t.AgeDays(now)
		out = append(out, dto.SLAItemDTO{
			TicketListItemDTO: dto.ToTicketListItemDTO(t),
			QueueTitle:        q.Title(),
			EscalateDays:      q.EscalateDays(),
			AgeDays:           age,
			Overdue:           age >= q.EscalateDays(),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
