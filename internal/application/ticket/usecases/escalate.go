package usecases

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openhelpdesk/helpdesk/internal/domain/queue"
	"github.com/openhelpdesk/helpdesk/internal/domain/ticket"
	vo "github.com/openhelpdesk/helpdesk/internal/domain/ticket/valueobjects"
	"github.com/openhelpdesk/helpdesk/internal/shared/biztime"
	"github.com/openhelpdesk/helpdesk/internal/shared/db"
	"github.com/openhelpdesk/helpdesk/internal/shared/errors"
	"github.com/openhelpdesk/helpdesk/internal/shared/logger"
)

const escalationTitle = "Ticket Escalated"

type EscalateTicketsCommand struct {
	// QueueSlugs limits the run; empty means every escalating queue.
	QueueSlugs []string
	DryRun     bool
}

type EscalateTicketsResult struct {
	Checked   int
	Escalated []uint
	Failed    int
	Warnings  []string
}

// EscalateTicketsUseCase raises the priority of tickets that have waited
// escalate_days since creation or their last escalation. Each ticket is
// written in its own transaction.
type EscalateTicketsUseCase struct {
	loader    ticketLoader
	followUps ticket.FollowUpRepository
	txMgr     db.TxRunner
	machine   *vo.StatusMachine
	notifier  *Notifier
	metrics   Metrics
	now       func() time.Time
	logger    logger.Interface
}

func NewEscalateTicketsUseCase(deps PipelineDeps, logger logger.Interface) *EscalateTicketsUseCase {
	return &EscalateTicketsUseCase{
		loader:    deps.loader(logger),
		followUps: deps.FollowUps,
		txMgr:     deps.TxMgr,
		machine:   deps.Machine,
		notifier:  deps.Notifier,
		metrics:   deps.metrics(),
		now:       biztime.NowUTC,
		logger:    logger,
	}
}

func (uc *EscalateTicketsUseCase) Execute(ctx context.Context, cmd EscalateTicketsCommand) (*EscalateTicketsResult, error) {
	uc.logger.Infow("executing escalate tickets use case", "queues", cmd.QueueSlugs, "dry_run", cmd.DryRun)

	queues, err := uc.loader.queues.ListWithEscalation(ctx)
	if err != nil {
		uc.logger.Errorw("failed to list escalating queues", "error", err)
		return nil, errors.NewInternalError("failed to load queues")
	}
	queues = filterQueues(queues, cmd.QueueSlugs)

	result := &EscalateTicketsResult{Escalated: []uint{}}
	now := uc.now()
	for _, q := range queues {
		if q.EscalateDays() <= 0 {
			continue
		}
		tickets, err := uc.loader.tickets.ListByQueues(ctx, []uint{q.ID()}, uc.machine.OpenClassStatuses())
		if err != nil {
			uc.logger.Errorw("failed to list tickets for escalation", "queue", q.Slug(), "error", err)
			return nil, errors.NewInternalError("failed to list tickets")
		}
		for _, t := range tickets {
			result.Checked++
			if !t.EscalationDue(q.EscalateDays(), now) {
				continue
			}
			if cmd.DryRun {
				result.Escalated = append(result.Escalated, t.ID())
				continue
			}
			warnings, escalated, err := uc.escalate(ctx, t, q, now)
			if err != nil {
				result.Failed++
				uc.logger.Errorw("failed to escalate ticket", "ticket_id", t.ID(), "error", err)
				continue
			}
			if !escalated {
				continue
			}
			result.Escalated = append(result.Escalated, t.ID())
			result.Warnings = append(result.Warnings, warnings...)
		}
	}

	uc.logger.Infow("escalation run completed",
		"checked", result.Checked,
		"escalated", len(result.Escalated),
		"failed", result.Failed,
		"dry_run", cmd.DryRun,
	)
	return result, nil
}

func (uc *EscalateTicketsUseCase) escalate(ctx context.Context, t *ticket.Ticket, q *queue.Queue, now time.Time) ([]string, bool, error) {
	var f *ticket.FollowUp
	err := uc.txMgr.RunInTransaction(ctx, func(txCtx context.Context) error {
		locked, err := uc.loader.tickets.GetByIDForUpdate(txCtx, t.ID())
		if err != nil {
			return fmt.Errorf("failed to lock ticket: %w", err)
		}
		// Another run or a hold may have got there first.
		if locked == nil || !locked.EscalationDue(q.EscalateDays(), now) {
			return nil
		}
		t = locked

		f, err = ticket.NewFollowUp(t.ID(), nil, escalationTitle,
			fmt.Sprintf("Ticket escalated after %d days", q.EscalateDays()), true, "", 0)
		if err != nil {
			return err
		}
		if change, changed := t.Escalate(now); changed {
			f.RecordChange(change)
		}
		if err := uc.followUps.Create(txCtx, f); err != nil {
			return fmt.Errorf("failed to create follow-up: %w", err)
		}
		if err := uc.loader.tickets.Update(txCtx, t); err != nil {
			return fmt.Errorf("failed to update ticket: %w", err)
		}
		return nil
	})
	if err != nil || f == nil {
		return nil, false, err
	}
	uc.metrics.TicketEscalated(q.Slug())
	return uc.notifier.TicketEscalated(ctx, t, q, f), true, nil
}

func filterQueues(queues []*queue.Queue, slugs []string) []*queue.Queue {
	if len(slugs) == 0 {
		return queues
	}
	want := make(map[string]bool, len(slugs))
	for _, s := range slugs {
		want[strings.ToLower(strings.TrimSpace(s))] = true
	}
	var out []*queue.Queue
	for _, q := range queues {
		if want[strings.ToLower(q.Slug())] {
			out = append(out, q)
		}
	}
	return out
}
