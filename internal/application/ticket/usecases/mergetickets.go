package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/openhelpdesk/helpdesk/internal/application/access"
	"github.com/openhelpdesk/helpdesk/internal/application/ticket/dto"
	"github.com/openhelpdesk/helpdesk/internal/domain/ticket"
	vo "github.com/openhelpdesk/helpdesk/internal/domain/ticket/valueobjects"
	"github.com/openhelpdesk/helpdesk/internal/shared/db"
	"github.com/openhelpdesk/helpdesk/internal/shared/errors"
	"github.com/openhelpdesk/helpdesk/internal/shared/logger"
)

type MergeTicketsCommand struct {
	Actor     access.Actor
	MainID    uint
	TicketIDs []uint
}

type MergeTicketsResult struct {
	Ticket *dto.TicketDTO
	Merged []uint
}

// MergeTicketsUseCase folds duplicates into a main ticket. All tickets move
// in one transaction.
type MergeTicketsUseCase struct {
	loader    ticketLoader
	followUps ticket.FollowUpRepository
	ccs       ticket.CCRepository
	txMgr     db.TxRunner
	machine   *vo.StatusMachine
	policy    *access.Policy
	logger    logger.Interface
}

func NewMergeTicketsUseCase(deps PipelineDeps, logger logger.Interface) *MergeTicketsUseCase {
	return &MergeTicketsUseCase{
		loader:    deps.loader(logger),
		followUps: deps.FollowUps,
		ccs:       deps.CCs,
		txMgr:     deps.TxMgr,
		machine:   deps.Machine,
		policy:    deps.Policy,
		logger:    logger,
	}
}

func (uc *MergeTicketsUseCase) Execute(ctx context.Context, cmd MergeTicketsCommand) (*MergeTicketsResult, error) {
	uc.logger.Infow("executing merge tickets use case",
		"main_id", cmd.MainID,
		"ticket_ids", cmd.TicketIDs,
		"user_id", cmd.Actor.UserID,
	)

	if err := uc.policy.RequireStaff(cmd.Actor); err != nil {
		return nil, err
	}
	if cmd.MainID == 0 {
		return nil, errors.NewValidationError("main ticket is required")
	}

	main, err := uc.loadFull(ctx, cmd.Actor, cmd.MainID)
	if err != nil {
		return nil, err
	}

	seen := map[uint]bool{cmd.MainID: true}
	var others []*loadedTicket
	for _, id := range cmd.TicketIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		lt, err := uc.loadFull(ctx, cmd.Actor, id)
		if err != nil {
			return nil, err
		}
		if lt.ticket.MergedTo() != nil {
			return nil, errors.NewValidationError(fmt.Sprintf("ticket %d is already merged", id))
		}
		others = append(others, lt)
	}
	if len(others) == 0 {
		return nil, errors.NewValidationError("select at least one ticket to merge")
	}

	known := newRecipientSet(main.ticket.SubmitterEmail())
	for _, cc := range main.ccs {
		known.add(cc.Email(), "")
	}

	merged := make([]uint, 0, len(others))
	err = uc.txMgr.RunInTransaction(ctx, func(txCtx context.Context) error {
		for _, lt := range others {
			o, err := uc.loader.tickets.GetByIDForUpdate(txCtx, lt.ticket.ID())
			if err != nil {
				return fmt.Errorf("failed to lock ticket %d: %w", lt.ticket.ID(), err)
			}
			if o == nil {
				return errors.NewNotFoundError(fmt.Sprintf("ticket %d not found", lt.ticket.ID()))
			}
			lt.ticket = o
			changes, err := o.MergeInto(main.ticket.ID())
			if err != nil {
				return errors.NewValidationError(err.Error())
			}
			if err := uc.loader.tickets.Update(txCtx, o); err != nil {
				return fmt.Errorf("failed to update ticket %d: %w", o.ID(), err)
			}
			moved, err := uc.followUps.MoveToTicket(txCtx, o.ID(), main.ticket.ID())
			if err != nil {
				return fmt.Errorf("failed to move follow-ups of ticket %d: %w", o.ID(), err)
			}

			f, err := ticket.NewFollowUp(main.ticket.ID(), cmd.Actor.UserIDPtr(),
				fmt.Sprintf("Merged ticket %s", o.TicketForURL(lt.queue.Slug())),
				fmt.Sprintf("%d follow-ups moved from %q.", moved, o.Title()),
				false, "", 0)
			if err != nil {
				return errors.NewValidationError(err.Error())
			}
			for _, c := range changes {
				f.RecordChange(c)
			}
			if err := uc.followUps.Create(txCtx, f); err != nil {
				return fmt.Errorf("failed to log merge of ticket %d: %w", o.ID(), err)
			}

			if err := uc.copyRecipients(txCtx, main.ticket.ID(), lt, known); err != nil {
				return err
			}
			merged = append(merged, o.ID())
		}
		return nil
	})
	if err != nil {
		uc.logger.Errorw("ticket merge rolled back", "main_id", cmd.MainID, "error", err)
		if errors.IsAppError(err) {
			return nil, err
		}
		return nil, errors.NewInternalError("failed to merge tickets")
	}

	uc.logger.Infow("tickets merged successfully", "main_id", cmd.MainID, "merged", merged)
	return &MergeTicketsResult{
		Ticket: dto.ToTicketDTO(main.ticket, main.queue, uc.machine, false),
		Merged: merged,
	}, nil
}

func (uc *MergeTicketsUseCase) loadFull(ctx context.Context, actor access.Actor, id uint) (*loadedTicket, error) {
	lt, err := uc.loader.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if uc.policy.TicketLevel(actor, lt.ticket, lt.queue, lt.ccs) != access.LevelFull {
		return nil, errors.NewForbiddenError(fmt.Sprintf("you may not merge ticket %d", id))
	}
	return lt, nil
}

// copyRecipients puts the merged ticket's submitter and CCs on the main
// ticket's CC list, skipping addresses already there.
func (uc *MergeTicketsUseCase) copyRecipients(ctx context.Context, mainID uint, lt *loadedTicket, known *recipientSet) error {
	type entry struct {
		userID    *uint
		email     string
		canView   bool
		canUpdate bool
	}
	entries := []entry{{email: lt.ticket.SubmitterEmail(), canView: true, canUpdate: true}}
	for _, cc := range lt.ccs {
		entries = append(entries, entry{userID: cc.UserID(), email: cc.Email(), canView: cc.CanView(), canUpdate: cc.CanUpdate()})
	}
	for _, e := range entries {
		addr := strings.TrimSpace(e.email)
		if e.userID == nil && (addr == "" || known.has(addr)) {
			continue
		}
		cc, err := ticket.NewCC(mainID, e.userID, addr, e.canView, e.canUpdate)
		if err != nil {
			uc.logger.Warnw("skipping cc on merge", "ticket_id", lt.ticket.ID(), "email", addr, "error", err)
			continue
		}
		if err := uc.ccs.Create(ctx, cc); err != nil {
			if errors.IsDuplicateError(err) {
				continue
			}
			return fmt.Errorf("failed to copy cc to ticket %d: %w", mainID, err)
		}
		known.add(addr, "")
	}
	return nil
}
