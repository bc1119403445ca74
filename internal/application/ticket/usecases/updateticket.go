package usecases

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openhelpdesk/helpdesk/internal/application/access"
	"github.com/openhelpdesk/helpdesk/internal/application/ticket/dto"
	"github.com/openhelpdesk/helpdesk/internal/domain/ticket"
	vo "github.com/openhelpdesk/helpdesk/internal/domain/ticket/valueobjects"
	"github.com/openhelpdesk/helpdesk/internal/domain/user"
	"github.com/openhelpdesk/helpdesk/internal/shared/db"
	"github.com/openhelpdesk/helpdesk/internal/shared/errors"
	"github.com/openhelpdesk/helpdesk/internal/shared/logger"
)

// FieldEdits are staff-only ticket changes carried by a follow-up. Nil
// fields are left alone.
type FieldEdits struct {
	Title          *string
	Description    *string
	Priority       *int
	Owner          *uint // 0 unassigns
	DueDate        *time.Time
	ClearDueDate   bool
	SubmitterEmail *string
	OnHold         *bool
}

func (e *FieldEdits) Any() bool {
	if e == nil {
		return false
	}
	return e.Title != nil || e.Description != nil || e.Priority != nil || e.Owner != nil ||
		e.DueDate != nil || e.ClearDueDate || e.SubmitterEmail != nil || e.OnHold != nil
}

type UpdateTicketCommand struct {
	TicketID    uint
	Actor       access.Actor
	Title       string
	Comment     string
	Public      bool
	NewStatus   string
	TimeSpent   time.Duration
	Attachments []AttachmentUpload
	Edits       *FieldEdits
	// Silent skips notifications.
	Silent bool
}

type UpdateTicketResult struct {
	Ticket   *dto.TicketDTO
	FollowUp dto.FollowUpDTO
	Warnings []string
}

// UpdateTicketUseCase is the single path through which tickets change after
// creation. It writes one follow-up per call together with the ticket
// mutation, the field changes and the attachments, all in one transaction.
type UpdateTicketUseCase struct {
	loader    ticketLoader
	followUps ticket.FollowUpRepository
	users     user.Repository
	txMgr     db.TxRunner
	machine   *vo.StatusMachine
	policy    *access.Policy
	validator *AttachmentValidator
	files     FileStore
	notifier  *Notifier
	metrics   Metrics
	logger    logger.Interface
}

func NewUpdateTicketUseCase(
	deps PipelineDeps,
	logger logger.Interface,
) *UpdateTicketUseCase {
	return &UpdateTicketUseCase{
		loader:    deps.loader(logger),
		followUps: deps.FollowUps,
		users:     deps.Users,
		txMgr:     deps.TxMgr,
		machine:   deps.Machine,
		policy:    deps.Policy,
		validator: deps.Validator,
		files:     deps.Files,
		notifier:  deps.Notifier,
		metrics:   deps.metrics(),
		logger:    logger,
	}
}

func (uc *UpdateTicketUseCase) Execute(ctx context.Context, cmd UpdateTicketCommand) (*UpdateTicketResult, error) {
	uc.logger.Infow("executing update ticket use case",
		"ticket_id", cmd.TicketID,
		"actor", cmd.Actor.Kind.String(),
		"user_id", cmd.Actor.UserID,
		"new_status", cmd.NewStatus,
	)

	if cmd.TicketID == 0 {
		return nil, errors.NewValidationError("ticket ID is required")
	}
	if cmd.TimeSpent < 0 {
		return nil, errors.NewValidationError("time spent cannot be negative")
	}

	uploads, err := uc.validator.Validate(cmd.Attachments)
	if err != nil {
		uc.logger.Warnw("attachment rejected", "ticket_id", cmd.TicketID, "error", err)
		return nil, err
	}

	var newStatus vo.TicketStatus
	if s := strings.TrimSpace(cmd.NewStatus); s != "" {
		newStatus, err = uc.machine.Parse(s)
		if err != nil {
			return nil, errors.NewValidationError(err.Error())
		}
	}

	// The ticket is read under a row lock so the status check and the
	// change log see the last committed state.
	var (
		lt           *loadedTicket
		f            *ticket.FollowUp
		ownerChanged bool
	)
	writer := newAttachmentWriter(uc.files, uc.logger)
	err = uc.txMgr.RunInTransaction(ctx, func(txCtx context.Context) error {
		var err error
		if lt, err = uc.loader.loadForUpdate(txCtx, cmd.TicketID); err != nil {
			return err
		}
		if f, ownerChanged, err = uc.apply(txCtx, lt, cmd, newStatus); err != nil {
			return err
		}
		if err := writer.attach(txCtx, f, attachmentDir(lt.ticket, lt.queue.Slug()), uploads); err != nil {
			return err
		}
		if err := uc.followUps.Create(txCtx, f); err != nil {
			return fmt.Errorf("failed to create follow-up: %w", err)
		}
		if err := uc.loader.tickets.Update(txCtx, lt.ticket); err != nil {
			return fmt.Errorf("failed to update ticket: %w", err)
		}
		return nil
	})
	if err != nil {
		writer.rollback()
		if errors.IsAppError(err) {
			return nil, err
		}
		uc.logger.Errorw("ticket update rolled back", "ticket_id", cmd.TicketID, "error", err)
		return nil, errors.NewInternalError("failed to update ticket")
	}
	t := lt.ticket
	uc.metrics.FollowUpRecorded(newStatus.String())

	var warnings []string
	if !cmd.Silent {
		warnings = uc.notifier.TicketUpdated(ctx, t, lt.queue, f, lt.ccs, ownerChanged, cmd.Actor.Email)
	}

	uc.logger.Infow("ticket updated successfully",
		"ticket_id", t.ID(),
		"followup_id", f.ID(),
		"status", t.Status(),
		"changes", len(f.Changes()),
	)

	return &UpdateTicketResult{
		Ticket:   dto.ToTicketDTO(t, lt.queue, uc.machine, false),
		FollowUp: dto.ToFollowUpDTO(f),
		Warnings: warnings,
	}, nil
}

// apply checks the actor against the locked ticket, then builds the
// follow-up and mutates the ticket.
func (uc *UpdateTicketUseCase) apply(
	ctx context.Context,
	lt *loadedTicket,
	cmd UpdateTicketCommand,
	newStatus vo.TicketStatus,
) (*ticket.FollowUp, bool, error) {
	t := lt.ticket
	if err := uc.policy.CanUpdate(cmd.Actor, t, lt.queue, lt.ccs, newStatus, cmd.Edits.Any()); err != nil {
		uc.logger.Warnw("ticket update denied", "ticket_id", t.ID(), "user_id", cmd.Actor.UserID, "actor", cmd.Actor.Kind.String())
		return nil, false, err
	}
	staff := uc.policy.ActsAsStaff(cmd.Actor)

	f, err := ticket.NewFollowUp(t.ID(), cmd.Actor.UserIDPtr(), cmd.Title, cmd.Comment, cmd.Public, newStatus, cmd.TimeSpent)
	if err != nil {
		return nil, false, errors.NewValidationError(err.Error())
	}

	if newStatus != "" {
		change, changed, err := t.ChangeStatus(uc.machine, newStatus, staff)
		if err != nil {
			return nil, false, errors.NewValidationError(err.Error())
		}
		if changed {
			f.RecordChange(change)
		}
		if (newStatus == vo.StatusResolved || newStatus == vo.StatusClosed) && strings.TrimSpace(cmd.Comment) != "" {
			t.SetResolution(cmd.Comment)
		}
	}

	ownerChanged, err := uc.applyEdits(ctx, t, f, cmd.Edits)
	if err != nil {
		return nil, false, err
	}

	f.SetDefaultTitle(uc.defaultTitle(f, ownerChanged, t))
	return f, ownerChanged, nil
}

// applyEdits mutates t and records one change per field that differs.
func (uc *UpdateTicketUseCase) applyEdits(ctx context.Context, t *ticket.Ticket, f *ticket.FollowUp, e *FieldEdits) (bool, error) {
	if !e.Any() {
		return false, nil
	}
	record := func(c ticket.FieldChange, changed bool) {
		if changed {
			f.RecordChange(c)
		}
	}

	if e.Title != nil {
		c, changed, err := t.ChangeTitle(*e.Title)
		if err != nil {
			return false, errors.NewValidationError(err.Error())
		}
		record(c, changed)
	}
	if e.Description != nil {
		record(t.ChangeDescription(*e.Description))
	}
	if e.Priority != nil {
		p, err := vo.NewPriority(*e.Priority)
		if err != nil {
			return false, errors.NewValidationError(err.Error())
		}
		c, changed, err := t.ChangePriority(p)
		if err != nil {
			return false, errors.NewValidationError(err.Error())
		}
		record(c, changed)
	}
	ownerChanged := false
	if e.Owner != nil {
		var owner *uint
		if *e.Owner != 0 {
			if err := uc.checkOwner(ctx, *e.Owner); err != nil {
				return false, err
			}
			id := *e.Owner
			owner = &id
		}
		c, changed := t.Assign(owner)
		record(c, changed)
		ownerChanged = changed && owner != nil
	}
	if e.ClearDueDate {
		record(t.ChangeDueDate(nil))
	} else if e.DueDate != nil {
		record(t.ChangeDueDate(e.DueDate))
	}
	if e.SubmitterEmail != nil {
		c, changed, err := t.ChangeSubmitterEmail(*e.SubmitterEmail)
		if err != nil {
			return false, errors.NewValidationError(err.Error())
		}
		record(c, changed)
	}
	if e.OnHold != nil {
		record(t.SetOnHold(*e.OnHold))
	}
	return ownerChanged, nil
}

func (uc *UpdateTicketUseCase) checkOwner(ctx context.Context, userID uint) error {
	u, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		uc.logger.Errorw("failed to load owner", "user_id", userID, "error", err)
		return errors.NewInternalError("failed to load user")
	}
	if u == nil || !u.IsActive() {
		return errors.NewValidationError(fmt.Sprintf("user %d cannot own tickets", userID))
	}
	if !u.IsStaff() && !uc.policy.ActsAsStaff(access.ActorFromUser(u)) {
		return errors.NewValidationError(fmt.Sprintf("user %s is not staff", u.Username()))
	}
	return nil
}

func (uc *UpdateTicketUseCase) defaultTitle(f *ticket.FollowUp, ownerChanged bool, t *ticket.Ticket) string {
	for _, c := range f.Changes() {
		if c.Field() != ticket.FieldStatus {
			continue
		}
		switch vo.TicketStatus(c.NewValue()) {
		case vo.StatusResolved:
			return "Resolved"
		case vo.StatusClosed:
			return "Closed"
		case vo.StatusReopened:
			return "Reopened"
		case vo.StatusDuplicate:
			return "Marked as duplicate"
		default:
			return "Status changed to " + uc.machine.Label(vo.TicketStatus(c.NewValue()))
		}
	}
	if ownerChanged {
		return "Assigned"
	}
	if t.AssignedTo() == nil {
		for _, c := range f.Changes() {
			if c.Field() == ticket.FieldOwner {
				return "Unassigned"
			}
		}
	}
	if len(f.Changes()) > 0 {
		return "Updated"
	}
	return "Comment"
}
