package usecases

import (
	"context"
	"fmt"

	"github.com/openhelpdesk/helpdesk/internal/application/access"
	"github.com/openhelpdesk/helpdesk/internal/application/ticket/dto"
	"github.com/openhelpdesk/helpdesk/internal/application/ticket/forms"
	"github.com/openhelpdesk/helpdesk/internal/domain/kb"
	"github.com/openhelpdesk/helpdesk/internal/domain/queue"
	"github.com/openhelpdesk/helpdesk/internal/domain/ticket"
	vo "github.com/openhelpdesk/helpdesk/internal/domain/ticket/valueobjects"
	"github.com/openhelpdesk/helpdesk/internal/domain/user"
	"github.com/openhelpdesk/helpdesk/internal/shared/errors"
	"github.com/openhelpdesk/helpdesk/internal/shared/logger"
)

const (
	titleOpenedByStaff = "Ticket Opened"
	titleOpenedViaWeb  = "Ticket Opened Via Web"
)

type SubmitTicketCommand struct {
	Actor       access.Actor
	Input       forms.Input
	Attachments []AttachmentUpload
	// FollowUpTitle overrides the title of the opening follow-up.
	FollowUpTitle string
}

type SubmitTicketResult struct {
	Ticket   *dto.TicketDTO
	Warnings []string
}

type SubmitTicketUseCase struct {
	deps       PipelineDeps
	kbItems    kb.ItemRepository
	settings   user.SettingsRepository
	publicForm forms.Form
	staffForm  forms.Form
	logger     logger.Interface
}

func NewSubmitTicketUseCase(
	deps PipelineDeps,
	kbItems kb.ItemRepository,
	settings user.SettingsRepository,
	publicForm forms.Form,
	staffForm forms.Form,
	logger logger.Interface,
) *SubmitTicketUseCase {
	return &SubmitTicketUseCase{
		deps:       deps,
		kbItems:    kbItems,
		settings:   settings,
		publicForm: publicForm,
		staffForm:  staffForm,
		logger:     logger,
	}
}

func (uc *SubmitTicketUseCase) Execute(ctx context.Context, cmd SubmitTicketCommand) (*SubmitTicketResult, error) {
	uc.logger.Infow("executing submit ticket use case",
		"queue_id", cmd.Input.QueueID,
		"actor", cmd.Actor.Kind.String(),
		"user_id", cmd.Actor.UserID,
	)

	uploads, err := uc.deps.Validator.Validate(cmd.Attachments)
	if err != nil {
		return nil, err
	}

	staff := uc.deps.Policy.ActsAsStaff(cmd.Actor)
	in := cmd.Input
	if err := uc.fillSubmitter(ctx, cmd.Actor, &in); err != nil {
		return nil, err
	}
	form := uc.publicForm
	if staff {
		form = uc.staffForm
	}
	if err := form.Clean(&in, staff); err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	q, err := uc.deps.Queues.GetByID(ctx, in.QueueID)
	if err != nil {
		uc.logger.Errorw("failed to get queue", "queue_id", in.QueueID, "error", err)
		return nil, errors.NewInternalError("failed to load queue")
	}
	if q == nil {
		return nil, errors.NewValidationError(fmt.Sprintf("queue %d does not exist", in.QueueID))
	}
	if err := uc.checkQueue(cmd.Actor, q, staff); err != nil {
		return nil, err
	}

	if in.KBItemID != nil {
		if err := uc.checkKBItem(ctx, *in.KBItemID); err != nil {
			return nil, err
		}
	}

	priority, err := vo.NewPriority(in.Priority)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}
	t, err := ticket.NewTicket(q.ID(), in.Title, in.Body, in.SubmitterEmail, priority)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}
	if in.KBItemID != nil {
		t.SetKBItem(*in.KBItemID)
	}
	if in.DueDate != nil {
		t.ChangeDueDate(in.DueDate)
	}
	owner := q.DefaultOwnerID()
	if in.AssignedTo != nil && *in.AssignedTo != 0 {
		if err := uc.checkOwner(ctx, *in.AssignedTo); err != nil {
			return nil, err
		}
		owner = in.AssignedTo
	}
	if owner != nil {
		t.Assign(owner)
	}

	title := cmd.FollowUpTitle
	if title == "" {
		title = titleOpenedViaWeb
		if staff {
			title = titleOpenedByStaff
		}
	}

	var f *ticket.FollowUp
	writer := newAttachmentWriter(uc.deps.Files, uc.logger)
	err = uc.deps.TxMgr.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := uc.deps.Tickets.Create(txCtx, t); err != nil {
			return fmt.Errorf("failed to create ticket: %w", err)
		}
		var ferr error
		f, ferr = ticket.NewFollowUp(t.ID(), cmd.Actor.UserIDPtr(), title, in.Body, true, vo.StatusOpen, 0)
		if ferr != nil {
			return errors.NewValidationError(ferr.Error())
		}
		if err := writer.attach(txCtx, f, attachmentDir(t, q.Slug()), uploads); err != nil {
			return err
		}
		if err := uc.deps.FollowUps.Create(txCtx, f); err != nil {
			return fmt.Errorf("failed to create follow-up: %w", err)
		}
		for _, addr := range in.CCEmails {
			cc, err := ticket.NewCC(t.ID(), nil, addr, true, true)
			if err != nil {
				return errors.NewValidationError(err.Error())
			}
			if err := uc.deps.CCs.Create(txCtx, cc); err != nil {
				return fmt.Errorf("failed to create CC: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		writer.rollback()
		uc.logger.Errorw("ticket submission rolled back", "queue_id", q.ID(), "error", err)
		if errors.IsAppError(err) {
			return nil, err
		}
		return nil, errors.NewInternalError("failed to create ticket")
	}
	uc.deps.metrics().TicketCreated(q.Slug())

	warnings := uc.deps.Notifier.TicketCreated(ctx, t, q, f, cmd.Actor.Email)

	uc.logger.Infow("ticket submitted successfully", "ticket_id", t.ID(), "queue_id", q.ID())

	return &SubmitTicketResult{
		Ticket:   dto.ToTicketDTO(t, q, uc.deps.Machine, true),
		Warnings: warnings,
	}, nil
}

// fillSubmitter uses the account email when the submitter left it empty
// and their settings ask for it.
func (uc *SubmitTicketUseCase) fillSubmitter(ctx context.Context, actor access.Actor, in *forms.Input) error {
	if in.SubmitterEmail != "" || !actor.IsAuthenticated() {
		return nil
	}
	s, err := uc.settings.Get(ctx, actor.UserID)
	if err != nil {
		uc.logger.Errorw("failed to load user settings", "user_id", actor.UserID, "error", err)
		return errors.NewInternalError("failed to load user settings")
	}
	if s.UseEmailAsSubmitter {
		in.SubmitterEmail = actor.Email
	}
	return nil
}

func (uc *SubmitTicketUseCase) checkQueue(actor access.Actor, q *queue.Queue, staff bool) error {
	if staff {
		if !uc.deps.Policy.CanAccessQueue(actor, q) {
			return errors.NewForbiddenError("you may not submit tickets to this queue")
		}
		return nil
	}
	if !q.AllowPublicSubmission() {
		return errors.NewForbiddenError("this queue does not accept public submissions")
	}
	return nil
}

func (uc *SubmitTicketUseCase) checkKBItem(ctx context.Context, itemID uint) error {
	item, err := uc.kbItems.GetByID(ctx, itemID)
	if err != nil {
		uc.logger.Errorw("failed to get kb item", "kbitem_id", itemID, "error", err)
		return errors.NewInternalError("failed to load knowledge base item")
	}
	if item == nil || !item.IsEnabled() {
		return errors.NewValidationError(fmt.Sprintf("knowledge base item %d does not exist", itemID))
	}
	if !item.AllowTicketCreation() {
		return errors.NewValidationError("tickets cannot be created from this knowledge base item")
	}
	return nil
}

func (uc *SubmitTicketUseCase) checkOwner(ctx context.Context, userID uint) error {
	u, err := uc.deps.Users.GetByID(ctx, userID)
	if err != nil {
		uc.logger.Errorw("failed to load owner", "user_id", userID, "error", err)
		return errors.NewInternalError("failed to load user")
	}
	if u == nil || !u.IsActive() || !u.IsStaff() {
		return errors.NewValidationError(fmt.Sprintf("user %d cannot own tickets", userID))
	}
	return nil
}
