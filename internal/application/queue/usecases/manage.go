package usecases

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openhelpdesk/helpdesk/internal/application/access"
	"github.com/openhelpdesk/helpdesk/internal/application/queue/dto"
	"github.com/openhelpdesk/helpdesk/internal/domain/queue"
	qvo "github.com/openhelpdesk/helpdesk/internal/domain/queue/valueobjects"
	"github.com/openhelpdesk/helpdesk/internal/shared/errors"
	"github.com/openhelpdesk/helpdesk/internal/shared/logger"
)

// QueueInput carries queue fields. On update, nil fields keep their value.
type QueueInput struct {
	Title                 *string
	Slug                  *string
	EmailAddress          *string
	Locale                *string
	AllowPublicSubmission *bool
	AllowEmailSubmission  *bool
	EscalateDays          *int
	NewTicketCC           *string
	UpdatedTicketCC       *string
	NotifyOnEmailEvents   *bool
	MailboxType           *string
	MailboxHost           *string
	MailboxPort           *int
	MailboxSSL            *bool
	MailboxUser           *string
	// MailboxPassword is write-only; an empty string keeps the stored one.
	MailboxPassword      *string
	MailboxIMAPFolder    *string
	MailboxLocalDir      *string
	MailboxInterval      *int
	DefaultOwnerID       *uint // 0 clears
	DedicatedTimeMinutes *int
}

func (in QueueInput) applyTo(s *queue.Settings) {
	setString := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	setString(&s.Title, in.Title)
	setString(&s.Slug, in.Slug)
	setString(&s.EmailAddress, in.EmailAddress)
	setString(&s.Locale, in.Locale)
	setString(&s.NewTicketCC, in.NewTicketCC)
	setString(&s.UpdatedTicketCC, in.UpdatedTicketCC)
	if in.AllowPublicSubmission != nil {
		s.AllowPublicSubmission = *in.AllowPublicSubmission
	}
	if in.AllowEmailSubmission != nil {
		s.AllowEmailSubmission = *in.AllowEmailSubmission
	}
	if in.EscalateDays != nil {
		s.EscalateDays = *in.EscalateDays
	}
	if in.NotifyOnEmailEvents != nil {
		s.NotifyOnEmailEvents = *in.NotifyOnEmailEvents
	}
	if in.MailboxType != nil {
		s.Mailbox.Type = qvo.MailboxType(strings.ToLower(strings.TrimSpace(*in.MailboxType)))
	}
	setString(&s.Mailbox.Host, in.MailboxHost)
	if in.MailboxPort != nil {
		s.Mailbox.Port = *in.MailboxPort
	}
	if in.MailboxSSL != nil {
		s.Mailbox.SSL = *in.MailboxSSL
	}
	setString(&s.Mailbox.User, in.MailboxUser)
	if in.MailboxPassword != nil && *in.MailboxPassword != "" {
		s.Mailbox.Password = *in.MailboxPassword
	}
	setString(&s.Mailbox.IMAPFolder, in.MailboxIMAPFolder)
	setString(&s.Mailbox.LocalDir, in.MailboxLocalDir)
	if in.MailboxInterval != nil {
		s.Mailbox.IntervalMinutes = *in.MailboxInterval
	}
	if in.DefaultOwnerID != nil {
		if *in.DefaultOwnerID == 0 {
			s.DefaultOwnerID = nil
		} else {
			id := *in.DefaultOwnerID
			s.DefaultOwnerID = &id
		}
	}
	if in.DedicatedTimeMinutes != nil {
		s.DedicatedTime = time.Duration(*in.DedicatedTimeMinutes) * time.Minute
	}
}

// ManageQueueUseCase is the staff CRUD over queues.
type ManageQueueUseCase struct {
	queues queue.Repository
	policy *access.Policy
	logger logger.Interface
}

func NewManageQueueUseCase(queues queue.Repository, policy *access.Policy, logger logger.Interface) *ManageQueueUseCase {
	return &ManageQueueUseCase{
		queues: queues,
		policy: policy,
		logger: logger,
	}
}

func (uc *ManageQueueUseCase) Create(ctx context.Context, actor access.Actor, in QueueInput) (*dto.QueueDTO, error) {
	uc.logger.Infow("executing create queue use case", "user_id", actor.UserID)

	if err := uc.policy.RequireSuperuser(actor); err != nil {
		return nil, err
	}
	var s queue.Settings
	in.applyTo(&s)
	q, err := queue.NewQueue(s)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}
	if err := uc.ensureSlugFree(ctx, q.Slug(), 0); err != nil {
		return nil, err
	}
	if err := uc.queues.Create(ctx, q); err != nil {
		if errors.IsDuplicateError(err) {
			return nil, errors.NewConflictError("a queue with this slug already exists", q.Slug())
		}
		uc.logger.Errorw("failed to create queue", "slug", q.Slug(), "error", err)
		return nil, errors.NewInternalError("failed to create queue")
	}

	uc.logger.Infow("queue created successfully", "queue_id", q.ID(), "slug", q.Slug())
	return dto.ToQueueDTO(q), nil
}

func (uc *ManageQueueUseCase) Update(ctx context.Context, actor access.Actor, id uint, in QueueInput) (*dto.QueueDTO, error) {
	uc.logger.Infow("executing update queue use case", "queue_id", id, "user_id", actor.UserID)

	if err := uc.policy.RequireSuperuser(actor); err != nil {
		return nil, err
	}
	q, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	oldSlug := q.Slug()
	s := q.Settings()
	in.applyTo(&s)
	if err := q.Update(s); err != nil {
		return nil, errors.NewValidationError(err.Error())
	}
	if err := uc.ensureSlugFree(ctx, q.Slug(), q.ID()); err != nil {
		return nil, err
	}
	if err := uc.queues.Update(ctx, q); err != nil {
		if errors.IsDuplicateError(err) {
			return nil, errors.NewConflictError("a queue with this slug already exists", q.Slug())
		}
		uc.logger.Errorw("failed to update queue", "queue_id", id, "error", err)
		return nil, errors.NewInternalError("failed to update queue")
	}
	if oldSlug != q.Slug() {
		if err := uc.policy.RenameQueue(oldSlug, q.Slug()); err != nil {
			uc.logger.Warnw("failed to move queue permissions", "queue_id", id, "error", err)
		}
	}

	uc.logger.Infow("queue updated successfully", "queue_id", id)
	return dto.ToQueueDTO(q), nil
}

// Delete refuses to drop a queue that still holds tickets.
func (uc *ManageQueueUseCase) Delete(ctx context.Context, actor access.Actor, id uint) error {
	uc.logger.Infow("executing delete queue use case", "queue_id", id, "user_id", actor.UserID)

	if err := uc.policy.RequireSuperuser(actor); err != nil {
		return err
	}
	q, err := uc.get(ctx, id)
	if err != nil {
		return err
	}
	has, err := uc.queues.HasTickets(ctx, id)
	if err != nil {
		uc.logger.Errorw("failed to check queue tickets", "queue_id", id, "error", err)
		return errors.NewInternalError("failed to delete queue")
	}
	if has {
		return errors.NewConflictError("queue still has tickets")
	}
	if err := uc.queues.Delete(ctx, id); err != nil {
		uc.logger.Errorw("failed to delete queue", "queue_id", id, "error", err)
		return errors.NewInternalError("failed to delete queue")
	}
	if err := uc.policy.ForgetQueue(q.Slug()); err != nil {
		uc.logger.Warnw("failed to remove queue permissions", "queue_id", id, "error", err)
	}
	uc.logger.Infow("queue deleted successfully", "queue_id", id)
	return nil
}

func (uc *ManageQueueUseCase) Get(ctx context.Context, actor access.Actor, id uint) (*dto.QueueDTO, error) {
	uc.logger.Infow("executing get queue use case", "queue_id", id)

	if err := uc.policy.RequireStaff(actor); err != nil {
		return nil, err
	}
	q, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !uc.policy.CanAccessQueue(actor, q) {
		return nil, errors.NewForbiddenError("you may not access this queue")
	}
	return dto.ToQueueDTO(q), nil
}

// ListStaff returns the full records of the queues the actor can access.
func (uc *ManageQueueUseCase) ListStaff(ctx context.Context, actor access.Actor) ([]*dto.QueueDTO, error) {
	uc.logger.Infow("executing list queues use case", "user_id", actor.UserID)

	if err := uc.policy.RequireStaff(actor); err != nil {
		return nil, err
	}
	qs, err := uc.queues.List(ctx, false)
	if err != nil {
		uc.logger.Errorw("failed to list queues", "error", err)
		return nil, errors.NewInternalError("failed to list queues")
	}
	out := make([]*dto.QueueDTO, 0, len(qs))
	for _, q := range uc.policy.AccessibleQueues(actor, qs) {
		out = append(out, dto.ToQueueDTO(q))
	}
	return out, nil
}

// ListPublic lists every queue for signed-in users and only queues taking
// public submissions for anonymous ones, ordered by title.
func (uc *ManageQueueUseCase) ListPublic(ctx context.Context, actor access.Actor) ([]dto.PublicQueueDTO, error) {
	qs, err := uc.queues.List(ctx, !actor.IsAuthenticated())
	if err != nil {
		uc.logger.Errorw("failed to list queues", "error", err)
		return nil, errors.NewInternalError("failed to list queues")
	}
	out := dto.ToPublicQueueDTOs(qs)
	if out == nil {
		out = []dto.PublicQueueDTO{}
	}
	return out, nil
}

func (uc *ManageQueueUseCase) get(ctx context.Context, id uint) (*queue.Queue, error) {
	q, err := uc.queues.GetByID(ctx, id)
	if err != nil {
		uc.logger.Errorw("failed to get queue", "queue_id", id, "error", err)
		return nil, errors.NewInternalError("failed to load queue")
	}
	if q == nil {
		return nil, errors.NewNotFoundError(fmt.Sprintf("queue %d not found", id))
	}
	return q, nil
}

func (uc *ManageQueueUseCase) ensureSlugFree(ctx context.Context, slug string, selfID uint) error {
	existing, err := uc.queues.GetBySlug(ctx, slug)
	if err != nil {
		uc.logger.Errorw("failed to check queue slug", "slug", slug, "error", err)
		return errors.NewInternalError("failed to check queue slug")
	}
	if existing != nil && existing.ID() != selfID {
		return errors.NewConflictError("a queue with this slug already exists", slug)
	}
	return nil
}
