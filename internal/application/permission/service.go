package permission

import (
	"context"
	"strings"

	"github.com/openhelpdesk/helpdesk/internal/application/access"
	"github.com/openhelpdesk/helpdesk/internal/domain/permission"
	"github.com/openhelpdesk/helpdesk/internal/domain/queue"
	"github.com/openhelpdesk/helpdesk/internal/domain/user"
	"github.com/openhelpdesk/helpdesk/internal/shared/errors"
	"github.com/openhelpdesk/helpdesk/internal/shared/logger"
)

// QueueGrantDTO is one queue a staff member may work on.
type QueueGrantDTO struct {
	QueueID uint   `json:"queue_id"`
	Slug    string `json:"slug"`
	Title   string `json:"title"`
}

// Service manages per-queue staff grants. Only superusers may change them.
type Service struct {
	users    user.Repository
	queues   queue.Repository
	enforcer permission.Enforcer
	policy   *access.Policy
	logger   logger.Interface
}

func NewService(
	users user.Repository,
	queues queue.Repository,
	enforcer permission.Enforcer,
	policy *access.Policy,
	logger logger.Interface,
) *Service {
	return &Service{
		users:    users,
		queues:   queues,
		enforcer: enforcer,
		policy:   policy,
		logger:   logger,
	}
}

func (s *Service) Grant(ctx context.Context, actor access.Actor, userID, queueID uint) error {
	s.logger.Infow("executing grant queue access", "user_id", userID, "queue_id", queueID)

	u, q, err := s.load(ctx, actor, userID, queueID)
	if err != nil {
		return err
	}
	if !u.IsStaff() {
		return errors.NewValidationError("queue access can only be granted to staff users")
	}
	if err := s.enforcer.AddPolicy(permission.UserSubject(u.ID()), permission.QueueObject(q.Slug()), permission.ActionAccess); err != nil {
		s.logger.Errorw("failed to grant queue access", "user_id", userID, "queue_id", queueID, "error", err)
		return errors.NewInternalError("failed to grant queue access")
	}
	s.logger.Infow("queue access granted", "user_id", userID, "queue_id", queueID)
	return nil
}

func (s *Service) Revoke(ctx context.Context, actor access.Actor, userID, queueID uint) error {
	s.logger.Infow("executing revoke queue access", "user_id", userID, "queue_id", queueID)

	u, q, err := s.load(ctx, actor, userID, queueID)
	if err != nil {
		return err
	}
	if err := s.enforcer.RemovePolicy(permission.UserSubject(u.ID()), permission.QueueObject(q.Slug()), permission.ActionAccess); err != nil {
		s.logger.Errorw("failed to revoke queue access", "user_id", userID, "queue_id", queueID, "error", err)
		return errors.NewInternalError("failed to revoke queue access")
	}
	s.logger.Infow("queue access revoked", "user_id", userID, "queue_id", queueID)
	return nil
}

// List returns the queues userID was granted, skipping grants on queues
// that no longer exist.
func (s *Service) List(ctx context.Context, actor access.Actor, userID uint) ([]QueueGrantDTO, error) {
	if err := s.policy.RequireSuperuser(actor); err != nil {
		return nil, err
	}
	rules, err := s.enforcer.PoliciesFor(permission.UserSubject(userID))
	if err != nil {
		s.logger.Errorw("failed to list queue access", "user_id", userID, "error", err)
		return nil, errors.NewInternalError("failed to list queue access")
	}

	out := make([]QueueGrantDTO, 0, len(rules))
	for _, r := range rules {
		if len(r) < 3 || r[2] != permission.ActionAccess {
			continue
		}
		slug := strings.TrimPrefix(r[1], "queue:")
		q, err := s.queues.GetBySlug(ctx, slug)
		if err != nil {
			s.logger.Errorw("failed to load granted queue", "slug", slug, "error", err)
			return nil, errors.NewInternalError("failed to list queue access")
		}
		if q == nil {
			continue
		}
		out = append(out, QueueGrantDTO{QueueID: q.ID(), Slug: q.Slug(), Title: q.Title()})
	}
	return out, nil
}

func (s *Service) load(ctx context.Context, actor access.Actor, userID, queueID uint) (*user.User, *queue.Queue, error) {
	if err := s.policy.RequireSuperuser(actor); err != nil {
		return nil, nil, err
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		s.logger.Errorw("failed to get user", "user_id", userID, "error", err)
		return nil, nil, errors.NewInternalError("failed to load user")
	}
	if u == nil {
		return nil, nil, errors.NewNotFoundError("user not found")
	}
	q, err := s.queues.GetByID(ctx, queueID)
	if err != nil {
		s.logger.Errorw("failed to get queue", "queue_id", queueID, "error", err)
		return nil, nil, errors.NewInternalError("failed to load queue")
	}
	if q == nil {
		return nil, nil, errors.NewNotFoundError("queue not found")
	}
	return u, q, nil
}
