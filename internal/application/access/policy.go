package access

import (
	"github.com/openhelpdesk/helpdesk/internal/domain/kb"
	"github.com/openhelpdesk/helpdesk/internal/domain/permission"
	"github.com/openhelpdesk/helpdesk/internal/domain/queue"
	"github.com/openhelpdesk/helpdesk/internal/domain/ticket"
	vo "github.com/openhelpdesk/helpdesk/internal/domain/ticket/valueobjects"
	"github.com/openhelpdesk/helpdesk/internal/shared/config"
	"github.com/openhelpdesk/helpdesk/internal/shared/errors"
	"github.com/openhelpdesk/helpdesk/internal/shared/logger"
)

// Level is what an actor may do with one ticket. Levels are ordered.
type Level int

const (
	LevelNone Level = iota
	LevelRead
	// LevelComment allows public follow-ups without field edits.
	LevelComment
	LevelFull
)

func (l Level) String() string {
	switch l {
	case LevelRead:
		return "read"
	case LevelComment:
		return "comment"
	case LevelFull:
		return "full"
	default:
		return "none"
	}
}

// Policy answers every "may this actor do that" question. Handlers call it
// explicitly before validation and rendering.
type Policy struct {
	cfg      config.HelpdeskConfig
	enforcer permission.Enforcer
	logger   logger.Interface
}

// NewPolicy builds the policy. enforcer may be nil when per-queue staff
// permissions are off.
func NewPolicy(cfg config.HelpdeskConfig, enforcer permission.Enforcer, logger logger.Interface) *Policy {
	return &Policy{
		cfg:      cfg,
		enforcer: enforcer,
		logger:   logger,
	}
}

// ActsAsStaff reports whether a is treated as helpdesk staff. Regular users
// count as staff when non-staff ticket updates are enabled.
func (p *Policy) ActsAsStaff(a Actor) bool {
	switch a.Kind {
	case ActorStaff, ActorSystem:
		return true
	case ActorUser:
		return p.cfg.AllowNonStaffTicketUpdate
	default:
		return false
	}
}

func (p *Policy) RequireStaff(a Actor) error {
	if !p.ActsAsStaff(a) {
		return errors.NewForbiddenError("staff access required")
	}
	return nil
}

func (p *Policy) RequireSuperuser(a Actor) error {
	if a.Kind != ActorStaff || !a.IsSuperuser {
		return errors.NewForbiddenError("superuser access required")
	}
	return nil
}

func (p *Policy) RequireAuthenticated(a Actor) error {
	if !a.IsAuthenticated() {
		return errors.NewUnauthorizedError("authentication required")
	}
	return nil
}

// CanAccessQueue applies the per-queue casbin policy for staff. Superusers
// and system jobs bypass it.
func (p *Policy) CanAccessQueue(a Actor, q *queue.Queue) bool {
	if !p.ActsAsStaff(a) {
		return false
	}
	if a.Kind == ActorSystem || a.IsSuperuser || !p.cfg.PerQueueStaffPermission {
		return true
	}
	if p.enforcer == nil {
		return false
	}
	allowed, err := p.enforcer.Enforce(permission.UserSubject(a.UserID), permission.QueueObject(q.Slug()), permission.ActionAccess)
	if err != nil {
		p.logger.Warnw("queue permission check failed", "user_id", a.UserID, "queue_id", q.ID(), "error", err)
		return false
	}
	return allowed
}

// RenameQueue keeps per-queue grants attached after a slug change.
func (p *Policy) RenameQueue(oldSlug, newSlug string) error {
	if p.enforcer == nil || oldSlug == newSlug {
		return nil
	}
	return p.enforcer.RenameObject(permission.QueueObject(oldSlug), permission.QueueObject(newSlug))
}

// ForgetQueue drops the grants on a deleted queue.
func (p *Policy) ForgetQueue(slug string) error {
	if p.enforcer == nil {
		return nil
	}
	return p.enforcer.RemoveObject(permission.QueueObject(slug))
}

// AccessibleQueues filters queues down to those a may work on as staff.
func (p *Policy) AccessibleQueues(a Actor, queues []*queue.Queue) []*queue.Queue {
	out := make([]*queue.Queue, 0, len(queues))
	for _, q := range queues {
		if p.CanAccessQueue(a, q) {
			out = append(out, q)
		}
	}
	return out
}

// TicketLevel resolves a's access to t. ccs are the ticket's CC entries.
func (p *Policy) TicketLevel(a Actor, t *ticket.Ticket, q *queue.Queue, ccs []*ticket.CC) Level {
	if p.ActsAsStaff(a) {
		if p.CanAccessQueue(a, q) {
			return LevelFull
		}
		if a.Kind != ActorUser {
			return LevelNone
		}
	}

	switch a.Kind {
	case ActorUser:
		if t.SubmitterMatches(a.Email) {
			return LevelComment
		}
		level := LevelNone
		for _, cc := range ccs {
			if !cc.Matches(a.UserID, a.Email) {
				continue
			}
			if cc.CanUpdate() {
				return LevelComment
			}
			if cc.CanView() {
				level = LevelRead
			}
		}
		return level
	case ActorAnonymous:
		if !t.SubmitterMatches(a.Email) {
			return LevelNone
		}
		if p.cfg.ViewTicketPublic || t.SecretKeyMatches(a.SecretKey) {
			return LevelRead
		}
		return LevelNone
	default:
		return LevelNone
	}
}

// CanView is TicketLevel >= LevelRead as an error.
func (p *Policy) CanView(a Actor, t *ticket.Ticket, q *queue.Queue, ccs []*ticket.CC) error {
	if p.TicketLevel(a, t, q, ccs) < LevelRead {
		return errors.NewForbiddenError("you may not view this ticket")
	}
	return nil
}

// CanUpdate checks a follow-up by a. Non-full actors may only comment,
// except for the submitter accepting a resolution.
func (p *Policy) CanUpdate(a Actor, t *ticket.Ticket, q *queue.Queue, ccs []*ticket.CC, newStatus vo.TicketStatus, fieldEdits bool) error {
	level := p.TicketLevel(a, t, q, ccs)
	if level == LevelFull {
		return nil
	}
	if p.IsResolutionAccept(a, t, newStatus) && !fieldEdits {
		return nil
	}
	if level < LevelComment {
		return errors.NewForbiddenError("you may not update this ticket")
	}
	if fieldEdits || (newStatus != "" && newStatus != t.Status()) {
		return errors.NewForbiddenError("only staff may change ticket fields")
	}
	return nil
}

// IsResolutionAccept reports whether a is the submitter closing a resolved
// ticket. Anonymous callers also need the secret key.
func (p *Policy) IsResolutionAccept(a Actor, t *ticket.Ticket, newStatus vo.TicketStatus) bool {
	if t.Status() != vo.StatusResolved || newStatus != vo.StatusClosed {
		return false
	}
	if !t.SubmitterMatches(a.Email) {
		return false
	}
	switch a.Kind {
	case ActorUser, ActorStaff:
		return true
	case ActorAnonymous:
		return t.SecretKeyMatches(a.SecretKey)
	default:
		return false
	}
}

// CanViewKBCategory gates anonymous callers on the category's public flag.
func (p *Policy) CanViewKBCategory(a Actor, c *kb.Category) bool {
	return a.IsAuthenticated() || c.IsPublic()
}

func (p *Policy) KBEnabled() bool {
	return p.cfg.KBEnabled
}
