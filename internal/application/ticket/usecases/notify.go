package usecases

import (
	"context"
	"strings"
	"time"

	"github.com/openhelpdesk/helpdesk/internal/domain/queue"
	"github.com/openhelpdesk/helpdesk/internal/domain/ticket"
	vo "github.com/openhelpdesk/helpdesk/internal/domain/ticket/valueobjects"
	"github.com/openhelpdesk/helpdesk/internal/domain/user"
	"github.com/openhelpdesk/helpdesk/internal/shared/logger"
)

const defaultSendTimeout = 10 * time.Second

// Notifier fans ticket events out to mail recipients. Sends happen after
// the transaction commits; a failed send becomes a warning and never an
// error.
type Notifier struct {
	mailer      TicketMailer
	users       user.Repository
	settings    user.SettingsRepository
	fromAddress string
	timeout     time.Duration
	metrics     Metrics
	logger      logger.Interface
}

func NewNotifier(
	mailer TicketMailer,
	users user.Repository,
	settings user.SettingsRepository,
	fromAddress string,
	timeout time.Duration,
	metrics Metrics,
	logger logger.Interface,
) *Notifier {
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	if metrics == nil {
		metrics = NopMetrics()
	}
	return &Notifier{
		mailer:      mailer,
		users:       users,
		settings:    settings,
		fromAddress: fromAddress,
		timeout:     timeout,
		metrics:     metrics,
		logger:      logger,
	}
}

// recipientSet dedupes addresses case-insensitively and drops the actor.
type recipientSet struct {
	seen  map[string]bool
	mails []TicketMail
}

func newRecipientSet(exclude string) *recipientSet {
	rs := &recipientSet{seen: map[string]bool{}}
	if exclude = strings.ToLower(strings.TrimSpace(exclude)); exclude != "" {
		rs.seen[exclude] = true
	}
	return rs
}

func (rs *recipientSet) add(to, template string) {
	key := strings.ToLower(strings.TrimSpace(to))
	if key == "" || !strings.Contains(key, "@") || rs.seen[key] {
		return
	}
	rs.seen[key] = true
	rs.mails = append(rs.mails, TicketMail{Template: template, To: strings.TrimSpace(to)})
}

func (rs *recipientSet) has(to string) bool {
	return rs.seen[strings.ToLower(strings.TrimSpace(to))]
}

// TicketCreated notifies the submitter, the queue lists and the default owner.
func (n *Notifier) TicketCreated(ctx context.Context, t *ticket.Ticket, q *queue.Queue, f *ticket.FollowUp, actorEmail string) []string {
	if n == nil {
		return nil
	}
	rs := newRecipientSet("")
	rs.add(t.SubmitterEmail(), MailNewTicketSubmitter)
	if owner := n.ownerAddress(ctx, t, true); owner != "" && !strings.EqualFold(owner, actorEmail) {
		rs.add(owner, MailAssignedOwner)
	}
	for _, addr := range q.NewTicketCCList() {
		rs.add(addr, MailNewTicketCC)
	}
	for _, addr := range q.UpdatedTicketCCList() {
		rs.add(addr, MailNewTicketCC)
	}
	return n.dispatch(ctx, rs.mails, t, q, f)
}

// TicketUpdated notifies after a follow-up. Submitter and CC mails only go
// out for public follow-ups.
func (n *Notifier) TicketUpdated(ctx context.Context, t *ticket.Ticket, q *queue.Queue, f *ticket.FollowUp, ccs []*ticket.CC, ownerChanged bool, actorEmail string) []string {
	if n == nil {
		return nil
	}
	rs := newRecipientSet(actorEmail)

	if f.IsPublic() {
		template := MailUpdatedSubmitter
		switch f.NewStatus() {
		case vo.StatusResolved:
			template = MailResolvedSubmitter
		case vo.StatusClosed:
			template = MailClosedSubmitter
		}
		rs.add(t.SubmitterEmail(), template)
	}

	if owner := n.ownerAddress(ctx, t, ownerChanged); owner != "" {
		if ownerChanged {
			rs.add(owner, MailAssignedOwner)
		} else {
			rs.add(owner, MailUpdatedOwner)
		}
	}

	for _, addr := range q.UpdatedTicketCCList() {
		rs.add(addr, MailUpdatedCC)
	}

	if f.IsPublic() {
		for _, addr := range n.ccAddresses(ctx, ccs) {
			rs.add(addr, MailUpdatedCC)
		}
	}
	return n.dispatch(ctx, rs.mails, t, q, f)
}

// TicketEscalated notifies the queue lists and the owner.
func (n *Notifier) TicketEscalated(ctx context.Context, t *ticket.Ticket, q *queue.Queue, f *ticket.FollowUp) []string {
	if n == nil {
		return nil
	}
	rs := newRecipientSet("")
	if owner := n.ownerAddress(ctx, t, false); owner != "" {
		rs.add(owner, MailEscalated)
	}
	for _, addr := range q.UpdatedTicketCCList() {
		rs.add(addr, MailEscalated)
	}
	return n.dispatch(ctx, rs.mails, t, q, f)
}

// ownerAddress returns the owner's email when their settings allow the mail.
func (n *Notifier) ownerAddress(ctx context.Context, t *ticket.Ticket, assignment bool) string {
	if t.AssignedTo() == nil {
		return ""
	}
	owner, err := n.users.GetByID(ctx, *t.AssignedTo())
	if err != nil || owner == nil || !owner.IsActive() {
		if err != nil {
			n.logger.Warnw("failed to load ticket owner", "ticket_id", t.ID(), "error", err)
		}
		return ""
	}
	s, err := n.settings.Get(ctx, owner.ID())
	if err != nil {
		n.logger.Warnw("failed to load owner settings", "user_id", owner.ID(), "error", err)
		s = user.DefaultSettings()
	}
	if assignment && !s.EmailOnTicketAssign {
		return ""
	}
	if !assignment && !s.EmailOnTicketChange {
		return ""
	}
	return owner.Email().String()
}

func (n *Notifier) ccAddresses(ctx context.Context, ccs []*ticket.CC) []string {
	var out []string
	var userIDs []uint
	for _, cc := range ccs {
		if cc.Email() != "" {
			out = append(out, cc.Email())
		} else if cc.UserID() != nil {
			userIDs = append(userIDs, *cc.UserID())
		}
	}
	if len(userIDs) == 0 {
		return out
	}
	users, err := n.users.GetByIDs(ctx, userIDs)
	if err != nil {
		n.logger.Warnw("failed to load CC users", "error", err)
		return out
	}
	for _, u := range users {
		if u.IsActive() {
			out = append(out, u.Email().String())
		}
	}
	return out
}

func (n *Notifier) dispatch(ctx context.Context, mails []TicketMail, t *ticket.Ticket, q *queue.Queue, f *ticket.FollowUp) []string {
	if n.mailer == nil {
		return nil
	}
	var warnings []string
	from := q.FromAddress(n.fromAddress)
	for _, m := range mails {
		m.From = from
		m.Ticket = t
		m.Queue = q
		m.FollowUp = f

		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.timeout)
		err := n.mailer.SendTicketMail(sendCtx, m)
		cancel()

		n.metrics.NotificationSent(m.Template, err)
		if err != nil {
			n.logger.Warnw("failed to send ticket notification",
				"ticket_id", t.ID(),
				"template", m.Template,
				"to", m.To,
				"error", err,
			)
			warnings = append(warnings, "notification to "+m.To+" could not be sent")
		}
	}
	return warnings
}
