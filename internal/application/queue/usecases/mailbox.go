package usecases

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/openhelpdesk/helpdesk/internal/application/access"
	"github.com/openhelpdesk/helpdesk/internal/application/ticket/forms"
	ticketuc "github.com/openhelpdesk/helpdesk/internal/application/ticket/usecases"
	"github.com/openhelpdesk/helpdesk/internal/domain/queue"
	"github.com/openhelpdesk/helpdesk/internal/domain/ticket"
	vo "github.com/openhelpdesk/helpdesk/internal/domain/ticket/valueobjects"
	"github.com/openhelpdesk/helpdesk/internal/shared/biztime"
	"github.com/openhelpdesk/helpdesk/internal/shared/errors"
	"github.com/openhelpdesk/helpdesk/internal/shared/logger"
)

const noSubject = "(no subject)"

var ticketTagPattern = regexp.MustCompile(`\[([A-Za-z0-9_-]+-\d+)\]`)

// TestMailboxUseCase proves a queue's mailbox settings by logging in.
type TestMailboxUseCase struct {
	queues queue.Repository
	client MailboxClient
	policy *access.Policy
	logger logger.Interface
}

func NewTestMailboxUseCase(queues queue.Repository, client MailboxClient, policy *access.Policy, logger logger.Interface) *TestMailboxUseCase {
	return &TestMailboxUseCase{
		queues: queues,
		client: client,
		policy: policy,
		logger: logger,
	}
}

func (uc *TestMailboxUseCase) Execute(ctx context.Context, actor access.Actor, queueID uint) error {
	uc.logger.Infow("executing test mailbox use case", "queue_id", queueID, "user_id", actor.UserID)

	if err := uc.policy.RequireSuperuser(actor); err != nil {
		return err
	}
	q, err := uc.queues.GetByID(ctx, queueID)
	if err != nil {
		uc.logger.Errorw("failed to get queue", "queue_id", queueID, "error", err)
		return errors.NewInternalError("failed to load queue")
	}
	if q == nil {
		return errors.NewNotFoundError(fmt.Sprintf("queue %d not found", queueID))
	}
	if !q.Mailbox().IsConfigured() {
		return errors.NewValidationError("queue has no mailbox configured")
	}
	if err := uc.client.Test(ctx, q.Mailbox()); err != nil {
		uc.logger.Warnw("mailbox test failed", "queue", q.Slug(), "type", q.Mailbox().Type, "error", err)
		return errors.NewExternalServiceError("mailbox connection failed", err.Error())
	}
	uc.logger.Infow("mailbox test succeeded", "queue", q.Slug())
	return nil
}

type PollMailboxesCommand struct {
	// QueueSlugs limits the run; empty means every email-enabled queue.
	QueueSlugs []string
	// Force ignores the per-queue interval.
	Force bool
}

type PollQueueResult struct {
	Queue     string `json:"queue"`
	Created   int    `json:"created"`
	FollowUps int    `json:"followups"`
	Rejected  int    `json:"rejected"`
	Error     string `json:"error,omitempty"`
}

// PollMailboxesUseCase fetches inbound mail and turns each message into a
// new ticket or a follow-up on the ticket named in its subject tag.
type PollMailboxesUseCase struct {
	queues  queue.Repository
	tickets ticket.TicketRepository
	client  MailboxClient
	parser  MessageParser
	submit  *ticketuc.SubmitTicketUseCase
	update  *ticketuc.UpdateTicketUseCase
	metrics MailboxMetrics
	now     func() time.Time
	logger  logger.Interface
}

func NewPollMailboxesUseCase(
	queues queue.Repository,
	tickets ticket.TicketRepository,
	client MailboxClient,
	parser MessageParser,
	submit *ticketuc.SubmitTicketUseCase,
	update *ticketuc.UpdateTicketUseCase,
	logger logger.Interface,
) *PollMailboxesUseCase {
	return &PollMailboxesUseCase{
		queues:  queues,
		tickets: tickets,
		client:  client,
		parser:  parser,
		submit:  submit,
		update:  update,
		now:     biztime.NowUTC,
		logger:  logger,
	}
}

// WithMetrics reports every processed message to m.
func (uc *PollMailboxesUseCase) WithMetrics(m MailboxMetrics) *PollMailboxesUseCase {
	uc.metrics = m
	return uc
}

func (uc *PollMailboxesUseCase) Execute(ctx context.Context, cmd PollMailboxesCommand) ([]PollQueueResult, error) {
	uc.logger.Infow("executing poll mailboxes use case", "queues", cmd.QueueSlugs, "force", cmd.Force)

	qs, err := uc.queues.ListEmailEnabled(ctx)
	if err != nil {
		uc.logger.Errorw("failed to list email queues", "error", err)
		return nil, errors.NewInternalError("failed to list queues")
	}
	want := make(map[string]bool, len(cmd.QueueSlugs))
	for _, s := range cmd.QueueSlugs {
		want[strings.ToLower(strings.TrimSpace(s))] = true
	}

	now := uc.now()
	results := []PollQueueResult{}
	for _, q := range qs {
		if len(want) > 0 && !want[strings.ToLower(q.Slug())] {
			continue
		}
		if !cmd.Force && !q.MailboxDue(now) {
			continue
		}
		results = append(results, uc.pollQueue(ctx, q, now))
	}
	return results, nil
}

func (uc *PollMailboxesUseCase) pollQueue(ctx context.Context, q *queue.Queue, now time.Time) PollQueueResult {
	res := PollQueueResult{Queue: q.Slug()}
	log := uc.logger.With("queue", q.Slug(), "mailbox", q.Mailbox().Type)

	err := uc.client.Fetch(ctx, q.Mailbox(), func(ctx context.Context, raw io.Reader) error {
		msg, err := uc.parser.Parse(raw)
		if err != nil {
			res.Rejected++
			uc.count(q, "rejected")
			log.Warnw("dropping unparseable message", "error", err)
			// consumed: a broken message would otherwise be retried forever
			return nil
		}
		created, err := uc.route(ctx, q, msg)
		if err != nil {
			res.Rejected++
			uc.count(q, "rejected")
			log.Warnw("failed to import message", "message_id", msg.MessageID, "from", msg.From, "error", err)
			if errors.IsValidationError(err) || errors.IsNotFoundError(err) || errors.IsForbiddenError(err) {
				return nil
			}
			return err
		}
		if created {
			res.Created++
			uc.count(q, "ticket")
		} else {
			res.FollowUps++
			uc.count(q, "followup")
		}
		return nil
	})
	if err != nil {
		res.Error = err.Error()
		log.Errorw("mailbox fetch failed", "error", err)
	}

	q.MarkChecked(now)
	if err := uc.queues.UpdateLastCheck(ctx, q.ID(), now); err != nil {
		log.Errorw("failed to record mailbox check", "error", err)
	}
	log.Infow("mailbox polled", "created", res.Created, "followups", res.FollowUps, "rejected", res.Rejected)
	return res
}

func (uc *PollMailboxesUseCase) count(q *queue.Queue, outcome string) {
	if uc.metrics != nil {
		uc.metrics.MailboxMessage(q.Slug(), outcome)
	}
}

// route returns true when the message opened a new ticket.
func (uc *PollMailboxesUseCase) route(ctx context.Context, q *queue.Queue, msg *InboundMessage) (bool, error) {
	if strings.TrimSpace(msg.From) == "" {
		return false, errors.NewValidationError("message has no sender")
	}
	actor := access.SystemActor(msg.From)
	subject := strings.TrimSpace(msg.Subject)
	if subject == "" {
		subject = noSubject
	}
	followUpTitle := fmt.Sprintf("E-Mail Received from %s", msg.From)

	if id, ok := uc.taggedTicket(subject, q); ok {
		t, err := uc.tickets.GetByID(ctx, id)
		if err != nil {
			return false, err
		}
		if t != nil && t.QueueID() == q.ID() {
			var status string
			if t.Status() == vo.StatusResolved || t.Status() == vo.StatusClosed {
				status = vo.StatusReopened.String()
			}
			_, err := uc.update.Execute(ctx, ticketuc.UpdateTicketCommand{
				TicketID:    id,
				Actor:       actor,
				Title:       followUpTitle,
				Comment:     msg.Body,
				Public:      true,
				NewStatus:   status,
				Attachments: msg.Attachments,
				Silent:      !q.NotifyOnEmailEvents(),
			})
			return false, err
		}
		uc.logger.Infow("subject tag names no ticket in this queue, opening a new one", "queue", q.Slug(), "ticket_id", id)
	}

	_, err := uc.submit.Execute(ctx, ticketuc.SubmitTicketCommand{
		Actor: actor,
		Input: forms.Input{
			QueueID:        q.ID(),
			Title:          subject,
			Body:           msg.Body,
			SubmitterEmail: msg.From,
		},
		Attachments:   msg.Attachments,
		FollowUpTitle: followUpTitle,
	})
	return err == nil, err
}

// taggedTicket reads "[slug-id]" from subject when the slug is q's.
func (uc *PollMailboxesUseCase) taggedTicket(subject string, q *queue.Queue) (uint, bool) {
	for _, m := range ticketTagPattern.FindAllStringSubmatch(subject, -1) {
		slug, id, ok := ticketuc.ParseTicketRef(m[1])
		if ok && strings.EqualFold(slug, q.Slug()) {
			return id, true
		}
	}
	return 0, false
}
