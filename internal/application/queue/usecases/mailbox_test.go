package usecases

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openhelpdesk/helpdesk/internal/application/access"
	"github.com/openhelpdesk/helpdesk/internal/application/ticket/forms"
	ticketuc "github.com/openhelpdesk/helpdesk/internal/application/ticket/usecases"
	"github.com/openhelpdesk/helpdesk/internal/domain/queue"
	qvo "github.com/openhelpdesk/helpdesk/internal/domain/queue/valueobjects"
	"github.com/openhelpdesk/helpdesk/internal/domain/ticket"
	vo "github.com/openhelpdesk/helpdesk/internal/domain/ticket/valueobjects"
	"github.com/openhelpdesk/helpdesk/internal/shared/config"
	"github.com/openhelpdesk/helpdesk/internal/shared/errors"
	"github.com/openhelpdesk/helpdesk/internal/shared/logger"
)

type pollFixture struct {
	queues    *memQueues
	tickets   *memTickets
	followUps *memFollowUps
	mailbox   *fakeMailbox
	queue     *queue.Queue
	uc        *PollMailboxesUseCase
}

func newPollFixture(t *testing.T) *pollFixture {
	t.Helper()
	log := logger.NewNopLogger()
	p := &pollFixture{
		queues:    newMemQueues(),
		tickets:   &memTickets{tickets: map[uint]*ticket.Ticket{}},
		followUps: &memFollowUps{},
		mailbox:   &fakeMailbox{},
	}

	q, err := queue.NewQueue(queue.Settings{
		Title:                "Support",
		Slug:                 "support",
		AllowEmailSubmission: true,
		Mailbox: qvo.MailboxConfig{
			Type:            qvo.MailboxIMAP,
			Host:            "imap.example.com",
			User:            "support@example.com",
			Password:        "secret",
			IntervalMinutes: 5,
		},
	})
	require.NoError(t, err)
	require.NoError(t, p.queues.Create(context.Background(), q))
	p.queue = q

	deps := ticketuc.PipelineDeps{
		Tickets:   p.tickets,
		FollowUps: p.followUps,
		CCs:       memCCs{},
		Queues:    p.queues,
		Users:     noUsers{},
		TxMgr:     inlineTx{},
		Machine:   vo.DefaultStatusMachine(),
		Policy:    access.NewPolicy(config.HelpdeskConfig{}, nil, log),
		Validator: ticketuc.NewAttachmentValidator(config.AttachmentConfig{}),
	}
	form, err := forms.NewRegistry(3).Get("default")
	require.NoError(t, err)
	submit := ticketuc.NewSubmitTicketUseCase(deps, nil, nil, form, form, log)
	update := ticketuc.NewUpdateTicketUseCase(deps, log)
	p.uc = NewPollMailboxesUseCase(p.queues, p.tickets, p.mailbox, lineParser{}, submit, update, log)
	return p
}

func (p *pollFixture) followUpsFor(ticketID uint) []*ticket.FollowUp {
	var out []*ticket.FollowUp
	for _, f := range p.followUps.items {
		if f.TicketID() == ticketID {
			out = append(out, f)
		}
	}
	return out
}

func TestPollMailboxes_Routing(t *testing.T) {
	p := newPollFixture(t)
	existing, err := ticket.NewTicket(p.queue.ID(), "VPN drops", "Every hour.", "dana@example.com", vo.PriorityNormal)
	require.NoError(t, err)
	require.NoError(t, p.tickets.Create(context.Background(), existing))
	_, _, err = existing.ChangeStatus(vo.DefaultStatusMachine(), vo.StatusResolved, true)
	require.NoError(t, err)

	p.mailbox.messages = []string{
		"lee@example.com|Printer is broken|It prints blank pages.",
		fmt.Sprintf("dana@example.com|Re: [support-%d] VPN drops|Still happening.", existing.ID()),
		"garbage without separators",
		"|No sender|Body",
	}

	results, err := p.uc.Execute(context.Background(), PollMailboxesCommand{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	res := results[0]
	assert.Equal(t, "support", res.Queue)
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 1, res.FollowUps)
	assert.Equal(t, 2, res.Rejected)
	assert.Empty(t, res.Error)
	assert.Len(t, p.mailbox.consumed, 4)

	var created *ticket.Ticket
	for _, tk := range p.tickets.tickets {
		if tk.ID() != existing.ID() {
			created = tk
		}
	}
	require.NotNil(t, created)
	assert.Equal(t, "Printer is broken", created.Title())
	assert.Equal(t, "lee@example.com", created.SubmitterEmail())
	fus := p.followUpsFor(created.ID())
	require.Len(t, fus, 1)
	assert.Equal(t, "E-Mail Received from lee@example.com", fus[0].Title())

	assert.Equal(t, vo.StatusReopened, p.tickets.tickets[existing.ID()].Status())
	replies := p.followUpsFor(existing.ID())
	require.Len(t, replies, 1)
	assert.Equal(t, "Still happening.", replies[0].Comment())
	assert.True(t, replies[0].IsPublic())
	assert.Nil(t, replies[0].UserID())

	_, checked := p.queues.checked[p.queue.ID()]
	assert.True(t, checked)
}

func TestPollMailboxes_ForeignTagOpensNewTicket(t *testing.T) {
	p := newPollFixture(t)
	p.mailbox.messages = []string{"lee@example.com|[billing-1] Invoice|Wrong amount."}

	results, err := p.uc.Execute(context.Background(), PollMailboxesCommand{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 1, results[0].Created)
	assert.Zero(t, results[0].FollowUps)
}

func TestPollMailboxes_Interval(t *testing.T) {
	p := newPollFixture(t)
	now := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	p.uc.now = func() time.Time { return now }
	p.queue.MarkChecked(now.Add(-time.Minute))

	results, err := p.uc.Execute(context.Background(), PollMailboxesCommand{})
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = p.uc.Execute(context.Background(), PollMailboxesCommand{Force: true})
	require.NoError(t, err)
	assert.Len(t, results, 1)

	results, err = p.uc.Execute(context.Background(), PollMailboxesCommand{Force: true, QueueSlugs: []string{"billing"}})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestPollMailboxes_FetchError(t *testing.T) {
	p := newPollFixture(t)
	p.mailbox.FetchErr = stderrors.New("dial tcp: i/o timeout")

	results, err := p.uc.Execute(context.Background(), PollMailboxesCommand{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Contains(t, results[0].Error, "i/o timeout")
	_, checked := p.queues.checked[p.queue.ID()]
	assert.True(t, checked)
}

func TestTestMailbox(t *testing.T) {
	log := logger.NewNopLogger()
	queues := newMemQueues()
	q, err := queue.NewQueue(queue.Settings{
		Title:   "Support",
		Mailbox: qvo.MailboxConfig{Type: qvo.MailboxPOP3, Host: "pop.example.com", User: "support"},
	})
	require.NoError(t, err)
	require.NoError(t, queues.Create(context.Background(), q))
	bare, err := queue.NewQueue(queue.Settings{Title: "Bare"})
	require.NoError(t, err)
	require.NoError(t, queues.Create(context.Background(), bare))

	mailbox := &fakeMailbox{}
	uc := NewTestMailboxUseCase(queues, mailbox, access.NewPolicy(config.HelpdeskConfig{}, nil, log), log)
	admin := access.Actor{Kind: access.ActorStaff, UserID: 1, IsSuperuser: true}

	require.NoError(t, uc.Execute(context.Background(), admin, q.ID()))

	mailbox.TestErr = stderrors.New("-ERR authentication failed")
	err = uc.Execute(context.Background(), admin, q.ID())
	require.Error(t, err)
	appErr := errors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrorTypeExternal, appErr.Type)
	assert.Equal(t, 502, appErr.Code)

	err = uc.Execute(context.Background(), admin, bare.ID())
	assert.True(t, errors.IsValidationError(err))

	err = uc.Execute(context.Background(), access.Actor{Kind: access.ActorStaff, UserID: 2}, q.ID())
	assert.True(t, errors.IsForbiddenError(err))
}
