package usecases

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/openhelpdesk/helpdesk/internal/domain/queue"
	qvo "github.com/openhelpdesk/helpdesk/internal/domain/queue/valueobjects"
	"github.com/openhelpdesk/helpdesk/internal/domain/ticket"
	"github.com/openhelpdesk/helpdesk/internal/domain/user"
)

// memQueues is an in-memory queue.Repository.
type memQueues struct {
	byID       map[uint]*queue.Queue
	withTicket map[uint]bool
	checked    map[uint]time.Time
	nextID     uint
}

func newMemQueues() *memQueues {
	return &memQueues{byID: map[uint]*queue.Queue{}, withTicket: map[uint]bool{}, checked: map[uint]time.Time{}}
}

func (m *memQueues) Create(ctx context.Context, q *queue.Queue) error {
	m.nextID++
	if err := q.SetID(m.nextID); err != nil {
		return err
	}
	m.byID[q.ID()] = q
	return nil
}

func (m *memQueues) Update(ctx context.Context, q *queue.Queue) error {
	m.byID[q.ID()] = q
	return nil
}

func (m *memQueues) Delete(ctx context.Context, id uint) error {
	delete(m.byID, id)
	return nil
}

func (m *memQueues) GetByID(ctx context.Context, id uint) (*queue.Queue, error) {
	return m.byID[id], nil
}

func (m *memQueues) GetBySlug(ctx context.Context, slug string) (*queue.Queue, error) {
	for _, q := range m.byID {
		if strings.EqualFold(q.Slug(), slug) {
			return q, nil
		}
	}
	return nil, nil
}

func (m *memQueues) GetByIDs(ctx context.Context, ids []uint) ([]*queue.Queue, error) {
	var out []*queue.Queue
	for _, id := range ids {
		if q, ok := m.byID[id]; ok {
			out = append(out, q)
		}
	}
	return out, nil
}

func (m *memQueues) List(ctx context.Context, publicOnly bool) ([]*queue.Queue, error) {
	var out []*queue.Queue
	for id := uint(1); id <= m.nextID; id++ {
		q, ok := m.byID[id]
		if ok && (!publicOnly || q.AllowPublicSubmission()) {
			out = append(out, q)
		}
	}
	return out, nil
}

func (m *memQueues) ListWithEscalation(ctx context.Context) ([]*queue.Queue, error) {
	return nil, nil
}

func (m *memQueues) ListEmailEnabled(ctx context.Context) ([]*queue.Queue, error) {
	var out []*queue.Queue
	for id := uint(1); id <= m.nextID; id++ {
		if q, ok := m.byID[id]; ok && q.AllowEmailSubmission() {
			out = append(out, q)
		}
	}
	return out, nil
}

func (m *memQueues) UpdateLastCheck(ctx context.Context, id uint, at time.Time) error {
	m.checked[id] = at
	return nil
}

func (m *memQueues) HasTickets(ctx context.Context, id uint) (bool, error) {
	return m.withTicket[id], nil
}

// memTickets keeps tickets and follow-ups. Methods the poller never calls
// fall through to the nil embedded interfaces.
type memTickets struct {
	ticket.TicketRepository
	tickets map[uint]*ticket.Ticket
	nextID  uint
}

func (m *memTickets) Create(ctx context.Context, t *ticket.Ticket) error {
	m.nextID++
	if err := t.SetID(m.nextID); err != nil {
		return err
	}
	m.tickets[t.ID()] = t
	return nil
}

func (m *memTickets) Update(ctx context.Context, t *ticket.Ticket) error {
	m.tickets[t.ID()] = t
	return nil
}

func (m *memTickets) GetByID(ctx context.Context, id uint) (*ticket.Ticket, error) {
	return m.tickets[id], nil
}

func (m *memTickets) GetByIDForUpdate(ctx context.Context, id uint) (*ticket.Ticket, error) {
	return m.GetByID(ctx, id)
}

type memFollowUps struct {
	ticket.FollowUpRepository
	items  []*ticket.FollowUp
	nextID uint
}

func (m *memFollowUps) Create(ctx context.Context, f *ticket.FollowUp) error {
	m.nextID++
	if err := f.SetID(m.nextID); err != nil {
		return err
	}
	m.items = append(m.items, f)
	return nil
}

type memCCs struct {
	ticket.CCRepository
}

func (memCCs) ListByTicket(ctx context.Context, ticketID uint) ([]*ticket.CC, error) {
	return nil, nil
}

type noUsers struct {
	user.Repository
}

func (noUsers) GetByID(ctx context.Context, id uint) (*user.User, error) {
	return nil, nil
}

type inlineTx struct{}

func (inlineTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// fakeMailbox hands out raw messages and records which ones were consumed.
type fakeMailbox struct {
	messages []string
	consumed []string
	TestErr  error
	FetchErr error
}

func (f *fakeMailbox) Test(ctx context.Context, cfg qvo.MailboxConfig) error {
	return f.TestErr
}

func (f *fakeMailbox) Fetch(ctx context.Context, cfg qvo.MailboxConfig, handle MessageHandler) error {
	if f.FetchErr != nil {
		return f.FetchErr
	}
	for _, m := range f.messages {
		if err := handle(ctx, strings.NewReader(m)); err != nil {
			return err
		}
		f.consumed = append(f.consumed, m)
	}
	return nil
}

// lineParser reads "From|Subject|Body". Anything else is unparseable.
type lineParser struct{}

func (lineParser) Parse(raw io.Reader) (*InboundMessage, error) {
	b, err := io.ReadAll(raw)
	if err != nil {
		return nil, err
	}
	parts := strings.SplitN(string(b), "|", 3)
	if len(parts) != 3 {
		return nil, io.ErrUnexpectedEOF
	}
	return &InboundMessage{MessageID: "<" + parts[1] + ">", From: parts[0], Subject: parts[1], Body: parts[2]}, nil
}
