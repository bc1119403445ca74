package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/openhelpdesk/helpdesk/internal/application/access"
	"github.com/openhelpdesk/helpdesk/internal/application/ticket/forms"
	"github.com/openhelpdesk/helpdesk/internal/domain/queue"
	"github.com/openhelpdesk/helpdesk/internal/domain/ticket"
	vo "github.com/openhelpdesk/helpdesk/internal/domain/ticket/valueobjects"
	"github.com/openhelpdesk/helpdesk/internal/domain/user"
	"github.com/openhelpdesk/helpdesk/internal/shared/config"
	"github.com/openhelpdesk/helpdesk/internal/shared/logger"
	"github.com/openhelpdesk/helpdesk/internal/shared/services/markdown"
)

const (
	testQueueID   uint = 1
	testStaffID   uint = 10
	testUserID    uint = 20
	testSubmitter      = "customer@example.com"
	testStaffMail      = "agent@example.com"
)

// fixture is an in-memory helpdesk. Tickets are stored as copies so a
// failed transaction can be rolled back the way the database would.
type fixture struct {
	t *testing.T

	tickets   map[uint]*ticket.Ticket
	followUps []*ticket.FollowUp
	ccs       []*ticket.CC
	queues    map[uint]*queue.Queue
	users     map[uint]*user.User
	nextID    uint

	ticketRepo     *mockTicketRepository
	followUpRepo   *mockFollowUpRepository
	attachmentRepo *mockAttachmentRepository
	ccRepo         *mockCCRepository
	queueRepo      *mockQueueRepository
	userRepo       *mockUserRepository
	settingsRepo   *mockSettingsRepository

	files  *memFileStore
	mailer *mockMailer
	txErr  error
	txRuns int
	inTx   bool

	cfg  config.HelpdeskConfig
	deps PipelineDeps
}

func newFixture(t *testing.T, cfg config.HelpdeskConfig) *fixture {
	t.Helper()
	f := &fixture{
		t:       t,
		tickets: map[uint]*ticket.Ticket{},
		queues:  map[uint]*queue.Queue{},
		users:   map[uint]*user.User{},
		nextID:  100,
		files:   newMemFileStore(),
		mailer:  &mockMailer{},
		cfg:     cfg,
	}

	f.addQueue(testQueueID, queue.Settings{
		Title:                 "Support",
		Slug:                  "support",
		AllowPublicSubmission: true,
		EscalateDays:          2,
		UpdatedTicketCC:       "team@example.com",
	})
	f.addUser(user.UserData{ID: testStaffID, Username: "agent", Email: testStaffMail, IsStaff: true, IsActive: true})
	f.addUser(user.UserData{ID: testUserID, Username: "customer", Email: testSubmitter, IsActive: true})

	f.ticketRepo = &mockTicketRepository{
		CreateFunc: func(ctx context.Context, tk *ticket.Ticket) error {
			if err := tk.SetID(f.newID()); err != nil {
				return err
			}
			f.tickets[tk.ID()] = cloneTicket(t, tk)
			return nil
		},
		UpdateFunc: func(ctx context.Context, tk *ticket.Ticket) error {
			f.tickets[tk.ID()] = cloneTicket(t, tk)
			return nil
		},
		DeleteFunc: func(ctx context.Context, id uint) error {
			delete(f.tickets, id)
			kept := f.followUps[:0]
			for _, fu := range f.followUps {
				if fu.TicketID() != id {
					kept = append(kept, fu)
				}
			}
			f.followUps = kept
			return nil
		},
		GetByIDFunc: func(ctx context.Context, id uint) (*ticket.Ticket, error) {
			if tk, ok := f.tickets[id]; ok {
				return cloneTicket(t, tk), nil
			}
			return nil, nil
		},
		ListByQueuesFunc: func(ctx context.Context, queueIDs []uint, statuses []vo.TicketStatus) ([]*ticket.Ticket, error) {
			var out []*ticket.Ticket
			for _, tk := range f.tickets {
				if containsUint(queueIDs, tk.QueueID()) && containsStatus(statuses, tk.Status()) {
					out = append(out, cloneTicket(t, tk))
				}
			}
			return out, nil
		},
	}
	f.followUpRepo = &mockFollowUpRepository{
		CreateFunc: func(ctx context.Context, fu *ticket.FollowUp) error {
			if err := fu.SetID(f.newID()); err != nil {
				return err
			}
			for _, a := range fu.Attachments() {
				if err := a.SetID(f.newID()); err != nil {
					return err
				}
			}
			f.followUps = append(f.followUps, fu)
			return nil
		},
		DeleteFunc: func(ctx context.Context, id uint) error {
			kept := f.followUps[:0]
			for _, fu := range f.followUps {
				if fu.ID() != id {
					kept = append(kept, fu)
				}
			}
			f.followUps = kept
			return nil
		},
		GetByIDFunc: func(ctx context.Context, id uint) (*ticket.FollowUp, error) {
			for _, fu := range f.followUps {
				if fu.ID() == id {
					return fu, nil
				}
			}
			return nil, nil
		},
		ListByTicketFunc: func(ctx context.Context, ticketID uint, publicOnly bool) ([]*ticket.FollowUp, error) {
			var out []*ticket.FollowUp
			for _, fu := range f.followUps {
				if fu.TicketID() == ticketID && (!publicOnly || fu.IsPublic()) {
					out = append(out, fu)
				}
			}
			return out, nil
		},
		MoveToTicketFunc: func(ctx context.Context, from, to uint) (int64, error) {
			var n int64
			for _, fu := range f.followUps {
				if fu.TicketID() == from {
					fu.MoveTo(to)
					n++
				}
			}
			return n, nil
		},
	}
	f.attachmentRepo = &mockAttachmentRepository{
		GetByIDFunc: func(ctx context.Context, id uint) (*ticket.Attachment, error) {
			for _, fu := range f.followUps {
				for _, a := range fu.Attachments() {
					if a.ID() == id {
						return a, nil
					}
				}
			}
			return nil, nil
		},
		ListByFollowUpFunc: func(ctx context.Context, followUpID uint) ([]*ticket.Attachment, error) {
			for _, fu := range f.followUps {
				if fu.ID() == followUpID {
					return fu.Attachments(), nil
				}
			}
			return nil, nil
		},
		ListByTicketFunc: func(ctx context.Context, ticketID uint) ([]*ticket.Attachment, error) {
			var out []*ticket.Attachment
			for _, fu := range f.followUps {
				if fu.TicketID() == ticketID {
					out = append(out, fu.Attachments()...)
				}
			}
			return out, nil
		},
	}
	f.ccRepo = &mockCCRepository{
		CreateFunc: func(ctx context.Context, cc *ticket.CC) error {
			if err := cc.SetID(f.newID()); err != nil {
				return err
			}
			f.ccs = append(f.ccs, cc)
			return nil
		},
		ListByTicketFunc: func(ctx context.Context, ticketID uint) ([]*ticket.CC, error) {
			var out []*ticket.CC
			for _, cc := range f.ccs {
				if cc.TicketID() == ticketID {
					out = append(out, cc)
				}
			}
			return out, nil
		},
	}
	f.queueRepo = &mockQueueRepository{
		GetByIDFunc: func(ctx context.Context, id uint) (*queue.Queue, error) {
			return f.queues[id], nil
		},
		ListWithEscalationFunc: func(ctx context.Context) ([]*queue.Queue, error) {
			var out []*queue.Queue
			for _, q := range f.queues {
				if q.EscalateDays() > 0 {
					out = append(out, q)
				}
			}
			return out, nil
		},
	}
	f.userRepo = &mockUserRepository{
		GetByIDFunc: func(ctx context.Context, id uint) (*user.User, error) {
			return f.users[id], nil
		},
		CountFunc: func(ctx context.Context) (int64, error) {
			return int64(len(f.users)), nil
		},
	}
	f.settingsRepo = &mockSettingsRepository{}

	log := logger.NewNopLogger()
	machine, err := vo.NewStatusMachine([]vo.ExtraStatus{{Name: "waiting_on_customer", Label: "Waiting on customer"}})
	require.NoError(t, err)

	f.deps = PipelineDeps{
		Tickets:     f.ticketRepo,
		FollowUps:   f.followUpRepo,
		Attachments: f.attachmentRepo,
		CCs:         f.ccRepo,
		Queues:      f.queueRepo,
		Users:       f.userRepo,
		TxMgr:       f,
		Machine:     machine,
		Policy:      access.NewPolicy(cfg, nil, log),
		Validator: NewAttachmentValidator(config.AttachmentConfig{
			MaxBytes:          64,
			AllowedExtensions: []string{".txt", ".pdf"},
		}),
		Files:    f.files,
		Notifier: NewNotifier(f.mailer, f.userRepo, f.settingsRepo, "helpdesk@example.com", time.Second, nil, log),
	}
	return f
}

// RunInTransaction snapshots the store and restores it when fn fails.
func (f *fixture) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	f.txRuns++
	f.inTx = true
	defer func() { f.inTx = false }()
	tickets := make(map[uint]*ticket.Ticket, len(f.tickets))
	for id, tk := range f.tickets {
		tickets[id] = tk
	}
	followUps := append([]*ticket.FollowUp(nil), f.followUps...)
	ccs := append([]*ticket.CC(nil), f.ccs...)

	err := fn(ctx)
	if err == nil && f.txErr != nil {
		err = f.txErr
	}
	if err != nil {
		f.tickets, f.followUps, f.ccs = tickets, followUps, ccs
	}
	return err
}

func (f *fixture) newID() uint {
	f.nextID++
	return f.nextID
}

func (f *fixture) addQueue(id uint, s queue.Settings) *queue.Queue {
	q, err := queue.ReconstructQueue(queue.QueueData{ID: id, Settings: s})
	require.NoError(f.t, err)
	f.queues[id] = q
	return q
}

func (f *fixture) addUser(d user.UserData) *user.User {
	if d.PasswordHash == "" {
		d.PasswordHash = "hash"
	}
	u, err := user.ReconstructUser(d)
	require.NoError(f.t, err)
	f.users[d.ID] = u
	return u
}

// addTicket stores a ticket in the given status, created age ago.
func (f *fixture) addTicket(status vo.TicketStatus, age time.Duration) *ticket.Ticket {
	now := time.Now().UTC()
	tk, err := ticket.ReconstructTicket(ticket.TicketData{
		ID:             f.newID(),
		QueueID:        testQueueID,
		Title:          "Printer on fire",
		Description:    "It is very hot.",
		Status:         status,
		SubmitterEmail: testSubmitter,
		Priority:       vo.PriorityNormal,
		SecretKey:      "0b7c1a52-6d0e-4f55-9d52-2f3c9c0a8d11",
		CreatedAt:      now.Add(-age),
		UpdatedAt:      now.Add(-age),
	})
	require.NoError(f.t, err)
	f.tickets[tk.ID()] = tk
	return tk
}

func (f *fixture) ticket(id uint) *ticket.Ticket {
	tk, ok := f.tickets[id]
	require.True(f.t, ok, "ticket %d missing", id)
	return tk
}

func (f *fixture) followUpsFor(ticketID uint) []*ticket.FollowUp {
	var out []*ticket.FollowUp
	for _, fu := range f.followUps {
		if fu.TicketID() == ticketID {
			out = append(out, fu)
		}
	}
	return out
}

func (f *fixture) updateUseCase() *UpdateTicketUseCase {
	return NewUpdateTicketUseCase(f.deps, logger.NewNopLogger())
}

func (f *fixture) submitUseCase() *SubmitTicketUseCase {
	reg := forms.NewRegistry(3)
	form, err := reg.Get("default")
	require.NoError(f.t, err)
	return NewSubmitTicketUseCase(f.deps, &mockKBItemRepository{}, f.settingsRepo, form, form, logger.NewNopLogger())
}

func (f *fixture) publicViewUseCase() *PublicViewUseCase {
	return NewPublicViewUseCase(f.deps, markdown.NewRenderer(), f.updateUseCase(), "", logger.NewNopLogger())
}

func staffActor() access.Actor {
	return access.Actor{Kind: access.ActorStaff, UserID: testStaffID, Email: testStaffMail}
}

func superuserActor() access.Actor {
	a := staffActor()
	a.IsSuperuser = true
	return a
}

func customerActor() access.Actor {
	return access.Actor{Kind: access.ActorUser, UserID: testUserID, Email: testSubmitter}
}

func cloneTicket(t *testing.T, tk *ticket.Ticket) *ticket.Ticket {
	t.Helper()
	c, err := ticket.ReconstructTicket(ticket.TicketData{
		ID:             tk.ID(),
		QueueID:        tk.QueueID(),
		Title:          tk.Title(),
		Description:    tk.Description(),
		Status:         tk.Status(),
		SubmitterEmail: tk.SubmitterEmail(),
		AssignedTo:     tk.AssignedTo(),
		Priority:       tk.Priority(),
		DueDate:        tk.DueDate(),
		SecretKey:      tk.SecretKey(),
		OnHold:         tk.OnHold(),
		Resolution:     tk.Resolution(),
		MergedTo:       tk.MergedTo(),
		KBItemID:       tk.KBItemID(),
		LastEscalation: tk.LastEscalation(),
		CreatedAt:      tk.CreatedAt(),
		UpdatedAt:      tk.UpdatedAt(),
	})
	require.NoError(t, err)
	return c
}

func containsUint(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func containsStatus(statuses []vo.TicketStatus, s vo.TicketStatus) bool {
	for _, v := range statuses {
		if v == s {
			return true
		}
	}
	return false
}
