package usecases

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/openhelpdesk/helpdesk/internal/domain/kb"
	"github.com/openhelpdesk/helpdesk/internal/domain/queue"
	"github.com/openhelpdesk/helpdesk/internal/domain/ticket"
	vo "github.com/openhelpdesk/helpdesk/internal/domain/ticket/valueobjects"
	"github.com/openhelpdesk/helpdesk/internal/domain/user"
)

type mockTicketRepository struct {
	CreateFunc          func(ctx context.Context, t *ticket.Ticket) error
	UpdateFunc          func(ctx context.Context, t *ticket.Ticket) error
	DeleteFunc          func(ctx context.Context, ticketID uint) error
	GetByIDFunc         func(ctx context.Context, ticketID uint) (*ticket.Ticket, error)
	GetForUpdateFunc    func(ctx context.Context, ticketID uint) (*ticket.Ticket, error)
	ListFunc            func(ctx context.Context, filter ticket.TicketFilter) ([]*ticket.Ticket, int64, error)
	CountByStatusFunc   func(ctx context.Context) (map[vo.TicketStatus]int64, error)
	CountUnassignedFunc func(ctx context.Context, statuses []vo.TicketStatus) (int64, error)
	CountAssignedToFunc func(ctx context.Context, userID uint, statuses []vo.TicketStatus) (int64, error)
	ListByQueuesFunc    func(ctx context.Context, queueIDs []uint, statuses []vo.TicketStatus) ([]*ticket.Ticket, error)
}

func (m *mockTicketRepository) Create(ctx context.Context, t *ticket.Ticket) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, t)
	}
	return nil
}

func (m *mockTicketRepository) Update(ctx context.Context, t *ticket.Ticket) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, t)
	}
	return nil
}

func (m *mockTicketRepository) Delete(ctx context.Context, ticketID uint) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, ticketID)
	}
	return nil
}

func (m *mockTicketRepository) GetByID(ctx context.Context, ticketID uint) (*ticket.Ticket, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, ticketID)
	}
	return nil, nil
}

func (m *mockTicketRepository) GetByIDForUpdate(ctx context.Context, ticketID uint) (*ticket.Ticket, error) {
	if m.GetForUpdateFunc != nil {
		return m.GetForUpdateFunc(ctx, ticketID)
	}
	return m.GetByID(ctx, ticketID)
}

func (m *mockTicketRepository) List(ctx context.Context, filter ticket.TicketFilter) ([]*ticket.Ticket, int64, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	return nil, 0, nil
}

func (m *mockTicketRepository) CountByStatus(ctx context.Context) (map[vo.TicketStatus]int64, error) {
	if m.CountByStatusFunc != nil {
		return m.CountByStatusFunc(ctx)
	}
	return map[vo.TicketStatus]int64{}, nil
}

func (m *mockTicketRepository) CountUnassigned(ctx context.Context, statuses []vo.TicketStatus) (int64, error) {
	if m.CountUnassignedFunc != nil {
		return m.CountUnassignedFunc(ctx, statuses)
	}
	return 0, nil
}

func (m *mockTicketRepository) CountAssignedTo(ctx context.Context, userID uint, statuses []vo.TicketStatus) (int64, error) {
	if m.CountAssignedToFunc != nil {
		return m.CountAssignedToFunc(ctx, userID, statuses)
	}
	return 0, nil
}

func (m *mockTicketRepository) ListByQueues(ctx context.Context, queueIDs []uint, statuses []vo.TicketStatus) ([]*ticket.Ticket, error) {
	if m.ListByQueuesFunc != nil {
		return m.ListByQueuesFunc(ctx, queueIDs, statuses)
	}
	return nil, nil
}

type mockFollowUpRepository struct {
	CreateFunc       func(ctx context.Context, f *ticket.FollowUp) error
	UpdateFunc       func(ctx context.Context, f *ticket.FollowUp) error
	DeleteFunc       func(ctx context.Context, followUpID uint) error
	GetByIDFunc      func(ctx context.Context, followUpID uint) (*ticket.FollowUp, error)
	ListByTicketFunc func(ctx context.Context, ticketID uint, publicOnly bool) ([]*ticket.FollowUp, error)
	ListFunc         func(ctx context.Context, page, pageSize int) ([]*ticket.FollowUp, int64, error)
	MoveToTicketFunc func(ctx context.Context, fromTicketID, toTicketID uint) (int64, error)
}

func (m *mockFollowUpRepository) Create(ctx context.Context, f *ticket.FollowUp) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, f)
	}
	return nil
}

func (m *mockFollowUpRepository) Update(ctx context.Context, f *ticket.FollowUp) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, f)
	}
	return nil
}

func (m *mockFollowUpRepository) Delete(ctx context.Context, followUpID uint) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, followUpID)
	}
	return nil
}

func (m *mockFollowUpRepository) GetByID(ctx context.Context, followUpID uint) (*ticket.FollowUp, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, followUpID)
	}
	return nil, nil
}

func (m *mockFollowUpRepository) ListByTicket(ctx context.Context, ticketID uint, publicOnly bool) ([]*ticket.FollowUp, error) {
	if m.ListByTicketFunc != nil {
		return m.ListByTicketFunc(ctx, ticketID, publicOnly)
	}
	return nil, nil
}

func (m *mockFollowUpRepository) List(ctx context.Context, page, pageSize int) ([]*ticket.FollowUp, int64, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, page, pageSize)
	}
	return nil, 0, nil
}

func (m *mockFollowUpRepository) MoveToTicket(ctx context.Context, fromTicketID, toTicketID uint) (int64, error) {
	if m.MoveToTicketFunc != nil {
		return m.MoveToTicketFunc(ctx, fromTicketID, toTicketID)
	}
	return 0, nil
}

type mockAttachmentRepository struct {
	CreateFunc         func(ctx context.Context, a *ticket.Attachment) error
	DeleteFunc         func(ctx context.Context, attachmentID uint) error
	GetByIDFunc        func(ctx context.Context, attachmentID uint) (*ticket.Attachment, error)
	ListFunc           func(ctx context.Context, page, pageSize int) ([]*ticket.Attachment, int64, error)
	ListByFollowUpFunc func(ctx context.Context, followUpID uint) ([]*ticket.Attachment, error)
	ListByTicketFunc   func(ctx context.Context, ticketID uint) ([]*ticket.Attachment, error)
}

func (m *mockAttachmentRepository) Create(ctx context.Context, a *ticket.Attachment) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, a)
	}
	return nil
}

func (m *mockAttachmentRepository) Delete(ctx context.Context, attachmentID uint) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, attachmentID)
	}
	return nil
}

func (m *mockAttachmentRepository) GetByID(ctx context.Context, attachmentID uint) (*ticket.Attachment, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, attachmentID)
	}
	return nil, nil
}

func (m *mockAttachmentRepository) List(ctx context.Context, page, pageSize int) ([]*ticket.Attachment, int64, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, page, pageSize)
	}
	return nil, 0, nil
}

func (m *mockAttachmentRepository) ListByFollowUp(ctx context.Context, followUpID uint) ([]*ticket.Attachment, error) {
	if m.ListByFollowUpFunc != nil {
		return m.ListByFollowUpFunc(ctx, followUpID)
	}
	return nil, nil
}

func (m *mockAttachmentRepository) ListByTicket(ctx context.Context, ticketID uint) ([]*ticket.Attachment, error) {
	if m.ListByTicketFunc != nil {
		return m.ListByTicketFunc(ctx, ticketID)
	}
	return nil, nil
}

type mockCCRepository struct {
	CreateFunc       func(ctx context.Context, cc *ticket.CC) error
	DeleteFunc       func(ctx context.Context, ccID uint) error
	GetByIDFunc      func(ctx context.Context, ccID uint) (*ticket.CC, error)
	ListByTicketFunc func(ctx context.Context, ticketID uint) ([]*ticket.CC, error)
	ListForUserFunc  func(ctx context.Context, userID uint, email string) ([]*ticket.CC, error)
}

func (m *mockCCRepository) Create(ctx context.Context, cc *ticket.CC) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, cc)
	}
	return nil
}

func (m *mockCCRepository) Delete(ctx context.Context, ccID uint) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, ccID)
	}
	return nil
}

func (m *mockCCRepository) GetByID(ctx context.Context, ccID uint) (*ticket.CC, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, ccID)
	}
	return nil, nil
}

func (m *mockCCRepository) ListByTicket(ctx context.Context, ticketID uint) ([]*ticket.CC, error) {
	if m.ListByTicketFunc != nil {
		return m.ListByTicketFunc(ctx, ticketID)
	}
	return nil, nil
}

func (m *mockCCRepository) ListForUser(ctx context.Context, userID uint, email string) ([]*ticket.CC, error) {
	if m.ListForUserFunc != nil {
		return m.ListForUserFunc(ctx, userID, email)
	}
	return nil, nil
}

type mockQueueRepository struct {
	CreateFunc             func(ctx context.Context, q *queue.Queue) error
	UpdateFunc             func(ctx context.Context, q *queue.Queue) error
	GetByIDFunc            func(ctx context.Context, id uint) (*queue.Queue, error)
	GetBySlugFunc          func(ctx context.Context, slug string) (*queue.Queue, error)
	ListFunc               func(ctx context.Context, publicOnly bool) ([]*queue.Queue, error)
	ListWithEscalationFunc func(ctx context.Context) ([]*queue.Queue, error)
}

func (m *mockQueueRepository) Create(ctx context.Context, q *queue.Queue) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, q)
	}
	return nil
}

func (m *mockQueueRepository) Update(ctx context.Context, q *queue.Queue) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, q)
	}
	return nil
}

func (m *mockQueueRepository) Delete(ctx context.Context, id uint) error {
	return nil
}

func (m *mockQueueRepository) GetByID(ctx context.Context, id uint) (*queue.Queue, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockQueueRepository) GetBySlug(ctx context.Context, slug string) (*queue.Queue, error) {
	if m.GetBySlugFunc != nil {
		return m.GetBySlugFunc(ctx, slug)
	}
	return nil, nil
}

func (m *mockQueueRepository) GetByIDs(ctx context.Context, ids []uint) ([]*queue.Queue, error) {
	var out []*queue.Queue
	for _, id := range ids {
		q, err := m.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if q != nil {
			out = append(out, q)
		}
	}
	return out, nil
}

func (m *mockQueueRepository) List(ctx context.Context, publicOnly bool) ([]*queue.Queue, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, publicOnly)
	}
	return nil, nil
}

func (m *mockQueueRepository) ListWithEscalation(ctx context.Context) ([]*queue.Queue, error) {
	if m.ListWithEscalationFunc != nil {
		return m.ListWithEscalationFunc(ctx)
	}
	return nil, nil
}

func (m *mockQueueRepository) ListEmailEnabled(ctx context.Context) ([]*queue.Queue, error) {
	return nil, nil
}

func (m *mockQueueRepository) UpdateLastCheck(ctx context.Context, id uint, at time.Time) error {
	return nil
}

func (m *mockQueueRepository) HasTickets(ctx context.Context, id uint) (bool, error) {
	return false, nil
}

type mockUserRepository struct {
	GetByIDFunc  func(ctx context.Context, id uint) (*user.User, error)
	GetByIDsFunc func(ctx context.Context, ids []uint) ([]*user.User, error)
	CountFunc    func(ctx context.Context) (int64, error)
}

func (m *mockUserRepository) Create(ctx context.Context, u *user.User) error { return nil }
func (m *mockUserRepository) Update(ctx context.Context, u *user.User) error { return nil }

func (m *mockUserRepository) GetByID(ctx context.Context, id uint) (*user.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepository) GetByIDs(ctx context.Context, ids []uint) ([]*user.User, error) {
	if m.GetByIDsFunc != nil {
		return m.GetByIDsFunc(ctx, ids)
	}
	var out []*user.User
	for _, id := range ids {
		if u, _ := m.GetByID(ctx, id); u != nil {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *mockUserRepository) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	return nil, nil
}

func (m *mockUserRepository) FindActiveByEmail(ctx context.Context, email string) ([]*user.User, error) {
	return nil, nil
}

func (m *mockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return false, nil
}

func (m *mockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return false, nil
}

func (m *mockUserRepository) HasSuperuser(ctx context.Context) (bool, error) {
	return false, nil
}

func (m *mockUserRepository) ListStaff(ctx context.Context) ([]*user.User, error) {
	return nil, nil
}

func (m *mockUserRepository) Count(ctx context.Context) (int64, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx)
	}
	return 0, nil
}

type mockSettingsRepository struct {
	GetFunc func(ctx context.Context, userID uint) (user.Settings, error)
}

func (m *mockSettingsRepository) Get(ctx context.Context, userID uint) (user.Settings, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, userID)
	}
	return user.DefaultSettings(), nil
}

func (m *mockSettingsRepository) Save(ctx context.Context, userID uint, s user.Settings) error {
	return nil
}

type mockKBItemRepository struct {
	GetByIDFunc    func(ctx context.Context, id uint) (*kb.Item, error)
	VoteTotalsFunc func(ctx context.Context) (int64, int64, error)
}

func (m *mockKBItemRepository) Create(ctx context.Context, it *kb.Item) error { return nil }
func (m *mockKBItemRepository) Update(ctx context.Context, it *kb.Item) error { return nil }
func (m *mockKBItemRepository) Delete(ctx context.Context, id uint) error     { return nil }

func (m *mockKBItemRepository) GetByID(ctx context.Context, id uint) (*kb.Item, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockKBItemRepository) ListByCategory(ctx context.Context, categoryID uint, enabledOnly bool) ([]*kb.Item, error) {
	return nil, nil
}

func (m *mockKBItemRepository) GetByIDForUpdate(ctx context.Context, id uint) (*kb.Item, error) {
	return m.GetByID(ctx, id)
}

func (m *mockKBItemRepository) RecordVote(ctx context.Context, itemID uint, v kb.VoteChange) error {
	return nil
}

func (m *mockKBItemRepository) VoteTotals(ctx context.Context) (int64, int64, error) {
	if m.VoteTotalsFunc != nil {
		return m.VoteTotalsFunc(ctx)
	}
	return 0, 0, nil
}

type memFileStore struct {
	mu      sync.Mutex
	files   map[string][]byte
	removed []string
	next    int
	SaveErr error
}

func newMemFileStore() *memFileStore {
	return &memFileStore{files: map[string][]byte{}}
}

func (s *memFileStore) Save(ctx context.Context, dir, filename string, content []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return "", s.SaveErr
	}
	s.next++
	path := fmt.Sprintf("%s/%d-%s", dir, s.next, filename)
	s.files[path] = append([]byte(nil), content...)
	return path, nil
}

func (s *memFileStore) Open(path string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.files[path]
	if !ok {
		return nil, fmt.Errorf("no such file: %s", path)
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (s *memFileStore) Remove(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, path)
	s.removed = append(s.removed, path)
	return nil
}

type mockMailer struct {
	mu      sync.Mutex
	sent    []TicketMail
	SendErr error
}

func (m *mockMailer) SendTicketMail(ctx context.Context, mail TicketMail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SendErr != nil {
		return m.SendErr
	}
	m.sent = append(m.sent, mail)
	return nil
}

func (m *mockMailer) recipients(template string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, s := range m.sent {
		if s.Template == template {
			out = append(out, s.To)
		}
	}
	return out
}
