package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openhelpdesk/helpdesk/internal/domain/ticket"
	vo "github.com/openhelpdesk/helpdesk/internal/domain/ticket/valueobjects"
	"github.com/openhelpdesk/helpdesk/internal/infrastructure/persistence/models"
	db "github.com/openhelpdesk/helpdesk/internal/shared/db"
)

func createTestTicket(t *testing.T, repo *TicketRepository, queueID uint, title, email string) *ticket.Ticket {
	t.Helper()
	tk, err := ticket.NewTicket(queueID, title, "Printer on floor 3 is jammed", email, vo.PriorityNormal)
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), tk))
	require.NotZero(t, tk.ID())
	return tk
}

func TestTicketRepository_CreateAndGet(t *testing.T) {
	database := setupTestDB(t)
	repo := NewTicketRepository(database)
	ctx := context.Background()

	tk := createTestTicket(t, repo, 1, "Printer jammed", "lee@example.com")

	found, err := repo.GetByID(ctx, tk.ID())
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Printer jammed", found.Title())
	assert.Equal(t, vo.StatusOpen, found.Status())
	assert.Equal(t, tk.SecretKey(), found.SecretKey())
	assert.Equal(t, vo.PriorityNormal, found.Priority())
	assert.Nil(t, found.AssignedTo())

	missing, err := repo.GetByID(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestTicketRepository_UpdateWritesClearedFields(t *testing.T) {
	database := setupTestDB(t)
	repo := NewTicketRepository(database)
	ctx := context.Background()

	tk := createTestTicket(t, repo, 1, "VPN drops", "kim@example.com")
	tk.Assign(ptr(uint(7)))
	tk.SetOnHold(true)
	require.NoError(t, repo.Update(ctx, tk))

	found, err := repo.GetByID(ctx, tk.ID())
	require.NoError(t, err)
	require.NotNil(t, found.AssignedTo())
	assert.Equal(t, uint(7), *found.AssignedTo())
	assert.True(t, found.OnHold())

	found.Assign(nil)
	found.SetOnHold(false)
	require.NoError(t, repo.Update(ctx, found))

	again, err := repo.GetByID(ctx, tk.ID())
	require.NoError(t, err)
	assert.Nil(t, again.AssignedTo())
	assert.False(t, again.OnHold())
}

func TestTicketRepository_UpdateKeepsOtherWritersFields(t *testing.T) {
	database := setupTestDB(t)
	repo := NewTicketRepository(database)
	ctx := context.Background()
	machine, err := vo.NewStatusMachine(nil)
	require.NoError(t, err)

	tk := createTestTicket(t, repo, 1, "Mail bounces", "sam@example.com")

	first, err := repo.GetByID(ctx, tk.ID())
	require.NoError(t, err)
	second, err := repo.GetByID(ctx, tk.ID())
	require.NoError(t, err)

	_, changed, err := first.ChangeStatus(machine, vo.StatusResolved, true)
	require.NoError(t, err)
	require.True(t, changed)
	require.NoError(t, repo.Update(ctx, first))

	_, changed, err = second.ChangePriority(vo.Priority(1))
	require.NoError(t, err)
	require.True(t, changed)
	require.NoError(t, repo.Update(ctx, second))

	found, err := repo.GetByID(ctx, tk.ID())
	require.NoError(t, err)
	assert.Equal(t, vo.StatusResolved, found.Status())
	assert.Equal(t, vo.Priority(1), found.Priority())
	assert.Empty(t, first.DirtyFields())
}

func TestTicketRepository_GetByIDForUpdate(t *testing.T) {
	database := setupTestDB(t)
	repo := NewTicketRepository(database)
	txMgr := db.NewTransactionManager(database)
	ctx := context.Background()

	tk := createTestTicket(t, repo, 1, "Badge reader offline", "ana@example.com")

	err := txMgr.RunInTransaction(ctx, func(txCtx context.Context) error {
		locked, err := repo.GetByIDForUpdate(txCtx, tk.ID())
		require.NoError(t, err)
		require.NotNil(t, locked)
		locked.SetOnHold(true)
		return repo.Update(txCtx, locked)
	})
	require.NoError(t, err)

	found, err := repo.GetByID(ctx, tk.ID())
	require.NoError(t, err)
	assert.True(t, found.OnHold())

	missing, err := repo.GetByIDForUpdate(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestTicketRepository_List(t *testing.T) {
	database := setupTestDB(t)
	repo := NewTicketRepository(database)
	ctx := context.Background()
	machine := vo.DefaultStatusMachine()

	a := createTestTicket(t, repo, 1, "Printer jammed", "lee@example.com")
	b := createTestTicket(t, repo, 1, "VPN 100% broken", "Kim@Example.com")
	c := createTestTicket(t, repo, 2, "New laptop", "lee@example.com")

	_, _, err := c.ChangeStatus(machine, vo.StatusResolved, true)
	require.NoError(t, err)
	b.Assign(ptr(uint(3)))
	require.NoError(t, repo.Update(ctx, b))
	require.NoError(t, repo.Update(ctx, c))

	t.Run("queue and status filters", func(t *testing.T) {
		items, total, err := repo.List(ctx, ticket.TicketFilter{
			QueueIDs: []uint{1, 2},
			Statuses: []vo.TicketStatus{vo.StatusOpen},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, items, 2)
	})

	t.Run("owner filters", func(t *testing.T) {
		items, _, err := repo.List(ctx, ticket.TicketFilter{Unassigned: true})
		require.NoError(t, err)
		assert.ElementsMatch(t, []uint{a.ID(), c.ID()}, ticketIDs(items))

		items, _, err = repo.List(ctx, ticket.TicketFilter{AssignedTo: ptr(uint(3))})
		require.NoError(t, err)
		assert.Equal(t, []uint{b.ID()}, ticketIDs(items))
	})

	t.Run("keyword is case-insensitive and escapes wildcards", func(t *testing.T) {
		items, _, err := repo.List(ctx, ticket.TicketFilter{Keyword: "PRINTER"})
		require.NoError(t, err)
		assert.Equal(t, []uint{a.ID()}, ticketIDs(items))

		items, _, err = repo.List(ctx, ticket.TicketFilter{Keyword: "100%"})
		require.NoError(t, err)
		assert.Equal(t, []uint{b.ID()}, ticketIDs(items))

		items, _, err = repo.List(ctx, ticket.TicketFilter{Keyword: "%"})
		require.NoError(t, err)
		assert.Equal(t, []uint{b.ID()}, ticketIDs(items))
	})

	t.Run("submitter email ignores case", func(t *testing.T) {
		items, _, err := repo.List(ctx, ticket.TicketFilter{SubmitterEmail: "kim@example.com"})
		require.NoError(t, err)
		assert.Equal(t, []uint{b.ID()}, ticketIDs(items))
	})

	t.Run("sort and page", func(t *testing.T) {
		items, total, err := repo.List(ctx, ticket.TicketFilter{SortBy: "title", Page: 1, PageSize: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, items, 2)
		assert.Equal(t, "New laptop", items[0].Title())
		assert.Equal(t, "Printer jammed", items[1].Title())

		items, _, err = repo.List(ctx, ticket.TicketFilter{SortBy: "title; DROP TABLE tickets", SortDesc: true})
		require.NoError(t, err)
		assert.Len(t, items, 3)
	})

	t.Run("counts", func(t *testing.T) {
		byStatus, err := repo.CountByStatus(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), byStatus[vo.StatusOpen])
		assert.Equal(t, int64(1), byStatus[vo.StatusResolved])

		open := machine.OpenClassStatuses()
		n, err := repo.CountUnassigned(ctx, open)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		n, err = repo.CountAssignedTo(ctx, 3, open)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("list by queues", func(t *testing.T) {
		items, err := repo.ListByQueues(ctx, []uint{1}, machine.OpenClassStatuses())
		require.NoError(t, err)
		assert.Equal(t, []uint{a.ID(), b.ID()}, ticketIDs(items))

		items, err = repo.ListByQueues(ctx, nil, nil)
		require.NoError(t, err)
		assert.Empty(t, items)
	})
}

func TestTicketRepository_DeleteCascades(t *testing.T) {
	database := setupTestDB(t)
	tickets := NewTicketRepository(database)
	followUps := NewFollowUpRepository(database)
	ccs := NewCCRepository(database)
	ctx := context.Background()

	keep := createTestTicket(t, tickets, 1, "Keep me", "a@example.com")
	doomed := createTestTicket(t, tickets, 1, "Delete me", "b@example.com")

	for _, tk := range []*ticket.Ticket{keep, doomed} {
		f, err := ticket.NewFollowUp(tk.ID(), nil, "Comment", "body", true, "", 0)
		require.NoError(t, err)
		f.RecordChange(ticket.FieldChange{Field: "priority", OldValue: "3", NewValue: "1"})
		att, err := ticket.NewAttachment("log.txt", "text/plain", 4, "x/log.txt")
		require.NoError(t, err)
		f.AddAttachment(att)
		require.NoError(t, followUps.Create(ctx, f))

		cc, err := ticket.NewCC(tk.ID(), nil, "boss@example.com", true, false)
		require.NoError(t, err)
		require.NoError(t, ccs.Create(ctx, cc))
	}

	require.NoError(t, tickets.Delete(ctx, doomed.ID()))

	gone, err := tickets.GetByID(ctx, doomed.ID())
	require.NoError(t, err)
	assert.Nil(t, gone)

	var n int64
	database.Model(&models.FollowUpModel{}).Count(&n)
	assert.Equal(t, int64(1), n)
	database.Model(&models.TicketChangeModel{}).Count(&n)
	assert.Equal(t, int64(1), n)
	database.Model(&models.AttachmentModel{}).Count(&n)
	assert.Equal(t, int64(1), n)
	database.Model(&models.CCModel{}).Count(&n)
	assert.Equal(t, int64(1), n)
}

func TestFollowUpRepository(t *testing.T) {
	database := setupTestDB(t)
	tickets := NewTicketRepository(database)
	repo := NewFollowUpRepository(database)
	attachments := NewAttachmentRepository(database)
	ctx := context.Background()

	tk := createTestTicket(t, tickets, 1, "Printer jammed", "lee@example.com")
	other := createTestTicket(t, tickets, 1, "Printer again", "lee@example.com")

	public, err := ticket.NewFollowUp(tk.ID(), ptr(uint(2)), "Resolved", "Cleared the tray", true, vo.StatusResolved, 15*time.Minute)
	require.NoError(t, err)
	public.RecordChange(ticket.FieldChange{Field: "status", OldValue: "open", NewValue: "resolved"})
	att, err := ticket.NewAttachment("photo.png", "image/png", 2048, "2026/10/photo.png")
	require.NoError(t, err)
	public.AddAttachment(att)
	require.NoError(t, repo.Create(ctx, public))

	require.NotZero(t, public.ID())
	require.Len(t, public.Changes(), 1)
	assert.NotZero(t, public.Changes()[0].ID())
	assert.Equal(t, public.ID(), public.Changes()[0].FollowUpID())
	assert.NotZero(t, att.ID())
	assert.Equal(t, public.ID(), att.FollowUpID())

	private, err := ticket.NewFollowUp(tk.ID(), ptr(uint(2)), "Note", "internal only", false, "", 0)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, private))

	t.Run("get hydrates changes and attachments", func(t *testing.T) {
		found, err := repo.GetByID(ctx, public.ID())
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, 15*time.Minute, found.TimeSpent())
		assert.Equal(t, vo.StatusResolved, found.NewStatus())
		require.Len(t, found.Changes(), 1)
		assert.Equal(t, "resolved", found.Changes()[0].NewValue())
		require.Len(t, found.Attachments(), 1)
		assert.Equal(t, "photo.png", found.Attachments()[0].Filename())
	})

	t.Run("public only", func(t *testing.T) {
		all, err := repo.ListByTicket(ctx, tk.ID(), false)
		require.NoError(t, err)
		assert.Len(t, all, 2)

		visible, err := repo.ListByTicket(ctx, tk.ID(), true)
		require.NoError(t, err)
		require.Len(t, visible, 1)
		assert.Equal(t, public.ID(), visible[0].ID())
	})

	t.Run("edit keeps audit rows", func(t *testing.T) {
		require.NoError(t, private.Edit("Note (edited)", "still internal", false, time.Minute))
		require.NoError(t, repo.Update(ctx, private))

		found, err := repo.GetByID(ctx, private.ID())
		require.NoError(t, err)
		assert.Equal(t, "Note (edited)", found.Title())
		assert.NotNil(t, found.LastEdited())
	})

	t.Run("attachments by ticket", func(t *testing.T) {
		list, err := attachments.ListByTicket(ctx, tk.ID())
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, int64(2048), list[0].Size())

		page, total, err := attachments.List(ctx, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Len(t, page, 1)
	})

	t.Run("move to ticket", func(t *testing.T) {
		moved, err := repo.MoveToTicket(ctx, tk.ID(), other.ID())
		require.NoError(t, err)
		assert.Equal(t, int64(2), moved)

		left, err := repo.ListByTicket(ctx, tk.ID(), false)
		require.NoError(t, err)
		assert.Empty(t, left)

		list, err := attachments.ListByTicket(ctx, other.ID())
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("delete removes rows", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, public.ID()))
		found, err := repo.GetByID(ctx, public.ID())
		require.NoError(t, err)
		assert.Nil(t, found)

		gone, err := attachments.GetByID(ctx, att.ID())
		require.NoError(t, err)
		assert.Nil(t, gone)
	})
}

func TestCCRepository_ListForUser(t *testing.T) {
	database := setupTestDB(t)
	repo := NewCCRepository(database)
	ctx := context.Background()

	byUser, err := ticket.NewCC(1, ptr(uint(5)), "", true, false)
	require.NoError(t, err)
	byEmail, err := ticket.NewCC(2, nil, "Sam@Example.com", true, true)
	require.NoError(t, err)
	unrelated, err := ticket.NewCC(3, nil, "other@example.com", true, false)
	require.NoError(t, err)
	for _, cc := range []*ticket.CC{byUser, byEmail, unrelated} {
		require.NoError(t, repo.Create(ctx, cc))
	}

	list, err := repo.ListForUser(ctx, 5, "sam@example.com")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, byUser.ID(), list[0].ID())
	assert.Equal(t, byEmail.ID(), list[1].ID())

	list, err = repo.ListForUser(ctx, 5, "")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, repo.Delete(ctx, byEmail.ID()))
	gone, err := repo.GetByID(ctx, byEmail.ID())
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func ticketIDs(items []*ticket.Ticket) []uint {
	out := make([]uint, len(items))
	for i, t := range items {
		out[i] = t.ID()
	}
	return out
}
