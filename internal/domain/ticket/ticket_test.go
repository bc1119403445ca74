package ticket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vo "github.com/openhelpdesk/helpdesk/internal/domain/ticket/valueobjects"
)

func newValidTicket(t *testing.T) *Ticket {
	t.Helper()
	tk, err := NewTicket(1, "Printer offline", "The 3rd floor printer is offline", "Alice@Example.com", vo.PriorityNormal)
	require.NoError(t, err)
	require.NoError(t, tk.SetID(42))
	return tk
}

func reconstructedTicket(t *testing.T, status vo.TicketStatus) *Ticket {
	t.Helper()
	now := time.Now().UTC()
	tk, err := ReconstructTicket(TicketData{
		ID:             7,
		QueueID:        1,
		Title:          "Persisted",
		Status:         status,
		SubmitterEmail: "bob@example.com",
		Priority:       vo.PriorityHigh,
		SecretKey:      "6f1d2a9e-0000-4000-8000-000000000000",
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	require.NoError(t, err)
	return tk
}

func TestNewTicket(t *testing.T) {
	tk := newValidTicket(t)

	assert.Equal(t, vo.StatusOpen, tk.Status())
	assert.Len(t, tk.SecretKey(), 36)
	assert.Equal(t, "Alice@Example.com", tk.SubmitterEmail())
	assert.Equal(t, "helpdesk-42", tk.TicketForURL("helpdesk"))

	tests := []struct {
		name     string
		queueID  uint
		title    string
		priority vo.Priority
	}{
		{name: "missing queue", queueID: 0, title: "x", priority: vo.PriorityNormal},
		{name: "blank title", queueID: 1, title: "   ", priority: vo.PriorityNormal},
		{name: "bad priority", queueID: 1, title: "x", priority: vo.Priority(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTicket(tt.queueID, tt.title, "", "", tt.priority)
			assert.Error(t, err)
		})
	}
}

func TestTicket_SetID(t *testing.T) {
	tk := newValidTicket(t)
	assert.Error(t, tk.SetID(43))
}

func TestTicket_SubmitterAndKeyMatching(t *testing.T) {
	tk := newValidTicket(t)

	assert.True(t, tk.SubmitterMatches("alice@example.COM"))
	assert.False(t, tk.SubmitterMatches("mallory@example.com"))
	assert.False(t, tk.SubmitterMatches(""))
	assert.True(t, tk.SecretKeyMatches(" "+tk.SecretKey()+" "))
	assert.False(t, tk.SecretKeyMatches(""))
	assert.False(t, tk.SecretKeyMatches("not-the-key"))

	anonymous, err := NewTicket(1, "No email", "", "", vo.PriorityNormal)
	require.NoError(t, err)
	assert.False(t, anonymous.SubmitterMatches(""))
}

func TestTicket_ChangeStatus(t *testing.T) {
	m := vo.DefaultStatusMachine()

	t.Run("staff resolves", func(t *testing.T) {
		tk := newValidTicket(t)
		change, changed, err := tk.ChangeStatus(m, vo.StatusResolved, true)
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, FieldChange{Field: FieldStatus, OldValue: "open", NewValue: "resolved"}, change)
		assert.Equal(t, vo.StatusResolved, tk.Status())
	})

	t.Run("same status is not a change", func(t *testing.T) {
		tk := newValidTicket(t)
		_, changed, err := tk.ChangeStatus(m, vo.StatusOpen, true)
		require.NoError(t, err)
		assert.False(t, changed)
	})

	t.Run("submitter cannot reopen closed", func(t *testing.T) {
		tk := reconstructedTicket(t, vo.StatusClosed)
		_, _, err := tk.ChangeStatus(m, vo.StatusReopened, false)
		assert.Error(t, err)
		assert.Equal(t, vo.StatusClosed, tk.Status())
	})

	t.Run("submitter confirms resolution", func(t *testing.T) {
		tk := reconstructedTicket(t, vo.StatusResolved)
		_, changed, err := tk.ChangeStatus(m, vo.StatusClosed, false)
		require.NoError(t, err)
		assert.True(t, changed)
	})
}

func TestTicket_FieldEdits(t *testing.T) {
	tk := newValidTicket(t)

	change, changed, err := tk.ChangePriority(vo.PriorityCritical)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "3", change.OldValue)
	assert.Equal(t, "1", change.NewValue)

	_, _, err = tk.ChangePriority(vo.Priority(8))
	assert.Error(t, err)

	owner := uint(5)
	change, changed = tk.Assign(&owner)
	assert.True(t, changed)
	assert.Equal(t, "", change.OldValue)
	assert.Equal(t, "5", change.NewValue)
	assert.True(t, tk.IsAssignedTo(5))

	_, changed = tk.Assign(&owner)
	assert.False(t, changed)

	change, changed = tk.Assign(nil)
	assert.True(t, changed)
	assert.Equal(t, "5", change.OldValue)
	assert.Nil(t, tk.AssignedTo())

	_, _, err = tk.ChangeTitle("")
	assert.Error(t, err)

	due := time.Date(2030, 1, 2, 0, 0, 0, 0, time.UTC)
	change, changed = tk.ChangeDueDate(&due)
	assert.True(t, changed)
	assert.Equal(t, "2030-01-02T00:00:00Z", change.NewValue)

	change, changed = tk.SetOnHold(true)
	assert.True(t, changed)
	assert.Equal(t, FieldOnHold, change.Field)
	_, changed = tk.SetOnHold(true)
	assert.False(t, changed)
}

func TestTicket_MergeInto(t *testing.T) {
	tk := reconstructedTicket(t, vo.StatusOpen)

	changes, err := tk.MergeInto(99)
	require.NoError(t, err)
	require.Len(t, changes, 2)
	assert.Equal(t, vo.StatusDuplicate, tk.Status())
	require.NotNil(t, tk.MergedTo())
	assert.Equal(t, uint(99), *tk.MergedTo())

	_, err = tk.MergeInto(100)
	assert.Error(t, err)

	other := reconstructedTicket(t, vo.StatusOpen)
	_, err = other.MergeInto(other.ID())
	assert.Error(t, err)
}

func TestTicket_Escalation(t *testing.T) {
	created := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	tk, err := ReconstructTicket(TicketData{
		ID: 1, QueueID: 1, Title: "Slow", Status: vo.StatusOpen,
		Priority: vo.PriorityNormal, SecretKey: "k", CreatedAt: created, UpdatedAt: created,
	})
	require.NoError(t, err)

	assert.False(t, tk.EscalationDue(0, created.Add(100*24*time.Hour)))
	assert.False(t, tk.EscalationDue(3, created.Add(2*24*time.Hour)))
	assert.True(t, tk.EscalationDue(3, created.Add(3*24*time.Hour)))

	now := created.Add(3 * 24 * time.Hour)
	change, changed := tk.Escalate(now)
	assert.True(t, changed)
	assert.Equal(t, "2", change.NewValue)
	require.NotNil(t, tk.LastEscalation())
	assert.False(t, tk.EscalationDue(3, now.Add(24*time.Hour)))

	tk.Escalate(now)
	_, changed = tk.Escalate(now)
	assert.False(t, changed)
	assert.Equal(t, vo.PriorityCritical, tk.Priority())

	tk.SetOnHold(true)
	assert.False(t, tk.EscalationDue(1, now.Add(30*24*time.Hour)))
}

func TestTicket_DirtyFields(t *testing.T) {
	m, err := vo.NewStatusMachine(nil)
	require.NoError(t, err)
	tk := reconstructedTicket(t, vo.StatusOpen)
	assert.Empty(t, tk.DirtyFields())

	// no-op changes stay clean
	_, changed, err := tk.ChangeStatus(m, vo.StatusOpen, true)
	require.NoError(t, err)
	assert.False(t, changed)
	tk.SetOnHold(false)
	assert.Empty(t, tk.DirtyFields())

	_, _, err = tk.ChangeStatus(m, vo.StatusResolved, true)
	require.NoError(t, err)
	tk.SetResolution("Replaced the toner.")
	tk.Assign(nil)
	tk.Assign(func() *uint { v := uint(3); return &v }())
	assert.Equal(t, []string{FieldOwner, FieldResolution, FieldStatus}, tk.DirtyFields())

	tk.ClearDirty()
	assert.Empty(t, tk.DirtyFields())
}
