package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vo "github.com/openhelpdesk/helpdesk/internal/domain/queue/valueobjects"
)

func TestNewQueue(t *testing.T) {
	q, err := NewQueue(Settings{
		Title:           "Café Support",
		NewTicketCC:     "lead@example.com, ,ops@example.com",
		UpdatedTicketCC: "watch@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "cafe-support", q.Slug())
	assert.Equal(t, []string{"lead@example.com", "ops@example.com"}, q.NewTicketCCList())
	assert.Equal(t, []string{"watch@example.com"}, q.UpdatedTicketCCList())
	assert.Equal(t, "fallback@example.com", q.FromAddress("fallback@example.com"))

	q, err = NewQueue(Settings{Title: "Billing", Slug: "Money Matters"})
	require.NoError(t, err)
	assert.Equal(t, "money-matters", q.Slug())
}

func TestNewQueue_Validation(t *testing.T) {
	tests := []struct {
		name string
		s    Settings
	}{
		{name: "blank title", s: Settings{Title: " "}},
		{name: "negative escalation", s: Settings{Title: "x", EscalateDays: -1}},
		{name: "email without mailbox", s: Settings{Title: "x", AllowEmailSubmission: true}},
		{name: "bad mailbox", s: Settings{Title: "x", Mailbox: vo.MailboxConfig{Type: vo.MailboxIMAP}}},
		{name: "unsluggable title", s: Settings{Title: "!!!"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewQueue(tt.s)
			assert.Error(t, err)
		})
	}
}

func TestQueue_MailboxDue(t *testing.T) {
	q, err := NewQueue(Settings{
		Title:                "Inbound",
		AllowEmailSubmission: true,
		Mailbox:              vo.MailboxConfig{Type: vo.MailboxLocal, LocalDir: "/tmp/mail", IntervalMinutes: 10},
	})
	require.NoError(t, err)

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	assert.True(t, q.MailboxDue(now))

	q.MarkChecked(now)
	assert.False(t, q.MailboxDue(now.Add(9*time.Minute)))
	assert.True(t, q.MailboxDue(now.Add(10*time.Minute)))

	s := q.Settings()
	s.AllowEmailSubmission = false
	require.NoError(t, q.Update(s))
	assert.False(t, q.MailboxDue(now.Add(time.Hour)))
}
