package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openhelpdesk/helpdesk/internal/application/access"
	"github.com/openhelpdesk/helpdesk/internal/application/ticket/forms"
	"github.com/openhelpdesk/helpdesk/internal/domain/queue"
	vo "github.com/openhelpdesk/helpdesk/internal/domain/ticket/valueobjects"
	"github.com/openhelpdesk/helpdesk/internal/shared/config"
	"github.com/openhelpdesk/helpdesk/internal/shared/errors"
)

func TestSubmitTicket_Public(t *testing.T) {
	f := newFixture(t, config.HelpdeskConfig{})

	res, err := f.submitUseCase().Execute(context.Background(), SubmitTicketCommand{
		Actor: access.AnonymousActor("", ""),
		Input: forms.Input{
			QueueID:        testQueueID,
			Title:          "Cannot log in",
			Body:           "The password form rejects me.",
			SubmitterEmail: testSubmitter,
			CCEmails:       []string{"boss@example.com"},
		},
		Attachments: []AttachmentUpload{{Filename: "error.txt", Content: []byte("403")}},
	})
	require.NoError(t, err)

	assert.Equal(t, "open", res.Ticket.Status)
	assert.NotEmpty(t, res.Ticket.SecretKey)
	assert.Equal(t, int(vo.PriorityNormal), res.Ticket.Priority)

	stored := f.ticket(res.Ticket.ID)
	assert.Equal(t, testSubmitter, stored.SubmitterEmail())

	fus := f.followUpsFor(res.Ticket.ID)
	require.Len(t, fus, 1)
	assert.Equal(t, titleOpenedViaWeb, fus[0].Title())
	assert.Equal(t, vo.StatusOpen, fus[0].NewStatus())
	assert.True(t, fus[0].IsPublic())
	assert.Len(t, fus[0].Attachments(), 1)

	require.Len(t, f.ccs, 1)
	assert.Equal(t, "boss@example.com", f.ccs[0].Email())

	assert.Equal(t, []string{testSubmitter}, f.mailer.recipients(MailNewTicketSubmitter))
	assert.Equal(t, []string{"team@example.com"}, f.mailer.recipients(MailNewTicketCC))
}

func TestSubmitTicket_StaffTitleAndDefaultOwner(t *testing.T) {
	f := newFixture(t, config.HelpdeskConfig{})
	owner := testStaffID
	f.addQueue(2, queue.Settings{Title: "Hardware", Slug: "hardware", DefaultOwnerID: &owner})

	res, err := f.submitUseCase().Execute(context.Background(), SubmitTicketCommand{
		Actor: staffActor(),
		Input: forms.Input{QueueID: 2, Title: "Replace monitor"},
	})
	require.NoError(t, err)

	require.NotNil(t, res.Ticket.AssignedTo)
	assert.Equal(t, testStaffID, *res.Ticket.AssignedTo)
	fus := f.followUpsFor(res.Ticket.ID)
	require.Len(t, fus, 1)
	assert.Equal(t, titleOpenedByStaff, fus[0].Title())
}

func TestSubmitTicket_UsesAccountEmail(t *testing.T) {
	f := newFixture(t, config.HelpdeskConfig{})

	res, err := f.submitUseCase().Execute(context.Background(), SubmitTicketCommand{
		Actor: customerActor(),
		Input: forms.Input{QueueID: testQueueID, Title: "Broken link", Body: "On the home page."},
	})
	require.NoError(t, err)
	assert.Equal(t, testSubmitter, res.Ticket.SubmitterEmail)
}

func TestSubmitTicket_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		input   forms.Input
		upload  []AttachmentUpload
		isError func(error) bool
	}{
		{
			name:    "missing email",
			input:   forms.Input{QueueID: testQueueID, Title: "Help", Body: "Please"},
			isError: errors.IsValidationError,
		},
		{
			name:    "unknown queue",
			input:   forms.Input{QueueID: 77, Title: "Help", Body: "Please", SubmitterEmail: testSubmitter},
			isError: errors.IsValidationError,
		},
		{
			name:    "private queue",
			input:   forms.Input{QueueID: 3, Title: "Help", Body: "Please", SubmitterEmail: testSubmitter},
			isError: errors.IsForbiddenError,
		},
		{
			name:    "attachment too large",
			input:   forms.Input{QueueID: testQueueID, Title: "Help", Body: "Please", SubmitterEmail: testSubmitter},
			upload:  []AttachmentUpload{{Filename: "dump.txt", Content: make([]byte, 100)}},
			isError: errors.IsValidationError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, config.HelpdeskConfig{})
			f.addQueue(3, queue.Settings{Title: "Internal", Slug: "internal"})

			_, err := f.submitUseCase().Execute(context.Background(), SubmitTicketCommand{
				Actor:       access.AnonymousActor("", ""),
				Input:       tt.input,
				Attachments: tt.upload,
			})
			require.Error(t, err)
			assert.True(t, tt.isError(err), "unexpected error: %v", err)
			assert.Empty(t, f.tickets)
			assert.Empty(t, f.mailer.sent)
		})
	}
}
