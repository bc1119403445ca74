package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openhelpdesk/helpdesk/internal/application/access"
	"github.com/openhelpdesk/helpdesk/internal/shared/config"
	"github.com/openhelpdesk/helpdesk/internal/shared/errors"
	"github.com/openhelpdesk/helpdesk/internal/shared/logger"
)

func ptr[T any](v T) *T {
	return &v
}

func newManage() (*ManageQueueUseCase, *memQueues) {
	log := logger.NewNopLogger()
	queues := newMemQueues()
	return NewManageQueueUseCase(queues, access.NewPolicy(config.HelpdeskConfig{}, nil, log), log), queues
}

var (
	superuser = access.Actor{Kind: access.ActorStaff, UserID: 1, IsSuperuser: true}
	agent     = access.Actor{Kind: access.ActorStaff, UserID: 2}
)

func TestManageQueue_Create(t *testing.T) {
	uc, queues := newManage()
	ctx := context.Background()

	got, err := uc.Create(ctx, superuser, QueueInput{
		Title:                 ptr("Billing Questions"),
		AllowPublicSubmission: ptr(true),
		EscalateDays:          ptr(3),
		MailboxType:           ptr("IMAP"),
		MailboxHost:           ptr("imap.example.com"),
		MailboxUser:           ptr("billing"),
		MailboxPassword:       ptr("hunter2"),
	})
	require.NoError(t, err)
	assert.Equal(t, "billing-questions", got.Slug)
	assert.Equal(t, "imap", got.Mailbox.Type)
	assert.True(t, got.Mailbox.HasPassword)
	assert.Len(t, queues.byID, 1)

	_, err = uc.Create(ctx, superuser, QueueInput{Title: ptr("Billing"), Slug: ptr("billing-questions")})
	assert.True(t, errors.IsConflictError(err))

	_, err = uc.Create(ctx, superuser, QueueInput{Title: ptr("  ")})
	assert.True(t, errors.IsValidationError(err))

	_, err = uc.Create(ctx, superuser, QueueInput{Title: ptr("Mail"), AllowEmailSubmission: ptr(true)})
	assert.True(t, errors.IsValidationError(err))

	_, err = uc.Create(ctx, agent, QueueInput{Title: ptr("Sales")})
	assert.True(t, errors.IsForbiddenError(err))
}

func TestManageQueue_UpdateKeepsPassword(t *testing.T) {
	uc, queues := newManage()
	ctx := context.Background()
	created, err := uc.Create(ctx, superuser, QueueInput{
		Title:           ptr("Support"),
		MailboxType:     ptr("pop3"),
		MailboxHost:     ptr("pop.example.com"),
		MailboxUser:     ptr("support"),
		MailboxPassword: ptr("first"),
	})
	require.NoError(t, err)

	updated, err := uc.Update(ctx, superuser, created.ID, QueueInput{
		MailboxHost:     ptr("pop2.example.com"),
		MailboxPassword: ptr(""),
	})
	require.NoError(t, err)
	assert.Equal(t, "Support", updated.Title)
	assert.Equal(t, "pop2.example.com", updated.Mailbox.Host)
	assert.Equal(t, "first", queues.byID[created.ID].Mailbox().Password)

	_, err = uc.Update(ctx, superuser, 999, QueueInput{Title: ptr("Nope")})
	assert.True(t, errors.IsNotFoundError(err))
}

func TestManageQueue_Delete(t *testing.T) {
	uc, queues := newManage()
	ctx := context.Background()
	busy, err := uc.Create(ctx, superuser, QueueInput{Title: ptr("Busy")})
	require.NoError(t, err)
	idle, err := uc.Create(ctx, superuser, QueueInput{Title: ptr("Idle")})
	require.NoError(t, err)
	queues.withTicket[busy.ID] = true

	err = uc.Delete(ctx, superuser, busy.ID)
	assert.True(t, errors.IsConflictError(err))
	assert.Contains(t, queues.byID, busy.ID)

	require.NoError(t, uc.Delete(ctx, superuser, idle.ID))
	assert.NotContains(t, queues.byID, idle.ID)

	assert.True(t, errors.IsNotFoundError(uc.Delete(ctx, superuser, idle.ID)))
}

func TestManageQueue_Lists(t *testing.T) {
	uc, _ := newManage()
	ctx := context.Background()
	_, err := uc.Create(ctx, superuser, QueueInput{Title: ptr("Public"), AllowPublicSubmission: ptr(true)})
	require.NoError(t, err)
	_, err = uc.Create(ctx, superuser, QueueInput{Title: ptr("Internal")})
	require.NoError(t, err)

	anon, err := uc.ListPublic(ctx, access.AnonymousActor("", ""))
	require.NoError(t, err)
	require.Len(t, anon, 1)
	assert.Equal(t, "public", anon[0].Slug)

	signedIn, err := uc.ListPublic(ctx, access.Actor{Kind: access.ActorUser, UserID: 7})
	require.NoError(t, err)
	assert.Len(t, signedIn, 2)

	staff, err := uc.ListStaff(ctx, agent)
	require.NoError(t, err)
	assert.Len(t, staff, 2)

	_, err = uc.ListStaff(ctx, access.Actor{Kind: access.ActorUser, UserID: 7})
	assert.True(t, errors.IsForbiddenError(err))
}
