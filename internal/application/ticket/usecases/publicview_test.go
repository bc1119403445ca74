package usecases

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openhelpdesk/helpdesk/internal/application/access"
	vo "github.com/openhelpdesk/helpdesk/internal/domain/ticket/valueobjects"
	"github.com/openhelpdesk/helpdesk/internal/shared/config"
	"github.com/openhelpdesk/helpdesk/internal/shared/errors"
)

func TestPublicView_CloseResolvedTicket(t *testing.T) {
	tests := []struct {
		name       string
		email      string
		key        string
		wantClosed bool
	}{
		{name: "correct key", email: testSubmitter, key: "0b7c1a52-6d0e-4f55-9d52-2f3c9c0a8d11", wantClosed: true},
		{name: "key is case insensitive", email: "Customer@Example.com", key: "0B7C1A52-6D0E-4F55-9D52-2F3C9C0A8D11", wantClosed: true},
		{name: "wrong key", email: testSubmitter, key: "not-the-key"},
		{name: "wrong email", email: "someone@example.com", key: "0b7c1a52-6d0e-4f55-9d52-2f3c9c0a8d11"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, config.HelpdeskConfig{})
			tk := f.addTicket(vo.StatusResolved, 0)

			res, err := f.publicViewUseCase().Execute(context.Background(), PublicViewQuery{
				TicketRef: fmt.Sprintf("support-%d", tk.ID()),
				Email:     tt.email,
				Key:       tt.key,
				Close:     true,
			})

			if !tt.wantClosed {
				require.Error(t, err)
				assert.True(t, errors.IsNotFoundError(err))
				assert.Equal(t, vo.StatusResolved, f.ticket(tk.ID()).Status())
				assert.Empty(t, f.followUpsFor(tk.ID()))
				return
			}
			require.NoError(t, err)
			assert.True(t, res.Closed)
			assert.Equal(t, "closed", res.View.Ticket.Status)
			assert.Equal(t, vo.StatusClosed, f.ticket(tk.ID()).Status())

			fus := f.followUpsFor(tk.ID())
			require.Len(t, fus, 1)
			assert.Equal(t, vo.StatusClosed, fus[0].NewStatus())
			assert.Equal(t, "Submitter accepted resolution and closed ticket", fus[0].Comment())
		})
	}
}

func TestPublicView_CloseIgnoredUnlessResolved(t *testing.T) {
	f := newFixture(t, config.HelpdeskConfig{})
	tk := f.addTicket(vo.StatusOpen, 0)

	res, err := f.publicViewUseCase().Execute(context.Background(), PublicViewQuery{
		TicketRef: fmt.Sprintf("%d", tk.ID()),
		Email:     testSubmitter,
		Key:       tk.SecretKey(),
		Close:     true,
	})
	require.NoError(t, err)
	assert.False(t, res.Closed)
	assert.Equal(t, vo.StatusOpen, f.ticket(tk.ID()).Status())
	assert.Empty(t, res.View.Targets)
}

func TestPublicView_HidesPrivateFollowUps(t *testing.T) {
	f := newFixture(t, config.HelpdeskConfig{})
	tk := f.addTicket(vo.StatusOpen, 0)
	update := f.updateUseCase()
	for _, public := range []bool{true, false} {
		_, err := update.Execute(context.Background(), UpdateTicketCommand{
			TicketID: tk.ID(),
			Actor:    staffActor(),
			Comment:  fmt.Sprintf("public=%v", public),
			Public:   public,
		})
		require.NoError(t, err)
	}

	res, err := f.publicViewUseCase().Execute(context.Background(), PublicViewQuery{
		TicketRef: fmt.Sprintf("%d", tk.ID()),
		Email:     testSubmitter,
		Key:       tk.SecretKey(),
		Actor:     staffActor(),
	})
	require.NoError(t, err)
	require.Len(t, res.View.Ticket.FollowUps, 1)
	assert.Equal(t, "public=true", res.View.Ticket.FollowUps[0].Comment)
	assert.Empty(t, res.View.Ticket.SecretKey)
}

func TestPublicView_LoggedInSubmitterNeedsNoKey(t *testing.T) {
	f := newFixture(t, config.HelpdeskConfig{})
	tk := f.addTicket(vo.StatusResolved, 0)

	res, err := f.publicViewUseCase().Execute(context.Background(), PublicViewQuery{
		TicketRef: fmt.Sprintf("%d", tk.ID()),
		Email:     testSubmitter,
		Actor:     customerActor(),
		Close:     true,
	})
	require.NoError(t, err)
	assert.True(t, res.Closed)
}

func TestPublicView_ViewTicketPublicSkipsKey(t *testing.T) {
	f := newFixture(t, config.HelpdeskConfig{ViewTicketPublic: true})
	tk := f.addTicket(vo.StatusOpen, 0)

	res, err := f.publicViewUseCase().Execute(context.Background(), PublicViewQuery{
		TicketRef: fmt.Sprintf("%d", tk.ID()),
		Email:     testSubmitter,
		Actor:     access.Actor{},
	})
	require.NoError(t, err)
	assert.Equal(t, tk.ID(), res.View.Ticket.ID)
}

func TestPublicView_BadInput(t *testing.T) {
	f := newFixture(t, config.HelpdeskConfig{})
	tk := f.addTicket(vo.StatusOpen, 0)

	_, err := f.publicViewUseCase().Execute(context.Background(), PublicViewQuery{TicketRef: "", Email: testSubmitter})
	assert.True(t, errors.IsValidationError(err))

	_, err = f.publicViewUseCase().Execute(context.Background(), PublicViewQuery{
		TicketRef: fmt.Sprintf("other-%d", tk.ID()),
		Email:     testSubmitter,
		Key:       tk.SecretKey(),
	})
	assert.True(t, errors.IsNotFoundError(err))
}

func TestParseTicketRef(t *testing.T) {
	tests := []struct {
		ref      string
		wantSlug string
		wantID   uint
		wantOK   bool
	}{
		{ref: "12", wantID: 12, wantOK: true},
		{ref: "it-support-7", wantSlug: "it-support", wantID: 7, wantOK: true},
		{ref: "support-", wantOK: false},
		{ref: "0", wantOK: false},
		{ref: "abc", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			slug, id, ok := ParseTicketRef(tt.ref)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantSlug, slug)
				assert.Equal(t, tt.wantID, id)
			}
		})
	}
}
