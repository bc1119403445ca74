package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	queueuc "github.com/openhelpdesk/helpdesk/internal/application/queue/usecases"
	ticketuc "github.com/openhelpdesk/helpdesk/internal/application/ticket/usecases"
	"github.com/openhelpdesk/helpdesk/internal/shared/logger"
)

type stubPoller struct {
	calls int
	err   error
}

func (p *stubPoller) Execute(ctx context.Context, cmd queueuc.PollMailboxesCommand) ([]queueuc.PollQueueResult, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return []queueuc.PollQueueResult{{Queue: "support", Created: 1}}, nil
}

type panickingEscalator struct{}

func (panickingEscalator) Execute(ctx context.Context, cmd ticketuc.EscalateTicketsCommand) (*ticketuc.EscalateTicketsResult, error) {
	panic("boom")
}

func TestValidateSpec(t *testing.T) {
	for _, spec := range []string{"*/5 * * * *", "0 3 * * *", "@every 5m", "@hourly"} {
		assert.NoError(t, ValidateSpec(spec), spec)
	}
	for _, spec := range []string{"", "every minute", "* * * * * *", "61 * * * *"} {
		assert.Error(t, ValidateSpec(spec), spec)
	}
}

func TestSchedulerManager_Register(t *testing.T) {
	m := NewSchedulerManager(logger.NewNopLogger())
	p := &stubPoller{}

	require.NoError(t, m.RegisterMailboxJob(p, "@every 1m"))
	assert.Error(t, m.RegisterEscalationJob(panickingEscalator{}, "not a spec"))

	_, ok := m.Next("mailbox-poll")
	assert.True(t, ok)
	_, ok = m.Next("escalation")
	assert.False(t, ok)
}

func TestSchedulerManager_StartStop(t *testing.T) {
	m := NewSchedulerManager(logger.NewNopLogger())
	require.NoError(t, m.RegisterMailboxJob(&stubPoller{}, "@every 1h"))

	assert.NoError(t, m.Stop(context.Background()), "stopping before start is a no-op")
	m.Start()
	m.Start()
	assert.True(t, m.IsStarted())

	next, ok := m.Next("mailbox-poll")
	require.True(t, ok)
	assert.False(t, next.IsZero())

	require.NoError(t, m.Stop(context.Background()))
	assert.False(t, m.IsStarted())
}

func TestSchedulerManager_JobsSurviveFailures(t *testing.T) {
	m := NewSchedulerManager(logger.NewNopLogger())

	p := &stubPoller{err: errors.New("db down")}
	assert.NotPanics(t, func() { m.pollMailboxes(context.Background(), p) })
	assert.Equal(t, 1, p.calls)

	assert.NotPanics(t, func() { m.escalate(context.Background(), panickingEscalator{}) })
}
