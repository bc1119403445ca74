// Package scheduler runs the periodic helpdesk jobs on a cron engine.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	queueuc "github.com/openhelpdesk/helpdesk/internal/application/queue/usecases"
	ticketuc "github.com/openhelpdesk/helpdesk/internal/application/ticket/usecases"
	"github.com/openhelpdesk/helpdesk/internal/shared/biztime"
	"github.com/openhelpdesk/helpdesk/internal/shared/goroutine"
	"github.com/openhelpdesk/helpdesk/internal/shared/logger"
)

const (
	mailboxJobTimeout    = 10 * time.Minute
	escalationJobTimeout = 30 * time.Minute
)

// MailboxPoller imports mail for every queue whose mailbox is due.
type MailboxPoller interface {
	Execute(ctx context.Context, cmd queueuc.PollMailboxesCommand) ([]queueuc.PollQueueResult, error)
}

// Escalator raises the priority of stale tickets.
type Escalator interface {
	Execute(ctx context.Context, cmd ticketuc.EscalateTicketsCommand) (*ticketuc.EscalateTicketsResult, error)
}

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ValidateSpec reports whether spec is a five-field cron expression or a
// descriptor such as @every 5m.
func ValidateSpec(spec string) error {
	if _, err := parser.Parse(spec); err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", spec, err)
	}
	return nil
}

// SchedulerManager owns the cron engine. Jobs never overlap with
// themselves: a run that is still busy causes the next tick to be skipped.
type SchedulerManager struct {
	cron    *cron.Cron
	logger  logger.Interface
	entries map[string]cron.EntryID

	started   bool
	startedMu sync.RWMutex
}

// NewSchedulerManager evaluates cron expressions in the business timezone.
func NewSchedulerManager(log logger.Interface) *SchedulerManager {
	cl := cronLogger{log: log}
	return &SchedulerManager{
		cron: cron.New(
			cron.WithLocation(biztime.Location()),
			cron.WithParser(parser),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger:  log,
		entries: make(map[string]cron.EntryID),
	}
}

// RegisterMailboxJob polls due mailboxes on spec. Each queue's own
// interval still applies, so spec only sets the resolution.
func (m *SchedulerManager) RegisterMailboxJob(poller MailboxPoller, spec string) error {
	return m.register("mailbox-poll", spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), mailboxJobTimeout)
		defer cancel()
		m.pollMailboxes(ctx, poller)
	})
}

func (m *SchedulerManager) pollMailboxes(ctx context.Context, poller MailboxPoller) {
	defer goroutine.Recover(m.logger, "mailbox-poll")
	m.logger.Debugw("mailbox poll started")

	startTime := biztime.NowUTC()
	results, err := poller.Execute(ctx, queueuc.PollMailboxesCommand{})
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		m.logger.Errorw("mailbox poll failed",
			"error", err,
			"duration", time.Since(startTime),
		)
		return
	}

	var created, followUps, rejected, failed int
	for _, r := range results {
		created += r.Created
		followUps += r.FollowUps
		rejected += r.Rejected
		if r.Error != "" {
			failed++
		}
	}
	if created+followUps+rejected+failed == 0 {
		m.logger.Debugw("mailbox poll found nothing", "queues", len(results))
		return
	}
	m.logger.Infow("mailbox poll completed",
		"queues", len(results),
		"created", created,
		"followups", followUps,
		"rejected", rejected,
		"failed_queues", failed,
		"duration", time.Since(startTime),
	)
}

// RegisterEscalationJob escalates stale tickets on spec.
func (m *SchedulerManager) RegisterEscalationJob(escalator Escalator, spec string) error {
	return m.register("escalation", spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), escalationJobTimeout)
		defer cancel()
		m.escalate(ctx, escalator)
	})
}

func (m *SchedulerManager) escalate(ctx context.Context, escalator Escalator) {
	defer goroutine.Recover(m.logger, "escalation")
	m.logger.Debugw("escalation started")

	startTime := biztime.NowUTC()
	res, err := escalator.Execute(ctx, ticketuc.EscalateTicketsCommand{})
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		m.logger.Errorw("escalation failed",
			"error", err,
			"duration", time.Since(startTime),
		)
		return
	}

	if len(res.Escalated) > 0 || res.Failed > 0 {
		m.logger.Infow("escalation completed",
			"checked", res.Checked,
			"escalated", len(res.Escalated),
			"failed", res.Failed,
			"duration", time.Since(startTime),
		)
	} else {
		m.logger.Debugw("no tickets to escalate",
			"checked", res.Checked,
			"duration", time.Since(startTime),
		)
	}
}

func (m *SchedulerManager) register(name, spec string, job func()) error {
	if err := ValidateSpec(spec); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	id, err := m.cron.AddFunc(spec, job)
	if err != nil {
		return fmt.Errorf("failed to register %s job: %w", name, err)
	}
	m.entries[name] = id
	m.logger.Infow("registered scheduled job", "job", name, "spec", spec)
	return nil
}

// Start starts the scheduler and all registered jobs.
func (m *SchedulerManager) Start() {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if m.started {
		return
	}

	m.cron.Start()
	m.started = true
	m.logger.Infow("scheduler manager started", "job_count", len(m.entries))
}

// Stop waits for running jobs to finish or ctx to expire.
func (m *SchedulerManager) Stop(ctx context.Context) error {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if !m.started {
		return nil
	}

	m.logger.Infow("stopping scheduler manager")
	done := m.cron.Stop()
	m.started = false

	select {
	case <-done.Done():
		m.logger.Infow("scheduler manager stopped")
		return nil
	case <-ctx.Done():
		m.logger.Warnw("scheduler manager stop timed out, jobs still running")
		return ctx.Err()
	}
}

// IsStarted returns whether the scheduler is running.
func (m *SchedulerManager) IsStarted() bool {
	m.startedMu.RLock()
	defer m.startedMu.RUnlock()
	return m.started
}

// Next returns the next run time of a registered job.
func (m *SchedulerManager) Next(name string) (time.Time, bool) {
	id, ok := m.entries[name]
	if !ok {
		return time.Time{}, false
	}
	return m.cron.Entry(id).Next, true
}

// cronLogger routes cron's own diagnostics into the structured logger.
type cronLogger struct {
	log logger.Interface
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw("cron: "+msg, append(keysAndValues, "error", err)...)
}
