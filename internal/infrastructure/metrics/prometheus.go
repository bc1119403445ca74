// Package metrics exposes helpdesk activity as Prometheus counters.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus implements the ticket use case Metrics port and records HTTP
// and mailbox activity.
type Prometheus struct {
	registry *prometheus.Registry

	ticketsCreated   *prometheus.CounterVec
	followUps        *prometheus.CounterVec
	notifications    *prometheus.CounterVec
	ticketsEscalated *prometheus.CounterVec
	mailboxMessages  *prometheus.CounterVec
	httpRequests     *prometheus.CounterVec
	httpLatency      *prometheus.HistogramVec
}

// NewPrometheus registers every collector on a private registry, together
// with the Go runtime and process collectors.
func NewPrometheus() *Prometheus {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Prometheus{
		registry: reg,
		ticketsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "helpdesk_tickets_created_total",
			Help: "Total number of tickets created",
		}, []string{"queue"}),
		followUps: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "helpdesk_followups_total",
			Help: "Total number of follow-ups recorded, by resulting status",
		}, []string{"new_status"}),
		notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "helpdesk_notifications_total",
			Help: "Total number of ticket notification mails attempted",
		}, []string{"template", "result"}),
		ticketsEscalated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "helpdesk_tickets_escalated_total",
			Help: "Total number of ticket escalations",
		}, []string{"queue"}),
		mailboxMessages: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "helpdesk_mailbox_messages_total",
			Help: "Total number of inbound mailbox messages processed",
		}, []string{"queue", "result"}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "helpdesk_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		httpLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "helpdesk_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

func (p *Prometheus) TicketCreated(queueSlug string) {
	p.ticketsCreated.WithLabelValues(queueSlug).Inc()
}

// FollowUpRecorded counts follow-ups; an empty status means unchanged.
func (p *Prometheus) FollowUpRecorded(newStatus string) {
	if newStatus == "" {
		newStatus = "unchanged"
	}
	p.followUps.WithLabelValues(newStatus).Inc()
}

func (p *Prometheus) NotificationSent(template string, err error) {
	p.notifications.WithLabelValues(template, result(err)).Inc()
}

func (p *Prometheus) TicketEscalated(queueSlug string) {
	p.ticketsEscalated.WithLabelValues(queueSlug).Inc()
}

// MailboxMessage counts one inbound message: "ticket", "followup",
// "skipped" or "error".
func (p *Prometheus) MailboxMessage(queueSlug, outcome string) {
	p.mailboxMessages.WithLabelValues(queueSlug, outcome).Inc()
}

// ObserveRequest records one HTTP request. route is the gin route pattern,
// never the raw path.
func (p *Prometheus) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	p.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	p.httpLatency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

// Handler serves the registry in the Prometheus text format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
