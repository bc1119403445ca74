package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheus_Counters(t *testing.T) {
	p := NewPrometheus()

	p.TicketCreated("support")
	p.TicketCreated("support")
	p.FollowUpRecorded("")
	p.FollowUpRecorded("resolved")
	p.NotificationSent("updated_cc", nil)
	p.NotificationSent("updated_cc", errors.New("smtp down"))
	p.TicketEscalated("billing")
	p.MailboxMessage("support", "ticket")

	assert.Equal(t, 2.0, testutil.ToFloat64(p.ticketsCreated.WithLabelValues("support")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.followUps.WithLabelValues("unchanged")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.followUps.WithLabelValues("resolved")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.notifications.WithLabelValues("updated_cc", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.notifications.WithLabelValues("updated_cc", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.ticketsEscalated.WithLabelValues("billing")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.mailboxMessages.WithLabelValues("support", "ticket")))
}

func TestPrometheus_Handler(t *testing.T) {
	p := NewPrometheus()
	p.ObserveRequest(http.MethodGet, "/api/queues", http.StatusOK, 20*time.Millisecond)
	p.ObserveRequest(http.MethodGet, "", http.StatusNotFound, time.Millisecond)

	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `helpdesk_http_requests_total{method="GET",route="/api/queues",status="200"} 1`)
	assert.Contains(t, body, `route="unmatched"`)
	assert.Contains(t, body, "go_goroutines")
}

func TestNewPrometheus_IndependentRegistries(t *testing.T) {
	a := NewPrometheus()
	b := NewPrometheus()
	a.TicketCreated("q")
	assert.Equal(t, 0.0, testutil.ToFloat64(b.ticketsCreated.WithLabelValues("q")))
}
