// Package metrics provides Prometheus instrumentation for the bot. It
// exposes gauges for queue and session counts and counters for message and
// moderation throughput.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// QueueSize tracks the current number of users waiting for a partner.
	QueueSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "anonychat_queue_size",
		Help: "Current number of users in the waiting queue",
	})

	// ActiveSessions tracks the current number of active rooms.
	ActiveSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "anonychat_active_sessions",
		Help: "Current number of active chat sessions",
	})

	// MessagesTotal counts handled in-session messages, labeled by outcome:
	// "forwarded", "media", "blocked".
	MessagesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "anonychat_messages_total",
		Help: "Total number of in-session messages handled",
	}, []string{"outcome"})

	// ViolationsTotal counts appended violation records by type.
	ViolationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "anonychat_violations_total",
		Help: "Total number of violation records appended",
	}, []string{"type"})

	// BansTotal counts automatic 3-strike bans.
	BansTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "anonychat_bans_total",
		Help: "Total number of automatic bans applied",
	})

	// BroadcastSendsTotal counts broadcast deliveries by result.
	BroadcastSendsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "anonychat_broadcast_sends_total",
		Help: "Total number of broadcast send attempts",
	}, []string{"result"}) // result = "ok", "failed"
)

func init() {
	prometheus.MustRegister(
		QueueSize,
		ActiveSessions,
		MessagesTotal,
		ViolationsTotal,
		BansTotal,
		BroadcastSendsTotal,
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
