// Package telemetry exposes prometheus counters for the client agent.
// Counters are registered on the default registry and served by the
// agent's /metrics endpoint.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestErrors counts transport-level request failures (timeouts,
	// connection resets). HTTP error statuses are not counted here.
	RequestErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "unlockdesk",
		Name:      "request_errors_total",
		Help:      "Transport-level API request failures.",
	})

	// TokenRefreshes counts access token refresh attempts.
	TokenRefreshes = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "unlockdesk",
		Name:      "token_refreshes_total",
		Help:      "Access token refresh attempts.",
	})

	SendSuccesses = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "unlockdesk",
		Name:      "chat_send_successes_total",
		Help:      "Chat messages confirmed by the server.",
	})

	SendFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "unlockdesk",
		Name:      "chat_send_failures_total",
		Help:      "Chat message sends rejected or dropped.",
	})

	// PollTicks counts poller iterations that performed a fetch.
	PollTicks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "unlockdesk",
		Name:      "poll_ticks_total",
		Help:      "Poll iterations that ran, by poller name.",
	}, []string{"poller"})

	// PollSkips counts ticks skipped because the previous fetch was
	// still in flight.
	PollSkips = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "unlockdesk",
		Name:      "poll_skips_total",
		Help:      "Poll ticks skipped due to an in-flight fetch, by poller name.",
	}, []string{"poller"})

	MergedEvents = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "unlockdesk",
		Name:      "merged_events_total",
		Help:      "Timeline events merged into local state.",
	})

	MergedMessages = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "unlockdesk",
		Name:      "merged_messages_total",
		Help:      "Chat messages merged into local state.",
	})

	RetentionSweeps = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "unlockdesk",
		Name:      "retention_sweeps_total",
		Help:      "Retention sweeps over the local cache.",
	})

	RetentionDeleted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "unlockdesk",
		Name:      "retention_deleted_total",
		Help:      "Cached records removed by retention sweeps.",
	})
)

func init() {
	prometheus.MustRegister(RequestErrors)
	prometheus.MustRegister(TokenRefreshes)
	prometheus.MustRegister(SendSuccesses)
	prometheus.MustRegister(SendFailures)
	prometheus.MustRegister(PollTicks)
	prometheus.MustRegister(PollSkips)
	prometheus.MustRegister(MergedEvents)
	prometheus.MustRegister(MergedMessages)
	prometheus.MustRegister(RetentionSweeps)
	prometheus.MustRegister(RetentionDeleted)
}
