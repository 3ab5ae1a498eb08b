package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the companion core.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	upgradeDuration *prometheus.HistogramVec
	fetchFailures   *prometheus.CounterVec
	fallbacks       *prometheus.CounterVec
	actions         *prometheus.CounterVec
	chatReplies     *prometheus.CounterVec
	probeResults    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in
// tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		upgradeDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scotty_upgrade_duration_seconds",
				Help:    "Duration of the backend upgrade, by terminal phase.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"phase"},
		),
		fetchFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scotty_fetch_failures_total",
				Help: "Per-resource fetch failures absorbed during upgrade waves.",
			},
			[]string{"resource"},
		),
		fallbacks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scotty_local_fallbacks_total",
				Help: "Actions that fell back to their local path.",
			},
			[]string{"action"},
		),
		actions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scotty_actions_total",
				Help: "Dispatched actions by name and outcome.",
			},
			[]string{"action", "outcome"},
		),
		chatReplies: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scotty_chat_replies_total",
				Help: "Chat replies by origin (remote, local, apology).",
			},
			[]string{"origin"},
		),
		probeResults: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scotty_probe_results_total",
				Help: "Reachability probe outcomes.",
			},
			[]string{"result"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scotty_request_duration_seconds",
				Help:    "Duration of presentation-surface requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordUpgradeDuration records how long the upgrade ran and which
// phase it ended in.
func (m *Metrics) RecordUpgradeDuration(phase string, d time.Duration) {
	m.upgradeDuration.WithLabelValues(phase).Observe(d.Seconds())
}

// IncrFetchFailure increments the absorbed-failure counter for one
// wave resource.
func (m *Metrics) IncrFetchFailure(resource string) {
	m.fetchFailures.WithLabelValues(resource).Inc()
}

// IncrFallback increments the local-fallback counter for an action.
func (m *Metrics) IncrFallback(action string) {
	m.fallbacks.WithLabelValues(action).Inc()
}

// IncrAction counts a dispatched action and its outcome.
func (m *Metrics) IncrAction(action, outcome string) {
	m.actions.WithLabelValues(action, outcome).Inc()
}

// IncrChatReply counts one chat reply by origin.
func (m *Metrics) IncrChatReply(origin string) {
	m.chatReplies.WithLabelValues(origin).Inc()
}

// IncrProbe counts a reachability probe outcome.
func (m *Metrics) IncrProbe(result string) {
	m.probeResults.WithLabelValues(result).Inc()
}

// RecordRequestDuration records the duration of a presentation-surface
// operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// SessionSnapshot is a coarse counter summary for the session, served
// on the presentation surface for debugging.
type SessionSnapshot struct {
	ProbeSuccesses float64 `json:"probe_successes"`
	ProbeFailures  float64 `json:"probe_failures"`
	FetchFailures  float64 `json:"fetch_failures"`
	LocalFallbacks float64 `json:"local_fallbacks"`
	RemoteReplies  float64 `json:"remote_replies"`
	LocalReplies   float64 `json:"local_replies"`
	ApologyReplies float64 `json:"apology_replies"`
}

// GetSessionSnapshot gathers current counter values.
func (m *Metrics) GetSessionSnapshot() *SessionSnapshot {
	fetchFailures := 0.0
	for _, resource := range []string{"transactions", "metrics", "pet", "budgets", "accounts", "today_spend", "daily", "quests", "profile"} {
		fetchFailures += getCounterValue(m.fetchFailures, resource)
	}
	fallbacks := 0.0
	for _, action := range []string{"feed", "chat", "create_budget", "update_budget"} {
		fallbacks += getCounterValue(m.fallbacks, action)
	}

	return &SessionSnapshot{
		ProbeSuccesses: getCounterValue(m.probeResults, "success"),
		ProbeFailures:  getCounterValue(m.probeResults, "failure"),
		FetchFailures:  fetchFailures,
		LocalFallbacks: fallbacks,
		RemoteReplies:  getCounterValue(m.chatReplies, "remote"),
		LocalReplies:   getCounterValue(m.chatReplies, "local"),
		ApologyReplies: getCounterValue(m.chatReplies, "apology"),
	}
}

// getCounterValue extracts the current float64 value from a CounterVec
// for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	counter := cv.WithLabelValues(label)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
