package sandbox

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Edit outcomes used as the "outcome" label of demobox_sandbox_edits_total.
const (
	outcomeOK          = "ok"
	outcomeNotFound    = "not_found"
	outcomeInvalid     = "invalid"
	outcomeRateLimited = "rate_limited"
)

// Session end reasons used as the "reason" label of demobox_sandbox_sessions_ended_total.
const (
	reasonEnded   = "ended"
	reasonExpired = "expired"
)

// Metrics holds Prometheus metrics for the sandbox registry.
//
// Metrics:
//   - demobox_sandbox_sessions_started_total
//   - demobox_sandbox_sessions_ended_total{reason}
//   - demobox_sandbox_live_sessions
//   - demobox_sandbox_edits_total{outcome}
//   - demobox_sandbox_resets_total
type Metrics struct {
	SessionsStarted prometheus.Counter
	SessionsEnded   *prometheus.CounterVec
	LiveSessions    prometheus.Gauge
	Edits           *prometheus.CounterVec
	Resets          prometheus.Counter
}

// NewMetrics creates sandbox metrics registered with reg. A nil reg leaves them
// unregistered, which tests use to avoid duplicate registration.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SessionsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "demobox_sandbox_sessions_started_total",
			Help: "Total number of guest demo sessions started",
		}),
		SessionsEnded: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "demobox_sandbox_sessions_ended_total",
			Help: "Total number of guest demo sessions discarded",
		}, []string{"reason"}),
		LiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "demobox_sandbox_live_sessions",
			Help: "Number of guest demo sessions currently held in memory",
		}),
		Edits: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "demobox_sandbox_edits_total",
			Help: "Total number of demo project edits by outcome",
		}, []string{"outcome"}),
		Resets: factory.NewCounter(prometheus.CounterOpts{
			Name: "demobox_sandbox_resets_total",
			Help: "Total number of demo resets",
		}),
	}
}
