// Package observability provides Prometheus metrics for the tracker.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Poll outcomes.
const (
	OutcomeOK     = "ok"
	OutcomeEmpty  = "empty"
	OutcomeFailed = "failed"
)

// Metrics holds the tracker's Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	PollsTotal      *prometheus.CounterVec
	PollDuration    prometheus.Histogram
	PairsClassified *prometheus.CounterVec
	PairsSkipped    prometheus.Counter
	SeenPairs       prometheus.Gauge
	SinkErrors      *prometheus.CounterVec
	LastSuccessUnix prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "pairwatch"
	}
	m := &Metrics{
		PollsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tracker",
			Name:      "polls_total",
			Help:      "Polling cycles by outcome",
		}, []string{"chain", "outcome"}),
		PollDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "tracker",
			Name:      "poll_duration_seconds",
			Help:      "Duration of a polling cycle including the provider fetch",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		PairsClassified: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tracker",
			Name:      "pairs_classified_total",
			Help:      "Newly observed pairs by verdict",
		}, []string{"chain", "verdict"}),
		PairsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "pairs_skipped_total",
			Help:      "Listing entries dropped because they were malformed",
		}),
		SeenPairs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "tracker",
			Name:      "seen_pairs",
			Help:      "Pair addresses evaluated since startup",
		}),
		SinkErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sink",
			Name:      "errors_total",
			Help:      "Failed report deliveries by sink",
		}, []string{"sink"}),
		LastSuccessUnix: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "tracker",
			Name:      "last_success_unixtime",
			Help:      "Unix time of the last successful fetch",
		}),
	}
	if reg != nil {
		reg.MustRegister(
			m.PollsTotal,
			m.PollDuration,
			m.PairsClassified,
			m.PairsSkipped,
			m.SeenPairs,
			m.SinkErrors,
			m.LastSuccessUnix,
		)
	}
	return m
}

func (m *Metrics) ObservePoll(chain, outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.PollsTotal.WithLabelValues(chain, outcome).Inc()
	m.PollDuration.Observe(took.Seconds())
	if outcome != OutcomeFailed {
		m.LastSuccessUnix.SetToCurrentTime()
	}
}

func (m *Metrics) ObserveVerdict(chain string, trustworthy bool) {
	if m == nil {
		return
	}
	verdict := "untrustworthy"
	if trustworthy {
		verdict = "trustworthy"
	}
	m.PairsClassified.WithLabelValues(chain, verdict).Inc()
}

func (m *Metrics) ObserveSkipped(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.PairsSkipped.Add(float64(n))
}

func (m *Metrics) SetSeen(n int) {
	if m == nil {
		return
	}
	m.SeenPairs.Set(float64(n))
}

func (m *Metrics) ObserveSinkError(sink string) {
	if m == nil {
		return
	}
	m.SinkErrors.WithLabelValues(sink).Inc()
}
