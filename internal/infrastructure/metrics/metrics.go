package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HarvestMetrics holds Prometheus metrics for harvesting sessions
type HarvestMetrics struct {
	SessionsActive    prometheus.Gauge
	SessionsStarted   prometheus.Counter
	SessionsExpired   prometheus.Counter
	SelectionChanges  *prometheus.CounterVec
	SummariesComputed prometheus.Counter
	SavingsReported   prometheus.Histogram
}

// NewHarvestMetrics registers harvest metrics on reg
func NewHarvestMetrics(reg prometheus.Registerer) *HarvestMetrics {
	factory := promauto.With(reg)

	return &HarvestMetrics{
		SessionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "harvest_sessions_active",
			Help: "Number of live harvesting sessions",
		}),
		SessionsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "harvest_sessions_started_total",
			Help: "Total number of harvesting sessions started",
		}),
		SessionsExpired: factory.NewCounter(prometheus.CounterOpts{
			Name: "harvest_sessions_expired_total",
			Help: "Total number of sessions evicted after idling",
		}),
		SelectionChanges: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "harvest_selection_changes_total",
				Help: "Total number of selection mutations by operation",
			},
			[]string{"operation"},
		),
		SummariesComputed: factory.NewCounter(prometheus.CounterOpts{
			Name: "harvest_summaries_computed_total",
			Help: "Total number of pre/post harvesting summaries computed",
		}),
		SavingsReported: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "harvest_savings_usd",
			Help:    "Savings reported to users when positive",
			Buckets: []float64{1, 10, 50, 100, 250, 500, 1000, 5000, 10000},
		}),
	}
}

// SelectionChanged records one selection mutation
func (m *HarvestMetrics) SelectionChanged(operation string) {
	if m == nil {
		return
	}
	m.SelectionChanges.WithLabelValues(operation).Inc()
}

// SessionStarted records a new session
func (m *HarvestMetrics) SessionStarted() {
	if m == nil {
		return
	}
	m.SessionsStarted.Inc()
	m.SessionsActive.Inc()
}

// SessionEnded records an explicitly ended session
func (m *HarvestMetrics) SessionEnded() {
	if m == nil {
		return
	}
	m.SessionsActive.Dec()
}

// SessionsEvicted records sessions removed by the idle sweep
func (m *HarvestMetrics) SessionsEvicted(n int) {
	if m == nil || n == 0 {
		return
	}
	m.SessionsExpired.Add(float64(n))
	m.SessionsActive.Sub(float64(n))
}

// SummaryComputed records a summary and, when shown, its savings
func (m *HarvestMetrics) SummaryComputed(savings float64, shown bool) {
	if m == nil {
		return
	}
	m.SummariesComputed.Inc()
	if shown {
		m.SavingsReported.Observe(savings)
	}
}
