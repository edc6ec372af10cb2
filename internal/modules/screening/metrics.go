package screening

import (
	"github.com/prometheus/client_golang/prometheus"
)

// RunMetrics exports screening outcomes to Prometheus
type RunMetrics struct {
	runs       *prometheus.CounterVec
	duration   prometheus.Histogram
	universe   prometheus.Gauge
	kept       prometheus.Gauge
	eliminated *prometheus.GaugeVec
}

// NewRunMetrics creates and registers the screening collectors
func NewRunMetrics(reg prometheus.Registerer) *RunMetrics {
	m := &RunMetrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "screener",
			Name:      "runs_total",
			Help:      "Screening runs by outcome.",
		}, []string{"status"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "screener",
			Name:      "run_duration_seconds",
			Help:      "Wall time of a screening run including loading.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		universe: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "screener",
			Name:      "universe_size",
			Help:      "Instruments in the last screened universe.",
		}),
		kept: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "screener",
			Name:      "kept_instruments",
			Help:      "Instruments kept by the last run.",
		}),
		eliminated: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "screener",
			Name:      "eliminated_instruments",
			Help:      "Instruments eliminated by the last run, by reason.",
		}, []string{"reason"}),
	}

	if reg != nil {
		reg.MustRegister(m.runs, m.duration, m.universe, m.kept, m.eliminated)
	}
	return m
}

// ObserveSuccess records a completed run
func (m *RunMetrics) ObserveSuccess(r *Report, seconds float64) {
	m.runs.WithLabelValues("success").Inc()
	m.duration.Observe(seconds)
	m.universe.Set(float64(r.Universe))
	m.kept.Set(float64(len(r.Kept)))

	counts := r.ReasonCounts()
	for _, reason := range Reasons() {
		m.eliminated.WithLabelValues(string(reason)).Set(float64(counts[reason]))
	}
}

// ObserveFailure records a run that did not produce a report
func (m *RunMetrics) ObserveFailure(seconds float64) {
	m.runs.WithLabelValues("failure").Inc()
	m.duration.Observe(seconds)
}
