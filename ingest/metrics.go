package ingest

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "twdrates"

// Provider attempt outcomes
const (
	outcomeSuccess     = "success"
	outcomeFailure     = "failure"
	outcomeUnavailable = "unavailable"
)

// Metrics instruments the fetch cycles
type Metrics struct {
	attempts *prometheus.CounterVec
	fetches  *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewMetrics creates the fetch metrics, and registers them
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		attempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "provider_attempts_total",
				Help:      "Number of provider fetch attempts, by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),
		fetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "fetches_total",
				Help:      "Number of fetch cycles, by outcome",
			},
			[]string{"outcome"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "fetch_duration_seconds",
				Help:      "Duration of the fetch cycles",
				Buckets:   prometheus.DefBuckets,
			},
		),
	}

	for _, c := range []prometheus.Collector{m.attempts, m.fetches, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *Metrics) observeAttempt(provider, outcome string) {
	if m == nil {
		return
	}

	m.attempts.WithLabelValues(provider, outcome).Inc()
}

func (m *Metrics) observeFetch(failed bool, took time.Duration) {
	if m == nil {
		return
	}

	outcome := outcomeSuccess
	if failed {
		outcome = outcomeFailure
	}

	m.fetches.WithLabelValues(outcome).Inc()
	m.duration.Observe(took.Seconds())
}
