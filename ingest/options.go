package ingest

import (
	"log/slog"
	"time"
)

type Option func(o *Orchestrator)

// WithLogger specifies the logger for the orchestrator
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = l
	}
}

// WithProviderTimeout specifies the upper bound for a single provider attempt.
// Defaults to 15s
func WithProviderTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		o.providerTimeout = d
	}
}

// WithClock specifies the clock used for the fetch timestamp
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

// WithMetrics specifies the fetch cycle instrumentation
func WithMetrics(m *Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}
