package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/rs/xid"
	"github.com/sig-0/iq"

	"github.com/sig-0/twdrates/rates"
)

const defaultProviderTimeout = 15 * time.Second

var (
	errInvalidProvider = errors.New("invalid provider")
	errNoProviders     = errors.New("no providers registered")
	errProviderPanic   = errors.New("provider panicked")
	errProviderTimeout = errors.New("provider timed out")
)

// Orchestrator runs the registered providers in priority order,
// returning the board of the first one that succeeds
type Orchestrator struct {
	logger  *slog.Logger
	metrics *Metrics
	now     func() time.Time

	q    iq.Queue[registeredProvider]
	qMux sync.Mutex
	seq  uint64

	providerTimeout time.Duration
}

// New creates a new Orchestrator instance
func New(opts ...Option) *Orchestrator {
	o := &Orchestrator{
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:             time.Now,
		q:               iq.NewQueue[registeredProvider](),
		providerTimeout: defaultProviderTimeout,
	}

	// Apply the options
	for _, opt := range opts {
		opt(o)
	}

	return o
}

// Register registers a new provider with the orchestrator.
// Providers with a lower priority are attempted first,
// equal priorities are attempted in registration order
func (o *Orchestrator) Register(p Provider, priority int) error {
	if p == nil || p.Name() == "" {
		return errInvalidProvider
	}

	o.qMux.Lock()
	defer o.qMux.Unlock()

	o.q.Push(registeredProvider{
		provider: p,
		priority: priority,
		seq:      o.seq,
	})

	o.seq++

	o.logger.Info(
		"registered new provider",
		"name", p.Name(),
		"priority", priority,
	)

	return nil
}

// Fetch runs a single fetch cycle. It never fails outright:
// a total failure is reported through the result's error
func (o *Orchestrator) Fetch(ctx context.Context) *rates.FetchResult {
	start := time.Now()

	result := o.fetch(ctx)
	o.metrics.observeFetch(result.Failed(), time.Since(start))

	return result
}

// fetch runs the providers in order, until one succeeds
func (o *Orchestrator) fetch(ctx context.Context) *rates.FetchResult {
	var (
		fetchedAt = o.now().UTC()
		attemptID = xid.New()
		providers = o.providers()
	)

	if len(providers) == 0 {
		o.logger.Error(
			"unable to fetch rates",
			"id", attemptID.String(),
			"err", errNoProviders,
		)

		return rates.NewFailedFetchResult(errNoProviders, fetchedAt)
	}

	var lastErr error

	for _, p := range providers {
		rows, err := o.attempt(ctx, p)
		if err == nil {
			o.metrics.observeAttempt(p.Name(), outcomeSuccess)

			o.logger.Info(
				"fetched rates",
				"id", attemptID.String(),
				"provider", p.Name(),
				"rows", len(rows),
			)

			return rates.NewFetchResult(rows, fetchedAt)
		}

		if errors.Is(err, ErrProviderUnavailable) {
			o.metrics.observeAttempt(p.Name(), outcomeUnavailable)

			o.logger.Debug(
				"provider unavailable, skipping",
				"id", attemptID.String(),
				"provider", p.Name(),
				"reason", err.Error(),
			)

			if lastErr == nil {
				lastErr = fmt.Errorf("%s: %w", p.Name(), err)
			}

			continue
		}

		o.metrics.observeAttempt(p.Name(), outcomeFailure)

		o.logger.Warn(
			"provider fetch failed",
			"id", attemptID.String(),
			"provider", p.Name(),
			"err", err.Error(),
		)

		lastErr = fmt.Errorf("%s: %w", p.Name(), err)
	}

	o.logger.Error(
		"all providers failed",
		"id", attemptID.String(),
		"err", lastErr,
	)

	return rates.NewFailedFetchResult(lastErr, fetchedAt)
}

// attempt runs a single provider fetch, bounded by the provider timeout.
// The provider is abandoned if it doesn't honor the context
func (o *Orchestrator) attempt(ctx context.Context, p Provider) ([]rates.RateRow, error) {
	attemptCtx, cancelFn := context.WithTimeout(ctx, o.providerTimeout)
	defer cancelFn()

	resCh := make(chan *workerResponse, 1)

	go handleJob(attemptCtx, p, resCh)

	select {
	case <-attemptCtx.Done():
		if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s", errProviderTimeout, o.providerTimeout)
		}

		return nil, attemptCtx.Err()
	case response := <-resCh:
		return response.rows, response.error
	}
}

// providers returns the registered providers, in attempt order
func (o *Orchestrator) providers() []Provider {
	o.qMux.Lock()
	defer o.qMux.Unlock()

	// The queue is kept sorted on push
	out := make([]Provider, 0, o.q.Len())
	for i := 0; i < o.q.Len(); i++ {
		out = append(out, o.q.Index(i).provider)
	}

	return out
}
