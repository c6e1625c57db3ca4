package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/sig-0/twdrates/rates"
)

// DefaultMaxAge is the default snapshot reuse window
const DefaultMaxAge = 10 * time.Minute

const flightKey = "snapshot"

// Fetcher runs a single fetch cycle
type Fetcher interface {
	Fetch(context.Context) *rates.FetchResult
}

// Snapshot is a single-slot cache holding the last fetch result
// and the time it was captured. It sits in front of the fetcher,
// which is left unaware of it
type Snapshot struct {
	fetcher Fetcher
	now     func() time.Time

	result   *rates.FetchResult
	storedAt time.Time

	flight singleflight.Group

	maxAge time.Duration
	mu     sync.RWMutex
}

// New creates a new snapshot cache in front of the fetcher
func New(fetcher Fetcher, maxAge time.Duration, opts ...Option) *Snapshot {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}

	s := &Snapshot{
		fetcher: fetcher,
		maxAge:  maxAge,
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Cached returns the cached result and its capture time, if any.
// The result is returned regardless of its age
func (s *Snapshot) Cached() (*rates.FetchResult, time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.result == nil {
		return nil, time.Time{}, false
	}

	return s.result, s.storedAt, true
}

// Age returns the age of the cached result, if any
func (s *Snapshot) Age() (time.Duration, bool) {
	_, storedAt, ok := s.Cached()
	if !ok {
		return 0, false
	}

	return s.now().Sub(storedAt), true
}

// Fresh returns true if a cached result exists, and is within the max age
func (s *Snapshot) Fresh() bool {
	age, ok := s.Age()

	return ok && age < s.maxAge
}

// Get returns the cached result if it is fresh, otherwise fetches a new one.
// Concurrent callers share a single fetch
func (s *Snapshot) Get(ctx context.Context) *rates.FetchResult {
	if s.Fresh() {
		result, _, _ := s.Cached()

		return result
	}

	return s.fetch(ctx)
}

// Refresh invalidates the cached result and fetches a new one
func (s *Snapshot) Refresh(ctx context.Context) *rates.FetchResult {
	s.Invalidate()

	return s.fetch(ctx)
}

// Invalidate drops the cached result
func (s *Snapshot) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.result = nil
	s.storedAt = time.Time{}
}

// fetch runs the shared fetch, and stores its result.
// The fetch is detached from the caller: a caller that goes away gets
// a failed result back, while the fetch completes for everyone else
func (s *Snapshot) fetch(ctx context.Context) *rates.FetchResult {
	resCh := s.flight.DoChan(flightKey, func() (any, error) {
		// Another caller may have stored a result in the meantime
		if s.Fresh() {
			result, _, _ := s.Cached()

			return result, nil
		}

		result := s.fetcher.Fetch(context.WithoutCancel(ctx))

		s.mu.Lock()
		s.result = result
		s.storedAt = s.now()
		s.mu.Unlock()

		return result, nil
	})

	select {
	case <-ctx.Done():
		return rates.NewFailedFetchResult(ctx.Err(), s.now())
	case res := <-resCh:
		result, _ := res.Val.(*rates.FetchResult)

		return result
	}
}
