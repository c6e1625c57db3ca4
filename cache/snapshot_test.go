package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sig-0/twdrates/cache/mock"
	"github.com/sig-0/twdrates/rates"
)

// testClock is a manually advanced clock
type testClock struct {
	now time.Time
	mu  sync.Mutex
}

func newTestClock() *testClock {
	return &testClock{
		now: time.Date(2026, time.October, 19, 8, 30, 0, 0, time.UTC),
	}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

// countingFetcher returns a fetcher that counts its calls
func countingFetcher(count *atomic.Int32) *mock.Fetcher {
	return &mock.Fetcher{
		FetchFn: func(_ context.Context) *rates.FetchResult {
			count.Add(1)

			return rates.NewFetchResult(nil, time.Now())
		},
	}
}

func TestSnapshot_New(t *testing.T) {
	t.Parallel()

	t.Run("default max age", func(t *testing.T) {
		t.Parallel()

		s := New(&mock.Fetcher{}, 0)

		assert.Equal(t, DefaultMaxAge, s.maxAge)
	})

	t.Run("empty cache", func(t *testing.T) {
		t.Parallel()

		s := New(&mock.Fetcher{}, time.Minute)

		_, _, ok := s.Cached()
		assert.False(t, ok)

		_, ok = s.Age()
		assert.False(t, ok)

		assert.False(t, s.Fresh())
	})
}

func TestSnapshot_Get(t *testing.T) {
	t.Parallel()

	t.Run("reused within max age", func(t *testing.T) {
		t.Parallel()

		var (
			count atomic.Int32
			clock = newTestClock()
			s     = New(countingFetcher(&count), time.Minute, WithClock(clock.Now))
		)

		first := s.Get(context.Background())
		clock.Advance(30 * time.Second)
		second := s.Get(context.Background())

		assert.Same(t, first, second)
		assert.Equal(t, int32(1), count.Load())

		age, ok := s.Age()
		require.True(t, ok)
		assert.Equal(t, 30*time.Second, age)
	})

	t.Run("refetched after max age", func(t *testing.T) {
		t.Parallel()

		var (
			count atomic.Int32
			clock = newTestClock()
			s     = New(countingFetcher(&count), time.Minute, WithClock(clock.Now))
		)

		s.Get(context.Background())
		clock.Advance(time.Minute)
		s.Get(context.Background())

		assert.Equal(t, int32(2), count.Load())
	})

	t.Run("failed results are cached", func(t *testing.T) {
		t.Parallel()

		var (
			count   atomic.Int32
			fetcher = &mock.Fetcher{
				FetchFn: func(_ context.Context) *rates.FetchResult {
					count.Add(1)

					return rates.NewFailedFetchResult(assert.AnError, time.Now())
				},
			}
			s = New(fetcher, time.Minute)
		)

		assert.True(t, s.Get(context.Background()).Failed())
		assert.True(t, s.Get(context.Background()).Failed())
		assert.Equal(t, int32(1), count.Load())
	})

	t.Run("concurrent callers share a fetch", func(t *testing.T) {
		t.Parallel()

		var (
			count   atomic.Int32
			release = make(chan struct{})
			fetcher = &mock.Fetcher{
				FetchFn: func(_ context.Context) *rates.FetchResult {
					count.Add(1)
					<-release

					return rates.NewFetchResult(nil, time.Now())
				},
			}
			s  = New(fetcher, time.Minute)
			wg sync.WaitGroup
		)

		for i := 0; i < 5; i++ {
			wg.Add(1)

			go func() {
				defer wg.Done()

				assert.NotNil(t, s.Get(context.Background()))
			}()
		}

		// Let the callers pile up on the in-flight fetch
		time.Sleep(50 * time.Millisecond)
		close(release)
		wg.Wait()

		assert.Equal(t, int32(1), count.Load())
	})
}

func TestSnapshot_Invalidate(t *testing.T) {
	t.Parallel()

	t.Run("invalidate drops the result", func(t *testing.T) {
		t.Parallel()

		var (
			count atomic.Int32
			s     = New(countingFetcher(&count), time.Minute)
		)

		s.Get(context.Background())
		s.Invalidate()

		_, _, ok := s.Cached()
		assert.False(t, ok)

		s.Get(context.Background())
		assert.Equal(t, int32(2), count.Load())
	})

	t.Run("refresh fetches", func(t *testing.T) {
		t.Parallel()

		var (
			count atomic.Int32
			s     = New(countingFetcher(&count), time.Minute)
		)

		first := s.Get(context.Background())
		second := s.Refresh(context.Background())

		assert.NotSame(t, first, second)
		assert.Equal(t, int32(2), count.Load())

		cached, _, ok := s.Cached()
		require.True(t, ok)
		assert.Same(t, second, cached)
	})
}

// contextFetcher fails the fetch if its context is done,
// the way a provider cascade does on a cancelled request
func contextFetcher(count *atomic.Int32) *mock.Fetcher {
	return &mock.Fetcher{
		FetchFn: func(ctx context.Context) *rates.FetchResult {
			count.Add(1)

			if err := ctx.Err(); err != nil {
				return rates.NewFailedFetchResult(err, time.Now())
			}

			return rates.NewFetchResult([]rates.RateRow{}, time.Now())
		},
	}
}

func TestSnapshot_AbandonedCaller(t *testing.T) {
	t.Parallel()

	t.Run("cancelled get", func(t *testing.T) {
		t.Parallel()

		var (
			count atomic.Int32
			s     = New(contextFetcher(&count), time.Minute)
		)

		ctx, cancelFn := context.WithCancel(context.Background())
		cancelFn()

		s.Get(ctx)

		second := s.Get(context.Background())

		require.NotNil(t, second)
		assert.False(t, second.Failed())
		assert.Equal(t, int32(1), count.Load())
	})

	t.Run("cancelled refresh", func(t *testing.T) {
		t.Parallel()

		var (
			count atomic.Int32
			s     = New(contextFetcher(&count), time.Minute)
		)

		ctx, cancelFn := context.WithCancel(context.Background())
		cancelFn()

		s.Refresh(ctx)

		second := s.Get(context.Background())

		require.NotNil(t, second)
		assert.False(t, second.Failed())
		assert.Equal(t, int32(1), count.Load())
	})

	t.Run("caller leaves mid-fetch", func(t *testing.T) {
		t.Parallel()

		var (
			release = make(chan struct{})
			fetcher = &mock.Fetcher{
				FetchFn: func(ctx context.Context) *rates.FetchResult {
					<-release

					if err := ctx.Err(); err != nil {
						return rates.NewFailedFetchResult(err, time.Now())
					}

					return rates.NewFetchResult([]rates.RateRow{}, time.Now())
				},
			}
			s = New(fetcher, time.Minute)
		)

		ctx, cancelFn := context.WithCancel(context.Background())

		done := make(chan *rates.FetchResult, 1)

		go func() {
			done <- s.Get(ctx)
		}()

		cancelFn()

		// The caller gets its own failure back right away
		select {
		case abandoned := <-done:
			assert.True(t, abandoned.Failed())
			assert.Contains(t, abandoned.Error, context.Canceled.Error())
		case <-time.After(5 * time.Second):
			t.Fatal("abandoned caller was not released")
		}

		close(release)

		result := s.Get(context.Background())

		require.NotNil(t, result)
		assert.False(t, result.Failed())

		cached, _, ok := s.Cached()
		require.True(t, ok)
		assert.Same(t, result, cached)
	})
}
