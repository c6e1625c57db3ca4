package mock

import (
	"context"
	"time"

	"github.com/sig-0/twdrates/rates"
)

type (
	GetDelegate     func(context.Context) *rates.FetchResult
	RefreshDelegate func(context.Context) *rates.FetchResult
	AgeDelegate     func() (time.Duration, bool)
	FetchDelegate   func(context.Context) *rates.FetchResult
)

// Snapshot is a mock snapshot cache
type Snapshot struct {
	GetFn     GetDelegate
	RefreshFn RefreshDelegate
	AgeFn     AgeDelegate
}

func (m *Snapshot) Get(ctx context.Context) *rates.FetchResult {
	if m.GetFn != nil {
		return m.GetFn(ctx)
	}

	return nil
}

func (m *Snapshot) Refresh(ctx context.Context) *rates.FetchResult {
	if m.RefreshFn != nil {
		return m.RefreshFn(ctx)
	}

	return nil
}

func (m *Snapshot) Age() (time.Duration, bool) {
	if m.AgeFn != nil {
		return m.AgeFn()
	}

	return 0, false
}

// Fetcher is a mock fetch cycle
type Fetcher struct {
	FetchFn FetchDelegate
}

func (m *Fetcher) Fetch(ctx context.Context) *rates.FetchResult {
	if m.FetchFn != nil {
		return m.FetchFn(ctx)
	}

	return nil
}
