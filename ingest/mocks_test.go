package ingest

import (
	"context"

	"github.com/sig-0/twdrates/rates"
)

type (
	nameDelegate  func() string
	fetchDelegate func(context.Context) ([]rates.RateRow, error)
)

type mockProvider struct {
	nameFn  nameDelegate
	fetchFn fetchDelegate
}

func (m *mockProvider) Name() string {
	if m.nameFn != nil {
		return m.nameFn()
	}

	return ""
}

func (m *mockProvider) Fetch(ctx context.Context) ([]rates.RateRow, error) {
	if m.fetchFn != nil {
		return m.fetchFn(ctx)
	}

	return nil, nil
}

// newMockProvider creates a named mock provider with the given fetch delegate
func newMockProvider(name string, fetchFn fetchDelegate) *mockProvider {
	return &mockProvider{
		nameFn: func() string {
			return name
		},
		fetchFn: fetchFn,
	}
}
