package ingest

import (
	"context"
	"errors"

	"github.com/sig-0/twdrates/rates"
)

// ErrProviderUnavailable is returned by providers that can't run in the current
// environment (ex. disabled in the configuration), as opposed to a failed fetch
var ErrProviderUnavailable = errors.New("provider unavailable")

// Provider is a single rate board provider
type Provider interface {
	// Name returns the human-readable name of the provider
	Name() string

	// Fetch is the provider's fetch-and-parse job, yielding the board rows
	Fetch(context.Context) ([]rates.RateRow, error)
}
