package ingest

import (
	"context"
	"fmt"

	"github.com/sig-0/twdrates/rates"
)

// registeredProvider is a single Provider registered with the orchestrator
type registeredProvider struct {
	provider Provider
	priority int
	seq      uint64
}

// Less is utilized to sort registered providers by priority,
// then registration order (lower == first)
func (a registeredProvider) Less(b registeredProvider) bool {
	if a.priority != b.priority {
		return a.priority < b.priority
	}

	return a.seq < b.seq
}

// workerResponse is the provider routine response
type workerResponse struct {
	error error           // encountered error, if any
	rows  []rates.RateRow // the fetched board rows
}

// handleJob fetches using the provider, reporting to resCh
func handleJob(
	ctx context.Context,
	provider Provider,
	resCh chan<- *workerResponse,
) {
	response := &workerResponse{}

	defer func() {
		if r := recover(); r != nil {
			response = &workerResponse{
				error: fmt.Errorf("%w: %v", errProviderPanic, r),
			}
		}

		select {
		case <-ctx.Done():
		case resCh <- response:
		}
	}()

	response.rows, response.error = provider.Fetch(ctx)
}
