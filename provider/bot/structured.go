package bot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sig-0/twdrates/ingest"
	"github.com/sig-0/twdrates/rates"
)

var errNoRecords = errors.New("schema matched no records")

// StructuredProvider is the schema-driven board provider
type StructuredProvider struct {
	client *http.Client
	url    string
	schema Schema

	enabled bool
}

// NewStructuredProvider creates a new instance of the schema-driven board provider
func NewStructuredProvider(
	url string,
	timeout time.Duration,
	schema Schema,
	enabled bool,
) *StructuredProvider {
	return &StructuredProvider{
		client:  newClient(timeout),
		url:     url,
		schema:  schema,
		enabled: enabled,
	}
}

func (p *StructuredProvider) Name() string {
	return "BOT Structured"
}

func (p *StructuredProvider) Fetch(ctx context.Context) ([]rates.RateRow, error) {
	if !p.enabled {
		return nil, fmt.Errorf("%w: structured extraction is disabled", ingest.ErrProviderUnavailable)
	}

	// Always fetch the live page
	header := http.Header{}
	header.Set("Cache-Control", "no-cache")
	header.Set("Pragma", "no-cache")

	doc, err := fetchDocument(ctx, p.client, p.url, header)
	if err != nil {
		return nil, err
	}

	records := p.schema.Extract(doc)
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s", errNoRecords, p.schema.Name)
	}

	return rates.Complete(records), nil
}
