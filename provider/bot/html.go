package bot

import (
	"context"
	"net/http"
	"time"

	"github.com/sig-0/twdrates/rates"
)

// HTMLProvider is the plain HTML board provider
type HTMLProvider struct {
	client *http.Client
	url    string
	layout Layout
}

// NewHTMLProvider creates a new instance of the plain HTML board provider
func NewHTMLProvider(url string, timeout time.Duration, layout Layout) *HTMLProvider {
	return &HTMLProvider{
		client: newClient(timeout),
		url:    url,
		layout: layout,
	}
}

func (p *HTMLProvider) Name() string {
	return "BOT HTML"
}

func (p *HTMLProvider) Fetch(ctx context.Context) ([]rates.RateRow, error) {
	doc, err := fetchDocument(ctx, p.client, p.url, nil)
	if err != nil {
		return nil, err
	}

	// A page without the rate table is a valid (empty) board
	return ExtractDocument(doc, p.layout), nil
}
