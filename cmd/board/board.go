// Package board wires the rate board fetch pipeline from the configuration,
// and is shared by all commands
package board

import (
	"flag"
	"fmt"
	"log/slog"

	"github.com/sig-0/twdrates/cache"
	"github.com/sig-0/twdrates/config"
	"github.com/sig-0/twdrates/ingest"
	"github.com/sig-0/twdrates/provider/bot"
)

const (
	// Priorities of the rate board providers (lower runs first)
	structuredPriority = 0
	htmlPriority       = 1
)

// Flags wraps the shared command flags
type Flags struct {
	configPath string
	url        string

	disableStructured bool
}

// RegisterFlags registers the shared flags to the flag set
func (f *Flags) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(
		&f.configPath,
		"config",
		"",
		"the path to the TOML configuration, if any",
	)

	fs.StringVar(
		&f.url,
		"url",
		"",
		"the rate board URL, overrides the configuration",
	)

	fs.BoolVar(
		&f.disableStructured,
		"disable-structured",
		false,
		"skip the structured extraction, and only parse the plain HTML table",
	)
}

// Load reads the configuration, if any, and applies the flag overrides
func (f *Flags) Load() (*config.Config, error) {
	cfg := config.DefaultConfig()

	if f.configPath != "" {
		fileCfg, err := config.Read(f.configPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read config, %w", err)
		}

		cfg = fileCfg
	}

	if f.url != "" {
		cfg.Source.URL = f.url
	}

	if f.disableStructured {
		cfg.Source.DisableStructured = true
	}

	if err := config.ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration, %w", err)
	}

	return cfg, nil
}

// NewOrchestrator creates the fetch orchestrator, with the rate board
// providers registered in order of preference
func NewOrchestrator(
	cfg *config.Config,
	logger *slog.Logger,
	opts ...ingest.Option,
) (*ingest.Orchestrator, error) {
	timeout, err := cfg.Source.TimeoutDuration()
	if err != nil {
		return nil, err
	}

	structuredTimeout, err := cfg.Source.StructuredTimeoutDuration()
	if err != nil {
		return nil, err
	}

	var (
		layout = cfg.Layout.BoardLayout()

		// Declarative extraction of the board table
		structuredProvider = bot.NewStructuredProvider(
			cfg.Source.URL,
			structuredTimeout,
			bot.SchemaFromLayout(layout),
			!cfg.Source.DisableStructured,
		)

		// Plain HTML table parsing
		htmlProvider = bot.NewHTMLProvider(
			cfg.Source.URL,
			timeout,
			layout,
		)
	)

	orchestrator := ingest.New(
		append(
			[]ingest.Option{
				ingest.WithLogger(logger),
				ingest.WithProviderTimeout(max(timeout, structuredTimeout)),
			},
			opts...,
		)...,
	)

	if err := orchestrator.Register(structuredProvider, structuredPriority); err != nil {
		return nil, fmt.Errorf("unable to register provider: %w", err)
	}

	if err := orchestrator.Register(htmlProvider, htmlPriority); err != nil {
		return nil, fmt.Errorf("unable to register provider: %w", err)
	}

	return orchestrator, nil
}

// NewSnapshot creates the snapshot cache in front of the fetcher
func NewSnapshot(cfg *config.Config, fetcher cache.Fetcher) (*cache.Snapshot, error) {
	maxAge, err := cfg.Cache.MaxAgeDuration()
	if err != nil {
		return nil, err
	}

	return cache.New(fetcher, maxAge), nil
}
