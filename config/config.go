package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"time"

	"github.com/pelletier/go-toml"

	"github.com/sig-0/twdrates/provider/bot"
)

const (
	DefaultListenAddress     = "0.0.0.0:8545"
	DefaultTimeout           = "15s"
	DefaultStructuredTimeout = "15s"
	DefaultCacheMaxAge       = "10m"
)

var (
	ErrInvalidListenAddress = errors.New("invalid listen address")
	ErrInvalidSourceURL     = errors.New("invalid source url")
	ErrInvalidDuration      = errors.New("invalid duration")
	ErrInvalidLayout        = errors.New("invalid layout")
)

var listenAddressRegex = regexp.MustCompile(`^\d{1,3}(\.\d{1,3}){3}:\d+$`)

// Config defines the base-level configuration
type Config struct {
	// The associated CORS config, if any
	CORSConfig *CORS `toml:"cors_config"`

	// The rate board source
	Source *Source `toml:"source"`

	// The rate board table layout
	Layout *Layout `toml:"layout"`

	// The snapshot cache config
	Cache *Cache `toml:"cache"`

	// The address at which the server will be served.
	// Format should be: <IP>:<PORT>
	ListenAddress string `toml:"listen_address"`
}

// Source defines where, and how, the rate board is fetched
type Source struct {
	URL string `toml:"url"`

	// Bound on the plain HTML fetch, ex. "15s"
	Timeout string `toml:"timeout"`

	// Bound on the structured extraction, ex. "15s"
	StructuredTimeout string `toml:"structured_timeout"`

	// Skips the structured extraction, going straight to the HTML fetch
	DisableStructured bool `toml:"disable_structured"`
}

// Layout defines the rate board table marker, and 0-based column indexes
type Layout struct {
	TableSelector string `toml:"table_selector"`

	Currency int `toml:"currency"`
	CashBuy  int `toml:"cash_buy"`
	CashSell int `toml:"cash_sell"`
	SpotBuy  int `toml:"spot_buy"`
	SpotSell int `toml:"spot_sell"`
}

// Cache defines the snapshot cache configuration
type Cache struct {
	// How long a fetched board is reused, ex. "10m"
	MaxAge string `toml:"max_age"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		ListenAddress: DefaultListenAddress,
		CORSConfig:    DefaultCORSConfig(),
		Source:        DefaultSourceConfig(),
		Layout:        DefaultLayoutConfig(),
		Cache: &Cache{
			MaxAge: DefaultCacheMaxAge,
		},
	}
}

// DefaultSourceConfig returns the default source configuration
func DefaultSourceConfig() *Source {
	return &Source{
		URL:               bot.DefaultURL,
		Timeout:           DefaultTimeout,
		StructuredTimeout: DefaultStructuredTimeout,
	}
}

// DefaultLayoutConfig returns the current board layout
func DefaultLayoutConfig() *Layout {
	l := bot.DefaultLayout()

	return &Layout{
		TableSelector: l.TableSelector,
		Currency:      l.Currency,
		CashBuy:       l.CashBuy,
		CashSell:      l.CashSell,
		SpotBuy:       l.SpotBuy,
		SpotSell:      l.SpotSell,
	}
}

// BoardLayout converts the layout configuration
func (l *Layout) BoardLayout() bot.Layout {
	return bot.Layout{
		TableSelector: l.TableSelector,
		Currency:      l.Currency,
		CashBuy:       l.CashBuy,
		CashSell:      l.CashSell,
		SpotBuy:       l.SpotBuy,
		SpotSell:      l.SpotSell,
	}
}

// TimeoutDuration returns the parsed HTML fetch timeout
func (s *Source) TimeoutDuration() (time.Duration, error) {
	return parseDuration("source.timeout", s.Timeout)
}

// StructuredTimeoutDuration returns the parsed structured extraction timeout
func (s *Source) StructuredTimeoutDuration() (time.Duration, error) {
	return parseDuration("source.structured_timeout", s.StructuredTimeout)
}

// MaxAgeDuration returns the parsed snapshot max age
func (c *Cache) MaxAgeDuration() (time.Duration, error) {
	return parseDuration("cache.max_age", c.MaxAge)
}

// ValidateConfig validates the configuration
func ValidateConfig(config *Config) error {
	// Validate the listen address
	if !listenAddressRegex.MatchString(config.ListenAddress) {
		return ErrInvalidListenAddress
	}

	if config.Source != nil {
		u, err := url.ParseRequestURI(config.Source.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: %q", ErrInvalidSourceURL, config.Source.URL)
		}

		if _, err := config.Source.TimeoutDuration(); err != nil {
			return err
		}

		if _, err := config.Source.StructuredTimeoutDuration(); err != nil {
			return err
		}
	}

	if config.Layout != nil {
		if err := config.Layout.BoardLayout().Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidLayout, err)
		}
	}

	if config.Cache != nil {
		if _, err := config.Cache.MaxAgeDuration(); err != nil {
			return err
		}
	}

	return nil
}

// Read reads the configuration from the given path.
// Sections missing from the file are set to their defaults
func Read(path string) (*Config, error) {
	// Read the config file
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Parse it
	var cfg Config

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	return &cfg, nil
}

// applyDefaults fills in the missing configuration values
func applyDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.ListenAddress == "" {
		cfg.ListenAddress = defaults.ListenAddress
	}

	if cfg.Source == nil {
		cfg.Source = defaults.Source
	}

	if cfg.Source.URL == "" {
		cfg.Source.URL = defaults.Source.URL
	}

	if cfg.Source.Timeout == "" {
		cfg.Source.Timeout = defaults.Source.Timeout
	}

	if cfg.Source.StructuredTimeout == "" {
		cfg.Source.StructuredTimeout = defaults.Source.StructuredTimeout
	}

	if cfg.Layout == nil {
		cfg.Layout = defaults.Layout
	}

	if cfg.Cache == nil {
		cfg.Cache = defaults.Cache
	}

	if cfg.Cache.MaxAge == "" {
		cfg.Cache.MaxAge = defaults.Cache.MaxAge
	}
}

func parseDuration(name, raw string) (time.Duration, error) {
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidDuration, name, raw)
	}

	return d, nil
}
