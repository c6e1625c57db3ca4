package serve

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/sig-0/twdrates/cmd/board"
	"github.com/sig-0/twdrates/cmd/env"
	"github.com/sig-0/twdrates/ingest"
	"github.com/sig-0/twdrates/server"
)

// serveCfg wraps the serve configuration
type serveCfg struct {
	board.Flags

	listenAddress string

	warmUp  bool
	metrics bool
}

// NewServeCmd creates the serve command
func NewServeCmd() *ffcli.Command {
	cfg := &serveCfg{}

	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cfg.registerFlags(fs)

	return &ffcli.Command{
		Name:       "serve",
		ShortUsage: "serve [flags]",
		LongHelp:   "Serves the twdrates API",
		FlagSet:    fs,
		Exec:       cfg.exec,
		Options: []ff.Option{
			// Allow using ENV variables
			ff.WithEnvVars(),
			ff.WithEnvVarPrefix(env.Prefix),
		},
	}
}

func (c *serveCfg) registerFlags(fs *flag.FlagSet) {
	c.RegisterFlags(fs)

	fs.StringVar(
		&c.listenAddress,
		"listen",
		"",
		"the IP:PORT URL for the server, overrides the configuration",
	)

	fs.BoolVar(
		&c.warmUp,
		"warm-up",
		true,
		"fetch the rate board on startup, instead of on the first request",
	)

	fs.BoolVar(
		&c.metrics,
		"metrics",
		true,
		"serve the Prometheus metrics at /metrics",
	)
}

// exec executes the serve command
func (c *serveCfg) exec(ctx context.Context, _ []string) error {
	// Create a new logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := c.Load()
	if err != nil {
		return err
	}

	if c.listenAddress != "" {
		cfg.ListenAddress = c.listenAddress
	}

	// Set up the fetch instrumentation, if any
	var (
		registry = prometheus.NewRegistry()
		opts     []ingest.Option
	)

	if c.metrics {
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)

		metrics, err := ingest.NewMetrics(registry)
		if err != nil {
			return fmt.Errorf("unable to register metrics, %w", err)
		}

		opts = append(opts, ingest.WithMetrics(metrics))
	}

	// Create the fetch pipeline, behind the snapshot cache
	orchestrator, err := board.NewOrchestrator(cfg, logger, opts...)
	if err != nil {
		return fmt.Errorf("unable to create orchestrator, %w", err)
	}

	snapshot, err := board.NewSnapshot(cfg, orchestrator)
	if err != nil {
		return fmt.Errorf("unable to create snapshot cache, %w", err)
	}

	// Create the server instance
	s, err := server.New(
		snapshot,
		server.WithLogger(logger),
		server.WithConfig(cfg),
	)
	if err != nil {
		return fmt.Errorf("unable to create server, %w", err)
	}

	if c.metrics {
		s.Routes(func(router chi.Router) {
			router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		})
	}

	runCtx, cancelFn := signal.NotifyContext(
		ctx,
		os.Interrupt,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)

	defer cancelFn()

	group, gCtx := errgroup.WithContext(runCtx)

	// Start the HTTP server
	group.Go(func() error {
		return s.Serve(gCtx)
	})

	// Prime the snapshot cache
	if c.warmUp {
		group.Go(func() error {
			result := snapshot.Get(gCtx)
			if result.Failed() {
				logger.Warn(
					"unable to warm up the rate board snapshot",
					"err", result.Error,
				)

				return nil
			}

			logger.Info(
				"rate board snapshot warmed up",
				"rows", len(result.Rows),
				"fetched_at", result.FetchedAt,
			)

			return nil
		})
	}

	return group.Wait()
}
