package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/sig-0/twdrates/cmd/board"
	"github.com/sig-0/twdrates/cmd/env"
)

var errFetchFailed = errors.New("rate board fetch failed")

// fetchCfg wraps the fetch configuration
type fetchCfg struct {
	board.Flags

	out    io.Writer
	logOut io.Writer

	tradable bool
	display  bool
	verbose  bool
}

// NewFetchCmd creates the fetch command
func NewFetchCmd() *ffcli.Command {
	return newFetchCmd(os.Stdout, os.Stderr)
}

func newFetchCmd(out, logOut io.Writer) *ffcli.Command {
	cfg := &fetchCfg{
		out:    out,
		logOut: logOut,
	}

	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	cfg.registerFlags(fs)

	return &ffcli.Command{
		Name:       "fetch",
		ShortUsage: "fetch [flags]",
		LongHelp:   "Runs a single rate board fetch, and prints the result as JSON",
		FlagSet:    fs,
		Exec:       cfg.exec,
		Options: []ff.Option{
			// Allow using ENV variables
			ff.WithEnvVars(),
			ff.WithEnvVarPrefix(env.Prefix),
		},
	}
}

func (c *fetchCfg) registerFlags(fs *flag.FlagSet) {
	c.RegisterFlags(fs)

	fs.BoolVar(
		&c.tradable,
		"tradable",
		false,
		"only print the currencies with at least one posted rate",
	)

	fs.BoolVar(
		&c.display,
		"display",
		false,
		"replace the absent rates with the suspended label",
	)

	fs.BoolVar(
		&c.verbose,
		"verbose",
		false,
		"log each provider attempt",
	)
}

// exec executes the fetch command
func (c *fetchCfg) exec(ctx context.Context, _ []string) error {
	cfg, err := c.Load()
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if c.verbose {
		level = slog.LevelDebug
	}

	// The result goes to the output, the logs go elsewhere
	logger := slog.New(slog.NewTextHandler(c.logOut, &slog.HandlerOptions{Level: level}))

	orchestrator, err := board.NewOrchestrator(cfg, logger)
	if err != nil {
		return fmt.Errorf("unable to create orchestrator, %w", err)
	}

	result := orchestrator.Fetch(ctx)

	view := result
	if c.tradable {
		view = view.Tradable()
	}

	var out any = view
	if c.display {
		out = view.Display()
	}

	encoder := json.NewEncoder(c.out)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(out); err != nil {
		return fmt.Errorf("unable to write result, %w", err)
	}

	if result.Failed() {
		return fmt.Errorf("%w: %s", errFetchFailed, result.Error)
	}

	return nil
}
