package convert

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/sig-0/twdrates/cmd/board"
	"github.com/sig-0/twdrates/cmd/env"
	"github.com/sig-0/twdrates/rates"
)

const (
	defaultAmount = 1000
	defaultCode   = "USD"
)

// convertCfg wraps the convert configuration
type convertCfg struct {
	board.Flags

	out    io.Writer
	logOut io.Writer

	code     string
	rateType string
	amount   float64
}

// NewConvertCmd creates the convert command
func NewConvertCmd() *ffcli.Command {
	return newConvertCmd(os.Stdout, os.Stderr)
}

func newConvertCmd(out, logOut io.Writer) *ffcli.Command {
	cfg := &convertCfg{
		out:    out,
		logOut: logOut,
	}

	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	cfg.registerFlags(fs)

	return &ffcli.Command{
		Name:       "convert",
		ShortUsage: "convert [flags]",
		LongHelp:   "Converts a TWD amount into a foreign currency, using the current posted rates",
		FlagSet:    fs,
		Exec:       cfg.exec,
		Options: []ff.Option{
			// Allow using ENV variables
			ff.WithEnvVars(),
			ff.WithEnvVarPrefix(env.Prefix),
		},
	}
}

func (c *convertCfg) registerFlags(fs *flag.FlagSet) {
	c.RegisterFlags(fs)

	fs.Float64Var(
		&c.amount,
		"amount",
		defaultAmount,
		"the TWD amount to convert",
	)

	fs.StringVar(
		&c.code,
		"code",
		defaultCode,
		"the target currency code, ex. USD",
	)

	fs.StringVar(
		&c.rateType,
		"type",
		rates.RateTypeSpotSell.String(),
		"the rate to use: cash_buy, cash_sell, spot_buy or spot_sell",
	)
}

// exec executes the convert command
func (c *convertCfg) exec(ctx context.Context, _ []string) error {
	// Validate the request before going out to the bank
	rateType, err := rates.ParseRateType(c.rateType)
	if err != nil {
		return err
	}

	cfg, err := c.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(c.logOut, &slog.HandlerOptions{Level: slog.LevelWarn}))

	orchestrator, err := board.NewOrchestrator(cfg, logger)
	if err != nil {
		return fmt.Errorf("unable to create orchestrator, %w", err)
	}

	result := orchestrator.Fetch(ctx)
	if result.Failed() {
		return fmt.Errorf("unable to fetch rates: %s", result.Error)
	}

	conversion, err := rates.Resolve(result.Rows, rates.ConversionRequest{
		Code:     c.code,
		RateType: rateType,
		Amount:   c.amount,
	})
	if err != nil {
		return fmt.Errorf("unable to convert: %w", err)
	}

	encoder := json.NewEncoder(c.out)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(conversion); err != nil {
		return fmt.Errorf("unable to write result, %w", err)
	}

	return nil
}
