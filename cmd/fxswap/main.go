// Package main is the entry point for the fxswap command.
// It quotes a single conversion using the pools and rates from the
// configuration file and prints the result with its fee breakdown.
//
// Usage:
//
//	fxswap -a BTC -b USD -amount 1
//	fxswap -a BTC -b USD -amount 30150 -backward
//	fxswap -config configs/fxswap.yaml -assets
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/govalues/fxswap"
	"github.com/govalues/fxswap/config"
	"github.com/govalues/fxswap/engine"
	"github.com/govalues/fxswap/internal/logger"
	"github.com/govalues/fxswap/rates"
)

// Command-line flags.
var (
	// configPath is the path to the YAML configuration file.
	configPath string
	// envPath is the path to an optional .env file.
	envPath string
	// tokenA and tokenB are the asset ids of the two fields.
	tokenA, tokenB string
	// amount is the decimal amount typed into the driven field.
	amount string
	// backward makes field B the driven field.
	backward bool
	// timeout bounds the whole quote.
	timeout time.Duration
	// listAssets prints the registry and exits.
	listAssets bool
	// showMetrics prints the engine counters after the quote.
	showMetrics bool
)

func init() {
	flag.StringVar(&configPath, "config", "configs/fxswap.yaml", "path to config file, empty for defaults only")
	flag.StringVar(&envPath, "env", ".env", "path to .env file")
	flag.StringVar(&tokenA, "a", "", "asset id of field A")
	flag.StringVar(&tokenB, "b", "", "asset id of field B")
	flag.StringVar(&amount, "amount", "", "amount typed into the driven field")
	flag.BoolVar(&backward, "backward", false, "treat amount as the desired amount of B")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "maximum time to wait for a quote")
	flag.BoolVar(&listAssets, "assets", false, "list known assets and exit")
	flag.BoolVar(&showMetrics, "metrics", false, "print engine metrics")
}

func main() {
	flag.Parse()
	if err := run(os.Stdout); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "fxswap: %v\n", err)
		os.Exit(1)
	}
}

func run(out io.Writer) error {
	if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", envPath, err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.App.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	log = log.With(zap.String("app", cfg.App.Name))

	reg, err := cfg.Registry()
	if err != nil {
		return err
	}
	if listAssets {
		for _, a := range reg.All() {
			_, _ = fmt.Fprintf(out, "%-6s %2d\n", a, a.Decimals())
		}
		return nil
	}
	if tokenA == "" || tokenB == "" || amount == "" {
		return fmt.Errorf("-a, -b and -amount are required")
	}

	pools, err := cfg.PoolSet(reg)
	if err != nil {
		return err
	}
	tbl, err := cfg.RateTable()
	if err != nil {
		return err
	}
	calc, err := cfg.Calculator()
	if err != nil {
		return err
	}
	provider := rates.NewCache(rates.Chain{pools, tbl}, cfg.Cache.TTL, rates.WithLogger(log))

	promReg := prometheus.NewRegistry()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	e := engine.New(reg, provider, calc,
		engine.WithLogger(log),
		engine.WithMetrics(engine.NewMetrics(promReg)),
		engine.WithOutputDigits(cfg.OutputDigits),
		engine.WithContext(ctx),
	)
	defer e.Close()

	e.SetTokenAID(tokenA)
	e.SetTokenBID(tokenB)
	if backward {
		err = e.SetTokenBInput(amount)
	} else {
		err = e.SetTokenAInput(amount)
	}
	if err != nil {
		return err
	}
	e.Wait()

	snap := e.Snapshot()
	if snap.Breakdown == nil {
		if snap.Err != nil {
			return snap.Err
		}
		return fmt.Errorf("no result for %s/%s", tokenA, tokenB)
	}
	if err := printQuote(out, reg, snap); err != nil {
		return err
	}
	if showMetrics {
		return printMetrics(out, promReg)
	}
	return nil
}

func printQuote(out io.Writer, reg *fxswap.Registry, snap engine.Snapshot) error {
	b, err := reg.Lookup(snap.TokenBID)
	if err != nil {
		return err
	}
	bd := snap.Breakdown
	pct := fxswap.NewFixedFromInt64(bd.FeeBps, 2)
	_, _ = fmt.Fprintf(out, "%-10s %s %s\n", "pay", snap.TokenAInput, snap.TokenAID)
	_, _ = fmt.Fprintf(out, "%-10s %s %s\n", "receive", snap.TokenBInput, snap.TokenBID)
	_, _ = fmt.Fprintf(out, "%-10s %s %s\n", "before fee", b.FormatAmount(bd.PreFee, fxswap.TrimZeros), b)
	_, _ = fmt.Fprintf(out, "%-10s %s %s (%s%%)\n", "fee", b.FormatAmount(bd.Fee, fxswap.TrimZeros), b, pct.ToFormat(fxswap.FormatPercent))
	return nil
}

func printMetrics(out io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, l := range m.GetLabel() {
				labels = append(labels, l.GetName()+"="+l.GetValue())
			}
			name := mf.GetName()
			if len(labels) > 0 {
				name += "{" + strings.Join(labels, ",") + "}"
			}
			_, _ = fmt.Fprintf(out, "%s %v\n", name, m.GetCounter().GetValue())
		}
	}
	return nil
}
