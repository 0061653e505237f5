package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"signalbot/internal/config"
	"signalbot/internal/engine"
	"signalbot/internal/md"
	"signalbot/internal/metrics"
	"signalbot/internal/session"
	"signalbot/internal/strategy"
	"signalbot/internal/util"
)

var version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "signalbot",
		Short:         "Evaluate trading signals over a rolling price window",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	loader := config.NewLoader(rootCmd.Flags())
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := loader.Load()
		if err != nil {
			return fmt.Errorf("config error: %w", err)
		}
		return run(cmd.Context(), cfg, cmd.InOrStdin(), cmd.OutOrStdout())
	}

	rootCmd.AddCommand(strategiesCmd())
	rootCmd.AddCommand(versionCmd())
	return rootCmd
}

func strategiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "strategies",
		Short: "List available strategies",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range strategy.Names() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "signalbot version %s\n", version)
		},
	}
}

func run(ctx context.Context, cfg config.Config, in io.Reader, out io.Writer) error {
	logger := util.NewLoggerTo(out, cfg.LogLevel)

	name := cfg.Strategy
	if name == "" {
		var err error
		if name, err = promptStrategy(in, out); err != nil {
			return err
		}
	}
	strat, err := strategy.New(name)
	if err != nil {
		return err
	}
	sess, err := session.New(strat, cfg.WindowSize)
	if err != nil {
		return err
	}

	runID := generateRunID()
	var decisions *engine.DecisionLogger
	if cfg.DecisionsPath != "" {
		decisions, err = engine.NewDecisionLogger(cfg.DecisionsPath, runID)
		if err != nil {
			return fmt.Errorf("decision logger error: %w", err)
		}
		defer func() {
			if err := decisions.Close(); err != nil {
				logger.Error().Err(err).Msg("failed to close decision logger")
			}
		}()
	}

	if cfg.MetricsAddr != "" {
		srv, err := metrics.Serve(cfg.MetricsAddr, logger)
		if err != nil {
			return fmt.Errorf("metrics server error: %w", err)
		}
		defer srv.Close()
		logger.Info().Str("addr", srv.Addr).Msg("serving metrics")
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	eng := engine.New(sess, decisions, logger)
	source := newSource(cfg, logger)

	logger.Info().
		Str("run_id", runID).
		Str("strategy", strat.Name()).
		Str("source", string(cfg.Source)).
		Str("symbol", cfg.Symbol).
		Int("window_size", cfg.WindowSize).
		Msg("starting")
	err = source.Run(ctx, func(bar md.Bar) {
		eng.OnBar(bar)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("price source stopped: %w", err)
	}
	logger.Info().Str("run_id", runID).Msg("shutdown complete")
	return nil
}

func newSource(cfg config.Config, logger zerolog.Logger) md.Source {
	switch cfg.Source {
	case config.SourceStatic:
		return md.StaticSource{Symbol: cfg.Symbol, Prices: cfg.Prices, Interval: cfg.Interval}
	case config.SourceStream:
		return md.StreamSource{
			APIKey:    cfg.APIKey,
			APISecret: cfg.APISecret,
			Feed:      cfg.Feed,
			Symbol:    cfg.Symbol,
			Logger:    logger,
		}
	default:
		return md.RandomSource{
			Symbol:   cfg.Symbol,
			Count:    cfg.Iterations,
			Interval: cfg.Interval,
			Min:      cfg.MinPrice,
			Max:      cfg.MaxPrice,
			Seed:     cfg.Seed,
		}
	}
}

func promptStrategy(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprintf(out, "Enter trading strategy (%s): ", strings.Join(strategy.Names(), "/"))
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read strategy: %w", err)
	}
	name := strings.TrimSpace(line)
	if name == "" {
		return "", errors.New("no strategy given")
	}
	return name, nil
}

func generateRunID() string {
	return time.Now().UTC().Format("20060102T150405") + "-" + uuid.NewString()[:8]
}
