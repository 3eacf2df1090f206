package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	service "github.com/okian/gambit/internal/app"
	"github.com/okian/gambit/internal/config"
	"github.com/okian/gambit/internal/domain/glicko"
	"github.com/okian/gambit/internal/domain/leaderboard"
	"github.com/okian/gambit/pkg/logger"
	"github.com/okian/gambit/pkg/metrics"
)

var summaryPrinter = message.NewPrinter(language.English)

// runFlags holds the flags of rank and serve. Each command registers only
// the flags it uses; unregistered ones are never applied.
type runFlags struct {
	threshold   float64
	history     string
	format      string
	metricsFile string
	tau         float64
	logLevel    string
	quiet       bool
	addr        string
	maxLimit    int
}

func newRankCommand() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "rank [archive]",
		Short: "Rate an archive and print the leaderboard",
		Long: `Rate every decided game of a PGN archive and print the leaderboard.

The archive may be plain, gzip or zstd compressed. Without an argument the
archive configured in GAMBIT_CONFIG or GAMBIT_ARCHIVE is used. Records
without a result or without White, Black or Date are skipped; an invalid
header encoding or date aborts the run.`,
		Args: archiveArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRank(cmd, args, &flags)
		},
	}

	f := cmd.Flags()
	addRatingFlags(cmd, &flags)
	f.StringVar(&flags.history, "history", "", "Print the rating history of this competitor")
	f.StringVar(&flags.format, "format", config.FormatPlain, "Leaderboard format: plain or table")
	f.StringVar(&flags.metricsFile, "metrics-file", "", "Write run metrics to this file in Prometheus text format")
	f.BoolVarP(&flags.quiet, "quiet", "q", false, "Do not print the run summary")

	return cmd
}

func addRatingFlags(cmd *cobra.Command, flags *runFlags) {
	f := cmd.Flags()
	f.Float64Var(&flags.threshold, "threshold", config.DefaultDeviationThreshold, "Rank only competitors with rating deviation below this value")
	f.Float64Var(&flags.tau, "tau", config.DefaultTau, "Glicko-2 system constant")
	f.StringVar(&flags.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
}

func archiveArgs(_ *cobra.Command, args []string) error {
	if len(args) > 1 {
		return usageErrorf("accepts at most 1 archive, received %d", len(args))
	}
	return nil
}

// setup initializes logging and returns the validated configuration for a
// command run. Every error it returns is a usage error.
func setup(cmd *cobra.Command, args []string, flags *runFlags) (context.Context, *config.Config, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := logger.InitWithWriter(cmd.ErrOrStderr()); err != nil {
		return nil, nil, err
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, nil, &UsageError{Err: err}
	}
	applyFlags(cmd, cfg, args, flags)
	if err := cfg.Validate(); err != nil {
		return nil, nil, &UsageError{Err: err}
	}
	if cfg.Archive == "" {
		return nil, nil, usageErrorf("no archive given: pass a path or set %sARCHIVE", config.EnvPrefix)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		return nil, nil, &UsageError{Err: err}
	}
	return ctx, cfg, nil
}

func newService(cfg *config.Config, opts ...service.Option) *service.Service {
	return service.New(append([]service.Option{
		service.WithLogger(logger.Get()),
		service.WithThreshold(cfg.DeviationThreshold),
		service.WithGlickoConfig(glicko.Config{Tau: cfg.Tau, Tolerance: cfg.ConvergenceTolerance}),
	}, opts...)...)
}

func runRank(cmd *cobra.Command, args []string, flags *runFlags) error {
	ctx, cfg, err := setup(cmd, args, flags)
	if err != nil {
		return err
	}
	format, err := leaderboard.ParseFormat(cfg.OutputFormat)
	if err != nil {
		return &UsageError{Err: err}
	}

	log := logger.Named("cli")
	svc := newService(cfg, service.WithHistory(cfg.HistoryCompetitor))

	report, runErr := svc.RunFile(ctx, cfg.Archive)
	// Metrics are written for failed runs too.
	if cfg.MetricsFile != "" {
		if err := metrics.WriteTextfile(metrics.GetRegistry(), cfg.MetricsFile); err != nil {
			log.Error(ctx, "failed to write metrics file", logger.String("path", cfg.MetricsFile), logger.Error(err))
			if runErr == nil {
				return err
			}
		}
	}
	if runErr != nil {
		return runErr
	}

	out := cmd.OutOrStdout()
	if err := leaderboard.Render(out, report.Leaderboard, format); err != nil {
		return err
	}
	if cfg.HistoryCompetitor != "" {
		if err := writeHistory(out, report); err != nil {
			return err
		}
		if len(report.History) == 0 {
			log.Warn(ctx, "competitor has no rated games", logger.String("competitor", cfg.HistoryCompetitor))
		}
	}

	if !flags.quiet {
		writeSummary(cmd.ErrOrStderr(), report, cfg.DeviationThreshold)
	}
	return nil
}

// applyFlags overrides loaded configuration with flags set on the command line.
func applyFlags(cmd *cobra.Command, cfg *config.Config, args []string, flags *runFlags) {
	if len(args) == 1 {
		cfg.Archive = args[0]
	}
	changed := cmd.Flags().Changed
	if changed("threshold") {
		cfg.DeviationThreshold = flags.threshold
	}
	if changed("history") {
		cfg.HistoryCompetitor = flags.history
	}
	if changed("format") {
		cfg.OutputFormat = flags.format
	}
	if changed("metrics-file") {
		cfg.MetricsFile = flags.metricsFile
	}
	if changed("tau") {
		cfg.Tau = flags.tau
	}
	if changed("log-level") {
		cfg.LogLevel = flags.logLevel
	}
	if changed("addr") {
		cfg.Addr = flags.addr
	}
	if changed("max-limit") {
		cfg.MaxLeaderboardLimit = flags.maxLimit
	}
}

func writeHistory(w io.Writer, report *service.Report) error {
	if len(report.Leaderboard) > 0 && len(report.History) > 0 {
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return leaderboard.RenderHistory(w, report.History)
}

func writeSummary(w io.Writer, report *service.Report, threshold float64) {
	s := report.Stats
	summaryPrinter.Fprintf(w, "Rated %d games from %d records (%d skipped); %d competitors, %d ranked below deviation %.0f in %v\n",
		s.Outcomes, s.Records, s.SkippedTotal(), s.Competitors, len(report.Leaderboard), threshold, report.Duration.Round(time.Microsecond))
}
