package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/wtc-cli/wtc/internal/aggregator"
	"github.com/wtc-cli/wtc/internal/collector"
	"github.com/wtc-cli/wtc/internal/config"
	"github.com/wtc-cli/wtc/internal/controller"
	"github.com/wtc-cli/wtc/internal/display"
	"github.com/wtc-cli/wtc/internal/launcher"
	"github.com/wtc-cli/wtc/internal/version"
	"github.com/wtc-cli/wtc/internal/view"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if code := controller.ExitCode(err); code != 0 {
		fmt.Fprintf(os.Stderr, "wtc: %v\n", err)
		os.Exit(code)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "wtc",
		Short: "Show the latest Icinga notifications of one or more instances",
		Long: `wtc polls the notification history of one or more Icinga Web 2 instances,
marks notifications whose service has recovered since, and shows the newest
ones in a table. Select an entry to open it in the browser.`,
		Version:       version.GetFullVersion(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load(cmd.Flags().Changed)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}
	cmd.SetVersionTemplate(version.Template)
	opts.register(cmd)
	return cmd
}

func run(ctx context.Context, cfg *config.Config) error {
	// Log buffer keeps recent entries for the footer under the table
	logBuffer := display.NewLogBuffer(200)

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	zerolog.SetGlobalLevel(level)

	out := zerolog.MultiLevelWriter(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: os.Getenv("NO_COLOR") != ""}, logBuffer)
	logger := zerolog.New(out).With().
		Timestamp().
		Str("version", version.GetVersion()).
		Str("commit", version.GetCommit()).
		Logger()

	if cfg.NeedsPassword() {
		pw, err := promptPassword(cfg.User, os.Stdin, os.Stderr)
		if err != nil {
			return err
		}
		cfg.Password = pw
	}

	fetcher, err := collector.NewHTTPFetcher(&collector.TLSConfig{
		InsecureSkipVerify: cfg.TLS.InsecureSkipVerify,
		CAFile:             cfg.TLS.CAFile,
	})
	if err != nil {
		return err
	}

	collectors := make([]*collector.Collector, 0, len(cfg.Instances))
	sources := make([]aggregator.Source, 0, len(cfg.Instances))
	for _, inst := range cfg.Instances {
		username, password := cfg.ResolveCredentials(inst)
		col := collector.NewCollector(
			inst,
			collector.Credentials{Username: username, Password: password},
			cfg.Lookback,
			cfg.Timeout.Duration(),
			fetcher,
			logger,
		)
		collectors = append(collectors, col)
		sources = append(sources, col)
	}

	logger.Debug().
		Strs("instances", cfg.Instances).
		Str("lookback", cfg.Lookback).
		Bool("watch", cfg.Watch).
		Msg("Configuration loaded")

	filter, err := view.CompileContactFilter(cfg.Filter)
	if err != nil {
		return err
	}

	agg := aggregator.NewAggregator(sources, cfg.TolerateSourceErrors, logger)
	ctrl := controller.New(
		agg,
		display.NewStdoutRenderer(logBuffer),
		launcher.NewBrowser(logger),
		os.Stdin,
		controller.Options{
			Watch:         cfg.Watch,
			WatchInterval: cfg.WatchInterval.Duration(),
			OneTime:       cfg.OneTime,
			ShowURLs:      cfg.ShowURLs,
			Filter:        filter,
			Limit:         cfg.Limit,
		},
		logger,
	)

	err = ctrl.Run(ctx)

	for _, col := range collectors {
		h := col.Health()
		logger.Debug().
			Str("source", col.Instance()).
			Time("last_fetch", h.LastFetch).
			Dur("last_duration", h.LastDuration).
			Int("failures", h.FailureCount).
			Str("last_error", h.LastError).
			Int("notifications", h.Notifications).
			Msg("Source summary")
	}
	logger.Debug().Int("cycles", ctrl.Cycles()).Msg("wtc stopped")
	return err
}
