package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pfrederiksen/event-discovery/internal/config"
	"github.com/pfrederiksen/event-discovery/internal/logger"
	"github.com/pfrederiksen/event-discovery/internal/metrics"
	"github.com/pfrederiksen/event-discovery/internal/pipeline"
	"github.com/pfrederiksen/event-discovery/internal/scraper"
	"github.com/pfrederiksen/event-discovery/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

// clock is the wall clock every command reads; tests replace it
var clock = time.Now

var (
	flagConfig    string
	flagCity      string
	flagStorage   string
	flagLogLevel  string
	flagPrettyLog bool
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "event-discovery",
		Short: "Track events listed for a city",
		Long: `A CLI tool that scrapes a city's event listings and keeps a deduplicated
table of every event seen, marking each one Active or Expired by its date.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "YAML config file (env vars override it)")
	pf.StringVar(&flagCity, "city", "", "City slug to track (e.g., mumbai)")
	pf.StringVar(&flagStorage, "storage", "", "Store file path (.xlsx or .csv)")
	pf.StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.BoolVar(&flagPrettyLog, "pretty-log", false, "Human-readable colored logs instead of JSON")

	cmd.AddCommand(
		newRunCmd(),
		newScheduleCmd(),
		newListCmd(),
		newExportCmd(),
		newConfigCmd(),
	)

	return cmd
}

// loadConfig reads the config, applies flags the user set, validates it and
// installs the default logger
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("city") {
		cfg.City = flagCity
	}
	if flags.Changed("storage") {
		cfg.Storage.Path = flagStorage
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = flagLogLevel
	}
	if flags.Changed("pretty-log") {
		cfg.Log.Pretty = flagPrettyLog
	}
	applyScheduleFlags(flags, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	logger.SetDefault(logger.New(level, cfg.Log.Pretty))

	return cfg, nil
}

// newRunner builds a pipeline for cfg. Metrics are recorded when reg is non-nil.
func newRunner(cfg *config.Config, reg prometheus.Registerer) (*pipeline.Runner, error) {
	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("initializing storage: %w", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	// The scrape day and "today" must come from the same zone
	now := func() time.Time { return clock().In(loc) }

	sc := scraper.New(scraper.Options{
		URLTemplate: cfg.Scraper.URLTemplate,
		UserAgent:   cfg.Scraper.UserAgent,
		Timeout:     cfg.Scraper.Timeout,
		Now:         now,
	})

	opts := []pipeline.Option{pipeline.WithLocation(loc), pipeline.WithClock(now)}
	if reg != nil {
		opts = append(opts, pipeline.WithMetrics(metrics.NewPass(reg)))
	}
	return pipeline.New(cfg.City, sc, store, opts...), nil
}

// localNow returns the current time in the configured zone
func localNow(cfg *config.Config) (time.Time, error) {
	loc, err := cfg.Location()
	if err != nil {
		return time.Time{}, err
	}
	return clock().In(loc), nil
}

// Execute runs the CLI
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()
	logger.Default().Sync() // nolint:errcheck

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
