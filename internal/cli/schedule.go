package cli

import (
	"context"
	"errors"

	"github.com/pfrederiksen/event-discovery/internal/config"
	"github.com/pfrederiksen/event-discovery/internal/httpserver"
	"github.com/pfrederiksen/event-discovery/internal/logger"
	"github.com/pfrederiksen/event-discovery/internal/scheduler"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	flagAt       string
	flagTimezone string
	flagHTTPAddr string
)

func newScheduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run a pass now and then every day at a fixed time",
		Long: `Runs one pass immediately, then daily at --at in --tz until interrupted.
With --http-addr set, also serves /healthz, /metrics and POST /run.`,
		Args: cobra.NoArgs,
		RunE: runSchedule,
	}
	cmd.Flags().StringVar(&flagAt, "at", "10:00", "Daily run time (HH:MM)")
	cmd.Flags().StringVar(&flagTimezone, "tz", "", "IANA time zone for --at (default: config or local)")
	cmd.Flags().StringVar(&flagHTTPAddr, "http-addr", "", "Listen address for the HTTP endpoints (e.g., :8080)")
	return cmd
}

func applyScheduleFlags(flags *pflag.FlagSet, cfg *config.Config) {
	if flags.Changed("at") {
		cfg.Schedule.At = flagAt
	}
	if flags.Changed("tz") {
		cfg.Schedule.Timezone = flagTimezone
	}
	if flags.Changed("http-addr") {
		cfg.HTTP.Addr = flagHTTPAddr
	}
}

func runSchedule(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	at, err := scheduler.ParseClock(cfg.Schedule.At)
	if err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	runner, err := newRunner(cfg, reg)
	if err != nil {
		return err
	}

	daily := scheduler.NewDaily(func(ctx context.Context) error {
		_, err := runner.Run(ctx)
		return err
	}, at, loc)

	var srv *httpserver.Server
	if cfg.HTTP.Addr != "" {
		srv = httpserver.New(cfg.HTTP.Addr, daily, reg, logger.Default())
		go func() {
			if err := srv.Start(); err != nil {
				logger.Error("HTTP server failed", logger.Fields{"addr": cfg.HTTP.Addr}, err)
			}
		}()
	}

	logger.Info("scheduler started", logger.Fields{
		"city":     cfg.City,
		"at":       at.String(),
		"timezone": loc.String(),
		"storage":  cfg.Storage.Path,
	})

	err = daily.Run(cmd.Context())

	if srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if stopErr := srv.Stop(ctx); stopErr != nil {
			logger.Warn("HTTP server shutdown incomplete", logger.Fields{"error": stopErr.Error()})
		}
	}

	if errors.Is(err, context.Canceled) {
		logger.Info("scheduler stopped", nil)
		return nil
	}
	return err
}
