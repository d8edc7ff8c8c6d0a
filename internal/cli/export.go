package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pfrederiksen/event-discovery/internal/calendar"
	"github.com/pfrederiksen/event-discovery/internal/event"
	"github.com/pfrederiksen/event-discovery/internal/storage"
	"github.com/spf13/cobra"
)

var (
	flagExportFormat string
	flagExportOut    string
	exportFilter     filterOptions
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export stored events as iCalendar or CSV",
		Args:  cobra.NoArgs,
		RunE:  runExport,
	}
	cmd.Flags().StringVar(&flagExportFormat, "format", "ics", "Export format: ics or csv")
	cmd.Flags().StringVar(&flagExportOut, "out", "-", "Output file ('-' for stdout)")
	addFilterFlags(cmd, &exportFilter, "", "Filter by status: active, expired or all (default: active for ics, all for csv)")
	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	format := strings.ToLower(flagExportFormat)
	switch format {
	case "ics":
		if exportFilter.status == "" {
			exportFilter.status = "active"
		}
	case "csv":
	default:
		return fmt.Errorf("invalid format: %s (must be 'ics' or 'csv')", flagExportFormat)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	now, err := localNow(cfg)
	if err != nil {
		return err
	}
	f, err := exportFilter.build(cmd, cfg, now)
	if err != nil {
		return err
	}
	records, err := selectRecords(cfg, f)
	if err != nil {
		return err
	}

	if flagExportOut == "" || flagExportOut == "-" {
		return writeExport(cmd, cmd.OutOrStdout(), format, cfg.City, records)
	}

	out, err := os.Create(flagExportOut)
	if err != nil {
		return fmt.Errorf("creating %s: %w", flagExportOut, err)
	}
	if err := writeExport(cmd, out, format, cfg.City, records); err != nil {
		out.Close() // nolint:errcheck
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", flagExportOut, err)
	}
	return nil
}

func writeExport(cmd *cobra.Command, w io.Writer, format, city string, records []event.Record) error {
	if format == "csv" {
		if err := storage.WriteCSV(w, records); err != nil {
			return fmt.Errorf("writing csv: %w", err)
		}
		return nil
	}

	n, err := calendar.Write(w, records, fmt.Sprintf("Events in %s", city))
	if err != nil {
		return err
	}
	if n < len(records) {
		fmt.Fprintf(cmd.ErrOrStderr(), "Skipped %d events without a usable date\n", len(records)-n)
	}
	return nil
}
