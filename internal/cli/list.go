package cli

import (
	"fmt"
	"strings"

	"github.com/pfrederiksen/event-discovery/internal/event"
	"github.com/pfrederiksen/event-discovery/internal/logger"
	"github.com/pfrederiksen/event-discovery/internal/storage"
	"github.com/spf13/cobra"
)

var (
	flagListFormat string
	flagListSort   string
	flagListURL    string
	listFilter     filterOptions
)

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print stored events",
		Long: `Prints the records in the store. Filter with --status, --dates, --name,
--category and --weekends, and with --city to show only that city's records.
Use --url to show a single record.`,
		Args: cobra.NoArgs,
		RunE: runList,
	}
	cmd.Flags().StringVar(&flagListFormat, "format", "text", "Output format: text or json")
	cmd.Flags().StringVar(&flagListSort, "sort", "", "Sort by: date, name or city (default: store order)")
	cmd.Flags().StringVar(&flagListURL, "url", "", "Show only the record with this URL")
	addFilterFlags(cmd, &listFilter, "all", "Filter by status: active, expired or all")
	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	format := OutputFormat(strings.ToLower(flagListFormat))
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", flagListFormat)
	}
	order := SortOrder(strings.ToLower(flagListSort))
	if !order.valid() {
		return fmt.Errorf("invalid sort: %s (must be 'date', 'name' or 'city')", flagListSort)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	now, err := localNow(cfg)
	if err != nil {
		return err
	}
	f, err := listFilter.build(cmd, cfg, now)
	if err != nil {
		return err
	}
	logger.Debug("listing records", logger.Fields{"filter": f.String()})

	records, err := selectRecords(cfg, f)
	if err != nil {
		return err
	}
	if flagListURL != "" {
		rec, ok := storage.Lookup(records, flagListURL)
		if !ok {
			return fmt.Errorf("no stored event matches %s", flagListURL)
		}
		records = []event.Record{rec}
	}
	sortRecords(records, order)

	return WriteRecords(cmd.OutOrStdout(), records, format)
}
