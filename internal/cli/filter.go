package cli

import (
	"fmt"
	"time"

	"github.com/pfrederiksen/event-discovery/internal/config"
	"github.com/pfrederiksen/event-discovery/internal/event"
	"github.com/pfrederiksen/event-discovery/internal/filter"
	"github.com/pfrederiksen/event-discovery/internal/storage"
	"github.com/spf13/cobra"
)

// filterOptions holds the record filter flags shared by list and export
type filterOptions struct {
	status     string
	dates      string
	names      []string
	categories []string
	weekends   bool
}

func addFilterFlags(cmd *cobra.Command, o *filterOptions, defaultStatus, statusUsage string) {
	f := cmd.Flags()
	f.StringVar(&o.status, "status", defaultStatus, statusUsage)
	f.StringVar(&o.dates, "dates", "", "Date range, e.g. 'Mar 1-15', 'March' or '2026-03-01..2026-03-15'")
	f.StringSliceVar(&o.names, "name", nil, "Keep events whose name contains this text (repeatable)")
	f.StringSliceVar(&o.categories, "category", nil, "Keep events whose category contains this text (repeatable)")
	f.BoolVar(&o.weekends, "weekends", false, "Keep only events on Saturday or Sunday")
}

// build turns the flags into a filter. The city criterion applies only when
// --city was set explicitly.
func (o *filterOptions) build(cmd *cobra.Command, cfg *config.Config, now time.Time) (*filter.Filter, error) {
	statuses, err := filter.ParseStatus(o.status)
	if err != nil {
		return nil, err
	}

	f := filter.NewFilter()
	f.Statuses = statuses
	f.Names = o.names
	f.Categories = o.categories
	f.WeekendsOnly = o.weekends

	if o.dates != "" {
		f.DateFrom, f.DateTo, err = filter.ParseDateRange(o.dates, now)
		if err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("city") {
		f.Cities = []string{cfg.City}
	}
	return f, nil
}

// selectRecords loads the store and returns the records f keeps
func selectRecords(cfg *config.Config, f *filter.Filter) ([]event.Record, error) {
	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("initializing storage: %w", err)
	}
	records, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("loading store: %w", err)
	}
	return f.Apply(records), nil
}
