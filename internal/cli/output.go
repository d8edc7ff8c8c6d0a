package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/pfrederiksen/event-discovery/internal/event"
	"github.com/pfrederiksen/event-discovery/internal/pipeline"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

var (
	activeColor  = color.New(color.FgGreen)
	expiredColor = color.New(color.FgRed)
	headerColor  = color.New(color.Bold)
)

// WriteSummary writes a pass summary in the specified format
func WriteSummary(w io.Writer, sum *pipeline.Summary, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, sum)
	case FormatText:
		return writeSummaryText(w, sum)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteRecords writes stored records in the specified format
func WriteRecords(w io.Writer, records []event.Record, format OutputFormat) error {
	switch format {
	case FormatJSON:
		if records == nil {
			records = []event.Record{}
		}
		return writeJSON(w, records)
	case FormatText:
		return writeRecordsText(w, records)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs v as indented JSON
func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func writeSummaryText(w io.Writer, sum *pipeline.Summary) error {
	headerColor.Fprintf(w, "Pass %s (%s)\n", sum.RunID, sum.City) // nolint:errcheck

	switch {
	case sum.FetchFailed && !sum.Persisted:
		fmt.Fprintln(w, "Fetch failed; store left untouched.")
		return nil
	case sum.Valid == 0:
		fmt.Fprintln(w, "No events fetched; store left untouched.")
		if sum.Skipped > 0 {
			fmt.Fprintf(w, "Skipped %d invalid records.\n", sum.Skipped)
		}
		return nil
	}

	fmt.Fprintf(w, "Fetched:    %d (%d valid, %d skipped)\n", sum.Fetched, sum.Valid, sum.Skipped)
	fmt.Fprintf(w, "New:        %d\n", sum.New)
	fmt.Fprintf(w, "Refreshed:  %d\n", sum.Refreshed)
	if sum.Duplicates > 0 {
		fmt.Fprintf(w, "Duplicates: %d\n", sum.Duplicates)
	}
	if sum.Persisted {
		fmt.Fprintf(w, "Stored:     %d (%d expired)\n", sum.Total, sum.Expired)
	} else {
		fmt.Fprintln(w, "Store not updated.")
	}
	return nil
}

func writeRecordsText(w io.Writer, records []event.Record) error {
	if len(records) == 0 {
		fmt.Fprintln(w, "No events found.")
		return nil
	}

	active := 0
	for _, rec := range records {
		status := expiredColor.Sprint(rec.Status)
		if rec.Status == event.StatusActive {
			status = activeColor.Sprint(rec.Status)
			active++
		}

		fmt.Fprintf(w, "%s  %-7s  %s\n", rec.Date, status, rec.Name)
		if rec.Category != "" {
			fmt.Fprintf(w, "            %s, %s\n", rec.Category, rec.City)
		}
		fmt.Fprintf(w, "            %s\n", rec.URL)
	}

	fmt.Fprintf(w, "\nTotal: %d events (%d active, %d expired)\n", len(records), active, len(records)-active)
	return nil
}
