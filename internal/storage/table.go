package storage

import (
	"fmt"
	"strings"

	"github.com/pfrederiksen/event-discovery/internal/event"
)

// Column headers, in the order they are written
const (
	ColName        = "Event Name"
	ColDate        = "Date"
	ColVenue       = "Venue"
	ColCity        = "City"
	ColCategory    = "Category"
	ColURL         = "URL"
	ColStatus      = "Status"
	ColLastUpdated = "Last Updated"
)

// Columns is the table header row
var Columns = []string{ColName, ColDate, ColVenue, ColCity, ColCategory, ColURL, ColStatus, ColLastUpdated}

// toRows renders records as a header row followed by one row per record
func toRows(records []event.Record) [][]string {
	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, append([]string(nil), Columns...))
	for _, r := range records {
		rows = append(rows, []string{
			r.Name,
			r.Date,
			r.Venue,
			r.City,
			r.Category,
			r.URL,
			string(r.Status),
			r.LastUpdated,
		})
	}
	return rows
}

// fromRows parses a header row plus data rows back into records.
// Headers are matched by name; unknown columns are ignored.
func fromRows(rows [][]string) ([]event.Record, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("missing header row")
	}

	pos := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		pos[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, col := range Columns {
		if _, ok := pos[col]; !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}

	records := make([]event.Record, 0, len(rows)-1)
	seen := make(map[string]int, len(rows)-1)
	for n, row := range rows[1:] {
		if blank(row) {
			continue
		}

		cell := func(col string) string {
			i := pos[col]
			if i >= len(row) {
				return ""
			}
			return row[i]
		}

		line := n + 2 // 1-based, after header
		rec := event.Record{
			Name:        cell(ColName),
			Date:        cell(ColDate),
			Venue:       cell(ColVenue),
			City:        cell(ColCity),
			Category:    cell(ColCategory),
			URL:         strings.TrimSpace(cell(ColURL)),
			Status:      event.Status(cell(ColStatus)),
			LastUpdated: cell(ColLastUpdated),
		}
		if rec.URL == "" {
			return nil, fmt.Errorf("row %d: empty %s", line, ColURL)
		}
		if first, dup := seen[rec.URL]; dup {
			return nil, fmt.Errorf("row %d: duplicate %s %q (first at row %d)", line, ColURL, rec.URL, first)
		}
		seen[rec.URL] = line
		records = append(records, rec)
	}

	return records, nil
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Lookup finds a record by its unique URL
func Lookup(records []event.Record, url string) (event.Record, bool) {
	for _, r := range records {
		if r.URL == url {
			return r, true
		}
	}
	return event.Record{}, false
}
