// Package filter narrows stored event records for listing and export.
//
// A Filter combines criteria with AND; within one criterion (several cities,
// say) any value may match. Records whose date cannot be parsed are never
// excluded by date-based criteria.
//
// Example usage:
//
//	// Active weekend comedy in March
//	f := filter.NewFilter()
//	f.Statuses = []event.Status{event.StatusActive}
//	f.Categories = []string{"comedy"}
//	f.WeekendsOnly = true
//	f.DateFrom, f.DateTo, _ = filter.ParseDateRange("March", time.Now())
//
//	filtered := f.Apply(records)
package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/event-discovery/internal/event"
)

// Filter represents record filtering criteria
type Filter struct {
	// Status filtering; empty keeps every status
	Statuses []event.Status `json:"statuses,omitempty"`

	// Date range filtering (inclusive)
	DateFrom *time.Time `json:"date_from,omitempty"`
	DateTo   *time.Time `json:"date_to,omitempty"`

	// Weekend-only filtering (Saturday/Sunday)
	WeekendsOnly bool `json:"weekends_only,omitempty"`

	// Case-insensitive substring matches
	Names      []string `json:"names,omitempty"`
	Categories []string `json:"categories,omitempty"`
	Cities     []string `json:"cities,omitempty"`
}

// NewFilter creates a new empty filter with no active criteria.
// The filter will match all records until criteria are added.
func NewFilter() *Filter {
	return &Filter{}
}

// ParseStatus maps "active", "expired" or "all" (or "") to a status list
func ParseStatus(s string) ([]event.Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return nil, nil
	case "active":
		return []event.Status{event.StatusActive}, nil
	case "expired":
		return []event.Status{event.StatusExpired}, nil
	default:
		return nil, fmt.Errorf("invalid status: %s (must be 'active', 'expired' or 'all')", s)
	}
}

// IsEmpty checks if the filter has any active criteria
func (f *Filter) IsEmpty() bool {
	return len(f.Statuses) == 0 &&
		f.DateFrom == nil &&
		f.DateTo == nil &&
		!f.WeekendsOnly &&
		len(f.Names) == 0 &&
		len(f.Categories) == 0 &&
		len(f.Cities) == 0
}

// Matches checks if a record matches all active filter criteria.
// An empty filter matches all records.
func (f *Filter) Matches(rec event.Record) bool {
	if f.IsEmpty() {
		return true
	}

	if len(f.Statuses) > 0 {
		matched := false
		for _, s := range f.Statuses {
			if rec.Status == s {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if day, err := event.ParseDay(rec.Date); err == nil {
		if f.DateFrom != nil && day.Before(dayOf(*f.DateFrom)) {
			return false
		}
		if f.DateTo != nil && day.After(dayOf(*f.DateTo)) {
			return false
		}
		if f.WeekendsOnly {
			weekday := day.Weekday()
			if weekday != time.Saturday && weekday != time.Sunday {
				return false
			}
		}
	}

	return containsAny(rec.Name, f.Names) &&
		containsAny(rec.Category, f.Categories) &&
		containsAny(rec.City, f.Cities)
}

// Apply returns the records that match, in their original order.
// The input slice is never modified.
func (f *Filter) Apply(records []event.Record) []event.Record {
	filtered := make([]event.Record, 0, len(records))
	for _, rec := range records {
		if f.Matches(rec) {
			filtered = append(filtered, rec)
		}
	}
	return filtered
}

// String returns a human-readable description of the active filter criteria.
// Format: "Status: Active | From: Mar 1, 2026 | To: Mar 15, 2026 | Weekends only"
func (f *Filter) String() string {
	if f.IsEmpty() {
		return "No active filters"
	}

	var parts []string

	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		parts = append(parts, fmt.Sprintf("Status: %s", strings.Join(statuses, ", ")))
	}
	if f.DateFrom != nil {
		parts = append(parts, fmt.Sprintf("From: %s", f.DateFrom.Format("Jan 2, 2006")))
	}
	if f.DateTo != nil {
		parts = append(parts, fmt.Sprintf("To: %s", f.DateTo.Format("Jan 2, 2006")))
	}
	if f.WeekendsOnly {
		parts = append(parts, "Weekends only")
	}
	if len(f.Names) > 0 {
		parts = append(parts, fmt.Sprintf("Names: %s", strings.Join(f.Names, ", ")))
	}
	if len(f.Categories) > 0 {
		parts = append(parts, fmt.Sprintf("Categories: %s", strings.Join(f.Categories, ", ")))
	}
	if len(f.Cities) > 0 {
		parts = append(parts, fmt.Sprintf("Cities: %s", strings.Join(f.Cities, ", ")))
	}

	return strings.Join(parts, " | ")
}

// Clone creates a deep copy of the filter
func (f *Filter) Clone() *Filter {
	clone := &Filter{
		WeekendsOnly: f.WeekendsOnly,
		Statuses:     append([]event.Status(nil), f.Statuses...),
		Names:        append([]string(nil), f.Names...),
		Categories:   append([]string(nil), f.Categories...),
		Cities:       append([]string(nil), f.Cities...),
	}
	if f.DateFrom != nil {
		df := *f.DateFrom
		clone.DateFrom = &df
	}
	if f.DateTo != nil {
		dt := *f.DateTo
		clone.DateTo = &dt
	}
	return clone
}

// containsAny reports whether s contains one of needles, ignoring case.
// No needles always matches.
func containsAny(s string, needles []string) bool {
	if len(needles) == 0 {
		return true
	}
	lower := strings.ToLower(s)
	for _, n := range needles {
		if strings.Contains(lower, strings.ToLower(n)) {
			return true
		}
	}
	return false
}

// dayOf truncates t to its calendar day in UTC, matching event.ParseDay
func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
