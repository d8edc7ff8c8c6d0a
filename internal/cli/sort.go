package cli

import (
	"sort"
	"strings"

	"github.com/pfrederiksen/event-discovery/internal/event"
)

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortNone   SortOrder = ""
	SortByDate SortOrder = "date"
	SortByName SortOrder = "name"
	SortByCity SortOrder = "city"
)

func (o SortOrder) valid() bool {
	switch o {
	case SortNone, SortByDate, SortByName, SortByCity:
		return true
	}
	return false
}

// sortRecords sorts records in place; SortNone keeps store order
func sortRecords(records []event.Record, order SortOrder) {
	switch order {
	case SortByDate:
		sort.SliceStable(records, func(i, j int) bool {
			return compareByDate(records[i], records[j])
		})
	case SortByName:
		sort.SliceStable(records, func(i, j int) bool {
			if !strings.EqualFold(records[i].Name, records[j].Name) {
				return strings.ToLower(records[i].Name) < strings.ToLower(records[j].Name)
			}
			// If names are equal, sort by date
			return compareByDate(records[i], records[j])
		})
	case SortByCity:
		sort.SliceStable(records, func(i, j int) bool {
			if records[i].City != records[j].City {
				return records[i].City < records[j].City
			}
			return compareByDate(records[i], records[j])
		})
	}
}

// compareByDate compares two records by their date
// Returns true if record i should come before record j
func compareByDate(i, j event.Record) bool {
	dateI, errI := event.ParseDay(i.Date)
	dateJ, errJ := event.ParseDay(j.Date)

	// If both dates are valid, compare them
	if errI == nil && errJ == nil {
		return dateI.Before(dateJ)
	}

	// If only one date is valid, put the valid one first
	if errI == nil {
		return true
	}
	if errJ == nil {
		return false
	}

	return strings.ToLower(i.Name) < strings.ToLower(j.Name)
}
