package event

import (
	"strings"
	"time"
)

const (
	// DayLayout is the on-disk format of Record.Date
	DayLayout = "2006-01-02"
	// TimestampLayout is the on-disk format of Record.LastUpdated
	TimestampLayout = "2006-01-02 15:04:05"
)

// ParseDay parses a YYYY-MM-DD calendar day.
func ParseDay(s string) (time.Time, error) {
	return time.Parse(DayLayout, strings.TrimSpace(s))
}

// FormatDay formats t as a calendar day in t's location
func FormatDay(t time.Time) string {
	return t.Format(DayLayout)
}

// FormatTimestamp formats t as a YYYY-MM-DD HH:MM:SS timestamp in t's location
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// StatusFor computes the status of an event on date as observed on today.
// Returns Active if either day cannot be parsed (safer default).
func StatusFor(date, today string) Status {
	d, err := ParseDay(date)
	if err != nil {
		return StatusActive
	}
	t, err := ParseDay(today)
	if err != nil {
		return StatusActive
	}
	if d.Before(t) {
		return StatusExpired
	}
	return StatusActive
}
