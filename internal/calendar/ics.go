package calendar

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pfrederiksen/event-discovery/internal/event"
)

const prodID = "-//Event Discovery//event-discovery//EN"

// maxLine is the RFC 5545 content line limit in octets, excluding CRLF
const maxLine = 75

// Write writes records as one iCalendar feed of all-day events and returns how
// many were written. Records whose date cannot be parsed are skipped.
// name, if set, becomes the calendar display name.
func Write(w io.Writer, records []event.Record, name string) (int, error) {
	bw := bufio.NewWriter(w)
	stamp := formatICSTime(time.Now())

	writeLine(bw, "BEGIN:VCALENDAR")
	writeLine(bw, "VERSION:2.0")
	writeLine(bw, "PRODID:"+prodID)
	writeLine(bw, "CALSCALE:GREGORIAN")
	writeLine(bw, "METHOD:PUBLISH")
	if name != "" {
		writeLine(bw, "X-WR-CALNAME:"+escapeICS(name))
	}

	written := 0
	for _, rec := range records {
		day, err := event.ParseDay(rec.Date)
		if err != nil {
			continue
		}
		writeEvent(bw, rec, day, stamp)
		written++
	}

	writeLine(bw, "END:VCALENDAR")

	if err := bw.Flush(); err != nil {
		return written, fmt.Errorf("writing calendar: %w", err)
	}
	return written, nil
}

func writeEvent(w *bufio.Writer, rec event.Record, day time.Time, stamp string) {
	writeLine(w, "BEGIN:VEVENT")
	writeLine(w, fmt.Sprintf("UID:%s@event-discovery", rec.ID()))
	writeLine(w, "DTSTAMP:"+stamp)
	writeLine(w, "DTSTART;VALUE=DATE:"+day.Format("20060102"))
	writeLine(w, "DTEND;VALUE=DATE:"+day.AddDate(0, 0, 1).Format("20060102"))
	writeLine(w, "SUMMARY:"+escapeICS(rec.Name))

	if loc := location(rec); loc != "" {
		writeLine(w, "LOCATION:"+escapeICS(loc))
	}
	if rec.Category != "" {
		writeLine(w, "CATEGORIES:"+escapeICS(rec.Category))
	}
	writeLine(w, "URL:"+rec.URL)

	status := "CONFIRMED"
	if rec.Status == event.StatusExpired {
		status = "CANCELLED"
	}
	writeLine(w, "STATUS:"+status)
	writeLine(w, "TRANSP:TRANSPARENT")
	writeLine(w, "END:VEVENT")
}

// location joins venue and city, leaving out the unknown-venue placeholder
func location(rec event.Record) string {
	var parts []string
	if rec.Venue != "" && rec.Venue != event.UnknownVenue {
		parts = append(parts, rec.Venue)
	}
	if rec.City != "" {
		parts = append(parts, rec.City)
	}
	return strings.Join(parts, ", ")
}

// writeLine writes one content line, folding it at maxLine octets.
// Continuation lines start with a space, which counts toward the limit.
func writeLine(w *bufio.Writer, line string) {
	limit := maxLine
	for len(line) > limit {
		cut := limit
		// Never split a UTF-8 sequence
		for cut > 0 && line[cut]&0xC0 == 0x80 {
			cut--
		}
		w.WriteString(line[:cut]) // nolint:errcheck
		w.WriteString("\r\n ")    // nolint:errcheck
		line = line[cut:]
		limit = maxLine - 1
	}
	w.WriteString(line)   // nolint:errcheck
	w.WriteString("\r\n") // nolint:errcheck
}

// formatICSTime formats a time.Time as an iCalendar datetime string
func formatICSTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// escapeICS escapes special characters for iCalendar format
func escapeICS(s string) string {
	// Replace special characters according to RFC 5545
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\r\n", "\\n")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
