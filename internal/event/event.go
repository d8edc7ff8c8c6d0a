package event

import (
	"crypto/sha1"
	"fmt"
	"time"
)

// Status is the derived lifecycle state of a record
type Status string

const (
	StatusActive  Status = "Active"
	StatusExpired Status = "Expired"
)

// UnknownVenue is the placeholder stored when the listing does not name a venue
const UnknownVenue = "TBD"

// Record represents one discovered event
type Record struct {
	Name        string `json:"name" validate:"required"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"` // YYYY-MM-DD
	Venue       string `json:"venue"`
	City        string `json:"city"`
	Category    string `json:"category"`
	URL         string `json:"url" validate:"required,url"` // unique key
	Status      Status `json:"status"`
	LastUpdated string `json:"last_updated"` // YYYY-MM-DD HH:MM:SS
}

// NewRecord creates an Active record stamped with now
func NewRecord(name, date, venue, city, category, url string, now time.Time) Record {
	if venue == "" {
		venue = UnknownVenue
	}
	return Record{
		Name:        name,
		Date:        date,
		Venue:       venue,
		City:        city,
		Category:    category,
		URL:         url,
		Status:      StatusActive,
		LastUpdated: FormatTimestamp(now),
	}
}

// ID returns a deterministic identifier derived from the record URL
func (r Record) ID() string {
	h := sha1.New()
	h.Write([]byte(r.URL))
	return fmt.Sprintf("%x", h.Sum(nil))
}

// NextStatus returns the status r takes on a pass observed on today.
// A record whose date does not parse keeps its current status; a new one is Active.
func (r Record) NextStatus(today string) Status {
	if _, err := ParseDay(r.Date); err != nil {
		if r.Status == "" {
			return StatusActive
		}
		return r.Status
	}
	return StatusFor(r.Date, today)
}
