package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/pfrederiksen/event-discovery/internal/event"
)

var fetchTime = time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC)

func TestParseListing(t *testing.T) {
	// Load test fixture
	data, err := os.ReadFile("testdata/listing.html")
	if err != nil {
		t.Fatalf("failed to load test fixture: %v", err)
	}

	records, err := parseListing(strings.NewReader(string(data)), "https://in.bookmyshow.com/explore/events-mumbai", "mumbai", fetchTime)
	if err != nil {
		t.Fatalf("parseListing failed: %v", err)
	}

	want := []struct {
		name     string
		category string
		url      string
	}{
		{"Sunburn Arena ft. Alan Walker", "Music Shows", "https://in.bookmyshow.com/events/sunburn-arena-ft-alan-walker/ET00412345"},
		{"Comedy Night Live", "Comedy Shows", "https://in.bookmyshow.com/events/comedy-night-live/ET00498765"},
		{"Pottery Workshop", "", "https://in.bookmyshow.com/events/pottery-workshop/ET00455555"},
		{"Sunburn Arena ft. Alan Walker", "Music Shows", "https://in.bookmyshow.com/events/sunburn-arena-ft-alan-walker/ET00412345"},
	}

	if len(records) != len(want) {
		t.Fatalf("got %d records, want %d: %+v", len(records), len(want), records)
	}

	for i, w := range want {
		r := records[i]
		if r.Name != w.name {
			t.Errorf("record %d name = %q, want %q", i, r.Name, w.name)
		}
		if r.Category != w.category {
			t.Errorf("record %d category = %q, want %q", i, r.Category, w.category)
		}
		if r.URL != w.url {
			t.Errorf("record %d url = %q, want %q", i, r.URL, w.url)
		}
		if r.Date != "2025-06-01" {
			t.Errorf("record %d date = %q, want fetch day", i, r.Date)
		}
		if r.Venue != event.UnknownVenue || r.City != "mumbai" || r.Status != event.StatusActive {
			t.Errorf("record %d = %+v", i, r)
		}
		if r.LastUpdated != "2025-06-01 10:00:00" {
			t.Errorf("record %d last updated = %q", i, r.LastUpdated)
		}
	}
}

func TestParseListing_NoCards(t *testing.T) {
	records, err := parseListing(strings.NewReader("<html><body><p>No events</p></body></html>"), "https://x.test/", "pune", fetchTime)
	if err != nil {
		t.Fatalf("parseListing failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("got %d records, want 0", len(records))
	}
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Sunburn  Arena  ", "Sunburn Arena"},
		{"Line\n\tbreak", "Line break"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := cleanText(tt.in); got != tt.want {
				t.Errorf("cleanText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFetch(t *testing.T) {
	fixture, err := os.ReadFile("testdata/listing.html")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name        string
		body        string
		statusCode  int
		wantError   bool
		wantRecords int
	}{
		{
			name:        "successful fetch with cards",
			body:        string(fixture),
			statusCode:  http.StatusOK,
			wantRecords: 4,
		},
		{
			name:       "HTTP error",
			statusCode: http.StatusServiceUnavailable,
			wantError:  true,
		},
		{
			name:        "empty page",
			body:        "<html><body></body></html>",
			statusCode:  http.StatusOK,
			wantRecords: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPath, gotUA string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				gotUA = r.Header.Get("User-Agent")
				w.WriteHeader(tt.statusCode)
				w.Write([]byte(tt.body)) // nolint:errcheck
			}))
			defer server.Close()

			s := New(Options{
				URLTemplate: server.URL + "/explore/events-%s",
				Now:         func() time.Time { return fetchTime },
			})

			records, err := s.Fetch(context.Background(), "mumbai")
			if (err != nil) != tt.wantError {
				t.Fatalf("Fetch() error = %v, wantError %v", err, tt.wantError)
			}
			if gotPath != "/explore/events-mumbai" {
				t.Errorf("requested path = %q", gotPath)
			}
			if gotUA != DefaultUserAgent {
				t.Errorf("User-Agent = %q, want default browser UA", gotUA)
			}
			if !tt.wantError && len(records) != tt.wantRecords {
				t.Errorf("Fetch() returned %d records, want %d", len(records), tt.wantRecords)
			}
			for _, r := range records {
				if !strings.HasPrefix(r.URL, server.URL+"/events/") && !strings.HasPrefix(r.URL, "https://in.bookmyshow.com/") {
					t.Errorf("unexpected record url %q", r.URL)
				}
			}
		})
	}
}

func TestFetch_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := New(Options{URLTemplate: server.URL + "/%s"})
	if _, err := s.Fetch(ctx, "mumbai"); err == nil {
		t.Error("Fetch() with canceled context should fail")
	}
}

func TestListingURL(t *testing.T) {
	s := New(Options{})
	if got := s.ListingURL("navi mumbai"); got != "https://in.bookmyshow.com/explore/events-navi%20mumbai" {
		t.Errorf("ListingURL() = %q", got)
	}
}
