package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/event-discovery/internal/event"
)

const (
	DefaultURLTemplate = "https://in.bookmyshow.com/explore/events-%s"
	DefaultUserAgent   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	DefaultTimeout     = 30 * time.Second
)

// Listing card selectors
const (
	cardSelector     = "div.commonStyles__ItemWrapper-sc-133848s-1"
	titleSelector    = "div.commonStyles__VerticalTileHeader-sc-133848s-0"
	categorySelector = "div.commonStyles__VerticalTileDescription-sc-133848s-2"
)

// Options configures a Scraper; zero values fall back to the defaults
type Options struct {
	URLTemplate string // must contain one %s for the city slug
	UserAgent   string
	Timeout     time.Duration
	Client      *http.Client
	Now         func() time.Time
}

// Scraper handles fetching and parsing a city's events listing page
type Scraper struct {
	client      *http.Client
	urlTemplate string
	userAgent   string
	now         func() time.Time
}

// New creates a new Scraper instance
func New(opts Options) *Scraper {
	s := &Scraper{
		client:      opts.Client,
		urlTemplate: opts.URLTemplate,
		userAgent:   opts.UserAgent,
		now:         opts.Now,
	}
	if s.urlTemplate == "" {
		s.urlTemplate = DefaultURLTemplate
	}
	if s.userAgent == "" {
		s.userAgent = DefaultUserAgent
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		s.client = &http.Client{Timeout: timeout}
	}
	return s
}

// ListingURL returns the page scraped for city
func (s *Scraper) ListingURL(city string) string {
	return fmt.Sprintf(s.urlTemplate, url.PathEscape(city))
}

// Fetch fetches and parses all event cards listed for city
func (s *Scraper) Fetch(ctx context.Context, city string) ([]event.Record, error) {
	pageURL := s.ListingURL(city)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return parseListing(resp.Body, pageURL, city, s.now())
}

// parseListing extracts records from listing HTML.
// Cards without a title or link are skipped.
func parseListing(r io.Reader, pageURL, city string, now time.Time) ([]event.Record, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parsing page url: %w", err)
	}

	// The listing carries no per-card date; the fetch day stands in for it
	day := event.FormatDay(now)

	records := make([]event.Record, 0)
	doc.Find(cardSelector).Each(func(i int, card *goquery.Selection) {
		name := cleanText(card.Find(titleSelector).First().Text())
		href, ok := card.Find("a[href]").First().Attr("href")
		if name == "" || !ok || strings.TrimSpace(href) == "" {
			return
		}

		link, err := base.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}

		category := cleanText(card.Find(categorySelector).First().Text())

		records = append(records, event.NewRecord(name, day, event.UnknownVenue, city, category, link.String(), now))
	})

	return records, nil
}

// cleanText collapses internal whitespace and trims
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
