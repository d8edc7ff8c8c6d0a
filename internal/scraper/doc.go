// Package scraper provides HTTP fetching and HTML parsing of a city's events listing.
//
// The scraper fetches the public explore page for one city slug and extracts one
// record per listing card: title, category and absolute event link. The site
// does not expose per-card dates or venues on the listing, so records carry the
// fetch day and the unknown-venue placeholder.
package scraper
