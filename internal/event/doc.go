// Package event provides the event record type and the reconciliation of scraped batches.
//
// A Record is identified solely by its URL. Reconcile merges a freshly fetched
// batch into the current snapshot: unseen URLs are appended in batch order,
// re-seen URLs only get their LastUpdated refreshed, and Status is recomputed
// for every record against the current day.
package event
