// Package cli implements the command-line interface for event-discovery.
//
// The cli package provides the Cobra-based commands: run (one pass now),
// schedule (daily daemon with optional HTTP surface), list and export for
// reading the store, and config for printing the effective settings. It wires
// config, scraper, storage, pipeline and scheduler together.
package cli
