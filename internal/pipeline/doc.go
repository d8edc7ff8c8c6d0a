// Package pipeline runs one reconciliation pass: fetch, validate, load, reconcile, save.
//
// A Runner never lets a fetch failure escape; it is logged and the pass ends
// without touching the store. Load and save failures end the pass and are
// returned wrapped in a StageError so callers can tell where it stopped.
// Passes on one Runner are serialized, and stores implementing Locker are
// additionally locked from load through save.
package pipeline
