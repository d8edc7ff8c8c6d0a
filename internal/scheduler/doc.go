// Package scheduler drives reconciliation passes on a daily wall-clock schedule.
//
// A Daily runs its job once on start, then every day at a fixed time of day
// in a configured location. Trigger requests an extra pass; requests made
// while a pass is running collapse into a single follow-up pass.
package scheduler
