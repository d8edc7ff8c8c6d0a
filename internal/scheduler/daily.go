package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pfrederiksen/event-discovery/internal/logger"
)

// Job is one unit of scheduled work
type Job func(ctx context.Context) error

// Clock is a time of day
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock parses "HH:MM" (24h)
func ParseClock(s string) (Clock, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return Clock{}, fmt.Errorf("invalid time of day %q, want HH:MM: %w", s, err)
	}
	return Clock{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// NextRun returns the first instant strictly after now at which the wall clock in loc reads at
func NextRun(now time.Time, at Clock, loc *time.Location) time.Time {
	local := now.In(loc)
	y, m, d := local.Date()
	next := time.Date(y, m, d, at.Hour, at.Minute, 0, 0, loc)
	if !next.After(local) {
		next = time.Date(y, m, d+1, at.Hour, at.Minute, 0, 0, loc)
	}
	return next
}

// Daily runs a job at a fixed time every day
type Daily struct {
	job   Job
	at    Clock
	loc   *time.Location
	log   *logger.Logger
	now   func() time.Time
	after func(time.Duration) <-chan time.Time

	trigger  chan struct{}
	stopCh   chan struct{}
	stopOnce sync.Once
	done     chan struct{}
	running  atomic.Bool
}

// Option configures a Daily
type Option func(*Daily)

// WithLogger sets the logger; defaults to the package-level logger
func WithLogger(l *logger.Logger) Option {
	return func(d *Daily) { d.log = l }
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(d *Daily) { d.now = now }
}

// WithTimer overrides time.After
func WithTimer(after func(time.Duration) <-chan time.Time) Option {
	return func(d *Daily) { d.after = after }
}

// NewDaily creates a scheduler running job every day at at, in loc
func NewDaily(job Job, at Clock, loc *time.Location, opts ...Option) *Daily {
	if loc == nil {
		loc = time.Local
	}
	d := &Daily{
		job:     job,
		at:      at,
		loc:     loc,
		log:     logger.Default(),
		now:     time.Now,
		after:   time.After,
		trigger: make(chan struct{}, 1),
		stopCh:  make(chan struct{}),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start runs the scheduler in the background
func (d *Daily) Start(ctx context.Context) {
	go d.Run(ctx) // nolint:errcheck
}

// Run runs the job immediately, then daily until Stop is called or ctx is done.
// It returns ctx.Err() on cancellation and nil after Stop.
func (d *Daily) Run(ctx context.Context) error {
	if !d.running.CompareAndSwap(false, true) {
		return fmt.Errorf("scheduler already running")
	}
	defer close(d.done)

	d.runJob(ctx, "startup")

	for {
		next := NextRun(d.now(), d.at, d.loc)
		d.log.Info("next pass scheduled", logger.Fields{"at": next.Format(time.RFC3339)})

		select {
		case <-d.after(next.Sub(d.now())):
			d.runJob(ctx, "schedule")
		case <-d.trigger:
			d.runJob(ctx, "trigger")
		case <-d.stopCh:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Trigger requests a pass as soon as the current one (if any) finishes.
// It never blocks, and returns false if a pass is already queued.
func (d *Daily) Trigger() bool {
	select {
	case d.trigger <- struct{}{}:
		return true
	default:
		return false
	}
}

// Stop ends the loop after the current pass and waits for it to exit
func (d *Daily) Stop() {
	d.stopOnce.Do(func() { close(d.stopCh) })
	if d.running.Load() {
		<-d.done
	}
}

func (d *Daily) runJob(ctx context.Context, reason string) {
	if ctx.Err() != nil {
		return
	}
	d.log.Info("starting pass", logger.Fields{"reason": reason})
	if err := d.job(ctx); err != nil {
		d.log.Error("pass failed", logger.Fields{"reason": reason}, err)
	}
}
