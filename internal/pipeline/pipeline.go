package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pfrederiksen/event-discovery/internal/event"
	"github.com/pfrederiksen/event-discovery/internal/logger"
	"github.com/pfrederiksen/event-discovery/internal/metrics"
	"github.com/pfrederiksen/event-discovery/internal/storage"
)

// Fetcher produces the raw records listed for a city right now
type Fetcher interface {
	Fetch(ctx context.Context, city string) ([]event.Record, error)
}

// Locker is implemented by stores that can be held exclusively for a pass
type Locker interface {
	Lock() (unlock func(), err error)
}

// Stage names the step of a pass
type Stage string

const (
	StageLock     Stage = "lock"
	StageFetch    Stage = "fetch"
	StageValidate Stage = "validate"
	StageLoad     Stage = "load"
	StageSave     Stage = "save"
)

// StageError wraps the error that ended a pass with the stage it happened in
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Summary describes one finished pass
type Summary struct {
	RunID       string        `json:"run_id"`
	City        string        `json:"city"`
	StartedAt   time.Time     `json:"started_at"`
	Duration    time.Duration `json:"duration"`
	Fetched     int           `json:"fetched"`
	Valid       int           `json:"valid"`
	Skipped     int           `json:"skipped"`
	New         int           `json:"new"`
	Refreshed   int           `json:"refreshed"`
	Duplicates  int           `json:"duplicates"`
	Expired     int           `json:"expired"`
	Total       int           `json:"total"`
	FetchFailed bool          `json:"fetch_failed"`
	Persisted   bool          `json:"persisted"`
}

func (s *Summary) fields() logger.Fields {
	return logger.Fields{
		"fetched":    s.Fetched,
		"valid":      s.Valid,
		"skipped":    s.Skipped,
		"new":        s.New,
		"refreshed":  s.Refreshed,
		"duplicates": s.Duplicates,
		"expired":    s.Expired,
		"total":      s.Total,
		"persisted":  s.Persisted,
		"duration":   s.Duration,
	}
}

// Runner executes reconciliation passes for one city against one store
type Runner struct {
	city    string
	fetcher Fetcher
	store   storage.Store
	now     func() time.Time
	loc     *time.Location
	log     *logger.Logger
	metrics *metrics.Pass

	mu sync.Mutex
}

// Option configures a Runner
type Option func(*Runner)

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// WithLocation sets the zone "today" and timestamps are computed in
func WithLocation(loc *time.Location) Option {
	return func(r *Runner) { r.loc = loc }
}

// WithLogger sets the logger; defaults to the package-level logger
func WithLogger(l *logger.Logger) Option {
	return func(r *Runner) { r.log = l }
}

// WithMetrics records pass outcomes on m
func WithMetrics(m *metrics.Pass) Option {
	return func(r *Runner) { r.metrics = m }
}

// New creates a Runner
func New(city string, fetcher Fetcher, store storage.Store, opts ...Option) *Runner {
	r := &Runner{
		city:    city,
		fetcher: fetcher,
		store:   store,
		now:     time.Now,
		loc:     time.Local,
		log:     logger.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run performs one fetch -> merge -> persist pass.
// A fetch failure or an empty batch is not an error: the summary reports it
// and the store is neither read nor written.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := r.now().In(r.loc)
	sum := &Summary{
		RunID:     uuid.NewString(),
		City:      r.city,
		StartedAt: start,
	}
	log := r.log.With(logger.Fields{"run_id": sum.RunID, "city": r.city})
	log.Info("pass started", nil)

	incoming, err := r.fetcher.Fetch(ctx, r.city)
	if err != nil {
		sum.FetchFailed = true
		log.Error("fetch failed, treating batch as empty", logger.Fields{"stage": string(StageFetch)}, err)
		incoming = nil
	}
	sum.Fetched = len(incoming)

	valid := make([]event.Record, 0, len(incoming))
	for _, rec := range incoming {
		if rec.City == "" {
			rec.City = r.city
		}
		if err := event.Validate(rec); err != nil {
			sum.Skipped++
			log.Warn("skipping invalid record", logger.Fields{
				"stage": string(StageValidate),
				"url":   rec.URL,
				"error": err.Error(),
			})
			continue
		}
		valid = append(valid, rec)
	}
	sum.Valid = len(valid)
	r.metrics.Skipped(sum.Skipped)

	if len(valid) == 0 {
		outcome := metrics.OutcomeSkipped
		if sum.FetchFailed {
			outcome = metrics.OutcomeFetchFailed
		}
		r.finish(sum, outcome)
		log.Info("nothing to reconcile, store left untouched", sum.fields())
		return sum, nil
	}

	if l, ok := r.store.(Locker); ok {
		unlock, err := l.Lock()
		if err != nil {
			return sum, r.fail(log, sum, StageLock, metrics.OutcomeLocked, err)
		}
		defer unlock()
	}

	existing, err := r.store.Load()
	if err != nil {
		return sum, r.fail(log, sum, StageLoad, metrics.OutcomeLoadFailed, err)
	}

	now := r.now().In(r.loc)
	result := event.Reconcile(existing, valid, now, event.FormatDay(now))
	sum.New = result.New
	sum.Refreshed = result.Refreshed
	sum.Duplicates = result.Duplicates
	sum.Expired = result.Expired
	sum.Total = len(result.Records)

	if err := r.store.Save(result.Records); err != nil {
		return sum, r.fail(log, sum, StageSave, metrics.OutcomeSaveFailed, err)
	}
	sum.Persisted = true

	r.finish(sum, metrics.OutcomeOK)
	r.metrics.Persisted(sum.New, sum.Refreshed, sum.Total, sum.Expired, now)
	log.Info("pass finished", sum.fields())

	return sum, nil
}

func (r *Runner) finish(sum *Summary, outcome string) {
	sum.Duration = r.now().Sub(sum.StartedAt)
	r.metrics.Outcome(outcome, sum.Duration)
}

func (r *Runner) fail(log *logger.Logger, sum *Summary, stage Stage, outcome string, err error) error {
	r.finish(sum, outcome)
	log.Error("pass aborted", logger.Fields{"stage": string(stage)}, err)
	return &StageError{Stage: stage, Err: err}
}
