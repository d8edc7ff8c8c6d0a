// Package metrics exposes reconciliation pass outcomes as prometheus collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "event_discovery"

// Outcome labels for the passes counter
const (
	OutcomeOK          = "ok"
	OutcomeSkipped     = "skipped" // nothing fetched, store untouched
	OutcomeFetchFailed = "fetch_failed"
	OutcomeLoadFailed  = "load_failed"
	OutcomeSaveFailed  = "save_failed"
	OutcomeLocked      = "locked"
)

// Pass tracks reconciliation passes. A nil *Pass is valid and records nothing.
type Pass struct {
	passes      *prometheus.CounterVec
	newRecords  prometheus.Counter
	refreshed   prometheus.Counter
	skipped     prometheus.Counter
	stored      prometheus.Gauge
	expired     prometheus.Gauge
	lastSuccess prometheus.Gauge
	duration    prometheus.Histogram
}

// NewPass creates the pass collectors and registers them on reg
func NewPass(reg prometheus.Registerer) *Pass {
	p := &Pass{
		passes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "passes_total",
			Help:      "Reconciliation passes by outcome.",
		}, []string{"outcome"}),
		newRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_new_total",
			Help:      "Records appended to the store.",
		}),
		refreshed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_refreshed_total",
			Help:      "Stored records whose timestamp was refreshed by a re-sighting.",
		}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_skipped_total",
			Help:      "Fetched records dropped as invalid.",
		}),
		stored: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "records_stored",
			Help:      "Records in the store after the last successful pass.",
		}),
		expired: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "records_expired",
			Help:      "Expired records in the store after the last successful pass.",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last pass that persisted the store.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pass_duration_seconds",
			Help:      "Wall time of a reconciliation pass.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
	}

	reg.MustRegister(p.passes, p.newRecords, p.refreshed, p.skipped, p.stored, p.expired, p.lastSuccess, p.duration)
	return p
}

// Outcome counts one finished pass
func (p *Pass) Outcome(outcome string, took time.Duration) {
	if p == nil {
		return
	}
	p.PassesCounter(outcome).Inc()
	p.duration.Observe(took.Seconds())
}

// Skipped counts invalid records dropped from a batch
func (p *Pass) Skipped(n int) {
	if p == nil || n <= 0 {
		return
	}
	p.skipped.Add(float64(n))
}

// Persisted records the counts of a pass that saved the store
func (p *Pass) Persisted(newRecords, refreshed, stored, expired int, at time.Time) {
	if p == nil {
		return
	}
	p.newRecords.Add(float64(newRecords))
	p.refreshed.Add(float64(refreshed))
	p.stored.Set(float64(stored))
	p.expired.Set(float64(expired))
	p.lastSuccess.Set(float64(at.Unix()))
}

// PassesCounter returns the passes counter for one outcome
func (p *Pass) PassesCounter(outcome string) prometheus.Counter {
	return p.passes.WithLabelValues(outcome)
}
