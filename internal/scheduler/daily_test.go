package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pfrederiksen/event-discovery/internal/logger"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		input   string
		want    Clock
		wantErr bool
	}{
		{"10:00", Clock{10, 0}, false},
		{"00:05", Clock{0, 5}, false},
		{"23:59", Clock{23, 59}, false},
		{"24:00", Clock{}, true},
		{"9am", Clock{}, true},
		{"", Clock{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseClock(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseClock(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseClock(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}

	if s := (Clock{7, 3}).String(); s != "07:03" {
		t.Errorf("String() = %s, want 07:03", s)
	}
}

func TestNextRun(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	at := Clock{10, 0}

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "Before today's run",
			now:  time.Date(2025, time.June, 1, 9, 59, 0, 0, ist),
			want: time.Date(2025, time.June, 1, 10, 0, 0, 0, ist),
		},
		{
			name: "Exactly at run time goes to tomorrow",
			now:  time.Date(2025, time.June, 1, 10, 0, 0, 0, ist),
			want: time.Date(2025, time.June, 2, 10, 0, 0, 0, ist),
		},
		{
			name: "After today's run",
			now:  time.Date(2025, time.June, 1, 18, 0, 0, 0, ist),
			want: time.Date(2025, time.June, 2, 10, 0, 0, 0, ist),
		},
		{
			name: "Month rollover",
			now:  time.Date(2025, time.June, 30, 11, 0, 0, 0, ist),
			want: time.Date(2025, time.July, 1, 10, 0, 0, 0, ist),
		},
		{
			name: "Now given in another zone",
			now:  time.Date(2025, time.June, 1, 3, 0, 0, 0, time.UTC), // 08:30 IST
			want: time.Date(2025, time.June, 1, 10, 0, 0, 0, ist),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextRun(tt.now, at, ist)
			if !got.Equal(tt.want) {
				t.Errorf("NextRun() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNextRun_DST(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata not available")
	}

	// Clocks spring forward on 2025-03-09; the run stays at 10:00 wall time
	now := time.Date(2025, time.March, 8, 12, 0, 0, 0, ny)
	got := NextRun(now, Clock{10, 0}, ny)
	if got.Hour() != 10 || got.Day() != 9 {
		t.Errorf("NextRun() = %v, want 2025-03-09 10:00 local", got)
	}
	if d := got.Sub(now); d != 21*time.Hour {
		t.Errorf("gap = %v, want 21h across the DST change", d)
	}
}

type fakeTimer struct {
	fire  chan time.Time
	waits chan time.Duration
}

func newFakeTimer() *fakeTimer {
	return &fakeTimer{fire: make(chan time.Time), waits: make(chan time.Duration, 10)}
}

func (f *fakeTimer) after(d time.Duration) <-chan time.Time {
	f.waits <- d
	return f.fire
}

func waitFor[T any](t *testing.T, ch <-chan T, what string) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
	var zero T
	return zero
}

func TestDaily_RunsOnStartScheduleAndTrigger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	timer := newFakeTimer()
	ran := make(chan struct{}, 10)

	job := func(ctx context.Context) error {
		ran <- struct{}{}
		return errors.New("upstream down")
	}
	d := NewDaily(job, Clock{10, 0}, time.UTC,
		WithLogger(logger.NewWithCore(core)),
		WithTimer(timer.after),
	)

	result := make(chan error, 1)
	go func() { result <- d.Run(context.Background()) }()

	waitFor(t, ran, "startup pass")
	waitFor(t, timer.waits, "first wait")

	timer.fire <- time.Now()
	waitFor(t, ran, "scheduled pass")
	waitFor(t, timer.waits, "second wait")

	if !d.Trigger() {
		t.Fatal("Trigger() = false on idle scheduler")
	}
	waitFor(t, ran, "triggered pass")
	waitFor(t, timer.waits, "third wait")

	d.Stop()
	if err := waitFor(t, result, "Run to return"); err != nil {
		t.Errorf("Run() = %v, want nil after Stop", err)
	}

	if n := logs.FilterMessage("pass failed").Len(); n != 3 {
		t.Errorf("failed pass logs = %d, want 3", n)
	}
}

func TestDaily_TriggerCoalesces(t *testing.T) {
	timer := newFakeTimer()
	ran := make(chan struct{}, 10)
	release := make(chan struct{})

	job := func(ctx context.Context) error {
		ran <- struct{}{}
		<-release
		return nil
	}
	d := NewDaily(job, Clock{10, 0}, time.UTC, WithLogger(logger.Nop()), WithTimer(timer.after))
	d.Start(context.Background())

	waitFor(t, ran, "startup pass")

	if !d.Trigger() {
		t.Error("first Trigger() during a pass should queue")
	}
	if d.Trigger() || d.Trigger() {
		t.Error("further Trigger() calls should be dropped")
	}

	release <- struct{}{}
	waitFor(t, ran, "queued pass")
	release <- struct{}{}
	waitFor(t, timer.waits, "idle wait")

	select {
	case <-ran:
		t.Error("extra pass ran; triggers were not coalesced")
	case <-time.After(50 * time.Millisecond):
	}

	d.Stop()
}

func TestDaily_ContextCancel(t *testing.T) {
	timer := newFakeTimer()
	ctx, cancel := context.WithCancel(context.Background())

	d := NewDaily(func(context.Context) error { return nil }, Clock{10, 0}, time.UTC,
		WithLogger(logger.Nop()), WithTimer(timer.after))

	result := make(chan error, 1)
	go func() { result <- d.Run(ctx) }()
	waitFor(t, timer.waits, "first wait")

	cancel()
	if err := waitFor(t, result, "Run to return"); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() = %v, want context.Canceled", err)
	}

	if err := d.Run(context.Background()); err == nil {
		t.Error("second Run() should fail")
	}
}

func TestDaily_WaitsUntilNextRun(t *testing.T) {
	timer := newFakeTimer()
	now := time.Date(2025, time.June, 1, 9, 30, 0, 0, time.UTC)

	d := NewDaily(func(context.Context) error { return nil }, Clock{10, 0}, time.UTC,
		WithLogger(logger.Nop()), WithTimer(timer.after), WithClock(func() time.Time { return now }))
	d.Start(context.Background())
	defer d.Stop()

	if got := waitFor(t, timer.waits, "first wait"); got != 30*time.Minute {
		t.Errorf("wait = %v, want 30m", got)
	}
}
