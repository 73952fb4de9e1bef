package usecase

import (
	"context"
	"testing"
	"time"

	"newsrelay/internal/domain"
)

type stubDriver struct {
	job     func(time.Time)
	stopped bool
}

func (d *stubDriver) Start(_ context.Context, job func(time.Time)) error {
	d.job = job
	return nil
}

func (d *stubDriver) Stop(context.Context) error {
	d.stopped = true
	return nil
}

func newSchedulerWithPipeline(t *testing.T) (*Scheduler, *stubDriver, *captureMessenger) {
	t.Helper()

	base := time.Date(2025, 8, 4, 9, 0, 0, 0, time.UTC)
	src := &fakeFetcher{
		id: "feed-a",
		articles: []domain.Article{
			article("feed-a", "Bitcoin rallies into the close", "https://example.com/btc-rally", base),
		},
		outcome: domain.SuccessOutcome(1),
	}
	messenger := &captureMessenger{}
	driver := &stubDriver{}
	return NewScheduler(driver, newTestPipeline(t, messenger, &memPersister{}, 0, src)), driver, messenger
}

func TestSchedulerRecordsDrivenCycles(t *testing.T) {
	t.Parallel()

	s, driver, messenger := newSchedulerWithPipeline(t)

	if _, ok := s.LastCycle(); ok {
		t.Fatalf("last cycle reported before any run")
	}

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if driver.job == nil {
		t.Fatalf("job not registered with driver")
	}

	trigger := time.Date(2025, 8, 4, 12, 0, 0, 0, time.UTC)
	driver.job(trigger)

	stats, ok := s.LastCycle()
	if !ok {
		t.Fatalf("last cycle missing after driven run")
	}
	if !stats.StartedAt.Equal(trigger) {
		t.Fatalf("started at %v, want %v", stats.StartedAt, trigger)
	}
	if stats.Delivered != 1 || len(messenger.sent) != 1 {
		t.Fatalf("delivered = %d, sent = %d, want 1/1", stats.Delivered, len(messenger.sent))
	}

	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if !driver.stopped {
		t.Fatalf("driver not stopped")
	}
}

func TestSchedulerRunNow(t *testing.T) {
	t.Parallel()

	s, _, messenger := newSchedulerWithPipeline(t)

	stats := s.RunNow(context.Background())
	if stats.Delivered != 1 || len(messenger.sent) != 1 {
		t.Fatalf("delivered = %d, sent = %d, want 1/1", stats.Delivered, len(messenger.sent))
	}

	recorded, ok := s.LastCycle()
	if !ok || recorded.CycleID != stats.CycleID {
		t.Fatalf("manual run not recorded as last cycle")
	}
}
