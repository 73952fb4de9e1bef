package usecase

import (
	"context"
	"sync"
	"time"

	"newsrelay/internal/domain"
	"newsrelay/internal/ports"
)

// Scheduler wires the cycle driver with the pipeline and keeps the last
// cycle's counters for the operational surface.
type Scheduler struct {
	driver   ports.CycleDriver
	pipeline *Pipeline

	mu      sync.Mutex
	last    domain.CycleStats
	hasLast bool
}

// NewScheduler returns a helper to start/stop recurring cycles.
func NewScheduler(driver ports.CycleDriver, pipeline *Pipeline) *Scheduler {
	return &Scheduler{driver: driver, pipeline: pipeline}
}

// Start registers the pipeline with the provided driver.
func (s *Scheduler) Start(ctx context.Context) error {
	job := func(trigger time.Time) {
		s.record(s.pipeline.RunCycle(ctx, trigger))
	}
	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying driver.
func (s *Scheduler) Stop(ctx context.Context) error {
	return s.driver.Stop(ctx)
}

// RunNow triggers one cycle immediately, outside the fixed interval. It
// serializes against the scheduled cycle through the pipeline itself.
func (s *Scheduler) RunNow(ctx context.Context) domain.CycleStats {
	stats := s.pipeline.RunCycle(ctx, time.Now())
	s.record(stats)
	return stats
}

// LastCycle reports the most recent cycle's counters.
func (s *Scheduler) LastCycle() (domain.CycleStats, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.hasLast
}

func (s *Scheduler) record(stats domain.CycleStats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = stats
	s.hasLast = true
}
