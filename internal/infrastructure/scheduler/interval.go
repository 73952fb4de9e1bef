// Package scheduler drives fixed-interval pipeline cycles.
package scheduler

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"newsrelay/internal/ports"
)

// IntervalDriver triggers the job on a fixed wall-clock interval with
// optional jitter, so several deployments do not hammer the same upstream
// feeds in lockstep. The first run fires immediately. Stop waits for the
// in-flight job to return, so a shutdown never abandons a running cycle.
type IntervalDriver struct {
	interval time.Duration
	jitter   time.Duration

	mu      sync.Mutex
	stop    chan struct{}
	done    chan struct{}
	stopped bool
}

var _ ports.CycleDriver = (*IntervalDriver)(nil)

// NewIntervalDriver builds a driver from the configured cadence.
func NewIntervalDriver(interval, jitter time.Duration) *IntervalDriver {
	return &IntervalDriver{interval: interval, jitter: jitter}
}

// Start launches the ticking goroutine. A non-positive interval is a
// configuration error and fatal to startup.
func (d *IntervalDriver) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return errors.New("interval driver needs a job")
	}
	if d.interval <= 0 {
		return errors.New("interval must be positive")
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stop != nil {
		return nil
	}

	d.stop = make(chan struct{})
	d.done = make(chan struct{})
	go func() {
		defer close(d.done)
		job(time.Now())
		for {
			timer := time.NewTimer(d.nextDelay())
			select {
			case t := <-timer.C:
				job(t)
			case <-ctx.Done():
				timer.Stop()
				return
			case <-d.stop:
				timer.Stop()
				return
			}
		}
	}()

	return nil
}

// Stop halts the ticking goroutine and joins it: an in-flight job runs to
// completion before Stop returns. The wait is bounded by ctx.
func (d *IntervalDriver) Stop(ctx context.Context) error {
	d.mu.Lock()
	if d.stop == nil {
		d.mu.Unlock()
		return nil
	}
	if !d.stopped {
		d.stopped = true
		close(d.stop)
	}
	done := d.done
	d.mu.Unlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *IntervalDriver) nextDelay() time.Duration {
	delay := d.interval
	if d.jitter > 0 {
		delay += time.Duration(rand.Int63n(int64(d.jitter)))
	}
	return delay
}
