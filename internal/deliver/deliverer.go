// Package deliver implements the rate-limited delivery stage.
package deliver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"newsrelay/internal/config"
	"newsrelay/internal/domain"
	"newsrelay/internal/ports"
)

// Deliverer sends rendered messages under a minimum inter-send interval
// shared across all messages regardless of source. Each message walks a
// pending → sent | dropped state machine with exponential backoff between
// attempts; retries re-enter the limiter queue rather than bypassing it.
type Deliverer struct {
	messenger      ports.Messenger
	minInterval    time.Duration
	maxAttempts    int
	backoffBase    time.Duration
	backoffCeiling time.Duration
	logger         *slog.Logger

	mu       sync.Mutex
	nextSlot time.Time

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New validates the rate-limiter configuration; an unusable limiter is the
// one startup failure that is fatal to the process.
func New(messenger ports.Messenger, cfg config.DeliveryConfig, logger *slog.Logger) (*Deliverer, error) {
	if messenger == nil {
		return nil, errors.New("deliverer requires a messenger")
	}
	if cfg.MinInterval.Std() <= 0 {
		return nil, fmt.Errorf("delivery rate limiter requires a positive min interval, got %s", cfg.MinInterval.Std())
	}
	if cfg.MaxAttempts <= 0 {
		return nil, fmt.Errorf("delivery maxAttempts must be positive, got %d", cfg.MaxAttempts)
	}

	backoffBase := cfg.BackoffBase.Std()
	if backoffBase <= 0 {
		backoffBase = time.Second
	}
	backoffCeiling := cfg.BackoffCeiling.Std()
	if backoffCeiling < backoffBase {
		backoffCeiling = backoffBase
	}

	return &Deliverer{
		messenger:      messenger,
		minInterval:    cfg.MinInterval.Std(),
		maxAttempts:    cfg.MaxAttempts,
		backoffBase:    backoffBase,
		backoffCeiling: backoffCeiling,
		logger:         logger,
		now:            time.Now,
		sleep:          sleepContext,
	}, nil
}

// Deliver sends the batch in ascending published-at order and returns one
// record per message, positionally aligned with the sorted order. A
// cancelled context leaves the remaining records pending; the message
// whose send is already in flight is allowed to finish.
func (d *Deliverer) Deliver(ctx context.Context, msgs []domain.Message) []domain.DeliveryRecord {
	sorted := make([]domain.Message, len(msgs))
	copy(sorted, msgs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PublishedAt.Before(sorted[j].PublishedAt)
	})

	records := make([]domain.DeliveryRecord, len(sorted))
	for i, msg := range sorted {
		records[i] = domain.DeliveryRecord{Fingerprint: msg.Fingerprint, Status: domain.DeliveryPending}
		if ctx.Err() != nil {
			continue
		}
		records[i] = d.deliverOne(ctx, msg)
	}
	return records
}

func (d *Deliverer) deliverOne(ctx context.Context, msg domain.Message) domain.DeliveryRecord {
	rec := domain.DeliveryRecord{Fingerprint: msg.Fingerprint, Status: domain.DeliveryPending}
	backoff := d.backoffBase

	for {
		if err := d.awaitSlot(ctx); err != nil {
			rec.LastError = err.Error()
			return rec
		}

		rec.Attempts++
		// The current send is allowed to complete even when shutdown
		// begins mid-flight: a half-sent state is worse than a short delay.
		err := d.messenger.Send(context.WithoutCancel(ctx), msg)
		if err == nil {
			rec.Status = domain.DeliverySent
			return rec
		}
		rec.LastError = err.Error()

		var deliveryErr *domain.DeliveryError
		if errors.As(err, &deliveryErr) && deliveryErr.Kind == domain.DeliveryErrPermanent {
			rec.Status = domain.DeliveryDropped
			d.warn("message permanently rejected", msg, rec, err)
			return rec
		}

		if rec.Attempts >= d.maxAttempts {
			rec.Status = domain.DeliveryDropped
			d.warn("message dropped after max attempts", msg, rec, err)
			return rec
		}

		if err := d.sleep(ctx, backoff); err != nil {
			return rec
		}
		backoff = min(backoff*2, d.backoffCeiling)
	}
}

// awaitSlot claims the next send slot under the mutex, then waits for it.
// Claiming before waiting keeps the interval intact even when delivery
// retries span cycle boundaries and callers overlap.
func (d *Deliverer) awaitSlot(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	d.mu.Lock()
	now := d.now()
	slot := d.nextSlot
	if slot.Before(now) {
		slot = now
	}
	d.nextSlot = slot.Add(d.minInterval)
	d.mu.Unlock()

	return d.sleep(ctx, slot.Sub(now))
}

func (d *Deliverer) warn(msg string, m domain.Message, rec domain.DeliveryRecord, err error) {
	if d.logger != nil {
		d.logger.Warn(msg,
			"fingerprint", m.Fingerprint,
			"attempts", rec.Attempts,
			"error", err)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
