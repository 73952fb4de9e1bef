// Package seen implements the bounded, persisted deduplication ledger.
package seen

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"newsrelay/internal/domain"
	"newsrelay/internal/ports"
)

// Store is the only entity mutated from multiple concurrent paths; every
// mutation happens behind its mutex. The dedup primitive is ContainsAndMark:
// membership test and insert in one atomic step, so two concurrent checks
// can never both observe "absent" for the same fingerprint.
type Store struct {
	mu        sync.Mutex
	items     map[string]time.Time
	order     []domain.SeenEntry
	capacity  int
	persister ports.SeenPersister
	logger    *slog.Logger
	now       func() time.Time
}

// NewStore builds an empty store with the given capacity. A nil persister
// means memory-only operation.
func NewStore(capacity int, persister ports.SeenPersister, logger *slog.Logger) *Store {
	if capacity <= 0 {
		capacity = 1
	}
	return &Store{
		items:     make(map[string]time.Time, capacity),
		order:     make([]domain.SeenEntry, 0, capacity),
		capacity:  capacity,
		persister: persister,
		logger:    logger,
		now:       time.Now,
	}
}

// Load restores persisted state. Persistence failure is logged and treated
// as "start empty": availability beats dedup perfection across restarts.
// Entries beyond capacity are trimmed oldest-first.
func (s *Store) Load(ctx context.Context) {
	if s.persister == nil {
		return
	}

	entries, err := s.persister.Load(ctx)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("seen store load failed, starting empty", "error", err)
		}
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make(map[string]time.Time, s.capacity)
	s.order = s.order[:0]
	for _, entry := range entries {
		if _, dup := s.items[entry.Fingerprint]; dup {
			continue
		}
		s.items[entry.Fingerprint] = entry.FirstSeenAt
		s.order = append(s.order, entry)
	}
	s.evictLocked()
}

// ContainsAndMark atomically checks membership; if the fingerprint is
// absent it is inserted and false ("was new") is returned. If present,
// true is returned without mutation.
func (s *Store) ContainsAndMark(fingerprint string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[fingerprint]; ok {
		return true
	}

	at := s.now().UTC()
	s.items[fingerprint] = at
	s.order = append(s.order, domain.SeenEntry{Fingerprint: fingerprint, FirstSeenAt: at})
	s.evictLocked()
	return false
}

// evictLocked removes oldest entries until size fits the capacity.
func (s *Store) evictLocked() {
	for len(s.order) > s.capacity {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.items, oldest.Fingerprint)
	}
}

// Len reports the current number of tracked fingerprints.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

// Entries returns a copy of the ledger in insertion order.
func (s *Store) Entries() []domain.SeenEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.SeenEntry, len(s.order))
	copy(out, s.order)
	return out
}

// Clear drops every tracked fingerprint.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]time.Time, s.capacity)
	s.order = s.order[:0]
}

// Snapshot writes the current ledger through the persister. Failures are
// returned for counting but never stop the pipeline.
func (s *Store) Snapshot(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}
	return s.persister.Save(ctx, s.Entries())
}
