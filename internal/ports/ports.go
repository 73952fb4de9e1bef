package ports

import (
	"context"
	"time"

	"newsrelay/internal/domain"
)

// SourceFetcher pulls candidate articles from one upstream feed. A fetch
// touches no shared state; failures are reported through the outcome so
// one source can never corrupt another's results.
type SourceFetcher interface {
	ID() string
	Fetch(ctx context.Context) ([]domain.Article, domain.FetchOutcome)
}

// SeenPersister stores the dedup ledger across restarts. Load and Save
// failures are survivable; the store falls back to memory-only operation.
type SeenPersister interface {
	Load(ctx context.Context) ([]domain.SeenEntry, error)
	Save(ctx context.Context, entries []domain.SeenEntry) error
}

// Translator localizes source-language text. Must tolerate empty and very
// short input; failure is non-fatal to rendering.
type Translator interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

// Messenger delivers one rendered message to the output channel. Errors
// are *domain.DeliveryError values so the deliverer can pick retry or drop.
type Messenger interface {
	Send(ctx context.Context, msg domain.Message) error
}

// CycleDriver controls when pipeline cycles execute.
type CycleDriver interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
