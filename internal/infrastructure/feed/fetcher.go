package feed

import (
	"context"
	"log/slog"

	"newsrelay/internal/config"
	"newsrelay/internal/domain"
	"newsrelay/internal/ports"
	"newsrelay/internal/scanner"
)

// Fetcher binds one configured source to its scanner strategy and applies
// the per-source deadline. One Fetcher per source; no state is shared
// between them, so a failing source cannot disturb the others.
type Fetcher struct {
	src      config.SourceConfig
	strategy scanner.Scanner
	logger   *slog.Logger
}

var _ ports.SourceFetcher = (*Fetcher)(nil)

// NewFetcher wires a source descriptor with a resolved strategy.
func NewFetcher(src config.SourceConfig, strategy scanner.Scanner, logger *slog.Logger) *Fetcher {
	return &Fetcher{src: src, strategy: strategy, logger: logger}
}

// ID returns the configured source identifier.
func (f *Fetcher) ID() string {
	return f.src.ID
}

// Fetch runs one scan bounded by the source's own timeout. A slow source
// times out on its own clock and never stalls the whole cycle.
func (f *Fetcher) Fetch(ctx context.Context) ([]domain.Article, domain.FetchOutcome) {
	if timeout := f.src.Timeout.Std(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	articles, outcome := f.strategy.Scan(ctx, scanner.Request{
		SourceID: f.src.ID,
		URL:      f.src.URL,
		Options:  f.src.Options,
	})
	for i := range articles {
		articles[i].SourceWeight = f.src.Weight
	}

	if f.logger != nil {
		f.logger.Debug("source fetched",
			"source", f.src.ID,
			"status", outcome.Status.String(),
			"count", len(articles))
	}

	return articles, outcome
}
