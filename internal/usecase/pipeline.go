package usecase

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"newsrelay/internal/deliver"
	"newsrelay/internal/domain"
	"newsrelay/internal/filter"
	"newsrelay/internal/format"
	"newsrelay/internal/ports"
	"newsrelay/internal/seen"
)

// PipelineDeps wires all stages into the ingestion-dedup-delivery pipeline.
type PipelineDeps struct {
	Fetchers    []ports.SourceFetcher
	Seen        *seen.Store
	Filter      *filter.Filter
	Formatter   *format.Formatter
	Deliverer   *deliver.Deliverer
	Logger      *slog.Logger
	MaxPerCycle int
}

// Pipeline runs one full cycle: concurrent fetch fan-out, merge, sort,
// relevance filter, dedup, render, rate-limited delivery.
type Pipeline struct {
	fetchers    []ports.SourceFetcher
	seen        *seen.Store
	filter      *filter.Filter
	formatter   *format.Formatter
	deliverer   *deliver.Deliverer
	logger      *slog.Logger
	maxPerCycle int

	runMu sync.Mutex
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		fetchers:    deps.Fetchers,
		seen:        deps.Seen,
		filter:      deps.Filter,
		formatter:   deps.Formatter,
		deliverer:   deps.Deliverer,
		logger:      deps.Logger,
		maxPerCycle: deps.MaxPerCycle,
	}
}

type fetchResult struct {
	sourceID string
	articles []domain.Article
	outcome  domain.FetchOutcome
}

// RunCycle executes one complete cycle. Cycles are serialized: a manual
// trigger overlapping the scheduled tick queues behind it instead of
// interleaving. No per-item failure aborts the cycle.
func (p *Pipeline) RunCycle(ctx context.Context, now time.Time) domain.CycleStats {
	p.runMu.Lock()
	defer p.runMu.Unlock()

	started := time.Now()
	stats := domain.CycleStats{CycleID: uuid.NewString(), StartedAt: now}

	merged := p.fetchAll(ctx, &stats)

	// Oldest first; equal timestamps break toward the heavier source, so
	// when the per-cycle cap binds the preferred sources keep their slots.
	sort.SliceStable(merged, func(i, j int) bool {
		if !merged[i].PublishedAt.Equal(merged[j].PublishedAt) {
			return merged[i].PublishedAt.Before(merged[j].PublishedAt)
		}
		return merged[i].SourceWeight > merged[j].SourceWeight
	})

	var outbox []domain.Message
	for _, article := range merged {
		if p.maxPerCycle > 0 && len(outbox) >= p.maxPerCycle {
			break
		}

		tags, ok := p.filter.Classify(article)
		if !ok {
			stats.Rejected++
			continue
		}
		article.Categories = tags

		if p.seen.ContainsAndMark(article.Fingerprint) {
			stats.AlreadySeen++
			continue
		}
		stats.Accepted++

		msg, err := p.formatter.Render(ctx, article)
		if err != nil {
			stats.RenderFailures++
			p.logger.Warn("render failed", "cycle", stats.CycleID, "fingerprint", article.Fingerprint, "error", err)
			continue
		}
		outbox = append(outbox, msg)
	}

	for _, rec := range p.deliverer.Deliver(ctx, outbox) {
		switch rec.Status {
		case domain.DeliverySent:
			stats.Delivered++
		case domain.DeliveryDropped:
			stats.Dropped++
		}
	}

	if err := p.seen.Snapshot(ctx); err != nil {
		stats.SnapshotFailures++
		p.logger.Warn("seen snapshot failed", "cycle", stats.CycleID, "error", err)
	}

	stats.Duration = time.Since(started)
	p.logger.Info("cycle complete",
		"cycle", stats.CycleID,
		"fetched", stats.Fetched,
		"accepted", stats.Accepted,
		"already_seen", stats.AlreadySeen,
		"rejected", stats.Rejected,
		"delivered", stats.Delivered,
		"dropped", stats.Dropped,
		"transient_errors", stats.TransientErrors,
		"permanent_errors", stats.PermanentErrors,
		"parse_errors", stats.ParseErrors,
		"duration", stats.Duration)

	return stats
}

// fetchAll fans out to every source concurrently and merges the results.
// Each fetcher bounds its own deadline, so the join waits at most the
// slowest per-source timeout.
func (p *Pipeline) fetchAll(ctx context.Context, stats *domain.CycleStats) []domain.Article {
	results := make(chan fetchResult, len(p.fetchers))

	var wg sync.WaitGroup
	for _, fetcher := range p.fetchers {
		wg.Add(1)
		go func(f ports.SourceFetcher) {
			defer wg.Done()
			articles, outcome := f.Fetch(ctx)
			results <- fetchResult{sourceID: f.ID(), articles: articles, outcome: outcome}
		}(fetcher)
	}
	wg.Wait()
	close(results)

	var merged []domain.Article
	for res := range results {
		stats.CountOutcome(res.outcome)
		switch res.outcome.Status {
		case domain.FetchSuccess, domain.FetchEmptyOk:
			merged = append(merged, res.articles...)
		case domain.FetchPermanent:
			p.logger.Warn("source skipped this cycle",
				"cycle", stats.CycleID,
				"source", res.sourceID,
				"kind", res.outcome.Kind,
				"error", res.outcome.Err)
		default:
			p.logger.Debug("source fetch failed",
				"cycle", stats.CycleID,
				"source", res.sourceID,
				"status", res.outcome.Status.String(),
				"kind", res.outcome.Kind)
		}
	}

	return merged
}
