// Package app wires configuration to the pipeline and owns the process
// lifecycle.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	_ "github.com/lib/pq"

	"newsrelay/internal/config"
	"newsrelay/internal/control"
	"newsrelay/internal/deliver"
	"newsrelay/internal/domain"
	"newsrelay/internal/filter"
	"newsrelay/internal/format"
	"newsrelay/internal/infrastructure/feed"
	"newsrelay/internal/infrastructure/llm"
	schedinfra "newsrelay/internal/infrastructure/scheduler"
	"newsrelay/internal/infrastructure/storage"
	"newsrelay/internal/infrastructure/telegram"
	"newsrelay/internal/logging"
	"newsrelay/internal/ports"
	"newsrelay/internal/scanner"
	"newsrelay/internal/seen"
	"newsrelay/internal/usecase"
)

// Application bundles the wired components and their teardown.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	scheduler *usecase.Scheduler
	seenStore *seen.Store
	db        *sql.DB
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	registry := scanner.NewRegistry()
	registry.Register(feed.NewRSSScanner(nil))
	registry.Register(feed.NewSiteScanner(nil))

	fetchers := make([]ports.SourceFetcher, 0, len(cfg.Sources))
	for _, src := range cfg.Sources {
		strategy, err := registry.Resolve(src.Kind)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", src.ID, err)
		}
		fetchers = append(fetchers, feed.NewFetcher(src, strategy, baseLogger.With("component", "fetch")))
	}

	var (
		persister ports.SeenPersister
		db        *sql.DB
	)
	if cfg.Seen.DSN != "" {
		var err error
		db, err = sql.Open("postgres", cfg.Seen.DSN)
		if err != nil {
			return nil, fmt.Errorf("open seen database: %w", err)
		}
		persister = storage.NewPostgresStore(db)
	} else {
		persister = storage.NewFileStore(cfg.Seen.File)
	}

	seenStore := seen.NewStore(cfg.Seen.Capacity, persister, baseLogger.With("component", "seen"))

	var translator ports.Translator
	if cfg.Translator.Enabled && cfg.Translator.APIKey != "" {
		translator = llm.NewTranslator(cfg.Translator)
	}
	formatter := format.New(
		translator,
		cfg.Translator.SourceLang,
		cfg.Translator.TargetLang,
		cfg.Telegram.ChannelTag,
		baseLogger.With("component", "format"),
	)

	messenger := telegram.NewMessenger(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	deliverer, err := deliver.New(messenger, cfg.Delivery, baseLogger.With("component", "deliver"))
	if err != nil {
		return nil, fmt.Errorf("build deliverer: %w", err)
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Fetchers:    fetchers,
		Seen:        seenStore,
		Filter:      filter.New(cfg.Filter.ExtraKeywords),
		Formatter:   formatter,
		Deliverer:   deliverer,
		Logger:      baseLogger.With("component", "pipeline"),
		MaxPerCycle: cfg.Delivery.MaxPerCycle,
	})

	driver := schedinfra.NewIntervalDriver(cfg.Scheduler.Interval.Std(), cfg.Scheduler.Jitter.Std())

	return &Application{
		cfg:       cfg,
		logger:    baseLogger,
		scheduler: usecase.NewScheduler(driver, pipeline),
		seenStore: seenStore,
		db:        db,
	}, nil
}

// Run loads persisted state, starts the cycle loop plus the optional
// control surface, and blocks until the context is cancelled. Shutdown
// lets the in-flight delivery finish before the final snapshot.
func (a *Application) Run(ctx context.Context) error {
	a.seenStore.Load(ctx)

	var controlSrv *http.Server
	if addr := a.cfg.Control.Addr; addr != "" {
		ln, err := control.TryListen(addr)
		if err != nil {
			return fmt.Errorf("control listener on %s: %w", addr, err)
		}
		controlSrv = &http.Server{Handler: control.NewServer(coreAdapter{a})}
		go func() {
			if serveErr := controlSrv.Serve(ln); serveErr != nil && serveErr != http.ErrServerClosed {
				a.logger.Error("control server stopped", "error", serveErr)
			}
		}()
		a.logger.Info("control surface listening", "addr", addr)
	}

	if err := a.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("relay started",
		"sources", len(a.cfg.Sources),
		"interval", a.cfg.Scheduler.Interval.Std())

	<-ctx.Done()

	shutdownCtx := context.Background()
	_ = a.scheduler.Stop(shutdownCtx)
	if controlSrv != nil {
		_ = controlSrv.Shutdown(shutdownCtx)
	}
	if err := a.seenStore.Snapshot(shutdownCtx); err != nil {
		a.logger.Warn("final seen snapshot failed", "error", err)
	}
	if a.db != nil {
		_ = a.db.Close()
	}

	a.logger.Info("relay stopped")
	return nil
}

// coreAdapter narrows the application to the control surface.
type coreAdapter struct {
	app *Application
}

func (c coreAdapter) RunNow(ctx context.Context) domain.CycleStats {
	return c.app.scheduler.RunNow(ctx)
}

func (c coreAdapter) LastCycle() (domain.CycleStats, bool) {
	return c.app.scheduler.LastCycle()
}

func (c coreAdapter) ResetSeen() {
	c.app.seenStore.Clear()
}
