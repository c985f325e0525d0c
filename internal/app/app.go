package app

import (
	"context"
	"fmt"
	"log/slog"

	"SpaceNewsAgent/internal/config"
	"SpaceNewsAgent/internal/enrich"
	"SpaceNewsAgent/internal/infrastructure/article"
	"SpaceNewsAgent/internal/infrastructure/inference"
	"SpaceNewsAgent/internal/infrastructure/scheduler"
	"SpaceNewsAgent/internal/infrastructure/source"
	"SpaceNewsAgent/internal/infrastructure/storage"
	"SpaceNewsAgent/internal/logging"
	"SpaceNewsAgent/internal/ports"
	"SpaceNewsAgent/internal/usecase"
)

// launch detail calls default to four per minute, mirroring the pacing the
// upstream API tolerates without 429s.
const defaultDetailPerMinute = 4

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	pipeline *usecase.Pipeline
	closer   func() error
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	timeout := cfg.Pipeline.Timeout()

	launches := source.NewLaunchStrategy(timeout, defaultDetailPerMinute,
		baseLogger.With("component", "source.launchlibrary"))

	registry := source.NewRegistry()
	registry.Register(source.NewNewsStrategy(timeout, cfg.Pipeline.FetchLimit))
	registry.Register(launches)

	records := source.NewAggregate(registry, cfg.Sources,
		baseLogger.With("component", "source"))

	summarizer := inference.NewClient(cfg.Inference, cfg.Pipeline.MaxConcurrent,
		timeout, baseLogger.With("component", "inference"))

	fetcher := article.NewFetcher(timeout, cfg.Pipeline.MaxConcurrent,
		baseLogger.With("component", "article"))

	orchestrator := enrich.NewOrchestrator(enrich.OrchestratorDeps{
		Fetcher:     fetcher,
		Summarizer:  summarizer,
		Enhancer:    launches,
		Logger:      baseLogger.With("component", "enrich"),
		ChunkChars:  cfg.Pipeline.ChunkChars,
		TargetWords: cfg.Pipeline.TargetWords,
		Retries:     cfg.Pipeline.Retries,
	})

	store, closer, err := buildStore(cfg.Storage)
	if err != nil {
		return nil, err
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:          records,
		Enricher:        orchestrator,
		Store:           store,
		Logger:          baseLogger.With("component", "pipeline"),
		MaxConcurrent:   cfg.Pipeline.MaxConcurrent,
		MaxEmptyRetries: cfg.Pipeline.MaxEmptyRetries,
		SourceLabel:     sourceLabel(cfg.Sources),
		Model:           cfg.Inference.Model,
	})

	return &Application{cfg: cfg, pipeline: pipeline, closer: closer}, nil
}

// Run performs a single pipeline execution, or keeps running on the
// configured interval when the scheduler is enabled.
func (a *Application) Run(ctx context.Context) error {
	if a.pipeline == nil {
		return nil
	}
	defer a.close()

	if !a.cfg.Scheduler.Enabled {
		return a.pipeline.Run(ctx)
	}

	driver := scheduler.NewIntervalScheduler(a.cfg.Scheduler.IntervalDuration())
	runner := usecase.NewScheduler(driver, a.pipeline, nil)
	if err := runner.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return runner.Stop(context.Background())
}

func (a *Application) close() {
	if a.closer != nil {
		_ = a.closer()
	}
}

func buildStore(cfg config.StorageConfig) (ports.SnapshotStore, func() error, error) {
	switch cfg.Backend {
	case "", "file":
		return storage.NewFileStore(cfg.Path), nil, nil
	case "postgres":
		store, err := storage.OpenPostgresStore(cfg.DSN, cfg.SnapshotName)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

func sourceLabel(sources []config.SourceConfig) string {
	if len(sources) == 1 {
		return sources[0].Name
	}
	label := ""
	for i, src := range sources {
		if i > 0 {
			label += " + "
		}
		label += src.Name
	}
	return label
}
