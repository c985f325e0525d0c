package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"SpaceNewsAgent/internal/domain"
	"SpaceNewsAgent/internal/enrich"
	"SpaceNewsAgent/internal/ports"
)

// PipelineDeps wires all driven adapters into the run orchestration.
type PipelineDeps struct {
	Source   ports.RecordSource
	Enricher ports.Enricher
	Store    ports.SnapshotStore
	Logger   *slog.Logger

	MaxConcurrent   int
	MaxEmptyRetries int
	SourceLabel     string
	Model           string
}

// Pipeline drives one run: fetch list, partition against the prior snapshot,
// enrich pending records under the concurrency bound, merge, sort and
// persist a single snapshot.
type Pipeline struct {
	source   ports.RecordSource
	enricher ports.Enricher
	store    ports.SnapshotStore
	logger   *slog.Logger

	maxConcurrent   int
	maxEmptyRetries int
	sourceLabel     string
	model           string
}

// NewPipeline constructs the run driver.
func NewPipeline(deps PipelineDeps) *Pipeline {
	maxConcurrent := deps.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 6
	}
	return &Pipeline{
		source:          deps.Source,
		enricher:        deps.Enricher,
		store:           deps.Store,
		logger:          deps.Logger,
		maxConcurrent:   maxConcurrent,
		maxEmptyRetries: deps.MaxEmptyRetries,
		sourceLabel:     deps.SourceLabel,
		model:           deps.Model,
	}
}

// Run executes one full pass. A run either completes or fails before any
// output is written; no failure in one record's path halts its siblings.
func (p *Pipeline) Run(ctx context.Context) error {
	prior, priorByID := p.loadPrior(ctx)

	fresh, err := p.source.FetchList(ctx)
	if err != nil {
		if prior == nil {
			return fmt.Errorf("fetch list: %w", err)
		}
		// Degrade to the prior snapshot: rerun enrichment only for
		// entries that never got one.
		p.log().Warn("list fetch failed, operating on prior snapshot",
			"prior_records", len(prior.Records), "error", err)
		fresh = prior.Records
	}

	part := enrich.Partition(fresh, priorByID, p.maxEmptyRetries)
	p.log().Info("partitioned fresh records",
		"total", len(fresh),
		"reused", len(part.Reusable),
		"pending", len(part.Pending))

	results := p.enrichPending(ctx, part)

	// Completion order is unspecified; re-impose the total order here.
	sort.Slice(results, func(i, j int) bool {
		return results[i].Timestamp() > results[j].Timestamp()
	})

	snap := p.buildSnapshot(results)
	if err := p.store.Save(ctx, snap); err != nil {
		return fmt.Errorf("persist snapshot: %w", err)
	}

	p.log().Info("run complete",
		"records", snap.Count,
		"summaries", snap.Stats.Successful,
		"empty_summaries", snap.Stats.Empty)
	return nil
}

func (p *Pipeline) loadPrior(ctx context.Context) (*domain.Snapshot, map[string]domain.Record) {
	snap, err := p.store.Load(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrNoSnapshot) {
			p.log().Warn("could not load prior snapshot", "error", err)
		}
		return nil, map[string]domain.Record{}
	}
	return snap, snap.ByID()
}

// enrichPending fans out enrichment across the pending set, appending results
// in completion order. Reused records join the output untouched.
func (p *Pipeline) enrichPending(ctx context.Context, part enrich.PartitionResult) []domain.Record {
	results := make([]domain.Record, 0, len(part.Reusable)+len(part.Pending))
	results = append(results, part.Reusable...)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.maxConcurrent)

	for _, rec := range part.Pending {
		rec := rec
		g.Go(func() error {
			enriched := p.safeEnrich(gctx, rec)
			mu.Lock()
			results = append(results, enriched)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// safeEnrich isolates one record's processing: an unexpected panic is logged
// and the record is still emitted with its minimal data.
func (p *Pipeline) safeEnrich(ctx context.Context, rec domain.Record) (out domain.Record) {
	defer func() {
		if r := recover(); r != nil {
			p.log().Error("record enrichment panicked",
				"id", rec.ID, "stage", "enrich", "panic", r)
			out = rec
			if !out.Enriched() {
				out.SetEnrichment(out.FallbackSummary())
			}
		}
	}()
	return p.enricher.Enrich(ctx, rec)
}

func (p *Pipeline) buildSnapshot(records []domain.Record) *domain.Snapshot {
	stats := domain.SummaryStats{Total: len(records)}
	for i := range records {
		// Every persisted record carries an enrichment marker.
		if !records[i].Enriched() {
			records[i].SetEnrichment("")
		}
		if *records[i].Enrichment != "" {
			stats.Successful++
		} else {
			stats.Empty++
		}
	}

	includes := []string{
		"Launch service provider details",
		"Mission descriptions",
		"Rocket configuration information & statistics",
		"Launch site details",
		"Media URLs",
	}
	if stats.Successful > 0 {
		includes = append(includes,
			fmt.Sprintf("AI-generated summaries (%d successful)", stats.Successful))
	}
	if stats.Empty > 0 {
		includes = append(includes,
			fmt.Sprintf("Empty AI summaries (%d failed/unavailable)", stats.Empty))
	}

	return &domain.Snapshot{
		Count:        len(records),
		LastUpdated:  time.Now().UTC().Format(time.RFC3339),
		Source:       p.sourceLabel,
		DataIncludes: includes,
		Model:        p.model,
		Stats:        stats,
		Records:      records,
	}
}

func (p *Pipeline) log() *slog.Logger {
	if p.logger != nil {
		return p.logger
	}
	return slog.Default()
}
