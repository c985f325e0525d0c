// Package enrich holds the per-record enrichment orchestration and the
// change-detection partitioner that decides reuse versus reprocessing.
package enrich

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"SpaceNewsAgent/internal/domain"
	"SpaceNewsAgent/internal/ports"
	"SpaceNewsAgent/internal/textio"
)

const (
	chunkMaxNewTokens  = 512
	launchMaxNewTokens = 150
	launchMinLength    = 30
)

// Orchestrator turns one record into an enriched record. It never fails:
// every failure path falls back to the record's short summary or an explicit
// empty string.
type Orchestrator struct {
	fetcher    ports.ArticleFetcher
	summarizer ports.Summarizer
	enhancer   ports.LaunchEnhancer
	logger     *slog.Logger

	chunkChars  int
	targetWords int
	retries     int
}

var _ ports.Enricher = (*Orchestrator)(nil)

// OrchestratorDeps wires collaborators and tuning knobs.
type OrchestratorDeps struct {
	Fetcher     ports.ArticleFetcher
	Summarizer  ports.Summarizer
	Enhancer    ports.LaunchEnhancer
	Logger      *slog.Logger
	ChunkChars  int
	TargetWords int
	Retries     int
}

// NewOrchestrator constructs the enrichment component.
func NewOrchestrator(deps OrchestratorDeps) *Orchestrator {
	chunkChars := deps.ChunkChars
	if chunkChars <= 0 {
		chunkChars = 2000
	}
	retries := deps.Retries
	if retries <= 0 {
		retries = 3
	}
	return &Orchestrator{
		fetcher:     deps.Fetcher,
		summarizer:  deps.Summarizer,
		enhancer:    deps.Enhancer,
		logger:      deps.Logger,
		chunkChars:  chunkChars,
		targetWords: deps.TargetWords,
		retries:     retries,
	}
}

// Enrich attaches a summary to the record. Launch records go through the
// prompt path; article records through fetch, chunk, concurrent summarize and
// condense. Records without a usable source keep their short summary.
func (o *Orchestrator) Enrich(ctx context.Context, rec domain.Record) domain.Record {
	if rec.Launch != nil {
		return o.enrichLaunch(ctx, rec)
	}
	return o.enrichArticle(ctx, rec)
}

func (o *Orchestrator) enrichArticle(ctx context.Context, rec domain.Record) domain.Record {
	if rec.URL == "" {
		rec.SetEnrichment(rec.FallbackSummary())
		return rec
	}

	text, err := o.fetcher.ExtractText(ctx, rec.URL)
	if err != nil || strings.TrimSpace(text) == "" {
		o.warn("article text unavailable, using fallback summary",
			"id", rec.ID, "url", rec.URL, "error", err)
		rec.SetEnrichment(rec.FallbackSummary())
		return rec
	}

	chunks := textio.Chunk(text, o.chunkChars)
	summaries := make([]string, len(chunks))

	// Fan-out barrier: every chunk call finishes before combining. The
	// backend concurrency bound lives in the summarizer's shared gate.
	g, gctx := errgroup.WithContext(ctx)
	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			summaries[i] = o.summarizer.Summarize(gctx, chunk, ports.SummaryParams{
				MaxNewTokens: chunkMaxNewTokens,
				Retries:      o.retries,
			})
			return nil
		})
	}
	_ = g.Wait()

	combined := joinNonEmpty(summaries)
	final := combined
	if len(combined) > o.chunkChars {
		condensed := o.summarizer.Summarize(ctx, combined, ports.SummaryParams{
			MaxNewTokens: chunkMaxNewTokens,
			Retries:      o.retries,
		})
		if condensed != "" {
			final = condensed
		}
	}

	// Guard against over-aggressive condensation collapsing the content.
	if combined != "" && len(strings.Fields(final)) < o.targetWords/2 {
		final = combined
	}

	rec.SetEnrichment(final)
	return rec
}

func (o *Orchestrator) enrichLaunch(ctx context.Context, rec domain.Record) domain.Record {
	if o.enhancer != nil {
		rec = o.enhancer.Enhance(ctx, rec)
	}

	summary := o.summarizer.Summarize(ctx, LaunchPrompt(rec), ports.SummaryParams{
		MaxNewTokens: launchMaxNewTokens,
		MinLength:    launchMinLength,
		Retries:      o.retries,
	})
	if summary == "" {
		o.warn("launch summary unavailable, storing empty marker",
			"id", rec.ID, "name", rec.Title)
	}
	rec.SetEnrichment(summary)
	return rec
}

func joinNonEmpty(parts []string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

func (o *Orchestrator) warn(msg string, args ...any) {
	if o.logger != nil {
		o.logger.Warn(msg, args...)
	}
}
