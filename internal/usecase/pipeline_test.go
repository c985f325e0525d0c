package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"SpaceNewsAgent/internal/domain"
)

type fakeSource struct {
	records []domain.Record
	err     error
}

func (f *fakeSource) FetchList(_ context.Context) ([]domain.Record, error) {
	return f.records, f.err
}

type fakeStore struct {
	snap  *domain.Snapshot
	saved *domain.Snapshot
}

func (f *fakeStore) Load(_ context.Context) (*domain.Snapshot, error) {
	if f.snap == nil {
		return nil, domain.ErrNoSnapshot
	}
	return f.snap, nil
}

func (f *fakeStore) Save(_ context.Context, snap *domain.Snapshot) error {
	f.saved = snap
	return nil
}

type fakeEnricher struct {
	mu    sync.Mutex
	seen  []string
	apply func(rec domain.Record) domain.Record
}

func (f *fakeEnricher) Enrich(_ context.Context, rec domain.Record) domain.Record {
	f.mu.Lock()
	f.seen = append(f.seen, rec.ID)
	f.mu.Unlock()
	if f.apply != nil {
		return f.apply(rec)
	}
	rec.SetEnrichment("fresh:" + rec.ID)
	return rec
}

func (f *fakeEnricher) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.seen)
}

func enrichedRecord(id, summary, publishedAt string) domain.Record {
	rec := domain.Record{ID: id, PublishedAt: publishedAt}
	rec.Enrichment = &summary
	rec.EnrichmentAttempts = 1
	return rec
}

func TestRunSortsOutputByDescendingTimestamp(t *testing.T) {
	t.Parallel()

	source := &fakeSource{records: []domain.Record{
		{ID: "b", PublishedAt: "2026-08-20T00:00:00Z"},
		{ID: "c", PublishedAt: "2026-08-31T00:00:00Z"},
		{ID: "a", PublishedAt: "2026-08-10T00:00:00Z"},
	}}
	store := &fakeStore{}

	p := NewPipeline(PipelineDeps{
		Source:   source,
		Enricher: &fakeEnricher{},
		Store:    store,
	})

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	want := []string{"c", "b", "a"}
	if store.saved == nil || len(store.saved.Records) != 3 {
		t.Fatalf("expected 3 persisted records, got %+v", store.saved)
	}
	for i, id := range want {
		if store.saved.Records[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, store.saved.Records[i].ID)
		}
	}
}

func TestRunReusesPriorResultsAndSkipsTheirEnrichment(t *testing.T) {
	t.Parallel()

	store := &fakeStore{snap: &domain.Snapshot{Records: []domain.Record{
		enrichedRecord("1", "old summary", "2026-08-30T00:00:00Z"),
		enrichedRecord("2", "", "2026-08-29T00:00:00Z"),
	}}}
	source := &fakeSource{records: []domain.Record{
		{ID: "1", PublishedAt: "2026-08-30T00:00:00Z"},
		{ID: "2", PublishedAt: "2026-08-29T00:00:00Z"},
		{ID: "3", PublishedAt: "2026-08-31T00:00:00Z"},
	}}
	enricher := &fakeEnricher{}

	p := NewPipeline(PipelineDeps{Source: source, Enricher: enricher, Store: store})

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if enricher.calls() != 1 {
		t.Fatalf("expected only record 3 enriched, saw %d calls", enricher.calls())
	}
	byID := store.saved.ByID()
	if *byID["1"].Enrichment != "old summary" {
		t.Fatalf("reused record lost its enrichment: %+v", byID["1"])
	}
	if *byID["2"].Enrichment != "" {
		t.Fatalf("empty-marker record must be reused untouched: %+v", byID["2"])
	}
	if *byID["3"].Enrichment != "fresh:3" {
		t.Fatalf("new record not enriched: %+v", byID["3"])
	}
}

func TestRunFallsBackToPriorSnapshotOnListFailure(t *testing.T) {
	t.Parallel()

	store := &fakeStore{snap: &domain.Snapshot{Records: []domain.Record{
		enrichedRecord("1", "kept", "2026-08-30T00:00:00Z"),
		{ID: "2", PublishedAt: "2026-08-29T00:00:00Z"}, // never attempted
	}}}
	source := &fakeSource{err: errors.New("upstream down")}
	enricher := &fakeEnricher{}

	p := NewPipeline(PipelineDeps{Source: source, Enricher: enricher, Store: store})

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("expected graceful degradation, got %v", err)
	}
	if enricher.calls() != 1 {
		t.Fatalf("only the unenriched prior entry should rerun, saw %d calls", enricher.calls())
	}
	if store.saved == nil || store.saved.Count != 2 {
		t.Fatalf("expected prior records re-persisted, got %+v", store.saved)
	}
}

func TestRunFailsWithoutListAndWithoutPriorSnapshot(t *testing.T) {
	t.Parallel()

	p := NewPipeline(PipelineDeps{
		Source:   &fakeSource{err: errors.New("upstream down")},
		Enricher: &fakeEnricher{},
		Store:    &fakeStore{},
	})

	if err := p.Run(context.Background()); err == nil {
		t.Fatalf("expected run failure with no fallback snapshot")
	}
}

func TestRunPersistedRecordsAlwaysCarryEnrichmentMarker(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	// Enricher that forgets to attach anything.
	enricher := &fakeEnricher{apply: func(rec domain.Record) domain.Record { return rec }}

	p := NewPipeline(PipelineDeps{
		Source:   &fakeSource{records: []domain.Record{{ID: "1"}}},
		Enricher: enricher,
		Store:    store,
	})

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	rec := store.saved.Records[0]
	if rec.Enrichment == nil || *rec.Enrichment != "" {
		t.Fatalf("persisted record must carry an explicit enrichment marker: %+v", rec)
	}
	if store.saved.Stats.Empty != 1 || store.saved.Stats.Total != 1 {
		t.Fatalf("unexpected stats: %+v", store.saved.Stats)
	}
}

func TestRunIsolatesPanickingRecords(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	enricher := &fakeEnricher{apply: func(rec domain.Record) domain.Record {
		if rec.ID == "bad" {
			panic("record exploded")
		}
		rec.SetEnrichment("ok")
		return rec
	}}

	p := NewPipeline(PipelineDeps{
		Source: &fakeSource{records: []domain.Record{
			{ID: "bad", Summary: "minimal", PublishedAt: "2026-08-31T00:00:00Z"},
			{ID: "good", PublishedAt: "2026-08-30T00:00:00Z"},
		}},
		Enricher: enricher,
		Store:    store,
	})

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if store.saved.Count != 2 {
		t.Fatalf("panicking record must still be emitted, got %d records", store.saved.Count)
	}
	byID := store.saved.ByID()
	if *byID["bad"].Enrichment != "minimal" {
		t.Fatalf("panicked record should fall back to its short summary: %+v", byID["bad"])
	}
	if *byID["good"].Enrichment != "ok" {
		t.Fatalf("sibling record affected by panic: %+v", byID["good"])
	}
}

func TestRunSnapshotMetadata(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	p := NewPipeline(PipelineDeps{
		Source:      &fakeSource{records: []domain.Record{{ID: "1"}}},
		Enricher:    &fakeEnricher{},
		Store:       store,
		SourceLabel: "spaceflight-news",
		Model:       "facebook/bart-large-cnn",
	})

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	snap := store.saved
	if snap.Source != "spaceflight-news" || snap.Model != "facebook/bart-large-cnn" {
		t.Fatalf("metadata missing: %+v", snap)
	}
	if snap.LastUpdated == "" {
		t.Fatalf("last_updated must be set")
	}
	if snap.Stats.Successful != 1 || snap.Stats.Total != 1 {
		t.Fatalf("unexpected stats: %+v", snap.Stats)
	}
	if len(snap.DataIncludes) == 0 {
		t.Fatalf("data_includes must describe snapshot contents")
	}
}
