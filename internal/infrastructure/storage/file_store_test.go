package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"SpaceNewsAgent/internal/domain"
)

func TestFileStoreLoadMissingReturnsErrNoSnapshot(t *testing.T) {
	t.Parallel()

	store := NewFileStore(filepath.Join(t.TempDir(), "out", "snapshot.json"))
	if _, err := store.Load(context.Background()); !errors.Is(err, domain.ErrNoSnapshot) {
		t.Fatalf("expected ErrNoSnapshot, got %v", err)
	}
}

func TestFileStoreSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "snapshot.json")
	store := NewFileStore(path)

	summary := "generated"
	snap := &domain.Snapshot{
		Count:       1,
		LastUpdated: "2026-08-31T00:00:00Z",
		Source:      "test-feed",
		Records: []domain.Record{
			{ID: "1", Title: "T", PublishedAt: "2026-08-30T00:00:00Z", Enrichment: &summary},
		},
	}

	if err := store.Save(context.Background(), snap); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	got, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got.Count != 1 || got.Source != "test-feed" {
		t.Fatalf("metadata not round-tripped: %+v", got)
	}
	if len(got.Records) != 1 || !got.Records[0].Enriched() || *got.Records[0].Enrichment != "generated" {
		t.Fatalf("records not round-tripped: %+v", got.Records)
	}
}

func TestFileStoreSaveOverwrites(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "snapshot.json")
	store := NewFileStore(path)
	ctx := context.Background()

	if err := store.Save(ctx, &domain.Snapshot{Count: 3}); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := store.Save(ctx, &domain.Snapshot{Count: 1}); err != nil {
		t.Fatalf("second save: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got.Count != 1 {
		t.Fatalf("expected overwrite, got count %d", got.Count)
	}
}
