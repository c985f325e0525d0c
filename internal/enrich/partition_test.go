package enrich

import (
	"testing"

	"SpaceNewsAgent/internal/domain"
)

func enriched(id, summary string, attempts int) domain.Record {
	rec := domain.Record{ID: id}
	rec.Enrichment = &summary
	rec.EnrichmentAttempts = attempts
	return rec
}

func TestPartitionReusesAttemptedRecords(t *testing.T) {
	t.Parallel()

	prior := map[string]domain.Record{
		"1": enriched("1", "x", 1),
		"2": enriched("2", "", 1), // attempted, failed: still counts as done
	}
	fresh := []domain.Record{{ID: "1"}, {ID: "2"}, {ID: "3"}}

	part := Partition(fresh, prior, 0)

	if len(part.Reusable) != 2 {
		t.Fatalf("expected 2 reusable records, got %d", len(part.Reusable))
	}
	if part.Reusable[0].ID != "1" || part.Reusable[1].ID != "2" {
		t.Fatalf("unexpected reusable ids: %s, %s", part.Reusable[0].ID, part.Reusable[1].ID)
	}
	if *part.Reusable[0].Enrichment != "x" {
		t.Fatalf("reuse must keep the prior enrichment, got %q", *part.Reusable[0].Enrichment)
	}
	if len(part.Pending) != 1 || part.Pending[0].ID != "3" {
		t.Fatalf("expected only id 3 pending, got %+v", part.Pending)
	}
}

func TestPartitionQueuesUnenrichedPriorRecords(t *testing.T) {
	t.Parallel()

	prior := map[string]domain.Record{"1": {ID: "1"}} // no enrichment marker
	part := Partition([]domain.Record{{ID: "1"}}, prior, 0)

	if len(part.Pending) != 1 {
		t.Fatalf("record without enrichment marker must be reprocessed")
	}
}

func TestPartitionEmptyRetryBudget(t *testing.T) {
	t.Parallel()

	prior := map[string]domain.Record{
		"a": enriched("a", "", 1),
		"b": enriched("b", "", 2),
		"c": enriched("c", "ok", 1),
	}
	fresh := []domain.Record{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	part := Partition(fresh, prior, 1)

	if len(part.Pending) != 1 || part.Pending[0].ID != "a" {
		t.Fatalf("expected only id a re-queued, got %+v", part.Pending)
	}
	if part.Pending[0].EnrichmentAttempts != 1 {
		t.Fatalf("re-queued record must carry its attempt history, got %d",
			part.Pending[0].EnrichmentAttempts)
	}
	if len(part.Reusable) != 2 {
		t.Fatalf("expected b (budget spent) and c (successful) reused, got %+v", part.Reusable)
	}
}

func TestPartitionIsPure(t *testing.T) {
	t.Parallel()

	prior := map[string]domain.Record{"1": enriched("1", "x", 1)}
	fresh := []domain.Record{{ID: "1"}, {ID: "2"}}

	Partition(fresh, prior, 0)
	Partition(fresh, prior, 0)

	if fresh[0].Enrichment != nil || fresh[1].Enrichment != nil {
		t.Fatalf("partition must not mutate its inputs")
	}
	if prior["1"].EnrichmentAttempts != 1 {
		t.Fatalf("partition must not mutate the prior map")
	}
}
