package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"SpaceNewsAgent/internal/config"
)

func TestNewsStrategyFetchParsesResults(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("limit") != "5" {
			t.Errorf("expected limit=5, got %q", q.Get("limit"))
		}
		if q.Get("ordering") != "-published_at" {
			t.Errorf("expected ordering=-published_at, got %q", q.Get("ordering"))
		}

		w.Write([]byte(`{"results":[
			{"id":101,"title":"First","url":"http://a","summary":"s1","published_at":"2026-08-30T10:00:00Z","news_site":"SiteA"},
			{"id":102,"title":"Second","url":"http://b","summary":"s2","published_at":"2026-08-29T10:00:00Z"}
		]}`))
	}))
	defer srv.Close()

	s := NewNewsStrategy(5*time.Second, 48)
	records, err := s.Fetch(context.Background(), config.SourceConfig{
		Name: "test", URL: srv.URL, Limit: 5,
	})
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].ID != "101" || records[0].Title != "First" {
		t.Fatalf("unexpected first record: %+v", records[0])
	}
	if records[0].Enriched() {
		t.Fatalf("fresh records must not carry an enrichment marker")
	}
	if records[1].PublishedAt != "2026-08-29T10:00:00Z" {
		t.Fatalf("unexpected timestamp: %q", records[1].PublishedAt)
	}
}

func TestNewsStrategyFetchNonOKStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	s := NewNewsStrategy(5*time.Second, 48)
	if _, err := s.Fetch(context.Background(), config.SourceConfig{URL: srv.URL}); err == nil {
		t.Fatalf("expected error on non-200 list response")
	}
}

func TestAggregateAppliesSourceName(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"results":[{"id":7,"title":"T","url":"http://x"}]}`))
	}))
	defer srv.Close()

	registry := NewRegistry()
	registry.Register(NewNewsStrategy(5*time.Second, 48))

	agg := NewAggregate(registry, []config.SourceConfig{
		{Name: "primary-feed", Strategy: "spaceflightnews", URL: srv.URL},
	}, nil)

	records, err := agg.FetchList(context.Background())
	if err != nil {
		t.Fatalf("FetchList returned error: %v", err)
	}
	if len(records) != 1 || records[0].NewsSite != "primary-feed" {
		t.Fatalf("expected source name applied, got %+v", records)
	}
}

func TestAggregateUnknownStrategyFails(t *testing.T) {
	t.Parallel()

	agg := NewAggregate(NewRegistry(), []config.SourceConfig{
		{Name: "x", Strategy: "missing"},
	}, nil)

	if _, err := agg.FetchList(context.Background()); err == nil {
		t.Fatalf("expected error for unregistered strategy")
	}
}
