package ports

import (
	"context"
	"time"

	"SpaceNewsAgent/internal/domain"
)

// RecordSource pulls the fresh record list from upstream providers.
type RecordSource interface {
	FetchList(ctx context.Context) ([]domain.Record, error)
}

// SummaryParams tune a single summarization call.
type SummaryParams struct {
	MaxNewTokens int
	MinLength    int
	Retries      int
}

// Summarizer sends one piece of text to the inference backend. An empty
// string means failure; implementations never surface errors to callers.
type Summarizer interface {
	Summarize(ctx context.Context, text string, params SummaryParams) string
}

// ArticleFetcher retrieves a page and extracts its plain text.
type ArticleFetcher interface {
	ExtractText(ctx context.Context, url string) (string, error)
}

// LaunchEnhancer upgrades a basic launch record with detail-API fields.
// Failures degrade to the record as given, they never abort it.
type LaunchEnhancer interface {
	Enhance(ctx context.Context, rec domain.Record) domain.Record
}

// Enricher attaches a summary to one record. Always returns a record.
type Enricher interface {
	Enrich(ctx context.Context, rec domain.Record) domain.Record
}

// SnapshotStore persists the full run output as one overwritten document.
// Load returns domain.ErrNoSnapshot when nothing has been persisted yet.
type SnapshotStore interface {
	Load(ctx context.Context) (*domain.Snapshot, error)
	Save(ctx context.Context, snap *domain.Snapshot) error
}

// Scheduler controls when pipeline runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
