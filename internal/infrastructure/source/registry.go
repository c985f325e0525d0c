// Package source implements upstream list providers behind a strategy
// registry, so config can mix article feeds and launch-event feeds in one
// pipeline run.
package source

import (
	"context"
	"fmt"
	"log/slog"

	"SpaceNewsAgent/internal/config"
	"SpaceNewsAgent/internal/domain"
	"SpaceNewsAgent/internal/ports"
)

// Strategy captures a single list-provider implementation.
type Strategy interface {
	Name() string
	Fetch(ctx context.Context, cfg config.SourceConfig) ([]domain.Record, error)
}

// Registry keeps a mapping from strategy names to their implementations.
type Registry struct {
	strategies map[string]Strategy
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{strategies: map[string]Strategy{}}
}

// Register adds or replaces a strategy implementation.
func (r *Registry) Register(s Strategy) {
	if r.strategies == nil {
		r.strategies = map[string]Strategy{}
	}
	r.strategies[s.Name()] = s
}

// Resolve returns a strategy by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Strategy, error) {
	if s, ok := r.strategies[name]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("source strategy %s is not registered", name)
}

// Aggregate implements ports.RecordSource across all configured sources.
type Aggregate struct {
	registry *Registry
	sources  []config.SourceConfig
	logger   *slog.Logger
}

var _ ports.RecordSource = (*Aggregate)(nil)

// NewAggregate wires the strategy registry with config-defined sources.
func NewAggregate(reg *Registry, sources []config.SourceConfig, logger *slog.Logger) *Aggregate {
	return &Aggregate{registry: reg, sources: sources, logger: logger}
}

// FetchList iterates over configured sources and concatenates their records.
// Any source failure fails the whole list fetch; the pipeline driver decides
// whether a prior snapshot can stand in.
func (a *Aggregate) FetchList(ctx context.Context) ([]domain.Record, error) {
	if a.registry == nil {
		return nil, fmt.Errorf("source registry is not configured")
	}

	var aggregated []domain.Record
	for _, src := range a.sources {
		strategy, err := a.registry.Resolve(src.Strategy)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", src.Name, err)
		}

		records, err := strategy.Fetch(ctx, src)
		if err != nil {
			return nil, fmt.Errorf("fetch source %s: %w", src.Name, err)
		}

		for i := range records {
			if records[i].NewsSite == "" && records[i].Launch == nil {
				records[i].NewsSite = src.Name
			}
		}
		a.debug("source produced records", "source", src.Name, "count", len(records))
		aggregated = append(aggregated, records...)
	}

	a.debug("aggregate source done", "total_records", len(aggregated))
	return aggregated, nil
}

func (a *Aggregate) debug(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Debug(msg, args...)
	}
}
