package enrich

import "SpaceNewsAgent/internal/domain"

// PartitionResult splits a fresh record list into records whose prior result
// can be reused verbatim and records that must go through enrichment.
type PartitionResult struct {
	Reusable []domain.Record
	Pending  []domain.Record
}

// Partition decides reuse versus reprocessing by identity. A fresh record is
// reusable when a prior result exists under the same ID and that result has
// an enrichment attached - an explicit empty string counts as attempted, so
// permanently failing sources are not hammered on every run. Setting
// maxEmptyRetries above zero re-queues empty-enrichment records until their
// attempt counter reaches the cap.
//
// Pure decision function: no I/O. Every reused record is one fewer
// enrichment call.
func Partition(fresh []domain.Record, prior map[string]domain.Record, maxEmptyRetries int) PartitionResult {
	var result PartitionResult
	for _, rec := range fresh {
		old, ok := prior[rec.ID]
		if ok && old.Enriched() && !retryWanted(old, maxEmptyRetries) {
			result.Reusable = append(result.Reusable, old)
			continue
		}
		if ok {
			// Carry the attempt history into the rerun.
			rec.EnrichmentAttempts = old.EnrichmentAttempts
		}
		result.Pending = append(result.Pending, rec)
	}
	return result
}

func retryWanted(old domain.Record, maxEmptyRetries int) bool {
	if maxEmptyRetries <= 0 || old.Enrichment == nil || *old.Enrichment != "" {
		return false
	}
	return old.EnrichmentAttempts <= maxEmptyRetries
}
