package domain

// SummaryStats counts enrichment outcomes across one snapshot.
type SummaryStats struct {
	Successful int `json:"successful_summaries"`
	Empty      int `json:"empty_summaries"`
	Total      int `json:"total_records"`
}

// Snapshot is the full persisted output of one pipeline run: metadata plus
// the ordered record array. Written as a single atomic overwrite, never
// appended to.
type Snapshot struct {
	Count        int          `json:"count"`
	LastUpdated  string       `json:"last_updated"`
	Source       string       `json:"source"`
	DataIncludes []string     `json:"data_includes"`
	Model        string       `json:"ai_model,omitempty"`
	Stats        SummaryStats `json:"ai_summary_stats"`
	Records      []Record     `json:"records"`
}

// ByID indexes the snapshot records for existence lookups on the next run.
func (s *Snapshot) ByID() map[string]Record {
	index := make(map[string]Record, len(s.Records))
	for _, rec := range s.Records {
		if rec.ID != "" {
			index[rec.ID] = rec
		}
	}
	return index
}
