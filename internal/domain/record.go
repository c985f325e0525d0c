package domain

import "errors"

// ErrNoSnapshot signals that no prior snapshot exists in the configured store.
var ErrNoSnapshot = errors.New("no snapshot found")

// Record is one unit of content (news article or launch event) flowing
// through the pipeline. Identity is the stable upstream ID; Enrichment is nil
// until summarization has been attempted, then holds the generated text or an
// explicit empty string meaning "attempted, unavailable".
type Record struct {
	ID          string `json:"id"`
	Title       string `json:"title,omitempty"`
	URL         string `json:"url,omitempty"`
	Summary     string `json:"summary,omitempty"`
	PublishedAt string `json:"published_at,omitempty"`
	NewsSite    string `json:"news_site,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`

	Enrichment         *string `json:"enrichment"`
	EnrichmentAttempts int     `json:"enrichment_attempts,omitempty"`

	// Launch carries denormalized launch-event fields when the record comes
	// from the upcoming-launches source; nil for plain articles.
	Launch *LaunchInfo `json:"launch,omitempty"`
}

// Enriched reports whether summarization has been attempted for this record.
// An explicit empty-string result still counts as attempted.
func (r *Record) Enriched() bool {
	return r.Enrichment != nil
}

// SetEnrichment attaches a summarization result and bumps the attempt counter.
func (r *Record) SetEnrichment(text string) {
	r.Enrichment = &text
	r.EnrichmentAttempts++
}

// FallbackSummary is the short-form text used when full enrichment is
// impossible: the upstream summary for articles, the mission description for
// launch events, otherwise empty.
func (r *Record) FallbackSummary() string {
	if r.Summary != "" {
		return r.Summary
	}
	if r.Launch != nil {
		return r.Launch.MissionDescription
	}
	return ""
}

// Timestamp returns the field used for output ordering: published_at for
// articles, the launch net time for launch events. RFC3339 strings compare
// correctly as raw strings.
func (r *Record) Timestamp() string {
	if r.PublishedAt != "" {
		return r.PublishedAt
	}
	if r.Launch != nil {
		return r.Launch.Net
	}
	return ""
}

// LaunchInfo mirrors the flattened launch fields exposed by the upcoming
// launches API: provider, mission, site, rocket configuration and
// manufacturer details plus media links.
type LaunchInfo struct {
	Status      string `json:"status,omitempty"`
	Net         string `json:"net,omitempty"`
	WindowStart string `json:"window_start,omitempty"`
	WindowEnd   string `json:"window_end,omitempty"`

	ProviderName        string `json:"lsp_name,omitempty"`
	ProviderDescription string `json:"lsp_description,omitempty"`
	ProviderType        string `json:"lsp_type,omitempty"`
	ProviderCountry     string `json:"lsp_country,omitempty"`
	ProviderLogo        string `json:"lsp_logo,omitempty"`

	MissionName        string `json:"mission_name,omitempty"`
	MissionDescription string `json:"mission_description,omitempty"`
	MissionType        string `json:"mission_type,omitempty"`
	Orbit              string `json:"orbit,omitempty"`

	LaunchSite string `json:"launch_site,omitempty"`
	Pad        string `json:"pad,omitempty"`
	Location   string `json:"location,omitempty"`

	Rocket                   string `json:"rocket,omitempty"`
	RocketDescription        string `json:"rocket_config_description,omitempty"`
	RocketFamily             string `json:"rocket_config_family,omitempty"`
	RocketFullName           string `json:"rocket_config_full_name,omitempty"`
	RocketTotalLaunches      int    `json:"rocket_config_total_launch_count"`
	RocketSuccessfulLaunches int    `json:"rocket_config_successful_launches"`
	RocketFailedLaunches     int    `json:"rocket_config_failed_launches"`
	RocketPendingLaunches    int    `json:"rocket_config_pending_launches"`

	ManufacturerName               string `json:"rocket_manufacturer_name,omitempty"`
	ManufacturerType               string `json:"rocket_manufacturer_type,omitempty"`
	ManufacturerDescription        string `json:"rocket_manufacturer_description,omitempty"`
	ManufacturerTotalLaunches      int    `json:"rocket_manufacturer_total_launch_count"`
	ManufacturerSuccessfulLaunches int    `json:"rocket_manufacturer_successful_launches"`
	ManufacturerFailedLaunches     int    `json:"rocket_manufacturer_failed_launches"`

	Image       string   `json:"image,omitempty"`
	Infographic string   `json:"infographic,omitempty"`
	WebcastLive bool     `json:"webcast_live"`
	Probability *int     `json:"probability"`
	VideoURLs   []string `json:"video_urls,omitempty"`
}
