package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"SpaceNewsAgent/internal/config"
	"SpaceNewsAgent/internal/domain"
)

// NewsStrategy pulls articles from a spaceflight-news style list API: a JSON
// object whose "results" array holds records with id, url, summary and
// published_at fields.
type NewsStrategy struct {
	client       *http.Client
	defaultLimit int
}

// NewNewsStrategy wires an HTTP client; defaultLimit applies when a source
// config carries no explicit limit.
func NewNewsStrategy(timeout time.Duration, defaultLimit int) *NewsStrategy {
	if defaultLimit <= 0 {
		defaultLimit = 48
	}
	return &NewsStrategy{
		client:       &http.Client{Timeout: timeout},
		defaultLimit: defaultLimit,
	}
}

// Name identifies the strategy inside the registry.
func (s *NewsStrategy) Name() string {
	return "spaceflightnews"
}

type newsItem struct {
	ID          json.Number `json:"id"`
	Title       string      `json:"title"`
	URL         string      `json:"url"`
	Summary     string      `json:"summary"`
	PublishedAt string      `json:"published_at"`
	ImageURL    string      `json:"image_url"`
	NewsSite    string      `json:"news_site"`
}

// Fetch requests the newest articles, ordered by descending publication time.
func (s *NewsStrategy) Fetch(ctx context.Context, cfg config.SourceConfig) ([]domain.Record, error) {
	limit := cfg.Limit
	if limit <= 0 {
		limit = s.defaultLimit
	}

	listURL, err := buildListURL(cfg.URL, map[string]string{
		"limit":    strconv.Itoa(limit),
		"offset":   "0",
		"ordering": "-published_at",
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, listURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list API returned %s", resp.Status)
	}

	var payload struct {
		Results []newsItem `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}

	records := make([]domain.Record, 0, len(payload.Results))
	for _, item := range payload.Results {
		if item.ID.String() == "" {
			continue
		}
		records = append(records, domain.Record{
			ID:          item.ID.String(),
			Title:       item.Title,
			URL:         item.URL,
			Summary:     item.Summary,
			PublishedAt: item.PublishedAt,
			ImageURL:    item.ImageURL,
			NewsSite:    item.NewsSite,
		})
	}
	return records, nil
}

func buildListURL(base string, params map[string]string) (string, error) {
	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid source url %s: %w", base, err)
	}
	query := parsed.Query()
	for k, v := range params {
		query.Set(k, v)
	}
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}
