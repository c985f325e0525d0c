// Package article fetches source pages and reduces them to plain text for
// summarization.
package article

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"SpaceNewsAgent/internal/ports"
)

const userAgent = "SpaceNewsAgent/1.0"

// Fetcher retrieves article pages and extracts their paragraph text. The
// transport caps simultaneous connections per host so concurrent record
// processing stays polite toward individual news sites.
type Fetcher struct {
	client *http.Client
	logger *slog.Logger
}

var _ ports.ArticleFetcher = (*Fetcher)(nil)

// NewFetcher wires an HTTP client with the given total-duration timeout and
// per-host connection cap.
func NewFetcher(timeout time.Duration, maxConnsPerHost int, logger *slog.Logger) *Fetcher {
	transport := http.DefaultTransport
	if maxConnsPerHost > 0 {
		transport = &http.Transport{MaxConnsPerHost: maxConnsPerHost}
	}
	return &Fetcher{
		client: &http.Client{Timeout: timeout, Transport: transport},
		logger: logger,
	}
}

// ExtractText downloads the page at url and returns its readable text: all
// paragraph contents joined by single spaces, falling back to the
// meta-description when the page carries no paragraphs.
func (f *Fetcher) ExtractText(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("page returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse page: %w", err)
	}

	text := extractParagraphs(doc)
	if text == "" {
		if desc, ok := doc.Find(`meta[name="description"]`).First().Attr("content"); ok {
			text = strings.TrimSpace(desc)
		}
	}

	if f.logger != nil {
		f.logger.Debug("extracted page text", "url", url, "chars", len(text))
	}
	return text, nil
}

func extractParagraphs(doc *goquery.Document) string {
	var parts []string
	doc.Find("p").Each(func(_ int, sel *goquery.Selection) {
		if p := strings.Join(strings.Fields(sel.Text()), " "); p != "" {
			parts = append(parts, p)
		}
	})
	return strings.Join(parts, " ")
}
