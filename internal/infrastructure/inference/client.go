// Package inference implements the summarization client against a hosted
// text-generation endpoint with bearer auth, bounded retries and a shared
// process-wide concurrency gate.
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"SpaceNewsAgent/internal/config"
	"SpaceNewsAgent/internal/ports"
)

// outcome classifies one backend attempt; the retry loop is driven by
// matching on it rather than by thrown signals.
type outcome int

const (
	outcomeSuccess outcome = iota
	outcomeRetryable
	outcomeTerminal
)

type attemptResult struct {
	kind outcome
	text string
	err  error
}

// Client talks to the inference backend. It is stateless beyond the shared
// HTTP transport and safe for concurrent use; the semaphore caps in-flight
// calls process-wide regardless of how many records fan out at once.
type Client struct {
	endpoint string
	token    string
	http     *http.Client
	gate     *semaphore.Weighted
	logger   *slog.Logger

	// backoffBase is the unit for the 2^attempt sleep; tests shrink it.
	backoffBase time.Duration
}

var _ ports.Summarizer = (*Client)(nil)

// NewClient builds a summarization client from configuration. maxConcurrent
// bounds simultaneous backend calls across all callers sharing this client.
func NewClient(cfg config.InferenceConfig, maxConcurrent int, timeout time.Duration, logger *slog.Logger) *Client {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Client{
		endpoint:    cfg.Endpoint(),
		token:       cfg.Token,
		http:        &http.Client{Timeout: timeout},
		gate:        semaphore.NewWeighted(int64(maxConcurrent)),
		logger:      logger,
		backoffBase: time.Second,
	}
}

// Summarize submits text for summarization and returns the generated summary,
// or an empty string after all attempts are exhausted. It never returns an
// error: every failure path is logged and normalized to "".
func (c *Client) Summarize(ctx context.Context, text string, params ports.SummaryParams) string {
	retries := params.Retries
	if retries <= 0 {
		retries = 1
	}

	payload, err := json.Marshal(buildPayload(text, params))
	if err != nil {
		c.log().Error("marshal inference payload", "error", err)
		return ""
	}

	for attempt := 1; attempt <= retries; attempt++ {
		res := c.attempt(ctx, payload)
		switch res.kind {
		case outcomeSuccess:
			return res.text
		case outcomeTerminal:
			return ""
		}

		if attempt < retries {
			wait := c.backoffBase * (1 << attempt) // 2^attempt units
			c.log().Warn("inference call failed, backing off",
				"attempt", attempt, "wait", wait, "error", res.err)
			select {
			case <-ctx.Done():
				return ""
			case <-time.After(wait):
			}
			continue
		}
		c.log().Warn("inference call failed after all attempts",
			"attempts", retries, "error", res.err)
	}

	return ""
}

func (c *Client) attempt(ctx context.Context, payload []byte) attemptResult {
	if err := c.gate.Acquire(ctx, 1); err != nil {
		return attemptResult{kind: outcomeTerminal, err: err}
	}
	defer c.gate.Release(1)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return attemptResult{kind: outcomeTerminal, err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		// Transport failures (timeouts included) consume an attempt.
		return attemptResult{kind: outcomeRetryable, err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return attemptResult{kind: outcomeRetryable, err: err}
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return attemptResult{kind: outcomeSuccess, text: extractSummary(body)}
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable:
		return attemptResult{
			kind: outcomeRetryable,
			err:  fmt.Errorf("retryable inference status %s", resp.Status),
		}
	default:
		c.log().Warn("inference returned non-retryable status",
			"status", resp.Status, "body", strings.TrimSpace(string(body)))
		return attemptResult{kind: outcomeTerminal,
			err: fmt.Errorf("inference status %s", resp.Status)}
	}
}

func buildPayload(text string, params ports.SummaryParams) map[string]any {
	parameters := map[string]any{"max_new_tokens": params.MaxNewTokens}
	if params.MinLength > 0 {
		parameters["min_length"] = params.MinLength
	}
	return map[string]any{"inputs": text, "parameters": parameters}
}

type generation struct {
	SummaryText   string `json:"summary_text"`
	GeneratedText string `json:"generated_text"`
}

// extractSummary normalizes the three known response shapes: a list of
// generation objects, a single object, or a bare string. Anything else
// yields an empty string.
func extractSummary(body []byte) string {
	var list []generation
	if err := json.Unmarshal(body, &list); err == nil && len(list) > 0 {
		return pick(list[0])
	}

	var single generation
	if err := json.Unmarshal(body, &single); err == nil && pick(single) != "" {
		return pick(single)
	}

	var plain string
	if err := json.Unmarshal(body, &plain); err == nil {
		return strings.TrimSpace(plain)
	}

	return ""
}

func pick(g generation) string {
	if g.SummaryText != "" {
		return strings.TrimSpace(g.SummaryText)
	}
	return strings.TrimSpace(g.GeneratedText)
}

func (c *Client) log() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return slog.Default()
}
