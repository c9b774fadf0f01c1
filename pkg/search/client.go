// Package search talks to a Firecrawl-compatible web search/scrape API.
package search

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

	"deepscout/pkg/config"
	"deepscout/pkg/limiter"
	"deepscout/pkg/retry"
	"deepscout/pkg/splitter"
)

const (
	// searchTimeout bounds one search request end to end.
	searchTimeout = 30 * time.Second

	// postCallPause follows every search call to stay under upstream rate
	// limits. It doubles as the orchestrator's inter-query pause.
	postCallPause = time.Second

	maxResults    = 5
	maxConcurrent = 2
)

// Result is one retrieved page: its URL and rendered text content.
type Result struct {
	URL     string `json:"url"`
	Content string `json:"content"`
}

// StatusError is a non-2xx response from the search API.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("search API returned status %d: %s", e.Code, e.Body)
}

// StatusCode exposes the HTTP status for rate-limit classification.
func (e *StatusError) StatusCode() int { return e.Code }

// Client issues search requests through a concurrency limiter and the retry
// wrapper.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *limiter.Limiter
	retrier    *retry.Retrier
	maxContent int
	pause      func(context.Context, time.Duration)
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.SearchApiURL, "/"),
		apiKey:     cfg.SearchApiKey,
		httpClient: &http.Client{Timeout: searchTimeout},
		limiter:    limiter.New(maxConcurrent),
		retrier:    retry.New(cfg.MaxRetries, time.Duration(cfg.RetryBaseMillis)*time.Millisecond),
		maxContent: splitter.MaxContentChars,
		pause:      sleepCtx,
	}
}

// Search runs one web search for query. The result count is capped from
// depth as min(depth*2, 5). Each item's content is trimmed to the content
// budget at a word boundary and items without content are dropped. Failures
// that survive the retry layer are logged and converted into an empty result
// set so a research run never dies on a search error. Every call, successful
// or not, is followed by a fixed one-second pause.
func (c *Client) Search(ctx context.Context, query string, depth int) []Result {
	limit := depth * 2
	if limit > maxResults {
		limit = maxResults
	}
	if limit < 1 {
		limit = 1
	}

	var items []searchItem
	err := c.retrier.Do(ctx, "search", func(ctx context.Context) error {
		return c.limiter.Do(ctx, func() error {
			var err error
			items, err = c.doSearch(ctx, query, limit)
			return err
		})
	})
	c.pause(ctx, postCallPause)

	if err != nil {
		slog.Warn("search failed, continuing without results", "query", query, "error", err)
		return nil
	}

	results := make([]Result, 0, len(items))
	for _, it := range items {
		content := strings.TrimSpace(it.Markdown)
		if content == "" {
			continue
		}
		results = append(results, Result{
			URL:     it.URL,
			Content: splitter.Truncate(content, c.maxContent),
		})
	}
	return results
}

type searchItem struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Markdown    string `json:"markdown"`
}

type searchResponse struct {
	Success bool         `json:"success"`
	Data    []searchItem `json:"data"`
}

func (c *Client) doSearch(ctx context.Context, query string, limit int) ([]searchItem, error) {
	reqBody := map[string]interface{}{
		"query":   query,
		"limit":   limit,
		"timeout": searchTimeout.Milliseconds(),
		"scrapeOptions": map[string]interface{}{
			"formats": []string{"markdown"},
		},
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/search", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read search response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal search response: %w", err)
	}
	if !parsed.Success {
		return nil, fmt.Errorf("search API reported failure")
	}
	return parsed.Data, nil
}

func sleepCtx(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
