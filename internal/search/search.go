// Package search provides the travel-information web search behind the
// gateway's single tool. With no API key configured, or when the provider
// fails, it degrades to a deterministic fallback result set so the
// conversation can still complete.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	requestTimeout = 10 * time.Second
	maxResults     = 5
)

// Result is one ranked search hit.
type Result struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// Client queries a serper.dev-style search API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a search client. An empty apiKey puts the client in
// fallback-only mode.
func NewClient(apiKey, baseURL string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// Search runs one query against the provider, preferring results from the
// given platform hint. A single attempt is made; any failure yields the
// fallback set.
func (c *Client) Search(ctx context.Context, query, platform string) []Result {
	if c.apiKey == "" {
		return Fallback(query)
	}

	results, err := c.search(ctx, providerQuery(query, platform))
	if err != nil {
		slog.WarnContext(ctx, "search provider failed, using fallback", "query", query, "error", err)
		return Fallback(query)
	}
	if len(results) == 0 {
		return Fallback(query)
	}
	return results
}

func (c *Client) search(ctx context.Context, query string) ([]Result, error) {
	body, err := json.Marshal(map[string]string{"q": query})
	if err != nil {
		return nil, fmt.Errorf("marshalling query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed struct {
		Organic []struct {
			Title   string `json:"title"`
			Snippet string `json:"snippet"`
		} `json:"organic"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	results := make([]Result, 0, len(parsed.Organic))
	for _, o := range parsed.Organic {
		results = append(results, Result{Title: o.Title, Snippet: o.Snippet})
		if len(results) == maxResults {
			break
		}
	}
	return results, nil
}

// providerQuery biases the query toward the requested platform. Xiaohongshu
// reviews have no official search API, so the hint is folded into the query
// text.
func providerQuery(query, platform string) string {
	if platform == "xiaohongshu" {
		return query + " 小红书"
	}
	return query
}

// Fallback returns the deterministic result set used when the provider is
// unavailable or unconfigured.
func Fallback(query string) []Result {
	return []Result{
		{Title: fmt.Sprintf("Top things to do in %s", query), Snippet: "Found great guides on Xiaohongshu about local food and hidden gems."},
		{Title: "Travel Guide 2024", Snippet: "Latest trends and tips for travelers."},
	}
}
