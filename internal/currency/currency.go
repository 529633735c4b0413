// Package currency fetches exchange rates from the Frankfurter API.
package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const defaultBaseURL = "https://api.frankfurter.app"

// Client queries latest exchange rates.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient() *Client {
	return &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// NewClientWithBaseURL creates a client pointing at a custom base URL (for
// testing).
func NewClientWithBaseURL(baseURL string) *Client {
	c := NewClient()
	c.baseURL = baseURL
	return c
}

// Rate returns the latest conversion rate from one currency to another.
func (c *Client) Rate(ctx context.Context, from, to string) (float64, error) {
	q := url.Values{"from": {from}, "to": {to}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/latest?"+q.Encode(), nil)
	if err != nil {
		return 0, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetching rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var parsed struct {
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return 0, fmt.Errorf("decoding rates: %w", err)
	}

	rate, ok := parsed.Rates[to]
	if !ok {
		return 0, fmt.Errorf("no rate for %s", to)
	}
	return rate, nil
}

// Convert converts amount from one currency to another at the latest rate.
func (c *Client) Convert(ctx context.Context, amount float64, from, to string) (float64, error) {
	rate, err := c.Rate(ctx, from, to)
	if err != nil {
		return 0, err
	}
	return amount * rate, nil
}
