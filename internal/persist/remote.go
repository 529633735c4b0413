package persist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Remote stores the documents through the gateway's settings and profile
// endpoints. The gateway performs the key-wise merge, so saves send the
// patch as-is.
type Remote struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewRemote(baseURL, token string) *Remote {
	return &Remote{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (r *Remote) GetSettings(ctx context.Context) (map[string]any, error) {
	return r.get(ctx, "/settings")
}

func (r *Remote) SaveSettings(ctx context.Context, doc map[string]any) error {
	return r.put(ctx, "/settings", doc)
}

func (r *Remote) GetProfile(ctx context.Context) (map[string]any, error) {
	return r.get(ctx, "/profile")
}

func (r *Remote) SaveProfile(ctx context.Context, doc map[string]any) error {
	return r.put(ctx, "/profile", doc)
}

func (r *Remote) get(ctx context.Context, path string) (map[string]any, error) {
	resp, err := r.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc := map[string]any{}
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return doc, nil
}

func (r *Remote) put(ctx context.Context, path string, doc map[string]any) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	resp, err := r.do(ctx, http.MethodPut, path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	return resp.Body.Close()
}

func (r *Remote) do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+r.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	if resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("gateway returned %d for %s %s", resp.StatusCode, method, path)
	}
	return resp, nil
}
