package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tripd/tripd/internal/agent"
	"github.com/tripd/tripd/internal/stream"
)

const (
	connectTimeout = 30 * time.Second
	// streamTimeout bounds one SSE read session; hitting it is a transport
	// failure, not a completion.
	streamTimeout = 300 * time.Second
)

// Client talks to the gateway's chat endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		// No overall client timeout: it would cut streams short. Bounds are
		// applied per call via contexts.
		httpClient: &http.Client{},
	}
}

type chatPayload struct {
	Message string       `json:"message"`
	UserID  string       `json:"userId,omitempty"`
	History []agent.Turn `json:"history,omitempty"`
	Stream  bool         `json:"stream"`
}

// Stream opens a streamed completion and returns the event reader over the
// response body. Cancelling ctx aborts both the request and the read loop.
// The caller must Close the reader.
func (c *Client) Stream(ctx context.Context, message string, history []agent.Turn, userID string) (*stream.Reader, error) {
	ctx, cancel := context.WithTimeout(ctx, streamTimeout)

	resp, err := c.post(ctx, chatPayload{Message: message, UserID: userID, History: history, Stream: true})
	if err != nil {
		cancel()
		return nil, err
	}
	return stream.NewReader(&cancelOnClose{ReadCloser: resp.Body, cancel: cancel}), nil
}

// Complete runs a non-streamed completion and returns the full answer.
func (c *Client) Complete(ctx context.Context, message string, history []agent.Turn, userID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	resp, err := c.post(ctx, chatPayload{Message: message, UserID: userID, History: history})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var body struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	return body.Content, nil
}

func (c *Client) post(ctx context.Context, payload chatPayload) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshalling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		var errBody struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&errBody); err == nil && errBody.Error != "" {
			return nil, fmt.Errorf("gateway returned %d: %s", resp.StatusCode, errBody.Error)
		}
		return nil, fmt.Errorf("gateway returned %d", resp.StatusCode)
	}
	return resp, nil
}

// cancelOnClose wraps a ReadCloser and cancels a context on Close so the
// per-stream timeout does not leak.
type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}
