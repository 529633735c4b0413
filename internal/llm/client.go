// Package llm wraps the DeepSeek chat-completions API (OpenAI-compatible)
// behind the two calls the orchestrator needs: a non-streamed planning call
// with tool definitions and a streamed final call without them.
package llm

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// Client talks to one chat-completion model.
type Client struct {
	api   *openai.Client
	model string
}

// NewClient creates a Client for the given API key, base URL, and model.
// baseURL is overridable so tests can point at an httptest server.
func NewClient(apiKey, baseURL, model string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{
		api:   openai.NewClientWithConfig(cfg),
		model: model,
	}
}

// Plan issues a non-streamed completion with tool definitions enabled and
// returns the assistant message, which may carry tool calls.
func (c *Client) Plan(ctx context.Context, messages []openai.ChatCompletionMessage, tools []openai.Tool) (openai.ChatCompletionMessage, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
		Tools:    tools,
	})
	if err != nil {
		return openai.ChatCompletionMessage{}, fmt.Errorf("planning call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return openai.ChatCompletionMessage{}, fmt.Errorf("planning call returned no choices")
	}
	return resp.Choices[0].Message, nil
}

// Stream issues a streamed completion. The request carries no tool
// definitions, so the final call cannot request another tool round.
func (c *Client) Stream(ctx context.Context, messages []openai.ChatCompletionMessage) (*DeltaStream, error) {
	s, err := c.api.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("streaming call: %w", err)
	}
	return Deltas(s), nil
}
