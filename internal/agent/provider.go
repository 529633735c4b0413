package agent

import (
	"context"

	openai "github.com/sashabaranov/go-openai"

	"github.com/tripd/tripd/internal/llm"
)

// LLMProvider adapts *llm.Client to the Provider interface.
type LLMProvider struct {
	Client *llm.Client
}

func (p LLMProvider) Plan(ctx context.Context, messages []openai.ChatCompletionMessage, tools []openai.Tool) (openai.ChatCompletionMessage, error) {
	return p.Client.Plan(ctx, messages, tools)
}

func (p LLMProvider) Stream(ctx context.Context, messages []openai.ChatCompletionMessage) (DeltaStream, error) {
	return p.Client.Stream(ctx, messages)
}
