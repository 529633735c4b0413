// Package agent implements the completion orchestrator: a strictly two-phase
// protocol of one tool-enabled planning call followed by one tool-free
// streamed call. The two explicit steps, rather than a generic agent loop,
// are what guarantee a single tool round.
package agent

import (
	"context"
	"io"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/tripd/tripd/internal/tools"
)

// Turn is one prior conversation entry.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is one chat-completion request.
type Request struct {
	Message string
	UserID  string
	History []Turn
}

// DeltaStream is the lazy, finite sequence of text deltas of the final
// answer. Implemented by llm.DeltaStream.
type DeltaStream interface {
	Recv() (string, error)
	Close() error
}

// Provider is the LLM capability the orchestrator drives.
type Provider interface {
	Plan(ctx context.Context, messages []openai.ChatCompletionMessage, tools []openai.Tool) (openai.ChatCompletionMessage, error)
	Stream(ctx context.Context, messages []openai.ChatCompletionMessage) (DeltaStream, error)
}

// Memories is the side-channel memory contract. Both methods degrade
// silently; neither may fail the request.
type Memories interface {
	Recall(ctx context.Context, userID string, limit int) []string
	Remember(ctx context.Context, userID, message string)
}

// ToolExecutor runs one tool call.
type ToolExecutor interface {
	Execute(ctx context.Context, name, rawArgs string) (result, notice string, err error)
}

// Result is a completed orchestration: an optional tool-usage notice and the
// delta stream of the answer. The caller owns the stream and must Close it.
type Result struct {
	ToolNotice string
	Deltas     DeltaStream
}

// Options tune prompt assembly.
type Options struct {
	// HistoryWindow is the number of trailing history turns kept.
	HistoryWindow int
	// MemoryLimit is the number of recalled memories injected.
	MemoryLimit int
}

const (
	defaultHistoryWindow = 6
	defaultMemoryLimit   = 5
)

// Orchestrator turns a user message plus history into a streamed answer.
type Orchestrator struct {
	provider Provider
	memories Memories
	executor ToolExecutor
	opts     Options
}

func New(provider Provider, memories Memories, executor ToolExecutor, opts Options) *Orchestrator {
	if opts.HistoryWindow <= 0 {
		opts.HistoryWindow = defaultHistoryWindow
	}
	if opts.MemoryLimit <= 0 {
		opts.MemoryLimit = defaultMemoryLimit
	}
	return &Orchestrator{provider: provider, memories: memories, executor: executor, opts: opts}
}

// Respond runs the two-phase completion. An error means no usable answer
// could be produced; tool and memory failures are absorbed along the way.
func (o *Orchestrator) Respond(ctx context.Context, req Request) (*Result, error) {
	recalled := o.memories.Recall(ctx, req.UserID, o.opts.MemoryLimit)

	messages := make([]openai.ChatCompletionMessage, 0, o.opts.HistoryWindow+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt(recalled),
	})
	for _, turn := range trimHistory(req.History, o.opts.HistoryWindow) {
		messages = append(messages, openai.ChatCompletionMessage{Role: turn.Role, Content: turn.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Message,
	})

	plan, err := o.provider.Plan(ctx, messages, tools.Definitions())
	if err != nil {
		return nil, err
	}

	var notice strings.Builder
	if len(plan.ToolCalls) > 0 {
		messages = append(messages, plan)
		for _, call := range plan.ToolCalls {
			result, callNotice, err := o.executor.Execute(ctx, call.Function.Name, call.Function.Arguments)
			if err != nil {
				// Substitute an error payload; the conversation still
				// completes on whatever the model can say without the tool.
				slog.WarnContext(ctx, "tool call failed", "tool", call.Function.Name, "error", err)
				result = tools.ErrorResult(err)
			} else {
				notice.WriteString(callNotice)
			}
			messages = append(messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				ToolCallID: call.ID,
				Content:    result,
			})
		}
	}

	// Persist the disclosure before streaming starts so the write is not
	// abandoned when the client disconnects mid-stream.
	o.memories.Remember(ctx, req.UserID, req.Message)

	deltas, err := o.provider.Stream(ctx, messages)
	if err != nil {
		return nil, err
	}

	return &Result{ToolNotice: notice.String(), Deltas: deltas}, nil
}

// Collect drains a result into the full answer text (non-streamed mode).
func (r *Result) Collect() (string, error) {
	defer r.Deltas.Close()

	var b strings.Builder
	for {
		delta, err := r.Deltas.Recv()
		if err == io.EOF {
			return b.String(), nil
		}
		if err != nil {
			return "", err
		}
		b.WriteString(delta)
	}
}

func trimHistory(history []Turn, window int) []Turn {
	if len(history) <= window {
		return history
	}
	return history[len(history)-window:]
}
