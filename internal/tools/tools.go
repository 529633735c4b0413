// Package tools defines the tool surface offered to the model during the
// planning call and executes requested tool calls.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/tripd/tripd/internal/search"
)

// SearchTravelInfo is the only tool the gateway exposes.
const SearchTravelInfo = "search_travel_info"

// Searcher runs one travel-information search. Implemented by search.Client.
type Searcher interface {
	Search(ctx context.Context, query, platform string) []search.Result
}

// Definitions returns the tool definitions passed to the planning call.
func Definitions() []openai.Tool {
	return []openai.Tool{
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        SearchTravelInfo,
				Description: "Search for travel information, guides, and reviews primarily from Xiaohongshu (Little Red Book) and other travel sites.",
				Parameters: jsonschema.Definition{
					Type: jsonschema.Object,
					Properties: map[string]jsonschema.Definition{
						"query": {
							Type:        jsonschema.String,
							Description: `The search query optimized for finding travel guides (e.g., "Kyoto food guide xiaohongshu")`,
						},
						"platform": {
							Type:        jsonschema.String,
							Enum:        []string{"xiaohongshu", "general"},
							Description: "Preferred platform for information.",
						},
					},
					Required: []string{"query"},
				},
			},
		},
	}
}

type searchArgs struct {
	Query    string `json:"query"`
	Platform string `json:"platform"`
}

// Executor dispatches tool calls requested by the model.
type Executor struct {
	searcher Searcher
}

func NewExecutor(searcher Searcher) *Executor {
	return &Executor{searcher: searcher}
}

// Execute runs one tool call and returns its result payload as JSON, plus a
// human-readable notice describing what was done. Unknown tools and
// malformed arguments return an error; the orchestrator substitutes an
// error result rather than failing the request.
func (e *Executor) Execute(ctx context.Context, name, rawArgs string) (result, notice string, err error) {
	if name != SearchTravelInfo {
		return "", "", fmt.Errorf("unknown tool %q", name)
	}

	var args searchArgs
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		return "", "", fmt.Errorf("parsing %s arguments: %w", name, err)
	}
	if args.Platform == "" {
		args.Platform = "general"
	}

	results := e.searcher.Search(ctx, args.Query, args.Platform)
	payload, err := json.Marshal(map[string]any{"results": results})
	if err != nil {
		return "", "", fmt.Errorf("encoding %s result: %w", name, err)
	}

	notice = fmt.Sprintf("🔍 Searching %s for: %s\n", args.Platform, args.Query)
	return string(payload), notice, nil
}

// ErrorResult is the substitute payload for a failed tool call.
func ErrorResult(err error) string {
	payload, _ := json.Marshal(map[string]any{"results": []any{}, "error": err.Error()})
	return string(payload)
}
