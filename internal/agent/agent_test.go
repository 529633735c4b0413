package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tripd/tripd/internal/llm"
	"github.com/tripd/tripd/internal/search"
	"github.com/tripd/tripd/internal/tools"
)

type fakeMemories struct {
	recalled   []string
	remembered []string
}

func (f *fakeMemories) Recall(_ context.Context, userID string, limit int) []string {
	return f.recalled
}

func (f *fakeMemories) Remember(_ context.Context, userID, message string) {
	f.remembered = append(f.remembered, message)
}

// mockUpstream mimics the DeepSeek chat-completions API. It records every
// request body so tests can assert on call payloads. If planToolCall is
// true, the first (non-streamed) call requests a search_travel_info tool
// call; the streamed call always answers with deltas "你好" + "！".
func mockUpstream(t *testing.T, planToolCall bool) (requests *[]map[string]any, orch *Orchestrator, mems *fakeMemories) {
	t.Helper()

	var bodies []map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		if err := json.Unmarshal(raw, &body); err != nil {
			t.Errorf("upstream got invalid JSON: %v", err)
		}
		bodies = append(bodies, body)

		if stream, _ := body["stream"].(bool); stream {
			w.Header().Set("Content-Type", "text/event-stream")
			fmt.Fprint(w, `data: {"id":"1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"content":"你好"}}]}`+"\n\n")
			fmt.Fprint(w, `data: {"id":"1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"content":"！"}}]}`+"\n\n")
			fmt.Fprint(w, "data: [DONE]\n\n")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if planToolCall {
			fmt.Fprint(w, `{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"","tool_calls":[{"id":"call-1","type":"function","function":{"name":"search_travel_info","arguments":"{\"query\":\"Kyoto food\"}"}}]},"finish_reason":"tool_calls"}]}`)
		} else {
			fmt.Fprint(w, `{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"直接回答"},"finish_reason":"stop"}]}`)
		}
	}))
	t.Cleanup(srv.Close)

	client := llm.NewClient("test-key", srv.URL, "deepseek-chat")
	mems = &fakeMemories{}
	executor := tools.NewExecutor(search.NewClient("", "")) // fallback-only search
	orch = New(LLMProvider{Client: client}, mems, executor, Options{})
	return &bodies, orch, mems
}

func collect(t *testing.T, res *Result) string {
	t.Helper()
	text, err := res.Collect()
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	return text
}

func TestRespondWithoutToolCall(t *testing.T) {
	bodies, orch, _ := mockUpstream(t, false)

	res, err := orch.Respond(context.Background(), Request{Message: "推荐一些旅行地点"})
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}

	if res.ToolNotice != "" {
		t.Errorf("ToolNotice = %q, want empty when no tool was used", res.ToolNotice)
	}
	if got := collect(t, res); got != "你好！" {
		t.Errorf("answer = %q, want 你好！", got)
	}
	if len(*bodies) != 2 {
		t.Fatalf("upstream saw %d calls, want exactly 2 (plan + stream)", len(*bodies))
	}
}

// TestSecondCallNeverCarriesTools asserts the recursion guard: even when the
// planning call requested a tool, the streamed call payload must not contain
// a tools field.
func TestSecondCallNeverCarriesTools(t *testing.T) {
	bodies, orch, _ := mockUpstream(t, true)

	res, err := orch.Respond(context.Background(), Request{Message: "京都有什么好吃的"})
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	collect(t, res)

	if len(*bodies) != 2 {
		t.Fatalf("upstream saw %d calls, want exactly 2", len(*bodies))
	}
	first, second := (*bodies)[0], (*bodies)[1]
	if _, ok := first["tools"]; !ok {
		t.Error("planning call has no tools field")
	}
	if _, ok := second["tools"]; ok {
		t.Error("streamed call carries tools, so tool recursion is possible")
	}

	// The tool round's messages are folded into the second call: assistant
	// tool-call message plus the tool result.
	msgs := second["messages"].([]any)
	last := msgs[len(msgs)-1].(map[string]any)
	if last["role"] != "tool" {
		t.Errorf("last message role = %v, want tool", last["role"])
	}
	if !strings.Contains(last["content"].(string), "Top things to do") {
		t.Errorf("tool result = %v, want fallback search payload", last["content"])
	}

	if !strings.Contains(res.ToolNotice, "Searching general for: Kyoto food") {
		t.Errorf("ToolNotice = %q", res.ToolNotice)
	}
}

func TestRespondInjectsMemoriesAndTrimsHistory(t *testing.T) {
	bodies, orch, mems := mockUpstream(t, false)
	mems.recalled = []string{"我喜欢安静的海边"}

	history := make([]Turn, 10)
	for i := range history {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}
		history[i] = Turn{Role: role, Content: fmt.Sprintf("turn %d", i)}
	}

	_, err := orch.Respond(context.Background(), Request{Message: "hi", UserID: "user-a", History: history})
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}

	msgs := (*bodies)[0]["messages"].([]any)
	// system + 6 trimmed history turns + user message
	if len(msgs) != 8 {
		t.Fatalf("planning call has %d messages, want 8", len(msgs))
	}
	sys := msgs[0].(map[string]any)
	if !strings.Contains(sys["content"].(string), "我喜欢安静的海边") {
		t.Error("system prompt missing recalled memory")
	}
	firstTurn := msgs[1].(map[string]any)
	if firstTurn["content"] != "turn 4" {
		t.Errorf("first history turn = %v, want turn 4 (window of 6)", firstTurn["content"])
	}
}

func TestRespondRemembersDisclosureBeforeStreaming(t *testing.T) {
	_, orch, mems := mockUpstream(t, false)

	_, err := orch.Respond(context.Background(), Request{Message: "我喜欢吃辣", UserID: "user-a"})
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if len(mems.remembered) != 1 || mems.remembered[0] != "我喜欢吃辣" {
		t.Errorf("remembered = %v", mems.remembered)
	}
}

func TestSystemPromptNoMemoriesMarker(t *testing.T) {
	got := systemPrompt(nil)
	if !strings.Contains(got, noMemoriesMarker) {
		t.Errorf("prompt without memories missing marker:\n%s", got)
	}

	got = systemPrompt([]string{"我住在上海"})
	if strings.Contains(got, noMemoriesMarker) {
		t.Error("prompt with memories still contains no-memories marker")
	}
	if !strings.Contains(got, "- 我住在上海") {
		t.Error("prompt missing memory bullet")
	}
}

func TestRespondPropagatesUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"overloaded"}}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := llm.NewClient("test-key", srv.URL, "deepseek-chat")
	orch := New(LLMProvider{Client: client}, &fakeMemories{}, tools.NewExecutor(search.NewClient("", "")), Options{})

	if _, err := orch.Respond(context.Background(), Request{Message: "hi"}); err == nil {
		t.Fatal("Respond succeeded against failing upstream, want error")
	}
}
