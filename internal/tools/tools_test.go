package tools

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/tripd/tripd/internal/search"
)

type fakeSearcher struct {
	gotQuery    string
	gotPlatform string
}

func (f *fakeSearcher) Search(_ context.Context, query, platform string) []search.Result {
	f.gotQuery = query
	f.gotPlatform = platform
	return []search.Result{{Title: "攻略", Snippet: "snippet"}}
}

func TestExecuteSearch(t *testing.T) {
	searcher := &fakeSearcher{}
	e := NewExecutor(searcher)

	result, notice, err := e.Execute(context.Background(), SearchTravelInfo, `{"query":"Kyoto food","platform":"xiaohongshu"}`)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if searcher.gotQuery != "Kyoto food" || searcher.gotPlatform != "xiaohongshu" {
		t.Errorf("searcher called with (%q, %q)", searcher.gotQuery, searcher.gotPlatform)
	}
	if !strings.Contains(notice, "Searching xiaohongshu for: Kyoto food") {
		t.Errorf("notice = %q", notice)
	}

	var payload struct {
		Results []search.Result `json:"results"`
	}
	if err := json.Unmarshal([]byte(result), &payload); err != nil {
		t.Fatalf("result is not JSON: %v", err)
	}
	if len(payload.Results) != 1 || payload.Results[0].Title != "攻略" {
		t.Errorf("payload = %+v", payload)
	}
}

func TestExecuteDefaultsPlatform(t *testing.T) {
	searcher := &fakeSearcher{}
	e := NewExecutor(searcher)

	if _, _, err := e.Execute(context.Background(), SearchTravelInfo, `{"query":"桂林"}`); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if searcher.gotPlatform != "general" {
		t.Errorf("platform = %q, want general default", searcher.gotPlatform)
	}
}

func TestExecuteRejectsUnknownTool(t *testing.T) {
	e := NewExecutor(&fakeSearcher{})
	if _, _, err := e.Execute(context.Background(), "delete_everything", `{}`); err == nil {
		t.Fatal("unknown tool accepted, want error")
	}
}

func TestExecuteRejectsMalformedArgs(t *testing.T) {
	e := NewExecutor(&fakeSearcher{})
	if _, _, err := e.Execute(context.Background(), SearchTravelInfo, `{not json`); err == nil {
		t.Fatal("malformed args accepted, want error")
	}
}

func TestErrorResultIsValidJSON(t *testing.T) {
	raw := ErrorResult(context.DeadlineExceeded)
	var payload map[string]any
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		t.Fatalf("ErrorResult not JSON: %v", err)
	}
	if _, ok := payload["error"]; !ok {
		t.Error("ErrorResult missing error field")
	}
}

func TestDefinitionsShape(t *testing.T) {
	defs := Definitions()
	if len(defs) != 1 {
		t.Fatalf("got %d tool definitions, want 1", len(defs))
	}
	if defs[0].Function.Name != SearchTravelInfo {
		t.Errorf("tool name = %q", defs[0].Function.Name)
	}
}
