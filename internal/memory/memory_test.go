package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/tripd/tripd/internal/storage"
)

type fakeStore struct {
	records []storage.MemoryRecord
	err     error
}

func (f *fakeStore) AppendMemory(m storage.MemoryRecord) error {
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, m)
	return nil
}

func (f *fakeStore) RecentMemories(userID string, limit int) ([]storage.MemoryRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.records) > limit {
		return f.records[:limit], nil
	}
	return f.records, nil
}

func TestWorthwhile(t *testing.T) {
	tests := []struct {
		message string
		want    bool
	}{
		{"我叫小明，喜欢爬山", true},
		{"我住在上海", true},
		{"My name is Alex", true},
		{"I'm from Singapore", true},
		{"I'm planning a trip to Kyoto", false}, // planning, not a disclosure pattern
		{"I like street food", true},
		{"北京天气怎么样", false},
		{"嗯", false},
		{"我", false}, // below minimum length
	}
	for _, tt := range tests {
		if got := Worthwhile(tt.message); got != tt.want {
			t.Errorf("Worthwhile(%q) = %v, want %v", tt.message, got, tt.want)
		}
	}
}

func TestRememberSkipsNonDisclosures(t *testing.T) {
	store := &fakeStore{}
	a := NewAdapter(store)

	a.Remember(context.Background(), "user-a", "帮我查一下明天的航班")
	if len(store.records) != 0 {
		t.Errorf("non-disclosure was persisted: %v", store.records)
	}

	a.Remember(context.Background(), "user-a", "我喜欢安静的海边小镇")
	if len(store.records) != 1 {
		t.Fatalf("disclosure not persisted, records = %d", len(store.records))
	}
	if store.records[0].UserID != "user-a" {
		t.Errorf("UserID = %q, want user-a", store.records[0].UserID)
	}
}

func TestRememberSwallowsStoreErrors(t *testing.T) {
	a := NewAdapter(&fakeStore{err: errors.New("disk full")})
	// Must not panic or propagate.
	a.Remember(context.Background(), "user-a", "我是一名摄影师")
}

func TestRecallDegradesToEmpty(t *testing.T) {
	a := NewAdapter(&fakeStore{err: errors.New("locked")})
	if got := a.Recall(context.Background(), "user-a", 5); got != nil {
		t.Errorf("Recall with failing store = %v, want nil", got)
	}

	a = NewAdapter(&fakeStore{records: []storage.MemoryRecord{
		{Content: "我喜欢日料"},
		{Content: "我住在杭州"},
	}})
	got := a.Recall(context.Background(), "user-a", 5)
	if len(got) != 2 || got[0] != "我喜欢日料" {
		t.Errorf("Recall = %v, want two snippets in order", got)
	}
}

func TestRecallAnonymousUser(t *testing.T) {
	a := NewAdapter(&fakeStore{records: []storage.MemoryRecord{{Content: "x"}}})
	if got := a.Recall(context.Background(), "", 5); got != nil {
		t.Errorf("Recall without identity = %v, want nil", got)
	}
}
