package storage

import (
	"fmt"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// TestMigrationsIdempotent runs Open twice on the same database and verifies
// migrations are not re-applied.
func TestMigrationsIdempotent(t *testing.T) {
	dir := t.TempDir()

	s1, err := Open(dir)
	if err != nil {
		t.Fatalf("first Open failed: %v", err)
	}
	v1, err := s1.AppliedMigrations()
	if err != nil {
		t.Fatalf("AppliedMigrations: %v", err)
	}
	s1.Close()

	s2, err := Open(dir)
	if err != nil {
		t.Fatalf("second Open failed: %v", err)
	}
	defer s2.Close()

	v2, err := s2.AppliedMigrations()
	if err != nil {
		t.Fatalf("AppliedMigrations: %v", err)
	}
	if len(v1) != len(v2) {
		t.Errorf("migration count changed: %d -> %d", len(v1), len(v2))
	}
}

func TestRecentMemoriesNewestFirst(t *testing.T) {
	s := openTestStore(t)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := range 8 {
		err := s.AppendMemory(MemoryRecord{
			ID:        fmt.Sprintf("mem-%d", i),
			UserID:    "user-a",
			Content:   fmt.Sprintf("memory %d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("AppendMemory %d: %v", i, err)
		}
	}
	// Another user's memory must not leak into user-a's results.
	if err := s.AppendMemory(MemoryRecord{ID: "mem-x", UserID: "user-b", Content: "other", CreatedAt: base}); err != nil {
		t.Fatalf("AppendMemory other user: %v", err)
	}

	got, err := s.RecentMemories("user-a", 5)
	if err != nil {
		t.Fatalf("RecentMemories: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("got %d memories, want 5", len(got))
	}
	if got[0].Content != "memory 7" || got[4].Content != "memory 3" {
		t.Errorf("order wrong: first=%q last=%q", got[0].Content, got[4].Content)
	}
	for _, m := range got {
		if m.UserID != "user-a" {
			t.Errorf("memory %s belongs to %s, want user-a", m.ID, m.UserID)
		}
	}
}

func TestSettingsPartialMerge(t *testing.T) {
	s := openTestStore(t)

	if _, err := s.GetSettings("user-a"); err != ErrNotFound {
		t.Fatalf("GetSettings on empty store = %v, want ErrNotFound", err)
	}

	if err := s.SaveSettings("user-a", Settings{"theme": "dark", "language": "zh"}); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}
	if err := s.SaveSettings("user-a", Settings{"background_image_url": "https://example.com/bg.png"}); err != nil {
		t.Fatalf("SaveSettings partial: %v", err)
	}

	got, err := s.GetSettings("user-a")
	if err != nil {
		t.Fatalf("GetSettings: %v", err)
	}
	if got["theme"] != "dark" {
		t.Errorf("theme = %v, want dark (preserved across partial save)", got["theme"])
	}
	if got["background_image_url"] != "https://example.com/bg.png" {
		t.Errorf("background_image_url = %v, want merged value", got["background_image_url"])
	}
}

func TestProfileRoundTrip(t *testing.T) {
	s := openTestStore(t)

	if err := s.SaveProfile("user-a", Profile{"display_name": "小明"}); err != nil {
		t.Fatalf("SaveProfile: %v", err)
	}
	got, err := s.GetProfile("user-a")
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if got["display_name"] != "小明" {
		t.Errorf("display_name = %v, want 小明", got["display_name"])
	}
}
