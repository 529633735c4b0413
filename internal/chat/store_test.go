package chat

import (
	"strings"
	"testing"
)

func TestNewChatPrependsAndSelects(t *testing.T) {
	s := NewStore()

	first := s.NewChat()
	second := s.NewChat()

	if got := s.CurrentID(); got != second {
		t.Fatalf("current chat = %q, want %q", got, second)
	}
	chats := s.Chats()
	if len(chats) != 2 {
		t.Fatalf("expected 2 chats, got %d", len(chats))
	}
	if chats[0].ID != second || chats[1].ID != first {
		t.Fatalf("expected newest chat first, got %q then %q", chats[0].ID, chats[1].ID)
	}
	if chats[0].Title != defaultTitle {
		t.Fatalf("new chat title = %q, want %q", chats[0].Title, defaultTitle)
	}
}

func TestSelectUnknownChat(t *testing.T) {
	s := NewStore()
	id := s.NewChat()

	if s.Select("chat-nope") {
		t.Fatal("selecting an unknown chat should report false")
	}
	if got := s.CurrentID(); got != id {
		t.Fatalf("selection changed to %q after failed select", got)
	}
}

func TestDeleteClearsSelection(t *testing.T) {
	s := NewStore()
	keep := s.NewChat()
	id := s.NewChat()

	s.Delete(id)

	if got := s.CurrentID(); got != "" {
		t.Fatalf("current chat = %q after deleting it, want empty", got)
	}
	if _, ok := s.Get(id); ok {
		t.Fatal("deleted chat still retrievable")
	}
	if _, ok := s.Get(keep); !ok {
		t.Fatal("unrelated chat was removed")
	}
}

func TestAppendAndUpdateAfterDelete(t *testing.T) {
	s := NewStore()
	id := s.NewChat()
	s.AppendMessage(id, Message{ID: "m1", Role: RoleUser, Content: "hi"})
	s.Delete(id)

	if s.AppendMessage(id, Message{ID: "m2"}) {
		t.Fatal("append to deleted chat should report false")
	}
	if s.UpdateMessage(id, "m1", func(m *Message) { m.Content = "changed" }) {
		t.Fatal("update in deleted chat should report false")
	}
}

func TestUpdateMessageMissingMessage(t *testing.T) {
	s := NewStore()
	id := s.NewChat()
	s.AppendMessage(id, Message{ID: "m1", Role: RoleUser, Content: "hi"})

	if s.UpdateMessage(id, "m-missing", func(m *Message) { m.Content = "x" }) {
		t.Fatal("update of missing message should report false")
	}

	ok := s.UpdateMessage(id, "m1", func(m *Message) { m.Content = "hello" })
	if !ok {
		t.Fatal("update of existing message failed")
	}
	c, _ := s.Get(id)
	if c.Messages[0].Content != "hello" {
		t.Fatalf("content = %q, want %q", c.Messages[0].Content, "hello")
	}
}

func TestAutoTitle(t *testing.T) {
	s := NewStore()
	id := s.NewChat()
	s.AppendMessage(id, Message{ID: "m1", Role: RoleUser, Content: "帮我规划北京三日游"})

	s.AutoTitle(id, "帮我规划北京三日游")

	c, _ := s.Get(id)
	if c.Title != "帮我规划北京三日游" {
		t.Fatalf("title = %q", c.Title)
	}
}

func TestAutoTitleSkipsRenamedChat(t *testing.T) {
	s := NewStore()
	id := s.NewChat()
	s.Rename(id, "我的行程")

	s.AutoTitle(id, "帮我订酒店")

	c, _ := s.Get(id)
	if c.Title != "我的行程" {
		t.Fatalf("manual title overwritten: %q", c.Title)
	}
}

func TestAutoTitleSkipsOlderChat(t *testing.T) {
	s := NewStore()
	id := s.NewChat()
	for _, mid := range []string{"m1", "m2", "m3", "m4"} {
		s.AppendMessage(id, Message{ID: mid, Role: RoleUser, Content: "..."})
	}

	s.AutoTitle(id, "新的话题")

	c, _ := s.Get(id)
	if c.Title != defaultTitle {
		t.Fatalf("title of established chat changed: %q", c.Title)
	}
}

func TestDeriveTitle(t *testing.T) {
	short := "北京周末去哪玩"
	if got := DeriveTitle(short); got != short {
		t.Fatalf("short title changed: %q", got)
	}

	long := strings.Repeat("游", 40)
	got := DeriveTitle(long)
	want := strings.Repeat("游", 30) + "..."
	if got != want {
		t.Fatalf("long title = %q, want %q", got, want)
	}
}

func TestSearch(t *testing.T) {
	s := NewStore()
	a := s.NewChat()
	s.Rename(a, "Beijing Trip")
	b := s.NewChat()
	s.AppendMessage(b, Message{ID: "m1", Role: RoleUser, Content: "上海的天气怎么样"})
	s.NewChat()

	if got := s.Search("beijing"); len(got) != 1 || got[0].ID != a {
		t.Fatalf("title search got %d results", len(got))
	}
	if got := s.Search("上海"); len(got) != 1 || got[0].ID != b {
		t.Fatalf("content search got %d results", len(got))
	}
	if got := s.Search(""); len(got) != 3 {
		t.Fatalf("empty query returned %d chats, want all 3", len(got))
	}
	if got := s.Search("nothing-matches"); len(got) != 0 {
		t.Fatalf("expected no results, got %d", len(got))
	}
}

func TestToggleFavorite(t *testing.T) {
	s := NewStore()
	id := s.NewChat()

	s.ToggleFavorite(id)
	if c, _ := s.Get(id); !c.Favorite {
		t.Fatal("favorite not set")
	}
	s.ToggleFavorite(id)
	if c, _ := s.Get(id); c.Favorite {
		t.Fatal("favorite not cleared")
	}
}

func TestHistoryTurns(t *testing.T) {
	s := NewStore()
	id := s.NewChat()
	s.AppendMessage(id, Message{ID: "m1", Role: RoleUser, Content: "你好"})
	s.AppendMessage(id, Message{ID: "m2", Role: RoleAssistant, Content: "你好！需要什么帮助？"})

	turns := s.History(id)
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(turns))
	}
	if turns[0].Role != "user" || turns[0].Content != "你好" {
		t.Fatalf("unexpected first turn: %+v", turns[0])
	}
	if turns[1].Role != "assistant" {
		t.Fatalf("unexpected second turn role: %q", turns[1].Role)
	}

	if got := s.History("chat-missing"); got != nil {
		t.Fatalf("history of missing chat = %v, want nil", got)
	}
}

func TestSnapshotsAreIsolated(t *testing.T) {
	s := NewStore()
	id := s.NewChat()
	s.AppendMessage(id, Message{ID: "m1", Role: RoleUser, Content: "original"})

	c, _ := s.Get(id)
	c.Messages[0].Content = "mutated"

	again, _ := s.Get(id)
	if again.Messages[0].Content != "original" {
		t.Fatal("snapshot mutation leaked into the store")
	}
}
