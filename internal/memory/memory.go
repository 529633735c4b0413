// Package memory adapts the storage layer into the side-channel memory
// contract of the chat gateway: recall never fails a request, and remember
// is best-effort.
package memory

import (
	"context"
	"log/slog"
	"regexp"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/tripd/tripd/internal/storage"
)

// minRememberRunes filters out throwaway inputs ("嗯", "ok") before they are
// persisted as memories.
const minRememberRunes = 3

// disclosurePattern matches first-person self-introductions worth keeping as
// long-lived context.
var disclosurePattern = regexp.MustCompile(
	`我叫|我是|我喜欢|我讨厌|我的|我住在|我打算|我计划|我想去|` +
		`(?i)\b(my name is|i am|i'm from|i like|i live in|i prefer|i plan)\b`,
)

// MemoryStore is the subset of storage.Store the adapter needs.
type MemoryStore interface {
	AppendMemory(m storage.MemoryRecord) error
	RecentMemories(userID string, limit int) ([]storage.MemoryRecord, error)
}

// Adapter provides recall and remember over a MemoryStore.
type Adapter struct {
	store MemoryStore
}

func NewAdapter(store MemoryStore) *Adapter {
	return &Adapter{store: store}
}

// Recall returns up to limit memory snippets for userID, newest first.
// Failures degrade to an empty result: the chat request must proceed without
// memories rather than fail.
func (a *Adapter) Recall(ctx context.Context, userID string, limit int) []string {
	if userID == "" || limit <= 0 {
		return nil
	}

	records, err := a.store.RecentMemories(userID, limit)
	if err != nil {
		slog.WarnContext(ctx, "memory recall failed", "user_id", userID, "error", err)
		return nil
	}

	snippets := make([]string, 0, len(records))
	for _, r := range records {
		snippets = append(snippets, r.Content)
	}
	return snippets
}

// Remember persists message as a memory if it looks like a personal
// disclosure. Errors are logged and swallowed; the response path never
// blocks on memory persistence.
func (a *Adapter) Remember(ctx context.Context, userID, message string) {
	if userID == "" || !Worthwhile(message) {
		return
	}

	err := a.store.AppendMemory(storage.MemoryRecord{
		ID:        uuid.NewString(),
		UserID:    userID,
		Content:   message,
		CreatedAt: time.Now(),
	})
	if err != nil {
		slog.WarnContext(ctx, "memory save failed", "user_id", userID, "error", err)
	}
}

// Worthwhile reports whether message should be kept as a memory.
func Worthwhile(message string) bool {
	if utf8.RuneCountInString(message) < minRememberRunes {
		return false
	}
	return disclosurePattern.MatchString(message)
}
