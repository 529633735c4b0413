package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// MemoryRecord is one free-text memory snippet tied to a user. Records are
// append-only; retrieval is recency-ranked.
type MemoryRecord struct {
	ID        string
	UserID    string
	Content   string
	CreatedAt time.Time
}

// Settings is a user's preference document. Values are opaque to the server;
// SaveSettings merges by key.
type Settings map[string]any

// Profile is a user's profile document, same shape and merge semantics as
// Settings.
type Profile map[string]any
