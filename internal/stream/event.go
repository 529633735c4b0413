// Package stream defines the wire protocol between the chat gateway and its
// clients: a Server-Sent-Events framing of typed JSON events terminated by a
// sentinel line.
package stream

// Event types carried on the wire.
const (
	TypeTools   = "tools"
	TypeContent = "content"
)

// Sentinel is the payload of the terminal SSE line (`data: [DONE]`).
const Sentinel = "[DONE]"

// Event is one frame of the chat stream. A "tools" event carries a
// human-readable tool-usage notice and appears at most once, before any
// "content" event. A "content" event carries one text delta.
type Event struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}
