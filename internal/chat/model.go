// Package chat holds the client-side conversation engine: chat and message
// models, the store that owns them, and the session that drives streamed
// generations against the gateway.
package chat

import (
	"time"

	"github.com/tripd/tripd/internal/destinations"
	"github.com/tripd/tripd/internal/weather"
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Delivery is the lifecycle marker of a message: in flight or finalized.
type Delivery string

const (
	DeliveryPending   Delivery = "pending"
	DeliveryDelivered Delivery = "delivered"
)

// Message is one chat entry. An assistant message starts as an empty
// placeholder and is mutated in place while its generation streams.
type Message struct {
	ID           string                     `json:"id"`
	Role         Role                       `json:"role"`
	Content      string                     `json:"content"`
	CreatedAt    time.Time                  `json:"createdAt"`
	Images       []string                   `json:"images,omitempty"`
	Weather      *weather.Snapshot          `json:"weather,omitempty"`
	Destinations []destinations.Destination `json:"destinations,omitempty"`
	Delivery     Delivery                   `json:"deliveryState"`
}

// Chat is one conversation. Messages are append-only apart from in-place
// mutation of the newest assistant placeholder during streaming.
type Chat struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Favorite  bool      `json:"isFavorite"`
	Tags      []string  `json:"tags"`

	// renamed marks a user-supplied title; auto-titling must not touch it.
	renamed bool
}

// defaultTitle is the title of a chat before auto-titling kicks in.
const defaultTitle = "新对话"
