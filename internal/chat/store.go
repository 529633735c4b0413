package chat

import (
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/tripd/tripd/internal/agent"
)

// titleRuneLimit caps auto-derived chat titles.
const titleRuneLimit = 30

// Store owns the chat list and the current-chat selection. All mutation
// goes through its methods, keeping a single logical writer per chat; reads
// return snapshots. Mutations against a deleted chat are silent no-ops so a
// stream that outlives its chat cannot corrupt anything.
type Store struct {
	mu        sync.Mutex
	chats     []*Chat
	currentID string
	now       func() time.Time
}

func NewStore() *Store {
	return &Store{now: time.Now}
}

// NewChat creates an empty chat, selects it, and returns its ID. New chats
// go to the front of the list.
func (s *Store) NewChat() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	c := &Chat{
		ID:        "chat-" + uuid.NewString(),
		Title:     defaultTitle,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.chats = append([]*Chat{c}, s.chats...)
	s.currentID = c.ID
	return c.ID
}

// Select makes chatID the current chat. Selecting an unknown ID is a no-op
// and reports false.
func (s *Store) Select(chatID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lookup(chatID) == nil {
		return false
	}
	s.currentID = chatID
	return true
}

// CurrentID returns the selected chat's ID, or "".
func (s *Store) CurrentID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentID
}

// Get returns a snapshot of the chat, with ok=false if it no longer exists.
func (s *Store) Get(chatID string) (Chat, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.lookup(chatID)
	if c == nil {
		return Chat{}, false
	}
	return snapshot(c), true
}

// Chats returns a snapshot of all chats, newest first.
func (s *Store) Chats() []Chat {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Chat, len(s.chats))
	for i, c := range s.chats {
		out[i] = snapshot(c)
	}
	return out
}

// Delete removes a chat. Deleting the current chat clears the selection.
func (s *Store) Delete(chatID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, c := range s.chats {
		if c.ID == chatID {
			s.chats = append(s.chats[:i], s.chats[i+1:]...)
			break
		}
	}
	if s.currentID == chatID {
		s.currentID = ""
	}
}

// ToggleFavorite flips the favorite flag.
func (s *Store) ToggleFavorite(chatID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c := s.lookup(chatID); c != nil {
		c.Favorite = !c.Favorite
	}
}

// Rename sets a user-supplied title, which auto-titling never overwrites.
func (s *Store) Rename(chatID, title string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c := s.lookup(chatID); c != nil {
		c.Title = title
		c.renamed = true
	}
}

// Search returns chats whose title or any message content contains query,
// case-insensitively. An empty query returns everything.
func (s *Store) Search(query string) []Chat {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return s.Chats()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Chat
	for _, c := range s.chats {
		if strings.Contains(strings.ToLower(c.Title), query) {
			out = append(out, snapshot(c))
			continue
		}
		for _, m := range c.Messages {
			if strings.Contains(strings.ToLower(m.Content), query) {
				out = append(out, snapshot(c))
				break
			}
		}
	}
	return out
}

// AppendMessage adds a message to the chat and returns false if the chat
// was deleted.
func (s *Store) AppendMessage(chatID string, msg Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.lookup(chatID)
	if c == nil {
		return false
	}
	c.Messages = append(c.Messages, msg)
	c.UpdatedAt = s.now()
	return true
}

// UpdateMessage mutates one message in place via fn. It reports false, and
// does nothing, when the chat or message no longer exists.
func (s *Store) UpdateMessage(chatID, messageID string, fn func(*Message)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.lookup(chatID)
	if c == nil {
		return false
	}
	for i := range c.Messages {
		if c.Messages[i].ID == messageID {
			fn(&c.Messages[i])
			c.UpdatedAt = s.now()
			return true
		}
	}
	return false
}

// AutoTitle derives the chat title from the first user message. It applies
// only to young chats still carrying the default title, and never overrides
// a manual rename.
func (s *Store) AutoTitle(chatID, userMessage string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.lookup(chatID)
	if c == nil || c.renamed || len(c.Messages) > 3 {
		return
	}
	c.Title = DeriveTitle(userMessage)
}

// History returns the chat's messages as role/content turns for the
// gateway request.
func (s *Store) History(chatID string) []agent.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.lookup(chatID)
	if c == nil {
		return nil
	}
	turns := make([]agent.Turn, 0, len(c.Messages))
	for _, m := range c.Messages {
		turns = append(turns, agent.Turn{Role: string(m.Role), Content: m.Content})
	}
	return turns
}

// DeriveTitle cuts a message down to a chat title.
func DeriveTitle(message string) string {
	if utf8.RuneCountInString(message) <= titleRuneLimit {
		return message
	}
	runes := []rune(message)
	return string(runes[:titleRuneLimit]) + "..."
}

// lookup must be called with s.mu held.
func (s *Store) lookup(chatID string) *Chat {
	for _, c := range s.chats {
		if c.ID == chatID {
			return c
		}
	}
	return nil
}

// snapshot deep-copies the message slice so callers cannot mutate store
// state behind the lock.
func snapshot(c *Chat) Chat {
	out := *c
	out.Messages = append([]Message(nil), c.Messages...)
	out.Tags = append([]string(nil), c.Tags...)
	return out
}
