package chat

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tripd/tripd/internal/agent"
	"github.com/tripd/tripd/internal/destinations"
	"github.com/tripd/tripd/internal/intent"
	"github.com/tripd/tripd/internal/stream"
	"github.com/tripd/tripd/internal/weather"
)

// User-visible terminal texts.
const (
	stoppedMarker = "（已停止生成）"
	apologyText   = "抱歉，我现在遇到了一些技术问题。请稍后再试，或重新描述您的问题。"
	askCityText   = "请告诉我您想查询哪个城市的天气信息？例如\"北京天气\"或\"上海今天天气如何？\""
	toolPrefix    = "🔧 "
)

const attachedDestinations = 3

// Streamer opens one streamed completion. Implemented by Client.
type Streamer interface {
	Stream(ctx context.Context, message string, history []agent.Turn, userID string) (*stream.Reader, error)
}

// WeatherLookup resolves a city to its weather snapshot. Implemented by
// weather.Client.
type WeatherLookup interface {
	Current(ctx context.Context, city string) (*weather.Snapshot, error)
}

// Session drives generations for one user against a Store. At most one
// generation is in flight at a time: starting a new one first cancels the
// previous handle. Each generation stays bound to the chat ID captured when
// it started: switching chats mid-stream neither kills it nor redirects
// its output.
type Session struct {
	store   *Store
	client  Streamer
	weather WeatherLookup
	userID  string

	mu         sync.Mutex
	cancel     context.CancelFunc
	genCtx     context.Context
	generating bool
}

func NewSession(store *Store, client Streamer, weather WeatherLookup, userID string) *Session {
	return &Session{store: store, client: client, weather: weather, userID: userID}
}

// SendMessage appends the user message and a placeholder reply to the
// current chat (creating one if none is selected), then streams the answer
// into the placeholder. It blocks until the generation reaches a terminal
// state: completed, cancelled via Stop, or failed. Transport failures are
// absorbed into the chat as an apology message and also returned.
func (s *Session) SendMessage(ctx context.Context, text string, images []string) error {
	chatID := s.store.CurrentID()
	if chatID == "" {
		chatID = s.store.NewChat()
	}
	// Snapshot history before this turn's messages join the chat.
	history := s.store.History(chatID)

	userMsg := Message{
		ID:        "msg-" + uuid.NewString(),
		Role:      RoleUser,
		Content:   text,
		CreatedAt: time.Now(),
		Images:    images,
		Delivery:  DeliveryPending,
	}
	if !s.store.AppendMessage(chatID, userMsg) {
		return fmt.Errorf("chat %s no longer exists", chatID)
	}

	placeholder := Message{
		ID:        "ai-msg-" + uuid.NewString(),
		Role:      RoleAssistant,
		CreatedAt: time.Now(),
		Delivery:  DeliveryPending,
	}
	s.store.AppendMessage(chatID, placeholder)

	genCtx := s.begin(ctx)
	defer s.finish(genCtx)

	// Weather questions are answered entirely on-device: no LLM round trip,
	// just the lookup and a canned summary with the weather card attached.
	if it := intent.Detect(text); it.Kind == intent.Weather {
		s.answerWeatherLocally(genCtx, chatID, userMsg.ID, placeholder.ID, text, it.City)
		return nil
	}

	reader, err := s.client.Stream(genCtx, text, history, s.userID)
	if err != nil {
		s.finalizeFailure(chatID, userMsg.ID, placeholder.ID)
		return err
	}
	defer reader.Close()

	var buf strings.Builder
	titled := false
	for {
		ev, err := reader.Recv()
		if err == io.EOF {
			s.finalizeSuccess(chatID, userMsg.ID, placeholder.ID, text)
			return nil
		}
		if err != nil {
			if genCtx.Err() != nil {
				// Stopped by the user, not broken: distinct terminal state.
				s.finalizeCancelled(chatID, userMsg.ID, placeholder.ID, buf.String())
				return nil
			}
			s.finalizeFailure(chatID, userMsg.ID, placeholder.ID)
			return err
		}

		switch ev.Type {
		case stream.TypeTools:
			buf.WriteString(toolPrefix + ev.Content + "\n\n")
		case stream.TypeContent:
			buf.WriteString(ev.Content)
		default:
			continue
		}

		// Always set from the accumulated buffer, never append in place:
		// stale re-renders cannot double-apply a delta that way.
		content := buf.String()
		s.store.UpdateMessage(chatID, placeholder.ID, func(m *Message) {
			m.Content = content
		})
		if !titled && content != "" {
			s.store.AutoTitle(chatID, text)
			titled = true
		}
	}
}

// Stop cancels the in-flight generation, if any. The sending goroutine
// finalizes the placeholder with the stopped marker.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

// IsGenerating reports whether a generation is in flight.
func (s *Session) IsGenerating() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generating
}

// begin replaces any in-flight generation handle with a fresh one.
func (s *Session) begin(ctx context.Context) context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	genCtx, cancel := context.WithCancel(ctx)
	s.genCtx = genCtx
	s.cancel = cancel
	s.generating = true
	return genCtx
}

// finish clears the generating flag and releases the handle, unless a newer
// generation already took over.
func (s *Session) finish(genCtx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.genCtx != genCtx {
		return
	}
	s.cancel()
	s.cancel = nil
	s.genCtx = nil
	s.generating = false
}

func (s *Session) answerWeatherLocally(ctx context.Context, chatID, userMsgID, placeholderID, userText, city string) {
	content := askCityText
	var snap *weather.Snapshot

	if city != "" {
		if got, err := s.weather.Current(ctx, city); err == nil && got != nil {
			snap = got
			content = fmt.Sprintf(
				"为您查询到%s的天气信息：当前温度 %d°C，%s，湿度 %d%%，风速 %d km/h。未来几天都有不错的天气，建议您根据天气情况安排出行！",
				snap.Location, snap.Temperature, snap.Condition, snap.Humidity, snap.WindSpeed,
			)
		}
	}

	s.store.UpdateMessage(chatID, placeholderID, func(m *Message) {
		m.Content = content
		m.Weather = snap
		m.Delivery = DeliveryDelivered
	})
	s.markDelivered(chatID, userMsgID)
	// Titles always come from what the user asked, not the canned answer.
	s.store.AutoTitle(chatID, userText)
}

// finalizeSuccess marks the turn delivered and attaches destination cards
// when the original message matched the local recommendation patterns.
func (s *Session) finalizeSuccess(chatID, userMsgID, placeholderID, originalText string) {
	var attach []destinations.Destination
	if intent.Detect(originalText).Kind == intent.Destinations {
		attach = destinations.Search("")
		if len(attach) > attachedDestinations {
			attach = attach[:attachedDestinations]
		}
	}

	s.store.UpdateMessage(chatID, placeholderID, func(m *Message) {
		if len(attach) > 0 {
			m.Destinations = attach
		}
		m.Delivery = DeliveryDelivered
	})
	s.markDelivered(chatID, userMsgID)
}

// finalizeCancelled stamps the stopped marker so the message never lingers
// as an empty pending bubble.
func (s *Session) finalizeCancelled(chatID, userMsgID, placeholderID, partial string) {
	content := stoppedMarker
	if partial != "" {
		content = partial + "\n\n" + stoppedMarker
	}
	s.store.UpdateMessage(chatID, placeholderID, func(m *Message) {
		m.Content = content
		m.Delivery = DeliveryDelivered
	})
	s.markDelivered(chatID, userMsgID)
}

// finalizeFailure replaces the placeholder with the generic apology. Raw
// upstream errors never reach the chat transcript.
func (s *Session) finalizeFailure(chatID, userMsgID, placeholderID string) {
	s.store.UpdateMessage(chatID, placeholderID, func(m *Message) {
		m.Content = apologyText
		m.Delivery = DeliveryDelivered
	})
	s.markDelivered(chatID, userMsgID)
}

func (s *Session) markDelivered(chatID, messageID string) {
	s.store.UpdateMessage(chatID, messageID, func(m *Message) {
		m.Delivery = DeliveryDelivered
	})
}
