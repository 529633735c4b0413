// Package api exposes the gateway's HTTP surface: the chat completion
// endpoint, the background-image upload endpoint, and the settings/profile
// persistence endpoints backing remote clients.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tripd/tripd/internal/agent"
	"github.com/tripd/tripd/internal/assets"
	"github.com/tripd/tripd/internal/auth"
	"github.com/tripd/tripd/internal/storage"
	"github.com/tripd/tripd/internal/stream"
)

const maxRequestBodySize = 1 << 20 // 1MB

// Responder produces one chat completion. Implemented by agent.Orchestrator.
type Responder interface {
	Respond(ctx context.Context, req agent.Request) (*agent.Result, error)
}

// SettingsStore is the persistence surface behind the settings/profile
// endpoints. Implemented by storage.Store.
type SettingsStore interface {
	GetSettings(userID string) (storage.Settings, error)
	SaveSettings(userID string, partial storage.Settings) error
	GetProfile(userID string) (storage.Profile, error)
	SaveProfile(userID string, partial storage.Profile) error
}

// Deps carries the handler's collaborators.
type Deps struct {
	Responder Responder
	Verifier  auth.Verifier
	Assets    *assets.Store
	Store     SettingsStore
	// AssetDir, when non-empty, is served under /backgrounds/ so uploaded
	// public URLs resolve.
	AssetDir string
}

// NewHandler builds the gateway router.
func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", handleHealth)
	r.Post("/chat", handleChat(deps.Responder))
	r.Post("/upload-background-image", handleUpload(deps))

	r.Group(func(r chi.Router) {
		r.Use(bearerAuth(deps.Verifier))
		r.Get("/settings", handleGetDoc(func(userID string) (map[string]any, error) {
			doc, err := deps.Store.GetSettings(userID)
			return map[string]any(doc), err
		}))
		r.Put("/settings", handlePutDoc(func(userID string, doc map[string]any) error {
			return deps.Store.SaveSettings(userID, storage.Settings(doc))
		}))
		r.Get("/profile", handleGetDoc(func(userID string) (map[string]any, error) {
			doc, err := deps.Store.GetProfile(userID)
			return map[string]any(doc), err
		}))
		r.Put("/profile", handlePutDoc(func(userID string, doc map[string]any) error {
			return deps.Store.SaveProfile(userID, storage.Profile(doc))
		}))
	})

	if deps.AssetDir != "" {
		fs := http.StripPrefix("/backgrounds/", http.FileServer(http.Dir(deps.AssetDir+"/backgrounds")))
		r.Get("/backgrounds/*", fs.ServeHTTP)
	}

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

type chatRequest struct {
	Message string       `json:"message"`
	UserID  string       `json:"userId"`
	History []agent.Turn `json:"history"`
	Stream  bool         `json:"stream"`
}

func handleChat(responder Responder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid request body: %v", err)
			return
		}
		if req.Message == "" {
			httpError(w, http.StatusBadRequest, "message is required")
			return
		}

		result, err := responder.Respond(r.Context(), agent.Request{
			Message: req.Message,
			UserID:  req.UserID,
			History: req.History,
		})
		if err != nil {
			slog.Error("chat completion failed", "error", err)
			httpError(w, http.StatusBadGateway, "upstream LLM request failed")
			return
		}

		if req.Stream {
			streamResult(r.Context(), w, result)
			return
		}

		content, err := result.Collect()
		if err != nil {
			slog.Error("draining completion failed", "error", err)
			httpError(w, http.StatusBadGateway, "upstream LLM request failed")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"content": content})
	}
}

// streamResult re-frames the orchestration result as the SSE protocol: at
// most one tools event, then content deltas, then the sentinel. The sentinel
// is emitted even when the upstream stream ends early or errors: once the
// response is committed, termination is all that is left to signal.
func streamResult(ctx context.Context, w http.ResponseWriter, result *agent.Result) {
	defer result.Deltas.Close()

	sw, err := stream.NewWriter(w)
	if err != nil {
		httpError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}
	defer sw.Done()

	if result.ToolNotice != "" {
		if err := sw.Send(stream.Event{Type: stream.TypeTools, Content: result.ToolNotice}); err != nil {
			return
		}
	}

	for {
		delta, err := result.Deltas.Recv()
		if err == io.EOF {
			return
		}
		if err != nil {
			slog.ErrorContext(ctx, "upstream stream read error", "error", err)
			return
		}
		if err := sw.Send(stream.Event{Type: stream.TypeContent, Content: delta}); err != nil {
			// Client went away; stop relaying.
			return
		}
	}
}

func httpError(w http.ResponseWriter, code int, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{
		"error": fmt.Sprintf(format, args...),
	})
}
