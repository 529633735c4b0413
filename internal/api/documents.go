package api

import (
	"encoding/json"
	"net/http"

	"github.com/tripd/tripd/internal/auth"
	"github.com/tripd/tripd/internal/storage"
)

// handleGetDoc serves a settings/profile document for the authenticated
// user. A user with no stored document gets an empty object, not an error;
// clients treat both the same way.
func handleGetDoc(get func(userID string) (map[string]any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := get(auth.UserID(r.Context()))
		if err == storage.ErrNotFound {
			doc = map[string]any{}
		} else if err != nil {
			httpError(w, http.StatusInternalServerError, "reading document: %v", err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(doc)
	}
}

// handlePutDoc merges a partial document into the authenticated user's
// stored one.
func handlePutDoc(save func(userID string, doc map[string]any) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var partial map[string]any
		if err := json.NewDecoder(r.Body).Decode(&partial); err != nil {
			httpError(w, http.StatusBadRequest, "invalid request body: %v", err)
			return
		}

		if err := save(auth.UserID(r.Context()), partial); err != nil {
			httpError(w, http.StatusInternalServerError, "saving document: %v", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
