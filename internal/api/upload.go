package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/tripd/tripd/internal/storage"
)

type uploadRequest struct {
	ImageData string `json:"imageData"`
	FileName  string `json:"fileName"`
}

// handleUpload stores a background image for the authenticated user and
// persists its public URL into the user's settings.
func handleUpload(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, 12<<20) // data URLs inflate ~4/3
		defer r.Body.Close()

		userID, err := verifyRequest(r, deps.Verifier)
		if err != nil {
			uploadError(w, http.StatusUnauthorized, "AUTH_ERROR", "authentication failed")
			return
		}

		var req uploadRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			uploadError(w, http.StatusBadRequest, "UPLOAD_ERROR", "invalid request body")
			return
		}
		if req.ImageData == "" || req.FileName == "" {
			uploadError(w, http.StatusBadRequest, "UPLOAD_ERROR", "missing image data or file name")
			return
		}

		publicURL, err := deps.Assets.SaveBackgroundImage(userID, req.ImageData, req.FileName)
		if err != nil {
			slog.Error("background upload failed", "user_id", userID, "error", err)
			uploadError(w, http.StatusInternalServerError, "UPLOAD_ERROR", err.Error())
			return
		}

		if err := deps.Store.SaveSettings(userID, storage.Settings{"background_image_url": publicURL}); err != nil {
			slog.Error("persisting background url failed", "user_id", userID, "error", err)
			uploadError(w, http.StatusInternalServerError, "UPLOAD_ERROR", "failed to save settings")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]string{
				"publicUrl": publicURL,
				"message":   "Image uploaded successfully",
			},
		})
	}
}

func uploadError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
