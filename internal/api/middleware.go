package api

import (
	"net/http"
	"strings"

	"github.com/tripd/tripd/internal/auth"
)

const bearerPrefix = "Bearer "

// bearerAuth verifies the Authorization header against the identity provider
// and stores the resolved user ID on the request context.
func bearerAuth(verifier auth.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := verifyRequest(r, verifier)
			if err != nil {
				httpError(w, http.StatusUnauthorized, "invalid or missing bearer token")
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), userID)))
		})
	}
}

// verifyRequest extracts and verifies the bearer token of r.
func verifyRequest(r *http.Request, verifier auth.Verifier) (string, error) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", auth.ErrInvalidToken
	}
	return verifier.Verify(r.Context(), header[len(bearerPrefix):])
}
