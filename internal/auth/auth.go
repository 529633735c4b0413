// Package auth abstracts the identity provider: a bearer token in, a user
// ID out. The gateway itself never manages credentials beyond verification.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
)

// ErrInvalidToken is returned when a token does not resolve to a user.
var ErrInvalidToken = errors.New("invalid or missing bearer token")

// Verifier resolves a bearer token to a user identity.
type Verifier interface {
	Verify(ctx context.Context, token string) (userID string, err error)
}

// StaticVerifier verifies tokens against a fixed token→user map, typically
// loaded from configuration.
type StaticVerifier struct {
	tokens map[string]string
}

func NewStaticVerifier(tokens map[string]string) *StaticVerifier {
	return &StaticVerifier{tokens: tokens}
}

// Verify compares in constant time against every known token, so the lookup
// does not leak which prefix matched.
func (v *StaticVerifier) Verify(_ context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrInvalidToken
	}
	for known, userID := range v.tokens {
		if subtle.ConstantTimeCompare([]byte(token), []byte(known)) == 1 {
			return userID, nil
		}
	}
	return "", ErrInvalidToken
}

type contextKey struct{}

// WithUserID stores the verified identity on the request context.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, contextKey{}, userID)
}

// UserID returns the verified identity, or "" when the request is anonymous.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}
