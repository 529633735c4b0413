package auth

import (
	"context"
	"testing"
)

func TestStaticVerifier(t *testing.T) {
	v := NewStaticVerifier(map[string]string{
		"tok-a": "user-a",
		"tok-b": "user-b",
	})

	userID, err := v.Verify(context.Background(), "tok-b")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if userID != "user-b" {
		t.Errorf("userID = %q, want user-b", userID)
	}

	if _, err := v.Verify(context.Background(), "tok-x"); err != ErrInvalidToken {
		t.Errorf("unknown token error = %v, want ErrInvalidToken", err)
	}
	if _, err := v.Verify(context.Background(), ""); err != ErrInvalidToken {
		t.Errorf("empty token error = %v, want ErrInvalidToken", err)
	}
}

func TestUserIDContext(t *testing.T) {
	ctx := context.Background()
	if got := UserID(ctx); got != "" {
		t.Errorf("UserID on bare context = %q, want empty", got)
	}
	ctx = WithUserID(ctx, "user-a")
	if got := UserID(ctx); got != "user-a" {
		t.Errorf("UserID = %q, want user-a", got)
	}
}
