package wsgateway

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestStaticVerifier_VerifyToken(t *testing.T) {
	userID := uuid.New()
	v := NewStaticVerifier(map[string]uuid.UUID{"secret-token": userID})

	got, ok := v.VerifyToken(context.Background(), "secret-token")
	if !ok || got != userID {
		t.Errorf("VerifyToken() = (%v, %v), want (%v, true)", got, ok, userID)
	}

	if _, ok := v.VerifyToken(context.Background(), "wrong-token"); ok {
		t.Error("VerifyToken() with a wrong token should fail")
	}

	if _, ok := v.VerifyToken(context.Background(), ""); ok {
		t.Error("VerifyToken() with an empty token should fail")
	}
}

func TestStaticVerifier_NoTokensConfigured_RejectsAll(t *testing.T) {
	v := NewStaticVerifier(nil)
	if _, ok := v.VerifyToken(context.Background(), "anything"); ok {
		t.Error("VerifyToken() with no configured tokens should reject everything")
	}
}
