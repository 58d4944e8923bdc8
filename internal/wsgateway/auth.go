package wsgateway

import (
	"context"
	"crypto/subtle"

	"github.com/google/uuid"
)

// TokenVerifier resolves a client-supplied auth frame token to the user it
// belongs to. Token issuance itself is an external collaborator (spec.md
// §1's "authentication token issuance" Non-goal); this is only the
// verification step the Live Transport needs to bind a connection to a
// user's pub/sub topic.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (userID uuid.UUID, ok bool)
}

// StaticVerifier maps a fixed set of tokens to user ids, following the
// teacher's API-key middleware idiom (constant-time comparison, reject-all
// when unconfigured) adapted to resolve a user rather than merely admit a
// request.
type StaticVerifier struct {
	tokens map[string]uuid.UUID
}

func NewStaticVerifier(tokens map[string]uuid.UUID) *StaticVerifier {
	return &StaticVerifier{tokens: tokens}
}

func (v *StaticVerifier) VerifyToken(ctx context.Context, token string) (uuid.UUID, bool) {
	if token == "" || len(v.tokens) == 0 {
		return uuid.Nil, false
	}
	for candidate, userID := range v.tokens {
		if subtle.ConstantTimeCompare([]byte(token), []byte(candidate)) == 1 {
			return userID, true
		}
	}
	return uuid.Nil, false
}

var _ TokenVerifier = (*StaticVerifier)(nil)
