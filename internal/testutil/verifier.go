package testutil

import (
	"context"
	"strings"
	"sync"

	"postboard/internal/identity"
)

// StaticVerifier maps raw tokens to identities. Unknown tokens are rejected.
type StaticVerifier struct {
	mu     sync.RWMutex
	tokens map[string]*identity.Identity
}

// NewStaticVerifier creates an empty StaticVerifier.
func NewStaticVerifier() *StaticVerifier {
	return &StaticVerifier{tokens: make(map[string]*identity.Identity)}
}

// Grant registers token as proof of email and returns the token.
func (v *StaticVerifier) Grant(token, email string) string {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.tokens[token] = &identity.Identity{UID: token, Email: strings.ToLower(email)}
	return token
}

// Verify implements identity.Verifier.
func (v *StaticVerifier) Verify(_ context.Context, token string) (*identity.Identity, error) {
	if token == "" {
		return nil, identity.ErrMissingToken
	}
	v.mu.RLock()
	defer v.mu.RUnlock()
	id, ok := v.tokens[token]
	if !ok {
		return nil, identity.ErrInvalidToken
	}
	return id, nil
}
