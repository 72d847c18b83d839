// Package identity verifies bearer tokens against an external identity provider.
package identity

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrMissingToken is returned when no token was presented.
	ErrMissingToken = errors.New("identity: missing token")
	// ErrInvalidToken is returned when the provider rejects the token.
	ErrInvalidToken = errors.New("identity: invalid or expired token")
)

// Identity is the verified subject of a bearer token.
type Identity struct {
	UID    string
	Email  string
	Claims map[string]any
}

// Verifier checks a bearer token and returns the identity it asserts.
// Implementations do not retry; provider failures surface immediately.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// normalizeEmail lowercases and trims the email claim so lookups match the stored value.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
