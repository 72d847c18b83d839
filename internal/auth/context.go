// Package auth resolves the caller of a request from its bearer token.
package auth

import "context"

type contextKey string

const tokenKey contextKey = "authtoken"

// HeaderName is the request header carrying the raw identity token.
const HeaderName = "authtoken"

// WithToken returns a context carrying the raw bearer token.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey, token)
}

// TokenFromContext returns the raw bearer token, or "" when none was sent.
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey).(string)
	return token
}
