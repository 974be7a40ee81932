// Package http provides HTTP handlers and middleware for the credential
// store: authentication, CSRF protection, rate limiting, and suspicious
// activity detection.
package http

import (
	"context"

	authDomain "github.com/ledgerly/securecore/internal/auth/domain"
)

// userKey is a context key type for storing authenticated users.
type userKey struct{}

// sessionIDKey is a context key type for storing the session identifier.
type sessionIDKey struct{}

// WithUser stores an authenticated user in the context. Called by the
// authentication middleware after successful access token validation.
func WithUser(ctx context.Context, user *authDomain.User) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// GetUser retrieves the authenticated user from the context.
// Returns (user, true) if present, or (nil, false) if not set.
func GetUser(ctx context.Context) (*authDomain.User, bool) {
	user, ok := ctx.Value(userKey{}).(*authDomain.User)
	return user, ok
}

// WithSessionID stores the session identifier in the context. Called by the
// session middleware after the session cookie is verified or created.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey{}, sessionID)
}

// GetSessionID retrieves the session identifier from the context.
// Returns (sessionID, true) if present, or ("", false) if not set.
func GetSessionID(ctx context.Context) (string, bool) {
	sessionID, ok := ctx.Value(sessionIDKey{}).(string)
	return sessionID, ok
}
