// Package contextkeys provides centralized context key definitions
//
// IMPORTANT: All context keys for request identity must be defined here.
// This prevents typos, documents dependencies, and makes key usage
// discoverable. Logger and request-ID keys live in pkg/observability.
package contextkeys

import "context"

// Key is the type for context keys to prevent collisions
type Key string

const (
	// UserKey contains the authenticated *users.User, absent for guests
	// Set by: middleware.SessionMiddleware (pkg/middleware/session.go)
	// Required by: every handler that distinguishes guests from users
	UserKey Key = "user"

	// SessionTokenKey contains the session token string
	// Set by: middleware.SessionMiddleware
	// Used by: logout, which must delete the server-side session
	SessionTokenKey Key = "session_token"
)

// WithSessionToken adds the session token to the context
func WithSessionToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, SessionTokenKey, token)
}

// SessionToken extracts the session token, empty for guests
func SessionToken(ctx context.Context) string {
	token, _ := ctx.Value(SessionTokenKey).(string)
	return token
}
