package middleware

import (
	"context"
	"net/http"

	"github.com/gavel-oj/gavel/pkg/contextkeys"
	"github.com/gavel-oj/gavel/pkg/observability"
	"github.com/gavel-oj/gavel/pkg/session"
	"github.com/gavel-oj/gavel/pkg/users"
)

// SessionMiddleware resolves the session cookie to a user
type SessionMiddleware struct {
	store      *session.Store
	users      *users.PostgresService
	cookieName string
}

// NewSessionMiddleware creates a new session middleware
func NewSessionMiddleware(store *session.Store, userService *users.PostgresService, cookieName string) *SessionMiddleware {
	return &SessionMiddleware{
		store:      store,
		users:      userService,
		cookieName: cookieName,
	}
}

// Handler wraps an HTTP handler with session resolution. Requests without a
// valid session proceed as guest.
func (m *SessionMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(m.cookieName)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		userUUID, ok, err := m.store.Get(ctx, cookie.Value)
		if err != nil {
			observability.FromContext(ctx).WithError(err).Warn("session lookup failed, treating as guest")
			next.ServeHTTP(w, r)
			return
		}
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		user, err := m.users.FindByUUID(ctx, userUUID)
		if err != nil {
			// session points at a vanished user; drop it
			m.store.Delete(ctx, cookie.Value)
			next.ServeHTTP(w, r)
			return
		}

		ctx = context.WithValue(ctx, contextkeys.UserKey, user)
		ctx = contextkeys.WithSessionToken(ctx, cookie.Value)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUser extracts the authenticated user from the request, nil for guests
func GetUser(r *http.Request) *users.User {
	user, _ := r.Context().Value(contextkeys.UserKey).(*users.User)
	return user
}
