// Package session provides Redis-backed login sessions for the Gavel judge
// backend.
//
// # Overview
//
// A session is an opaque token mapped to a user UUID in Redis. The cookie
// carries only the token; everything else lives server side. Reads slide
// the expiry forward so active users stay logged in.
//
// Token format: gavel_<base64url(32 random bytes)>.
//
// # Usage Example
//
//	store, err := session.NewStore(cfg.Session)
//	token, err := store.Create(ctx, user.UUID)
//	userUUID, ok, err := store.Get(ctx, token)
package session
