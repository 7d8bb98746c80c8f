// Package middleware provides HTTP middleware for the Gavel API server.
//
// # Overview
//
// Three middlewares wrap every route:
//
//   - LoggingMiddleware assigns a request ID, injects a logger into the
//     request context and records Prometheus request metrics.
//   - RecoveryMiddleware turns panics into a 500 envelope instead of a
//     dropped connection.
//   - SessionMiddleware resolves the session cookie to a *users.User and
//     places it in the request context. No cookie, an unknown token, or a
//     vanished user all mean guest; the request proceeds either way.
//
// # Usage Example
//
//	router.Use(logging.Handler, recovery.Handler, sessions.Handler)
//	user := middleware.GetUser(r) // nil for guests
package middleware
