package middleware

import (
	"fmt"
	"net/http"

	"github.com/gavel-oj/gavel/pkg/observability"
)

// RecoveryMiddleware converts handler panics into a 500 response
type RecoveryMiddleware struct{}

// NewRecoveryMiddleware creates a new recovery middleware
func NewRecoveryMiddleware() *RecoveryMiddleware {
	return &RecoveryMiddleware{}
}

// Handler wraps an HTTP handler with panic recovery
func (m *RecoveryMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				observability.FromContext(r.Context()).
					WithError(fmt.Errorf("%v", rec)).
					Error("panic while handling request")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"success":false,"error":{"error":"InternalError"}}`))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
