package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/gavel-oj/gavel/pkg/observability"
)

// LoggingMiddleware injects a request-scoped logger and records request
// metrics
type LoggingMiddleware struct {
	logger  *observability.Logger
	metrics *observability.Metrics
}

// NewLoggingMiddleware creates a new logging middleware. metrics may be nil.
func NewLoggingMiddleware(logger *observability.Logger, metrics *observability.Metrics) *LoggingMiddleware {
	return &LoggingMiddleware{logger: logger, metrics: metrics}
}

// statusRecorder captures the response status for logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Handler wraps an HTTP handler with request logging
func (m *LoggingMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.New().String()

		ctx := observability.WithRequestID(r.Context(), requestID)
		ctx = observability.WithLogger(ctx, m.logger)

		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r.WithContext(ctx))

		duration := time.Since(start)
		m.logger.WithFields(map[string]interface{}{
			"request_id": requestID,
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     recorder.status,
			"duration":   duration.String(),
		}).Info("request handled")

		if m.metrics != nil {
			m.metrics.ObserveHTTPRequest(r.Method, routeTemplate(r), recorder.status, duration)
		}
	})
}

// routeTemplate returns the mux route pattern so metrics are not exploded by
// path parameters
func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if template, err := route.GetPathTemplate(); err == nil {
			return template
		}
	}
	return r.URL.Path
}
