// Package observability provides structured logging, Prometheus metrics,
// and health checks for the Gavel service.
//
// # Overview
//
// Logging is structured JSON on stdlib slog. Metrics cover the HTTP surface
// and permission decisions and are exposed on /metrics. The health checker
// pings PostgreSQL and Redis for the readiness probe.
//
// # Usage Example
//
//	logger := observability.NewLogger(observability.InfoLevel, os.Stdout)
//	metrics := observability.NewMetrics(prometheus.NewRegistry())
//	health := observability.NewHealthChecker(db, redisClient)
//
//	router.HandleFunc("/healthz", health.Readiness)
//	router.Handle("/metrics", metrics.Handler())
package observability
