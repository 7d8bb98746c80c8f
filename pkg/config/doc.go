// Package config provides application configuration management from
// environment variables.
//
// # Overview
//
// This package loads and validates configuration from environment variables
// with sensible defaults for all settings.
//
// # Configuration Structure
//
// Server settings:
//
//	GAVEL_HOST="0.0.0.0"
//	GAVEL_PORT="9133"
//	GAVEL_READ_TIMEOUT="15s"
//	GAVEL_WRITE_TIMEOUT="15s"
//	GAVEL_SHUTDOWN_TIMEOUT="30s"
//
// Database settings:
//
//	GAVEL_POSTGRES_URL="postgres://localhost/gavel"
//	GAVEL_POSTGRES_MAX_CONNS="20"
//	GAVEL_POSTGRES_MIN_CONNS="5"
//	GAVEL_POSTGRES_TIMEOUT="10s"
//
// Session settings:
//
//	GAVEL_REDIS_URL="redis://localhost:6379"
//	GAVEL_SESSION_TTL="720h"
//	GAVEL_SESSION_COOKIE="gavel_session"
//
// Permission control limits (maximum allow-listed entries per policy):
//
//	GAVEL_PC_MAX_USERS="10"
//	GAVEL_PC_MAX_GROUPS="10"
//
// Other:
//
//	GAVEL_LOG_LEVEL="info"  # debug, info, warn, error
//	GAVEL_TEST_MODE="false" # enables the destructive /test endpoints
//
// # Usage Example
//
//	cfg, err := config.LoadConfig()
//	if err != nil {
//		log.Fatal(err)
//	}
package config
