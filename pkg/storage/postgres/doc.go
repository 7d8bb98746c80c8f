// Package postgres provides the PostgreSQL connection bootstrap and schema
// migrations for the Gavel service.
//
// # Overview
//
// Connect opens a pooled database/sql connection over lib/pq and verifies it
// with a ping. RunMigrations applies the in-code migration list inside
// per-migration transactions, tracked in the schema_migrations table.
//
// Uniqueness of natural keys (userName, email, group name, urlName, the
// membership pair, one private problem set per owner) is enforced by UNIQUE
// constraints as the storage-layer backstop behind the services' own
// pre-insert checks.
package postgres
