package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// Migration represents a database migration
type Migration struct {
	Version     int
	Description string
	SQL         string
}

// GetMigrations returns all schema migrations in order
func GetMigrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "Create users table",
			SQL: `
				CREATE TABLE IF NOT EXISTS users (
					uuid UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					user_name VARCHAR(16) NOT NULL UNIQUE,
					email VARCHAR(255) NOT NULL UNIQUE,
					description TEXT NOT NULL DEFAULT '',
					password_hash TEXT NOT NULL,
					is_admin BOOLEAN NOT NULL DEFAULT FALSE,
					register_ip VARCHAR(45),
					register_time TIMESTAMP NOT NULL DEFAULT NOW(),
					privileges JSONB NOT NULL DEFAULT '[]',
					groups JSONB NOT NULL DEFAULT '[]'
				);
			`,
		},
		{
			Version:     2,
			Description: "Create user_groups table",
			SQL: `
				CREATE TABLE IF NOT EXISTS user_groups (
					uuid UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					name VARCHAR(16) NOT NULL UNIQUE,
					member_count INT NOT NULL DEFAULT 0
				);
			`,
		},
		{
			Version:     3,
			Description: "Create user_group_members ledger",
			SQL: `
				CREATE TABLE IF NOT EXISTS user_group_members (
					id BIGSERIAL PRIMARY KEY,
					user_id UUID NOT NULL REFERENCES users(uuid) ON DELETE CASCADE,
					group_id UUID NOT NULL REFERENCES user_groups(uuid),
					created_at TIMESTAMP NOT NULL DEFAULT NOW(),
					UNIQUE(group_id, user_id)
				);

				CREATE INDEX idx_user_group_members_user_id ON user_group_members(user_id);
				CREATE INDEX idx_user_group_members_group_id ON user_group_members(group_id);
			`,
		},
		{
			Version:     4,
			Description: "Create problem_sets table",
			SQL: `
				CREATE TABLE IF NOT EXISTS problem_sets (
					uuid UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					problem_count INT NOT NULL DEFAULT 0,
					name VARCHAR(50),
					url_name VARCHAR(16) UNIQUE,
					permission_control JSONB,
					own_user UUID UNIQUE REFERENCES users(uuid)
				);
			`,
		},
		{
			Version:     5,
			Description: "Create problems table",
			SQL: `
				CREATE TABLE IF NOT EXISTS problems (
					uuid UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					id INT NOT NULL,
					name VARCHAR(50) NOT NULL,
					permission_control JSONB NOT NULL,
					problem_set UUID NOT NULL REFERENCES problem_sets(uuid),
					own_user UUID NOT NULL REFERENCES users(uuid),
					submit_count INT NOT NULL DEFAULT 0,
					accepted_count INT NOT NULL DEFAULT 0,
					type VARCHAR(50) NOT NULL,
					detail UUID,
					UNIQUE(problem_set, id)
				);

				CREATE INDEX idx_problems_own_user ON problems(own_user);
				CREATE INDEX idx_problems_type ON problems(type);
			`,
		},
	}
}

// RunMigrations executes all pending migrations
func RunMigrations(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INT PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	rows, err := db.QueryContext(ctx, "SELECT version FROM schema_migrations ORDER BY version")
	if err != nil {
		return fmt.Errorf("failed to query migrations: %w", err)
	}

	appliedVersions := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan migration version: %w", err)
		}
		appliedVersions[version] = true
	}
	rows.Close()

	for _, migration := range GetMigrations() {
		if appliedVersions[migration.Version] {
			continue
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to start transaction: %w", err)
		}

		if _, err := tx.ExecContext(ctx, migration.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to execute migration %d: %w", migration.Version, err)
		}

		if _, err := tx.ExecContext(ctx,
			"INSERT INTO schema_migrations (version, description) VALUES ($1, $2)",
			migration.Version, migration.Description,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

// DropAllData truncates every entity table. Used by the test-mode API only.
func DropAllData(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		TRUNCATE TABLE problems, problem_sets, user_group_members, user_groups, users CASCADE
	`)
	if err != nil {
		return fmt.Errorf("failed to truncate tables: %w", err)
	}
	return nil
}
