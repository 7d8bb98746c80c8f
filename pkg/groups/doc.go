// Package groups provides user groups and the membership ledger for the
// Gavel judge backend.
//
// # Overview
//
// The user_group_members table is the source of truth for membership. Each
// user row additionally carries a denormalized JSONB cache of its group
// UUIDs, and each group row carries a member count. Join, Leave and
// DeleteGroup update the ledger and both caches inside a single
// transaction, so the cache can never drift from the ledger.
//
// # Usage Example
//
//	joined, err := service.Join(ctx, user.UUID, group.UUID)
//	if !joined {
//		// user was already a member
//	}
//
// # Related Packages
//
//   - pkg/users: owns the users table whose groups cache is maintained here
//   - pkg/permission: consumes the cache during allow/deny evaluation
package groups
