// Package users provides user accounts, credentials and privileges for the
// Gavel judge backend.
//
// # Overview
//
// A user carries its identity (UUID, user name, email), a bcrypt password
// hash, an admin flag, a set of granted privileges and a denormalized cache
// of the group UUIDs it belongs to. The group cache is maintained by the
// groups package and consulted during permission checks without extra
// queries.
//
// # Privileges
//
// Privileges form a closed set (ManageProblems, ManageUsers). Admins
// implicitly hold every privilege. Privileges also act as permission-check
// bypasses: CheckPermission grants access outright when the user is an admin
// or holds the bypass privilege, before consulting the allow/deny lists.
//
// # Usage Example
//
// Register and authenticate:
//
//	user, err := service.Register(ctx, "alice", "alice@example.com", "secret", clientIP)
//	ok := user.CheckPassword("secret")
//
// Permission check with a bypass privilege:
//
//	allowed := users.CheckPermission(user, problem.PermissionControl.Modify, users.PrivilegeManageProblems)
//
// # Related Packages
//
//   - pkg/permission: allow/deny list evaluation
//   - pkg/groups: membership ledger that maintains User.Groups
package users
