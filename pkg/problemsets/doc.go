// Package problemsets provides problem set collections for the Gavel judge
// backend.
//
// # Overview
//
// A problem set is either global or private. Global sets carry a display
// name, a unique URL name and a pair of permission controls (list gates who
// can see the set, modify gates who can add problems to it; deleting a set
// or rewriting its controls takes the ManageProblems privilege). Private
// sets belong to exactly one user, have no permission controls and are
// implicitly owner-only; every user gets at most one.
//
// The problemCount column is a denormalized counter maintained by the
// problems package inside the problem-creation transaction.
//
// # Usage Example
//
//	set, err := service.CreateGlobal(ctx, "Beginner Contest", "beginner")
//	err = service.UpdatePermissionControl(ctx, set, input, resolver, 10, 10)
//
// # Related Packages
//
//   - pkg/permission: normalization and evaluation of the list/modify pair
//   - pkg/problems: problems contained in a set
package problemsets
