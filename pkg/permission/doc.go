// Package permission implements the reusable access-decision model applied
// to problem sets and problems.
//
// # Overview
//
// A PermissionControl combines a default polarity, a guest flag, and explicit
// allow-lists of users and groups:
//
//   - DefaultAllow=false: the sets form an allow-list — an actor passes iff
//     it is in the sets.
//   - DefaultAllow=true: the same sets form a deny-list — an actor passes iff
//     it is NOT in the sets.
//   - GuestAllow alone governs unauthenticated actors; the sets are ignored.
//
// The polarity flip reuses one data shape for both allow- and deny-lists.
//
// # Normalization
//
// Client-supplied structures are untrusted: fields may be missing, IDs may be
// malformed, duplicated, or reference deleted entities, and the lists may be
// oversized. Normalize resolves every entry against live data and silently
// drops anything that does not resolve, deduplicates preserving first-seen
// order, and caps the lists at configured sizes. The caps are a DoS guard,
// not validation errors.
//
// # Usage Example
//
//	pc, err := permission.Normalize(ctx, input.List, resolver, cfg.MaxUserCount, cfg.MaxGroupCount)
//	if err != nil {
//		return err
//	}
//	if !permission.Check(actor, pc) {
//		return errs.NewAuth(errs.PermissionDenied)
//	}
//
// # Related Packages
//
//   - pkg/users: implements UserResolver, composes the privilege bypass
//   - pkg/groups: implements GroupResolver
package permission
