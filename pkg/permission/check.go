package permission

import "github.com/google/uuid"

// Actor is the identity a permission check runs against: the actor's own UUID
// plus its denormalized group membership cache. The cache is kept synchronous
// with the membership ledger by pkg/groups, so checks never query the ledger.
type Actor struct {
	UUID   uuid.UUID
	Groups []uuid.UUID
}

// Check reports whether the actor passes the permission control.
//
// A nil actor is a guest and is governed solely by GuestAllow. Otherwise the
// actor is "in the sets" if its UUID is listed or any of its groups is
// listed, and DefaultAllow flips the polarity of that membership test.
//
// Check is a pure function of its arguments. Privilege bypasses (admin,
// ManageProblems, ...) are deliberately not modeled here; callers compose
// them in front of Check (see users.CheckPermission).
func Check(actor *Actor, pc *PermissionControl) bool {
	if actor == nil {
		return pc.GuestAllow
	}

	inSet := containsUUID(pc.UserUUIDs, actor.UUID)
	if !inSet {
		for _, g := range pc.GroupUUIDs {
			if containsUUID(actor.Groups, g) {
				inSet = true
				break
			}
		}
	}

	if pc.DefaultAllow {
		return !inSet
	}
	return inSet
}
