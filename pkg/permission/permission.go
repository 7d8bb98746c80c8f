package permission

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/gavel-oj/gavel/pkg/errs"
)

// PermissionControl is the stored, canonical form of an access policy.
// UserUUIDs and GroupUUIDs only contain IDs that resolved to live entities at
// the time of the last normalization; stored data may transiently reference
// deleted entities until the policy is normalized again.
type PermissionControl struct {
	DefaultAllow bool        `json:"defaultAllow"`
	GuestAllow   bool        `json:"guestAllow"`
	UserUUIDs    []uuid.UUID `json:"userUUIDs"`
	GroupUUIDs   []uuid.UUID `json:"groupUUIDs"`
}

// Wire is the external form of a PermissionControl: identifiers are strings
// and nothing is assumed validated. It is the shape accepted from and
// returned to API clients.
type Wire struct {
	DefaultAllow bool     `json:"defaultAllow"`
	GuestAllow   bool     `json:"guestAllow"`
	UserUUIDs    []string `json:"userUUIDs"`
	GroupUUIDs   []string `json:"groupUUIDs"`
}

// UserResolver resolves a user identifier string to a live user's UUID.
// Malformed identifiers resolve to "not found", never an error; a non-nil
// error means the backing store failed.
type UserResolver interface {
	ResolveUser(ctx context.Context, id string) (uuid.UUID, bool, error)
}

// GroupResolver resolves a group identifier string to a live group's UUID.
type GroupResolver interface {
	ResolveGroup(ctx context.Context, id string) (uuid.UUID, bool, error)
}

// Resolver resolves both entity kinds referenced by a PermissionControl.
type Resolver interface {
	UserResolver
	GroupResolver
}

// ToWire converts a stored PermissionControl to its external form.
// A nil input yields nil: the absence of a policy is a distinct state from an
// empty one.
func ToWire(pc *PermissionControl) *Wire {
	if pc == nil {
		return nil
	}

	w := &Wire{
		DefaultAllow: pc.DefaultAllow,
		GuestAllow:   pc.GuestAllow,
		UserUUIDs:    make([]string, 0, len(pc.UserUUIDs)),
		GroupUUIDs:   make([]string, 0, len(pc.GroupUUIDs)),
	}
	for _, id := range pc.UserUUIDs {
		w.UserUUIDs = append(w.UserUUIDs, id.String())
	}
	for _, id := range pc.GroupUUIDs {
		w.GroupUUIDs = append(w.GroupUUIDs, id.String())
	}
	return w
}

// FromWire converts an external PermissionControl to its stored form.
// A nil input yields nil. Identifiers must already be well-formed (the wire
// value is expected to have gone through Normalize); a malformed identifier
// is an InvalidInputError.
func FromWire(w *Wire) (*PermissionControl, error) {
	if w == nil {
		return nil, nil
	}

	pc := &PermissionControl{
		DefaultAllow: w.DefaultAllow,
		GuestAllow:   w.GuestAllow,
		UserUUIDs:    make([]uuid.UUID, 0, len(w.UserUUIDs)),
		GroupUUIDs:   make([]uuid.UUID, 0, len(w.GroupUUIDs)),
	}
	for _, s := range w.UserUUIDs {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, errs.NewInvalidInput("userUUIDs", s)
		}
		pc.UserUUIDs = append(pc.UserUUIDs, id)
	}
	for _, s := range w.GroupUUIDs {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, errs.NewInvalidInput("groupUUIDs", s)
		}
		pc.GroupUUIDs = append(pc.GroupUUIDs, id)
	}
	return pc, nil
}

// Normalize produces a canonical PermissionControl from untrusted input.
//
// For each identifier list, at most maxUsers (resp. maxGroups) entries of the
// input are considered; each is resolved against live data, unresolvable or
// duplicate entries are silently dropped, and first-seen order is preserved.
// A nil input is treated as an empty policy. The only error condition is a
// resolver (store) failure.
func Normalize(ctx context.Context, input *Wire, resolver Resolver, maxUsers, maxGroups int) (*PermissionControl, error) {
	if input == nil {
		input = &Wire{}
	}

	result := &PermissionControl{
		DefaultAllow: input.DefaultAllow,
		GuestAllow:   input.GuestAllow,
		UserUUIDs:    []uuid.UUID{},
		GroupUUIDs:   []uuid.UUID{},
	}

	for i := 0; i < len(input.UserUUIDs) && i < maxUsers; i++ {
		id, ok, err := resolver.ResolveUser(ctx, input.UserUUIDs[i])
		if err != nil {
			return nil, fmt.Errorf("failed to resolve user %q: %w", input.UserUUIDs[i], err)
		}
		if ok && !containsUUID(result.UserUUIDs, id) {
			result.UserUUIDs = append(result.UserUUIDs, id)
		}
	}

	for i := 0; i < len(input.GroupUUIDs) && i < maxGroups; i++ {
		id, ok, err := resolver.ResolveGroup(ctx, input.GroupUUIDs[i])
		if err != nil {
			return nil, fmt.Errorf("failed to resolve group %q: %w", input.GroupUUIDs[i], err)
		}
		if ok && !containsUUID(result.GroupUUIDs, id) {
			result.GroupUUIDs = append(result.GroupUUIDs, id)
		}
	}

	return result, nil
}

func containsUUID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
