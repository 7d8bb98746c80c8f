package problems

import (
	"regexp"

	"github.com/google/uuid"

	"github.com/gavel-oj/gavel/pkg/permission"
)

var nameRegex = regexp.MustCompile(`^[^\n]{1,50}$`)

// IsValidName reports whether name is an acceptable problem name
func IsValidName(name string) bool {
	return nameRegex.MatchString(name)
}

// PermissionControlTriple gates the three operations on a problem
type PermissionControlTriple struct {
	View   *permission.PermissionControl `json:"view"`
	Submit *permission.PermissionControl `json:"submit"`
	Modify *permission.PermissionControl `json:"modify"`
}

// WireTriple is the external identifier-encoded form of a triple
type WireTriple struct {
	View   *permission.Wire `json:"view"`
	Submit *permission.Wire `json:"submit"`
	Modify *permission.Wire `json:"modify"`
}

// ToWireTriple converts a stored triple to its external form. Nil stays nil.
func ToWireTriple(triple *PermissionControlTriple) *WireTriple {
	if triple == nil {
		return nil
	}
	return &WireTriple{
		View:   permission.ToWire(triple.View),
		Submit: permission.ToWire(triple.Submit),
		Modify: permission.ToWire(triple.Modify),
	}
}

// Problem is a single judge problem inside a problem set
type Problem struct {
	UUID uuid.UUID `json:"uuid"`
	// ID is the problem's position within its set, assigned at creation
	ID                int                      `json:"id"`
	Name              string                   `json:"name"`
	PermissionControl *PermissionControlTriple `json:"permissionControl"`
	ProblemSet        uuid.UUID                `json:"problemSet"`
	OwnUser           uuid.UUID                `json:"ownUser"`
	SubmitCount       int                      `json:"submitCount"`
	AcceptedCount     int                      `json:"acceptedCount"`
	Type              string                   `json:"type"`
	// Detail references the type-specific judge configuration, uuid.Nil
	// until one is attached
	Detail uuid.UUID `json:"detail,omitempty"`
}
