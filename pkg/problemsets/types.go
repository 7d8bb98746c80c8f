package problemsets

import (
	"regexp"

	"github.com/google/uuid"

	"github.com/gavel-oj/gavel/pkg/permission"
)

var (
	nameRegex    = regexp.MustCompile(`^[^\n]{1,50}$`)
	urlNameRegex = regexp.MustCompile(`^[a-zA-Z0-9\-_.#$%]{1,16}$`)
)

// IsValidName reports whether name is an acceptable set name
func IsValidName(name string) bool {
	return nameRegex.MatchString(name)
}

// IsValidUrlName reports whether urlName is an acceptable URL name
func IsValidUrlName(urlName string) bool {
	return urlNameRegex.MatchString(urlName)
}

// PermissionControlPair gates the two operations on a global set
type PermissionControlPair struct {
	List   *permission.PermissionControl `json:"list"`
	Modify *permission.PermissionControl `json:"modify"`
}

// WirePair is the external identifier-encoded form of a pair
type WirePair struct {
	List   *permission.Wire `json:"list"`
	Modify *permission.Wire `json:"modify"`
}

// ToWirePair converts a stored pair to its external form. Nil stays nil.
func ToWirePair(pair *PermissionControlPair) *WirePair {
	if pair == nil {
		return nil
	}
	return &WirePair{
		List:   permission.ToWire(pair.List),
		Modify: permission.ToWire(pair.Modify),
	}
}

// ProblemSet is a collection of problems, either global or private
type ProblemSet struct {
	UUID         uuid.UUID `json:"uuid"`
	ProblemCount int       `json:"problemCount"`
	// Name and UrlName are set on global sets only
	Name    string `json:"name,omitempty"`
	UrlName string `json:"urlName,omitempty"`
	// PermissionControl is present on global sets and always nil on
	// private ones
	PermissionControl *PermissionControlPair `json:"permissionControl,omitempty"`
	// OwnUser is the owner of a private set, uuid.Nil for global sets
	OwnUser uuid.UUID `json:"ownUser"`
}

// IsPrivate reports whether the set is owner-only
func (p *ProblemSet) IsPrivate() bool {
	return p.OwnUser != uuid.Nil
}
