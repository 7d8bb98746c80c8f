package groups

import (
	"regexp"

	"github.com/google/uuid"
)

var groupNameRegex = regexp.MustCompile(`^[a-zA-Z0-9\-_.#$]{1,16}$`)

// IsValidName reports whether name is an acceptable group name
func IsValidName(name string) bool {
	return groupNameRegex.MatchString(name)
}

// Group is a named collection of users referenced by permission controls
type Group struct {
	UUID uuid.UUID `json:"uuid"`
	Name string    `json:"name"`
	// MemberCount mirrors the ledger row count for this group
	MemberCount int `json:"memberCount"`
}
