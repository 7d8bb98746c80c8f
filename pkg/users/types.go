package users

import (
	"net/mail"
	"regexp"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/gavel-oj/gavel/pkg/permission"
)

// Privilege is a named capability a user can be granted. The set is closed:
// values outside the constants below are rejected at the boundary.
type Privilege string

const (
	PrivilegeManageProblems Privilege = "ManageProblems"
	PrivilegeManageUsers    Privilege = "ManageUsers"
)

// ParsePrivilege validates a raw privilege name
func ParsePrivilege(raw string) (Privilege, bool) {
	switch Privilege(raw) {
	case PrivilegeManageProblems, PrivilegeManageUsers:
		return Privilege(raw), true
	}
	return "", false
}

// bcryptCost matches the cost the original accounts were hashed with, so
// existing hashes keep verifying.
const bcryptCost = 10

var userNameRegex = regexp.MustCompile(`^[a-zA-Z0-9\-_.#$]{1,16}$`)

// IsValidUserName reports whether name is an acceptable user name
func IsValidUserName(name string) bool {
	return userNameRegex.MatchString(name)
}

// IsValidEmail reports whether email is a bare RFC 5322 address. Dotless
// domains like "menci@x" are valid; display names are not.
func IsValidEmail(email string) bool {
	if len(email) > 255 {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// User is a registered account
type User struct {
	UUID         uuid.UUID   `json:"uuid"`
	UserName     string      `json:"userName"`
	Email        string      `json:"email"`
	Description  string      `json:"description"`
	PasswordHash string      `json:"-"`
	IsAdmin      bool        `json:"isAdmin"`
	RegisterIP   string      `json:"-"`
	RegisterTime time.Time   `json:"registerTime"`
	Privileges   []Privilege `json:"privileges"`
	// Groups is the denormalized cache of group UUIDs this user belongs to.
	// The ledger in pkg/groups is the source of truth.
	Groups []uuid.UUID `json:"groups"`
}

// SetPassword replaces the stored hash with a bcrypt hash of password
func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword verifies password against the stored hash
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// HasPrivilege reports whether the user holds priv. Admins hold every
// privilege implicitly.
func (u *User) HasPrivilege(priv Privilege) bool {
	if u.IsAdmin {
		return true
	}
	for _, p := range u.Privileges {
		if p == priv {
			return true
		}
	}
	return false
}

// CheckPrivilege is the nil-tolerant form of HasPrivilege: a guest (nil
// user) holds no privilege.
func CheckPrivilege(u *User, priv Privilege) bool {
	return u != nil && u.HasPrivilege(priv)
}

// AddPrivilege grants priv. Returns false if the user already held it.
func (u *User) AddPrivilege(priv Privilege) bool {
	for _, p := range u.Privileges {
		if p == priv {
			return false
		}
	}
	u.Privileges = append(u.Privileges, priv)
	return true
}

// DelPrivilege revokes priv. Returns false if the user did not hold it.
func (u *User) DelPrivilege(priv Privilege) bool {
	for i, p := range u.Privileges {
		if p == priv {
			u.Privileges = append(u.Privileges[:i], u.Privileges[i+1:]...)
			return true
		}
	}
	return false
}

// InGroup reports whether the cached group list contains groupUUID
func (u *User) InGroup(groupUUID uuid.UUID) bool {
	for _, g := range u.Groups {
		if g == groupUUID {
			return true
		}
	}
	return false
}

// Actor adapts the user for allow/deny list evaluation
func (u *User) Actor() *permission.Actor {
	return &permission.Actor{UUID: u.UUID, Groups: u.Groups}
}

// CheckPermission decides whether u may perform the operation guarded by pc.
// A nil user is a guest and is admitted only by pc.GuestAllow. Admins and
// holders of the bypass privilege are admitted unconditionally; everyone
// else goes through the allow/deny lists.
func CheckPermission(u *User, pc *permission.PermissionControl, bypass Privilege) bool {
	if pc == nil {
		return false
	}
	if u == nil {
		return pc.GuestAllow
	}
	if u.HasPrivilege(bypass) {
		return true
	}
	return permission.Check(u.Actor(), pc)
}
