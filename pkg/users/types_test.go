package users

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gavel-oj/gavel/pkg/permission"
)

func TestIsValidUserName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{name: "simple", input: "alice", valid: true},
		{name: "allowed specials", input: "a-b_c.d#e$f", valid: true},
		{name: "max length", input: "aaaaaaaaaaaaaaaa", valid: true},
		{name: "too long", input: "aaaaaaaaaaaaaaaaa", valid: false},
		{name: "empty", input: "", valid: false},
		{name: "space", input: "a b", valid: false},
		{name: "unicode", input: "héllo", valid: false},
		{name: "percent", input: "a%b", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, IsValidUserName(tt.input))
		})
	}
}

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("alice@example.com"))
	assert.True(t, IsValidEmail("menci@x"), "dotless domains are valid mailboxes")
	assert.False(t, IsValidEmail("alice"))
	assert.False(t, IsValidEmail("alice@"))
	assert.False(t, IsValidEmail("@example.com"))
	assert.False(t, IsValidEmail("Alice <alice@example.com>"), "display names are not bare addresses")
	assert.False(t, IsValidEmail("a@"+strings.Repeat("x", 260)))
}

func TestPasswordHashing(t *testing.T) {
	u := &User{}
	require.NoError(t, u.SetPassword("secret"))
	assert.NotEqual(t, "secret", u.PasswordHash)
	assert.True(t, u.CheckPassword("secret"))
	assert.False(t, u.CheckPassword("wrong"))
}

func TestParsePrivilege(t *testing.T) {
	p, ok := ParsePrivilege("ManageProblems")
	require.True(t, ok)
	assert.Equal(t, PrivilegeManageProblems, p)

	_, ok = ParsePrivilege("LaunchMissiles")
	assert.False(t, ok)
}

func TestPrivileges(t *testing.T) {
	u := &User{}
	assert.False(t, u.HasPrivilege(PrivilegeManageUsers))

	assert.True(t, u.AddPrivilege(PrivilegeManageUsers))
	assert.False(t, u.AddPrivilege(PrivilegeManageUsers), "second grant is a no-op")
	assert.True(t, u.HasPrivilege(PrivilegeManageUsers))

	assert.True(t, u.DelPrivilege(PrivilegeManageUsers))
	assert.False(t, u.DelPrivilege(PrivilegeManageUsers), "second revoke is a no-op")
	assert.False(t, u.HasPrivilege(PrivilegeManageUsers))
}

func TestAdminHasEveryPrivilege(t *testing.T) {
	u := &User{IsAdmin: true}
	assert.True(t, u.HasPrivilege(PrivilegeManageProblems))
	assert.True(t, u.HasPrivilege(PrivilegeManageUsers))
}

func TestCheckPrivilege(t *testing.T) {
	assert.False(t, CheckPrivilege(nil, PrivilegeManageUsers), "guest holds no privilege")
	assert.False(t, CheckPrivilege(&User{}, PrivilegeManageUsers))
	assert.True(t, CheckPrivilege(&User{Privileges: []Privilege{PrivilegeManageUsers}}, PrivilegeManageUsers))
	assert.True(t, CheckPrivilege(&User{IsAdmin: true}, PrivilegeManageUsers))
}

func TestCheckPermission(t *testing.T) {
	userUUID := uuid.New()
	groupUUID := uuid.New()

	t.Run("guest follows guestAllow", func(t *testing.T) {
		assert.True(t, CheckPermission(nil, &permission.PermissionControl{GuestAllow: true}, PrivilegeManageProblems))
		assert.False(t, CheckPermission(nil, &permission.PermissionControl{GuestAllow: false}, PrivilegeManageProblems))
	})

	t.Run("nil control denies", func(t *testing.T) {
		assert.False(t, CheckPermission(nil, nil, PrivilegeManageProblems))
		assert.False(t, CheckPermission(&User{UUID: userUUID, IsAdmin: true}, nil, PrivilegeManageProblems))
	})

	t.Run("admin bypasses deny list", func(t *testing.T) {
		pc := &permission.PermissionControl{DefaultAllow: true, UserUUIDs: []uuid.UUID{userUUID}}
		u := &User{UUID: userUUID, IsAdmin: true}
		assert.True(t, CheckPermission(u, pc, PrivilegeManageProblems))
	})

	t.Run("bypass privilege overrides deny list", func(t *testing.T) {
		pc := &permission.PermissionControl{DefaultAllow: true, UserUUIDs: []uuid.UUID{userUUID}}
		u := &User{UUID: userUUID, Privileges: []Privilege{PrivilegeManageProblems}}
		assert.True(t, CheckPermission(u, pc, PrivilegeManageProblems))
		assert.False(t, CheckPermission(u, pc, PrivilegeManageUsers), "unrelated privilege does not bypass")
	})

	t.Run("falls through to list evaluation", func(t *testing.T) {
		pc := &permission.PermissionControl{GroupUUIDs: []uuid.UUID{groupUUID}}
		member := &User{UUID: userUUID, Groups: []uuid.UUID{groupUUID}}
		outsider := &User{UUID: uuid.New()}
		assert.True(t, CheckPermission(member, pc, PrivilegeManageProblems))
		assert.False(t, CheckPermission(outsider, pc, PrivilegeManageProblems))
	})
}
