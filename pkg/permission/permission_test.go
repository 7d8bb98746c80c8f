package permission

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gavel-oj/gavel/pkg/errs"
)

// fakeResolver resolves identifiers from in-memory sets and can be forced to
// fail, standing in for the users/groups services.
type fakeResolver struct {
	users  map[string]uuid.UUID
	groups map[string]uuid.UUID
	err    error
}

func (f *fakeResolver) ResolveUser(_ context.Context, id string) (uuid.UUID, bool, error) {
	if f.err != nil {
		return uuid.Nil, false, f.err
	}
	u, ok := f.users[id]
	return u, ok, nil
}

func (f *fakeResolver) ResolveGroup(_ context.Context, id string) (uuid.UUID, bool, error) {
	if f.err != nil {
		return uuid.Nil, false, f.err
	}
	g, ok := f.groups[id]
	return g, ok, nil
}

func newFakeResolver() (*fakeResolver, []uuid.UUID, []uuid.UUID) {
	r := &fakeResolver{users: map[string]uuid.UUID{}, groups: map[string]uuid.UUID{}}
	var users, groups []uuid.UUID
	for i := 0; i < 20; i++ {
		u := uuid.New()
		g := uuid.New()
		r.users[u.String()] = u
		r.groups[g.String()] = g
		users = append(users, u)
		groups = append(groups, g)
	}
	return r, users, groups
}

func TestNormalize(t *testing.T) {
	ctx := context.Background()
	resolver, users, groups := newFakeResolver()

	t.Run("coerces missing fields", func(t *testing.T) {
		pc, err := Normalize(ctx, nil, resolver, 10, 10)
		require.NoError(t, err)
		assert.False(t, pc.DefaultAllow)
		assert.False(t, pc.GuestAllow)
		assert.Empty(t, pc.UserUUIDs)
		assert.Empty(t, pc.GroupUUIDs)
	})

	t.Run("keeps resolvable ids in first-seen order", func(t *testing.T) {
		input := &Wire{
			DefaultAllow: true,
			UserUUIDs:    []string{users[2].String(), users[0].String(), users[1].String()},
			GroupUUIDs:   []string{groups[1].String(), groups[0].String()},
		}
		pc, err := Normalize(ctx, input, resolver, 10, 10)
		require.NoError(t, err)
		assert.True(t, pc.DefaultAllow)
		assert.Equal(t, []uuid.UUID{users[2], users[0], users[1]}, pc.UserUUIDs)
		assert.Equal(t, []uuid.UUID{groups[1], groups[0]}, pc.GroupUUIDs)
	})

	t.Run("drops malformed and unresolvable ids silently", func(t *testing.T) {
		input := &Wire{
			UserUUIDs:  []string{"not-a-uuid", uuid.New().String(), users[3].String()},
			GroupUUIDs: []string{"", uuid.New().String(), groups[3].String()},
		}
		pc, err := Normalize(ctx, input, resolver, 10, 10)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{users[3]}, pc.UserUUIDs)
		assert.Equal(t, []uuid.UUID{groups[3]}, pc.GroupUUIDs)
	})

	t.Run("deduplicates preserving first occurrence", func(t *testing.T) {
		input := &Wire{
			UserUUIDs: []string{users[0].String(), users[1].String(), users[0].String()},
		}
		pc, err := Normalize(ctx, input, resolver, 10, 10)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{users[0], users[1]}, pc.UserUUIDs)
	})

	t.Run("caps input before resolution", func(t *testing.T) {
		var userIDs, groupIDs []string
		for i := 0; i < 20; i++ {
			userIDs = append(userIDs, users[i].String())
			groupIDs = append(groupIDs, groups[i].String())
		}
		pc, err := Normalize(ctx, &Wire{UserUUIDs: userIDs, GroupUUIDs: groupIDs}, resolver, 10, 5)
		require.NoError(t, err)
		assert.Len(t, pc.UserUUIDs, 10)
		assert.Len(t, pc.GroupUUIDs, 5)
		assert.Equal(t, users[:10], pc.UserUUIDs)
		assert.Equal(t, groups[:5], pc.GroupUUIDs)
	})

	t.Run("duplicates of a capped prefix are not refilled", func(t *testing.T) {
		// Two slots, both filled by the same user: the cap bounds the input
		// entries considered, not the output size.
		input := &Wire{UserUUIDs: []string{users[0].String(), users[0].String(), users[1].String()}}
		pc, err := Normalize(ctx, input, resolver, 2, 2)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{users[0]}, pc.UserUUIDs)
	})

	t.Run("resolver failure aborts", func(t *testing.T) {
		broken := &fakeResolver{err: fmt.Errorf("database connection error")}
		_, err := Normalize(ctx, &Wire{UserUUIDs: []string{uuid.New().String()}}, broken, 10, 10)
		require.Error(t, err)
		assert.False(t, errs.IsSemantic(err))
	})
}

func TestWireConversion(t *testing.T) {
	t.Run("nil round-trips to nil", func(t *testing.T) {
		assert.Nil(t, ToWire(nil))
		pc, err := FromWire(nil)
		require.NoError(t, err)
		assert.Nil(t, pc)
	})

	t.Run("round trip preserves everything", func(t *testing.T) {
		pc := &PermissionControl{
			DefaultAllow: true,
			GuestAllow:   true,
			UserUUIDs:    []uuid.UUID{uuid.New(), uuid.New()},
			GroupUUIDs:   []uuid.UUID{uuid.New()},
		}
		back, err := FromWire(ToWire(pc))
		require.NoError(t, err)
		assert.Equal(t, pc, back)
	})

	t.Run("malformed id is invalid input", func(t *testing.T) {
		_, err := FromWire(&Wire{UserUUIDs: []string{"garbage"}})
		var inv *errs.InvalidInputError
		require.ErrorAs(t, err, &inv)
		assert.Equal(t, "userUUIDs", inv.FieldName)
	})
}
