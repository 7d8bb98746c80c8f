package users

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gavel-oj/gavel/pkg/errs"
)

func userRows(u *User) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"uuid", "user_name", "email", "description", "password_hash",
		"is_admin", "register_ip", "register_time", "privileges", "groups",
	}).AddRow(
		u.UUID, u.UserName, u.Email, u.Description, u.PasswordHash,
		u.IsAdmin, u.RegisterIP, u.RegisterTime, `["ManageProblems"]`, `[]`,
	)
}

func TestFindByUUID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	service := NewPostgresService(db)

	want := &User{
		UUID:         uuid.New(),
		UserName:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "hash",
		RegisterIP:   "10.0.0.1",
		RegisterTime: time.Now(),
	}

	mock.ExpectQuery("SELECT (.+) FROM users WHERE uuid").
		WithArgs(want.UUID).
		WillReturnRows(userRows(want))

	got, err := service.FindByUUID(context.Background(), want.UUID)
	require.NoError(t, err)
	assert.Equal(t, want.UUID, got.UUID)
	assert.Equal(t, "alice", got.UserName)
	assert.Equal(t, []Privilege{PrivilegeManageProblems}, got.Privileges)
	assert.Empty(t, got.Groups)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByUUID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	service := NewPostgresService(db)

	id := uuid.New()
	mock.ExpectQuery("SELECT (.+) FROM users WHERE uuid").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"uuid"}))

	_, err = service.FindByUUID(context.Background(), id)
	var notFound *errs.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "User", notFound.ObjectType)
}

func TestFindByUserName(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	service := NewPostgresService(db)

	want := &User{UUID: uuid.New(), UserName: "bob", Email: "bob@example.com", RegisterTime: time.Now()}
	mock.ExpectQuery("SELECT (.+) FROM users WHERE user_name").
		WithArgs("bob").
		WillReturnRows(userRows(want))

	got, err := service.FindByUserName(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, want.UUID, got.UUID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	service := NewPostgresService(db)

	newUUID := uuid.New()
	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM users WHERE user_name`).
		WithArgs("carol").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM users WHERE email`).
		WithArgs("carol@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery("INSERT INTO users").
		WillReturnRows(sqlmock.NewRows([]string{"uuid"}).AddRow(newUUID))

	user, err := service.Register(context.Background(), "carol", "carol@example.com", "secret", "10.0.0.2")
	require.NoError(t, err)
	assert.Equal(t, newUUID, user.UUID)
	assert.True(t, user.CheckPassword("secret"))
	assert.False(t, user.IsAdmin)
	assert.Empty(t, user.Privileges)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_DuplicateUserName(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	service := NewPostgresService(db)

	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM users WHERE user_name`).
		WithArgs("carol").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	_, err = service.Register(context.Background(), "carol", "carol@example.com", "secret", "")
	var dup *errs.DuplicateError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "User", dup.ObjectType)
	assert.Equal(t, "carol", dup.Match["userName"])
}

func TestRegister_InvalidInput(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	service := NewPostgresService(db)

	_, err = service.Register(context.Background(), "bad name", "a@b.com", "secret", "")
	var invalid *errs.InvalidInputError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "userName", invalid.FieldName)

	_, err = service.Register(context.Background(), "good", "not-an-email", "secret", "")
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "email", invalid.FieldName)

	_, err = service.Register(context.Background(), "good", "a@b.com", "", "")
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "password", invalid.FieldName)
}

func TestSave(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	service := NewPostgresService(db)

	user := &User{
		UUID:       uuid.New(),
		Email:      "alice@example.com",
		Privileges: []Privilege{PrivilegeManageUsers},
	}

	mock.ExpectExec("UPDATE users").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, service.Save(context.Background(), user))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSave_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	service := NewPostgresService(db)

	mock.ExpectExec("UPDATE users").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = service.Save(context.Background(), &User{UUID: uuid.New()})
	var notFound *errs.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestResolveUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	service := NewPostgresService(db)

	id := uuid.New()

	t.Run("by uuid", func(t *testing.T) {
		mock.ExpectQuery("SELECT uuid FROM users WHERE uuid").
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows([]string{"uuid"}).AddRow(id))

		got, found, err := service.ResolveUser(context.Background(), id.String())
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, id, got)
	})

	t.Run("by user name", func(t *testing.T) {
		mock.ExpectQuery("SELECT uuid FROM users WHERE user_name").
			WithArgs("alice").
			WillReturnRows(sqlmock.NewRows([]string{"uuid"}).AddRow(id))

		got, found, err := service.ResolveUser(context.Background(), "alice")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, id, got)
	})

	t.Run("unknown name resolves to not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT uuid FROM users WHERE user_name").
			WithArgs("ghost").
			WillReturnRows(sqlmock.NewRows([]string{"uuid"}))

		_, found, err := service.ResolveUser(context.Background(), "ghost")
		require.NoError(t, err)
		assert.False(t, found)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
