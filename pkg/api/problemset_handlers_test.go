package api

import (
	"encoding/json"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gavel-oj/gavel/pkg/users"
)

func setRow(id uuid.UUID, pcJSON string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"uuid", "problem_count", "name", "url_name", "permission_control", "own_user",
	}).AddRow(id, 0, "Beginner Contest", "beginner", []byte(pcJSON), nil)
}

const openListClosedModify = `{"list":{"defaultAllow":false,"guestAllow":true,"userUUIDs":[],"groupUUIDs":[]},"modify":{"defaultAllow":false,"guestAllow":false,"userUUIDs":[],"groupUUIDs":[]}}`
const closedPair = `{"list":{"defaultAllow":false,"guestAllow":false,"userUUIDs":[],"groupUUIDs":[]},"modify":{"defaultAllow":false,"guestAllow":false,"userUUIDs":[],"groupUUIDs":[]}}`

func TestGetProblemSet_GuestAllowed(t *testing.T) {
	ts := newTestServer(t, false)

	id := uuid.New()
	ts.mock.ExpectQuery("SELECT (.+) FROM problem_sets WHERE url_name").
		WithArgs("beginner").
		WillReturnRows(setRow(id, openListClosedModify))

	_, env := ts.do(t, "GET", "/problemSet/getByUrlName/beginner", nil)
	require.True(t, env.Success)

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Result, &result))
	assert.Equal(t, "beginner", result["urlName"])
	assert.NotContains(t, result, "permissionControl",
		"permission controls are hidden from non-managers")
}

func TestGetProblemSet_GuestDenied(t *testing.T) {
	ts := newTestServer(t, false)

	id := uuid.New()
	ts.mock.ExpectQuery("SELECT (.+) FROM problem_sets WHERE url_name").
		WithArgs("beginner").
		WillReturnRows(setRow(id, closedPair))

	_, env := ts.do(t, "GET", "/problemSet/getByUrlName/beginner", nil)
	assert.False(t, env.Success)
	assert.Equal(t, "PermissionDenied", env.Error["type"])
}

func TestGetProblemSet_ManagerSeesPermissionControl(t *testing.T) {
	ts := newTestServer(t, false)

	cookie := ts.login(t, testUser(users.PrivilegeManageProblems))

	id := uuid.New()
	ts.mock.ExpectQuery("SELECT (.+) FROM problem_sets WHERE url_name").
		WithArgs("beginner").
		WillReturnRows(setRow(id, closedPair))

	_, env := ts.do(t, "GET", "/problemSet/getByUrlName/beginner", nil, cookie)
	require.True(t, env.Success, "privilege bypasses the closed list")

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Result, &result))
	assert.Contains(t, result, "permissionControl")
}

func TestGetProblemSet_AllowListedUser(t *testing.T) {
	ts := newTestServer(t, false)

	u := testUser()
	cookie := ts.login(t, u)

	pcJSON := `{"list":{"defaultAllow":false,"guestAllow":false,"userUUIDs":["` + u.UUID.String() + `"],"groupUUIDs":[]},"modify":{"defaultAllow":false,"guestAllow":false,"userUUIDs":[],"groupUUIDs":[]}}`

	id := uuid.New()
	ts.mock.ExpectQuery("SELECT (.+) FROM problem_sets WHERE url_name").
		WithArgs("beginner").
		WillReturnRows(setRow(id, pcJSON))

	_, env := ts.do(t, "GET", "/problemSet/getByUrlName/beginner", nil, cookie)
	require.True(t, env.Success)

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Result, &result))
	assert.NotContains(t, result, "permissionControl",
		"list access alone does not reveal the permission controls")
}

// modifyListedPair grants list to everyone and puts u on the modify allow
// list, without any privilege involved.
func modifyListedPair(u *users.User) string {
	return `{"list":{"defaultAllow":false,"guestAllow":true,"userUUIDs":[],"groupUUIDs":[]},"modify":{"defaultAllow":false,"guestAllow":false,"userUUIDs":["` + u.UUID.String() + `"],"groupUUIDs":[]}}`
}

func TestGetProblemSet_ModifyListedUserSeesNoPermissionControl(t *testing.T) {
	ts := newTestServer(t, false)

	u := testUser()
	cookie := ts.login(t, u)

	id := uuid.New()
	ts.mock.ExpectQuery("SELECT (.+) FROM problem_sets WHERE url_name").
		WithArgs("beginner").
		WillReturnRows(setRow(id, modifyListedPair(u)))

	_, env := ts.do(t, "GET", "/problemSet/getByUrlName/beginner", nil, cookie)
	require.True(t, env.Success)

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Result, &result))
	assert.NotContains(t, result, "permissionControl",
		"a seat on the modify list does not reveal the allow lists")
}

func TestDeleteProblemSet_RequiresManageProblems(t *testing.T) {
	ts := newTestServer(t, false)

	u := testUser()
	cookie := ts.login(t, u)

	id := uuid.New()
	ts.mock.ExpectQuery("SELECT (.+) FROM problem_sets WHERE uuid").
		WithArgs(id).
		WillReturnRows(setRow(id, modifyListedPair(u)))

	_, env := ts.do(t, "POST", "/problemSet/delete",
		map[string]interface{}{"uuid": id}, cookie)
	assert.False(t, env.Success,
		"a seat on the modify list does not allow deleting the set")
	assert.Equal(t, "PermissionDenied", env.Error["type"])
	assert.NoError(t, ts.mock.ExpectationsWereMet())
}

func TestUpdatePermissionControl_RequiresManageProblems(t *testing.T) {
	ts := newTestServer(t, false)

	u := testUser()
	cookie := ts.login(t, u)

	id := uuid.New()
	ts.mock.ExpectQuery("SELECT (.+) FROM problem_sets WHERE uuid").
		WithArgs(id).
		WillReturnRows(setRow(id, modifyListedPair(u)))

	body := map[string]interface{}{
		"uuid": id,
		"permissionControl": map[string]interface{}{
			"list":   map[string]interface{}{"defaultAllow": true},
			"modify": map[string]interface{}{},
		},
	}
	_, env := ts.do(t, "POST", "/problemSet/updatePermissionControl", body, cookie)
	assert.False(t, env.Success,
		"a seat on the modify list does not allow rewriting the controls")
	assert.Equal(t, "PermissionDenied", env.Error["type"])
	assert.NoError(t, ts.mock.ExpectationsWereMet())
}

func TestGetProblemSetByOwnUser(t *testing.T) {
	ts := newTestServer(t, false)

	u := testUser()
	cookie := ts.login(t, u)

	setUUID := uuid.New()
	rows := sqlmock.NewRows([]string{
		"uuid", "problem_count", "name", "url_name", "permission_control", "own_user",
	}).AddRow(setUUID, 1, nil, nil, nil, u.UUID)

	ts.mock.ExpectQuery("SELECT (.+) FROM problem_sets WHERE own_user").
		WithArgs(u.UUID).
		WillReturnRows(rows)

	_, env := ts.do(t, "GET", "/problemSet/getByOwnUser/"+u.UUID.String(), nil, cookie)
	require.True(t, env.Success)
}

func TestGetProblemSetByOwnUser_OtherUser(t *testing.T) {
	ts := newTestServer(t, false)

	cookie := ts.login(t, testUser())

	_, env := ts.do(t, "GET", "/problemSet/getByOwnUser/"+uuid.New().String(), nil, cookie)
	assert.False(t, env.Success)
	assert.Equal(t, "PermissionDenied", env.Error["type"])
}

func TestCreateProblemSet_DuplicateUrlName(t *testing.T) {
	ts := newTestServer(t, false)

	cookie := ts.login(t, testUser(users.PrivilegeManageProblems))

	ts.mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("test").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	_, env := ts.do(t, "POST", "/problemSet/create",
		map[string]string{"name": "Another", "urlName": "test"}, cookie)
	assert.False(t, env.Success)
	assert.Equal(t, "DuplicateError", env.Error["error"])
	assert.Equal(t, "ProblemSet", env.Error["objectType"])
}

func TestUpdatePermissionControl_GuestModifyRejected(t *testing.T) {
	ts := newTestServer(t, false)

	cookie := ts.login(t, testUser(users.PrivilegeManageProblems))

	id := uuid.New()
	ts.mock.ExpectQuery("SELECT (.+) FROM problem_sets WHERE uuid").
		WithArgs(id).
		WillReturnRows(setRow(id, closedPair))

	body := map[string]interface{}{
		"uuid": id,
		"permissionControl": map[string]interface{}{
			"list":   map[string]interface{}{"guestAllow": true},
			"modify": map[string]interface{}{"guestAllow": true},
		},
	}
	_, env := ts.do(t, "POST", "/problemSet/updatePermissionControl", body, cookie)
	assert.False(t, env.Success)
	assert.Equal(t, "InvalidInputError", env.Error["error"])
	assert.Equal(t, "modify.guestAllow", env.Error["fieldName"])
}
