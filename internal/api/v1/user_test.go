package v1

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAllUsersAdminOnly(t *testing.T) {
	ta := newTestApp(t)
	token, _ := ta.newUser(t)

	status, _ := ta.call(t, "GET", "/api/v1/users", token, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, result := ta.call(t, "GET", "/api/v1/users", ta.adminToken(t), nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, dataList(t, result), 2)
}

func TestGetUser(t *testing.T) {
	ta := newTestApp(t)
	token, id := ta.newUser(t)
	_, otherID := ta.newUser(t)

	status, _ := ta.call(t, "GET", "/api/v1/users/"+id, token, nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = ta.call(t, "GET", "/api/v1/users/"+otherID, token, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = ta.call(t, "GET", "/api/v1/users/missing", ta.adminToken(t), nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestUpdateUserIgnoresUnknownFields(t *testing.T) {
	ta := newTestApp(t)
	token, id := ta.newUser(t)

	status, result := ta.call(t, "PATCH", "/api/v1/users/"+id, token, map[string]any{
		"firstName": "Renamed",
		"nickname":  "ghost",
		"email":     "hijack@example.com",
	})
	require.Equal(t, http.StatusOK, status, result)

	status, result = ta.call(t, "GET", "/api/v1/users/me", token, nil)
	require.Equal(t, http.StatusOK, status)
	me := dataMap(t, result)
	assert.Equal(t, "Renamed", me["firstName"])
	assert.NotContains(t, me, "nickname")
	assert.NotEqual(t, "hijack@example.com", me["email"])
}

func TestUpdateUserRejectsBadInput(t *testing.T) {
	ta := newTestApp(t)
	_, id := ta.newUser(t)
	admin := ta.adminToken(t)

	status, _ := ta.call(t, "PATCH", "/api/v1/users/"+id, admin, map[string]any{"role": "superuser"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = ta.call(t, "PATCH", "/api/v1/users/"+id, admin, map[string]any{"isActive": "yes"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, result := ta.call(t, "PATCH", "/api/v1/users/"+id, admin, map[string]any{"role": "admin"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "admin", dataMap(t, result)["role"])
}

func TestUserCannotPromoteSelf(t *testing.T) {
	ta := newTestApp(t)
	token, id := ta.newUser(t)

	status, _ := ta.call(t, "PATCH", "/api/v1/users/"+id, token, map[string]any{"role": "admin"})
	assert.Equal(t, http.StatusForbidden, status)
}

func TestChangePassword(t *testing.T) {
	ta := newTestApp(t)
	token, id := ta.newUser(t)

	status, _ := ta.call(t, "PUT", "/api/v1/users/"+id+"/password", token, map[string]string{
		"currentPassword": "wrong",
		"newPassword":     "brandnew1",
	})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = ta.call(t, "PUT", "/api/v1/users/"+id+"/password", token, map[string]string{
		"currentPassword": "secret123",
		"newPassword":     "brandnew1",
	})
	require.Equal(t, http.StatusOK, status)

	_, result := ta.call(t, "GET", "/api/v1/users/me", token, nil)
	email := dataMap(t, result)["email"].(string)
	assert.NotEmpty(t, ta.login(t, email, "brandnew1"))
}

func TestDeleteUser(t *testing.T) {
	ta := newTestApp(t)
	token, id := ta.newUser(t)
	_, otherID := ta.newUser(t)

	status, _ := ta.call(t, "DELETE", "/api/v1/users/"+otherID, token, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = ta.call(t, "DELETE", "/api/v1/users/"+id, token, nil)
	require.Equal(t, http.StatusOK, status)

	status, result := ta.call(t, "GET", "/api/v1/users/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.True(t, strings.Contains(result["message"].(string), "no longer exists"))
}
