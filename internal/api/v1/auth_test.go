package v1

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	ta := newTestApp(t)

	status, result := ta.call(t, "POST", "/api/v1/auth/register", "", map[string]string{
		"email":     "Jane@Example.com",
		"password":  "secret123",
		"firstName": "Jane",
		"lastName":  "Doe",
	})
	require.Equal(t, http.StatusCreated, status, result)
	data := dataMap(t, result)
	assert.Equal(t, "jane@example.com", data["email"])
	assert.Equal(t, "user", data["role"])
	assert.NotContains(t, data, "password")
}

func TestRegisterValidation(t *testing.T) {
	ta := newTestApp(t)

	status, result := ta.call(t, "POST", "/api/v1/auth/register", "", map[string]string{
		"email":    "not-an-email",
		"password": "123",
	})
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, false, result["success"])

	errs, ok := result["errors"].([]any)
	require.True(t, ok)
	fields := map[string]bool{}
	for _, e := range errs {
		fields[e.(map[string]any)["field"].(string)] = true
	}
	assert.True(t, fields["email"])
	assert.True(t, fields["password"])
	assert.True(t, fields["firstName"])
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ta := newTestApp(t)
	body := map[string]string{"email": "dup@example.com", "password": "secret123", "firstName": "A", "lastName": "B"}

	status, _ := ta.call(t, "POST", "/api/v1/auth/register", "", body)
	require.Equal(t, http.StatusCreated, status)
	status, _ = ta.call(t, "POST", "/api/v1/auth/register", "", body)
	assert.Equal(t, http.StatusConflict, status)
}

func TestRegisterAdminRole(t *testing.T) {
	ta := newTestApp(t)
	body := map[string]string{"email": "boss@example.com", "password": "secret123", "firstName": "A", "lastName": "B", "role": "admin"}

	status, result := ta.call(t, "POST", "/api/v1/auth/register", "", body)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, false, result["success"])

	userToken, _ := ta.newUser(t)
	status, _ = ta.call(t, "POST", "/api/v1/auth/register", userToken, body)
	assert.Equal(t, http.StatusForbidden, status)

	status, result = ta.call(t, "POST", "/api/v1/auth/register", ta.adminToken(t), body)
	require.Equal(t, http.StatusCreated, status, result)
	assert.Equal(t, "admin", dataMap(t, result)["role"])
}

func TestLogin(t *testing.T) {
	ta := newTestApp(t)
	token, id := ta.newUser(t)

	status, result := ta.call(t, "GET", "/api/v1/users/me", token, nil)
	require.Equal(t, http.StatusOK, status)
	me := dataMap(t, result)
	assert.Equal(t, id, me["id"])
	assert.NotNil(t, me["lastLogin"])
}

func TestLoginWrongPassword(t *testing.T) {
	ta := newTestApp(t)

	status, result := ta.call(t, "POST", "/api/v1/auth/login", "", map[string]string{
		"email":    adminEmail,
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "invalid credentials", result["message"])
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	ta := newTestApp(t)

	status, _ := ta.call(t, "GET", "/api/v1/projects", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = ta.call(t, "GET", "/api/v1/projects", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestLogout(t *testing.T) {
	ta := newTestApp(t)
	token, _ := ta.newUser(t)

	status, _ := ta.call(t, "POST", "/api/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = ta.call(t, "GET", "/api/v1/users/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestHealth(t *testing.T) {
	ta := newTestApp(t)
	status, result := ta.call(t, "GET", "/health", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "up", dataMap(t, result)["store"])
}
