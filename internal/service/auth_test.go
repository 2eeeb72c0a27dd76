package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskhub/internal/apperrors"
	"taskhub/internal/models"
)

func TestLoginIssuesTokenAndUpdatesLastLogin(t *testing.T) {
	f := newFixture(t)
	u, _ := f.user(t, models.RoleUser)
	require.Nil(t, u.LastLogin)

	res, err := f.svc.Auth.Login(f.ctx, LoginInput{Email: u.Email, Password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, u.ID, res.User.ID)

	stored, err := f.store.Users().GetByID(f.ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastLogin)

	p, err := f.svc.Auth.Authenticate(f.ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, p.UserID)
	assert.Equal(t, models.RoleUser, p.Role)
	assert.NotEmpty(t, p.TokenID)
}

func TestLoginEmailIsCaseInsensitive(t *testing.T) {
	f := newFixture(t)
	u, _ := f.user(t, models.RoleUser)

	_, err := f.svc.Auth.Login(f.ctx, LoginInput{Email: "USER1@Example.com", Password: "password123"})
	require.NoError(t, err, u.Email)
}

func TestLoginWrongPasswordLeavesLastLogin(t *testing.T) {
	f := newFixture(t)
	u, _ := f.user(t, models.RoleUser)

	_, err := f.svc.Auth.Login(f.ctx, LoginInput{Email: u.Email, Password: "wrong-password"})
	assert.True(t, isKind[*apperrors.AuthenticationError](err), "got %v", err)

	stored, err := f.store.Users().GetByID(f.ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.LastLogin)
}

func TestLoginUnknownEmail(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Auth.Login(f.ctx, LoginInput{Email: "ghost@example.com", Password: "whatever"})
	assert.True(t, isKind[*apperrors.AuthenticationError](err), "got %v", err)
}

func TestLoginInactiveAccount(t *testing.T) {
	f := newFixture(t)
	u, _ := f.user(t, models.RoleUser)
	_, admin := f.user(t, models.RoleAdmin)
	inactive := false
	_, err := f.svc.Users.Update(f.ctx, admin, u.ID, UpdateUserInput{IsActive: &inactive})
	require.NoError(t, err)

	_, err = f.svc.Auth.Login(f.ctx, LoginInput{Email: u.Email, Password: "password123"})
	assert.True(t, isKind[*apperrors.AuthenticationError](err), "got %v", err)
}

func TestLoginValidatesInput(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Auth.Login(f.ctx, LoginInput{Email: "not-an-email"})
	assert.True(t, isKind[*apperrors.ValidationError](err), "got %v", err)
}

func TestAuthenticateRejectsBadTokens(t *testing.T) {
	f := newFixture(t)
	u, _ := f.user(t, models.RoleUser)

	_, err := f.svc.Auth.Authenticate(f.ctx, "not-a-token")
	assert.True(t, isKind[*apperrors.AuthenticationError](err))

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		Role: models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			ID:        "forged",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("other-secret"))
	require.NoError(t, err)
	_, err = f.svc.Auth.Authenticate(f.ctx, forged)
	assert.True(t, isKind[*apperrors.AuthenticationError](err))

	expired, err := f.svc.Auth.issue(u, time.Now().Add(-2*time.Hour), time.Now().Add(-time.Hour))
	require.NoError(t, err)
	_, err = f.svc.Auth.Authenticate(f.ctx, expired)
	assert.True(t, isKind[*apperrors.AuthenticationError](err))
}

func TestAuthenticateUsesStoredRole(t *testing.T) {
	f := newFixture(t)
	u, _ := f.user(t, models.RoleUser)
	_, admin := f.user(t, models.RoleAdmin)

	res, err := f.svc.Auth.Login(f.ctx, LoginInput{Email: u.Email, Password: "password123"})
	require.NoError(t, err)

	role := models.RoleAdmin
	_, err = f.svc.Users.Update(f.ctx, admin, u.ID, UpdateUserInput{Role: &role})
	require.NoError(t, err)

	p, err := f.svc.Auth.Authenticate(f.ctx, res.Token)
	require.NoError(t, err)
	assert.True(t, p.IsAdmin())
}

func TestLogoutRevokesToken(t *testing.T) {
	f := newFixture(t)
	u, _ := f.user(t, models.RoleUser)

	res, err := f.svc.Auth.Login(f.ctx, LoginInput{Email: u.Email, Password: "password123"})
	require.NoError(t, err)
	p, err := f.svc.Auth.Authenticate(f.ctx, res.Token)
	require.NoError(t, err)

	require.NoError(t, f.svc.Auth.Logout(f.ctx, p))

	_, err = f.svc.Auth.Authenticate(f.ctx, res.Token)
	assert.True(t, isKind[*apperrors.AuthenticationError](err), "got %v", err)
}

func TestAuthenticateDeletedUser(t *testing.T) {
	f := newFixture(t)
	u, p := f.user(t, models.RoleUser)
	res, err := f.svc.Auth.Login(f.ctx, LoginInput{Email: u.Email, Password: "password123"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Users.Delete(f.ctx, p, u.ID))
	_, err = f.svc.Auth.Authenticate(f.ctx, res.Token)
	assert.True(t, isKind[*apperrors.AuthenticationError](err))
}
