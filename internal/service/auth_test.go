package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

func newTestAuthService(t *testing.T) *AuthService {
	return &AuthService{
		Repo:          newRepo(t),
		JWTSecret:     []byte("test-jwt-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    24 * time.Hour,
	}
}

func signup(t *testing.T, svc *AuthService, email string) *models.User {
	t.Helper()
	u, err := svc.Register(context.Background(), transport.SignupRequest{Name: "Tester", Email: email, Password: "password123"})
	require.NoError(t, err)
	return u
}

func TestAuthService_CreateAccessToken_SetsExpectedClaims(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	exp := time.Now().Add(15 * time.Minute).UTC()

	token, err := svc.CreateAccessToken(&models.User{ID: 42, Role: models.RoleStaff}, exp)
	require.NoError(t, err)

	claims, err := tokens.AccessClaimsFromToken(token, svc.JWTSecret)
	require.NoError(t, err)
	assert.Equal(t, "staff", claims.Role)
	assert.Equal(t, "42", claims.Subject)
	assert.WithinDuration(t, exp, claims.ExpiresAt.Time, time.Second)

	id, role, err := svc.Authenticate(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
	assert.Equal(t, models.RoleStaff, role)
}

func TestAuthService_Authenticate_Expired(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	token, err := svc.CreateAccessToken(&models.User{ID: 1, Role: models.RoleCustomer}, time.Now().Add(-time.Minute))
	require.NoError(t, err)

	_, _, err = svc.Authenticate(token)
	require.Error(t, err)
}

func TestAuthService_Register(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	u := signup(t, svc, "Buyer@Example.com")

	assert.Equal(t, "buyer@example.com", u.Email)
	assert.Equal(t, models.RoleCustomer, u.Role)
	assert.NotEqual(t, "password123", u.PasswordHash)

	_, err := svc.Register(context.Background(), transport.SignupRequest{Name: "Other", Email: "buyer@example.com", Password: "password123"})
	requireStatus(t, err, http.StatusConflict)
}

func TestAuthService_Login(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	ctx := context.Background()
	signup(t, svc, "login@example.com")

	tests := []struct {
		name     string
		email    string
		password string
		status   int
	}{
		{name: "unknown email", email: "nobody@example.com", password: "password123", status: http.StatusUnauthorized},
		{name: "wrong password", email: "login@example.com", password: "wrong-password", status: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(ctx, transport.LoginRequest{Email: tt.email, Password: tt.password})
			he := requireStatus(t, err, tt.status)
			assert.Equal(t, "Invalid credentials", he.Message)
		})
	}

	res, err := svc.Login(ctx, transport.LoginRequest{Email: "login@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)
	assert.Equal(t, "login@example.com", res.User.Email)

	claims, err := tokens.RefreshClaimsFromToken(res.RefreshToken, svc.RefreshSecret)
	require.NoError(t, err)
	stored, err := svc.Repo.FindRefreshByJTI(ctx, claims.ID)
	require.NoError(t, err)
	assert.Equal(t, tokens.Sha256Hex(res.RefreshToken), stored.Token)
	assert.False(t, stored.Revoked)
}

func TestAuthService_Refresh_RotatesToken(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	ctx := context.Background()
	signup(t, svc, "rotate@example.com")

	first, err := svc.Login(ctx, transport.LoginRequest{Email: "rotate@example.com", Password: "password123"})
	require.NoError(t, err)

	second, err := svc.Refresh(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	_, err = svc.Refresh(ctx, first.RefreshToken)
	requireStatus(t, err, http.StatusUnauthorized)
	assert.True(t, errors.Is(err, ErrTokenReused))
	assert.True(t, errors.Is(err, ErrUnauthorized))

	_, err = svc.Refresh(ctx, second.RefreshToken)
	require.NoError(t, err)
}

func TestAuthService_Refresh_Invalid(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Refresh(ctx, "")
	requireStatus(t, err, http.StatusUnauthorized)

	_, err = svc.Refresh(ctx, "not-a-jwt")
	requireStatus(t, err, http.StatusUnauthorized)

	forged, err := svc.CreateRefreshToken(1, tokens.NewJTI(), time.Now().Add(time.Hour))
	require.NoError(t, err)
	_, err = svc.Refresh(ctx, forged)
	requireStatus(t, err, http.StatusUnauthorized)
}

func TestAuthService_LogOut_RevokesToken(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	ctx := context.Background()
	signup(t, svc, "logout@example.com")

	res, err := svc.Login(ctx, transport.LoginRequest{Email: "logout@example.com", Password: "password123"})
	require.NoError(t, err)

	require.NoError(t, svc.LogOut(ctx, res.RefreshToken))
	require.NoError(t, svc.LogOut(ctx, ""))

	_, err = svc.Refresh(ctx, res.RefreshToken)
	requireStatus(t, err, http.StatusUnauthorized)
}

func TestAuthService_ChangePassword(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	ctx := context.Background()
	u := signup(t, svc, "pw@example.com")

	res, err := svc.Login(ctx, transport.LoginRequest{Email: "pw@example.com", Password: "password123"})
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, u.ID, transport.ChangePasswordRequest{Password: "bad-password", NewPassword: "newpassword1"})
	requireStatus(t, err, http.StatusBadRequest)

	require.NoError(t, svc.ChangePassword(ctx, u.ID, transport.ChangePasswordRequest{Password: "password123", NewPassword: "newpassword1"}))

	_, err = svc.Refresh(ctx, res.RefreshToken)
	assert.True(t, errors.Is(err, ErrUnauthorized))

	_, err = svc.Login(ctx, transport.LoginRequest{Email: "pw@example.com", Password: "newpassword1"})
	require.NoError(t, err)
}
