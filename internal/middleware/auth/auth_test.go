package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/rbac"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/pkg/httperr"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

type fakeAuth struct {
	users     map[string]models.Role
	expired   map[string]bool
	refreshed int
}

func (f *fakeAuth) Authenticate(token string) (uint, models.Role, error) {
	if f.expired[token] {
		return 0, "", fmt.Errorf("parse: %w", jwt.ErrTokenExpired)
	}
	role, ok := f.users[token]
	if !ok {
		return 0, "", jwt.ErrTokenSignatureInvalid
	}
	return 7, role, nil
}

func (f *fakeAuth) Refresh(_ context.Context, refreshToken string) (*service.LoginResult, error) {
	switch refreshToken {
	case "good-refresh":
	case "rotated":
		return nil, fmt.Errorf("refresh: %w", service.ErrTokenReused)
	default:
		return nil, errors.New("revoked")
	}
	f.refreshed++
	return &service.LoginResult{
		AccessToken:  "new-access",
		RefreshToken: "new-refresh",
		AccessExp:    time.Now().Add(time.Minute),
		RefreshExp:   time.Now().Add(time.Hour),
		User:         &models.User{ID: 7, Role: models.RoleCustomer},
	}, nil
}

func newFake() *fakeAuth {
	return &fakeAuth{
		users:   map[string]models.Role{"customer": models.RoleCustomer, "admin": models.RoleAdmin},
		expired: map[string]bool{"stale": true},
	}
}

func run(t *testing.T, m *Middleware, req *http.Request, guards ...echo.MiddlewareFunc) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var h echo.HandlerFunc = func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{"user_id": UserID(c), "role": Role(c)})
	}
	for i := len(guards) - 1; i >= 0; i-- {
		h = guards[i](h)
	}
	return rec, m.RequireAuth(h)(c)
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var he *httperr.Error
	require.True(t, errors.As(err, &he), "got %v", err)
	return he.Status
}

func TestRequireAuth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		header  string
		cookies []*http.Cookie
		status  int
	}{
		{name: "bearer", header: "Bearer customer", status: http.StatusOK},
		{name: "bearer invalid", header: "Bearer forged", status: http.StatusUnauthorized},
		{name: "bearer expired is not refreshed", header: "Bearer stale", cookies: []*http.Cookie{{Name: tokens.RefreshCookie, Value: "good-refresh"}}, status: http.StatusUnauthorized},
		{name: "cookie", cookies: []*http.Cookie{{Name: tokens.AccessCookie, Value: "customer"}}, status: http.StatusOK},
		{name: "cookie invalid", cookies: []*http.Cookie{{Name: tokens.AccessCookie, Value: "forged"}}, status: http.StatusUnauthorized},
		{name: "nothing", status: http.StatusUnauthorized},
		{name: "expired without refresh", cookies: []*http.Cookie{{Name: tokens.AccessCookie, Value: "stale"}}, status: http.StatusUnauthorized},
		{name: "expired with bad refresh", cookies: []*http.Cookie{{Name: tokens.AccessCookie, Value: "stale"}, {Name: tokens.RefreshCookie, Value: "revoked"}}, status: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			for _, ck := range tt.cookies {
				req.AddCookie(ck)
			}

			rec, err := run(t, New(newFake()), req)
			if tt.status == http.StatusOK {
				require.NoError(t, err)
				assert.Equal(t, http.StatusOK, rec.Code)
				assert.JSONEq(t, `{"user_id":7,"role":"customer"}`, rec.Body.String())
				return
			}
			assert.Equal(t, tt.status, statusOf(t, err))
		})
	}
}

func TestRequireAuth_RefreshesExpiredCookie(t *testing.T) {
	t.Parallel()

	fake := newFake()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: tokens.AccessCookie, Value: "stale"})
	req.AddCookie(&http.Cookie{Name: tokens.RefreshCookie, Value: "good-refresh"})

	rec, err := run(t, New(fake), req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, fake.refreshed)

	set := map[string]string{}
	for _, ck := range rec.Result().Cookies() {
		set[ck.Name] = ck.Value
		assert.True(t, ck.HttpOnly)
	}
	assert.Equal(t, "new-access", set[tokens.AccessCookie])
	assert.Equal(t, "new-refresh", set[tokens.RefreshCookie])
}

func TestRequireAuth_RefreshesMissingAccessCookie(t *testing.T) {
	t.Parallel()

	fake := newFake()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: tokens.RefreshCookie, Value: "good-refresh"})

	_, err := run(t, New(fake), req)
	require.NoError(t, err)
	assert.Equal(t, 1, fake.refreshed)
}

func TestAuthorize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		token  string
		perms  []rbac.Permission
		status int
	}{
		{name: "admin manages categories", token: "admin", perms: []rbac.Permission{rbac.ManageCategory}, status: http.StatusOK},
		{name: "customer can not", token: "customer", perms: []rbac.Permission{rbac.ManageCategory}, status: http.StatusForbidden},
		{name: "any of", token: "customer", perms: []rbac.Permission{rbac.ViewAllOrders, rbac.ViewOwnOrders}, status: http.StatusOK},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(echo.HeaderAuthorization, "Bearer "+tt.token)
			rec, err := run(t, New(newFake()), req, Authorize(tt.perms...))
			if tt.status == http.StatusOK {
				require.NoError(t, err)
				assert.Equal(t, http.StatusOK, rec.Code)
				return
			}
			assert.Equal(t, tt.status, statusOf(t, err))
		})
	}
}

func TestRequireAuth_RefreshFailureCookies(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		refresh string
		cleared bool
	}{
		{name: "invalid refresh clears session", refresh: "revoked", cleared: true},
		{name: "rotated by concurrent request keeps cookies", refresh: "rotated", cleared: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.AddCookie(&http.Cookie{Name: tokens.AccessCookie, Value: "stale"})
			req.AddCookie(&http.Cookie{Name: tokens.RefreshCookie, Value: tt.refresh})

			rec, err := run(t, New(newFake()), req)
			assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
			if tt.cleared {
				assert.NotEmpty(t, rec.Result().Cookies())
			} else {
				assert.Empty(t, rec.Result().Cookies())
			}
		})
	}
}
