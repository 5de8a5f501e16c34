package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/rbac"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/pkg/httperr"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

const (
	ctxUserID = "user_id"
	ctxRole   = "role"
)

type Authenticator interface {
	Authenticate(token string) (uint, models.Role, error)
	Refresh(ctx context.Context, refreshToken string) (*service.LoginResult, error)
}

type Middleware struct {
	Svc Authenticator
}

func New(svc Authenticator) *Middleware {
	return &Middleware{Svc: svc}
}

func unauthorized(msg string) error {
	return httperr.New(http.StatusUnauthorized, msg, httperr.KindMiddleware)
}

func bearer(c echo.Context) string {
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func cookieValue(c echo.Context, name string) string {
	ck, err := c.Cookie(name)
	if err != nil {
		return ""
	}
	return ck.Value
}

// RequireAuth accepts a bearer token first and the access cookie second. An
// expired or missing access cookie is renewed from the refresh cookie.
func (m *Middleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		l := logging.FromContext(c.Request().Context()).With("middleware", "auth")

		if token := bearer(c); token != "" {
			id, role, err := m.Svc.Authenticate(token)
			if err != nil {
				l.Warn("auth_failed", "status", 401, "reason", "invalid bearer token", "error", err)
				if errors.Is(err, jwt.ErrTokenExpired) {
					return unauthorized("Access token expired")
				}
				return unauthorized("Invalid access token")
			}
			setUserContext(c, id, role)
			return next(c)
		}

		access := cookieValue(c, tokens.AccessCookie)
		if access != "" {
			id, role, err := m.Svc.Authenticate(access)
			if err == nil {
				setUserContext(c, id, role)
				return next(c)
			}
			if !errors.Is(err, jwt.ErrTokenExpired) {
				ClearAuthCookies(c)
				l.Warn("auth_failed", "status", 401, "reason", "invalid access cookie", "error", err)
				return unauthorized("Invalid access token")
			}
		}

		refresh := cookieValue(c, tokens.RefreshCookie)
		if refresh == "" {
			if access != "" {
				ClearAuthCookies(c)
				return unauthorized("Access token expired")
			}
			return unauthorized("Authentication required")
		}

		res, err := m.Svc.Refresh(c.Request().Context(), refresh)
		if err != nil {
			// A concurrent request may have rotated this token already and
			// set fresh cookies; clearing them here would log the user out.
			if !errors.Is(err, service.ErrTokenReused) {
				ClearAuthCookies(c)
			}
			l.Warn("auth_failed", "status", 401, "reason", "refresh failed", "error", err)
			return unauthorized("Session expired")
		}
		SetAuthCookies(c, res)
		l.Info("token_refreshed", "user_id", res.User.ID)

		setUserContext(c, res.User.ID, res.User.Role)
		return next(c)
	}
}

// Authorize passes when the authenticated role holds any of perms.
// It must run after RequireAuth.
func Authorize(perms ...rbac.Permission) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role := Role(c)
			if !rbac.CanAny(role, perms...) {
				logging.FromContext(c.Request().Context()).Warn("auth_forbidden",
					"status", 403, "role", role, "user_id", UserID(c))
				return httperr.New(http.StatusForbidden, "Forbidden: insufficient permissions", httperr.KindMiddleware)
			}
			return next(c)
		}
	}
}

func SetAuthCookies(c echo.Context, res *service.LoginResult) {
	c.SetCookie(tokens.CreateCookie(tokens.AccessCookie, res.AccessToken, "/", res.AccessExp))
	c.SetCookie(tokens.CreateCookie(tokens.RefreshCookie, res.RefreshToken, "/", res.RefreshExp))
}

// ClearAuthCookies expires both session cookies.
func ClearAuthCookies(c echo.Context) {
	c.SetCookie(tokens.DeleteCookie(tokens.AccessCookie, "/"))
	c.SetCookie(tokens.DeleteCookie(tokens.RefreshCookie, "/"))
}

func setUserContext(c echo.Context, id uint, role models.Role) {
	c.Set(ctxUserID, id)
	c.Set(ctxRole, role)
}

func UserID(c echo.Context) uint {
	id, _ := c.Get(ctxUserID).(uint)
	return id
}

func Role(c echo.Context) models.Role {
	role, _ := c.Get(ctxRole).(models.Role)
	return role
}

func Can(c echo.Context, perm rbac.Permission) bool {
	return rbac.Can(Role(c), perm)
}
