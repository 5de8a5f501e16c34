package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/middleware/auth"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func (h *AuthHTTP) Signup(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.signup")

	var req transport.SignupRequest
	if err := bind(c, &req); err != nil {
		return failed(l, "signup_failed", err)
	}

	u, err := h.Svc.Register(ctx, req)
	if err != nil {
		return failed(l, "signup_failed", err)
	}

	l.Info("signup_success", "user_id", u.ID)
	return c.JSON(http.StatusCreated, map[string]any{"user": transport.NewUserResponse(u)})
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := bind(c, &req); err != nil {
		return failed(l, "login_failed", err)
	}

	res, err := h.Svc.Login(ctx, req)
	if err != nil {
		return failed(l, "login_failed", err)
	}
	auth.SetAuthCookies(c, res)

	l.Info("login_success", "user_id", res.User.ID)
	return c.JSON(http.StatusOK, transport.LoginResponse{
		AccessToken: res.AccessToken,
		User:        transport.NewUserResponse(res.User),
	})
}

// refreshToken reads the refresh cookie and falls back to the JSON body.
func refreshToken(c echo.Context) string {
	if ck, err := c.Cookie(tokens.RefreshCookie); err == nil && ck.Value != "" {
		return ck.Value
	}
	var req transport.RefreshRequest
	if err := c.Bind(&req); err != nil {
		return ""
	}
	return req.RefreshToken
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.refresh")

	res, err := h.Svc.Refresh(ctx, refreshToken(c))
	if err != nil {
		auth.ClearAuthCookies(c)
		return failed(l, "refresh_failed", err)
	}
	auth.SetAuthCookies(c, res)

	l.Info("refresh_success", "user_id", res.User.ID)
	return c.JSON(http.StatusOK, transport.LoginResponse{
		AccessToken: res.AccessToken,
		User:        transport.NewUserResponse(res.User),
	})
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.logout")

	if err := h.Svc.LogOut(ctx, refreshToken(c)); err != nil {
		return failed(l, "logout_failed", err)
	}
	auth.ClearAuthCookies(c)

	l.Info("logout_success")
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Logged out successfully"})
}

func (h *AuthHTTP) ChangePassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.change_password")

	var req transport.ChangePasswordRequest
	if err := bind(c, &req); err != nil {
		return failed(l, "change_password_failed", err)
	}

	userID := auth.UserID(c)
	if err := h.Svc.ChangePassword(ctx, userID, req); err != nil {
		return failed(l, "change_password_failed", err)
	}
	auth.ClearAuthCookies(c)

	l.Info("change_password_success", "user_id", userID)
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Password updated successfully"})
}
