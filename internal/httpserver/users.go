package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/middleware/auth"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/pagination"
)

type UserHTTP struct {
	Svc *service.UserService
}

func (h *UserHTTP) Me(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.me")

	u, err := h.Svc.Me(ctx, auth.UserID(c))
	if err != nil {
		return failed(l, "get_me_failed", err)
	}
	return c.JSON(http.StatusOK, u)
}

// UpdateMe lets a user change their own name and email, never their role.
func (h *UserHTTP) UpdateMe(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.update_me")

	var req transport.UpdateUserRequest
	if err := bind(c, &req); err != nil {
		return failed(l, "update_me_failed", err)
	}

	u, err := h.Svc.Update(ctx, auth.UserID(c), req, false)
	if err != nil {
		return failed(l, "update_me_failed", err)
	}

	l.Info("update_me_success", "user_id", u.ID)
	return c.JSON(http.StatusOK, transport.NewUserResponse(u))
}

func (h *UserHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.list")

	limit := pagination.ParseIntDefault(c.QueryParam("limit"), pagination.DefaultPageSize)
	offset := pagination.ParseIntDefault(c.QueryParam("offset"), 0)
	if limit < 1 || limit > pagination.MaxPageSize {
		limit = pagination.DefaultPageSize
	}
	if offset < 0 {
		offset = 0
	}

	total, users, err := h.Svc.List(ctx, offset, limit)
	if err != nil {
		return failed(l, "list_users_failed", err)
	}
	out := make([]transport.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, transport.NewUserResponse(&users[i]))
	}
	return c.JSON(http.StatusOK, map[string]any{"users": out, "total": total})
}

func (h *UserHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.get")

	id, err := paramID(c, "id")
	if err != nil {
		return failed(l, "get_user_failed", err)
	}
	u, err := h.Svc.Get(ctx, id)
	if err != nil {
		return failed(l, "get_user_failed", err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *UserHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.create")

	var req transport.CreateUserRequest
	if err := bind(c, &req); err != nil {
		return failed(l, "create_user_failed", err)
	}
	u, err := h.Svc.Create(ctx, req)
	if err != nil {
		return failed(l, "create_user_failed", err)
	}

	l.Info("create_user_success", "user_id", u.ID, "role", u.Role)
	return c.JSON(http.StatusCreated, transport.NewUserResponse(u))
}

func (h *UserHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.update")

	id, err := paramID(c, "id")
	if err != nil {
		return failed(l, "update_user_failed", err)
	}
	var req transport.UpdateUserRequest
	if err := bind(c, &req); err != nil {
		return failed(l, "update_user_failed", err)
	}
	u, err := h.Svc.Update(ctx, id, req, true)
	if err != nil {
		return failed(l, "update_user_failed", err)
	}

	l.Info("update_user_success", "user_id", u.ID)
	return c.JSON(http.StatusOK, transport.NewUserResponse(u))
}

func (h *UserHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.delete")

	id, err := paramID(c, "id")
	if err != nil {
		return failed(l, "delete_user_failed", err)
	}
	if err := h.Svc.Delete(ctx, id); err != nil {
		return failed(l, "delete_user_failed", err)
	}

	l.Info("delete_user_success", "user_id", id)
	return c.NoContent(http.StatusNoContent)
}

func (h *UserHTTP) GetProfile(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "profile.get")

	p, err := h.Svc.GetProfile(ctx, auth.UserID(c))
	if err != nil {
		return failed(l, "get_profile_failed", err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *UserHTTP) CreateProfile(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "profile.create")

	var req transport.ProfileRequest
	if err := bind(c, &req); err != nil {
		return failed(l, "create_profile_failed", err)
	}
	p, err := h.Svc.CreateProfile(ctx, auth.UserID(c), req)
	if err != nil {
		return failed(l, "create_profile_failed", err)
	}

	l.Info("create_profile_success", "user_id", p.UserID)
	return c.JSON(http.StatusCreated, p)
}

func (h *UserHTTP) UpdateProfile(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "profile.update")

	var req transport.PatchProfileRequest
	if err := bind(c, &req); err != nil {
		return failed(l, "update_profile_failed", err)
	}
	p, err := h.Svc.UpdateProfile(ctx, auth.UserID(c), req)
	if err != nil {
		return failed(l, "update_profile_failed", err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *UserHTTP) DeleteProfile(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "profile.delete")

	if err := h.Svc.DeleteProfile(ctx, auth.UserID(c)); err != nil {
		return failed(l, "delete_profile_failed", err)
	}
	return c.NoContent(http.StatusNoContent)
}
