package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/middleware/auth"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type CartHTTP struct {
	Svc *service.CartService
}

func (h *CartHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get")

	cart, err := h.Svc.Get(ctx, auth.UserID(c))
	if err != nil {
		return failed(l, "get_cart_failed", err)
	}
	return c.JSON(http.StatusOK, cart)
}

// Add answers 201 for a new line and 200 when the quantity was merged into an
// existing one.
func (h *CartHTTP) Add(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	var req transport.AddToCartRequest
	if err := bind(c, &req); err != nil {
		return failed(l, "add_to_cart_failed", err)
	}

	userID := auth.UserID(c)
	item, created, err := h.Svc.Add(ctx, userID, req)
	if err != nil {
		return failed(l, "add_to_cart_failed", err)
	}

	l.Info("add_to_cart_success", "user_id", userID, "item_id", item.ID, "created", created)
	if created {
		return c.JSON(http.StatusCreated, item)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *CartHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.update")

	itemID, err := paramID(c, "itemId")
	if err != nil {
		return failed(l, "update_cart_item_failed", err)
	}
	var req transport.UpdateCartItemRequest
	if err := bind(c, &req); err != nil {
		return failed(l, "update_cart_item_failed", err)
	}
	item, err := h.Svc.Update(ctx, auth.UserID(c), itemID, req)
	if err != nil {
		return failed(l, "update_cart_item_failed", err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *CartHTTP) Remove(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove")

	itemID, err := paramID(c, "itemId")
	if err != nil {
		return failed(l, "remove_cart_item_failed", err)
	}
	if err := h.Svc.Remove(ctx, auth.UserID(c), itemID); err != nil {
		return failed(l, "remove_cart_item_failed", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CartHTTP) Clear(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.clear")

	if err := h.Svc.Clear(ctx, auth.UserID(c)); err != nil {
		return failed(l, "clear_cart_failed", err)
	}
	return c.NoContent(http.StatusNoContent)
}
