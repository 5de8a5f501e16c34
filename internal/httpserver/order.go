package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/middleware/auth"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/rbac"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/pagination"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func viewer(c echo.Context) service.Viewer {
	return service.Viewer{
		UserID:  auth.UserID(c),
		ViewAll: auth.Can(c, rbac.ViewAllOrders),
		Manage:  auth.Can(c, rbac.UpdateOrder),
	}
}

func (h *OrderHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create")

	userID := auth.UserID(c)
	o, err := h.Svc.PlaceFromCart(ctx, userID)
	if err != nil {
		return failed(l, "create_order_failed", err)
	}

	l.Info("create_order_success", "order_id", o.ID, "user_id", userID)
	return c.JSON(http.StatusCreated, o)
}

func (h *OrderHTTP) CreateFor(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create_for")

	var req transport.AdminCreateOrderRequest
	if err := bind(c, &req); err != nil {
		return failed(l, "create_order_failed", err)
	}
	o, err := h.Svc.PlaceFor(ctx, req)
	if err != nil {
		return failed(l, "create_order_failed", err)
	}

	l.Info("create_order_success", "order_id", o.ID, "user_id", o.UserID, "by", auth.UserID(c))
	return c.JSON(http.StatusCreated, o)
}

func (h *OrderHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list")

	q := service.OrderQuery{
		Status: models.OrderStatus(c.QueryParam("status")),
		Page:   pagination.ParseIntDefault(c.QueryParam("page"), 1),
		Size:   pagination.ParseIntDefault(c.QueryParam("size"), pagination.DefaultPageSize),
	}
	if q.Status != "" && !q.Status.Valid() {
		return failed(l, "list_orders_failed", badRequest(nil, "Invalid status filter"))
	}
	uid, err := queryUint(c, "user_id")
	if err != nil {
		return failed(l, "list_orders_failed", err)
	}
	if uid != 0 {
		q.UserID = &uid
	}

	_, orders, meta, err := h.Svc.List(ctx, viewer(c), q)
	if err != nil {
		return failed(l, "list_orders_failed", err)
	}
	return c.JSON(http.StatusOK, map[string]any{"data": orders, "meta": meta})
}

func (h *OrderHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get")

	id, err := paramID(c, "orderId")
	if err != nil {
		return failed(l, "get_order_failed", err)
	}
	o, err := h.Svc.Get(ctx, viewer(c), id)
	if err != nil {
		return failed(l, "get_order_failed", err)
	}
	return c.JSON(http.StatusOK, o)
}

func (h *OrderHTTP) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_status")

	id, err := paramID(c, "orderId")
	if err != nil {
		return failed(l, "update_order_failed", err)
	}
	var req transport.UpdateOrderStatusRequest
	if err := bind(c, &req); err != nil {
		return failed(l, "update_order_failed", err)
	}

	msg, err := h.Svc.UpdateStatus(ctx, viewer(c), id, req.Status)
	if err != nil {
		return failed(l, "update_order_failed", err)
	}

	l.Info("update_order_success", "order_id", id, "status", req.Status)
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: msg})
}

func (h *OrderHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.delete")

	id, err := paramID(c, "orderId")
	if err != nil {
		return failed(l, "delete_order_failed", err)
	}
	if err := h.Svc.Delete(ctx, id); err != nil {
		return failed(l, "delete_order_failed", err)
	}

	l.Info("delete_order_success", "order_id", id)
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Order deleted successfully"})
}
