package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type GroupHTTP struct {
	Svc *service.GroupService
}

func (h *GroupHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "group.list")

	groups, err := h.Svc.List(ctx)
	if err != nil {
		return failed(l, "list_groups_failed", err)
	}
	return c.JSON(http.StatusOK, groups)
}

func (h *GroupHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "group.get")

	id, err := paramID(c, "groupId")
	if err != nil {
		return failed(l, "get_group_failed", err)
	}
	g, err := h.Svc.Get(ctx, id)
	if err != nil {
		return failed(l, "get_group_failed", err)
	}
	return c.JSON(http.StatusOK, g)
}

func (h *GroupHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "group.create")

	var req transport.GroupRequest
	if err := bind(c, &req); err != nil {
		return failed(l, "create_group_failed", err)
	}
	g, err := h.Svc.Create(ctx, req)
	if err != nil {
		return failed(l, "create_group_failed", err)
	}

	l.Info("create_group_success", "group_id", g.ID)
	return c.JSON(http.StatusCreated, g)
}

func (h *GroupHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "group.update")

	id, err := paramID(c, "groupId")
	if err != nil {
		return failed(l, "update_group_failed", err)
	}
	var req transport.GroupRequest
	if err := bind(c, &req); err != nil {
		return failed(l, "update_group_failed", err)
	}
	g, err := h.Svc.Update(ctx, id, req)
	if err != nil {
		return failed(l, "update_group_failed", err)
	}
	return c.JSON(http.StatusOK, g)
}

func (h *GroupHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "group.delete")

	id, err := paramID(c, "groupId")
	if err != nil {
		return failed(l, "delete_group_failed", err)
	}
	if err := h.Svc.Delete(ctx, id); err != nil {
		return failed(l, "delete_group_failed", err)
	}

	l.Info("delete_group_success", "group_id", id)
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Group deleted successfully"})
}

func (h *GroupHTTP) ids(c echo.Context) (uint, uint, error) {
	groupID, err := paramID(c, "groupId")
	if err != nil {
		return 0, 0, err
	}
	productID, err := paramID(c, "productId")
	if err != nil {
		return 0, 0, err
	}
	return groupID, productID, nil
}

func (h *GroupHTTP) AddProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "group.add_product")

	groupID, productID, err := h.ids(c)
	if err != nil {
		return failed(l, "group_add_product_failed", err)
	}
	if err := h.Svc.AddProduct(ctx, groupID, productID); err != nil {
		return failed(l, "group_add_product_failed", err)
	}
	return c.JSON(http.StatusCreated, transport.MessageResponse{Message: "Product added to group"})
}

func (h *GroupHTTP) RemoveProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "group.remove_product")

	groupID, productID, err := h.ids(c)
	if err != nil {
		return failed(l, "group_remove_product_failed", err)
	}
	if err := h.Svc.RemoveProduct(ctx, groupID, productID); err != nil {
		return failed(l, "group_remove_product_failed", err)
	}
	return c.NoContent(http.StatusNoContent)
}
