package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type CategoryHTTP struct {
	Svc *service.CategoryService
}

// List serves the flat list, the nested tree (?isnested=true) or the direct
// children of one parent (?parent=N, 0 for roots).
func (h *CategoryHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.list")

	if nested, _ := strconv.ParseBool(c.QueryParam("isnested")); nested {
		tree, err := h.Svc.Tree(ctx)
		if err != nil {
			return failed(l, "list_categories_failed", err)
		}
		return c.JSON(http.StatusOK, tree)
	}

	if c.QueryParam("parent") != "" {
		parent, err := queryUint(c, "parent")
		if err != nil {
			return failed(l, "list_categories_failed", err)
		}
		children, err := h.Svc.Children(ctx, parent)
		if err != nil {
			return failed(l, "list_categories_failed", err)
		}
		return c.JSON(http.StatusOK, children)
	}

	cats, err := h.Svc.List(ctx)
	if err != nil {
		return failed(l, "list_categories_failed", err)
	}
	return c.JSON(http.StatusOK, cats)
}

func (h *CategoryHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.get")

	id, err := paramID(c, "id")
	if err != nil {
		return failed(l, "get_category_failed", err)
	}
	cat, err := h.Svc.Get(ctx, id)
	if err != nil {
		return failed(l, "get_category_failed", err)
	}
	return c.JSON(http.StatusOK, cat)
}

func (h *CategoryHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.create")

	var req transport.CategoryRequest
	if err := bind(c, &req); err != nil {
		return failed(l, "create_category_failed", err)
	}
	cat, err := h.Svc.Create(ctx, req)
	if err != nil {
		return failed(l, "create_category_failed", err)
	}

	l.Info("create_category_success", "category_id", cat.ID)
	return c.JSON(http.StatusCreated, cat)
}

func (h *CategoryHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.update")

	id, err := paramID(c, "id")
	if err != nil {
		return failed(l, "update_category_failed", err)
	}
	var req transport.PatchCategoryRequest
	if err := bind(c, &req); err != nil {
		return failed(l, "update_category_failed", err)
	}
	cat, err := h.Svc.Update(ctx, id, req)
	if err != nil {
		return failed(l, "update_category_failed", err)
	}

	l.Info("update_category_success", "category_id", cat.ID)
	return c.JSON(http.StatusOK, cat)
}

func (h *CategoryHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.delete")

	id, err := paramID(c, "id")
	if err != nil {
		return failed(l, "delete_category_failed", err)
	}
	if err := h.Svc.Delete(ctx, id); err != nil {
		return failed(l, "delete_category_failed", err)
	}

	l.Info("delete_category_success", "category_id", id)
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Category deleted successfully"})
}
