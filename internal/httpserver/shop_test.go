package httpserver

import (
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/testutil"
	"github.com/Skotchmaster/storefront/internal/transport"
)

func TestCart(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	tok, _ := s.tokenFor(t, "c@example.com", models.RoleCustomer)
	other, _ := s.tokenFor(t, "o@example.com", models.RoleCustomer)
	p := testutil.SeedProduct(t, s.db, "tee", "20.00", 5, 0)
	detail := p.Details[0]

	add := transport.AddToCartRequest{ProductID: p.ID, ProductDetailID: detail.ID, Quantity: 2}
	rec := s.do(t, http.MethodPost, "/shop/cart", add, tok)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	item := decode[models.CartItem](t, rec)

	add.Quantity = 1
	rec = s.do(t, http.MethodPost, "/shop/cart", add, tok)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/shop/cart", transport.AddToCartRequest{ProductID: p.ID, ProductDetailID: p.Details[1].ID, Quantity: 1}, tok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Product out of stock", decode[message](t, rec).Message)

	rec = s.do(t, http.MethodGet, "/shop/cart", nil, tok)
	require.Equal(t, http.StatusOK, rec.Code)
	cart := decode[transport.CartResponse](t, rec)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.True(t, cart.TotalAmount.Equal(decimal.NewFromInt(60)), cart.TotalAmount.String())

	path := "/shop/cart/" + itoa(item.ID)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodPut, path, transport.UpdateCartItemRequest{Quantity: 1}, other).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPut, path, transport.UpdateCartItemRequest{Quantity: 6}, tok).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodPut, path, transport.UpdateCartItemRequest{Quantity: 4}, tok).Code)

	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, path, nil, tok).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodDelete, path, nil, tok).Code)
	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, "/shop/cart", nil, tok).Code)
}

func TestCart_StaffHasNoCart(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	staff, _ := s.tokenFor(t, "staff@example.com", models.RoleStaff)

	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/shop/cart", nil, staff).Code)
}

func TestOrders(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	tok, cu := s.tokenFor(t, "c@example.com", models.RoleCustomer)
	other, _ := s.tokenFor(t, "o@example.com", models.RoleCustomer)
	staff, _ := s.tokenFor(t, "staff@example.com", models.RoleStaff)
	admin, _ := s.tokenFor(t, "admin@example.com", models.RoleAdmin)
	p := testutil.SeedProduct(t, s.db, "tee", "20.00", 5)

	rec := s.do(t, http.MethodPost, "/shop/order", nil, tok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Cart is empty", decode[message](t, rec).Message)

	add := transport.AddToCartRequest{ProductID: p.ID, ProductDetailID: p.Details[0].ID, Quantity: 2}
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/shop/cart", add, tok).Code)

	rec = s.do(t, http.MethodPost, "/shop/order", nil, tok)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	o := decode[models.Order](t, rec)
	assert.Equal(t, models.OrderStatusPending, o.Status)
	assert.True(t, o.TotalAmount.Equal(decimal.NewFromInt(40)), o.TotalAmount.String())

	cart := decode[transport.CartResponse](t, s.do(t, http.MethodGet, "/shop/cart", nil, tok))
	assert.Empty(t, cart.Items)

	path := "/shop/order/" + itoa(o.ID)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, path, nil, other).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, path, nil, staff).Code)

	type listed struct {
		Data []models.Order `json:"data"`
	}
	assert.Len(t, decode[listed](t, s.do(t, http.MethodGet, "/shop/order", nil, tok)).Data, 1)
	assert.Empty(t, decode[listed](t, s.do(t, http.MethodGet, "/shop/order", nil, other)).Data)
	assert.Len(t, decode[listed](t, s.do(t, http.MethodGet, "/shop/order?user_id="+itoa(cu.ID), nil, staff)).Data, 1)

	shipped := transport.UpdateOrderStatusRequest{Status: models.OrderStatusShipped}
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodPut, path, shipped, tok).Code)
	rec = s.do(t, http.MethodPut, path, shipped, staff)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Order status updated to Shipped successfully", decode[message](t, rec).Message)

	rec = s.do(t, http.MethodPut, path, transport.UpdateOrderStatusRequest{Status: models.OrderStatusCancelled}, tok)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Order cancelled successfully", decode[message](t, rec).Message)

	rec = s.do(t, http.MethodPut, path, transport.UpdateOrderStatusRequest{Status: models.OrderStatusCancelled}, tok)
	assert.Equal(t, http.StatusConflict, rec.Code)

	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodDelete, path, nil, staff).Code)
	rec = s.do(t, http.MethodDelete, path, nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Order deleted successfully", decode[message](t, rec).Message)
}

func TestOrders_AdminPlacesForUser(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	admin, _ := s.tokenFor(t, "admin@example.com", models.RoleAdmin)
	_, cu := s.tokenFor(t, "c@example.com", models.RoleCustomer)
	p := testutil.SeedProduct(t, s.db, "tee", "20.00", 1)

	req := transport.AdminCreateOrderRequest{
		UserID: cu.ID,
		Items:  []transport.OrderLineRequest{{ProductDetailID: p.Details[0].ID, Quantity: 2}},
	}
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/shop/admin/order", req, admin).Code)

	req.Items[0].Quantity = 1
	rec := s.do(t, http.MethodPost, "/shop/admin/order", req, admin)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, cu.ID, decode[models.Order](t, rec).UserID)

	req.Items[0].ProductDetailID = 999
	rec = s.do(t, http.MethodPost, "/shop/admin/order", req, admin)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Product with ID 999 not found", decode[message](t, rec).Message)
}
