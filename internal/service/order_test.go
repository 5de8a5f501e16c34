package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/testutil"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type orderFixture struct {
	orders *OrderService
	cart   *CartService
	db     *gorm.DB
	user   *models.User
	prod   *models.Product
}

func newOrderFixture(t *testing.T) *orderFixture {
	r := newRepo(t)
	f := &orderFixture{
		orders: &OrderService{Repo: r, Events: &fakePublisher{}},
		cart:   &CartService{Repo: r, MaxQuantity: 10},
		db:     r.DB,
	}
	f.user = testutil.SeedUser(t, f.db, "orders@example.com", models.RoleCustomer)
	f.prod = testutil.SeedProduct(t, f.db, "jacket", "50.00", 5, 2)
	require.NoError(t, f.db.Model(&f.prod.Details[0]).Update("discount", "10").Error)
	return f
}

func (f *orderFixture) stock(t *testing.T, detailID uint) int {
	t.Helper()
	var d models.ProductDetail
	require.NoError(t, f.db.First(&d, detailID).Error)
	return d.Stock
}

func TestOrderService_PlaceFromCart(t *testing.T) {
	t.Parallel()

	f := newOrderFixture(t)
	ctx := context.Background()
	d0, d1 := f.prod.Details[0].ID, f.prod.Details[1].ID

	_, err := f.orders.PlaceFromCart(ctx, f.user.ID)
	requireStatus(t, err, http.StatusBadRequest)

	_, _, err = f.cart.Add(ctx, f.user.ID, transport.AddToCartRequest{ProductID: f.prod.ID, ProductDetailID: d0, Quantity: 2})
	require.NoError(t, err)
	_, _, err = f.cart.Add(ctx, f.user.ID, transport.AddToCartRequest{ProductID: f.prod.ID, ProductDetailID: d1, Quantity: 1})
	require.NoError(t, err)

	order, err := f.orders.PlaceFromCart(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	require.Len(t, order.Items, 2)
	assert.True(t, decimal.RequireFromString("45").Equal(order.Items[0].PricePerItem))
	assert.True(t, decimal.RequireFromString("50").Equal(order.Items[1].PricePerItem))
	assert.True(t, decimal.RequireFromString("140").Equal(order.TotalAmount), order.TotalAmount.String())

	assert.Equal(t, 3, f.stock(t, d0))
	assert.Equal(t, 1, f.stock(t, d1))

	var p models.Product
	require.NoError(t, f.db.First(&p, f.prod.ID).Error)
	assert.Equal(t, 3, p.BoughtTimes)

	cart, err := f.cart.Get(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	// price changes after placement do not touch the snapshot
	require.NoError(t, f.db.Model(&models.Product{}).Where("id = ?", f.prod.ID).Update("price", "99.00").Error)
	stored, err := f.orders.Get(ctx, Viewer{UserID: f.user.ID}, order.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("140").Equal(stored.TotalAmount))
}

func TestOrderService_PlaceFor_RollsBack(t *testing.T) {
	t.Parallel()

	f := newOrderFixture(t)
	ctx := context.Background()
	d0 := f.prod.Details[0].ID

	tests := []struct {
		name   string
		req    transport.AdminCreateOrderRequest
		status int
	}{
		{
			name:   "missing variant",
			req:    transport.AdminCreateOrderRequest{UserID: f.user.ID, Items: []transport.OrderLineRequest{{ProductDetailID: d0, Quantity: 1}, {ProductDetailID: 999, Quantity: 1}}},
			status: http.StatusNotFound,
		},
		{
			name:   "short stock across duplicate lines",
			req:    transport.AdminCreateOrderRequest{UserID: f.user.ID, Items: []transport.OrderLineRequest{{ProductDetailID: d0, Quantity: 3}, {ProductDetailID: d0, Quantity: 3}}},
			status: http.StatusBadRequest,
		},
		{
			name:   "unknown user",
			req:    transport.AdminCreateOrderRequest{UserID: 999, Items: []transport.OrderLineRequest{{ProductDetailID: d0, Quantity: 1}}},
			status: http.StatusNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.orders.PlaceFor(ctx, tt.req)
			requireStatus(t, err, tt.status)
			assert.Equal(t, 5, f.stock(t, d0))
		})
	}

	var count int64
	require.NoError(t, f.db.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count)

	he := requireStatus(t, func() error {
		_, err := f.orders.PlaceFor(ctx, tests[0].req)
		return err
	}(), http.StatusNotFound)
	assert.Equal(t, "Product with ID 999 not found", he.Message)
}

func TestOrderService_ListAndGet(t *testing.T) {
	t.Parallel()

	f := newOrderFixture(t)
	ctx := context.Background()
	other := testutil.SeedUser(t, f.db, "other@example.com", models.RoleCustomer)
	line := []transport.OrderLineRequest{{ProductDetailID: f.prod.Details[0].ID, Quantity: 1}}

	mine, err := f.orders.PlaceFor(ctx, transport.AdminCreateOrderRequest{UserID: f.user.ID, Items: line})
	require.NoError(t, err)
	_, err = f.orders.PlaceFor(ctx, transport.AdminCreateOrderRequest{UserID: other.ID, Items: line})
	require.NoError(t, err)

	total, orders, _, err := f.orders.List(ctx, Viewer{UserID: f.user.ID}, OrderQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, orders, 1)
	assert.Equal(t, mine.ID, orders[0].ID)

	total, _, meta, err := f.orders.List(ctx, Viewer{UserID: 1, ViewAll: true}, OrderQuery{Size: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, int64(2), meta.TotalPages)

	_, err = f.orders.Get(ctx, Viewer{UserID: other.ID}, mine.ID)
	requireStatus(t, err, http.StatusForbidden)
	_, err = f.orders.Get(ctx, Viewer{UserID: other.ID, ViewAll: true}, mine.ID)
	require.NoError(t, err)
	_, err = f.orders.Get(ctx, Viewer{UserID: f.user.ID}, 999)
	requireStatus(t, err, http.StatusNotFound)
}

func TestOrderService_UpdateStatus(t *testing.T) {
	t.Parallel()

	f := newOrderFixture(t)
	ctx := context.Background()
	d0 := f.prod.Details[0].ID
	owner := Viewer{UserID: f.user.ID}
	staff := Viewer{UserID: 9999, ViewAll: true, Manage: true}

	order, err := f.orders.PlaceFor(ctx, transport.AdminCreateOrderRequest{UserID: f.user.ID, Items: []transport.OrderLineRequest{{ProductDetailID: d0, Quantity: 2}}})
	require.NoError(t, err)
	assert.Equal(t, 3, f.stock(t, d0))

	_, err = f.orders.UpdateStatus(ctx, owner, order.ID, models.OrderStatusShipped)
	requireStatus(t, err, http.StatusForbidden)
	_, err = f.orders.UpdateStatus(ctx, Viewer{UserID: 12345}, order.ID, models.OrderStatusCancelled)
	requireStatus(t, err, http.StatusForbidden)

	msg, err := f.orders.UpdateStatus(ctx, staff, order.ID, models.OrderStatusShipped)
	require.NoError(t, err)
	assert.Equal(t, "Order status updated to Shipped successfully", msg)

	msg, err = f.orders.UpdateStatus(ctx, owner, order.ID, models.OrderStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, "Order cancelled successfully", msg)
	assert.Equal(t, 5, f.stock(t, d0))

	_, err = f.orders.UpdateStatus(ctx, owner, order.ID, models.OrderStatusCancelled)
	requireStatus(t, err, http.StatusConflict)

	var items int64
	require.NoError(t, f.db.Model(&models.OrderItem{}).Where("order_id = ?", order.ID).Count(&items).Error)
	assert.Zero(t, items)
}

func TestOrderService_CancelDelivered(t *testing.T) {
	t.Parallel()

	f := newOrderFixture(t)
	ctx := context.Background()
	staff := Viewer{UserID: 1, ViewAll: true, Manage: true}

	order, err := f.orders.PlaceFor(ctx, transport.AdminCreateOrderRequest{UserID: f.user.ID, Items: []transport.OrderLineRequest{{ProductDetailID: f.prod.Details[1].ID, Quantity: 1}}})
	require.NoError(t, err)
	_, err = f.orders.UpdateStatus(ctx, staff, order.ID, models.OrderStatusDelivered)
	require.NoError(t, err)

	_, err = f.orders.UpdateStatus(ctx, staff, order.ID, models.OrderStatusCancelled)
	requireStatus(t, err, http.StatusConflict)
	assert.Equal(t, 1, f.stock(t, f.prod.Details[1].ID))
}

func TestOrderService_Delete(t *testing.T) {
	t.Parallel()

	f := newOrderFixture(t)
	ctx := context.Background()

	order, err := f.orders.PlaceFor(ctx, transport.AdminCreateOrderRequest{UserID: f.user.ID, Items: []transport.OrderLineRequest{{ProductDetailID: f.prod.Details[0].ID, Quantity: 1}}})
	require.NoError(t, err)

	require.NoError(t, f.orders.Delete(ctx, order.ID))
	requireStatus(t, f.orders.Delete(ctx, order.ID), http.StatusNotFound)
}
