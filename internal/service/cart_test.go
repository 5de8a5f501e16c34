package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/testutil"
	"github.com/Skotchmaster/storefront/internal/transport"
)

func newCartService(t *testing.T) (*CartService, *fakePublisher) {
	pub := &fakePublisher{}
	return &CartService{Repo: newRepo(t), Events: pub, MaxQuantity: 5}, pub
}

func TestCartService_Add_Rules(t *testing.T) {
	t.Parallel()

	svc, _ := newCartService(t)
	ctx := context.Background()
	db := svc.Repo.DB
	user := testutil.SeedUser(t, db, "cart@example.com", models.RoleCustomer)

	p := testutil.SeedProduct(t, db, "shirt", "20.00", 3, 0, 50)
	plenty := p.Details[2].ID
	other := testutil.SeedProduct(t, db, "socks", "5.00", 4)

	tests := []struct {
		name    string
		req     transport.AddToCartRequest
		status  int
		message string
	}{
		{
			name:    "detail of another product",
			req:     transport.AddToCartRequest{ProductID: p.ID, ProductDetailID: other.Details[0].ID, Quantity: 1},
			status:  http.StatusNotFound,
			message: "Product with ID " + events.Key(p.ID) + " not found",
		},
		{
			name:    "out of stock",
			req:     transport.AddToCartRequest{ProductID: p.ID, ProductDetailID: p.Details[1].ID, Quantity: 1},
			status:  http.StatusBadRequest,
			message: "Product out of stock",
		},
		{
			name:    "not enough stock",
			req:     transport.AddToCartRequest{ProductID: p.ID, ProductDetailID: p.Details[0].ID, Quantity: 4},
			status:  http.StatusBadRequest,
			message: "Not enough stock available",
		},
		{
			name:    "max quantity",
			req:     transport.AddToCartRequest{ProductID: p.ID, ProductDetailID: plenty, Quantity: 6},
			status:  http.StatusBadRequest,
			message: "Maximum quantity exceeded",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Add(ctx, user.ID, tt.req)
			he := requireStatus(t, err, tt.status)
			assert.Equal(t, tt.message, he.Message)
		})
	}
}

func TestCartService_Add_Merges(t *testing.T) {
	t.Parallel()

	svc, pub := newCartService(t)
	ctx := context.Background()
	db := svc.Repo.DB
	user := testutil.SeedUser(t, db, "merge@example.com", models.RoleCustomer)
	p := testutil.SeedProduct(t, db, "hat", "12.00", 10)
	req := transport.AddToCartRequest{ProductID: p.ID, ProductDetailID: p.Details[0].ID, Quantity: 2}

	first, created, err := svc.Add(ctx, user.ID, req)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 2, first.Quantity)

	second, created, err := svc.Add(ctx, user.ID, req)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 4, second.Quantity)

	req.Quantity = 2
	_, _, err = svc.Add(ctx, user.ID, req)
	he := requireStatus(t, err, http.StatusBadRequest)
	assert.Equal(t, "Maximum quantity exceeded", he.Message)

	require.Len(t, pub.events, 2)
	assert.Equal(t, events.TopicCart, pub.events[0].topic)
	assert.Equal(t, EventCartItemAdded, pub.events[0].event.(events.Event).Type)
	assert.Equal(t, EventCartItemUpdated, pub.events[1].event.(events.Event).Type)
}

func TestCartService_Get_Totals(t *testing.T) {
	t.Parallel()

	svc, _ := newCartService(t)
	ctx := context.Background()
	db := svc.Repo.DB
	user := testutil.SeedUser(t, db, "totals@example.com", models.RoleCustomer)

	p := testutil.SeedProduct(t, db, "coat", "100.00", 5, 5)
	require.NoError(t, db.Model(&p.Details[1]).Updates(map[string]any{"price": "80.00", "discount": "25"}).Error)

	_, _, err := svc.Add(ctx, user.ID, transport.AddToCartRequest{ProductID: p.ID, ProductDetailID: p.Details[0].ID, Quantity: 2})
	require.NoError(t, err)
	_, _, err = svc.Add(ctx, user.ID, transport.AddToCartRequest{ProductID: p.ID, ProductDetailID: p.Details[1].ID, Quantity: 1})
	require.NoError(t, err)

	cart, err := svc.Get(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)

	assert.True(t, decimal.RequireFromString("100").Equal(cart.Items[0].Price))
	assert.True(t, decimal.RequireFromString("200").Equal(cart.Items[0].TotalAmount))
	assert.True(t, decimal.RequireFromString("60").Equal(cart.Items[1].Price))
	assert.True(t, decimal.RequireFromString("260").Equal(cart.TotalAmount), cart.TotalAmount.String())
	assert.True(t, cart.Items[0].InStock)
	assert.Equal(t, "coat", cart.Items[0].ProductName)
}

func TestCartService_Ownership(t *testing.T) {
	t.Parallel()

	svc, _ := newCartService(t)
	ctx := context.Background()
	db := svc.Repo.DB
	owner := testutil.SeedUser(t, db, "owner@example.com", models.RoleCustomer)
	intruder := testutil.SeedUser(t, db, "intruder@example.com", models.RoleCustomer)
	p := testutil.SeedProduct(t, db, "bag", "30.00", 3)

	item, _, err := svc.Add(ctx, owner.ID, transport.AddToCartRequest{ProductID: p.ID, ProductDetailID: p.Details[0].ID, Quantity: 1})
	require.NoError(t, err)

	_, err = svc.Update(ctx, intruder.ID, item.ID, transport.UpdateCartItemRequest{Quantity: 2})
	requireStatus(t, err, http.StatusForbidden)
	requireStatus(t, svc.Remove(ctx, intruder.ID, item.ID), http.StatusForbidden)

	_, err = svc.Update(ctx, owner.ID, 999, transport.UpdateCartItemRequest{Quantity: 2})
	requireStatus(t, err, http.StatusNotFound)

	_, err = svc.Update(ctx, owner.ID, item.ID, transport.UpdateCartItemRequest{Quantity: 4})
	requireStatus(t, err, http.StatusBadRequest)

	updated, err := svc.Update(ctx, owner.ID, item.ID, transport.UpdateCartItemRequest{Quantity: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Quantity)

	require.NoError(t, svc.Remove(ctx, owner.ID, item.ID))
	requireStatus(t, svc.Remove(ctx, owner.ID, item.ID), http.StatusNotFound)
}

func TestCartService_Clear(t *testing.T) {
	t.Parallel()

	svc, _ := newCartService(t)
	ctx := context.Background()
	db := svc.Repo.DB
	user := testutil.SeedUser(t, db, "clear@example.com", models.RoleCustomer)
	p := testutil.SeedProduct(t, db, "belt", "15.00", 3, 3)

	for _, d := range p.Details {
		_, _, err := svc.Add(ctx, user.ID, transport.AddToCartRequest{ProductID: p.ID, ProductDetailID: d.ID, Quantity: 1})
		require.NoError(t, err)
	}
	require.NoError(t, svc.Clear(ctx, user.ID))

	cart, err := svc.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.True(t, cart.TotalAmount.IsZero())
}
