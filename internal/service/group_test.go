package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/testutil"
	"github.com/Skotchmaster/storefront/internal/transport"
)

func TestGroupService_CRUD(t *testing.T) {
	t.Parallel()

	svc := &GroupService{Repo: newRepo(t)}
	ctx := context.Background()

	g, err := svc.Create(ctx, transport.GroupRequest{Name: "Best Sellers"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, transport.GroupRequest{Name: "Best Sellers"})
	requireStatus(t, err, http.StatusConflict)

	other, err := svc.Create(ctx, transport.GroupRequest{Name: "Summer"})
	require.NoError(t, err)
	_, err = svc.Update(ctx, other.ID, transport.GroupRequest{Name: "Best Sellers"})
	requireStatus(t, err, http.StatusConflict)

	renamed, err := svc.Update(ctx, g.ID, transport.GroupRequest{Name: "Top"})
	require.NoError(t, err)
	assert.Equal(t, "Top", renamed.Name)

	groups, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, groups, 2)

	require.NoError(t, svc.Delete(ctx, g.ID))
	requireStatus(t, svc.Delete(ctx, g.ID), http.StatusNotFound)
	_, err = svc.Get(ctx, g.ID)
	requireStatus(t, err, http.StatusNotFound)
}

func TestGroupService_Products(t *testing.T) {
	t.Parallel()

	svc := &GroupService{Repo: newRepo(t)}
	ctx := context.Background()
	p := testutil.SeedProduct(t, svc.Repo.DB, "cap", "9.99", 2)

	g, err := svc.Create(ctx, transport.GroupRequest{Name: "New Arrivals"})
	require.NoError(t, err)

	require.NoError(t, svc.AddProduct(ctx, g.ID, p.ID))
	requireStatus(t, svc.AddProduct(ctx, g.ID, p.ID), http.StatusConflict)
	requireStatus(t, svc.AddProduct(ctx, g.ID, 999), http.StatusNotFound)
	requireStatus(t, svc.AddProduct(ctx, 999, p.ID), http.StatusNotFound)

	withProducts, err := svc.Get(ctx, g.ID)
	require.NoError(t, err)
	require.Len(t, withProducts.Products, 1)
	assert.Equal(t, p.ID, withProducts.Products[0].ID)

	require.NoError(t, svc.RemoveProduct(ctx, g.ID, p.ID))
	requireStatus(t, svc.RemoveProduct(ctx, g.ID, p.ID), http.StatusNotFound)

	// deleting a group keeps its former products
	require.NoError(t, svc.AddProduct(ctx, g.ID, p.ID))
	require.NoError(t, svc.Delete(ctx, g.ID))
	ok, err := svc.Repo.ProductExists(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}
