package seed

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/testutil"
	"github.com/Skotchmaster/storefront/pkg/hash"
)

func TestRun_Idempotent(t *testing.T) {
	t.Parallel()
	db := testutil.NewDB(t)
	l := slog.New(slog.NewTextHandler(io.Discard, nil))

	require.NoError(t, Run(context.Background(), db, "password123", l))
	require.NoError(t, Run(context.Background(), db, "password123", l))

	counts := map[any]int64{
		&models.Category{}:      8,
		&models.Group{}:         3,
		&models.Product{}:       3,
		&models.ProductDetail{}: 3,
		&models.User{}:          2,
	}
	for m, want := range counts {
		var n int64
		require.NoError(t, db.Model(m).Count(&n).Error)
		assert.Equal(t, want, n, "%T", m)
	}

	var links int64
	require.NoError(t, db.Table("group_products").Count(&links).Error)
	assert.EqualValues(t, 4, links)

	var admin models.User
	require.NoError(t, db.Where("email = ?", AdminEmail).First(&admin).Error)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.True(t, hash.CheckPassword(admin.PasswordHash, "password123"))

	var shoes models.Category
	require.NoError(t, db.Where("name = ?", "Shoes").First(&shoes).Error)
	require.NotNil(t, shoes.ParentID)
}
