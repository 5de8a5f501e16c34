package testutil

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
)

func SeedUser(t testing.TB, db *gorm.DB, email string, role models.Role) *models.User {
	t.Helper()
	u := &models.User{Name: "user", Email: email, PasswordHash: "x", Role: role}
	require.NoError(t, db.Create(u).Error)
	return u
}

// SeedProduct creates a product priced at price with one variant per stock value.
func SeedProduct(t testing.TB, db *gorm.DB, name, price string, stocks ...int) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:        name,
		Description: name + " description",
		Price:       decimal.RequireFromString(price),
		Images:      []models.ProductImage{{ImageURL: "/uploads/" + name + ".png"}},
	}
	for i, s := range stocks {
		p.Details = append(p.Details, models.ProductDetail{
			Size:  []string{"S", "M", "L", "XL"}[i%4],
			Color: "black",
			Stock: s,
		})
	}
	require.NoError(t, db.Create(p).Error)
	return p
}
