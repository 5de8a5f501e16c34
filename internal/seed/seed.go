// Package seed fills an empty database with demo catalog data and two accounts.
package seed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/pkg/hash"
)

const (
	AdminEmail    = "admin@gg.com"
	CustomerEmail = "customer@google.com"
)

var tree = []struct {
	parent string
	child  string
}{
	{"Women", "Shoes"},
	{"Men", "Shirts"},
	{"Kids", "Jeans"},
	{"Accessories", "Sunglasses"},
}

var groups = []string{"New Arrivals", "Best Sellers", "Summer Collection"}

type productSeed struct {
	name     string
	category string
	groups   []string
	detail   models.ProductDetail
}

var products = []productSeed{
	{
		name: "Product 1", category: "Women", groups: []string{"New Arrivals", "Best Sellers"},
		detail: models.ProductDetail{Size: "S", Color: "Red", Stock: 10, Price: decimal.NewFromInt(100), Discount: decimal.NewFromInt(10), ImgPreview: "https://example.com/image1.jpg"},
	},
	{
		name: "Product 2", category: "Men", groups: []string{"Summer Collection"},
		detail: models.ProductDetail{Size: "M", Color: "Blue", Stock: 20, Price: decimal.NewFromInt(200), Discount: decimal.NewFromInt(20), ImgPreview: "https://example.com/image2.jpg"},
	},
	{
		name: "Product 3", category: "Kids", groups: []string{"New Arrivals"},
		detail: models.ProductDetail{Size: "L", Color: "Green", Stock: 30, Price: decimal.NewFromInt(300), Discount: decimal.NewFromInt(30), ImgPreview: "https://example.com/image3.jpg"},
	},
}

// Run inserts whatever part of the demo data is missing. Running it again
// leaves the database unchanged.
func Run(ctx context.Context, db *gorm.DB, password string, l *slog.Logger) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cats := map[string]uint{}
		for _, n := range tree {
			parent, err := category(tx, n.parent, nil)
			if err != nil {
				return err
			}
			if _, err := category(tx, n.child, &parent.ID); err != nil {
				return err
			}
			cats[n.parent] = parent.ID
		}

		grp := map[string]models.Group{}
		for _, name := range groups {
			g := models.Group{Name: name}
			if err := tx.Where(models.Group{Name: name}).FirstOrCreate(&g).Error; err != nil {
				return fmt.Errorf("seed group %s: %w", name, err)
			}
			grp[name] = g
		}

		for _, ps := range products {
			created, err := product(tx, ps, cats[ps.category], grp)
			if err != nil {
				return err
			}
			if created {
				l.Info("seed_product_created", "name", ps.name)
			}
		}

		pw, err := hash.HashPassword(password)
		if err != nil {
			return fmt.Errorf("seed hash password: %w", err)
		}
		users := []models.User{
			{Name: "John Doe", Email: AdminEmail, Role: models.RoleAdmin, PasswordHash: pw},
			{Name: "Jane Doe", Email: CustomerEmail, Role: models.RoleCustomer, PasswordHash: pw},
		}
		for i := range users {
			u := users[i]
			if err := tx.Where(models.User{Email: u.Email}).Attrs(u).FirstOrCreate(&users[i]).Error; err != nil {
				return fmt.Errorf("seed user %s: %w", u.Email, err)
			}
		}
		return nil
	})
}

func category(tx *gorm.DB, name string, parentID *uint) (*models.Category, error) {
	var c models.Category
	q := tx.Where("name = ?", name)
	if parentID == nil {
		q = q.Where("parent_id IS NULL")
	} else {
		q = q.Where("parent_id = ?", *parentID)
	}
	err := q.Attrs(models.Category{Name: name, ParentID: parentID}).FirstOrCreate(&c).Error
	if err != nil {
		return nil, fmt.Errorf("seed category %s: %w", name, err)
	}
	return &c, nil
}

func product(tx *gorm.DB, ps productSeed, categoryID uint, grp map[string]models.Group) (bool, error) {
	var n int64
	if err := tx.Model(&models.Product{}).Where("name = ?", ps.name).Count(&n).Error; err != nil {
		return false, fmt.Errorf("seed product %s: %w", ps.name, err)
	}
	if n > 0 {
		return false, nil
	}

	p := models.Product{
		Name:           ps.name,
		Description:    "Description of " + ps.name,
		Price:          ps.detail.Price,
		CategoryID:     &categoryID,
		OverviewImgURL: ps.detail.ImgPreview,
		Details:        []models.ProductDetail{ps.detail},
		Images:         []models.ProductImage{{ImageURL: ps.detail.ImgPreview}},
	}
	if err := tx.Omit("Groups", "Category").Create(&p).Error; err != nil {
		return false, fmt.Errorf("seed product %s: %w", ps.name, err)
	}
	for _, name := range ps.groups {
		row := map[string]any{"group_id": grp[name].ID, "product_id": p.ID}
		if err := tx.Table("group_products").Create(row).Error; err != nil {
			return false, fmt.Errorf("seed product %s groups: %w", ps.name, err)
		}
	}
	return true, nil
}
