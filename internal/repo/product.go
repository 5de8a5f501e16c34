package repo

import (
	"context"
	"strings"

	"github.com/Skotchmaster/storefront/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductFilter struct {
	Search      string
	CategoryIDs []uint
	Offset      int
	Limit       int
}

func (f ProductFilter) apply(q *gorm.DB) *gorm.DB {
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}
	if len(f.CategoryIDs) > 0 {
		q = q.Where("category_id IN ?", f.CategoryIDs)
	}
	return q
}

func (r *GormRepo) ListProducts(ctx context.Context, f ProductFilter) (int64, []models.Product, error) {
	var total int64
	if err := f.apply(r.DB.WithContext(ctx).Model(&models.Product{})).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var products []models.Product
	q := f.apply(r.DB.WithContext(ctx)).
		Preload("Details", orderByID).
		Preload("Images", orderByID).
		Order("id ASC").
		Offset(f.Offset)
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if err := q.Find(&products).Error; err != nil {
		return 0, nil, err
	}
	return total, products, nil
}

func orderByID(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}

func (r *GormRepo) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	err := r.DB.WithContext(ctx).
		Preload("Category").
		Preload("Details", orderByID).
		Preload("Images", orderByID).
		Preload("Groups").
		First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindProduct loads the product row without associations.
func (r *GormRepo) FindProduct(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := r.DB.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormRepo) ProductExists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// GetProductsByIDs keeps the order of ids; unknown ids are skipped.
func (r *GormRepo) GetProductsByIDs(ctx context.Context, ids []uint) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var found []models.Product
	err := r.DB.WithContext(ctx).
		Preload("Details", orderByID).
		Preload("Images", orderByID).
		Where("id IN ?", ids).
		Find(&found).Error
	if err != nil {
		return nil, err
	}

	byID := make(map[uint]models.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	out := make([]models.Product, 0, len(found))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// CreateProduct inserts the product with its details and images, then links groupIDs.
func (r *GormRepo) CreateProduct(ctx context.Context, p *models.Product, groupIDs []uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Groups", "Category").Create(p).Error; err != nil {
			return err
		}
		return linkGroups(tx, p.ID, groupIDs)
	})
}

func linkGroups(tx *gorm.DB, productID uint, groupIDs []uint) error {
	if len(groupIDs) == 0 {
		return nil
	}
	rows := make([]map[string]any, 0, len(groupIDs))
	for _, gid := range groupIDs {
		rows = append(rows, map[string]any{"group_id": gid, "product_id": productID})
	}
	return tx.Table("group_products").
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(rows).Error
}

func (r *GormRepo) SaveProduct(ctx context.Context, p *models.Product) error {
	return r.DB.WithContext(ctx).Omit(clause.Associations).Save(p).Error
}

func (r *GormRepo) ReplaceProductGroups(ctx context.Context, productID uint, groupIDs []uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM group_products WHERE product_id = ?", productID).Error; err != nil {
			return err
		}
		return linkGroups(tx, productID, groupIDs)
	})
}

func (r *GormRepo) DeleteProduct(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM group_products WHERE product_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.ProductImage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.ProductDetail{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Product{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *GormRepo) IncrementBoughtTimes(ctx context.Context, productID uint, qty int) error {
	return r.DB.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("bought_times", gorm.Expr("bought_times + ?", qty)).Error
}
