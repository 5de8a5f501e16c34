package repo

import (
	"context"

	"github.com/Skotchmaster/storefront/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (r *GormRepo) ListGroups(ctx context.Context) ([]models.Group, error) {
	var groups []models.Group
	if err := r.DB.WithContext(ctx).Order("name ASC").Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *GormRepo) GetGroup(ctx context.Context, id uint, withProducts bool) (*models.Group, error) {
	var g models.Group
	q := r.DB.WithContext(ctx)
	if withProducts {
		q = q.Preload("Products", func(db *gorm.DB) *gorm.DB { return db.Order("products.id ASC") })
	}
	if err := q.First(&g, id).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *GormRepo) CreateGroup(ctx context.Context, g *models.Group) error {
	return r.DB.WithContext(ctx).Create(g).Error
}

func (r *GormRepo) SaveGroup(ctx context.Context, g *models.Group) error {
	return r.DB.WithContext(ctx).Omit("Products").Save(g).Error
}

func (r *GormRepo) DeleteGroup(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		g := models.Group{ID: id}
		if err := tx.Model(&g).Association("Products").Clear(); err != nil {
			return err
		}
		res := tx.Delete(&models.Group{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *GormRepo) GroupHasProduct(ctx context.Context, groupID, productID uint) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Table("group_products").
		Where("group_id = ? AND product_id = ?", groupID, productID).
		Count(&count).Error
	return count > 0, err
}

func (r *GormRepo) AddProductToGroup(ctx context.Context, groupID, productID uint) error {
	return r.DB.WithContext(ctx).Table("group_products").
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(map[string]any{"group_id": groupID, "product_id": productID}).Error
}

func (r *GormRepo) RemoveProductFromGroup(ctx context.Context, groupID, productID uint) error {
	g := models.Group{ID: groupID}
	return r.DB.WithContext(ctx).Model(&g).Association("Products").Delete(&models.Product{ID: productID})
}

// CountGroups returns how many of ids exist.
func (r *GormRepo) CountGroups(ctx context.Context, ids []uint) (int64, error) {
	var count int64
	if len(ids) == 0 {
		return 0, nil
	}
	err := r.DB.WithContext(ctx).Model(&models.Group{}).Where("id IN ?", ids).Count(&count).Error
	return count, err
}
