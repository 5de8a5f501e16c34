package repo

import (
	"context"

	"github.com/Skotchmaster/storefront/internal/models"
	"gorm.io/gorm"
)

func (r *GormRepo) ListCategories(ctx context.Context) ([]models.Category, error) {
	var cats []models.Category
	if err := r.DB.WithContext(ctx).Order("name ASC, id ASC").Find(&cats).Error; err != nil {
		return nil, err
	}
	return cats, nil
}

// ListCategoriesByParent returns direct children of parentID, or roots when parentID is nil.
func (r *GormRepo) ListCategoriesByParent(ctx context.Context, parentID *uint) ([]models.Category, error) {
	q := r.DB.WithContext(ctx).Order("name ASC, id ASC")
	if parentID == nil {
		q = q.Where("parent_id IS NULL")
	} else {
		q = q.Where("parent_id = ?", *parentID)
	}

	var cats []models.Category
	if err := q.Find(&cats).Error; err != nil {
		return nil, err
	}
	return cats, nil
}

func (r *GormRepo) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	var cat models.Category
	if err := r.DB.WithContext(ctx).First(&cat, id).Error; err != nil {
		return nil, err
	}
	return &cat, nil
}

func (r *GormRepo) CreateCategory(ctx context.Context, c *models.Category) error {
	return r.DB.WithContext(ctx).Create(c).Error
}

func (r *GormRepo) SaveCategory(ctx context.Context, c *models.Category) error {
	return r.DB.WithContext(ctx).Select("name", "parent_id", "updated_at").Save(c).Error
}

// DeleteCategories detaches products from ids and removes the categories.
func (r *GormRepo) DeleteCategories(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Product{}).
			Where("category_id IN ?", ids).
			Update("category_id", nil).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", ids).Delete(&models.Category{}).Error
	})
}
