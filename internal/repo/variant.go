package repo

import (
	"context"

	"github.com/Skotchmaster/storefront/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (r *GormRepo) ListImages(ctx context.Context, productID uint) ([]models.ProductImage, error) {
	var images []models.ProductImage
	err := r.DB.WithContext(ctx).Where("product_id = ?", productID).Order("id ASC").Find(&images).Error
	return images, err
}

func (r *GormRepo) CountImages(ctx context.Context, productID uint) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.ProductImage{}).Where("product_id = ?", productID).Count(&count).Error
	return count, err
}

func (r *GormRepo) GetImage(ctx context.Context, productID, imageID uint) (*models.ProductImage, error) {
	var img models.ProductImage
	if err := r.DB.WithContext(ctx).Where("product_id = ?", productID).First(&img, imageID).Error; err != nil {
		return nil, err
	}
	return &img, nil
}

func (r *GormRepo) CreateImages(ctx context.Context, images []models.ProductImage) error {
	if len(images) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).Create(&images).Error
}

func (r *GormRepo) DeleteImage(ctx context.Context, imageID uint) error {
	return r.DB.WithContext(ctx).Delete(&models.ProductImage{}, imageID).Error
}

func (r *GormRepo) ListDetails(ctx context.Context, productID uint) ([]models.ProductDetail, error) {
	var details []models.ProductDetail
	err := r.DB.WithContext(ctx).Where("product_id = ?", productID).Order("id ASC").Find(&details).Error
	return details, err
}

func (r *GormRepo) GetDetail(ctx context.Context, productID, detailID uint) (*models.ProductDetail, error) {
	var d models.ProductDetail
	if err := r.DB.WithContext(ctx).Where("product_id = ?", productID).First(&d, detailID).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

// LockDetail reads a variant with a row lock; only meaningful inside Transaction.
func (r *GormRepo) LockDetail(ctx context.Context, detailID uint) (*models.ProductDetail, error) {
	var d models.ProductDetail
	err := r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&d, detailID).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *GormRepo) CreateDetail(ctx context.Context, d *models.ProductDetail) error {
	return r.DB.WithContext(ctx).Create(d).Error
}

func (r *GormRepo) SaveDetail(ctx context.Context, d *models.ProductDetail) error {
	return r.DB.WithContext(ctx).Save(d).Error
}

func (r *GormRepo) DeleteDetail(ctx context.Context, detailID uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_detail_id = ?", detailID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.ProductDetail{}, detailID).Error
	})
}

// AdjustStock adds delta to the variant stock; negative deltas never drop below zero.
func (r *GormRepo) AdjustStock(ctx context.Context, detailID uint, delta int) (bool, error) {
	q := r.DB.WithContext(ctx).Model(&models.ProductDetail{}).Where("id = ?", detailID)
	if delta < 0 {
		q = q.Where("stock >= ?", -delta)
	}
	res := q.UpdateColumn("stock", gorm.Expr("stock + ?", delta))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
