package repo

import (
	"context"

	"github.com/Skotchmaster/storefront/internal/models"
	"gorm.io/gorm"
)

func (r *GormRepo) GetProfile(ctx context.Context, userID uint) (*models.Profile, error) {
	var p models.Profile
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormRepo) CreateProfile(ctx context.Context, p *models.Profile) error {
	return r.DB.WithContext(ctx).Create(p).Error
}

func (r *GormRepo) SaveProfile(ctx context.Context, p *models.Profile) error {
	return r.DB.WithContext(ctx).Save(p).Error
}

func (r *GormRepo) DeleteProfile(ctx context.Context, userID uint) error {
	res := r.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Profile{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
