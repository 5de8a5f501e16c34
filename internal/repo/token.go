package repo

import (
	"context"
	"errors"
	"time"

	"github.com/Skotchmaster/storefront/internal/models"
	"gorm.io/gorm"
)

var ErrTokenRevoked = errors.New("refresh token expired or revoked")

func (r *GormRepo) CreateRefreshToken(ctx context.Context, t *models.RefreshToken) error {
	return r.DB.WithContext(ctx).Create(t).Error
}

func (r *GormRepo) FindRefreshByJTI(ctx context.Context, jti string) (*models.RefreshToken, error) {
	var token models.RefreshToken
	if err := r.DB.WithContext(ctx).Where("jti = ?", jti).First(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

func usable(t *models.RefreshToken, now time.Time) bool {
	return !t.Revoked && t.ExpiresAt >= now.Unix()
}

// RotateRefreshToken revokes oldJTI and stores next in one transaction.
// Fails with ErrTokenRevoked when the old token was already used.
func (r *GormRepo) RotateRefreshToken(ctx context.Context, oldJTI string, next *models.RefreshToken) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var old models.RefreshToken
		if err := tx.Where("jti = ?", oldJTI).First(&old).Error; err != nil {
			return err
		}
		if !usable(&old, time.Now()) {
			return ErrTokenRevoked
		}

		res := tx.Model(&models.RefreshToken{}).
			Where("jti = ? AND revoked = ?", oldJTI, false).
			Update("revoked", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrTokenRevoked
		}

		return tx.Create(next).Error
	})
}

func (r *GormRepo) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	return r.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token = ?", tokenHash).
		Update("revoked", true).Error
}

func (r *GormRepo) RevokeUserTokens(ctx context.Context, userID uint) error {
	return r.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("user_id = ? AND revoked = ?", userID, false).
		Update("revoked", true).Error
}

// DeleteStaleTokens removes tokens that expired or were revoked before cutoff.
func (r *GormRepo) DeleteStaleTokens(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.DB.WithContext(ctx).
		Where("expires_at < ? OR (revoked = ? AND created_at < ?)", cutoff.Unix(), true, cutoff).
		Delete(&models.RefreshToken{})
	return res.RowsAffected, res.Error
}
