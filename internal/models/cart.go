package models

import "time"

type Cart struct {
	ID        uint       `gorm:"primaryKey"                  json:"id"`
	UserID    uint       `gorm:"uniqueIndex;not null"        json:"user_id"`
	Items     []CartItem `gorm:"constraint:OnDelete:CASCADE" json:"items,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type CartItem struct {
	ID              uint      `gorm:"primaryKey"                                   json:"id"`
	CartID          uint      `gorm:"not null;uniqueIndex:idx_cart_detail"         json:"cart_id"`
	ProductID       uint      `gorm:"not null;index"                               json:"product_id"`
	ProductDetailID uint      `gorm:"not null;uniqueIndex:idx_cart_detail"         json:"product_detail_id"`
	Quantity        int       `gorm:"not null;default:1;check:quantity > 0"        json:"quantity"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
