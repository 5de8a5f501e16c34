package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

type Order struct {
	ID          uint            `gorm:"primaryKey"                    json:"id"`
	UserID      uint            `gorm:"index;not null"                json:"user_id"`
	TotalAmount decimal.Decimal `gorm:"type:numeric(12,2);not null"   json:"total_amount"`
	Status      OrderStatus     `gorm:"size:16;not null;index"        json:"status"`
	Items       []OrderItem     `gorm:"constraint:OnDelete:CASCADE"   json:"items,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type OrderItem struct {
	ID              uint            `gorm:"primaryKey"                          json:"id"`
	OrderID         uint            `gorm:"index;not null"                      json:"order_id"`
	ProductID       uint            `gorm:"index;not null"                      json:"product_id"`
	ProductDetailID uint            `gorm:"not null"                            json:"product_detail_id"`
	Quantity        int             `gorm:"not null;check:quantity > 0"         json:"quantity"`
	PricePerItem    decimal.Decimal `gorm:"type:numeric(12,2);not null"         json:"price_per_item"`
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.PricePerItem.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
