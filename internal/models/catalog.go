package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID        uint        `gorm:"primaryKey"            json:"id"`
	Name      string      `gorm:"size:20;not null"      json:"name"`
	ParentID  *uint       `gorm:"index"                 json:"parent_id"`
	Children  []*Category `gorm:"-"                     json:"children,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

type Group struct {
	ID        uint      `gorm:"primaryKey"                  json:"id"`
	Name      string    `gorm:"size:20;uniqueIndex;not null" json:"name"`
	Products  []Product `gorm:"many2many:group_products;"   json:"products,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Product struct {
	ID             uint            `gorm:"primaryKey"                       json:"id"`
	Name           string          `gorm:"size:255;not null;index"          json:"name"`
	Description    string          `gorm:"type:text;not null"               json:"description"`
	Price          decimal.Decimal `gorm:"type:numeric(12,2);not null"      json:"price"`
	CategoryID     *uint           `gorm:"index"                            json:"category_id"`
	Category       *Category       `gorm:"constraint:OnDelete:SET NULL"     json:"category,omitempty"`
	OverviewImgURL string          `gorm:"size:512"                         json:"overview_img_url"`
	BoughtTimes    int             `gorm:"not null;default:0"               json:"bought_times"`
	Details        []ProductDetail `gorm:"constraint:OnDelete:CASCADE"      json:"product_details,omitempty"`
	Images         []ProductImage  `gorm:"constraint:OnDelete:CASCADE"      json:"images,omitempty"`
	Groups         []Group         `gorm:"many2many:group_products;"        json:"groups,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type ProductDetail struct {
	ID         uint            `gorm:"primaryKey"                    json:"id"`
	ProductID  uint            `gorm:"index;not null"                json:"product_id"`
	Size       string          `gorm:"size:16;not null"              json:"size"`
	Color      string          `gorm:"size:32;not null"              json:"color"`
	Price      decimal.Decimal `gorm:"type:numeric(12,2);default:0"  json:"price"`
	Discount   decimal.Decimal `gorm:"type:numeric(5,2);default:0"   json:"discount"`
	Stock      int             `gorm:"not null;default:0"            json:"stock"`
	ImgPreview string          `gorm:"size:512"                      json:"img_preview"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

var hundred = decimal.NewFromInt(100)

// UnitPrice is the variant price, falling back to the product price when the
// variant has none, with the percentage discount applied.
func (d ProductDetail) UnitPrice(productPrice decimal.Decimal) decimal.Decimal {
	base := d.Price
	if !base.IsPositive() {
		base = productPrice
	}
	if d.Discount.IsPositive() {
		base = base.Mul(hundred.Sub(d.Discount)).Div(hundred)
	}
	return base.Round(2)
}

type ProductImage struct {
	ID        uint      `gorm:"primaryKey"        json:"id"`
	ProductID uint      `gorm:"index;not null"    json:"product_id"`
	ImageURL  string    `gorm:"size:512;not null" json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
}
