package models

import (
	"time"

	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
	RoleStaff    Role = "staff"
	RoleSupplier Role = "supplier"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleCustomer, RoleStaff, RoleSupplier:
		return true
	}
	return false
}

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"        json:"id"`
	Name         string    `gorm:"size:20;not null"                json:"name"`
	Email        string    `gorm:"size:255;uniqueIndex;not null"   json:"email"`
	PasswordHash string    `gorm:"not null"                        json:"-"`
	Role         Role      `gorm:"size:16;not null;default:customer" json:"role"`
	Profile      *Profile  `gorm:"constraint:OnDelete:CASCADE"     json:"profile,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Profile struct {
	ID        uint      `gorm:"primaryKey"             json:"id"`
	UserID    uint      `gorm:"uniqueIndex;not null"   json:"user_id"`
	FirstName string    `gorm:"size:20;not null"       json:"first_name"`
	LastName  string    `gorm:"size:20;not null"       json:"last_name"`
	Phone     string    `gorm:"size:16"                json:"phone"`
	Address   string    `gorm:"size:50"                json:"address"`
	City      string    `gorm:"size:20"                json:"city"`
	Country   string    `gorm:"size:20"                json:"country"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type RefreshToken struct {
	ID        uint      `gorm:"primaryKey"          json:"id"`
	Token     string    `gorm:"uniqueIndex;not null" json:"-"`
	UserID    uint      `gorm:"index;not null"      json:"user_id"`
	JTI       string    `gorm:"uniqueIndex;not null" json:"jti"`
	ExpiresAt int64     `gorm:"index;not null"      json:"expires_at"`
	Revoked   bool      `gorm:"default:false"       json:"revoked"`
	CreatedAt time.Time `json:"created_at"`
}

// All lists every table in migration order.
func All() []any {
	return []any{
		&User{},
		&Profile{},
		&RefreshToken{},
		&Category{},
		&Group{},
		&Product{},
		&ProductDetail{},
		&ProductImage{},
		&Cart{},
		&CartItem{},
		&Order{},
		&OrderItem{},
	}
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(All()...)
}
