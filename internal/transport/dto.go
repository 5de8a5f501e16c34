package transport

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/models"
)

type SignupRequest struct {
	Name     string `json:"name"     validate:"required,min=2,max=20"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type ChangePasswordRequest struct {
	Password    string `json:"password"     validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

type CreateUserRequest struct {
	Name     string      `json:"name"     validate:"required,min=2,max=20"`
	Email    string      `json:"email"    validate:"required,email"`
	Password string      `json:"password" validate:"required,min=8"`
	Role     models.Role `json:"role"     validate:"omitempty,oneof=admin customer staff supplier"`
}

type UpdateUserRequest struct {
	Name  *string      `json:"name"  validate:"omitempty,min=2,max=20"`
	Email *string      `json:"email" validate:"omitempty,email"`
	Role  *models.Role `json:"role"  validate:"omitempty,oneof=admin customer staff supplier"`
}

type UserResponse struct {
	ID        uint        `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      models.Role `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
}

func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, CreatedAt: u.CreatedAt}
}

type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	User        UserResponse `json:"user"`
}

type ProfileRequest struct {
	FirstName string `json:"first_name" validate:"required,min=2,max=20"`
	LastName  string `json:"last_name"  validate:"required,min=2,max=20"`
	Phone     string `json:"phone"      validate:"required,phone"`
	Address   string `json:"address"    validate:"required,min=2,max=50"`
	City      string `json:"city"       validate:"required,min=2,max=20"`
	Country   string `json:"country"    validate:"required,min=2,max=20"`
}

type PatchProfileRequest struct {
	FirstName *string `json:"first_name" validate:"omitempty,min=2,max=20"`
	LastName  *string `json:"last_name"  validate:"omitempty,min=2,max=20"`
	Phone     *string `json:"phone"      validate:"omitempty,phone"`
	Address   *string `json:"address"    validate:"omitempty,min=2,max=50"`
	City      *string `json:"city"       validate:"omitempty,min=2,max=20"`
	Country   *string `json:"country"    validate:"omitempty,min=2,max=20"`
}

type CategoryRequest struct {
	Name     string `json:"name"      validate:"required,min=2,max=20"`
	ParentID *uint  `json:"parent_id"`
}

// PatchCategoryRequest distinguishes "parent_id": null (move to root) from an
// absent parent_id through SetParent.
type PatchCategoryRequest struct {
	Name      *string `json:"name"      validate:"omitempty,min=2,max=20"`
	ParentID  *uint   `json:"parent_id"`
	SetParent bool    `json:"-"`
}

func (r *PatchCategoryRequest) UnmarshalJSON(b []byte) error {
	type alias PatchCategoryRequest
	var a alias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	_, a.SetParent = raw["parent_id"]
	*r = PatchCategoryRequest(a)
	return nil
}

type GroupRequest struct {
	Name string `json:"name" validate:"required,min=2,max=20"`
}

type ProductDetailRequest struct {
	Size       string          `json:"size"        validate:"required,max=16"`
	Color      string          `json:"color"       validate:"required,max=32"`
	Price      decimal.Decimal `json:"price"`
	Discount   decimal.Decimal `json:"discount"`
	Stock      int             `json:"stock"       validate:"gt=0"`
	ImgPreview string          `json:"img_preview" validate:"omitempty,max=512"`
}

type PatchProductDetailRequest struct {
	Size       *string          `json:"size"        validate:"omitempty,min=1,max=16"`
	Color      *string          `json:"color"       validate:"omitempty,min=1,max=32"`
	Price      *decimal.Decimal `json:"price"`
	Discount   *decimal.Decimal `json:"discount"`
	Stock      *int             `json:"stock"       validate:"omitempty,gte=0"`
	ImgPreview *string          `json:"img_preview" validate:"omitempty,max=512"`
}

type CreateProductRequest struct {
	Name           string                 `json:"name"             validate:"required,min=3,max=255"`
	Description    string                 `json:"description"      validate:"required"`
	Price          decimal.Decimal        `json:"price"`
	CategoryID     *uint                  `json:"category_id"`
	OverviewImgURL string                 `json:"overview_img_url" validate:"omitempty,max=512"`
	Images         []string               `json:"images"           validate:"dive,required,max=512"`
	Details        []ProductDetailRequest `json:"product_details"  validate:"required,min=1,dive"`
	GroupIDs       []uint                 `json:"group_ids"`
}

type PatchProductRequest struct {
	Name           *string          `json:"name"             validate:"omitempty,min=3,max=255"`
	Description    *string          `json:"description"      validate:"omitempty,min=1"`
	Price          *decimal.Decimal `json:"price"`
	CategoryID     *uint            `json:"category_id"`
	OverviewImgURL *string          `json:"overview_img_url" validate:"omitempty,max=512"`
	GroupIDs       *[]uint          `json:"group_ids"`
}

type ProductListResponse struct {
	Products      []models.Product `json:"products"`
	TotalProducts int64            `json:"total_products"`
	Limit         int              `json:"limit"`
	Page          int              `json:"page"`
	MaxPages      int64            `json:"maxPages"`
}

type AddToCartRequest struct {
	ProductID       uint `json:"product_id"        validate:"required"`
	ProductDetailID uint `json:"product_detail_id" validate:"required"`
	Quantity        int  `json:"quantity"          validate:"required,gte=1"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"required,gte=1"`
}

type CartLine struct {
	ID              uint            `json:"id"`
	Quantity        int             `json:"quantity"`
	ProductID       uint            `json:"product_id"`
	ProductName     string          `json:"product_name"`
	ProductDetailID uint            `json:"product_detail_id"`
	Size            string          `json:"size"`
	Color           string          `json:"color"`
	Price           decimal.Decimal `json:"price"`
	Discount        decimal.Decimal `json:"discount"`
	ImgPreview      string          `json:"img_preview"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	InStock         bool            `json:"in_stock"`
}

type CartResponse struct {
	CartID      uint            `json:"cart_id"`
	Items       []CartLine      `json:"items"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

type OrderLineRequest struct {
	ProductDetailID uint `json:"product_detail_id" validate:"required"`
	Quantity        int  `json:"quantity"          validate:"required,gte=1"`
}

type AdminCreateOrderRequest struct {
	UserID uint               `json:"user_id" validate:"required"`
	Items  []OrderLineRequest `json:"items"   validate:"required,min=1,dive"`
}

type UpdateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status" validate:"required,oneof=Pending Processing Shipped Delivered Cancelled"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
