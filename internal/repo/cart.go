package repo

import (
	"context"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartLine is a cart item joined with the product and variant it points to.
type CartLine struct {
	ItemID          uint
	ProductID       uint
	ProductDetailID uint
	Quantity        int
	Name            string
	OverviewImgURL  string
	Size            string
	Color           string
	ImgPreview      string
	Stock           int
	ProductPrice    decimal.Decimal
	DetailPrice     decimal.Decimal
	Discount        decimal.Decimal
}

func (l CartLine) UnitPrice() decimal.Decimal {
	d := models.ProductDetail{Price: l.DetailPrice, Discount: l.Discount}
	return d.UnitPrice(l.ProductPrice)
}

func (r *GormRepo) GetOrCreateCart(ctx context.Context, userID uint) (*models.Cart, error) {
	var cart models.Cart
	err := r.DB.WithContext(ctx).
		Where(models.Cart{UserID: userID}).
		FirstOrCreate(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *GormRepo) FindCart(ctx context.Context, userID uint) (*models.Cart, error) {
	var cart models.Cart
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *GormRepo) ListCartLines(ctx context.Context, cartID uint) ([]CartLine, error) {
	var lines []CartLine
	err := r.DB.WithContext(ctx).
		Table("cart_items AS ci").
		Select(`ci.id AS item_id, ci.product_id, ci.product_detail_id, ci.quantity,
			p.name, p.overview_img_url, p.price AS product_price,
			d.size, d.color, d.img_preview, d.stock, d.price AS detail_price, d.discount`).
		Joins("JOIN products AS p ON p.id = ci.product_id").
		Joins("JOIN product_details AS d ON d.id = ci.product_detail_id").
		Where("ci.cart_id = ?", cartID).
		Order("ci.id ASC").
		Scan(&lines).Error
	return lines, err
}

func (r *GormRepo) ListCartItems(ctx context.Context, cartID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.DB.WithContext(ctx).Where("cart_id = ?", cartID).Order("id ASC").Find(&items).Error
	return items, err
}

// GetCartItem returns the item and the id of the user owning its cart.
func (r *GormRepo) GetCartItem(ctx context.Context, itemID uint) (*models.CartItem, uint, error) {
	var item models.CartItem
	if err := r.DB.WithContext(ctx).First(&item, itemID).Error; err != nil {
		return nil, 0, err
	}
	var cart models.Cart
	if err := r.DB.WithContext(ctx).Select("user_id").First(&cart, item.CartID).Error; err != nil {
		return nil, 0, err
	}
	return &item, cart.UserID, nil
}

func (r *GormRepo) FindCartItemByDetail(ctx context.Context, cartID, detailID uint) (*models.CartItem, error) {
	var item models.CartItem
	err := r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("cart_id = ? AND product_detail_id = ?", cartID, detailID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormRepo) CreateCartItem(ctx context.Context, item *models.CartItem) error {
	return r.DB.WithContext(ctx).Create(item).Error
}

func (r *GormRepo) UpdateCartItemQuantity(ctx context.Context, itemID uint, qty int) error {
	return r.DB.WithContext(ctx).Model(&models.CartItem{}).
		Where("id = ?", itemID).
		Update("quantity", qty).Error
}

func (r *GormRepo) DeleteCartItem(ctx context.Context, itemID uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.CartItem{}, itemID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) ClearCart(ctx context.Context, cartID uint) error {
	return r.DB.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error
}

func (r *GormRepo) IncrementCartItem(ctx context.Context, itemID uint, by int) error {
	return r.DB.WithContext(ctx).Model(&models.CartItem{}).
		Where("id = ?", itemID).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", by)).Error
}
