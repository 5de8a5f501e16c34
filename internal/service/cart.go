package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
)

const (
	EventCartItemAdded   = "cart_item_added"
	EventCartItemUpdated = "cart_item_updated"
	EventCartItemRemoved = "cart_item_removed"
	EventCartCleared     = "cart_cleared"

	cartItemNotFound = "Cart item not found"
)

type CartService struct {
	Repo        *repo.GormRepo
	Events      events.Publisher
	MaxQuantity int
}

func (s *CartService) maxQuantity() int {
	if s.MaxQuantity <= 0 {
		return 10
	}
	return s.MaxQuantity
}

// checkQuantity applies the stock and per-line limits to the requested total.
func (s *CartService) checkQuantity(stock, qty int) error {
	switch {
	case stock <= 0:
		return fail(ErrValidation, "Product out of stock")
	case qty > stock:
		return fail(ErrValidation, "Not enough stock available")
	case qty > s.maxQuantity():
		return fail(ErrValidation, "Maximum quantity exceeded")
	}
	return nil
}

func (s *CartService) Get(ctx context.Context, userID uint) (*transport.CartResponse, error) {
	cart, err := s.Repo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, dbErr(err, "")
	}
	lines, err := s.Repo.ListCartLines(ctx, cart.ID)
	if err != nil {
		return nil, dbErr(err, "")
	}

	resp := &transport.CartResponse{CartID: cart.ID, Items: make([]transport.CartLine, 0, len(lines)), TotalAmount: decimal.Zero}
	for _, ln := range lines {
		unit := ln.UnitPrice()
		total := unit.Mul(decimal.NewFromInt(int64(ln.Quantity)))
		img := ln.ImgPreview
		if img == "" {
			img = ln.OverviewImgURL
		}
		resp.Items = append(resp.Items, transport.CartLine{
			ID:              ln.ItemID,
			Quantity:        ln.Quantity,
			ProductID:       ln.ProductID,
			ProductName:     ln.Name,
			ProductDetailID: ln.ProductDetailID,
			Size:            ln.Size,
			Color:           ln.Color,
			Price:           unit,
			Discount:        ln.Discount,
			ImgPreview:      img,
			TotalAmount:     total,
			InStock:         ln.Stock >= ln.Quantity,
		})
		resp.TotalAmount = resp.TotalAmount.Add(total)
	}
	return resp, nil
}

// Add puts a variant into the user's cart. created is false when an existing
// line was merged.
func (s *CartService) Add(ctx context.Context, userID uint, req transport.AddToCartRequest) (item *models.CartItem, created bool, err error) {
	err = s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		detail, err := tx.GetDetail(ctx, req.ProductID, req.ProductDetailID)
		if err != nil {
			if err = dbErr(err, ""); isNotFound(err) {
				return fail(ErrNotFound, "Product with ID %d not found", req.ProductID)
			}
			return err
		}

		cart, err := tx.GetOrCreateCart(ctx, userID)
		if err != nil {
			return dbErr(err, "")
		}

		existing, err := tx.FindCartItemByDetail(ctx, cart.ID, detail.ID)
		if err != nil {
			if err = dbErr(err, ""); !isNotFound(err) {
				return err
			}
			existing = nil
		}

		if existing == nil {
			if err := s.checkQuantity(detail.Stock, req.Quantity); err != nil {
				return err
			}
			item = &models.CartItem{CartID: cart.ID, ProductID: req.ProductID, ProductDetailID: detail.ID, Quantity: req.Quantity}
			created = true
			return dbErr(tx.CreateCartItem(ctx, item), "")
		}

		if err := s.checkQuantity(detail.Stock, existing.Quantity+req.Quantity); err != nil {
			return err
		}
		if err := tx.IncrementCartItem(ctx, existing.ID, req.Quantity); err != nil {
			return dbErr(err, "")
		}
		existing.Quantity += req.Quantity
		item = existing
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	evType := EventCartItemUpdated
	if created {
		evType = EventCartItemAdded
	}
	publish(ctx, s.Events, events.TopicCart, events.New(evType, item.ID, userID, map[string]any{
		"product_detail_id": item.ProductDetailID,
		"quantity":          item.Quantity,
	}))
	return item, created, nil
}

// owned loads a cart item and checks it belongs to userID.
func (s *CartService) owned(ctx context.Context, r *repo.GormRepo, userID, itemID uint) (*models.CartItem, error) {
	item, owner, err := r.GetCartItem(ctx, itemID)
	if err != nil {
		return nil, dbErr(err, cartItemNotFound)
	}
	if owner != userID {
		return nil, fail(ErrForbidden, "Cart item belongs to another user")
	}
	return item, nil
}

func (s *CartService) Update(ctx context.Context, userID, itemID uint, req transport.UpdateCartItemRequest) (*models.CartItem, error) {
	var item *models.CartItem
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		var err error
		if item, err = s.owned(ctx, tx, userID, itemID); err != nil {
			return err
		}
		detail, err := tx.GetDetail(ctx, item.ProductID, item.ProductDetailID)
		if err != nil {
			return dbErr(err, "Product detail not found")
		}
		if err := s.checkQuantity(detail.Stock, req.Quantity); err != nil {
			return err
		}
		if err := tx.UpdateCartItemQuantity(ctx, item.ID, req.Quantity); err != nil {
			return dbErr(err, "")
		}
		item.Quantity = req.Quantity
		return nil
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.Events, events.TopicCart, events.New(EventCartItemUpdated, item.ID, userID, map[string]any{"quantity": item.Quantity}))
	return item, nil
}

func (s *CartService) Remove(ctx context.Context, userID, itemID uint) error {
	item, err := s.owned(ctx, s.Repo, userID, itemID)
	if err != nil {
		return err
	}
	if err := s.Repo.DeleteCartItem(ctx, item.ID); err != nil {
		return dbErr(err, cartItemNotFound)
	}
	publish(ctx, s.Events, events.TopicCart, events.New(EventCartItemRemoved, item.ID, userID, nil))
	return nil
}

func (s *CartService) Clear(ctx context.Context, userID uint) error {
	cart, err := s.Repo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return dbErr(err, "")
	}
	if err := s.Repo.ClearCart(ctx, cart.ID); err != nil {
		return dbErr(err, "")
	}
	publish(ctx, s.Events, events.TopicCart, events.New(EventCartCleared, cart.ID, userID, nil))
	return nil
}
