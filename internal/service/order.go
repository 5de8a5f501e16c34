package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/pagination"
)

const (
	EventOrderPlaced    = "order_placed"
	EventOrderUpdated   = "order_status_updated"
	EventOrderCancelled = "order_cancelled"
	EventOrderDeleted   = "order_deleted"

	orderNotFound = "Order not found"
)

type OrderService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
}

// Viewer is the caller of an order operation.
type Viewer struct {
	UserID  uint
	ViewAll bool
	Manage  bool
}

type OrderQuery struct {
	UserID *uint
	Status models.OrderStatus
	Page   int
	Size   int
}

// PlaceFromCart turns the caller's cart into an order and empties the cart.
func (s *OrderService) PlaceFromCart(ctx context.Context, userID uint) (*models.Order, error) {
	var order *models.Order
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		cart, err := tx.FindCart(ctx, userID)
		if err != nil {
			if err = dbErr(err, ""); isNotFound(err) {
				return fail(ErrValidation, "Cart is empty")
			}
			return err
		}
		items, err := tx.ListCartItems(ctx, cart.ID)
		if err != nil {
			return dbErr(err, "")
		}
		if len(items) == 0 {
			return fail(ErrValidation, "Cart is empty")
		}

		lines := make([]transport.OrderLineRequest, 0, len(items))
		for _, it := range items {
			lines = append(lines, transport.OrderLineRequest{ProductDetailID: it.ProductDetailID, Quantity: it.Quantity})
		}
		if order, err = placeOrder(ctx, tx, userID, lines); err != nil {
			return err
		}
		return dbErr(tx.ClearCart(ctx, cart.ID), "")
	})
	if err != nil {
		return nil, err
	}
	s.placed(ctx, order)
	return order, nil
}

// PlaceFor places an order for any user from explicit lines.
func (s *OrderService) PlaceFor(ctx context.Context, req transport.AdminCreateOrderRequest) (*models.Order, error) {
	var order *models.Order
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		if _, err := tx.GetUserByID(ctx, req.UserID, false); err != nil {
			return dbErr(err, userNotFound)
		}
		var err error
		order, err = placeOrder(ctx, tx, req.UserID, req.Items)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.placed(ctx, order)
	return order, nil
}

func (s *OrderService) placed(ctx context.Context, o *models.Order) {
	publish(ctx, s.Events, events.TopicOrders, events.New(EventOrderPlaced, o.ID, o.UserID, map[string]any{
		"total_amount": o.TotalAmount.StringFixed(2),
		"items":        len(o.Items),
	}))
}

// placeOrder must run inside a transaction: variant rows are locked, prices
// snapshotted and stock decremented before the order is inserted.
func placeOrder(ctx context.Context, tx *repo.GormRepo, userID uint, lines []transport.OrderLineRequest) (*models.Order, error) {
	if len(lines) == 0 {
		return nil, fail(ErrValidation, "Order must contain at least one item")
	}

	qty := make(map[uint]int, len(lines))
	seq := make([]uint, 0, len(lines))
	for _, ln := range lines {
		if ln.Quantity <= 0 {
			return nil, fail(ErrValidation, "Quantity must be greater than 0")
		}
		if _, seen := qty[ln.ProductDetailID]; !seen {
			seq = append(seq, ln.ProductDetailID)
		}
		qty[ln.ProductDetailID] += ln.Quantity
	}

	o := &models.Order{UserID: userID, Status: models.OrderStatusPending, TotalAmount: decimal.Zero}
	for _, detailID := range seq {
		want := qty[detailID]

		detail, err := tx.LockDetail(ctx, detailID)
		if err != nil {
			if err = dbErr(err, ""); isNotFound(err) {
				return nil, fail(ErrNotFound, "Product with ID %d not found", detailID)
			}
			return nil, err
		}
		if detail.Stock < want {
			return nil, fail(ErrValidation, "Not enough stock available for product detail %d", detailID)
		}
		product, err := tx.FindProduct(ctx, detail.ProductID)
		if err != nil {
			if err = dbErr(err, ""); isNotFound(err) {
				return nil, fail(ErrNotFound, "Product with ID %d not found", detail.ProductID)
			}
			return nil, err
		}

		item := models.OrderItem{
			ProductID:       product.ID,
			ProductDetailID: detail.ID,
			Quantity:        want,
			PricePerItem:    detail.UnitPrice(product.Price),
		}
		o.Items = append(o.Items, item)
		o.TotalAmount = o.TotalAmount.Add(item.LineTotal())

		ok, err := tx.AdjustStock(ctx, detail.ID, -want)
		if err != nil {
			return nil, dbErr(err, "")
		}
		if !ok {
			return nil, fail(ErrValidation, "Not enough stock available for product detail %d", detailID)
		}
		if err := tx.IncrementBoughtTimes(ctx, product.ID, want); err != nil {
			return nil, dbErr(err, "")
		}
	}

	if err := tx.CreateOrder(ctx, o); err != nil {
		return nil, dbErr(err, "")
	}
	return o, nil
}

func (s *OrderService) List(ctx context.Context, v Viewer, q OrderQuery) (int64, []models.Order, pagination.Meta, error) {
	offset, limit := pagination.Calculate(q.Page, q.Size)
	f := repo.OrderFilter{Status: q.Status, Offset: offset, Limit: limit}
	if v.ViewAll {
		f.UserID = q.UserID
	} else {
		uid := v.UserID
		f.UserID = &uid
	}

	total, orders, err := s.Repo.ListOrders(ctx, f)
	if err != nil {
		return 0, nil, pagination.Meta{}, dbErr(err, "")
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return total, orders, pagination.NewMeta(q.Page, offset, limit, total), nil
}

func (s *OrderService) Get(ctx context.Context, v Viewer, id uint) (*models.Order, error) {
	o, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		return nil, dbErr(err, orderNotFound)
	}
	if !v.ViewAll && o.UserID != v.UserID {
		return nil, fail(ErrForbidden, "Order belongs to another user")
	}
	return o, nil
}

// UpdateStatus returns the confirmation message for the applied change.
// Owners may only cancel; any other transition needs v.Manage.
func (s *OrderService) UpdateStatus(ctx context.Context, v Viewer, id uint, status models.OrderStatus) (string, error) {
	if !status.Valid() {
		return "", fail(ErrValidation, "Invalid order status %q", status)
	}

	var userID uint
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		o, err := tx.LockOrder(ctx, id)
		if err != nil {
			return dbErr(err, orderNotFound)
		}
		userID = o.UserID
		if o.UserID != v.UserID && !v.Manage {
			return fail(ErrForbidden, "Order belongs to another user")
		}

		if status == models.OrderStatusCancelled {
			return cancelOrder(ctx, tx, o)
		}
		if !v.Manage {
			return fail(ErrForbidden, "Only staff can change order status")
		}
		if o.Status == models.OrderStatusCancelled {
			return fail(ErrConflict, "Cancelled order can not be updated")
		}
		return dbErr(tx.UpdateOrderStatus(ctx, id, status), orderNotFound)
	})
	if err != nil {
		return "", err
	}

	if status == models.OrderStatusCancelled {
		publish(ctx, s.Events, events.TopicOrders, events.New(EventOrderCancelled, id, userID, nil))
		return "Order cancelled successfully", nil
	}
	publish(ctx, s.Events, events.TopicOrders, events.New(EventOrderUpdated, id, userID, map[string]any{"status": status}))
	return fmt.Sprintf("Order status updated to %s successfully", status), nil
}

// cancelOrder restores stock for every item, drops the items and marks the order cancelled.
func cancelOrder(ctx context.Context, tx *repo.GormRepo, o *models.Order) error {
	switch o.Status {
	case models.OrderStatusDelivered:
		return fail(ErrConflict, "Delivered order can not be cancelled")
	case models.OrderStatusCancelled:
		return fail(ErrConflict, "Order is already cancelled")
	}

	for _, it := range o.Items {
		if _, err := tx.AdjustStock(ctx, it.ProductDetailID, it.Quantity); err != nil {
			return dbErr(err, "")
		}
	}
	if err := tx.DeleteOrderItems(ctx, o.ID); err != nil {
		return dbErr(err, "")
	}
	return dbErr(tx.UpdateOrderStatus(ctx, o.ID, models.OrderStatusCancelled), orderNotFound)
}

func (s *OrderService) Delete(ctx context.Context, id uint) error {
	o, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		return dbErr(err, orderNotFound)
	}
	if err := s.Repo.DeleteOrder(ctx, id); err != nil {
		return dbErr(err, orderNotFound)
	}
	publish(ctx, s.Events, events.TopicOrders, events.New(EventOrderDeleted, id, o.UserID, nil))
	return nil
}
