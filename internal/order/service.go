// Package order materializes carts into immutable orders and drives them
// through the status state machine. Checkout and every transition run as a
// single transaction: either all effects land (reservations, rows, history)
// or none do.
package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ifixzone/shop/internal/inventory"
	"github.com/ifixzone/shop/internal/models"
	"github.com/ifixzone/shop/internal/notify"
)

var (
	ErrNotFound           = errors.New("order not found")
	ErrNoOp               = errors.New("order already in this status")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrForbidden          = errors.New("forbidden")
	ErrEmptySelection     = errors.New("no items selected")
	ErrProductUnavailable = errors.New("product unavailable")
)

type Service struct {
	DB       *gorm.DB
	Notifier *notify.Notifier
}

type Recipient struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// BuyNow checks out a single product directly, bypassing the cart.
type BuyNow struct {
	ProductID uint `json:"product_id"`
	Quantity  uint `json:"quantity"`
}

// CheckoutInput selects either a subset of the caller's cart lines or a
// buy-now product, never both.
type CheckoutInput struct {
	SelectedItemIDs []uint  `json:"selected_item_ids"`
	BuyNow          *BuyNow `json:"buy_now"`
	Recipient       Recipient
}

type checkoutLine struct {
	productID uint
	quantity  uint
	unitPrice decimal.Decimal
}

// newCode generates a human-readable order code. The uuid fragment keeps
// codes unique when two orders land within the same second.
func newCode(now time.Time) string {
	return fmt.Sprintf("DH%s-%s", now.Format("20060102150405"), uuid.NewString()[:8])
}

// Checkout turns the selected cart lines (or the buy-now product) into an
// order with status New. All stock reservations, the order rows, the cart
// cleanup and the initial history row commit atomically; if any line cannot
// be reserved the whole attempt rolls back and stock is untouched.
func (s *Service) Checkout(ctx context.Context, userID uint, in CheckoutInput) (*models.Order, error) {
	var out models.Order

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ledger := &inventory.Ledger{DB: tx}

		var (
			lines    []checkoutLine
			consumed []uint
		)

		switch {
		case in.BuyNow != nil:
			qty := in.BuyNow.Quantity
			if qty < 1 {
				qty = 1
			}
			line, err := resolveLine(tx, in.BuyNow.ProductID, qty)
			if err != nil {
				return err
			}
			lines = append(lines, line)

		case len(in.SelectedItemIDs) > 0:
			var c models.Cart
			if err := tx.Where("user_id = ?", userID).First(&c).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrEmptySelection
				}
				return err
			}

			var items []models.CartItem
			if err := tx.Where("id IN ? AND cart_id = ?", in.SelectedItemIDs, c.ID).Find(&items).Error; err != nil {
				return err
			}
			if len(items) == 0 {
				return ErrEmptySelection
			}

			for _, it := range items {
				line, err := resolveLine(tx, it.ProductID, it.Quantity)
				if err != nil {
					return err
				}
				lines = append(lines, line)
				consumed = append(consumed, it.ID)
			}

		default:
			return ErrEmptySelection
		}

		total := decimal.Zero
		for _, line := range lines {
			if err := ledger.TryReserve(ctx, line.productID, line.quantity); err != nil {
				return err
			}
			total = total.Add(line.unitPrice.Mul(decimal.NewFromInt(int64(line.quantity))))
		}

		now := time.Now()
		out = models.Order{
			Code:             newCode(now),
			UserID:           userID,
			TotalAmount:      total,
			Status:           string(StatusNew),
			RecipientName:    in.Recipient.Name,
			RecipientPhone:   in.Recipient.Phone,
			RecipientAddress: in.Recipient.Address,
			CreatedAt:        now,
		}
		if err := tx.Create(&out).Error; err != nil {
			return err
		}

		for _, line := range lines {
			detail := models.OrderDetail{
				OrderID:   out.ID,
				ProductID: line.productID,
				Quantity:  line.quantity,
				UnitPrice: line.unitPrice,
			}
			if err := tx.Create(&detail).Error; err != nil {
				return err
			}
			out.Details = append(out.Details, detail)
		}

		if len(consumed) > 0 {
			if err := tx.Where("id IN ?", consumed).Delete(&models.CartItem{}).Error; err != nil {
				return err
			}
		}

		history := models.OrderStatusHistory{OrderID: out.ID, Status: string(StatusNew), CreatedAt: now}
		if err := tx.Create(&history).Error; err != nil {
			return err
		}
		out.StatusHistory = append(out.StatusHistory, history)

		return updateShippingDefaults(tx, userID, in.Recipient)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// resolveLine validates the product and snapshots its current unit price.
func resolveLine(tx *gorm.DB, productID, quantity uint) (checkoutLine, error) {
	var p models.Product
	if err := tx.First(&p, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return checkoutLine{}, fmt.Errorf("product %d: %w", productID, ErrNotFound)
		}
		return checkoutLine{}, err
	}
	if !p.Active {
		return checkoutLine{}, fmt.Errorf("product %d: %w", productID, ErrProductUnavailable)
	}
	return checkoutLine{productID: p.ID, quantity: quantity, unitPrice: p.Price}, nil
}

// updateShippingDefaults stores the recipient fields back on the user so the
// next checkout can prefill them.
func updateShippingDefaults(tx *gorm.DB, userID uint, r Recipient) error {
	updates := map[string]any{}
	if r.Name != "" {
		updates["full_name"] = r.Name
	}
	if r.Phone != "" {
		updates["phone"] = r.Phone
	}
	if r.Address != "" {
		updates["address"] = r.Address
	}
	if len(updates) == 0 {
		return nil
	}
	return tx.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error
}

// Transition moves an order to next if the edge exists and the actor's role
// permits it. The status write is guarded on the status the validation saw,
// so of two concurrent transitions exactly one wins and the loser reports the
// conflict instead of repeating the side effects. On cancellation every
// detail line is released back to stock in the same transaction as the status
// write. The notification is emitted best-effort after commit.
func (s *Service) Transition(ctx context.Context, orderID uint, next Status, actor Actor) (*models.Order, error) {
	var out models.Order

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&out, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("order %d: %w", orderID, ErrNotFound)
			}
			return err
		}

		// A customer never sees another user's order, not even as Forbidden.
		if actor.Role == RoleCustomer && out.UserID != actor.UserID {
			return fmt.Errorf("order %d: %w", orderID, ErrNotFound)
		}

		current := Status(out.Status)
		if !next.Valid() {
			return fmt.Errorf("%q: %w", next, ErrInvalidTransition)
		}
		if next == current {
			return fmt.Errorf("%q: %w", next, ErrNoOp)
		}
		if !current.CanTransitionTo(next) {
			return fmt.Errorf("%q -> %q: %w", current, next, ErrInvalidTransition)
		}

		switch actor.Role {
		case RoleStaff, RoleAdmin:
			// Operators may drive every edge in the table.
		case RoleCustomer:
			// Customers may only cancel, and only before confirmation.
			if next != StatusCancelled || current != StatusNew {
				return fmt.Errorf("role %q may not set %q from %q: %w", actor.Role, next, current, ErrForbidden)
			}
		default:
			return fmt.Errorf("role %q: %w", actor.Role, ErrForbidden)
		}

		now := time.Now()
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", out.ID, string(current)).
			Update("status", string(next))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// A concurrent transition changed the status after our read.
			// Re-read and report against the fresh state, so a duplicate
			// cancel collapses to NoOp instead of a second restock.
			var fresh models.Order
			if err := tx.First(&fresh, out.ID).Error; err != nil {
				return err
			}
			if Status(fresh.Status) == next {
				return fmt.Errorf("%q: %w", next, ErrNoOp)
			}
			return fmt.Errorf("%q -> %q: %w", Status(fresh.Status), next, ErrInvalidTransition)
		}
		out.Status = string(next)

		history := models.OrderStatusHistory{OrderID: out.ID, Status: string(next), CreatedAt: now}
		if err := tx.Create(&history).Error; err != nil {
			return err
		}

		if next == StatusCancelled {
			ledger := &inventory.Ledger{DB: tx}
			var details []models.OrderDetail
			if err := tx.Where("order_id = ?", out.ID).Find(&details).Error; err != nil {
				return err
			}
			for _, d := range details {
				if err := ledger.Release(ctx, d.ProductID, d.Quantity); err != nil {
					return err
				}
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Notifier.Notify(ctx, out.UserID, notificationText(out.Code, next))

	return &out, nil
}

// Get loads an order with its details and history, scoped to the owning
// user.
func (s *Service) Get(ctx context.Context, orderID, userID uint) (*models.Order, error) {
	var o models.Order
	err := s.DB.WithContext(ctx).
		Preload("Details").
		Preload("StatusHistory").
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&o).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order %d: %w", orderID, ErrNotFound)
		}
		return nil, err
	}
	return &o, nil
}

// History lists the user's orders newest first, optionally filtered by
// status.
func (s *Service) History(ctx context.Context, userID uint, status string, offset, limit int) ([]models.Order, int64, error) {
	q := s.DB.WithContext(ctx).Model(&models.Order{}).Where("user_id = ?", userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	err := q.Preload("Details").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// AdminList searches all orders by code or recipient, optionally filtered by
// status, for the back-office listing.
func (s *Service) AdminList(ctx context.Context, query, status string, offset, limit int) ([]models.Order, int64, error) {
	q := s.DB.WithContext(ctx).Model(&models.Order{})

	if query = strings.TrimSpace(strings.ToLower(query)); query != "" {
		like := "%" + query + "%"
		q = q.Where(
			"LOWER(code) LIKE ? OR LOWER(recipient_name) LIKE ? OR recipient_phone LIKE ?",
			like, like, like,
		)
	}
	if status != "" && status != "all" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}
