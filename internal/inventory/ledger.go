// Package inventory owns the stock counter per product. Reserve and release
// are single-statement guarded updates so two concurrent checkouts can never
// oversell the last unit or drive stock below zero.
package inventory

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/ifixzone/shop/internal/models"
)

var ErrNotFound = errors.New("product not found")

// InsufficientStockError reports how many units were available when a
// reservation was refused.
type InsufficientStockError struct {
	ProductID uint
	Available int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: %d available", e.ProductID, e.Available)
}

// Ledger runs against the *gorm.DB it is given, so checkout can point it at
// an open transaction and have reservations roll back with everything else.
type Ledger struct {
	DB *gorm.DB
}

// TryReserve decrements stock by quantity iff stock >= quantity. Untracked
// stock (NULL) always succeeds without touching the counter. The check and
// the decrement execute as one UPDATE, never as read-then-write.
func (l *Ledger) TryReserve(ctx context.Context, productID uint, quantity uint) error {
	res := l.DB.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND stock >= ?", productID, quantity).
		Update("stock", gorm.Expr("stock - ?", quantity))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	// Guard did not match: untracked product, missing product, or not
	// enough stock. Tell them apart with a read.
	var p models.Product
	if err := l.DB.WithContext(ctx).Select("id", "stock").First(&p, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("product %d: %w", productID, ErrNotFound)
		}
		return err
	}
	if p.Stock == nil {
		return nil
	}
	return &InsufficientStockError{ProductID: productID, Available: *p.Stock}
}

// Release returns quantity units to stock, used when an order is cancelled.
// A no-op for untracked products; unknown products report ErrNotFound.
func (l *Ledger) Release(ctx context.Context, productID uint, quantity uint) error {
	res := l.DB.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND stock IS NOT NULL", productID).
		Update("stock", gorm.Expr("stock + ?", quantity))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var p models.Product
	if err := l.DB.WithContext(ctx).Select("id", "stock").First(&p, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("product %d: %w", productID, ErrNotFound)
		}
		return err
	}
	return nil
}
