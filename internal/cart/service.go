// Package cart holds the per-user mutable cart. Stock checks here are
// advisory only: nothing is reserved until checkout, which re-validates every
// line against the ledger.
package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ifixzone/shop/internal/inventory"
	"github.com/ifixzone/shop/internal/models"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrProductUnavailable = errors.New("product unavailable")
)

type Service struct {
	DB *gorm.DB
}

// Summary carries the totals the UI needs to refresh its cart badge.
type Summary struct {
	TotalQuantity uint `json:"total_quantity"`
	ItemCount     int  `json:"item_count"`
}

// Line is a cart item joined with its product snapshot.
type Line struct {
	Item      models.CartItem `json:"item"`
	Product   models.Product  `json:"product"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// cartFor returns the user's cart, creating it lazily on first access.
func cartFor(tx *gorm.DB, userID uint) (*models.Cart, error) {
	var c models.Cart
	err := tx.Where("user_id = ?", userID).
		Attrs(models.Cart{UserID: userID, CreatedAt: time.Now()}).
		FirstOrCreate(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// AddItem inserts a new cart line or increments the existing one for the
// product. Inactive products are refused; when stock is tracked, the combined
// quantity may not exceed it. Nothing is partially applied on refusal.
func (s *Service) AddItem(ctx context.Context, userID, productID uint, quantity uint) (*models.CartItem, *Summary, error) {
	if quantity < 1 {
		quantity = 1
	}

	var (
		item    models.CartItem
		summary Summary
	)

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.First(&product, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("product %d: %w", productID, ErrNotFound)
			}
			return err
		}
		if !product.Active {
			return fmt.Errorf("product %d: %w", productID, ErrProductUnavailable)
		}

		c, err := cartFor(tx, userID)
		if err != nil {
			return err
		}

		var existing uint
		found := true
		if err := tx.Where("cart_id = ? AND product_id = ?", c.ID, productID).First(&item).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			found = false
		} else {
			existing = item.Quantity
		}

		if product.Stock != nil && int64(existing+quantity) > *product.Stock {
			return &inventory.InsufficientStockError{ProductID: productID, Available: *product.Stock}
		}

		if found {
			if err := tx.Model(&item).Update("quantity", gorm.Expr("quantity + ?", quantity)).Error; err != nil {
				return err
			}
			item.Quantity = existing + quantity
		} else {
			item = models.CartItem{CartID: c.ID, ProductID: productID, Quantity: quantity}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
		}

		summary, err = summarize(tx, c.ID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return &item, &summary, nil
}

// UpdateQuantity sets an existing line to quantity, clamped to at least 1.
// The line must belong to the caller's cart; a foreign or missing line is
// reported as not found, never honored.
func (s *Service) UpdateQuantity(ctx context.Context, userID, cartItemID uint, quantity uint) (*models.CartItem, error) {
	if quantity < 1 {
		quantity = 1
	}

	var item models.CartItem

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.
			Joins("JOIN carts ON carts.id = cart_items.cart_id").
			Where("cart_items.id = ? AND carts.user_id = ?", cartItemID, userID).
			First(&item).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("cart item %d: %w", cartItemID, ErrNotFound)
			}
			return err
		}

		var product models.Product
		if err := tx.First(&product, item.ProductID).Error; err != nil {
			return err
		}
		if !product.Active {
			return fmt.Errorf("product %d: %w", product.ID, ErrProductUnavailable)
		}
		if product.Stock != nil && int64(quantity) > *product.Stock {
			return &inventory.InsufficientStockError{ProductID: product.ID, Available: *product.Stock}
		}

		if err := tx.Model(&item).Update("quantity", quantity).Error; err != nil {
			return err
		}
		item.Quantity = quantity
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// RemoveItem deletes a line from the caller's cart. Removing a line that does
// not exist is a no-op, reported through the returned flag.
func (s *Service) RemoveItem(ctx context.Context, userID, cartItemID uint) (bool, error) {
	res := s.DB.WithContext(ctx).
		Where("id = ? AND cart_id IN (?)",
			cartItemID,
			s.DB.Model(&models.Cart{}).Select("id").Where("user_id = ?", userID),
		).
		Delete(&models.CartItem{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Items lists the cart with product snapshots and line totals.
func (s *Service) Items(ctx context.Context, userID uint) ([]Line, error) {
	var lines []Line

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := cartFor(tx, userID)
		if err != nil {
			return err
		}

		var items []models.CartItem
		if err := tx.Where("cart_id = ?", c.ID).Order("id ASC").Find(&items).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}

		ids := make([]uint, 0, len(items))
		for _, it := range items {
			ids = append(ids, it.ProductID)
		}
		var products []models.Product
		if err := tx.Where("id IN ?", ids).Find(&products).Error; err != nil {
			return err
		}
		byID := make(map[uint]models.Product, len(products))
		for _, p := range products {
			byID[p.ID] = p
		}

		for _, it := range items {
			product := byID[it.ProductID]
			lines = append(lines, Line{
				Item:      it,
				Product:   product,
				LineTotal: product.Price.Mul(decimal.NewFromInt(int64(it.Quantity))),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func summarize(tx *gorm.DB, cartID uint) (Summary, error) {
	var items []models.CartItem
	if err := tx.Where("cart_id = ?", cartID).Find(&items).Error; err != nil {
		return Summary{}, err
	}

	s := Summary{ItemCount: len(items)}
	for _, it := range items {
		s.TotalQuantity += it.Quantity
	}
	return s, nil
}
