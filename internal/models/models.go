package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement"  json:"id"`
	Username     string `gorm:"unique;not null"           json:"username"`
	PasswordHash string `gorm:"not null"                  json:"-"`
	Role         string `gorm:"not null;default:customer" json:"role"`
	FullName     string `json:"full_name"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
}

type Category struct {
	ID       uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name     string `gorm:"not null"                 json:"name"`
	ParentID *uint  `gorm:"index"                    json:"parent_id"`
}

// Stock == nil means the product is untracked: no ceiling is enforced and
// reservations never touch the counter.
type Product struct {
	ID          uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string          `gorm:"not null"                 json:"name"`
	Description string          `json:"description"`
	CategoryID  uint            `gorm:"index;not null"           json:"category_id"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2)"       json:"price"`
	Stock       *int64          `json:"stock"`
	Active      bool            `gorm:"not null;default:true"    json:"active"`
	CreatedAt   time.Time       `json:"created_at"`
}

type Cart struct {
	ID        uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint       `gorm:"uniqueIndex;not null"     json:"user_id"`
	CreatedAt time.Time  `json:"created_at"`
	Items     []CartItem `gorm:"foreignKey:CartID"        json:"items"`
}

type CartItem struct {
	ID        uint `gorm:"primaryKey;autoIncrement"              json:"id"`
	CartID    uint `gorm:"uniqueIndex:idx_cart_product;not null" json:"cart_id"`
	ProductID uint `gorm:"uniqueIndex:idx_cart_product;not null" json:"product_id"`
	Quantity  uint `gorm:"default:1;check:quantity>0"            json:"quantity"`
}

// Order is immutable after creation except for Status; every status write
// appends an OrderStatusHistory row.
type Order struct {
	ID               uint                 `gorm:"primaryKey;autoIncrement" json:"id"`
	Code             string               `gorm:"uniqueIndex;not null"     json:"code"`
	UserID           uint                 `gorm:"index;not null"           json:"user_id"`
	TotalAmount      decimal.Decimal      `gorm:"type:decimal(12,2)"       json:"total_amount"`
	Status           string               `gorm:"not null"                 json:"status"`
	RecipientName    string               `json:"recipient_name"`
	RecipientPhone   string               `json:"recipient_phone"`
	RecipientAddress string               `json:"recipient_address"`
	CreatedAt        time.Time            `json:"created_at"`
	Details          []OrderDetail        `gorm:"foreignKey:OrderID" json:"details"`
	StatusHistory    []OrderStatusHistory `gorm:"foreignKey:OrderID" json:"status_history"`
}

// UnitPrice is captured at order time and never recomputed from the live
// product price.
type OrderDetail struct {
	ID        uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   uint            `gorm:"index;not null"           json:"order_id"`
	ProductID uint            `gorm:"not null"                 json:"product_id"`
	Quantity  uint            `gorm:"check:quantity>0"         json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2)"       json:"unit_price"`
}

type OrderStatusHistory struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   uint      `gorm:"index;not null"           json:"order_id"`
	Status    string    `gorm:"not null"                 json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type Notification struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint      `gorm:"index;not null"           json:"user_id"`
	Content   string    `gorm:"not null"                 json:"content"`
	IsRead    bool      `gorm:"default:false"            json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}
