package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order is created together with its items and never modified afterwards.
// Total is derived from the items and only populated on single-order reads.
type Order struct {
	ID         string           `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     string           `gorm:"type:uuid;index;not null" json:"userId"`
	OrderItems []OrderItem      `gorm:"constraint:OnDelete:CASCADE" json:"orderItems,omitempty"`
	Total      *decimal.Decimal `gorm:"-" json:"total,omitempty"`
	CreatedAt  time.Time        `gorm:"index" json:"createdAt"`
	UpdatedAt  time.Time        `json:"updatedAt"`
}

// TableName Specify table name
func (Order) TableName() string {
	return "orders"
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

// OrderItem snapshot of product, unit price and quantity at order time.
// ProductID is deliberately not a foreign key.
type OrderItem struct {
	ID        string          `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID   string          `gorm:"type:uuid;index;not null" json:"orderId"`
	ProductID string          `gorm:"type:uuid;index;not null" json:"productId"`
	UnitPrice decimal.Decimal `gorm:"type:numeric;not null" json:"unitPrice"`
	Quantity  int             `gorm:"not null;check:chk_order_items_quantity,quantity >= 1" json:"quantity"`
	// line index in the placing request
	Position  int             `gorm:"not null;default:0" json:"-"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// TableName Specify table name
func (OrderItem) TableName() string {
	return "order_items"
}

func (i *OrderItem) BeforeCreate(*gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}
