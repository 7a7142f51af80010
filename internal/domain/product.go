package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Category product category
type Category string

const (
	CategoryFashion           Category = "FASHION"
	CategoryBeauty            Category = "BEAUTY"
	CategorySports            Category = "SPORTS"
	CategoryElectronics       Category = "ELECTRONICS"
	CategoryHomeInterior      Category = "HOME_INTERIOR"
	CategoryHouseholdSupplies Category = "HOUSEHOLD_SUPPLIES"
	CategoryKitchenware       Category = "KITCHENWARE"
)

var Categories = []Category{
	CategoryFashion,
	CategoryBeauty,
	CategorySports,
	CategoryElectronics,
	CategoryHomeInterior,
	CategoryHouseholdSupplies,
	CategoryKitchenware,
}

func (c Category) IsValid() bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// Product catalog item. Stock is never negative; the database enforces it with a check constraint.
type Product struct {
	ID          string          `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string          `gorm:"size:60;not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Category    Category        `gorm:"size:32;index;not null" json:"category"`
	Price       decimal.Decimal `gorm:"type:numeric;not null;default:0" json:"price"`
	Stock       int             `gorm:"not null;default:0;check:chk_products_stock,stock >= 0" json:"stock"`
	CreatedAt   time.Time       `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// TableName Specify table name
func (Product) TableName() string {
	return "products"
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
