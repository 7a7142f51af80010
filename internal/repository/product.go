package repository

import (
	"context"

	"github.com/pkg/errors"
	"github.com/talkincode/storefront/internal/domain"
	"gorm.io/gorm"
)

// ProductRepository product queries used outside the http handlers
type ProductRepository interface {
	// ListLowStock returns products whose stock is at or below threshold, lowest first
	ListLowStock(ctx context.Context, threshold, limit int) ([]*domain.Product, error)
}

// GormProductRepository is the GORM implementation of ProductRepository
type GormProductRepository struct {
	db *gorm.DB
}

func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) ListLowStock(ctx context.Context, threshold, limit int) ([]*domain.Product, error) {
	var products []*domain.Product
	err := r.db.WithContext(ctx).
		Where("stock <= ?", threshold).
		Order("stock ASC, name ASC").
		Limit(limit).
		Find(&products).Error
	return products, errors.Wrap(err, "query low stock products")
}
