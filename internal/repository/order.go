package repository

import (
	"context"

	"github.com/pkg/errors"
	"github.com/talkincode/storefront/internal/checkout"
	"github.com/talkincode/storefront/internal/domain"
	"gorm.io/gorm"
)

// GormOrderStore is the GORM implementation of checkout.Store
type GormOrderStore struct {
	db *gorm.DB
}

var _ checkout.Store = (*GormOrderStore)(nil)

// NewGormOrderStore creates a new GORM-based order store
func NewGormOrderStore(db *gorm.DB) *GormOrderStore {
	return &GormOrderStore{db: db}
}

func (s *GormOrderStore) UserExists(ctx context.Context, userID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", userID).
		Count(&count).Error
	return count > 0, errors.Wrap(err, "count users")
}

func (s *GormOrderStore) GetProductsStock(ctx context.Context, productIDs []string) (map[string]checkout.StockLevel, error) {
	var rows []struct {
		ID    string
		Stock int
	}
	if len(productIDs) > 0 {
		err := s.db.WithContext(ctx).
			Model(&domain.Product{}).
			Select("id", "stock").
			Where("id IN ?", productIDs).
			Find(&rows).Error
		if err != nil {
			return nil, errors.Wrap(err, "query product stock")
		}
	}

	levels := make(map[string]checkout.StockLevel, len(productIDs))
	for _, id := range productIDs {
		levels[id] = checkout.StockLevel{}
	}
	for _, row := range rows {
		levels[row.ID] = checkout.StockLevel{Stock: row.Stock, Exists: true}
	}
	return levels, nil
}

func (s *GormOrderStore) RunTransaction(ctx context.Context, fn func(tx checkout.Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTx{db: tx})
	})
}

func (s *GormOrderStore) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	var order domain.Order
	err := s.db.WithContext(ctx).
		Preload("OrderItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("id = ?", id).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, checkout.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "query order")
	}
	return &order, nil
}

type gormTx struct {
	db *gorm.DB
}

func (t *gormTx) CreateOrder(order *domain.Order) error {
	err := t.db.Create(order).Error
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return errors.Wrap(checkout.ErrNotFound, "order owner")
	}
	return errors.Wrap(err, "insert order")
}

// DecrementStock is a conditional update: it only matches the row while stock
// still covers qty, so a lost race shows up as zero affected rows.
func (t *gormTx) DecrementStock(productID string, qty int) error {
	if qty <= 0 {
		return errors.Errorf("invalid decrement quantity %d", qty)
	}
	res := t.db.Model(&domain.Product{}).
		Where("id = ? AND stock >= ?", productID, qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return errors.Wrap(res.Error, "decrement stock")
	}
	if res.RowsAffected == 0 {
		return checkout.ErrStockConflict
	}
	return nil
}
