package checkout

import (
	"context"

	"github.com/talkincode/storefront/internal/domain"
)

// Store persistence needed by order placement.
type Store interface {
	// UserExists reports whether the user id is known
	UserExists(ctx context.Context, userID string) (bool, error)

	// GetProductsStock returns one entry per requested id; unknown ids have Exists=false
	GetProductsStock(ctx context.Context, productIDs []string) (map[string]StockLevel, error)

	// RunTransaction runs fn atomically; any error returned by fn rolls everything back
	RunTransaction(ctx context.Context, fn func(tx Tx) error) error

	// GetOrder loads an order with its items, ErrNotFound if absent
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
}

// Tx operations available inside Store.RunTransaction.
type Tx interface {
	// CreateOrder inserts the order and its items. ErrNotFound if the owner no longer exists.
	CreateOrder(order *domain.Order) error

	// DecrementStock lowers stock by qty only if stock >= qty, ErrStockConflict otherwise.
	DecrementStock(productID string, qty int) error
}
