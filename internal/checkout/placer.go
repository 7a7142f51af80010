package checkout

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/talkincode/storefront/internal/domain"
	"go.uber.org/zap"
)

const DefaultTimeout = 5 * time.Second

// Placer validates orders and commits them together with their stock decrements.
type Placer struct {
	store   Store
	timeout time.Duration
}

// NewPlacer creates an order placer; timeout bounds every store call of one operation.
func NewPlacer(store Store, timeout time.Duration) *Placer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Placer{store: store, timeout: timeout}
}

// PlaceOrder creates the order and decrements stock in a single transaction, or
// changes nothing at all.
func (p *Placer) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*domain.Order, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	exists, err := p.store.UserExists(ctx, req.UserID)
	if err != nil {
		return nil, p.storeError(ctx, "check user", err)
	}
	if !exists {
		return nil, &NotFoundError{Resource: "user", IDs: []string{req.UserID}}
	}

	productIDs := DistinctProductIDs(req.OrderItems)
	levels, err := p.store.GetProductsStock(ctx, productIDs)
	if err != nil {
		return nil, p.storeError(ctx, "fetch stock", err)
	}

	// Advisory only: the decrement below re-checks stock inside the transaction.
	report := CheckStock(req.OrderItems, levels)
	if len(report.Missing) > 0 {
		return nil, &NotFoundError{Resource: "product", IDs: report.Missing}
	}
	if !report.Sufficient {
		zap.L().Info("order rejected, insufficient stock",
			zap.String("namespace", "checkout"),
			zap.String("user_id", req.UserID),
			zap.Strings("product_ids", report.Insufficient),
		)
		return nil, &InsufficientStockError{ProductIDs: report.Insufficient}
	}

	order := newOrder(req)
	err = p.store.RunTransaction(ctx, func(tx Tx) error {
		if err := tx.CreateOrder(order); err != nil {
			return err
		}
		// ascending id order keeps row lock acquisition stable across concurrent orders
		for _, id := range productIDs {
			if err := tx.DecrementStock(id, report.Required[id]); err != nil {
				if errors.Is(err, ErrStockConflict) {
					return &ConcurrentStockConflictError{ProductID: id}
				}
				return err
			}
		}
		return nil
	})
	if err != nil {
		var conflict *ConcurrentStockConflictError
		switch {
		case errors.As(err, &conflict):
			zap.L().Warn("order aborted, concurrent stock conflict",
				zap.String("namespace", "checkout"),
				zap.String("user_id", req.UserID),
				zap.String("product_id", conflict.ProductID),
			)
			return nil, conflict
		case errors.Is(err, ErrNotFound):
			return nil, &NotFoundError{Resource: "user", IDs: []string{req.UserID}}
		}
		return nil, p.storeError(ctx, "commit order", err)
	}

	zap.L().Info("order placed",
		zap.String("namespace", "checkout"),
		zap.String("order_id", order.ID),
		zap.String("user_id", order.UserID),
		zap.Int("items", len(order.OrderItems)),
	)
	return WithTotal(order), nil
}

// GetOrder returns an order with its items and computed total.
func (p *Placer) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, &NotFoundError{Resource: "order", IDs: []string{id}}
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	order, err := p.store.GetOrder(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, &NotFoundError{Resource: "order", IDs: []string{id}}
	}
	if err != nil {
		return nil, p.storeError(ctx, "get order", err)
	}
	return WithTotal(order), nil
}

func (p *Placer) storeError(ctx context.Context, op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &PersistenceTimeoutError{Op: op, Err: err}
	}
	return errors.Wrap(err, op)
}

func newOrder(req PlaceOrderRequest) *domain.Order {
	order := &domain.Order{
		ID:         uuid.NewString(),
		UserID:     req.UserID,
		OrderItems: make([]domain.OrderItem, 0, len(req.OrderItems)),
	}
	for i, item := range req.OrderItems {
		order.OrderItems = append(order.OrderItems, domain.OrderItem{
			ID:        uuid.NewString(),
			OrderID:   order.ID,
			ProductID: item.ProductID,
			UnitPrice: *item.UnitPrice,
			Quantity:  item.Quantity,
			Position:  i,
		})
	}
	return order
}
