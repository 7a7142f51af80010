package repository

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/talkincode/storefront/internal/checkout"
	"github.com/talkincode/storefront/internal/domain"
)

// MemoryOrderStore is an in-process checkout.Store. Transactions are
// serialized and staged, so a failed transaction leaves no trace.
type MemoryOrderStore struct {
	mu       sync.Mutex
	users    map[string]bool
	stock    map[string]int
	orders   map[string]*domain.Order
	failWith error

	// AfterStockRead runs after each GetProductsStock call, outside the lock.
	AfterStockRead func()
}

var _ checkout.Store = (*MemoryOrderStore)(nil)

func NewMemoryOrderStore() *MemoryOrderStore {
	return &MemoryOrderStore{
		users:  make(map[string]bool),
		stock:  make(map[string]int),
		orders: make(map[string]*domain.Order),
	}
}

func (s *MemoryOrderStore) AddUser(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[id] = true
}

func (s *MemoryOrderStore) SetStock(productID string, stock int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stock[productID] = stock
}

func (s *MemoryOrderStore) Stock(productID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stock[productID]
}

func (s *MemoryOrderStore) OrderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

// FailWith makes every subsequent call return err; nil restores normal operation.
func (s *MemoryOrderStore) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = err
}

func (s *MemoryOrderStore) UserExists(ctx context.Context, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return false, err
	}
	return s.users[userID], nil
}

func (s *MemoryOrderStore) GetProductsStock(ctx context.Context, productIDs []string) (map[string]checkout.StockLevel, error) {
	s.mu.Lock()
	if err := s.check(ctx); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	levels := make(map[string]checkout.StockLevel, len(productIDs))
	for _, id := range productIDs {
		stock, ok := s.stock[id]
		levels[id] = checkout.StockLevel{Stock: stock, Exists: ok}
	}
	s.mu.Unlock()

	if s.AfterStockRead != nil {
		s.AfterStockRead()
	}
	return levels, nil
}

func (s *MemoryOrderStore) RunTransaction(ctx context.Context, fn func(tx checkout.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return err
	}

	tx := &memoryTx{store: s, decrements: make(map[string]int)}
	if err := fn(tx); err != nil {
		return err
	}
	for id, qty := range tx.decrements {
		s.stock[id] -= qty
	}
	for _, order := range tx.orders {
		s.orders[order.ID] = order
	}
	return nil
}

func (s *MemoryOrderStore) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	order, ok := s.orders[id]
	if !ok {
		return nil, checkout.ErrNotFound
	}
	cp := *order
	cp.Total = nil
	cp.OrderItems = append([]domain.OrderItem(nil), order.OrderItems...)
	return &cp, nil
}

func (s *MemoryOrderStore) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.failWith
}

type memoryTx struct {
	store      *MemoryOrderStore
	decrements map[string]int
	orders     []*domain.Order
}

func (t *memoryTx) CreateOrder(order *domain.Order) error {
	if !t.store.users[order.UserID] {
		return checkout.ErrNotFound
	}
	now := time.Now()
	order.CreatedAt, order.UpdatedAt = now, now
	for i := range order.OrderItems {
		order.OrderItems[i].CreatedAt, order.OrderItems[i].UpdatedAt = now, now
	}
	stored := *order
	stored.OrderItems = append([]domain.OrderItem(nil), order.OrderItems...)
	t.orders = append(t.orders, &stored)
	return nil
}

func (t *memoryTx) DecrementStock(productID string, qty int) error {
	if qty <= 0 {
		return errors.Errorf("invalid decrement quantity %d", qty)
	}
	stock, ok := t.store.stock[productID]
	if !ok || stock-t.decrements[productID] < qty {
		return checkout.ErrStockConflict
	}
	t.decrements[productID] += qty
	return nil
}
