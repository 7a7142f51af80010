package checkout

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Sentinels a Store reports; the Placer turns them into the typed errors below.
var (
	ErrNotFound      = errors.New("record not found")
	ErrStockConflict = errors.New("conditional stock decrement failed")
)

// ValidationError malformed or out of range order input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NotFoundError a referenced user, product or order does not exist.
type NotFoundError struct {
	Resource string
	IDs      []string
}

func (e *NotFoundError) Error() string {
	if len(e.IDs) == 0 {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s not found: %s", e.Resource, strings.Join(e.IDs, ", "))
}

// InsufficientStockError names the products whose stock cannot cover the order.
type InsufficientStockError struct {
	ProductIDs []string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product(s): %s", strings.Join(e.ProductIDs, ", "))
}

// ConcurrentStockConflictError another order consumed the stock between the
// check and the commit. Nothing was written; the request is safe to retry.
type ConcurrentStockConflictError struct {
	ProductID string
}

func (e *ConcurrentStockConflictError) Error() string {
	return fmt.Sprintf("stock of product %s changed while placing the order, please retry", e.ProductID)
}

func (e *ConcurrentStockConflictError) Unwrap() error {
	return ErrStockConflict
}

// PersistenceTimeoutError the store did not answer within the configured timeout.
type PersistenceTimeoutError struct {
	Op  string
	Err error
}

func (e *PersistenceTimeoutError) Error() string {
	return fmt.Sprintf("%s: persistence timeout: %v", e.Op, e.Err)
}

func (e *PersistenceTimeoutError) Unwrap() error {
	return e.Err
}
