package checkout

import (
	"github.com/shopspring/decimal"
	"github.com/talkincode/storefront/internal/domain"
)

// Total sums unitPrice x quantity over the items.
func Total(items []domain.OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// WithTotal fills the derived Total of an order read back for a client.
func WithTotal(order *domain.Order) *domain.Order {
	total := Total(order.OrderItems)
	order.Total = &total
	return order
}
