package checkout

import (
	"math"
	"sort"
)

// StockLevel current stock of one product as reported by the Store.
type StockLevel struct {
	Stock  int
	Exists bool
}

// StockReport outcome of CheckStock.
type StockReport struct {
	Sufficient bool
	// Required total quantity per distinct product
	Required     map[string]int
	Missing      []string
	Insufficient []string
}

// RequiredQuantities sums the requested quantity per product; a product may
// appear on several lines of the same order. Sums saturate at math.MaxInt and
// a non-positive quantity poisons its product, so neither can pass CheckStock.
func RequiredQuantities(items []LineItem) map[string]int {
	required := make(map[string]int, len(items))
	for _, item := range items {
		sum := required[item.ProductID]
		switch {
		case item.Quantity <= 0 || sum > math.MaxInt-item.Quantity:
			sum = math.MaxInt
		default:
			sum += item.Quantity
		}
		required[item.ProductID] = sum
	}
	return required
}

// DistinctProductIDs returns the referenced product ids in ascending order.
func DistinctProductIDs(items []LineItem) []string {
	required := RequiredQuantities(items)
	ids := make([]string, 0, len(required))
	for id := range required {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// CheckStock decides whether levels can satisfy every requested quantity.
func CheckStock(items []LineItem, levels map[string]StockLevel) StockReport {
	report := StockReport{Required: RequiredQuantities(items)}
	for _, id := range DistinctProductIDs(items) {
		level, ok := levels[id]
		switch {
		case !ok || !level.Exists:
			report.Missing = append(report.Missing, id)
		case report.Required[id] == math.MaxInt || level.Stock < report.Required[id]:
			report.Insufficient = append(report.Insufficient, id)
		}
	}
	report.Sufficient = len(report.Missing) == 0 && len(report.Insufficient) == 0
	return report
}
