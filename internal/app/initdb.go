package app

import (
	"github.com/shopspring/decimal"
	"github.com/talkincode/storefront/internal/domain"
	"go.uber.org/zap"
)

func demoProducts() []domain.Product {
	return []domain.Product{
		{Name: "Linen Shirt", Description: "Relaxed fit linen shirt", Category: domain.CategoryFashion, Price: decimal.RequireFromString("39.90"), Stock: 40},
		{Name: "Vitamin C Serum", Description: "30ml brightening serum", Category: domain.CategoryBeauty, Price: decimal.RequireFromString("18.50"), Stock: 60},
		{Name: "Yoga Mat", Description: "6mm non-slip mat", Category: domain.CategorySports, Price: decimal.RequireFromString("25.00"), Stock: 25},
		{Name: "Wireless Earbuds", Description: "Bluetooth 5.3, 24h battery", Category: domain.CategoryElectronics, Price: decimal.RequireFromString("59.99"), Stock: 15},
		{Name: "Oak Side Table", Description: "Solid oak, 45cm", Category: domain.CategoryHomeInterior, Price: decimal.RequireFromString("89.00"), Stock: 8},
		{Name: "Laundry Detergent", Description: "2L concentrated", Category: domain.CategoryHouseholdSupplies, Price: decimal.RequireFromString("9.75"), Stock: 120},
		{Name: "Cast Iron Skillet", Description: "26cm pre-seasoned", Category: domain.CategoryKitchenware, Price: decimal.RequireFromString("34.00"), Stock: 3},
	}
}

// checkProducts seeds a demo catalog into an empty products table
func (a *Application) checkProducts() {
	var count int64
	if err := a.gormDB.Model(&domain.Product{}).Count(&count).Error; err != nil {
		zap.L().Error("failed to count products", zap.Error(err))
		return
	}
	if count > 0 {
		return
	}

	products := demoProducts()
	if err := a.gormDB.Create(&products).Error; err != nil {
		zap.L().Error("failed to create demo products", zap.Error(err))
		return
	}
	zap.L().Info("initialized demo catalog", zap.Int("products", len(products)))
}
