package domain

// Tables migrated on startup, in dependency order.
var Tables = []interface{}{
	// Catalog
	&Product{},
	// Customers
	&User{},
	&UserPreference{},
	// Sales
	&Order{},
	&OrderItem{},
}
