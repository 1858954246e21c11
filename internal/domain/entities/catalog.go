package entities

import "time"

// Catalog entities are bulk-loaded once from an external snapshot and are
// read-only for the lifetime of the service.

// Product is one sellable item in the catalog.
type Product struct {
	ID                   int64   `json:"id" db:"id"`
	Cost                 float64 `json:"cost" db:"cost"`
	Category             string  `json:"category" db:"category"`
	Name                 string  `json:"name" db:"name"`
	Brand                string  `json:"brand" db:"brand"`
	RetailPrice          float64 `json:"retail_price" db:"retail_price"`
	Department           string  `json:"department" db:"department"`
	SKU                  string  `json:"sku" db:"sku"`
	DistributionCenterID int64   `json:"distribution_center_id" db:"distribution_center_id"`
}

// User is a catalog customer record with demographics and location.
type User struct {
	ID            int64     `json:"id" db:"id"`
	FirstName     string    `json:"first_name" db:"first_name"`
	LastName      string    `json:"last_name" db:"last_name"`
	Email         string    `json:"email" db:"email"`
	Age           int       `json:"age" db:"age"`
	Gender        string    `json:"gender" db:"gender"`
	State         string    `json:"state" db:"state"`
	StreetAddress string    `json:"street_address" db:"street_address"`
	PostalCode    string    `json:"postal_code" db:"postal_code"`
	City          string    `json:"city" db:"city"`
	Country       string    `json:"country" db:"country"`
	Latitude      float64   `json:"latitude" db:"latitude"`
	Longitude     float64   `json:"longitude" db:"longitude"`
	TrafficSource string    `json:"traffic_source" db:"traffic_source"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// Order is a customer order header.
type Order struct {
	OrderID     string     `json:"order_id" db:"order_id"`
	UserID      int64      `json:"user_id" db:"user_id"`
	Status      string     `json:"status" db:"status"`
	Gender      string     `json:"gender" db:"gender"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	ReturnedAt  *time.Time `json:"returned_at" db:"returned_at"`
	ShippedAt   *time.Time `json:"shipped_at" db:"shipped_at"`
	DeliveredAt *time.Time `json:"delivered_at" db:"delivered_at"`
	NumOfItem   int        `json:"num_of_item" db:"num_of_item"`
}

// OrderItem links an order to a product and inventory unit.
type OrderItem struct {
	ID              int64      `json:"id" db:"id"`
	OrderID         string     `json:"order_id" db:"order_id"`
	UserID          int64      `json:"user_id" db:"user_id"`
	ProductID       int64      `json:"product_id" db:"product_id"`
	InventoryItemID int64      `json:"inventory_item_id" db:"inventory_item_id"`
	Status          string     `json:"status" db:"status"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	ShippedAt       *time.Time `json:"shipped_at" db:"shipped_at"`
	DeliveredAt     *time.Time `json:"delivered_at" db:"delivered_at"`
	ReturnedAt      *time.Time `json:"returned_at" db:"returned_at"`
}

// InventoryItem is one physical unit of stock; SoldAt is nil while unsold.
type InventoryItem struct {
	ID        int64      `json:"id" db:"id"`
	ProductID int64      `json:"product_id" db:"product_id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	SoldAt    *time.Time `json:"sold_at" db:"sold_at"`
	Cost      float64    `json:"cost" db:"cost"`
}

// DistributionCenter is a warehouse location.
type DistributionCenter struct {
	ID        int64   `json:"id" db:"id"`
	Name      string  `json:"name" db:"name"`
	Latitude  float64 `json:"latitude" db:"latitude"`
	Longitude float64 `json:"longitude" db:"longitude"`
}

// OrderLine is an order header joined with one of its items and the product
// it references. Item fields are nil when the order has no items.
type OrderLine struct {
	Order
	ProductID   *int64   `json:"product_id" db:"product_id"`
	ProductName *string  `json:"product_name" db:"product_name"`
	RetailPrice *float64 `json:"retail_price" db:"retail_price"`
}

// LowStockProduct is a product whose unsold stock is below a threshold.
type LowStockProduct struct {
	Product
	StockCount int `json:"stock_count" db:"stock_count"`
}

// TopProduct is one row of the top-sellers ranking.
type TopProduct struct {
	ID         int64  `json:"id" db:"id"`
	Name       string `json:"name" db:"name"`
	Brand      string `json:"brand" db:"brand"`
	Category   string `json:"category" db:"category"`
	SalesCount int    `json:"sales_count" db:"sales_count"`
}

// CategorySales aggregates sales volume and average price per category.
type CategorySales struct {
	Category   string  `json:"category" db:"category"`
	SalesCount int     `json:"sales_count" db:"sales_count"`
	AvgPrice   float64 `json:"avg_price" db:"avg_price"`
}

// DemographicBucket is one gender-by-state slice of the customer base.
type DemographicBucket struct {
	Gender string  `json:"gender" db:"gender"`
	State  string  `json:"state" db:"state"`
	Count  int     `json:"count" db:"count"`
	AvgAge float64 `json:"avg_age" db:"avg_age"`
}

// AnalyticsSummary is the composite analytics context: top sellers plus
// per-category sales, fetched concurrently.
type AnalyticsSummary struct {
	TopProducts     []*TopProduct    `json:"topProducts"`
	SalesByCategory []*CategorySales `json:"salesByCategory"`
}
