package repositories

import (
	"context"

	"github.com/shopsense/backend/internal/domain/entities"
)

// ProductFilter narrows product lookups. Nil price bounds are unset.
type ProductFilter struct {
	Category string
	MinPrice *int
	MaxPrice *int
}

// Row caps keep catalog context payloads bounded before they are serialized
// into the completion prompt.
const (
	ProductRowLimit      = 50
	UsersByStateRowLimit = 100
	DemographicsRowLimit = 20
	LowStockRowLimit     = 50
	TopProductsLimit     = 10
	LowStockThreshold    = 10
)

// CatalogRepository exposes read-only parametrized lookups over the
// e-commerce snapshot. No write path exists for catalog data.
type CatalogRepository interface {
	GetProducts(ctx context.Context, filter ProductFilter) ([]*entities.Product, error)
	GetOrderByID(ctx context.Context, orderID string) ([]*entities.OrderLine, error)
	GetUsersByState(ctx context.Context, state string) ([]*entities.User, error)
	GetUserDemographics(ctx context.Context) ([]*entities.DemographicBucket, error)
	GetLowStockProducts(ctx context.Context, threshold int) ([]*entities.LowStockProduct, error)
	GetTopSellingProducts(ctx context.Context, limit int) ([]*entities.TopProduct, error)
	GetSalesByCategory(ctx context.Context) ([]*entities.CategorySales, error)
}
