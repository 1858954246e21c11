package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/shopsense/backend/internal/domain/entities"
	"github.com/shopsense/backend/internal/domain/providers"
	"github.com/shopsense/backend/internal/domain/repositories"
	"github.com/shopsense/backend/internal/infrastructure/observability"
)

// CachedCatalogAdapter wraps a CatalogRepository with Redis caching for the
// aggregate queries. The catalog is an immutable snapshot, so cached
// aggregates cannot go stale; the TTL only bounds memory.
type CachedCatalogAdapter struct {
	adapter repositories.CatalogRepository
	cache   providers.CacheProvider
	metrics *observability.Metrics
}

// NewCachedCatalogAdapter creates a new cached catalog adapter. metrics may
// be nil.
func NewCachedCatalogAdapter(adapter repositories.CatalogRepository, cache providers.CacheProvider, metrics *observability.Metrics) repositories.CatalogRepository {
	return &CachedCatalogAdapter{
		adapter: adapter,
		cache:   cache,
		metrics: metrics,
	}
}

// Cache TTLs (in seconds)
const (
	demographicsTTL  = 3600
	topProductsTTL   = 3600
	categorySalesTTL = 3600
)

func topProductsCacheKey(limit int) string {
	return fmt.Sprintf("catalog:top_products:%d", limit)
}

// GetProducts passes through; filtered lookups are cheap and too varied to
// cache usefully.
func (a *CachedCatalogAdapter) GetProducts(ctx context.Context, filter repositories.ProductFilter) ([]*entities.Product, error) {
	return a.adapter.GetProducts(ctx, filter)
}

// GetOrderByID passes through.
func (a *CachedCatalogAdapter) GetOrderByID(ctx context.Context, orderID string) ([]*entities.OrderLine, error) {
	return a.adapter.GetOrderByID(ctx, orderID)
}

// GetUsersByState passes through.
func (a *CachedCatalogAdapter) GetUsersByState(ctx context.Context, state string) ([]*entities.User, error) {
	return a.adapter.GetUsersByState(ctx, state)
}

// GetUserDemographics caches the demographics aggregate.
func (a *CachedCatalogAdapter) GetUserDemographics(ctx context.Context) ([]*entities.DemographicBucket, error) {
	const cacheKey = "catalog:demographics"

	var cached []*entities.DemographicBucket
	if a.readCached(ctx, cacheKey, &cached) {
		return cached, nil
	}

	buckets, err := a.adapter.GetUserDemographics(ctx)
	if err != nil {
		return nil, err
	}

	a.writeCached(ctx, cacheKey, buckets, demographicsTTL)
	return buckets, nil
}

// GetLowStockProducts passes through; stock counts are threshold-dependent.
func (a *CachedCatalogAdapter) GetLowStockProducts(ctx context.Context, threshold int) ([]*entities.LowStockProduct, error) {
	return a.adapter.GetLowStockProducts(ctx, threshold)
}

// GetTopSellingProducts caches the top-sellers ranking per limit.
func (a *CachedCatalogAdapter) GetTopSellingProducts(ctx context.Context, limit int) ([]*entities.TopProduct, error) {
	cacheKey := topProductsCacheKey(limit)

	var cached []*entities.TopProduct
	if a.readCached(ctx, cacheKey, &cached) {
		return cached, nil
	}

	products, err := a.adapter.GetTopSellingProducts(ctx, limit)
	if err != nil {
		return nil, err
	}

	a.writeCached(ctx, cacheKey, products, topProductsTTL)
	return products, nil
}

// GetSalesByCategory caches the per-category sales aggregate.
func (a *CachedCatalogAdapter) GetSalesByCategory(ctx context.Context) ([]*entities.CategorySales, error) {
	const cacheKey = "catalog:sales_by_category"

	var cached []*entities.CategorySales
	if a.readCached(ctx, cacheKey, &cached) {
		return cached, nil
	}

	sales, err := a.adapter.GetSalesByCategory(ctx)
	if err != nil {
		return nil, err
	}

	a.writeCached(ctx, cacheKey, sales, categorySalesTTL)
	return sales, nil
}

func (a *CachedCatalogAdapter) readCached(ctx context.Context, key string, dest interface{}) bool {
	data, err := a.cache.Get(ctx, key)
	if err != nil {
		if a.metrics != nil {
			observability.RecordCacheMiss(ctx, a.metrics, key)
		}
		return false
	}

	if err := json.Unmarshal(data, dest); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to unmarshal cached catalog entry")
		return false
	}

	if a.metrics != nil {
		observability.RecordCacheHit(ctx, a.metrics, key)
	}
	return true
}

func (a *CachedCatalogAdapter) writeCached(ctx context.Context, key string, value interface{}, ttlSeconds int) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := a.cache.Set(ctx, key, data, ttlSeconds); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to cache catalog entry")
	}
}
