package services

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/shopsense/backend/internal/domain/entities"
	"github.com/shopsense/backend/internal/domain/repositories"
)

// ContextBuilder turns a classified query type plus the raw message into a
// catalog context object for response grounding. Every failure path returns
// nil: context enrichment degrades silently, it never fails a turn.
type ContextBuilder struct {
	catalog repositories.CatalogRepository
}

// NewContextBuilder creates a new context builder.
func NewContextBuilder(catalog repositories.CatalogRepository) *ContextBuilder {
	return &ContextBuilder{catalog: catalog}
}

// Build fetches catalog data for the given query type. The returned value is
// JSON-serializable; nil means no context could be built.
func (b *ContextBuilder) Build(ctx context.Context, queryType entities.QueryType, message string) interface{} {
	switch queryType {
	case entities.QueryTypeProducts:
		filter := ExtractProductFilters(message)
		products, err := b.catalog.GetProducts(ctx, filter)
		if err != nil {
			return logContextFailure(err, queryType)
		}
		return products

	case entities.QueryTypeOrders:
		orderID, ok := ExtractOrderID(message)
		if !ok {
			return nil
		}
		lines, err := b.catalog.GetOrderByID(ctx, orderID)
		if err != nil {
			return logContextFailure(err, queryType)
		}
		return lines

	case entities.QueryTypeUsers:
		state, ok := ExtractState(message)
		if ok {
			users, err := b.catalog.GetUsersByState(ctx, state)
			if err != nil {
				return logContextFailure(err, queryType)
			}
			return users
		}
		demographics, err := b.catalog.GetUserDemographics(ctx)
		if err != nil {
			return logContextFailure(err, queryType)
		}
		return demographics

	case entities.QueryTypeInventory:
		lowStock, err := b.catalog.GetLowStockProducts(ctx, repositories.LowStockThreshold)
		if err != nil {
			return logContextFailure(err, queryType)
		}
		return lowStock

	case entities.QueryTypeAnalytics:
		summary, err := b.buildAnalytics(ctx)
		if err != nil {
			return logContextFailure(err, queryType)
		}
		return summary

	default:
		return nil
	}
}

// buildAnalytics fans out the two aggregate queries concurrently and waits
// for both. A failure on either side discards the whole summary.
func (b *ContextBuilder) buildAnalytics(ctx context.Context) (*entities.AnalyticsSummary, error) {
	var (
		wg sync.WaitGroup

		topProducts []*entities.TopProduct
		topErr      error

		salesByCategory []*entities.CategorySales
		salesErr        error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		topProducts, topErr = b.catalog.GetTopSellingProducts(ctx, repositories.TopProductsLimit)
	}()
	go func() {
		defer wg.Done()
		salesByCategory, salesErr = b.catalog.GetSalesByCategory(ctx)
	}()
	wg.Wait()

	if topErr != nil {
		return nil, topErr
	}
	if salesErr != nil {
		return nil, salesErr
	}

	return &entities.AnalyticsSummary{
		TopProducts:     topProducts,
		SalesByCategory: salesByCategory,
	}, nil
}

func logContextFailure(err error, queryType entities.QueryType) interface{} {
	log.Warn().Err(err).Str("query_type", string(queryType)).Msg("catalog context query failed, continuing without context")
	return nil
}
