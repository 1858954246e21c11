package database

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/shopsense/backend/internal/domain/entities"
	"github.com/shopsense/backend/internal/domain/repositories"
	"github.com/shopsense/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/shopsense/backend/pkg/errors"
)

// CatalogAdapter implements CatalogRepository over the read-only snapshot.
// Every lookup carries a fixed row cap so the serialized context stays small.
type CatalogAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewCatalogAdapter creates a new catalog adapter
func NewCatalogAdapter(client *postgres.Client) repositories.CatalogRepository {
	return &CatalogAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// GetProducts filters products by category substring and price bounds.
func (a *CatalogAdapter) GetProducts(ctx context.Context, filter repositories.ProductFilter) ([]*entities.Product, error) {
	ds := a.db.Select(
		"id", "cost", "category", "name", "brand",
		"retail_price", "department", "sku", "distribution_center_id",
	).From("products")

	if filter.Category != "" {
		ds = ds.Where(goqu.I("category").ILike(fmt.Sprintf("%%%s%%", filter.Category)))
	}
	if filter.MaxPrice != nil {
		ds = ds.Where(goqu.I("retail_price").Lte(*filter.MaxPrice))
	}
	if filter.MinPrice != nil {
		ds = ds.Where(goqu.I("retail_price").Gte(*filter.MinPrice))
	}

	query, args, err := ds.Limit(repositories.ProductRowLimit).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build products query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get products", err)
	}
	defer rows.Close()

	var products []*entities.Product
	for rows.Next() {
		product := &entities.Product{}
		err := rows.Scan(
			&product.ID,
			&product.Cost,
			&product.Category,
			&product.Name,
			&product.Brand,
			&product.RetailPrice,
			&product.Department,
			&product.SKU,
			&product.DistributionCenterID,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan product", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating products", err)
	}

	return products, nil
}

// GetOrderByID returns an order header joined with its items and product
// names. The result may be empty when the order id is unknown.
func (a *CatalogAdapter) GetOrderByID(ctx context.Context, orderID string) ([]*entities.OrderLine, error) {
	query, args, err := a.db.Select(
		goqu.I("o.order_id"), goqu.I("o.user_id"), goqu.I("o.status"), goqu.I("o.gender"),
		goqu.I("o.created_at"), goqu.I("o.returned_at"), goqu.I("o.shipped_at"),
		goqu.I("o.delivered_at"), goqu.I("o.num_of_item"),
		goqu.I("oi.product_id"),
		goqu.I("p.name").As("product_name"),
		goqu.I("p.retail_price"),
	).From(goqu.T("orders").As("o")).
		LeftJoin(goqu.T("order_items").As("oi"), goqu.On(goqu.I("o.order_id").Eq(goqu.I("oi.order_id")))).
		LeftJoin(goqu.T("products").As("p"), goqu.On(goqu.I("oi.product_id").Eq(goqu.I("p.id")))).
		Where(goqu.I("o.order_id").Eq(orderID)).
		ToSQL()

	if err != nil {
		return nil, apperrors.NewInternalError("failed to build order query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get order", err)
	}
	defer rows.Close()

	var lines []*entities.OrderLine
	for rows.Next() {
		line := &entities.OrderLine{}
		err := rows.Scan(
			&line.OrderID,
			&line.UserID,
			&line.Status,
			&line.Gender,
			&line.CreatedAt,
			&line.ReturnedAt,
			&line.ShippedAt,
			&line.DeliveredAt,
			&line.NumOfItem,
			&line.ProductID,
			&line.ProductName,
			&line.RetailPrice,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan order line", err)
		}
		lines = append(lines, line)
	}

	if err = rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating order lines", err)
	}

	return lines, nil
}

// GetUsersByState lists users registered in a state.
func (a *CatalogAdapter) GetUsersByState(ctx context.Context, state string) ([]*entities.User, error) {
	query, args, err := a.db.Select(
		"id", "first_name", "last_name", "email", "age", "gender", "state",
		"street_address", "postal_code", "city", "country",
		"latitude", "longitude", "traffic_source", "created_at",
	).From("users").
		Where(goqu.Ex{"state": state}).
		Limit(repositories.UsersByStateRowLimit).
		ToSQL()

	if err != nil {
		return nil, apperrors.NewInternalError("failed to build users query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get users", err)
	}
	defer rows.Close()

	var users []*entities.User
	for rows.Next() {
		user := &entities.User{}
		err := rows.Scan(
			&user.ID,
			&user.FirstName,
			&user.LastName,
			&user.Email,
			&user.Age,
			&user.Gender,
			&user.State,
			&user.StreetAddress,
			&user.PostalCode,
			&user.City,
			&user.Country,
			&user.Latitude,
			&user.Longitude,
			&user.TrafficSource,
			&user.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan user", err)
		}
		users = append(users, user)
	}

	if err = rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating users", err)
	}

	return users, nil
}

// GetUserDemographics aggregates gender-by-state counts with average age.
func (a *CatalogAdapter) GetUserDemographics(ctx context.Context) ([]*entities.DemographicBucket, error) {
	query, args, err := a.db.Select(
		goqu.I("gender"),
		goqu.COUNT("*").As("count"),
		goqu.AVG("age").As("avg_age"),
		goqu.I("state"),
	).From("users").
		Where(goqu.I("gender").IsNotNull()).
		GroupBy("gender", "state").
		Order(goqu.I("count").Desc()).
		Limit(repositories.DemographicsRowLimit).
		ToSQL()

	if err != nil {
		return nil, apperrors.NewInternalError("failed to build demographics query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get demographics", err)
	}
	defer rows.Close()

	var buckets []*entities.DemographicBucket
	for rows.Next() {
		bucket := &entities.DemographicBucket{}
		err := rows.Scan(
			&bucket.Gender,
			&bucket.Count,
			&bucket.AvgAge,
			&bucket.State,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan demographic bucket", err)
		}
		buckets = append(buckets, bucket)
	}

	if err = rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating demographics", err)
	}

	return buckets, nil
}

// GetLowStockProducts lists products whose unsold stock is below threshold.
func (a *CatalogAdapter) GetLowStockProducts(ctx context.Context, threshold int) ([]*entities.LowStockProduct, error) {
	if threshold <= 0 {
		threshold = repositories.LowStockThreshold
	}

	query, args, err := a.db.Select(
		goqu.I("p.id"), goqu.I("p.cost"), goqu.I("p.category"), goqu.I("p.name"),
		goqu.I("p.brand"), goqu.I("p.retail_price"), goqu.I("p.department"),
		goqu.I("p.sku"), goqu.I("p.distribution_center_id"),
		goqu.COUNT(goqu.I("ii.id")).As("stock_count"),
	).From(goqu.T("products").As("p")).
		LeftJoin(
			goqu.T("inventory_items").As("ii"),
			goqu.On(goqu.And(
				goqu.I("ii.product_id").Eq(goqu.I("p.id")),
				goqu.I("ii.sold_at").IsNull(),
			)),
		).
		GroupBy(
			goqu.I("p.id"), goqu.I("p.cost"), goqu.I("p.category"), goqu.I("p.name"),
			goqu.I("p.brand"), goqu.I("p.retail_price"), goqu.I("p.department"),
			goqu.I("p.sku"), goqu.I("p.distribution_center_id"),
		).
		Having(goqu.COUNT(goqu.I("ii.id")).Lt(threshold)).
		Order(goqu.I("stock_count").Asc()).
		Limit(repositories.LowStockRowLimit).
		ToSQL()

	if err != nil {
		return nil, apperrors.NewInternalError("failed to build low stock query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get low stock products", err)
	}
	defer rows.Close()

	var products []*entities.LowStockProduct
	for rows.Next() {
		product := &entities.LowStockProduct{}
		err := rows.Scan(
			&product.ID,
			&product.Cost,
			&product.Category,
			&product.Name,
			&product.Brand,
			&product.RetailPrice,
			&product.Department,
			&product.SKU,
			&product.DistributionCenterID,
			&product.StockCount,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan low stock product", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating low stock products", err)
	}

	return products, nil
}

// GetTopSellingProducts ranks products by order item count.
func (a *CatalogAdapter) GetTopSellingProducts(ctx context.Context, limit int) ([]*entities.TopProduct, error) {
	if limit <= 0 {
		limit = repositories.TopProductsLimit
	}

	query, args, err := a.db.Select(
		goqu.I("p.id"), goqu.I("p.name"), goqu.I("p.brand"), goqu.I("p.category"),
		goqu.COUNT(goqu.I("oi.product_id")).As("sales_count"),
	).From(goqu.T("products").As("p")).
		Join(goqu.T("order_items").As("oi"), goqu.On(goqu.I("p.id").Eq(goqu.I("oi.product_id")))).
		GroupBy(goqu.I("p.id"), goqu.I("p.name"), goqu.I("p.brand"), goqu.I("p.category")).
		Order(goqu.I("sales_count").Desc()).
		Limit(uint(limit)).
		ToSQL()

	if err != nil {
		return nil, apperrors.NewInternalError("failed to build top sellers query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get top selling products", err)
	}
	defer rows.Close()

	var products []*entities.TopProduct
	for rows.Next() {
		product := &entities.TopProduct{}
		err := rows.Scan(
			&product.ID,
			&product.Name,
			&product.Brand,
			&product.Category,
			&product.SalesCount,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan top product", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating top products", err)
	}

	return products, nil
}

// GetSalesByCategory aggregates sales volume and average price per category.
func (a *CatalogAdapter) GetSalesByCategory(ctx context.Context) ([]*entities.CategorySales, error) {
	query, args, err := a.db.Select(
		goqu.I("p.category"),
		goqu.COUNT(goqu.I("oi.product_id")).As("sales_count"),
		goqu.AVG(goqu.I("p.retail_price")).As("avg_price"),
	).From(goqu.T("products").As("p")).
		Join(goqu.T("order_items").As("oi"), goqu.On(goqu.I("p.id").Eq(goqu.I("oi.product_id")))).
		GroupBy(goqu.I("p.category")).
		Order(goqu.I("sales_count").Desc()).
		ToSQL()

	if err != nil {
		return nil, apperrors.NewInternalError("failed to build category sales query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get sales by category", err)
	}
	defer rows.Close()

	var sales []*entities.CategorySales
	for rows.Next() {
		row := &entities.CategorySales{}
		err := rows.Scan(
			&row.Category,
			&row.SalesCount,
			&row.AvgPrice,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan category sales", err)
		}
		sales = append(sales, row)
	}

	if err = rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating category sales", err)
	}

	return sales, nil
}
