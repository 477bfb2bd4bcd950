package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"styleme/internal/model"
)

// productColumns is the SELECT list shared by every product query
const productColumns = `
	p.id, p.category_id, c.name AS category_name, p.name, p.description,
	p.price, p.discount_price, p.stock, p.brand, p.color, p.size,
	p.occasion, p.gender, p.image, p.created_at`

const productFrom = `FROM products p LEFT JOIN categories c ON p.category_id = c.id`

// CatalogRepository handles catalog database operations
type CatalogRepository struct {
	db *sqlx.DB
}

// NewCatalogRepository connects to PostgreSQL and returns a repository
func NewCatalogRepository(dsn string, maxConn, maxIdleConn int) (*CatalogRepository, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &CatalogRepository{db: db}, nil
}

// NewCatalogRepositoryFromDB wraps an existing connection
func NewCatalogRepositoryFromDB(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// DB exposes the underlying connection for migrations
func (r *CatalogRepository) DB() *sqlx.DB {
	return r.db
}

// Close closes the database connection
func (r *CatalogRepository) Close() error {
	return r.db.Close()
}

// Ping checks the database connection
func (r *CatalogRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// SearchProducts runs a plan and returns the requested page and the total count
func (r *CatalogRepository) SearchProducts(ctx context.Context, plan *model.Plan) ([]model.Product, int, error) {
	where, args, err := compileWhere(plan.Predicates)
	if err != nil {
		return nil, 0, err
	}

	countQuery := r.db.Rebind(fmt.Sprintf("SELECT COUNT(*) %s WHERE %s", productFrom, where))
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, &QueryError{Query: countQuery, Err: fmt.Errorf("failed to count products: %w", err)}
	}

	selectQuery := fmt.Sprintf("SELECT %s %s WHERE %s ORDER BY %s LIMIT ? OFFSET ?",
		productColumns, productFrom, where, compileOrder(plan.Sort))
	selectQuery = r.db.Rebind(selectQuery)
	args = append(args, plan.Limit, plan.Offset)

	products := []model.Product{}
	if err := r.db.SelectContext(ctx, &products, selectQuery, args...); err != nil {
		return nil, 0, &QueryError{Query: selectQuery, Err: fmt.Errorf("failed to fetch products: %w", err)}
	}

	return products, total, nil
}

// GetProductsByIDs returns the in-stock products among ids, in the order of ids
func (r *CatalogRepository) GetProductsByIDs(ctx context.Context, ids []int64) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	query, args, err := sqlx.In(fmt.Sprintf("SELECT %s %s WHERE p.id IN (?) AND p.stock > 0", productColumns, productFrom), ids)
	if err != nil {
		return nil, fmt.Errorf("failed to expand product ids: %w", err)
	}
	query = r.db.Rebind(query)

	var rows []model.Product
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, &QueryError{Query: query, Err: fmt.Errorf("failed to fetch products by ids: %w", err)}
	}

	byID := make(map[int64]model.Product, len(rows))
	for _, p := range rows {
		byID[p.ID] = p
	}
	products := make([]model.Product, 0, len(rows))
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok && !seen[id] {
			seen[id] = true
			products = append(products, p)
		}
	}
	return products, nil
}

// GetProduct retrieves a single product by its ID
func (r *CatalogRepository) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	var product model.Product
	query := r.db.Rebind(fmt.Sprintf("SELECT %s %s WHERE p.id = ?", productColumns, productFrom))
	err := r.db.GetContext(ctx, &product, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &product, nil
}

// ListCategories returns every category ordered by name
func (r *CatalogRepository) ListCategories(ctx context.Context) ([]model.Category, error) {
	categories := []model.Category{}
	query := `SELECT id, name, slug, description FROM categories ORDER BY name`
	if err := r.db.SelectContext(ctx, &categories, query); err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// ListCategoriesWithCounts returns categories with their in-stock product counts
func (r *CatalogRepository) ListCategoriesWithCounts(ctx context.Context) ([]model.Category, error) {
	categories := []model.Category{}
	query := `
		SELECT c.id, c.name, c.slug, c.description, COUNT(p.id) AS product_count
		FROM categories c
		LEFT JOIN products p ON p.category_id = c.id AND p.stock > 0
		GROUP BY c.id, c.name, c.slug, c.description
		ORDER BY c.name`
	if err := r.db.SelectContext(ctx, &categories, query); err != nil {
		return nil, fmt.Errorf("failed to list categories with counts: %w", err)
	}
	return categories, nil
}

// ListBrands returns the distinct non-empty brand values
func (r *CatalogRepository) ListBrands(ctx context.Context) ([]string, error) {
	brands := []string{}
	query := `SELECT DISTINCT brand FROM products WHERE brand IS NOT NULL AND brand <> '' ORDER BY brand`
	if err := r.db.SelectContext(ctx, &brands, query); err != nil {
		return nil, fmt.Errorf("failed to list brands: %w", err)
	}
	return brands, nil
}

// FilterOptions returns the facet values offered by the storefront filter panel
func (r *CatalogRepository) FilterOptions(ctx context.Context) (*model.FilterOptions, error) {
	categories, err := r.ListCategoriesWithCounts(ctx)
	if err != nil {
		return nil, err
	}
	opts := &model.FilterOptions{Categories: categories}

	facets := []struct {
		column string
		dest   *[]model.FacetCount
	}{
		{"brand", &opts.Brands},
		{"size", &opts.Sizes},
		{"color", &opts.Colors},
		{"occasion", &opts.Occasions},
	}
	for _, f := range facets {
		query := fmt.Sprintf(`
			SELECT %[1]s AS value, COUNT(*) AS count
			FROM products
			WHERE %[1]s IS NOT NULL AND %[1]s <> '' AND stock > 0
			GROUP BY %[1]s
			ORDER BY %[1]s`, f.column)
		*f.dest = []model.FacetCount{}
		if err := r.db.SelectContext(ctx, f.dest, query); err != nil {
			return nil, fmt.Errorf("failed to list %s facets: %w", f.column, err)
		}
	}
	return opts, nil
}

// RecentOrders returns the latest orders placed by a user
func (r *CatalogRepository) RecentOrders(ctx context.Context, userID int64, limit int) ([]model.Order, error) {
	orders := []model.Order{}
	query := r.db.Rebind(`
		SELECT id, order_number, total_amount, status, created_at
		FROM orders
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`)
	if err := r.db.SelectContext(ctx, &orders, query, userID, limit); err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// QueryError carries the failing SQL so callers can log it
type QueryError struct {
	Query string
	Err   error
}

func (e *QueryError) Error() string { return e.Err.Error() }

func (e *QueryError) Unwrap() error { return e.Err }
