package service

import (
	"context"
	"errors"
	"math"

	"go.uber.org/zap"

	"styleme/internal/logging"
	"styleme/internal/model"
	"styleme/internal/repository"
)

// DefaultPageSize is the storefront listing page size
const DefaultPageSize = 12

// ProductStore runs catalog plans
type ProductStore interface {
	SearchProducts(ctx context.Context, plan *model.Plan) ([]model.Product, int, error)
}

// QueryBuilder composes typed catalog plans from extracted or explicit filters
type QueryBuilder struct {
	store    ProductStore
	pageSize int
	logger   *zap.Logger
}

// NewQueryBuilder creates a query builder
func NewQueryBuilder(store ProductStore, pageSize int, logger *zap.Logger) *QueryBuilder {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &QueryBuilder{store: store, pageSize: pageSize, logger: logger}
}

// PageSize returns the configured page size
func (b *QueryBuilder) PageSize() int {
	return b.pageSize
}

// Build returns the plan for one page of the listing. Stock >= 0 is the base
// predicate; InStockOnly raises it to stock >= 1.
func (b *QueryBuilder) Build(f *model.ProductFilters, sort model.SortKey, page int) *model.Plan {
	if page < 1 {
		page = 1
	}
	plan := &model.Plan{
		Predicates: predicatesFor(f),
		Sort:       sort,
		Limit:      b.pageSize,
		Offset:     (page - 1) * b.pageSize,
		Page:       page,
	}
	if plan.Sort == "" {
		plan.Sort = model.SortNewest
	}
	return plan
}

// BuildLimited returns a single-page plan capped at limit rows
func (b *QueryBuilder) BuildLimited(f *model.ProductFilters, sort model.SortKey, limit int) *model.Plan {
	plan := b.Build(f, sort, 1)
	plan.Limit = limit
	return plan
}

// Run executes a plan. The result is never nil: storage errors are logged and
// yield an empty page with zeroed pagination alongside the error.
func (b *QueryBuilder) Run(ctx context.Context, plan *model.Plan) (*model.PlanResult, error) {
	products, total, err := b.store.SearchProducts(ctx, plan)
	if err != nil {
		b.logger.Error("Catalog query failed", storageErrorFields(err)...)
		return &model.PlanResult{Products: []model.Product{}}, err
	}

	totalPages := 0
	if plan.Limit > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(plan.Limit)))
	}
	return &model.PlanResult{
		Products: products,
		Total:    total,
		Pagination: model.Pagination{
			CurrentPage: plan.Page,
			TotalPages:  totalPages,
			TotalItems:  total,
			PerPage:     plan.Limit,
		},
	}, nil
}

// storageErrorFields adds the truncated failing SQL when the error carries it
func storageErrorFields(err error) []zap.Field {
	fields := []zap.Field{zap.Error(err)}
	var qe *repository.QueryError
	if errors.As(err, &qe) {
		fields = append(fields, zap.String("query", logging.TruncateQuery(qe.Query)))
	}
	return fields
}

// FromFilterSet converts extracted filters to listing filters
func FromFilterSet(fs *model.FilterSet, inStockOnly bool) *model.ProductFilters {
	f := &model.ProductFilters{InStockOnly: inStockOnly}
	if fs == nil {
		return f
	}
	f.Terms = fs.Terms
	f.CategoryIDs = fs.CategoryIDs
	f.Brands = fs.Brands
	f.Sizes = fs.Sizes
	f.Colors = fs.Colors
	f.Occasions = fs.Occasions
	f.Gender = fs.Gender
	if fs.PriceRange != nil {
		f.PriceMin = fs.PriceRange.Min
		f.PriceMax = fs.PriceRange.Max
	}
	return f
}

func predicatesFor(f *model.ProductFilters) []model.Predicate {
	stock := 0.0
	if f != nil && f.InStockOnly {
		stock = 1
	}
	preds := []model.Predicate{{Kind: model.PredStockAtLeast, Number: stock}}
	if f == nil {
		return preds
	}

	if f.Search != "" {
		preds = append(preds, model.Predicate{Kind: model.PredKeyword, Values: []string{f.Search}})
	}
	if len(f.Terms) > 0 {
		preds = append(preds, model.Predicate{Kind: model.PredText, Values: f.Terms})
	}
	if len(f.CategoryIDs) > 0 {
		preds = append(preds, model.Predicate{Kind: model.PredCategoryIn, IDs: f.CategoryIDs})
	}
	if f.PriceMin != nil {
		preds = append(preds, model.Predicate{Kind: model.PredPriceMin, Number: *f.PriceMin})
	}
	if f.PriceMax != nil {
		preds = append(preds, model.Predicate{Kind: model.PredPriceMax, Number: *f.PriceMax})
	}
	if len(f.Brands) > 0 {
		preds = append(preds, model.Predicate{Kind: model.PredBrandIn, Values: f.Brands})
	}
	if len(f.Sizes) > 0 {
		preds = append(preds, model.Predicate{Kind: model.PredSizeContains, Values: f.Sizes})
	}
	if len(f.Colors) > 0 {
		preds = append(preds, model.Predicate{Kind: model.PredColorContains, Values: f.Colors})
	}
	if len(f.Occasions) > 0 {
		preds = append(preds, model.Predicate{Kind: model.PredOccasionContains, Values: f.Occasions})
	}
	if f.Gender != "" {
		preds = append(preds, model.Predicate{Kind: model.PredGenderEquals, Values: []string{f.Gender}})
	}
	if f.DiscountOnly {
		preds = append(preds, model.Predicate{Kind: model.PredHasDiscount})
	}
	return preds
}
