package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"styleme/internal/model"
)

func TestQueryBuilder_Build(t *testing.T) {
	builder := NewQueryBuilder(&fakeStore{}, 12, zap.NewNop())

	tests := []struct {
		name   string
		page   int
		offset int
		want   int
	}{
		{name: "page zero clamps to one", page: 0, offset: 0, want: 1},
		{name: "negative page clamps to one", page: -3, offset: 0, want: 1},
		{name: "third page", page: 3, offset: 24, want: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := builder.Build(nil, "", tt.page)
			assert.Equal(t, tt.want, plan.Page)
			assert.Equal(t, tt.offset, plan.Offset)
			assert.Equal(t, 12, plan.Limit)
			assert.Equal(t, model.SortNewest, plan.Sort)
			assert.Equal(t, []model.Predicate{{Kind: model.PredStockAtLeast, Number: 0}}, plan.Predicates)
		})
	}
}

func TestQueryBuilder_Predicates(t *testing.T) {
	builder := NewQueryBuilder(&fakeStore{}, 0, zap.NewNop())
	assert.Equal(t, DefaultPageSize, builder.PageSize())

	f := &model.ProductFilters{
		Search:       "linen",
		Terms:        []string{"kurta"},
		CategoryIDs:  []int64{4},
		PriceMin:     floatPtr(100),
		PriceMax:     floatPtr(900),
		Brands:       []string{"Zara"},
		Sizes:        []string{"M"},
		Colors:       []string{"red"},
		Occasions:    []string{"party"},
		Gender:       "Female",
		DiscountOnly: true,
		InStockOnly:  true,
	}

	plan := builder.BuildLimited(f, model.SortPriceAsc, 6)

	assert.Equal(t, 6, plan.Limit)
	assert.Equal(t, model.SortPriceAsc, plan.Sort)
	assert.Equal(t, []model.Predicate{
		{Kind: model.PredStockAtLeast, Number: 1},
		{Kind: model.PredKeyword, Values: []string{"linen"}},
		{Kind: model.PredText, Values: []string{"kurta"}},
		{Kind: model.PredCategoryIn, IDs: []int64{4}},
		{Kind: model.PredPriceMin, Number: 100},
		{Kind: model.PredPriceMax, Number: 900},
		{Kind: model.PredBrandIn, Values: []string{"Zara"}},
		{Kind: model.PredSizeContains, Values: []string{"M"}},
		{Kind: model.PredColorContains, Values: []string{"red"}},
		{Kind: model.PredOccasionContains, Values: []string{"party"}},
		{Kind: model.PredGenderEquals, Values: []string{"Female"}},
		{Kind: model.PredHasDiscount},
	}, plan.Predicates)
}

func TestQueryBuilder_RunPagination(t *testing.T) {
	store := &fakeStore{}
	for i := int64(1); i <= 25; i++ {
		store.products = append(store.products, catalogProduct(i, "Item", "", "", 100, 1))
	}
	builder := NewQueryBuilder(store, 12, zap.NewNop())

	result, err := builder.Run(context.Background(), builder.Build(nil, model.SortNewest, 2))

	require.NoError(t, err)
	assert.Len(t, result.Products, 12)
	assert.Equal(t, model.Pagination{CurrentPage: 2, TotalPages: 3, TotalItems: 25, PerPage: 12}, result.Pagination)
}

func TestQueryBuilder_RunStorageError(t *testing.T) {
	store := &fakeStore{searchErr: errors.New("connection refused")}
	builder := NewQueryBuilder(store, 12, zap.NewNop())

	result, err := builder.Run(context.Background(), builder.Build(nil, model.SortNewest, 1))

	require.Error(t, err)
	require.NotNil(t, result)
	assert.Empty(t, result.Products)
	assert.NotNil(t, result.Products)
	assert.Equal(t, model.Pagination{}, result.Pagination)
}

func TestFromFilterSet(t *testing.T) {
	fs := &model.FilterSet{
		Colors:      []string{"red"},
		CategoryIDs: []int64{1},
		Terms:       []string{"linen"},
		Gender:      "Male",
		PriceRange:  &model.PriceRange{Max: floatPtr(3000)},
	}

	f := FromFilterSet(fs, true)

	assert.True(t, f.InStockOnly)
	assert.Equal(t, []string{"red"}, f.Colors)
	assert.Equal(t, []int64{1}, f.CategoryIDs)
	assert.Equal(t, []string{"linen"}, f.Terms)
	assert.Equal(t, "Male", f.Gender)
	assert.Nil(t, f.PriceMin)
	assert.Equal(t, 3000.0, *f.PriceMax)

	assert.Equal(t, &model.ProductFilters{}, FromFilterSet(nil, false))
}
