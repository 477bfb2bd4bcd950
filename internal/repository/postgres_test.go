package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"styleme/internal/model"
)

func names(products []model.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.Name
	}
	return out
}

func TestSearchProductsPagination(t *testing.T) {
	repo := newTestRepository(t)
	insertNumbered(t, repo, 25)
	ctx := context.Background()

	plan := func(page int) *model.Plan {
		return &model.Plan{
			Predicates: []model.Predicate{{Kind: model.PredStockAtLeast, Number: 0}},
			Sort:       model.SortNameAsc,
			Limit:      12,
			Offset:     (page - 1) * 12,
			Page:       page,
		}
	}

	page2, total, err := repo.SearchProducts(ctx, plan(2))
	require.NoError(t, err)
	assert.Equal(t, 25, total)
	require.Len(t, page2, 12)
	assert.Equal(t, "Product 13", page2[0].Name)
	assert.Equal(t, "Product 24", page2[11].Name)

	page3, total, err := repo.SearchProducts(ctx, plan(3))
	require.NoError(t, err)
	assert.Equal(t, 25, total)
	assert.Equal(t, []string{"Product 25"}, names(page3))
}

func TestSearchProductsPredicates(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	dresses := insertCategory(t, repo, "Dresses")
	shirts := insertCategory(t, repo, "Shirts")

	insertProduct(t, repo, seedProduct{categoryID: dresses, name: "Red Party Dress", price: 4000, discountPrice: 2500.0, stock: 3, brand: "Zara", color: "Red, Black", size: "S,M", occasion: "party", gender: "Female"})
	insertProduct(t, repo, seedProduct{categoryID: dresses, name: "Red Maxi Dress", price: 3500, stock: 2, brand: "H&M", color: "Red", size: "L", occasion: "casual", gender: "Female"})
	insertProduct(t, repo, seedProduct{categoryID: dresses, name: "Blue Dress", price: 1500, stock: 4, brand: "Zara", color: "Blue", size: "M", occasion: "casual", gender: "Female"})
	insertProduct(t, repo, seedProduct{categoryID: shirts, name: "Redwood Shirt", price: 900, discountPrice: 0.0, stock: 0, brand: "Levis", color: "Reddish", size: "XL", occasion: "office", gender: "Male"})

	tests := []struct {
		name  string
		preds []model.Predicate
		want  []string
	}{
		{
			name: "color token with effective price cap",
			preds: []model.Predicate{
				{Kind: model.PredColorContains, Values: []string{"red"}},
				{Kind: model.PredPriceMax, Number: 3000},
			},
			want: []string{"Red Party Dress"},
		},
		{
			name:  "color token does not match substrings",
			preds: []model.Predicate{{Kind: model.PredColorContains, Values: []string{"red"}}},
			want:  []string{"Red Maxi Dress", "Red Party Dress"},
		},
		{
			name:  "category ids",
			preds: []model.Predicate{{Kind: model.PredCategoryIn, IDs: []int64{shirts}}},
			want:  []string{"Redwood Shirt"},
		},
		{
			name:  "brand set case-insensitive",
			preds: []model.Predicate{{Kind: model.PredBrandIn, Values: []string{"zara"}}},
			want:  []string{"Blue Dress", "Red Party Dress"},
		},
		{
			name:  "size token",
			preds: []model.Predicate{{Kind: model.PredSizeContains, Values: []string{"m"}}},
			want:  []string{"Blue Dress", "Red Party Dress"},
		},
		{
			name:  "gender",
			preds: []model.Predicate{{Kind: model.PredGenderEquals, Values: []string{"male"}}},
			want:  []string{"Redwood Shirt"},
		},
		{
			name:  "discount only",
			preds: []model.Predicate{{Kind: model.PredHasDiscount}},
			want:  []string{"Red Party Dress"},
		},
		{
			name:  "in stock only",
			preds: []model.Predicate{{Kind: model.PredStockAtLeast, Number: 1}, {Kind: model.PredText, Values: []string{"shirt"}}},
			want:  []string{},
		},
		{
			name:  "free text over category name",
			preds: []model.Predicate{{Kind: model.PredText, Values: []string{"shirts"}}},
			want:  []string{"Redwood Shirt"},
		},
		{
			name:  "keyword skips category name",
			preds: []model.Predicate{{Kind: model.PredKeyword, Values: []string{"shirts"}}},
			want:  []string{},
		},
		{
			name:  "keyword skips color",
			preds: []model.Predicate{{Kind: model.PredKeyword, Values: []string{"reddish"}}},
			want:  []string{},
		},
		{
			name:  "keyword matches brand",
			preds: []model.Predicate{{Kind: model.PredKeyword, Values: []string{"levis"}}},
			want:  []string{"Redwood Shirt"},
		},
		{
			name: "price floor uses list price when discount is zero",
			preds: []model.Predicate{
				{Kind: model.PredPriceMin, Number: 800},
				{Kind: model.PredPriceMax, Number: 1000},
			},
			want: []string{"Redwood Shirt"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products, total, err := repo.SearchProducts(ctx, &model.Plan{Predicates: tt.preds, Sort: model.SortNameAsc, Limit: 12})
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(products))
			assert.Equal(t, len(tt.want), total)
		})
	}
}

func TestSearchProductsSorts(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	insertProduct(t, repo, seedProduct{name: "A", price: 1000, stock: 1, createdAt: "2024-01-01 00:00:00"})
	insertProduct(t, repo, seedProduct{name: "B", price: 2000, discountPrice: 500.0, stock: 1, createdAt: "2024-01-02 00:00:00"})
	insertProduct(t, repo, seedProduct{name: "C", price: 1500, discountPrice: 1200.0, stock: 1, createdAt: "2024-01-03 00:00:00"})

	tests := []struct {
		sort model.SortKey
		want []string
	}{
		{model.SortNewest, []string{"C", "B", "A"}},
		{model.SortNameDesc, []string{"C", "B", "A"}},
		{model.SortPriceAsc, []string{"B", "A", "C"}},
		{model.SortPriceDesc, []string{"C", "A", "B"}},
		{model.SortDiscount, []string{"B", "C", "A"}},
		{model.SortFeatured, []string{"C", "B", "A"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.sort), func(t *testing.T) {
			products, _, err := repo.SearchProducts(ctx, &model.Plan{Sort: tt.sort, Limit: 10})
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(products))
		})
	}
}

func TestGetProductsByIDsKeepsOrder(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	insertNumbered(t, repo, 9)
	insertProduct(t, repo, seedProduct{name: "Sold out", price: 10, stock: 0})

	products, err := repo.GetProductsByIDs(ctx, []int64{5, 2, 10, 9, 42})
	require.NoError(t, err)
	assert.Equal(t, []string{"Product 05", "Product 02", "Product 09"}, names(products))

	products, err = repo.GetProductsByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestGetProduct(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	cat := insertCategory(t, repo, "Shoes")
	id := insertProduct(t, repo, seedProduct{categoryID: cat, name: "Runner", price: 50, stock: 1})

	p, err := repo.GetProduct(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Runner", p.Name)
	require.NotNil(t, p.CategoryName)
	assert.Equal(t, "Shoes", *p.CategoryName)

	_, err = repo.GetProduct(ctx, 999)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestCategoriesBrandsAndFacets(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	dresses := insertCategory(t, repo, "Dresses")
	insertCategory(t, repo, "Bags")
	insertProduct(t, repo, seedProduct{categoryID: dresses, name: "D1", price: 10, stock: 1, brand: "Zara", color: "Red"})
	insertProduct(t, repo, seedProduct{categoryID: dresses, name: "D2", price: 10, stock: 1, brand: "Mango", color: "Red"})
	insertProduct(t, repo, seedProduct{categoryID: dresses, name: "D3", price: 10, stock: 0, brand: "Zara"})

	categories, err := repo.ListCategoriesWithCounts(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "Bags", categories[0].Name)
	assert.Equal(t, 0, categories[0].ProductCount)
	assert.Equal(t, 2, categories[1].ProductCount)

	brands, err := repo.ListBrands(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Mango", "Zara"}, brands)

	opts, err := repo.FilterOptions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.FacetCount{{Value: "Red", Count: 2}}, opts.Colors)
	assert.Len(t, opts.Brands, 2)
	assert.Empty(t, opts.Sizes)
}

func TestRecentOrders(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	for i, ts := range []string{"2024-01-01 00:00:00", "2024-01-03 00:00:00", "2024-01-02 00:00:00", "2024-01-04 00:00:00"} {
		_, err := repo.db.Exec(`INSERT INTO orders (user_id, order_number, total_amount, status, created_at) VALUES (?, ?, ?, ?, ?)`,
			7, "ORD-"+string(rune('A'+i)), 100.0, "pending", ts)
		require.NoError(t, err)
	}

	orders, err := repo.RecentOrders(ctx, 7, 3)
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, "ORD-D", orders[0].OrderNumber)
	assert.Equal(t, "ORD-B", orders[1].OrderNumber)
	assert.Equal(t, "ORD-C", orders[2].OrderNumber)

	orders, err = repo.RecentOrders(ctx, 8, 3)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestSearchLogAndFeedback(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	entry := &model.SearchLogEntry{
		SearchID:    "0b7f2f9e-1d2a-4c55-9a43-25d1a3c1b111",
		Query:       "red dress",
		SearchType:  model.SearchTypeFallback,
		Filters:     &model.FilterSet{Colors: []string{"red"}},
		ResultCount: 2,
		ProductIDs:  []int64{3, 1},
	}
	require.NoError(t, repo.LogSearch(ctx, entry))

	var row struct {
		Filters string `db:"filters"`
		IDs     string `db:"returned_product_ids"`
	}
	require.NoError(t, repo.db.Get(&row, `SELECT filters, returned_product_ids FROM search_logs WHERE search_id = ?`, entry.SearchID))
	assert.JSONEq(t, `{"colors":["red"]}`, row.Filters)
	assert.Equal(t, "{3,1}", row.IDs)

	require.NoError(t, repo.LogFeedback(ctx, entry.SearchID, 3, "click"))
	assert.ErrorIs(t, repo.LogFeedback(ctx, "missing", 3, "click"), model.ErrNotFound)
}

func TestBatchUpdateEmbeddings(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	insertNumbered(t, repo, 1)

	vec := make([]float32, EmbeddingDimensions)
	vec[0] = 1

	success, errs := repo.BatchUpdateEmbeddings(ctx, []model.EmbeddingItem{
		{ProductID: 1, Embedding: vec},
		{ProductID: 2, Embedding: vec},
		{ProductID: 1, Embedding: []float32{1, 2}},
	})
	assert.Equal(t, 1, success)
	assert.Len(t, errs, 2)

	var stored string
	require.NoError(t, repo.db.Get(&stored, `SELECT embedding FROM products WHERE id = 1`))
	assert.Contains(t, stored, "[1,0,")
}
