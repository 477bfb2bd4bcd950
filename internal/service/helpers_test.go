package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"styleme/internal/model"
)

// fakeStore is an in-memory CatalogStore that records the calls it receives
type fakeStore struct {
	mu sync.Mutex

	products   []model.Product
	categories []model.Category
	brands     []string
	orders     []model.Order

	searchErr     error
	byIDsErr      error
	categoriesErr error

	plans       []*model.Plan
	byIDsCalls  [][]int64
	logged      []*model.SearchLogEntry
	feedback    []string
	orderUsers  []int64
	listedCalls int
}

func (f *fakeStore) SearchProducts(ctx context.Context, plan *model.Plan) ([]model.Product, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.plans = append(f.plans, plan)
	if f.searchErr != nil {
		return nil, 0, f.searchErr
	}
	out := f.products
	if plan.Limit > 0 && len(out) > plan.Limit {
		out = out[:plan.Limit]
	}
	return out, len(f.products), nil
}

func (f *fakeStore) ListCategories(ctx context.Context) ([]model.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listedCalls++
	if f.categoriesErr != nil {
		return nil, f.categoriesErr
	}
	return f.categories, nil
}

func (f *fakeStore) ListBrands(ctx context.Context) ([]string, error) {
	return f.brands, nil
}

func (f *fakeStore) GetProductsByIDs(ctx context.Context, ids []int64) ([]model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byIDsCalls = append(f.byIDsCalls, ids)
	if f.byIDsErr != nil {
		return nil, f.byIDsErr
	}
	index := make(map[int64]model.Product, len(f.products))
	for _, p := range f.products {
		index[p.ID] = p
	}
	var out []model.Product
	for _, id := range ids {
		if p, ok := index[id]; ok && p.Stock > 0 {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	for _, p := range f.products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, model.ErrNotFound
}

func (f *fakeStore) ListCategoriesWithCounts(ctx context.Context) ([]model.Category, error) {
	if f.categoriesErr != nil {
		return nil, f.categoriesErr
	}
	out := make([]model.Category, len(f.categories))
	copy(out, f.categories)
	return out, nil
}

func (f *fakeStore) FilterOptions(ctx context.Context) (*model.FilterOptions, error) {
	return &model.FilterOptions{Categories: f.categories}, nil
}

func (f *fakeStore) RecentOrders(ctx context.Context, userID int64, limit int) ([]model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orderUsers = append(f.orderUsers, userID)
	if len(f.orders) > limit {
		return f.orders[:limit], nil
	}
	return f.orders, nil
}

func (f *fakeStore) LogSearch(ctx context.Context, entry *model.SearchLogEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logged = append(f.logged, entry)
	return nil
}

func (f *fakeStore) LogFeedback(ctx context.Context, searchID string, productID int64, action string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.feedback = append(f.feedback, searchID+":"+action)
	return nil
}

func (f *fakeStore) BatchUpdateEmbeddings(ctx context.Context, items []model.EmbeddingItem) (int, []string) {
	return len(items), nil
}

func (f *fakeStore) searchCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.plans)
}

// fakeRetriever returns a canned response or error
type fakeRetriever struct {
	mu    sync.Mutex
	resp  *RetrievalResponse
	err   error
	calls []string
}

func (r *fakeRetriever) Search(ctx context.Context, query string, userID int64) (*RetrievalResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, query)
	if r.err != nil {
		return nil, r.err
	}
	return r.resp, nil
}

func okRetrieval(ids ...int64) *RetrievalResponse {
	ok := true
	return &RetrievalResponse{Success: &ok, ProductIDs: ids}
}

func strPtr(s string) *string { return &s }

func floatPtr(v float64) *float64 { return &v }

func catalogProduct(id int64, name, color, category string, price float64, stock int) model.Product {
	p := model.Product{ID: id, Name: name, Price: price, Stock: stock}
	if color != "" {
		p.Color = strPtr(color)
	}
	if category != "" {
		p.CategoryName = strPtr(category)
	}
	return p
}

func newTestSearchService(store *fakeStore, retriever Retriever) *SearchService {
	logger := zap.NewNop()
	vocab := NewCatalogVocabulary(store, 0, logger)
	builder := NewQueryBuilder(store, DefaultPageSize, logger)
	return NewSearchService(store, vocab, NewExtractor(), builder, NewScorer(DefaultMaxDisplayScore), retriever, DefaultFallbackSize, logger)
}

func newTestChatService(store *fakeStore) *ChatService {
	logger := zap.NewNop()
	extractor := NewExtractor()
	vocab := NewCatalogVocabulary(store, 0, logger)
	builder := NewQueryBuilder(store, DefaultPageSize, logger)
	svc := NewChatService(store, vocab, NewClassifier(extractor), extractor, builder, NewMemoryConversationStore(0), 6, logger)
	svc.pick = func(int) int { return 0 }
	return svc
}
