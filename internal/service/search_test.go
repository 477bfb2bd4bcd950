package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"styleme/internal/model"
)

func searchCatalog() *fakeStore {
	return &fakeStore{
		products: []model.Product{
			catalogProduct(2, "Blue Denim Jacket", "Blue", "Jackets", 4000, 2),
			catalogProduct(5, "Black Heels", "Black", "Shoes", 2500, 1),
			catalogProduct(9, "Red Silk Dress", "Red", "Dresses", 3500, 4),
			catalogProduct(11, "Red Wrap Dress", "Red", "Dresses", 1500, 0),
		},
		categories: []model.Category{{ID: 1, Name: "Dresses"}, {ID: 2, Name: "Jackets"}},
	}
}

func productIDs(products []model.ScoredProduct) []int64 {
	ids := make([]int64, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	return ids
}

func TestSearch_RetrievalOrderIsKept(t *testing.T) {
	store := searchCatalog()
	svc := newTestSearchService(store, &fakeRetriever{resp: okRetrieval(5, 2, 9)})

	resp := svc.Search(context.Background(), &model.SearchRequest{Query: "red dress"})
	svc.WaitForLogs()

	assert.True(t, resp.Success)
	assert.Equal(t, model.SearchTypeRAG, resp.SearchType)
	assert.Empty(t, resp.Message)
	assert.Equal(t, []int64{5, 2, 9}, productIDs(resp.Products))
	assert.Equal(t, 3, resp.ResultsCount)
	assert.NotNil(t, resp.RetrievalTime)
	assert.Greater(t, resp.Products[2].SimilarityScore, 0)
	assert.Equal(t, 0, store.searchCalls())
}

func TestSearch_RescoreReorders(t *testing.T) {
	svc := newTestSearchService(searchCatalog(), &fakeRetriever{resp: okRetrieval(5, 2, 9)})

	resp := svc.Search(context.Background(), &model.SearchRequest{Query: "red dress", Rescore: true})
	svc.WaitForLogs()

	assert.Equal(t, []int64{9, 5, 2}, productIDs(resp.Products))
}

func TestSearch_FallbackTriggers(t *testing.T) {
	tests := []struct {
		name      string
		retriever *fakeRetriever
	}{
		{name: "network error", retriever: &fakeRetriever{err: ErrRetrievalUnavailable}},
		{name: "rate limited", retriever: &fakeRetriever{err: ErrRateLimited}},
		{name: "no ids", retriever: &fakeRetriever{resp: okRetrieval()}},
		{name: "ids out of stock", retriever: &fakeRetriever{resp: okRetrieval(11)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := searchCatalog()
			store.products = store.products[:3]
			svc := newTestSearchService(store, tt.retriever)

			resp := svc.Search(context.Background(), &model.SearchRequest{Query: "red dress"})
			svc.WaitForLogs()

			assert.True(t, resp.Success)
			assert.Equal(t, model.SearchTypeFallback, resp.SearchType)
			assert.Equal(t, MsgFallback, resp.Message)
			assert.Nil(t, resp.RetrievalTime)
			require.NotEmpty(t, resp.Products)
			assert.Equal(t, int64(9), resp.Products[0].ID)
			require.Equal(t, 1, store.searchCalls())

			plan := store.plans[0]
			assert.Equal(t, DefaultFallbackSize, plan.Limit)
			assert.Equal(t, model.SortNewest, plan.Sort)
			assert.Contains(t, plan.Predicates, model.Predicate{Kind: model.PredStockAtLeast, Number: 1})
			assert.Contains(t, plan.Predicates, model.Predicate{Kind: model.PredColorContains, Values: []string{"red"}})
			assert.Contains(t, plan.Predicates, model.Predicate{Kind: model.PredCategoryIn, IDs: []int64{1}})
		})
	}
}

func TestSearch_FallbackOnHTTPFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "status 500", status: http.StatusInternalServerError, body: `oops`},
		{name: "malformed json", status: http.StatusOK, body: `{"product_ids":`},
		{name: "success false", status: http.StatusOK, body: `{"success":false}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			svc := newTestSearchService(searchCatalog(), NewRetrievalClient(retrievalConfig(server.URL)))
			resp := svc.Search(context.Background(), &model.SearchRequest{Query: "red dress"})
			svc.WaitForLogs()

			assert.True(t, resp.Success)
			assert.Equal(t, model.SearchTypeFallback, resp.SearchType)
			assert.Equal(t, MsgFallback, resp.Message)
		})
	}
}

func TestSearch_LocalSearchTypeSkipsRetrieval(t *testing.T) {
	for _, searchType := range []string{"fallback", "database", "DATABASE"} {
		t.Run(searchType, func(t *testing.T) {
			retriever := &fakeRetriever{resp: okRetrieval(9)}
			svc := newTestSearchService(searchCatalog(), retriever)

			resp := svc.Search(context.Background(), &model.SearchRequest{Query: "dress", SearchType: searchType})
			svc.WaitForLogs()

			assert.Equal(t, model.SearchTypeFallback, resp.SearchType)
			assert.Empty(t, retriever.calls)
		})
	}
}

func TestSearch_EmptyQueryMakesNoCalls(t *testing.T) {
	store := searchCatalog()
	retriever := &fakeRetriever{resp: okRetrieval(9)}
	svc := newTestSearchService(store, retriever)

	resp := svc.Search(context.Background(), &model.SearchRequest{Query: "   "})
	svc.WaitForLogs()

	assert.False(t, resp.Success)
	assert.Equal(t, MsgQueryRequired, resp.Message)
	assert.NotNil(t, resp.Products)
	assert.Equal(t, 0, store.searchCalls())
	assert.Equal(t, 0, store.listedCalls)
	assert.Empty(t, retriever.calls)
	assert.Empty(t, store.logged)
}

func TestSearch_NegativeUserIDRejected(t *testing.T) {
	store := searchCatalog()
	retriever := &fakeRetriever{resp: okRetrieval(9)}
	svc := newTestSearchService(store, retriever)

	resp := svc.Search(context.Background(), &model.SearchRequest{Query: "dress", UserID: -4})

	assert.False(t, resp.Success)
	assert.Equal(t, MsgInvalidUserID, resp.Message)
	assert.Empty(t, retriever.calls)
	assert.Equal(t, 0, store.searchCalls())
	assert.ErrorIs(t, ValidateSearchRequest(&model.SearchRequest{Query: " "}), model.ErrEmptyQuery)
}

func TestSearch_StorageErrorDegrades(t *testing.T) {
	store := searchCatalog()
	store.searchErr = errors.New("connection reset")
	svc := newTestSearchService(store, nil)

	resp := svc.Search(context.Background(), &model.SearchRequest{Query: "red dress"})
	svc.WaitForLogs()

	assert.True(t, resp.Success)
	assert.Equal(t, MsgSearchFailed, resp.Message)
	assert.Empty(t, resp.Products)
	assert.Equal(t, 0, resp.ResultsCount)
}

func TestSearch_PreferencesFlowThrough(t *testing.T) {
	store := searchCatalog()
	retriever := &fakeRetriever{err: ErrRetrievalUnavailable}
	svc := newTestSearchService(store, retriever)

	resp := svc.Search(context.Background(), &model.SearchRequest{
		Query: "dress",
		Preferences: &model.PreferenceSet{
			ColorPreferences: []string{"Red", "neon"},
			BudgetMin:        floatPtr(1000),
			BudgetMax:        floatPtr(3000),
		},
	})
	svc.WaitForLogs()

	assert.Equal(t, "dress | colors: red | budget: Rs.1000-3000", resp.ProcessedQuery)
	require.Len(t, retriever.calls, 1)
	assert.Equal(t, resp.ProcessedQuery, retriever.calls[0])

	plan := store.plans[0]
	assert.Contains(t, plan.Predicates, model.Predicate{Kind: model.PredPriceMin, Number: 1000})
	assert.Contains(t, plan.Predicates, model.Predicate{Kind: model.PredPriceMax, Number: 3000})
}

func TestSearch_LogsSearch(t *testing.T) {
	store := searchCatalog()
	svc := newTestSearchService(store, &fakeRetriever{resp: okRetrieval(9, 5)})
	svc.newID = func() string { return "search-1" }

	resp := svc.Search(context.Background(), &model.SearchRequest{Query: "red dress", UserID: 3})
	svc.WaitForLogs()

	assert.Equal(t, "search-1", resp.SearchID)
	require.Len(t, store.logged, 1)
	entry := store.logged[0]
	assert.Equal(t, "search-1", entry.SearchID)
	assert.Equal(t, int64(3), entry.UserID)
	assert.Equal(t, model.SearchTypeRAG, entry.SearchType)
	assert.Equal(t, []int64{9, 5}, entry.ProductIDs)
	assert.Equal(t, 2, entry.ResultCount)
}

func TestSearchStream_Events(t *testing.T) {
	svc := newTestSearchService(searchCatalog(), &fakeRetriever{resp: okRetrieval(9)})

	var events []string
	resp, err := svc.SearchStream(context.Background(), &model.SearchRequest{Query: "red dress"}, func(event string, data any) error {
		events = append(events, event)
		return nil
	})
	svc.WaitForLogs()

	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, []string{"start", "filters", "retrieval", "results", "done"}, events)
}

func TestSearchStream_CallbackErrorStops(t *testing.T) {
	retriever := &fakeRetriever{resp: okRetrieval(9)}
	svc := newTestSearchService(searchCatalog(), retriever)
	closed := errors.New("client gone")

	resp, err := svc.SearchStream(context.Background(), &model.SearchRequest{Query: "red dress"}, func(event string, data any) error {
		if event == "filters" {
			return closed
		}
		return nil
	})

	assert.ErrorIs(t, err, closed)
	assert.Nil(t, resp)
	assert.Empty(t, retriever.calls)
}

func TestSearchService_GetProduct(t *testing.T) {
	svc := newTestSearchService(searchCatalog(), nil)

	_, err := svc.GetProduct(context.Background(), 0)
	assert.ErrorIs(t, err, model.ErrInvalidProductID)

	_, err = svc.GetProduct(context.Background(), 404)
	assert.ErrorIs(t, err, model.ErrNotFound)

	p, err := svc.GetProduct(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, "Red Silk Dress", p.Name)
}

func TestSuggestions(t *testing.T) {
	assert.Len(t, Suggestions("ab"), 4)
	assert.Empty(t, Suggestions("red party dress"))
	assert.Equal(t, []string{"Specify color: 'blue shirt', 'red dress', 'black shoes'"}, Suggestions("formal shirt"))
}
