package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"styleme/internal/model"
	"styleme/internal/vocabulary"
)

// User-facing messages
const (
	MsgQueryRequired = "Search query is required"
	MsgInvalidUserID = "Invalid user ID"
	MsgFallback      = "AI search unavailable, using database search"
	MsgSearchFailed  = "Search is temporarily unavailable, please try again"
	MsgInternalError = "An unexpected error occurred"
)

// DefaultFallbackSize caps the local fallback result list
const DefaultFallbackSize = 20

// Search types accepted on the request that skip the retrieval service
var localSearchTypes = map[string]bool{"fallback": true, "database": true}

// logSearchTimeout bounds the asynchronous search log write
const logSearchTimeout = 5 * time.Second

// SearchService coordinates retrieval, local fallback, scoring and response assembly
type SearchService struct {
	store         CatalogStore
	vocab         *CatalogVocabulary
	extractor     *Extractor
	builder       *QueryBuilder
	scorer        *Scorer
	retriever     Retriever
	fallbackLimit int
	logger        *zap.Logger

	newID func() string
	now   func() time.Time
	logs  sync.WaitGroup
}

// NewSearchService creates a new search service
func NewSearchService(
	store CatalogStore,
	vocab *CatalogVocabulary,
	extractor *Extractor,
	builder *QueryBuilder,
	scorer *Scorer,
	retriever Retriever,
	fallbackLimit int,
	logger *zap.Logger,
) *SearchService {
	if fallbackLimit <= 0 {
		fallbackLimit = DefaultFallbackSize
	}
	return &SearchService{
		store:         store,
		vocab:         vocab,
		extractor:     extractor,
		builder:       builder,
		scorer:        scorer,
		retriever:     retriever,
		fallbackLimit: fallbackLimit,
		logger:        logger,
		newID:         uuid.NewString,
		now:           time.Now,
	}
}

// SearchEventCallback is called for streaming search events
type SearchEventCallback func(event string, data any) error

// ErrorResponse is the failure body shared by every search surface
func ErrorResponse(message string) *model.SearchResponse {
	return &model.SearchResponse{
		Success:  false,
		Message:  message,
		Products: []model.ScoredProduct{},
	}
}

// Search runs a search. It never returns an error: retrieval failures fall back
// to the local catalog and storage failures degrade to an empty result.
func (s *SearchService) Search(ctx context.Context, req *model.SearchRequest) *model.SearchResponse {
	resp, _ := s.SearchStream(ctx, req, nil)
	return resp
}

// SearchStream runs a search and reports progress through callback. The only
// error returned is one produced by the callback.
func (s *SearchService) SearchStream(ctx context.Context, req *model.SearchRequest, callback SearchEventCallback) (*model.SearchResponse, error) {
	startTime := s.now()
	emit := func(event string, data any) error {
		if callback == nil {
			return nil
		}
		return callback(event, data)
	}

	if err := ValidateSearchRequest(req); err != nil {
		return ErrorResponse(rejectionMessage(err)), nil
	}
	query := strings.TrimSpace(req.Query)

	var prefs *model.PreferenceSet
	if req.Preferences != nil {
		normalized := req.Preferences.Normalize()
		prefs = &normalized
	}

	if err := emit("start", map[string]any{"query": query}); err != nil {
		return nil, err
	}

	categories, brands := s.vocab.Get(ctx)
	filters := s.extractor.Extract(query, categories, brands)
	if err := emit("filters", filters); err != nil {
		return nil, err
	}

	enhanced := EnhanceQuery(query, prefs)
	resp := &model.SearchResponse{
		Success:         true,
		SearchID:        s.newID(),
		Query:           query,
		ProcessedQuery:  enhanced,
		Suggestions:     Suggestions(query),
		FiltersDetected: filters,
	}

	products, retrievalTime, ok := s.searchRetrieval(ctx, enhanced, req, prefs)
	if ok {
		resp.SearchType = model.SearchTypeRAG
		resp.RetrievalTime = &retrievalTime
	} else {
		resp.SearchType = model.SearchTypeFallback
		resp.Message = MsgFallback
		var err error
		products, err = s.searchLocal(ctx, query, filters, prefs)
		if err != nil {
			resp.Message = MsgSearchFailed
		}
	}
	if err := emit("retrieval", map[string]any{"search_type": resp.SearchType}); err != nil {
		return nil, err
	}

	resp.Products = products
	resp.ResultsCount = len(products)
	resp.MatchingInfo = s.scorer.MatchingInfo(products)
	if err := emit("results", products); err != nil {
		return nil, err
	}

	elapsed := s.now().Sub(startTime)
	resp.ProcessingTime = math.Round(elapsed.Seconds()*1000) / 1000
	s.logSearch(req.UserID, resp, filters, elapsed)

	if err := emit("done", map[string]any{
		"search_id":       resp.SearchID,
		"results_count":   resp.ResultsCount,
		"processing_time": resp.ProcessingTime,
	}); err != nil {
		return nil, err
	}
	return resp, nil
}

// ValidateSearchRequest rejects input that must not reach storage or the network
func ValidateSearchRequest(req *model.SearchRequest) error {
	if strings.TrimSpace(req.Query) == "" {
		return model.ErrEmptyQuery
	}
	if req.UserID < 0 {
		return model.ErrInvalidUserID
	}
	return nil
}

func rejectionMessage(err error) string {
	if errors.Is(err, model.ErrInvalidUserID) {
		return MsgInvalidUserID
	}
	return MsgQueryRequired
}

// searchRetrieval asks the retrieval service and resolves its ids to in-stock
// products. ok is false whenever the local fallback must serve the request.
func (s *SearchService) searchRetrieval(ctx context.Context, enhanced string, req *model.SearchRequest, prefs *model.PreferenceSet) ([]model.ScoredProduct, float64, bool) {
	if s.retriever == nil || localSearchTypes[strings.ToLower(req.SearchType)] {
		return nil, 0, false
	}

	callStart := s.now()
	result, err := s.retriever.Search(ctx, enhanced, req.UserID)
	if err != nil {
		s.logger.Warn("Retrieval service failed, falling back to database search",
			zap.Error(err),
			zap.Bool("rate_limited", errors.Is(err, ErrRateLimited)))
		return nil, 0, false
	}
	if len(result.ProductIDs) == 0 {
		s.logger.Warn("Retrieval service returned no products, falling back to database search")
		return nil, 0, false
	}

	rows, err := s.store.GetProductsByIDs(ctx, result.ProductIDs)
	if err != nil {
		s.logStorageError("Failed to resolve retrieval results", err)
		return nil, 0, false
	}
	if len(rows) == 0 {
		s.logger.Warn("Retrieval results not in stock, falling back to database search",
			zap.Int("ids", len(result.ProductIDs)))
		return nil, 0, false
	}

	products := s.scorer.Annotate(rows, req.Query, prefs)
	if req.Rescore {
		SortByScore(products)
	}
	return products, retrievalElapsed(result, s.now().Sub(callStart)), true
}

// searchLocal runs the extractor filters through the query builder and ranks
// the candidates by similarity score
func (s *SearchService) searchLocal(ctx context.Context, query string, filters *model.FilterSet, prefs *model.PreferenceSet) ([]model.ScoredProduct, error) {
	f := FromFilterSet(filters, true)
	if f.PriceMin == nil && f.PriceMax == nil && prefs.HasBudget() {
		f.PriceMin = prefs.BudgetMin
		f.PriceMax = prefs.BudgetMax
	}

	plan := s.builder.BuildLimited(f, model.SortNewest, s.fallbackLimit)
	result, err := s.builder.Run(ctx, plan)
	return s.scorer.Rank(result.Products, query, prefs), err
}

func (s *SearchService) logSearch(userID int64, resp *model.SearchResponse, filters *model.FilterSet, elapsed time.Duration) {
	ids := make([]int64, len(resp.Products))
	for i, p := range resp.Products {
		ids[i] = p.ID
	}
	entry := &model.SearchLogEntry{
		SearchID:       resp.SearchID,
		UserID:         userID,
		Query:          resp.Query,
		SearchType:     resp.SearchType,
		Filters:        filters,
		ResultCount:    resp.ResultsCount,
		ProductIDs:     ids,
		ResponseTimeMs: elapsed.Milliseconds(),
	}

	// Log search (non-blocking)
	s.logs.Add(1)
	go func() {
		defer s.logs.Done()
		ctx, cancel := context.WithTimeout(context.Background(), logSearchTimeout)
		defer cancel()
		if err := s.store.LogSearch(ctx, entry); err != nil {
			s.logger.Warn("Failed to log search", zap.String("search_id", entry.SearchID), zap.Error(err))
		}
	}()
}

// WaitForLogs blocks until pending search log writes finish
func (s *SearchService) WaitForLogs() {
	s.logs.Wait()
}

func (s *SearchService) logStorageError(msg string, err error) {
	s.logger.Error(msg, storageErrorFields(err)...)
}

// GetProduct retrieves a single product by ID
func (s *SearchService) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	if id <= 0 {
		return nil, model.ErrInvalidProductID
	}
	return s.store.GetProduct(ctx, id)
}

// ListProducts runs the storefront listing
func (s *SearchService) ListProducts(ctx context.Context, f *model.ProductFilters, sort model.SortKey, page int) *model.ProductListResponse {
	result, _ := s.builder.Run(ctx, s.builder.Build(f, sort, page))
	return &model.ProductListResponse{Products: result.Products, Pagination: result.Pagination}
}

// FilterOptions returns the storefront filter panel values
func (s *SearchService) FilterOptions(ctx context.Context) (*model.FilterOptions, error) {
	return s.store.FilterOptions(ctx)
}

// UpdateEmbeddings updates embeddings for multiple products
func (s *SearchService) UpdateEmbeddings(ctx context.Context, items []model.EmbeddingItem) (int, []string) {
	return s.store.BatchUpdateEmbeddings(ctx, items)
}

// LogFeedback logs user feedback/action
func (s *SearchService) LogFeedback(ctx context.Context, searchID string, productID int64, action string) error {
	return s.store.LogFeedback(ctx, searchID, productID, action)
}

// Suggestions returns refinement hints for groups of terms the query lacks
func Suggestions(query string) []string {
	lower := strings.ToLower(query)
	suggestions := []string{}
	if len(query) < 3 {
		suggestions = append(suggestions, "Try a more specific search like 'casual blue shirt' or 'formal dress'")
	}
	if !vocabulary.ContainsAny(lower, vocabulary.SuggestionCategoryTerms) {
		suggestions = append(suggestions, "Add item type: 'shirt', 'dress', 'pants', 'shoes'")
	}
	if !vocabulary.ContainsAny(lower, vocabulary.SuggestionColorTerms) {
		suggestions = append(suggestions, "Specify color: 'blue shirt', 'red dress', 'black shoes'")
	}
	if !vocabulary.ContainsAny(lower, vocabulary.SuggestionOccasionTerms) {
		suggestions = append(suggestions, "Add occasion: 'casual wear', 'formal attire', 'party dress'")
	}
	return suggestions
}
