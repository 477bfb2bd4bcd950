package model

// Search types reported in responses
const (
	SearchTypeRAG      = "rag"
	SearchTypeFallback = "fallback"
)

// SortKey orders a product listing
type SortKey string

const (
	SortNewest    SortKey = "newest"
	SortNameAsc   SortKey = "name_asc"
	SortNameDesc  SortKey = "name_desc"
	SortPriceAsc  SortKey = "price_asc"
	SortPriceDesc SortKey = "price_desc"
	SortDiscount  SortKey = "discount"
	// SortFeatured puts discounted products first, then newest
	SortFeatured SortKey = "featured"
)

// ParseSortKey maps user input to a SortKey, defaulting to newest
func ParseSortKey(s string) SortKey {
	switch SortKey(s) {
	case SortNameAsc, SortNameDesc, SortPriceAsc, SortPriceDesc, SortDiscount, SortFeatured:
		return SortKey(s)
	default:
		return SortNewest
	}
}

// SearchRequest represents a natural-language product search
type SearchRequest struct {
	Query       string         `json:"query" form:"query"`
	UserID      int64          `json:"user_id" form:"user_id"`
	Preferences *PreferenceSet `json:"preferences,omitempty" form:"-"`
	SearchType  string         `json:"search_type,omitempty" form:"search_type"`
	Rescore     bool           `json:"rescore,omitempty" form:"rescore"`
}

// ProductFilters are the storefront listing filters
type ProductFilters struct {
	Search       string
	Terms        []string
	CategoryIDs  []int64
	PriceMin     *float64
	PriceMax     *float64
	Brands       []string
	Sizes        []string
	Colors       []string
	Occasions    []string
	Gender       string
	DiscountOnly bool
	InStockOnly  bool
}

// MatchingInfo summarizes the score distribution of a result list
type MatchingInfo struct {
	MaxScore          int            `json:"max_score"`
	AvgScore          float64        `json:"avg_score"`
	ScoreDistribution map[string]int `json:"score_distribution"`
}

// SearchResponse is the body returned by the search endpoint
type SearchResponse struct {
	Success         bool            `json:"success"`
	Message         string          `json:"message,omitempty"`
	SearchID        string          `json:"search_id,omitempty"`
	Products        []ScoredProduct `json:"products"`
	SearchType      string          `json:"search_type,omitempty"`
	Query           string          `json:"query,omitempty"`
	ProcessedQuery  string          `json:"processed_query,omitempty"`
	ResultsCount    int             `json:"results_count"`
	ProcessingTime  float64         `json:"processing_time"`
	RetrievalTime   *float64        `json:"retrieval_time,omitempty"`
	Suggestions     []string        `json:"suggestions"`
	FiltersDetected *FilterSet      `json:"filters_detected"`
	MatchingInfo    *MatchingInfo   `json:"matching_info,omitempty"`
}

// Pagination describes a page of a product listing
type Pagination struct {
	CurrentPage int `json:"current_page"`
	TotalPages  int `json:"total_pages"`
	TotalItems  int `json:"total_items"`
	PerPage     int `json:"per_page"`
}

// ProductListResponse is the body returned by the listing endpoint
type ProductListResponse struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
}

// EmbeddingBatchRequest represents a batch embedding update request
type EmbeddingBatchRequest struct {
	Embeddings []EmbeddingItem `json:"embeddings" binding:"required"`
}

// EmbeddingItem represents a single product embedding
type EmbeddingItem struct {
	ProductID int64     `json:"product_id" binding:"required"`
	Embedding []float32 `json:"embedding" binding:"required"`
}

// EmbeddingBatchResponse represents the response for batch embedding update
type EmbeddingBatchResponse struct {
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}

// FeedbackRequest represents a shopper action on a search result
type FeedbackRequest struct {
	SearchID  string `json:"search_id" binding:"required"`
	ProductID int64  `json:"product_id" binding:"required"`
	Action    string `json:"action" binding:"required"` // click, add_to_cart, wishlist
}

// FeedbackResponse represents feedback response
type FeedbackResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
