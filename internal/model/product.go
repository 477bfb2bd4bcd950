package model

import (
	"time"
)

// Product represents a catalog row joined with its category name
type Product struct {
	ID            int64     `json:"id" db:"id"`
	CategoryID    *int64    `json:"category_id,omitempty" db:"category_id"`
	CategoryName  *string   `json:"category_name,omitempty" db:"category_name"`
	Name          string    `json:"name" db:"name"`
	Description   *string   `json:"description,omitempty" db:"description"`
	Price         float64   `json:"price" db:"price"`
	DiscountPrice *float64  `json:"discount_price,omitempty" db:"discount_price"`
	Stock         int       `json:"stock" db:"stock"`
	Brand         *string   `json:"brand,omitempty" db:"brand"`
	Color         *string   `json:"color,omitempty" db:"color"`
	Size          *string   `json:"size,omitempty" db:"size"`
	Occasion      *string   `json:"occasion,omitempty" db:"occasion"`
	Gender        *string   `json:"gender,omitempty" db:"gender"`
	Image         *string   `json:"image,omitempty" db:"image"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// EffectivePrice is the discount price when one is set, otherwise the list price
func (p *Product) EffectivePrice() float64 {
	if p.DiscountPrice != nil && *p.DiscountPrice > 0 {
		return *p.DiscountPrice
	}
	return p.Price
}

// ScoredProduct is a product annotated with its similarity score
type ScoredProduct struct {
	Product
	SimilarityScore  int      `json:"similarity_score"`
	MatchPercentage  int      `json:"match_percentage"`
	MatchDetails     []string `json:"match_details"`
	MatchExplanation string   `json:"match_explanation"`
}

// Category represents a product category
type Category struct {
	ID           int64   `json:"id" db:"id"`
	Name         string  `json:"name" db:"name"`
	Slug         *string `json:"slug,omitempty" db:"slug"`
	Description  *string `json:"description,omitempty" db:"description"`
	ProductCount int     `json:"product_count" db:"product_count"`
}

// FacetCount is a distinct attribute value with the number of products carrying it
type FacetCount struct {
	Value string `json:"value" db:"value"`
	Count int    `json:"count" db:"count"`
}

// FilterOptions lists the values the storefront filter panel can offer
type FilterOptions struct {
	Categories []Category   `json:"categories"`
	Brands     []FacetCount `json:"brands"`
	Sizes      []FacetCount `json:"sizes"`
	Colors     []FacetCount `json:"colors"`
	Occasions  []FacetCount `json:"occasions"`
}

// Order is the read-only view of an order used by the chat assistant
type Order struct {
	ID          int64     `json:"id" db:"id"`
	OrderNumber string    `json:"order_number" db:"order_number"`
	TotalAmount float64   `json:"total_amount" db:"total_amount"`
	Status      string    `json:"status" db:"status"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// SearchLogEntry is one row written to search_logs
type SearchLogEntry struct {
	SearchID       string
	UserID         int64
	Query          string
	SearchType     string
	Filters        *FilterSet
	ResultCount    int
	ProductIDs     []int64
	ResponseTimeMs int64
}
