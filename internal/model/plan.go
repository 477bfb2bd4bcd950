package model

// PredicateKind identifies a typed catalog predicate
type PredicateKind int

const (
	// PredStockAtLeast keeps products with stock >= Number
	PredStockAtLeast PredicateKind = iota
	// PredText matches any of Values against name, description, brand, color or category name
	PredText
	PredCategoryIn
	// PredPriceMin and PredPriceMax bound the effective (discounted) price
	PredPriceMin
	PredPriceMax
	PredBrandIn
	// PredSizeContains, PredColorContains and PredOccasionContains test the
	// comma-joined multi-value columns for any of Values
	PredSizeContains
	PredColorContains
	PredOccasionContains
	PredGenderEquals
	PredHasDiscount
	// PredKeyword matches any of Values against name, description or brand
	PredKeyword
)

// Predicate is one AND-ed condition of a Plan
type Predicate struct {
	Kind   PredicateKind
	Values []string
	IDs    []int64
	Number float64
}

// Plan is a storage-agnostic catalog query
type Plan struct {
	Predicates []Predicate
	Sort       SortKey
	Limit      int
	Offset     int
	Page       int
}

// PlanResult is one page of a Plan with the total matching count
type PlanResult struct {
	Products   []Product
	Total      int
	Pagination Pagination
}
