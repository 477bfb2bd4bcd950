package model

// Intent labels produced by the classifier
const (
	IntentGeneral        = "general"
	IntentProductSearch  = "product_search"
	IntentCategoryBrowse = "category_browse"
	IntentPriceInquiry   = "price_inquiry"
	IntentRecommendation = "recommendation"
	IntentOrderInquiry   = "order_inquiry"
	IntentGreeting       = "greeting"
)

// IntentResult represents the classified purpose of a chat message
type IntentResult struct {
	Intent     string   `json:"intent"`
	Confidence float64  `json:"confidence"`
	Entities   []string `json:"entities"`
	Score      float64  `json:"-"`
}

// PriceRange is an inclusive bound on the effective product price
type PriceRange struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// FilterSet represents structured constraints extracted from free text
type FilterSet struct {
	Colors      []string    `json:"colors,omitempty"`
	Sizes       []string    `json:"sizes,omitempty"`
	Occasions   []string    `json:"occasions,omitempty"`
	Categories  []string    `json:"categories,omitempty"`
	Brands      []string    `json:"brands,omitempty"`
	Gender      string      `json:"gender,omitempty"`
	PriceRange  *PriceRange `json:"price_range,omitempty"`
	CategoryIDs []int64     `json:"-"`
	Terms       []string    `json:"terms,omitempty"` // free-text residue
	Entities    []string    `json:"-"`
}

// IsEmpty reports whether no filter kind was detected
func (f *FilterSet) IsEmpty() bool {
	return f == nil || (len(f.Colors) == 0 && len(f.Sizes) == 0 && len(f.Occasions) == 0 &&
		len(f.Categories) == 0 && len(f.Brands) == 0 && f.Gender == "" && f.PriceRange == nil &&
		len(f.Terms) == 0)
}
