package model

import (
	"strings"

	"styleme/internal/vocabulary"
)

// Budget clamp bounds
const (
	BudgetMinFloor   = 500
	BudgetMinCeiling = 100000
	BudgetMaxFloor   = 500
	BudgetMaxCeiling = 500000
)

// PreferenceSet is a shopper's saved style profile, passed by value into a search
type PreferenceSet struct {
	StylePreferences []string `json:"style_preferences,omitempty"`
	ColorPreferences []string `json:"color_preferences,omitempty"`
	BudgetMin        *float64 `json:"budget_min,omitempty"`
	BudgetMax        *float64 `json:"budget_max,omitempty"`
	Occasion         string   `json:"occasion,omitempty"`
}

// Normalize restricts tags and occasion to the allow-lists and clamps the budget
// so that BudgetMin <= BudgetMax.
func (p PreferenceSet) Normalize() PreferenceSet {
	out := PreferenceSet{
		StylePreferences: vocabulary.Filter(p.StylePreferences, vocabulary.StylePreferences),
		ColorPreferences: vocabulary.Filter(p.ColorPreferences, vocabulary.ColorPreferences),
	}

	if p.BudgetMin != nil {
		v := clamp(*p.BudgetMin, BudgetMinFloor, BudgetMinCeiling)
		out.BudgetMin = &v
	}
	if p.BudgetMax != nil {
		v := clamp(*p.BudgetMax, BudgetMaxFloor, BudgetMaxCeiling)
		out.BudgetMax = &v
	}
	if out.BudgetMin != nil && out.BudgetMax != nil && *out.BudgetMin > *out.BudgetMax {
		v := *out.BudgetMax
		out.BudgetMin = &v
	}

	occasion := strings.ToLower(strings.TrimSpace(p.Occasion))
	if vocabulary.In(occasion, vocabulary.OccasionPreferences) {
		out.Occasion = occasion
	}
	return out
}

// HasBudget reports whether both budget bounds are set
func (p *PreferenceSet) HasBudget() bool {
	return p != nil && p.BudgetMin != nil && p.BudgetMax != nil
}

// IsEmpty reports whether no preference is set
func (p *PreferenceSet) IsEmpty() bool {
	return p == nil || (len(p.StylePreferences) == 0 && len(p.ColorPreferences) == 0 &&
		p.BudgetMin == nil && p.BudgetMax == nil && p.Occasion == "")
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
