package service

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"styleme/internal/model"
)

// Points per matching rule
const (
	PointsNameExact      = 10
	PointsNamePartial    = 5
	PointsColor          = 8
	PointsCategory       = 6
	PointsBrand          = 5
	PointsDescription    = 3
	PointsPreferredColor = 7
	PointsPreferredStyle = 4
	PointsWithinBudget   = 2
)

// DefaultMaxDisplayScore is the score shown as 100% unless configured
const DefaultMaxDisplayScore = 50

// explanationReasons is how many reasons go into match_explanation
const explanationReasons = 3

// Distribution buckets by display percentage
const (
	BucketExcellent = "excellent"
	BucketGood      = "good"
	BucketFair      = "fair"
	BucketPoor      = "poor"
)

// Scorer computes additive similarity scores for candidate products
type Scorer struct {
	maxDisplayScore float64
}

// NewScorer creates a scorer. maxDisplayScore is the score shown as 100%.
func NewScorer(maxDisplayScore float64) *Scorer {
	if maxDisplayScore <= 0 {
		maxDisplayScore = DefaultMaxDisplayScore
	}
	return &Scorer{maxDisplayScore: maxDisplayScore}
}

// QueryTokens lower-cases and splits on whitespace
func QueryTokens(query string) []string {
	return strings.Fields(strings.ToLower(query))
}

// Score evaluates every rule against one product
func (s *Scorer) Score(p *model.Product, queryTokens []string, prefs *model.PreferenceSet) (int, []string) {
	score := 0
	reasons := []string{}

	nameWords := strings.Fields(strings.ToLower(p.Name))

	// exact name words, one hit per query token
	var exact []string
	for _, q := range queryTokens {
		if containsString(nameWords, q) {
			exact = append(exact, q)
		}
	}
	if len(exact) > 0 {
		score += len(exact) * PointsNameExact
		reasons = append(reasons, "Name matches: "+strings.Join(exact, ", "))
	}

	for _, q := range queryTokens {
		if len(q) <= 3 {
			continue
		}
		for _, n := range nameWords {
			if n != q && strings.Contains(n, q) {
				score += PointsNamePartial
				reasons = append(reasons, fmt.Sprintf("Partial name match: %s → %s", q, n))
			}
		}
	}

	if color := deref(p.Color); color != "" {
		lc := strings.ToLower(color)
		for _, q := range queryTokens {
			if strings.Contains(lc, q) || strings.Contains(q, lc) {
				score += PointsColor
				reasons = append(reasons, fmt.Sprintf("Color match: %s ↔ %s", q, color))
				break
			}
		}
	}

	if category := deref(p.CategoryName); category != "" {
		catWords := strings.Fields(strings.ToLower(category))
	categoryLoop:
		for _, q := range queryTokens {
			if len(q) <= 2 {
				continue
			}
			for _, c := range catWords {
				if strings.Contains(c, q) || strings.Contains(q, c) {
					score += PointsCategory
					reasons = append(reasons, fmt.Sprintf("Category match: %s ↔ %s", q, category))
					break categoryLoop
				}
			}
		}
	}

	if brand := deref(p.Brand); brand != "" {
		lb := strings.ToLower(brand)
		for _, q := range queryTokens {
			if strings.Contains(lb, q) {
				score += PointsBrand
				reasons = append(reasons, fmt.Sprintf("Brand match: %s ↔ %s", q, brand))
				break
			}
		}
	}

	if desc := deref(p.Description); desc != "" {
		descWords := strings.Fields(strings.ToLower(desc))
		var hits []string
		for _, q := range queryTokens {
			if containsString(descWords, q) {
				hits = append(hits, q)
			}
		}
		if len(hits) > 0 {
			score += len(hits) * PointsDescription
			reasons = append(reasons, "Description matches: "+strings.Join(hits[:min(len(hits), explanationReasons)], ", "))
		}
	}

	if prefs != nil {
		if color := deref(p.Color); color != "" && len(prefs.ColorPreferences) > 0 {
			for _, pc := range prefs.ColorPreferences {
				if strings.EqualFold(pc, color) {
					score += PointsPreferredColor
					reasons = append(reasons, "Matches your color preference: "+color)
					break
				}
			}
		}

		if category := deref(p.CategoryName); category != "" {
			lc := strings.ToLower(category)
			for _, style := range prefs.StylePreferences {
				if style != "" && strings.Contains(lc, strings.ToLower(style)) {
					score += PointsPreferredStyle
					reasons = append(reasons, "Matches your style: "+style)
					break
				}
			}
		}

		if prefs.HasBudget() {
			price := p.EffectivePrice()
			if price >= *prefs.BudgetMin && price <= *prefs.BudgetMax {
				score += PointsWithinBudget
				reasons = append(reasons, "Within your budget range")
			}
		}
	}

	return score, reasons
}

// Annotate scores products without reordering them
func (s *Scorer) Annotate(products []model.Product, query string, prefs *model.PreferenceSet) []model.ScoredProduct {
	tokens := QueryTokens(query)
	out := make([]model.ScoredProduct, 0, len(products))
	for i := range products {
		score, reasons := s.Score(&products[i], tokens, prefs)
		out = append(out, model.ScoredProduct{
			Product:          products[i],
			SimilarityScore:  score,
			MatchPercentage:  s.Percentage(score),
			MatchDetails:     reasons,
			MatchExplanation: strings.Join(reasons[:min(len(reasons), explanationReasons)], " • "),
		})
	}
	return out
}

// Rank scores products and stable-sorts them by descending score
func (s *Scorer) Rank(products []model.Product, query string, prefs *model.PreferenceSet) []model.ScoredProduct {
	scored := s.Annotate(products, query, prefs)
	SortByScore(scored)
	return scored
}

// SortByScore orders by descending score, keeping the prior order on ties
func SortByScore(products []model.ScoredProduct) {
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].SimilarityScore > products[j].SimilarityScore
	})
}

// Percentage converts a raw score to a 0-100 display value
func (s *Scorer) Percentage(score int) int {
	pct := float64(score) / s.maxDisplayScore * 100
	return int(math.Min(math.Round(pct), 100))
}

// MatchingInfo summarizes the scores of a result list
func (s *Scorer) MatchingInfo(products []model.ScoredProduct) *model.MatchingInfo {
	info := &model.MatchingInfo{
		ScoreDistribution: map[string]int{
			BucketExcellent: 0,
			BucketGood:      0,
			BucketFair:      0,
			BucketPoor:      0,
		},
	}
	if len(products) == 0 {
		return info
	}

	total := 0
	for _, p := range products {
		total += p.SimilarityScore
		if p.SimilarityScore > info.MaxScore {
			info.MaxScore = p.SimilarityScore
		}
		pct := float64(p.SimilarityScore) / s.maxDisplayScore * 100
		switch {
		case pct >= 80:
			info.ScoreDistribution[BucketExcellent]++
		case pct >= 60:
			info.ScoreDistribution[BucketGood]++
		case pct >= 40:
			info.ScoreDistribution[BucketFair]++
		default:
			info.ScoreDistribution[BucketPoor]++
		}
	}
	info.AvgScore = math.Round(float64(total)/float64(len(products))*100) / 100
	return info
}

func containsString(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
