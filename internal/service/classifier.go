package service

import (
	"math"
	"regexp"
	"strings"

	"styleme/internal/model"
)

// intentRule is the keyword and pattern table for one intent
type intentRule struct {
	intent   string
	keywords []string
	patterns []*regexp.Regexp
	weight   float64
}

// patternBonus multiplies the intent weight for a regex hit
const patternBonus = 1.5

// intentRules are evaluated in this order; ties keep the earlier intent
var intentRules = []intentRule{
	{
		intent:   model.IntentProductSearch,
		keywords: []string{"find", "search", "looking for", "show me", "need", "want", "buy"},
		patterns: compileAll(`looking for (.+)`, `need (.+)`, `want to buy (.+)`, `show me (.+)`),
		weight:   1.0,
	},
	{
		intent:   model.IntentCategoryBrowse,
		keywords: []string{"category", "categories", "browse", "section", "type"},
		patterns: compileAll(`what categories`, `browse (.+) category`),
		weight:   0.9,
	},
	{
		intent:   model.IntentPriceInquiry,
		keywords: []string{"price", "cost", "how much", "expensive", "cheap", "budget"},
		patterns: compileAll(`how much (.+)`, `price of (.+)`),
		weight:   0.8,
	},
	{
		intent:   model.IntentRecommendation,
		keywords: []string{"recommend", "suggest", "best", "popular", "trending"},
		patterns: compileAll(`recommend (.+)`, `what should i (.+)`),
		weight:   0.9,
	},
	{
		intent:   model.IntentOrderInquiry,
		keywords: []string{"order", "delivery", "shipping", "track", "status"},
		patterns: compileAll(`my order`, `track order`),
		weight:   0.8,
	},
	{
		intent:   model.IntentGreeting,
		keywords: []string{"hi", "hello", "hey", "good morning", "good afternoon"},
		patterns: compileAll(`^(hi|hello|hey)`),
		weight:   1.0,
	},
}

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(`(?i)` + e)
	}
	return out
}

// Classifier scores chat messages against the intent table
type Classifier struct {
	extractor *Extractor
}

// NewClassifier creates a classifier that also reports extractor entities
func NewClassifier(extractor *Extractor) *Classifier {
	return &Classifier{extractor: extractor}
}

// Classify picks the highest-scoring intent. Confidence is min(score/2, 1).
func (c *Classifier) Classify(message string, categories []model.Category, brands []string) *model.IntentResult {
	lower := strings.ToLower(strings.TrimSpace(message))

	best := model.IntentGeneral
	maxScore := 0.0
	var captures []string

	for _, rule := range intentRules {
		score := 0.0

		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				score += rule.weight
			}
		}
		for _, p := range rule.patterns {
			m := p.FindStringSubmatch(lower)
			if m == nil {
				continue
			}
			score += rule.weight * patternBonus
			if len(m) > 1 {
				if capture := strings.TrimSpace(m[1]); capture != "" {
					captures = append(captures, capture)
				}
			}
		}

		if score > maxScore {
			maxScore = score
			best = rule.intent
		}
	}

	ent := newOrderedSet()
	for _, capture := range captures {
		ent.add(capture)
	}
	if c.extractor != nil && lower != "" {
		for _, e := range c.extractor.Extract(lower, categories, brands).Entities {
			ent.add(e)
		}
	}

	return &model.IntentResult{
		Intent:     best,
		Confidence: math.Min(maxScore/2, 1.0),
		Entities:   ent.items,
		Score:      maxScore,
	}
}
