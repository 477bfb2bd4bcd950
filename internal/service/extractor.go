package service

import (
	"regexp"
	"strconv"
	"strings"

	"styleme/internal/model"
	"styleme/internal/vocabulary"
)

var (
	underPricePattern = regexp.MustCompile(`(?i)under (?:rs\.?\s*)?(\d+)`)
	rangePricePattern = regexp.MustCompile(`(\d+)\s*-\s*(\d+)`)
)

// minTermLen is the shortest residue token kept as a free-text term
const minTermLen = 2

// Extractor turns free text into a structured FilterSet
type Extractor struct{}

// NewExtractor creates a new extractor
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract scans the query against the fixed vocabularies and the live catalog
// categories and brands. It never fails; unmatched content ends up in Terms.
func (e *Extractor) Extract(query string, categories []model.Category, brands []string) *model.FilterSet {
	lower := strings.ToLower(strings.TrimSpace(query))
	tokens := vocabulary.Tokens(lower)
	// numbers inside a price phrase are not sizes
	sizeTokens := vocabulary.Tokens(blankSpans(lower, priceSpans(lower)))
	fs := &model.FilterSet{}
	ent := newOrderedSet()

	for _, c := range vocabulary.Colors {
		if vocabulary.Matches(lower, tokens, c) {
			fs.Colors = appendUnique(fs.Colors, c)
			ent.add(c)
		}
	}
	for _, s := range vocabulary.Sizes {
		if vocabulary.Matches(lower, sizeTokens, s) {
			fs.Sizes = appendUnique(fs.Sizes, s)
			ent.add(strings.ToLower(s))
		}
	}
	for _, o := range vocabulary.Occasions {
		if vocabulary.Matches(lower, tokens, o) {
			fs.Occasions = appendUnique(fs.Occasions, o)
			ent.add(o)
		}
	}

	var unmapped []string
	for _, noun := range vocabulary.CategoryNouns {
		if !vocabulary.Matches(lower, tokens, noun) {
			continue
		}
		ent.add(noun)
		fs.Categories = appendUnique(fs.Categories, noun)
		ids := categoryIDsFor(noun, categories)
		if len(ids) == 0 {
			unmapped = append(unmapped, noun)
			continue
		}
		for _, id := range ids {
			fs.CategoryIDs = appendUniqueID(fs.CategoryIDs, id)
		}
	}

	for _, c := range categories {
		name := strings.ToLower(strings.TrimSpace(c.Name))
		if name == "" || !vocabulary.Matches(lower, tokens, name) {
			continue
		}
		ent.add(name)
		fs.Categories = appendUnique(fs.Categories, c.Name)
		fs.CategoryIDs = appendUniqueID(fs.CategoryIDs, c.ID)
	}

	for _, b := range brands {
		name := strings.ToLower(strings.TrimSpace(b))
		if name == "" || !vocabulary.Matches(lower, tokens, name) {
			continue
		}
		ent.add(name)
		fs.Brands = appendUnique(fs.Brands, b)
	}

	for _, tok := range tokens {
		if g, ok := vocabulary.Gender[tok]; ok {
			fs.Gender = g
			break
		}
	}

	for _, term := range vocabulary.FashionTerms {
		if vocabulary.Matches(lower, tokens, term) {
			ent.add(term)
		}
	}

	fs.PriceRange = extractPriceRange(lower)

	fs.Terms = append(fs.Terms, unmapped...)
	for _, tok := range tokens {
		if len(tok) < minTermLen || vocabulary.Stopwords[tok] || isDigits(tok) {
			continue
		}
		if _, ok := vocabulary.Gender[tok]; ok {
			continue
		}
		if covered(tok, ent.items) {
			continue
		}
		fs.Terms = appendUnique(fs.Terms, tok)
	}

	fs.Entities = ent.items
	return fs
}

func extractPriceRange(lower string) *model.PriceRange {
	var pr *model.PriceRange
	if m := underPricePattern.FindStringSubmatch(lower); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			pr = &model.PriceRange{Max: &v}
		}
	}
	// an explicit band overrides "under N"
	if m := rangePricePattern.FindStringSubmatch(lower); m != nil {
		lo, errLo := strconv.ParseFloat(m[1], 64)
		hi, errHi := strconv.ParseFloat(m[2], 64)
		if errLo == nil && errHi == nil {
			pr = &model.PriceRange{Min: &lo, Max: &hi}
		}
	}
	return pr
}

// priceSpans returns the byte ranges of every price phrase in the text
func priceSpans(lower string) [][]int {
	var spans [][]int
	for _, re := range []*regexp.Regexp{underPricePattern, rangePricePattern} {
		for _, m := range re.FindAllStringSubmatchIndex(lower, -1) {
			spans = append(spans, m[:2])
		}
	}
	return spans
}

// blankSpans replaces the given byte ranges with spaces
func blankSpans(s string, spans [][]int) string {
	if len(spans) == 0 {
		return s
	}
	b := []byte(s)
	for _, sp := range spans {
		for i := sp[0]; i < sp[1]; i++ {
			b[i] = ' '
		}
	}
	return string(b)
}

// categoryIDsFor maps a garment noun to catalog categories whose name contains
// the noun or is contained by it
func categoryIDsFor(noun string, categories []model.Category) []int64 {
	var ids []int64
	for _, c := range categories {
		name := strings.ToLower(c.Name)
		if name == "" {
			continue
		}
		if strings.Contains(name, noun) || strings.Contains(noun, name) {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

// covered reports whether a token is already explained by a matched entity
func covered(tok string, entities []string) bool {
	for _, e := range entities {
		if tok == e {
			return true
		}
		if len(e) > 2 && strings.Contains(tok, e) {
			return true
		}
	}
	return false
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func appendUnique(list []string, v string) []string {
	for _, x := range list {
		if strings.EqualFold(x, v) {
			return list
		}
	}
	return append(list, v)
}

func appendUniqueID(list []int64, v int64) []int64 {
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}

// orderedSet keeps the first occurrence of each string
type orderedSet struct {
	items []string
	seen  map[string]bool
}

func newOrderedSet() *orderedSet {
	return &orderedSet{items: []string{}, seen: make(map[string]bool)}
}

func (s *orderedSet) add(v string) {
	if v == "" || s.seen[v] {
		return
	}
	s.seen[v] = true
	s.items = append(s.items, v)
}
