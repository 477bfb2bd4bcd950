// Package vocabulary holds the fixed term tables shared by query extraction,
// intent classification, scoring and suggestion generation.
package vocabulary

import (
	"strings"
	"unicode"
)

// Colors recognised in free-text queries.
var Colors = []string{
	"red", "blue", "green", "black", "white", "pink", "yellow",
	"purple", "brown", "gray", "grey", "navy", "maroon",
}

// Sizes recognised in free-text queries. Matched as whole tokens.
var Sizes = []string{"XS", "S", "M", "L", "XL", "XXL", "28", "30", "32", "34", "36", "38", "40"}

// Occasions recognised in free-text queries.
var Occasions = []string{"casual", "formal", "party", "wedding", "office", "sport", "beach", "winter", "summer"}

// CategoryNouns are garment types treated as category hints.
var CategoryNouns = []string{"shirt", "dress", "pants", "shoes", "jacket", "skirt", "jeans", "top", "bottom"}

// FashionTerms are extra entity terms surfaced to the chat assistant.
var FashionTerms = []string{
	"dress", "shirt", "trouser", "jeans", "shoes", "sandals", "bag",
	"saree", "sarong", "blouse", "skirt", "jacket",
	"red", "blue", "black", "white", "green", "yellow", "pink",
	"small", "medium", "large", "xl", "s", "m", "l",
	"cotton", "silk", "denim", "formal", "casual", "party",
}

// Gender words map whole query tokens to the catalog gender value.
var Gender = map[string]string{
	"men":     "Male",
	"mens":    "Male",
	"men's":   "Male",
	"male":    "Male",
	"women":   "Female",
	"womens":  "Female",
	"women's": "Female",
	"female":  "Female",
	"ladies":  "Female",
}

// Stopwords are dropped when computing the free-text residue of a query.
var Stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true, "of": true, "in": true,
	"for": true, "to": true, "with": true, "me": true, "my": true, "i": true, "is": true,
	"are": true, "do": true, "you": true, "have": true, "get": true, "any": true, "some": true,
	"show": true, "find": true, "search": true, "looking": true, "need": true, "want": true,
	"buy": true, "under": true, "below": true, "rs": true, "rs.": true, "price": true,
	"cheap": true, "please": true, "what": true, "something": true, "recommend": true,
	"suggest": true, "best": true, "items": true, "products": true,
}

// Preference allow-lists.
var (
	StylePreferences = []string{
		"casual", "formal", "business", "party", "western", "ethnic",
		"sports", "trendy", "vintage", "bohemian", "minimalist", "chic",
	}
	ColorPreferences = []string{
		"black", "white", "blue", "red", "green", "grey", "navy", "brown",
		"pink", "yellow", "orange", "purple", "beige", "maroon", "teal",
	}
	OccasionPreferences = []string{
		"office", "casual", "party", "wedding", "sports", "travel",
		"date", "meeting", "festival", "formal",
	}
)

// Suggestion triggers: a query lacking all terms in a group gets the group's hint.
var (
	SuggestionCategoryTerms = []string{"shirt", "dress", "pants", "shoes", "jacket"}
	SuggestionColorTerms    = []string{"red", "blue", "green", "black", "white", "pink"}
	SuggestionOccasionTerms = []string{"casual", "formal", "party", "wedding", "office"}
)

// wholeTokenMaxLen is the longest term that must match a whole token.
const wholeTokenMaxLen = 2

// Tokens splits lower-cased text on anything that is not a letter, digit or apostrophe.
func Tokens(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}

// Matches reports whether term occurs in the lower-cased text. Short and numeric
// terms must equal one of the tokens; longer terms match as substrings.
func Matches(lowerText string, tokens []string, term string) bool {
	t := strings.ToLower(term)
	if t == "" {
		return false
	}
	if len(t) <= wholeTokenMaxLen || isNumeric(t) {
		for _, tok := range tokens {
			if tok == t {
				return true
			}
		}
		return false
	}
	return strings.Contains(lowerText, t)
}

// ContainsAny reports whether any term is a substring of the lower-cased text.
func ContainsAny(lowerText string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(lowerText, t) {
			return true
		}
	}
	return false
}

// Filter keeps the values present in allowed, compared case-insensitively,
// returning them lower-cased and without duplicates.
func Filter(values, allowed []string) []string {
	allow := make(map[string]bool, len(allowed))
	for _, a := range allowed {
		allow[a] = true
	}
	out := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if allow[v] && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// In reports whether value is in list (case-insensitive).
func In(value string, list []string) bool {
	for _, l := range list {
		if strings.EqualFold(value, l) {
			return true
		}
	}
	return false
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
