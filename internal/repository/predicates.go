package repository

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"styleme/internal/model"
)

const effectivePrice = "COALESCE(NULLIF(p.discount_price, 0), p.price)"

var (
	// textColumns are OR-ed for an extracted free-text term
	textColumns = []string{"p.name", "p.description", "p.brand", "p.color", "c.name"}
	// keywordColumns are OR-ed for the storefront search box
	keywordColumns = []string{"p.name", "p.description", "p.brand"}
)

// tokenColumn wraps a comma-joined column so that a single token can be tested
// with LIKE '%,token,%' regardless of the ", " or "," delimiter used in the data
func tokenColumn(col string) string {
	return fmt.Sprintf("(',' || REPLACE(LOWER(COALESCE(%s, '')), ', ', ',') || ',')", col)
}

// compileWhere turns the plan predicates into an AND-ed WHERE clause with
// bindvar-neutral placeholders
func compileWhere(preds []model.Predicate) (string, []any, error) {
	clauses := []string{"1=1"}
	args := []any{}

	for _, p := range preds {
		switch p.Kind {
		case model.PredStockAtLeast:
			clauses = append(clauses, "p.stock >= ?")
			args = append(args, int(p.Number))

		case model.PredText, model.PredKeyword:
			cols := textColumns
			if p.Kind == model.PredKeyword {
				cols = keywordColumns
			}
			var ors []string
			for _, term := range p.Values {
				term = strings.ToLower(strings.TrimSpace(term))
				if term == "" {
					continue
				}
				for _, col := range cols {
					ors = append(ors, fmt.Sprintf("LOWER(COALESCE(%s, '')) LIKE ?", col))
					args = append(args, "%"+term+"%")
				}
			}
			if len(ors) > 0 {
				clauses = append(clauses, "("+strings.Join(ors, " OR ")+")")
			}

		case model.PredCategoryIn:
			if len(p.IDs) == 0 {
				continue
			}
			in, inArgs, err := sqlx.In("p.category_id IN (?)", p.IDs)
			if err != nil {
				return "", nil, fmt.Errorf("failed to expand category ids: %w", err)
			}
			clauses = append(clauses, in)
			args = append(args, inArgs...)

		case model.PredPriceMin:
			clauses = append(clauses, effectivePrice+" >= ?")
			args = append(args, p.Number)

		case model.PredPriceMax:
			clauses = append(clauses, effectivePrice+" <= ?")
			args = append(args, p.Number)

		case model.PredBrandIn:
			if len(p.Values) == 0 {
				continue
			}
			lowered := make([]string, len(p.Values))
			for i, v := range p.Values {
				lowered[i] = strings.ToLower(v)
			}
			in, inArgs, err := sqlx.In("LOWER(p.brand) IN (?)", lowered)
			if err != nil {
				return "", nil, fmt.Errorf("failed to expand brands: %w", err)
			}
			clauses = append(clauses, in)
			args = append(args, inArgs...)

		case model.PredSizeContains, model.PredColorContains, model.PredOccasionContains:
			col := map[model.PredicateKind]string{
				model.PredSizeContains:     "p.size",
				model.PredColorContains:    "p.color",
				model.PredOccasionContains: "p.occasion",
			}[p.Kind]
			var ors []string
			for _, v := range p.Values {
				v = strings.ToLower(strings.TrimSpace(v))
				if v == "" {
					continue
				}
				ors = append(ors, tokenColumn(col)+" LIKE ?")
				args = append(args, "%,"+v+",%")
			}
			if len(ors) > 0 {
				clauses = append(clauses, "("+strings.Join(ors, " OR ")+")")
			}

		case model.PredGenderEquals:
			if len(p.Values) == 0 {
				continue
			}
			clauses = append(clauses, "LOWER(p.gender) = ?")
			args = append(args, strings.ToLower(p.Values[0]))

		case model.PredHasDiscount:
			clauses = append(clauses, "p.discount_price > 0 AND p.discount_price < p.price")

		default:
			return "", nil, fmt.Errorf("unknown predicate kind %d", p.Kind)
		}
	}

	return strings.Join(clauses, " AND "), args, nil
}

// compileOrder maps a sort key to an ORDER BY clause; p.id keeps pages stable
func compileOrder(sort model.SortKey) string {
	switch sort {
	case model.SortNameAsc:
		return "p.name ASC, p.id ASC"
	case model.SortNameDesc:
		return "p.name DESC, p.id ASC"
	case model.SortPriceAsc:
		return effectivePrice + " ASC, p.id ASC"
	case model.SortPriceDesc:
		return effectivePrice + " DESC, p.id ASC"
	case model.SortDiscount:
		return "COALESCE((p.price - " + effectivePrice + ") / NULLIF(p.price, 0), 0) DESC, p.id ASC"
	case model.SortFeatured:
		return "CASE WHEN p.discount_price > 0 AND p.discount_price < p.price THEN 0 ELSE 1 END ASC, p.created_at DESC, p.id DESC"
	default:
		return "p.created_at DESC, p.id DESC"
	}
}
