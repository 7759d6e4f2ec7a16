package catalog

import (
	"cmp"
	"slices"
	"strings"

	"github.com/freshcart/storefront/pkg/enums"
)

// Query filters products by every predicate in criteria and returns them in
// the requested order. The input slice is never reordered; ties keep their
// input order.
func Query(products []Product, criteria Criteria) []Product {
	search := strings.ToLower(strings.TrimSpace(criteria.Search))

	out := make([]Product, 0, len(products))
	for _, p := range products {
		if search != "" && !matchesSearch(p, search) {
			continue
		}
		if len(criteria.Categories) > 0 && !slices.Contains(criteria.Categories, p.Category) {
			continue
		}
		if len(criteria.Brands) > 0 && !slices.Contains(criteria.Brands, p.Brand) {
			continue
		}
		if criteria.PriceMin != nil && p.Price.LessThan(*criteria.PriceMin) {
			continue
		}
		if criteria.PriceMax != nil && p.Price.GreaterThan(*criteria.PriceMax) {
			continue
		}
		if criteria.RatingMin != nil && p.RatingAverage() < float64(*criteria.RatingMin) {
			continue
		}
		if criteria.InStockOnly && !p.InStock() {
			continue
		}
		out = append(out, p)
	}

	slices.SortStableFunc(out, comparator(criteria.Sort))
	return out
}

func matchesSearch(p Product, needle string) bool {
	for _, field := range []string{p.Name, p.Description, p.Category, p.Brand} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

func comparator(key enums.SortKey) func(a, b Product) int {
	switch key.OrDefault() {
	case enums.SortPriceAsc:
		return func(a, b Product) int { return a.Price.Cmp(b.Price) }
	case enums.SortPriceDesc:
		return func(a, b Product) int { return b.Price.Cmp(a.Price) }
	case enums.SortRatingDesc:
		return func(a, b Product) int { return cmp.Compare(b.RatingAverage(), a.RatingAverage()) }
	default:
		return func(a, b Product) int { return b.CreatedAt.Compare(a.CreatedAt) }
	}
}
