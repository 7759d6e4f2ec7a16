package catalog

import (
	"slices"

	"github.com/freshcart/storefront/pkg/enums"
	"github.com/shopspring/decimal"
)

// Criteria narrows and orders a product set. Empty sets and nil bounds impose
// no constraint. Query never mutates it.
type Criteria struct {
	Categories  []string
	Brands      []string
	PriceMin    *decimal.Decimal
	PriceMax    *decimal.Decimal
	RatingMin   *int
	InStockOnly bool
	Search      string
	Sort        enums.SortKey
}

// Equal reports whether two criteria select and order identically.
func (c Criteria) Equal(other Criteria) bool {
	return slices.Equal(c.Categories, other.Categories) &&
		slices.Equal(c.Brands, other.Brands) &&
		decimalPtrEqual(c.PriceMin, other.PriceMin) &&
		decimalPtrEqual(c.PriceMax, other.PriceMax) &&
		intPtrEqual(c.RatingMin, other.RatingMin) &&
		c.InStockOnly == other.InStockOnly &&
		c.Search == other.Search &&
		c.Sort.OrDefault() == other.Sort.OrDefault()
}

// Clone deep-copies the slices and bounds.
func (c Criteria) Clone() Criteria {
	out := c
	out.Categories = slices.Clone(c.Categories)
	out.Brands = slices.Clone(c.Brands)
	if c.PriceMin != nil {
		v := *c.PriceMin
		out.PriceMin = &v
	}
	if c.PriceMax != nil {
		v := *c.PriceMax
		out.PriceMax = &v
	}
	if c.RatingMin != nil {
		v := *c.RatingMin
		out.RatingMin = &v
	}
	return out
}

func decimalPtrEqual(a, b *decimal.Decimal) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
