package catalog

import (
	"slices"

	"github.com/shopspring/decimal"
)

// Facets summarises a product set for building filter controls.
type Facets struct {
	Categories []FacetCount     `json:"categories"`
	Brands     []FacetCount     `json:"brands"`
	PriceMin   *decimal.Decimal `json:"price_min,omitempty"`
	PriceMax   *decimal.Decimal `json:"price_max,omitempty"`
	InStock    int              `json:"in_stock"`
	OutOfStock int              `json:"out_of_stock"`
}

// FacetCount is one distinct value and how many products carry it.
type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// BuildFacets counts categories and brands (sorted by value), the price range
// and stock availability across products.
func BuildFacets(products []Product) Facets {
	categories := map[string]int{}
	brands := map[string]int{}
	var facets Facets

	for _, p := range products {
		if p.Category != "" {
			categories[p.Category]++
		}
		if p.Brand != "" {
			brands[p.Brand]++
		}
		if facets.PriceMin == nil || p.Price.LessThan(*facets.PriceMin) {
			price := p.Price
			facets.PriceMin = &price
		}
		if facets.PriceMax == nil || p.Price.GreaterThan(*facets.PriceMax) {
			price := p.Price
			facets.PriceMax = &price
		}
		if p.InStock() {
			facets.InStock++
		} else {
			facets.OutOfStock++
		}
	}

	facets.Categories = sortedCounts(categories)
	facets.Brands = sortedCounts(brands)
	return facets
}

func sortedCounts(counts map[string]int) []FacetCount {
	out := make([]FacetCount, 0, len(counts))
	for value, count := range counts {
		out = append(out, FacetCount{Value: value, Count: count})
	}
	slices.SortFunc(out, func(a, b FacetCount) int {
		switch {
		case a.Value < b.Value:
			return -1
		case a.Value > b.Value:
			return 1
		}
		return 0
	})
	return out
}
