package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/freshcart/storefront/api/responses"
	"github.com/freshcart/storefront/api/validators"
	"github.com/freshcart/storefront/internal/catalog"
	"github.com/freshcart/storefront/pkg/enums"
	pkgerrors "github.com/freshcart/storefront/pkg/errors"
	"github.com/freshcart/storefront/pkg/logger"
)

// ParseCriteria reads catalog filters from the query string. Malformed
// numbers and unknown sort keys impose no constraint.
func ParseCriteria(r *http.Request) catalog.Criteria {
	sort, err := enums.ParseSortKey(r.URL.Query().Get("sort"))
	if err != nil {
		sort = enums.SortNewest
	}
	return catalog.Criteria{
		Categories:  validators.StringList(r, "category"),
		Brands:      validators.StringList(r, "brand"),
		PriceMin:    validators.OptionalDecimal(r, "price_min"),
		PriceMax:    validators.OptionalDecimal(r, "price_max"),
		RatingMin:   validators.OptionalIntInRange(r, "rating_min", 1, 5),
		InStockOnly: validators.Bool(r, "in_stock"),
		Search:      validators.SanitizeString(r.URL.Query().Get("q"), validators.MaxSearchRunes),
		Sort:        sort,
	}
}

// ParsePageState reads page and page_size, falling back to page 1 and the
// configured size.
func ParsePageState(r *http.Request) catalog.PageState {
	return catalog.PageState{
		Page:     validators.LenientInt(r, "page", 1),
		PageSize: validators.LenientInt(r, "page_size", 0),
	}
}

// ProductsList runs a catalog query and returns one page plus facets.
func ProductsList(svc *catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		result, err := svc.Browse(ctx, ParseCriteria(r), ParsePageState(r))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// ProductsFacets summarises the full catalog for filter controls.
func ProductsFacets(svc *catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		facets, err := svc.Facets(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"facets":    facets,
			"sort_keys": enums.SortKeys(),
		})
	}
}

// ProductDetail returns a single product.
func ProductDetail(svc *catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		product, err := svc.Product(ctx, chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}
