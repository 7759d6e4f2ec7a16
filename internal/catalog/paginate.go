package catalog

import "github.com/freshcart/storefront/pkg/pagination"

// PageState is the caller-held position within a result set.
type PageState struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// Page is one visible slice of a result set.
type Page struct {
	Items      []Product `json:"items"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	Total      int       `json:"total"`
	TotalPages int       `json:"total_pages"`
}

// Paginate cuts results[(page-1)*size : page*size], clamped to the result
// bounds. A page below 1 is the first page and a non-positive size falls back
// to pagination.DefaultPageSize.
func Paginate(results []Product, state PageState) Page {
	w := pagination.Compute(len(results), pagination.Params{Page: state.Page, PageSize: state.PageSize})
	return Page{
		Items:      pagination.Slice(results, w),
		Page:       w.Page,
		PageSize:   w.PageSize,
		Total:      w.Total,
		TotalPages: w.TotalPages,
	}
}
