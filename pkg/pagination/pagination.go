package pagination

const (
	// DefaultPageSize is the page size used when a caller provides none.
	DefaultPageSize = 12
	// MaxPageSize caps how many items a single page can carry.
	MaxPageSize = 60
)

// Params holds page-number pagination inputs from controllers or services.
type Params struct {
	Page     int
	PageSize int
}

// Window describes the half-open slice [Start, End) for one page.
type Window struct {
	Page       int
	PageSize   int
	Total      int
	TotalPages int
	Start      int
	End        int
}

// NormalizePage treats anything below 1 as the first page.
func NormalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// NormalizePageSize falls back to def when size is not positive and caps it
// at max when max is positive.
func NormalizePageSize(size, def, max int) int {
	if def <= 0 {
		def = DefaultPageSize
	}
	if size <= 0 {
		size = def
	}
	if max > 0 && size > max {
		return max
	}
	return size
}

// TotalPages returns ceil(total/size), never less than 1.
func TotalPages(total, size int) int {
	if size <= 0 || total <= 0 {
		return 1
	}
	pages := (total + size - 1) / size
	if pages < 1 {
		return 1
	}
	return pages
}

// Compute derives the page window for total items. Bounds are clamped to
// [0, total] so a page past the end yields an empty window.
func Compute(total int, params Params) Window {
	if total < 0 {
		total = 0
	}
	page := NormalizePage(params.Page)
	size := params.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}

	// Compare in page units so huge page numbers cannot overflow start.
	start := total
	if page-1 <= total/size {
		start = min((page-1)*size, total)
	}
	end := total
	if size < total-start {
		end = start + size
	}

	return Window{
		Page:       page,
		PageSize:   size,
		Total:      total,
		TotalPages: TotalPages(total, size),
		Start:      start,
		End:        end,
	}
}

// Slice returns a copy of the items inside w.
func Slice[T any](items []T, w Window) []T {
	if w.Start >= w.End || w.Start >= len(items) {
		return []T{}
	}
	end := w.End
	if end > len(items) {
		end = len(items)
	}
	out := make([]T, end-w.Start)
	copy(out, items[w.Start:end])
	return out
}
