package catalog

// View holds a shopper's current criteria and page. Any change to the
// criteria moves the page back to 1.
type View struct {
	criteria Criteria
	state    PageState
}

// NewView starts a view on page 1 with the given page size.
func NewView(criteria Criteria, pageSize int) *View {
	return &View{
		criteria: criteria.Clone(),
		state:    PageState{Page: 1, PageSize: pageSize},
	}
}

// Criteria returns a copy of the current criteria.
func (v *View) Criteria() Criteria {
	return v.criteria.Clone()
}

// State returns the current page position.
func (v *View) State() PageState {
	return v.state
}

// SetCriteria replaces the criteria and reports whether they changed.
func (v *View) SetCriteria(criteria Criteria) bool {
	if v.criteria.Equal(criteria) {
		return false
	}
	v.criteria = criteria.Clone()
	v.state.Page = 1
	return true
}

// SetPage moves to page without touching the criteria.
func (v *View) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	v.state.Page = page
}

// SetPageSize changes the page size and returns to page 1.
func (v *View) SetPageSize(size int) {
	if size == v.state.PageSize {
		return
	}
	v.state.PageSize = size
	v.state.Page = 1
}

// Apply runs the view over products.
func (v *View) Apply(products []Product) Page {
	return Paginate(Query(products, v.criteria), v.state)
}
