package livetable

// Pagination describes the page a Result holds.
//
// Fields:
//   - Total: Number of rows matched by the composed query.
//   - PerPage: Page size used for the query.
//   - CurrentPage: The page that was fetched, starting at 1.
//   - LastPage: Number of pages; at least 1 even when nothing matched.
//   - From: Position of the first row of the page, 0 when the page is empty.
//   - To: Position of the last row of the page, 0 when the page is empty.
type Pagination struct {
	Total       int64 `json:"total"`
	PerPage     int   `json:"per_page"`
	CurrentPage int   `json:"current_page"`
	LastPage    int   `json:"last_page"`
	From        int   `json:"from"`
	To          int   `json:"to"`
}

// HasMorePages reports whether a page follows the current one.
func (p Pagination) HasMorePages() bool {
	return p.CurrentPage < p.LastPage
}

// OnFirstPage reports whether the current page is the first one.
func (p Pagination) OnFirstPage() bool {
	return p.CurrentPage <= 1
}

// Result is what Render hands to the view layer.
//
// Pagination is nil when the table is not paginated.
type Result[T any] struct {
	Columns    []Column    `json:"-"`
	Rows       []T         `json:"rows"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// newPagination builds the page metadata for rows fetched at state.
func newPagination(total int64, p PaginationState, shown int) *Pagination {
	page := p.currentPage()
	from, to := pageBounds(total, page, p.PerPage, shown)
	return &Pagination{
		Total:       total,
		PerPage:     p.PerPage,
		CurrentPage: page,
		LastPage:    lastPage(total, p.PerPage),
		From:        from,
		To:          to,
	}
}
