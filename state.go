package livetable

import (
	"fmt"
	"strings"
)

// SearchState is the global search box of a table.
type SearchState struct {
	Enabled bool   `msgpack:"enabled"`
	Term    string `msgpack:"term"`
}

// Active reports whether the search stage adds a predicate scope. A term
// made only of whitespace counts as no search at all.
func (s SearchState) Active() bool {
	return s.Enabled && strings.TrimSpace(s.Term) != ""
}

// SortState is the active sort of a table.
type SortState struct {
	Field     string    `msgpack:"field"`
	Direction Direction `msgpack:"direction"`
}

// Toggle applies a click on the header of attribute. A new attribute starts
// ascending; clicking the current one flips the direction. The attribute is
// not checked against the declared columns.
func (s *SortState) Toggle(attribute string) {
	if s.Field != attribute {
		s.Direction = Ascending
	} else {
		s.Direction = s.Direction.Flip()
	}
	s.Field = attribute
}

// PaginationState is the current page window of a table.
type PaginationState struct {
	Enabled bool `msgpack:"enabled"`
	PerPage int  `msgpack:"per_page"`
	Page    int  `msgpack:"page"`
}

// offset returns the number of rows skipped before the current page.
func (p PaginationState) offset() int {
	return (p.currentPage() - 1) * p.PerPage
}

func (p PaginationState) currentPage() int {
	if p.Page < 1 {
		return 1
	}
	return p.Page
}

// State is the per-instance interaction state of a table. It is owned by a
// single Table and must not be shared between goroutines.
type State struct {
	Search     SearchState     `msgpack:"search"`
	Sorting    SortState       `msgpack:"sorting"`
	Pagination PaginationState `msgpack:"pagination"`
}

// NewState returns the state a table is mounted with.
func NewState(config Config) State {
	dir := config.DefaultSortDirection
	if dir != Descending {
		dir = Ascending
	}
	return State{
		Search: SearchState{Enabled: config.Searchable},
		Sorting: SortState{
			Field:     config.DefaultSortField,
			Direction: dir,
		},
		Pagination: PaginationState{
			Enabled: config.Paginate,
			PerPage: config.PerPage,
			Page:    1,
		},
	}
}

// Sort toggles the sort on attribute.
func (s *State) Sort(attribute string) {
	s.Sorting.Toggle(attribute)
}

// SetSearch stores the search term and goes back to the first page.
func (s *State) SetSearch(term string) {
	s.Search.Term = term
	s.Pagination.Page = 1
}

// ClearSearch empties the search term.
func (s *State) ClearSearch() {
	s.SetSearch("")
}

// SetPage moves to page n. Pages start at 1; smaller values are clamped.
func (s *State) SetPage(n int) {
	if n < 1 {
		n = 1
	}
	s.Pagination.Page = n
}

func (s *State) NextPage() {
	s.SetPage(s.Pagination.currentPage() + 1)
}

func (s *State) PreviousPage() {
	s.SetPage(s.Pagination.currentPage() - 1)
}

// SetPerPage changes the page size and goes back to the first page.
func (s *State) SetPerPage(n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: per page must be positive, got %d", ErrConfiguration, n)
	}
	s.Pagination.PerPage = n
	s.Pagination.Page = 1
	return nil
}
