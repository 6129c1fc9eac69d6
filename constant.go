package livetable

// Direction is the direction of the active sort.
type Direction string

// Sort directions understood by the Sorting state.
const (
	Ascending  Direction = "asc"  // Sort in ascending order.
	Descending Direction = "desc" // Sort in descending order.
)

// Defaults applied by New when no Config is given.
const (
	defaultSortField = "id"
	defaultPerPage   = 10
)

// Form keys read by ParseRequest.
const (
	requestSearch  = "search"
	requestSort    = "sort"
	requestPage    = "page"
	requestPerPage = "per_page"
)

// Flip returns the opposite direction. Anything that is not Descending is
// treated as Ascending.
func (d Direction) Flip() Direction {
	if d == Descending {
		return Ascending
	}
	return Descending
}

// IsDesc reports whether d is Descending.
func (d Direction) IsDesc() bool {
	return d == Descending
}
