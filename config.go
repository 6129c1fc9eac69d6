package livetable

// Config holds the options a Table is mounted with.
//
// Fields:
//   - Searchable: Enables or disables the global search box.
//   - Paginate: Enables or disables pagination.
//   - PerPage: Number of rows per page when pagination is enabled.
//   - DefaultSortField: The attribute sorted on before the user clicks anything.
//   - DefaultSortDirection: The direction of the initial sort.
type Config struct {
	Searchable           bool
	Paginate             bool
	PerPage              int
	DefaultSortField     string
	DefaultSortDirection Direction
}

// DefaultConfig returns the configuration New starts from.
func DefaultConfig() Config {
	return Config{
		Searchable:           true,
		Paginate:             true,
		PerPage:              defaultPerPage,
		DefaultSortField:     defaultSortField,
		DefaultSortDirection: Ascending,
	}
}
