package livetable

import "errors"

var (
	// ErrConfiguration is returned when a table definition cannot be turned
	// into a query: an empty or multi-level attribute, an unknown relation,
	// or an invalid page size.
	ErrConfiguration = errors.New("livetable: configuration error")

	// ErrQueryExecution wraps errors returned by the database while counting
	// or fetching rows.
	ErrQueryExecution = errors.New("livetable: query execution error")

	// ErrCallback is returned when a column's search or sort callback hands
	// back a nil builder or one that already carries an error.
	ErrCallback = errors.New("livetable: callback error")
)
