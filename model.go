package livetable

import (
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Definition is implemented by concrete tables. Query returns the base query
// of the table's entity and Columns the columns shown for it. Both are called
// on every render and must not keep state of their own.
type Definition interface {
	Query(tx *gorm.DB) *gorm.DB
	Columns() []Column
}

type definition struct {
	query   func(*gorm.DB) *gorm.DB
	columns []Column
}

func (d definition) Query(tx *gorm.DB) *gorm.DB { return d.query(tx) }
func (d definition) Columns() []Column          { return d.columns }

// Define returns a Definition built from a query function and a fixed list
// of columns.
func Define(query func(*gorm.DB) *gorm.DB, columns ...Column) Definition {
	return definition{query: query, columns: columns}
}

// Table is a searchable, sortable and paginated listing of T.
//
// A Table owns its State. It is meant to live for one user session and to
// handle one interaction at a time; it is not safe for concurrent use.
type Table[T any] struct {
	tx         *gorm.DB
	definition Definition
	config     Config
	state      State
	relations  []string
	filters    []func(*gorm.DB) *gorm.DB
	logger     zerolog.Logger
}

// With appends relations that are preloaded on the rows of every render.
// Preloading requires T to be a model struct.
//
// Returns the updated Table instance.
func (t *Table[T]) With(relations ...string) *Table[T] {
	t.relations = append(t.relations, relations...)
	return t
}

// Filter adds a scope applied to the base query before the search stage.
// Filters narrow every render and are not affected by the search term.
//
// Returns the updated Table instance.
func (t *Table[T]) Filter(filterFunc func(*gorm.DB) *gorm.DB) *Table[T] {
	t.filters = append(t.filters, filterFunc)
	return t
}

// SetConfig replaces the configuration and mounts a fresh State from it.
// Any search, sort or page set before is discarded.
//
// Returns the updated Table instance.
func (t *Table[T]) SetConfig(config Config) *Table[T] {
	t.config = config
	t.state = NewState(config)
	return t
}

// DisableSearch turns the global search off. A search term that is still set
// is kept but ignored.
//
// Returns the updated Table instance.
func (t *Table[T]) DisableSearch() *Table[T] {
	t.config.Searchable = false
	t.state.Search.Enabled = false
	return t
}

// DisablePagination makes Render return every matching row.
//
// Returns the updated Table instance.
func (t *Table[T]) DisablePagination() *Table[T] {
	t.config.Paginate = false
	t.state.Pagination.Enabled = false
	return t
}

// WithLogger sets the logger used for debug output of renders.
//
// Returns the updated Table instance.
func (t *Table[T]) WithLogger(logger zerolog.Logger) *Table[T] {
	t.logger = logger
	return t
}

// Validate checks the definition and the state before a query is composed.
func (t *Table[T]) Validate() error {
	if t.tx == nil {
		return fmt.Errorf("%w: a database handle is required", ErrConfiguration)
	}
	if t.definition == nil {
		return fmt.Errorf("%w: a table definition is required", ErrConfiguration)
	}
	if t.state.Pagination.Enabled && t.state.Pagination.PerPage <= 0 {
		return fmt.Errorf("%w: per page must be positive, got %d", ErrConfiguration, t.state.Pagination.PerPage)
	}
	return validateColumns(t.definition.Columns())
}
