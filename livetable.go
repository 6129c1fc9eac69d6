// Package livetable provides server-rendered data tables on top of GORM.
//
// A concrete table declares its base query and its columns through a
// Definition. The Table then keeps the interaction state of one user
// session (search term, sort, page) and composes a single query from the
// definition and that state on every render.
package livetable

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// New returns a Table for def on the given Gorm DB, mounted with the default
// configuration.
func New[T any](tx *gorm.DB, def Definition) *Table[T] {
	config := DefaultConfig()
	return &Table[T]{
		tx:         tx,
		definition: def,
		config:     config,
		state:      NewState(config),
		logger:     zerolog.Nop(),
	}
}

// State returns a copy of the current interaction state.
func (t *Table[T]) State() State {
	return t.state
}

// Restore replaces the interaction state, typically with one decoded from a
// snapshot sent back by the client.
//
// Returns the updated Table instance.
func (t *Table[T]) Restore(state State) *Table[T] {
	t.state = state
	return t
}

// Sort handles a click on the header of attribute.
//
// Returns the updated Table instance.
func (t *Table[T]) Sort(attribute string) *Table[T] {
	t.state.Sort(attribute)
	return t
}

// SetSearch updates the bound search term and resets the page.
//
// Returns the updated Table instance.
func (t *Table[T]) SetSearch(term string) *Table[T] {
	t.state.SetSearch(term)
	return t
}

// ClearSearch empties the bound search term.
//
// Returns the updated Table instance.
func (t *Table[T]) ClearSearch() *Table[T] {
	t.state.ClearSearch()
	return t
}

// SetPage updates the bound page.
//
// Returns the updated Table instance.
func (t *Table[T]) SetPage(page int) *Table[T] {
	t.state.SetPage(page)
	return t
}

// SetPerPage changes the page size.
func (t *Table[T]) SetPerPage(perPage int) error {
	return t.state.SetPerPage(perPage)
}

// Query composes the query for the current state without executing it.
// Filters registered on the table are part of the base query; preloads are
// only added when rows are fetched.
func (t *Table[T]) Query() (*gorm.DB, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t.compose(t.tx, t.definition.Columns())
}

func (t *Table[T]) compose(tx *gorm.DB, columns []Column) (*gorm.DB, error) {
	base := t.definition.Query(tx)
	if base == nil {
		return nil, fmt.Errorf("%w: definition returned a nil base query", ErrConfiguration)
	}
	base = applyFilters(base, t.filters)

	query, err := Compose(base, columns, t.state)
	if err != nil {
		return nil, err
	}

	t.logger.Debug().
		Bool("search", t.state.Search.Active()).
		Str("sort_field", t.state.Sorting.Field).
		Str("sort_direction", string(t.state.Sorting.Direction)).
		Msg("composed table query")
	return query, nil
}

// Render composes the query for the current state and executes it.
//
// It will execute the following steps:
//  1. Validate the definition and the state.
//  2. Compose the query from the base query, the columns and the state.
//  3. If pagination is enabled, count the matching rows and fetch the
//     current page; otherwise fetch every matching row.
//
// Render does not change the state. The context is passed to GORM, which
// owns cancellation of the queries.
func (t *Table[T]) Render(ctx context.Context) (*Result[T], error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	columns := t.definition.Columns()
	query, err := t.compose(t.tx.WithContext(ctx), columns)
	if err != nil {
		return nil, err
	}

	result := &Result[T]{Columns: columns}
	if !t.state.Pagination.Enabled {
		if result.Rows, err = executeQuery[T](applyRelations(query, t.relations)); err != nil {
			return nil, err
		}
		t.logger.Debug().Int("rows", len(result.Rows)).Msg("rendered table")
		return result, nil
	}

	total, err := countRows(query)
	if err != nil {
		return nil, err
	}
	page := applyPagination(query, t.state.Pagination)
	if result.Rows, err = executeQuery[T](applyRelations(page, t.relations)); err != nil {
		return nil, err
	}
	result.Pagination = newPagination(total, t.state.Pagination, len(result.Rows))

	t.logger.Debug().
		Int64("total", total).
		Int("page", result.Pagination.CurrentPage).
		Int("rows", len(result.Rows)).
		Msg("rendered table")
	return result, nil
}
