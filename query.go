package livetable

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Compose turns the base query, the declared columns and the interaction
// state into the filtered and sorted query a Table executes.
//
// It runs two stages:
//  1. Search: when the search is enabled and the term is not blank, every
//     searchable column contributes one OR branch to a single grouped scope.
//     Columns with a SearchFunc delegate to it; dotted attributes match via
//     EXISTS on the related table; plain attributes use LIKE on the base table.
//  2. Sort: a dotted sort field is joined to its related table. Then, a
//     column whose attribute equals the raw sort field and that has a
//     SortFunc decides the ordering alone. Otherwise the query is ordered by
//     the resolved sort key.
//
// The base query is not modified.
func Compose(base *gorm.DB, columns []Column, state State) (*gorm.DB, error) {
	if base.Error != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, base.Error)
	}
	query := base.Session(&gorm.Session{})

	query, err := applySearch(query, columns, state.Search)
	if err != nil {
		return nil, err
	}

	return applySort(query, columns, state.Sorting)
}

// applySearch adds the OR-grouped search scope. A blank term leaves the query
// untouched.
func applySearch(query *gorm.DB, columns []Column, search SearchState) (*gorm.DB, error) {
	if !search.Active() {
		return query, nil
	}

	table, err := baseTable(query)
	if err != nil {
		return nil, err
	}

	pattern := "%" + search.Term + "%"
	group := query.Session(&gorm.Session{NewDB: true})
	for _, col := range columns {
		if !col.searchable {
			continue
		}
		switch {
		case col.searchFunc != nil:
			group = col.searchFunc(group, search.Term)
			if err := callbackResult(group, "search", col.attribute); err != nil {
				return nil, err
			}
		case col.isRelationship():
			r, err := parseRelationship(col.attribute)
			if err != nil {
				return nil, err
			}
			resolved, err := resolveRelationship(query, r)
			if err != nil {
				return nil, err
			}
			group = group.Or(resolved.existsMatching(query, pattern))
		default:
			group = group.Or(clause.Like{
				Column: clause.Column{Table: table, Name: col.attribute},
				Value:  pattern,
			})
		}
	}

	if _, ok := group.Statement.Clauses["WHERE"]; !ok {
		return query, nil
	}
	return query.Where(group), nil
}

// applySort orders the query. A dotted sort field is joined first, so a
// SortFunc sees the joined query; the SortFunc lookup itself uses the sort
// field as it was set.
func applySort(query *gorm.DB, columns []Column, sorting SortState) (*gorm.DB, error) {
	if sorting.Field == "" {
		return query, nil
	}

	key := clause.Column{Name: sorting.Field}
	if relationPath(sorting.Field) {
		r, err := parseRelationship(sorting.Field)
		if err != nil {
			return nil, err
		}
		resolved, err := resolveRelationship(query, r)
		if err != nil {
			return nil, err
		}
		query, key = resolved.joinForSort(query)
	}

	if col, ok := columnByAttribute(columns, sorting.Field); ok && col.sortFunc != nil {
		query = col.sortFunc(query, sorting.Direction)
		if err := callbackResult(query, "sort", col.attribute); err != nil {
			return nil, err
		}
		return query, nil
	}

	return query.Order(clause.OrderByColumn{
		Column: key,
		Desc:   sorting.Direction.IsDesc(),
	}), nil
}

// callbackResult checks the builder handed back by a column callback.
func callbackResult(tx *gorm.DB, kind, attribute string) error {
	if tx == nil {
		return fmt.Errorf("%w: %s callback of column %q returned a nil builder", ErrCallback, kind, attribute)
	}
	if tx.Error != nil {
		return fmt.Errorf("%w: %s callback of column %q: %w", ErrCallback, kind, attribute, tx.Error)
	}
	return nil
}

// applyFilters applies the scopes registered with Table.Filter to the base
// query, in registration order.
func applyFilters(query *gorm.DB, filters []func(*gorm.DB) *gorm.DB) *gorm.DB {
	for _, filter := range filters {
		query = filter(query)
	}
	return query
}

// applyRelations preloads the associations registered with Table.With.
func applyRelations(query *gorm.DB, relations []string) *gorm.DB {
	if len(relations) == 0 {
		return query
	}
	query = query.Session(&gorm.Session{})
	for _, rel := range relations {
		query = query.Preload(rel)
	}
	return query
}

// applyPagination limits the query to the current page.
func applyPagination(query *gorm.DB, p PaginationState) *gorm.DB {
	return query.Session(&gorm.Session{}).Offset(p.offset()).Limit(p.PerPage)
}

// countRows counts the rows matched by query. ORDER BY is dropped by GORM
// for the count.
func countRows(query *gorm.DB) (int64, error) {
	var count int64
	if err := query.Session(&gorm.Session{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("%w: %w", ErrQueryExecution, err)
	}
	return count, nil
}

// executeQuery runs query and decodes the rows into a slice of T.
func executeQuery[T any](query *gorm.DB) ([]T, error) {
	rows := make([]T, 0)
	if err := query.Session(&gorm.Session{}).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQueryExecution, err)
	}
	return rows, nil
}
