package livetable

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// SearchFunc replaces the default LIKE predicate of a column. It receives the
// builder of the OR-grouped search scope and the raw search term, and returns
// the builder the search continues with.
type SearchFunc func(tx *gorm.DB, term string) *gorm.DB

// SortFunc replaces the default ORDER BY of a column. It receives the query
// after the search stage and the active direction, and returns the final
// query.
type SortFunc func(tx *gorm.DB, direction Direction) *gorm.DB

// Column describes one displayed field of a Table.
//
// A Column is a value: the builder methods return modified copies, so a
// column list returned by a Definition can be shared freely.
//
// The attribute is a dot-notation path. "name" addresses a field on the base
// table, "author.name" addresses the field "name" of the related "author".
type Column struct {
	label      string
	attribute  string
	searchable bool
	sortable   bool
	searchFunc SearchFunc
	sortFunc   SortFunc
}

// NewColumn returns a column shown under label and bound to attribute. The
// column is neither searchable nor sortable until told otherwise.
func NewColumn(label, attribute string) Column {
	return Column{label: label, attribute: attribute}
}

// Searchable marks the column as part of the global search.
func (c Column) Searchable() Column {
	c.searchable = true
	return c
}

// Sortable marks the column as sortable in the view. Sorting by a column that
// is not marked sortable still works when the attribute is sent explicitly.
func (c Column) Sortable() Column {
	c.sortable = true
	return c
}

// SearchUsing sets a custom search callback. The callback only runs when the
// column is also Searchable.
func (c Column) SearchUsing(fn SearchFunc) Column {
	c.searchFunc = fn
	return c
}

// SortUsing sets a custom sort callback, used instead of ORDER BY whenever
// the table is sorted by this column's attribute.
func (c Column) SortUsing(fn SortFunc) Column {
	c.sortFunc = fn
	return c
}

func (c Column) Label() string        { return c.label }
func (c Column) Attribute() string    { return c.attribute }
func (c Column) IsSearchable() bool   { return c.searchable }
func (c Column) IsSortable() bool     { return c.sortable }
func (c Column) HasSearchFunc() bool  { return c.searchFunc != nil }
func (c Column) HasSortFunc() bool    { return c.sortFunc != nil }
func (c Column) isRelationship() bool { return relationPath(c.attribute) }

// validate checks the attribute path of the column.
func (c Column) validate() error {
	if strings.TrimSpace(c.attribute) == "" {
		return fmt.Errorf("%w: column %q has an empty attribute", ErrConfiguration, c.label)
	}
	if c.isRelationship() {
		if _, err := parseRelationship(c.attribute); err != nil {
			return err
		}
	}
	return nil
}

// columnByAttribute returns the first column whose attribute equals
// attribute exactly. Dotted paths are compared as written.
func columnByAttribute(columns []Column, attribute string) (Column, bool) {
	for _, col := range columns {
		if col.attribute == attribute {
			return col, true
		}
	}
	return Column{}, false
}

// validateColumns validates every column in order and stops at the first
// error.
func validateColumns(columns []Column) error {
	for _, col := range columns {
		if err := col.validate(); err != nil {
			return err
		}
	}
	return nil
}
