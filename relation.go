package livetable

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

// Relationship is a dotted attribute split into the relation it traverses and
// the field read on the related table.
type Relationship struct {
	Name      string
	Attribute string
}

// parseRelationship splits "relation.field". Exactly one level is supported;
// deeper paths are rejected instead of guessing a chain of joins.
func parseRelationship(path string) (Relationship, error) {
	parts := strings.Split(path, ".")
	if len(parts) != 2 {
		return Relationship{}, fmt.Errorf("%w: attribute %q: only one relationship level is supported", ErrConfiguration, path)
	}
	if parts[0] == "" || parts[1] == "" {
		return Relationship{}, fmt.Errorf("%w: attribute %q is not a valid relationship path", ErrConfiguration, path)
	}
	return Relationship{Name: parts[0], Attribute: parts[1]}, nil
}

// linkCondition is one "left = right" pair tying two tables together. Right
// is either a clause.Column or a literal (polymorphic type values).
type linkCondition struct {
	left  clause.Column
	right any
}

// resolvedRelationship holds everything needed to reach the related table
// from the base table, either through a correlated subquery or a join.
type resolvedRelationship struct {
	table     string
	column    string
	through   string
	link      []linkCondition // conditions against the base table
	throughOn []linkCondition // join table to related table, many2many only
}

// sortKey is the addressable column of the related attribute.
func (r resolvedRelationship) sortKey() clause.Column {
	return clause.Column{Table: r.table, Name: r.column}
}

// baseTable returns the table name of the query, parsing the model schema if
// GORM has not done so yet.
func baseTable(query *gorm.DB) (string, error) {
	stmt := query.Statement
	if stmt.Schema == nil && stmt.Model != nil {
		if err := stmt.Parse(stmt.Model); err != nil {
			return "", fmt.Errorf("%w: %w", ErrConfiguration, err)
		}
	}
	return stmt.Table, nil
}

// lookupRelation finds the relation by its Go field name, falling back to a
// case-insensitive match so "author" resolves the field "Author".
func lookupRelation(s *schema.Schema, name string) (*schema.Relationship, bool) {
	if rel, ok := s.Relationships.Relations[name]; ok {
		return rel, true
	}
	for key, rel := range s.Relationships.Relations {
		if strings.EqualFold(key, name) {
			return rel, true
		}
	}
	return nil, false
}

// resolveRelationship maps a Relationship onto the tables and keys GORM parsed
// from the model of query.
func resolveRelationship(query *gorm.DB, r Relationship) (resolvedRelationship, error) {
	table, err := baseTable(query)
	if err != nil {
		return resolvedRelationship{}, err
	}
	s := query.Statement.Schema
	if s == nil {
		return resolvedRelationship{}, fmt.Errorf("%w: relationship %q needs a query built on a model", ErrConfiguration, r.Name)
	}

	rel, ok := lookupRelation(s, r.Name)
	if !ok {
		return resolvedRelationship{}, fmt.Errorf("%w: model %s has no relationship %q", ErrConfiguration, s.Name, r.Name)
	}

	res := resolvedRelationship{
		table:  rel.FieldSchema.Table,
		column: r.Attribute,
	}
	if f := rel.FieldSchema.LookUpField(r.Attribute); f != nil && f.DBName != "" {
		res.column = f.DBName
	}

	if rel.JoinTable != nil {
		res.through = rel.JoinTable.Table
		for _, ref := range rel.References {
			if ref.OwnPrimaryKey {
				res.link = append(res.link, linkCondition{
					left:  clause.Column{Table: res.through, Name: ref.ForeignKey.DBName},
					right: clause.Column{Table: table, Name: ref.PrimaryKey.DBName},
				})
			} else {
				res.throughOn = append(res.throughOn, linkCondition{
					left:  clause.Column{Table: res.through, Name: ref.ForeignKey.DBName},
					right: clause.Column{Table: res.table, Name: ref.PrimaryKey.DBName},
				})
			}
		}
		return res, nil
	}

	for _, ref := range rel.References {
		switch {
		case ref.PrimaryKey == nil:
			res.link = append(res.link, linkCondition{
				left:  clause.Column{Table: res.table, Name: ref.ForeignKey.DBName},
				right: ref.PrimaryValue,
			})
		case ref.OwnPrimaryKey:
			res.link = append(res.link, linkCondition{
				left:  clause.Column{Table: res.table, Name: ref.ForeignKey.DBName},
				right: clause.Column{Table: table, Name: ref.PrimaryKey.DBName},
			})
		default:
			res.link = append(res.link, linkCondition{
				left:  clause.Column{Table: res.table, Name: ref.PrimaryKey.DBName},
				right: clause.Column{Table: table, Name: ref.ForeignKey.DBName},
			})
		}
	}
	return res, nil
}

// equalities turns link conditions into WHERE expressions.
func equalities(conds []linkCondition) []clause.Expression {
	exprs := make([]clause.Expression, 0, len(conds))
	for _, c := range conds {
		exprs = append(exprs, clause.Eq{Column: c.left, Value: c.right})
	}
	return exprs
}

// joinSQL renders "<kind> JOIN ? ON ? = ? AND ..." with its vars.
func joinSQL(kind, table string, conds []linkCondition) (string, []any) {
	var sb strings.Builder
	vars := make([]any, 0, 1+2*len(conds))
	sb.WriteString(kind)
	sb.WriteString(" JOIN ? ON ")
	vars = append(vars, clause.Table{Name: table})
	for i, c := range conds {
		if i > 0 {
			sb.WriteString(" AND ")
		}
		sb.WriteString("? = ?")
		vars = append(vars, c.left, c.right)
	}
	return sb.String(), vars
}

// existsMatching builds the "related row matches" predicate used by search:
//
//	EXISTS (SELECT 1 FROM related WHERE <link> AND related.attr LIKE ?)
func (r resolvedRelationship) existsMatching(query *gorm.DB, pattern string) clause.Expression {
	sub := query.Session(&gorm.Session{NewDB: true}).Select("1")
	if r.through != "" {
		sql, vars := joinSQL("INNER", r.table, r.throughOn)
		sub = sub.Table(r.through).Joins(sql, vars...)
	} else {
		sub = sub.Table(r.table)
	}
	for _, expr := range equalities(r.link) {
		sub = sub.Where(expr)
	}
	sub = sub.Where(clause.Like{Column: r.sortKey(), Value: pattern})
	return clause.Expr{SQL: "EXISTS (?)", Vars: []any{sub}}
}

// joinForSort adds the LEFT JOINs that make the related attribute addressable
// from the base query and returns the column to order by.
func (r resolvedRelationship) joinForSort(query *gorm.DB) (*gorm.DB, clause.Column) {
	if r.through != "" {
		sql, vars := joinSQL("LEFT", r.through, r.link)
		query = query.Joins(sql, vars...)
		sql, vars = joinSQL("LEFT", r.table, r.throughOn)
		query = query.Joins(sql, vars...)
	} else {
		sql, vars := joinSQL("LEFT", r.table, r.link)
		query = query.Joins(sql, vars...)
	}
	return query, r.sortKey()
}
