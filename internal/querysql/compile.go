// Package querysql compiles index query descriptions to parameterized SQL
// for SQLite.
//
// The query engine never concatenates SQL by hand. It builds a Select value -
// base table, joins, a predicate tree with an explicit combination rule per
// group, and a keyset window - and this package turns it into one SQL string
// plus its parameter list.
//
// CRITICAL: All values are parameterized (never interpolated).
// CRITICAL: Clause order is deterministic, so compiled SQL is golden-testable.
package querysql

import (
	"fmt"
	"strings"
)

// Op is the combination rule for a predicate group, supplied as data rather
// than an imperative chain of conditionals. Thread search OR-folds its
// selectors; post search AND-folds its filters.
type Op int

const (
	OpAnd Op = iota
	OpOr
)

// Predicate is one WHERE fragment with its parameters.
type Predicate struct {
	SQL  string
	Args []any
}

// Group folds predicates (and nested groups) with a single combinator.
// An empty group is neutral: it compiles to an always-true fragment, so a
// search with no selectors passes everything.
type Group struct {
	Op     Op
	Preds  []Predicate
	Groups []*Group
}

// Add appends a leaf predicate and returns the group for chaining.
func (g *Group) Add(p Predicate) *Group {
	g.Preds = append(g.Preds, p)
	return g
}

// Empty reports whether the group contributes no constraint.
func (g *Group) Empty() bool {
	if g == nil {
		return true
	}
	if len(g.Preds) > 0 {
		return false
	}
	for _, sub := range g.Groups {
		if !sub.Empty() {
			return false
		}
	}
	return true
}

// Join is one join clause of a Select.
type Join struct {
	Kind  string // "JOIN" or "LEFT JOIN"
	Table string
	On    string
}

// Order is the resolved ordering policy: one column expression used for BOTH
// the keyset filter and the ORDER BY, so cursor semantics stay well-defined.
type Order struct {
	Expr string
	Desc bool
}

// Select describes one bounded index query.
type Select struct {
	Columns  []string
	From     string
	Joins    []Join
	Where    *Group
	Distinct bool
	Order    Order
	Limit    int
}

// Compile converts a Select to parameterized SQL.
// Returns (sql, params, error).
func Compile(q Select) (string, []any, error) {
	if len(q.Columns) == 0 {
		return "", nil, fmt.Errorf("cannot compile select with no columns")
	}
	if q.From == "" {
		return "", nil, fmt.Errorf("cannot compile select with no table")
	}
	if q.Order.Expr == "" {
		return "", nil, fmt.Errorf("cannot compile select with no ordering")
	}
	if q.Limit <= 0 {
		return "", nil, fmt.Errorf("cannot compile select with limit %d", q.Limit)
	}

	var b strings.Builder
	var params []any

	b.WriteString("SELECT ")
	if q.Distinct {
		b.WriteString("DISTINCT ")
	}
	b.WriteString(strings.Join(q.Columns, ", "))
	b.WriteString(" FROM ")
	b.WriteString(q.From)

	for _, j := range q.Joins {
		fmt.Fprintf(&b, " %s %s ON %s", j.Kind, j.Table, j.On)
	}

	if !q.Where.Empty() {
		whereSQL, whereParams := compileGroup(q.Where)
		b.WriteString(" WHERE ")
		b.WriteString(whereSQL)
		params = append(params, whereParams...)
	}

	b.WriteString(" ORDER BY ")
	b.WriteString(q.Order.Expr)
	if q.Order.Desc {
		b.WriteString(" DESC")
	} else {
		b.WriteString(" ASC")
	}

	b.WriteString(" LIMIT ?")
	params = append(params, q.Limit)

	return b.String(), params, nil
}

// compileGroup folds a group's members with its combinator. Members appear
// in insertion order: leaf predicates first, then nested groups.
func compileGroup(g *Group) (string, []any) {
	var parts []string
	var params []any

	for _, p := range g.Preds {
		parts = append(parts, p.SQL)
		params = append(params, p.Args...)
	}
	for _, sub := range g.Groups {
		if sub.Empty() {
			continue
		}
		subSQL, subParams := compileGroup(sub)
		parts = append(parts, "("+subSQL+")")
		params = append(params, subParams...)
	}

	if len(parts) == 0 {
		return "1 = 1", nil // neutral: no constraint
	}

	sep := " AND "
	if g.Op == OpOr {
		sep = " OR "
	}
	return strings.Join(parts, sep), params
}

// In builds a "column IN (...)" predicate over surrogate ids. An empty id
// list matches nothing, mirroring eq_any over an empty set.
func In(column string, ids []int64) Predicate {
	if len(ids) == 0 {
		return Predicate{SQL: "1 = 0"}
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return Predicate{
		SQL:  column + " IN (" + placeholders(len(ids)) + ")",
		Args: args,
	}
}

// InSubquery builds a "column IN (SELECT ...)" predicate.
func InSubquery(column, subquery string, args ...any) Predicate {
	return Predicate{
		SQL:  column + " IN (" + subquery + ")",
		Args: args,
	}
}

// Cmp builds a comparison predicate against a single value.
func Cmp(expr, op string, value any) Predicate {
	return Predicate{SQL: expr + " " + op + " ?", Args: []any{value}}
}

// Raw wraps a fixed SQL fragment with no parameters.
func Raw(sql string) Predicate {
	return Predicate{SQL: sql}
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
