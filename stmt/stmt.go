// Package stmt implements the SQL statement builders.
//
// Each builder method returns a new statement value with one additional
// clause merged in; statements are never mutated in place, so a partially
// built statement is safe to reuse as a base for multiple variants and safe
// to share between goroutines once built.
//
// Validity rules run incrementally: the builder call that introduces a
// violating clause is the one that records the error, and the first recorded
// error sticks. Grouping consistency is the single deferred rule — GROUP BY
// may legally arrive after the projection — and is checked by Err, which the
// renderer consults before rendering.
package stmt

import (
	"github.com/syssam/sqlforge"
	"github.com/syssam/sqlforge/expr"
	"github.com/syssam/sqlforge/schema"
	"github.com/syssam/sqlforge/sqltype"
)

// Statement is a buildable SQL statement.
type Statement interface {
	// Err returns the first validity violation recorded while building,
	// running any rules deferred to finalization.
	Err() error
	// OutputTypes returns the result-shape descriptor: the ordered types of
	// the columns the statement produces (projection or RETURNING list).
	OutputTypes() []sqltype.Type
}

// OrderDirection is the sort direction of an ORDER BY term.
type OrderDirection uint8

const (
	// Asc sorts ascending.
	Asc OrderDirection = iota
	// Desc sorts descending.
	Desc
)

// String returns the SQL keyword.
func (d OrderDirection) String() string {
	if d == Desc {
		return "DESC"
	}
	return "ASC"
}

// OrderTerm pairs an expression with its sort direction.
type OrderTerm struct {
	Expr expr.Expr
	Dir  OrderDirection
}

// Assignment pairs a column with the expression assigned to it, used by
// UPDATE SET and by upsert DO UPDATE clauses.
type Assignment struct {
	Column *schema.Column
	Value  expr.Expr
}

// Set returns an Assignment of the expression to the column.
func Set(c *schema.Column, v expr.Expr) Assignment {
	return Assignment{Column: c, Value: v}
}

// tableSet is the ordered FROM/JOIN table set of a statement.
type tableSet []*schema.Table

func (ts tableSet) contains(t *schema.Table) bool {
	for _, x := range ts {
		if x == t {
			return true
		}
	}
	return false
}

// checkMembership verifies that every column referenced by the expressions
// belongs to a table in the set.
func checkMembership(ts tableSet, exprs ...expr.Expr) error {
	for _, e := range exprs {
		for _, c := range expr.Columns(e) {
			if !ts.contains(c.Table()) {
				return sqlforge.NewBuildError(
					sqlforge.RuleUnknownColumn,
					"column %s does not belong to a table in the FROM/JOIN set", c.QualifiedName(),
				)
			}
		}
	}
	return nil
}

// checkPredicate verifies the shape shared by WHERE, HAVING and ON
// predicates: a well-formed boolean expression.
func checkPredicate(context string, p expr.Expr) error {
	if p == nil {
		return sqlforge.NewTypeMismatchError(context, "nil", "Bool")
	}
	if err := p.Err(); err != nil {
		return err
	}
	if p.Type().Kind() != sqltype.KindBool {
		return sqlforge.NewTypeMismatchError(context, p.Type().String(), "Bool")
	}
	return nil
}

// checkRowLevel rejects aggregate expressions in row-level clauses
// (RETURNING lists, VALUES rows, SET assignments). Aggregates are
// query-level; placing one in a row-level clause is a MixedAggregates
// violation.
func checkRowLevel(context string, exprs ...expr.Expr) error {
	for _, e := range exprs {
		if err := e.Err(); err != nil {
			return err
		}
		if containsAggregate(e) {
			return sqlforge.NewBuildError(
				sqlforge.RuleMixedAggregates,
				"aggregate expression %s is not allowed in %s", expr.Describe(e), context,
			)
		}
	}
	return nil
}

// containsAggregate reports whether any node in the tree is an aggregate
// call. Classification alone is not enough here: a neutral-classified
// composition can still hide an aggregate below a comparison.
func containsAggregate(e expr.Expr) bool {
	found := false
	expr.Walk(e, func(n expr.Expr) {
		if _, ok := n.(*expr.AggregateExpr); ok {
			found = true
		}
	})
	return found
}

// checkGrouping enforces grouping consistency over a projection: when the
// query aggregates (any projected aggregate or a non-empty GROUP BY), every
// per-row projection entry must appear in GROUP BY.
func checkGrouping(proj []expr.Expr, groupBy []expr.Expr) error {
	aggregated := len(groupBy) > 0
	for _, e := range proj {
		if e.Aggregation() == expr.IsAggregate {
			aggregated = true
			break
		}
	}
	if !aggregated {
		return nil
	}
	for _, e := range proj {
		if e.Aggregation() != expr.IsNonAggregate {
			continue
		}
		if !inGroupBy(e, groupBy) {
			return sqlforge.NewBuildError(
				sqlforge.RuleNonAggregateInAggregateQuery,
				"%s must be aggregated or listed in GROUP BY", expr.Describe(e),
			)
		}
	}
	return nil
}

func inGroupBy(e expr.Expr, groupBy []expr.Expr) bool {
	for _, g := range groupBy {
		if expr.Equal(e, g) {
			return true
		}
	}
	return false
}
