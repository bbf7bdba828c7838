package stmt

import (
	"github.com/syssam/sqlforge"
	"github.com/syssam/sqlforge/expr"
	"github.com/syssam/sqlforge/sqltype"
)

// SubqueryExpr embeds a single-column SELECT as an expression. A scalar
// subquery's type is the nullable form of its projected column: an empty
// result set yields NULL.
//
// Subqueries are self-contained: their validity (membership, grouping) is
// checked against their own FROM/JOIN set, and traversal of the outer
// expression tree does not descend into them.
type SubqueryExpr struct {
	sel *SelectStmt
	typ sqltype.Type
}

// Subquery wraps a validated single-column SELECT as a scalar expression.
func Subquery(sel *SelectStmt) expr.Expr {
	if err := sel.Err(); err != nil {
		return expr.Invalid(err)
	}
	out := sel.OutputTypes()
	if len(out) != 1 {
		return expr.Invalid(sqlforge.NewBuildError(
			sqlforge.RuleValuesArity,
			"scalar subquery projects %d columns, want 1", len(out),
		))
	}
	return &SubqueryExpr{sel: sel, typ: sqltype.Nullable(out[0])}
}

// Select returns the embedded statement.
func (e *SubqueryExpr) Select() *SelectStmt { return e.sel }

// Operands implements expr.Container; a subquery exposes no operands to the
// outer scope.
func (e *SubqueryExpr) Operands() []expr.Expr { return nil }

// Type returns the nullable form of the projected column type.
func (e *SubqueryExpr) Type() sqltype.Type { return e.typ }

// Aggregation of a subquery is neutral in the outer scope: it behaves as a
// value regardless of what it aggregates internally.
func (e *SubqueryExpr) Aggregation() expr.Aggregation { return expr.NeverAggregate }

// Err always returns nil for a validated subquery.
func (e *SubqueryExpr) Err() error { return nil }

// InSubquery tests membership of e in the single-column result of sel.
func InSubquery(e expr.Expr, sel *SelectStmt) expr.Expr {
	sub := Subquery(sel)
	if err := sub.Err(); err != nil {
		return expr.Invalid(err)
	}
	return expr.InExpr(e, sub)
}
