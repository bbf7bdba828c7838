package expr

import (
	"github.com/syssam/sqlforge"
	"github.com/syssam/sqlforge/sqltype"
)

// AggregateExpr is an aggregate function call. Its value is computed per
// group, so its classification is always IsAggregate.
type AggregateExpr struct {
	name     string
	arg      Expr // nil for count(*)
	distinct bool
	typ      sqltype.Type
}

// Name returns the SQL aggregate name.
func (e *AggregateExpr) Name() string { return e.name }

// Arg returns the aggregated expression, or nil for count(*).
func (e *AggregateExpr) Arg() Expr { return e.arg }

// Distinct reports whether the aggregate applies to distinct values.
func (e *AggregateExpr) Distinct() bool { return e.distinct }

// Operands implements Container.
func (e *AggregateExpr) Operands() []Expr {
	if e.arg == nil {
		return nil
	}
	return []Expr{e.arg}
}

// Type returns the result type.
func (e *AggregateExpr) Type() sqltype.Type { return e.typ }

// Aggregation of an aggregate call is always IsAggregate.
func (e *AggregateExpr) Aggregation() Aggregation { return IsAggregate }

// Err always returns nil for a validated aggregate.
func (e *AggregateExpr) Err() error { return nil }

// aggregate validates the shared aggregate shape. Aggregates cannot nest.
func aggregate(name string, arg Expr, distinct bool, typ sqltype.Type) Expr {
	if arg != nil {
		if err := firstErr(arg); err != nil {
			return invalid{err: err}
		}
		if arg.Aggregation() == IsAggregate {
			return invalid{err: sqlforge.NewBuildError(
				sqlforge.RuleMixedAggregates,
				"aggregate %s cannot be applied to another aggregate", name,
			)}
		}
	}
	return &AggregateExpr{name: name, arg: arg, distinct: distinct, typ: typ}
}

// Count counts non-NULL values of the expression. The result is a
// non-nullable Int64: COUNT over an empty group is zero, not NULL.
func Count(e Expr) Expr { return aggregate("count", e, false, sqltype.Int64) }

// CountDistinct counts distinct non-NULL values of the expression.
func CountDistinct(e Expr) Expr { return aggregate("count", e, true, sqltype.Int64) }

// CountStar counts rows.
func CountStar() Expr { return aggregate("count", nil, false, sqltype.Int64) }

// sumType maps an operand kind to SUM's widened result kind.
func sumType(t sqltype.Type) (sqltype.Type, bool) {
	switch {
	case t.Kind().Integer():
		return sqltype.Int64, true
	case t.Kind() == sqltype.KindFloat32, t.Kind() == sqltype.KindFloat64:
		return sqltype.Float64, true
	case t.Kind() == sqltype.KindDecimal:
		return sqltype.Decimal, true
	}
	return sqltype.Type{}, false
}

// Sum totals a numeric expression. The result is nullable: SUM over an
// empty group is NULL.
func Sum(e Expr) Expr {
	if err := firstErr(e); err != nil {
		return invalid{err: err}
	}
	typ, ok := sumType(e.Type())
	if !ok {
		return invalid{err: sqlforge.NewTypeMismatchError("sum", e.Type().String(), "numeric")}
	}
	return aggregate("sum", e, false, sqltype.Nullable(typ))
}

// Avg averages a numeric expression. The result is nullable; integer and
// floating operands average as Float64, decimals as Decimal.
func Avg(e Expr) Expr {
	if err := firstErr(e); err != nil {
		return invalid{err: err}
	}
	if !e.Type().Kind().Numeric() {
		return invalid{err: sqlforge.NewTypeMismatchError("avg", e.Type().String(), "numeric")}
	}
	typ := sqltype.Float64
	if e.Type().Kind() == sqltype.KindDecimal {
		typ = sqltype.Decimal
	}
	return aggregate("avg", e, false, sqltype.Nullable(typ))
}

// Min returns the smallest value of the expression. The result is nullable.
func Min(e Expr) Expr { return minmax("min", e) }

// Max returns the largest value of the expression. The result is nullable.
func Max(e Expr) Expr { return minmax("max", e) }

func minmax(name string, e Expr) Expr {
	if err := firstErr(e); err != nil {
		return invalid{err: err}
	}
	if !e.Type().Valid() {
		return invalid{err: sqlforge.NewTypeMismatchError(name, e.Type().String(), e.Type().String())}
	}
	return aggregate(name, e, false, sqltype.Nullable(e.Type().NotNull()))
}
