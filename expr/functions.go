package expr

import (
	"github.com/syssam/sqlforge"
	"github.com/syssam/sqlforge/sqltype"
)

// FuncExpr is a scalar function call.
type FuncExpr struct {
	name string
	args []Expr
	typ  sqltype.Type
	agg  Aggregation
}

// Name returns the SQL function name.
func (e *FuncExpr) Name() string { return e.name }

// Args returns the call arguments.
func (e *FuncExpr) Args() []Expr { return e.args }

// Operands implements Container.
func (e *FuncExpr) Operands() []Expr { return e.args }

// Type returns the result type.
func (e *FuncExpr) Type() sqltype.Type { return e.typ }

// Aggregation returns the merged classification of the arguments.
func (e *FuncExpr) Aggregation() Aggregation { return e.agg }

// Err always returns nil for a validated call.
func (e *FuncExpr) Err() error { return nil }

// call assembles a validated function node.
func call(name string, typ sqltype.Type, args ...Expr) Expr {
	if err := firstErr(args...); err != nil {
		return invalid{err: err}
	}
	agg := NeverAggregate
	for _, a := range args {
		merged, err := MergeAggregation(agg, a.Aggregation())
		if err != nil {
			return invalid{err: err}
		}
		agg = merged
	}
	return &FuncExpr{name: name, args: args, typ: typ, agg: agg}
}

// textFunc validates a single text argument and propagates its nullability.
func textFunc(name string, out sqltype.Type, e Expr) Expr {
	if err := firstErr(e); err != nil {
		return invalid{err: err}
	}
	if e.Type().Kind() != sqltype.KindText {
		return invalid{err: sqlforge.NewTypeMismatchError(name, e.Type().String(), "Text")}
	}
	if e.Type().Nullable() {
		out = sqltype.Nullable(out)
	}
	return call(name, out, e)
}

// Lower folds a text expression to lower case.
func Lower(e Expr) Expr { return textFunc("lower", sqltype.Text, e) }

// Upper folds a text expression to upper case.
func Upper(e Expr) Expr { return textFunc("upper", sqltype.Text, e) }

// Length returns the character length of a text expression.
func Length(e Expr) Expr { return textFunc("length", sqltype.Int32, e) }

// Abs returns the absolute value of a numeric expression.
func Abs(e Expr) Expr {
	if err := firstErr(e); err != nil {
		return invalid{err: err}
	}
	if !e.Type().Kind().Numeric() {
		return invalid{err: sqlforge.NewTypeMismatchError("abs", e.Type().String(), e.Type().String())}
	}
	return call("abs", e.Type(), e)
}

// Coalesce returns e when it is not NULL and fallback otherwise. The result
// takes the fallback's nullability: coalescing into a non-nullable fallback
// yields a non-nullable expression.
func Coalesce(e, fallback Expr) Expr {
	if err := firstErr(e, fallback); err != nil {
		return invalid{err: err}
	}
	if !sqltype.Comparable(e.Type(), fallback.Type()) {
		return invalid{err: sqlforge.NewTypeMismatchError("coalesce", e.Type().String(), fallback.Type().String())}
	}
	out := e.Type().NotNull()
	if k := fallback.Type().Kind(); k.Numeric() && e.Type().Kind().Numeric() {
		widened, _ := sqltype.Arithmetic(e.Type().NotNull(), fallback.Type().NotNull())
		out = widened
	}
	if fallback.Type().Nullable() {
		out = sqltype.Nullable(out)
	}
	return call("coalesce", out, e, fallback)
}
