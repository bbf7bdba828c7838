// Package expr implements the typed SQL expression model.
//
// Expressions form a closed variant set: column references, bound
// parameters, literals, unary and binary operators, scalar function calls,
// aggregate calls and tuples. Every expression carries a logical SQL type
// (sqltype.Type) and an aggregate classification, and is immutable once
// constructed.
//
// Operator constructors validate their operands at construction time. An
// invalid combination does not panic: the constructor returns an expression
// poisoned with a typed error that propagates bottom-up (first error wins)
// and surfaces from the statement builder that receives the expression.
package expr

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/syssam/sqlforge"
	"github.com/syssam/sqlforge/schema"
	"github.com/syssam/sqlforge/sqltype"
)

// Aggregation classifies whether an expression's value is computed per group
// or per row.
type Aggregation uint8

const (
	// NeverAggregate marks expressions neutral to grouping, such as
	// parameters and literals. They combine with either classification.
	NeverAggregate Aggregation = iota
	// IsAggregate marks expressions computed per group (aggregate calls and
	// compositions over them).
	IsAggregate
	// IsNonAggregate marks expressions computed per row (column references
	// and compositions over them).
	IsNonAggregate
)

// String returns the classification name.
func (a Aggregation) String() string {
	switch a {
	case IsAggregate:
		return "aggregate"
	case IsNonAggregate:
		return "non-aggregate"
	default:
		return "neutral"
	}
}

// MergeAggregation combines the classifications of two sibling expressions.
// Two non-neutral classifications that disagree cannot be composed; doing so
// is a MixedAggregates violation.
func MergeAggregation(a, b Aggregation) (Aggregation, error) {
	switch {
	case a == NeverAggregate:
		return b, nil
	case b == NeverAggregate, a == b:
		return a, nil
	default:
		return NeverAggregate, sqlforge.NewBuildError(
			sqlforge.RuleMixedAggregates,
			"cannot combine an aggregate with a non-aggregate expression",
		)
	}
}

// Expr is a node of the typed expression tree.
type Expr interface {
	// Type returns the expression's logical SQL type.
	Type() sqltype.Type
	// Aggregation returns the expression's aggregate classification.
	Aggregation() Aggregation
	// Err returns the construction error carried by this node or any of its
	// operands, or nil for a well-formed expression.
	Err() error
}

// Container is implemented by composite expressions and exposes their
// immediate operands. Walk uses it to traverse trees without enumerating
// variants; self-contained nodes (subqueries) return nil so that traversal
// stays within one statement scope.
type Container interface {
	Operands() []Expr
}

// Walk calls fn for e and every operand below it, depth-first, left to
// right. It does not descend into subqueries.
func Walk(e Expr, fn func(Expr)) {
	if e == nil {
		return
	}
	fn(e)
	if c, ok := e.(Container); ok {
		for _, o := range c.Operands() {
			Walk(o, fn)
		}
	}
}

// Columns returns every column referenced by e, in traversal order.
func Columns(e Expr) []*schema.Column {
	var cols []*schema.Column
	Walk(e, func(n Expr) {
		if c, ok := n.(*ColumnExpr); ok {
			cols = append(cols, c.Column())
		}
	})
	return cols
}

// firstErr returns the first construction error among the given expressions.
func firstErr(exprs ...Expr) error {
	for _, e := range exprs {
		if e == nil {
			continue
		}
		if err := e.Err(); err != nil {
			return err
		}
	}
	return nil
}

// invalid is the poisoned expression produced by a failed constructor.
type invalid struct{ err error }

func (invalid) Type() sqltype.Type       { return sqltype.Type{} }
func (invalid) Aggregation() Aggregation { return NeverAggregate }
func (e invalid) Err() error             { return e.err }

// Invalid returns an expression carrying the given construction error.
func Invalid(err error) Expr { return invalid{err: err} }

// ColumnExpr references a column descriptor.
type ColumnExpr struct {
	col *schema.Column
}

// Col returns a column reference expression.
func Col(c *schema.Column) Expr {
	if c == nil {
		return invalid{err: sqlforge.NewBuildError(sqlforge.RuleUnknownColumn, "nil column descriptor")}
	}
	return &ColumnExpr{col: c}
}

// Column returns the referenced descriptor.
func (e *ColumnExpr) Column() *schema.Column { return e.col }

// Type returns the column's declared type.
func (e *ColumnExpr) Type() sqltype.Type { return e.col.Type() }

// Aggregation of a bare column reference is per-row.
func (e *ColumnExpr) Aggregation() Aggregation { return IsNonAggregate }

// Err always returns nil for a column reference over a valid descriptor.
func (e *ColumnExpr) Err() error { return nil }

// ParamExpr is a bound parameter: a native value that renders as a
// placeholder and is shipped to the backend through a bind slot.
type ParamExpr struct {
	val sqltype.Value
}

// Param returns a bound parameter of the given type. A nil value represents
// SQL NULL and requires a nullable type.
func Param(t sqltype.Type, v any) Expr {
	if !t.Valid() {
		return invalid{err: sqlforge.NewTypeMismatchError("param", t.String(), t.String())}
	}
	if v == nil {
		if !t.Nullable() {
			return invalid{err: sqlforge.NewTypeMismatchError("param", "NULL", t.String())}
		}
		return &ParamExpr{val: sqltype.NewValue(t, v)}
	}
	if !nativeMatches(t, v) {
		return invalid{err: sqlforge.NewTypeMismatchError("param", fmt.Sprintf("%T", v), t.String())}
	}
	return &ParamExpr{val: sqltype.NewValue(t, v)}
}

// Value returns the parameter's typed value.
func (e *ParamExpr) Value() sqltype.Value { return e.val }

// Type returns the parameter's declared type.
func (e *ParamExpr) Type() sqltype.Type { return e.val.Type }

// Aggregation of a parameter is neutral.
func (e *ParamExpr) Aggregation() Aggregation { return NeverAggregate }

// Err always returns nil for a validated parameter.
func (e *ParamExpr) Err() error { return nil }

// LiteralExpr is a constant fixed at build time. Like parameters, literals
// allocate bind slots when rendered; the single exception is boolean
// literals, which render inline using the backend's boolean literal form,
// since not every engine has TRUE/FALSE keywords.
type LiteralExpr struct {
	val sqltype.Value
}

// Lit returns a literal expression of the given type.
func Lit(t sqltype.Type, v any) Expr {
	if !t.Valid() {
		return invalid{err: sqlforge.NewTypeMismatchError("literal", t.String(), t.String())}
	}
	if v == nil {
		if !t.Nullable() {
			return invalid{err: sqlforge.NewTypeMismatchError("literal", "NULL", t.String())}
		}
		return &LiteralExpr{val: sqltype.NewValue(t, v)}
	}
	if !nativeMatches(t, v) {
		return invalid{err: sqlforge.NewTypeMismatchError("literal", fmt.Sprintf("%T", v), t.String())}
	}
	return &LiteralExpr{val: sqltype.NewValue(t, v)}
}

// nativeMatches reports whether v is an acceptable Go native value for the
// type's kind. Integer kinds accept any signed width; range is the codec's
// concern.
func nativeMatches(t sqltype.Type, v any) bool {
	switch t.Kind() {
	case sqltype.KindBool:
		_, ok := v.(bool)
		return ok
	case sqltype.KindInt16, sqltype.KindInt32, sqltype.KindInt64:
		switch v.(type) {
		case int, int16, int32, int64:
			return true
		}
		return false
	case sqltype.KindFloat32:
		_, ok := v.(float32)
		return ok
	case sqltype.KindFloat64:
		_, ok := v.(float64)
		return ok
	case sqltype.KindDecimal, sqltype.KindText:
		_, ok := v.(string)
		return ok
	case sqltype.KindBytes, sqltype.KindJSON:
		_, ok := v.([]byte)
		return ok
	case sqltype.KindDate, sqltype.KindTimestamp:
		_, ok := v.(time.Time)
		return ok
	case sqltype.KindUUID:
		_, ok := v.(uuid.UUID)
		return ok
	}
	return false
}

// Value returns the literal's typed value.
func (e *LiteralExpr) Value() sqltype.Value { return e.val }

// Type returns the literal's declared type.
func (e *LiteralExpr) Type() sqltype.Type { return e.val.Type }

// Aggregation of a literal is neutral.
func (e *LiteralExpr) Aggregation() Aggregation { return NeverAggregate }

// Err always returns nil for a validated literal.
func (e *LiteralExpr) Err() error { return nil }

// TupleExpr is a parenthesized sequence of expressions, used as the
// right-hand side of IN and for multi-value comparisons.
type TupleExpr struct {
	elems []Expr
	typ   sqltype.Type
	agg   Aggregation
}

// Tuple returns a tuple of the given expressions. Elements must agree on an
// aggregate classification.
func Tuple(elems ...Expr) Expr {
	if err := firstErr(elems...); err != nil {
		return invalid{err: err}
	}
	if len(elems) == 0 {
		return invalid{err: sqlforge.NewBuildError(sqlforge.RuleValuesArity, "empty tuple")}
	}
	agg := NeverAggregate
	for _, e := range elems {
		merged, err := MergeAggregation(agg, e.Aggregation())
		if err != nil {
			return invalid{err: err}
		}
		agg = merged
	}
	return &TupleExpr{elems: elems, typ: elems[0].Type(), agg: agg}
}

// Elems returns the tuple elements.
func (e *TupleExpr) Elems() []Expr { return e.elems }

// Operands implements Container.
func (e *TupleExpr) Operands() []Expr { return e.elems }

// Type returns the type of the tuple's first element.
func (e *TupleExpr) Type() sqltype.Type { return e.typ }

// Aggregation returns the merged classification of the elements.
func (e *TupleExpr) Aggregation() Aggregation { return e.agg }

// Err always returns nil for a validated tuple.
func (e *TupleExpr) Err() error { return nil }

// Equal reports whether two expressions are structurally identical. It is
// used to match SELECT-list expressions against GROUP BY entries.
func Equal(a, b Expr) bool {
	if a == nil || b == nil {
		return a == b
	}
	switch x := a.(type) {
	case *ColumnExpr:
		y, ok := b.(*ColumnExpr)
		return ok && x.col == y.col
	case *ParamExpr:
		y, ok := b.(*ParamExpr)
		return ok && x.val.Type == y.val.Type && reflect.DeepEqual(x.val.V, y.val.V)
	case *LiteralExpr:
		y, ok := b.(*LiteralExpr)
		return ok && x.val.Type == y.val.Type && reflect.DeepEqual(x.val.V, y.val.V)
	case *UnaryExpr:
		y, ok := b.(*UnaryExpr)
		return ok && x.op == y.op && Equal(x.operand, y.operand)
	case *BinaryExpr:
		y, ok := b.(*BinaryExpr)
		return ok && x.op == y.op && Equal(x.left, y.left) && Equal(x.right, y.right)
	case *FuncExpr:
		y, ok := b.(*FuncExpr)
		if !ok || x.name != y.name || len(x.args) != len(y.args) {
			return false
		}
		for i := range x.args {
			if !Equal(x.args[i], y.args[i]) {
				return false
			}
		}
		return true
	case *AggregateExpr:
		y, ok := b.(*AggregateExpr)
		return ok && x.name == y.name && x.distinct == y.distinct && Equal(x.arg, y.arg)
	case *TupleExpr:
		y, ok := b.(*TupleExpr)
		if !ok || len(x.elems) != len(y.elems) {
			return false
		}
		for i := range x.elems {
			if !Equal(x.elems[i], y.elems[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// Describe returns a compact diagnostic form of the expression. It is not
// SQL; rendering is the dialect renderer's job.
func Describe(e Expr) string {
	switch x := e.(type) {
	case nil:
		return "<nil>"
	case *ColumnExpr:
		return x.col.QualifiedName()
	case *ParamExpr:
		return x.val.String()
	case *LiteralExpr:
		return "lit:" + x.val.String()
	case *UnaryExpr:
		return x.op.String() + "(" + Describe(x.operand) + ")"
	case *BinaryExpr:
		return "(" + Describe(x.left) + " " + x.op.String() + " " + Describe(x.right) + ")"
	case *FuncExpr:
		args := make([]string, len(x.args))
		for i, a := range x.args {
			args[i] = Describe(a)
		}
		return x.name + "(" + strings.Join(args, ", ") + ")"
	case *AggregateExpr:
		if x.arg == nil {
			return x.name + "(*)"
		}
		if x.distinct {
			return x.name + "(distinct " + Describe(x.arg) + ")"
		}
		return x.name + "(" + Describe(x.arg) + ")"
	case *TupleExpr:
		elems := make([]string, len(x.elems))
		for i, el := range x.elems {
			elems[i] = Describe(el)
		}
		return "(" + strings.Join(elems, ", ") + ")"
	default:
		if err := e.Err(); err != nil {
			return "<invalid: " + err.Error() + ">"
		}
		return "<expr>"
	}
}
