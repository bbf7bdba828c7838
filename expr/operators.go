package expr

import (
	"github.com/syssam/sqlforge"
	"github.com/syssam/sqlforge/sqltype"
)

// UnaryOp identifies a unary operator.
type UnaryOp uint8

// Unary operators.
const (
	OpNot UnaryOp = iota
	OpNeg
	OpIsNull
	OpIsNotNull
)

var unaryNames = [...]string{
	OpNot:       "NOT",
	OpNeg:       "-",
	OpIsNull:    "IS NULL",
	OpIsNotNull: "IS NOT NULL",
}

// String returns the operator's SQL token.
func (op UnaryOp) String() string { return unaryNames[op] }

// UnaryExpr applies a unary operator to one operand.
type UnaryExpr struct {
	op      UnaryOp
	operand Expr
	typ     sqltype.Type
}

// Op returns the operator.
func (e *UnaryExpr) Op() UnaryOp { return e.op }

// Operand returns the operand.
func (e *UnaryExpr) Operand() Expr { return e.operand }

// Operands implements Container.
func (e *UnaryExpr) Operands() []Expr { return []Expr{e.operand} }

// Type returns the result type.
func (e *UnaryExpr) Type() sqltype.Type { return e.typ }

// Aggregation follows the operand.
func (e *UnaryExpr) Aggregation() Aggregation { return e.operand.Aggregation() }

// Err always returns nil for a validated unary expression.
func (e *UnaryExpr) Err() error { return nil }

// Not negates a boolean expression.
func Not(e Expr) Expr {
	if err := firstErr(e); err != nil {
		return invalid{err: err}
	}
	if e.Type().Kind() != sqltype.KindBool {
		return invalid{err: sqlforge.NewTypeMismatchError("NOT", e.Type().String(), "Bool")}
	}
	return &UnaryExpr{op: OpNot, operand: e, typ: e.Type()}
}

// Neg negates a numeric expression.
func Neg(e Expr) Expr {
	if err := firstErr(e); err != nil {
		return invalid{err: err}
	}
	if !e.Type().Kind().Numeric() {
		return invalid{err: sqlforge.NewTypeMismatchError("-", e.Type().String(), e.Type().String())}
	}
	return &UnaryExpr{op: OpNeg, operand: e, typ: e.Type()}
}

// IsNull tests an expression against NULL. This is the null-aware form that
// comparisons against nullable operands must go through.
func IsNull(e Expr) Expr {
	if err := firstErr(e); err != nil {
		return invalid{err: err}
	}
	return &UnaryExpr{op: OpIsNull, operand: e, typ: sqltype.Bool}
}

// IsNotNull tests an expression against NOT NULL.
func IsNotNull(e Expr) Expr {
	if err := firstErr(e); err != nil {
		return invalid{err: err}
	}
	return &UnaryExpr{op: OpIsNotNull, operand: e, typ: sqltype.Bool}
}

// BinaryOp identifies a binary operator.
type BinaryOp uint8

// Binary operators.
const (
	OpEq BinaryOp = iota
	OpNeq
	OpLt
	OpLte
	OpGt
	OpGte
	OpEqNullable
	OpAnd
	OpOr
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpLike
	OpIn
	OpNotIn
)

var binaryNames = [...]string{
	OpEq:         "=",
	OpNeq:        "<>",
	OpLt:         "<",
	OpLte:        "<=",
	OpGt:         ">",
	OpGte:        ">=",
	OpEqNullable: "IS NOT DISTINCT FROM",
	OpAnd:        "AND",
	OpOr:         "OR",
	OpAdd:        "+",
	OpSub:        "-",
	OpMul:        "*",
	OpDiv:        "/",
	OpMod:        "%",
	OpLike:       "LIKE",
	OpIn:         "IN",
	OpNotIn:      "NOT IN",
}

// String returns the operator's canonical SQL token. Dialects may render a
// different spelling (null-safe equality in particular).
func (op BinaryOp) String() string { return binaryNames[op] }

// BinaryExpr applies a binary operator to two operands.
type BinaryExpr struct {
	op          BinaryOp
	left, right Expr
	typ         sqltype.Type
	agg         Aggregation
}

// Op returns the operator.
func (e *BinaryExpr) Op() BinaryOp { return e.op }

// Left returns the left operand.
func (e *BinaryExpr) Left() Expr { return e.left }

// Right returns the right operand.
func (e *BinaryExpr) Right() Expr { return e.right }

// Operands implements Container.
func (e *BinaryExpr) Operands() []Expr { return []Expr{e.left, e.right} }

// Type returns the result type.
func (e *BinaryExpr) Type() sqltype.Type { return e.typ }

// Aggregation returns the merged classification of the operands.
func (e *BinaryExpr) Aggregation() Aggregation { return e.agg }

// Err always returns nil for a validated binary expression.
func (e *BinaryExpr) Err() error { return nil }

// binary assembles a validated binary node, merging aggregate
// classifications.
func binary(op BinaryOp, l, r Expr, typ sqltype.Type) Expr {
	agg, err := MergeAggregation(l.Aggregation(), r.Aggregation())
	if err != nil {
		return invalid{err: err}
	}
	return &BinaryExpr{op: op, left: l, right: r, typ: typ, agg: agg}
}

// compare validates a comparison between l and r. Direct comparison against
// a nullable operand is rejected: SQL's tri-valued logic makes `x = NULL`
// silently false, so nullable operands must use IsNull or EqNullable.
func compare(op BinaryOp, l, r Expr) Expr {
	if err := firstErr(l, r); err != nil {
		return invalid{err: err}
	}
	if !sqltype.Comparable(l.Type(), r.Type()) {
		return invalid{err: sqlforge.NewTypeMismatchError(op.String(), l.Type().String(), r.Type().String())}
	}
	if l.Type().Nullable() || r.Type().Nullable() {
		return invalid{err: sqlforge.NewTypeMismatchError(op.String(), l.Type().String(), r.Type().String())}
	}
	return binary(op, l, r, sqltype.Bool)
}

// Eq compares two expressions for equality.
func Eq(l, r Expr) Expr { return compare(OpEq, l, r) }

// Neq compares two expressions for inequality.
func Neq(l, r Expr) Expr { return compare(OpNeq, l, r) }

// Lt compares l < r.
func Lt(l, r Expr) Expr { return compare(OpLt, l, r) }

// Lte compares l <= r.
func Lte(l, r Expr) Expr { return compare(OpLte, l, r) }

// Gt compares l > r.
func Gt(l, r Expr) Expr { return compare(OpGt, l, r) }

// Gte compares l >= r.
func Gte(l, r Expr) Expr { return compare(OpGte, l, r) }

// EqNullable is the null-aware equality: NULL compares equal to NULL and
// unequal to every value. Dialects render it as IS NOT DISTINCT FROM or the
// engine's equivalent.
func EqNullable(l, r Expr) Expr {
	if err := firstErr(l, r); err != nil {
		return invalid{err: err}
	}
	if !sqltype.Comparable(l.Type(), r.Type()) {
		return invalid{err: sqlforge.NewTypeMismatchError(OpEqNullable.String(), l.Type().String(), r.Type().String())}
	}
	return binary(OpEqNullable, l, r, sqltype.Bool)
}

// logical folds boolean predicates left-associatively.
func logical(op BinaryOp, ps []Expr) Expr {
	if err := firstErr(ps...); err != nil {
		return invalid{err: err}
	}
	if len(ps) == 0 {
		return invalid{err: sqlforge.NewTypeMismatchError(op.String(), "no operands", "Bool")}
	}
	for _, p := range ps {
		if p.Type().Kind() != sqltype.KindBool {
			return invalid{err: sqlforge.NewTypeMismatchError(op.String(), p.Type().String(), "Bool")}
		}
	}
	out := ps[0]
	for _, p := range ps[1:] {
		out = binary(op, out, p, sqltype.Bool)
		if err := out.Err(); err != nil {
			return out
		}
	}
	return out
}

// And combines boolean predicates with AND.
func And(ps ...Expr) Expr { return logical(OpAnd, ps) }

// Or combines boolean predicates with OR.
func Or(ps ...Expr) Expr { return logical(OpOr, ps) }

// arith validates an arithmetic operator and widens the result type.
func arith(op BinaryOp, l, r Expr) Expr {
	if err := firstErr(l, r); err != nil {
		return invalid{err: err}
	}
	typ, ok := sqltype.Arithmetic(l.Type(), r.Type())
	if !ok {
		return invalid{err: sqlforge.NewTypeMismatchError(op.String(), l.Type().String(), r.Type().String())}
	}
	return binary(op, l, r, typ)
}

// Add computes l + r.
func Add(l, r Expr) Expr { return arith(OpAdd, l, r) }

// Sub computes l - r.
func Sub(l, r Expr) Expr { return arith(OpSub, l, r) }

// Mul computes l * r.
func Mul(l, r Expr) Expr { return arith(OpMul, l, r) }

// Div computes l / r.
func Div(l, r Expr) Expr { return arith(OpDiv, l, r) }

// Mod computes l % r. Both operands must be integers.
func Mod(l, r Expr) Expr {
	if err := firstErr(l, r); err != nil {
		return invalid{err: err}
	}
	if !l.Type().Kind().Integer() || !r.Type().Kind().Integer() {
		return invalid{err: sqlforge.NewTypeMismatchError(OpMod.String(), l.Type().String(), r.Type().String())}
	}
	return arith(OpMod, l, r)
}

// Like matches a text expression against a pattern.
func Like(l, pattern Expr) Expr {
	if err := firstErr(l, pattern); err != nil {
		return invalid{err: err}
	}
	if l.Type().Kind() != sqltype.KindText || pattern.Type().Kind() != sqltype.KindText {
		return invalid{err: sqlforge.NewTypeMismatchError(OpLike.String(), l.Type().String(), pattern.Type().String())}
	}
	if l.Type().Nullable() || pattern.Type().Nullable() {
		return invalid{err: sqlforge.NewTypeMismatchError(OpLike.String(), l.Type().String(), pattern.Type().String())}
	}
	return binary(OpLike, l, pattern, sqltype.Bool)
}

// in validates the membership test shared by In and NotIn.
func in(op BinaryOp, e Expr, elems []Expr) Expr {
	if err := firstErr(e); err != nil {
		return invalid{err: err}
	}
	if e.Type().Nullable() {
		return invalid{err: sqlforge.NewTypeMismatchError(op.String(), e.Type().String(), "non-nullable operand")}
	}
	for _, el := range elems {
		if err := firstErr(el); err != nil {
			return invalid{err: err}
		}
		if !sqltype.Comparable(e.Type(), el.Type()) || el.Type().Nullable() {
			return invalid{err: sqlforge.NewTypeMismatchError(op.String(), e.Type().String(), el.Type().String())}
		}
	}
	t := Tuple(elems...)
	if err := t.Err(); err != nil {
		return invalid{err: err}
	}
	return binary(op, e, t, sqltype.Bool)
}

// In tests membership of e in the given list.
func In(e Expr, elems ...Expr) Expr { return in(OpIn, e, elems) }

// NotIn tests non-membership of e in the given list.
func NotIn(e Expr, elems ...Expr) Expr { return in(OpNotIn, e, elems) }

// InExpr tests membership of e against an arbitrary right-hand expression,
// typically a subquery. The right-hand side's type must be comparable to e.
func InExpr(e, rhs Expr) Expr {
	if err := firstErr(e, rhs); err != nil {
		return invalid{err: err}
	}
	if !sqltype.Comparable(e.Type(), rhs.Type().NotNull()) {
		return invalid{err: sqlforge.NewTypeMismatchError(OpIn.String(), e.Type().String(), rhs.Type().String())}
	}
	return binary(OpIn, e, rhs, sqltype.Bool)
}
