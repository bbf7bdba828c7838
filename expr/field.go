package expr

import (
	"time"

	"github.com/google/uuid"

	"github.com/syssam/sqlforge/schema"
)

// Native enumerates the Go value types with an unambiguous logical SQL type:
// string binds as Text, time.Time as Timestamp, []byte as Bytes. Values of
// the remaining logical types (Decimal, Date, JSON) bind through their
// explicit constructors.
type Native interface {
	bool | int16 | int32 | int64 | float64 | string | time.Time | uuid.UUID | []byte
}

// paramOf binds a native value, inferring the logical type from the Go type.
func paramOf(v any) Expr {
	switch x := v.(type) {
	case bool:
		return Bool(x)
	case int16:
		return Int16(x)
	case int32:
		return Int32(x)
	case int64:
		return Int64(x)
	case float64:
		return Float64(x)
	case string:
		return Text(x)
	case time.Time:
		return Timestamp(x)
	case uuid.UUID:
		return UUID(x)
	case []byte:
		return Bytes(x)
	}
	panic("expr: value type outside the Native constraint")
}

// Field is a typed handle over a column that provides method-style
// predicates. It defines each predicate once via generics instead of
// repeating it per generated column type.
//
// Usage:
//
//	var email = expr.F[string](users.C("email"))
//	query.Where(email.EQ("test@example.com"))
type Field[T Native] struct {
	col *schema.Column
}

// F wraps a column in a typed field handle. The value type is still checked
// against the column's logical type when a predicate is built, so a handle
// with the wrong type parameter yields a type mismatch, never wrong SQL.
func F[T Native](c *schema.Column) Field[T] {
	return Field[T]{col: c}
}

// Col returns the bare column expression.
func (f Field[T]) Col() Expr { return Col(f.col) }

// EQ returns a predicate that checks if the field equals the given value.
func (f Field[T]) EQ(v T) Expr { return Eq(Col(f.col), paramOf(v)) }

// NEQ returns a predicate that checks if the field does not equal the given value.
func (f Field[T]) NEQ(v T) Expr { return Neq(Col(f.col), paramOf(v)) }

// GT returns a predicate that checks if the field is greater than the given value.
func (f Field[T]) GT(v T) Expr { return Gt(Col(f.col), paramOf(v)) }

// GTE returns a predicate that checks if the field is greater than or equal to the given value.
func (f Field[T]) GTE(v T) Expr { return Gte(Col(f.col), paramOf(v)) }

// LT returns a predicate that checks if the field is less than the given value.
func (f Field[T]) LT(v T) Expr { return Lt(Col(f.col), paramOf(v)) }

// LTE returns a predicate that checks if the field is less than or equal to the given value.
func (f Field[T]) LTE(v T) Expr { return Lte(Col(f.col), paramOf(v)) }

// In returns a predicate that checks if the field value is in the given list.
func (f Field[T]) In(vs ...T) Expr {
	elems := make([]Expr, len(vs))
	for i, v := range vs {
		elems[i] = paramOf(v)
	}
	return In(Col(f.col), elems...)
}

// NotIn returns a predicate that checks if the field value is not in the given list.
func (f Field[T]) NotIn(vs ...T) Expr {
	elems := make([]Expr, len(vs))
	for i, v := range vs {
		elems[i] = paramOf(v)
	}
	return NotIn(Col(f.col), elems...)
}

// IsNull returns a predicate that checks if the field is NULL.
func (f Field[T]) IsNull() Expr { return IsNull(Col(f.col)) }

// NotNull returns a predicate that checks if the field is not NULL.
func (f Field[T]) NotNull() Expr { return IsNotNull(Col(f.col)) }
