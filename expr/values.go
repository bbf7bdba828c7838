package expr

import (
	"time"

	"github.com/google/uuid"

	"github.com/syssam/sqlforge"
	"github.com/syssam/sqlforge/sqltype"
)

// Typed bound-parameter constructors. Each is shorthand for Param with the
// matching sqltype.

// Bool binds a boolean parameter.
func Bool(v bool) Expr { return Param(sqltype.Bool, v) }

// Int16 binds a 16-bit integer parameter.
func Int16(v int16) Expr { return Param(sqltype.Int16, v) }

// Int32 binds a 32-bit integer parameter.
func Int32(v int32) Expr { return Param(sqltype.Int32, v) }

// Int64 binds a 64-bit integer parameter.
func Int64(v int64) Expr { return Param(sqltype.Int64, v) }

// Float32 binds a single precision parameter.
func Float32(v float32) Expr { return Param(sqltype.Float32, v) }

// Float64 binds a double precision parameter.
func Float64(v float64) Expr { return Param(sqltype.Float64, v) }

// Decimal binds an arbitrary precision numeric parameter from its canonical
// decimal string form.
func Decimal(v string) Expr { return Param(sqltype.Decimal, v) }

// Text binds a text parameter.
func Text(v string) Expr { return Param(sqltype.Text, v) }

// Bytes binds a binary parameter.
func Bytes(v []byte) Expr { return Param(sqltype.Bytes, v) }

// Timestamp binds a timestamp parameter.
func Timestamp(v time.Time) Expr { return Param(sqltype.Timestamp, v) }

// Date binds a date parameter; the time-of-day portion is ignored by codecs.
func Date(v time.Time) Expr { return Param(sqltype.Date, v) }

// UUID binds a UUID parameter.
func UUID(v uuid.UUID) Expr { return Param(sqltype.UUID, v) }

// JSON binds a JSON document parameter.
func JSON(v []byte) Expr { return Param(sqltype.JSON, v) }

// Null binds a NULL parameter of the given type. The type must be nullable.
func Null(t sqltype.Type) Expr {
	if !t.Nullable() {
		return invalid{err: sqlforge.NewTypeMismatchError("param", "NULL", t.String())}
	}
	return Param(t, nil)
}
