package sqltype

import "fmt"

// Value pairs a native Go value with its logical SQL type. Values cross the
// rendering boundary inside bind slots and are serialized by a backend codec
// just before execution.
type Value struct {
	// Type is the value's logical type.
	Type Type
	// V is the native value. A nil V represents SQL NULL and is only legal
	// for nullable types; codecs enforce this when serializing.
	V any
}

// NewValue returns a Value of the given type.
func NewValue(t Type, v any) Value {
	return Value{Type: t, V: v}
}

// Null returns the SQL NULL value of type t.
func Null(t Type) Value {
	return Value{Type: t}
}

// Null reports whether the value represents SQL NULL.
func (v Value) Null() bool { return v.V == nil }

// String returns a debug form, e.g. "Text(ada)" or "Nullable<Int64>(NULL)".
func (v Value) String() string {
	if v.Null() {
		return v.Type.String() + "(NULL)"
	}
	return fmt.Sprintf("%s(%v)", v.Type, v.V)
}
