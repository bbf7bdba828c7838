// Package sqltype models logical database types.
//
// Every expression in the engine carries exactly one Type: a kind tag plus a
// nullability flag. Nullable<T> is a distinct type from T for compatibility
// checks, but binary-compatible for most operators, which widen their result
// to nullable when any operand is nullable.
package sqltype

// Kind is the tag of a logical database type.
type Kind uint8

// Supported kinds.
const (
	KindInvalid Kind = iota
	KindBool
	KindInt16
	KindInt32
	KindInt64
	KindFloat32
	KindFloat64
	KindDecimal
	KindText
	KindBytes
	KindDate
	KindTimestamp
	KindUUID
	KindJSON
)

var kindNames = [...]string{
	KindInvalid:   "Invalid",
	KindBool:      "Bool",
	KindInt16:     "Int16",
	KindInt32:     "Int32",
	KindInt64:     "Int64",
	KindFloat32:   "Float32",
	KindFloat64:   "Float64",
	KindDecimal:   "Decimal",
	KindText:      "Text",
	KindBytes:     "Bytes",
	KindDate:      "Date",
	KindTimestamp: "Timestamp",
	KindUUID:      "UUID",
	KindJSON:      "JSON",
}

// String returns the kind name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Invalid"
}

// Numeric reports whether the kind is an integer, floating point or decimal.
func (k Kind) Numeric() bool {
	switch k {
	case KindInt16, KindInt32, KindInt64, KindFloat32, KindFloat64, KindDecimal:
		return true
	}
	return false
}

// Integer reports whether the kind is an integer.
func (k Kind) Integer() bool {
	switch k {
	case KindInt16, KindInt32, KindInt64:
		return true
	}
	return false
}

// numericRank orders numeric kinds by the direction arithmetic widens:
// integers below decimal below floating point.
func numericRank(k Kind) int {
	switch k {
	case KindInt16:
		return 1
	case KindInt32:
		return 2
	case KindInt64:
		return 3
	case KindDecimal:
		return 4
	case KindFloat32:
		return 5
	case KindFloat64:
		return 6
	}
	return 0
}

// Type is a logical database type: a kind plus a nullability flag.
// The zero value is the invalid type.
type Type struct {
	kind     Kind
	nullable bool
}

// Predefined non-nullable types. Wrap with Nullable for their nullable forms.
var (
	Bool      = Type{kind: KindBool}
	Int16     = Type{kind: KindInt16}
	Int32     = Type{kind: KindInt32}
	Int64     = Type{kind: KindInt64}
	Float32   = Type{kind: KindFloat32}
	Float64   = Type{kind: KindFloat64}
	Decimal   = Type{kind: KindDecimal}
	Text      = Type{kind: KindText}
	Bytes     = Type{kind: KindBytes}
	Date      = Type{kind: KindDate}
	Timestamp = Type{kind: KindTimestamp}
	UUID      = Type{kind: KindUUID}
	JSON      = Type{kind: KindJSON}
)

// Nullable returns the nullable form of t.
func Nullable(t Type) Type {
	t.nullable = true
	return t
}

// Kind returns the type's kind tag.
func (t Type) Kind() Kind { return t.kind }

// Nullable reports whether the type admits NULL.
func (t Type) Nullable() bool { return t.nullable }

// NotNull returns the non-nullable form of t.
func (t Type) NotNull() Type {
	t.nullable = false
	return t
}

// Valid reports whether t is a usable type.
func (t Type) Valid() bool { return t.kind != KindInvalid }

// String returns the type name, e.g. "Text" or "Nullable<Text>".
func (t Type) String() string {
	if t.nullable {
		return "Nullable<" + t.kind.String() + ">"
	}
	return t.kind.String()
}

// Comparable reports whether values of the two types may be compared with
// ordering and equality operators. Kinds must match, except that all numeric
// kinds compare against each other. Nullability is not considered here;
// comparison constructors enforce the null-awareness rules themselves.
func Comparable(a, b Type) bool {
	if !a.Valid() || !b.Valid() {
		return false
	}
	if a.kind == b.kind {
		return true
	}
	return a.kind.Numeric() && b.kind.Numeric()
}

// Arithmetic returns the result type of an arithmetic operator applied to
// operands of types a and b: the wider numeric kind, nullable if either
// operand is nullable. ok is false when either operand is not numeric.
func Arithmetic(a, b Type) (Type, bool) {
	if !a.kind.Numeric() || !b.kind.Numeric() {
		return Type{}, false
	}
	out := a
	if numericRank(b.kind) > numericRank(a.kind) {
		out = b
	}
	out.nullable = a.nullable || b.nullable
	return out, true
}

// AssignableTo reports whether an expression of type src may be assigned to
// a column of type dst: a nullable source cannot flow into a non-nullable
// column, and kinds must match except for widening within the numeric kinds.
func AssignableTo(src, dst Type) bool {
	if !src.Valid() || !dst.Valid() {
		return false
	}
	if src.nullable && !dst.nullable {
		return false
	}
	if src.kind == dst.kind {
		return true
	}
	return src.kind.Numeric() && dst.kind.Numeric() && numericRank(src.kind) <= numericRank(dst.kind)
}
