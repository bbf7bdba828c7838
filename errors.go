package sqlforge

import (
	"errors"
	"fmt"
)

// Rule identifies the statement validity rule that a BuildError reports.
type Rule string

// Validity rules checked during statement construction.
const (
	// RuleUnknownColumn is reported when a referenced column does not belong
	// to any table in the statement's FROM/JOIN set.
	RuleUnknownColumn Rule = "UnknownColumn"

	// RuleNonAggregateInAggregateQuery is reported when a SELECT list mixes
	// an aggregate with a bare column that is not listed in GROUP BY.
	RuleNonAggregateInAggregateQuery Rule = "NonAggregateInAggregateQuery"

	// RuleMixedAggregates is reported when aggregate and non-aggregate
	// expressions are combined where that is invalid, e.g. an aggregate
	// inside a RETURNING clause.
	RuleMixedAggregates Rule = "MixedAggregates"

	// RuleDuplicateSetColumn is reported when an UPDATE assigns the same
	// column twice.
	RuleDuplicateSetColumn Rule = "DuplicateSetColumn"

	// RuleDisconnectedJoin is reported when a joined table is not reachable
	// from the primary table through its ON predicate.
	RuleDisconnectedJoin Rule = "DisconnectedJoin"

	// RuleDuplicateTable is reported when the same table is added to the
	// FROM/JOIN set twice.
	RuleDuplicateTable Rule = "DuplicateTable"

	// RuleAggregateInWhere is reported when a WHERE predicate contains an
	// aggregate expression.
	RuleAggregateInWhere Rule = "AggregateInWhere"

	// RuleEmptyValues is reported when an INSERT has neither VALUES rows nor
	// a SELECT source.
	RuleEmptyValues Rule = "EmptyValues"

	// RuleValuesArity is reported when a VALUES row length does not match
	// the INSERT column list.
	RuleValuesArity Rule = "ValuesArity"

	// RuleMissingFrom is reported when a SELECT is finalized without a FROM
	// table.
	RuleMissingFrom Rule = "MissingFrom"

	// RuleNegativeLimit is reported when LIMIT or OFFSET receives a
	// negative count.
	RuleNegativeLimit Rule = "NegativeLimit"

	// RuleConflictingSource is reported when an INSERT mixes VALUES rows
	// with a SELECT source.
	RuleConflictingSource Rule = "ConflictingSource"
)

// BuildError is returned when a statement or clause combination violates a
// validity rule. It is surfaced at the earliest construction step that
// detects the violation.
type BuildError struct {
	// Rule is the violated validity rule.
	Rule Rule
	// Msg describes the offending statement shape.
	Msg string
}

// NewBuildError returns a BuildError for the given rule.
func NewBuildError(rule Rule, format string, args ...any) *BuildError {
	return &BuildError{Rule: rule, Msg: fmt.Sprintf(format, args...)}
}

// Error returns the error string.
func (e *BuildError) Error() string {
	return fmt.Sprintf("sqlforge: build: %s: %s", e.Rule, e.Msg)
}

// IsBuildError returns true if the error is a BuildError.
func IsBuildError(err error) bool {
	if err == nil {
		return false
	}
	var e *BuildError
	return errors.As(err, &e)
}

// BuildRule extracts the violated rule from a BuildError in err's chain.
func BuildRule(err error) (Rule, bool) {
	var e *BuildError
	if errors.As(err, &e) {
		return e.Rule, true
	}
	return "", false
}

// ViolatesRule reports whether err is a BuildError for the given rule.
func ViolatesRule(err error, rule Rule) bool {
	r, ok := BuildRule(err)
	return ok && r == rule
}

// TypeMismatchError is returned when operand SQL types are incompatible for
// an operator or comparison.
type TypeMismatchError struct {
	// Op is the operator or function that rejected its operands.
	Op string
	// Left and Right are the string forms of the operand types.
	Left, Right string
}

// NewTypeMismatchError returns a TypeMismatchError for the given operator.
func NewTypeMismatchError(op, left, right string) *TypeMismatchError {
	return &TypeMismatchError{Op: op, Left: left, Right: right}
}

// Error returns the error string.
func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("sqlforge: type mismatch: %s is not applicable to %s and %s", e.Op, e.Left, e.Right)
}

// IsTypeMismatch returns true if the error is a TypeMismatchError.
func IsTypeMismatch(err error) bool {
	if err == nil {
		return false
	}
	var e *TypeMismatchError
	return errors.As(err, &e)
}

// SerializationError is returned when a bound value cannot be represented in
// the backend's wire format.
type SerializationError struct {
	// Type is the SQL type the value was serialized as.
	Type string
	// Value is the rejected native value.
	Value any
	// Reason describes the failure.
	Reason string
}

// NewSerializationError returns a SerializationError.
func NewSerializationError(typ string, value any, format string, args ...any) *SerializationError {
	return &SerializationError{Type: typ, Value: value, Reason: fmt.Sprintf(format, args...)}
}

// Error returns the error string.
func (e *SerializationError) Error() string {
	return fmt.Sprintf("sqlforge: serialize %v as %s: %s", e.Value, e.Type, e.Reason)
}

// IsSerialization returns true if the error is a SerializationError.
func IsSerialization(err error) bool {
	if err == nil {
		return false
	}
	var e *SerializationError
	return errors.As(err, &e)
}

// DeserializationError is returned when a wire value returned by a backend
// cannot be converted to the requested output type, including NULL delivered
// to a non-nullable target.
type DeserializationError struct {
	// Type is the SQL type the value was requested as.
	Type string
	// Reason describes the failure.
	Reason string
}

// NewDeserializationError returns a DeserializationError.
func NewDeserializationError(typ string, format string, args ...any) *DeserializationError {
	return &DeserializationError{Type: typ, Reason: fmt.Sprintf(format, args...)}
}

// Error returns the error string.
func (e *DeserializationError) Error() string {
	return fmt.Sprintf("sqlforge: deserialize as %s: %s", e.Type, e.Reason)
}

// IsDeserialization returns true if the error is a DeserializationError.
func IsDeserialization(err error) bool {
	if err == nil {
		return false
	}
	var e *DeserializationError
	return errors.As(err, &e)
}

// RenderError is returned when a backend lacks a capability required by a
// constructed clause, e.g. RETURNING on a backend without support. It is
// detected at render time because capability is backend-specific.
type RenderError struct {
	// Dialect is the backend that lacks the capability.
	Dialect string
	// Feature names the missing capability.
	Feature string
}

// NewRenderError returns a RenderError.
func NewRenderError(dialect, feature string) *RenderError {
	return &RenderError{Dialect: dialect, Feature: feature}
}

// Error returns the error string.
func (e *RenderError) Error() string {
	return fmt.Sprintf("sqlforge: dialect %s does not support %s", e.Dialect, e.Feature)
}

// IsRender returns true if the error is a RenderError.
func IsRender(err error) bool {
	if err == nil {
		return false
	}
	var e *RenderError
	return errors.As(err, &e)
}
