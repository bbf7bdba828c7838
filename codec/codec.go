// Package codec converts between native Go values and backend wire values.
//
// Each backend gets its own Codec because backends disagree on how the
// logical types travel: booleans may be real booleans or 0/1 integers, UUIDs
// may be text or raw bytes, and text may need a legacy character set. A
// Codec is stateless and safe for concurrent use.
//
// The round trip Serialize then Deserialize is identity for every value a
// type admits, with one caveat: timestamps survive only to the precision the
// backend stores, so sub-microsecond components may not come back.
package codec

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"github.com/syssam/sqlforge"
	"github.com/syssam/sqlforge/dialect"
	"github.com/syssam/sqlforge/sqltype"
)

// Codec serializes typed native values to wire values and deserializes wire
// values back. The two directions compose to identity for every value a type
// admits.
type Codec interface {
	// Serialize converts a typed value to the wire value the backend's
	// driver expects. A nil value of a nullable type serializes to nil.
	Serialize(v sqltype.Value) (any, error)
	// Deserialize converts a raw driver value into a typed native value.
	// Nil raws are only valid for nullable types.
	Deserialize(raw any, t sqltype.Type) (sqltype.Value, error)
}

// Option adjusts codec behavior for one backend connection profile.
type Option func(*codec)

// WithLatin1Text makes text travel as Latin-1 bytes. Needed for legacy MySQL
// schemas whose columns still use the latin1 character set.
func WithLatin1Text() Option {
	return func(c *codec) { c.textEnc = charmap.ISO8859_1 }
}

// ByDialect returns the codec for a named backend.
func ByDialect(name string, opts ...Option) Codec {
	c := &codec{dialect: name}
	switch name {
	case dialect.Postgres:
		c.boolAsBool = true
	case dialect.MySQL:
		c.uuidAsBytes = true
	case dialect.SQLite:
	case dialect.SQLServer:
		c.boolAsBool = true
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// codec is the shared implementation; the per-backend flags cover every
// point where the backends disagree.
type codec struct {
	dialect     string
	boolAsBool  bool              // false: booleans travel as 0/1 integers
	uuidAsBytes bool              // false: UUIDs travel as text
	textEnc     encoding.Encoding // nil: UTF-8 passthrough
}

func (c *codec) Serialize(v sqltype.Value) (any, error) {
	if v.Null() {
		if !v.Type.Nullable() {
			return nil, sqlforge.NewSerializationError(v.Type.String(), nil, "nil value for non-nullable type")
		}
		return nil, nil
	}
	switch v.Type.Kind() {
	case sqltype.KindBool:
		b, ok := v.V.(bool)
		if !ok {
			return nil, c.badNative(v)
		}
		if c.boolAsBool {
			return b, nil
		}
		if b {
			return int64(1), nil
		}
		return int64(0), nil
	case sqltype.KindInt16:
		n, err := c.asInt64(v)
		if err != nil {
			return nil, err
		}
		if n < math.MinInt16 || n > math.MaxInt16 {
			return nil, sqlforge.NewSerializationError(v.Type.String(), v.V, "value out of range")
		}
		return n, nil
	case sqltype.KindInt32:
		n, err := c.asInt64(v)
		if err != nil {
			return nil, err
		}
		if n < math.MinInt32 || n > math.MaxInt32 {
			return nil, sqlforge.NewSerializationError(v.Type.String(), v.V, "value out of range")
		}
		return n, nil
	case sqltype.KindInt64:
		return c.asInt64(v)
	case sqltype.KindFloat32:
		f, ok := v.V.(float32)
		if !ok {
			return nil, c.badNative(v)
		}
		return float64(f), nil
	case sqltype.KindFloat64:
		f, ok := v.V.(float64)
		if !ok {
			return nil, c.badNative(v)
		}
		return f, nil
	case sqltype.KindDecimal:
		// Decimals travel as text so no precision is lost in transit.
		s, ok := v.V.(string)
		if !ok {
			return nil, c.badNative(v)
		}
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			return nil, sqlforge.NewSerializationError(v.Type.String(), v.V, "malformed decimal literal")
		}
		return s, nil
	case sqltype.KindText:
		s, ok := v.V.(string)
		if !ok {
			return nil, c.badNative(v)
		}
		if c.textEnc != nil {
			b, err := c.textEnc.NewEncoder().Bytes([]byte(s))
			if err != nil {
				return nil, sqlforge.NewSerializationError(v.Type.String(), v.V, "text not representable in connection charset")
			}
			return b, nil
		}
		return s, nil
	case sqltype.KindBytes:
		b, ok := v.V.([]byte)
		if !ok {
			return nil, c.badNative(v)
		}
		return b, nil
	case sqltype.KindDate:
		t, ok := v.V.(time.Time)
		if !ok {
			return nil, c.badNative(v)
		}
		return t.Format("2006-01-02"), nil
	case sqltype.KindTimestamp:
		t, ok := v.V.(time.Time)
		if !ok {
			return nil, c.badNative(v)
		}
		return t, nil
	case sqltype.KindUUID:
		u, ok := v.V.(uuid.UUID)
		if !ok {
			return nil, c.badNative(v)
		}
		if c.uuidAsBytes {
			b := make([]byte, 16)
			copy(b, u[:])
			return b, nil
		}
		return u.String(), nil
	case sqltype.KindJSON:
		b, ok := v.V.([]byte)
		if !ok {
			return nil, c.badNative(v)
		}
		return b, nil
	}
	return nil, sqlforge.NewSerializationError(v.Type.String(), v.V, "unsupported type")
}

func (c *codec) badNative(v sqltype.Value) error {
	return sqlforge.NewSerializationError(v.Type.String(), v.V, "native type %T does not match", v.V)
}

func (c *codec) asInt64(v sqltype.Value) (int64, error) {
	switch n := v.V.(type) {
	case int:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	}
	return 0, c.badNative(v)
}

func (c *codec) Deserialize(raw any, t sqltype.Type) (sqltype.Value, error) {
	if raw == nil {
		if !t.Nullable() {
			return sqltype.Value{}, sqlforge.NewDeserializationError(t.String(), "NULL for non-nullable type")
		}
		return sqltype.Null(t), nil
	}
	switch t.Kind() {
	case sqltype.KindBool:
		b, err := rawBool(raw)
		if err != nil {
			return sqltype.Value{}, sqlforge.NewDeserializationError(t.String(), "%v", err)
		}
		return sqltype.NewValue(t, b), nil
	case sqltype.KindInt16:
		n, err := rawInt(raw)
		if err != nil {
			return sqltype.Value{}, sqlforge.NewDeserializationError(t.String(), "%v", err)
		}
		if n < math.MinInt16 || n > math.MaxInt16 {
			return sqltype.Value{}, sqlforge.NewDeserializationError(t.String(), "value out of range")
		}
		return sqltype.NewValue(t, int16(n)), nil
	case sqltype.KindInt32:
		n, err := rawInt(raw)
		if err != nil {
			return sqltype.Value{}, sqlforge.NewDeserializationError(t.String(), "%v", err)
		}
		if n < math.MinInt32 || n > math.MaxInt32 {
			return sqltype.Value{}, sqlforge.NewDeserializationError(t.String(), "value out of range")
		}
		return sqltype.NewValue(t, int32(n)), nil
	case sqltype.KindInt64:
		n, err := rawInt(raw)
		if err != nil {
			return sqltype.Value{}, sqlforge.NewDeserializationError(t.String(), "%v", err)
		}
		return sqltype.NewValue(t, n), nil
	case sqltype.KindFloat32:
		f, err := rawFloat(raw)
		if err != nil {
			return sqltype.Value{}, sqlforge.NewDeserializationError(t.String(), "%v", err)
		}
		return sqltype.NewValue(t, float32(f)), nil
	case sqltype.KindFloat64:
		f, err := rawFloat(raw)
		if err != nil {
			return sqltype.Value{}, sqlforge.NewDeserializationError(t.String(), "%v", err)
		}
		return sqltype.NewValue(t, f), nil
	case sqltype.KindDecimal:
		s, err := rawString(raw, nil)
		if err != nil {
			return sqltype.Value{}, sqlforge.NewDeserializationError(t.String(), "%v", err)
		}
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			return sqltype.Value{}, sqlforge.NewDeserializationError(t.String(), "malformed decimal literal")
		}
		return sqltype.NewValue(t, s), nil
	case sqltype.KindText:
		s, err := rawString(raw, c.textEnc)
		if err != nil {
			return sqltype.Value{}, sqlforge.NewDeserializationError(t.String(), "%v", err)
		}
		return sqltype.NewValue(t, s), nil
	case sqltype.KindBytes:
		b, ok := raw.([]byte)
		if !ok {
			return sqltype.Value{}, sqlforge.NewDeserializationError(t.String(), "unexpected wire type %T", raw)
		}
		out := make([]byte, len(b))
		copy(out, b)
		return sqltype.NewValue(t, out), nil
	case sqltype.KindDate:
		tm, err := rawTime(raw, "2006-01-02")
		if err != nil {
			return sqltype.Value{}, sqlforge.NewDeserializationError(t.String(), "%v", err)
		}
		return sqltype.NewValue(t, tm), nil
	case sqltype.KindTimestamp:
		tm, err := rawTime(raw, time.RFC3339Nano)
		if err != nil {
			return sqltype.Value{}, sqlforge.NewDeserializationError(t.String(), "%v", err)
		}
		return sqltype.NewValue(t, tm), nil
	case sqltype.KindUUID:
		u, err := rawUUID(raw)
		if err != nil {
			return sqltype.Value{}, sqlforge.NewDeserializationError(t.String(), "%v", err)
		}
		return sqltype.NewValue(t, u), nil
	case sqltype.KindJSON:
		s, err := rawString(raw, nil)
		if err != nil {
			return sqltype.Value{}, sqlforge.NewDeserializationError(t.String(), "%v", err)
		}
		return sqltype.NewValue(t, []byte(s)), nil
	}
	return sqltype.Value{}, sqlforge.NewDeserializationError(t.String(), "unsupported type")
}

// Raw value coercions. Drivers are loose about wire representations, so
// every plausible width and the textual forms MySQL emits are accepted.

func rawBool(raw any) (bool, error) {
	switch x := raw.(type) {
	case bool:
		return x, nil
	case int64:
		return x != 0, nil
	case int:
		return x != 0, nil
	case []byte:
		return parseBool(string(x))
	case string:
		return parseBool(x)
	}
	return false, fmt.Errorf("unexpected wire type %T", raw)
}

func parseBool(s string) (bool, error) {
	switch s {
	case "1", "true":
		return true, nil
	case "0", "false":
		return false, nil
	}
	return false, fmt.Errorf("malformed boolean literal %q", s)
}

func rawInt(raw any) (int64, error) {
	switch x := raw.(type) {
	case int64:
		return x, nil
	case int32:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case int:
		return int64(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return 0, fmt.Errorf("value out of range")
		}
		return int64(x), nil
	case []byte:
		return strconv.ParseInt(string(x), 10, 64)
	case string:
		return strconv.ParseInt(x, 10, 64)
	}
	return 0, fmt.Errorf("unexpected wire type %T", raw)
}

func rawFloat(raw any) (float64, error) {
	switch x := raw.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case []byte:
		return strconv.ParseFloat(string(x), 64)
	case string:
		return strconv.ParseFloat(x, 64)
	}
	return 0, fmt.Errorf("unexpected wire type %T", raw)
}

func rawString(raw any, enc encoding.Encoding) (string, error) {
	switch x := raw.(type) {
	case string:
		return x, nil
	case []byte:
		if enc != nil {
			b, err := enc.NewDecoder().Bytes(x)
			if err != nil {
				return "", fmt.Errorf("undecodable text: %v", err)
			}
			return string(b), nil
		}
		return string(x), nil
	}
	return "", fmt.Errorf("unexpected wire type %T", raw)
}

func rawTime(raw any, layout string) (time.Time, error) {
	switch x := raw.(type) {
	case time.Time:
		return x, nil
	case []byte:
		return parseTime(string(x), layout)
	case string:
		return parseTime(x, layout)
	}
	return time.Time{}, fmt.Errorf("unexpected wire type %T", raw)
}

func parseTime(s, layout string) (time.Time, error) {
	if t, err := time.Parse(layout, s); err == nil {
		return t, nil
	}
	// SQLite and MySQL commonly emit this form without a zone.
	t, err := time.Parse("2006-01-02 15:04:05", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed time literal %q", s)
	}
	return t, nil
}

func rawUUID(raw any) (uuid.UUID, error) {
	switch x := raw.(type) {
	case []byte:
		if len(x) == 16 {
			return uuid.FromBytes(x)
		}
		return uuid.Parse(string(x))
	case string:
		return uuid.Parse(x)
	}
	return uuid.UUID{}, fmt.Errorf("unexpected wire type %T", raw)
}
