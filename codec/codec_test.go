package codec_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/sqlforge"
	"github.com/syssam/sqlforge/codec"
	"github.com/syssam/sqlforge/dialect"
	"github.com/syssam/sqlforge/sqltype"
)

// roundTrip serializes a value and feeds the wire form straight back in.
func roundTrip(t *testing.T, c codec.Codec, v sqltype.Value) sqltype.Value {
	t.Helper()
	wire, err := c.Serialize(v)
	require.NoError(t, err)
	out, err := c.Deserialize(wire, v.Type)
	require.NoError(t, err)
	return out
}

func TestRoundTrip(t *testing.T) {
	u := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	ts := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	values := []sqltype.Value{
		sqltype.NewValue(sqltype.Bool, true),
		sqltype.NewValue(sqltype.Bool, false),
		sqltype.NewValue(sqltype.Int16, int16(-7)),
		sqltype.NewValue(sqltype.Int32, int32(1 << 20)),
		sqltype.NewValue(sqltype.Int64, int64(1<<40)),
		sqltype.NewValue(sqltype.Float32, float32(2.5)),
		sqltype.NewValue(sqltype.Float64, 3.25),
		sqltype.NewValue(sqltype.Decimal, "12.340"),
		sqltype.NewValue(sqltype.Text, "héllo"),
		sqltype.NewValue(sqltype.Bytes, []byte{0x00, 0xff}),
		sqltype.NewValue(sqltype.Date, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)),
		sqltype.NewValue(sqltype.Timestamp, ts),
		sqltype.NewValue(sqltype.UUID, u),
		sqltype.NewValue(sqltype.JSON, []byte(`{"a":1}`)),
	}
	for _, name := range []string{dialect.Postgres, dialect.MySQL, dialect.SQLite, dialect.SQLServer} {
		t.Run(name, func(t *testing.T) {
			c := codec.ByDialect(name)
			for _, v := range values {
				t.Run(v.Type.String(), func(t *testing.T) {
					got := roundTrip(t, c, v)
					if v.Type.Kind() == sqltype.KindDate || v.Type.Kind() == sqltype.KindTimestamp {
						assert.True(t, v.V.(time.Time).Equal(got.V.(time.Time)))
						return
					}
					assert.Equal(t, v.V, got.V)
				})
			}
		})
	}
}

func TestBoolWireForm(t *testing.T) {
	v := sqltype.NewValue(sqltype.Bool, true)

	t.Run("Postgres", func(t *testing.T) {
		wire, err := codec.ByDialect(dialect.Postgres).Serialize(v)
		require.NoError(t, err)
		assert.Equal(t, true, wire)
	})

	t.Run("SQLite", func(t *testing.T) {
		wire, err := codec.ByDialect(dialect.SQLite).Serialize(v)
		require.NoError(t, err)
		assert.Equal(t, int64(1), wire)
	})

	t.Run("MySQLFalse", func(t *testing.T) {
		wire, err := codec.ByDialect(dialect.MySQL).Serialize(sqltype.NewValue(sqltype.Bool, false))
		require.NoError(t, err)
		assert.Equal(t, int64(0), wire)
	})
}

func TestUUIDWireForm(t *testing.T) {
	u := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	v := sqltype.NewValue(sqltype.UUID, u)

	t.Run("Postgres", func(t *testing.T) {
		wire, err := codec.ByDialect(dialect.Postgres).Serialize(v)
		require.NoError(t, err)
		assert.Equal(t, u.String(), wire)
	})

	t.Run("MySQL", func(t *testing.T) {
		wire, err := codec.ByDialect(dialect.MySQL).Serialize(v)
		require.NoError(t, err)
		b, ok := wire.([]byte)
		require.True(t, ok)
		require.Len(t, b, 16)
		back, err := uuid.FromBytes(b)
		require.NoError(t, err)
		assert.Equal(t, u, back)
	})
}

func TestNullHandling(t *testing.T) {
	c := codec.ByDialect(dialect.Postgres)

	t.Run("NullableSerializes", func(t *testing.T) {
		wire, err := c.Serialize(sqltype.Null(sqltype.Nullable(sqltype.Text)))
		require.NoError(t, err)
		assert.Nil(t, wire)
	})

	t.Run("NonNullableRejected", func(t *testing.T) {
		_, err := c.Serialize(sqltype.Null(sqltype.Text))
		assert.True(t, sqlforge.IsSerialization(err))
	})

	t.Run("NullableDeserializes", func(t *testing.T) {
		v, err := c.Deserialize(nil, sqltype.Nullable(sqltype.Int64))
		require.NoError(t, err)
		assert.True(t, v.Null())
	})

	t.Run("NonNullableNullRejected", func(t *testing.T) {
		_, err := c.Deserialize(nil, sqltype.Int64)
		assert.True(t, sqlforge.IsDeserialization(err))
	})
}

func TestIntegerRanges(t *testing.T) {
	c := codec.ByDialect(dialect.Postgres)

	t.Run("SerializeOverflow", func(t *testing.T) {
		_, err := c.Serialize(sqltype.NewValue(sqltype.Int16, 70000))
		assert.True(t, sqlforge.IsSerialization(err))
	})

	t.Run("DeserializeOverflow", func(t *testing.T) {
		_, err := c.Deserialize(int64(70000), sqltype.Int16)
		assert.True(t, sqlforge.IsDeserialization(err))

		_, err = c.Deserialize(int64(1<<40), sqltype.Int32)
		assert.True(t, sqlforge.IsDeserialization(err))
	})

	t.Run("WithinRange", func(t *testing.T) {
		v, err := c.Deserialize(int64(-32768), sqltype.Int16)
		require.NoError(t, err)
		assert.Equal(t, int16(-32768), v.V)
	})
}

func TestRawCoercions(t *testing.T) {
	c := codec.ByDialect(dialect.MySQL)

	t.Run("IntFromBytes", func(t *testing.T) {
		v, err := c.Deserialize([]byte("42"), sqltype.Int64)
		require.NoError(t, err)
		assert.Equal(t, int64(42), v.V)
	})

	t.Run("IntFromNarrowWidth", func(t *testing.T) {
		v, err := c.Deserialize(int32(7), sqltype.Int64)
		require.NoError(t, err)
		assert.Equal(t, int64(7), v.V)
	})

	t.Run("BoolFromBytes", func(t *testing.T) {
		v, err := c.Deserialize([]byte("1"), sqltype.Bool)
		require.NoError(t, err)
		assert.Equal(t, true, v.V)

		v, err = c.Deserialize([]byte("false"), sqltype.Bool)
		require.NoError(t, err)
		assert.Equal(t, false, v.V)
	})

	t.Run("MalformedBool", func(t *testing.T) {
		_, err := c.Deserialize([]byte("garbage"), sqltype.Bool)
		assert.True(t, sqlforge.IsDeserialization(err))
	})

	t.Run("FloatFromString", func(t *testing.T) {
		v, err := c.Deserialize("2.5", sqltype.Float64)
		require.NoError(t, err)
		assert.Equal(t, 2.5, v.V)
	})

	t.Run("TimestampWithoutZone", func(t *testing.T) {
		v, err := c.Deserialize("2024-03-01 12:30:00", sqltype.Timestamp)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC), v.V)
	})

	t.Run("UnexpectedWireType", func(t *testing.T) {
		_, err := c.Deserialize(struct{}{}, sqltype.Int64)
		assert.True(t, sqlforge.IsDeserialization(err))
	})
}

func TestDecimal(t *testing.T) {
	c := codec.ByDialect(dialect.Postgres)

	t.Run("TravelsAsText", func(t *testing.T) {
		wire, err := c.Serialize(sqltype.NewValue(sqltype.Decimal, "99.990"))
		require.NoError(t, err)
		assert.Equal(t, "99.990", wire)
	})

	t.Run("MalformedSerialize", func(t *testing.T) {
		_, err := c.Serialize(sqltype.NewValue(sqltype.Decimal, "not a number"))
		assert.True(t, sqlforge.IsSerialization(err))
	})

	t.Run("MalformedDeserialize", func(t *testing.T) {
		_, err := c.Deserialize("not a number", sqltype.Decimal)
		assert.True(t, sqlforge.IsDeserialization(err))
	})
}

func TestMismatchedNative(t *testing.T) {
	c := codec.ByDialect(dialect.Postgres)
	_, err := c.Serialize(sqltype.NewValue(sqltype.Text, 42))
	assert.True(t, sqlforge.IsSerialization(err))
}

func TestLatin1Text(t *testing.T) {
	c := codec.ByDialect(dialect.MySQL, codec.WithLatin1Text())

	wire, err := c.Serialize(sqltype.NewValue(sqltype.Text, "café"))
	require.NoError(t, err)
	b, ok := wire.([]byte)
	require.True(t, ok)
	assert.Equal(t, []byte{'c', 'a', 'f', 0xe9}, b)

	v, err := c.Deserialize(b, sqltype.Text)
	require.NoError(t, err)
	assert.Equal(t, "café", v.V)

	t.Run("Unrepresentable", func(t *testing.T) {
		_, err := c.Serialize(sqltype.NewValue(sqltype.Text, "日本語"))
		assert.Error(t, err)
	})
}
