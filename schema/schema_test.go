package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/sqlforge/schema"
	"github.com/syssam/sqlforge/sqltype"
)

func TestTable(t *testing.T) {
	users := schema.NewTable("users",
		schema.NewColumn("id", sqltype.Int64),
		schema.NewColumn("name", sqltype.Text),
		schema.NewColumn("email", sqltype.Nullable(sqltype.Text)),
	)

	t.Run("Lookup", func(t *testing.T) {
		id := users.C("id")
		require.NotNil(t, id)
		assert.Equal(t, "id", id.Name())
		assert.Equal(t, sqltype.Int64, id.Type())
		assert.Equal(t, users, id.Table())
		assert.Equal(t, "users.id", id.QualifiedName())

		assert.Nil(t, users.C("nope"))
	})

	t.Run("Columns", func(t *testing.T) {
		cols := users.Columns()
		require.Len(t, cols, 3)
		assert.Equal(t, "id", cols[0].Name())
		assert.Equal(t, "email", cols[2].Name())
	})

	t.Run("DuplicateColumnPanics", func(t *testing.T) {
		assert.Panics(t, func() {
			schema.NewTable("bad",
				schema.NewColumn("x", sqltype.Int64),
				schema.NewColumn("x", sqltype.Text),
			)
		})
	})

	t.Run("ClaimedColumnPanics", func(t *testing.T) {
		assert.Panics(t, func() {
			schema.NewTable("other", users.C("id"))
		})
	})
}
