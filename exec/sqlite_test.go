package exec_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/syssam/sqlforge/codec"
	"github.com/syssam/sqlforge/dialect"
	"github.com/syssam/sqlforge/exec"
	"github.com/syssam/sqlforge/expr"
	"github.com/syssam/sqlforge/render"
	"github.com/syssam/sqlforge/sqltype"
	"github.com/syssam/sqlforge/stmt"
)

// TestSQLiteIntegration runs the full pipeline against a real in-memory
// database: build, validate, render, serialize, execute, decode.
func TestSQLiteIntegration(t *testing.T) {
	drv, err := exec.Open("sqlite", ":memory:")
	require.NoError(t, err)
	defer drv.Close()
	// One connection keeps every statement on the same in-memory database.
	drv.DB().SetMaxOpenConns(1)

	ctx := context.Background()
	_, err = drv.DB().ExecContext(ctx, `
		CREATE TABLE users (
			id    INTEGER PRIMARY KEY AUTOINCREMENT,
			name  TEXT    NOT NULL UNIQUE,
			email TEXT,
			age   INTEGER NOT NULL
		)`)
	require.NoError(t, err)

	users := newUsers()
	c := codec.ByDialect(drv.Dialect())
	d := dialect.SQLiteDescriptor

	ins := stmt.Insert(users).
		Columns(users.C("name"), users.C("email"), users.C("age")).
		Values(expr.Text("ada"), expr.Null(sqltype.Nullable(sqltype.Text)), expr.Int32(36)).
		Values(expr.Text("grace"), expr.Text("grace@example.com"), expr.Int32(45))
	r, err := render.Statement(d, ins)
	require.NoError(t, err)
	res, err := exec.Run(ctx, drv, c, r)
	require.NoError(t, err)
	affected, err := res.RowsAffected()
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)

	sel := stmt.Select(expr.Col(users.C("name")), expr.Col(users.C("email")), expr.Col(users.C("age"))).
		From(users).
		Where(expr.Gt(expr.Col(users.C("age")), expr.Int32(0))).
		OrderBy(expr.Col(users.C("name")), stmt.Asc)
	r, err = render.Statement(d, sel)
	require.NoError(t, err)
	rows, err := exec.Fetch(ctx, drv, c, r)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "ada", rows[0][0].V)
	assert.True(t, rows[0][1].Null())
	assert.Equal(t, int32(36), rows[0][2].V)
	assert.Equal(t, "grace", rows[1][0].V)
	assert.Equal(t, "grace@example.com", rows[1][1].V)

	t.Run("UniqueViolation", func(t *testing.T) {
		dup := stmt.Insert(users).
			Columns(users.C("name"), users.C("age")).
			Values(expr.Text("ada"), expr.Int32(37))
		r, err := render.Statement(d, dup)
		require.NoError(t, err)
		_, err = exec.Run(ctx, drv, c, r)
		require.Error(t, err)
		assert.True(t, exec.IsUniqueConstraintError(err))
		assert.True(t, exec.IsConstraintError(err))
	})

	t.Run("Update", func(t *testing.T) {
		upd := stmt.Update(users).
			Set(users.C("age"), expr.Add(expr.Col(users.C("age")), expr.Int32(1))).
			Where(expr.Eq(expr.Col(users.C("name")), expr.Text("ada")))
		r, err := render.Statement(d, upd)
		require.NoError(t, err)
		res, err := exec.Run(ctx, drv, c, r)
		require.NoError(t, err)
		affected, err := res.RowsAffected()
		require.NoError(t, err)
		assert.Equal(t, int64(1), affected)
	})

	t.Run("Delete", func(t *testing.T) {
		del := stmt.Delete(users).
			Where(expr.Eq(expr.Col(users.C("name")), expr.Text("grace")))
		r, err := render.Statement(d, del)
		require.NoError(t, err)
		res, err := exec.Run(ctx, drv, c, r)
		require.NoError(t, err)
		affected, err := res.RowsAffected()
		require.NoError(t, err)
		assert.Equal(t, int64(1), affected)
	})

	t.Run("TxRollback", func(t *testing.T) {
		tx, err := drv.Tx(ctx)
		require.NoError(t, err)
		del := stmt.Delete(users)
		r, err := render.Statement(d, del)
		require.NoError(t, err)
		args, err := exec.Args(c, r.Slots)
		require.NoError(t, err)
		require.NoError(t, tx.Exec(ctx, r.SQL, args, nil))
		require.NoError(t, tx.Rollback())

		var count int
		require.NoError(t, drv.DB().QueryRowContext(ctx, "SELECT count(*) FROM users").Scan(&count))
		assert.Equal(t, 1, count)
	})
}
