package render_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/sqlforge"
	"github.com/syssam/sqlforge/dialect"
	"github.com/syssam/sqlforge/expr"
	"github.com/syssam/sqlforge/render"
	"github.com/syssam/sqlforge/schema"
	"github.com/syssam/sqlforge/sqltype"
	"github.com/syssam/sqlforge/stmt"
)

func newUsers() *schema.Table {
	return schema.NewTable("users",
		schema.NewColumn("id", sqltype.Int64),
		schema.NewColumn("name", sqltype.Text),
		schema.NewColumn("email", sqltype.Nullable(sqltype.Text)),
		schema.NewColumn("age", sqltype.Int32),
		schema.NewColumn("active", sqltype.Bool),
	)
}

func newPosts() *schema.Table {
	return schema.NewTable("posts",
		schema.NewColumn("id", sqltype.Int64),
		schema.NewColumn("user_id", sqltype.Int64),
		schema.NewColumn("title", sqltype.Text),
		schema.NewColumn("views", sqltype.Int64),
	)
}

func TestSelectPlaceholderStyles(t *testing.T) {
	users := newUsers()
	s := stmt.Select(expr.Col(users.C("id")), expr.Col(users.C("name"))).
		From(users).
		Where(expr.Eq(expr.Col(users.C("age")), expr.Int32(30))).
		OrderBy(expr.Col(users.C("id")), stmt.Asc)

	t.Run("Postgres", func(t *testing.T) {
		r, err := render.Statement(dialect.PostgresDescriptor, s.Limit(10).Offset(5))
		require.NoError(t, err)
		assert.Equal(t,
			`SELECT "users"."id", "users"."name" FROM "users" WHERE ("users"."age" = $1) ORDER BY "users"."id" ASC LIMIT 10 OFFSET 5`,
			r.SQL,
		)
		require.Len(t, r.Slots, 1)
		assert.Equal(t, 1, r.Slots[0].Position)
		assert.Equal(t, int32(30), r.Slots[0].Value.V)
	})

	t.Run("MySQL", func(t *testing.T) {
		r, err := render.Statement(dialect.MySQLDescriptor, s.Limit(10))
		require.NoError(t, err)
		assert.Equal(t,
			"SELECT `users`.`id`, `users`.`name` FROM `users` WHERE (`users`.`age` = ?) ORDER BY `users`.`id` ASC LIMIT 10",
			r.SQL,
		)
	})

	t.Run("SQLServer", func(t *testing.T) {
		r, err := render.Statement(dialect.SQLServerDescriptor, s.Limit(3))
		require.NoError(t, err)
		assert.Equal(t,
			"SELECT TOP 3 [users].[id], [users].[name] FROM [users] WHERE ([users].[age] = @p1) ORDER BY [users].[id] ASC",
			r.SQL,
		)
	})

	t.Run("SQLServerOffsetUnsupported", func(t *testing.T) {
		_, err := render.Statement(dialect.SQLServerDescriptor, s.Limit(3).Offset(1))
		assert.True(t, sqlforge.IsRender(err))
	})
}

func TestRenderDeterminism(t *testing.T) {
	users := newUsers()
	posts := newPosts()
	s := stmt.Select(expr.Col(users.C("name")), expr.CountStar()).
		From(users).
		Join(posts, expr.Eq(expr.Col(posts.C("user_id")), expr.Col(users.C("id")))).
		Where(expr.Gt(expr.Col(posts.C("views")), expr.Int64(100))).
		GroupBy(expr.Col(users.C("name"))).
		Having(expr.Gt(expr.CountStar(), expr.Int64(1)))

	first, err := render.Statement(dialect.PostgresDescriptor, s)
	require.NoError(t, err)
	second, err := render.Statement(dialect.PostgresDescriptor, s)
	require.NoError(t, err)
	assert.Equal(t, first.SQL, second.SQL)
	assert.Equal(t, first.Slots, second.Slots)

	assert.Equal(t,
		`SELECT "users"."name", count(*) FROM "users" JOIN "posts" ON ("posts"."user_id" = "users"."id") WHERE ("posts"."views" > $1) GROUP BY "users"."name" HAVING (count(*) > $2)`,
		first.SQL,
	)
}

func TestSlotOrder(t *testing.T) {
	users := newUsers()
	s := stmt.Select(expr.Col(users.C("id"))).
		From(users).
		Where(expr.And(
			expr.Eq(expr.Col(users.C("age")), expr.Int32(30)),
			expr.Eq(expr.Col(users.C("name")), expr.Text("ada")),
		))

	r, err := render.Statement(dialect.PostgresDescriptor, s)
	require.NoError(t, err)
	require.Len(t, r.Slots, 2)
	// Slots follow left-to-right traversal order and number from 1.
	assert.Equal(t, 1, r.Slots[0].Position)
	assert.Equal(t, int32(30), r.Slots[0].Value.V)
	assert.Equal(t, 2, r.Slots[1].Position)
	assert.Equal(t, "ada", r.Slots[1].Value.V)

	// Placeholder count matches slot count.
	assert.Equal(t, len(r.Slots), strings.Count(r.SQL, "$1")+strings.Count(r.SQL, "$2"))
}

func TestBooleanLiterals(t *testing.T) {
	users := newUsers()
	s := stmt.Select(expr.Col(users.C("id"))).
		From(users).
		Where(expr.Eq(expr.Col(users.C("active")), expr.Lit(sqltype.Bool, true)))

	t.Run("Keyword", func(t *testing.T) {
		r, err := render.Statement(dialect.PostgresDescriptor, s)
		require.NoError(t, err)
		assert.Contains(t, r.SQL, `("users"."active" = TRUE)`)
		// Inline booleans allocate no bind slot.
		assert.Empty(t, r.Slots)
	})

	t.Run("Integer", func(t *testing.T) {
		r, err := render.Statement(dialect.SQLiteDescriptor, s)
		require.NoError(t, err)
		assert.Contains(t, r.SQL, `("users"."active" = 1)`)
		assert.Empty(t, r.Slots)
	})

	t.Run("MistypedLiteralNeverPanics", func(t *testing.T) {
		// A literal whose Go value does not match its declared type is
		// rejected at construction, so the renderer only ever sees real bools.
		s := stmt.Select(expr.Col(users.C("id"))).
			From(users).
			Where(expr.Eq(expr.Col(users.C("active")), expr.Lit(sqltype.Bool, "yes")))
		assert.NotPanics(t, func() {
			_, err := render.Statement(dialect.PostgresDescriptor, s)
			assert.True(t, sqlforge.IsTypeMismatch(err))
		})
	})

	t.Run("NonBooleanLiteralBinds", func(t *testing.T) {
		s := stmt.Select(expr.Col(users.C("id"))).
			From(users).
			Where(expr.Eq(expr.Col(users.C("age")), expr.Lit(sqltype.Int32, int32(7))))
		r, err := render.Statement(dialect.PostgresDescriptor, s)
		require.NoError(t, err)
		require.Len(t, r.Slots, 1)
		assert.Equal(t, int32(7), r.Slots[0].Value.V)
	})
}

func TestNullSafeEquality(t *testing.T) {
	users := newUsers()
	s := stmt.Select(expr.Col(users.C("id"))).
		From(users).
		Where(expr.EqNullable(expr.Col(users.C("email")), expr.Text("a@b.c")))

	cases := []struct {
		d    dialect.Descriptor
		want string
	}{
		{dialect.PostgresDescriptor, `("users"."email" IS NOT DISTINCT FROM $1)`},
		{dialect.MySQLDescriptor, "(`users`.`email` <=> ?)"},
		{dialect.SQLiteDescriptor, `("users"."email" IS ?)`},
	}
	for _, c := range cases {
		t.Run(c.d.Name, func(t *testing.T) {
			r, err := render.Statement(c.d, s)
			require.NoError(t, err)
			assert.Contains(t, r.SQL, c.want)
		})
	}
}

func TestInList(t *testing.T) {
	users := newUsers()
	s := stmt.Select(expr.Col(users.C("id"))).
		From(users).
		Where(expr.In(expr.Col(users.C("age")), expr.Int32(1), expr.Int32(2)))

	r, err := render.Statement(dialect.PostgresDescriptor, s)
	require.NoError(t, err)
	assert.Contains(t, r.SQL, `("users"."age" IN ($1, $2))`)
	require.Len(t, r.Slots, 2)
}

func TestInSubquery(t *testing.T) {
	users := newUsers()
	posts := newPosts()
	sub := stmt.Select(expr.Col(posts.C("user_id"))).
		From(posts).
		Where(expr.Gt(expr.Col(posts.C("views")), expr.Int64(100)))
	s := stmt.Select(expr.Col(users.C("name"))).
		From(users).
		Where(expr.And(
			stmt.InSubquery(expr.Col(users.C("id")), sub),
			expr.Gt(expr.Col(users.C("age")), expr.Int32(21)),
		))

	r, err := render.Statement(dialect.PostgresDescriptor, s)
	require.NoError(t, err)
	// Placeholder numbering continues across the subquery boundary.
	assert.Equal(t,
		`SELECT "users"."name" FROM "users" WHERE (("users"."id" IN (SELECT "posts"."user_id" FROM "posts" WHERE ("posts"."views" > $1))) AND ("users"."age" > $2))`,
		r.SQL,
	)
	require.Len(t, r.Slots, 2)
	assert.Equal(t, int64(100), r.Slots[0].Value.V)
	assert.Equal(t, int32(21), r.Slots[1].Value.V)
}

func TestFunctionsAndAggregates(t *testing.T) {
	users := newUsers()
	s := stmt.Select(
		expr.Lower(expr.Col(users.C("name"))),
		expr.CountDistinct(expr.Col(users.C("age"))),
	).
		From(users).
		GroupBy(expr.Lower(expr.Col(users.C("name"))))

	r, err := render.Statement(dialect.PostgresDescriptor, s)
	require.NoError(t, err)
	assert.Contains(t, r.SQL, `lower("users"."name")`)
	assert.Contains(t, r.SQL, `count(DISTINCT "users"."age")`)
}

func TestInsertRendering(t *testing.T) {
	users := newUsers()

	t.Run("MultiRow", func(t *testing.T) {
		s := stmt.Insert(users).
			Columns(users.C("name"), users.C("age")).
			Values(expr.Text("ada"), expr.Int32(36)).
			Values(expr.Text("grace"), expr.Int32(45))
		r, err := render.Statement(dialect.PostgresDescriptor, s)
		require.NoError(t, err)
		assert.Equal(t,
			`INSERT INTO "users" ("name", "age") VALUES ($1, $2), ($3, $4)`,
			r.SQL,
		)
		require.Len(t, r.Slots, 4)
		assert.Equal(t, "grace", r.Slots[2].Value.V)
	})

	t.Run("Returning", func(t *testing.T) {
		s := stmt.Insert(users).
			Columns(users.C("name")).
			Values(expr.Text("ada")).
			Returning(expr.Col(users.C("id")))
		r, err := render.Statement(dialect.PostgresDescriptor, s)
		require.NoError(t, err)
		assert.Equal(t,
			`INSERT INTO "users" ("name") VALUES ($1) RETURNING "users"."id"`,
			r.SQL,
		)
		require.Len(t, r.Output, 1)
		assert.Equal(t, sqltype.Int64, r.Output[0])
	})

	t.Run("ReturningUnsupported", func(t *testing.T) {
		s := stmt.Insert(users).
			Columns(users.C("name")).
			Values(expr.Text("ada")).
			Returning(expr.Col(users.C("id")))
		_, err := render.Statement(dialect.MySQLDescriptor, s)
		assert.True(t, sqlforge.IsRender(err))
	})

	t.Run("FromSelect", func(t *testing.T) {
		posts := newPosts()
		sel := stmt.Select(expr.Col(posts.C("title"))).From(posts)
		s := stmt.Insert(users).Columns(users.C("name")).FromSelect(sel)
		r, err := render.Statement(dialect.PostgresDescriptor, s)
		require.NoError(t, err)
		assert.Equal(t,
			`INSERT INTO "users" ("name") SELECT "posts"."title" FROM "posts"`,
			r.SQL,
		)
	})
}

func TestUpsertForms(t *testing.T) {
	users := newUsers()
	base := stmt.Insert(users).
		Columns(users.C("name"), users.C("age")).
		Values(expr.Text("ada"), expr.Int32(36))

	t.Run("PostgresDoNothing", func(t *testing.T) {
		r, err := render.Statement(dialect.PostgresDescriptor, base.OnConflictDoNothing(users.C("name")))
		require.NoError(t, err)
		assert.Equal(t,
			`INSERT INTO "users" ("name", "age") VALUES ($1, $2) ON CONFLICT ("name") DO NOTHING`,
			r.SQL,
		)
	})

	t.Run("PostgresDoUpdate", func(t *testing.T) {
		s := base.OnConflictDoUpdate(users.C("name"), stmt.Set(users.C("age"), expr.Int32(37)))
		r, err := render.Statement(dialect.PostgresDescriptor, s)
		require.NoError(t, err)
		assert.Equal(t,
			`INSERT INTO "users" ("name", "age") VALUES ($1, $2) ON CONFLICT ("name") DO UPDATE SET "age" = $3`,
			r.SQL,
		)
		require.Len(t, r.Slots, 3)
		assert.Equal(t, int32(37), r.Slots[2].Value.V)
	})

	t.Run("MySQLDoNothing", func(t *testing.T) {
		r, err := render.Statement(dialect.MySQLDescriptor, base.OnConflictDoNothing(users.C("name")))
		require.NoError(t, err)
		assert.Equal(t,
			"INSERT IGNORE INTO `users` (`name`, `age`) VALUES (?, ?)",
			r.SQL,
		)
	})

	t.Run("MySQLDoUpdate", func(t *testing.T) {
		s := base.OnConflictDoUpdate(users.C("name"), stmt.Set(users.C("age"), expr.Int32(37)))
		r, err := render.Statement(dialect.MySQLDescriptor, s)
		require.NoError(t, err)
		assert.Equal(t,
			"INSERT INTO `users` (`name`, `age`) VALUES (?, ?) ON DUPLICATE KEY UPDATE `age` = ?",
			r.SQL,
		)
	})

	t.Run("SQLServerUnsupported", func(t *testing.T) {
		_, err := render.Statement(dialect.SQLServerDescriptor, base.OnConflictDoNothing(users.C("name")))
		assert.True(t, sqlforge.IsRender(err))
	})
}

func TestUpdateRendering(t *testing.T) {
	users := newUsers()
	s := stmt.Update(users).
		Set(users.C("name"), expr.Text("ada")).
		Set(users.C("age"), expr.Add(expr.Col(users.C("age")), expr.Int32(1))).
		Where(expr.Eq(expr.Col(users.C("id")), expr.Int64(1)))

	r, err := render.Statement(dialect.PostgresDescriptor, s)
	require.NoError(t, err)
	assert.Equal(t,
		`UPDATE "users" SET "name" = $1, "age" = ("users"."age" + $2) WHERE ("users"."id" = $3)`,
		r.SQL,
	)
	require.Len(t, r.Slots, 3)
}

func TestDeleteRendering(t *testing.T) {
	users := newUsers()

	t.Run("Filtered", func(t *testing.T) {
		s := stmt.Delete(users).Where(expr.Col(users.C("active")))
		r, err := render.Statement(dialect.PostgresDescriptor, s)
		require.NoError(t, err)
		assert.Equal(t, `DELETE FROM "users" WHERE "users"."active"`, r.SQL)
	})

	t.Run("Returning", func(t *testing.T) {
		s := stmt.Delete(users).Returning(expr.Col(users.C("id")))
		r, err := render.Statement(dialect.SQLiteDescriptor, s)
		require.NoError(t, err)
		assert.Equal(t, `DELETE FROM "users" RETURNING "users"."id"`, r.SQL)
	})

	t.Run("ReturningUnsupported", func(t *testing.T) {
		s := stmt.Delete(users).Returning(expr.Col(users.C("id")))
		_, err := render.Statement(dialect.SQLServerDescriptor, s)
		assert.True(t, sqlforge.IsRender(err))
	})
}

func TestInvalidStatementNeverRenders(t *testing.T) {
	users := newUsers()
	posts := newPosts()
	s := stmt.Select(expr.Col(posts.C("title"))).From(users)

	_, err := render.Statement(dialect.PostgresDescriptor, s)
	assert.True(t, sqlforge.ViolatesRule(err, sqlforge.RuleUnknownColumn))
}

func TestUnaryRendering(t *testing.T) {
	users := newUsers()
	s := stmt.Select(expr.Col(users.C("id"))).
		From(users).
		Where(expr.And(
			expr.Not(expr.Col(users.C("active"))),
			expr.IsNull(expr.Col(users.C("email"))),
		))

	r, err := render.Statement(dialect.PostgresDescriptor, s)
	require.NoError(t, err)
	assert.Contains(t, r.SQL, `NOT ("users"."active")`)
	assert.Contains(t, r.SQL, `("users"."email" IS NULL)`)
}
