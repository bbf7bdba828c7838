package stmt_test

import (
	"github.com/syssam/sqlforge/schema"
	"github.com/syssam/sqlforge/sqltype"
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

func newTags() *schema.Table {
	return schema.NewTable("tags",
		schema.NewColumn("id", sqltype.Int64),
		schema.NewColumn("label", sqltype.Text),
	)
}
