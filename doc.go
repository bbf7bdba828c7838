// Package sqlforge is a type-checked SQL statement construction engine.
//
// Statements are built as composable, immutable values; every builder step
// re-checks the validity rules affected by the new clause, so an invalid
// statement cannot be constructed, only fail with a typed error. A validated
// statement renders deterministically against a backend descriptor into SQL
// text plus an ordered list of bind slots, and per-backend codecs convert
// bound values to and from each engine's wire representation.
//
// # Packages
//
//   - sqltype:  logical SQL type tags, nullability, and typed values
//   - schema:   static table/column descriptors
//   - expr:     the typed expression model and operator constructors
//   - stmt:     SELECT/INSERT/UPDATE/DELETE builders and validity rules
//   - dialect:  backend descriptors and the driver contract
//   - render:   the dialect renderer producing SQL text and bind slots
//   - codec:    per-backend value serialization and deserialization
//   - exec:     the execution boundary over database/sql
//
// # Building a query
//
//	users := schema.NewTable("users",
//	    schema.NewColumn("id", sqltype.Int64),
//	    schema.NewColumn("name", sqltype.Text),
//	)
//	q := stmt.Select(expr.Col(users.C("id")), expr.Col(users.C("name"))).
//	    From(users).
//	    Where(expr.Eq(expr.Col(users.C("name")), expr.Text("ada"))).
//	    OrderBy(expr.Col(users.C("id")), stmt.Asc)
//	r, err := render.Statement(dialect.PostgresDescriptor, q)
//
// This package holds the error taxonomy shared by all of the above:
// BuildError, TypeMismatchError, SerializationError, DeserializationError
// and RenderError. All are returned as values and never panic; execution
// errors reported by a live database pass through unmodified.
package sqlforge
