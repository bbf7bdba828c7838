// Package schema holds the static table and column descriptors consumed by
// the expression model.
//
// Descriptors are the shape a schema code-generation step produces: created
// once at schema-definition time, immutable afterwards, and referenced (not
// owned) by every column expression built against them. The engine trusts
// them; it never validates descriptors against a live database.
package schema

import (
	"fmt"

	"github.com/syssam/sqlforge/sqltype"
)

// Column describes one column of a table: its name, its logical SQL type and
// a back-reference to the owning table.
type Column struct {
	table *Table
	name  string
	typ   sqltype.Type
}

// NewColumn returns a column descriptor for use with NewTable.
func NewColumn(name string, typ sqltype.Type) *Column {
	return &Column{name: name, typ: typ}
}

// Name returns the column name.
func (c *Column) Name() string { return c.name }

// Type returns the column's logical SQL type.
func (c *Column) Type() sqltype.Type { return c.typ }

// Table returns the owning table.
func (c *Column) Table() *Table { return c.table }

// QualifiedName returns "table.column" for diagnostics.
func (c *Column) QualifiedName() string {
	if c.table == nil {
		return c.name
	}
	return c.table.name + "." + c.name
}

// Table describes a database table and its columns.
type Table struct {
	name    string
	columns []*Column
	byName  map[string]*Column
}

// NewTable returns a table descriptor owning the given columns. It panics on
// a duplicate column name or a column already claimed by another table;
// descriptors are built once by generated code, so a malformed definition is
// a programming error, not a runtime condition.
func NewTable(name string, columns ...*Column) *Table {
	t := &Table{
		name:    name,
		columns: columns,
		byName:  make(map[string]*Column, len(columns)),
	}
	for _, c := range columns {
		if c.table != nil {
			panic(fmt.Sprintf("schema: column %q already belongs to table %q", c.name, c.table.name))
		}
		if _, ok := t.byName[c.name]; ok {
			panic(fmt.Sprintf("schema: duplicate column %q in table %q", c.name, name))
		}
		c.table = t
		t.byName[c.name] = c
	}
	return t
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// Columns returns the table's columns in declaration order. The returned
// slice must not be mutated.
func (t *Table) Columns() []*Column { return t.columns }

// C returns the column with the given name, or nil if the table has no such
// column.
func (t *Table) C(name string) *Column { return t.byName[name] }
