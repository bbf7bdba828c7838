// Package render turns validated statements into dialect-correct SQL text
// plus an ordered list of bind slots.
//
// Rendering is a depth-first walk over the statement tree emitting tokens in
// SQL-grammar order. Every bound parameter and (non-boolean) literal
// allocates the next bind slot in strict left-to-right traversal order, so
// bind values line up positionally with emitted placeholders regardless of
// the backend's numbering scheme. Rendering is pure: it performs no I/O,
// holds no state across calls, and renders the same statement to
// byte-identical SQL every time.
package render

import (
	"strconv"
	"strings"

	"github.com/syssam/sqlforge"
	"github.com/syssam/sqlforge/dialect"
	"github.com/syssam/sqlforge/expr"
	"github.com/syssam/sqlforge/schema"
	"github.com/syssam/sqlforge/sqltype"
	"github.com/syssam/sqlforge/stmt"
)

// BindSlot is one ordered placeholder produced during rendering: a 1-based
// position paired with the typed value to bind there. Slots are created
// during rendering, serialized by a codec, consumed at execution, and never
// mutated.
type BindSlot struct {
	// Position is the slot's 1-based position in emission order.
	Position int
	// Value is the typed native value to bind.
	Value sqltype.Value
}

// Rendered is the output of rendering one statement.
type Rendered struct {
	// SQL is the dialect-correct statement text.
	SQL string
	// Slots are the bind slots in placeholder order.
	Slots []BindSlot
	// Output is the result-shape descriptor: the expected types of each
	// returned column, in order.
	Output []sqltype.Type
}

// Statement renders a validated statement against a backend descriptor. A
// statement whose Err is non-nil is never rendered; the engine does not
// guess a best-effort SQL form for an invalid statement.
func Statement(d dialect.Descriptor, s stmt.Statement) (*Rendered, error) {
	if err := s.Err(); err != nil {
		return nil, err
	}
	w := &writer{d: d}
	switch x := s.(type) {
	case *stmt.SelectStmt:
		w.selectStmt(x)
	case *stmt.InsertStmt:
		w.insertStmt(x)
	case *stmt.UpdateStmt:
		w.updateStmt(x)
	case *stmt.DeleteStmt:
		w.deleteStmt(x)
	default:
		return nil, sqlforge.NewRenderError(d.Name, "statement type")
	}
	if w.err != nil {
		return nil, w.err
	}
	return &Rendered{SQL: w.sb.String(), Slots: w.slots, Output: s.OutputTypes()}, nil
}

// writer accumulates SQL text and bind slots during one walk.
type writer struct {
	d     dialect.Descriptor
	sb    strings.Builder
	slots []BindSlot
	err   error
}

func (w *writer) fail(err error) {
	if w.err == nil {
		w.err = err
	}
}

func (w *writer) push(s string) {
	w.sb.WriteString(s)
}

// ident emits a quoted identifier. Descriptors come from generated schema
// definitions and are trusted; no quote escaping is applied.
func (w *writer) ident(name string) {
	w.sb.WriteByte(w.d.QuoteOpen)
	w.sb.WriteString(name)
	w.sb.WriteByte(w.d.QuoteClose)
}

// column emits a table-qualified column reference.
func (w *writer) column(c *schema.Column) {
	w.ident(c.Table().Name())
	w.sb.WriteByte('.')
	w.ident(c.Name())
}

// bind allocates the next bind slot and emits its placeholder.
func (w *writer) bind(v sqltype.Value) {
	pos := len(w.slots) + 1
	w.slots = append(w.slots, BindSlot{Position: pos, Value: v})
	switch w.d.Placeholder {
	case dialect.PlaceholderDollar:
		w.push("$" + strconv.Itoa(pos))
	case dialect.PlaceholderAtP:
		w.push("@p" + strconv.Itoa(pos))
	default:
		w.push("?")
	}
}

// boolLiteral emits an inline boolean in the backend's spelling.
func (w *writer) boolLiteral(v bool) {
	switch w.d.BoolLiteral {
	case dialect.BoolInteger:
		if v {
			w.push("1")
		} else {
			w.push("0")
		}
	default:
		if v {
			w.push("TRUE")
		} else {
			w.push("FALSE")
		}
	}
}

// expr renders one expression subtree.
func (w *writer) expr(e expr.Expr) {
	if w.err != nil {
		return
	}
	switch x := e.(type) {
	case *expr.ColumnExpr:
		w.column(x.Column())
	case *expr.ParamExpr:
		w.bind(x.Value())
	case *expr.LiteralExpr:
		// Boolean literals render inline: not every backend has TRUE/FALSE
		// keywords, and the descriptor records the spelling it does have.
		if val := x.Value(); val.Type.Kind() == sqltype.KindBool && !val.Null() {
			b, ok := val.V.(bool)
			if !ok {
				w.fail(sqlforge.NewRenderError(w.d.Name, "boolean literal"))
				return
			}
			w.boolLiteral(b)
			return
		}
		w.bind(x.Value())
	case *expr.UnaryExpr:
		w.unary(x)
	case *expr.BinaryExpr:
		w.binary(x)
	case *expr.FuncExpr:
		w.push(x.Name())
		w.push("(")
		for i, a := range x.Args() {
			if i > 0 {
				w.push(", ")
			}
			w.expr(a)
		}
		w.push(")")
	case *expr.AggregateExpr:
		w.push(x.Name())
		w.push("(")
		switch {
		case x.Arg() == nil:
			w.push("*")
		case x.Distinct():
			w.push("DISTINCT ")
			w.expr(x.Arg())
		default:
			w.expr(x.Arg())
		}
		w.push(")")
	case *expr.TupleExpr:
		w.push("(")
		for i, el := range x.Elems() {
			if i > 0 {
				w.push(", ")
			}
			w.expr(el)
		}
		w.push(")")
	case *stmt.SubqueryExpr:
		w.push("(")
		w.selectStmt(x.Select())
		w.push(")")
	default:
		w.fail(sqlforge.NewRenderError(w.d.Name, "expression variant"))
	}
}

func (w *writer) unary(x *expr.UnaryExpr) {
	switch x.Op() {
	case expr.OpNot:
		w.push("NOT (")
		w.expr(x.Operand())
		w.push(")")
	case expr.OpNeg:
		w.push("-(")
		w.expr(x.Operand())
		w.push(")")
	case expr.OpIsNull:
		w.push("(")
		w.expr(x.Operand())
		w.push(" IS NULL)")
	case expr.OpIsNotNull:
		w.push("(")
		w.expr(x.Operand())
		w.push(" IS NOT NULL)")
	}
}

func (w *writer) binary(x *expr.BinaryExpr) {
	op := x.Op().String()
	if x.Op() == expr.OpEqNullable {
		op = w.d.NullSafeEq
	}
	w.push("(")
	w.expr(x.Left())
	w.push(" " + op + " ")
	w.expr(x.Right())
	w.push(")")
}

// selectStmt renders a SELECT in SQL-grammar clause order.
func (w *writer) selectStmt(s *stmt.SelectStmt) {
	limit, hasLimit := s.LimitValue()
	offset, hasOffset := s.OffsetValue()

	w.push("SELECT ")
	if w.d.Limit == dialect.LimitTop && hasLimit {
		w.push("TOP " + strconv.Itoa(limit) + " ")
	}
	for i, e := range s.Projection() {
		if i > 0 {
			w.push(", ")
		}
		w.expr(e)
	}
	w.push(" FROM ")
	w.ident(s.FromTable().Name())
	for _, j := range s.Joins() {
		w.push(" " + j.Kind.String() + " ")
		w.ident(j.Table.Name())
		w.push(" ON ")
		w.expr(j.On)
	}
	if p := s.WherePred(); p != nil {
		w.push(" WHERE ")
		w.expr(p)
	}
	if groupBy := s.GroupByExprs(); len(groupBy) > 0 {
		w.push(" GROUP BY ")
		for i, e := range groupBy {
			if i > 0 {
				w.push(", ")
			}
			w.expr(e)
		}
	}
	if p := s.HavingPred(); p != nil {
		w.push(" HAVING ")
		w.expr(p)
	}
	if orderBy := s.OrderTerms(); len(orderBy) > 0 {
		w.push(" ORDER BY ")
		for i, t := range orderBy {
			if i > 0 {
				w.push(", ")
			}
			w.expr(t.Expr)
			w.push(" " + t.Dir.String())
		}
	}
	switch w.d.Limit {
	case dialect.LimitTop:
		if hasOffset {
			w.fail(sqlforge.NewRenderError(w.d.Name, "OFFSET"))
		}
	default:
		if hasLimit {
			w.push(" LIMIT " + strconv.Itoa(limit))
		}
		if hasOffset {
			w.push(" OFFSET " + strconv.Itoa(offset))
		}
	}
}

// insertStmt renders an INSERT; the column list order matches the VALUES row
// order exactly, by construction.
func (w *writer) insertStmt(s *stmt.InsertStmt) {
	conflict := s.Conflict()
	if conflict != nil && !w.d.SupportsUpsert {
		w.fail(sqlforge.NewRenderError(w.d.Name, "upsert"))
		return
	}
	mysqlStyle := w.d.Name == dialect.MySQL

	w.push("INSERT ")
	if conflict != nil && mysqlStyle && conflict.Action == stmt.ConflictDoNothing {
		// MySQL has no DO NOTHING form; INSERT IGNORE is its spelling.
		w.push("IGNORE ")
	}
	w.push("INTO ")
	w.ident(s.Table().Name())
	w.push(" (")
	for i, c := range s.ColumnList() {
		if i > 0 {
			w.push(", ")
		}
		w.ident(c.Name())
	}
	w.push(")")
	if src := s.Source(); src != nil {
		w.push(" ")
		w.selectStmt(src)
	} else {
		w.push(" VALUES ")
		for i, row := range s.Rows() {
			if i > 0 {
				w.push(", ")
			}
			w.push("(")
			for j, e := range row {
				if j > 0 {
					w.push(", ")
				}
				w.expr(e)
			}
			w.push(")")
		}
	}
	if conflict != nil {
		w.conflictClause(conflict, mysqlStyle)
	}
	w.returning(s.ReturningList())
}

func (w *writer) conflictClause(c *stmt.OnConflict, mysqlStyle bool) {
	if mysqlStyle {
		if c.Action == stmt.ConflictDoNothing {
			return // rendered as INSERT IGNORE
		}
		w.push(" ON DUPLICATE KEY UPDATE ")
		w.assignments(c.Set)
		return
	}
	w.push(" ON CONFLICT (")
	w.ident(c.Target.Name())
	w.push(")")
	if c.Action == stmt.ConflictDoNothing {
		w.push(" DO NOTHING")
		return
	}
	w.push(" DO UPDATE SET ")
	w.assignments(c.Set)
}

// assignments renders a SET list; targets are unqualified per SQL grammar.
func (w *writer) assignments(set []stmt.Assignment) {
	for i, a := range set {
		if i > 0 {
			w.push(", ")
		}
		w.ident(a.Column.Name())
		w.push(" = ")
		w.expr(a.Value)
	}
}

func (w *writer) returning(list []expr.Expr) {
	if len(list) == 0 {
		return
	}
	if !w.d.SupportsReturning {
		w.fail(sqlforge.NewRenderError(w.d.Name, "RETURNING"))
		return
	}
	w.push(" RETURNING ")
	for i, e := range list {
		if i > 0 {
			w.push(", ")
		}
		w.expr(e)
	}
}

func (w *writer) updateStmt(s *stmt.UpdateStmt) {
	w.push("UPDATE ")
	w.ident(s.Table().Name())
	w.push(" SET ")
	w.assignments(s.Assignments())
	if p := s.WherePred(); p != nil {
		w.push(" WHERE ")
		w.expr(p)
	}
	w.returning(s.ReturningList())
}

func (w *writer) deleteStmt(s *stmt.DeleteStmt) {
	w.push("DELETE FROM ")
	w.ident(s.Table().Name())
	if p := s.WherePred(); p != nil {
		w.push(" WHERE ")
		w.expr(p)
	}
	w.returning(s.ReturningList())
}
