package stmt

import (
	"github.com/syssam/sqlforge"
	"github.com/syssam/sqlforge/expr"
	"github.com/syssam/sqlforge/schema"
	"github.com/syssam/sqlforge/sqltype"
)

// ConflictAction selects the behavior of an upsert clause.
type ConflictAction uint8

const (
	// ConflictDoNothing skips conflicting rows.
	ConflictDoNothing ConflictAction = iota
	// ConflictDoUpdate updates conflicting rows with the clause's
	// assignments.
	ConflictDoUpdate
)

// OnConflict is an upsert clause: what to do when an insert conflicts on the
// target column.
type OnConflict struct {
	Action ConflictAction
	// Target is the conflicting column (the unique or primary key column).
	Target *schema.Column
	// Set holds the DO UPDATE assignments; empty for DO NOTHING.
	Set []Assignment
}

// InsertStmt is an INSERT statement under construction. Start with Insert.
type InsertStmt struct {
	table     *schema.Table
	columns   []*schema.Column
	rows      [][]expr.Expr
	source    *SelectStmt
	returning []expr.Expr
	conflict  *OnConflict
	err       error
}

// Insert starts an INSERT into the given table.
func Insert(t *schema.Table) *InsertStmt {
	return &InsertStmt{table: t}
}

func (s *InsertStmt) clone() *InsertStmt {
	c := *s
	c.columns = append([]*schema.Column(nil), s.columns...)
	c.rows = append([][]expr.Expr(nil), s.rows...)
	c.returning = append([]expr.Expr(nil), s.returning...)
	return &c
}

func (s *InsertStmt) fail(err error) *InsertStmt {
	if s.err == nil {
		s.err = err
	}
	return s
}

// Columns sets the insert column list. Every column must belong to the
// target table and appear once.
func (s *InsertStmt) Columns(cols ...*schema.Column) *InsertStmt {
	c := s.clone()
	if c.err != nil {
		return c
	}
	seen := make(map[*schema.Column]struct{}, len(cols))
	for _, col := range cols {
		if col.Table() != c.table {
			return c.fail(sqlforge.NewBuildError(
				sqlforge.RuleUnknownColumn,
				"column %s does not belong to table %s", col.QualifiedName(), c.table.Name(),
			))
		}
		if _, dup := seen[col]; dup {
			return c.fail(sqlforge.NewBuildError(
				sqlforge.RuleDuplicateSetColumn,
				"column %s listed twice", col.QualifiedName(),
			))
		}
		seen[col] = struct{}{}
	}
	c.columns = append(c.columns, cols...)
	return c
}

// Values appends one VALUES row. The row must match the column list in
// arity, each value must be assignable to its column, and rows are row-level
// clauses: aggregates are rejected.
func (s *InsertStmt) Values(row ...expr.Expr) *InsertStmt {
	c := s.clone()
	if c.err != nil {
		return c
	}
	if c.source != nil {
		return c.fail(sqlforge.NewBuildError(sqlforge.RuleConflictingSource, "VALUES after a SELECT source"))
	}
	if len(c.columns) == 0 {
		return c.fail(sqlforge.NewBuildError(sqlforge.RuleEmptyValues, "VALUES before Columns"))
	}
	if len(row) != len(c.columns) {
		return c.fail(sqlforge.NewBuildError(
			sqlforge.RuleValuesArity,
			"VALUES row has %d expressions for %d columns", len(row), len(c.columns),
		))
	}
	if err := checkRowLevel("VALUES", row...); err != nil {
		return c.fail(err)
	}
	for i, e := range row {
		col := c.columns[i]
		if !sqltype.AssignableTo(e.Type(), col.Type()) {
			return c.fail(sqlforge.NewTypeMismatchError("INSERT "+col.QualifiedName(), e.Type().String(), col.Type().String()))
		}
	}
	c.rows = append(c.rows, row)
	return c
}

// FromSelect uses a SELECT statement as the insert source. Its projection
// must match the column list in arity and assignability.
func (s *InsertStmt) FromSelect(sel *SelectStmt) *InsertStmt {
	c := s.clone()
	if c.err != nil {
		return c
	}
	if len(c.rows) > 0 {
		return c.fail(sqlforge.NewBuildError(sqlforge.RuleConflictingSource, "SELECT source after VALUES"))
	}
	if len(c.columns) == 0 {
		return c.fail(sqlforge.NewBuildError(sqlforge.RuleEmptyValues, "SELECT source before Columns"))
	}
	if err := sel.Err(); err != nil {
		return c.fail(err)
	}
	out := sel.OutputTypes()
	if len(out) != len(c.columns) {
		return c.fail(sqlforge.NewBuildError(
			sqlforge.RuleValuesArity,
			"SELECT source has %d columns for %d insert columns", len(out), len(c.columns),
		))
	}
	for i, t := range out {
		col := c.columns[i]
		if !sqltype.AssignableTo(t, col.Type()) {
			return c.fail(sqlforge.NewTypeMismatchError("INSERT "+col.QualifiedName(), t.String(), col.Type().String()))
		}
	}
	c.source = sel
	return c
}

// Returning sets the RETURNING projection. RETURNING is row-level, so
// aggregate expressions are rejected, and every column must belong to the
// target table. Whether the backend supports RETURNING at all is a render
// time concern.
func (s *InsertStmt) Returning(exprs ...expr.Expr) *InsertStmt {
	c := s.clone()
	if c.err != nil {
		return c
	}
	if err := checkRowLevel("RETURNING", exprs...); err != nil {
		return c.fail(err)
	}
	if err := checkMembership(tableSet{c.table}, exprs...); err != nil {
		return c.fail(err)
	}
	c.returning = append(c.returning, exprs...)
	return c
}

// OnConflictDoNothing makes conflicting rows on the target column be
// skipped.
func (s *InsertStmt) OnConflictDoNothing(target *schema.Column) *InsertStmt {
	return s.onConflict(&OnConflict{Action: ConflictDoNothing, Target: target})
}

// OnConflictDoUpdate makes conflicting rows on the target column be updated
// with the given assignments.
func (s *InsertStmt) OnConflictDoUpdate(target *schema.Column, set ...Assignment) *InsertStmt {
	return s.onConflict(&OnConflict{Action: ConflictDoUpdate, Target: target, Set: set})
}

func (s *InsertStmt) onConflict(oc *OnConflict) *InsertStmt {
	c := s.clone()
	if c.err != nil {
		return c
	}
	if c.conflict != nil {
		return c.fail(sqlforge.NewBuildError(sqlforge.RuleConflictingSource, "ON CONFLICT declared twice"))
	}
	if oc.Target.Table() != c.table {
		return c.fail(sqlforge.NewBuildError(
			sqlforge.RuleUnknownColumn,
			"conflict target %s does not belong to table %s", oc.Target.QualifiedName(), c.table.Name(),
		))
	}
	if err := checkAssignments(c.table, oc.Set); err != nil {
		return c.fail(err)
	}
	c.conflict = oc
	return c
}

// checkAssignments validates SET-style assignment lists shared by upsert and
// UPDATE: unique target columns of the right table, assignable row-level
// values.
func checkAssignments(t *schema.Table, set []Assignment) error {
	seen := make(map[*schema.Column]struct{}, len(set))
	for _, a := range set {
		if a.Column.Table() != t {
			return sqlforge.NewBuildError(
				sqlforge.RuleUnknownColumn,
				"column %s does not belong to table %s", a.Column.QualifiedName(), t.Name(),
			)
		}
		if _, dup := seen[a.Column]; dup {
			return sqlforge.NewBuildError(
				sqlforge.RuleDuplicateSetColumn,
				"column %s assigned twice", a.Column.QualifiedName(),
			)
		}
		seen[a.Column] = struct{}{}
		if err := checkRowLevel("SET", a.Value); err != nil {
			return err
		}
		if err := checkMembership(tableSet{t}, a.Value); err != nil {
			return err
		}
		if !sqltype.AssignableTo(a.Value.Type(), a.Column.Type()) {
			return sqlforge.NewTypeMismatchError("SET "+a.Column.QualifiedName(), a.Value.Type().String(), a.Column.Type().String())
		}
	}
	return nil
}

// Err returns the first recorded violation, verifying the statement has a
// source.
func (s *InsertStmt) Err() error {
	if s.err != nil {
		return s.err
	}
	if len(s.columns) == 0 {
		return sqlforge.NewBuildError(sqlforge.RuleEmptyValues, "INSERT without a column list")
	}
	if len(s.rows) == 0 && s.source == nil {
		return sqlforge.NewBuildError(sqlforge.RuleEmptyValues, "INSERT without VALUES or a SELECT source")
	}
	return nil
}

// OutputTypes returns the RETURNING projection types, empty when the
// statement returns nothing.
func (s *InsertStmt) OutputTypes() []sqltype.Type {
	out := make([]sqltype.Type, len(s.returning))
	for i, e := range s.returning {
		out[i] = e.Type()
	}
	return out
}

// Accessors consumed by the renderer.

// Table returns the target table.
func (s *InsertStmt) Table() *schema.Table { return s.table }

// ColumnList returns the insert columns in declaration order.
func (s *InsertStmt) ColumnList() []*schema.Column { return s.columns }

// Rows returns the VALUES rows in declaration order.
func (s *InsertStmt) Rows() [][]expr.Expr { return s.rows }

// Source returns the SELECT source, or nil.
func (s *InsertStmt) Source() *SelectStmt { return s.source }

// ReturningList returns the RETURNING projection.
func (s *InsertStmt) ReturningList() []expr.Expr { return s.returning }

// Conflict returns the upsert clause, or nil.
func (s *InsertStmt) Conflict() *OnConflict { return s.conflict }
