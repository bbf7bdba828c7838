package stmt

import (
	"github.com/syssam/sqlforge"
	"github.com/syssam/sqlforge/expr"
	"github.com/syssam/sqlforge/schema"
	"github.com/syssam/sqlforge/sqltype"
)

// UpdateStmt is an UPDATE statement under construction. Start with Update.
type UpdateStmt struct {
	table     *schema.Table
	set       []Assignment
	where     expr.Expr
	returning []expr.Expr
	err       error
}

// Update starts an UPDATE of the given table.
func Update(t *schema.Table) *UpdateStmt {
	return &UpdateStmt{table: t}
}

func (s *UpdateStmt) clone() *UpdateStmt {
	c := *s
	c.set = append([]Assignment(nil), s.set...)
	c.returning = append([]expr.Expr(nil), s.returning...)
	return &c
}

func (s *UpdateStmt) fail(err error) *UpdateStmt {
	if s.err == nil {
		s.err = err
	}
	return s
}

// Set assigns an expression to a column. Assigning the same column twice is
// a DuplicateSetColumn violation.
func (s *UpdateStmt) Set(col *schema.Column, v expr.Expr) *UpdateStmt {
	c := s.clone()
	if c.err != nil {
		return c
	}
	next := append(append([]Assignment(nil), c.set...), Assignment{Column: col, Value: v})
	if err := checkAssignments(c.table, next); err != nil {
		return c.fail(err)
	}
	c.set = next
	return c
}

// Where adds a predicate, combined with any existing one via AND.
func (s *UpdateStmt) Where(p expr.Expr) *UpdateStmt {
	c := s.clone()
	if c.err != nil {
		return c
	}
	if err := checkPredicate("WHERE", p); err != nil {
		return c.fail(err)
	}
	if containsAggregate(p) {
		return c.fail(sqlforge.NewBuildError(sqlforge.RuleAggregateInWhere, "aggregate in WHERE predicate"))
	}
	if err := checkMembership(tableSet{c.table}, p); err != nil {
		return c.fail(err)
	}
	if c.where == nil {
		c.where = p
	} else {
		c.where = expr.And(c.where, p)
	}
	return c
}

// Returning sets the RETURNING projection; aggregates are rejected.
func (s *UpdateStmt) Returning(exprs ...expr.Expr) *UpdateStmt {
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

// Err returns the first recorded violation, verifying at least one
// assignment exists.
func (s *UpdateStmt) Err() error {
	if s.err != nil {
		return s.err
	}
	if len(s.set) == 0 {
		return sqlforge.NewBuildError(sqlforge.RuleEmptyValues, "UPDATE without SET assignments")
	}
	return nil
}

// OutputTypes returns the RETURNING projection types.
func (s *UpdateStmt) OutputTypes() []sqltype.Type {
	out := make([]sqltype.Type, len(s.returning))
	for i, e := range s.returning {
		out[i] = e.Type()
	}
	return out
}

// Accessors consumed by the renderer.

// Table returns the target table.
func (s *UpdateStmt) Table() *schema.Table { return s.table }

// Assignments returns the SET list in declaration order.
func (s *UpdateStmt) Assignments() []Assignment { return s.set }

// WherePred returns the combined WHERE predicate, or nil.
func (s *UpdateStmt) WherePred() expr.Expr { return s.where }

// ReturningList returns the RETURNING projection.
func (s *UpdateStmt) ReturningList() []expr.Expr { return s.returning }
