package stmt

import (
	"github.com/syssam/sqlforge"
	"github.com/syssam/sqlforge/expr"
	"github.com/syssam/sqlforge/schema"
	"github.com/syssam/sqlforge/sqltype"
)

// DeleteStmt is a DELETE statement under construction. Start with Delete.
type DeleteStmt struct {
	table     *schema.Table
	where     expr.Expr
	returning []expr.Expr
	err       error
}

// Delete starts a DELETE from the given table.
func Delete(t *schema.Table) *DeleteStmt {
	return &DeleteStmt{table: t}
}

func (s *DeleteStmt) clone() *DeleteStmt {
	c := *s
	c.returning = append([]expr.Expr(nil), s.returning...)
	return &c
}

func (s *DeleteStmt) fail(err error) *DeleteStmt {
	if s.err == nil {
		s.err = err
	}
	return s
}

// Where adds a predicate, combined with any existing one via AND.
func (s *DeleteStmt) Where(p expr.Expr) *DeleteStmt {
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
func (s *DeleteStmt) Returning(exprs ...expr.Expr) *DeleteStmt {
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

// Err returns the first recorded violation.
func (s *DeleteStmt) Err() error { return s.err }

// OutputTypes returns the RETURNING projection types.
func (s *DeleteStmt) OutputTypes() []sqltype.Type {
	out := make([]sqltype.Type, len(s.returning))
	for i, e := range s.returning {
		out[i] = e.Type()
	}
	return out
}

// Accessors consumed by the renderer.

// Table returns the target table.
func (s *DeleteStmt) Table() *schema.Table { return s.table }

// WherePred returns the combined WHERE predicate, or nil.
func (s *DeleteStmt) WherePred() expr.Expr { return s.where }

// ReturningList returns the RETURNING projection.
func (s *DeleteStmt) ReturningList() []expr.Expr { return s.returning }
