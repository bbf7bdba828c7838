package stmt

import (
	"github.com/syssam/sqlforge"
	"github.com/syssam/sqlforge/expr"
	"github.com/syssam/sqlforge/schema"
	"github.com/syssam/sqlforge/sqltype"
)

// JoinKind is the kind of a JOIN clause.
type JoinKind uint8

const (
	// InnerJoin keeps rows matched on both sides.
	InnerJoin JoinKind = iota
	// LeftJoin keeps unmatched rows of the left side.
	LeftJoin
	// RightJoin keeps unmatched rows of the right side.
	RightJoin
)

// String returns the SQL keyword sequence.
func (k JoinKind) String() string {
	switch k {
	case LeftJoin:
		return "LEFT JOIN"
	case RightJoin:
		return "RIGHT JOIN"
	default:
		return "JOIN"
	}
}

// Join is one JOIN clause: a table and its ON predicate.
type Join struct {
	Kind  JoinKind
	Table *schema.Table
	On    expr.Expr
}

// SelectStmt is a SELECT statement under construction. The zero value is not
// usable; start with Select.
type SelectStmt struct {
	proj      []expr.Expr
	from      *schema.Table
	joins     []Join
	where     expr.Expr
	groupBy   []expr.Expr
	having    expr.Expr
	orderBy   []OrderTerm
	limit     int
	hasLimit  bool
	offset    int
	hasOffset bool
	err       error
}

// Select starts a SELECT statement with the given projection.
func Select(projection ...expr.Expr) *SelectStmt {
	s := &SelectStmt{proj: projection}
	if len(projection) == 0 {
		s.err = sqlforge.NewBuildError(sqlforge.RuleEmptyValues, "SELECT with an empty projection")
		return s
	}
	// Per-row entries are checked against GROUP BY at finalization, not
	// here: GROUP BY may legally arrive after the projection.
	for _, e := range projection {
		if err := e.Err(); err != nil {
			s.err = err
			return s
		}
	}
	return s
}

// clone returns a copy sharing unchanged substructure.
func (s *SelectStmt) clone() *SelectStmt {
	c := *s
	c.proj = append([]expr.Expr(nil), s.proj...)
	c.joins = append([]Join(nil), s.joins...)
	c.groupBy = append([]expr.Expr(nil), s.groupBy...)
	c.orderBy = append([]OrderTerm(nil), s.orderBy...)
	return &c
}

// fail records the first validity violation.
func (s *SelectStmt) fail(err error) *SelectStmt {
	if s.err == nil {
		s.err = err
	}
	return s
}

// tables returns the current FROM/JOIN table set.
func (s *SelectStmt) tables() tableSet {
	ts := make(tableSet, 0, len(s.joins)+1)
	if s.from != nil {
		ts = append(ts, s.from)
	}
	for _, j := range s.joins {
		ts = append(ts, j.Table)
	}
	return ts
}

// From sets the primary table and verifies the projection's column
// membership against it.
func (s *SelectStmt) From(t *schema.Table) *SelectStmt {
	c := s.clone()
	if c.err != nil {
		return c
	}
	if c.from != nil {
		return c.fail(sqlforge.NewBuildError(sqlforge.RuleDuplicateTable, "FROM already set to %s", c.from.Name()))
	}
	// Projection membership is deferred to Err: the projection may
	// reference tables joined after FROM.
	c.from = t
	return c
}

// Join adds an inner join on the given table.
func (s *SelectStmt) Join(t *schema.Table, on expr.Expr) *SelectStmt {
	return s.join(InnerJoin, t, on)
}

// LeftJoin adds a left outer join on the given table.
func (s *SelectStmt) LeftJoin(t *schema.Table, on expr.Expr) *SelectStmt {
	return s.join(LeftJoin, t, on)
}

// RightJoin adds a right outer join on the given table.
func (s *SelectStmt) RightJoin(t *schema.Table, on expr.Expr) *SelectStmt {
	return s.join(RightJoin, t, on)
}

func (s *SelectStmt) join(kind JoinKind, t *schema.Table, on expr.Expr) *SelectStmt {
	c := s.clone()
	if c.err != nil {
		return c
	}
	if c.from == nil {
		return c.fail(sqlforge.NewBuildError(sqlforge.RuleMissingFrom, "JOIN %s before FROM", t.Name()))
	}
	reachable := c.tables()
	if reachable.contains(t) {
		return c.fail(sqlforge.NewBuildError(sqlforge.RuleDuplicateTable, "table %s already joined", t.Name()))
	}
	if err := checkPredicate("ON", on); err != nil {
		return c.fail(err)
	}
	if containsAggregate(on) {
		return c.fail(sqlforge.NewBuildError(sqlforge.RuleAggregateInWhere, "aggregate in JOIN ON predicate"))
	}
	// Every column of the ON predicate must belong to the joined table or
	// an already-reachable one, and the predicate must connect the two.
	joined := append(append(tableSet{}, reachable...), t)
	if err := checkMembership(joined, on); err != nil {
		return c.fail(err)
	}
	var touchesNew, touchesReachable bool
	for _, col := range expr.Columns(on) {
		if col.Table() == t {
			touchesNew = true
		} else if reachable.contains(col.Table()) {
			touchesReachable = true
		}
	}
	if !touchesNew || !touchesReachable {
		return c.fail(sqlforge.NewBuildError(
			sqlforge.RuleDisconnectedJoin,
			"ON predicate does not connect %s to the FROM/JOIN set", t.Name(),
		))
	}
	c.joins = append(c.joins, Join{Kind: kind, Table: t, On: on})
	return c
}

// Where adds a predicate, combined with any existing one via AND.
func (s *SelectStmt) Where(p expr.Expr) *SelectStmt {
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
	if err := checkMembership(c.tables(), p); err != nil {
		return c.fail(err)
	}
	if c.where == nil {
		c.where = p
	} else {
		c.where = expr.And(c.where, p)
	}
	return c
}

// GroupBy adds grouping expressions. Grouping expressions must be per-row.
func (s *SelectStmt) GroupBy(exprs ...expr.Expr) *SelectStmt {
	c := s.clone()
	if c.err != nil {
		return c
	}
	for _, e := range exprs {
		if err := e.Err(); err != nil {
			return c.fail(err)
		}
		if containsAggregate(e) {
			return c.fail(sqlforge.NewBuildError(sqlforge.RuleMixedAggregates, "aggregate in GROUP BY"))
		}
	}
	if err := checkMembership(c.tables(), exprs...); err != nil {
		return c.fail(err)
	}
	c.groupBy = append(c.groupBy, exprs...)
	return c
}

// Having adds a group-level predicate, combined with any existing one via
// AND. Unlike WHERE, aggregates are allowed here.
func (s *SelectStmt) Having(p expr.Expr) *SelectStmt {
	c := s.clone()
	if c.err != nil {
		return c
	}
	if err := checkPredicate("HAVING", p); err != nil {
		return c.fail(err)
	}
	if err := checkMembership(c.tables(), p); err != nil {
		return c.fail(err)
	}
	if c.having == nil {
		c.having = p
	} else {
		c.having = expr.And(c.having, p)
	}
	return c
}

// OrderBy appends an ordering term.
func (s *SelectStmt) OrderBy(e expr.Expr, dir OrderDirection) *SelectStmt {
	c := s.clone()
	if c.err != nil {
		return c
	}
	if err := e.Err(); err != nil {
		return c.fail(err)
	}
	if err := checkMembership(c.tables(), e); err != nil {
		return c.fail(err)
	}
	c.orderBy = append(c.orderBy, OrderTerm{Expr: e, Dir: dir})
	return c
}

// Limit caps the number of returned rows.
func (s *SelectStmt) Limit(n int) *SelectStmt {
	c := s.clone()
	if c.err != nil {
		return c
	}
	if n < 0 {
		return c.fail(sqlforge.NewBuildError(sqlforge.RuleNegativeLimit, "LIMIT %d", n))
	}
	c.limit, c.hasLimit = n, true
	return c
}

// Offset skips the first n rows.
func (s *SelectStmt) Offset(n int) *SelectStmt {
	c := s.clone()
	if c.err != nil {
		return c
	}
	if n < 0 {
		return c.fail(sqlforge.NewBuildError(sqlforge.RuleNegativeLimit, "OFFSET %d", n))
	}
	c.offset, c.hasOffset = n, true
	return c
}

// Err returns the first recorded violation, after running the rules that can
// only be decided on the final shape (FROM presence, grouping consistency
// over the projection and ORDER BY list).
func (s *SelectStmt) Err() error {
	if s.err != nil {
		return s.err
	}
	if s.from == nil {
		return sqlforge.NewBuildError(sqlforge.RuleMissingFrom, "SELECT without FROM")
	}
	if err := checkMembership(s.tables(), s.proj...); err != nil {
		return err
	}
	if err := checkGrouping(s.proj, s.groupBy); err != nil {
		return err
	}
	if len(s.orderBy) > 0 {
		terms := make([]expr.Expr, len(s.orderBy))
		for i, t := range s.orderBy {
			terms[i] = t.Expr
		}
		if err := checkGrouping(append(append([]expr.Expr(nil), s.proj...), terms...), s.groupBy); err != nil {
			return err
		}
	}
	return nil
}

// OutputTypes returns the projection's types in order.
func (s *SelectStmt) OutputTypes() []sqltype.Type {
	out := make([]sqltype.Type, len(s.proj))
	for i, e := range s.proj {
		out[i] = e.Type()
	}
	return out
}

// Accessors consumed by the renderer.

// Projection returns the SELECT list.
func (s *SelectStmt) Projection() []expr.Expr { return s.proj }

// FromTable returns the primary table, or nil before From.
func (s *SelectStmt) FromTable() *schema.Table { return s.from }

// Joins returns the joins in declaration order.
func (s *SelectStmt) Joins() []Join { return s.joins }

// WherePred returns the combined WHERE predicate, or nil.
func (s *SelectStmt) WherePred() expr.Expr { return s.where }

// GroupByExprs returns the GROUP BY list.
func (s *SelectStmt) GroupByExprs() []expr.Expr { return s.groupBy }

// HavingPred returns the combined HAVING predicate, or nil.
func (s *SelectStmt) HavingPred() expr.Expr { return s.having }

// OrderTerms returns the ORDER BY terms in declaration order.
func (s *SelectStmt) OrderTerms() []OrderTerm { return s.orderBy }

// LimitValue returns the LIMIT count, if set.
func (s *SelectStmt) LimitValue() (int, bool) { return s.limit, s.hasLimit }

// OffsetValue returns the OFFSET count, if set.
func (s *SelectStmt) OffsetValue() (int, bool) { return s.offset, s.hasOffset }
