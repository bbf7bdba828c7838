package exec_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/syssam/sqlforge/exec"
)

type pgError struct{ state string }

func (e pgError) Error() string    { return "server error" }
func (e pgError) SQLState() string { return e.state }

type codedError struct{ code string }

func (e codedError) Error() string { return "server error" }
func (e codedError) Code() string  { return e.code }

type mysqlError struct{ number uint16 }

func (e mysqlError) Error() string  { return "server error" }
func (e mysqlError) Number() uint16 { return e.number }

type mssqlError struct{ number int32 }

func (e mssqlError) Error() string         { return "server error" }
func (e mssqlError) SQLErrorNumber() int32 { return e.number }

func TestConstraintClassification(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		unique bool
		fk     bool
		check  bool
	}{
		{"PostgresUnique", pgError{"23505"}, true, false, false},
		{"PostgresForeignKey", pgError{"23503"}, false, true, false},
		{"PostgresCheck", pgError{"23514"}, false, false, true},
		{"CodedUnique", codedError{"23505"}, true, false, false},
		{"MySQLDuplicate", mysqlError{1062}, true, false, false},
		{"MySQLParentRow", mysqlError{1451}, false, true, false},
		{"MySQLChildRow", mysqlError{1452}, false, true, false},
		{"MySQLCheck", mysqlError{3819}, false, false, true},
		{"SQLServerUniqueConstraint", mssqlError{2627}, true, false, false},
		{"SQLServerUniqueIndex", mssqlError{2601}, true, false, false},
		{"Unrelated", pgError{"42601"}, false, false, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.unique, exec.IsUniqueConstraintError(tc.err))
			assert.Equal(t, tc.fk, exec.IsForeignKeyConstraintError(tc.err))
			assert.Equal(t, tc.check, exec.IsCheckConstraintError(tc.err))
			assert.Equal(t, tc.unique || tc.fk || tc.check, exec.IsConstraintError(tc.err))
		})
	}
}

func TestConstraintErrorWrapped(t *testing.T) {
	err := fmt.Errorf("exec: exec: %w", pgError{"23505"})
	assert.True(t, exec.IsUniqueConstraintError(err))
	assert.True(t, exec.IsConstraintError(err))
}

func TestConstraintStringFallback(t *testing.T) {
	cases := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"SQLiteUnique", errors.New("constraint failed: UNIQUE constraint failed: users.name"), exec.IsUniqueConstraintError},
		{"SQLiteForeignKey", errors.New("constraint failed: FOREIGN KEY constraint failed"), exec.IsForeignKeyConstraintError},
		{"SQLiteCheck", errors.New("constraint failed: CHECK constraint failed: age_positive"), exec.IsCheckConstraintError},
		{"PostgresUnique", errors.New(`pq: duplicate key value violates unique constraint "users_name_key"`), exec.IsUniqueConstraintError},
		{"SQLServerUnique", errors.New("mssql: Violation of UNIQUE KEY constraint 'UQ_users_name'"), exec.IsUniqueConstraintError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.True(t, tc.check(tc.err))
		})
	}
}

func TestConstraintNonMatches(t *testing.T) {
	assert.False(t, exec.IsConstraintError(nil))
	assert.False(t, exec.IsConstraintError(errors.New("connection refused")))
}
