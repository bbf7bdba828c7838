package exec

import (
	"errors"
	"strings"
)

// Constraint violation classification. Drivers wrap their server errors in
// driver-specific types; probing small interfaces keeps this package free of
// driver imports while still reading the structured codes when present.

// errorCoder is implemented by errors carrying textual codes
// (lib/pq, modernc.org/sqlite).
type errorCoder interface {
	Code() string
}

// errorNumberer is implemented by errors carrying MySQL error numbers.
type errorNumberer interface {
	Number() uint16
}

// sqlStateError is implemented by errors carrying SQLSTATE codes.
type sqlStateError interface {
	SQLState() string
}

// sqlServerError is implemented by go-mssqldb errors.
type sqlServerError interface {
	SQLErrorNumber() int32
}

// PostgreSQL SQLSTATE codes for constraint violations (Class 23).
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// MySQL error numbers for constraint violations.
const (
	mysqlDuplicateEntry         = 1062
	mysqlForeignKeyParent       = 1451 // Cannot delete or update a parent row
	mysqlForeignKeyChild        = 1452 // Cannot add or update a child row
	mysqlCheckConstraintViolate = 3819
)

// SQL Server error numbers for constraint violations.
const (
	mssqlUniqueConstraint = 2627
	mssqlUniqueIndex      = 2601
	mssqlConstraint       = 547 // FOREIGN KEY and CHECK share this number
)

// IsConstraintError reports whether the error resulted from any database
// constraint violation.
func IsConstraintError(err error) bool {
	return IsUniqueConstraintError(err) ||
		IsForeignKeyConstraintError(err) ||
		IsCheckConstraintError(err)
}

// IsUniqueConstraintError reports if the error resulted from a uniqueness
// constraint violation, e.g. a duplicate value in a unique index.
func IsUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if e, ok := asError[sqlStateError](err); ok && e.SQLState() == pgUniqueViolation {
		return true
	}
	if e, ok := asError[errorCoder](err); ok && e.Code() == pgUniqueViolation {
		return true
	}
	if e, ok := asError[errorNumberer](err); ok && e.Number() == mysqlDuplicateEntry {
		return true
	}
	if e, ok := asError[sqlServerError](err); ok {
		if n := e.SQLErrorNumber(); n == mssqlUniqueConstraint || n == mssqlUniqueIndex {
			return true
		}
	}
	// String matching covers drivers without structured codes.
	return containsAny(err.Error(),
		"Error 1062",                 // MySQL
		"violates unique constraint", // Postgres
		"UNIQUE constraint failed",   // SQLite
		"Violation of UNIQUE KEY",    // SQL Server
	)
}

// IsForeignKeyConstraintError reports if the error resulted from a
// foreign-key constraint violation, e.g. the parent row does not exist.
func IsForeignKeyConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if e, ok := asError[sqlStateError](err); ok && e.SQLState() == pgForeignKeyViolation {
		return true
	}
	if e, ok := asError[errorCoder](err); ok && e.Code() == pgForeignKeyViolation {
		return true
	}
	if e, ok := asError[errorNumberer](err); ok {
		if n := e.Number(); n == mysqlForeignKeyParent || n == mysqlForeignKeyChild {
			return true
		}
	}
	return containsAny(err.Error(),
		"Error 1451",                      // MySQL parent row
		"Error 1452",                      // MySQL child row
		"violates foreign key constraint", // Postgres
		"FOREIGN KEY constraint failed",   // SQLite
		"FOREIGN KEY constraint",          // SQL Server (number 547)
	)
}

// IsCheckConstraintError reports if the error resulted from a check
// constraint violation.
func IsCheckConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if e, ok := asError[sqlStateError](err); ok && e.SQLState() == pgCheckViolation {
		return true
	}
	if e, ok := asError[errorCoder](err); ok && e.Code() == pgCheckViolation {
		return true
	}
	if e, ok := asError[errorNumberer](err); ok && e.Number() == mysqlCheckConstraintViolate {
		return true
	}
	return containsAny(err.Error(),
		"Error 3819",                // MySQL
		"violates check constraint", // Postgres
		"CHECK constraint failed",   // SQLite
		"CHECK constraint",          // SQL Server (number 547)
	)
}

// asError extracts an error implementing interface T from the error chain.
func asError[T any](err error) (T, bool) {
	var target T
	for err != nil {
		if e, ok := err.(T); ok {
			return e, true
		}
		err = errors.Unwrap(err)
	}
	return target, false
}

// containsAny returns true if s contains any of the substrings.
func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
