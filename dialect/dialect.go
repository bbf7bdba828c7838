// Package dialect describes the supported database backends.
//
// Each backend is summarized by a Descriptor: its placeholder style,
// identifier quoting and a small set of capability flags. Descriptors are
// static values consumed only by the renderer; they carry no connection
// state. The package also defines the ExecQuerier/Driver/Tx contract that
// the execution layer implements.
package dialect

import "context"

// Names of the supported dialects.
const (
	MySQL     = "mysql"
	SQLite    = "sqlite"
	Postgres  = "postgres"
	SQLServer = "sqlserver"
)

// PlaceholderStyle selects how bound parameters appear in rendered SQL.
type PlaceholderStyle uint8

const (
	// PlaceholderQuestion renders positional `?` markers (MySQL, SQLite).
	PlaceholderQuestion PlaceholderStyle = iota
	// PlaceholderDollar renders numbered `$1` markers (PostgreSQL).
	PlaceholderDollar
	// PlaceholderAtP renders named `@p1` markers (SQL Server).
	PlaceholderAtP
)

// BoolLiteralStyle selects how boolean literals are spelled.
type BoolLiteralStyle uint8

const (
	// BoolKeyword spells booleans TRUE and FALSE.
	BoolKeyword BoolLiteralStyle = iota
	// BoolInteger spells booleans 1 and 0 for engines without boolean
	// keywords.
	BoolInteger
)

// LimitStyle selects how row limits are rendered.
type LimitStyle uint8

const (
	// LimitOffset renders LIMIT n [OFFSET m].
	LimitOffset LimitStyle = iota
	// LimitTop renders SELECT TOP n. Backends using TOP have no offset
	// form in this engine; rendering an offset against them fails.
	LimitTop
)

// Descriptor is the static capability and syntax profile of a backend.
type Descriptor struct {
	// Name is the dialect name, one of the package constants.
	Name string
	// Placeholder is the bind placeholder style.
	Placeholder PlaceholderStyle
	// QuoteOpen and QuoteClose delimit quoted identifiers.
	QuoteOpen, QuoteClose byte
	// SupportsReturning reports whether the engine accepts RETURNING
	// clauses on INSERT/UPDATE/DELETE.
	SupportsReturning bool
	// SupportsUpsert reports whether the engine has an upsert form
	// (ON CONFLICT or ON DUPLICATE KEY UPDATE).
	SupportsUpsert bool
	// BoolLiteral is the boolean literal spelling.
	BoolLiteral BoolLiteralStyle
	// Limit is the row limit syntax.
	Limit LimitStyle
	// NullSafeEq is the engine's spelling of null-safe equality.
	NullSafeEq string
}

// Descriptors of the supported backends.
var (
	// Postgres: $n placeholders, double-quoted identifiers, full RETURNING
	// and ON CONFLICT support.
	PostgresDescriptor = Descriptor{
		Name:              Postgres,
		Placeholder:       PlaceholderDollar,
		QuoteOpen:         '"',
		QuoteClose:        '"',
		SupportsReturning: true,
		SupportsUpsert:    true,
		BoolLiteral:       BoolKeyword,
		Limit:             LimitOffset,
		NullSafeEq:        "IS NOT DISTINCT FROM",
	}

	// MySQL: ? placeholders, backtick identifiers, ON DUPLICATE KEY UPDATE
	// upsert, no RETURNING.
	MySQLDescriptor = Descriptor{
		Name:           MySQL,
		Placeholder:    PlaceholderQuestion,
		QuoteOpen:      '`',
		QuoteClose:     '`',
		SupportsUpsert: true,
		BoolLiteral:    BoolKeyword,
		Limit:          LimitOffset,
		NullSafeEq:     "<=>",
	}

	// SQLite: ? placeholders, double-quoted identifiers, RETURNING and
	// ON CONFLICT support.
	SQLiteDescriptor = Descriptor{
		Name:              SQLite,
		Placeholder:       PlaceholderQuestion,
		QuoteOpen:         '"',
		QuoteClose:        '"',
		SupportsReturning: true,
		SupportsUpsert:    true,
		BoolLiteral:       BoolInteger,
		Limit:             LimitOffset,
		NullSafeEq:        "IS",
	}

	// SQLServer: @pn placeholders, bracket identifiers, TOP instead of
	// LIMIT, no RETURNING and no upsert form.
	SQLServerDescriptor = Descriptor{
		Name:        SQLServer,
		Placeholder: PlaceholderAtP,
		QuoteOpen:   '[',
		QuoteClose:  ']',
		BoolLiteral: BoolInteger,
		Limit:       LimitTop,
		NullSafeEq:  "IS NOT DISTINCT FROM",
	}
)

// ByName returns the descriptor for the given dialect name.
func ByName(name string) (Descriptor, bool) {
	switch name {
	case Postgres:
		return PostgresDescriptor, true
	case MySQL:
		return MySQLDescriptor, true
	case SQLite:
		return SQLiteDescriptor, true
	case SQLServer:
		return SQLServerDescriptor, true
	}
	return Descriptor{}, false
}

// ExecQuerier wraps the Exec and Query methods of the execution boundary.
type ExecQuerier interface {
	// Exec executes a statement that returns no rows. args is expected to
	// be a []any of serialized bind values, and v a *sql.Result or nil.
	Exec(ctx context.Context, query string, args, v any) error
	// Query executes a statement that returns rows. args is expected to be
	// a []any of serialized bind values, and v the driver's row container.
	Query(ctx context.Context, query string, args, v any) error
}

// Driver is the contract the connection/execution collaborator implements.
// It is the only place in the engine that may block on network I/O.
type Driver interface {
	ExecQuerier
	// Tx starts and returns a new transaction.
	Tx(ctx context.Context) (Tx, error)
	// Close closes the underlying connection.
	Close() error
	// Dialect returns the dialect name of the driver.
	Dialect() string
}

// Tx is a transactional ExecQuerier.
type Tx interface {
	ExecQuerier
	Commit() error
	Rollback() error
}
