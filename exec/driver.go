// Package exec runs rendered statements against real databases.
//
// It is the only layer of the engine that touches database/sql. Everything
// above it stays pure: a statement is built, validated and rendered first,
// and exec only serializes the bind slots through a codec and ships the
// final SQL text to the driver.
package exec

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/syssam/sqlforge/codec"
	"github.com/syssam/sqlforge/dialect"
	"github.com/syssam/sqlforge/render"
	"github.com/syssam/sqlforge/sqltype"
)

// Driver is a dialect.Driver implementation over database/sql.
type Driver struct {
	Conn
	dialect string
}

// NewDriver creates a new Driver with the given Conn and dialect.
func NewDriver(dialect string, c Conn) *Driver {
	return &Driver{dialect: dialect, Conn: c}
}

// Open wraps database/sql.Open and returns a dialect.Driver. The dialect
// name doubles as the database/sql driver name unless they differ in the
// registered driver set (e.g. modernc.org/sqlite registers as "sqlite").
func Open(dialect, source string) (*Driver, error) {
	db, err := sql.Open(dialect, source)
	if err != nil {
		return nil, err
	}
	return NewDriver(dialect, Conn{db}), nil
}

// OpenDB wraps an existing database/sql.DB with a Driver.
func OpenDB(dialect string, db *sql.DB) *Driver {
	return NewDriver(dialect, Conn{db})
}

// DB returns the underlying *sql.DB instance.
func (d Driver) DB() *sql.DB {
	return d.ExecQuerier.(*sql.DB)
}

// Dialect implements the dialect.Driver method.
func (d Driver) Dialect() string {
	// Strip telemetry wrapper suffixes from the registered driver name.
	for _, name := range []string{dialect.MySQL, dialect.SQLite, dialect.Postgres, dialect.SQLServer} {
		if strings.HasPrefix(d.dialect, name) {
			return name
		}
	}
	return d.dialect
}

// Tx starts and returns a transaction.
func (d *Driver) Tx(ctx context.Context) (dialect.Tx, error) {
	return d.BeginTx(ctx, nil)
}

// BeginTx starts a transaction with options.
func (d *Driver) BeginTx(ctx context.Context, opts *TxOptions) (dialect.Tx, error) {
	tx, err := d.DB().BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Tx{
		Conn: Conn{tx},
		Tx:   tx,
	}, nil
}

// Close closes the underlying connection.
func (d *Driver) Close() error { return d.DB().Close() }

// Tx implements the dialect.Tx interface.
type Tx struct {
	Conn
	driver.Tx
}

// ExecQuerier wraps the standard Exec and Query methods.
type ExecQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Conn implements dialect.ExecQuerier given an ExecQuerier.
type Conn struct {
	ExecQuerier
}

// Exec implements the dialect.Exec method.
func (c Conn) Exec(ctx context.Context, query string, args, v any) error {
	argv, ok := args.([]any)
	if !ok {
		return fmt.Errorf("exec: invalid type %T. expect []any for args", args)
	}
	switch v := v.(type) {
	case nil:
		if _, err := c.ExecContext(ctx, query, argv...); err != nil {
			return fmt.Errorf("exec: exec: %w", err)
		}
	case *sql.Result:
		res, err := c.ExecContext(ctx, query, argv...)
		if err != nil {
			return fmt.Errorf("exec: exec: %w", err)
		}
		*v = res
	default:
		return fmt.Errorf("exec: invalid type %T. expect *sql.Result", v)
	}
	return nil
}

// Query implements the dialect.Query method.
func (c Conn) Query(ctx context.Context, query string, args, v any) error {
	vr, ok := v.(*Rows)
	if !ok {
		return fmt.Errorf("exec: invalid type %T. expect *exec.Rows", v)
	}
	argv, ok := args.([]any)
	if !ok {
		return fmt.Errorf("exec: invalid type %T. expect []any for args", args)
	}
	rows, err := c.QueryContext(ctx, query, argv...)
	if err != nil {
		return fmt.Errorf("exec: query: %w", err)
	}
	*vr = Rows{rows}
	return nil
}

var _ dialect.Driver = (*Driver)(nil)

type (
	// Rows wraps the sql.Rows to avoid locks copy.
	Rows struct{ ColumnScanner }
	// Result is an alias to sql.Result.
	Result = sql.Result
	// TxOptions holds the transaction options to be used in DB.BeginTx.
	TxOptions = sql.TxOptions
)

// ColumnScanner is the interface that wraps the standard sql.Rows methods
// used for scanning database rows.
type ColumnScanner interface {
	Close() error
	Columns() ([]string, error)
	Err() error
	Next() bool
	Scan(dest ...any) error
}

// Args serializes the bind slots of a rendered statement into the driver
// argument list, in slot order.
func Args(c codec.Codec, slots []render.BindSlot) ([]any, error) {
	args := make([]any, len(slots))
	for i, s := range slots {
		v, err := c.Serialize(s.Value)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

// Run executes a rendered statement that returns no rows.
func Run(ctx context.Context, drv dialect.ExecQuerier, c codec.Codec, r *render.Rendered) (sql.Result, error) {
	args, err := Args(c, r.Slots)
	if err != nil {
		return nil, err
	}
	var res sql.Result
	if err := drv.Exec(ctx, r.SQL, args, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// Fetch executes a rendered query and decodes every row through the codec
// according to the statement's output shape.
func Fetch(ctx context.Context, drv dialect.ExecQuerier, c codec.Codec, r *render.Rendered) ([][]sqltype.Value, error) {
	raw, err := fetchRaw(ctx, drv, c, r)
	if err != nil {
		return nil, err
	}
	return decodeRows(c, raw, r.Output)
}

// fetchRaw executes a rendered query and returns the raw wire rows.
func fetchRaw(ctx context.Context, drv dialect.ExecQuerier, c codec.Codec, r *render.Rendered) ([][]any, error) {
	args, err := Args(c, r.Slots)
	if err != nil {
		return nil, err
	}
	var rows Rows
	if err := drv.Query(ctx, r.SQL, args, &rows); err != nil {
		return nil, err
	}
	defer rows.Close()
	var out [][]any
	for rows.Next() {
		raw := make([]any, len(r.Output))
		ptrs := make([]any, len(r.Output))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("exec: scan: %w", err)
		}
		out = append(out, raw)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("exec: rows: %w", err)
	}
	return out, nil
}

// decodeRows converts raw wire rows to typed values.
func decodeRows(c codec.Codec, raw [][]any, output []sqltype.Type) ([][]sqltype.Value, error) {
	out := make([][]sqltype.Value, len(raw))
	for i, row := range raw {
		vals := make([]sqltype.Value, len(row))
		for j, rv := range row {
			v, err := c.Deserialize(rv, output[j])
			if err != nil {
				return nil, err
			}
			vals[j] = v
		}
		out[i] = vals
	}
	return out, nil
}
