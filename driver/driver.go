// Package driver adapts database/sql connections to the mapper: it
// executes statements, materializes result sets into value rows and
// normalizes backend error codes. Importing it registers the MySQL,
// PostgreSQL and SQLite drivers; Oracle and SQL Server clients are
// registered by the caller and addressed by driver name.
package driver

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/syssam/mappa/dialect"
	"github.com/syssam/mappa/value"
)

// ExecQuerier wraps the standard Exec and Query methods.
type ExecQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Result reports the outcome of a mutating statement.
type Result struct {
	Affected  int64
	LastID    int64
	HasLastID bool
}

// Conn executes statements over an ExecQuerier, either a pooled *sql.DB
// or a *sql.Tx.
type Conn struct {
	ExecQuerier
	d dialect.Dialect
}

// NewConn wraps eq with the given dialect.
func NewConn(d dialect.Dialect, eq ExecQuerier) Conn {
	return Conn{ExecQuerier: eq, d: d}
}

// Dialect returns the connection's dialect.
func (c Conn) Dialect() dialect.Dialect { return c.d }

// Exec runs a mutating statement. The last insert id is populated only
// on backends whose driver result carries it.
func (c Conn) Exec(ctx context.Context, query string, args ...any) (Result, error) {
	res, err := c.ExecContext(ctx, query, args...)
	if err != nil {
		return Result{}, normalize(err)
	}
	out := Result{}
	if n, err := res.RowsAffected(); err == nil {
		out.Affected = n
	}
	if c.d.ResultLastID() {
		if id, err := res.LastInsertId(); err == nil {
			out.LastID = id
			out.HasLastID = true
		}
	}
	return out, nil
}

// Query runs a statement and materializes the full result set.
func (c Conn) Query(ctx context.Context, query string, args ...any) (*value.Rows, error) {
	rows, err := c.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, normalize(err)
	}
	defer rows.Close()
	out, err := materialize(rows)
	if err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, normalize(err)
	}
	return out, nil
}

// materialize drains rows into value rows, mapping each column through
// its reported database type.
func materialize(rows *sql.Rows) (*value.Rows, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, normalize(err)
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, normalize(err)
	}
	out := value.NewRows(cols)
	holders := make([]any, len(cols))
	for i := range holders {
		holders[i] = new(any)
	}
	for rows.Next() {
		if err := rows.Scan(holders...); err != nil {
			return nil, normalize(err)
		}
		data := make([]value.Value, len(cols))
		for i, h := range holders {
			data[i] = fromColumn(*h.(*any), types[i])
		}
		out.Append(data)
	}
	return out, nil
}

// Driver is a pooled connection to one database.
type Driver struct {
	Conn
	db *sql.DB
}

// Open connects using the given driver name and DSN. An empty
// driverName selects the dialect default.
func Open(d dialect.Dialect, driverName, dsn string) (*Driver, error) {
	if driverName == "" {
		driverName = d.DriverName()
	}
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("mappa: open %s: %w", d.Platform(), err)
	}
	return OpenDB(d, db), nil
}

// OpenDB wraps an existing pool.
func OpenDB(d dialect.Dialect, db *sql.DB) *Driver {
	return &Driver{Conn: NewConn(d, db), db: db}
}

// DB returns the underlying pool.
func (d *Driver) DB() *sql.DB { return d.db }

// Ping verifies the connection.
func (d *Driver) Ping(ctx context.Context) error {
	if err := d.db.PingContext(ctx); err != nil {
		return normalize(err)
	}
	return nil
}

// BeginTx starts a transaction.
func (d *Driver) BeginTx(ctx context.Context, opts *sql.TxOptions) (*Tx, error) {
	tx, err := d.db.BeginTx(ctx, opts)
	if err != nil {
		return nil, normalize(err)
	}
	return &Tx{Conn: NewConn(d.d, tx), tx: tx}, nil
}

// Close closes the pool.
func (d *Driver) Close() error { return d.db.Close() }

// Tx executes statements within one database transaction.
type Tx struct {
	Conn
	tx *sql.Tx
}

// Commit commits the transaction.
func (t *Tx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return normalize(err)
	}
	return nil
}

// Rollback aborts the transaction.
func (t *Tx) Rollback() error {
	if err := t.tx.Rollback(); err != nil {
		return normalize(err)
	}
	return nil
}

var (
	_ ExecQuerier = (*sql.DB)(nil)
	_ ExecQuerier = (*sql.Tx)(nil)
)
