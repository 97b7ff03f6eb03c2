package database

import (
	"context"
	"database/sql"
	"time"
)

// ErrorMapper translates a native driver error into an *errs.Error.
type ErrorMapper func(err error, msg string) error

// SQLConn implements Conn on top of database/sql. The mysql, sqlite and
// sqlserver packages open the *sql.DB and supply their placeholder dialect
// and error mapping.
// It is safe for concurrent use by multiple goroutines.
type SQLConn struct {
	db      *sql.DB
	driver  Driver
	dialect Dialect
	timeout time.Duration
	mapErr  ErrorMapper
}

// NewSQLConn wraps db. timeout is the per-query deadline (0 disables it).
func NewSQLConn(db *sql.DB, driver Driver, dialect Dialect, timeout time.Duration, mapErr ErrorMapper) *SQLConn {
	return &SQLConn{db: db, driver: driver, dialect: dialect, timeout: timeout, mapErr: mapErr}
}

// DriverName reports the engine this connection was opened for.
func (c *SQLConn) DriverName() string {
	return string(c.driver)
}

// FetchAll runs query and returns every row keyed by column alias.
func (c *SQLConn) FetchAll(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
	rows, cancel, err := c.query(ctx, query, params)
	if err != nil {
		return nil, err
	}
	defer cancel()

	result, err := ScanRows(rows)
	if err != nil {
		return nil, c.mapErr(err, "failed to read result set")
	}
	return result, nil
}

// FetchColumn runs query and returns the first column of every row.
func (c *SQLConn) FetchColumn(ctx context.Context, query string, params map[string]any) ([]any, error) {
	rows, cancel, err := c.query(ctx, query, params)
	if err != nil {
		return nil, err
	}
	defer cancel()

	result, err := ScanColumn(rows)
	if err != nil {
		return nil, c.mapErr(err, "failed to read result set")
	}
	return result, nil
}

// Exec runs a statement with driver-native placeholders. The inspector
// never calls it; tools and tests use it to prepare fixtures.
func (c *SQLConn) Exec(ctx context.Context, query string, args ...any) error {
	ctx, cancel := WithQueryTimeout(ctx, c.timeout)
	defer cancel()

	if _, err := c.db.ExecContext(ctx, query, args...); err != nil {
		return c.mapErr(err, "exec failed")
	}
	return nil
}

// Ping verifies the database is reachable.
func (c *SQLConn) Ping(ctx context.Context) error {
	if err := c.db.PingContext(ctx); err != nil {
		return c.mapErr(err, "ping failed")
	}
	return nil
}

// Close releases the connection pool.
func (c *SQLConn) Close() error {
	return c.db.Close()
}

// DB returns the underlying *sql.DB (for advanced use)
func (c *SQLConn) DB() *sql.DB {
	return c.db
}

func (c *SQLConn) query(ctx context.Context, query string, params map[string]any) (Rows, context.CancelFunc, error) {
	bound, args, err := Bind(query, params, c.dialect)
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := WithQueryTimeout(ctx, c.timeout)
	rows, err := c.db.QueryContext(ctx, bound, args...)
	if err != nil {
		cancel()
		return nil, nil, c.mapErr(err, "query failed")
	}
	return sqlRows{rows}, cancel, nil
}

// sqlRows adapts *sql.Rows to Rows; Close drops the error database/sql returns.
type sqlRows struct{ *sql.Rows }

func (r sqlRows) Close() { _ = r.Rows.Close() }
