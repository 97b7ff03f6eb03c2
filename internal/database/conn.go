// Package database defines the connection contract the schema inspector
// consumes and the helpers shared by its driver implementations.
//
// The inspector never opens, pools or closes connections. It is handed a
// Conn, asks it for the driver name and runs read-only catalog queries
// through it. Sub-packages provide Conn implementations:
//
//	postgres   pgx/v5 pgxpool
//	mysql      database/sql + go-sql-driver/mysql
//	sqlite     database/sql + mattn/go-sqlite3
//	sqlserver  database/sql + microsoft/go-mssqldb
package database

import (
	"context"
	"time"
)

// Conn is the connection collaborator used by the schema inspector.
//
// Queries use :name placeholders; implementations bind them with Bind for
// their own placeholder style. Errors are *errs.Error values classified by
// the driver.
type Conn interface {
	// DriverName identifies the database vendor, e.g. "postgres".
	DriverName() string

	// FetchAll runs query and returns every row as a map keyed by column
	// alias. The slice is never nil.
	FetchAll(ctx context.Context, query string, params map[string]any) ([]map[string]any, error)

	// FetchColumn runs query and returns the first column of every row.
	// The slice is never nil.
	FetchColumn(ctx context.Context, query string, params map[string]any) ([]any, error)
}

// Rows is an abstraction over a driver result set.
// Callers must always call Close() when done, even on error.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Columns() ([]string, error)
	Close()
	Err() error
}

// WithQueryTimeout applies timeout to ctx unless ctx already carries an
// earlier deadline. A zero timeout leaves ctx untouched. The returned cancel
// func must always be called.
func WithQueryTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) <= timeout {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
