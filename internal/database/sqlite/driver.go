// Package sqlite provides a database.Conn for SQLite files and in-memory
// databases through mattn/go-sqlite3.
package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/koustreak/dbinfo/internal/database"
	"github.com/koustreak/dbinfo/internal/errs"
	_ "github.com/mattn/go-sqlite3" // register "sqlite3" driver
)

// Driver is a SQLite implementation of database.Conn.
type Driver struct {
	*database.SQLConn
}

// New opens the SQLite database named by cfg.DSN (a path, a file: URI or
// ":memory:").
//
// An in-memory database lives inside a single connection, so for those the
// pool is pinned to one connection; every query and every ATTACH then sees
// the same database.
func New(ctx context.Context, cfg *database.Config) (*Driver, error) {
	db, err := sql.Open("sqlite3", cfg.DSN)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "invalid DSN", err)
	}

	if isMemory(cfg.DSN) {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
		db.SetConnMaxIdleTime(0)
	} else if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(int(cfg.MaxConns))
	}

	d := &Driver{database.NewSQLConn(db, database.DriverSQLite, database.DialectQuestion, cfg.QueryTimeout, mapError)}

	if err := d.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return d, nil
}

func isMemory(dsn string) bool {
	return dsn == "" || strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}
