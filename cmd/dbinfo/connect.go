package main

import (
	"context"
	"strings"

	"github.com/koustreak/dbinfo/internal/database"
	"github.com/koustreak/dbinfo/internal/database/mysql"
	"github.com/koustreak/dbinfo/internal/database/postgres"
	"github.com/koustreak/dbinfo/internal/database/sqlite"
	"github.com/koustreak/dbinfo/internal/database/sqlserver"
	"github.com/koustreak/dbinfo/internal/errs"
	"github.com/koustreak/dbinfo/internal/schema"
)

// conn is a database.Conn the command owns and must close.
type conn interface {
	database.Conn
	Close() error
}

// connect opens the driver package matching cfg.Driver.
func connect(ctx context.Context, cfg *database.Config) (conn, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch database.ParseDriver(string(cfg.Driver)) {
	case database.DriverPostgres:
		d, err := postgres.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return d, nil
	case database.DriverMySQL:
		d, err := mysql.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return d, nil
	case database.DriverSQLite:
		d, err := sqlite.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return d, nil
	case database.DriverSQLServer:
		d, err := sqlserver.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return d, nil
	default:
		return nil, errs.Newf(errs.ErrKindUnsupportedVendor,
			"unsupported driver %q (choose one of: %s)", cfg.Driver, strings.Join(schema.Drivers(), ", "))
	}
}
