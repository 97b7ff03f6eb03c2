package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/koustreak/dbinfo/internal/database"
	"github.com/koustreak/dbinfo/internal/errs"
)

// Driver is a PostgreSQL implementation of database.Conn backed by pgxpool.
// It is safe for concurrent use by multiple goroutines.
type Driver struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

// New connects to PostgreSQL using the provided Config and returns a Driver.
// It calls Ping to validate the connection before returning.
func New(ctx context.Context, cfg *database.Config) (*Driver, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "invalid DSN", err)
	}

	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	if cfg.ConnectTimeout > 0 {
		poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, mapError(err, "failed to create connection pool")
	}

	d := &Driver{pool: pool, timeout: cfg.QueryTimeout}

	if err := d.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return d, nil
}

// --- database.Conn implementation ---

// DriverName always reports "postgres".
func (d *Driver) DriverName() string {
	return string(database.DriverPostgres)
}

// FetchAll runs query and returns every row keyed by column alias.
func (d *Driver) FetchAll(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
	rows, cancel, err := d.query(ctx, query, params)
	if err != nil {
		return nil, err
	}
	defer cancel()

	result, err := database.ScanRows(rows)
	if err != nil {
		return nil, mapError(err, "failed to read result set")
	}
	return result, nil
}

// FetchColumn runs query and returns the first column of every row.
func (d *Driver) FetchColumn(ctx context.Context, query string, params map[string]any) ([]any, error) {
	rows, cancel, err := d.query(ctx, query, params)
	if err != nil {
		return nil, err
	}
	defer cancel()

	result, err := database.ScanColumn(rows)
	if err != nil {
		return nil, mapError(err, "failed to read result set")
	}
	return result, nil
}

// Exec runs a statement with $n placeholders. Used to prepare fixtures.
func (d *Driver) Exec(ctx context.Context, query string, args ...any) error {
	ctx, cancel := database.WithQueryTimeout(ctx, d.timeout)
	defer cancel()

	if _, err := d.pool.Exec(ctx, query, args...); err != nil {
		return mapError(err, "exec failed")
	}
	return nil
}

// Ping verifies the database is reachable by acquiring and releasing a connection.
func (d *Driver) Ping(ctx context.Context) error {
	if err := d.pool.Ping(ctx); err != nil {
		return mapError(err, "ping failed")
	}
	return nil
}

// Close drains the connection pool. Call when the application shuts down.
func (d *Driver) Close() error {
	d.pool.Close()
	return nil
}

func (d *Driver) query(ctx context.Context, query string, params map[string]any) (database.Rows, context.CancelFunc, error) {
	bound, args, err := database.Bind(query, params, database.DialectPostgres)
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := database.WithQueryTimeout(ctx, d.timeout)
	rows, err := d.pool.Query(ctx, bound, args...)
	if err != nil {
		cancel()
		return nil, nil, mapError(err, "query failed")
	}
	return &pgxRows{rows: rows}, cancel, nil
}

// --- pgx type wrappers ---

// pgxRows wraps pgx.Rows to satisfy database.Rows.
type pgxRows struct {
	rows pgx.Rows
}

func (r *pgxRows) Next() bool             { return r.rows.Next() }
func (r *pgxRows) Scan(dest ...any) error { return r.rows.Scan(dest...) }
func (r *pgxRows) Close()                 { r.rows.Close() }
func (r *pgxRows) Err() error             { return r.rows.Err() }

func (r *pgxRows) Columns() ([]string, error) {
	descs := r.rows.FieldDescriptions()
	cols := make([]string, len(descs))
	for i, d := range descs {
		cols[i] = d.Name
	}
	return cols, nil
}
