package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/dbinfo/internal/database"
	"github.com/koustreak/dbinfo/internal/errs"
)

func openMemory(t *testing.T) *Driver {
	t.Helper()
	d, err := New(context.Background(), database.DefaultConfig(database.DriverSQLite, ":memory:"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func TestNew_Memory(t *testing.T) {
	d := openMemory(t)
	assert.Equal(t, "sqlite", d.DriverName())
	assert.Equal(t, 1, d.DB().Stats().MaxOpenConnections)
}

func TestDriver_FetchAll(t *testing.T) {
	ctx := context.Background()
	d := openMemory(t)

	require.NoError(t, d.Exec(ctx, `CREATE TABLE items (id INTEGER, label TEXT)`))
	require.NoError(t, d.Exec(ctx, `INSERT INTO items VALUES (1, 'a'), (2, 'b'), (3, NULL)`))

	rows, err := d.FetchAll(ctx, `SELECT id, label FROM items WHERE id >= :min ORDER BY id`, map[string]any{"min": 2})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(2), rows[0]["id"])
	assert.Equal(t, "b", rows[0]["label"])
	assert.Nil(t, rows[1]["label"])
}

func TestDriver_FetchColumn(t *testing.T) {
	ctx := context.Background()
	d := openMemory(t)

	require.NoError(t, d.Exec(ctx, `CREATE TABLE b (x)`))
	require.NoError(t, d.Exec(ctx, `CREATE TABLE a (x)`))

	names, err := d.FetchColumn(ctx, `SELECT name FROM sqlite_master WHERE type = :type ORDER BY name`, map[string]any{"type": "table"})
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b"}, names)

	none, err := d.FetchColumn(ctx, `SELECT name FROM sqlite_master WHERE type = 'view'`, nil)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestDriver_Errors(t *testing.T) {
	ctx := context.Background()
	d := openMemory(t)

	t.Run("missing table", func(t *testing.T) {
		_, err := d.FetchAll(ctx, `SELECT * FROM nope`, nil)
		require.Error(t, err)
		assert.True(t, errs.IsQueryFailed(err))
	})

	t.Run("missing parameter", func(t *testing.T) {
		_, err := d.FetchAll(ctx, `SELECT :x`, nil)
		require.Error(t, err)
		assert.True(t, errs.IsInvalidInput(err))
	})

	t.Run("canceled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := d.FetchColumn(cctx, `SELECT 1`, nil)
		require.Error(t, err)
		assert.True(t, errs.IsTimeout(err))
	})
}

func TestDriver_AttachedDatabaseSharesConnection(t *testing.T) {
	ctx := context.Background()
	d := openMemory(t)

	require.NoError(t, d.Exec(ctx, `ATTACH DATABASE ':memory:' AS aux`))
	require.NoError(t, d.Exec(ctx, `CREATE TABLE aux.t (x)`))

	names, err := d.FetchColumn(ctx, `SELECT name FROM "aux".sqlite_master`, nil)
	require.NoError(t, err)
	assert.Equal(t, []any{"t"}, names)
}

func TestIsMemory(t *testing.T) {
	assert.True(t, isMemory(":memory:"))
	assert.True(t, isMemory("file::memory:?cache=shared"))
	assert.True(t, isMemory("file:test.db?mode=memory"))
	assert.True(t, isMemory(""))
	assert.False(t, isMemory("/var/lib/app.db"))
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want errs.ErrKind
	}{
		{name: "deadline", err: context.DeadlineExceeded, want: errs.ErrKindTimeout},
		{name: "busy", err: sqlite3.Error{Code: sqlite3.ErrBusy}, want: errs.ErrKindTimeout},
		{name: "readonly", err: sqlite3.Error{Code: sqlite3.ErrReadonly}, want: errs.ErrKindPermissionDenied},
		{name: "not a database", err: sqlite3.Error{Code: sqlite3.ErrNotADB}, want: errs.ErrKindConnectionFailed},
		{name: "generic", err: sqlite3.Error{Code: sqlite3.ErrError}, want: errs.ErrKindQueryFailed},
		{name: "already classified", err: errs.New(errs.ErrKindNotFound, "x"), want: errs.ErrKindNotFound},
		{name: "other", err: errors.New("boom"), want: errs.ErrKindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errs.KindOf(mapError(tt.err, "query failed")))
		})
	}
}

func TestMapError_KeepsClassifiedError(t *testing.T) {
	scanErr := errs.Wrap(errs.ErrKindQueryFailed, "error during row iteration", sqlite3.Error{Code: sqlite3.ErrBusy})

	got := mapError(scanErr, "failed to read result set")
	assert.Same(t, scanErr, got)
	assert.True(t, errs.IsQueryFailed(got))
	assert.NotContains(t, got.Error(), "failed to read result set")
}

func TestDriver_QueryTimeout(t *testing.T) {
	cfg := database.DefaultConfig(database.DriverSQLite, ":memory:")
	cfg.QueryTimeout = time.Nanosecond
	d, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer func() { _ = d.Close() }()

	_, err = d.FetchColumn(context.Background(), `SELECT 1`, nil)
	require.Error(t, err)
	assert.True(t, errs.IsTimeout(err))
}
