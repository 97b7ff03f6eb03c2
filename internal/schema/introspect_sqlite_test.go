package schema

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/dbinfo/internal/database"
	"github.com/koustreak/dbinfo/internal/database/sqlite"
)

const sqliteFixtureTable = `
	CREATE TABLE %s (
		id                  INTEGER PRIMARY KEY AUTOINCREMENT,
		name                VARCHAR(50) NOT NULL,
		test_size_scale     NUMERIC(7,3),
		test_default_null   CHAR(3) DEFAULT NULL,
		test_default_string VARCHAR(7) DEFAULT 'string',
		test_default_number NUMERIC(5) DEFAULT 12345,
		test_default_ignore TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`

// openSQLiteFixture creates the fixture table in main and in an attached
// database called "other".
func openSQLiteFixture(t *testing.T) (*sqlite.Driver, *Inspector) {
	t.Helper()
	ctx := context.Background()

	conn, err := sqlite.New(ctx, database.DefaultConfig(database.DriverSQLite, ":memory:"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, conn.Exec(ctx, `ATTACH DATABASE ':memory:' AS other`))
	require.NoError(t, conn.Exec(ctx, fixtureDDL("tbl")))
	require.NoError(t, conn.Exec(ctx, fixtureDDL("other.tbl")))

	inspector, err := New(conn)
	require.NoError(t, err)
	return conn, inspector
}

func fixtureDDL(table string) string {
	return fmt.Sprintf(sqliteFixtureTable, table)
}

func sqliteFixtureColumns() []ColumnDefinition {
	return []ColumnDefinition{
		{Name: "id", Type: "INTEGER", Autoinc: true, Primary: true},
		{Name: "name", Type: "VARCHAR", Size: intPtr(50), NotNull: true},
		{Name: "test_size_scale", Type: "NUMERIC", Size: intPtr(7), Scale: intPtr(3)},
		{Name: "test_default_null", Type: "CHAR", Size: intPtr(3)},
		{Name: "test_default_string", Type: "VARCHAR", Size: intPtr(7), Default: strPtr("string")},
		{Name: "test_default_number", Type: "NUMERIC", Size: intPtr(5), Default: strPtr("12345")},
		{Name: "test_default_ignore", Type: "TIMESTAMP"},
	}
}

func TestSQLite_FetchCurrentSchema(t *testing.T) {
	_, inspector := openSQLiteFixture(t)

	name, err := inspector.FetchCurrentSchema(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "main", name)
	assert.Equal(t, "sqlite", inspector.Vendor())
}

func TestSQLite_FetchTableNames(t *testing.T) {
	_, inspector := openSQLiteFixture(t)
	ctx := context.Background()

	names, err := inspector.FetchTableNames(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"sqlite_sequence", "tbl"}, names)

	names, err = inspector.FetchTableNames(ctx, "other")
	require.NoError(t, err)
	assert.Equal(t, []string{"sqlite_sequence", "tbl"}, names)
}

func TestSQLite_FetchColumns(t *testing.T) {
	_, inspector := openSQLiteFixture(t)
	ctx := context.Background()

	cols, err := inspector.FetchColumns(ctx, "tbl")
	require.NoError(t, err)
	assert.Equal(t, sqliteFixtureColumns(), cols.Columns())

	qualified, err := inspector.FetchColumns(ctx, "main.tbl")
	require.NoError(t, err)
	assert.Equal(t, cols.Columns(), qualified.Columns())

	attached, err := inspector.FetchColumns(ctx, "other.tbl")
	require.NoError(t, err)
	assert.Equal(t, sqliteFixtureColumns(), attached.Columns())
}

func TestSQLite_FetchColumns_CompositeKeyIsNotAutoinc(t *testing.T) {
	conn, inspector := openSQLiteFixture(t)
	ctx := context.Background()

	require.NoError(t, conn.Exec(ctx, `CREATE TABLE link (a INTEGER, b INTEGER, PRIMARY KEY (a, b))`))

	cols, err := inspector.FetchColumns(ctx, "link")
	require.NoError(t, err)
	for name, col := range cols.All() {
		assert.True(t, col.Primary, name)
		assert.False(t, col.Autoinc, name)
	}
}

func TestSQLite_FetchColumns_UnknownTable(t *testing.T) {
	_, inspector := openSQLiteFixture(t)

	cols, err := inspector.FetchColumns(context.Background(), "missing")
	require.NoError(t, err)
	assert.Equal(t, 0, cols.Len())
}

func TestSQLite_FetchAutoincSequence(t *testing.T) {
	_, inspector := openSQLiteFixture(t)

	seq, err := inspector.FetchAutoincSequence(context.Background(), "tbl")
	require.NoError(t, err)
	assert.Empty(t, seq)
}

func TestSQLite_InspectSchema(t *testing.T) {
	_, inspector := openSQLiteFixture(t)

	snap, err := inspector.InspectSchema(context.Background(), "other")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", snap.Vendor)
	assert.Equal(t, "other", snap.Schema)
	require.Len(t, snap.Tables, 2)
	assert.Equal(t, "tbl", snap.Tables[1].Name)
	assert.Equal(t, sqliteFixtureColumns(), snap.Tables[1].Columns.Columns())
}

func TestSQLite_UnknownSchemaIsEmpty(t *testing.T) {
	_, inspector := openSQLiteFixture(t)
	ctx := context.Background()

	names, err := inspector.FetchTableNames(ctx, "nosuch")
	require.NoError(t, err)
	assert.NotNil(t, names)
	assert.Empty(t, names)

	cols, err := inspector.FetchColumns(ctx, "nosuch.tbl")
	require.NoError(t, err)
	assert.Equal(t, 0, cols.Len())

	snap, err := inspector.InspectSchema(ctx, "nosuch")
	require.NoError(t, err)
	assert.Empty(t, snap.Tables)

	// Attached names compare case-insensitively.
	names, err = inspector.FetchTableNames(ctx, "OTHER")
	require.NoError(t, err)
	assert.Equal(t, []string{"sqlite_sequence", "tbl"}, names)
}

func TestSQLite_FetchColumns_RowidAlias(t *testing.T) {
	conn, inspector := openSQLiteFixture(t)
	ctx := context.Background()

	require.NoError(t, conn.Exec(ctx, `CREATE TABLE plain (i INTEGER PRIMARY KEY, x TEXT)`))
	require.NoError(t, conn.Exec(ctx, `CREATE TABLE descending (i INTEGER PRIMARY KEY DESC, x TEXT)`))
	require.NoError(t, conn.Exec(ctx, `CREATE TABLE clustered (i INTEGER PRIMARY KEY, x TEXT) WITHOUT ROWID`))
	require.NoError(t, conn.Exec(ctx, `CREATE TABLE lowered (i integer primary key, x TEXT)`))

	tests := []struct {
		table   string
		autoinc bool
	}{
		{table: "plain", autoinc: true},
		{table: "descending", autoinc: false},
		{table: "clustered", autoinc: false},
		{table: "lowered", autoinc: true},
	}

	for _, tt := range tests {
		t.Run(tt.table, func(t *testing.T) {
			cols, err := inspector.FetchColumns(ctx, tt.table)
			require.NoError(t, err)
			i, ok := cols.Get("i")
			require.True(t, ok)
			assert.True(t, i.Primary)
			assert.Equal(t, tt.autoinc, i.Autoinc)
		})
	}
}

func TestSQLite_FetchColumns_DoubleQuotedDefault(t *testing.T) {
	conn, inspector := openSQLiteFixture(t)
	ctx := context.Background()

	require.NoError(t, conn.Exec(ctx, `CREATE TABLE quoted (s TEXT DEFAULT "dq", t TEXT DEFAULT 'sq')`))

	cols, err := inspector.FetchColumns(ctx, "quoted")
	require.NoError(t, err)
	s, _ := cols.Get("s")
	assert.Equal(t, strPtr("dq"), s.Default)
	q, _ := cols.Get("t")
	assert.Equal(t, strPtr("sq"), q.Default)
}
