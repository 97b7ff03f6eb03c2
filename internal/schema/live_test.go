package schema

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/dbinfo/internal/database"
	"github.com/koustreak/dbinfo/internal/database/mysql"
	"github.com/koustreak/dbinfo/internal/database/postgres"
	"github.com/koustreak/dbinfo/internal/database/sqlserver"
)

// These tests talk to real servers and only run when the matching
// DBINFO_TEST_*_DSN variable is set.

type execConn interface {
	database.Conn
	Exec(ctx context.Context, query string, args ...any) error
	Close() error
}

type liveCase struct {
	env     string
	open    func(ctx context.Context, dsn string) (execConn, error)
	drop    string
	create  string
	wantSeq bool
}

var liveCases = map[string]liveCase{
	"postgres": {
		env: "DBINFO_TEST_POSTGRES_DSN",
		open: func(ctx context.Context, dsn string) (execConn, error) {
			return postgres.New(ctx, database.DefaultConfig(database.DriverPostgres, dsn))
		},
		drop: `DROP TABLE IF EXISTS dbinfo_fixture`,
		create: `CREATE TABLE dbinfo_fixture (
			id                  SERIAL PRIMARY KEY,
			name                VARCHAR(50) NOT NULL,
			test_size_scale     NUMERIC(7,3),
			test_default_null   CHAR(3) DEFAULT NULL,
			test_default_string VARCHAR(7) DEFAULT 'string',
			test_default_number NUMERIC(5) DEFAULT 12345,
			test_default_ignore TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		wantSeq: true,
	},
	"mysql": {
		env: "DBINFO_TEST_MYSQL_DSN",
		open: func(ctx context.Context, dsn string) (execConn, error) {
			return mysql.New(ctx, database.DefaultConfig(database.DriverMySQL, dsn))
		},
		drop: `DROP TABLE IF EXISTS dbinfo_fixture`,
		create: `CREATE TABLE dbinfo_fixture (
			id                  INT AUTO_INCREMENT PRIMARY KEY,
			name                VARCHAR(50) NOT NULL,
			test_size_scale     NUMERIC(7,3),
			test_default_null   CHAR(3) DEFAULT NULL,
			test_default_string VARCHAR(7) DEFAULT 'string',
			test_default_number NUMERIC(5) DEFAULT 12345,
			test_default_ignore TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
	},
	"sqlserver": {
		env: "DBINFO_TEST_SQLSERVER_DSN",
		open: func(ctx context.Context, dsn string) (execConn, error) {
			return sqlserver.New(ctx, database.DefaultConfig(database.DriverSQLServer, dsn))
		},
		drop: `IF OBJECT_ID('dbinfo_fixture', 'U') IS NOT NULL DROP TABLE dbinfo_fixture`,
		create: `CREATE TABLE dbinfo_fixture (
			id                  INT IDENTITY(1,1) PRIMARY KEY,
			name                VARCHAR(50) NOT NULL,
			test_size_scale     NUMERIC(7,3),
			test_default_null   CHAR(3) DEFAULT NULL,
			test_default_string VARCHAR(7) DEFAULT 'string',
			test_default_number NUMERIC(5) DEFAULT 12345,
			test_default_ignore DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
	},
}

func TestLive(t *testing.T) {
	for name, lc := range liveCases {
		t.Run(name, func(t *testing.T) {
			dsn := os.Getenv(lc.env)
			if dsn == "" {
				t.Skipf("%s not set", lc.env)
			}
			runLiveCase(t, lc, dsn)
		})
	}
}

func runLiveCase(t *testing.T, lc liveCase, dsn string) {
	ctx := context.Background()

	conn, err := lc.open(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, conn.Exec(ctx, lc.drop))
	require.NoError(t, conn.Exec(ctx, lc.create))
	t.Cleanup(func() { _ = conn.Exec(context.Background(), lc.drop) })

	inspector, err := New(conn)
	require.NoError(t, err)

	current, err := inspector.FetchCurrentSchema(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, current)

	tables, err := inspector.FetchTableNames(ctx, "")
	require.NoError(t, err)
	assert.Contains(t, tables, "dbinfo_fixture")

	cols, err := inspector.FetchColumns(ctx, "dbinfo_fixture")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"id", "name", "test_size_scale", "test_default_null",
		"test_default_string", "test_default_number", "test_default_ignore",
	}, cols.Names())

	qualified, err := inspector.FetchColumns(ctx, current+".dbinfo_fixture")
	require.NoError(t, err)
	assert.Equal(t, cols.Columns(), qualified.Columns())

	id, _ := cols.Get("id")
	assert.True(t, id.Autoinc)
	assert.True(t, id.Primary)
	assert.True(t, id.NotNull)
	assert.Nil(t, id.Default)

	name, _ := cols.Get("name")
	assert.Equal(t, intPtr(50), name.Size)
	assert.True(t, name.NotNull)
	assert.False(t, name.Autoinc)
	assert.False(t, name.Primary)

	sizeScale, _ := cols.Get("test_size_scale")
	assert.Equal(t, intPtr(7), sizeScale.Size)
	assert.Equal(t, intPtr(3), sizeScale.Scale)

	expectDefault := map[string]*string{
		"test_default_null":   nil,
		"test_default_string": strPtr("string"),
		"test_default_number": strPtr("12345"),
		"test_default_ignore": nil,
	}
	for col, want := range expectDefault {
		got, ok := cols.Get(col)
		require.True(t, ok, col)
		assert.Equal(t, want, got.Default, col)
	}

	seq, err := inspector.FetchAutoincSequence(ctx, "dbinfo_fixture")
	require.NoError(t, err)
	if lc.wantSeq {
		assert.Contains(t, seq, "dbinfo_fixture_id_seq")
	} else {
		assert.Empty(t, seq)
	}
}
