// Package schema reads table and column metadata from a live database and
// normalizes it into ColumnDefinition / TableSchema values that look the same
// whatever the engine.
//
// Usage:
//
//	conn, err := postgres.New(ctx, database.DefaultConfig(database.DriverPostgres, dsn))
//	if err != nil { ... }
//	defer conn.Close()
//
//	inspector, err := schema.New(conn)
//	if err != nil { ... } // errs.IsUnsupportedVendor(err) for unknown drivers
//
//	tables, err := inspector.FetchTableNames(ctx, "")       // current schema
//	cols, err := inspector.FetchColumns(ctx, "billing.invoices")
//	for name, col := range cols.All() { ... }
//
// Every call runs fresh read-only queries; nothing is cached.
package schema

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/koustreak/dbinfo/internal/database"
	"github.com/koustreak/dbinfo/internal/errs"
	"github.com/koustreak/dbinfo/internal/logger"
)

const tableNamesSQL = `
	SELECT table_name
	FROM information_schema.tables
	WHERE table_schema = :schema
	ORDER BY table_name`

// columnsSQL is completed with the vendor's autoincrement expression.
const columnsSQL = `
	SELECT
		columns.column_name AS _name,
		columns.data_type AS _type,
		COALESCE(
			columns.character_maximum_length,
			columns.numeric_precision
		) AS _size,
		columns.numeric_scale AS _scale,
		CASE
			WHEN columns.is_nullable = 'YES' THEN 0
			ELSE 1
		END AS _notnull,
		columns.column_default AS _default,
		CASE
			WHEN %s THEN 1
			ELSE 0
		END AS _autoinc,
		CASE
			WHEN table_constraints.constraint_type = 'PRIMARY KEY' THEN 1
			ELSE 0
		END AS _primary
	FROM information_schema.columns
		LEFT JOIN information_schema.key_column_usage
			ON columns.table_schema = key_column_usage.table_schema
			AND columns.table_name = key_column_usage.table_name
			AND columns.column_name = key_column_usage.column_name
		LEFT JOIN information_schema.table_constraints
			ON key_column_usage.table_schema = table_constraints.table_schema
			AND key_column_usage.table_name = table_constraints.table_name
			AND key_column_usage.constraint_name = table_constraints.constraint_name
	WHERE columns.table_schema = :schema
	AND columns.table_name = :table
	ORDER BY columns.ordinal_position`

// columnFields are the aliases every columnsSQL row must carry.
var columnFields = []string{"_name", "_type", "_size", "_scale", "_notnull", "_default", "_autoinc", "_primary"}

// Inspector reads catalog metadata through a database.Conn.
// It holds no mutable state; concurrent use is as safe as the Conn.
type Inspector struct {
	conn   database.Conn
	vendor Vendor
}

// New selects the vendor adapter for conn.DriverName(). Unknown drivers fail
// with an errs.ErrKindUnsupportedVendor error and no Inspector.
func New(conn database.Conn) (*Inspector, error) {
	vendor, err := lookupVendor(conn.DriverName())
	if err != nil {
		return nil, err
	}
	return &Inspector{conn: conn, vendor: vendor}, nil
}

// Vendor returns the canonical name of the selected vendor adapter.
func (i *Inspector) Vendor() string {
	return i.vendor.Name()
}

// FetchCurrentSchema returns the schema active for the connection session.
// It never returns "" without an error.
func (i *Inspector) FetchCurrentSchema(ctx context.Context) (string, error) {
	name, err := i.vendor.CurrentSchema(ctx, i.conn)
	if err != nil {
		return "", fmt.Errorf("fetch current schema: %w", err)
	}
	if name == "" {
		return "", errs.Newf(errs.ErrKindQueryFailed, "%s reported an empty current schema", i.vendor.Name())
	}
	return name, nil
}

// FetchTableNames lists the tables of schemaName in ascending order.
// An empty schemaName means the current schema.
func (i *Inspector) FetchTableNames(ctx context.Context, schemaName string) ([]string, error) {
	if schemaName == "" {
		var err error
		if schemaName, err = i.FetchCurrentSchema(ctx); err != nil {
			return nil, err
		}
	}

	i.log(ctx, "fetching table names", schemaName, "")

	var names []string
	if l, ok := i.vendor.(tableLister); ok {
		var err error
		if names, err = l.ListTables(ctx, i.conn, schemaName); err != nil {
			return nil, fmt.Errorf("list tables in %s: %w", schemaName, err)
		}
	} else {
		values, err := i.conn.FetchColumn(ctx, tableNamesSQL, map[string]any{"schema": schemaName})
		if err != nil {
			return nil, fmt.Errorf("list tables in %s: %w", schemaName, err)
		}
		names = make([]string, 0, len(values))
		for _, v := range values {
			name, err := toString(v, "table_name")
			if err != nil {
				return nil, err
			}
			names = append(names, name)
		}
	}

	// The server sorts by its collation; callers get byte order.
	slices.Sort(names)
	return names, nil
}

// FetchColumns returns the columns of table in ordinal order. table may be
// qualified as "schema.table"; it is split on the first dot. A table that
// does not exist yields an empty TableSchema, not an error.
func (i *Inspector) FetchColumns(ctx context.Context, table string) (*TableSchema, error) {
	schemaName, tableName, err := i.resolveTable(ctx, table)
	if err != nil {
		return nil, err
	}
	return i.fetchColumns(ctx, schemaName, tableName)
}

// FetchAutoincSequence returns the name of the sequence that feeds table's
// autoincrement column, or "" when there is none.
func (i *Inspector) FetchAutoincSequence(ctx context.Context, table string) (string, error) {
	schemaName, tableName, err := i.resolveTable(ctx, table)
	if err != nil {
		return "", err
	}
	return i.fetchAutoincSequence(ctx, schemaName, tableName)
}

// InspectSchema collects every table of schemaName ("" for the current
// schema) with its columns and autoincrement sequence.
func (i *Inspector) InspectSchema(ctx context.Context, schemaName string) (*Snapshot, error) {
	if schemaName == "" {
		var err error
		if schemaName, err = i.FetchCurrentSchema(ctx); err != nil {
			return nil, err
		}
	}

	tables, err := i.FetchTableNames(ctx, schemaName)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		Vendor: i.vendor.Name(),
		Schema: schemaName,
		Tables: make([]TableSnapshot, 0, len(tables)),
	}
	for _, table := range tables {
		cols, err := i.fetchColumns(ctx, schemaName, table)
		if err != nil {
			return nil, err
		}
		seq, err := i.fetchAutoincSequence(ctx, schemaName, table)
		if err != nil {
			return nil, err
		}
		snap.Tables = append(snap.Tables, TableSnapshot{Name: table, Columns: cols, Sequence: seq})
	}
	return snap, nil
}

func (i *Inspector) fetchColumns(ctx context.Context, schemaName, tableName string) (*TableSchema, error) {
	i.log(ctx, "fetching columns", schemaName, tableName)

	if l, ok := i.vendor.(columnLister); ok {
		cols, err := l.ListColumns(ctx, i.conn, schemaName, tableName)
		if err != nil {
			return nil, fmt.Errorf("fetch columns of %s.%s: %w", schemaName, tableName, err)
		}
		return cols, nil
	}

	q := fmt.Sprintf(columnsSQL, i.vendor.AutoincSQL())
	rows, err := i.conn.FetchAll(ctx, q, map[string]any{"schema": schemaName, "table": tableName})
	if err != nil {
		return nil, fmt.Errorf("fetch columns of %s.%s: %w", schemaName, tableName, err)
	}

	cols := newTableSchema(len(rows))
	for _, row := range rows {
		col, err := i.normalize(row)
		if err != nil {
			return nil, fmt.Errorf("fetch columns of %s.%s: %w", schemaName, tableName, err)
		}
		cols.add(col)
	}
	return cols, nil
}

func (i *Inspector) fetchAutoincSequence(ctx context.Context, schemaName, tableName string) (string, error) {
	seq, err := i.vendor.AutoincSequence(ctx, i.conn, schemaName, tableName)
	if err != nil {
		return "", fmt.Errorf("fetch autoinc sequence of %s.%s: %w", schemaName, tableName, err)
	}
	return seq, nil
}

// normalize converts one columnsSQL row into a ColumnDefinition.
func (i *Inspector) normalize(row map[string]any) (ColumnDefinition, error) {
	var col ColumnDefinition
	for _, key := range columnFields {
		if _, err := field(row, key); err != nil {
			return col, err
		}
	}

	var err error
	if col.Name, err = toString(row["_name"], "_name"); err != nil {
		return col, err
	}
	if col.Type, err = toString(row["_type"], "_type"); err != nil {
		return col, err
	}
	if col.Size, err = toOptionalInt(row["_size"], "_size"); err != nil {
		return col, err
	}
	if col.Scale, err = toOptionalInt(row["_scale"], "_scale"); err != nil {
		return col, err
	}
	if col.NotNull, err = toBool(row["_notnull"], "_notnull"); err != nil {
		return col, err
	}
	if col.Autoinc, err = toBool(row["_autoinc"], "_autoinc"); err != nil {
		return col, err
	}
	if col.Primary, err = toBool(row["_primary"], "_primary"); err != nil {
		return col, err
	}
	col.Default = i.vendor.DecodeDefault(row["_default"])
	return col, nil
}

// resolveTable splits "schema.table" on the first dot; an unqualified name
// resolves against the current schema.
func (i *Inspector) resolveTable(ctx context.Context, table string) (string, string, error) {
	if schemaName, tableName, ok := strings.Cut(table, "."); ok {
		return schemaName, tableName, nil
	}
	schemaName, err := i.FetchCurrentSchema(ctx)
	if err != nil {
		return "", "", err
	}
	return schemaName, table, nil
}

func (i *Inspector) log(ctx context.Context, msg, schemaName, tableName string) {
	fields := map[string]any{"vendor": i.vendor.Name(), "schema": schemaName}
	if tableName != "" {
		fields["table"] = tableName
	}
	logger.FromContext(ctx).DebugWith(msg, fields)
}
