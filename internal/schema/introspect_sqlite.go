package schema

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/koustreak/dbinfo/internal/database"
)

// sqliteVendor covers SQLite, which has no information_schema. Its schemas
// are the attached databases ("main", "temp", ATTACH ... AS name); tables
// come from each database's sqlite_master and columns from
// pragma_table_info.
type sqliteVendor struct {
	noSequence
}

func (sqliteVendor) Name() string { return "sqlite" }

// CurrentSchema is always the main database.
func (sqliteVendor) CurrentSchema(context.Context, database.Conn) (string, error) {
	return "main", nil
}

// AutoincSQL is never substituted: ListColumns replaces the
// information_schema query.
func (sqliteVendor) AutoincSQL() string {
	return `1 = 0`
}

// DecodeDefault decodes pragma_table_info.dflt_value, the default
// expression exactly as written in CREATE TABLE. A double-quoted default
// is a string literal there, not an identifier.
func (sqliteVendor) DecodeDefault(raw any) *string {
	s, ok := rawString(raw)
	if !ok {
		return nil
	}
	v := stripParens(s)
	if v == "" || isNull(v) || isGeneratedMarker(v) {
		return nil
	}
	for _, q := range []byte{'\'', '"'} {
		if lit, ok := unquote(v, q); ok {
			return &lit
		}
	}
	return &v
}

// attached reports whether schemaName names an attached database. Names
// compare case-insensitively, as SQLite does.
func attached(ctx context.Context, conn database.Conn, schemaName string) (bool, error) {
	values, err := conn.FetchColumn(ctx, `SELECT name FROM pragma_database_list`, nil)
	if err != nil {
		return false, err
	}
	for _, v := range values {
		if name, ok := rawString(v); ok && strings.EqualFold(name, schemaName) {
			return true, nil
		}
	}
	return false, nil
}

// ListTables returns every table of the attached database, sqlite_sequence
// included. A database that is not attached has no tables.
func (sqliteVendor) ListTables(ctx context.Context, conn database.Conn, schemaName string) ([]string, error) {
	ok, err := attached(ctx, conn, schemaName)
	if err != nil || !ok {
		return []string{}, err
	}

	q := `SELECT name FROM ` + database.QuoteIdent(schemaName) + `.sqlite_master WHERE type = 'table' ORDER BY name`

	values, err := conn.FetchColumn(ctx, q, nil)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(values))
	for _, v := range values {
		name, err := toString(v, "name")
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}

// ListColumns reads pragma_table_info. Declared types such as VARCHAR(50)
// or NUMERIC(7,3) are split into type, size and scale. A column is
// autoincrement when it is an alias of the rowid: the table's only primary
// key column, declared INTEGER, with no separate primary key index. The
// index exists for INTEGER PRIMARY KEY DESC and WITHOUT ROWID tables.
func (v sqliteVendor) ListColumns(ctx context.Context, conn database.Conn, schemaName, table string) (*TableSchema, error) {
	ok, err := attached(ctx, conn, schemaName)
	if err != nil {
		return nil, err
	}
	if !ok {
		return newTableSchema(0), nil
	}

	const q = `
		SELECT name, type, "notnull", dflt_value, pk
		FROM pragma_table_info(:table, :schema)
		ORDER BY cid`

	rows, err := conn.FetchAll(ctx, q, map[string]any{"table": table, "schema": schemaName})
	if err != nil {
		return nil, err
	}

	cols := newTableSchema(len(rows))
	pkCount := 0
	for _, row := range rows {
		for _, key := range []string{"name", "type", "notnull", "dflt_value", "pk"} {
			if _, err := field(row, key); err != nil {
				return nil, err
			}
		}

		var col ColumnDefinition
		if col.Name, err = toString(row["name"], "name"); err != nil {
			return nil, err
		}
		declared, err := toString(row["type"], "type")
		if err != nil {
			return nil, err
		}
		col.Type, col.Size, col.Scale = splitDeclaredType(declared)
		if col.NotNull, err = toBool(row["notnull"], "notnull"); err != nil {
			return nil, err
		}
		// pk is the 1-based position within the primary key, 0 otherwise.
		if col.Primary, err = toBool(row["pk"], "pk"); err != nil {
			return nil, err
		}
		if col.Primary {
			pkCount++
		}
		col.Default = v.DecodeDefault(row["dflt_value"])
		cols.add(col)
	}

	if pkCount != 1 {
		return cols, nil
	}
	for i := range cols.columns {
		c := &cols.columns[i]
		if !c.Primary || !strings.EqualFold(c.Type, "INTEGER") {
			continue
		}
		alias, err := rowidAlias(ctx, conn, schemaName, table)
		if err != nil {
			return nil, err
		}
		c.Autoinc = alias
	}
	return cols, nil
}

// rowidAlias reports whether the table's INTEGER primary key is the rowid
// itself, i.e. no index backs the primary key.
func rowidAlias(ctx context.Context, conn database.Conn, schemaName, table string) (bool, error) {
	const q = `
		SELECT COUNT(*) AS n
		FROM pragma_index_list(:table, :schema)
		WHERE origin = 'pk'`

	values, err := conn.FetchColumn(ctx, q, map[string]any{"table": table, "schema": schemaName})
	if err != nil {
		return false, err
	}
	if len(values) == 0 {
		return true, nil
	}
	indexed, err := toBool(values[0], "n")
	if err != nil {
		return false, err
	}
	return !indexed, nil
}

var declaredTypeRe = regexp.MustCompile(`^\s*([^(]*?)\s*\(\s*([+-]?\d+)\s*(?:,\s*([+-]?\d+)\s*)?\)\s*$`)

// splitDeclaredType turns "NUMERIC(7,3)" into ("NUMERIC", 7, 3) and
// "VARCHAR(50)" into ("VARCHAR", 50, nil). Types without a length keep
// size and scale nil.
func splitDeclaredType(declared string) (string, *int, *int) {
	m := declaredTypeRe.FindStringSubmatch(declared)
	if m == nil {
		return strings.TrimSpace(declared), nil, nil
	}
	size, _ := strconv.Atoi(m[2])
	if m[3] == "" {
		return m[1], &size, nil
	}
	scale, _ := strconv.Atoi(m[3])
	return m[1], &size, &scale
}
