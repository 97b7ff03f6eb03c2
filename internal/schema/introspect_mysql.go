package schema

import (
	"context"

	"github.com/koustreak/dbinfo/internal/database"
)

// mysqlVendor covers MySQL and MariaDB. A MySQL "schema" is a database.
type mysqlVendor struct {
	noSequence
}

func (mysqlVendor) Name() string { return "mysql" }

func (mysqlVendor) CurrentSchema(ctx context.Context, conn database.Conn) (string, error) {
	return fetchScalar(ctx, conn, `SELECT DATABASE()`, nil)
}

// AutoincSQL reads the EXTRA column, which carries "auto_increment".
func (mysqlVendor) AutoincSQL() string {
	return `columns.extra LIKE '%auto_increment%'`
}

// DecodeDefault handles both spellings of column_default: MySQL 8 reports
// string literals bare (abc), MariaDB 10.2.7+ quotes them ('abc') and
// spells a missing default NULL.
func (mysqlVendor) DecodeDefault(raw any) *string {
	s, ok := rawString(raw)
	if !ok || isNull(s) || isGeneratedMarker(s) {
		return nil
	}
	if v, ok := unquote(s, '\''); ok {
		return &v
	}
	return &s
}

// fetchScalar runs a single-value query. No row or a NULL value yields "".
func fetchScalar(ctx context.Context, conn database.Conn, query string, params map[string]any) (string, error) {
	values, err := conn.FetchColumn(ctx, query, params)
	if err != nil || len(values) == 0 {
		return "", err
	}
	s, _ := rawString(values[0])
	return s, nil
}
