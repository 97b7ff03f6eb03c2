package schema

import (
	"context"

	"github.com/koustreak/dbinfo/internal/database"
)

// sqlsrvVendor covers Microsoft SQL Server.
type sqlsrvVendor struct {
	noSequence
}

func (sqlsrvVendor) Name() string { return "sqlsrv" }

func (sqlsrvVendor) CurrentSchema(ctx context.Context, conn database.Conn) (string, error) {
	return fetchScalar(ctx, conn, `SELECT SCHEMA_NAME()`, nil)
}

// AutoincSQL asks COLUMNPROPERTY whether the column is an IDENTITY.
func (sqlsrvVendor) AutoincSQL() string {
	return `COLUMNPROPERTY(OBJECT_ID(QUOTENAME(columns.table_schema) + '.' + QUOTENAME(columns.table_name)), columns.column_name, 'IsIdentity') = 1`
}

// DecodeDefault unwraps the parentheses SQL Server stores around every
// default: ((12345)) → 12345, ('abc') → abc, (N'abc') → abc.
func (sqlsrvVendor) DecodeDefault(raw any) *string {
	s, ok := rawString(raw)
	if !ok {
		return nil
	}
	v := stripParens(s)
	if v == "" || isNull(v) || isGeneratedMarker(v) {
		return nil
	}
	if len(v) > 1 && (v[0] == 'N' || v[0] == 'n') && v[1] == '\'' {
		if lit, ok := unquote(v[1:], '\''); ok {
			return &lit
		}
	}
	if lit, ok := unquote(v, '\''); ok {
		return &lit
	}
	return &v
}

