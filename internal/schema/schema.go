package schema

import (
	"context"
	"slices"

	"github.com/koustreak/dbinfo/internal/database"
	"github.com/koustreak/dbinfo/internal/errs"
)

// Vendor supplies what information_schema cannot express portably for one
// database engine.
type Vendor interface {
	// Name is the canonical vendor name: mysql, pgsql, sqlite, sqlsrv.
	Name() string

	// CurrentSchema returns the schema active for the connection's session.
	// Engines without a schema concept report the catalog or database name.
	CurrentSchema(ctx context.Context, conn database.Conn) (string, error)

	// AutoincSQL returns a boolean SQL expression over the "columns" alias
	// of information_schema.columns that is true for autoincrement/identity
	// columns.
	AutoincSQL() string

	// DecodeDefault normalizes a raw column_default value. nil means no
	// default, including time-of-insert and generated defaults.
	DecodeDefault(raw any) *string

	// AutoincSequence returns the sequence feeding table's autoincrement
	// column, or "" when there is none or the engine numbers rows inline.
	AutoincSequence(ctx context.Context, conn database.Conn, schema, table string) (string, error)
}

// tableLister is implemented by vendors whose table list does not come
// from information_schema.tables.
type tableLister interface {
	ListTables(ctx context.Context, conn database.Conn, schema string) ([]string, error)
}

// columnLister is implemented by vendors whose columns do not come from
// information_schema.columns.
type columnLister interface {
	ListColumns(ctx context.Context, conn database.Conn, schema, table string) (*TableSchema, error)
}

// noSequence is embedded by vendors with inline auto-numbering.
type noSequence struct{}

func (noSequence) AutoincSequence(context.Context, database.Conn, string, string) (string, error) {
	return "", nil
}

// vendors maps each supported driver to its adapter constructor.
var vendors = map[database.Driver]func() Vendor{
	database.DriverMySQL:     func() Vendor { return mysqlVendor{} },
	database.DriverPostgres:  func() Vendor { return pgsqlVendor{} },
	database.DriverSQLite:    func() Vendor { return sqliteVendor{} },
	database.DriverSQLServer: func() Vendor { return sqlsrvVendor{} },
}

// lookupVendor resolves a connection's driver name to its adapter.
func lookupVendor(driverName string) (Vendor, error) {
	newVendor, ok := vendors[database.ParseDriver(driverName)]
	if !ok {
		return nil, errs.Newf(errs.ErrKindUnsupportedVendor, "no vendor adapter for driver %q", driverName)
	}
	return newVendor(), nil
}

// Drivers lists the driver names with a registered adapter, sorted.
func Drivers() []string {
	names := make([]string, 0, len(vendors))
	for d := range vendors {
		names = append(names, string(d))
	}
	slices.Sort(names)
	return names
}
