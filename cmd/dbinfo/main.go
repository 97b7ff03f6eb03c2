// Command dbinfo inspects table and column metadata of MySQL, PostgreSQL,
// SQLite and SQL Server databases.
//
//	dbinfo --driver postgres --dsn postgres://localhost/shop tables
//	dbinfo --config dbinfo.yaml columns billing.invoices
//	dbinfo dump public --out s3://snapshots/shop/public.json
//	dbinfo serve --addr :8080
package main

import (
	"os"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
