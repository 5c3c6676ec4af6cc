// Package driver registers the database/sql drivers the warehouse client can
// open. Importing it with a blank identifier is enough:
//
//	import _ "github.com/revenueops/warehouse-mcp/internal/warehouse/driver"
//
// BigQuery is the production warehouse; SQLite backs local development and
// tests. The package has no public API.
package driver

import (
	_ "github.com/viant/bigquery"
	_ "modernc.org/sqlite"
)
