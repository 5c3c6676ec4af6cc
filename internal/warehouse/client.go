// Package warehouse provides the gateway every domain uses to reach the data
// warehouse. The client wraps a database/sql handle opened once at process
// start and injected into handlers; it is read-only shared state afterwards.
package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Querier is the warehouse surface domain handlers depend on. *Client is the
// production implementation; tests substitute counting stubs.
type Querier interface {
	Query(ctx context.Context, query string) (*ResultSet, error)
	Exec(ctx context.Context, query string) error
}

// Config selects the driver and DSN for Open.
type Config struct {
	Driver string
	DSN    string
}

// Client executes SQL against the warehouse and materializes results in
// memory. No caching, no retries: every call is one round-trip.
type Client struct {
	db  *sql.DB
	log zerolog.Logger
}

// Open connects using a registered database/sql driver (see the driver
// subpackage) and verifies the connection.
func Open(cfg Config, logger zerolog.Logger) (*Client, error) {
	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open warehouse (%s): %w", cfg.Driver, err)
	}
	return NewClient(db, logger), nil
}

// NewClient wraps an existing handle; the caller keeps ownership of db.
func NewClient(db *sql.DB, logger zerolog.Logger) *Client {
	return &Client{db: db, log: logger.With().Str("component", "warehouse").Logger()}
}

// Close releases the underlying handle.
func (c *Client) Close() error { return c.db.Close() }

// DB exposes the raw handle for test fixtures.
func (c *Client) DB() *sql.DB { return c.db }

// Query runs one SQL statement and materializes the full result set. Column
// values are decoded to driver-native Go types with []byte normalized to
// string.
func (c *Client) Query(ctx context.Context, query string) (*ResultSet, error) {
	started := time.Now()
	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	rs := &ResultSet{Columns: cols}
	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(Row, len(cols))
		for i, col := range cols {
			v := values[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			row[col] = v
		}
		rs.Rows = append(rs.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	c.log.Debug().Int("rows", rs.Len()).Dur("took", time.Since(started)).Msg("query completed")
	return rs, nil
}

// Exec runs one DML/DDL statement.
func (c *Client) Exec(ctx context.Context, query string) error {
	_, err := c.db.ExecContext(ctx, query)
	return err
}

// WriteTruncate replaces the full contents of table with rows: DELETE of all
// existing rows followed by a multi-row INSERT. Each run of the batch job
// overwrites the previous run entirely; no history is retained.
func (c *Client) WriteTruncate(ctx context.Context, table string, columns []string, rows [][]any) error {
	if err := c.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE true", quoteIdent(table))); err != nil {
		return fmt.Errorf("truncate %s: %w", table, err)
	}
	if len(rows) == 0 {
		return nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES ", quoteIdent(table), strings.Join(columns, ", "))
	for i, row := range rows {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		for j, v := range row {
			if j > 0 {
				b.WriteString(", ")
			}
			b.WriteString(literal(v))
		}
		b.WriteByte(')')
	}
	if err := c.Exec(ctx, b.String()); err != nil {
		return fmt.Errorf("load %s: %w", table, err)
	}
	c.log.Info().Str("table", table).Int("rows", len(rows)).Msg("table overwritten")
	return nil
}

// quoteIdent backtick-quotes a qualified identifier unless already quoted.
// Identifier interpolation is an explicit trust boundary of this system.
func quoteIdent(ident string) string {
	if strings.HasPrefix(ident, "`") {
		return ident
	}
	return "`" + ident + "`"
}

// literal renders a Go value as a SQL literal for generated INSERT rows. Only
// values produced by the batch job pass through here.
func literal(v any) string {
	switch t := v.(type) {
	case nil:
		return "NULL"
	case string:
		return "'" + strings.ReplaceAll(t, "'", "''") + "'"
	case time.Time:
		return "'" + t.UTC().Format("2006-01-02 15:04:05") + "'"
	case bool:
		if t {
			return "true"
		}
		return "false"
	case int:
		return fmt.Sprintf("%d", t)
	case int64:
		return fmt.Sprintf("%d", t)
	case float64:
		return fmt.Sprintf("%g", t)
	default:
		return "'" + strings.ReplaceAll(fmt.Sprint(t), "'", "''") + "'"
	}
}
