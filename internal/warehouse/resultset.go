package warehouse

import (
	"math"
	"strconv"
	"time"
)

// Row is one result record keyed by column name.
type Row map[string]any

// ResultSet is a fully materialized query result. Column order follows the
// projection; Rows preserve driver order.
type ResultSet struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// Len returns the number of rows.
func (r *ResultSet) Len() int { return len(r.Rows) }

// Head returns a result set with at most n rows and whether truncation
// happened. n <= 0 keeps everything.
func (r *ResultSet) Head(n int) (*ResultSet, bool) {
	if n <= 0 || len(r.Rows) <= n {
		return r, false
	}
	return &ResultSet{Columns: r.Columns, Rows: r.Rows[:n]}, true
}

// Records returns the rows as plain maps for JSON serialization.
func (r *ResultSet) Records() []map[string]any {
	out := make([]map[string]any, len(r.Rows))
	for i, row := range r.Rows {
		out[i] = map[string]any(row)
	}
	return out
}

// Float coerces a cell to float64. Missing values, NULLs and NaN all come
// back as zero so downstream arithmetic never propagates missing data.
func (r Row) Float(key string) float64 {
	v, ok := r[key]
	if !ok || v == nil {
		return 0
	}
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int64:
		f = float64(t)
	case int:
		f = float64(t)
	case string:
		f, _ = strconv.ParseFloat(t, 64)
	case []byte:
		f, _ = strconv.ParseFloat(string(t), 64)
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// Int coerces a cell to int, zero when absent or non-numeric.
func (r Row) Int(key string) int {
	return int(r.Float(key))
}

// Str coerces a cell to its string form, empty when absent. Dates and
// timestamps render as YYYY-MM-DD.
func (r Row) Str(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	case time.Time:
		return t.Format("2006-01-02")
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}
