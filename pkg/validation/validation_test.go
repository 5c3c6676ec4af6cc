package validation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRequiredMessageUsesSchemaFieldNames(t *testing.T) {
	type input struct {
		SQL       string `validate:"required"`
		DateRange string `validate:"required"`
		CohortA   string `validate:"required"`
	}

	// First violation wins, in struct field order.
	require.Equal(t, "sql is required", ValidateStruct(input{}))
	require.Equal(t, "date_range is required", ValidateStruct(input{SQL: "SELECT 1"}))
	require.Equal(t, "cohort_a is required", ValidateStruct(input{SQL: "SELECT 1", DateRange: "last_30_days"}))
	require.Empty(t, ValidateStruct(input{SQL: "SELECT 1", DateRange: "last_30_days", CohortA: "jan"}))
}

func TestTableIDRule(t *testing.T) {
	type input struct {
		Table string `validate:"required,tableid"`
	}

	require.Empty(t, ValidateStruct(input{Table: "dataset.table"}))
	require.Empty(t, ValidateStruct(input{Table: "project.dataset.table"}))
	require.Equal(t, "table is required", ValidateStruct(input{}))
	require.Equal(t, "table must be a qualified table id (dataset.table)", ValidateStruct(input{Table: "bare"}))
	require.Equal(t, "table must be a qualified table id (dataset.table)", ValidateStruct(input{Table: "a.b.c.d"}))
	require.Equal(t, "table must be a qualified table id (dataset.table)", ValidateStruct(input{Table: "a..c"}))
}

func TestRangeMessages(t *testing.T) {
	type input struct {
		Rows int `validate:"min=1"`
	}
	require.Equal(t, "rows must satisfy min=1", ValidateStruct(input{Rows: 0}))
	require.Empty(t, ValidateStruct(input{Rows: 5}))
}
