package query

import (
	"context"
	"time"
)

// Statement is a caller-supplied SQL string plus optional named parameters.
// It is never mutated after validation.
type Statement struct {
	SQL    string
	Params map[string]any
}

// Column describes one result column as reported by the engine.
type Column struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Row maps column names to values. Key order is irrelevant; the ordered
// column list lives on the Outcome.
type Row map[string]any

// Outcome is the terminal artifact of one executed request.
type Outcome struct {
	Columns     []Column
	Rows        []Row
	RowCount    int
	ExecutionMS float64
}

// RawResult is the engine's native answer before normalization: ordered
// column names and positional row values in engine return order.
type RawResult struct {
	Columns  []string
	Rows     [][]any
	Duration time.Duration
}

// Engine is the embedded analytical engine handle. Query executes SQL and
// streams back ordered columns and rows; Describe issues a metadata-only
// pass over the same statement text.
type Engine interface {
	Query(ctx context.Context, sqlText string, args []any) (RawResult, error)
	Describe(ctx context.Context, sqlText string, args []any) ([]Column, error)
}
