// Package executor takes an accepted statement and produces a bounded
// outcome: a row cap unless the statement aggregates, a wall-clock deadline
// on dispatch, and a normalized result shape independent of the engine.
package executor

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/lakegate/lakegate/internal/observability"
	"github.com/lakegate/lakegate/internal/query"
)

type Config struct {
	DefaultMaxRows int
	Timeout        time.Duration
	Workers        int
}

// TimeoutError reports a dispatch that did not return before the deadline.
// The underlying engine call is not cancelled; it keeps its worker slot
// until it completes on its own.
type TimeoutError struct {
	Seconds float64
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("query exceeded timeout of %g seconds", e.Seconds)
}

// Executor dispatches accepted statements against a shared engine handle.
// Blocking engine calls run on a bounded worker pool so request acceptance
// never waits on query execution.
type Executor struct {
	engine query.Engine
	cfg    Config
	slots  chan struct{}
	logger *slog.Logger
}

func New(engine query.Engine, cfg Config, logger *slog.Logger) *Executor {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.DefaultMaxRows <= 0 {
		cfg.DefaultMaxRows = 10000
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Executor{
		engine: engine,
		cfg:    cfg,
		slots:  make(chan struct{}, cfg.Workers),
		logger: logger,
	}
}

type dispatchResult struct {
	raw query.RawResult
	err error
}

// Execute runs one accepted statement. maxRows overrides the configured
// default when positive; the cap is skipped entirely for aggregating
// statements. A deadline races the engine call: the first to finish wins,
// and a lost engine call is abandoned, not stopped.
func (x *Executor) Execute(ctx context.Context, statement query.Statement, maxRows int) (query.Outcome, error) {
	limit := x.cfg.DefaultMaxRows
	if maxRows > 0 {
		limit = maxRows
	}

	finalSQL := stripTrailingSemicolons(statement.SQL)
	if HasAggregation(finalSQL) {
		x.logger.Debug("statement aggregates, row limit not applied")
	} else {
		x.logger.Debug("applying row limit", slog.Int("limit", limit))
		// The newline keeps a trailing line comment in the statement from
		// swallowing the closing parenthesis.
		finalSQL = fmt.Sprintf("SELECT * FROM (%s\n) AS t LIMIT %d", finalSQL, limit)
	}
	args := namedArgs(statement.Params)

	start := time.Now()
	raw, err := x.dispatch(ctx, finalSQL, args)
	if err != nil {
		return query.Outcome{}, err
	}

	described, err := x.engine.Describe(ctx, finalSQL, args)
	if err != nil {
		return query.Outcome{}, fmt.Errorf("describe result columns: %w", err)
	}

	// Row keys always come from the streaming call so columns and row data
	// cannot drift apart; the describe pass only contributes type labels.
	columns := make([]query.Column, len(raw.Columns))
	for i, name := range raw.Columns {
		columns[i] = query.Column{Name: name}
		if i < len(described) {
			columns[i].Type = described[i].Type
		}
	}

	rows := make([]query.Row, 0, len(raw.Rows))
	for _, values := range raw.Rows {
		row := make(query.Row, len(columns))
		for i, column := range columns {
			if i < len(values) {
				row[column.Name] = values[i]
			}
		}
		rows = append(rows, row)
	}

	elapsed := roundMillis(time.Since(start))
	observability.ObserveQueryExecuted(time.Since(start), len(rows))
	x.logger.Info("query executed",
		slog.Int("row_count", len(rows)),
		slog.Float64("execution_ms", elapsed),
	)

	return query.Outcome{
		Columns:     columns,
		Rows:        rows,
		RowCount:    len(rows),
		ExecutionMS: elapsed,
	}, nil
}

// dispatch runs the engine call on the worker pool, racing the configured
// deadline. Waiting for a free slot counts against the same deadline.
func (x *Executor) dispatch(ctx context.Context, sqlText string, args []any) (query.RawResult, error) {
	deadline := time.NewTimer(x.cfg.Timeout)
	defer deadline.Stop()

	select {
	case x.slots <- struct{}{}:
	case <-deadline.C:
		observability.IncrementQueryTimeout()
		return query.RawResult{}, &TimeoutError{Seconds: x.cfg.Timeout.Seconds()}
	case <-ctx.Done():
		return query.RawResult{}, ctx.Err()
	}

	observability.SetQueriesInFlight(len(x.slots))
	results := make(chan dispatchResult, 1)
	go func() {
		raw, err := x.engine.Query(context.WithoutCancel(ctx), sqlText, args)
		results <- dispatchResult{raw: raw, err: err}
		<-x.slots
		observability.SetQueriesInFlight(len(x.slots))
	}()

	select {
	case result := <-results:
		if result.err != nil {
			return query.RawResult{}, result.err
		}
		return result.raw, nil
	case <-deadline.C:
		observability.IncrementQueryTimeout()
		x.logger.Warn("query abandoned after deadline; engine call still running",
			slog.Float64("timeout_seconds", x.cfg.Timeout.Seconds()))
		return query.RawResult{}, &TimeoutError{Seconds: x.cfg.Timeout.Seconds()}
	case <-ctx.Done():
		return query.RawResult{}, ctx.Err()
	}
}

func namedArgs(params map[string]any) []any {
	if len(params) == 0 {
		return nil
	}
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	args := make([]any, 0, len(names))
	for _, name := range names {
		args = append(args, sql.Named(name, params[name]))
	}
	return args
}

func stripTrailingSemicolons(sqlText string) string {
	trimmed := strings.TrimSpace(sqlText)
	for strings.HasSuffix(trimmed, ";") {
		trimmed = strings.TrimSpace(strings.TrimSuffix(trimmed, ";"))
	}
	return trimmed
}

func roundMillis(d time.Duration) float64 {
	ms := float64(d.Nanoseconds()) / 1e6
	return math.Round(ms*100) / 100
}
