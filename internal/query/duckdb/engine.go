package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/marcboeker/go-duckdb/v2"

	"github.com/lakegate/lakegate/internal/query"
)

type Config struct {
	// Path is the database file; empty means in-memory.
	Path        string
	ReadOnly    bool
	Threads     int
	MemoryLimit string
}

// Engine is a long-lived handle over one embedded DuckDB instance. Session
// configuration happens once in Open; after that only read statements are
// expected to flow through it, concurrently.
type Engine struct {
	db *sql.DB
}

func Open(ctx context.Context, cfg Config) (*Engine, error) {
	dsn := cfg.Path
	// In-memory databases cannot be opened read-only.
	if cfg.ReadOnly && cfg.Path != "" {
		dsn = cfg.Path + "?access_mode=read_only"
	}

	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	engine := &Engine{db: db}
	settings := []string{
		"SET preserve_insertion_order = false",
	}
	if cfg.Threads > 0 {
		settings = append(settings, fmt.Sprintf("SET threads = %d", cfg.Threads))
	}
	if cfg.MemoryLimit != "" {
		settings = append(settings, fmt.Sprintf("SET memory_limit = '%s'", strings.ReplaceAll(cfg.MemoryLimit, "'", "''")))
	}
	for _, statement := range settings {
		if _, err := db.ExecContext(ctx, statement); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply session setting %q: %w", statement, err)
		}
	}

	return engine, nil
}

// Exec runs a bootstrap or registration statement. Not part of the request
// path; callers hold it for extension loading, secrets, and view creation.
func (e *Engine) Exec(ctx context.Context, sqlText string) error {
	if _, err := e.db.ExecContext(ctx, sqlText); err != nil {
		return fmt.Errorf("execute statement: %w", err)
	}
	return nil
}

// Query executes sqlText and materializes every row in engine return order.
func (e *Engine) Query(ctx context.Context, sqlText string, args []any) (query.RawResult, error) {
	start := time.Now()

	rows, err := e.db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return query.RawResult{}, fmt.Errorf("execute query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return query.RawResult{}, fmt.Errorf("query columns: %w", err)
	}

	resultRows := make([][]any, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		scanTargets := make([]any, len(columns))
		for i := range values {
			scanTargets[i] = &values[i]
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return query.RawResult{}, fmt.Errorf("scan row: %w", err)
		}
		resultRows = append(resultRows, normalizeValues(values))
	}
	if err := rows.Err(); err != nil {
		return query.RawResult{}, fmt.Errorf("iterate rows: %w", err)
	}

	return query.RawResult{
		Columns:  columns,
		Rows:     resultRows,
		Duration: time.Since(start),
	}, nil
}

// Describe reports column names and engine type labels for sqlText without
// executing it, via DuckDB's DESCRIBE over the statement text.
func (e *Engine) Describe(ctx context.Context, sqlText string, args []any) ([]query.Column, error) {
	rows, err := e.db.QueryContext(ctx, "DESCRIBE "+sqlText, args...)
	if err != nil {
		return nil, fmt.Errorf("describe query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	header, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("describe columns: %w", err)
	}
	nameIndex, typeIndex := -1, -1
	for i, column := range header {
		switch column {
		case "column_name":
			nameIndex = i
		case "column_type":
			typeIndex = i
		}
	}
	if nameIndex < 0 || typeIndex < 0 {
		return nil, fmt.Errorf("unexpected describe header: %v", header)
	}

	described := make([]query.Column, 0)
	for rows.Next() {
		values := make([]any, len(header))
		scanTargets := make([]any, len(header))
		for i := range values {
			scanTargets[i] = &values[i]
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return nil, fmt.Errorf("scan describe row: %w", err)
		}
		described = append(described, query.Column{
			Name: asString(values[nameIndex]),
			Type: asString(values[typeIndex]),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate describe rows: %w", err)
	}
	return described, nil
}

// Ping verifies the handle answers a trivial query.
func (e *Engine) Ping(ctx context.Context) error {
	var one int
	if err := e.db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("ping engine: %w", err)
	}
	return nil
}

func (e *Engine) Close() error {
	return e.db.Close()
}

func normalizeValues(values []any) []any {
	normalized := make([]any, len(values))
	for i, value := range values {
		switch typed := value.(type) {
		case []byte:
			normalized[i] = string(typed)
		default:
			normalized[i] = typed
		}
	}
	return normalized
}

func asString(value any) string {
	switch typed := value.(type) {
	case string:
		return typed
	case []byte:
		return string(typed)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", typed)
	}
}
