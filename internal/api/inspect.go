package api

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/lakegate/lakegate/internal/executor"
	"github.com/lakegate/lakegate/internal/query"
)

// Table inspection: schema, row stats, and sample rows for a registered
// view. All three are server-built read statements dispatched through the
// same bounded executor as caller queries.

const sampleRowCount = 5

type schemaColumn struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Nullable bool   `json:"nullable"`
}

type schemaResponse struct {
	Table       string         `json:"table"`
	Columns     []schemaColumn `json:"columns"`
	ColumnCount int            `json:"column_count"`
}

type statsResponse struct {
	Table    string `json:"table"`
	RowCount any    `json:"row_count"`
}

func handleTableSchema(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	tableName, ok := resolveTable(deps, w, r)
	if !ok {
		return
	}

	outcome, ok := runInspection(deps, w, r, query.Statement{
		SQL: "SELECT column_name, data_type, is_nullable FROM information_schema.columns" +
			" WHERE table_name = $table ORDER BY ordinal_position",
		Params: map[string]any{"table": tableName},
	}, 0)
	if !ok {
		return
	}
	if outcome.RowCount == 0 {
		writeError(w, http.StatusNotFound, "TableNotFound", "table "+tableName+" not found")
		return
	}

	columns := make([]schemaColumn, 0, outcome.RowCount)
	for _, row := range outcome.Rows {
		columns = append(columns, schemaColumn{
			Name:     asText(row["column_name"]),
			Type:     asText(row["data_type"]),
			Nullable: asText(row["is_nullable"]) == "YES",
		})
	}
	writeJSON(w, http.StatusOK, schemaResponse{
		Table:       tableName,
		Columns:     columns,
		ColumnCount: len(columns),
	})
}

func handleTableStats(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	tableName, ok := resolveTable(deps, w, r)
	if !ok {
		return
	}

	outcome, ok := runInspection(deps, w, r, query.Statement{
		SQL: "SELECT COUNT(*) AS row_count FROM " + quoteIdent(tableName),
	}, 0)
	if !ok {
		return
	}
	var rowCount any
	if outcome.RowCount > 0 {
		rowCount = outcome.Rows[0]["row_count"]
	}
	writeJSON(w, http.StatusOK, statsResponse{Table: tableName, RowCount: rowCount})
}

func handleTableSample(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	tableName, ok := resolveTable(deps, w, r)
	if !ok {
		return
	}

	outcome, ok := runInspection(deps, w, r, query.Statement{
		SQL: "SELECT * FROM " + quoteIdent(tableName),
	}, sampleRowCount)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, queryResponse{
		Columns:     outcome.Columns,
		Rows:        outcome.Rows,
		RowCount:    outcome.RowCount,
		ExecutionMS: outcome.ExecutionMS,
	})
}

// resolveTable maps the path segment to a registered view. Only names the
// registrar created are inspectable, so no caller-supplied identifier ever
// reaches a statement unchecked.
func resolveTable(deps Dependencies, w http.ResponseWriter, r *http.Request) (string, bool) {
	tableName := strings.TrimSpace(r.PathValue("table"))
	if tableName == "" {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "table name is required")
		return "", false
	}
	if !slices.Contains(deps.RegisteredTables, tableName) {
		writeError(w, http.StatusNotFound, "TableNotFound", "table "+tableName+" is not registered")
		return "", false
	}
	return tableName, true
}

func runInspection(deps Dependencies, w http.ResponseWriter, r *http.Request, statement query.Statement, maxRows int) (query.Outcome, bool) {
	if deps.Executor == nil {
		writeError(w, http.StatusNotImplemented, "InternalServerError", "query executor is not configured")
		return query.Outcome{}, false
	}
	outcome, err := deps.Executor.Execute(r.Context(), statement, maxRows)
	if err != nil {
		var timeoutErr *executor.TimeoutError
		if errors.As(err, &timeoutErr) {
			writeError(w, http.StatusGatewayTimeout, "QueryTimeout", err.Error())
			return query.Outcome{}, false
		}
		writeError(w, http.StatusInternalServerError, "InternalServerError", "table inspection failed: "+err.Error())
		return query.Outcome{}, false
	}
	return outcome, true
}

func quoteIdent(value string) string {
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}

func asText(value any) string {
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
