package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/lakegate/lakegate/internal/audit"
	"github.com/lakegate/lakegate/internal/auth"
	"github.com/lakegate/lakegate/internal/executor"
	"github.com/lakegate/lakegate/internal/gatekeeper"
	"github.com/lakegate/lakegate/internal/observability"
	"github.com/lakegate/lakegate/internal/query"
)

type queryRequest struct {
	SQL     string         `json:"sql"`
	Params  map[string]any `json:"params"`
	MaxRows int            `json:"max_rows"`
}

type queryResponse struct {
	Columns     []query.Column `json:"columns"`
	Rows        []query.Row    `json:"rows"`
	RowCount    int            `json:"row_count"`
	ExecutionMS float64        `json:"execution_ms"`
}

func handleQuery(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Executor == nil {
		writeError(w, http.StatusNotImplemented, "InternalServerError", "query executor is not configured")
		return
	}

	var request queryRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "invalid query request body: "+err.Error())
		return
	}
	if strings.TrimSpace(request.SQL) == "" {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "sql is required")
		return
	}

	subject := ""
	if identity, ok := auth.IdentityFromContext(r.Context()); ok {
		subject = identity.Subject
	}

	if err := gatekeeper.Validate(request.SQL); err != nil {
		var validationErr *gatekeeper.ValidationError
		reason := string(gatekeeper.ReasonParseError)
		if errors.As(err, &validationErr) {
			reason = string(validationErr.Reason)
		}
		observability.IncrementQueryRejected(reason)
		audit.RecordAsync(deps.Logger, deps.Audit, audit.Entry{
			Subject: subject,
			SQLText: request.SQL,
			Outcome: audit.OutcomeRejected,
			Reason:  reason,
		})
		writeError(w, http.StatusBadRequest, "ReadOnlyViolation", err.Error())
		return
	}

	outcome, err := deps.Executor.Execute(r.Context(), query.Statement{
		SQL:    request.SQL,
		Params: request.Params,
	}, request.MaxRows)
	if err != nil {
		var timeoutErr *executor.TimeoutError
		if errors.As(err, &timeoutErr) {
			audit.RecordAsync(deps.Logger, deps.Audit, audit.Entry{
				Subject: subject,
				SQLText: request.SQL,
				Outcome: audit.OutcomeTimeout,
			})
			writeError(w, http.StatusGatewayTimeout, "QueryTimeout", err.Error())
			return
		}
		observability.IncrementQueryError()
		audit.RecordAsync(deps.Logger, deps.Audit, audit.Entry{
			Subject: subject,
			SQLText: request.SQL,
			Outcome: audit.OutcomeError,
			Reason:  err.Error(),
		})
		writeError(w, http.StatusInternalServerError, "InternalServerError", "query execution failed: "+err.Error())
		return
	}

	audit.RecordAsync(deps.Logger, deps.Audit, audit.Entry{
		Subject:    subject,
		SQLText:    request.SQL,
		Outcome:    audit.OutcomeOK,
		RowCount:   outcome.RowCount,
		DurationMS: outcome.ExecutionMS,
	})
	writeJSON(w, http.StatusOK, queryResponse{
		Columns:     outcome.Columns,
		Rows:        outcome.Rows,
		RowCount:    outcome.RowCount,
		ExecutionMS: outcome.ExecutionMS,
	})
}
