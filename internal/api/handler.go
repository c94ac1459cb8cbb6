// Package api exposes the gatekeeper over HTTP: a single query endpoint
// guarded by validation and auth, plus health, readiness, metrics, and a
// listing of the tables registered at startup.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lakegate/lakegate/internal/audit"
	"github.com/lakegate/lakegate/internal/config"
	"github.com/lakegate/lakegate/internal/observability"
	"github.com/lakegate/lakegate/internal/query"
)

type ReadinessCheck func(ctx context.Context) error

// QueryExecutor is the executor seam the query handler dispatches through.
type QueryExecutor interface {
	Execute(ctx context.Context, statement query.Statement, maxRows int) (query.Outcome, error)
}

type Dependencies struct {
	Logger *slog.Logger
	// EngineCheck backs /v1/health: liveness means the engine still answers
	// a trivial statement. Readiness covers the remaining collaborators.
	EngineCheck       ReadinessCheck
	Readiness         ReadinessCheck
	AuthMiddleware    func(http.Handler) http.Handler
	DependencyTimeout time.Duration
	Executor          QueryExecutor
	Audit             audit.Recorder
	// RegisteredTables holds the view names created at startup, in
	// registration order.
	RegisteredTables []string
}

func NewHandler(cfg config.Config, deps Dependencies) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /v1/health", func(w http.ResponseWriter, r *http.Request) {
		if deps.EngineCheck != nil {
			timeout := deps.DependencyTimeout
			if timeout <= 0 {
				timeout = 2 * time.Second
			}
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()
			if err := deps.EngineCheck(ctx); err != nil {
				if deps.Logger != nil {
					deps.Logger.ErrorContext(r.Context(), "health check failed", slog.Any("error", err))
				}
				writeError(w, http.StatusServiceUnavailable, "ServiceUnavailable", "service unavailable: engine connection error")
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "service": cfg.Service.Name})
	})

	mux.HandleFunc("GET /v1/ready", func(w http.ResponseWriter, r *http.Request) {
		if deps.Readiness == nil {
			writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
			return
		}
		timeout := deps.DependencyTimeout
		if timeout <= 0 {
			timeout = 2 * time.Second
		}
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()
		if err := deps.Readiness(ctx); err != nil {
			writeError(w, http.StatusServiceUnavailable, "NotReady", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
	})

	mux.Handle("GET /v1/metrics", promhttp.Handler())

	protected := http.NewServeMux()
	protected.HandleFunc("POST /v1/query", func(w http.ResponseWriter, r *http.Request) {
		handleQuery(deps, w, r)
	})
	protected.HandleFunc("GET /v1/tables", func(w http.ResponseWriter, r *http.Request) {
		handleListTables(deps, w, r)
	})
	protected.HandleFunc("GET /v1/tables/{table}/schema", func(w http.ResponseWriter, r *http.Request) {
		handleTableSchema(deps, w, r)
	})
	protected.HandleFunc("GET /v1/tables/{table}/stats", func(w http.ResponseWriter, r *http.Request) {
		handleTableStats(deps, w, r)
	})
	protected.HandleFunc("GET /v1/tables/{table}/sample", func(w http.ResponseWriter, r *http.Request) {
		handleTableSample(deps, w, r)
	})

	var protectedHandler http.Handler = protected
	if cfg.Auth.Required {
		if deps.AuthMiddleware == nil {
			if deps.Logger != nil {
				deps.Logger.Error("auth required but auth middleware missing")
			}
			protectedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				writeError(w, http.StatusInternalServerError, "InternalServerError", "auth middleware is required by configuration")
			})
		} else {
			protectedHandler = deps.AuthMiddleware(protectedHandler)
		}
	}
	mux.Handle("POST /v1/query", protectedHandler)
	mux.Handle("GET /v1/tables", protectedHandler)
	mux.Handle("GET /v1/tables/{table}/schema", protectedHandler)
	mux.Handle("GET /v1/tables/{table}/stats", protectedHandler)
	mux.Handle("GET /v1/tables/{table}/sample", protectedHandler)

	middlewares := []func(http.Handler) http.Handler{
		observability.TraceMiddleware,
		observability.MetricsMiddleware,
	}
	if deps.Logger != nil {
		middlewares = append(middlewares, observability.LoggingMiddleware(deps.Logger))
	}
	return chain(mux, middlewares...)
}

// CheckEngine probes the embedded engine with a trivial statement.
func CheckEngine(engine interface {
	Ping(ctx context.Context) error
}) ReadinessCheck {
	return func(ctx context.Context) error {
		return engine.Ping(ctx)
	}
}

func CombineReadinessChecks(checks ...ReadinessCheck) ReadinessCheck {
	filtered := make([]ReadinessCheck, 0, len(checks))
	for _, check := range checks {
		if check != nil {
			filtered = append(filtered, check)
		}
	}
	return func(ctx context.Context) error {
		for _, check := range filtered {
			if err := check(ctx); err != nil {
				return err
			}
		}
		return nil
	}
}

func chain(base http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	wrapped := base
	for i := len(middlewares) - 1; i >= 0; i-- {
		wrapped = middlewares[i](wrapped)
	}
	return wrapped
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, errorType, detail string) {
	writeJSON(w, status, map[string]any{
		"detail":     detail,
		"error_type": errorType,
	})
}
