package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lakegate/lakegate/internal/auth"
	"github.com/lakegate/lakegate/internal/config"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg, err := config.Load("lakegate-test", func(string) (string, bool) { return "", false })
	if err != nil {
		t.Fatalf("config.Load() error = %v", err)
	}
	return cfg
}

func TestHealthEndpoint(t *testing.T) {
	checked := false
	deps := Dependencies{
		EngineCheck: func(context.Context) error { checked = true; return nil },
	}
	handler := NewHandler(testConfig(t), deps)

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/v1/health", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", recorder.Code, http.StatusOK)
	}
	if !checked {
		t.Fatal("engine check not invoked")
	}
	var body map[string]any
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Fatalf("status field = %v", body["status"])
	}
	if body["service"] != "lakegate-test" {
		t.Fatalf("service field = %v", body["service"])
	}
}

func TestHealthEndpointReportsEngineFailure(t *testing.T) {
	deps := Dependencies{
		EngineCheck: func(context.Context) error { return errors.New("connection refused") },
	}
	handler := NewHandler(testConfig(t), deps)

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/v1/health", nil))

	if recorder.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", recorder.Code, http.StatusServiceUnavailable)
	}
	var body map[string]any
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["error_type"] != "ServiceUnavailable" {
		t.Fatalf("error_type = %v", body["error_type"])
	}
}

func TestReadyEndpointWithoutChecks(t *testing.T) {
	handler := NewHandler(testConfig(t), Dependencies{})

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/v1/ready", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", recorder.Code, http.StatusOK)
	}
}

func TestReadyEndpointReportsFailingCheck(t *testing.T) {
	deps := Dependencies{
		Readiness: func(context.Context) error { return errors.New("engine unreachable") },
	}
	handler := NewHandler(testConfig(t), deps)

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/v1/ready", nil))

	if recorder.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", recorder.Code, http.StatusServiceUnavailable)
	}
	var body map[string]any
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["error_type"] != "NotReady" {
		t.Fatalf("error_type = %v", body["error_type"])
	}
}

func TestMetricsEndpointServesPrometheusText(t *testing.T) {
	handler := NewHandler(testConfig(t), Dependencies{})

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/v1/metrics", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", recorder.Code, http.StatusOK)
	}
	if !strings.Contains(recorder.Body.String(), "go_goroutines") {
		t.Fatal("metrics body missing runtime collectors")
	}
}

func TestTablesEndpointListsRegisteredViews(t *testing.T) {
	deps := Dependencies{RegisteredTables: []string{"customers", "products"}}
	handler := NewHandler(testConfig(t), deps)

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/v1/tables", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", recorder.Code, http.StatusOK)
	}
	var body tablesResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Count != 2 || len(body.Tables) != 2 || body.Tables[0] != "customers" {
		t.Fatalf("body = %+v", body)
	}
}

func TestTablesEndpointEmptyListIsNotNull(t *testing.T) {
	handler := NewHandler(testConfig(t), Dependencies{})

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/v1/tables", nil))

	if !strings.Contains(recorder.Body.String(), `"tables":[]`) {
		t.Fatalf("body = %s", recorder.Body.String())
	}
}

func TestProtectedEndpointsRequireAuthWhenConfigured(t *testing.T) {
	cfg := testConfig(t)
	cfg.Auth.Required = true
	validator, err := auth.NewStaticAPIKeyValidator("secret:analyst")
	if err != nil {
		t.Fatalf("NewStaticAPIKeyValidator() error = %v", err)
	}
	deps := Dependencies{
		AuthMiddleware:   auth.Middleware(nil, validator),
		RegisteredTables: []string{"customers"},
	}
	handler := NewHandler(cfg, deps)

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/v1/tables", nil))
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated status = %d, want %d", recorder.Code, http.StatusUnauthorized)
	}

	request := httptest.NewRequest(http.MethodGet, "/v1/tables", nil)
	request.Header.Set("X-API-Key", "secret")
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	if recorder.Code != http.StatusOK {
		t.Fatalf("authenticated status = %d, want %d", recorder.Code, http.StatusOK)
	}

	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/v1/health", nil))
	if recorder.Code != http.StatusOK {
		t.Fatalf("health should stay open, status = %d", recorder.Code)
	}
}

func TestAuthRequiredWithoutMiddlewareFailsClosed(t *testing.T) {
	cfg := testConfig(t)
	cfg.Auth.Required = true
	handler := NewHandler(cfg, Dependencies{})

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/v1/tables", nil))
	if recorder.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", recorder.Code, http.StatusInternalServerError)
	}
}

func TestCombineReadinessChecksStopsAtFirstFailure(t *testing.T) {
	calls := 0
	failing := func(context.Context) error { calls++; return errors.New("down") }
	passing := func(context.Context) error { calls++; return nil }

	combined := CombineReadinessChecks(passing, nil, failing, passing)
	if err := combined(context.Background()); err == nil {
		t.Fatal("combined check succeeded, want error")
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
}
