package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewStaticAPIKeyValidator(t *testing.T) {
	validator, err := NewStaticAPIKeyValidator("key-1:analyst, key-2:dashboard")
	if err != nil {
		t.Fatalf("NewStaticAPIKeyValidator() error = %v", err)
	}

	identity, ok := validator.Validate(context.Background(), "key-1")
	if !ok || identity.Subject != "analyst" {
		t.Fatalf("Validate(key-1) = %+v, %v", identity, ok)
	}
	if _, ok := validator.Validate(context.Background(), "unknown"); ok {
		t.Fatal("unknown key validated")
	}
}

func TestNewStaticAPIKeyValidatorRejectsMalformedSpec(t *testing.T) {
	cases := []string{"key-only", "key::", ":subject", "a:b:c"}
	for _, spec := range cases {
		if _, err := NewStaticAPIKeyValidator(spec); err == nil {
			t.Fatalf("NewStaticAPIKeyValidator(%q) succeeded, want error", spec)
		}
	}
}

func TestMiddlewareAcceptsHeaderAndBearer(t *testing.T) {
	validator, err := NewStaticAPIKeyValidator("key-1:analyst")
	if err != nil {
		t.Fatalf("NewStaticAPIKeyValidator() error = %v", err)
	}

	var gotSubject string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, _ := IdentityFromContext(r.Context())
		gotSubject = identity.Subject
		w.WriteHeader(http.StatusOK)
	})
	handler := Middleware(nil, validator)(next)

	req := httptest.NewRequest(http.MethodPost, "/v1/query", nil)
	req.Header.Set("X-API-Key", "key-1")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK || gotSubject != "analyst" {
		t.Fatalf("X-API-Key auth failed: status=%d subject=%q", rr.Code, gotSubject)
	}

	req = httptest.NewRequest(http.MethodPost, "/v1/query", nil)
	req.Header.Set("Authorization", "Bearer key-1")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("bearer auth failed: status=%d", rr.Code)
	}
}

func TestMiddlewareRejectsMissingAndInvalidKeys(t *testing.T) {
	validator, err := NewStaticAPIKeyValidator("key-1:analyst")
	if err != nil {
		t.Fatalf("NewStaticAPIKeyValidator() error = %v", err)
	}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler reached without credentials")
	})
	handler := Middleware(nil, validator)(next)

	req := httptest.NewRequest(http.MethodPost, "/v1/query", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("missing key status = %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/v1/query", nil)
	req.Header.Set("X-API-Key", "wrong")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("invalid key status = %d", rr.Code)
	}
}
