package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// passHandler writes 200 "ok".
var passHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("ok")) //nolint:errcheck
})

func call(t *testing.T, mw func(http.Handler) http.Handler, target string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	mw(passHandler).ServeHTTP(rr, req)
	return rr
}

func TestAPIKey_ModeNone_PassesThrough(t *testing.T) {
	rr := call(t, APIKey("none", "x-api-key", "secret"), "/api/v1/health", nil)
	if rr.Code != http.StatusOK {
		t.Errorf("status: got %d, want 200", rr.Code)
	}
}

func TestAPIKey_EmptyKey_PassesThrough(t *testing.T) {
	// key="" means auth is not configured → allow all.
	rr := call(t, APIKey("apikey", "x-api-key", ""), "/api/v1/health", nil)
	if rr.Code != http.StatusOK {
		t.Errorf("status: got %d, want 200", rr.Code)
	}
}

func TestAPIKey_CorrectHeader_Passes(t *testing.T) {
	rr := call(t, APIKey("apikey", "x-api-key", "supersecret"), "/api/v1/health",
		map[string]string{"x-api-key": "supersecret"})
	if rr.Code != http.StatusOK {
		t.Errorf("status: got %d, want 200", rr.Code)
	}
	if rr.Body.String() != "ok" {
		t.Errorf("body: got %q, want ok", rr.Body.String())
	}
}

func TestAPIKey_QueryParam_Passes(t *testing.T) {
	rr := call(t, APIKey("apikey", "x-api-key", "supersecret"), "/ws/stream?api_key=supersecret", nil)
	if rr.Code != http.StatusOK {
		t.Errorf("status: got %d, want 200", rr.Code)
	}
}

func TestAPIKey_WrongKey_Rejected(t *testing.T) {
	rr := call(t, APIKey("apikey", "x-api-key", "supersecret"), "/api/v1/health",
		map[string]string{"x-api-key": "wrong"})
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}
}

func TestAPIKey_MissingKey_Rejected(t *testing.T) {
	rr := call(t, APIKey("apikey", "x-api-key", "supersecret"), "/api/v1/health", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rr.Code)
	}
}

func TestAPIKey_CustomHeader(t *testing.T) {
	mw := APIKey("apikey", "x-dash-key", "k")
	if rr := call(t, mw, "/", map[string]string{"x-dash-key": "k"}); rr.Code != http.StatusOK {
		t.Errorf("custom header: got %d, want 200", rr.Code)
	}
	if rr := call(t, mw, "/", map[string]string{"x-api-key": "k"}); rr.Code != http.StatusUnauthorized {
		t.Errorf("default header with custom configured: got %d, want 401", rr.Code)
	}
}
