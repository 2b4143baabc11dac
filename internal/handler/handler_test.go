package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func invoke(t *testing.T, fn http.HandlerFunc, method, path string) (*httptest.ResponseRecorder, map[string]string) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	fn(rec, req)

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return rec, body
}

func TestHandler_Hello(t *testing.T) {
	h := New()

	rec, body := invoke(t, h.Hello, http.MethodGet, "/")

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", ct)
	}
	if body["message"] != "Pricewell pricing service" {
		t.Errorf("unexpected message: %s", body["message"])
	}
	if body["version"] != "1.0.0" {
		t.Errorf("unexpected version: %s", body["version"])
	}
}

func TestHandler_Fallbacks(t *testing.T) {
	h := New()

	tests := []struct {
		name      string
		fn        http.HandlerFunc
		method    string
		path      string
		wantCode  int
		wantError string
	}{
		{"not found", h.NotFound, http.MethodGet, "/nonexistent", http.StatusNotFound, "resource not found"},
		{"method not allowed", h.MethodNotAllowed, http.MethodPost, "/", http.StatusMethodNotAllowed, "method not allowed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := invoke(t, tt.fn, tt.method, tt.path)

			if rec.Code != tt.wantCode {
				t.Errorf("expected status %d, got %d", tt.wantCode, rec.Code)
			}
			if body["error"] != tt.wantError {
				t.Errorf("unexpected error message: %s", body["error"])
			}
		})
	}
}
