package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pricewell/pricewell/internal/auth"
	"github.com/pricewell/pricewell/internal/model"
)

func TestRequireScope_Authorized(t *testing.T) {
	testCases := []struct {
		name          string
		scopes        []string
		requiredScope string
		wantStatus    int
	}{
		{
			name:          "subscribe scope allows subscribe",
			scopes:        []string{model.ScopeSubscribe},
			requiredScope: model.ScopeSubscribe,
			wantStatus:    http.StatusOK,
		},
		{
			name:          "admin allows subscribe",
			scopes:        []string{model.ScopeAdmin},
			requiredScope: model.ScopeSubscribe,
			wantStatus:    http.StatusOK,
		},
		{
			name:          "admin allows admin",
			scopes:        []string{model.ScopeAdmin},
			requiredScope: model.ScopeAdmin,
			wantStatus:    http.StatusOK,
		},
		{
			name:          "multiple scopes work",
			scopes:        []string{model.ScopeSubscribe, model.ScopeAdmin},
			requiredScope: model.ScopeAdmin,
			wantStatus:    http.StatusOK,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			identity := &model.Identity{
				TokenID:     "tok123",
				TokenPrefix: "abc123",
				UserID:      "user123",
				Scopes:      tc.scopes,
			}

			handler := RequireScope(tc.requiredScope)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			ctx := auth.ContextWithIdentity(req.Context(), identity)
			req = req.WithContext(ctx)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Errorf("expected status %d, got %d", tc.wantStatus, rec.Code)
			}
		})
	}
}

func TestRequireScope_Forbidden(t *testing.T) {
	identity := &model.Identity{
		TokenID:     "tok123",
		TokenPrefix: "abc123",
		UserID:      "user123",
		Scopes:      []string{model.ScopeSubscribe},
	}

	handler := RequireScope(model.ScopeAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	ctx := auth.ContextWithIdentity(req.Context(), identity)
	req = req.WithContext(ctx)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected status %d, got %d", http.StatusForbidden, rec.Code)
	}
}

func TestRequireScope_NoIdentity(t *testing.T) {
	handler := RequireScope(model.ScopeSubscribe)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestConvenienceMiddleware(t *testing.T) {
	identity := &model.Identity{
		TokenID:     "tok123",
		TokenPrefix: "abc123",
		UserID:      "user123",
		Scopes:      []string{model.ScopeAdmin},
	}

	testCases := []struct {
		name       string
		middleware func() func(http.Handler) http.Handler
	}{
		{"RequireSubscribe", RequireSubscribe},
		{"RequireAdmin", RequireAdmin},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := tc.middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			ctx := auth.ContextWithIdentity(req.Context(), identity)
			req = req.WithContext(ctx)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			// Admin should pass all
			if rec.Code != http.StatusOK {
				t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
			}
		})
	}
}
