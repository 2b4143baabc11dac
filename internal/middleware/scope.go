package middleware

import (
	"fmt"
	"net/http"
	"slices"

	"github.com/pricewell/pricewell/internal/auth"
	"github.com/pricewell/pricewell/internal/model"
)

// RequireScope returns middleware that enforces scope requirements.
// Must be applied after RequireIdentity middleware.
// If multiple scopes are provided, having ANY of them is sufficient.
func RequireScope(required ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := auth.IdentityFromContext(r.Context())
			if identity == nil {
				writeScopeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
				return
			}

			// Admin scope grants all permissions
			if slices.Contains(identity.Scopes, model.ScopeAdmin) {
				next.ServeHTTP(w, r)
				return
			}

			// Check if any required scope is present
			for _, req := range required {
				if slices.Contains(identity.Scopes, req) {
					next.ServeHTTP(w, r)
					return
				}
			}

			writeScopeError(w, http.StatusForbidden, "FORBIDDEN",
				fmt.Sprintf("Insufficient permissions. Required scope: %s", required[0]))
		})
	}
}

// RequireSubscribe is a convenience middleware for the subscribe scope.
func RequireSubscribe() func(http.Handler) http.Handler {
	return RequireScope(model.ScopeSubscribe)
}

// RequireAdmin is a convenience middleware for the admin scope.
func RequireAdmin() func(http.Handler) http.Handler {
	return RequireScope(model.ScopeAdmin)
}

// writeScopeError writes a scope-related error response.
func writeScopeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(fmt.Sprintf(`{"error":{"code":"%s","message":"%s"}}`, code, message)))
}
