package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"runtime/debug"
)

// Recoverer recovers from handler panics, logs them with the request id
// and stack trace, and returns a 500 in the standard error envelope.
// http.ErrAbortHandler is re-raised so aborted responses stay aborted.
func Recoverer(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				if err, ok := rvr.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rvr)
				}

				logger.Error("panic recovered",
					slog.String("request_id", GetRequestID(r.Context())),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.Any("panic", rvr),
					slog.String("stack", string(debug.Stack())),
				)

				if os.Getenv("APP_ENV") == "development" {
					debug.PrintStack()
				}

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"error":{"code":"INTERNAL_ERROR","message":"Internal server error"}}`))
			}()

			next.ServeHTTP(w, r)
		})
	}
}
