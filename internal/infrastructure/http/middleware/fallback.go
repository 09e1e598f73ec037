package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"

	ctxutil "3tcapital/biohoneypot/internal/infrastructure/context"
	httpresp "3tcapital/biohoneypot/internal/infrastructure/http"
)

// Fallback recovers from handler panics and answers with a generic
// success-shaped body instead of an error page. It replaces chi's Recoverer,
// which would answer 500.
func Fallback(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				if err, ok := rvr.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					// Let net/http abort the connection silently.
					panic(rvr)
				}

				log.Error("recovered from handler panic",
					"panic", rvr,
					"method", r.Method,
					"path", r.URL.Path,
					"correlation_id", ctxutil.GetCorrelationID(r.Context()),
					"stack", string(debug.Stack()),
				)

				if r.Header.Get("Connection") != "Upgrade" {
					httpresp.WriteFallback(w, log)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
