package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	ctxutil "3tcapital/biohoneypot/internal/infrastructure/context"
)

// Correlation exposes the chi request ID as the correlation ID that every
// log line about the request carries. It must run after chi's RequestID.
func Correlation(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := ctxutil.WithCorrelationID(r.Context(), chimw.GetReqID(r.Context()))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestLogger writes one access line per request once the handler returns.
//
// Levels:
//   - Info: answered by a registered route
//   - Warn: no route matched (scanners probing for other software)
//   - Error: 5xx
func RequestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"source", sourceAddress(r),
				"status", status,
				"duration_ms", float64(time.Since(start).Microseconds()) / 1e3,
				"bytes", ww.BytesWritten(),
			}
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					attrs = append(attrs, "route", pattern)
				}
			}
			if correlationID := ctxutil.GetCorrelationID(r.Context()); correlationID != "" {
				attrs = append(attrs, "correlation_id", correlationID)
			}
			if interactionID := ctxutil.GetInteractionID(r.Context()); interactionID != "" {
				attrs = append(attrs, "interaction_id", interactionID)
			}
			if userAgent := r.Header.Get("User-Agent"); userAgent != "" {
				attrs = append(attrs, "user_agent", userAgent)
			}

			switch {
			case status >= 500:
				log.Error("HTTP request", attrs...)
			case status == http.StatusNotFound || status == http.StatusMethodNotAllowed:
				log.Warn("HTTP probe", attrs...)
			default:
				log.Info("HTTP request", attrs...)
			}
		})
	}
}
