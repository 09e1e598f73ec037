package middleware

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"3tcapital/biohoneypot/internal/core/interaction"
	ctxutil "3tcapital/biohoneypot/internal/infrastructure/context"
	"3tcapital/biohoneypot/internal/infrastructure/payload"
)

// Archiver accepts captured records for out-of-process storage. Enqueue must
// not block.
type Archiver interface {
	Enqueue(rec interaction.Record) bool
}

// CaptureOptions configures the interception middleware.
type CaptureOptions struct {
	Store  interaction.Store
	Logger *slog.Logger
	// Routes resolves the route pattern recorded as the endpoint. When nil,
	// or when nothing matches, the raw path is recorded.
	Routes      chi.Routes
	MaxBodySize int
	Archive     Archiver
}

// Capture returns a middleware that records every request into the store
// before passing it on unchanged. It never short-circuits the request.
func Capture(opts CaptureOptions) func(http.Handler) http.Handler {
	maxBody := opts.MaxBodySize
	if maxBody <= 0 {
		maxBody = 1 << 20
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := interaction.Record{
				ID:            uuid.NewString(),
				Endpoint:      endpointFor(opts.Routes, r),
				Method:        r.Method,
				SourceAddress: sourceAddress(r),
				Headers:       payload.Headers(r.Header, r.Host),
				Body:          payload.Extract(r, maxBody),
				UserAgent:     r.Header.Get("User-Agent"),
				TokenClaims:   bearerClaims(r.Header.Get("Authorization")),
			}
			if rec.UserAgent == "" {
				rec.UserAgent = interaction.UnknownUserAgent
			}

			stored, err := opts.Store.Append(r.Context(), rec)
			if err != nil {
				opts.Logger.Error("failed to store interaction",
					"interaction_id", rec.ID,
					"error", err,
				)
			} else if opts.Archive != nil && !opts.Archive.Enqueue(stored) {
				opts.Logger.Warn("interaction archive queue full, record not archived",
					"interaction_id", rec.ID,
				)
			}

			opts.Logger.Warn("honeypot interaction",
				"interaction", fmt.Sprintf("%s -> %s %s", rec.SourceAddress, rec.Method, rec.Endpoint),
				"interaction_id", rec.ID,
				"correlation_id", ctxutil.GetCorrelationID(r.Context()),
				"user_agent", rec.UserAgent,
			)

			ctx := ctxutil.WithInteractionID(r.Context(), rec.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// endpointFor returns the pattern of the route r would be dispatched to, or
// the raw path if no route matches.
func endpointFor(routes chi.Routes, r *http.Request) string {
	path := routePath(r)
	if pattern, ok := matchRoute(routes, r.Method, path); ok {
		return pattern
	}
	return path
}

// sourceAddress returns the host part of the peer address. When RealIP ran
// first, RemoteAddr already holds a bare IP.
func sourceAddress(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// bearerClaims decodes, without verifying, the claims of a bearer JWT.
func bearerClaims(header string) map[string]any {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(parts[1], claims); err != nil {
		return nil
	}
	if len(claims) == 0 {
		return nil
	}
	return map[string]any(claims)
}
