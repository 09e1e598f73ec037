package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// CORS allows any origin, matching a public research API. Preflight requests
// are answered directly with 200. A bare OPTIONS on a path some route serves
// gets 200 with an Allow header; other paths fall through to the router.
func CORS(routes chi.Routes) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", "*")

			if r.Method != http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			if r.Header.Get("Access-Control-Request-Method") != "" {
				h.Set("Access-Control-Allow-Methods", "GET, HEAD, POST, OPTIONS, PUT, PATCH, DELETE")
				if reqHeaders := r.Header.Get("Access-Control-Request-Headers"); reqHeaders != "" {
					h.Set("Access-Control-Allow-Headers", reqHeaders)
				}
				w.WriteHeader(http.StatusOK)
				return
			}

			if methods := allowedMethods(routes, routePath(r)); len(methods) > 0 {
				h.Set("Allow", strings.Join(methods, ", "))
				h.Set("Content-Length", "0")
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
