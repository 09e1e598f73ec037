package middleware

import (
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
)

// routableMethods are the methods routes can be registered under. HEAD and
// OPTIONS are answered implicitly for any path one of them serves.
var routableMethods = []string{
	http.MethodGet,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
}

// routePath is the path chi routes on.
func routePath(r *http.Request) string {
	if r.URL.RawPath != "" {
		return r.URL.RawPath
	}
	return r.URL.Path
}

// matchRoute returns the pattern of the route serving method on path. HEAD
// resolves like GET and OPTIONS like the first method the path accepts.
func matchRoute(routes chi.Routes, method, path string) (string, bool) {
	if routes == nil {
		return "", false
	}
	if pattern, ok := find(routes, method, path); ok {
		return pattern, true
	}

	switch method {
	case http.MethodHead:
		return find(routes, http.MethodGet, path)
	case http.MethodOptions:
		for _, m := range routableMethods {
			if pattern, ok := find(routes, m, path); ok {
				return pattern, true
			}
		}
	}
	return "", false
}

// allowedMethods lists, sorted, the methods path answers. It is empty when no
// route serves path.
func allowedMethods(routes chi.Routes, path string) []string {
	if routes == nil {
		return nil
	}

	seen := make(map[string]bool)
	for _, m := range routableMethods {
		if _, ok := find(routes, m, path); ok {
			seen[m] = true
		}
	}
	if len(seen) == 0 {
		return nil
	}
	if seen[http.MethodGet] {
		seen[http.MethodHead] = true
	}
	seen[http.MethodOptions] = true

	methods := make([]string, 0, len(seen))
	for m := range seen {
		methods = append(methods, m)
	}
	sort.Strings(methods)
	return methods
}

func find(routes chi.Routes, method, path string) (string, bool) {
	rctx := chi.NewRouteContext()
	if !routes.Match(rctx, method, path) {
		return "", false
	}
	if pattern := rctx.RoutePattern(); pattern != "" {
		return pattern, true
	}
	return path, true
}
