// Package httpapi exposes a small debug listener for long batch runs:
// Prometheus metrics and a liveness probe.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ibarra/parlante/internal/observability"
)

// Router builds the debug endpoints.
func Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", observability.MetricsHandler())
	return r
}

// Serve blocks on the debug listener; it is run on its own goroutine.
func Serve(addr string) error {
	return http.ListenAndServe(addr, Router())
}
