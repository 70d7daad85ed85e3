package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"calc-editor/internal/calculator"
	"calc-editor/internal/handlers"
	"calc-editor/internal/observability"
)

// NewRouter wires the middleware chain, health and metrics endpoints and the
// calculator routes. collectors are exposed on /metrics next to the defaults.
func NewRouter(calc *calculator.Handler, collectors ...prometheus.Collector) http.Handler {

	r := chi.NewRouter()

	r.Use(observability.RequestIDMiddleware)
	r.Use(observability.TracingMiddleware)
	r.Use(observability.LoggingMiddleware)

	r.Get("/health", handlers.Health)

	r.Handle("/metrics", observability.PrometheusHandler(collectors...))

	calculator.RegisterRoutes(r, calc)

	return r
}
