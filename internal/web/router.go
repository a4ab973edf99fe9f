// Package web exposes the workbench over HTTP: CRUD endpoints for every
// domain, the repository selector, the notification feed, health and
// metrics. The resource layout under /api/v1 is also what the remote
// repository consumes, so one instance can back another.
package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/riandyrn/otelchi"

	"github.com/goliatone/go-repository-switch/pkg/di"
)

// Version is reported by the health endpoint.
var Version = "dev"

// NewRouter builds the HTTP handler of app.
func NewRouter(app *di.Container) (http.Handler, error) {
	cfg := app.Config()

	var checks []HealthCheck
	for _, c := range app.HealthChecks() {
		checks = append(checks, HealthCheck{Name: c.Name, Check: c.Check})
	}
	healthHandler, err := NewHealthHandler(cfg.ServiceName, Version, checks...)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(otelchi.Middleware(cfg.ServiceName, otelchi.WithChiRoutes(r)))
	r.Use(RequestLogger(app.Logger()))
	r.Use(MetricsWrapper(app.Metrics()))

	r.Method(http.MethodGet, "/healthz", healthHandler)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(app.Gatherer(), promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/sources", NewSources(app).Routes)
		r.Route("/posts", PostsResource(app.Posts()).Routes)
		r.Route("/users", UsersResource(app.Users()).Routes)
		r.Route("/accounts", AccountsResource(app.Accounts()).Routes)
		r.Get("/notifications", NewNotifications(app.Notifications()).List)
	})

	return r, nil
}
