package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/promptvault/internal/httpserver/deps"
	"github.com/MrSnakeDoc/promptvault/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/promptvault/internal/httpserver/mw"
)

func init() {
	Register(registerHealth)
	Register(registerInfra)
}

func registerHealth(r chi.Router, d deps.Deps) {
	r.Get("/healthz", handlers.Healthz(d))
}

// Operational endpoints are reachable from the allowed networks only.
func registerInfra(r chi.Router, d deps.Deps) {
	r.Group(func(r chi.Router) {
		r.Use(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger))
		r.Get("/readyz", handlers.Readyz(d))
		r.Get("/status", handlers.Status(d))
		if d.Metrics != nil {
			r.Get("/metrics", d.Metrics.Handler().ServeHTTP)
		}
	})
}
