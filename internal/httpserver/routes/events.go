package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/promptvault/internal/httpserver/deps"
	"github.com/MrSnakeDoc/promptvault/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/promptvault/internal/httpserver/mw"
)

func init() { Register(registerEvents) }

// The event stream is long-lived, so it skips the request timeout and the
// rate limiter.
func registerEvents(r chi.Router, d deps.Deps) {
	r.With(mw.EnforceHost(d.AllowedHosts, d.Logger)).Get("/api/events", handlers.Events(d))
}
