package routes

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/promptvault/internal/httpserver/deps"
	"github.com/MrSnakeDoc/promptvault/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/promptvault/internal/httpserver/mw"
)

func init() { Register(registerCatalog) }

// apiMiddlewares are shared by every request/response API route.
func apiMiddlewares(d deps.Deps) []Middleware {
	mws := []Middleware{mw.EnforceHost(d.AllowedHosts, d.Logger)}
	if d.Catalog != nil {
		mws = append(mws, mw.RequireReady(d.Catalog.Ready))
	}
	if d.RateLimit != nil {
		mws = append(mws, d.RateLimit)
	}
	if d.RequestTimeout > 0 {
		mws = append(mws, middleware.Timeout(d.RequestTimeout))
	}
	return mws
}

func registerCatalog(r chi.Router, d deps.Deps) {
	api := r.With(apiMiddlewares(d)...)

	api.Get("/api/state", handlers.State(d))
	api.Delete("/api/data", handlers.ClearData(d))
	api.Get("/api/categories", handlers.Categories(d))
	api.Get("/api/favorites", handlers.Favorites(d))
	api.Get("/api/history", handlers.History(d))

	api.Get("/api/prompts", handlers.ListPrompts(d))
	api.Post("/api/prompts", handlers.CreatePrompt(d))
	api.Get("/api/prompts/{id}", handlers.GetPrompt(d))
	api.Put("/api/prompts/{id}", handlers.UpdatePrompt(d))
	api.Delete("/api/prompts/{id}", handlers.DeletePrompt(d))
	api.Post("/api/prompts/{id}/favorite", handlers.ToggleFavorite(d))
	api.Put("/api/prompts/{id}/rating", handlers.SetRating(d))
	api.Post("/api/prompts/{id}/use", handlers.UsePrompt(d))

	api.Put("/api/view", handlers.UpdateView(d))
	api.Get("/api/settings", handlers.Settings(d))
	api.Put("/api/settings", handlers.UpdateSettings(d))
	api.Post("/api/theme/toggle", handlers.ToggleTheme(d))

	api.Post("/api/reload", handlers.Reload(d))
}
