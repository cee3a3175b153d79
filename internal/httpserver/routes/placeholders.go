package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/promptvault/internal/httpserver/deps"
	"github.com/MrSnakeDoc/promptvault/internal/httpserver/handlers"
)

func init() { Register(registerPlaceholders) }

func registerPlaceholders(r chi.Router, d deps.Deps) {
	api := r.With(apiMiddlewares(d)...)
	api.Post("/api/placeholders/parse", handlers.ParsePlaceholders(d))
	api.Post("/api/prompts/{id}/generate", handlers.GeneratePrompt(d))
	api.Post("/api/generator", handlers.Generator(d))
}
