package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/promptvault/internal/catalog"
	"github.com/MrSnakeDoc/promptvault/internal/domain"
	"github.com/MrSnakeDoc/promptvault/internal/httpserver/deps"
)

type promptListResponse struct {
	View    domain.View     `json:"view"`
	Count   int             `json:"count"`
	Prompts []domain.Prompt `json:"prompts"`
}

// ListPrompts returns the filtered prompt list. Query parameters q,
// category, sort and favorites override the current view for this request
// only.
func ListPrompts(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v := d.Catalog.CurrentView()
		q := r.URL.Query()
		if q.Has("q") {
			v.Query = q.Get("q")
		}
		if q.Has("category") {
			v.Category = q.Get("category")
		}
		if q.Has("sort") {
			v.SortBy = q.Get("sort")
		}
		if q.Has("favorites") {
			fav, err := strconv.ParseBool(q.Get("favorites"))
			if err != nil {
				writeError(w, http.StatusBadRequest, "favorites must be a boolean")
				return
			}
			v.FavoritesOnly = fav
		}

		prompts := d.Catalog.FilterPrompts(v)
		writeJSON(w, http.StatusOK, promptListResponse{View: v, Count: len(prompts), Prompts: prompts})
	}
}

type promptResponse struct {
	domain.Prompt
	IsFavorite bool               `json:"isFavorite"`
	UserRating *domain.UserRating `json:"userRating,omitempty"`
}

// GetPrompt returns one prompt with the user's favorite flag and rating.
func GetPrompt(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		p, err := d.Catalog.Prompt(id)
		if err != nil {
			writeFailure(w, d, err)
			return
		}
		resp := promptResponse{Prompt: p}
		for _, f := range d.Catalog.Favorites() {
			if f.ID == id {
				resp.IsFavorite = true
				break
			}
		}
		if rating, ok := d.Catalog.UserRating(id); ok {
			resp.UserRating = &rating
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// CreatePrompt adds a local prompt.
func CreatePrompt(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in catalog.PromptInput
		if err := decodeJSON(w, r, &in); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		p, err := d.Catalog.AddPrompt(r.Context(), in)
		if err != nil {
			writeFailure(w, d, err)
			return
		}
		w.Header().Set("Location", "/api/prompts/"+p.ID)
		writeJSON(w, http.StatusCreated, p)
	}
}

// UpdatePrompt replaces the editable fields of a prompt.
func UpdatePrompt(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in catalog.PromptInput
		if err := decodeJSON(w, r, &in); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		p, err := d.Catalog.UpdatePrompt(r.Context(), chi.URLParam(r, "id"), in)
		if err != nil {
			writeFailure(w, d, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

// DeletePrompt removes a prompt and the user data attached to it.
func DeletePrompt(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Catalog.DeletePrompt(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeFailure(w, d, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ToggleFavorite adds or removes the prompt from the favorites.
func ToggleFavorite(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		fav, err := d.Catalog.ToggleFavorite(r.Context(), id)
		if err != nil {
			writeFailure(w, d, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": id, "isFavorite": fav})
	}
}

type ratingRequest struct {
	Rating int `json:"rating"`
}

// SetRating records the user's rating of a prompt.
func SetRating(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ratingRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		id := chi.URLParam(r, "id")
		rating, err := d.Catalog.SetRating(r.Context(), id, req.Rating)
		if err != nil {
			writeFailure(w, d, err)
			return
		}
		p, err := d.Catalog.Prompt(id)
		if err != nil {
			writeFailure(w, d, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"rating": rating, "averageRating": p.AverageRating})
	}
}

// UsePrompt records that the prompt was used: it moves to the front of the
// history and its usage counter goes up.
func UsePrompt(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		n, err := d.Catalog.IncrementUsage(r.Context(), id)
		if err != nil {
			writeFailure(w, d, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": id, "usageCount": n})
	}
}
