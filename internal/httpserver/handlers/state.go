package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/promptvault/internal/domain"
	"github.com/MrSnakeDoc/promptvault/internal/httpserver/deps"
)

type stateResponse struct {
	*domain.AppState
	SelectedCategory string `json:"selectedCategory"`
	SearchQuery      string `json:"searchQuery"`
	IsLoading        bool   `json:"isLoading"`
	IsRefreshing     bool   `json:"isRefreshing"`
}

// State returns a snapshot of the whole application state, including the
// fields that are never persisted.
func State(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st := d.Catalog.State()
		writeJSON(w, http.StatusOK, stateResponse{
			AppState:         st,
			SelectedCategory: st.SelectedCategory,
			SearchQuery:      st.SearchQuery,
			IsLoading:        st.IsLoading,
			IsRefreshing:     d.Catalog.IsRefreshing(),
		})
	}
}

// Categories lists the categories with their prompt counts.
func Categories(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, d.Catalog.Categories())
	}
}

// Favorites lists the favorite prompts.
func Favorites(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, d.Catalog.Favorites())
	}
}

// History lists recently used prompts, most recent first.
func History(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, d.Catalog.History())
	}
}

// ClearData drops prompts, favorites, ratings and history. With
// ?reset=true the whole state goes back to defaults.
func ClearData(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("reset") == "true" {
			d.Catalog.ResetToDefaults(r.Context())
		} else {
			d.Catalog.ClearData(r.Context())
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
