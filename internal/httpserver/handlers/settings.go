package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/promptvault/internal/httpserver/deps"
	"github.com/MrSnakeDoc/promptvault/internal/validation"
)

// viewRequest changes how the prompt list is narrowed. Absent fields are
// left unchanged.
type viewRequest struct {
	Query         *string `json:"query"`
	Category      *string `json:"category"`
	SortBy        *string `json:"sortBy" validate:"omitnil,oneof=newest name date rating"`
	FavoritesOnly *bool   `json:"favoritesOnly"`
}

// UpdateView changes the current view. Search query and category live in
// memory only; sort order and the favorites-only flag are persisted.
func UpdateView(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req viewRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := validation.Struct(req); err != nil {
			writeFailure(w, d, err)
			return
		}

		ctx := r.Context()
		if req.Query != nil {
			d.Catalog.SetSearchQuery(*req.Query)
		}
		if req.Category != nil {
			d.Catalog.SetSelectedCategory(*req.Category)
		}
		if req.SortBy != nil {
			if err := d.Catalog.SetSortBy(ctx, *req.SortBy); err != nil {
				writeFailure(w, d, err)
				return
			}
		}
		if req.FavoritesOnly != nil {
			d.Catalog.SetShowFavoritesOnly(ctx, *req.FavoritesOnly)
		}
		writeJSON(w, http.StatusOK, d.Catalog.CurrentView())
	}
}

type settingsRequest struct {
	Theme                    *string `json:"theme" validate:"omitnil,oneof=light dark"`
	RefreshIntervalMinutes   *int    `json:"refreshIntervalMinutes" validate:"omitnil,min=1,max=10080"`
	BackgroundRefreshEnabled *bool   `json:"backgroundRefreshEnabled"`
}

type settingsResponse struct {
	Theme                    string `json:"theme"`
	RefreshIntervalMinutes   int    `json:"refreshIntervalMinutes"`
	BackgroundRefreshEnabled bool   `json:"backgroundRefreshEnabled"`
	SchedulerRunning         bool   `json:"schedulerRunning"`
}

// UpdateSettings changes the theme and the background refresh settings.
// Interval and enabled changes go through the scheduler so it re-arms.
func UpdateSettings(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req settingsRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := validation.Struct(req); err != nil {
			writeFailure(w, d, err)
			return
		}

		ctx := r.Context()
		if req.Theme != nil {
			if err := d.Catalog.SetTheme(ctx, *req.Theme); err != nil {
				writeFailure(w, d, err)
				return
			}
		}
		if req.RefreshIntervalMinutes != nil {
			if d.Scheduler != nil {
				d.Scheduler.SetInterval(ctx, *req.RefreshIntervalMinutes)
			} else {
				d.Catalog.SetRefreshInterval(ctx, *req.RefreshIntervalMinutes)
			}
		}
		if req.BackgroundRefreshEnabled != nil {
			if d.Scheduler != nil {
				d.Scheduler.SetEnabled(ctx, *req.BackgroundRefreshEnabled)
			} else {
				d.Catalog.EnableBackgroundRefresh(ctx, *req.BackgroundRefreshEnabled)
			}
		}

		writeJSON(w, http.StatusOK, currentSettings(d))
	}
}

// Settings returns the theme and the background refresh settings.
func Settings(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, currentSettings(d))
	}
}

// ToggleTheme flips between light and dark.
func ToggleTheme(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		theme := d.Catalog.ToggleTheme(r.Context())
		writeJSON(w, http.StatusOK, map[string]string{"theme": theme})
	}
}

func currentSettings(d deps.Deps) settingsResponse {
	md := d.Catalog.CacheMetadata()
	out := settingsResponse{
		Theme:                    d.Catalog.Theme(),
		RefreshIntervalMinutes:   md.RefreshIntervalMinutes,
		BackgroundRefreshEnabled: md.BackgroundRefreshEnabled,
	}
	if d.Scheduler != nil {
		out.SchedulerRunning = d.Scheduler.Running()
	}
	return out
}
