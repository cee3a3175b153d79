package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/promptvault/internal/httpserver/deps"
	"github.com/MrSnakeDoc/promptvault/internal/logger"
)

type reloadResponse struct {
	Triggered bool   `json:"triggered"`
	Message   string `json:"message"`
}

// Reload starts a catalog refresh in the background. It answers 202, or
// 429 when a refresh is already running.
func Reload(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Catalog.TriggerRefresh(r.Context()) {
			d.Logger.Info("manual catalog refresh triggered via endpoint",
				logger.String("remote_ip", r.RemoteAddr))
			writeJSON(w, http.StatusAccepted, reloadResponse{Triggered: true, Message: "Reload triggered successfully"})
			return
		}

		d.Logger.Warn("catalog refresh already in progress",
			logger.String("remote_ip", r.RemoteAddr))
		writeJSON(w, http.StatusTooManyRequests, reloadResponse{Message: "Reload already in progress, please wait"})
	}
}
