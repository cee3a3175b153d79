package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/promptvault/internal/httpserver/deps"
)

type readyzResponse struct {
	Ready  bool   `json:"ready"`
	Reason string `json:"reason,omitempty"`
}

// Readyz answers 200 once the store is reachable and the catalog was
// initialized, 503 otherwise.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Store != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			err := d.Store.Ping(ctx)
			cancel()
			if err != nil {
				writeJSON(w, http.StatusServiceUnavailable, readyzResponse{Reason: "store unreachable"})
				return
			}
		}
		if !d.Catalog.Ready() {
			writeJSON(w, http.StatusServiceUnavailable, readyzResponse{Reason: "catalog initializing"})
			return
		}
		writeJSON(w, http.StatusOK, readyzResponse{Ready: true})
	}
}
