package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/MrSnakeDoc/promptvault/internal/httpserver/deps"
	"github.com/MrSnakeDoc/promptvault/internal/scheduler"
)

type componentStatus struct {
	OK     bool   `json:"ok"`
	Mode   string `json:"mode,omitempty"`
	Impact string `json:"impact,omitempty"`
	Error  string `json:"error,omitempty"`
}

type catalogStatus struct {
	componentStatus
	Prompts       int       `json:"prompts"`
	Categories    int       `json:"categories"`
	DataVersion   string    `json:"data_version,omitempty"`
	LastRefresh   string    `json:"last_refresh"`
	IsStale       bool      `json:"is_stale"`
	NextRefreshIn string    `json:"next_refresh_in"`
	Refreshing    bool      `json:"refreshing"`
	CheckedAt     time.Time `json:"checked_at"`
}

type statusResponse struct {
	Mode      string           `json:"mode"`
	Store     componentStatus  `json:"store"`
	Remote    componentStatus  `json:"remote"`
	Catalog   catalogStatus    `json:"catalog"`
	Scheduler scheduler.Status `json:"scheduler"`
}

// Status reports the health of every component: the local store, the
// remote catalog breaker, the catalog itself and the background scheduler.
func Status(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := statusResponse{
			Store:   checkStore(r.Context(), d),
			Remote:  checkRemote(d),
			Catalog: catalogState(d),
		}
		if d.Scheduler != nil {
			resp.Scheduler = d.Scheduler.Status()
		}
		resp.Mode = overallMode(resp)
		writeJSON(w, http.StatusOK, resp)
	}
}

func overallMode(s statusResponse) string {
	if !s.Catalog.OK {
		return "critical" // nothing to serve
	}
	if !s.Store.OK || !s.Remote.OK {
		return "degraded"
	}
	return "ok"
}

func checkStore(ctx context.Context, d deps.Deps) componentStatus {
	if d.Store == nil {
		return componentStatus{Mode: "memory-only", Impact: "preferences-not-persisted", Error: "store not configured"}
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := d.Store.Ping(ctx); err != nil {
		return componentStatus{Mode: "memory-only", Impact: "preferences-not-persisted", Error: err.Error()}
	}
	return componentStatus{OK: true, Mode: "persistent"}
}

func checkRemote(d deps.Deps) componentStatus {
	if d.Remote == nil {
		return componentStatus{Mode: "offline", Impact: "catalog-frozen", Error: "remote not configured"}
	}
	state := d.Remote.BreakerState()
	if state == gobreaker.StateOpen.String() {
		return componentStatus{Mode: state, Impact: "refresh-paused", Error: "circuit open"}
	}
	return componentStatus{OK: true, Mode: state}
}

func catalogState(d deps.Deps) catalogStatus {
	c := d.Catalog
	md := c.CacheMetadata()

	out := catalogStatus{
		Prompts:       len(c.Prompts()),
		Categories:    len(c.Categories()),
		DataVersion:   md.DataVersion,
		LastRefresh:   "never",
		IsStale:       md.IsStale,
		NextRefreshIn: c.TimeUntilNextRefresh().Round(time.Second).String(),
		Refreshing:    c.IsRefreshing(),
		CheckedAt:     time.Now().UTC(),
	}
	if !md.LastBackgroundRefresh.IsZero() {
		out.LastRefresh = md.LastBackgroundRefresh.Format(time.RFC3339)
	}
	out.OK = out.Prompts > 0
	if !out.OK {
		out.Error = "no prompts loaded"
	}
	return out
}
