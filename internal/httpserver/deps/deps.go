package deps

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/promptvault/internal/catalog"
	"github.com/MrSnakeDoc/promptvault/internal/events"
	"github.com/MrSnakeDoc/promptvault/internal/logger"
	"github.com/MrSnakeDoc/promptvault/internal/metrics"
	"github.com/MrSnakeDoc/promptvault/internal/scheduler"
)

// Pinger checks that a backend answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Breaker reports the state of the remote catalog circuit breaker.
type Breaker interface {
	BreakerState() string
}

type Deps struct {
	Logger    logger.Logger
	StartTime time.Time
	Version   string
	Commit    string
	BuildDate string
	GoVersion string
	TimeNow   func() time.Time // for testing, defaults to time.Now

	AllowedHosts   []string      // Host headers allowed to access the server
	AllowedCIDRS   []string      // IPs allowed to access infra endpoints and reload
	TrustProxy     bool          // true if running behind a trusted reverse proxy (e.g., cloudflared)
	RequestTimeout time.Duration // per-request timeout on the JSON API

	Catalog   *catalog.Synchronizer
	Scheduler *scheduler.BackgroundRefresher
	Bus       *events.Bus
	Metrics   *metrics.Collector
	Store     Pinger  // local store, nil when not wired
	Remote    Breaker // remote catalog client, nil when not wired

	// RateLimit is shared by every mutating route so limits are per client,
	// not per route.
	RateLimit func(http.Handler) http.Handler
}
