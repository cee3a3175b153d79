package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/MrSnakeDoc/promptvault/internal/catalog"
	"github.com/MrSnakeDoc/promptvault/internal/domain"
	"github.com/MrSnakeDoc/promptvault/internal/events"
	"github.com/MrSnakeDoc/promptvault/internal/logger"
)

// ToastUpdated is shown after a background refresh replaced the catalog.
const ToastUpdated = "Data updated in background"

// Refresher is the part of the synchronizer the scheduler drives.
type Refresher interface {
	RefreshIfStale(ctx context.Context) (catalog.RefreshReport, error)
	CacheMetadata() domain.CacheMetadata
	SetRefreshInterval(ctx context.Context, minutes int) int
	EnableBackgroundRefresh(ctx context.Context, enabled bool)
}

// Notifier shows short messages to the user.
type Notifier interface {
	NotifyToast(message, kind string)
}

// Status is a snapshot of the scheduler.
type Status struct {
	Enabled         bool      `json:"enabled"`
	Running         bool      `json:"running"`
	IntervalMinutes int       `json:"intervalMinutes"`
	LastRefresh     time.Time `json:"lastRefresh"`
}

// BackgroundRefresher periodically refreshes the catalog when it is stale.
type BackgroundRefresher struct {
	refresher Refresher
	notifier  Notifier
	logger    logger.Logger

	// unit is the length of one interval step (a minute outside tests).
	unit time.Duration

	mu          sync.Mutex
	enabled     bool
	interval    int
	lastRefresh time.Time

	// set while running
	parent  context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	resetCh chan time.Duration
}

// NewBackgroundRefresher creates a stopped scheduler.
func NewBackgroundRefresher(r Refresher, n Notifier, log logger.Logger) *BackgroundRefresher {
	if log == nil {
		log = logger.NewNop()
	}
	md := r.CacheMetadata()
	return &BackgroundRefresher{
		refresher:   r,
		notifier:    n,
		logger:      log,
		unit:        time.Minute,
		enabled:     md.BackgroundRefreshEnabled,
		interval:    max(md.RefreshIntervalMinutes, 1),
		lastRefresh: md.LastBackgroundRefresh,
	}
}

// Start loads the settings from the cache metadata and starts the loop,
// which checks staleness right away and then once per interval. It does
// nothing when already running or disabled.
func (b *BackgroundRefresher) Start(ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.parent = ctx
	if b.done != nil {
		return
	}

	md := b.refresher.CacheMetadata()
	b.enabled = md.BackgroundRefreshEnabled
	b.interval = max(md.RefreshIntervalMinutes, 1)
	b.lastRefresh = md.LastBackgroundRefresh
	if !b.enabled {
		b.logger.Info("background refresh disabled")
		return
	}

	b.startLocked(ctx)
}

func (b *BackgroundRefresher) startLocked(ctx context.Context) {
	loopCtx, cancel := context.WithCancel(ctx)
	b.cancel = cancel
	b.done = make(chan struct{})
	b.resetCh = make(chan time.Duration, 1)

	every := time.Duration(b.interval) * b.unit
	go b.loop(loopCtx, every, b.resetCh, b.done)

	b.logger.Info("background refresh started", logger.Int("interval_minutes", b.interval))
}

// Stop ends the loop and waits for it to exit. Calling it on a stopped
// scheduler is a no-op.
func (b *BackgroundRefresher) Stop() {
	b.mu.Lock()
	if b.done == nil {
		b.mu.Unlock()
		return
	}
	cancel, done := b.cancel, b.done
	b.cancel, b.done, b.resetCh = nil, nil, nil
	b.mu.Unlock()

	cancel()
	<-done
	b.logger.Info("background refresh stopped")
}

// SetInterval stores a new interval (at least one minute) and, when
// running, restarts the countdown so the next check comes one full interval
// from now. It returns the stored value.
func (b *BackgroundRefresher) SetInterval(ctx context.Context, minutes int) int {
	minutes = b.refresher.SetRefreshInterval(ctx, minutes)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.interval = minutes
	if b.resetCh != nil {
		every := time.Duration(minutes) * b.unit
		// keep only the latest value
		select {
		case <-b.resetCh:
		default:
		}
		b.resetCh <- every
	}
	return minutes
}

// SetEnabled stores the flag and starts or stops the loop accordingly.
func (b *BackgroundRefresher) SetEnabled(ctx context.Context, enabled bool) {
	b.refresher.EnableBackgroundRefresh(ctx, enabled)

	if !enabled {
		b.mu.Lock()
		b.enabled = false
		b.mu.Unlock()
		b.Stop()
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.enabled = true
	if b.done != nil {
		return
	}
	parent := b.parent
	if parent == nil {
		parent = context.WithoutCancel(ctx)
	}
	b.startLocked(parent)
}

// Status returns the current settings and state.
func (b *BackgroundRefresher) Status() Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Status{
		Enabled:         b.enabled,
		Running:         b.done != nil,
		IntervalMinutes: b.interval,
		LastRefresh:     b.lastRefresh,
	}
}

// Running reports whether the loop is active.
func (b *BackgroundRefresher) Running() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.done != nil
}

func (b *BackgroundRefresher) loop(ctx context.Context, every time.Duration, resetCh <-chan time.Duration, done chan<- struct{}) {
	defer close(done)

	b.tick(ctx)

	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			b.tick(ctx)
		case d := <-resetCh:
			ticker.Reset(d)
			b.logger.Debug("background refresh re-armed", logger.Duration("every", d))
		case <-ctx.Done():
			return
		}
	}
}

func (b *BackgroundRefresher) tick(ctx context.Context) {
	report, err := b.refresher.RefreshIfStale(ctx)
	if err != nil {
		b.logger.Debug("background refresh not run", logger.Error(err))
		return
	}
	if !report.Performed {
		if report.Error != "" {
			b.logger.Debug("background refresh failed", logger.String("error", report.Error))
		}
		return
	}

	b.mu.Lock()
	b.lastRefresh = report.StartedAt
	b.mu.Unlock()

	if b.notifier != nil {
		b.notifier.NotifyToast(ToastUpdated, events.ToastSuccess)
	}
}
