// Package catalog owns the application state: it hydrates it from the local
// store, keeps it in sync with the remote catalog, applies user mutations and
// serves filtered views of it.
package catalog

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/MrSnakeDoc/promptvault/internal/domain"
	"github.com/MrSnakeDoc/promptvault/internal/events"
	"github.com/MrSnakeDoc/promptvault/internal/logger"
	"github.com/MrSnakeDoc/promptvault/internal/metrics"
	"github.com/MrSnakeDoc/promptvault/internal/sources/remote"
	store "github.com/MrSnakeDoc/promptvault/internal/store/redis"
)

// Store persists the whole state under a single key.
type Store interface {
	LoadState(ctx context.Context) (*domain.AppState, error)
	SaveState(ctx context.Context, state *domain.AppState) error
}

// Source is the remote catalog.
type Source interface {
	FetchIndex(ctx context.Context) (*remote.IndexDocument, error)
	FetchPrompts(ctx context.Context, url string) ([]remote.RemotePrompt, error)
}

// Options configures a Synchronizer.
type Options struct {
	Store   Store
	Source  Source
	Bus     *events.Bus
	Metrics *metrics.Collector
	Logger  logger.Logger

	// BaseURL resolves relative category file paths.
	BaseURL string
	// FetchConcurrency bounds parallel category file downloads.
	FetchConcurrency int
	// RefreshTimeout bounds refreshes started by TriggerRefresh.
	RefreshTimeout time.Duration
	// DefaultIntervalMinutes seeds the refresh interval of a fresh state.
	DefaultIntervalMinutes int

	// Now overrides the clock (tests).
	Now func() time.Time
}

// Synchronizer is the single authority over AppState.
//
// State is guarded by mu and no network or store I/O happens while it is
// held. Store writes are serialized by saveMu and always persist a snapshot
// taken after saveMu is acquired. At most one refresh runs at a time.
type Synchronizer struct {
	store   Store
	source  Source
	bus     *events.Bus
	metrics *metrics.Collector
	log     logger.Logger

	baseURL         string
	concurrency     int
	refreshTimeout  time.Duration
	defaultInterval int
	now             func() time.Time

	mu    sync.RWMutex
	state *domain.AppState

	saveMu  sync.Mutex
	refresh *semaphore.Weighted
	bg      sync.WaitGroup

	// hydrated is set once the stored state has been loaded; persist is a
	// no-op before that.
	hydrated atomic.Bool
	// ready is set once Initialize has returned.
	ready atomic.Bool
}

// New creates a Synchronizer holding the default state. Call Initialize to
// hydrate it.
func New(opts Options) *Synchronizer {
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.FetchConcurrency < 1 {
		opts.FetchConcurrency = 4
	}
	if opts.RefreshTimeout <= 0 {
		opts.RefreshTimeout = 2 * time.Minute
	}
	if opts.DefaultIntervalMinutes < 1 {
		opts.DefaultIntervalMinutes = domain.DefaultRefreshIntervalMinutes
	}

	return &Synchronizer{
		store:           opts.Store,
		source:          opts.Source,
		bus:             opts.Bus,
		metrics:         opts.Metrics,
		log:             opts.Logger,
		baseURL:         opts.BaseURL,
		concurrency:     opts.FetchConcurrency,
		refreshTimeout:  opts.RefreshTimeout,
		defaultInterval: opts.DefaultIntervalMinutes,
		now:             func() time.Time { return opts.Now().UTC() },
		state:           domain.NewAppState(opts.DefaultIntervalMinutes),
		refresh:         semaphore.NewWeighted(1),
	}
}

// Initialize hydrates the state from the store and brings the catalog up to
// date. Hydration problems reset the state to defaults; they are logged,
// never returned. Loading is cleared and observers notified in every case.
func (s *Synchronizer) Initialize(ctx context.Context) {
	s.setLoading(true)
	defer func() {
		s.setLoading(false)
		s.ready.Store(true)
		s.bus.NotifyStateChanged("initialized")
	}()

	hydrated := s.hydrate(ctx)

	s.mu.Lock()
	hydrated.IsLoading = true
	domain.RecountCategories(hydrated.Categories, hydrated.Prompts)
	s.state = hydrated
	s.mu.Unlock()
	s.hydrated.Store(true)
	s.metrics.SetCatalogSize(len(hydrated.Prompts), len(hydrated.Categories))

	if s.IsStale() {
		if _, err := s.refreshWith(ctx, TriggerInitial); err != nil {
			s.log.Warn("initial refresh aborted", logger.Error(err))
		}
		return
	}

	if err := s.fillMissing(ctx); err != nil {
		s.log.Warn("initial catalog load aborted", logger.Error(err))
	}
}

// hydrate loads the persisted state or returns defaults.
func (s *Synchronizer) hydrate(ctx context.Context) *domain.AppState {
	loaded, err := s.store.LoadState(ctx)
	switch {
	case errors.Is(err, store.ErrStateNotFound):
		s.log.Info("no persisted state, starting from defaults")
		return domain.NewAppState(s.defaultInterval)
	case errors.Is(err, store.ErrCorruptState):
		s.log.Warn("persisted state is corrupt, resetting to defaults", logger.Error(err))
		s.quarantine(ctx)
		s.metrics.StoreError("load")
		return domain.NewAppState(s.defaultInterval)
	case err != nil:
		s.log.Warn("failed to load persisted state, using defaults", logger.Error(err))
		s.metrics.StoreError("load")
		return domain.NewAppState(s.defaultInterval)
	}

	if err := loaded.Validate(); err != nil {
		s.log.Warn("persisted state failed validation, resetting to defaults", logger.Error(err))
		s.quarantine(ctx)
		return domain.NewAppState(s.defaultInterval)
	}

	loaded.Repair(s.defaultInterval)
	s.log.Info("state restored",
		logger.Int("prompts", len(loaded.Prompts)),
		logger.Int("categories", len(loaded.Categories)),
		logger.String("data_version", loaded.CacheMetadata.DataVersion),
	)
	return loaded
}

func (s *Synchronizer) quarantine(ctx context.Context) {
	q, ok := s.store.(interface{ Quarantine(context.Context) error })
	if !ok {
		return
	}
	if err := q.Quarantine(ctx); err != nil {
		s.log.Warn("failed to back up corrupt state", logger.Error(err))
	}
}

// Ready reports whether Initialize has completed.
func (s *Synchronizer) Ready() bool {
	return s.ready.Load()
}

// Subscribe returns a channel of state notifications. Callers must
// Unsubscribe when done.
func (s *Synchronizer) Subscribe(bufSize int) <-chan events.Event {
	return s.bus.Subscribe(bufSize)
}

// Unsubscribe removes a subscription made with Subscribe.
func (s *Synchronizer) Unsubscribe(ch <-chan events.Event) {
	s.bus.Unsubscribe(ch)
}

// Wait blocks until refreshes started by TriggerRefresh have finished.
func (s *Synchronizer) Wait() {
	s.bg.Wait()
}

// persist writes a snapshot of the current state. Failures are logged and
// counted; the in-memory state stays authoritative and the next write
// retries.
func (s *Synchronizer) persist(ctx context.Context, reason string) {
	// Until the stored state is loaded, memory holds defaults; writing them
	// would overwrite the user's data.
	if !s.hydrated.Load() {
		s.log.Warn("state not loaded yet, skipping persist", logger.String("reason", reason))
		return
	}

	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.RLock()
	snapshot := s.state.Clone()
	s.mu.RUnlock()

	if err := s.store.SaveState(ctx, snapshot); err != nil {
		s.metrics.StoreError("save")
		s.log.Warn("failed to persist state", logger.String("reason", reason), logger.Error(err))
	}
}

// commit persists and notifies observers of a durable mutation.
func (s *Synchronizer) commit(ctx context.Context, reason string) {
	s.persist(ctx, reason)
	s.bus.NotifyStateChanged(reason)
}

func (s *Synchronizer) setLoading(v bool) {
	s.mu.Lock()
	s.state.IsLoading = v
	s.mu.Unlock()
}
