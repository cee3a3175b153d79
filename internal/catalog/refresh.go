package catalog

import (
	"context"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/MrSnakeDoc/promptvault/internal/domain"
	"github.com/MrSnakeDoc/promptvault/internal/logger"
	"github.com/MrSnakeDoc/promptvault/internal/metrics"
	"github.com/MrSnakeDoc/promptvault/internal/sources/remote"
)

// Refresh triggers.
const (
	TriggerInitial   = "initial"
	TriggerManual    = "manual"
	TriggerScheduled = "scheduled"
)

// RefreshReport describes one refresh attempt.
type RefreshReport struct {
	Trigger string `json:"trigger"`

	// Performed is true when the index was loaded and the catalog replaced.
	Performed bool `json:"performed"`
	// Skipped is true when the data was still fresh.
	Skipped bool `json:"skipped"`

	Categories       int           `json:"categories"`
	Prompts          int           `json:"prompts"`
	FailedCategories []string      `json:"failedCategories,omitempty"`
	DataVersion      string        `json:"dataVersion,omitempty"`
	StartedAt        time.Time     `json:"startedAt"`
	Duration         time.Duration `json:"duration"`
	Error            string        `json:"error,omitempty"`
}

// Refresh reloads the whole remote catalog, waiting for any refresh already
// in flight. Remote failures are reported in the RefreshReport, not as an
// error: the only error is ctx ending while waiting for the other refresh.
func (s *Synchronizer) Refresh(ctx context.Context) (RefreshReport, error) {
	return s.refreshWith(ctx, TriggerManual)
}

func (s *Synchronizer) refreshWith(ctx context.Context, trigger string) (RefreshReport, error) {
	if err := s.refresh.Acquire(ctx, 1); err != nil {
		return RefreshReport{}, err
	}
	defer s.refresh.Release(1)

	return s.runRefresh(ctx, trigger), nil
}

// RefreshIfStale refreshes only when the cached catalog is stale. A call
// that waited behind another refresh finds fresh data and returns a skipped
// report.
func (s *Synchronizer) RefreshIfStale(ctx context.Context) (RefreshReport, error) {
	if err := s.refresh.Acquire(ctx, 1); err != nil {
		return RefreshReport{}, err
	}
	defer s.refresh.Release(1)

	if !s.IsStale() {
		s.metrics.ObserveRefresh(TriggerScheduled, metrics.ResultSkipped, 0)
		return RefreshReport{Trigger: TriggerScheduled, Skipped: true, StartedAt: s.now()}, nil
	}
	return s.runRefresh(ctx, TriggerScheduled), nil
}

// TriggerRefresh starts a refresh in the background and returns true, or
// returns false without doing anything when a refresh is already running.
// The refresh outlives ctx's cancellation and is bounded by RefreshTimeout.
func (s *Synchronizer) TriggerRefresh(ctx context.Context) bool {
	if !s.refresh.TryAcquire(1) {
		return false
	}

	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		defer s.refresh.Release(1)

		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.refreshTimeout)
		defer cancel()
		s.runRefresh(rctx, TriggerManual)
	}()
	return true
}

// IsRefreshing reports whether a refresh currently holds the guard.
func (s *Synchronizer) IsRefreshing() bool {
	if s.refresh.TryAcquire(1) {
		s.refresh.Release(1)
		return false
	}
	return true
}

// runRefresh performs a refresh. The caller holds the refresh guard.
//
// User-owned data (favorites, ratings, history, local prompts) is kept. The
// previous catalog is kept as well when the index cannot be loaded.
func (s *Synchronizer) runRefresh(ctx context.Context, trigger string) RefreshReport {
	started := s.now()
	report := RefreshReport{Trigger: trigger, StartedAt: started}
	log := s.log.With(logger.String("trigger", trigger))

	s.setLoading(true)
	defer s.setLoading(false)

	fail := func(err error) RefreshReport {
		report.Error = err.Error()
		report.Duration = time.Since(started)
		log.Warn("catalog refresh failed, keeping cached catalog", logger.Error(err))
		s.metrics.ObserveRefresh(trigger, metrics.ResultFailed, report.Duration)
		s.bus.NotifyRefresh(reportData(report))
		return report
	}

	doc, err := s.source.FetchIndex(ctx)
	if err != nil {
		return fail(err)
	}

	categories := remote.MapCategories(doc.Categories, s.baseURL)
	fetched, failed := s.fetchCategoryPrompts(ctx, categories)
	fetched = append(fetched, s.embeddedPrompts(doc)...)

	// a refresh cut short must not replace the catalog with a partial one
	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	version := newDataVersion()

	s.mu.Lock()
	prompts := mergePrompts(fetched, s.state.Prompts)
	domain.ApplyRatings(prompts, s.state.UserRatings)
	domain.RecountCategories(categories, prompts)

	s.state.Prompts = prompts
	s.state.Categories = categories
	if !domain.HasCategory(categories, s.state.SelectedCategory) {
		s.state.SelectedCategory = domain.AllCategoryID
	}

	md := s.state.CacheMetadata
	now := s.now()
	md.LastUpdated = now
	md.LastBackgroundRefresh = now
	md.DataVersion = version
	md.IsStale = false
	s.mu.Unlock()

	s.persist(ctx, "refresh")

	report.Performed = true
	report.Categories = len(categories)
	report.Prompts = len(prompts)
	report.FailedCategories = failed
	report.DataVersion = version
	report.Duration = time.Since(started)

	s.metrics.AddFetchFailures(len(failed))
	s.metrics.SetCatalogSize(len(prompts), len(categories))
	s.metrics.ObserveRefresh(trigger, metrics.ResultOK, report.Duration)

	log.Info("catalog refreshed",
		logger.Int("categories", report.Categories),
		logger.Int("prompts", report.Prompts),
		logger.Int("failed_categories", len(failed)),
		logger.String("data_version", version),
		logger.Duration("took", report.Duration),
	)

	s.bus.NotifyRefresh(reportData(report))
	s.bus.NotifyStateChanged("refresh")
	return report
}

// fillMissing loads categories and prompts when the cached state has none,
// without touching cache metadata.
func (s *Synchronizer) fillMissing(ctx context.Context) error {
	s.mu.RLock()
	needCategories := len(s.state.Categories) <= 1
	needPrompts := !hasRemotePrompts(s.state.Prompts)
	s.mu.RUnlock()

	if !needCategories && !needPrompts {
		return nil
	}

	if err := s.refresh.Acquire(ctx, 1); err != nil {
		return err
	}
	defer s.refresh.Release(1)

	doc, err := s.source.FetchIndex(ctx)
	if err != nil {
		s.log.Warn("failed to load catalog index", logger.Error(err))
		return nil
	}

	categories := remote.MapCategories(doc.Categories, s.baseURL)
	if !needCategories {
		s.mu.RLock()
		categories = append([]domain.Category(nil), s.state.Categories...)
		s.mu.RUnlock()
	}

	var fetched []domain.Prompt
	if needPrompts {
		var failed []string
		fetched, failed = s.fetchCategoryPrompts(ctx, categories)
		fetched = append(fetched, s.embeddedPrompts(doc)...)
		s.metrics.AddFetchFailures(len(failed))
	}

	s.mu.Lock()
	if needPrompts {
		s.state.Prompts = mergePrompts(fetched, s.state.Prompts)
		domain.ApplyRatings(s.state.Prompts, s.state.UserRatings)
	}
	s.state.Categories = categories
	domain.RecountCategories(s.state.Categories, s.state.Prompts)
	promptCount, categoryCount := len(s.state.Prompts), len(s.state.Categories)
	s.mu.Unlock()

	s.metrics.SetCatalogSize(promptCount, categoryCount)
	s.persist(ctx, "initial-load")
	return nil
}

// fetchCategoryPrompts downloads every category file concurrently. A file
// that fails is logged and reported by category id; the rest proceed.
// Results keep the category order.
func (s *Synchronizer) fetchCategoryPrompts(ctx context.Context, categories []domain.Category) ([]domain.Prompt, []string) {
	now := s.now()
	results := make([][]domain.Prompt, len(categories))
	failedAt := make([]bool, len(categories))

	var g errgroup.Group
	g.SetLimit(s.concurrency)

	for i, c := range categories {
		if c.ID == domain.AllCategoryID || c.FilePathName == "" {
			continue
		}
		g.Go(func() error {
			rps, err := s.source.FetchPrompts(ctx, c.FilePathName)
			if err != nil {
				s.log.Warn("failed to fetch category prompts",
					logger.String("category", c.ID),
					logger.String("url", c.FilePathName),
					logger.Error(err),
				)
				failedAt[i] = true
				return nil
			}
			out := make([]domain.Prompt, 0, len(rps))
			for _, rp := range rps {
				out = append(out, remote.ToPrompt(rp, c.ID, now))
			}
			results[i] = out
			return nil
		})
	}
	_ = g.Wait()

	var prompts []domain.Prompt
	var failed []string
	for i := range categories {
		if failedAt[i] {
			failed = append(failed, categories[i].ID)
		}
		prompts = append(prompts, results[i]...)
	}
	return prompts, failed
}

// embeddedPrompts returns prompts carried by the index itself. They keep
// the category they declare.
func (s *Synchronizer) embeddedPrompts(doc *remote.IndexDocument) []domain.Prompt {
	now := s.now()
	var out []domain.Prompt
	for _, raw := range [][]byte{doc.Prompts, doc.Data} {
		if len(raw) == 0 {
			continue
		}
		for _, rp := range remote.DecodePrompts(raw) {
			out = append(out, remote.ToPrompt(rp, "", now))
		}
	}
	return out
}

// mergePrompts builds the new prompt list from freshly fetched remote prompts
// and the previous list: local prompts are carried over, and usage counters
// never go backwards. Remote ids are only unique within a category file, so
// an id already taken by another category is qualified as
// "<category>:<id>"; duplicates inside one category collapse to the first.
func mergePrompts(fetched, previous []domain.Prompt) []domain.Prompt {
	prevUsage := make(map[string]int, len(previous))
	for _, p := range previous {
		prevUsage[p.ID] = p.UsageCount
	}

	// id -> category of the prompt that holds it
	seen := make(map[string]string, len(fetched)+len(previous))
	out := make([]domain.Prompt, 0, len(fetched)+len(previous))
	for _, p := range fetched {
		if owner, dup := seen[p.ID]; dup {
			if owner == p.Category {
				continue
			}
			qualified := p.Category + ":" + p.ID
			if _, taken := seen[qualified]; taken {
				continue
			}
			p.ID = qualified
		}
		seen[p.ID] = p.Category
		if used, ok := prevUsage[p.ID]; ok && used > p.UsageCount {
			p.UsageCount = used
		}
		out = append(out, p)
	}
	for _, p := range previous {
		if !p.IsLocal() {
			continue
		}
		if _, dup := seen[p.ID]; dup {
			continue
		}
		seen[p.ID] = p.Category
		out = append(out, p.Clone())
	}
	return out
}

func hasRemotePrompts(prompts []domain.Prompt) bool {
	for _, p := range prompts {
		if !p.IsLocal() {
			return true
		}
	}
	return false
}

// newDataVersion returns 8 hex chars of a fresh UUID.
func newDataVersion() string {
	id := uuid.New()
	return hex.EncodeToString(id[:4])
}

func reportData(r RefreshReport) map[string]any {
	return map[string]any{
		"trigger":     r.Trigger,
		"performed":   r.Performed,
		"categories":  r.Categories,
		"prompts":     r.Prompts,
		"failed":      r.FailedCategories,
		"version":     r.DataVersion,
		"duration_ms": r.Duration.Milliseconds(),
		"error":       r.Error,
	}
}
