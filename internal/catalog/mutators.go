package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/promptvault/internal/domain"
	"github.com/MrSnakeDoc/promptvault/internal/placeholder"
	"github.com/MrSnakeDoc/promptvault/internal/validation"
)

// PromptInput is the user supplied part of a local prompt.
type PromptInput struct {
	Title         string   `json:"title" validate:"notblank,max=200"`
	Content       string   `json:"content" validate:"notblank"`
	Description   string   `json:"description" validate:"max=2000"`
	Category      string   `json:"category" validate:"notblank"`
	Tags          []string `json:"tags" validate:"max=32,dive,max=64"`
	UsageNotes    string   `json:"usageNotes"`
	EstimatedTime string   `json:"estimatedTime"`
	Difficulty    string   `json:"difficulty" validate:"omitempty,oneof=beginner intermediate advanced"`
	Author        string   `json:"author"`
	IsPublic      *bool    `json:"isPublic"`
}

func (in PromptInput) apply(p *domain.Prompt) {
	p.Title = strings.TrimSpace(in.Title)
	p.Content = in.Content
	p.Description = strings.TrimSpace(in.Description)
	p.Category = strings.TrimSpace(in.Category)
	p.Tags = trimTags(in.Tags)
	p.Placeholders = placeholder.Names(in.Content)
	p.UsageNotes = in.UsageNotes
	p.EstimatedTime = in.EstimatedTime
	p.Difficulty = in.Difficulty
	p.Author = strings.TrimSpace(in.Author)
	if in.IsPublic != nil {
		p.IsPublic = *in.IsPublic
	}
}

// AddPrompt creates a local prompt. Invalid input returns a
// *validation.Error and leaves the state untouched.
func (s *Synchronizer) AddPrompt(ctx context.Context, in PromptInput) (domain.Prompt, error) {
	if err := validation.Struct(in); err != nil {
		return domain.Prompt{}, err
	}

	now := s.now()
	p := domain.Prompt{
		ID:        uuid.NewString(),
		Origin:    domain.OriginLocal,
		IsPublic:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	in.apply(&p)
	p.Normalize(now)

	s.mu.Lock()
	s.state.Prompts = append(s.state.Prompts, p)
	domain.RecountCategories(s.state.Categories, s.state.Prompts)
	s.mu.Unlock()

	s.commit(ctx, "prompt-added")
	return p.Clone(), nil
}

// UpdatePrompt replaces the editable fields of a prompt. Id, origin,
// creation time and counters are kept.
func (s *Synchronizer) UpdatePrompt(ctx context.Context, id string, in PromptInput) (domain.Prompt, error) {
	if err := validation.Struct(in); err != nil {
		return domain.Prompt{}, err
	}

	s.mu.Lock()
	i := s.state.PromptIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return domain.Prompt{}, ErrPromptNotFound
	}
	p := s.state.Prompts[i].Clone()
	in.apply(&p)
	p.UpdatedAt = s.now()
	p.Normalize(p.UpdatedAt)
	s.state.Prompts[i] = p
	domain.RecountCategories(s.state.Categories, s.state.Prompts)
	s.mu.Unlock()

	s.commit(ctx, "prompt-updated")
	return p.Clone(), nil
}

// DeletePrompt removes a prompt along with its favorite, rating and history
// entries.
func (s *Synchronizer) DeletePrompt(ctx context.Context, id string) error {
	s.mu.Lock()
	i := s.state.PromptIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return ErrPromptNotFound
	}
	s.state.Prompts = append(s.state.Prompts[:i], s.state.Prompts[i+1:]...)
	s.state.Forget(id)
	domain.RecountCategories(s.state.Categories, s.state.Prompts)
	s.mu.Unlock()

	s.commit(ctx, "prompt-deleted")
	return nil
}

// ToggleFavorite adds id to the favorites or removes it, and returns whether
// it is now a favorite. Only known prompts can be added; removal always
// succeeds.
func (s *Synchronizer) ToggleFavorite(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	if !s.state.IsFavorite(id) && s.state.PromptIndex(id) < 0 {
		s.mu.Unlock()
		return false, ErrPromptNotFound
	}
	fav := s.state.ToggleFavorite(id)
	s.mu.Unlock()

	s.commit(ctx, "favorite")
	return fav, nil
}

// SetRating records the user's rating of a prompt, replacing any previous
// one, and recomputes the prompt's average rating.
func (s *Synchronizer) SetRating(ctx context.Context, id string, rating int) (domain.UserRating, error) {
	if rating < domain.MinRating || rating > domain.MaxRating {
		return domain.UserRating{}, validation.NewError(map[string]string{
			"rating": "rating must be between 1 and 5",
		})
	}

	s.mu.Lock()
	i := s.state.PromptIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return domain.UserRating{}, ErrPromptNotFound
	}
	r := domain.NewUserRating(id, rating)
	s.state.UserRatings[id] = r
	s.state.Prompts[i].AverageRating = domain.AverageRating(s.state.UserRatings, id)
	s.mu.Unlock()

	s.commit(ctx, "rating")
	return r, nil
}

// AddToHistory moves id to the front of the recently used list.
func (s *Synchronizer) AddToHistory(ctx context.Context, id string) error {
	s.mu.Lock()
	if s.state.PromptIndex(id) < 0 {
		s.mu.Unlock()
		return ErrPromptNotFound
	}
	s.state.AddHistory(id)
	s.mu.Unlock()

	s.commit(ctx, "history")
	return nil
}

// IncrementUsage bumps the usage counter of id and records it in the
// history. It returns the new counter.
func (s *Synchronizer) IncrementUsage(ctx context.Context, id string) (int, error) {
	s.mu.Lock()
	i := s.state.PromptIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return 0, ErrPromptNotFound
	}
	s.state.Prompts[i].UsageCount++
	count := s.state.Prompts[i].UsageCount
	s.state.AddHistory(id)
	s.mu.Unlock()

	s.commit(ctx, "usage")
	return count, nil
}

// SetSearchQuery changes the in-memory search query. Nothing is persisted.
func (s *Synchronizer) SetSearchQuery(q string) {
	s.mu.Lock()
	s.state.SearchQuery = q
	s.mu.Unlock()
	s.bus.NotifyStateChanged("search")
}

// SetSelectedCategory changes the in-memory category filter. Unknown ids
// select "all". Nothing is persisted.
func (s *Synchronizer) SetSelectedCategory(id string) string {
	s.mu.Lock()
	if id == "" || !domain.HasCategory(s.state.Categories, id) {
		id = domain.AllCategoryID
	}
	s.state.SelectedCategory = id
	s.mu.Unlock()
	s.bus.NotifyStateChanged("category")
	return id
}

// SetSortBy changes the sort order of the filtered list.
func (s *Synchronizer) SetSortBy(ctx context.Context, sortBy string) error {
	if !domain.ValidSort(sortBy) {
		return validation.NewError(map[string]string{
			"sortBy": "sortBy must be one of: newest name date rating",
		})
	}
	s.mu.Lock()
	s.state.SortBy = sortBy
	s.mu.Unlock()

	s.commit(ctx, "sort")
	return nil
}

// SetShowFavoritesOnly toggles the favorites-only filter.
func (s *Synchronizer) SetShowFavoritesOnly(ctx context.Context, v bool) {
	s.mu.Lock()
	s.state.ShowFavoritesOnly = v
	s.mu.Unlock()

	s.commit(ctx, "favorites-only")
}

// SetTheme changes the theme and notifies the theme observers.
func (s *Synchronizer) SetTheme(ctx context.Context, theme string) error {
	if theme != domain.ThemeLight && theme != domain.ThemeDark {
		return validation.NewError(map[string]string{
			"theme": "theme must be one of: light dark",
		})
	}
	s.mu.Lock()
	s.state.Theme = theme
	s.mu.Unlock()

	s.commit(ctx, "theme")
	s.bus.NotifyTheme(theme)
	return nil
}

// ToggleTheme flips between light and dark and returns the new theme.
func (s *Synchronizer) ToggleTheme(ctx context.Context) string {
	s.mu.Lock()
	theme := domain.ThemeDark
	if s.state.Theme == domain.ThemeDark {
		theme = domain.ThemeLight
	}
	s.state.Theme = theme
	s.mu.Unlock()

	s.commit(ctx, "theme")
	s.bus.NotifyTheme(theme)
	return theme
}

// Theme returns the current theme.
func (s *Synchronizer) Theme() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Theme
}

// SetRefreshInterval changes the refresh interval, clamped to at least one
// minute, and returns the stored value.
func (s *Synchronizer) SetRefreshInterval(ctx context.Context, minutes int) int {
	if minutes < 1 {
		minutes = 1
	}
	s.mu.Lock()
	s.state.CacheMetadata.RefreshIntervalMinutes = minutes
	s.mu.Unlock()

	s.commit(ctx, "refresh-interval")
	return minutes
}

// EnableBackgroundRefresh records whether the scheduler may run.
func (s *Synchronizer) EnableBackgroundRefresh(ctx context.Context, enabled bool) {
	s.mu.Lock()
	s.state.CacheMetadata.BackgroundRefreshEnabled = enabled
	s.mu.Unlock()

	s.commit(ctx, "background-refresh")
}

// ClearData drops prompts and every piece of user data attached to them.
// Categories and preferences are kept.
func (s *Synchronizer) ClearData(ctx context.Context) {
	s.mu.Lock()
	s.state.Prompts = []domain.Prompt{}
	s.state.Favorites = []string{}
	s.state.UserRatings = map[string]domain.UserRating{}
	s.state.History = []string{}
	domain.RecountCategories(s.state.Categories, s.state.Prompts)
	s.mu.Unlock()

	s.metrics.SetCatalogSize(0, len(s.Categories()))
	s.commit(ctx, "cleared")
}

// ResetToDefaults replaces the whole state with a fresh default state. The
// catalog becomes stale so the next refresh reloads it.
func (s *Synchronizer) ResetToDefaults(ctx context.Context) {
	fresh := domain.NewAppState(s.defaultInterval)

	s.mu.Lock()
	fresh.IsLoading = s.state.IsLoading
	s.state = fresh
	s.mu.Unlock()

	s.metrics.SetCatalogSize(0, len(fresh.Categories))
	s.commit(ctx, "reset")
	s.bus.NotifyTheme(fresh.Theme)
}

func trimTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
