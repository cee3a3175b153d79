package catalog

import (
	"github.com/MrSnakeDoc/promptvault/internal/domain"
)

// State returns a deep copy of the whole state.
func (s *Synchronizer) State() *domain.AppState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// CacheMetadata returns a copy of the cache metadata.
func (s *Synchronizer) CacheMetadata() domain.CacheMetadata {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return *s.state.CacheMetadata
}

// IsLoading reports whether a load or refresh is in progress.
func (s *Synchronizer) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.IsLoading
}

// CurrentView returns the view held in memory (selected category, search
// query, sort order and favorites-only flag).
func (s *Synchronizer) CurrentView() domain.View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.View{
		Category:      s.state.SelectedCategory,
		Query:         s.state.SearchQuery,
		FavoritesOnly: s.state.ShowFavoritesOnly,
		SortBy:        s.state.SortBy,
	}
}

// FilteredPrompts applies the current view to the prompt list.
func (s *Synchronizer) FilteredPrompts() []domain.Prompt {
	return s.FilterPrompts(s.CurrentView())
}

// FilterPrompts applies v to the prompt list without changing the state.
func (s *Synchronizer) FilterPrompts(v domain.View) []domain.Prompt {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.FilterPrompts(s.state.Prompts, s.state.Favorites, v)
}

// Prompt returns the prompt with id.
func (s *Synchronizer) Prompt(id string) (domain.Prompt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.state.PromptIndex(id)
	if i < 0 {
		return domain.Prompt{}, ErrPromptNotFound
	}
	return s.state.Prompts[i].Clone(), nil
}

// Prompts returns every prompt in catalog order.
func (s *Synchronizer) Prompts() []domain.Prompt {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Prompt, len(s.state.Prompts))
	for i, p := range s.state.Prompts {
		out[i] = p.Clone()
	}
	return out
}

// Categories returns the categories, "all" first.
func (s *Synchronizer) Categories() []domain.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Category(nil), s.state.Categories...)
}

// Favorites returns the favorite prompts in the order they were added.
// Ids whose prompt disappeared are skipped.
func (s *Synchronizer) Favorites() []domain.Prompt {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lookupLocked(s.state.Favorites)
}

// History returns recently used prompts, most recent first.
// Ids whose prompt disappeared are skipped.
func (s *Synchronizer) History() []domain.Prompt {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lookupLocked(s.state.History)
}

func (s *Synchronizer) lookupLocked(ids []string) []domain.Prompt {
	byID := make(map[string]int, len(s.state.Prompts))
	for i, p := range s.state.Prompts {
		byID[p.ID] = i
	}
	out := make([]domain.Prompt, 0, len(ids))
	for _, id := range ids {
		if i, ok := byID[id]; ok {
			out = append(out, s.state.Prompts[i].Clone())
		}
	}
	return out
}

// UserRating returns the rating given to id, if any.
func (s *Synchronizer) UserRating(id string) (domain.UserRating, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.state.UserRatings[id]
	return r, ok
}
