package domain

import (
	"errors"
	"time"
)

// Themes.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Sort orders for the filtered prompt list.
const (
	SortNewest = "newest"
	SortName   = "name"
	SortDate   = "date"
	SortRating = "rating"
)

const (
	// HistoryLimit caps the number of recently used prompt ids kept.
	HistoryLimit = 50

	// DefaultRefreshIntervalMinutes is used when no interval was configured.
	DefaultRefreshIntervalMinutes = 60
)

var errNilCollection = errors.New("state has a missing collection")

// CacheMetadata tracks when the remote catalog was last synchronized.
type CacheMetadata struct {
	LastUpdated time.Time `json:"lastUpdated"`

	// LastBackgroundRefresh is the zero time until the first refresh.
	LastBackgroundRefresh time.Time `json:"lastBackgroundRefresh"`

	// DataVersion changes on every successful refresh (8 hex chars).
	DataVersion string `json:"dataVersion"`

	IsStale                  bool `json:"isStale"`
	RefreshIntervalMinutes   int  `json:"refreshIntervalMinutes"`
	BackgroundRefreshEnabled bool `json:"backgroundRefreshEnabled"`
}

// NewCacheMetadata returns metadata for a catalog that was never loaded.
func NewCacheMetadata(intervalMinutes int) *CacheMetadata {
	if intervalMinutes < 1 {
		intervalMinutes = DefaultRefreshIntervalMinutes
	}
	return &CacheMetadata{
		IsStale:                  true,
		RefreshIntervalMinutes:   intervalMinutes,
		BackgroundRefreshEnabled: true,
	}
}

// Interval returns the refresh interval as a duration.
func (m *CacheMetadata) Interval() time.Duration {
	return time.Duration(m.RefreshIntervalMinutes) * time.Minute
}

// AppState is the whole application state persisted under a single key.
//
// SelectedCategory, SearchQuery and IsLoading live in memory only.
type AppState struct {
	Prompts     []Prompt              `json:"prompts"`
	Categories  []Category            `json:"categories"`
	Favorites   []string              `json:"favorites"`
	UserRatings map[string]UserRating `json:"userRatings"`

	// History holds prompt ids, most recent first.
	History []string `json:"history"`

	SelectedCategory string `json:"-"`
	SearchQuery      string `json:"-"`
	IsLoading        bool   `json:"-"`

	Theme             string `json:"theme"`
	SortBy            string `json:"sortBy"`
	ShowFavoritesOnly bool   `json:"showFavoritesOnly"`

	CacheMetadata *CacheMetadata `json:"cacheMetadata"`
}

// NewAppState returns the default state: no prompts, only the "all"
// category, light theme, newest first and a stale cache.
func NewAppState(intervalMinutes int) *AppState {
	return &AppState{
		Prompts:          []Prompt{},
		Categories:       []Category{AllCategory()},
		Favorites:        []string{},
		UserRatings:      map[string]UserRating{},
		History:          []string{},
		SelectedCategory: AllCategoryID,
		Theme:            ThemeLight,
		SortBy:           SortNewest,
		CacheMetadata:    NewCacheMetadata(intervalMinutes),
	}
}

// Validate reports whether a decoded state is structurally usable.
// Every collection must be present.
func (s *AppState) Validate() error {
	if s.Prompts == nil || s.Categories == nil || s.Favorites == nil ||
		s.UserRatings == nil || s.History == nil {
		return errNilCollection
	}
	return nil
}

// Repair fills in values a persisted state may lack and resets the
// in-memory only fields.
func (s *AppState) Repair(intervalMinutes int) {
	if s.CacheMetadata == nil {
		s.CacheMetadata = NewCacheMetadata(intervalMinutes)
	}
	if s.CacheMetadata.RefreshIntervalMinutes <= 0 {
		s.CacheMetadata.RefreshIntervalMinutes = DefaultRefreshIntervalMinutes
	}
	if s.Theme != ThemeLight && s.Theme != ThemeDark {
		s.Theme = ThemeLight
	}
	if !ValidSort(s.SortBy) {
		s.SortBy = SortNewest
	}
	if len(s.Categories) == 0 || s.Categories[0].ID != AllCategoryID {
		s.Categories = append([]Category{AllCategory()}, s.Categories...)
	}
	if len(s.History) > HistoryLimit {
		s.History = s.History[:HistoryLimit]
	}
	s.SelectedCategory = AllCategoryID
	s.SearchQuery = ""
	s.IsLoading = false
}

// Clone returns a deep copy of the state.
func (s *AppState) Clone() *AppState {
	out := *s
	out.Prompts = make([]Prompt, len(s.Prompts))
	for i, p := range s.Prompts {
		out.Prompts[i] = p.Clone()
	}
	out.Categories = append(make([]Category, 0, len(s.Categories)), s.Categories...)
	out.Favorites = append(make([]string, 0, len(s.Favorites)), s.Favorites...)
	out.History = append(make([]string, 0, len(s.History)), s.History...)
	out.UserRatings = make(map[string]UserRating, len(s.UserRatings))
	for k, v := range s.UserRatings {
		out.UserRatings[k] = v
	}
	if s.CacheMetadata != nil {
		md := *s.CacheMetadata
		out.CacheMetadata = &md
	}
	return &out
}

// IsFavorite reports whether id is in the favorites set.
func (s *AppState) IsFavorite(id string) bool {
	for _, f := range s.Favorites {
		if f == id {
			return true
		}
	}
	return false
}

// ToggleFavorite adds or removes id and returns whether it is now a favorite.
func (s *AppState) ToggleFavorite(id string) bool {
	for i, f := range s.Favorites {
		if f == id {
			s.Favorites = append(s.Favorites[:i], s.Favorites[i+1:]...)
			return false
		}
	}
	s.Favorites = append(s.Favorites, id)
	return true
}

// AddHistory moves id to the front of the history, capped at HistoryLimit.
func (s *AppState) AddHistory(id string) {
	next := make([]string, 0, len(s.History)+1)
	next = append(next, id)
	for _, h := range s.History {
		if h != id {
			next = append(next, h)
		}
	}
	if len(next) > HistoryLimit {
		next = next[:HistoryLimit]
	}
	s.History = next
}

// PromptIndex returns the position of the prompt with id, or -1.
func (s *AppState) PromptIndex(id string) int {
	for i := range s.Prompts {
		if s.Prompts[i].ID == id {
			return i
		}
	}
	return -1
}

// Forget removes every user reference to id.
func (s *AppState) Forget(id string) {
	for i, f := range s.Favorites {
		if f == id {
			s.Favorites = append(s.Favorites[:i], s.Favorites[i+1:]...)
			break
		}
	}
	delete(s.UserRatings, id)
	kept := s.History[:0]
	for _, h := range s.History {
		if h != id {
			kept = append(kept, h)
		}
	}
	s.History = kept
}

// ValidSort reports whether v is a known sort order.
func ValidSort(v string) bool {
	switch v {
	case SortNewest, SortName, SortDate, SortRating:
		return true
	}
	return false
}
