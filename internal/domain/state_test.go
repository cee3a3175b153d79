package domain

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"
)

func TestAddHistoryCap(t *testing.T) {
	s := NewAppState(60)

	for i := 0; i < 60; i++ {
		s.AddHistory(fmt.Sprintf("p%d", i))
	}
	if len(s.History) != HistoryLimit {
		t.Fatalf("len(History) = %d, want %d", len(s.History), HistoryLimit)
	}
	if s.History[0] != "p59" {
		t.Errorf("History[0] = %s, want p59", s.History[0])
	}

	// re-insert an id from the middle
	s.AddHistory("p30")
	if s.History[0] != "p30" {
		t.Errorf("History[0] = %s, want p30", s.History[0])
	}
	if len(s.History) != HistoryLimit {
		t.Errorf("len(History) = %d, want %d", len(s.History), HistoryLimit)
	}
	seen := map[string]bool{}
	for _, id := range s.History {
		if seen[id] {
			t.Fatalf("duplicate id %s in history", id)
		}
		seen[id] = true
	}
}

func TestToggleFavoriteIdempotence(t *testing.T) {
	s := NewAppState(60)
	s.Favorites = []string{"a", "b"}

	if !s.ToggleFavorite("c") {
		t.Errorf("ToggleFavorite(c) = false, want true")
	}
	if s.ToggleFavorite("c") {
		t.Errorf("second ToggleFavorite(c) = true, want false")
	}
	if len(s.Favorites) != 2 || s.Favorites[0] != "a" || s.Favorites[1] != "b" {
		t.Errorf("Favorites = %v, want [a b]", s.Favorites)
	}
	if s.IsFavorite("c") {
		t.Errorf("IsFavorite(c) = true after double toggle")
	}
}

func TestValidateRejectsNullCollections(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr bool
	}{
		{
			name:    "complete",
			payload: `{"prompts":[],"categories":[],"favorites":[],"userRatings":{},"history":[],"theme":"dark"}`,
		},
		{
			name:    "null prompts",
			payload: `{"prompts":null,"categories":[],"favorites":[],"userRatings":{},"history":[]}`,
			wantErr: true,
		},
		{
			name:    "missing ratings",
			payload: `{"prompts":[],"categories":[],"favorites":[],"history":[]}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s AppState
			if err := json.Unmarshal([]byte(tt.payload), &s); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			err := s.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRepair(t *testing.T) {
	s := AppState{
		Prompts:          []Prompt{},
		Categories:       []Category{{ID: "fun"}},
		Favorites:        []string{},
		UserRatings:      map[string]UserRating{},
		History:          []string{},
		Theme:            "sepia",
		SortBy:           "random",
		SelectedCategory: "fun",
		SearchQuery:      "leftover",
		IsLoading:        true,
	}

	s.Repair(15)

	if s.CacheMetadata == nil || s.CacheMetadata.RefreshIntervalMinutes != 15 || !s.CacheMetadata.BackgroundRefreshEnabled {
		t.Errorf("CacheMetadata = %+v, want defaults with interval 15", s.CacheMetadata)
	}
	if s.Theme != ThemeLight {
		t.Errorf("Theme = %s, want light", s.Theme)
	}
	if s.SortBy != SortNewest {
		t.Errorf("SortBy = %s, want newest", s.SortBy)
	}
	if s.Categories[0].ID != AllCategoryID || len(s.Categories) != 2 {
		t.Errorf("Categories = %+v, want all first", s.Categories)
	}
	if s.SelectedCategory != AllCategoryID || s.SearchQuery != "" || s.IsLoading {
		t.Errorf("in-memory fields not reset: %+v", s)
	}
}

func TestStateSerializationSkipsMemoryOnlyFields(t *testing.T) {
	s := NewAppState(60)
	s.SearchQuery = "secret"
	s.SelectedCategory = "fun"
	s.IsLoading = true

	raw, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var back map[string]any
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"searchQuery", "selectedCategory", "isLoading", "SearchQuery"} {
		if _, ok := back[key]; ok {
			t.Errorf("serialized state contains %s", key)
		}
	}
}

func TestCloneIsDeep(t *testing.T) {
	s := NewAppState(60)
	s.Prompts = []Prompt{{ID: "a", Tags: []string{"x"}}}
	s.UserRatings["a"] = NewUserRating("a", 5)

	c := s.Clone()
	c.Prompts[0].Tags[0] = "changed"
	c.UserRatings["b"] = NewUserRating("b", 1)
	c.CacheMetadata.RefreshIntervalMinutes = 1

	if s.Prompts[0].Tags[0] != "x" {
		t.Errorf("clone shares tag slice")
	}
	if _, ok := s.UserRatings["b"]; ok {
		t.Errorf("clone shares ratings map")
	}
	if s.CacheMetadata.RefreshIntervalMinutes != 60 {
		t.Errorf("clone shares cache metadata")
	}
}

func TestForget(t *testing.T) {
	s := NewAppState(60)
	s.Favorites = []string{"a", "b"}
	s.History = []string{"b", "a", "c"}
	s.UserRatings["a"] = NewUserRating("a", 3)

	s.Forget("a")

	if s.IsFavorite("a") {
		t.Errorf("a still favorite")
	}
	if _, ok := s.UserRatings["a"]; ok {
		t.Errorf("a still rated")
	}
	if len(s.History) != 2 || s.History[0] != "b" || s.History[1] != "c" {
		t.Errorf("History = %v, want [b c]", s.History)
	}
}

func TestPromptNormalize(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	p := Prompt{
		CreatedAt:  now,
		UpdatedAt:  now.Add(-time.Hour),
		Difficulty: "expert",
	}

	p.Normalize(now)

	if p.UpdatedAt.Before(p.CreatedAt) {
		t.Errorf("UpdatedAt %v before CreatedAt %v", p.UpdatedAt, p.CreatedAt)
	}
	if p.Difficulty != DifficultyBeginner {
		t.Errorf("Difficulty = %s, want beginner", p.Difficulty)
	}
	if p.Origin != OriginRemote || p.Tags == nil || p.Placeholders == nil {
		t.Errorf("defaults not applied: %+v", p)
	}
}

func TestStablePromptID(t *testing.T) {
	a := StablePromptID("fun", "Joke", "Tell a joke")
	b := StablePromptID("fun", "Joke", "Tell a joke")
	c := StablePromptID("fun", "Joke", "Tell two jokes")

	if a != b {
		t.Errorf("StablePromptID not deterministic: %s vs %s", a, b)
	}
	if a == c {
		t.Errorf("StablePromptID collides for different content")
	}
	if len(a) != 16 {
		t.Errorf("len(StablePromptID) = %d, want 16", len(a))
	}
}

func TestAverageRating(t *testing.T) {
	ratings := map[string]UserRating{
		"a": NewUserRating("a", 4),
		"z": NewUserRating("z", 0),
	}
	if got := AverageRating(ratings, "a"); got != 4 {
		t.Errorf("AverageRating(a) = %v, want 4", got)
	}
	if got := AverageRating(ratings, "z"); got != 0 {
		t.Errorf("AverageRating(z) = %v, want 0", got)
	}
	if !ratings["a"].IsLiked || ratings["z"].IsLiked {
		t.Errorf("IsLiked not derived from rating")
	}

	prompts := []Prompt{{ID: "a", AverageRating: 1.5}, {ID: "b", AverageRating: 3.2}}
	ApplyRatings(prompts, ratings)
	if prompts[0].AverageRating != 4 || prompts[1].AverageRating != 3.2 {
		t.Errorf("ApplyRatings() = %+v", prompts)
	}
}
