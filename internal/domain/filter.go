package domain

import (
	"sort"
	"strings"
)

// View describes how the prompt list is narrowed and ordered.
type View struct {
	Category      string `json:"category"`
	Query         string `json:"query"`
	FavoritesOnly bool   `json:"favoritesOnly"`
	SortBy        string `json:"sortBy"`
}

// FilterPrompts applies, in order: category, search, favorites-only, sort.
// The input slice is left untouched.
func FilterPrompts(prompts []Prompt, favorites []string, v View) []Prompt {
	out := make([]Prompt, 0, len(prompts))

	query := strings.ToLower(strings.TrimSpace(v.Query))

	var favSet map[string]struct{}
	if v.FavoritesOnly {
		favSet = make(map[string]struct{}, len(favorites))
		for _, id := range favorites {
			favSet[id] = struct{}{}
		}
	}

	for _, p := range prompts {
		if v.Category != "" && v.Category != AllCategoryID && p.Category != v.Category {
			continue
		}
		if query != "" && !MatchesQuery(p, query) {
			continue
		}
		if favSet != nil {
			if _, ok := favSet[p.ID]; !ok {
				continue
			}
		}
		out = append(out, p.Clone())
	}

	SortPrompts(out, v.SortBy)
	return out
}

// MatchesQuery reports whether the lowercased query is a substring of the
// prompt's title, content, description or one of its tags.
func MatchesQuery(p Prompt, query string) bool {
	if strings.Contains(strings.ToLower(p.Title), query) ||
		strings.Contains(strings.ToLower(p.Content), query) ||
		strings.Contains(strings.ToLower(p.Description), query) {
		return true
	}
	for _, t := range p.Tags {
		if strings.Contains(strings.ToLower(t), query) {
			return true
		}
	}
	return false
}

// SortPrompts orders prompts in place. Unknown modes fall back to newest.
func SortPrompts(prompts []Prompt, mode string) {
	switch mode {
	case SortName:
		sort.SliceStable(prompts, func(i, j int) bool {
			return prompts[i].Title < prompts[j].Title
		})
	case SortRating:
		sort.SliceStable(prompts, func(i, j int) bool {
			return prompts[i].AverageRating > prompts[j].AverageRating
		})
	default: // SortNewest, SortDate
		sort.SliceStable(prompts, func(i, j int) bool {
			return prompts[i].CreatedAt.After(prompts[j].CreatedAt)
		})
	}
}
