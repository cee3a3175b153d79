package domain

import (
	"strings"
	"unicode"
)

// AllCategoryID is the id of the synthetic category that matches every prompt.
const AllCategoryID = "all"

// Category groups prompts under a display name.
type Category struct {
	// ID is Slugify(Name), recomputed on every load.
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
	SortOrder   int    `json:"sortOrder"`

	// FilePathName is the absolute URL of the category's prompt file.
	// Empty for the synthetic "all" category.
	FilePathName string `json:"filePathName"`

	// PromptCount is derived from the prompt list, never trusted from input.
	PromptCount int `json:"promptCount"`
}

// AllCategory returns the synthetic category that is always listed first.
func AllCategory() Category {
	return Category{
		ID:          AllCategoryID,
		Name:        "All Prompts",
		Description: "View all available prompts",
		Icon:        "LayoutGrid",
		Color:       "blue",
		SortOrder:   0,
	}
}

// Slugify turns a display name into a category id.
//
// The trimmed name is split on whitespace, every word is lowercased and
// stripped of runes other than letters, digits, '-' and '_', empty words are
// dropped and the rest joined with '-'.
//
//	"Creative Writing!!" -> "creative-writing"
func Slugify(name string) string {
	words := strings.Fields(name)
	parts := make([]string, 0, len(words))
	for _, w := range words {
		var b strings.Builder
		for _, r := range strings.ToLower(w) {
			if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
				b.WriteRune(r)
			}
		}
		if b.Len() > 0 {
			parts = append(parts, b.String())
		}
	}
	return strings.Join(parts, "-")
}

// RecountCategories sets PromptCount on every category from prompts.
// The "all" category counts every prompt.
func RecountCategories(categories []Category, prompts []Prompt) {
	counts := make(map[string]int, len(categories))
	for _, p := range prompts {
		counts[p.Category]++
	}
	for i := range categories {
		if categories[i].ID == AllCategoryID {
			categories[i].PromptCount = len(prompts)
			continue
		}
		categories[i].PromptCount = counts[categories[i].ID]
	}
}

// HasCategory reports whether id names one of categories.
func HasCategory(categories []Category, id string) bool {
	for _, c := range categories {
		if c.ID == id {
			return true
		}
	}
	return false
}
