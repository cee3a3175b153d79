package remote

import (
	"sort"
	"strings"
	"time"

	"github.com/MrSnakeDoc/promptvault/internal/domain"
	"github.com/MrSnakeDoc/promptvault/internal/placeholder"
)

// MapCategories converts index categories to domain categories.
//
// Ids are slugs of the names. Entries with an empty slug, the reserved "all"
// slug or an id already seen are skipped. Slugs drop punctuation, so names
// such as "C++" and "C" share an id and only the first is kept. The result
// is ordered by SortOrder and always starts with the synthetic "all"
// category.
func MapCategories(remote []RemoteCategory, baseURL string) []domain.Category {
	seen := make(map[string]struct{}, len(remote))
	named := make([]domain.Category, 0, len(remote))

	for _, rc := range remote {
		id := domain.Slugify(rc.Name)
		if id == "" || id == domain.AllCategoryID {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		named = append(named, domain.Category{
			ID:           id,
			Name:         strings.TrimSpace(rc.Name),
			Description:  rc.Description,
			Icon:         rc.Icon,
			Color:        rc.Color,
			SortOrder:    rc.SortOrder,
			FilePathName: ResolvePath(baseURL, rc.FilePathName),
		})
	}

	sort.SliceStable(named, func(i, j int) bool {
		return named[i].SortOrder < named[j].SortOrder
	})

	return append([]domain.Category{domain.AllCategory()}, named...)
}

// ResolvePath returns p unchanged when it is already an http(s) URL and
// base+p otherwise. An empty p stays empty.
func ResolvePath(base, p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	lower := strings.ToLower(p)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return p
	}
	if base == "" {
		return p
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(p, "/")
}

// ToPrompt converts a published prompt into a remote domain prompt.
//
// categoryID, when not empty, replaces whatever category the prompt
// declared. Missing ids become StablePromptID, missing timestamps become
// now, a missing author becomes DefaultAuthor and prompts are public unless
// they say otherwise.
func ToPrompt(rp RemotePrompt, categoryID string, now time.Time) domain.Prompt {
	category := strings.TrimSpace(rp.Category)
	if categoryID != "" {
		category = categoryID
	}

	p := domain.Prompt{
		ID:            strings.TrimSpace(rp.ID),
		Title:         strings.TrimSpace(rp.Title),
		Content:       rp.Content,
		Description:   rp.Description,
		Category:      category,
		Tags:          cleanTags(rp.Tags),
		Placeholders:  rp.Placeholders,
		UsageNotes:    rp.UsageNotes,
		EstimatedTime: rp.EstimatedTime,
		Difficulty:    strings.ToLower(strings.TrimSpace(rp.Difficulty)),
		Author:        strings.TrimSpace(rp.Author),
		IsPublic:      rp.IsPublic == nil || *rp.IsPublic,
		UsageCount:    max(rp.UsageCount, 0),
		AverageRating: rp.AverageRating,
		Origin:        domain.OriginRemote,
		CreatedAt:     rp.CreatedAt.Time,
		UpdatedAt:     rp.UpdatedAt.Time,
	}

	if p.ID == "" {
		p.ID = domain.StablePromptID(category, p.Title, p.Content)
	}
	if p.Author == "" {
		p.Author = domain.DefaultAuthor
	}
	if len(p.Placeholders) == 0 {
		p.Placeholders = placeholder.Names(p.Content)
	}
	p.Normalize(now)
	return p
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
