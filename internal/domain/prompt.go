package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Difficulty levels a prompt can declare.
const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

// Origins of a prompt.
const (
	OriginRemote = "remote"
	OriginLocal  = "local"
)

// DefaultAuthor is assigned to remote prompts that do not name one.
const DefaultAuthor = "External Source"

// Prompt is a reusable text template with optional [placeholders].
//
// Remote prompts are replaced wholesale on every catalog refresh; local
// prompts (created by the user) survive it.
type Prompt struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID never changes after creation.
	// Remote prompts without an id get StablePromptID.
	ID string `json:"id"`

	// ─────────────────────────────
	// Content
	// ─────────────────────────────

	Title       string   `json:"title"`
	Content     string   `json:"content"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`

	// Placeholders lists the distinct raw placeholder names found in Content.
	Placeholders  []string `json:"placeholders"`
	UsageNotes    string   `json:"usageNotes,omitempty"`
	EstimatedTime string   `json:"estimatedTime,omitempty"`
	Difficulty    string   `json:"difficulty"`
	Author        string   `json:"author"`
	IsPublic      bool     `json:"isPublic"`

	// ─────────────────────────────
	// Usage & feedback
	// ─────────────────────────────

	UsageCount int `json:"usageCount"`

	// AverageRating is the mean of the non-zero user ratings for this
	// prompt, or 0 when it has none.
	AverageRating float64 `json:"averageRating"`

	// ─────────────────────────────
	// Provenance & metadata
	// ─────────────────────────────

	// Origin is OriginRemote or OriginLocal.
	Origin string `json:"origin"`

	CreatedAt time.Time `json:"createdAt"`

	// UpdatedAt is never before CreatedAt.
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsLocal reports whether the prompt was created by the user.
func (p Prompt) IsLocal() bool {
	return p.Origin == OriginLocal
}

// Clone returns a deep copy of the prompt.
func (p Prompt) Clone() Prompt {
	p.Tags = cloneStrings(p.Tags)
	p.Placeholders = cloneStrings(p.Placeholders)
	return p
}

// Normalize fills zero values with their defaults and enforces
// UpdatedAt >= CreatedAt.
func (p *Prompt) Normalize(now time.Time) {
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.Placeholders == nil {
		p.Placeholders = []string{}
	}
	if !ValidDifficulty(p.Difficulty) {
		p.Difficulty = DifficultyBeginner
	}
	if p.Origin == "" {
		p.Origin = OriginRemote
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = now
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	if p.UpdatedAt.Before(p.CreatedAt) {
		p.UpdatedAt = p.CreatedAt
	}
}

// ValidDifficulty reports whether d is one of the known difficulty levels.
func ValidDifficulty(d string) bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// StablePromptID derives a deterministic id for a remote prompt that did not
// carry one, so favorites and ratings survive a refresh.
func StablePromptID(categoryID, title, content string) string {
	h := sha256.Sum256([]byte(categoryID + "\x00" + title + "\x00" + content))
	return hex.EncodeToString(h[:])[:16]
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
