package remote

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// IndexDocument is the top-level catalog index.
// Category ids are never read from it; they are derived from names.
type IndexDocument struct {
	Categories []RemoteCategory `json:"categories"`

	// Prompts and Data optionally embed prompts directly in the index.
	Prompts json.RawMessage `json:"prompts,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// RemoteCategory is a category entry of the index.
type RemoteCategory struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Icon         string `json:"icon"`
	Color        string `json:"color"`
	SortOrder    int    `json:"sortOrder"`
	FilePathName string `json:"filePathName"`
}

// RemotePrompt is a prompt as published in a category file. Every field is
// optional; defaults are applied by ToPrompt.
type RemotePrompt struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Content       string   `json:"content"`
	Description   string   `json:"description"`
	Category      string   `json:"category"`
	Tags          []string `json:"tags"`
	Placeholders  []string `json:"placeholders"`
	UsageNotes    string   `json:"usageNotes"`
	EstimatedTime string   `json:"estimatedTime"`
	Difficulty    string   `json:"difficulty"`
	Author        string   `json:"author"`
	IsPublic      *bool    `json:"isPublic"`
	UsageCount    int      `json:"usageCount"`

	AverageRating float64  `json:"averageRating"`
	CreatedAt     FlexTime `json:"createdAt"`
	UpdatedAt     FlexTime `json:"updatedAt"`
}

// FlexTime decodes the timestamp layouts seen in published catalogs.
// Values it cannot read decode to the zero time instead of failing the
// whole prompt.
type FlexTime struct {
	time.Time
}

var flexLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (t *FlexTime) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		t.Time = time.Time{}
		return nil
	}
	s = strings.TrimSpace(s)
	for _, layout := range flexLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	t.Time = time.Time{}
	return nil
}

func (t FlexTime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339))
}
