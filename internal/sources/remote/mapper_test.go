package remote

import (
	"testing"
	"time"

	"github.com/MrSnakeDoc/promptvault/internal/domain"
)

func TestMapCategories(t *testing.T) {
	remote := []RemoteCategory{
		{Name: "Creative Writing!!", SortOrder: 2, FilePathName: "creative.json"},
		{Name: "General", SortOrder: 1, FilePathName: "https://cdn.example/general.json"},
		{Name: "   ", SortOrder: 0, FilePathName: "blank.json"},
		{Name: "All", SortOrder: 0, FilePathName: "all.json"},
		{Name: "general", SortOrder: 5, FilePathName: "dup.json"},
		{Name: "Code", SortOrder: 1, FilePathName: "/code.json"},
	}

	got := MapCategories(remote, "https://data.example/Prompt/")

	wantIDs := []string{"all", "general", "code", "creative-writing"}
	if len(got) != len(wantIDs) {
		t.Fatalf("len = %d, want %d: %+v", len(got), len(wantIDs), got)
	}
	for i, id := range wantIDs {
		if got[i].ID != id {
			t.Errorf("got[%d].ID = %s, want %s", i, got[i].ID, id)
		}
	}

	paths := map[string]string{
		"general":          "https://cdn.example/general.json",
		"code":             "https://data.example/Prompt/code.json",
		"creative-writing": "https://data.example/Prompt/creative.json",
		"all":              "",
	}
	for _, c := range got {
		if c.FilePathName != paths[c.ID] {
			t.Errorf("FilePathName[%s] = %s, want %s", c.ID, c.FilePathName, paths[c.ID])
		}
	}
}

func TestMapCategoriesSlugCollision(t *testing.T) {
	got := MapCategories([]RemoteCategory{
		{Name: "C++", SortOrder: 1, FilePathName: "cpp.json"},
		{Name: "C", SortOrder: 2, FilePathName: "c.json"},
	}, "https://data.example/")

	if len(got) != 2 {
		t.Fatalf("len = %d, want 2: %+v", len(got), got)
	}
	if got[1].ID != "c" || got[1].Name != "C++" {
		t.Errorf("got[1] = %+v, want the first category named C++ under id c", got[1])
	}
}

func TestMapCategoriesEmpty(t *testing.T) {
	got := MapCategories(nil, "")
	if len(got) != 1 || got[0].ID != domain.AllCategoryID {
		t.Errorf("MapCategories(nil) = %+v, want only all", got)
	}
}

func TestResolvePath(t *testing.T) {
	tests := []struct {
		base, path, want string
	}{
		{"https://b.example/p/", "x.json", "https://b.example/p/x.json"},
		{"https://b.example/p", "/x.json", "https://b.example/p/x.json"},
		{"https://b.example/p/", "HTTPS://other.example/x.json", "HTTPS://other.example/x.json"},
		{"https://b.example/p/", "http://other.example/x.json", "http://other.example/x.json"},
		{"https://b.example/p/", "  ", ""},
		{"", "x.json", "x.json"},
	}
	for _, tt := range tests {
		if got := ResolvePath(tt.base, tt.path); got != tt.want {
			t.Errorf("ResolvePath(%q, %q) = %q, want %q", tt.base, tt.path, got, tt.want)
		}
	}
}

func TestToPrompt(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	private := false

	tests := []struct {
		name     string
		in       RemotePrompt
		category string
		check    func(t *testing.T, p domain.Prompt)
	}{
		{
			name:     "defaults applied",
			in:       RemotePrompt{Title: " Joke ", Content: "Tell a [topic] joke", Category: "other"},
			category: "fun",
			check: func(t *testing.T, p domain.Prompt) {
				if p.Category != "fun" {
					t.Errorf("Category = %s, want fun (owner override)", p.Category)
				}
				if p.ID != domain.StablePromptID("fun", "Joke", "Tell a [topic] joke") {
					t.Errorf("ID = %s, want stable id", p.ID)
				}
				if p.Author != domain.DefaultAuthor || !p.IsPublic || p.Difficulty != domain.DifficultyBeginner {
					t.Errorf("defaults not applied: %+v", p)
				}
				if !p.CreatedAt.Equal(now) || !p.UpdatedAt.Equal(now) {
					t.Errorf("timestamps = %v/%v, want now", p.CreatedAt, p.UpdatedAt)
				}
				if len(p.Placeholders) != 1 || p.Placeholders[0] != "topic" {
					t.Errorf("Placeholders = %v, want [topic]", p.Placeholders)
				}
				if p.Origin != domain.OriginRemote || p.Tags == nil {
					t.Errorf("Origin/Tags = %s/%v", p.Origin, p.Tags)
				}
			},
		},
		{
			name: "declared values kept",
			in: RemotePrompt{
				ID: "p-1", Title: "T", Author: "Ana", IsPublic: &private, Difficulty: "Advanced",
				Tags:      []string{" a ", "", "b"},
				CreatedAt: FlexTime{time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
				UpdatedAt: FlexTime{time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)},
			},
			category: "",
			check: func(t *testing.T, p domain.Prompt) {
				if p.ID != "p-1" || p.Author != "Ana" || p.IsPublic || p.Difficulty != domain.DifficultyAdvanced {
					t.Errorf("declared values lost: %+v", p)
				}
				if len(p.Tags) != 2 || p.Tags[0] != "a" {
					t.Errorf("Tags = %v", p.Tags)
				}
				if p.UpdatedAt.Before(p.CreatedAt) {
					t.Errorf("UpdatedAt before CreatedAt")
				}
			},
		},
		{
			name:     "embedded prompt keeps its category",
			in:       RemotePrompt{Title: "x", Category: " general "},
			category: "",
			check: func(t *testing.T, p domain.Prompt) {
				if p.Category != "general" {
					t.Errorf("Category = %q, want general", p.Category)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, ToPrompt(tt.in, tt.category, now))
		})
	}
}
