package placeholder

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Export formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

var (
	ErrEmptyContent      = errors.New("prompt content is required")
	ErrUnsupportedFormat = errors.New("unsupported export format")
)

// Template is a prompt authored in the generator, ready to be shared as a
// catalog entry.
type Template struct {
	Title         string   `json:"title" yaml:"title"`
	Content       string   `json:"content" yaml:"content"`
	Description   string   `json:"description" yaml:"description"`
	Category      string   `json:"category" yaml:"category"`
	Tags          []string `json:"tags" yaml:"tags"`
	Placeholders  []string `json:"placeholders" yaml:"placeholders"`
	Difficulty    string   `json:"difficulty" yaml:"difficulty"`
	EstimatedTime string   `json:"estimatedTime" yaml:"estimatedTime"`
	Author        string   `json:"author" yaml:"author"`
	UsageNotes    string   `json:"usageNotes" yaml:"usageNotes"`
}

// DefaultTemplate is the starting point offered by the generator.
func DefaultTemplate() Template {
	return Template{
		Title:         "Custom Prompt",
		Category:      "general",
		Description:   "A custom generated prompt",
		Content:       "You are a helpful assistant. Please help me with the following task: [task description]",
		Difficulty:    "beginner",
		EstimatedTime: "5-10 minutes",
		Author:        "Prompt Generator",
		UsageNotes:    "Replace [task description] with your specific task description.",
		Tags:          []string{},
		Placeholders:  []string{"task description"},
	}
}

// Build finalizes a template: placeholders are re-extracted from the content
// and, when tagsInput is not blank, tags are replaced by its comma-separated
// entries.
func Build(t Template, tagsInput string) (Template, error) {
	if strings.TrimSpace(t.Content) == "" {
		return Template{}, ErrEmptyContent
	}
	t.Placeholders = Names(t.Content)
	if strings.TrimSpace(tagsInput) != "" {
		t.Tags = SplitTags(tagsInput)
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	return t, nil
}

// Export serializes a template as an indented JSON or YAML document and
// returns the matching content type.
func Export(t Template, format string) ([]byte, string, error) {
	switch strings.ToLower(format) {
	case "", FormatJSON:
		b, err := json.MarshalIndent(t, "", "  ")
		if err != nil {
			return nil, "", fmt.Errorf("encode template json: %w", err)
		}
		return b, "application/json", nil
	case FormatYAML, "yml":
		b, err := yaml.Marshal(t)
		if err != nil {
			return nil, "", fmt.Errorf("encode template yaml: %w", err)
		}
		return b, "application/yaml", nil
	default:
		return nil, "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// Preview fills every placeholder of content with a sample value so the
// author can read the prompt as a user would receive it.
func Preview(content string) string {
	parsed := Parse(content)
	values := make(map[string]string, len(parsed.Fields))
	for _, f := range parsed.Fields {
		values[f.ID] = SampleValue(f)
	}
	if len(parsed.Fields) == 0 {
		return content
	}
	return Replace(parsed.ProcessedContent, values)
}

var textSamples = map[string]string{
	"task":             "write a professional email",
	"task description": "write a professional email",
	"topic":            "artificial intelligence",
	"tone":             "professional",
	"length":           "200 words",
	"audience":         "business professionals",
	"style":            "formal",
	"format":           "bullet points",
	"language":         "English",
	"purpose":          "informational",
	"context":          "business meeting",
	"company":          "TechCorp Inc.",
	"business":         "TechCorp Inc.",
	"product":          "mobile application",
	"service":          "consulting services",
	"industry":         "technology",
	"location":         "San Francisco",
	"date":             "2024-01-15",
	"time":             "2:00 PM",
	"budget":           "$10,000",
	"timeline":         "3 months",
	"goal":             "increase user engagement",
	"objective":        "increase user engagement",
}

// SampleValue returns an illustrative value for a field.
func SampleValue(f Field) string {
	if f.Type == TypeSelect && len(f.Options) > 0 {
		return f.Options[0]
	}
	if v, ok := textSamples[strings.ToLower(f.Name)]; ok {
		return v
	}
	return "sample_" + f.ID
}

// SplitTags splits a comma-separated tag list, dropping blanks.
func SplitTags(input string) []string {
	tags := []string{}
	for _, t := range strings.Split(input, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
