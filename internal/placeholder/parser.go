// Package placeholder turns [bracketed] prompt placeholders into form fields
// and fills them back in.
//
// A token is any bracketed text without nested brackets. "[topic]" becomes a
// required text field, "[tone/formal/casual]" a required select field with
// the options after the first slash. Parse rewrites every token to a
// "{{id}}" marker that Replace later substitutes. Literal "{" and "\" in the
// surrounding text are backslash-escaped in the processed content so a
// template that already contains "{{...}}" comes back unchanged.
package placeholder

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/MrSnakeDoc/promptvault/internal/domain"
)

// Field types.
const (
	TypeText   = "text"
	TypeSelect = "select"
)

var tokenPattern = regexp.MustCompile(`\[([^\[\]]+)\]`)

var literalEscaper = strings.NewReplacer(`\`, `\\`, `{`, `\{`)

// Field is one input the user must fill to customize a prompt.
type Field struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Required    bool     `json:"required"`
	Placeholder string   `json:"placeholder,omitempty"`
	Options     []string `json:"options,omitempty"`
	Description string   `json:"description,omitempty"`
}

// Parsed is the result of Parse.
type Parsed struct {
	Fields           []Field `json:"fields"`
	ProcessedContent string  `json:"processedContent"`
}

// Parse extracts fields from content and rewrites each token to {{id}}.
// Tokens whose id would be empty are left as literal text. When the same id
// appears more than once the first definition wins.
func Parse(content string) Parsed {
	out := Parsed{Fields: []Field{}}
	if content == "" {
		return out
	}

	seen := make(map[string]struct{})
	var b strings.Builder
	last := 0
	for _, loc := range tokenPattern.FindAllStringIndex(content, -1) {
		b.WriteString(literalEscaper.Replace(content[last:loc[0]]))
		last = loc[1]

		token := content[loc[0]:loc[1]]
		name, options := splitToken(token[1 : len(token)-1])
		id := FieldID(name)
		if id == "" {
			b.WriteString(literalEscaper.Replace(token))
			continue
		}
		if _, dup := seen[id]; !dup {
			seen[id] = struct{}{}
			out.Fields = append(out.Fields, newField(id, name, options))
		}
		b.WriteString("{{" + id + "}}")
	}
	b.WriteString(literalEscaper.Replace(content[last:]))
	out.ProcessedContent = b.String()
	return out
}

// Replace substitutes every {{id}} marker of content produced by Parse with
// values[id] and restores escaped literal text. Missing values become empty
// strings.
func Replace(processed string, values map[string]string) string {
	var b strings.Builder
	b.Grow(len(processed))
	for i := 0; i < len(processed); {
		switch {
		case processed[i] == '\\' && i+1 < len(processed):
			b.WriteByte(processed[i+1])
			i += 2
			continue
		case strings.HasPrefix(processed[i:], "{{"):
			if end := strings.Index(processed[i+2:], "}}"); end >= 0 {
				b.WriteString(values[strings.TrimSpace(processed[i+2:i+2+end])])
				i += end + 4
				continue
			}
		}
		b.WriteByte(processed[i])
		i++
	}
	return b.String()
}

// Validate returns a message per required field that has no non-blank value.
// The map is empty when every field is satisfied.
func Validate(fields []Field, values map[string]string) map[string]string {
	errs := make(map[string]string)
	for _, f := range fields {
		if !f.Required {
			continue
		}
		if strings.TrimSpace(values[f.ID]) == "" {
			errs[f.ID] = f.Name + " is required"
		}
	}
	return errs
}

// Names returns the placeholder names of content in order of first
// appearance, one per field id, as Parse would define them.
func Names(content string) []string {
	names := []string{}
	seen := make(map[string]struct{})
	for _, m := range tokenPattern.FindAllStringSubmatch(content, -1) {
		name, _ := splitToken(m[1])
		id := FieldID(name)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		names = append(names, name)
	}
	return names
}

// Generate runs the full customization flow for a prompt: parse, validate
// and fill. On validation failure it returns the field errors and no text.
func Generate(p domain.Prompt, values map[string]string) (string, map[string]string) {
	parsed := Parse(p.Content)
	if errs := Validate(parsed.Fields, values); len(errs) > 0 {
		return "", errs
	}
	if len(parsed.Fields) == 0 {
		return p.Content, nil
	}
	return Replace(parsed.ProcessedContent, values), nil
}

// FieldID lowercases name and collapses every run of characters other than
// letters and digits into a single underscore.
//
//	"Target Audience" -> "target_audience"
func FieldID(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return b.String()
}

func splitToken(inner string) (string, []string) {
	parts := strings.Split(inner, "/")
	name := strings.TrimSpace(parts[0])
	var options []string
	for _, o := range parts[1:] {
		if o = strings.TrimSpace(o); o != "" {
			options = append(options, o)
		}
	}
	return name, options
}

func newField(id, name string, options []string) Field {
	if len(options) > 0 {
		return Field{
			ID:          id,
			Name:        name,
			Type:        TypeSelect,
			Required:    true,
			Placeholder: "Select " + name,
			Options:     options,
		}
	}
	return Field{
		ID:          id,
		Name:        name,
		Type:        TypeText,
		Required:    true,
		Placeholder: "Enter " + name,
	}
}
