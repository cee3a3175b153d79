package placeholder

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/promptvault/internal/domain"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name          string
		content       string
		wantProcessed string
		wantIDs       []string
	}{
		{
			name:          "empty content",
			content:       "",
			wantProcessed: "",
			wantIDs:       nil,
		},
		{
			name:          "no tokens",
			content:       "Plain text only",
			wantProcessed: "Plain text only",
			wantIDs:       nil,
		},
		{
			name:          "text field",
			content:       "Write about [Topic Name].",
			wantProcessed: "Write about {{topic_name}}.",
			wantIDs:       []string{"topic_name"},
		},
		{
			name:          "duplicate collapses",
			content:       "[topic] and again [Topic]",
			wantProcessed: "{{topic}} and again {{topic}}",
			wantIDs:       []string{"topic"},
		},
		{
			name:          "unbalanced brackets stay literal",
			content:       "keep [open and close] but [[nested] ]",
			wantProcessed: "keep {{open_and_close}} but [{{nested}} ]",
			wantIDs:       []string{"open_and_close", "nested"},
		},
		{
			name:          "empty id stays literal",
			content:       "array[ ] and [!!]",
			wantProcessed: "array[ ] and [!!]",
			wantIDs:       nil,
		},
		{
			name:          "literal braces are escaped",
			content:       `Render {{name}} or \{ for [topic]`,
			wantProcessed: `Render \{\{name}} or \\\{ for {{topic}}`,
			wantIDs:       []string{"topic"},
		},
		{
			name:          "lone bracket",
			content:       "a [b",
			wantProcessed: "a [b",
			wantIDs:       nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.content)
			if got.ProcessedContent != tt.wantProcessed {
				t.Errorf("ProcessedContent = %q, want %q", got.ProcessedContent, tt.wantProcessed)
			}
			if len(got.Fields) != len(tt.wantIDs) {
				t.Fatalf("len(Fields) = %d, want %d", len(got.Fields), len(tt.wantIDs))
			}
			for i, f := range got.Fields {
				if f.ID != tt.wantIDs[i] {
					t.Errorf("Fields[%d].ID = %q, want %q", i, f.ID, tt.wantIDs[i])
				}
				if !f.Required {
					t.Errorf("Fields[%d] not required", i)
				}
			}
		})
	}
}

func TestParseSelectField(t *testing.T) {
	got := Parse("Tone: [tone/formal/ casual /]")
	if len(got.Fields) != 1 {
		t.Fatalf("len(Fields) = %d, want 1", len(got.Fields))
	}
	f := got.Fields[0]
	if f.Type != TypeSelect {
		t.Errorf("Type = %s, want select", f.Type)
	}
	if strings.Join(f.Options, ",") != "formal,casual" {
		t.Errorf("Options = %v, want [formal casual]", f.Options)
	}
	if f.Name != "tone" || f.ID != "tone" {
		t.Errorf("Name/ID = %s/%s", f.Name, f.ID)
	}
}

func TestRoundTrip(t *testing.T) {
	content := "Dear [Recipient], please review [doc/brief/plan] by [date]."
	parsed := Parse(content)

	values := map[string]string{"recipient": "Ana", "doc": "plan", "date": "Friday"}
	if errs := Validate(parsed.Fields, values); len(errs) != 0 {
		t.Fatalf("Validate() = %v, want none", errs)
	}

	got := Replace(parsed.ProcessedContent, values)
	want := "Dear Ana, please review plan by Friday."
	if got != want {
		t.Errorf("Replace() = %q, want %q", got, want)
	}
}

func TestRoundTripKeepsLiteralBraces(t *testing.T) {
	tests := []struct {
		name    string
		content string
		values  map[string]string
		want    string
	}{
		{
			name:    "jinja example",
			content: "Render {{name}} in Jinja for [topic]",
			values:  map[string]string{"topic": "Go"},
			want:    "Render {{name}} in Jinja for Go",
		},
		{
			name:    "literal marker with the same id",
			content: "Literal {{topic}} then [topic]",
			values:  map[string]string{"topic": "Go"},
			want:    "Literal {{topic}} then Go",
		},
		{
			name:    "backslashes and unclosed braces",
			content: `C:\dir\{x} {{ [a] }} {{open`,
			values:  map[string]string{"a": "A"},
			want:    `C:\dir\{x} {{ A }} {{open`,
		},
		{
			name:    "value containing a marker is not expanded",
			content: "[a] [b]",
			values:  map[string]string{"a": "{{b}}", "b": "B"},
			want:    "{{b}} B",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Replace(Parse(tt.content).ProcessedContent, tt.values)
			if got != tt.want {
				t.Errorf("Replace(Parse(%q)) = %q, want %q", tt.content, got, tt.want)
			}
		})
	}
}

func TestReplaceMissingValue(t *testing.T) {
	if got := Replace("a {{x}} b {{ y }}", map[string]string{"y": "Y"}); got != "a  b Y" {
		t.Errorf("Replace() = %q", got)
	}
}

func TestValidate(t *testing.T) {
	fields := Parse("[Name] [Target Audience]").Fields
	errs := Validate(fields, map[string]string{"name": "Bob", "target_audience": "   "})

	if len(errs) != 1 {
		t.Fatalf("Validate() = %v, want one error", errs)
	}
	if errs["target_audience"] != "Target Audience is required" {
		t.Errorf("message = %q", errs["target_audience"])
	}
}

func TestNames(t *testing.T) {
	got := Names("[task description] then [tone/a/b] then [task description] and [ ]")
	if strings.Join(got, "|") != "task description|tone" {
		t.Errorf("Names() = %v", got)
	}
	if got := Names("[Topic] and [topic] and [target-audience] [Target Audience]"); strings.Join(got, "|") != "Topic|target-audience" {
		t.Errorf("Names() should collapse names sharing a field id, got %v", got)
	}
	if got := Names(""); len(got) != 0 || got == nil {
		t.Errorf("Names(\"\") = %#v, want empty non-nil", got)
	}
}

func TestGenerate(t *testing.T) {
	p := domain.Prompt{Content: "Explain [topic] simply"}

	if _, errs := Generate(p, nil); errs["topic"] == "" {
		t.Errorf("Generate() without values should fail validation")
	}

	got, errs := Generate(p, map[string]string{"topic": "DNS"})
	if len(errs) != 0 || got != "Explain DNS simply" {
		t.Errorf("Generate() = %q, %v", got, errs)
	}

	plain := domain.Prompt{Content: "no placeholders {{here}}"}
	if got, _ := Generate(plain, nil); got != plain.Content {
		t.Errorf("Generate() without fields = %q", got)
	}
}

func TestFieldID(t *testing.T) {
	cases := map[string]string{
		"Target Audience": "target_audience",
		"  spaced  ":      "spaced",
		"a--b__c":         "a_b_c",
		"!!":              "",
		"Step 2":          "step_2",
	}
	for in, want := range cases {
		if got := FieldID(in); got != want {
			t.Errorf("FieldID(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBuildAndExport(t *testing.T) {
	tpl := DefaultTemplate()
	tpl.Content = "Write a [tone/fun/dry] post about [topic]"

	built, err := Build(tpl, " go, , backend ")
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if strings.Join(built.Placeholders, ",") != "tone,topic" {
		t.Errorf("Placeholders = %v", built.Placeholders)
	}
	if strings.Join(built.Tags, ",") != "go,backend" {
		t.Errorf("Tags = %v", built.Tags)
	}

	raw, ct, err := Export(built, FormatJSON)
	if err != nil || ct != "application/json" {
		t.Fatalf("Export(json) = %s, %v", ct, err)
	}
	var fromJSON Template
	if err := json.Unmarshal(raw, &fromJSON); err != nil || fromJSON.Content != built.Content {
		t.Errorf("json document does not carry content: %v", err)
	}

	raw, ct, err = Export(built, "YAML")
	if err != nil || ct != "application/yaml" {
		t.Fatalf("Export(yaml) = %s, %v", ct, err)
	}
	var fromYAML Template
	if err := yaml.Unmarshal(raw, &fromYAML); err != nil || fromYAML.Title != built.Title {
		t.Errorf("yaml document does not carry title: %v", err)
	}

	if _, _, err := Export(built, "xml"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Export(xml) error = %v, want ErrUnsupportedFormat", err)
	}
	if _, err := Build(Template{}, ""); !errors.Is(err, ErrEmptyContent) {
		t.Errorf("Build(empty) error = %v, want ErrEmptyContent", err)
	}
}

func TestPreview(t *testing.T) {
	got := Preview("Write about [topic] in a [style/formal/casual] way for [reader]")
	want := "Write about artificial intelligence in a formal way for sample_reader"
	if got != want {
		t.Errorf("Preview() = %q, want %q", got, want)
	}
}
