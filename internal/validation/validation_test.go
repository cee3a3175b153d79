package validation

import (
	"errors"
	"fmt"
	"testing"
)

type sample struct {
	Title      string `json:"title" validate:"notblank"`
	Rating     int    `json:"rating" validate:"min=1,max=5"`
	Difficulty string `json:"difficulty" validate:"omitempty,oneof=beginner intermediate advanced"`
}

func TestStruct(t *testing.T) {
	tests := []struct {
		name   string
		input  sample
		fields map[string]string
	}{
		{
			name:  "valid",
			input: sample{Title: "ok", Rating: 3},
		},
		{
			name:   "blank title",
			input:  sample{Title: "   ", Rating: 3},
			fields: map[string]string{"title": "title is required"},
		},
		{
			name:  "several failures",
			input: sample{Title: "ok", Rating: 9, Difficulty: "expert"},
			fields: map[string]string{
				"rating":     "rating must be at most 5",
				"difficulty": "difficulty must be one of: beginner intermediate advanced",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.input)
			if tt.fields == nil {
				if err != nil {
					t.Fatalf("Struct() error = %v, want nil", err)
				}
				return
			}
			var verr *Error
			if !errors.As(err, &verr) {
				t.Fatalf("Struct() error = %v, want *Error", err)
			}
			if len(verr.Fields) != len(tt.fields) {
				t.Fatalf("Fields = %v, want %v", verr.Fields, tt.fields)
			}
			for k, want := range tt.fields {
				if verr.Fields[k] != want {
					t.Errorf("Fields[%s] = %q, want %q", k, verr.Fields[k], want)
				}
			}
		})
	}
}

func TestIsValidationError(t *testing.T) {
	err := fmt.Errorf("add prompt: %w", NewError(map[string]string{"b": "b is required", "a": "a is required"}))
	if !IsValidationError(err) {
		t.Error("IsValidationError() = false for wrapped *Error")
	}
	if IsValidationError(errors.New("boom")) {
		t.Error("IsValidationError() = true for plain error")
	}
	if got := NewError(map[string]string{"b": "b is required", "a": "a is required"}).Error(); got != "validation failed: a is required; b is required" {
		t.Errorf("Error() = %q", got)
	}
}
