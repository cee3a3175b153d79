package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/promptvault/internal/httpserver/deps"
	"github.com/MrSnakeDoc/promptvault/internal/placeholder"
	"github.com/MrSnakeDoc/promptvault/internal/validation"
)

type parseRequest struct {
	Content string `json:"content"`
}

type parseResponse struct {
	placeholder.Parsed
	Preview string `json:"preview"`
}

// ParsePlaceholders extracts the form fields of a prompt body.
func ParsePlaceholders(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req parseRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, parseResponse{
			Parsed:  placeholder.Parse(req.Content),
			Preview: placeholder.Preview(req.Content),
		})
	}
}

type generateRequest struct {
	Values map[string]string `json:"values"`
}

type generateResponse struct {
	ID     string              `json:"id"`
	Text   string              `json:"text"`
	Fields []placeholder.Field `json:"fields"`
}

// GeneratePrompt fills a prompt's placeholders with the submitted values.
// Missing required values answer 422 with one message per field.
func GeneratePrompt(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		p, err := d.Catalog.Prompt(chi.URLParam(r, "id"))
		if err != nil {
			writeFailure(w, d, err)
			return
		}

		text, errs := placeholder.Generate(p, req.Values)
		if len(errs) > 0 {
			writeFailure(w, d, validation.NewError(errs))
			return
		}
		writeJSON(w, http.StatusOK, generateResponse{
			ID:     p.ID,
			Text:   text,
			Fields: placeholder.Parse(p.Content).Fields,
		})
	}
}

type generatorRequest struct {
	Template placeholder.Template `json:"template"`
	Tags     string               `json:"tags"`
	Format   string               `json:"format" validate:"omitempty,oneof=json yaml yml"`
}

// Generator turns an authored template into a shareable JSON or YAML
// document. An empty body starts from the default template.
func Generator(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := generatorRequest{Template: placeholder.DefaultTemplate(), Format: placeholder.FormatJSON}
		if r.ContentLength != 0 {
			if err := decodeJSON(w, r, &req); err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
		}
		if err := validation.Struct(req); err != nil {
			writeFailure(w, d, err)
			return
		}
		if req.Format == "" {
			req.Format = placeholder.FormatJSON
		}

		t, err := placeholder.Build(req.Template, req.Tags)
		if err != nil {
			writeFailure(w, d, toValidation(err))
			return
		}
		body, contentType, err := placeholder.Export(t, req.Format)
		if err != nil {
			writeFailure(w, d, toValidation(err))
			return
		}

		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Disposition", `attachment; filename="prompt.`+req.Format+`"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
	}
}

func toValidation(err error) error {
	switch {
	case errors.Is(err, placeholder.ErrEmptyContent):
		return validation.NewError(map[string]string{"content": err.Error()})
	case errors.Is(err, placeholder.ErrUnsupportedFormat):
		return validation.NewError(map[string]string{"format": err.Error()})
	}
	return err
}
