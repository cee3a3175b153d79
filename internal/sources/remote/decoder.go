package remote

import (
	"bytes"
	"encoding/json"
	"strings"
)

// decodeStrategy tries to read a prompt list out of a document.
// A nil or empty result means the shape did not match.
type decodeStrategy struct {
	name   string
	decode func(data []byte) []RemotePrompt
}

// strategies are tried in order; the first non-empty result wins.
var strategies = []decodeStrategy{
	{name: "array", decode: decodeArray},
	{name: "prompts", decode: decodeWrapped(func(w wrapper) json.RawMessage { return w.Prompts })},
	{name: "data", decode: decodeWrapped(func(w wrapper) json.RawMessage { return w.Data })},
	{name: "object", decode: decodeObjectValues},
}

type wrapper struct {
	Prompts json.RawMessage `json:"prompts"`
	Data    json.RawMessage `json:"data"`
}

// DecodePrompts reads a prompt list from any of the published shapes:
// a bare array, {"prompts": [...]}, {"data": [...]} or an object whose
// property values are prompts. It never fails; unreadable input yields an
// empty list.
func DecodePrompts(data []byte) []RemotePrompt {
	prompts, _ := decodePrompts(data)
	return prompts
}

// decodePrompts also returns the name of the shape that matched.
func decodePrompts(data []byte) ([]RemotePrompt, string) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return []RemotePrompt{}, ""
	}
	for _, s := range strategies {
		if out := s.decode(data); len(out) > 0 {
			return out, s.name
		}
	}
	return []RemotePrompt{}, ""
}

func decodeArray(data []byte) []RemotePrompt {
	if data[0] != '[' {
		return nil
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil
	}
	out := make([]RemotePrompt, 0, len(raws))
	for _, raw := range raws {
		if p, ok := decodeOne(raw); ok {
			out = append(out, p)
		}
	}
	return out
}

func decodeWrapped(pick func(wrapper) json.RawMessage) func([]byte) []RemotePrompt {
	return func(data []byte) []RemotePrompt {
		if data[0] != '{' {
			return nil
		}
		var w wrapper
		if err := json.Unmarshal(data, &w); err != nil {
			return nil
		}
		inner := bytes.TrimSpace(pick(w))
		if len(inner) == 0 {
			return nil
		}
		return decodeArray(inner)
	}
}

// decodeObjectValues reads {"key": {prompt}, ...} in document order, using
// the key as the title of prompts that have none.
func decodeObjectValues(data []byte) []RemotePrompt {
	if data[0] != '{' {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return nil
	}

	var out []RemotePrompt
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return out
		}
		key, _ := tok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return out
		}
		p, ok := decodeOne(raw)
		if !ok {
			continue
		}
		if strings.TrimSpace(p.Title) == "" {
			p.Title = key
		}
		out = append(out, p)
	}
	return out
}

// decodeOne accepts a JSON object carrying at least a title or a content.
func decodeOne(raw json.RawMessage) (RemotePrompt, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return RemotePrompt{}, false
	}
	var p RemotePrompt
	if err := json.Unmarshal(raw, &p); err != nil {
		return RemotePrompt{}, false
	}
	if strings.TrimSpace(p.Title) == "" && strings.TrimSpace(p.Content) == "" {
		return RemotePrompt{}, false
	}
	return p, true
}
