package jsonutils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Prune converts data to its JSON form and removes object members that are null,
// empty objects or empty arrays. Array elements are never removed.
func Prune(data any) (any, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("error marshaling result: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var generic any
	if err := dec.Decode(&generic); err != nil {
		return nil, fmt.Errorf("error decoding result: %w", err)
	}

	return prune(generic), nil
}

func prune(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			item = prune(item)
			if isEmpty(item) {
				continue
			}
			out[key] = item
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = prune(item)
		}
		return out
	default:
		return v
	}
}

func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case map[string]any:
		return len(v) == 0
	case []any:
		return len(v) == 0
	default:
		return false
	}
}

// Marshal renders data as indented JSON with empty members omitted.
func Marshal(data any) (string, error) {
	pruned, err := Prune(data)
	if err != nil {
		return "", err
	}
	return indent(pruned)
}

// indent encodes data with a two-space indent and without HTML escaping.
func indent(data any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return "", fmt.Errorf("error formatting JSON: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
