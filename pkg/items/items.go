/*
Package items parses the free-form `key<sep>value` tokens given on the command line.

Three forms are recognized:

	key=value    string parameter
	key:=value   JSON parameter
	key:value    metadata (environment variable for stdio, HTTP header otherwise)
*/
package items

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// separators.
const (
	SepString   = "="
	SepJSON     = ":="
	SepMetadata = ":"
)

// sentinel errors.
var (
	ErrInvalidItem = errors.New("invalid item")
	ErrInvalidJSON = errors.New("invalid JSON value")
)

// ":=" must precede ":" so that key:=v is not split as key + ":" + "=v".
var itemPattern = regexp.MustCompile(`(?s)^([^:=]+)(=|:=|:)(.+)$`)

// Parse splits items into call parameters and transport metadata.
// Later occurrences of a key overwrite earlier ones.
func Parse(items []string) (map[string]any, map[string]string, error) {
	params := map[string]any{}
	metadata := map[string]string{}

	for _, item := range items {
		match := itemPattern.FindStringSubmatch(item)
		if match == nil {
			return nil, nil, fmt.Errorf("%w: %q", ErrInvalidItem, item)
		}

		key, separator, value := match[1], match[2], match[3]
		switch separator {
		case SepString:
			params[key] = value
		case SepJSON:
			decoded, err := decodeJSON(value)
			if err != nil {
				return nil, nil, fmt.Errorf("%w: %q", ErrInvalidJSON, value)
			}
			params[key] = decoded
		case SepMetadata:
			metadata[key] = value
		default:
			return nil, nil, fmt.Errorf("unsupported separator: %q", separator)
		}
	}

	return params, metadata, nil
}

// decodeJSON decodes exactly one JSON value, keeping numbers as json.Number.
func decodeJSON(raw string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, err
	}

	var trailing any
	if err := dec.Decode(&trailing); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unexpected data after JSON value")
	}

	return value, nil
}
