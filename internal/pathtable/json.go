package pathtable

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

var (
	ErrNotObject   = errors.New("expected a JSON object")
	ErrNotString   = errors.New("expected a string value")
	ErrInvalidJSON = errors.New("invalid JSON")
)

// Decode parses a JSON object whose values are all strings into a Table,
// keeping the document order of the keys.
func Decode(data []byte) (*Table, error) {
	data = bytes.TrimSpace(data)
	if !json.Valid(data) {
		return nil, ErrInvalidJSON
	}
	if len(data) == 0 || data[0] != '{' {
		return nil, ErrNotObject
	}

	raw := orderedmap.New[string, json.RawMessage]()
	if err := raw.UnmarshalJSON(data); err != nil {
		return nil, fmt.Errorf("failed to parse object: %w", err)
	}

	m := orderedmap.New[string, string](raw.Len())
	for pair := raw.Oldest(); pair != nil; pair = pair.Next() {
		value := bytes.TrimSpace(pair.Value)
		if len(value) == 0 || value[0] != '"' {
			return nil, fmt.Errorf("%w for %q", ErrNotString, pair.Key)
		}
		var s string
		if err := json.Unmarshal(value, &s); err != nil {
			return nil, fmt.Errorf("failed to decode %q: %w", pair.Key, err)
		}
		m.Set(pair.Key, s)
	}

	return &Table{m: m}, nil
}

// UnmarshalJSON decodes an object of string values, see Decode
func (t *Table) UnmarshalJSON(data []byte) error {
	decoded, err := Decode(data)
	if err != nil {
		return err
	}
	t.m = decoded.m
	return nil
}
