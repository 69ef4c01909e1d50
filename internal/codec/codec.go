// Package codec folds multi-valued task attributes into a single text column.
//
// Decoding is total: malformed input never produces an error, it degrades to
// an empty set (or, for assignees, to a single legacy value). Scalar elements
// are read as their text, so [1,true] decodes to ["1","true"]; null elements
// are skipped.
package codec

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Encode serializes values as a JSON array. An empty or nil slice yields nil,
// which clears the column.
func Encode(values []string) *string {
	if len(values) == 0 {
		return nil
	}

	raw, err := json.Marshal(values)
	if err != nil {
		return nil
	}
	blob := string(raw)
	return &blob
}

// Decode reads tags, images, shared-with and share-request columns.
func Decode(blob *string) []string {
	values, ok := parse(blob)
	if !ok {
		return []string{}
	}
	return values
}

// DecodeAssignees reads the assignee column. Rows written before the column
// held arrays store a bare id, which comes back as a one-element set.
func DecodeAssignees(blob *string) []string {
	if values, ok := parse(blob); ok {
		return values
	}
	return []string{strings.TrimSpace(*blob)}
}

func parse(blob *string) ([]string, bool) {
	if blob == nil {
		return []string{}, true
	}
	trimmed := strings.TrimSpace(*blob)
	if trimmed == "" {
		return []string{}, true
	}
	if !strings.HasPrefix(trimmed, "[") || !strings.HasSuffix(trimmed, "]") {
		return nil, false
	}

	dec := json.NewDecoder(strings.NewReader(trimmed))
	dec.UseNumber()
	var elements []any
	if err := dec.Decode(&elements); err != nil || dec.More() {
		return nil, false
	}

	values := make([]string, 0, len(elements))
	for _, e := range elements {
		switch v := e.(type) {
		case string:
			values = append(values, v)
		case json.Number:
			values = append(values, v.String())
		case bool:
			values = append(values, strconv.FormatBool(v))
		case nil:
		default:
			// nested arrays and objects make the whole blob unreadable
			return nil, false
		}
	}
	return values, true
}
