package ups

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Payload serializes the request for the wire. Empty strings are dropped
// (together with objects and lists left empty by that), and numbers and
// booleans are sent as strings, which is what the UPS API accepts.
func (r *LabelRequest) Payload() ([]byte, error) {
	return encodePayload(r)
}

// Payload serializes the locator request the same way as LabelRequest.
func (r *LocatorRequest) Payload() ([]byte, error) {
	return encodePayload(r)
}

func encodePayload(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, fmt.Errorf("failed to decode request: %w", err)
	}

	cleaned, ok := prune(tree)
	if !ok {
		cleaned = map[string]any{}
	}
	return json.Marshal(cleaned)
}

// prune returns the cleaned value and whether it should be kept.
func prune(v any) (any, bool) {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			cleaned, keep := prune(child)
			if !keep {
				delete(t, k)
				continue
			}
			t[k] = cleaned
		}
		return t, len(t) > 0
	case []any:
		out := t[:0]
		for _, child := range t {
			if cleaned, keep := prune(child); keep {
				out = append(out, cleaned)
			}
		}
		return out, len(out) > 0
	case string:
		return t, t != ""
	case json.Number:
		return t.String(), true
	case bool:
		return strconv.FormatBool(t), true
	case nil:
		return nil, false
	}
	return v, true
}
