package intercom

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// decodeList accepts a bare JSON array or an object wrapping one. The wrapper
// keys are tried in order; failing those, the first array-valued field is used.
// An empty body or an object without arrays decodes to an empty list.
// Elements that do not fit T are skipped; the list only fails when every
// element does.
func decodeList[T any](body []byte, keys ...string) ([]T, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return nil, nil
	}

	if !isArray(body) {
		inner, ok := unwrap(body, keys...)
		if !ok {
			inner, ok = firstArray(body)
		}
		if !ok {
			return nil, nil
		}
		body = inner
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}

	out := make([]T, 0, len(raw))
	var firstErr error
	for _, elem := range raw {
		var v T
		if err := json.Unmarshal(elem, &v); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		out = append(out, v)
	}
	if len(out) == 0 && firstErr != nil {
		return nil, fmt.Errorf("decode list: %w", firstErr)
	}
	return out, nil
}

func isArray(body []byte) bool {
	body = bytes.TrimSpace(body)
	return len(body) > 0 && body[0] == '['
}

// unwrap returns the first of keys present in a JSON object
func unwrap(body []byte, keys ...string) (json.RawMessage, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, false
	}
	for _, k := range keys {
		if v, ok := obj[k]; ok && !bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			return v, true
		}
	}
	return nil, false
}

func firstArray(body []byte) (json.RawMessage, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, false
	}
	// map order is random; prefer a deterministic pick by key
	var bestKey string
	var best json.RawMessage
	for k, v := range obj {
		if !isArray(v) {
			continue
		}
		if best == nil || k < bestKey {
			bestKey, best = k, v
		}
	}
	return best, best != nil
}
