package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DecodeList accepts either a bare JSON array or an object wrapping it in
// "data", the two list shapes the API is known to return.
func DecodeList[T any](raw json.RawMessage) ([]T, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []T{}, nil
	}
	if raw[0] == '[' {
		var out []T
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, fmt.Errorf("decode list: %w", err)
		}
		return out, nil
	}
	var wrapped struct {
		Data []T `json:"data"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("decode wrapped list: %w", err)
	}
	if wrapped.Data == nil {
		return []T{}, nil
	}
	return wrapped.Data, nil
}

// DecodeItem accepts either a bare object or one wrapped in "data".
func DecodeItem[T any](raw json.RawMessage) (T, error) {
	var out T
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return out, fmt.Errorf("decode item: %w", err)
	}
	if inner, ok := probe["data"]; ok && len(probe) == 1 {
		raw = inner
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decode item: %w", err)
	}
	return out, nil
}
