package portal

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// decodeList normalizes a list response into a plain slice. The portal
// emits three shapes: a bare array, {"items":[...]}, or {"data":[...]}.
// Shape handling happens only here; nothing past this boundary branches
// on envelope form.
func decodeList[T any](data []byte) ([]T, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}

	if data[0] == '[' {
		var out []T
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("decode list: %w", err)
		}
		return out, nil
	}

	var env struct {
		Items json.RawMessage `json:"items"`
		Data  json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode list envelope: %w", err)
	}

	// A RawMessage field holds the literal bytes "null" for an explicit
	// JSON null, so check for both absent and null.
	isSet := func(raw json.RawMessage) bool {
		return len(raw) > 0 && !bytes.Equal(raw, []byte("null"))
	}

	raw := env.Items
	if !isSet(raw) {
		raw = env.Data
	}
	if !isSet(raw) {
		if len(env.Items) > 0 || len(env.Data) > 0 {
			return nil, nil
		}
		return nil, fmt.Errorf("decode list envelope: no items or data field")
	}

	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}
	return out, nil
}
