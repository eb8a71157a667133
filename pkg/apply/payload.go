package apply

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// decodeModel round-trips a captured payload map into a typed model. Unknown
// keys, underscore tags and child collections are ignored by the decode; the
// callers handle children explicitly.
func decodeModel[T any](payload map[string]any) (*T, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	var m T
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, errBadPayload("payload does not match the entity shape")
	}
	return &m, nil
}

// modelID reads the autoincrement ID off a created model.
func modelID(m any) int64 {
	return reflect.ValueOf(m).Elem().FieldByName("ID").Int()
}

// parseEntityID converts the request's entity_id into a numeric key.
func parseEntityID(entityID string) (int64, error) {
	id, err := strconv.ParseInt(entityID, 10, 64)
	if err != nil || id <= 0 {
		return 0, errBadPayload("invalid entity id")
	}
	return id, nil
}

// createInput returns a copy of the payload suitable for row creation: the id
// is dropped and is_active defaults to true when absent.
func createInput(payload map[string]any) map[string]any {
	out := make(map[string]any, len(payload))
	for k, v := range payload {
		if k == "id" || strings.HasPrefix(k, "_") {
			continue
		}
		out[k] = v
	}
	if _, ok := out["is_active"]; !ok {
		out["is_active"] = true
	}
	return out
}

// updatesFromPayload picks the writable columns actually present in the
// payload so absent fields keep their stored values.
func updatesFromPayload(payload map[string]any, columns []string) map[string]any {
	updates := make(map[string]any, len(columns))
	for _, col := range columns {
		if v, ok := payload[col]; ok {
			updates[col] = v
		}
	}
	return updates
}

func stringValue(payload map[string]any, key string) (string, bool) {
	v, ok := payload[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func boolValue(payload map[string]any, key string) (bool, bool) {
	v, ok := payload[key]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// int64Slice coerces a decoded JSON array into int64 ids.
func int64Slice(v any) []int64 {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]int64, 0, len(items))
	for _, item := range items {
		switch n := item.(type) {
		case float64:
			out = append(out, int64(n))
		case string:
			if id, err := strconv.ParseInt(n, 10, 64); err == nil {
				out = append(out, id)
			}
		case json.Number:
			if id, err := n.Int64(); err == nil {
				out = append(out, id)
			}
		}
	}
	return out
}

// stringSlice coerces a decoded JSON array into strings.
func stringSlice(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
