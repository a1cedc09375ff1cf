package hue

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Attributes is a decoded light or group object as returned by the bridge.
// It is fetched fresh on every call and never cached.
type Attributes map[string]any

// Name returns the "name" attribute, or "" if absent.
func (a Attributes) Name() string {
	name, _ := GetString(a, "name")
	return name
}

// decodeResponse unmarshals JSON data with consistent error formatting.
func decodeResponse[T any](data []byte, resourceName string) (T, error) {
	var resp T
	if err := json.Unmarshal(data, &resp); err != nil {
		return resp, fmt.Errorf("failed to parse %s: %w (body: %s)", resourceName, err, truncatePreview(data))
	}
	return resp, nil
}

// truncatePreview returns a truncated string for error messages.
func truncatePreview(data []byte) string {
	s := string(data)
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}

// Result is one entry of a bridge write response. Exactly one of Success
// and Error is set.
type Result struct {
	Success map[string]any `json:"success,omitempty"`
	Error   *BridgeError   `json:"error,omitempty"`
}

// Results is the list returned by PUT and POST calls.
type Results []Result

// Err joins every bridge error in the results, or returns nil.
func (r Results) Err() error {
	var errs []error
	for _, res := range r {
		if res.Error != nil {
			errs = append(errs, res.Error)
		}
	}
	return errors.Join(errs...)
}

// ParseResults decodes a write response such as
// [{"success":{"/lights/1/state/on":true}}].
func ParseResults(raw json.RawMessage) (Results, error) {
	return decodeResponse[Results](raw, "results")
}

// bridgeErrors returns the bridge errors carried by a GET response.
// Resources are JSON objects, so any array with error entries is a failure.
func bridgeErrors(raw json.RawMessage) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil
	}
	var results Results
	if err := json.Unmarshal(trimmed, &results); err != nil {
		return nil
	}
	return results.Err()
}

// parseID converts a bridge id ("3", 3.0) to an int.
func parseID(v any) (int, error) {
	switch id := v.(type) {
	case string:
		n, err := strconv.Atoi(id)
		if err != nil {
			return 0, fmt.Errorf("invalid id %q: %w", id, err)
		}
		if n < 0 {
			return 0, fmt.Errorf("invalid id %q", id)
		}
		return n, nil
	case float64:
		if id != math.Trunc(id) || id > math.MaxInt32 || id < 0 {
			return 0, fmt.Errorf("invalid id %v", id)
		}
		return int(id), nil
	default:
		return 0, fmt.Errorf("invalid id of type %T", v)
	}
}

// keyedByID converts a bridge collection keyed by string ids.
func keyedByID[T any](in map[string]T) (map[int]T, error) {
	out := make(map[int]T, len(in))
	for key, v := range in {
		id, err := parseID(key)
		if err != nil {
			return nil, err
		}
		out[id] = v
	}
	return out, nil
}

// sortedIDs returns the keys of m in ascending order.
func sortedIDs[T any](m map[int]T) []int {
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// GetString returns the string at the nested key path, e.g.
// GetString(light, "state", "colormode").
func GetString(data map[string]any, keys ...string) (string, bool) {
	return attr[string](data, keys)
}

// GetInt returns the number at the nested key path as an int, e.g.
// GetInt(light, "state", "bri"). Fractional values are truncated.
func GetInt(data map[string]any, keys ...string) (int, bool) {
	f, ok := GetFloat(data, keys...)
	if !ok || math.IsNaN(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}

// GetFloat returns the number at the nested key path.
func GetFloat(data map[string]any, keys ...string) (float64, bool) {
	v, ok := lookup(data, keys)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}

// GetBool returns the bool at the nested key path, e.g.
// GetBool(light, "state", "reachable").
func GetBool(data map[string]any, keys ...string) (bool, bool) {
	return attr[bool](data, keys)
}

// GetMap returns the object at the nested key path.
func GetMap(data map[string]any, keys ...string) (map[string]any, bool) {
	return attr[map[string]any](data, keys)
}

// GetArray returns the array at the nested key path, e.g.
// GetArray(light, "state", "xy").
func GetArray(data map[string]any, keys ...string) ([]any, bool) {
	return attr[[]any](data, keys)
}

func attr[T any](data map[string]any, keys []string) (T, bool) {
	v, ok := lookup(data, keys)
	if !ok {
		var zero T
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

// lookup follows keys through nested objects. No keys returns data itself.
func lookup(data map[string]any, keys []string) (any, bool) {
	var cur any = data
	for _, key := range keys {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = obj[key]; !ok {
			return nil, false
		}
	}
	return cur, true
}
