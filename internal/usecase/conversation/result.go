package conversation

import (
	"encoding/json"
	"fmt"
	"sort"
)

// fitResult bounds a JSON tool result to limit bytes while keeping it valid
// JSON. Arrays lose trailing elements and long strings are cut, with
// "truncated" and "omitted" fields telling the model what was dropped.
func fitResult(content string, limit int) string {
	if len(content) <= limit {
		return content
	}

	var v any
	if err := json.Unmarshal([]byte(content), &v); err != nil {
		return oversized(len(content), limit)
	}

	var obj map[string]any
	switch t := v.(type) {
	case map[string]any:
		obj = t
	case []any:
		obj = map[string]any{"items": t}
	case string:
		obj = map[string]any{"result": t}
	default:
		return oversized(len(content), limit)
	}

	for _, key := range keysBySize(obj) {
		if fitted, ok := shrinkField(obj, key, limit); ok {
			return fitted
		}
	}
	return oversized(len(content), limit)
}

// keysBySize orders the fields of obj from the largest encoding down.
func keysBySize(obj map[string]any) []string {
	sizes := make(map[string]int, len(obj))
	keys := make([]string, 0, len(obj))
	for k, v := range obj {
		data, _ := json.Marshal(v)
		sizes[k] = len(data)
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if sizes[keys[i]] != sizes[keys[j]] {
			return sizes[keys[i]] > sizes[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}

// shrinkField keeps the longest prefix of obj[key] whose encoding fits.
func shrinkField(obj map[string]any, key string, limit int) (string, bool) {
	var (
		n     int
		build func(keep int) map[string]any
	)

	switch t := obj[key].(type) {
	case []any:
		n = len(t)
		build = func(keep int) map[string]any {
			out := withField(obj, key, t[:keep])
			out["omitted"] = len(t) - keep
			return out
		}
	case string:
		r := []rune(t)
		n = len(r)
		build = func(keep int) map[string]any {
			return withField(obj, key, string(r[:keep]))
		}
	default:
		return "", false
	}

	encode := func(keep int) (string, bool) {
		data, err := json.Marshal(build(keep))
		if err != nil || len(data) > limit {
			return "", false
		}
		return string(data), true
	}

	best, ok := encode(0)
	if !ok {
		return "", false
	}
	lo, hi := 0, n
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if data, ok := encode(mid); ok {
			best, lo = data, mid
		} else {
			hi = mid - 1
		}
	}
	return best, true
}

func withField(obj map[string]any, key string, value any) map[string]any {
	out := make(map[string]any, len(obj)+2)
	for k, v := range obj {
		out[k] = v
	}
	out[key] = value
	out["truncated"] = true
	return out
}

func oversized(size, limit int) string {
	data, _ := json.Marshal(map[string]any{
		"truncated": true,
		"error":     fmt.Sprintf("result of %d bytes exceeds the %d byte limit; ask for fewer items", size, limit),
	})
	return string(data)
}
