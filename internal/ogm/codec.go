package ogm

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"time"
)

// Reserved attribute keys. They live in Node's struct fields, never in Attrs.
const (
	KeyType      = "type"
	KeyUID       = "uid"
	KeyCreatedAt = "created_at"
	KeyUpdatedAt = "updated_at"

	// KeyRID holds a relationship's uniqueness key.
	KeyRID = "rid"
)

func isReserved(key string) bool {
	switch key {
	case KeyType, KeyUID, KeyCreatedAt, KeyUpdatedAt:
		return true
	}
	return false
}

// Normalize converts attrs into the form the store accepts: string keys,
// times as epoch seconds, every integer kind as int64 and every float kind
// as float64. Nested maps and slices are normalized recursively. The input
// is not modified.
func Normalize(attrs map[string]any) map[string]any {
	out := make(map[string]any, len(attrs))
	for k, v := range attrs {
		out[k] = normalizeValue(v)
	}
	return out
}

// NormalizeKeys is Normalize for maps with arbitrary keys, such as those
// produced by YAML decoding. Keys are formatted with fmt.
func NormalizeKeys(attrs map[any]any) map[string]any {
	out := make(map[string]any, len(attrs))
	for k, v := range attrs {
		out[fmt.Sprint(k)] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case string, bool, int64, float64:
		return t
	case time.Time:
		return t.Unix()
	case *time.Time:
		if t == nil {
			return nil
		}
		return t.Unix()
	case map[string]any:
		return Normalize(t)
	case map[any]any:
		return NormalizeKeys(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalizeValue(e)
		}
		return out
	case []byte:
		return string(t)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return float64(u)
		}
		return int64(u)
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = normalizeValue(rv.Index(i).Interface())
		}
		return out
	case reflect.Map:
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[fmt.Sprint(iter.Key().Interface())] = normalizeValue(iter.Value().Interface())
		}
		return out
	case reflect.Pointer:
		if rv.IsNil() {
			return nil
		}
		return normalizeValue(rv.Elem().Interface())
	}
	return fmt.Sprint(v)
}

// EpochTime restores a timestamp stored as epoch seconds. It reports false
// when v is absent or not a readable number.
func EpochTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case int64:
		return time.Unix(t, 0).UTC(), true
	case int:
		return time.Unix(int64(t), 0).UTC(), true
	case float64:
		sec, frac := math.Modf(t)
		return time.Unix(int64(sec), int64(frac*1e9)).UTC(), true
	case string:
		n, err := strconv.ParseInt(t, 10, 64)
		if err != nil {
			return time.Time{}, false
		}
		return time.Unix(n, 0).UTC(), true
	case time.Time:
		return t.UTC(), true
	}
	return time.Time{}, false
}

// ValuesEqual compares two attribute values as the store would see them:
// both sides are normalized and numbers compare by value regardless of kind.
func ValuesEqual(a, b any) bool {
	return wireEqual(normalizeValue(a), normalizeValue(b))
}

func wireEqual(a, b any) bool {
	if af, ok := asFloat(a); ok {
		bf, ok := asFloat(b)
		return ok && af == bf
	}
	switch at := a.(type) {
	case map[string]any:
		bt, ok := b.(map[string]any)
		if !ok || len(at) != len(bt) {
			return false
		}
		for k, av := range at {
			bv, ok := bt[k]
			if !ok || !wireEqual(av, bv) {
				return false
			}
		}
		return true
	case []any:
		bt, ok := b.([]any)
		if !ok || len(at) != len(bt) {
			return false
		}
		for i := range at {
			if !wireEqual(at[i], bt[i]) {
				return false
			}
		}
		return true
	}
	return a == b
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case int64:
		return float64(t), true
	case float64:
		return t, true
	}
	return 0, false
}

// conflictingKeys lists the keys whose values differ between intended and
// existing, ignoring timestamps.
func conflictingKeys(intended, existing map[string]any) []string {
	var keys []string
	seen := make(map[string]bool, len(intended))
	check := func(k string) {
		if seen[k] || k == KeyCreatedAt || k == KeyUpdatedAt {
			return
		}
		seen[k] = true
		if !ValuesEqual(intended[k], existing[k]) {
			keys = append(keys, k)
		}
	}
	for k := range intended {
		check(k)
	}
	for k := range existing {
		check(k)
	}
	sort.Strings(keys)
	return keys
}
