package ogm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	var nilTime *time.Time
	port := 8080

	tests := []struct {
		name string
		in   any
		want any
	}{
		{"string", "x", "x"},
		{"bool", true, true},
		{"int", 7, int64(7)},
		{"int32", int32(-3), int64(-3)},
		{"uint16", uint16(9), int64(9)},
		{"float32", float32(0.5), float64(0.5)},
		{"time", ts, ts.Unix()},
		{"time pointer", &ts, ts.Unix()},
		{"nil time pointer", nilTime, nil},
		{"int pointer", &port, int64(8080)},
		{"bytes", []byte("ab"), "ab"},
		{"int slice", []int{1, 2}, []any{int64(1), int64(2)}},
		{"any keyed map", map[any]any{1: "one", "k": int8(2)}, map[string]any{"1": "one", "k": int64(2)}},
		{"nested", map[string]any{"inner": map[string]int{"n": 1}}, map[string]any{"inner": map[string]any{"n": int64(1)}}},
		{"duration", 2 * time.Second, int64(2 * time.Second)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(map[string]any{"v": tt.in})
			assert.Equal(t, tt.want, got["v"])
		})
	}
}

func TestNormalize_DoesNotModifyInput(t *testing.T) {
	in := map[string]any{"n": 1, "list": []any{2}}
	_ = Normalize(in)
	assert.Equal(t, 1, in["n"])
	assert.Equal(t, []any{2}, in["list"])
}

func TestEpochTime(t *testing.T) {
	want := time.Unix(1700000000, 0).UTC()

	tests := []struct {
		name string
		in   any
		ok   bool
	}{
		{"int64", int64(1700000000), true},
		{"int", 1700000000, true},
		{"float64", float64(1700000000), true},
		{"numeric string", "1700000000", true},
		{"time", want, true},
		{"absent", nil, false},
		{"garbage string", "yesterday", false},
		{"bool", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := EpochTime(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, want.Equal(got))
				assert.Equal(t, time.UTC, got.Location())
			}
		})
	}
}

func TestValuesEqual(t *testing.T) {
	assert.True(t, ValuesEqual(1, int64(1)))
	assert.True(t, ValuesEqual(int32(2), float64(2)))
	assert.True(t, ValuesEqual([]int{1, 2}, []any{int64(1), float64(2)}))
	assert.True(t, ValuesEqual(map[string]any{"a": 1}, map[string]any{"a": int64(1)}))
	assert.True(t, ValuesEqual(nil, nil))

	assert.False(t, ValuesEqual(1, "1"))
	assert.False(t, ValuesEqual(1, 2))
	assert.False(t, ValuesEqual([]any{1}, []any{1, 2}))
	assert.False(t, ValuesEqual(map[string]any{"a": 1}, map[string]any{"b": 1}))
	assert.False(t, ValuesEqual(nil, 0))
}

func TestConflictingKeys(t *testing.T) {
	intended := map[string]any{
		KeyType:      "Host",
		KeyUID:       "h1",
		KeyCreatedAt: int64(2),
		"os":         "linux",
		"port":       22,
	}
	existing := map[string]any{
		KeyType:      "Host",
		KeyUID:       "h1",
		KeyCreatedAt: int64(1),
		KeyUpdatedAt: int64(5),
		"os":         "bsd",
		"port":       int64(22),
		"extra":      true,
	}

	assert.Equal(t, []string{"extra", "os"}, conflictingKeys(intended, existing))
	assert.Empty(t, conflictingKeys(existing, existing))
}
