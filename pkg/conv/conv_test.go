package conv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToInt64(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want int64
		ok   bool
	}{
		{name: "int", in: 9, want: 9, ok: true},
		{name: "int32", in: int32(-4), want: -4, ok: true},
		{name: "uint8", in: uint8(200), want: 200, ok: true},
		{name: "float rejected", in: 9.0, ok: false},
		{name: "string rejected", in: "9", ok: false},
		{name: "bool rejected", in: true, ok: false},
		{name: "nil rejected", in: nil, ok: false},
		{name: "huge uint64 rejected", in: uint64(1 << 63), want: -1 << 63, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToInt64(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestConfigHelpers(t *testing.T) {
	m := map[string]any{
		"metric": "cosine",
		"k":      10,
		"float":  3.0,
		"ids":    []any{1, 2.0, 2.5, "x"},
		"names":  []any{"a", 7.0, ""},
	}

	assert.Equal(t, "cosine", ConfigGet(m, "metric", "euclidean"))
	assert.Equal(t, "euclidean", ConfigGet(m, "missing", "euclidean"))
	assert.Equal(t, false, ConfigGet(m, "metric", false))
	assert.Equal(t, int64(10), ConfigGetInt64(m, "k", 0))
	assert.Equal(t, int64(3), ConfigGetInt64(m, "float", 0))
	assert.Equal(t, int64(5), ConfigGetInt64(nil, "k", 5))
	assert.Equal(t, []int64{1, 2}, SliceAnyToInt64(m["ids"]))
	assert.Equal(t, []string{"a"}, SliceAnyToString(m["names"]))
	assert.Nil(t, SliceAnyToInt64("nope"))
}
