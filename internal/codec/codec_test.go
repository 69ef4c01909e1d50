package codec_test

import (
	"testing"

	"taskManager/internal/codec"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func TestEncode_EmptyClearsColumn(t *testing.T) {
	assert.Nil(t, codec.Encode(nil))
	assert.Nil(t, codec.Encode([]string{}))
}

func TestEncode_RoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		values []string
	}{
		{name: "single", values: []string{"alice"}},
		{name: "order preserved", values: []string{"z", "a", "m"}},
		{name: "duplicates kept", values: []string{"x", "x"}},
		{name: "special characters", values: []string{`quo"te`, "a,b", "<tag>&", "żółć"}},
		{name: "blank element", values: []string{""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blob := codec.Encode(tt.values)
			require.NotNil(t, blob)

			assert.Equal(t, tt.values, codec.Decode(blob))
			assert.Equal(t, tt.values, codec.DecodeAssignees(blob))
		})
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		blob     *string
		expected []string
	}{
		{name: "nil", blob: nil, expected: []string{}},
		{name: "empty", blob: ptr(""), expected: []string{}},
		{name: "blank", blob: ptr("   "), expected: []string{}},
		{name: "array", blob: ptr(`["a","b"]`), expected: []string{"a", "b"}},
		{name: "padded array", blob: ptr(`  ["a"]  `), expected: []string{"a"}},
		{name: "empty array", blob: ptr(`[]`), expected: []string{}},
		{name: "legacy scalar", blob: ptr("alice"), expected: []string{}},
		{name: "broken array", blob: ptr(`["a",`), expected: []string{}},
		{name: "bracketed garbage", blob: ptr(`[not json]`), expected: []string{}},
		{name: "json object", blob: ptr(`{"a":1}`), expected: []string{}},
		{name: "number elements", blob: ptr(`[1,2.5]`), expected: []string{"1", "2.5"}},
		{name: "mixed scalars", blob: ptr(`["a",true,null]`), expected: []string{"a", "true"}},
		{name: "nested array", blob: ptr(`[["a"]]`), expected: []string{}},
		{name: "object element", blob: ptr(`[{"a":1}]`), expected: []string{}},
		{name: "two arrays", blob: ptr(`["a"]["b"]`), expected: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := codec.Decode(tt.blob)
			require.NotNil(t, got)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestDecodeAssignees(t *testing.T) {
	tests := []struct {
		name     string
		blob     *string
		expected []string
	}{
		{name: "nil", blob: nil, expected: []string{}},
		{name: "blank", blob: ptr(" "), expected: []string{}},
		{name: "array", blob: ptr(`["a","b"]`), expected: []string{"a", "b"}},
		{name: "legacy scalar", blob: ptr("alice"), expected: []string{"alice"}},
		{name: "legacy scalar trimmed", blob: ptr("  user_1 "), expected: []string{"user_1"}},
		{name: "email scalar", blob: ptr("bob@example.com"), expected: []string{"bob@example.com"}},
		{name: "open bracket only", blob: ptr("[x"), expected: []string{"[x"}},
		{name: "close bracket only", blob: ptr("x]"), expected: []string{"x]"}},
		{name: "bracketed garbage", blob: ptr("[x]"), expected: []string{"[x]"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, codec.DecodeAssignees(tt.blob))
		})
	}
}
