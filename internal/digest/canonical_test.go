package digest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"string", "hello", `"hello"`},
		{"empty string", "", `""`},
		{"int64", int64(42), "42"},
		{"int", -100, "-100"},
		{"max int64", int64(9223372036854775807), "9223372036854775807"},
		{"bool", true, "true"},
		{"empty array", []any{}, "[]"},
		{"empty object", map[string]any{}, "{}"},
		{"nested", map[string]any{"b": []any{int64(1), "x"}, "a": false}, `{"a":false,"b":[1,"x"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalUTF16Ordering(t *testing.T) {
	// U+10000 encodes as the surrogate pair D800 DC00, which sorts before U+E000.
	obj := map[string]any{
		"\uE000":     int64(1),
		"\U00010000": int64(2),
	}

	result, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, "{\"\U00010000\":2,\"\uE000\":1}", string(result))
}

func TestMarshalCanonicalEscaping(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`a"b`, `"a\"b"`},
		{`a\b`, `"a\\b"`},
		{"line\nbreak", `"line\nbreak"`},
		{"tab\there", `"tab\there"`},
		{"\x01", `"\u0001"`},
		{"<a&b>", `"<a&b>"`},
		{"\u2028\u2029", "\"\u2028\u2029\""},
		{`\u2028`, `"\\u2028"`},
	}

	for _, tt := range tests {
		result, err := MarshalCanonical(tt.input)
		require.NoError(t, err)
		assert.Equal(t, tt.expected, string(result), "input %q", tt.input)
	}
}

func TestMarshalCanonicalNFC(t *testing.T) {
	composed := "caf\u00E9"
	decomposed := "cafe\u0301"

	a, err := MarshalCanonical(map[string]any{composed: composed})
	require.NoError(t, err)
	b, err := MarshalCanonical(map[string]any{decomposed: decomposed})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestMarshalCanonicalNFCKeyCollision(t *testing.T) {
	_, err := MarshalCanonical(map[string]any{
		"caf\u00E9":  int64(1),
		"cafe\u0301": int64(2),
	})
	assert.ErrorContains(t, err, "collide")
}

func TestMarshalCanonicalRejects(t *testing.T) {
	tests := map[string]any{
		"null":         nil,
		"float":        1.5,
		"nested float": map[string]any{"port": 443.0},
		"nested null":  []any{"a", nil},
		"unsupported":  struct{}{},
		"string map":   map[string]string{"a": "b"},
	}

	for name, v := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := MarshalCanonical(v)
			assert.Error(t, err)
		})
	}
}
