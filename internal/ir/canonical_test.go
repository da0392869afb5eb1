package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    Value
		expected string
	}{
		{"null", Null{}, "null"},
		{"string", String("hello"), `"hello"`},
		{"empty string", String(""), `""`},
		{"int", Integer(42), "42"},
		{"negative int", Integer(-100), "-100"},
		{"bool true", Boolean(true), "true"},
		{"bool false", Boolean(false), "false"},
		{"decimal", Decimal("18.50"), "18.50"},
		{"empty array", Array{}, "[]"},
		{"empty object", Object{}, "{}"},
		{"mixed array", Array{Integer(1), String("a"), Boolean(false)}, `[1,"a",false]`},
		{"nested object", Object{"b": Object{"a": Integer(1)}, "a": Array{}}, `{"a":[],"b":{"a":1}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalNoHTMLEscaping(t *testing.T) {
	result, err := MarshalCanonical(String("a < b && c > d"))
	require.NoError(t, err)
	assert.Equal(t, `"a < b && c > d"`, string(result))
}

func TestMarshalCanonicalNFC(t *testing.T) {
	// "e" + combining acute accent normalizes to the precomposed U+00E9.
	decomposed := String("Caf" + "e\u0301")
	precomposed := String("Caf\u00e9")

	a, err := MarshalCanonical(decomposed)
	require.NoError(t, err)
	b, err := MarshalCanonical(precomposed)
	require.NoError(t, err)

	assert.Equal(t, string(b), string(a))
}

func TestMarshalCanonicalLineSeparators(t *testing.T) {
	result, err := MarshalCanonical(String("a\u2028b\u2029c"))
	require.NoError(t, err)
	assert.Equal(t, "\"a\u2028b\u2029c\"", string(result))

	// A literal backslash followed by the text u2028 must stay escaped.
	result, err = MarshalCanonical(String(`x\u2028`))
	require.NoError(t, err)
	assert.Equal(t, `"x\\u2028"`, string(result))
}

func TestMarshalCanonicalControlCharacters(t *testing.T) {
	result, err := MarshalCanonical(String("line\nbreak\t\"q\""))
	require.NoError(t, err)
	assert.Equal(t, `"line\nbreak\t\"q\""`, string(result))
}

func TestMarshalCanonicalRejectsMalformedDecimal(t *testing.T) {
	_, err := MarshalCanonical(Object{"value": Decimal("1e3")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `value for key "value"`)
}

func TestMarshalCanonicalDeterministic(t *testing.T) {
	obj := Object{
		"z": Array{Integer(3), Integer(2)},
		"m": String("middle"),
		"a": Object{"y": Boolean(true), "x": Null{}},
	}

	first := MustMarshalCanonical(obj)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, MustMarshalCanonical(obj))
	}
	assert.Equal(t, `{"a":{"x":null,"y":true},"m":"middle","z":[3,2]}`, string(first))
}
