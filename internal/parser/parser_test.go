package parser

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/jsonviewer/internal/errors"
	"github.com/mcncl/jsonviewer/internal/models"
)

func parse(t *testing.T, input string, opts ...Option) models.IntermediateRepresentation {
	t.Helper()
	ir, err := Parse(strings.NewReader(input), opts...)
	require.NoError(t, err)
	return ir
}

func object(t *testing.T, v any) *models.JSONObject {
	t.Helper()
	obj, ok := v.(*models.JSONObject)
	require.True(t, ok, "want *models.JSONObject, got %T", v)
	return obj
}

func TestParse_Object(t *testing.T) {
	ir := parse(t, `{"name": "Ada", "age": 36, "retired": false, "spouse": null}`)

	assert.False(t, ir.RootIsArray)
	obj := object(t, ir.Root)
	assert.Equal(t, []string{"name", "age", "retired", "spouse"}, obj.Keys())

	age, _ := obj.Get("age")
	assert.Equal(t, json.Number("36"), age)
	spouse, ok := obj.Get("spouse")
	assert.True(t, ok)
	assert.Nil(t, spouse)
}

func TestParse_KeyOrder(t *testing.T) {
	tests := []struct {
		name  string
		input string
		keys  []string
	}{
		{"source order", `{"zeta": 1, "alpha": 2, "mid": 3}`, []string{"zeta", "alpha", "mid"}},
		{"duplicate key keeps first position", `{"a": 1, "b": 2, "a": 3}`, []string{"a", "b"}},
		{"empty", `{}`, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj := object(t, parse(t, tt.input).Root)
			assert.Equal(t, tt.keys, obj.Keys())
		})
	}
}

func TestParse_DuplicateKeyLastValueWins(t *testing.T) {
	obj := object(t, parse(t, `{"a": 1, "b": 2, "a": 3}`).Root)

	a, _ := obj.Get("a")
	assert.Equal(t, json.Number("3"), a)
}

func TestParse_NestedOrder(t *testing.T) {
	obj := object(t, parse(t, `{"outer": {"b": true, "a": [{"y": 1, "x": 2}]}}`).Root)

	outer, _ := obj.Get("outer")
	inner := object(t, outer)
	assert.Equal(t, []string{"b", "a"}, inner.Keys())

	list, _ := inner.Get("a")
	assert.Equal(t, []string{"y", "x"}, object(t, list.(models.JSONArray)[0]).Keys())
}

func TestParse_Array(t *testing.T) {
	ir := parse(t, `[1, "test", true, null, 3.14, []]`)

	assert.True(t, ir.RootIsArray)
	assert.Equal(t, models.JSONArray{
		json.Number("1"), "test", true, nil, json.Number("3.14"), models.JSONArray{},
	}, ir.Root)
}

func TestParse_Scalars(t *testing.T) {
	tests := []struct {
		input string
		want  any
	}{
		{`"hello world"`, "hello world"},
		{`123.45`, json.Number("123.45")},
		{`true`, true},
		{`false`, false},
		{`null`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			ir := parse(t, tt.input)
			assert.False(t, ir.RootIsArray)
			assert.Equal(t, tt.want, ir.Root)
		})
	}
}

func TestParse_LosslessNumbers(t *testing.T) {
	input := `[12345678901234567890, 1.5, 0.1000000000000000000001, 42]`

	assert.Zero(t, parse(t, input).Lossless)

	ir := parse(t, input, WithLosslessNumbers())
	assert.Equal(t, models.JSONArray{
		models.LosslessNumber{Value: "12345678901234567890"},
		json.Number("1.5"),
		models.LosslessNumber{Value: "0.1000000000000000000001"},
		json.Number("42"),
	}, ir.Root)
	assert.Equal(t, 2, ir.Lossless)
}

func TestIsSafeNumber(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"0", true},
		{"-12.5", true},
		{"123456789012345", true},
		{"1234567890123456", false},
		{"1.0000000000000000", true},
		{"1e400", false},
		{"2.5E-3", true},
		{"0.000000000000000000001", true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, isSafeNumber(tt.in), tt.in)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		target  error
		message string
	}{
		{"empty", "", errors.ErrEmptyInput, "empty"},
		{"whitespace", " \n\t ", errors.ErrEmptyInput, "empty"},
		{"missing closing brace", `{"name": "Ada", "age": 36`, errors.ErrInvalidJSON, "unexpected end"},
		{"missing closing bracket", `["a", "b",`, errors.ErrInvalidJSON, "JSON"},
		{"bare word", `{"invalid": json}`, errors.ErrInvalidJSON, "syntax error"},
		{"multiple values", `{"a": 1} {"b": 2}`, errors.ErrMultipleJSON, "multiple"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestParse_TrailingWhitespace(t *testing.T) {
	_, err := Parse(strings.NewReader("{\"a\": 1}\n\n  "))
	assert.NoError(t, err)
}

func TestParseString(t *testing.T) {
	ir, err := ParseString(`{"k": "v"}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"k"}, object(t, ir.Root).Keys())

	for _, blank := range []string{"", "   ", "\n\t"} {
		_, err := ParseString(blank)
		assert.ErrorIs(t, err, errors.ErrEmptyInput)
		assert.ErrorIs(t, err, &errors.AppError{Type: errors.ErrorTypeInput})
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "product.json")
	require.NoError(t, os.WriteFile(good, []byte(`{"product": "Laptop", "price": 1200.50}`), 0o644))
	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))

	ir, err := ParseFile(good)
	require.NoError(t, err)
	price, _ := object(t, ir.Root).Get("price")
	assert.Equal(t, json.Number("1200.50"), price)

	tests := []struct {
		name   string
		path   string
		target error
	}{
		{"missing", filepath.Join(dir, "missing.json"), errors.ErrFileNotFound},
		{"empty path", "  ", errors.ErrInvalidFilePath},
		{"empty content", empty, errors.ErrFileEmpty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFile(tt.path)
			assert.ErrorIs(t, err, tt.target)
		})
	}
}

func TestParse_CanonicalForm(t *testing.T) {
	obj := object(t, parse(t, `{"b": 1.50, "a": [1e2, "x"]}`, WithCanonicalForm()).Root)

	assert.Equal(t, []string{"a", "b"}, obj.Keys())
	a, _ := obj.Get("a")
	assert.Equal(t, json.Number("100"), a.(models.JSONArray)[0])
	b, _ := obj.Get("b")
	assert.Equal(t, json.Number("1.5"), b)
}

func TestParse_CanonicalFormErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"blank", "  \n", errors.ErrEmptyInput},
		{"malformed", `{"a": }`, errors.ErrInvalidJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input), WithCanonicalForm())
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
