package viewer

import (
	"encoding/json"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/jsonviewer/internal/models"
)

type Address struct {
	Street string `json:"street"`
	City   string
}

type person struct {
	Name     string `json:"name"`
	Nickname string `json:"nickname,omitempty"`
	Secret   string `json:"-"`
	HomeTown string
	internal int
	Address
}

func TestClassify(t *testing.T) {
	str := "pointer"
	var nilMap map[string]any
	var nilPtr *person

	tests := []struct {
		name     string
		value    any
		opts     Options
		expected Kind
	}{
		{"string", "hello", DefaultOptions(), KindString},
		{"pointer to string", &str, DefaultOptions(), KindString},
		{"json number", json.Number("12.5"), DefaultOptions(), KindNumber},
		{"int", 42, DefaultOptions(), KindNumber},
		{"float", 4.2, DefaultOptions(), KindNumber},
		{"big int", big.NewInt(7), DefaultOptions(), KindNumber},
		{"named numeric", time.Second, DefaultOptions(), KindNumber},
		{"bool", true, DefaultOptions(), KindBoolean},
		{"nil", nil, DefaultOptions(), KindNull},
		{"nil map", nilMap, DefaultOptions(), KindNull},
		{"nil pointer", nilPtr, DefaultOptions(), KindNull},
		{"json array", models.JSONArray{1}, DefaultOptions(), KindArray},
		{"typed slice", []string{"a"}, DefaultOptions(), KindArray},
		{"go array", [2]int{1, 2}, DefaultOptions(), KindArray},
		{"json object", models.ObjectOf("a", 1), DefaultOptions(), KindObject},
		{"map", map[string]int{"a": 1}, DefaultOptions(), KindObject},
		{"struct", person{}, DefaultOptions(), KindObject},
		{"lossless number without option", models.LosslessNumber{Value: "1"}, DefaultOptions(), KindObject},
		{"lossless number", models.LosslessNumber{Value: "1"}, Options{BigNumbers: true}, KindBigNumber},
		{"big float without option", big.NewFloat(1.5), DefaultOptions(), KindObject},
		{"big float", big.NewFloat(1.5), Options{BigNumbers: true}, KindBigNumber},
		{"big rat", big.NewRat(1, 3), Options{BigNumbers: true}, KindBigNumber},
		{"plain struct with big numbers on", person{}, Options{BigNumbers: true}, KindObject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.value, tt.opts))
		})
	}
}

func TestIsCollapsible(t *testing.T) {
	opts := DefaultOptions()

	assert.False(t, IsCollapsible("text", opts))
	assert.False(t, IsCollapsible(json.Number("1"), opts))
	assert.False(t, IsCollapsible(false, opts))
	assert.False(t, IsCollapsible(nil, opts))
	assert.False(t, IsCollapsible(models.JSONArray{}, opts))
	assert.False(t, IsCollapsible(models.NewJSONObject(0), opts))
	assert.False(t, IsCollapsible(map[string]any{}, opts))

	assert.True(t, IsCollapsible(models.JSONArray{nil}, opts))
	assert.True(t, IsCollapsible(models.ObjectOf("k", nil), opts))
	assert.True(t, IsCollapsible(person{Name: "x"}, opts))
}

func TestClassify_StructMembers(t *testing.T) {
	p := person{
		Name:     "Ada",
		Secret:   "hidden",
		HomeTown: "London",
		internal: 3,
		Address:  Address{Street: "Main St", City: "Springfield"},
	}

	n := classify(p, DefaultOptions())
	require.Equal(t, KindObject, n.Kind)

	var keys []string
	for _, m := range n.Members {
		keys = append(keys, m.Key)
	}
	assert.Equal(t, []string{"name", "HomeTown", "street", "City"}, keys)
}

func TestClassify_KeyNaming(t *testing.T) {
	p := person{HomeTown: "London"}

	tests := []struct {
		naming   string
		expected string
	}{
		{KeyNamingNone, "HomeTown"},
		{KeyNamingSnake, "home_town"},
		{KeyNamingKebab, "home-town"},
		{KeyNamingLowerCamel, "homeTown"},
		{KeyNamingCamel, "HomeTown"},
	}

	for _, tt := range tests {
		t.Run(tt.naming, func(t *testing.T) {
			n := classify(p, Options{KeyNaming: tt.naming})
			require.Len(t, n.Members, 4)
			// Tagged fields keep their tag name.
			assert.Equal(t, "name", n.Members[0].Key)
			assert.Equal(t, tt.expected, n.Members[1].Key)
		})
	}
}

func TestClassify_MapKeysSorted(t *testing.T) {
	n := classify(map[string]int{"b": 2, "c": 3, "a": 1}, DefaultOptions())

	require.Len(t, n.Members, 3)
	assert.Equal(t, "a", n.Members[0].Key)
	assert.Equal(t, "b", n.Members[1].Key)
	assert.Equal(t, "c", n.Members[2].Key)
}

func TestWalk(t *testing.T) {
	value := models.ObjectOf(
		"list", models.JSONArray{1, models.JSONArray{2}},
		"name", "x",
	)

	var kinds []Kind
	var depths []int
	Walk(value, DefaultOptions(), func(n Node, depth int) {
		kinds = append(kinds, n.Kind)
		depths = append(depths, depth)
	})

	assert.Equal(t, []Kind{KindObject, KindArray, KindNumber, KindArray, KindNumber, KindString}, kinds)
	assert.Equal(t, []int{1, 2, 3, 3, 4, 2}, depths)

	kinds = nil
	Walk(value, Options{MaxDepth: 2}, func(n Node, depth int) {
		kinds = append(kinds, n.Kind)
	})
	assert.Equal(t, []Kind{KindObject, KindArray, KindNumber, KindArray, KindString}, kinds)
}

func TestClassify_ArrayElems(t *testing.T) {
	tests := []struct {
		name  string
		value any
	}{
		{"json array", models.JSONArray{"a", json.Number("1")}},
		{"any slice", []any{"a", json.Number("1")}},
		{"typed slice", []string{"a", "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := classify(tt.value, DefaultOptions())
			require.Equal(t, KindArray, n.Kind)
			require.Len(t, n.Elems, 2)
			assert.Equal(t, "a", n.Elems[0])
			assert.Equal(t, 2, n.Len())
		})
	}
}
