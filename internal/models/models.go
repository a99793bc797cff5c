package models

import "strings"

// JSONValue is a generic type to represent any JSON value.
// This can be a string, number, boolean, null, object, or array. It is an
// alias so a JSONArray converts to []any without copying.
type JSONValue = any

// JSONArray represents a JSON array, which is a slice of JSONValues.
type JSONArray []JSONValue

// Member is a single key/value pair of a JSONObject.
type Member struct {
	Key   string
	Value JSONValue
}

// JSONObject represents a JSON object whose keys keep the order in which
// they were first inserted. Setting an existing key replaces its value in place.
type JSONObject struct {
	members []Member
	index   map[string]int
}

// NewJSONObject creates an empty JSONObject with room for n members.
func NewJSONObject(n int) *JSONObject {
	return &JSONObject{
		members: make([]Member, 0, n),
		index:   make(map[string]int, n),
	}
}

// ObjectOf builds a JSONObject from alternating key/value arguments.
// It is intended for literals in tests and examples; a trailing key without
// a value gets nil.
func ObjectOf(kv ...JSONValue) *JSONObject {
	obj := NewJSONObject(len(kv) / 2)
	for i := 0; i < len(kv); i += 2 {
		key, _ := kv[i].(string)
		var val JSONValue
		if i+1 < len(kv) {
			val = kv[i+1]
		}
		obj.Set(key, val)
	}
	return obj
}

// Set adds or replaces the value stored under key.
func (o *JSONObject) Set(key string, value JSONValue) {
	if o.index == nil {
		o.index = make(map[string]int)
	}
	if i, ok := o.index[key]; ok {
		o.members[i].Value = value
		return
	}
	o.index[key] = len(o.members)
	o.members = append(o.members, Member{Key: key, Value: value})
}

// Get returns the value stored under key.
func (o *JSONObject) Get(key string) (JSONValue, bool) {
	if o == nil {
		return nil, false
	}
	i, ok := o.index[key]
	if !ok {
		return nil, false
	}
	return o.members[i].Value, true
}

// Len returns the number of members.
func (o *JSONObject) Len() int {
	if o == nil {
		return 0
	}
	return len(o.members)
}

// Keys returns the keys in insertion order.
func (o *JSONObject) Keys() []string {
	if o == nil {
		return nil
	}
	keys := make([]string, len(o.members))
	for i, m := range o.members {
		keys[i] = m.Key
	}
	return keys
}

// Members returns a copy of the members in insertion order.
func (o *JSONObject) Members() []Member {
	if o == nil {
		return nil
	}
	out := make([]Member, len(o.members))
	copy(out, o.members)
	return out
}

// LosslessNumber holds a JSON number in its original textual form. The parser
// produces it for numbers that would lose precision as float64.
type LosslessNumber struct {
	Value string `json:"value"`
}

// IsLosslessNumber marks the type as an extended-precision number wrapper.
func (n LosslessNumber) IsLosslessNumber() bool { return true }

// String returns the number exactly as it appeared in the source.
func (n LosslessNumber) String() string { return n.Value }

// IsInteger reports whether the number has no fraction or exponent part.
func (n LosslessNumber) IsInteger() bool {
	return !strings.ContainsAny(n.Value, ".eE")
}

// IntermediateRepresentation is a structure to hold the parsed JSON data
// together with a few facts the CLI reports about it.
type IntermediateRepresentation struct {
	Root        JSONValue
	RootIsArray bool // True if the root of the JSON is an array vs an object
	// Lossless counts numbers that were kept as LosslessNumber.
	Lossless int
}
