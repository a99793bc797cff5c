package viewer

import (
	"encoding/json"
	"fmt"
	"math/big"
	"reflect"
	"sort"
	"strings"

	"github.com/iancoleman/strcase"

	"github.com/mcncl/jsonviewer/internal/models"
)

// Kind is the semantic kind of a JSON value.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindBoolean
	KindNull
	KindArray
	KindObject
	KindBigNumber
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBoolean:
		return "boolean"
	case KindNull:
		return "null"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	case KindBigNumber:
		return "bignumber"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// losslessNumber is implemented by wrappers that carry an explicit
// lossless-number marker, such as models.LosslessNumber.
type losslessNumber interface {
	IsLosslessNumber() bool
}

// Node is a classified value. Array nodes carry their elements and object
// nodes their members so that callers never re-probe the value.
type Node struct {
	Kind    Kind
	Value   any
	Elems   []any
	Members []models.Member
}

// Len returns the number of direct children of an array or object node.
func (n Node) Len() int {
	switch n.Kind {
	case KindArray:
		return len(n.Elems)
	case KindObject:
		return len(n.Members)
	}
	return 0
}

// Collapsible reports whether the node is a non-empty array or object.
func (n Node) Collapsible() bool {
	return (n.Kind == KindArray || n.Kind == KindObject) && n.Len() > 0
}

// Classify returns the kind of v under opts.
func Classify(v any, opts Options) Kind {
	return classify(v, opts).Kind
}

// IsCollapsible reports whether v renders with a toggle.
func IsCollapsible(v any, opts Options) bool {
	return classify(v, opts).Collapsible()
}

func classify(v any, opts Options) Node {
	switch t := v.(type) {
	case string:
		return Node{Kind: KindString, Value: t}
	case json.Number, *big.Int,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, uintptr,
		float32, float64:
		return Node{Kind: KindNumber, Value: t}
	case bool:
		return Node{Kind: KindBoolean, Value: t}
	case nil:
		return Node{Kind: KindNull}
	case models.JSONArray:
		return Node{Kind: KindArray, Value: t, Elems: t}
	case []any:
		return Node{Kind: KindArray, Value: t, Elems: t}
	case *models.JSONObject:
		if t == nil {
			return Node{Kind: KindNull}
		}
		return structured(t, opts)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return Node{Kind: KindString, Value: rv.String()}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return Node{Kind: KindNumber, Value: v}
	case reflect.Bool:
		return Node{Kind: KindBoolean, Value: rv.Bool()}
	case reflect.Pointer:
		if rv.IsNil() {
			return Node{Kind: KindNull}
		}
		// Keep the pointer for structured values so pointer-receiver
		// methods stay visible to the big number probe.
		if k := rv.Elem().Kind(); k != reflect.Struct && k != reflect.Map {
			return classify(rv.Elem().Interface(), opts)
		}
	case reflect.Map:
		if rv.IsNil() {
			return Node{Kind: KindNull}
		}
	case reflect.Slice, reflect.Array:
		elems := make([]any, rv.Len())
		for i := range elems {
			elems[i] = rv.Index(i).Interface()
		}
		return Node{Kind: KindArray, Value: v, Elems: elems}
	}
	return structured(v, opts)
}

// structured classifies any value that is not a scalar or a sequence.
func structured(v any, opts Options) Node {
	if opts.BigNumbers && isBigNumberShape(v) {
		return Node{Kind: KindBigNumber, Value: v}
	}
	return Node{Kind: KindObject, Value: v, Members: members(v, opts)}
}

// isBigNumberShape reports whether v carries a lossless-number marker or
// exposes a Float64 conversion method (big.Float, big.Rat, decimal types).
func isBigNumberShape(v any) bool {
	if m, ok := v.(losslessNumber); ok && m.IsLosslessNumber() {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.IsValid() && rv.MethodByName("Float64").IsValid()
}

func bigNumberText(v any) string {
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprint(v)
}

func members(v any, opts Options) []models.Member {
	switch t := v.(type) {
	case *models.JSONObject:
		return t.Members()
	case models.JSONObject:
		return t.Members()
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map:
		return mapMembers(rv)
	case reflect.Struct:
		return structMembers(rv, opts, nil)
	}
	return nil
}

// mapMembers lists map entries sorted by key; Go maps have no insertion order.
func mapMembers(rv reflect.Value) []models.Member {
	out := make([]models.Member, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out = append(out, models.Member{Key: mapKey(iter.Key()), Value: iter.Value().Interface()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func mapKey(k reflect.Value) string {
	if k.Kind() == reflect.String {
		return k.String()
	}
	return fmt.Sprint(k.Interface())
}

// structMembers follows encoding/json field rules: exported fields in
// declaration order, json tag names, "-" skipped, omitempty honoured and
// untagged embedded structs flattened.
func structMembers(rv reflect.Value, opts Options, out []models.Member) []models.Member {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		tag := field.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, tagOpts, _ := strings.Cut(tag, ",")
		fv := rv.Field(i)

		if field.Anonymous && name == "" {
			inner := fv
			if inner.Kind() == reflect.Pointer {
				if inner.IsNil() {
					continue
				}
				inner = inner.Elem()
			}
			if inner.Kind() == reflect.Struct {
				out = structMembers(inner, opts, out)
				continue
			}
		}
		if !field.IsExported() || !fv.CanInterface() {
			continue
		}
		if strings.Contains(tagOpts, "omitempty") && fv.IsZero() {
			continue
		}
		if name == "" {
			name = applyKeyNaming(field.Name, opts.KeyNaming)
		}
		out = append(out, models.Member{Key: name, Value: fv.Interface()})
	}
	return out
}

func applyKeyNaming(name, naming string) string {
	switch naming {
	case KeyNamingSnake:
		return strcase.ToSnake(name)
	case KeyNamingCamel:
		return strcase.ToCamel(name)
	case KeyNamingLowerCamel:
		return strcase.ToLowerCamel(name)
	case KeyNamingKebab:
		return strcase.ToKebab(name)
	}
	return name
}

// Walk visits v and every value below it in render order. depth is 1 for
// the root. Containers beyond opts.MaxDepth are visited but not entered.
func Walk(v any, opts Options, fn func(n Node, depth int)) {
	walk(classify(v, opts), opts.normalized(), 1, fn)
}

func walk(n Node, opts Options, depth int, fn func(Node, int)) {
	fn(n, depth)
	if opts.MaxDepth > 0 && depth > opts.MaxDepth {
		return
	}
	switch n.Kind {
	case KindArray:
		for _, e := range n.Elems {
			walk(classify(e, opts), opts, depth+1, fn)
		}
	case KindObject:
		for _, m := range n.Members {
			walk(classify(m.Value, opts), opts, depth+1, fn)
		}
	}
}
