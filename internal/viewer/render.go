package viewer

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strconv"
	"strings"
)

const (
	toggleMarkup   = `<a href class="json-toggle"></a>`
	ellipsisMarkup = `<span class="json-literal json-ellipsis">…</span>`
	showMoreLabel  = "Show more..."
	hideLabel      = "Hide"
)

// StringForm is how a string value is displayed.
type StringForm int

const (
	StringQuoted StringForm = iota
	StringLink
	StringTruncated
)

// ClassifyString reports how s is displayed under opts.
func ClassifyString(s string, opts Options) StringForm {
	form, _ := stringForm(s, opts.normalized())
	return form
}

// stringForm returns the display form of s along with the escaped text the
// renderer writes for it.
func stringForm(s string, opts Options) (StringForm, string) {
	escaped := Escape(s)
	if opts.WithLinks && IsURL(escaped) {
		return StringLink, escaped
	}
	escaped = strings.ReplaceAll(escaped, "&quot;", `\&quot;`)
	if len([]rune(escaped)) > opts.StringLengthThreshold {
		return StringTruncated, escaped
	}
	return StringQuoted, escaped
}

// Render returns the markup of v as a collapsible tree.
func Render(v any, opts Options) string {
	opts = opts.normalized()
	r := &renderer{opts: opts}
	root := classify(v, opts)
	if opts.RootCollapsable && r.expands(root, 1) {
		r.b.WriteString(toggleMarkup)
	}
	r.node(root, 1)
	return r.b.String()
}

type renderer struct {
	opts Options
	b    strings.Builder
}

// expands reports whether n renders with child content and therefore a toggle.
func (r *renderer) expands(n Node, depth int) bool {
	if r.opts.MaxDepth > 0 && depth > r.opts.MaxDepth {
		return false
	}
	return n.Collapsible()
}

func (r *renderer) node(n Node, depth int) {
	switch n.Kind {
	case KindString:
		r.str(n.Value.(string))
	case KindNumber:
		r.literal(numberText(n.Value))
	case KindBoolean:
		r.literal(strconv.FormatBool(n.Value.(bool)))
	case KindNull:
		r.literal("null")
	case KindBigNumber:
		r.literal(Escape(bigNumberText(n.Value)))
	case KindArray:
		r.array(n, depth)
	case KindObject:
		r.object(n, depth)
	}
}

func (r *renderer) literal(text string) {
	r.b.WriteString(`<span class="json-literal">`)
	r.b.WriteString(text)
	r.b.WriteString(`</span>`)
}

func (r *renderer) str(s string) {
	form, text := stringForm(s, r.opts)
	switch form {
	case StringLink:
		fmt.Fprintf(&r.b, `<a href="%s" class="json-string" target="_blank">%s</a>`, text, text)
	case StringTruncated:
		runes := []rune(text)
		visible := lineBreaks(string(runes[:r.opts.StringLengthThreshold]))
		hidden := lineBreaks(string(runes[r.opts.StringLengthThreshold:]))
		fmt.Fprintf(&r.b,
			`<span class="json-string">"%s<span class="json-more" style="display: none;">%s</span>"<a href="#" class="json-show-more">%s</a></span>`,
			visible, hidden, showMoreLabel)
	default:
		fmt.Fprintf(&r.b, `<span class="json-string">"%s"</span>`, text)
	}
}

func lineBreaks(s string) string {
	return strings.ReplaceAll(s, "\n", "<br>")
}

func (r *renderer) array(n Node, depth int) {
	if len(n.Elems) == 0 {
		r.b.WriteString("[]")
		return
	}
	if !r.expands(n, depth) {
		r.b.WriteString(ellipsisMarkup)
		return
	}
	r.b.WriteString(`[<ol class="json-array">`)
	for i, e := range n.Elems {
		child := classify(e, r.opts)
		r.b.WriteString("<li>")
		if r.expands(child, depth+1) {
			r.b.WriteString(toggleMarkup)
		}
		r.node(child, depth+1)
		if i < len(n.Elems)-1 {
			r.b.WriteString(",")
		}
		r.b.WriteString("</li>")
	}
	r.b.WriteString("</ol>]")
}

func (r *renderer) object(n Node, depth int) {
	if len(n.Members) == 0 {
		r.b.WriteString("{}")
		return
	}
	if !r.expands(n, depth) {
		r.b.WriteString(ellipsisMarkup)
		return
	}
	r.b.WriteString(`{<ul class="json-dict">`)
	for i, m := range n.Members {
		child := classify(m.Value, r.opts)
		key := Escape(m.Key)
		if r.opts.WithQuotes {
			key = `<span class="json-string">"` + key + `"</span>`
		}
		r.b.WriteString("<li>")
		if r.expands(child, depth+1) {
			r.b.WriteString(`<a href class="json-toggle">`)
			r.b.WriteString(key)
			r.b.WriteString("</a>")
		} else {
			r.b.WriteString(key)
		}
		r.b.WriteString(": ")
		r.node(child, depth+1)
		if i < len(n.Members)-1 {
			r.b.WriteString(",")
		}
		r.b.WriteString("</li>")
	}
	r.b.WriteString("</ul>}")
}

// numberText formats numbers the way a JavaScript engine prints them:
// plain decimals between 1e-6 and 1e21, exponent notation outside.
func numberText(v any) string {
	switch t := v.(type) {
	case json.Number:
		return t.String()
	case *big.Int:
		return t.String()
	case float64:
		return formatFloat(t, 64)
	case float32:
		return formatFloat(float64(t), 32)
	}
	// Named numeric types are printed by value, not by their String method.
	rv := reflect.ValueOf(v)
	switch {
	case rv.CanInt():
		return strconv.FormatInt(rv.Int(), 10)
	case rv.CanUint():
		return strconv.FormatUint(rv.Uint(), 10)
	case rv.CanFloat():
		return formatFloat(rv.Float(), rv.Type().Bits())
	}
	return fmt.Sprint(v)
}

func formatFloat(f float64, bits int) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		// Covers -0, which JavaScript prints as 0.
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, bits)
	}
	// Go pads the exponent to two digits (1e-07), JavaScript does not.
	s := strconv.FormatFloat(f, 'e', -1, bits)
	mantissa, exp, _ := strings.Cut(s, "e")
	sign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")
	return mantissa + "e" + sign + digits
}
