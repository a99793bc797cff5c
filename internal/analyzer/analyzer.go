// Package analyzer summarises what a value will look like once rendered.
package analyzer

import (
	"github.com/mcncl/jsonviewer/internal/viewer"
)

// Stats counts the parts of a rendered tree.
type Stats struct {
	// Nodes is the number of values visited, containers included.
	Nodes int `json:"nodes"`
	// Containers counts arrays and objects, empty ones included.
	Containers int `json:"containers"`
	// Toggles is the number of toggle affordances the markup carries.
	Toggles int `json:"toggles"`
	// Elided counts non-empty containers cut off by the depth limit.
	Elided int `json:"elided"`

	Strings    int `json:"strings"`
	Truncated  int `json:"truncated"`
	Links      int `json:"links"`
	Numbers    int `json:"numbers"`
	BigNumbers int `json:"big_numbers"`

	// Depth is the deepest level visited; the root is level 1.
	Depth int `json:"depth"`
}

// Analyze walks v the way the renderer does under opts.
func Analyze(v any, opts viewer.Options) Stats {
	var s Stats
	viewer.Walk(v, opts, func(n viewer.Node, depth int) {
		s.Nodes++
		if depth > s.Depth {
			s.Depth = depth
		}

		switch n.Kind {
		case viewer.KindArray, viewer.KindObject:
			s.Containers++
			if !n.Collapsible() {
				return
			}
			if opts.MaxDepth > 0 && depth > opts.MaxDepth {
				s.Elided++
				return
			}
			if depth > 1 || opts.RootCollapsable {
				s.Toggles++
			}
		case viewer.KindString:
			s.Strings++
			switch viewer.ClassifyString(n.Value.(string), opts) {
			case viewer.StringTruncated:
				s.Truncated++
			case viewer.StringLink:
				s.Links++
			}
		case viewer.KindNumber:
			s.Numbers++
		case viewer.KindBigNumber:
			s.BigNumbers++
		}
	})
	return s
}
