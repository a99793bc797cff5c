package viewer

import (
	"github.com/mcncl/jsonviewer/internal/errors"
)

// DocumentClass marks a host that holds a rendered tree.
const DocumentClass = "json-document"

// Mount renders value into s; see (*Surface).Mount.
func Mount(s *Surface, value any, opts ...Option) error {
	if s == nil {
		return errors.ErrNoHost
	}
	return s.Mount(value, opts...)
}

// Mount replaces the content of the host with the rendered tree of value,
// marks the host with DocumentClass and binds the click handlers. Options
// are applied over DefaultOptions. With Collapsed set the root toggle is
// clicked once after binding.
//
// Presentation state from an earlier mount is discarded, and handlers bound
// earlier are removed before the new ones are installed.
func (s *Surface) Mount(value any, opts ...Option) error {
	return s.Apply(value, buildOptions(opts))
}

// Apply mounts value with a complete option record.
func (s *Surface) Apply(value any, opts Options) error {
	if s.host == nil || s.host.Length() == 0 {
		return errors.ErrNoHost
	}

	s.doc.Lock()
	defer s.doc.Unlock()

	s.host.SetHtml(Render(value, opts))
	addClass(s.host, DocumentClass)
	s.resetState()
	bind(s)
	if opts.Collapsed {
		s.collapseRoot()
	}
	return nil
}
