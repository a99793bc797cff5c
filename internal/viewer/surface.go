package viewer

import (
	"slices"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// ToggleState is the presentation state of one toggle affordance.
type ToggleState int

const (
	StateExpanded ToggleState = iota
	StateCollapsed
)

func (s ToggleState) String() string {
	if s == StateCollapsed {
		return "collapsed"
	}
	return "expanded"
}

// TruncationState is the presentation state of one truncated string.
type TruncationState int

const (
	StateTruncated TruncationState = iota
	StateFullText
)

func (s TruncationState) String() string {
	if s == StateFullText {
		return "full text"
	}
	return "truncated"
}

// EventClick is the only event class the controller binds.
const EventClick = "click"

// Event is a synthetic DOM event dispatched through a Surface.
type Event struct {
	Type   string
	Target *goquery.Selection

	defaultPrevented   bool
	propagationStopped bool
}

// PreventDefault suppresses the native action of the target, for example
// following a link.
func (e *Event) PreventDefault() { e.defaultPrevented = true }

// StopPropagation stops the event from reaching handlers bound further up.
func (e *Event) StopPropagation() { e.propagationStopped = true }

// DefaultPrevented reports whether a handler called PreventDefault.
func (e *Event) DefaultPrevented() bool { return e.defaultPrevented }

// PropagationStopped reports whether a handler called StopPropagation.
func (e *Event) PropagationStopped() bool { return e.propagationStopped }

// Handler handles an event; current is the element matching the handler's selector.
type Handler func(ev *Event, current *goquery.Selection)

type binding struct {
	selector string
	handler  Handler
}

// Surface is a host element that receives rendered trees and click events.
// Bound handlers and presentation state belong to the surface instance, so
// the same value can be mounted into several surfaces independently.
//
// A Surface is meant for one goroutine at a time. Lock and Unlock guard the
// host document for collaborators, such as an elapsed time label, that
// write into the same document from another goroutine.
type Surface struct {
	doc  sync.Mutex
	mu   sync.Mutex
	host *goquery.Selection

	handlers    map[string][]binding
	toggles     map[*html.Node]ToggleState
	truncations map[*html.Node]TruncationState
}

// NewSurface wraps the first element of host.
func NewSurface(host *goquery.Selection) *Surface {
	s := &Surface{handlers: make(map[string][]binding)}
	if host != nil {
		s.host = host.First()
	}
	s.resetState()
	return s
}

// NewDocumentSurface creates an empty document holding a single div with the
// given id and returns a surface on that div.
func NewDocumentSurface(id string) (*Surface, error) {
	markup := `<div id="` + html.EscapeString(id) + `"></div>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, err
	}
	return NewSurface(doc.Find("body").Children().First()), nil
}

// Lock acquires the host document.
func (s *Surface) Lock() { s.doc.Lock() }

// Unlock releases the host document.
func (s *Surface) Unlock() { s.doc.Unlock() }

// Host returns the host element.
func (s *Surface) Host() *goquery.Selection { return s.host }

// Find returns the elements below the host matching selector.
func (s *Surface) Find(selector string) *goquery.Selection {
	return s.host.Find(selector)
}

// HTML returns the host element including its own tag.
func (s *Surface) HTML() (string, error) {
	s.doc.Lock()
	defer s.doc.Unlock()
	return goquery.OuterHtml(s.host)
}

// InnerHTML returns the content of the host element.
func (s *Surface) InnerHTML() (string, error) {
	s.doc.Lock()
	defer s.doc.Unlock()
	return s.host.Html()
}

// On binds handler to events of type event whose target is, or is inside,
// an element matching selector.
func (s *Surface) On(event, selector string, handler Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[event] = append(s.handlers[event], binding{selector: selector, handler: handler})
}

// Off removes every handler bound for event.
func (s *Surface) Off(event string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.handlers, event)
}

// Handlers returns the number of handlers bound for event.
func (s *Surface) Handlers(event string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handlers[event])
}

// Click dispatches a click on the first element of target.
func (s *Surface) Click(target *goquery.Selection) *Event {
	s.doc.Lock()
	defer s.doc.Unlock()
	return s.dispatch(EventClick, target)
}

// dispatch delivers the event to delegated handlers, innermost matching
// element first, and stops at the host. Targets outside the host get no
// handlers. The caller holds the document lock.
func (s *Surface) dispatch(event string, target *goquery.Selection) *Event {
	ev := &Event{Type: event, Target: target}
	if s.host == nil || s.host.Length() == 0 || target == nil || target.Length() == 0 {
		return ev
	}
	ev.Target = target.First()

	hostNode := s.host.Get(0)
	var path []*html.Node
	n := ev.Target.Get(0)
	for ; n != nil && n != hostNode; n = n.Parent {
		if n.Type == html.ElementNode {
			path = append(path, n)
		}
	}
	if n == nil {
		return ev
	}

	s.mu.Lock()
	bindings := append([]binding(nil), s.handlers[event]...)
	s.mu.Unlock()

	for _, node := range path {
		current := s.host.FindNodes(node)
		for _, b := range bindings {
			if current.Is(b.selector) {
				b.handler(ev, current)
			}
		}
		if ev.propagationStopped {
			break
		}
	}
	return ev
}

// ToggleState returns the state of the toggle at the first node of sel.
func (s *Surface) ToggleState(sel *goquery.Selection) ToggleState {
	if sel == nil || sel.Length() == 0 {
		return StateExpanded
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.toggles[sel.Get(0)]
}

// TruncationState returns the state of the "show more" affordance at the
// first node of sel.
func (s *Surface) TruncationState(sel *goquery.Selection) TruncationState {
	if sel == nil || sel.Length() == 0 {
		return StateTruncated
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.truncations[sel.Get(0)]
}

func (s *Surface) setToggleState(sel *goquery.Selection, st ToggleState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.toggles[sel.Get(0)] = st
}

func (s *Surface) setTruncationState(sel *goquery.Selection, st TruncationState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.truncations[sel.Get(0)] = st
}

func (s *Surface) resetState() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.toggles = make(map[*html.Node]ToggleState)
	s.truncations = make(map[*html.Node]TruncationState)
}

// Visible reports whether the first element of sel is displayed, that is
// neither it nor any ancestor up to the host is hidden.
func (s *Surface) Visible(sel *goquery.Selection) bool {
	if sel == nil || sel.Length() == 0 {
		return false
	}
	var hostNode *html.Node
	if s.host != nil {
		hostNode = s.host.Get(0)
	}
	for n := sel.Get(0); n != nil && n != hostNode; n = n.Parent {
		if n.Type == html.ElementNode && isHiddenNode(n) {
			return false
		}
	}
	return true
}

const hiddenStyle = "display: none;"

func isHiddenNode(n *html.Node) bool {
	for _, a := range n.Attr {
		if a.Key == "style" {
			return strings.Contains(strings.ReplaceAll(a.Val, " ", ""), "display:none")
		}
	}
	return false
}

func hide(sel *goquery.Selection) { sel.SetAttr("style", hiddenStyle) }

func show(sel *goquery.Selection) { sel.RemoveAttr("style") }

// addClass and removeClass keep the class attribute as single-space
// separated names, which goquery's AddClass does not.
func addClass(sel *goquery.Selection, class string) {
	sel.Each(func(_ int, el *goquery.Selection) {
		names := strings.Fields(el.AttrOr("class", ""))
		if !slices.Contains(names, class) {
			names = append(names, class)
		}
		el.SetAttr("class", strings.Join(names, " "))
	})
}

func removeClass(sel *goquery.Selection, class string) {
	sel.Each(func(_ int, el *goquery.Selection) {
		names := slices.DeleteFunc(strings.Fields(el.AttrOr("class", "")), func(n string) bool { return n == class })
		if len(names) == 0 {
			el.RemoveAttr("class")
			return
		}
		el.SetAttr("class", strings.Join(names, " "))
	})
}
