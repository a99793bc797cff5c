package viewer

import (
	"strconv"

	"github.com/PuerkitoBio/goquery"
)

const (
	toggleSelector      = "a.json-toggle"
	showMoreSelector    = ".json-show-more"
	placeholderSelector = "a.json-placeholder"
	contentSelector     = "ul.json-dict, ol.json-array"
	moreSelector        = ".json-more"
	collapsedClass      = "collapsed"
)

// bind installs the click handlers on s, replacing any bound earlier.
func bind(s *Surface) {
	s.Off(EventClick)
	s.On(EventClick, toggleSelector, s.onToggle)
	s.On(EventClick, showMoreSelector, s.onShowMore)
	s.On(EventClick, placeholderSelector, s.onPlaceholder)
}

// collapseRoot clicks the outermost toggle, which hides everything below it.
func (s *Surface) collapseRoot() {
	s.dispatch(EventClick, s.host.Find(toggleSelector).First())
}

// onToggle flips the node owning toggle between expanded and collapsed.
// A collapsed node shows a placeholder with its child count in place of its
// content list.
func (s *Surface) onToggle(ev *Event, toggle *goquery.Selection) {
	ev.PreventDefault()
	ev.StopPropagation()

	content := toggle.SiblingsFiltered(contentSelector).First()
	if content.Length() == 0 {
		return
	}

	if s.ToggleState(toggle) == StateCollapsed {
		show(content)
		content.SiblingsFiltered(placeholderSelector).Remove()
		removeClass(toggle, collapsedClass)
		s.setToggleState(toggle, StateExpanded)
		return
	}

	hide(content)
	content.AfterHtml(`<a href class="json-placeholder">` + placeholderLabel(content.ChildrenFiltered("li").Length()) + `</a>`)
	addClass(toggle, collapsedClass)
	s.setToggleState(toggle, StateCollapsed)
}

func placeholderLabel(count int) string {
	if count > 1 {
		return strconv.Itoa(count) + " items"
	}
	return strconv.Itoa(count) + " item"
}

// onShowMore reveals or hides the remainder of a truncated string.
func (s *Surface) onShowMore(ev *Event, link *goquery.Selection) {
	ev.PreventDefault()

	more := link.SiblingsFiltered(moreSelector).First()
	if more.Length() == 0 {
		return
	}

	if s.TruncationState(link) == StateFullText {
		hide(more)
		link.SetText(showMoreLabel)
		s.setTruncationState(link, StateTruncated)
		return
	}
	show(more)
	link.SetText(hideLabel)
	s.setTruncationState(link, StateFullText)
}

// onPlaceholder expands a collapsed node when its placeholder is clicked.
func (s *Surface) onPlaceholder(ev *Event, placeholder *goquery.Selection) {
	ev.PreventDefault()
	ev.StopPropagation()
	s.dispatch(EventClick, placeholder.SiblingsFiltered(toggleSelector).First())
}
