package formatter

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Formatter normalizes generated HTML: comments are dropped, whitespace
// between document-level elements is replaced by one line break per
// element, and everything inside the body's children is left untouched.
type Formatter struct{}

// NewFormatter creates a new Formatter instance
func NewFormatter() *Formatter {
	return &Formatter{}
}

// layout lists the elements whose children are put on their own lines.
var layout = map[atom.Atom]bool{
	atom.Html: true,
	atom.Head: true,
	atom.Body: true,
}

// Format takes a complete HTML document and returns it normalized
func (f *Formatter) Format(markup string) (string, error) {
	if strings.TrimSpace(markup) == "" {
		return "", nil
	}

	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}
	stripComments(doc)
	arrange(doc)

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return "", fmt.Errorf("failed to render HTML: %w", err)
	}
	return strings.TrimSpace(buf.String()) + "\n", nil
}

// FormatFragment normalizes markup meant to be embedded in a body element.
func (f *Formatter) FormatFragment(markup string) (string, error) {
	if strings.TrimSpace(markup) == "" {
		return "", nil
	}

	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(markup), body)
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML fragment: %w", err)
	}

	var buf bytes.Buffer
	for _, n := range nodes {
		if n.Type == html.CommentNode {
			continue
		}
		stripComments(n)
		if err := html.Render(&buf, n); err != nil {
			return "", fmt.Errorf("failed to render HTML fragment: %w", err)
		}
	}
	return buf.String(), nil
}

func stripComments(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.CommentNode {
			n.RemoveChild(c)
		} else {
			stripComments(c)
		}
		c = next
	}
}

// arrange puts each child of a layout element on its own line.
func arrange(n *html.Node) {
	if !isLayout(n) {
		return
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.TextNode && strings.TrimSpace(c.Data) == "" {
			n.RemoveChild(c)
		}
		c = next
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		n.InsertBefore(&html.Node{Type: html.TextNode, Data: "\n"}, c)
		arrange(c)
	}
	if n.FirstChild != nil {
		n.AppendChild(&html.Node{Type: html.TextNode, Data: "\n"})
	}
}

func isLayout(n *html.Node) bool {
	return n.Type == html.DocumentNode || (n.Type == html.ElementNode && layout[n.DataAtom])
}
