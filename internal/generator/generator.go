// Package generator turns a parsed value into HTML: either the mounted
// viewer fragment or a standalone page around it.
package generator

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/mcncl/jsonviewer/internal/analyzer"
	"github.com/mcncl/jsonviewer/internal/config"
	"github.com/mcncl/jsonviewer/internal/elapsed"
	"github.com/mcncl/jsonviewer/internal/viewer"
)

// RendererID is the id of the element the tree is mounted into.
const RendererID = "json-renderer"

const pageSkeleton = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title></title>
<style></style>
</head>
<body>
<p class="json-elapsed"></p>
<div id="` + RendererID + `"></div>
<script></script>
</body>
</html>`

const stylesheet = `
ul.json-dict, ol.json-array { list-style-type: none; margin: 0 0 0 1px; border-left: 1px dotted #ccc; padding-left: 2em; }
.json-string { color: #0b7500; }
.json-literal { color: #1a01cc; font-weight: bold; }
a.json-toggle { position: relative; color: inherit; text-decoration: none; }
a.json-toggle:focus { outline: none; }
a.json-toggle:before { font-size: 1.1em; color: #c0c0c0; content: "\25BC"; position: absolute; display: inline-block; width: 1em; text-align: center; line-height: 1em; left: -1.2em; }
a.json-toggle:hover:before { color: #aaa; }
a.json-toggle.collapsed:before { transform: rotate(-90deg); }
a.json-placeholder { color: #aaa; padding: 0 1em; text-decoration: none; }
a.json-placeholder:hover { text-decoration: underline; }
.json-elapsed { color: #888; font-size: 0.8em; }
`

// Result is the output of one generation.
type Result struct {
	HTML  string
	Stats analyzer.Stats
}

// Generator renders values with a fixed configuration.
type Generator struct {
	config *config.Config
	now    func() time.Time
}

// NewGenerator creates a Generator with the default configuration.
func NewGenerator() *Generator {
	return NewGeneratorWithConfig(config.NewConfig())
}

// NewGeneratorWithConfig creates a Generator with custom configuration.
func NewGeneratorWithConfig(cfg *config.Config) *Generator {
	return &Generator{config: cfg, now: time.Now}
}

// Generate renders value as configured: a fragment when Page.Fragment is
// set, a standalone document otherwise.
func (g *Generator) Generate(value any) (Result, error) {
	if g.config.Page.Fragment {
		return g.Fragment(value, g.config.ViewerOptions())
	}
	return g.Page(value)
}

// Fragment mounts value into a detached host and returns the host markup.
func (g *Generator) Fragment(value any, opts viewer.Options) (Result, error) {
	surface, err := viewer.NewDocumentSurface(RendererID)
	if err != nil {
		return Result{}, err
	}
	if err := surface.Apply(value, opts); err != nil {
		return Result{}, err
	}
	out, err := surface.HTML()
	if err != nil {
		return Result{}, err
	}
	return Result{HTML: out, Stats: analyzer.Analyze(value, opts)}, nil
}

// Page mounts value into a complete HTML document.
func (g *Generator) Page(value any) (Result, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageSkeleton))
	if err != nil {
		return Result{}, err
	}
	doc.Find("title").SetText(g.config.Page.Title)
	setRawText(doc.Find("style"), stylesheet)

	opts := g.config.ViewerOptions()
	surface := viewer.NewSurface(doc.Find("#" + RendererID))
	if err := surface.Apply(value, opts); err != nil {
		return Result{}, err
	}

	if g.config.Page.ElapsedLabel {
		label := doc.Find("p.json-elapsed")
		label.SetAttr(elapsed.Attribute, "")
		elapsed.NewLabel(label, elapsed.WithClock(g.now), elapsed.WithLocker(surface)).Update()
	} else {
		doc.Find("p.json-elapsed").Remove()
	}
	if g.config.Page.Script {
		setRawText(doc.Find("body > script"), script)
	} else {
		doc.Find("body > script").Remove()
	}

	out, err := doc.Html()
	if err != nil {
		return Result{}, err
	}
	return Result{HTML: out, Stats: analyzer.Analyze(value, opts)}, nil
}

// setRawText replaces the children of sel with a single text node. style and
// script hold raw text, where goquery's SetText would leave its entities
// undecoded.
func setRawText(sel *goquery.Selection, text string) {
	for _, n := range sel.Nodes {
		for c := n.FirstChild; c != nil; c = n.FirstChild {
			n.RemoveChild(c)
		}
		n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
}
