package generator

import (
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/jsonviewer/internal/config"
	"github.com/mcncl/jsonviewer/internal/elapsed"
	"github.com/mcncl/jsonviewer/internal/parser"
)

func parseValue(t *testing.T, input string) any {
	t.Helper()
	ir, err := parser.ParseString(input)
	require.NoError(t, err)
	return ir.Root
}

func load(t *testing.T, markup string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	require.NoError(t, err)
	return doc
}

func TestFragment(t *testing.T) {
	cfg := config.NewConfig()
	g := NewGeneratorWithConfig(cfg)

	res, err := g.Fragment(parseValue(t, `{"a": [1, 2]}`), cfg.ViewerOptions())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(res.HTML, `<div id="json-renderer" class="json-document">`))
	assert.Contains(t, res.HTML, `<ol class="json-array">`)
	assert.Equal(t, 4, res.Stats.Nodes)
	assert.Equal(t, 2, res.Stats.Toggles)
}

func TestGenerate_FragmentFromConfig(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Page.Fragment = true

	res, err := NewGeneratorWithConfig(cfg).Generate(parseValue(t, `[true]`))
	require.NoError(t, err)

	assert.NotContains(t, res.HTML, "<html>")
	assert.Contains(t, res.HTML, `<span class="json-literal">true</span>`)
}

func TestPage(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Page.Title = "Orders <2024>"
	g := NewGeneratorWithConfig(cfg)
	g.now = func() time.Time { return time.UnixMilli(1_700_000_000_000) }

	res, err := g.Generate(parseValue(t, `{"id": 7, "items": ["x"]}`))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(res.HTML, "<!DOCTYPE html>"))
	assert.Contains(t, res.HTML, "<title>Orders &lt;2024&gt;</title>")

	doc := load(t, res.HTML)
	assert.Equal(t, "Orders <2024>", doc.Find("title").Text())
	assert.True(t, doc.Find("#json-renderer").HasClass("json-document"))
	assert.Equal(t, 2, doc.Find("#json-renderer a.json-toggle").Length())
	assert.Contains(t, doc.Find("style").Text(), "a.json-toggle.collapsed")
	assert.Contains(t, doc.Find("style").Text(), `content: "\25BC"`)
	assert.NotContains(t, res.HTML, "&#34;\\25BC")

	label := doc.Find("p.json-elapsed")
	ts, ok := label.Attr(elapsed.Attribute)
	require.True(t, ok)
	assert.Equal(t, "1700000000000", ts)
	assert.Equal(t, "0 seconds since loaded...", label.Text())
}

func TestPage_Collapsed(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Render.Collapsed = true

	res, err := NewGeneratorWithConfig(cfg).Page(parseValue(t, `[1, 2, 3]`))
	require.NoError(t, err)

	doc := load(t, res.HTML)
	assert.True(t, doc.Find("a.json-toggle").First().HasClass("collapsed"))
	assert.Equal(t, "3 items", doc.Find("a.json-placeholder").Text())
	style, _ := doc.Find("ol.json-array").Attr("style")
	assert.Equal(t, "display: none;", style)
}

func TestPage_Script(t *testing.T) {
	res, err := NewGenerator().Page(parseValue(t, `{"a": "</script><b>x</b>"}`))
	require.NoError(t, err)

	doc := load(t, res.HTML)
	scripts := doc.Find("script")
	require.Equal(t, 1, scripts.Length())
	code := scripts.Text()
	assert.Contains(t, code, `document.getElementById("json-renderer")`)
	assert.Contains(t, code, "a.json-toggle, a.json-placeholder, .json-show-more")
	assert.Contains(t, code, `[`+elapsed.Attribute+`]`)
	assert.Contains(t, code, "since loaded...")
	assert.Contains(t, code, "if (!el || !root.contains(el))")
	// Document strings stay inside the tree, escaped.
	assert.Contains(t, doc.Find("#json-renderer").Text(), "</script><b>x</b>")
	assert.Equal(t, 0, doc.Find("#json-renderer b").Length())
}

func TestPage_WithoutScript(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Page.Script = false

	res, err := NewGeneratorWithConfig(cfg).Page(parseValue(t, `[1]`))
	require.NoError(t, err)

	assert.NotContains(t, res.HTML, "<script")
}

func TestPage_WithoutElapsedLabel(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Page.ElapsedLabel = false

	res, err := NewGeneratorWithConfig(cfg).Page(parseValue(t, `null`))
	require.NoError(t, err)

	doc := load(t, res.HTML)
	assert.Equal(t, 0, doc.Find("p.json-elapsed").Length())
	assert.Equal(t, `<span class="json-literal">null</span>`, mustInner(t, doc.Find("#json-renderer")))
}

func TestNewGenerator_Defaults(t *testing.T) {
	res, err := NewGenerator().Generate("https://example.com/a?b=1&c=2")
	require.NoError(t, err)

	doc := load(t, res.HTML)
	link := doc.Find("#json-renderer a.json-string")
	href, _ := link.Attr("href")
	assert.Equal(t, "https://example.com/a?b=1&c=2", href)
	assert.Equal(t, 1, res.Stats.Links)
}

func mustInner(t *testing.T, sel *goquery.Selection) string {
	t.Helper()
	out, err := sel.Html()
	require.NoError(t, err)
	return out
}
