package main

import (
	"bytes"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEngine(t *testing.T, templateDir string) *templateEngine {
	t.Helper()
	r, err := newMarkdownRenderer(engineBlackfriday)
	require.NoError(t, err)
	return newTemplateEngine(r, templateDir)
}

func testParam(c *CollectionConf, title, description string) templateParam {
	return templateParam{SiteTitle: "halfcomplete", PageTitle: title, PageDescription: description, Collection: c}
}

func TestRenderPostEscapesFields(t *testing.T) {
	_, c := newTestCollection(t, SkipInvalid)
	p := &post{
		Slug:        "x",
		Title:       "<script>alert(1)</script>",
		Description: `Say "hi" & <b>leave</b>`,
		Date:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Tags:        []tag{"<i>tag</i>"},
	}
	prev := &post{Slug: "w", Title: "<b>Older</b>"}

	var b bytes.Buffer
	err := testEngine(t, "").renderPost(&b, postTemplateParam{
		templateParam: testParam(c, p.Title, p.Description),
		Post:          p,
		RenderedBody:  template.HTML("<p class=\"lead\">Body</p>"),
		Prev:          prev,
	})
	require.NoError(t, err)

	out := b.String()
	assert.NotContains(t, out, "<script>alert(1)")
	assert.Contains(t, out, "&lt;script&gt;alert(1)&lt;/script&gt;")
	assert.NotContains(t, out, "<b>leave</b>")
	assert.Contains(t, out, "&amp; &lt;b&gt;leave&lt;/b&gt;")
	assert.NotContains(t, out, "<i>tag</i>")
	assert.NotContains(t, out, "<b>Older</b>")
	assert.Contains(t, out, `<p class="lead">Body</p>`)
}

func TestRenderPostNavigation(t *testing.T) {
	_, c := newTestCollection(t, SkipInvalid)
	p := &post{Slug: "b", Title: "Post B", Date: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), Tags: []tag{"FSE"}}
	engine := testEngine(t, "")

	render := func(prev, next *post) string {
		var b bytes.Buffer
		require.NoError(t, engine.renderPost(&b, postTemplateParam{
			templateParam: testParam(c, p.Title, ""),
			Post:          p,
			Prev:          prev,
			Next:          next,
		}))
		return b.String()
	}

	both := render(&post{Slug: "a", Title: "Post A"}, &post{Slug: "c", Title: "Post C"})
	assert.Contains(t, both, `href="a.html" class="devblog-nav-link prev"`)
	assert.Contains(t, both, `href="c.html" class="devblog-nav-link next"`)
	assert.NotContains(t, both, "disabled")

	neither := render(nil, nil)
	assert.Contains(t, neither, `class="devblog-nav-link prev disabled"`)
	assert.Contains(t, neither, "No previous devblog")
	assert.Contains(t, neither, `class="devblog-nav-link next disabled"`)
	assert.Contains(t, neither, "Coming soon...")
	assert.Contains(t, neither, "February 1, 2024")
	assert.Contains(t, neither, `<span class="devblog-tag">FSE</span>`)
	assert.Contains(t, neither, "Back to Devblogs")
}

func TestRenderCardsAndOptions(t *testing.T) {
	_, c := newTestCollection(t, SkipInvalid)
	engine := testEngine(t, "")
	ps := posts{
		{Slug: "new", Title: "New & shiny", Excerpt: "E1", Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Tags: []tag{"VEX", "FSE"}},
		{Slug: "old", Title: "Old", Excerpt: "E2", Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Tags: []tag{"FSE"}},
	}

	cards, err := engine.renderCards(testParam(c, "", ""), ps)
	require.NoError(t, err)
	assert.Contains(t, cards, `data-date="2024-03-01" data-tags="VEX,FSE" data-title="New &amp; shiny"`)
	assert.Contains(t, cards, `<a href="devblogs/new.html">New &amp; shiny</a>`)
	assert.Less(t, strings.Index(cards, "devblogs/new.html"), strings.Index(cards, "devblogs/old.html"))
	assert.Contains(t, cards, "\n        <!-- Devblog: new -->\n        <article class=\"devblog-card\"")
	assert.Contains(t, cards, "<!-- Devblog: old -->")

	options, err := engine.renderTagOptions("All Tags", []tag{"FSE", "VEX"})
	require.NoError(t, err)
	assert.Equal(t, "\n              <option value=\"all\">All Tags</option>"+
		"\n              <option value=\"FSE\">FSE</option>"+
		"\n              <option value=\"VEX\">VEX</option>", options)
}

func TestRenderCardsSingleTag(t *testing.T) {
	_, c := newTestCollection(t, SkipInvalid)
	c.TagField = "tag"
	cards, err := testEngine(t, "").renderCards(testParam(c, "", ""), posts{
		{Slug: "one", Title: "One", Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Tags: []tag{"Game Dev"}},
	})
	require.NoError(t, err)
	assert.Contains(t, cards, `data-tag="Game Dev"`)
	assert.NotContains(t, cards, "data-tags")
}

func TestTemplateDirOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "listing.html"), []byte(
		`{{define "card"}}[{{.Post.Slug}}]{{end}}{{define "tag-option"}}{{end}}{{define "all-tags-option"}}{{end}}`), 0o644))

	_, c := newTestCollection(t, SkipInvalid)
	cards, err := testEngine(t, dir).renderCards(testParam(c, "", ""), posts{{Slug: "a"}, {Slug: "b"}})
	require.NoError(t, err)
	assert.Equal(t, "[a]\n[b]", cards)
}

func TestCardMarkerEscapesSlug(t *testing.T) {
	_, c := newTestCollection(t, SkipInvalid)
	m := cardTemplateParam{testParam(c, "", ""), &post{Slug: "a-->b"}}
	assert.Equal(t, template.HTML("<!-- Devblog: a--&gt;b -->"), m.Marker())
}
