package main

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed templates/*.html
var embeddedTemplates embed.FS

var templateFuncs = template.FuncMap{
	"upper": strings.ToUpper,
}

type templateParam struct {
	SiteTitle       string
	PageTitle       string
	PageDescription string
	Collection      *CollectionConf
}

// Item is the CSS class prefix, e.g. "devblog".
func (t templateParam) Item() string { return t.Collection.ItemName }

func (t templateParam) Multi() bool { return t.Collection.multiTag() }

type postTemplateParam struct {
	templateParam
	Post         *post
	RenderedBody template.HTML
	Prev, Next   *post
}

type cardTemplateParam struct {
	templateParam
	Post *post
}

// Marker is the comment that precedes each card, e.g. <!-- Devblog: slug -->.
// Template text comments are stripped, so it is passed in as HTML.
func (c cardTemplateParam) Marker() template.HTML {
	item := cases.Title(language.English).String(c.Item())
	return template.HTML("<!-- " + template.HTMLEscapeString(item+": "+c.Post.Slug) + " -->")
}

type templateEngine struct {
	toHtml        renderer
	templateDir   string
	templateCache map[string]*template.Template
}

func newTemplateEngine(r renderer, dir string) *templateEngine {
	return &templateEngine{
		toHtml:        r,
		templateDir:   dir,
		templateCache: make(map[string]*template.Template),
	}
}

// renderBody turns a post's markdown, already image-rewritten, into HTML
// with the first paragraph marked as the lead.
func (te *templateEngine) renderBody(body []byte) (template.HTML, error) {
	html, err := te.toHtml.render(body)
	if err != nil {
		return "", err
	}
	return template.HTML(markLeadParagraph(html)), nil
}

// renderPost writes a complete post page. Every field except RenderedBody
// is escaped by html/template.
func (te *templateEngine) renderPost(w io.Writer, p postTemplateParam) error {
	t, err := te.getTemplate("post.html")
	if err != nil {
		return err
	}
	return t.ExecuteTemplate(w, "post.html", p)
}

// renderCards renders one listing card per post, in the given order.
func (te *templateEngine) renderCards(tp templateParam, ps posts) (string, error) {
	t, err := te.getTemplate("listing.html")
	if err != nil {
		return "", err
	}

	var b bytes.Buffer
	for i, p := range ps {
		if i > 0 {
			b.WriteByte('\n')
		}
		if err := t.ExecuteTemplate(&b, "card", cardTemplateParam{tp, p}); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}

// renderTagOptions renders the "all" option followed by one option per tag.
func (te *templateEngine) renderTagOptions(allLabel string, tags []tag) (string, error) {
	t, err := te.getTemplate("listing.html")
	if err != nil {
		return "", err
	}

	var b bytes.Buffer
	if err := t.ExecuteTemplate(&b, "all-tags-option", allLabel); err != nil {
		return "", err
	}
	for _, tg := range tags {
		if err := t.ExecuteTemplate(&b, "tag-option", tg.String()); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}

func (te *templateEngine) getTemplate(filename string) (*template.Template, error) {
	if t, ok := te.templateCache[filename]; ok {
		return t, nil
	}

	t := template.New("root").Funcs(templateFuncs)
	for _, name := range []string{"global.html", filename} {
		src, err := te.readTemplate(name)
		if err != nil {
			return nil, err
		}
		if _, err := t.New(name).Parse(string(src)); err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
	}
	te.templateCache[filename] = t
	return t, nil
}

// readTemplate prefers templateDir/name and falls back to the embedded copy.
func (te *templateEngine) readTemplate(name string) ([]byte, error) {
	if te.templateDir != "" {
		src, err := os.ReadFile(filepath.Join(te.templateDir, name))
		if err == nil {
			return src, nil
		}
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read template %s: %w", name, err)
		}
	}
	return embeddedTemplates.ReadFile("templates/" + name)
}
