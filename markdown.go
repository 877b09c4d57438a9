package main

import (
	"bytes"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/russross/blackfriday/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

type renderer interface {
	render(in []byte) (string, error)
}

// GFM-ish: tables, fenced code, autolinks, strikethrough, and a single
// newline is a hard break.
const extensions = blackfriday.CommonExtensions | blackfriday.HardLineBreak

func newMarkdownRenderer(engine string) (renderer, error) {
	switch engine {
	case "", engineBlackfriday:
		params := blackfriday.HTMLRendererParameters{Flags: blackfriday.UseXHTML}
		return &blackfridayHtmlRenderer{params, extensions}, nil
	case engineGoldmark:
		md := goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(
				gmhtml.WithHardWraps(),
				gmhtml.WithXHTML(),
				gmhtml.WithUnsafe(),
			),
		)
		return &goldmarkHtmlRenderer{md}, nil
	}
	return nil, fmt.Errorf("unknown markdown engine %q", engine)
}

type blackfridayHtmlRenderer struct {
	params     blackfriday.HTMLRendererParameters
	extensions blackfriday.Extensions
}

// The HTML renderer tracks heading ids, so each post gets a fresh one.
func (b *blackfridayHtmlRenderer) render(in []byte) (string, error) {
	r := blackfriday.NewHTMLRenderer(b.params)
	out := blackfriday.Run(in, blackfriday.WithRenderer(r), blackfriday.WithExtensions(b.extensions))
	return string(out), nil
}

type goldmarkHtmlRenderer struct {
	md goldmark.Markdown
}

func (g *goldmarkHtmlRenderer) render(in []byte) (string, error) {
	var buf bytes.Buffer
	if err := g.md.Convert(in, &buf); err != nil {
		return "", fmt.Errorf("markdown: %w", err)
	}
	return buf.String(), nil
}

// markLeadParagraph gives the first <p> the lead class.
func markLeadParagraph(html string) string {
	i := strings.Index(html, "<p>")
	if i < 0 || !strings.Contains(html[i:], "</p>") {
		return html
	}
	return html[:i] + `<p class="lead">` + html[i+len("<p>"):]
}

var imageRegexp = regexp.MustCompile(`!\[([^\]]*)\]\(([^)]+)\)`)

// A link title is a quoted suffix. Anything else is part of the path.
var imageTitleRegexp = regexp.MustCompile(`^(.+?)\s+("[^"]*"|'[^']*')$`)

// imageRef is a local image referenced from a post body.
type imageRef struct {
	// As written in the markdown, relative to the source directory.
	Source string
	// Base name, used under the per-post asset directory.
	Filename string
}

// rewriteImages points every local image reference at
// <baseUrl>/<slug>/<filename> and returns the rewritten body together with
// the images to copy. Absolute URLs are left alone.
func rewriteImages(body []byte, slug, baseUrl string) ([]byte, []imageRef) {
	var refs []imageRef
	out := imageRegexp.ReplaceAllFunc(body, func(m []byte) []byte {
		sub := imageRegexp.FindSubmatch(m)
		alt, target := string(sub[1]), strings.TrimSpace(string(sub[2]))

		src, title := target, ""
		if tm := imageTitleRegexp.FindStringSubmatch(target); tm != nil {
			src, title = tm[1], target[len(tm[1]):]
		}
		if src == "" || isAbsoluteUrl(src) {
			return m
		}

		filename := path.Base(strings.ReplaceAll(src, `\`, "/"))
		refs = append(refs, imageRef{Source: src, Filename: filename})

		dest := slug + "/" + filename
		if baseUrl != "" {
			dest = baseUrl + "/" + dest
		}
		return []byte("![" + alt + "](" + dest + title + ")")
	})
	return out, refs
}

func isAbsoluteUrl(s string) bool {
	if strings.HasPrefix(s, "//") {
		return true
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	// A single letter is a Windows drive, not a scheme.
	return len(u.Scheme) > 1
}
