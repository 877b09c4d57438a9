package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"golang.org/x/net/html"
)

// Slot names of a listing document.
const (
	slotCards      = "cards"
	slotTagOptions = "tag-options"
)

// span is a half-open byte range of the listing source.
type span struct{ start, end int }

// listingDocument is a listing page split into fixed text and named slots.
// Only slot contents are ever replaced; everything else is written back
// byte for byte.
type listingDocument struct {
	path  string
	src   []byte
	slots map[string]span
}

type slotAnchor struct {
	name string
	tag  string
	id   string
}

// parseListing locates the inner content of <div id="listId"> and
// <select id="tagFilterId"> in src. A missing anchor is a
// *PatchAnchorNotFoundError.
func parseListing(path string, src []byte, listId, tagFilterId string) (*listingDocument, error) {
	anchors := []slotAnchor{
		{slotCards, "div", listId},
		{slotTagOptions, "select", tagFilterId},
	}

	doc := &listingDocument{path: path, src: src, slots: make(map[string]span, len(anchors))}
	for _, a := range anchors {
		sp, err := findElementContent(src, a.tag, a.id)
		if err != nil {
			return nil, err
		}
		if sp == nil {
			return nil, &PatchAnchorNotFoundError{Path: path, Anchor: fmt.Sprintf(`<%s id="%s">`, a.tag, a.id)}
		}
		doc.slots[a.name] = *sp
	}

	c, o := doc.slots[slotCards], doc.slots[slotTagOptions]
	if c.start < o.end && o.start < c.end {
		return nil, fmt.Errorf("listing %s: list and tag filter overlap", path)
	}
	return doc, nil
}

// findElementContent returns the span between the end of the start tag of
// the first <tagName id="id"> and the start of its matching end tag, or nil
// when there is no such element or it is never closed.
func findElementContent(src []byte, tagName, id string) (*span, error) {
	z := html.NewTokenizer(bytes.NewReader(src))

	offset, depth, start := 0, 0, -1
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if errors.Is(z.Err(), io.EOF) {
				return nil, nil
			}
			return nil, z.Err()
		}
		tokenStart := offset
		offset += len(z.Raw())

		switch tt {
		case html.StartTagToken:
			tok := z.Token()
			if tok.Data != tagName {
				continue
			}
			if start >= 0 {
				depth++
			} else if attr(tok, "id") == id {
				start, depth = offset, 1
			}
		case html.EndTagToken:
			if start < 0 {
				continue
			}
			if name, _ := z.TagName(); string(name) == tagName {
				depth--
				if depth == 0 {
					return &span{start, tokenStart}, nil
				}
			}
		}
	}
}

func attr(tok html.Token, key string) string {
	for _, a := range tok.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// render returns the document with the given slot contents. Slots missing
// from contents keep their current text.
func (d *listingDocument) render(contents map[string]string) []byte {
	type fill struct {
		span
		text string
	}
	fills := make([]fill, 0, len(d.slots))
	for name, sp := range d.slots {
		text, ok := contents[name]
		if !ok {
			text = string(d.src[sp.start:sp.end])
		}
		fills = append(fills, fill{sp, text})
	}
	slices.SortFunc(fills, func(a, b fill) int { return a.start - b.start })

	var b bytes.Buffer
	pos := 0
	for _, f := range fills {
		b.Write(d.src[pos:f.start])
		b.WriteString(f.text)
		pos = f.end
	}
	b.Write(d.src[pos:])
	return b.Bytes()
}

// updateListing rewrites the listing page with fresh cards and tag options.
// The file is left untouched when the result is identical.
func (s *Site) updateListing(engine *templateEngine) error {
	src, err := os.ReadFile(s.conf.ListingPath)
	if err != nil {
		return fmt.Errorf("read listing: %w", err)
	}

	doc, err := parseListing(s.conf.ListingPath, src, s.conf.ListId, s.conf.TagFilterId)
	if err != nil {
		return err
	}

	tp := s.templateParam(s.conf.Label, "")
	cards, err := engine.renderCards(tp, s.posts.newestFirst())
	if err != nil {
		return fmt.Errorf("render cards: %w", err)
	}
	options, err := engine.renderTagOptions(s.conf.AllTagsLabel, uniqueTags(s.posts))
	if err != nil {
		return fmt.Errorf("render tag options: %w", err)
	}

	out := doc.render(map[string]string{
		slotCards:      cards + "\n      ",
		slotTagOptions: options + "\n            ",
	})
	if bytes.Equal(out, src) {
		s.logger.Println("Listing page " + s.conf.ListingPath + " is up to date")
		return nil
	}

	if err := os.WriteFile(s.conf.ListingPath, out, os.FileMode(0664)); err != nil {
		return fmt.Errorf("write listing: %w", err)
	}
	s.logger.Println("Updated listing page " + s.conf.ListingPath)
	return nil
}
