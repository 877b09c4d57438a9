package main

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

type post struct {
	Slug, Title, Description, Excerpt string
	Date                              time.Time
	Tags                              []tag
	// Source file name, relative to the collection's source directory.
	File string
	Body []byte
}

// Called from templates
func (p *post) FormatDate() string {
	return formatDate(p.Date)
}

func (p *post) ISODate() string {
	return p.Date.UTC().Format("2006-01-02")
}

// Tag returns the first label, for single-tag collections.
func (p *post) Tag() string {
	if len(p.Tags) == 0 {
		return ""
	}
	return p.Tags[0].String()
}

func (p *post) JoinedTags() string {
	return strings.Join(p.tagLabels(), ",")
}

func (p *post) tagLabels() []string {
	labels := make([]string, len(p.Tags))
	for i, t := range p.Tags {
		labels[i] = t.String()
	}
	return labels
}

// String is the one-line form used in build logs.
func (p *post) String() string {
	return fmt.Sprintf("%s (%s, %s): %s", p.Slug, p.ISODate(), strings.Join(p.tagLabels(), ", "), p.Title)
}

func formatDate(d time.Time) string {
	return d.UTC().Format("January 2, 2006")
}

type posts []*post

// chronological returns a copy sorted oldest first. Equal dates keep their
// current relative order.
func (ps posts) chronological() posts {
	sorted := slices.Clone(ps)
	slices.SortStableFunc(sorted, func(a, b *post) int { return a.Date.Compare(b.Date) })
	return sorted
}

// newestFirst returns a copy sorted newest first, equal dates in their
// current relative order.
func (ps posts) newestFirst() posts {
	sorted := slices.Clone(ps)
	slices.SortStableFunc(sorted, func(a, b *post) int { return b.Date.Compare(a.Date) })
	return sorted
}

// neighbours returns the posts before and after index i, nil at either end.
func (ps posts) neighbours(i int) (prev, next *post) {
	if i > 0 {
		prev = ps[i-1]
	}
	if i < len(ps)-1 {
		next = ps[i+1]
	}
	return prev, next
}

func (ps posts) latestDate() time.Time {
	var t time.Time
	for _, p := range ps {
		if p.Date.After(t) {
			t = p.Date
		}
	}
	return t
}
