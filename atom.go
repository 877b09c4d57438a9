package main

import (
	"fmt"
	"os"
	"path/filepath"

	atom "github.com/thomas11/atomgenerator"
)

// RenderAtom writes the collection's feed when a feed path is configured.
// Entries are newest first and the feed date is the newest post's, so an
// unchanged collection produces an unchanged feed.
func (s *Site) RenderAtom() error {
	if s.conf.FeedPath == "" {
		return nil
	}

	atomXml, err := s.renderFeed()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.conf.FeedPath), os.FileMode(0775)); err != nil {
		return err
	}
	if err := os.WriteFile(s.conf.FeedPath, atomXml, os.FileMode(0664)); err != nil {
		return err
	}
	s.logger.Println("  Generated: " + s.conf.FeedPath)
	return nil
}

func (s *Site) renderFeed() ([]byte, error) {
	feed := atom.Feed{
		Title:   s.site.SiteTitle + " " + s.conf.Label,
		Link:    s.site.BaseUrl + s.conf.Name + ".html",
		PubDate: s.posts.latestDate(),
	}
	feed.AddAuthor(atom.Author{
		Name: s.site.Author,
		Uri:  s.site.AuthorUri,
	})

	for _, p := range s.posts.newestFirst() {
		feed.AddEntry(s.entryForPost(p))
	}

	errs := feed.Validate()
	if len(errs) > 0 {
		s.logger.Println("Atom feed is not valid!")
		for _, e := range errs {
			s.logger.Println(e.Error())
		}
		return nil, fmt.Errorf("atom feed %s: %w", s.conf.FeedPath, errs[0])
	}

	return feed.GenXml()
}

func (s *Site) entryForPost(p *post) *atom.Entry {
	e := &atom.Entry{
		Title:       p.Title,
		Description: p.Description,
		Link:        s.site.BaseUrl + s.conf.Name + "/" + p.Slug + ".html",
		PubDate:     p.Date,
	}

	for _, t := range p.Tags {
		e.AddCategory(atom.Category{Term: t.String()})
	}

	if renderedBody, ok := s.renderCache[p.Slug]; ok {
		e.Content = renderedBody
	}

	return e
}
