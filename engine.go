// Command sitebuild turns folders of markdown posts with frontmatter into
// the post pages of a static portfolio site, and keeps each collection's
// listing page (cards plus tag filter) in sync with the posts.
//
// Each collection is read fresh on every pass: posts are validated, ordered
// by date, rendered with previous/next links, and the listing page's card
// list and tag options are replaced in place.
package main

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

type Site struct {
	site   *SiteConf
	conf   *CollectionConf
	logger *log.Logger

	// Number of source files found, valid or not.
	sources int
	// Valid posts, oldest first.
	posts   posts
	skipped []skipRecord

	renderCache map[string]string
}

type skipRecord struct {
	File string
	Err  error
}

// BuildReport summarises one pass over a collection.
type BuildReport struct {
	Collection string
	Generated  []string
	Skipped    []skipRecord
	Warnings   []error
}

// ReadSite reads and validates every post of a collection. Under
// AbortOnInvalid the first invalid post fails the whole read; under
// SkipInvalid it is recorded and left out.
func ReadSite(site *SiteConf, conf *CollectionConf, logger *log.Logger) (*Site, error) {
	if logger == nil {
		logger = log.Default()
	}

	files, err := findPostFiles(conf.SourceDir, conf.FileExtension)
	if err != nil {
		return nil, fmt.Errorf("%s: find posts: %w", conf.Name, err)
	}

	s := &Site{
		site:        site,
		conf:        conf,
		logger:      logger,
		sources:     len(files),
		posts:       make(posts, 0, len(files)),
		renderCache: make(map[string]string),
	}
	if len(files) == 0 {
		logger.Printf("No markdown files found in %s", conf.SourceDir)
		return s, nil
	}

	tags := newTagValidator(conf.AllowedTags)
	slugs := make(map[string]string, len(files))
	for _, f := range files {
		p, err := readPostFromFile(f, conf, tags)
		if err == nil {
			if first, ok := slugs[p.Slug]; ok {
				err = &DuplicateSlugError{File: p.File, Slug: p.Slug, First: first}
			}
		}
		if err != nil {
			if conf.Policy == SkipInvalid && errors.Is(err, errValidation) {
				logger.Printf("Skipping %s: %v", filepath.Base(f), err)
				s.skipped = append(s.skipped, skipRecord{File: filepath.Base(f), Err: err})
				continue
			}
			return nil, fmt.Errorf("%s: %w", conf.Name, err)
		}
		slugs[p.Slug] = p.File
		logger.Printf("  Parsed %v", p)
		s.posts = append(s.posts, p)
	}

	s.posts = s.posts.chronological()
	return s, nil
}

func (s *Site) templateParam(pageTitle, pageDescription string) templateParam {
	return templateParam{
		SiteTitle:       s.site.SiteTitle,
		PageTitle:       pageTitle,
		PageDescription: pageDescription,
		Collection:      s.conf,
	}
}

func (s *Site) RenderHtml(engine *templateEngine) (*BuildReport, error) {
	report := &BuildReport{Collection: s.conf.Name, Skipped: s.skipped}

	for _, dir := range []string{s.conf.OutDir, s.conf.AssetDir} {
		if err := os.MkdirAll(dir, os.FileMode(0775)); err != nil {
			return report, fmt.Errorf("create %s: %w", dir, err)
		}
	}

	for i, p := range s.posts {
		s.logger.Println("Processing: " + p.File)

		body, refs := rewriteImages(p.Body, p.Slug, s.conf.ImageBaseUrl)
		warnings, err := s.copyImages(p, refs)
		report.Warnings = append(report.Warnings, warnings...)
		if err != nil {
			return report, err
		}

		rendered, err := engine.renderBody(body)
		if err != nil {
			return report, fmt.Errorf("%s: %w", p.File, err)
		}

		prev, next := s.posts.neighbours(i)
		var b bytes.Buffer
		err = engine.renderPost(&b, postTemplateParam{
			templateParam: s.templateParam(p.Title, p.Description),
			Post:          p,
			RenderedBody:  rendered,
			Prev:          prev,
			Next:          next,
		})
		if err != nil {
			return report, fmt.Errorf("render %s: %w", p.File, err)
		}

		outHtmlName := filepath.Join(s.conf.OutDir, p.Slug+".html")
		if err := os.WriteFile(outHtmlName, b.Bytes(), os.FileMode(0664)); err != nil {
			return report, err
		}
		s.logger.Println("  Generated: " + outHtmlName)

		s.renderCache[p.Slug] = string(rendered)
		report.Generated = append(report.Generated, outHtmlName)
	}

	return report, s.updateListing(engine)
}

// RenderAll writes the post pages, the listing page and, when configured,
// the feed and static files.
func (s *Site) RenderAll() (*BuildReport, error) {
	if len(s.posts) == 0 {
		report := &BuildReport{Collection: s.conf.Name, Skipped: s.skipped}
		if s.sources > 0 {
			s.logger.Printf("No valid %s to process.", s.conf.Name)
			s.logSummary(report)
		}
		return report, nil
	}

	toHtml, err := newMarkdownRenderer(s.conf.MarkdownEngine)
	if err != nil {
		return nil, err
	}
	engine := newTemplateEngine(toHtml, s.site.TemplateDir)

	report, err := s.RenderHtml(engine)
	if err != nil {
		return report, err
	}
	if err := s.RenderAtom(); err != nil {
		return report, err
	}
	if err := s.CopyStaticFiles(); err != nil {
		return report, err
	}

	s.logSummary(report)
	return report, nil
}

func (s *Site) logSummary(r *BuildReport) {
	s.logger.Printf("Build complete! Generated %d %s(s).", len(r.Generated), s.conf.ItemName)
	if len(r.Skipped) > 0 {
		s.logger.Println("Skipped files due to errors:")
		for _, sk := range r.Skipped {
			s.logger.Printf("- %s: %v", sk.File, sk.Err)
		}
	}
}

// buildCollection runs one full pass over a collection.
func buildCollection(site *SiteConf, conf *CollectionConf, logger *log.Logger) (*BuildReport, error) {
	if logger == nil {
		logger = log.Default()
	}
	logger.Printf("Building %s...", conf.Name)

	s, err := ReadSite(site, conf, logger)
	if err != nil {
		return nil, err
	}
	return s.RenderAll()
}
