package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const listingFixture = `<!DOCTYPE html>
<html lang="en">
  <body>
    <section class="devblogs container">
      <div class="devblog-controls">
        <input type="text" id="search" placeholder="Search..." />
        <select id="tag-filter">
          <option value="all">All Tags</option>
          <option value="Old">Old</option>
        </select>
        <select id="sort-order">
          <option value="newest">Newest first</option>
        </select>
      </div>

      <div class="devblog-list" id="devblog-list">
        <article class="devblog-card"><div class="devblog-meta">stale</div></article>
      </div>

      <p class="no-results" style="display: none">No devblogs found.</p>
    </section>
    <script src="js/script.js"></script>
  </body>
</html>
`

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func postSource(slug, title, date, tags, body string) string {
	return fmt.Sprintf(`---
slug: %s
title: %q
description: "About %s"
date: %s
tags: %q
excerpt: "Excerpt of %s"
---
%s
`, slug, title, slug, date, tags, slug, body)
}

// newTestCollection returns a finalized multi-tag collection rooted in a
// temporary directory, with an empty source directory and a listing page.
func newTestCollection(t *testing.T, policy Policy) (*SiteConf, *CollectionConf) {
	t.Helper()
	root := t.TempDir()

	c := &CollectionConf{
		Name:        "devblogs",
		SourceDir:   "src",
		OutDir:      "out/devblogs",
		AssetDir:    "out/assets/devblogs",
		ListingPath: "out/devblogs.html",
		TagField:    "tags",
		AllowedTags: defaultAllowedTags,
		Policy:      policy,
	}
	site := &SiteConf{
		SiteTitle:   "halfcomplete",
		BaseUrl:     "https://example.com/",
		Author:      "Tester",
		AuthorUri:   "https://example.com/about.html",
		Collections: []*CollectionConf{c},
	}
	require.NoError(t, site.finalize(root))
	require.NoError(t, os.MkdirAll(c.SourceDir, 0o755))
	writeFile(t, c.ListingPath, listingFixture)
	return site, c
}
