package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/otiai10/copy"
)

// copyImages copies the images referenced by a post into
// <assetDir>/<slug>/. A missing source is returned as an
// *ImageNotFoundError warning; any other failure is an error.
func (s *Site) copyImages(p *post, refs []imageRef) (warnings []error, err error) {
	if len(refs) == 0 {
		return nil, nil
	}

	destDir := filepath.Join(s.conf.AssetDir, p.Slug)
	for _, ref := range refs {
		src := filepath.Join(s.conf.SourceDir, filepath.FromSlash(ref.Source))
		srcInfo, statErr := os.Stat(src)
		if statErr != nil || srcInfo.IsDir() {
			w := &ImageNotFoundError{Slug: p.Slug, Path: src}
			s.logger.Printf("  Warning: %v", w)
			warnings = append(warnings, w)
			continue
		}

		dest := filepath.Join(destDir, ref.Filename)
		if sameFile(srcInfo, dest) {
			continue
		}

		if err := os.MkdirAll(destDir, os.FileMode(0775)); err != nil {
			return warnings, fmt.Errorf("create image directory: %w", err)
		}
		// Keeping the source mtime makes the next pass see the copy as
		// up to date.
		if err := copy.Copy(src, dest, copy.Options{PreserveTimes: true}); err != nil {
			return warnings, fmt.Errorf("copy image %s: %w", src, err)
		}
		s.logger.Printf("  Copied image: %s -> %s", ref.Source, dest)
	}
	return warnings, nil
}

// sameFile reports whether dest is an earlier copy of the file described by
// srcInfo, or the file itself.
func sameFile(srcInfo os.FileInfo, dest string) bool {
	destInfo, err := os.Stat(dest)
	if err != nil {
		return false
	}
	if os.SameFile(srcInfo, destInfo) {
		return true
	}
	return destInfo.Size() == srcInfo.Size() && destInfo.ModTime().Equal(srcInfo.ModTime())
}

// CopyStaticFiles copies the collection's static directory, if any, into
// its output directory.
func (s *Site) CopyStaticFiles() error {
	srcDir := s.conf.StaticDir
	if srcDir == "" {
		return nil
	}
	dest := filepath.Join(s.conf.OutDir, filepath.Base(srcDir))
	s.logger.Println("Recursively copying", srcDir, "to", dest)
	return copy.Copy(srcDir, dest)
}
