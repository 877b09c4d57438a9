package main

import (
	"errors"
	"fmt"
	"strings"
)

// errValidation is matched by every per-document error the build policy may
// skip. I/O errors never match it.
var errValidation = errors.New("invalid document")

type MissingFieldError struct {
	File  string
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required frontmatter field '%s' in %s", e.Field, e.File)
}

func (e *MissingFieldError) Is(target error) bool { return target == errValidation }

type InvalidTagError struct {
	File       string
	Tag        string
	Allowed    []string
	Suggestion string
}

func (e *InvalidTagError) Error() string {
	b := new(strings.Builder)
	fmt.Fprintf(b, "invalid tag '%s' in %s.", e.Tag, e.File)
	if e.Suggestion != "" {
		fmt.Fprintf(b, " Did you mean '%s'?", e.Suggestion)
	}
	b.WriteString(" Allowed tags: ")
	b.WriteString(strings.Join(e.Allowed, ", "))
	return b.String()
}

func (e *InvalidTagError) Is(target error) bool { return target == errValidation }

type InvalidDateError struct {
	File  string
	Value string
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("invalid date %q in %s, use YYYY-MM-DD or RFC 3339", e.Value, e.File)
}

func (e *InvalidDateError) Is(target error) bool { return target == errValidation }

type DuplicateSlugError struct {
	File  string
	Slug  string
	First string
}

func (e *DuplicateSlugError) Error() string {
	return fmt.Sprintf("duplicate slug '%s' in %s, already used by %s", e.Slug, e.File, e.First)
}

func (e *DuplicateSlugError) Is(target error) bool { return target == errValidation }

// ImageNotFoundError is a warning. It never fails a build.
type ImageNotFoundError struct {
	Slug string
	Path string
}

func (e *ImageNotFoundError) Error() string {
	return fmt.Sprintf("image not found: %s (referenced by %s)", e.Path, e.Slug)
}

type PatchAnchorNotFoundError struct {
	Path   string
	Anchor string
}

func (e *PatchAnchorNotFoundError) Error() string {
	return fmt.Sprintf("listing %s: anchor %s not found", e.Path, e.Anchor)
}

type InvalidSlugError struct {
	File string
	Slug string
}

func (e *InvalidSlugError) Error() string {
	return fmt.Sprintf("slug '%s' in %s cannot be used as a file name", e.Slug, e.File)
}

func (e *InvalidSlugError) Is(target error) bool { return target == errValidation }
