package main

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// findPostFiles lists the files directly inside dir that end in
// fileExtension, in lexical order. A missing dir has no files.
func findPostFiles(dir, fileExtension string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if strings.HasSuffix(e.Name(), fileExtension) {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	slices.Sort(files)
	return files, nil
}

// Accepted date layouts, tried in order.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseDate(value string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, value); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}

// requiredFields is the order in which missing fields are reported.
var requiredFields = []string{"slug", "title", "description", "date", "tags", "excerpt"}

type headerFields struct {
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Tags        string `json:"tags"`
	Excerpt     string `json:"excerpt"`
}

func readPostFromFile(path string, conf *CollectionConf, tags *tagValidator) (*post, error) {
	fileContent, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parsePost(filepath.Base(path), fileContent, conf, tags)
}

// parsePost splits source into its header block and body and validates the
// header. Validation failures match errValidation.
func parsePost(file string, source []byte, conf *CollectionConf, tags *tagValidator) (*post, error) {
	var header map[string]any
	body, err := frontmatter.Parse(bytes.NewReader(source), &header)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: parse frontmatter: %v", errValidation, file, err)
	}

	labels := tagValues(header[conf.TagField], conf.multiTag())
	fields := headerFields{
		Slug:        headerString(header["slug"]),
		Title:       headerString(header["title"]),
		Description: headerString(header["description"]),
		Date:        headerString(header["date"]),
		Excerpt:     headerString(header["excerpt"]),
	}
	if len(labels) > 0 {
		fields.Tags = labels[0].String()
	}

	if err := checkRequired(file, &fields, conf.TagField); err != nil {
		return nil, err
	}

	if strings.ContainsAny(fields.Slug, `/\`) || fields.Slug == "." || fields.Slug == ".." {
		return nil, &InvalidSlugError{File: file, Slug: fields.Slug}
	}

	date, ok := headerTime(header["date"])
	if !ok {
		if date, ok = parseDate(fields.Date); !ok {
			return nil, &InvalidDateError{File: file, Value: fields.Date}
		}
	}

	if err := tags.validate(file, labels); err != nil {
		return nil, err
	}

	return &post{
		Slug:        fields.Slug,
		Title:       fields.Title,
		Description: fields.Description,
		Excerpt:     fields.Excerpt,
		Date:        date,
		Tags:        labels,
		File:        file,
		Body:        body,
	}, nil
}

// checkRequired reports the first empty field in requiredFields order.
func checkRequired(file string, f *headerFields, tagField string) error {
	err := validation.ValidateStruct(f,
		validation.Field(&f.Slug, validation.Required),
		validation.Field(&f.Title, validation.Required),
		validation.Field(&f.Description, validation.Required),
		validation.Field(&f.Date, validation.Required),
		validation.Field(&f.Tags, validation.Required),
		validation.Field(&f.Excerpt, validation.Required),
	)
	if err == nil {
		return nil
	}

	var errs validation.Errors
	if !errors.As(err, &errs) {
		return fmt.Errorf("%w: %s: %v", errValidation, file, err)
	}
	for _, name := range requiredFields {
		if errs[name] == nil {
			continue
		}
		if name == "tags" {
			name = tagField
		}
		return &MissingFieldError{File: file, Field: name}
	}
	return fmt.Errorf("%w: %s: %v", errValidation, file, err)
}

func headerString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case time.Time:
		return x.Format(time.RFC3339)
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}

func headerTime(v any) (time.Time, bool) {
	t, ok := v.(time.Time)
	return t, ok && !t.IsZero()
}

// tagValues normalises a tag field. A multi-tag field is split on ", " or
// taken element-wise from a list; a single-tag field is one label.
func tagValues(v any, multi bool) []tag {
	var parts []string
	if list, ok := v.([]any); ok {
		for _, item := range list {
			parts = append(parts, headerString(item))
		}
	} else if s := headerString(v); s != "" {
		parts = []string{s}
	}

	if !multi {
		label := strings.TrimSpace(strings.Join(parts, tagSeparator))
		if label == "" {
			return nil
		}
		return []tag{tag(label)}
	}

	var tags []tag
	for _, p := range parts {
		tags = append(tags, parseTags(p)...)
	}
	return tags
}
