package main

import (
	"slices"
	"strings"

	"github.com/agnivade/levenshtein"
)

type tag string

func (t tag) String() string { return string(t) }

const tagSeparator = ", "

// maxSuggestionDistance is the largest edit distance for which an invalid
// tag gets a did-you-mean hint.
const maxSuggestionDistance = 2

// parseTags splits a tag field on ", ". Labels are trimmed, empty ones are
// dropped, order and duplicates are kept.
func parseTags(value string) []tag {
	parts := strings.Split(value, tagSeparator)
	tags := make([]tag, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, tag(p))
		}
	}
	return tags
}

// tagValidator checks labels against an allow-list. An empty list accepts
// any label.
type tagValidator struct {
	allowed []string
}

func newTagValidator(allowed []string) *tagValidator {
	return &tagValidator{allowed: slices.Clone(allowed)}
}

func (v *tagValidator) validate(file string, tags []tag) error {
	if len(v.allowed) == 0 {
		return nil
	}
	for _, t := range tags {
		if slices.Contains(v.allowed, t.String()) {
			continue
		}
		return &InvalidTagError{
			File:       file,
			Tag:        t.String(),
			Allowed:    slices.Clone(v.allowed),
			Suggestion: v.suggest(t.String()),
		}
	}
	return nil
}

// suggest returns the closest allowed label, or "" if none is within
// maxSuggestionDistance. The first label at the minimum distance wins.
func (v *tagValidator) suggest(label string) string {
	closest, minDistance := "", -1
	for _, allowed := range v.allowed {
		d := levenshtein.ComputeDistance(label, allowed)
		if minDistance < 0 || d < minDistance {
			closest, minDistance = allowed, d
		}
	}
	if minDistance < 0 || minDistance > maxSuggestionDistance {
		return ""
	}
	return closest
}

// uniqueTags returns every distinct label across ps, sorted.
func uniqueTags(ps posts) []tag {
	seen := make(map[tag]struct{})
	tags := make([]tag, 0, 16)
	for _, p := range ps {
		for _, t := range p.Tags {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			tags = append(tags, t)
		}
	}
	slices.Sort(tags)
	return tags
}
