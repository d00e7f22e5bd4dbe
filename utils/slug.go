package utils

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	slugDisallowed = regexp.MustCompile(`[^a-z0-9 -]`)
	slugSpaces     = regexp.MustCompile(`\s+`)
	slugHyphens    = regexp.MustCompile(`-+`)
)

const fallbackSlug = "post"

// Slugify lower-cases title, keeps only [a-z0-9 -], turns whitespace runs
// into hyphens and collapses repeated hyphens.
func Slugify(title string) string {
	s := strings.ToLower(title)
	s = slugDisallowed.ReplaceAllString(s, "")
	s = slugSpaces.ReplaceAllString(strings.TrimSpace(s), "-")
	s = slugHyphens.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return fallbackSlug
	}
	return s
}

// UniqueSlug probes base, base-1, base-2, ... and returns the first
// candidate taken reports as free. It calls taken once per candidate.
func UniqueSlug(base string, taken func(candidate string) (bool, error)) (string, error) {
	candidate := base
	for suffix := 1; ; suffix++ {
		exists, err := taken(candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = base + "-" + strconv.Itoa(suffix)
	}
}
