// Package slug derives URL-safe identifiers from titles and keeps them unique per table.
package slug

import (
	"regexp"
	"strings"
	"unicode"
)

// MaxLength size of the slug column
const MaxLength = 255

var (
	multiHyphen = regexp.MustCompile(`-{2,}`)
	whitespace  = regexp.MustCompile(`\s+`)
)

// Generate lowercases the title, drops everything but ASCII letters, digits,
// whitespace and hyphens, turns whitespace runs into a single hyphen and trims
// hyphens from both ends. A non-empty disambiguator is appended as "-token".
//
//	Generate("PUBG Mobile: New State!!", "")  // "pubg-mobile-new-state"
//	Generate("PUBG Mobile", "a1b2c3d4")       // "pubg-mobile-a1b2c3d4"
//
// The result never exceeds MaxLength; the base is cut to leave room for the token.
// It is empty when the title has no letters or digits.
func Generate(title, disambiguator string) string {
	var b strings.Builder
	b.Grow(len(title))
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}

	s := whitespace.ReplaceAllString(b.String(), "-")
	s = multiHyphen.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return ""
	}

	token := normalizeToken(disambiguator)
	if len(token) > MaxLength/2 {
		token = token[:MaxLength/2]
	}
	limit := MaxLength
	if token != "" {
		limit -= len(token) + 1
	}
	s = truncate(s, limit)

	if token != "" {
		s = s + "-" + token
	}
	return s
}

// truncate 잘린 끝의 하이픈 제거
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return strings.TrimRight(s[:limit], "-")
}

func normalizeToken(token string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(token) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
