// Package slug builds URL-safe identifiers from article titles, used for
// deduplicating stored raw-text analyses.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonAlnum     = regexp.MustCompile(`[^a-z0-9-]+`)
	multiHyphen  = regexp.MustCompile(`-+`)
	maxSlugChars = 100
)

// Generate creates a URL-friendly slug: lowercase, accents stripped, runs of
// non-alphanumerics collapsed to single hyphens, capped at 100 characters.
func Generate(s string) string {
	if s == "" {
		return ""
	}
	s = transliterate(strings.ToLower(s))
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "_", "-")
	s = nonAlnum.ReplaceAllString(s, "")
	s = multiHyphen.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > maxSlugChars {
		s = strings.TrimRight(s[:maxSlugChars], "-")
	}
	return s
}

// GenerateWithFallback returns Generate(s), or Generate(fallback) when the
// input slugs to nothing (all-punctuation titles, empty strings).
func GenerateWithFallback(s, fallback string) string {
	if out := Generate(s); out != "" {
		return out
	}
	return Generate(fallback)
}

// transliterate strips diacritics by decomposing to NFD, dropping nonspacing
// marks and recomposing.
func transliterate(s string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn), norm.NFC)
	out, _, _ := transform.String(t, s)
	return out
}

func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}
