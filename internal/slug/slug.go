// Package slug derives URL-safe identifiers from human-readable names.
package slug

import (
	"regexp"
	"strings"
)

var (
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9\s-]`)
	multipleHyphens = regexp.MustCompile(`-{2,}`)
)

// Generate normalizes s into a URL-safe slug.
// Example: "One Piece: New World!" -> "one-piece-new-world".
// Names that normalize to nothing fall back to "untitled" so a slug
// is never empty.
func Generate(s string) string {
	result := strings.ToLower(strings.TrimSpace(s))
	result = nonAlphanumeric.ReplaceAllString(result, "")
	result = strings.ReplaceAll(result, " ", "-")
	result = multipleHyphens.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")
	if result == "" {
		return "untitled"
	}
	return result
}

// ForChapter builds a chapter slug from its manga's slug and chapter
// number string, replacing the decimal point so the result stays
// path-safe (e.g. "one-piece", "10.5" -> "one-piece-chapter-10-5").
func ForChapter(mangaSlug, number string) string {
	return strings.ReplaceAll(mangaSlug+"-chapter-"+number, ".", "-")
}
