package search

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	parenthesizedRe = regexp.MustCompile(`\([^)]*\)`)
	subtitleRe      = regexp.MustCompile(`(?s)[:\-–].*$`)
	nonAlnumRe      = regexp.MustCompile(`[^\p{L}\p{N}]+`)
)

// NormalizeTitle canonicalizes a title for duplicate detection. Edition
// annotations in parentheses and subtitles after ':', '-' or '–' are dropped,
// accents are folded and punctuation collapses to single spaces.
//
// Two titles are duplicates iff their normalized forms are equal and non-empty.
func NormalizeTitle(title string) string {
	s := foldAccents(strings.ToLower(title))
	s = parenthesizedRe.ReplaceAllString(s, "")
	s = subtitleRe.ReplaceAllString(s, "")
	s = nonAlnumRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// titleSet tracks normalized titles seen during one collection pass.
type titleSet map[string]struct{}

// admit reports whether a title should be kept and records its key.
// Titles that normalize to "" are always admitted and never recorded.
func (s titleSet) admit(title string) bool {
	key := NormalizeTitle(title)
	if key == "" {
		return true
	}
	if _, ok := s[key]; ok {
		return false
	}
	s[key] = struct{}{}
	return true
}
