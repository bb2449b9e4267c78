// Package normalizer prepares spoken transcripts and expected phrases for comparison.
package normalizer

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// apostrophes maps apostrophe variants produced by keyboards and
// recognizers to the ASCII apostrophe.
var apostrophes = map[rune]rune{
	'’': '\'', // right single quotation mark
	'‘': '\'', // left single quotation mark
	'ʼ': '\'', // modifier letter apostrophe
	'`': '\'', // grave accent
	'´': '\'', // acute accent
}

// charMap maps letters that do not decompose to an ASCII base.
var charMap = map[rune]string{
	'ß': "ss",
	'æ': "ae",
	'œ': "oe",
	'ø': "o",
	'ł': "l",
	'đ': "d",
}

var lower = cases.Lower(language.Und)

// IsLogographic reports whether r falls in the CJK unified ideograph block
// that the matcher keeps.
func IsLogographic(r rune) bool {
	return r >= 0x4E00 && r <= 0x9FFF
}

// FoldChar folds a single character to its ASCII base letter when it has
// one (ó -> o, ñ -> n). Other characters are returned lowercased.
func FoldChar(r rune) string {
	if r < 128 {
		return string(unicode.ToLower(r))
	}
	if s, ok := charMap[unicode.ToLower(r)]; ok {
		return s
	}
	if IsLogographic(r) {
		return string(r)
	}

	decomposed := norm.NFD.String(string(r))
	var result strings.Builder
	for _, c := range decomposed {
		if unicode.Is(unicode.Mn, c) {
			continue
		}
		if c < 128 {
			result.WriteRune(unicode.ToLower(c))
		}
	}
	if result.Len() > 0 {
		return result.String()
	}
	return string(unicode.ToLower(r))
}

// keep reports whether a folded rune survives punctuation stripping.
func keep(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == '\'' || r == ' ':
		return true
	}
	return IsLogographic(r)
}

// Normalize lowercases s, unifies apostrophes, drops ellipses, turns
// non-breaking spaces into spaces, folds accents, strips everything but
// letters, digits, logographic characters, spaces and apostrophes, then
// collapses whitespace.
func Normalize(s string) string {
	s = norm.NFC.String(s)
	s = lower.String(s)
	s = strings.ReplaceAll(s, "…", "")
	s = strings.ReplaceAll(s, "...", "")

	var result strings.Builder
	result.Grow(len(s))

	for _, r := range s {
		if a, ok := apostrophes[r]; ok {
			r = a
		}
		if unicode.IsSpace(r) {
			result.WriteRune(' ')
			continue
		}
		for _, c := range FoldChar(r) {
			if keep(c) {
				result.WriteRune(c)
			}
		}
	}

	return strings.Join(strings.Fields(result.String()), " ")
}

// CleanDisplay unifies apostrophes and drops ellipses without touching case
// or punctuation. It is used before deriving pronunciation hints.
func CleanDisplay(s string) string {
	s = strings.ReplaceAll(s, "…", "")
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if a, ok := apostrophes[r]; ok {
			return a
		}
		if r == '\u00a0' {
			return ' '
		}
		return r
	}, s))
}
