package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NormalizeText prepares text for storage and comparison:
//   - trims leading/trailing whitespace
//   - converts to lowercase
//   - compresses multiple spaces into one
//
// Diacritics, hyphens, and apostrophes are preserved.
func NormalizeText(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	return collapseSpaces(strings.ToLower(text))
}

// NormalizeKhmer prepares source-script text for hashing and dictionary
// keys: NFC composition, zero-width separators removed, a trailing
// parenthetical gloss dropped and whitespace collapsed. Case is preserved.
func NormalizeKhmer(text string) string {
	text = norm.NFC.String(text)
	text = strings.Map(func(r rune) rune {
		if isZeroWidth(r) {
			return -1
		}
		return r
	}, text)
	return collapseSpaces(StripGloss(text))
}

// StripGloss drops a trailing parenthetical gloss: "សួស្តី (Suas-dey)" -> "សួស្តី".
func StripGloss(text string) string {
	base, _ := SplitGloss(text)
	return base
}

// SplitGloss separates "Hello (Suas-dey)" into "Hello" and "Suas-dey".
// Text without a " (" separator is returned unchanged with an empty gloss.
func SplitGloss(text string) (base, gloss string) {
	i := strings.Index(text, " (")
	if i < 0 {
		return strings.TrimSpace(text), ""
	}
	base = strings.TrimSpace(text[:i])
	gloss = strings.TrimSpace(text[i+2:])
	gloss = strings.TrimSpace(strings.TrimSuffix(gloss, ")"))
	return base, gloss
}

// ContainsKhmer reports whether s holds at least one Khmer-script rune.
func ContainsKhmer(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Khmer, r) {
			return true
		}
	}
	return false
}

func isZeroWidth(r rune) bool {
	switch r {
	case '\u200b', '\u2060', '\ufeff':
		return true
	}
	return false
}

func collapseSpaces(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
