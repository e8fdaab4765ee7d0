// Package audio derives deterministic filenames for spoken text and
// materializes the files through a speech synthesizer.
package audio

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/heartmarshall/khmer-content/internal/domain"
)

const (
	// Ext is the extension of every generated asset.
	Ext = ".mp3"
	// MaxLabelLength bounds the slug part of a filename.
	MaxLabelLength = 32
	// HashLength is the number of hex characters of the text digest.
	HashLength = 12

	fallbackLabel = "audio"
)

// Filename returns "<slug(label)>_<hash(text)>.mp3". The hash is taken over
// the normalized text, so cosmetic differences (a trailing gloss, zero-width
// separators, extra spaces) map to the same file.
func Filename(text, label string) string {
	return Slugify(label) + "_" + TextHash(text) + Ext
}

// TextHash returns the fixed-length hex digest of the normalized text.
func TextHash(text string) string {
	sum := xxhash.Sum64String(domain.NormalizeKhmer(text))
	return fmt.Sprintf("%016x", sum)[:HashLength]
}

// Slugify lowercases label, replaces every run of characters outside
// [a-z0-9] with a single underscore and truncates the result to
// MaxLabelLength. An empty result becomes "audio".
func Slugify(label string) string {
	label = strings.ToLower(label)

	var b strings.Builder
	b.Grow(len(label))
	pendingSep := false
	for _, r := range label {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}

	slug := b.String()
	if len(slug) > MaxLabelLength {
		slug = strings.TrimRight(slug[:MaxLabelLength], "_")
	}
	if slug == "" {
		return fallbackLabel
	}
	return slug
}
