package domain

import (
	"strings"
	"unicode"
)

// Category is the coarse classification stored in dictionary.item_type.
type Category string

const (
	CategoryWord     Category = "word"
	CategoryPhrase   Category = "phrase"
	CategorySentence Category = "sentence"
	CategoryNumber   Category = "number"
)

func (c Category) String() string { return string(c) }

func (c Category) IsValid() bool {
	switch c {
	case CategoryWord, CategoryPhrase, CategorySentence, CategoryNumber:
		return true
	}
	return false
}

// DictionaryEntry is a deduplicated catalog record keyed by normalized Khmer text.
type DictionaryEntry struct {
	ID            int64
	Khmer         string
	English       string
	Pronunciation string
	Category      Category
	Audio         string
}

// ClassifyCategory derives the coarse category from the Khmer text and its
// English translation.
func ClassifyCategory(khmer, english string) Category {
	khmer = NormalizeKhmer(khmer)
	english = strings.TrimSpace(english)

	if isNumeral(khmer) || isNumeral(english) {
		return CategoryNumber
	}
	if strings.ContainsAny(khmer, "។?!៖") || strings.HasSuffix(english, "?") || strings.HasSuffix(english, ".") {
		return CategorySentence
	}

	words := len(strings.Fields(english))
	switch {
	case words >= 4:
		return CategorySentence
	case words >= 2 || strings.Contains(khmer, " "):
		return CategoryPhrase
	}
	return CategoryWord
}

// isNumeral reports whether s consists only of digits (ASCII or Khmer).
func isNumeral(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
