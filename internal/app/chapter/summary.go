// Package chapter aggregates the lessons of one module into a study
// summary and a synthetic guidebook lesson.
package chapter

import (
	"fmt"
	"html"
	"sort"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/heartmarshall/khmer-content/internal/domain"
)

// DefaultReferenceOffset places the guidebook lesson last in its chapter:
// chapter 1 -> lesson 199.
const DefaultReferenceOffset = 99

var (
	textPolicy = bluemonday.StrictPolicy()
	// breakTags become spaces before stripping so adjacent blocks do not merge.
	breakTags = strings.NewReplacer("<br>", " ", "<br/>", " ", "<br />", " ", "</p>", " ", "</li>", " ", "</div>", " ")
)

// Note is a theory item rendered as plain text.
type Note struct {
	Title string
	Text  string
}

// Word is one vocabulary entry of the summary.
type Word struct {
	Khmer         string
	English       string
	Pronunciation string
}

// LessonSummary lists what one lesson teaches.
type LessonSummary struct {
	ID    int
	Title string
	Notes []Note
	Words []Word
}

// Summary is the derived study material of a chapter.
type Summary struct {
	ModuleID int
	Lessons  []LessonSummary
}

// PlainText strips markup from authored HTML and collapses whitespace.
func PlainText(s string) string {
	s = textPolicy.Sanitize(breakTags.Replace(s))
	return strings.Join(strings.Fields(html.UnescapeString(s)), " ")
}

// BuildSummary groups content by lesson in ascending id order, theory notes
// first and then vocabulary. A word that already appeared earlier in the
// chapter is listed only at its first occurrence. The chapter's guidebook
// lesson, at ReferenceID(moduleID, offset), repeats the other lessons and
// is left out.
func BuildSummary(moduleID, offset int, lessons map[int]domain.LessonDefinition) Summary {
	sum := Summary{ModuleID: moduleID}
	seen := make(map[string]bool)
	refID := ReferenceID(moduleID, offset)

	for _, id := range sortedIDs(lessons) {
		if id == refID {
			continue
		}
		lesson := lessons[id]
		ls := LessonSummary{ID: id, Title: lesson.Title}
		for _, item := range lesson.Content {
			switch domain.NormalizeItemType(string(item.Type)) {
			case domain.ItemTheory:
				ls.Notes = append(ls.Notes, Note{
					Title: PlainText(item.Data.String("title")),
					Text:  PlainText(item.Data.String("text")),
				})
			case domain.ItemVocabCard:
				key := domain.NormalizeKhmer(item.Data.String("back"))
				if key == "" || seen[key] {
					continue
				}
				seen[key] = true
				_, gloss := domain.SplitGloss(item.Data.String("back"))
				pron := item.Data.String("pronunciation")
				if pron == "" {
					pron = gloss
				}
				ls.Words = append(ls.Words, Word{Khmer: key, English: item.Data.String("front"), Pronunciation: pron})
			}
		}
		sum.Lessons = append(sum.Lessons, ls)
	}
	return sum
}

// WordCount returns the number of distinct words in the chapter.
func (s Summary) WordCount() int {
	n := 0
	for _, l := range s.Lessons {
		n += len(l.Words)
	}
	return n
}

// Render formats the summary as the plain text stored in study_materials.
func (s Summary) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Chapter %d summary\n", s.ModuleID)
	for _, l := range s.Lessons {
		fmt.Fprintf(&b, "\nLesson %d: %s\n", l.ID, l.Title)
		if len(l.Notes) > 0 {
			b.WriteString("  Notes\n")
			for _, n := range l.Notes {
				switch {
				case n.Title != "" && n.Text != "":
					fmt.Fprintf(&b, "  - %s: %s\n", n.Title, n.Text)
				case n.Title != "":
					fmt.Fprintf(&b, "  - %s\n", n.Title)
				default:
					fmt.Fprintf(&b, "  - %s\n", n.Text)
				}
			}
		}
		if len(l.Words) > 0 {
			b.WriteString("  Vocabulary\n")
			for _, w := range l.Words {
				if w.Pronunciation != "" {
					fmt.Fprintf(&b, "  - %s (%s): %s\n", w.Khmer, w.Pronunciation, w.English)
				} else {
					fmt.Fprintf(&b, "  - %s: %s\n", w.Khmer, w.English)
				}
			}
		}
	}
	return b.String()
}

// ReferenceID returns the guidebook lesson id of a chapter.
func ReferenceID(moduleID, offset int) int {
	return moduleID*100 + offset
}

// BuildReferenceLesson builds the guidebook lesson of a chapter: every
// theory item (deduplicated by title) followed by every vocabulary card
// (deduplicated by Khmer text). A guidebook already present in lessons is
// ignored so rebuilding it is stable.
func BuildReferenceLesson(moduleID, offset int, lessons map[int]domain.LessonDefinition) domain.LessonDefinition {
	refID := ReferenceID(moduleID, offset)
	chapter, order := moduleID, offset
	ref := domain.LessonDefinition{
		ID:          refID,
		Title:       fmt.Sprintf("Chapter %d Guidebook", moduleID),
		Description: fmt.Sprintf("Every note and word from chapter %d in one place.", moduleID),
		ModuleID:    &chapter,
		OrderIndex:  &order,
	}

	var theory, vocab []domain.LessonItem
	seenNotes := make(map[string]bool)
	seenWords := make(map[string]bool)
	for _, id := range sortedIDs(lessons) {
		if id == refID {
			continue
		}
		for _, item := range lessons[id].Content {
			switch typ := domain.NormalizeItemType(string(item.Type)); typ {
			case domain.ItemTheory:
				key := domain.NormalizeText(PlainText(item.Data.String("title")))
				if key == "" || seenNotes[key] {
					continue
				}
				seenNotes[key] = true
				theory = append(theory, domain.LessonItem{Type: typ, Data: item.Data.Clone()})
			case domain.ItemVocabCard:
				key := domain.NormalizeKhmer(item.Data.String("back"))
				if key == "" || seenWords[key] {
					continue
				}
				seenWords[key] = true
				vocab = append(vocab, domain.LessonItem{Type: typ, Data: item.Data.Clone()})
			}
		}
	}
	ref.Content = append(theory, vocab...)
	return ref
}

func sortedIDs(lessons map[int]domain.LessonDefinition) []int {
	ids := make([]int, 0, len(lessons))
	for id := range lessons {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
