// Package validator checks authored lesson content before anything is
// written. It is pure: no I/O, no side effects.
package validator

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/heartmarshall/khmer-content/internal/domain"
)

// requiredFields lists the payload fields each item type must carry.
var requiredFields = map[domain.ItemType][]string{
	domain.ItemTheory:          {"title", "text"},
	domain.ItemVocabCard:       {"front", "back"},
	domain.ItemQuiz:            {"question", "options", "correct_answer"},
	domain.ItemVisualDecoder:   {"word", "target_char", "hint", "english_translation", "letter_series"},
	domain.ItemComparisonAudio: {"pairs"},
}

// Finding is one error or warning. Item is -1 for lesson-level findings.
type Finding struct {
	Source   string
	LessonID int
	Item     int
	Type     string
	Message  string
}

func (f Finding) String() string {
	if f.Item < 0 {
		return fmt.Sprintf("[%s] Lesson %d: %s", f.Source, f.LessonID, f.Message)
	}
	return fmt.Sprintf("[%s] Lesson %d item %d (%s): %s", f.Source, f.LessonID, f.Item, f.Type, f.Message)
}

// Report holds blocking errors and non-blocking warnings.
type Report struct {
	Errors   []Finding
	Warnings []Finding
}

// HasErrors reports whether any blocking finding was recorded.
func (r Report) HasErrors() bool { return len(r.Errors) > 0 }

// Merge appends the findings of other.
func (r *Report) Merge(other Report) {
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
}

// Validate checks every lesson, visiting them in ascending id order so the
// report is stable.
func Validate(source string, lessons map[int]domain.LessonDefinition) Report {
	ids := make([]int, 0, len(lessons))
	for id := range lessons {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	var r Report
	for _, id := range ids {
		validateLesson(&r, source, id, lessons[id])
	}
	return r
}

// ValidateList is Validate for lessons that are already ordered.
func ValidateList(source string, lessons []domain.LessonDefinition) Report {
	m := make(map[int]domain.LessonDefinition, len(lessons))
	var r Report
	for _, l := range lessons {
		if _, dup := m[l.ID]; dup {
			r.Errors = append(r.Errors, Finding{Source: source, LessonID: l.ID, Item: -1, Message: "duplicate lesson id."})
			continue
		}
		m[l.ID] = l
	}
	r.Merge(Validate(source, m))
	return r
}

func validateLesson(r *Report, source string, id int, lesson domain.LessonDefinition) {
	lessonFinding := func(msg string) Finding {
		return Finding{Source: source, LessonID: id, Item: -1, Message: msg}
	}

	if strings.TrimSpace(lesson.Title) == "" {
		r.Errors = append(r.Errors, lessonFinding("missing title."))
	}
	if strings.TrimSpace(lesson.Description) == "" {
		r.Warnings = append(r.Warnings, lessonFinding("missing description."))
	}
	if len(lesson.Content) == 0 {
		r.Warnings = append(r.Warnings, lessonFinding("lesson has no items."))
		return
	}

	for idx, item := range lesson.Content {
		validateItem(r, source, id, idx, item)
	}
}

func validateItem(r *Report, source string, lessonID, idx int, item domain.LessonItem) {
	typ := domain.NormalizeItemType(string(item.Type))
	finding := func(msg string) Finding {
		return Finding{Source: source, LessonID: lessonID, Item: idx, Type: string(typ), Message: msg}
	}
	errorf := func(format string, args ...any) {
		r.Errors = append(r.Errors, finding(fmt.Sprintf(format, args...)))
	}
	warnf := func(format string, args ...any) {
		r.Warnings = append(r.Warnings, finding(fmt.Sprintf(format, args...)))
	}

	if !typ.IsValid() {
		errorf("unsupported type '%s'.", item.Type)
		return
	}

	data := item.Data
	if data == nil {
		data = domain.Payload{}
	}

	for _, field := range requiredFields[typ] {
		if data.IsBlank(field) {
			errorf("missing '%s'.", field)
		}
	}

	switch typ {
	case domain.ItemVocabCard:
		if data.IsBlank("pronunciation") {
			warnf("pronunciation is missing.")
		}
		if data.IsBlank("dictionary_id") && data.IsBlank("audio") {
			warnf("missing dictionary_id/audio reference.")
		}

	case domain.ItemQuiz:
		if data.IsBlank("options") {
			return
		}
		options := data.Strings("options")
		if len(options) < 2 {
			warnf("quiz has fewer than 2 options.")
		}
		correct := data.String("correct_answer")
		if correct != "" && !slices.Contains(options, correct) {
			errorf("correct_answer '%s' must match one of the options.", correct)
		}

	case domain.ItemVisualDecoder:
		word, target := data.String("word"), data.String("target_char")
		if word != "" && target != "" && !strings.Contains(word, target) {
			errorf("target_char '%s' is not in word '%s'.", target, word)
		}
		if data.IsBlank("char_audio_map") {
			warnf("char_audio_map is missing or empty.")
		}

	case domain.ItemComparisonAudio:
		for i, raw := range data.List("pairs") {
			pair, _ := raw.(map[string]any)
			for _, side := range []string{"left", "right"} {
				sideData, _ := pair[side].(map[string]any)
				if domain.Payload(sideData).IsBlank("text") {
					warnf("pair %d has no %s text.", i, side)
				}
			}
		}
	}
}
