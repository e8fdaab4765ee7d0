package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ItemType tags a lesson item and selects the shape of its payload.
type ItemType string

const (
	ItemTheory          ItemType = "theory"
	ItemVocabCard       ItemType = "vocab_card"
	ItemQuiz            ItemType = "quiz"
	ItemVisualDecoder   ItemType = "visual_decoder"
	ItemComparisonAudio ItemType = "comparison_audio"
)

func (t ItemType) String() string { return string(t) }

func (t ItemType) IsValid() bool {
	switch t {
	case ItemTheory, ItemVocabCard, ItemQuiz, ItemVisualDecoder, ItemComparisonAudio:
		return true
	}
	return false
}

// NormalizeItemType lowercases an authored type tag and maps spaces and
// hyphens to underscores, so "Vocab Card" and "vocab-card" both resolve to
// ItemVocabCard.
func NormalizeItemType(tag string) ItemType {
	tag = strings.ToLower(strings.TrimSpace(tag))
	tag = strings.NewReplacer(" ", "_", "-", "_").Replace(tag)
	return ItemType(tag)
}

// Payload is the type-specific body of a lesson item, stored as jsonb.
type Payload map[string]any

// String returns the value at key as trimmed text. Numbers are formatted
// without a trailing fraction; missing keys and nil values yield "".
func (p Payload) String(key string) string {
	return stringValue(p[key])
}

// List returns the value at key if it is a list, nil otherwise.
func (p Payload) List(key string) []any {
	switch v := p[key].(type) {
	case []any:
		return v
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out
	}
	return nil
}

// Strings returns the list at key rendered as trimmed strings.
func (p Payload) Strings(key string) []string {
	list := p.List(key)
	if list == nil {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, v := range list {
		out = append(out, stringValue(v))
	}
	return out
}

// Map returns the value at key if it is an object, nil otherwise.
func (p Payload) Map(key string) map[string]any {
	switch v := p[key].(type) {
	case map[string]any:
		return v
	case Payload:
		return v
	}
	return nil
}

// IsBlank reports whether key is missing or holds an empty value: nil, a
// whitespace-only string, or an empty list or object.
func (p Payload) IsBlank(key string) bool {
	v, ok := p[key]
	if !ok || v == nil {
		return true
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t) == ""
	case []any:
		return len(t) == 0
	case []string:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	case Payload:
		return len(t) == 0
	}
	return false
}

// Clone returns a deep copy. Nested objects and lists are copied so the
// clone can be enriched without touching the authored payload.
func (p Payload) Clone() Payload {
	if p == nil {
		return Payload{}
	}
	out := make(Payload, len(p))
	for k, v := range p {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, inner := range t {
			m[k] = cloneValue(inner)
		}
		return m
	case Payload:
		return map[string]any(t.Clone())
	case []any:
		s := make([]any, len(t))
		for i, inner := range t {
			s[i] = cloneValue(inner)
		}
		return s
	case []string:
		s := make([]any, len(t))
		for i, inner := range t {
			s[i] = inner
		}
		return s
	}
	return v
}

func stringValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// LessonItem is one displayable unit within a lesson.
type LessonItem struct {
	Type ItemType
	Data Payload
}

// LessonDefinition is the declarative source of a lesson: its metadata and
// the ordered list of items that replace whatever the store currently holds.
type LessonDefinition struct {
	ID          int
	Title       string
	Description string
	ModuleID    *int
	OrderIndex  *int
	Content     []LessonItem
}

// ChapterID returns the module the lesson belongs to. Lessons without an
// explicit module follow the id convention 101..199 -> chapter 1.
func (l LessonDefinition) ChapterID() int {
	if l.ModuleID != nil {
		return *l.ModuleID
	}
	return l.ID / 100
}
