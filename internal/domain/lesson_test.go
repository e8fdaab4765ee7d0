package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeItemType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  ItemType
		valid bool
	}{
		{"vocab_card", ItemVocabCard, true},
		{"Vocab Card", ItemVocabCard, true},
		{"visual-decoder", ItemVisualDecoder, true},
		{"  QUIZ ", ItemQuiz, true},
		{"comparison audio", ItemComparisonAudio, true},
		{"theory", ItemTheory, true},
		{"flashcard", ItemType("flashcard"), false},
		{"", ItemType(""), false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			got := NormalizeItemType(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.valid, got.IsValid())
		})
	}
}

func TestPayload_String(t *testing.T) {
	t.Parallel()

	p := Payload{
		"text":   "  hello ",
		"int":    float64(3),
		"frac":   1.5,
		"nil":    nil,
		"bool":   true,
		"nested": map[string]any{"a": 1},
	}

	assert.Equal(t, "hello", p.String("text"))
	assert.Equal(t, "3", p.String("int"))
	assert.Equal(t, "1.5", p.String("frac"))
	assert.Equal(t, "", p.String("nil"))
	assert.Equal(t, "", p.String("missing"))
	assert.Equal(t, "true", p.String("bool"))
	assert.Equal(t, `{"a":1}`, p.String("nested"))
}

func TestPayload_IsBlank(t *testing.T) {
	t.Parallel()

	p := Payload{
		"empty":     "",
		"spaces":    "   ",
		"text":      "x",
		"emptyList": []any{},
		"list":      []any{"a"},
		"emptyMap":  map[string]any{},
		"zero":      float64(0),
		"nil":       nil,
	}

	tests := map[string]bool{
		"empty":     true,
		"spaces":    true,
		"text":      false,
		"emptyList": true,
		"list":      false,
		"emptyMap":  true,
		"zero":      false,
		"nil":       true,
		"missing":   true,
	}
	for key, want := range tests {
		assert.Equal(t, want, p.IsBlank(key), key)
	}
}

func TestPayload_Strings(t *testing.T) {
	t.Parallel()

	p := Payload{"options": []any{"Arkun", " Soum Toh ", float64(2)}}
	assert.Equal(t, []string{"Arkun", "Soum Toh", "2"}, p.Strings("options"))
	assert.Nil(t, p.Strings("missing"))

	typed := Payload{"options": []string{"a", "b"}}
	assert.Equal(t, []string{"a", "b"}, typed.Strings("options"))
}

func TestPayload_CloneIsDeep(t *testing.T) {
	t.Parallel()

	orig := Payload{
		"options":          []any{"a", "b"},
		"options_metadata": map[string]any{"a": map[string]any{"audio": "a.mp3"}},
		"front":            "Hello",
	}

	clone := orig.Clone()
	clone["front"] = "changed"
	clone.List("options")[0] = "z"
	clone.Map("options_metadata")["a"].(map[string]any)["audio"] = "z.mp3"

	assert.Equal(t, "Hello", orig["front"])
	assert.Equal(t, "a", orig.List("options")[0])
	assert.Equal(t, "a.mp3", orig.Map("options_metadata")["a"].(map[string]any)["audio"])
}

func TestPayload_CloneNil(t *testing.T) {
	t.Parallel()

	var p Payload
	clone := p.Clone()
	require.NotNil(t, clone)
	assert.Empty(t, clone)
}

func TestLessonDefinition_ChapterID(t *testing.T) {
	t.Parallel()

	module := 7
	assert.Equal(t, 7, LessonDefinition{ID: 101, ModuleID: &module}.ChapterID())
	assert.Equal(t, 1, LessonDefinition{ID: 101}.ChapterID())
	assert.Equal(t, 12, LessonDefinition{ID: 1203}.ChapterID())
}
