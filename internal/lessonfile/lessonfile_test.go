package lessonfile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/khmer-content/internal/domain"
)

func intPtr(n int) *int { return &n }

func TestLoad_SingleLessonJSON(t *testing.T) {
	t.Parallel()

	f, err := Load("testdata/lesson.json", Meta{})

	require.NoError(t, err)
	assert.Equal(t, ShapeLesson, f.Shape)
	require.Len(t, f.Lessons, 1)

	l := f.Lessons[0]
	assert.Equal(t, 101, l.ID)
	assert.Equal(t, "Greetings", l.Title)
	assert.Equal(t, "First words", l.Description)
	require.NotNil(t, l.ModuleID)
	assert.Equal(t, 1, *l.ModuleID)
	require.NotNil(t, l.OrderIndex)
	assert.Equal(t, 0, *l.OrderIndex)

	require.Len(t, l.Content, 2)
	assert.Equal(t, domain.ItemVocabCard, l.Content[0].Type)
	assert.Equal(t, "សួស្តី", l.Content[0].Data.String("back"))
	assert.Equal(t, domain.ItemVisualDecoder, l.Content[1].Type, "type tag normalized")
	assert.Equal(t, 1, l.Content[1].Data["letter_series"])
}

func TestLoad_MetaOverridesLesson(t *testing.T) {
	t.Parallel()

	f, err := Load("testdata/lesson.json", Meta{Title: "Hello again", ModuleID: intPtr(3)})

	require.NoError(t, err)
	assert.Equal(t, 101, f.Lessons[0].ID)
	assert.Equal(t, "Hello again", f.Lessons[0].Title)
	assert.Equal(t, 3, *f.Lessons[0].ModuleID)
}

func TestLoad_ChapterYAML(t *testing.T) {
	t.Parallel()

	f, err := Load("testdata/chapter.yaml", Meta{})

	require.NoError(t, err)
	assert.Equal(t, ShapeChapter, f.Shape)
	require.Len(t, f.Lessons, 2)
	assert.Equal(t, 101, f.Lessons[0].ID, "lessons sorted by id")
	assert.Equal(t, "First words", f.Lessons[0].Description)
	assert.Equal(t, 102, f.Lessons[1].ID)
	assert.Nil(t, f.Lessons[1].ModuleID)

	quiz := f.Lessons[1].Content[0]
	assert.Equal(t, domain.ItemQuiz, quiz.Type)
	assert.Equal(t, []string{"អរគុណ", "Soum Toh"}, quiz.Data.Strings("options"))

	byID := f.ByID()
	assert.Equal(t, "Thanks", byID[102].Title)
}

func TestLoad_BareItems(t *testing.T) {
	t.Parallel()

	f, err := Load("testdata/items.json", Meta{LessonID: 150, Title: "Water", Description: "Drinks", OrderIndex: intPtr(4)})

	require.NoError(t, err)
	assert.Equal(t, ShapeItems, f.Shape)
	require.Len(t, f.Lessons, 1)
	l := f.Lessons[0]
	assert.Equal(t, 150, l.ID)
	assert.Equal(t, 4, *l.OrderIndex)
	require.Len(t, l.Content, 2)
	assert.Equal(t, domain.ItemVocabCard, l.Content[1].Type)
}

func TestLoad_BareItemsNeedMeta(t *testing.T) {
	t.Parallel()

	_, err := Load("testdata/items.json", Meta{})

	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestLoad_TOML(t *testing.T) {
	t.Parallel()

	f, err := Load("testdata/lesson.toml", Meta{})

	require.NoError(t, err)
	require.Len(t, f.Lessons, 1)
	l := f.Lessons[0]
	assert.Equal(t, 201, l.ID)
	assert.Equal(t, 2, *l.ModuleID)
	require.Len(t, l.Content, 1)
	assert.Equal(t, "មួយ", l.Content[0].Data.String("back"))
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
		return p
	}

	tests := []struct {
		name string
		path string
	}{
		{"unknown extension", write("lesson.txt", "{}")},
		{"malformed json", write("broken.json", "{")},
		{"scalar root", write("scalar.json", `"hello"`)},
		{"lesson without id", write("noid.json", `{"title": "x", "content": []}`)},
		{"content not a list", write("badcontent.json", `{"id": 1, "content": "x"}`)},
		{"chapter key not an id", write("badkey.yaml", "intro:\n  title: x\n")},
		{"item not an object", write("baditem.json", `{"id": 1, "content": ["x"]}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path, Meta{})
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "nope.json"), Meta{})

	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestDecode_JSONNumbers(t *testing.T) {
	t.Parallel()

	f, err := Decode([]byte(`{"id": "105", "title": "t", "content": [{"type": "quiz", "data": {"score": 1.5, "n": 2}}]}`), FormatJSON, Meta{})

	require.NoError(t, err)
	assert.Equal(t, 105, f.Lessons[0].ID)
	data := f.Lessons[0].Content[0].Data
	assert.Equal(t, 1.5, data["score"])
	assert.Equal(t, 2, data["n"])
}
