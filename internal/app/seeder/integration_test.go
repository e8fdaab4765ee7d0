package seeder_test

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/khmer-content/internal/adapter/postgres"
	"github.com/heartmarshall/khmer-content/internal/adapter/postgres/testhelper"
	"github.com/heartmarshall/khmer-content/internal/app/seeder"
	"github.com/heartmarshall/khmer-content/internal/audio"
	"github.com/heartmarshall/khmer-content/internal/domain"
)

type staticSynth struct{}

func (staticSynth) Synthesize(_ context.Context, text string, _ audio.Voice) ([]byte, error) {
	return []byte("ID3" + text), nil
}

func TestSeedLesson_Postgres_IdempotentWithProgress(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	lessonID, itemIDs := testhelper.SeedLesson(t, pool, 2)
	testhelper.SeedProgress(t, pool, itemIDs[0])

	mat := audio.NewMaterializer(logger, staticSynth{}, audio.Options{Dir: filepath.Join(t.TempDir(), "sounds")})
	s := seeder.New(logger, postgres.NewStore(pool, logger), mat, nil, seeder.Config{})

	def := domain.LessonDefinition{
		ID:          lessonID,
		Title:       "Water",
		Description: "Drinks",
		Content: []domain.LessonItem{
			{Type: domain.ItemTheory, Data: domain.Payload{"title": "Intro", "text": "Water is tuk."}},
			{Type: domain.ItemVocabCard, Data: domain.Payload{"front": "Cold water", "back": "ទឹកត្រជាក់", "pronunciation": "Tuk trocheak"}},
		},
	}

	for run := 0; run < 2; run++ {
		res, err := s.SeedLesson(ctx, def)
		require.NoError(t, err, "run %d", run)
		assert.Equal(t, 2, res.Inserted)
		assert.Zero(t, res.Failed)
	}

	assert.Equal(t, 2, testhelper.CountRows(t, pool, `SELECT count(*) FROM lesson_items WHERE lesson_id = $1`, lessonID))
	assert.Equal(t, 1, testhelper.CountRows(t, pool, `SELECT count(*) FROM dictionary WHERE khmer = $1`, "ទឹកត្រជាក់"))
	assert.Zero(t, testhelper.CountRows(t, pool, `SELECT count(*) FROM user_srs WHERE item_id = $1`, itemIDs[0]))
	assert.Equal(t, 1, testhelper.CountRows(t, pool,
		`SELECT count(*) FROM lesson_items WHERE lesson_id = $1 AND order_index = 1 AND type = 'vocab_card'
		   AND data->>'dictionary_id' = (SELECT id::text FROM dictionary WHERE khmer = $2)`,
		lessonID, "ទឹកត្រជាក់"))
}
