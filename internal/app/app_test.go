package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/khmer-content/internal/config"
	"github.com/heartmarshall/khmer-content/internal/domain"
	"github.com/heartmarshall/khmer-content/internal/store"
	"github.com/heartmarshall/khmer-content/internal/store/memory"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Store:  config.StoreConfig{Backend: config.BackendREST, URL: "https://abc.supabase.co", Key: "service-key", Timeout: time.Second},
		Audio:  config.AudioConfig{Dir: t.TempDir()},
		TTS:    config.TTSConfig{Provider: config.TTSNone, Concurrency: 2, Language: "km-KH", Voice: "km-KH-Standard-A", Rate: 0.8},
		Retry:  config.RetryConfig{Attempts: 2, Delay: time.Millisecond},
		Seeder: config.SeederConfig{PronunciationPrecedence: config.PreferPayload, ReferenceOffset: 99},
	}
}

func TestRetryPolicy(t *testing.T) {
	p := RetryPolicy(config.RetryConfig{Attempts: 5, Delay: time.Second})

	assert.Equal(t, 5, p.Attempts)
	assert.Equal(t, time.Second, p.Delay)
	require.NotNil(t, p.Classify)
	assert.False(t, p.Classify(domain.ErrValidation))
}

func TestOpenStore_REST(t *testing.T) {
	cfg := testConfig(t)

	st, closeFn, err := OpenStore(context.Background(), cfg, discardLogger())

	require.NoError(t, err)
	require.NotNil(t, closeFn)
	defer closeFn()
	_, ok := st.(*store.Resilient)
	assert.True(t, ok, "store is wrapped with retries")
}

func TestOpenStore_MissingCredentials(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store.Key = ""

	_, _, err := OpenStore(context.Background(), cfg, discardLogger())

	require.True(t, errors.Is(err, domain.ErrConfig))
}

func TestOpenStore_PostgresNeedsDSN(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store.Backend = config.BackendPostgres

	_, _, err := OpenStore(context.Background(), cfg, discardLogger())

	require.ErrorIs(t, err, domain.ErrConfig)
}

func TestNewMaterializer_NoProvider(t *testing.T) {
	cfg := testConfig(t)

	synth, err := NewSynthesizer(context.Background(), cfg, discardLogger())
	require.NoError(t, err)
	assert.Nil(t, synth)

	mat, err := NewMaterializer(context.Background(), cfg, discardLogger())
	require.NoError(t, err)
	assert.Equal(t, cfg.Audio.Dir, mat.Dir())
}

func TestNewComponents(t *testing.T) {
	cfg := testConfig(t)
	mat, err := NewMaterializer(context.Background(), cfg, discardLogger())
	require.NoError(t, err)

	c := NewComponents(cfg, discardLogger(), memory.NewContentStore(), mat)

	assert.NotNil(t, c.Catalog)
	assert.NotNil(t, c.Lessons)
	assert.NotNil(t, c.Chapters)
	assert.NotNil(t, c.Reconciler)
}
