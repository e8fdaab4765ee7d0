// Package app wires configuration into the concrete store, synthesizer and
// seeding components used by the contentctl commands.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/khmer-content/internal/adapter/postgres"
	"github.com/heartmarshall/khmer-content/internal/adapter/postgrest"
	"github.com/heartmarshall/khmer-content/internal/adapter/provider/googletts"
	"github.com/heartmarshall/khmer-content/internal/app/catalog"
	"github.com/heartmarshall/khmer-content/internal/app/chapter"
	"github.com/heartmarshall/khmer-content/internal/app/reconcile"
	"github.com/heartmarshall/khmer-content/internal/app/seeder"
	"github.com/heartmarshall/khmer-content/internal/audio"
	"github.com/heartmarshall/khmer-content/internal/config"
	"github.com/heartmarshall/khmer-content/internal/retry"
	"github.com/heartmarshall/khmer-content/internal/store"
)

// RetryPolicy builds the shared retry policy from configuration.
func RetryPolicy(cfg config.RetryConfig) retry.Policy {
	return retry.Policy{
		Attempts: cfg.Attempts,
		Delay:    cfg.Delay,
		Classify: retry.IsTransient,
	}
}

// OpenStore connects the configured backend and wraps it with the retry
// policy. The returned close function releases the connection and is never
// nil.
func OpenStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.ContentStore, func(), error) {
	if err := cfg.ValidateStore(); err != nil {
		return nil, nil, err
	}

	var (
		inner   store.ContentStore
		closeFn = func() {}
	)
	switch cfg.Store.Backend {
	case config.BackendPostgres:
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		inner = postgres.NewStore(pool, logger)
		closeFn = pool.Close
	default:
		if msg := cfg.Store.KeyWarning(); msg != "" {
			logger.WarnContext(ctx, msg)
		}
		client, err := postgrest.NewClient(logger, postgrest.Options{
			URL:     cfg.Store.URL,
			Key:     cfg.Store.Key,
			Timeout: cfg.Store.Timeout,
		})
		if err != nil {
			return nil, nil, err
		}
		inner = client
	}

	logger.DebugContext(ctx, "store opened", slog.String("backend", cfg.Store.Backend))
	return store.WithRetry(inner, RetryPolicy(cfg.Retry), logger), closeFn, nil
}

// NewSynthesizer creates the configured speech provider, or nil when
// synthesis is disabled.
func NewSynthesizer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (audio.Synthesizer, error) {
	if cfg.TTS.Provider == config.TTSNone {
		return nil, nil
	}
	p, err := googletts.NewProvider(ctx, logger, googletts.Options{
		APIKey:          cfg.TTS.APIKey,
		CredentialsFile: cfg.TTS.CredentialsFile,
		Endpoint:        cfg.TTS.Endpoint,
		Timeout:         cfg.TTS.Timeout,
		Retry:           RetryPolicy(cfg.Retry),
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// NewMaterializer creates the audio materializer over the configured
// provider and output directory.
func NewMaterializer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*audio.Materializer, error) {
	synth, err := NewSynthesizer(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return audio.NewMaterializer(logger, synth, audio.Options{
		Dir:   cfg.Audio.Dir,
		Force: cfg.Audio.Force,
		Voice: audio.Voice{
			Name:         cfg.TTS.Voice,
			LanguageCode: cfg.TTS.Language,
			Rate:         cfg.TTS.Rate,
		},
	}), nil
}

// Components groups the seeding services built over one store.
type Components struct {
	Catalog    *catalog.Seeder
	Lessons    *seeder.Seeder
	Chapters   *chapter.Publisher
	Reconciler *reconcile.Reconciler
}

// NewComponents builds every seeding service over st and mat. Decoder items
// take their glyph audio from the stored alphabet through the catalog.
func NewComponents(cfg *config.Config, logger *slog.Logger, st store.ContentStore, mat *audio.Materializer) *Components {
	cat := catalog.NewSeeder(logger, st, mat)
	lessons := seeder.New(logger, st, mat, cat, seeder.Config{
		Precedence: seeder.Precedence(cfg.Seeder.PronunciationPrecedence),
		AudioLimit: cfg.TTS.Concurrency,
	})
	return &Components{
		Catalog:    cat,
		Lessons:    lessons,
		Chapters:   chapter.NewPublisher(logger, st, lessons, cfg.Seeder.ReferenceOffset),
		Reconciler: reconcile.New(logger, st, mat, cfg.TTS.Concurrency),
	}
}
