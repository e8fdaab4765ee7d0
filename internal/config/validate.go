package config

import (
	"fmt"
	"strings"

	"github.com/heartmarshall/khmer-content/internal/audio"
	"github.com/heartmarshall/khmer-content/internal/domain"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically. Store
// credentials are checked separately by ValidateStore, since several
// commands never open the store.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendREST, BackendPostgres:
	default:
		return fmt.Errorf("%w: store.backend must be %q or %q (got %q)",
			domain.ErrConfig, BackendREST, BackendPostgres, c.Store.Backend)
	}

	if err := c.TTS.validate(); err != nil {
		return fmt.Errorf("tts: %w", err)
	}

	if c.Retry.Attempts < 1 {
		return fmt.Errorf("%w: retry.attempts must be >= 1 (got %d)", domain.ErrConfig, c.Retry.Attempts)
	}
	if c.Retry.Delay < 0 {
		return fmt.Errorf("%w: retry.delay must be >= 0 (got %s)", domain.ErrConfig, c.Retry.Delay)
	}

	switch c.Seeder.PronunciationPrecedence {
	case PreferDictionary, PreferPayload:
	default:
		return fmt.Errorf("%w: seeder.pronunciation_precedence must be %q or %q (got %q)",
			domain.ErrConfig, PreferDictionary, PreferPayload, c.Seeder.PronunciationPrecedence)
	}
	if c.Seeder.ReferenceOffset < 0 || c.Seeder.ReferenceOffset > 99 {
		return fmt.Errorf("%w: seeder.reference_offset must be within 0..99 (got %d)",
			domain.ErrConfig, c.Seeder.ReferenceOffset)
	}

	if strings.TrimSpace(c.Audio.Dir) == "" {
		return fmt.Errorf("%w: audio.dir must not be empty", domain.ErrConfig)
	}

	return nil
}

// ValidateStore checks that the selected backend has its credentials.
func (c *Config) ValidateStore() error {
	switch c.Store.Backend {
	case BackendREST:
		if c.Store.URL == "" {
			return fmt.Errorf("%w: store url is required (set SUPABASE_URL or VITE_SUPABASE_URL)", domain.ErrConfig)
		}
		if c.Store.Key == "" {
			return fmt.Errorf("%w: store key is required (set SUPABASE_SERVICE_ROLE_KEY, SUPABASE_KEY or VITE_SUPABASE_ANON_KEY)", domain.ErrConfig)
		}
	case BackendPostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("%w: database.dsn is required for the postgres backend", domain.ErrConfig)
		}
	}
	return nil
}

func (t *TTSConfig) validate() error {
	switch t.Provider {
	case TTSGoogle, TTSNone:
	default:
		return fmt.Errorf("%w: provider must be %q or %q (got %q)", domain.ErrConfig, TTSGoogle, TTSNone, t.Provider)
	}
	if t.Concurrency < 1 {
		return fmt.Errorf("%w: concurrency must be >= 1 (got %d)", domain.ErrConfig, t.Concurrency)
	}
	if t.APIKey != "" && t.CredentialsFile != "" {
		return fmt.Errorf("%w: api_key and credentials_file are mutually exclusive", domain.ErrConfig)
	}

	rate, err := audio.ParseRate(t.RateRaw)
	if err != nil {
		return fmt.Errorf("%w: rate: %v", domain.ErrConfig, err)
	}
	t.Rate = rate

	return nil
}
