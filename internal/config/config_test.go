package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/heartmarshall/khmer-content/internal/domain"
)

func writeYAML(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	return path
}

// clearStoreEnv blanks every store variable so the host environment cannot
// leak into a test.
func clearStoreEnv(t *testing.T) {
	t.Helper()
	for _, n := range append(append([]string{}, urlEnvAliases...), keyEnvAliases...) {
		t.Setenv(n, "")
	}
}

const validYAML = `
store:
  backend: "rest"
  url: "https://abc.supabase.co"
  key: "secret"
  timeout: "10s"

audio:
  dir: "out/sounds"
  force: true

tts:
  provider: "none"
  voice: "km-KH-Standard-B"
  rate: "+10%"
  concurrency: 2

retry:
  attempts: 5
  delay: "100ms"

seeder:
  pronunciation_precedence: "payload"

log:
  level: "debug"
  format: "json"
`

func TestLoad_ValidYAML(t *testing.T) {
	clearStoreEnv(t)
	dir := t.TempDir()
	t.Setenv("CONFIG_PATH", writeYAML(t, dir, validYAML))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Store.URL != "https://abc.supabase.co" {
		t.Errorf("Store.URL = %q", cfg.Store.URL)
	}
	if cfg.Store.Timeout != 10*time.Second {
		t.Errorf("Store.Timeout = %v, want 10s", cfg.Store.Timeout)
	}
	if cfg.Audio.Dir != "out/sounds" || !cfg.Audio.Force {
		t.Errorf("Audio = %+v", cfg.Audio)
	}
	if cfg.TTS.Voice != "km-KH-Standard-B" {
		t.Errorf("TTS.Voice = %q", cfg.TTS.Voice)
	}
	if cfg.TTS.Rate < 1.0999 || cfg.TTS.Rate > 1.1001 {
		t.Errorf("TTS.Rate = %v, want 1.1", cfg.TTS.Rate)
	}
	if cfg.TTS.Language != "km-KH" {
		t.Errorf("TTS.Language default = %q, want km-KH", cfg.TTS.Language)
	}
	if cfg.Retry.Attempts != 5 || cfg.Retry.Delay != 100*time.Millisecond {
		t.Errorf("Retry = %+v", cfg.Retry)
	}
	if cfg.Seeder.PronunciationPrecedence != PreferPayload {
		t.Errorf("Seeder.PronunciationPrecedence = %q", cfg.Seeder.PronunciationPrecedence)
	}
	if cfg.Seeder.ReferenceOffset != 99 {
		t.Errorf("Seeder.ReferenceOffset default = %d, want 99", cfg.Seeder.ReferenceOffset)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("Log = %+v", cfg.Log)
	}
}

func TestLoad_EnvOnlyDefaults(t *testing.T) {
	clearStoreEnv(t)
	t.Setenv("CONFIG_PATH", "")
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Store.Backend != BackendREST {
		t.Errorf("Store.Backend = %q, want rest", cfg.Store.Backend)
	}
	if cfg.Audio.Dir != "public/sounds" {
		t.Errorf("Audio.Dir = %q, want public/sounds", cfg.Audio.Dir)
	}
	if cfg.TTS.Rate < 0.7999 || cfg.TTS.Rate > 0.8001 {
		t.Errorf("TTS.Rate = %v, want 0.8", cfg.TTS.Rate)
	}
	if cfg.TTS.Concurrency != 4 {
		t.Errorf("TTS.Concurrency = %d, want 4", cfg.TTS.Concurrency)
	}
	if cfg.Retry.Attempts != 3 || cfg.Retry.Delay != 2*time.Second {
		t.Errorf("Retry = %+v, want 3 attempts / 2s", cfg.Retry)
	}
	if cfg.Seeder.PronunciationPrecedence != PreferDictionary {
		t.Errorf("Seeder.PronunciationPrecedence = %q, want dictionary", cfg.Seeder.PronunciationPrecedence)
	}
}

func TestLoad_DotEnvFillsCredentials(t *testing.T) {
	clearStoreEnv(t)
	os.Unsetenv("VITE_SUPABASE_URL")
	os.Unsetenv("SUPABASE_KEY")
	t.Setenv("CONFIG_PATH", "")
	dir := t.TempDir()
	t.Chdir(dir)

	env := "VITE_SUPABASE_URL=https://dotenv.supabase.co\nSUPABASE_KEY=dotenv-key\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		os.Unsetenv("VITE_SUPABASE_URL")
		os.Unsetenv("SUPABASE_KEY")
	})

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Store.URL != "https://dotenv.supabase.co" {
		t.Errorf("Store.URL = %q, want value from .env alias", cfg.Store.URL)
	}
	if cfg.Store.Key != "dotenv-key" {
		t.Errorf("Store.Key = %q, want value from .env alias", cfg.Store.Key)
	}
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "nope.yaml"))

	if _, err := Load(); err == nil {
		t.Fatal("expected error for explicit missing config file")
	}
}

func TestResolveAliases_Priority(t *testing.T) {
	t.Parallel()

	env := map[string]string{
		"VITE_SUPABASE_URL":      "https://vite.supabase.co",
		"SUPABASE_KEY":           "plain-key",
		"VITE_SUPABASE_ANON_KEY": "anon-key",
	}
	var s StoreConfig
	s.resolveAliases(func(k string) string { return env[k] })

	if s.URL != "https://vite.supabase.co" {
		t.Errorf("URL = %q", s.URL)
	}
	if s.Key != "plain-key" {
		t.Errorf("Key = %q, want SUPABASE_KEY to win over the anon key", s.Key)
	}

	explicit := StoreConfig{URL: "https://set.supabase.co", Key: "set"}
	explicit.resolveAliases(func(k string) string { return env[k] })
	if explicit.URL != "https://set.supabase.co" || explicit.Key != "set" {
		t.Errorf("aliases must not override configured values: %+v", explicit)
	}
}

func validConfig() Config {
	return Config{
		Store:  StoreConfig{Backend: BackendREST},
		Audio:  AudioConfig{Dir: "public/sounds"},
		TTS:    TTSConfig{Provider: TTSGoogle, RateRaw: "-20%", Concurrency: 4},
		Retry:  RetryConfig{Attempts: 3, Delay: time.Second},
		Seeder: SeederConfig{PronunciationPrecedence: PreferDictionary, ReferenceOffset: 99},
	}
}

func TestValidate_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"bad backend", func(c *Config) { c.Store.Backend = "mysql" }, "store.backend"},
		{"bad provider", func(c *Config) { c.TTS.Provider = "polly" }, "provider"},
		{"bad rate", func(c *Config) { c.TTS.RateRaw = "fast" }, "rate"},
		{"zero concurrency", func(c *Config) { c.TTS.Concurrency = 0 }, "concurrency"},
		{"both credentials", func(c *Config) { c.TTS.APIKey = "k"; c.TTS.CredentialsFile = "f.json" }, "mutually exclusive"},
		{"zero attempts", func(c *Config) { c.Retry.Attempts = 0 }, "retry.attempts"},
		{"bad precedence", func(c *Config) { c.Seeder.PronunciationPrecedence = "llm" }, "pronunciation_precedence"},
		{"bad offset", func(c *Config) { c.Seeder.ReferenceOffset = 100 }, "reference_offset"},
		{"empty audio dir", func(c *Config) { c.Audio.Dir = " " }, "audio.dir"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, domain.ErrConfig) {
				t.Errorf("error does not wrap domain.ErrConfig: %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.want)
			}
		})
	}
}

func TestValidateStore(t *testing.T) {
	t.Parallel()

	rest := validConfig()
	if err := rest.ValidateStore(); !errors.Is(err, domain.ErrConfig) {
		t.Errorf("rest without url: got %v, want ErrConfig", err)
	}
	rest.Store.URL = "https://abc.supabase.co"
	if err := rest.ValidateStore(); err == nil || !strings.Contains(err.Error(), "key") {
		t.Errorf("rest without key: got %v", err)
	}
	rest.Store.Key = "k"
	if err := rest.ValidateStore(); err != nil {
		t.Errorf("rest with credentials: %v", err)
	}

	pg := validConfig()
	pg.Store.Backend = BackendPostgres
	if err := pg.ValidateStore(); err == nil {
		t.Error("postgres without dsn should fail")
	}
	pg.Database.DSN = "postgres://u:p@localhost/db"
	if err := pg.ValidateStore(); err != nil {
		t.Errorf("postgres with dsn: %v", err)
	}
}

func signedKey(t *testing.T, role string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"role": role, "iss": "supabase"})
	s, err := tok.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign key: %v", err)
	}
	return s
}

func TestKeyWarning(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		key      string
		wantWarn bool
	}{
		{"service role", signedKey(t, "service_role"), false},
		{"anon", signedKey(t, "anon"), true},
		{"opaque key", "sb_secret_abcdef", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := StoreConfig{Backend: BackendREST, Key: tt.key}
			if got := s.KeyWarning() != ""; got != tt.wantWarn {
				t.Errorf("KeyWarning() warn = %v, want %v (%q)", got, tt.wantWarn, s.KeyWarning())
			}
		})
	}
}

func TestKeyRole(t *testing.T) {
	t.Parallel()

	role, err := KeyRole(signedKey(t, "anon"))
	if err != nil {
		t.Fatalf("KeyRole() error: %v", err)
	}
	if role != "anon" {
		t.Errorf("KeyRole() = %q, want anon", role)
	}

	if _, err := KeyRole("not-a-jwt"); err == nil {
		t.Error("KeyRole(non-JWT) should fail")
	}
}
