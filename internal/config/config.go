package config

import (
	"time"
)

// Store backends.
const (
	BackendREST     = "rest"
	BackendPostgres = "postgres"
)

// TTS providers.
const (
	TTSGoogle = "google"
	TTSNone   = "none"
)

// Pronunciation precedence values for the seeder.
const (
	PreferDictionary = "dictionary"
	PreferPayload    = "payload"
)

// Config is the root application configuration.
type Config struct {
	Store    StoreConfig    `yaml:"store"`
	Database DatabaseConfig `yaml:"database"`
	Audio    AudioConfig    `yaml:"audio"`
	TTS      TTSConfig      `yaml:"tts"`
	Retry    RetryConfig    `yaml:"retry"`
	Seeder   SeederConfig   `yaml:"seeder"`
	Log      LogConfig      `yaml:"log"`
}

// StoreConfig selects and addresses the content store. URL and Key also
// fall back to the alias variables listed in urlEnvAliases and keyEnvAliases.
type StoreConfig struct {
	Backend string        `yaml:"backend" env:"STORE_BACKEND" env-default:"rest"`
	URL     string        `yaml:"url"     env:"SUPABASE_URL"`
	Key     string        `yaml:"key"     env:"SUPABASE_SERVICE_ROLE_KEY"`
	Timeout time.Duration `yaml:"timeout" env:"STORE_TIMEOUT" env-default:"30s"`
}

// DatabaseConfig holds PostgreSQL connection settings for the postgres backend.
type DatabaseConfig struct {
	DSN              string        `yaml:"dsn"                env:"DATABASE_DSN"`
	MaxConns         int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"4"`
	MinConns         int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"0"`
	MaxConnLifetime  time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime  time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
	StatementTimeout time.Duration `yaml:"statement_timeout"  env:"DATABASE_STATEMENT_TIMEOUT"  env-default:"0s"`
}

// AudioConfig controls where generated audio is written.
type AudioConfig struct {
	Dir   string `yaml:"dir"   env:"AUDIO_DIR"   env-default:"public/sounds"`
	Force bool   `yaml:"force" env:"AUDIO_FORCE" env-default:"false"`
}

// TTSConfig holds speech synthesis settings.
type TTSConfig struct {
	Provider        string        `yaml:"provider"         env:"TTS_PROVIDER"                   env-default:"google"`
	APIKey          string        `yaml:"api_key"          env:"GOOGLE_TTS_API_KEY"`
	CredentialsFile string        `yaml:"credentials_file" env:"GOOGLE_APPLICATION_CREDENTIALS"`
	Endpoint        string        `yaml:"endpoint"         env:"TTS_ENDPOINT"`
	Language        string        `yaml:"language"         env:"TTS_LANGUAGE"                   env-default:"km-KH"`
	Voice           string        `yaml:"voice"            env:"TTS_VOICE"                      env-default:"km-KH-Standard-A"`
	RateRaw         string        `yaml:"rate"             env:"TTS_RATE"                       env-default:"-20%"`
	Concurrency     int           `yaml:"concurrency"      env:"TTS_CONCURRENCY"                env-default:"4"`
	Timeout         time.Duration `yaml:"timeout"          env:"TTS_TIMEOUT"                    env-default:"30s"`

	// Rate is parsed from RateRaw during validation.
	Rate float64 `yaml:"-" env:"-"`
}

// RetryConfig holds the shared retry policy for store and provider calls.
type RetryConfig struct {
	Attempts int           `yaml:"attempts" env:"RETRY_ATTEMPTS" env-default:"3"`
	Delay    time.Duration `yaml:"delay"    env:"RETRY_DELAY"    env-default:"2s"`
}

// SeederConfig holds lesson seeding behaviour.
type SeederConfig struct {
	PronunciationPrecedence string `yaml:"pronunciation_precedence" env:"SEEDER_PRONUNCIATION_PRECEDENCE" env-default:"dictionary"`
	// ReferenceOffset is added to moduleID*100 to form the guidebook lesson id.
	ReferenceOffset int `yaml:"reference_offset" env:"SEEDER_REFERENCE_OFFSET" env-default:"99"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}
