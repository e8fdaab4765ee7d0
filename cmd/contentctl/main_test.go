package main

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/heartmarshall/khmer-content/internal/audio"
	"github.com/heartmarshall/khmer-content/internal/config"
	"github.com/heartmarshall/khmer-content/internal/store"
	"github.com/heartmarshall/khmer-content/internal/store/memory"
)

type fakeSynth struct {
	mu    sync.Mutex
	texts []string
}

func (f *fakeSynth) Synthesize(_ context.Context, text string, _ audio.Voice) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
	return []byte("ID3"), nil
}

func (f *fakeSynth) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.texts)
}

type cliTestEnv struct {
	ctx      *commandContext
	store    *memory.Store
	synth    *fakeSynth
	audioDir string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	audioDir := filepath.Join(t.TempDir(), "sounds")
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("AUDIO_DIR", audioDir)
	t.Setenv("STORE_BACKEND", config.BackendREST)
	t.Setenv("TTS_PROVIDER", config.TTSGoogle)
	t.Setenv("LOG_LEVEL", "error")

	env := &cliTestEnv{
		store:    memory.NewContentStore(),
		synth:    &fakeSynth{},
		audioDir: audioDir,
	}

	ctx := newCommandContext()
	ctx.stdin = strings.NewReader("")
	ctx.interactive = func() bool { return false }
	ctx.openStore = func(context.Context, *config.Config, *slog.Logger) (store.ContentStore, func(), error) {
		return env.store, func() {}, nil
	}
	ctx.newMaterializer = func(_ context.Context, cfg *config.Config, logger *slog.Logger) (*audio.Materializer, error) {
		var synth audio.Synthesizer
		if cfg.TTS.Provider != config.TTSNone {
			synth = env.synth
		}
		return audio.NewMaterializer(logger, synth, audio.Options{Dir: cfg.Audio.Dir}), nil
	}
	env.ctx = ctx
	return env
}

func (e *cliTestEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommandWith(e.ctx)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}
