package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/heartmarshall/khmer-content/internal/app"
	"github.com/heartmarshall/khmer-content/internal/audio"
	"github.com/heartmarshall/khmer-content/internal/config"
	"github.com/heartmarshall/khmer-content/internal/store"
	"github.com/heartmarshall/khmer-content/pkg/ctxutil"
)

const lockFileName = ".contentctl.lock"

type storeOpener func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.ContentStore, func(), error)

type materializerFactory func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*audio.Materializer, error)

type commandContext struct {
	configFlag   string
	logLevelFlag string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger

	stdin       io.Reader
	interactive func() bool

	openStore       storeOpener
	newMaterializer materializerFactory
}

func newCommandContext() *commandContext {
	return &commandContext{
		stdin:           os.Stdin,
		interactive:     func() bool { return isTerminal(os.Stdin) },
		openStore:       app.OpenStore,
		newMaterializer: app.NewMaterializer,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		if path := strings.TrimSpace(c.configFlag); path != "" {
			if err := os.Setenv("CONFIG_PATH", path); err != nil {
				c.configErr = fmt.Errorf("set config path: %w", err)
				return
			}
		}
		cfg, err := config.Load()
		if err != nil {
			c.configErr = err
			return
		}
		if level := strings.TrimSpace(c.logLevelFlag); level != "" {
			cfg.Log.Level = level
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger(cfg *config.Config) *slog.Logger {
	c.loggerOnce.Do(func() {
		c.logger = app.NewLogger(cfg.Log)
	})
	return c.logger
}

// runContext tags the command context with a fresh run id and the command
// path, both picked up by the logger.
func runContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = ctxutil.WithRunID(ctx, ctxutil.NewRunID())
	return ctxutil.WithCommand(ctx, cmd.CommandPath())
}

// session is everything one command run needs.
type session struct {
	ctx    context.Context
	cfg    *config.Config
	log    *slog.Logger
	store  store.ContentStore
	audio  *audio.Materializer
	app    *app.Components
	stdout io.Writer
}

type sessionOptions struct {
	// store opens the content store; without it s.store and s.app are nil.
	store bool
	// lock takes the writer lock in the audio directory.
	lock bool
	// synth enables speech synthesis; otherwise missing audio is pending.
	synth bool
}

func (c *commandContext) withSession(cmd *cobra.Command, opts sessionOptions, fn func(s *session) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	ctx := runContext(cmd)
	logger := c.ensureLogger(cfg)

	if opts.lock {
		lock, err := acquireLock(cfg.Audio.Dir)
		if err != nil {
			return err
		}
		defer func() {
			if err := lock.Unlock(); err != nil {
				logger.WarnContext(ctx, "release lock", slog.String("error", err.Error()))
			}
		}()
	}

	matCfg := cfg
	if !opts.synth {
		offline := *cfg
		offline.TTS.Provider = config.TTSNone
		matCfg = &offline
	}
	mat, err := c.newMaterializer(ctx, matCfg, logger)
	if err != nil {
		return fmt.Errorf("create audio materializer: %w", err)
	}

	s := &session{ctx: ctx, cfg: cfg, log: logger, audio: mat, stdout: cmd.OutOrStdout()}
	if opts.store {
		st, closeFn, err := c.openStore(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer closeFn()
		s.store = st
		s.app = app.NewComponents(cfg, logger, st, mat)
	}

	logger.DebugContext(ctx, "command started", slog.String("version", app.BuildVersion()))
	return fn(s)
}

func acquireLock(dir string) (*flock.Flock, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create audio dir: %w", err)
	}
	lock := flock.New(filepath.Join(dir, lockFileName))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("another contentctl run holds %s", lock.Path())
	}
	return lock, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
