package audio

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/khmer-content/internal/domain"
)

// Voice selects the synthesizer voice and speaking rate.
type Voice struct {
	Name         string
	LanguageCode string
	// Rate is a speaking-rate multiplier; 1.0 is the provider default.
	Rate float64
}

// Synthesizer turns text into encoded audio bytes. A nil Synthesizer
// disables generation: missing files are reported as pending.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, voice Voice) ([]byte, error)
}

// Status is the outcome of materializing one file.
type Status int

const (
	StatusSkipped Status = iota
	StatusExisting
	StatusGenerated
	StatusFailed
	// StatusPending means the file is missing and synthesis is disabled.
	StatusPending
)

func (s Status) String() string {
	switch s {
	case StatusSkipped:
		return "skipped"
	case StatusExisting:
		return "existing"
	case StatusGenerated:
		return "generated"
	case StatusFailed:
		return "failed"
	case StatusPending:
		return "pending"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Result reports what Ensure did for one filename.
type Result struct {
	Filename string
	Status   Status
	Err      error
}

// Job is one file for EnsureAll.
type Job struct {
	Text     string
	Filename string
}

// Options configures a Materializer.
type Options struct {
	Dir   string
	Voice Voice
	// Force regenerates files that already exist.
	Force bool
}

// Materializer writes synthesized audio into a single output directory.
type Materializer struct {
	dir   string
	voice Voice
	force bool
	synth Synthesizer
	log   *slog.Logger

	mkdirOnce sync.Once
	mkdirErr  error
}

// NewMaterializer creates a Materializer. The directory is created on the
// first write, not here.
func NewMaterializer(log *slog.Logger, synth Synthesizer, opts Options) *Materializer {
	return &Materializer{
		dir:   opts.Dir,
		voice: opts.Voice,
		force: opts.Force,
		synth: synth,
		log:   log.With("component", "audio"),
	}
}

// Dir returns the output directory.
func (m *Materializer) Dir() string { return m.dir }

// Path returns the full path of filename inside the output directory.
func (m *Materializer) Path(filename string) string {
	return filepath.Join(m.dir, filepath.Base(filename))
}

// Exists reports whether filename is already present on disk.
func (m *Materializer) Exists(filename string) bool {
	if filename == "" {
		return false
	}
	info, err := os.Stat(m.Path(filename))
	return err == nil && info.Mode().IsRegular() && info.Size() > 0
}

// Ensure makes sure filename exists, synthesizing text when it does not.
// Provider and write failures are logged and reported in the result; they
// never panic or abort the caller.
func (m *Materializer) Ensure(ctx context.Context, text, filename string) Result {
	res := Result{Filename: filename}

	text = domain.NormalizeKhmer(text)
	if text == "" || filename == "" {
		res.Status = StatusSkipped
		return res
	}
	if !m.force && m.Exists(filename) {
		res.Status = StatusExisting
		return res
	}
	if m.synth == nil {
		res.Status = StatusPending
		return res
	}

	start := time.Now()
	data, err := m.synth.Synthesize(ctx, text, m.voice)
	if err == nil && len(data) == 0 {
		err = errors.New("synthesizer returned no audio")
	}
	if err == nil {
		err = m.write(filename, data)
	}
	if err != nil {
		m.log.WarnContext(ctx, "audio generation failed",
			slog.String("file", filename),
			slog.String("text", text),
			slog.String("error", err.Error()),
		)
		res.Status = StatusFailed
		res.Err = err
		return res
	}

	m.log.DebugContext(ctx, "audio generated",
		slog.String("file", filename),
		slog.Int("bytes", len(data)),
		slog.Duration("duration", time.Since(start)),
	)
	res.Status = StatusGenerated
	return res
}

// EnsureAll runs Ensure for every job with at most limit provider calls in
// flight. Jobs sharing a filename are materialized once. The returned slice
// is index-aligned with jobs.
func (m *Materializer) EnsureAll(ctx context.Context, jobs []Job, limit int) []Result {
	if limit < 1 {
		limit = 1
	}

	first := make(map[string]int, len(jobs))
	var unique []int
	for i, j := range jobs {
		if _, ok := first[j.Filename]; ok {
			continue
		}
		first[j.Filename] = i
		unique = append(unique, i)
	}

	results := make([]Result, len(jobs))
	var g errgroup.Group
	g.SetLimit(limit)
	for _, i := range unique {
		g.Go(func() error {
			results[i] = m.Ensure(ctx, jobs[i].Text, jobs[i].Filename)
			return nil
		})
	}
	_ = g.Wait()

	for i, j := range jobs {
		if src := first[j.Filename]; src != i {
			results[i] = results[src]
		}
	}
	return results
}

// write stores data atomically: a partial file never counts as existing.
func (m *Materializer) write(filename string, data []byte) error {
	m.mkdirOnce.Do(func() {
		m.mkdirErr = os.MkdirAll(m.dir, 0o755)
	})
	if m.mkdirErr != nil {
		return fmt.Errorf("create audio dir: %w", m.mkdirErr)
	}

	tmp, err := os.CreateTemp(m.dir, ".tmp-*"+Ext)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, fs.FileMode(0o644)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, m.Path(filename)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename audio file: %w", err)
	}
	return nil
}
