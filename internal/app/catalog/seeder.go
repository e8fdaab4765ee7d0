package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/heartmarshall/khmer-content/internal/audio"
	"github.com/heartmarshall/khmer-content/internal/domain"
	"github.com/heartmarshall/khmer-content/internal/store"
)

// Seeder writes the alphabet catalog and course structure.
type Seeder struct {
	log     *slog.Logger
	store   store.ContentStore
	audio   *audio.Materializer
	symbols []domain.AlphabetSymbol
	silent  map[string]bool
}

// NewSeeder creates a Seeder over the built-in catalog. mat may be nil when
// GenerateAudio is never called.
func NewSeeder(log *slog.Logger, st store.ContentStore, mat *audio.Materializer) *Seeder {
	silent := make(map[string]bool, len(diacriticRules))
	for _, r := range diacriticRules {
		silent[r.Glyph] = true
	}
	return &Seeder{
		log:     log.With("component", "catalog"),
		store:   st,
		audio:   mat,
		symbols: Symbols(),
		silent:  silent,
	}
}

// voiced reports whether sym gets an audio clip.
func (s *Seeder) voiced(sym domain.AlphabetSymbol) bool {
	return sym.IsSpeakable() && !s.silent[sym.Glyph]
}

// SeedAlphabet upserts every catalog symbol on its glyph.
func (s *Seeder) SeedAlphabet(ctx context.Context) (int, error) {
	rows := make([]store.Row, 0, len(s.symbols))
	for _, sym := range s.symbols {
		row := store.Row{
			"id":             sym.Glyph,
			"name_en":        sym.NameEN,
			"type":           string(sym.Type),
			"frequency_rank": sym.FrequencyRank,
			"series":         nil,
			"audio_url":      nil,
		}
		if sym.Series != domain.SeriesNone {
			row["series"] = int(sym.Series)
		}
		if s.voiced(sym) {
			row["audio_url"] = SymbolFilename(sym)
		}
		rows = append(rows, row)
	}

	out, err := s.store.Upsert(ctx, store.TableAlphabet, rows, "id")
	if err != nil {
		return 0, fmt.Errorf("upsert alphabet: %w", err)
	}
	s.log.InfoContext(ctx, "alphabet seeded", slog.Int("symbols", len(out)))
	return len(out), nil
}

// ApplyDiacriticRules writes the explanation of every silent mark and
// clears its audio, in one transaction where the store supports it.
func (s *Seeder) ApplyDiacriticRules(ctx context.Context) (int, error) {
	n := 0
	err := store.RunInTx(ctx, s.store, func(ctx context.Context) error {
		n = 0
		for _, rule := range diacriticRules {
			sym, ok := Lookup(rule.Glyph)
			if !ok {
				return fmt.Errorf("rule for unknown glyph %q: %w", rule.Glyph, domain.ErrNotFound)
			}
			row := store.Row{
				"id":          sym.Glyph,
				"name_en":     sym.NameEN,
				"type":        string(sym.Type),
				"description": rule.Description,
				"audio_url":   nil,
			}
			if _, err := s.store.Upsert(ctx, store.TableAlphabet, []store.Row{row}, "id"); err != nil {
				return fmt.Errorf("apply rule %q: %w", rule.Glyph, err)
			}
			n++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.log.InfoContext(ctx, "diacritic rules applied", slog.Int("rules", n))
	return n, nil
}

// AudioStats counts GenerateAudio outcomes.
type AudioStats struct {
	Generated int
	Existing  int
	Failed    int
	Pending   int
	Duration  time.Duration
}

// GenerateAudio synthesizes a clip for every voiced symbol with at most
// limit provider calls in flight. Failures are counted, never returned.
func (s *Seeder) GenerateAudio(ctx context.Context, limit int) (AudioStats, []audio.Result) {
	start := time.Now()
	var jobs []audio.Job
	for _, sym := range s.symbols {
		if !s.voiced(sym) {
			continue
		}
		jobs = append(jobs, audio.Job{Text: SpeechText(sym), Filename: SymbolFilename(sym)})
	}

	var stats AudioStats
	if s.audio == nil {
		stats.Pending = len(jobs)
		return stats, nil
	}
	results := s.audio.EnsureAll(ctx, jobs, limit)
	for _, r := range results {
		switch r.Status {
		case audio.StatusGenerated:
			stats.Generated++
		case audio.StatusExisting:
			stats.Existing++
		case audio.StatusFailed:
			stats.Failed++
		case audio.StatusPending:
			stats.Pending++
		}
	}
	stats.Duration = time.Since(start)
	s.log.InfoContext(ctx, "alphabet audio done",
		slog.Int("generated", stats.Generated),
		slog.Int("existing", stats.Existing),
		slog.Int("failed", stats.Failed),
		slog.Duration("duration", stats.Duration),
	)
	return stats, results
}

// AudioMap returns glyph -> audio_url for every stored symbol that has one.
func (s *Seeder) AudioMap(ctx context.Context) (map[string]string, error) {
	rows, err := s.store.Select(ctx, store.TableAlphabet, store.Query{Columns: []string{"id", "audio_url"}})
	if err != nil {
		return nil, fmt.Errorf("select alphabet audio: %w", err)
	}
	out := make(map[string]string, len(rows))
	for _, r := range rows {
		if file := r.String("audio_url"); file != "" {
			out[r.String("id")] = file
		}
	}
	return out, nil
}

// SeedModules upserts the course structure on id.
func (s *Seeder) SeedModules(ctx context.Context, modules []domain.Module) (int, error) {
	if len(modules) == 0 {
		return 0, nil
	}
	rows := make([]store.Row, 0, len(modules))
	for _, m := range modules {
		rows = append(rows, store.Row{
			"id":          m.ID,
			"title":       m.Title,
			"level_label": m.LevelLabel,
			"description": m.Description,
			"is_paid":     m.IsPaid,
			"order_index": m.OrderIndex,
		})
	}
	out, err := s.store.Upsert(ctx, store.TableModules, rows, "id")
	if err != nil {
		return 0, fmt.Errorf("upsert modules: %w", err)
	}
	s.log.InfoContext(ctx, "modules seeded", slog.Int("modules", len(out)))
	return len(out), nil
}
