// Package seeder replaces lesson content in the store: it upserts the
// lesson row, clears the old items and their learner progress, enriches
// every item with audio and dictionary links, and inserts the new items.
package seeder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/heartmarshall/khmer-content/internal/app/validator"
	"github.com/heartmarshall/khmer-content/internal/audio"
	"github.com/heartmarshall/khmer-content/internal/domain"
	"github.com/heartmarshall/khmer-content/internal/store"
)

// Precedence decides which pronunciation wins when the dictionary and the
// authored payload disagree.
type Precedence string

const (
	PreferDictionary Precedence = "dictionary"
	PreferPayload    Precedence = "payload"
)

// pick returns the preferred non-empty value.
func (p Precedence) pick(dictionary, payload string) string {
	if p == PreferPayload {
		if payload != "" {
			return payload
		}
		return dictionary
	}
	if dictionary != "" {
		return dictionary
	}
	return payload
}

// Config holds lesson seeding settings.
type Config struct {
	Precedence Precedence
	// AudioLimit bounds concurrent synthesis within one lesson.
	AudioLimit int
}

// GlyphAudio supplies glyph -> audio file for decoder items.
type GlyphAudio interface {
	AudioMap(ctx context.Context) (map[string]string, error)
}

// Seeder seeds lessons into a ContentStore.
type Seeder struct {
	log    *slog.Logger
	store  store.ContentStore
	audio  *audio.Materializer
	glyphs GlyphAudio
	cfg    Config

	glyphMap    map[string]string
	glyphLoaded bool
}

// New creates a Seeder. glyphs may be nil, in which case authored
// char_audio_map values are kept as they are.
func New(log *slog.Logger, st store.ContentStore, mat *audio.Materializer, glyphs GlyphAudio, cfg Config) *Seeder {
	if cfg.Precedence == "" {
		cfg.Precedence = PreferDictionary
	}
	if cfg.AudioLimit < 1 {
		cfg.AudioLimit = 1
	}
	return &Seeder{
		log:    log.With("component", "seeder"),
		store:  st,
		audio:  mat,
		glyphs: glyphs,
		cfg:    cfg,
	}
}

// Batch is a group of definitions read from one source, usually a file.
type Batch struct {
	Source  string
	Lessons []domain.LessonDefinition
}

// Run validates every definition and, when no blocking error is found,
// seeds the lessons one after another. A validation failure returns
// domain.ErrContentInvalid and writes nothing.
func (s *Seeder) Run(ctx context.Context, source string, defs []domain.LessonDefinition) (BatchResult, error) {
	return s.RunBatches(ctx, Batch{Source: source, Lessons: defs})
}

// RunBatches is Run over several sources. Every batch is validated before
// the first write, and a lesson id repeated across batches is a blocking
// error.
func (s *Seeder) RunBatches(ctx context.Context, batches ...Batch) (BatchResult, error) {
	report := ValidateBatches(batches...)
	for _, w := range report.Warnings {
		s.log.WarnContext(ctx, "content warning", slog.String("finding", w.String()))
	}
	res := BatchResult{Report: report}
	if report.HasErrors() {
		for _, e := range report.Errors {
			s.log.ErrorContext(ctx, "content error", slog.String("finding", e.String()))
		}
		return res, fmt.Errorf("%s: %d blocking findings: %w", batchSources(batches), len(report.Errors), domain.ErrContentInvalid)
	}

	for _, b := range batches {
		for _, def := range b.Lessons {
			if err := ctx.Err(); err != nil {
				return res, err
			}
			lr, _ := s.SeedLesson(ctx, def)
			res.Lessons = append(res.Lessons, lr)
		}
	}
	return res, nil
}

// ValidateBatches validates every batch and reports lesson ids repeated
// across batches. It writes nothing.
func ValidateBatches(batches ...Batch) validator.Report {
	var report validator.Report
	// Repeats inside one batch are reported by ValidateList.
	firstBatch := make(map[int]int)
	for i, b := range batches {
		report.Merge(validator.ValidateList(b.Source, b.Lessons))
		for _, def := range b.Lessons {
			prev, dup := firstBatch[def.ID]
			if !dup {
				firstBatch[def.ID] = i
				continue
			}
			if prev != i {
				report.Errors = append(report.Errors, validator.Finding{
					Source:   b.Source,
					LessonID: def.ID,
					Item:     -1,
					Message:  fmt.Sprintf("duplicate lesson id, already defined in %s.", batches[prev].Source),
				})
			}
		}
	}
	return report
}

func batchSources(batches []Batch) string {
	names := make([]string, 0, len(batches))
	for _, b := range batches {
		names = append(names, b.Source)
	}
	return strings.Join(names, ", ")
}

// SeedLesson replaces one lesson and its items. The returned error is set
// only when the lesson could not be written at all; per-item failures are
// counted in the result.
func (s *Seeder) SeedLesson(ctx context.Context, def domain.LessonDefinition) (LessonResult, error) {
	start := time.Now()
	res := LessonResult{LessonID: def.ID}
	log := s.log.With(slog.Int("lesson_id", def.ID))

	err := s.seedLesson(ctx, log, def, &res)
	res.Duration = time.Since(start)
	if err != nil {
		res.Err = err
		log.WarnContext(ctx, "lesson failed",
			slog.String("error", err.Error()),
			slog.Duration("duration", res.Duration),
		)
		return res, err
	}

	log.InfoContext(ctx, "lesson seeded",
		slog.Int("inserted", res.Inserted),
		slog.Int("failed", res.Failed),
		slog.Int("dictionary", res.DictionaryUpserts),
		slog.Int("audio_generated", res.Audio.Generated),
		slog.Int("audio_existing", res.Audio.Existing),
		slog.Int("audio_failed", res.Audio.Failed),
		slog.Duration("duration", res.Duration),
	)
	return res, nil
}

func (s *Seeder) seedLesson(ctx context.Context, log *slog.Logger, def domain.LessonDefinition, res *LessonResult) error {
	// Step 1: lesson row.
	if _, err := s.store.Upsert(ctx, store.TableLessons, []store.Row{lessonRow(def)}, "id"); err != nil {
		return fmt.Errorf("upsert lesson %d: %w", def.ID, err)
	}

	// Step 2-4: clear progress rows, then the old items.
	if err := s.clearItems(ctx, log, def.ID); err != nil {
		return err
	}

	// Step 5: enrich copies of the authored payloads.
	items := make([]enrichedItem, 0, len(def.Content))
	var jobs []audio.Job
	for idx, item := range def.Content {
		e := s.enrich(ctx, log, idx, item, res)
		items = append(items, e)
		jobs = append(jobs, e.jobs...)
	}
	if len(jobs) > 0 && s.audio != nil {
		for _, r := range s.audio.EnsureAll(ctx, jobs, s.cfg.AudioLimit) {
			res.Audio.add(r.Status)
		}
	}

	// Step 6: insert in list order, one row per call.
	for idx, e := range items {
		row := store.Row{
			"lesson_id":   def.ID,
			"type":        string(e.typ),
			"order_index": idx,
			"data":        map[string]any(e.data),
		}
		if _, err := s.store.Insert(ctx, store.TableLessonItems, []store.Row{row}); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			res.Failed++
			log.WarnContext(ctx, "insert item failed",
				slog.Int("item", idx),
				slog.String("type", string(e.typ)),
				slog.String("error", err.Error()),
			)
			continue
		}
		res.Inserted++
	}
	return nil
}

// clearItems removes the lesson's items. Learner progress pointing at them
// is removed first; that cleanup is best-effort and tolerates missing
// tables. Failing to delete the items themselves is fatal, since inserting
// anyway would duplicate them.
func (s *Seeder) clearItems(ctx context.Context, log *slog.Logger, lessonID int) error {
	rows, err := s.store.Select(ctx, store.TableLessonItems, store.Query{
		Columns: []string{"id"},
		Filters: []store.Filter{store.Eq("lesson_id", lessonID)},
	})
	if err != nil {
		return fmt.Errorf("select items of lesson %d: %w", lessonID, err)
	}

	if len(rows) > 0 {
		ids := make([]any, 0, len(rows))
		for _, r := range rows {
			if id, ok := r.Int64("id"); ok {
				ids = append(ids, id)
			}
		}
		for _, table := range []string{store.TableUserSRSItems, store.TableUserSRS} {
			n, err := s.store.Delete(ctx, table, store.In("item_id", ids))
			switch {
			case errors.Is(err, store.ErrTableNotFound):
			case err != nil:
				log.WarnContext(ctx, "progress cleanup failed", slog.String("table", table), slog.String("error", err.Error()))
			case n > 0:
				log.DebugContext(ctx, "progress rows removed", slog.String("table", table), slog.Int("rows", n))
			}
		}
	}

	if _, err := s.store.Delete(ctx, store.TableLessonItems, store.Eq("lesson_id", lessonID)); err != nil {
		return fmt.Errorf("delete items of lesson %d: %w", lessonID, err)
	}
	return nil
}

// glyphAudio loads the alphabet audio map once per Seeder.
func (s *Seeder) glyphAudio(ctx context.Context, log *slog.Logger) map[string]string {
	if s.glyphLoaded || s.glyphs == nil {
		return s.glyphMap
	}
	m, err := s.glyphs.AudioMap(ctx)
	if err != nil {
		log.WarnContext(ctx, "alphabet audio unavailable", slog.String("error", err.Error()))
		return nil
	}
	s.glyphMap, s.glyphLoaded = m, true
	return m
}

func lessonRow(def domain.LessonDefinition) store.Row {
	row := store.Row{
		"id":          def.ID,
		"title":       def.Title,
		"description": def.Description,
	}
	if def.ModuleID != nil {
		row["module_id"] = *def.ModuleID
	}
	if def.OrderIndex != nil {
		row["order_index"] = *def.OrderIndex
	}
	return row
}
