package chapter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/heartmarshall/khmer-content/internal/app/seeder"
	"github.com/heartmarshall/khmer-content/internal/domain"
	"github.com/heartmarshall/khmer-content/internal/store"
)

// LessonSeeder seeds one lesson wholesale.
type LessonSeeder interface {
	SeedLesson(ctx context.Context, def domain.LessonDefinition) (seeder.LessonResult, error)
}

// Result reports what Publish wrote.
type Result struct {
	ModuleID  int
	Lessons   int
	Words     int
	Reference *seeder.LessonResult
}

// Publisher writes chapter aggregates.
type Publisher struct {
	log    *slog.Logger
	store  store.ContentStore
	seeder LessonSeeder
	offset int
	now    func() time.Time
}

// NewPublisher creates a Publisher. lessons may be nil when reference
// lessons are never requested.
func NewPublisher(log *slog.Logger, st store.ContentStore, lessons LessonSeeder, offset int) *Publisher {
	return &Publisher{
		log:    log.With("component", "chapter"),
		store:  st,
		seeder: lessons,
		offset: offset,
		now:    time.Now,
	}
}

// Publish replaces the study_materials row of moduleID with a fresh
// summary and, with withReference, reseeds the guidebook lesson.
func (p *Publisher) Publish(ctx context.Context, moduleID int, lessons map[int]domain.LessonDefinition, withReference bool) (Result, error) {
	sum := BuildSummary(moduleID, p.offset, lessons)
	res := Result{ModuleID: moduleID, Lessons: len(sum.Lessons), Words: sum.WordCount()}

	row := store.Row{
		"module_id":    moduleID,
		"title":        fmt.Sprintf("Chapter %d", moduleID),
		"summary":      sum.Render(),
		"lesson_count": len(sum.Lessons),
		"updated_at":   p.now().UTC().Format(time.RFC3339),
	}
	if _, err := p.store.Upsert(ctx, store.TableStudyMaterials, []store.Row{row}, "module_id"); err != nil {
		return res, fmt.Errorf("upsert study materials for module %d: %w", moduleID, err)
	}
	p.log.InfoContext(ctx, "study materials updated",
		slog.Int("module_id", moduleID),
		slog.Int("lessons", res.Lessons),
		slog.Int("words", res.Words),
	)

	if !withReference {
		return res, nil
	}
	if p.seeder == nil {
		return res, fmt.Errorf("reference lesson for module %d: no lesson seeder: %w", moduleID, domain.ErrConfig)
	}
	ref := BuildReferenceLesson(moduleID, p.offset, lessons)
	lr, err := p.seeder.SeedLesson(ctx, ref)
	res.Reference = &lr
	if err != nil {
		return res, fmt.Errorf("seed reference lesson %d: %w", ref.ID, err)
	}
	return res, nil
}
