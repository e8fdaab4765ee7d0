package seeder

import (
	"time"

	"github.com/heartmarshall/khmer-content/internal/app/validator"
	"github.com/heartmarshall/khmer-content/internal/audio"
)

// AudioStats counts materializer outcomes for one lesson.
type AudioStats struct {
	Generated int
	Existing  int
	Failed    int
	Skipped   int
	Pending   int
}

func (a *AudioStats) add(s audio.Status) {
	switch s {
	case audio.StatusGenerated:
		a.Generated++
	case audio.StatusExisting:
		a.Existing++
	case audio.StatusFailed:
		a.Failed++
	case audio.StatusSkipped:
		a.Skipped++
	case audio.StatusPending:
		a.Pending++
	}
}

// LessonResult holds the outcome of seeding a single lesson.
type LessonResult struct {
	LessonID          int
	Inserted          int
	Failed            int
	DictionaryUpserts int
	Audio             AudioStats
	Duration          time.Duration
	// Err is set when the lesson could not be seeded at all.
	Err error
}

// HasErrors returns true if the lesson failed or lost any item.
func (r LessonResult) HasErrors() bool {
	return r.Err != nil || r.Failed > 0
}

// BatchResult holds the validation report and per-lesson outcomes of Run.
type BatchResult struct {
	Report  validator.Report
	Lessons []LessonResult
}

// HasErrors returns true if validation blocked the batch or any lesson
// recorded errors.
func (b BatchResult) HasErrors() bool {
	if b.Report.HasErrors() {
		return true
	}
	for _, l := range b.Lessons {
		if l.HasErrors() {
			return true
		}
	}
	return false
}
