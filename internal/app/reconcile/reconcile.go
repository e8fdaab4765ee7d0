// Package reconcile checks that every audio file referenced by stored
// lesson items exists on disk, and regenerates the missing ones.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/heartmarshall/khmer-content/internal/app/catalog"
	"github.com/heartmarshall/khmer-content/internal/audio"
	"github.com/heartmarshall/khmer-content/internal/domain"
	"github.com/heartmarshall/khmer-content/internal/store"
)

// Ref is one audio reference found in an item payload.
type Ref struct {
	LessonID int64
	ItemID   int64
	Type     domain.ItemType
	// Field is the payload path holding the filename, e.g. "audio_map.អរគុណ".
	Field string
	File  string
	// Text is the speech that owns the reference, used when healing.
	Text string
}

// MetadataGap is a quiz option without an options_metadata entry.
type MetadataGap struct {
	LessonID int64
	ItemID   int64
	Option   string
}

// Report is the outcome of one reconciliation pass.
type Report struct {
	Items           int
	Refs            int
	Missing         []Ref
	MissingMetadata []MetadataGap
	Healed          int
	HealFailed      int
}

// Reconciler scans lesson_items against the audio directory.
type Reconciler struct {
	log   *slog.Logger
	store store.ContentStore
	audio *audio.Materializer
	limit int
}

// New creates a Reconciler. limit bounds concurrent synthesis when healing.
func New(log *slog.Logger, st store.ContentStore, mat *audio.Materializer, limit int) *Reconciler {
	return &Reconciler{log: log.With("component", "reconcile"), store: st, audio: mat, limit: limit}
}

// Run scans one lesson, or every lesson when lessonID is 0. With heal, the
// missing files are synthesized from their owning text.
func (r *Reconciler) Run(ctx context.Context, lessonID int, heal bool) (Report, error) {
	q := store.Query{
		Columns: []string{"id", "lesson_id", "type", "data"},
		OrderBy: "id",
	}
	if lessonID != 0 {
		q.Filters = []store.Filter{store.Eq("lesson_id", lessonID)}
	}
	rows, err := r.store.Select(ctx, store.TableLessonItems, q)
	if err != nil {
		return Report{}, fmt.Errorf("select lesson items: %w", err)
	}

	var rep Report
	for _, row := range rows {
		rep.Items++
		refs, gaps := Scan(row)
		rep.Refs += len(refs)
		rep.MissingMetadata = append(rep.MissingMetadata, gaps...)
		for _, ref := range refs {
			if !r.audio.Exists(ref.File) {
				rep.Missing = append(rep.Missing, ref)
			}
		}
	}

	if heal && len(rep.Missing) > 0 {
		jobs := make([]audio.Job, 0, len(rep.Missing))
		for _, ref := range rep.Missing {
			jobs = append(jobs, audio.Job{Text: ref.Text, Filename: ref.File})
		}
		counted := make(map[string]bool)
		for _, res := range r.audio.EnsureAll(ctx, jobs, r.limit) {
			if counted[res.Filename] {
				continue
			}
			counted[res.Filename] = true
			switch res.Status {
			case audio.StatusGenerated, audio.StatusExisting:
				rep.Healed++
			default:
				rep.HealFailed++
			}
		}
	}

	r.log.InfoContext(ctx, "audio reconciled",
		slog.Int("lesson_id", lessonID),
		slog.Int("items", rep.Items),
		slog.Int("refs", rep.Refs),
		slog.Int("missing", len(rep.Missing)),
		slog.Int("metadata_gaps", len(rep.MissingMetadata)),
		slog.Int("healed", rep.Healed),
		slog.Int("heal_failed", rep.HealFailed),
	)
	return rep, nil
}

// Scan lists the audio references of one lesson_items row and the quiz
// options that lack metadata.
func Scan(row store.Row) ([]Ref, []MetadataGap) {
	itemID, _ := row.Int64("id")
	lessonID, _ := row.Int64("lesson_id")
	typ := domain.NormalizeItemType(row.String("type"))
	data := payloadOf(row["data"])

	var refs []Ref
	add := func(field string, file any, text string) {
		name, _ := file.(string)
		if name == "" {
			return
		}
		refs = append(refs, Ref{LessonID: lessonID, ItemID: itemID, Type: typ, Field: field, File: name, Text: text})
	}

	var gaps []MetadataGap
	switch typ {
	case domain.ItemVocabCard:
		add("audio", data["audio"], data.String("back"))

	case domain.ItemQuiz:
		add("audio", data["audio"], data.String("correct_answer"))
		audioMap := data.Map("audio_map")
		meta := data.Map("options_metadata")
		for _, opt := range data.Strings("options") {
			add("audio_map."+opt, audioMap[opt], opt)
			m, ok := meta[opt].(map[string]any)
			if !ok {
				gaps = append(gaps, MetadataGap{LessonID: lessonID, ItemID: itemID, Option: opt})
				continue
			}
			metaFile, _ := m["audio"].(string)
			mapFile, _ := audioMap[opt].(string)
			if metaFile != mapFile {
				add("options_metadata."+opt+".audio", metaFile, opt)
			}
		}

	case domain.ItemVisualDecoder:
		add("word_audio", data["word_audio"], data.String("word"))
		charMap := data.Map("char_audio_map")
		glyphs := make([]string, 0, len(charMap))
		for g := range charMap {
			glyphs = append(glyphs, g)
		}
		sort.Strings(glyphs)
		for _, g := range glyphs {
			text := g
			if sym, ok := catalog.Lookup(g); ok {
				text = catalog.SpeechText(sym)
			}
			add("char_audio_map."+g, charMap[g], text)
		}

	case domain.ItemComparisonAudio:
		for i, raw := range data.List("pairs") {
			pair, _ := raw.(map[string]any)
			for _, side := range []string{"left", "right"} {
				sd := domain.Payload(asMap(pair[side]))
				add(fmt.Sprintf("pairs.%d.%s.audio", i, side), sd["audio"], sd.String("text"))
			}
		}
	}
	return refs, gaps
}

func payloadOf(v any) domain.Payload {
	return domain.Payload(asMap(v))
}

func asMap(v any) map[string]any {
	switch t := v.(type) {
	case map[string]any:
		return t
	case domain.Payload:
		return t
	}
	return nil
}
