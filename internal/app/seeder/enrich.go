package seeder

import (
	"context"
	"log/slog"

	"github.com/heartmarshall/khmer-content/internal/audio"
	"github.com/heartmarshall/khmer-content/internal/domain"
	"github.com/heartmarshall/khmer-content/internal/store"
)

// Fallback filename labels when an item carries no English text.
const (
	labelOption  = "option"
	labelAnswer  = "answer"
	labelCompare = "compare"
)

// enrichedItem is a cloned payload with audio and dictionary links filled
// in, plus the audio files it references.
type enrichedItem struct {
	typ  domain.ItemType
	data domain.Payload
	jobs []audio.Job
}

func (e *enrichedItem) addAudio(text, label string) string {
	file := audio.Filename(text, label)
	e.jobs = append(e.jobs, audio.Job{Text: text, Filename: file})
	return file
}

// speech returns the cleaned text to synthesize, or "" when text holds no
// Khmer and must not be voiced.
func speech(text string) string {
	text = domain.NormalizeKhmer(text)
	if !domain.ContainsKhmer(text) {
		return ""
	}
	return text
}

// enrich never touches item.Data; every change lands on a deep copy.
func (s *Seeder) enrich(ctx context.Context, log *slog.Logger, idx int, item domain.LessonItem, res *LessonResult) enrichedItem {
	e := enrichedItem{
		typ:  domain.NormalizeItemType(string(item.Type)),
		data: item.Data.Clone(),
	}
	log = log.With(slog.Int("item", idx), slog.String("type", string(e.typ)))

	switch e.typ {
	case domain.ItemVocabCard:
		s.enrichVocab(ctx, log, &e, res)
	case domain.ItemVisualDecoder:
		s.enrichDecoder(ctx, log, &e, res)
	case domain.ItemQuiz:
		s.enrichQuiz(ctx, log, &e, res)
	case domain.ItemComparisonAudio:
		enrichComparison(&e)
	}
	return e
}

func (s *Seeder) enrichVocab(ctx context.Context, log *slog.Logger, e *enrichedItem, res *LessonResult) {
	back := e.data.String("back")
	khmer := speech(back)
	if khmer == "" {
		return
	}
	english := e.data.String("front")
	file := e.addAudio(khmer, english)
	e.data["audio"] = file

	pron := e.data.String("pronunciation")
	if pron == "" {
		_, pron = domain.SplitGloss(back)
	}
	if english != "" {
		var id int64
		var ok bool
		id, pron, ok = s.linkDictionary(ctx, log, khmer, english, pron, file, res)
		if ok {
			e.data["dictionary_id"] = id
		}
	}
	if pron != "" {
		e.data["pronunciation"] = pron
	}
}

func (s *Seeder) enrichDecoder(ctx context.Context, log *slog.Logger, e *enrichedItem, res *LessonResult) {
	rawWord := e.data.String("word")
	english, gloss := domain.SplitGloss(e.data.String("english_translation"))

	if word := speech(rawWord); word != "" {
		file := e.addAudio(word, english)
		e.data["word_audio"] = file

		pron := e.data.String("pronunciation")
		if pron == "" {
			pron = gloss
		}
		if english != "" {
			var id int64
			var ok bool
			id, pron, ok = s.linkDictionary(ctx, log, word, english, pron, file, res)
			if ok {
				e.data["dictionary_id"] = id
			}
		}
		if pron != "" {
			e.data["pronunciation"] = pron
		}
	}

	if e.data.IsBlank("char_audio_map") {
		if m := charAudioMap(rawWord, s.glyphAudio(ctx, log)); len(m) > 0 {
			e.data["char_audio_map"] = m
		}
	}
}

func (s *Seeder) enrichQuiz(ctx context.Context, log *slog.Logger, e *enrichedItem, res *LessonResult) {
	meta := e.data.Map("options_metadata")
	if meta == nil {
		meta = map[string]any{}
	}
	audioMap := e.data.Map("audio_map")
	if audioMap == nil {
		audioMap = map[string]any{}
	}

	for _, opt := range e.data.Strings("options") {
		text := speech(opt)
		if text == "" {
			continue
		}
		m, _ := meta[opt].(map[string]any)
		if m == nil {
			m = map[string]any{}
		}
		label := domain.Payload(m).String("english")
		if label == "" {
			label = labelOption
		}
		file := e.addAudio(text, label)
		m["audio"] = file
		audioMap[opt] = file
		if _, gloss := domain.SplitGloss(opt); gloss != "" && domain.Payload(m).IsBlank("pronunciation") {
			m["pronunciation"] = gloss
		}
		meta[opt] = m
	}
	if len(meta) > 0 {
		e.data["options_metadata"] = meta
	}
	if len(audioMap) > 0 {
		e.data["audio_map"] = audioMap
	}

	correct := e.data.String("correct_answer")
	text := speech(correct)
	if text == "" {
		return
	}
	file, _ := audioMap[correct].(string)
	if file == "" {
		file = e.addAudio(text, labelAnswer)
	}
	e.data["audio"] = file

	answerMeta, _ := meta[correct].(map[string]any)
	translation := quizTranslation(e.data, answerMeta)
	if translation == "" {
		return
	}
	pron := domain.Payload(answerMeta).String("pronunciation")
	id, pron, ok := s.linkDictionary(ctx, log, text, translation, pron, file, res)
	if !ok {
		return
	}
	e.data["dictionary_id"] = id
	if answerMeta != nil && pron != "" {
		answerMeta["pronunciation"] = pron
	}
}

// quizTranslation returns the English meaning of the correct answer, or ""
// when the item does not carry one.
func quizTranslation(data domain.Payload, answerMeta map[string]any) string {
	for _, key := range []string{"translation", "english"} {
		if v := data.String(key); v != "" {
			return v
		}
	}
	return domain.Payload(answerMeta).String("english")
}

func enrichComparison(e *enrichedItem) {
	for _, raw := range e.data.List("pairs") {
		pair, _ := raw.(map[string]any)
		for _, side := range []string{"left", "right"} {
			sd, _ := pair[side].(map[string]any)
			if sd == nil {
				continue
			}
			text := speech(domain.Payload(sd).String("text"))
			if text == "" {
				continue
			}
			label := domain.Payload(sd).String("label")
			if label == "" {
				label = labelCompare
			}
			sd["audio"] = e.addAudio(text, label)
		}
	}
}

// charAudioMap maps every glyph of word that has alphabet audio.
func charAudioMap(word string, glyphs map[string]string) map[string]any {
	if len(glyphs) == 0 {
		return nil
	}
	out := make(map[string]any)
	for _, r := range word {
		g := string(r)
		if file := glyphs[g]; file != "" {
			out[g] = file
		}
	}
	return out
}

// linkDictionary upserts the canonical entry for khmer and returns its id
// and the reconciled pronunciation. Failures are logged and reported as
// !ok; the item is still inserted without a dictionary link.
func (s *Seeder) linkDictionary(ctx context.Context, log *slog.Logger, khmer, english, pron, file string, res *LessonResult) (int64, string, bool) {
	existing, err := s.store.Select(ctx, store.TableDictionary, store.Query{
		Columns: []string{"id", "pronunciation"},
		Filters: []store.Filter{store.Eq("khmer", khmer)},
		Limit:   1,
	})
	if err != nil {
		log.WarnContext(ctx, "dictionary lookup failed", slog.String("khmer", khmer), slog.String("error", err.Error()))
		return 0, pron, false
	}
	var stored string
	if len(existing) > 0 {
		stored = existing[0].String("pronunciation")
	}
	pron = s.cfg.Precedence.pick(stored, pron)

	row := store.Row{
		"khmer":     khmer,
		"english":   english,
		"item_type": string(domain.ClassifyCategory(khmer, english)),
		"audio":     file,
	}
	if pron != "" {
		row["pronunciation"] = pron
	}
	out, err := s.store.Upsert(ctx, store.TableDictionary, []store.Row{row}, "khmer")
	if err != nil {
		log.WarnContext(ctx, "dictionary upsert failed", slog.String("khmer", khmer), slog.String("error", err.Error()))
		return 0, pron, false
	}
	if len(out) == 0 {
		return 0, pron, false
	}
	id, ok := out[0].Int64("id")
	if !ok {
		return 0, pron, false
	}
	res.DictionaryUpserts++
	return id, pron, true
}
