package catalog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/khmer-content/internal/audio"
	"github.com/heartmarshall/khmer-content/internal/domain"
	"github.com/heartmarshall/khmer-content/internal/store"
	"github.com/heartmarshall/khmer-content/internal/store/memory"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type recordingSynth struct {
	mu    sync.Mutex
	texts []string
	fail  map[string]bool
}

func (r *recordingSynth) Synthesize(_ context.Context, text string, _ audio.Voice) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.texts = append(r.texts, text)
	if r.fail[text] {
		return nil, errors.New("provider rejected text")
	}
	return []byte("ID3"), nil
}

func TestSymbols_Catalog(t *testing.T) {
	t.Parallel()

	counts := make(map[domain.SymbolType]int)
	glyphs := make(map[string]bool)
	for _, s := range Symbols() {
		require.True(t, s.Type.IsValid(), s.Glyph)
		assert.False(t, glyphs[s.Glyph], "duplicate glyph %s", s.Glyph)
		glyphs[s.Glyph] = true
		counts[s.Type]++

		if s.Type == domain.SymbolConsonant {
			assert.Contains(t, []domain.Series{domain.SeriesFirst, domain.SeriesSecond}, s.Series, s.Glyph)
		} else {
			assert.Equal(t, domain.SeriesNone, s.Series, s.Glyph)
		}
	}
	assert.Equal(t, 33, counts[domain.SymbolConsonant])
	assert.Equal(t, 10, counts[domain.SymbolNumber])
	assert.NotZero(t, counts[domain.SymbolVowelDependent])
	assert.NotZero(t, counts[domain.SymbolVowelIndependent])
	assert.NotZero(t, counts[domain.SymbolDiacritic])
}

func TestSymbolFilename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		glyph string
		want  string
	}{
		{"ក", "letter_ka.mp3"},
		{"អ", "letter_a.mp3"},
		{"ឋ", "letter_tha_retro.mp3"},
		{"ា", "vowel_aa.mp3"},
		{"ឯ", "vowel_ae_indep.mp3"},
		{"១", "number_one.mp3"},
		{"់", "symbol_bantoc.mp3"},
		{"ៗ", "symbol_lek_to.mp3"},
	}
	for _, tt := range tests {
		sym, ok := Lookup(tt.glyph)
		require.True(t, ok, tt.glyph)
		assert.Equal(t, tt.want, SymbolFilename(sym))
	}
}

func TestSymbolFilename_Unique(t *testing.T) {
	t.Parallel()

	seen := make(map[string]string)
	for _, s := range Symbols() {
		name := SymbolFilename(s)
		if prev, dup := seen[name]; dup {
			t.Errorf("%s and %s share filename %s", prev, s.Glyph, name)
		}
		seen[name] = s.Glyph
	}
}

func TestSpeechText(t *testing.T) {
	t.Parallel()

	aa, _ := Lookup("ា")
	ka, _ := Lookup("ក")
	ae, _ := Lookup("ឯ")

	assert.Equal(t, "អា", SpeechText(aa))
	assert.Equal(t, "ក", SpeechText(ka))
	assert.Equal(t, "ឯ", SpeechText(ae))
}

func TestSeedAlphabet(t *testing.T) {
	t.Parallel()
	st := memory.NewContentStore()
	s := NewSeeder(testLogger(), st, nil)

	n, err := s.SeedAlphabet(context.Background())
	require.NoError(t, err)
	assert.Equal(t, len(Symbols()), n)

	// Re-seeding upserts in place.
	_, err = s.SeedAlphabet(context.Background())
	require.NoError(t, err)

	rows := st.Rows(store.TableAlphabet)
	require.Len(t, rows, len(Symbols()))

	byID := make(map[string]store.Row, len(rows))
	for _, r := range rows {
		byID[r.String("id")] = r
	}
	assert.Equal(t, "letter_ka.mp3", byID["ក"]["audio_url"])
	assert.Equal(t, float64(1), byID["ក"]["series"])
	assert.Nil(t, byID["ា"]["series"])
	assert.Nil(t, byID["់"]["audio_url"], "diacritics are not voiced")
	assert.Nil(t, byID["ៗ"]["audio_url"], "ruled symbols are not voiced")
}

func TestApplyDiacriticRules(t *testing.T) {
	t.Parallel()
	st := memory.NewContentStore()
	s := NewSeeder(testLogger(), st, nil)
	st.Seed(store.TableAlphabet, store.Row{"id": "ំ", "name_en": "nikahit", "type": "diacritic", "audio_url": "vowel_nikahit.mp3"})

	n, err := s.ApplyDiacriticRules(context.Background())

	require.NoError(t, err)
	assert.Equal(t, len(DiacriticRules()), n)
	for _, r := range st.Rows(store.TableAlphabet) {
		assert.Nil(t, r["audio_url"], r.String("id"))
		assert.NotEmpty(t, r.String("description"), r.String("id"))
	}
}

func TestApplyDiacriticRules_StoreFailure(t *testing.T) {
	t.Parallel()
	st := memory.NewContentStore()
	st.FailNext("upsert", store.TableAlphabet, nil, errors.New("rls denied"))

	_, err := NewSeeder(testLogger(), st, nil).ApplyDiacriticRules(context.Background())

	require.Error(t, err)
	assert.Equal(t, 2, st.CountCalls("upsert", store.TableAlphabet), "stops at first failure")
}

func TestGenerateAudio(t *testing.T) {
	t.Parallel()
	synth := &recordingSynth{fail: map[string]bool{"ខ": true}}
	mat := audio.NewMaterializer(testLogger(), synth, audio.Options{Dir: filepath.Join(t.TempDir(), "sounds")})
	s := NewSeeder(testLogger(), memory.NewContentStore(), mat)

	stats, results := s.GenerateAudio(context.Background(), 4)

	voiced := 0
	for _, sym := range Symbols() {
		if s.voiced(sym) {
			voiced++
		}
	}
	assert.Len(t, results, voiced)
	assert.Equal(t, voiced-1, stats.Generated)
	assert.Equal(t, 1, stats.Failed)
	assert.Contains(t, synth.texts, "អា", "dependent vowel spoken on carrier")
	assert.NotContains(t, synth.texts, "់")
	assert.True(t, mat.Exists("letter_ka.mp3"))

	again, _ := s.GenerateAudio(context.Background(), 4)
	assert.Equal(t, voiced-1, again.Existing)
}

func TestGenerateAudio_NoMaterializer(t *testing.T) {
	t.Parallel()
	s := NewSeeder(testLogger(), memory.NewContentStore(), nil)

	stats, results := s.GenerateAudio(context.Background(), 2)

	assert.Nil(t, results)
	assert.NotZero(t, stats.Pending)
}

func TestAudioMap(t *testing.T) {
	t.Parallel()
	st := memory.NewContentStore()
	s := NewSeeder(testLogger(), st, nil)
	_, err := s.SeedAlphabet(context.Background())
	require.NoError(t, err)

	m, err := s.AudioMap(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "letter_sa.mp3", m["ស"])
	assert.Equal(t, "vowel_uor.mp3", m["ួ"])
	assert.NotContains(t, m, "់")
}

func TestAudioMap_MissingTable(t *testing.T) {
	t.Parallel()
	st := memory.NewContentStore()
	st.DropTable(store.TableAlphabet)

	_, err := NewSeeder(testLogger(), st, nil).AudioMap(context.Background())

	require.ErrorIs(t, err, store.ErrTableNotFound)
}

func TestSeedModules(t *testing.T) {
	t.Parallel()
	st := memory.NewContentStore()
	s := NewSeeder(testLogger(), st, nil)

	n, err := s.SeedModules(context.Background(), DefaultCourse)

	require.NoError(t, err)
	assert.Equal(t, 4, n)
	rows := st.Rows(store.TableModules)
	require.Len(t, rows, 4)
	assert.Equal(t, "SURVIVAL", rows[0]["title"])
	assert.Equal(t, false, rows[0]["is_paid"])

	n, err = s.SeedModules(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}
