// Package catalog holds the static script catalog and course structure
// and seeds them, with alphabet audio, into the content store.
package catalog

import (
	"github.com/heartmarshall/khmer-content/internal/audio"
	"github.com/heartmarshall/khmer-content/internal/domain"
)

// Carrier is the consonant a dependent vowel is written on when it has to
// be spoken alone.
const Carrier = "អ"

func consonant(glyph, name string, series domain.Series, rank int) domain.AlphabetSymbol {
	return domain.AlphabetSymbol{Glyph: glyph, NameEN: name, Type: domain.SymbolConsonant, Series: series, FrequencyRank: rank}
}

func symbol(glyph, name string, typ domain.SymbolType, rank int) domain.AlphabetSymbol {
	return domain.AlphabetSymbol{Glyph: glyph, NameEN: name, Type: typ, FrequencyRank: rank}
}

// symbols is ordered by type, then by frequency rank within the source
// corpus the ranks were taken from.
var symbols = []domain.AlphabetSymbol{
	consonant("ន", "No", domain.SeriesSecond, 3),
	consonant("រ", "Ro", domain.SeriesSecond, 4),
	consonant("ក", "Ka", domain.SeriesFirst, 5),
	consonant("ប", "Ba", domain.SeriesFirst, 6),
	consonant("ម", "Mo", domain.SeriesSecond, 7),
	consonant("ង", "Ngo", domain.SeriesSecond, 8),
	consonant("ស", "Sa", domain.SeriesFirst, 9),
	consonant("ត", "Ta", domain.SeriesFirst, 10),
	consonant("ល", "Lo", domain.SeriesSecond, 11),
	consonant("យ", "Yo", domain.SeriesSecond, 12),
	consonant("ទ", "To", domain.SeriesSecond, 16),
	consonant("ព", "Po", domain.SeriesSecond, 17),
	consonant("ដ", "Da", domain.SeriesFirst, 18),
	consonant("ច", "Ja", domain.SeriesFirst, 19),
	consonant("ជ", "Jo", domain.SeriesSecond, 22),
	consonant("វ", "Vo", domain.SeriesSecond, 27),
	consonant("គ", "Ko", domain.SeriesSecond, 28),
	consonant("អ", "'A", domain.SeriesFirst, 29),
	consonant("ថ", "Tha", domain.SeriesFirst, 33),
	consonant("ខ", "Kha", domain.SeriesFirst, 34),
	consonant("ញ", "Nho", domain.SeriesSecond, 35),
	consonant("ណ", "Na", domain.SeriesFirst, 36),
	consonant("ហ", "Ha", domain.SeriesFirst, 38),
	consonant("ធ", "Tho", domain.SeriesSecond, 39),
	consonant("ភ", "Pho", domain.SeriesSecond, 40),
	consonant("ផ", "Pha", domain.SeriesFirst, 42),
	consonant("ឡ", "La", domain.SeriesFirst, 46),
	consonant("ឆ", "Cha", domain.SeriesFirst, 47),
	consonant("ឋ", "Tha (Retro)", domain.SeriesFirst, 52),
	consonant("ឈ", "Cho", domain.SeriesSecond, 56),
	consonant("ឃ", "Kho", domain.SeriesSecond, 57),
	consonant("ឌ", "Do", domain.SeriesSecond, 59),
	consonant("ឍ", "Tho (Retro)", domain.SeriesSecond, 65),

	symbol("ា", "aa", domain.SymbolVowelDependent, 1),
	symbol("ិ", "i", domain.SymbolVowelDependent, 14),
	symbol("ុ", "u", domain.SymbolVowelDependent, 15),
	symbol("េ", "ei", domain.SymbolVowelDependent, 21),
	symbol("ី", "ey", domain.SymbolVowelDependent, 23),
	symbol("ើ", "oe", domain.SymbolVowelDependent, 24),
	symbol("ែ", "ae", domain.SymbolVowelDependent, 25),
	symbol("ោ", "ao", domain.SymbolVowelDependent, 26),
	symbol("ូ", "oo", domain.SymbolVowelDependent, 31),
	symbol("ួ", "uor", domain.SymbolVowelDependent, 32),
	symbol("ៅ", "au", domain.SymbolVowelDependent, 37),
	symbol("ឹ", "oeu", domain.SymbolVowelDependent, 41),
	symbol("ៃ", "ai", domain.SymbolVowelDependent, 44),
	symbol("ៀ", "ie", domain.SymbolVowelDependent, 45),
	symbol("ឺ", "eu", domain.SymbolVowelDependent, 51),
	symbol("ឿ", "yeua", domain.SymbolVowelDependent, 58),

	symbol("ឲ", "aoy", domain.SymbolVowelIndependent, 48),
	symbol("ឯ", "ae indep", domain.SymbolVowelIndependent, 60),
	symbol("ឧ", "u indep", domain.SymbolVowelIndependent, 61),
	symbol("ឥ", "e indep", domain.SymbolVowelIndependent, 64),
	symbol("ឱ", "ao indep", domain.SymbolVowelIndependent, 66),
	symbol("ឬ", "ry", domain.SymbolVowelIndependent, 67),
	symbol("ឪ", "ov", domain.SymbolVowelIndependent, 68),
	symbol("ឭ", "ly", domain.SymbolVowelIndependent, 69),
	symbol("ឫ", "ryy", domain.SymbolVowelIndependent, 70),
	symbol("ឮ", "lyy", domain.SymbolVowelIndependent, 71),
	symbol("ឦ", "ei indep", domain.SymbolVowelIndependent, 72),
	symbol("ឳ", "ok", domain.SymbolVowelIndependent, 77),

	symbol("្", "virama", domain.SymbolDiacritic, 2),
	symbol("់", "bantoc", domain.SymbolDiacritic, 13),
	symbol("ំ", "nikahit", domain.SymbolDiacritic, 20),
	symbol("ះ", "reahmuk", domain.SymbolDiacritic, 30),
	symbol("៉", "musakatoan", domain.SymbolDiacritic, 43),
	symbol("័", "samyok sann", domain.SymbolDiacritic, 49),
	symbol("៊", "treisap", domain.SymbolDiacritic, 50),
	symbol("៏", "asda", domain.SymbolDiacritic, 53),
	symbol("៍", "tantakheat", domain.SymbolDiacritic, 54),
	symbol("ៈ", "yuukaleapintu", domain.SymbolDiacritic, 55),
	symbol("៌", "robabat", domain.SymbolDiacritic, 63),
	symbol("៎", "kakabat", domain.SymbolDiacritic, 78),

	symbol("០", "zero", domain.SymbolNumber, 73),
	symbol("១", "one", domain.SymbolNumber, 75),
	symbol("២", "two", domain.SymbolNumber, 74),
	symbol("៣", "three", domain.SymbolNumber, 79),
	symbol("៤", "four", domain.SymbolNumber, 80),
	symbol("៥", "five", domain.SymbolNumber, 76),
	symbol("៦", "six", domain.SymbolNumber, 81),
	symbol("៧", "seven", domain.SymbolNumber, 82),
	symbol("៨", "eight", domain.SymbolNumber, 83),
	symbol("៩", "nine", domain.SymbolNumber, 84),

	symbol("ៗ", "lek to", domain.SymbolSymbol, 62),
	symbol("។", "khan", domain.SymbolSymbol, 85),
}

// Symbols returns a copy of the script catalog.
func Symbols() []domain.AlphabetSymbol {
	out := make([]domain.AlphabetSymbol, len(symbols))
	copy(out, symbols)
	return out
}

// Lookup returns the catalog symbol for glyph.
func Lookup(glyph string) (domain.AlphabetSymbol, bool) {
	for _, s := range symbols {
		if s.Glyph == glyph {
			return s, true
		}
	}
	return domain.AlphabetSymbol{}, false
}

// SymbolFilename returns "<prefix>_<name>.mp3", the prefix chosen by type.
func SymbolFilename(sym domain.AlphabetSymbol) string {
	return filePrefix(sym.Type) + "_" + audio.Slugify(sym.NameEN) + audio.Ext
}

func filePrefix(t domain.SymbolType) string {
	switch t {
	case domain.SymbolConsonant:
		return "letter"
	case domain.SymbolVowelDependent, domain.SymbolVowelIndependent:
		return "vowel"
	case domain.SymbolNumber:
		return "number"
	}
	return "symbol"
}

// SpeechText returns what the synthesizer reads for sym. Dependent vowels
// cannot stand alone and are voiced on the carrier consonant.
func SpeechText(sym domain.AlphabetSymbol) string {
	if sym.Type == domain.SymbolVowelDependent {
		return Carrier + sym.Glyph
	}
	return sym.Glyph
}

// DiacriticRule explains what a mark does to the letters around it.
type DiacriticRule struct {
	Glyph       string
	Description string
}

var diacriticRules = []DiacriticRule{
	{"់", "Shortener. Makes the vowel sound short and clipped."},
	{"៉", "Series shifter. Converts an o-series consonant into an a-series sound."},
	{"៊", "Series shifter. Converts an a-series consonant into an o-series sound."},
	{"៍", "Silencer. The letter under this sign is not pronounced. Often used in loanwords."},
	{"័", "Vowel changer. Usually acts like a short 'a' sound in Sanskrit and Pali words."},
	{"ំ", "Nasalizer. Adds an 'm' sound to the end of the syllable."},
	{"ះ", "Aspirator. Adds a breathy 'h' sound at the end of the syllable."},
	{"្", "Subscript maker. Drops the vowel of the consonant and writes the next consonant underneath."},
	{"ៗ", "Duplicator. Repeats the previous word or phrase for emphasis or plural."},
	{"។", "Full stop. Marks the end of a sentence."},
}

// DiacriticRules returns the explanatory rules applied to silent marks.
func DiacriticRules() []DiacriticRule {
	out := make([]DiacriticRule, len(diacriticRules))
	copy(out, diacriticRules)
	return out
}

// DefaultCourse is the module structure of the course.
var DefaultCourse = []domain.Module{
	{ID: 1, Title: "SURVIVAL", LevelLabel: "Level 1", Description: "Speak immediately. No writing.", IsPaid: false, OrderIndex: 0},
	{ID: 2, Title: "DAILY LIFE", LevelLabel: "Level 2", Description: "Solve problems without help.", IsPaid: true, OrderIndex: 1},
	{ID: 3, Title: "GRAMMAR ENGINE", LevelLabel: "Level 3", Description: "Build your own sentences.", IsPaid: true, OrderIndex: 2},
	{ID: 4, Title: "VISUAL DECODER", LevelLabel: "Level 4", Description: "Hack the script. Reading.", IsPaid: true, OrderIndex: 3},
}
