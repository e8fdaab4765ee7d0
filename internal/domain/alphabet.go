package domain

// SymbolType classifies an alphabet catalog row.
type SymbolType string

const (
	SymbolConsonant        SymbolType = "consonant"
	SymbolVowelDependent   SymbolType = "vowel_dependent"
	SymbolVowelIndependent SymbolType = "vowel_independent"
	SymbolDiacritic        SymbolType = "diacritic"
	SymbolNumber           SymbolType = "number"
	SymbolSymbol           SymbolType = "symbol"
)

func (t SymbolType) String() string { return string(t) }

func (t SymbolType) IsValid() bool {
	switch t {
	case SymbolConsonant, SymbolVowelDependent, SymbolVowelIndependent,
		SymbolDiacritic, SymbolNumber, SymbolSymbol:
		return true
	}
	return false
}

// Series is the phonetic register of a consonant. It decides how a
// following dependent vowel is pronounced.
type Series int

const (
	SeriesNone   Series = 0
	SeriesFirst  Series = 1 // a-series, voiceless register
	SeriesSecond Series = 2 // o-series, voiced register
)

// AlphabetSymbol is one character of the script catalog.
type AlphabetSymbol struct {
	Glyph         string
	NameEN        string
	Type          SymbolType
	Series        Series
	FrequencyRank int
	AudioURL      string
	Description   string
}

// IsSpeakable reports whether the symbol gets its own audio clip.
// Diacritics only modify a neighbouring letter and are never voiced alone.
func (s AlphabetSymbol) IsSpeakable() bool {
	return s.Type != SymbolDiacritic
}

// Module is one chapter of the course structure.
type Module struct {
	ID          int
	Title       string
	LevelLabel  string
	Description string
	IsPaid      bool
	OrderIndex  int
}
