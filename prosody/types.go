package prosody

// Dimension is one of the three acoustic dimensions a syllable is measured on.
type Dimension int

const (
	DimPitch Dimension = iota
	DimIntensity
	DimDuration
	numDimensions
)

func (d Dimension) String() string {
	switch d {
	case DimPitch:
		return "pitch"
	case DimIntensity:
		return "intensity"
	case DimDuration:
		return "duration"
	}
	return "unknown"
}

// Syllable holds the acoustic measurements of one vowel nucleus.
type Syllable struct {
	Start float64 `json:"start"` // sec
	End   float64 `json:"end"`   // sec

	PitchMean     float64 `json:"pitch_mean"` // Hz, over voiced samples only
	PitchMin      float64 `json:"pitch_min"`
	PitchMax      float64 `json:"pitch_max"`
	PitchSD       float64 `json:"pitch_sd"`
	IntensityPeak float64 `json:"intensity_peak"` // dB
	Duration      float64 `json:"duration"`       // sec
}

// WordOccurrence is one detected target word in a session, immutable once
// collected.
type WordOccurrence struct {
	Speaker string `json:"speaker"`
	File    string `json:"file"`
	Word    string `json:"word"`
	POS     string `json:"pos"`

	Start     float64    `json:"start"`
	End       float64    `json:"end"`
	Syllables []Syllable `json:"syllables"`

	// NucleiAgree is true when the independent syllable-nucleus detector
	// found the same number of syllables as the aligner.
	NucleiAgree bool `json:"nuclei_agree"`
}

// SyllableCount returns the number of measured syllables.
func (w *WordOccurrence) SyllableCount() int { return len(w.Syllables) }

// Value returns the word's per-syllable values on one dimension.
func (w *WordOccurrence) Value(i int, d Dimension) float64 {
	s := w.Syllables[i]
	switch d {
	case DimPitch:
		return s.PitchMean
	case DimIntensity:
		return s.IntensityPeak
	default:
		return s.Duration
	}
}

// contentPOS are the word categories counted as plain (content) words.
var contentPOS = map[string]bool{
	"NOUN": true,
	"VERB": true,
	"ADV":  true,
	"ADJ":  true,
}

// IsContentPOS reports whether a POS tag denotes a content word.
func IsContentPOS(pos string) bool { return contentPOS[pos] }

// arpaVowels are the vowel phone prefixes of the ARPAbet set emitted by the
// forced aligner; a phone whose first two letters match is a syllable nucleus.
var arpaVowels = map[string]bool{
	"AA": true, "AE": true, "AH": true, "AO": true, "AW": true,
	"AY": true, "EH": true, "ER": true, "EY": true, "IH": true,
	"IY": true, "OW": true, "OY": true, "UH": true, "UW": true,
}

// IsVowelPhone reports whether an aligner phone label is a vowel nucleus.
func IsVowelPhone(label string) bool {
	if len(label) < 2 {
		return false
	}
	return arpaVowels[label[:2]]
}
