package prosody

import (
	"math"

	"github.com/speechlab/fluency-pipeline/lexicon"
)

// DefaultTimeStep is the sampling step for pitch and intensity measures
// within a vowel interval.
const DefaultTimeStep = 0.01 // sec

// Interval is a labeled time span produced by the forced aligner.
type Interval struct {
	Label string
	Start float64
	End   float64
}

// Collector turns aligned word spans and vowel intervals into measured
// WordOccurrences. It is pure computation over externally supplied tracks.
type Collector struct {
	Dict     *lexicon.Dictionary
	TimeStep float64
}

// NewCollector returns a Collector over dict; timeStep <= 0 selects the
// default 10 ms step.
func NewCollector(dict *lexicon.Dictionary, timeStep float64) *Collector {
	if timeStep <= 0 {
		timeStep = DefaultTimeStep
	}
	return &Collector{Dict: dict, TimeStep: timeStep}
}

// CollectWord measures one word occurrence. vowels are the vowel-nucleus
// sub-intervals inside the word span; nucleiCount is the count from the
// independent nucleus detector. The word is dropped (nil, false) when it is
// unknown to the dictionary, when no candidate pattern matches the vowel
// count, or when a vowel has no voiced pitch samples at all.
func (c *Collector) CollectWord(speaker, file, word, pos string, start, end float64, vowels []Interval, nucleiCount int, pitch, intensity Track) (*WordOccurrence, bool) {
	if len(vowels) == 0 {
		return nil, false
	}
	if len(c.Dict.Lookup(word)) == 0 {
		return nil, false
	}
	if !c.Dict.HasSyllableCount(word, len(vowels)) {
		return nil, false
	}

	sylls := make([]Syllable, 0, len(vowels))
	for _, v := range vowels {
		s, ok := c.measure(v, pitch, intensity)
		if !ok {
			return nil, false
		}
		sylls = append(sylls, s)
	}

	return &WordOccurrence{
		Speaker:     speaker,
		File:        file,
		Word:        word,
		POS:         pos,
		Start:       start,
		End:         end,
		Syllables:   sylls,
		NucleiAgree: nucleiCount == len(vowels),
	}, true
}

// measure samples both tracks at TimeStep across [v.Start, v.End). The pitch
// mean, min, max and sd are taken over voiced (positive) samples only; the
// intensity keeps the peak value.
func (c *Collector) measure(v Interval, pitch, intensity Track) (Syllable, bool) {
	var (
		voiced []float64
		dbMax  = math.Inf(-1)
	)
	for t := v.Start; t < v.End; t += c.TimeStep {
		if f0 := pitch.At(t); f0 > 0 {
			voiced = append(voiced, f0)
		}
		if db := intensity.At(t); db > dbMax {
			dbMax = db
		}
	}
	if len(voiced) == 0 || math.IsInf(dbMax, -1) {
		return Syllable{}, false
	}

	s := Syllable{
		Start:         v.Start,
		End:           v.End,
		PitchMean:     mean(voiced),
		PitchMin:      minOf(voiced),
		PitchMax:      maxOf(voiced),
		IntensityPeak: dbMax,
		Duration:      v.End - v.Start,
	}
	if len(voiced) > 1 {
		s.PitchSD = stdev(voiced)
	} else {
		s.PitchSD = s.PitchMin
	}
	return s, true
}

func mean(v []float64) float64 {
	sum := 0.0
	for _, x := range v {
		sum += x
	}
	return sum / float64(len(v))
}

func minOf(v []float64) float64 {
	m := v[0]
	for _, x := range v[1:] {
		if x < m {
			m = x
		}
	}
	return m
}

func maxOf(v []float64) float64 {
	m := v[0]
	for _, x := range v[1:] {
		if x > m {
			m = x
		}
	}
	return m
}

// stdev is the sample standard deviation.
func stdev(v []float64) float64 {
	m := mean(v)
	sum := 0.0
	for _, x := range v {
		sum += (x - m) * (x - m)
	}
	return math.Sqrt(sum / float64(len(v)-1))
}
