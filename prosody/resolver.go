package prosody

import (
	"fmt"
	"math"
	"strings"

	"github.com/speechlab/fluency-pipeline/lexicon"
)

// DefaultMonoThreshold is the percentile rank at or above which a
// single-syllable word counts as stressed.
const DefaultMonoThreshold = 50

// ExpectedShape is the stress pattern a word is expected to realize.
// When the POS tie-break cannot decide between the mirror bisyllabic
// candidates, both are kept and the shape is ambiguous.
type ExpectedShape struct {
	Candidates []lexicon.StressPattern
	Pattern    lexicon.StressPattern // chosen pattern; empty when ambiguous
	Ambiguous  bool
}

// Label renders the shape for reporting: the chosen pattern, or all
// candidates joined with "/" when ambiguous.
func (e ExpectedShape) Label() string {
	if !e.Ambiguous {
		return string(e.Pattern)
	}
	return e.CandidatesLabel()
}

// CandidatesLabel renders every dictionary candidate joined with "/".
func (e ExpectedShape) CandidatesLabel() string {
	parts := make([]string, len(e.Candidates))
	for i, c := range e.Candidates {
		parts[i] = string(c)
	}
	return strings.Join(parts, "/")
}

// Matches reports whether an observed pattern realizes the expectation. An
// ambiguous expectation matches when the observed pattern equals any of its
// candidates.
func (e ExpectedShape) Matches(observed lexicon.StressPattern) bool {
	if !e.Ambiguous {
		return e.Pattern == observed
	}
	for _, c := range e.Candidates {
		if c == observed {
			return true
		}
	}
	return false
}

// StressPosition returns the 1-based expected stressed syllable; for an
// ambiguous shape the first candidate decides.
func (e ExpectedShape) StressPosition() int {
	if !e.Ambiguous {
		return e.Pattern.StressPosition()
	}
	if len(e.Candidates) > 0 {
		return e.Candidates[0].StressPosition()
	}
	return 0
}

// mirrorPair reports whether candidates are exactly the two mirror-image
// bisyllabic patterns (stress-first and stress-second).
func mirrorPair(candidates []lexicon.StressPattern) bool {
	if len(candidates) != 2 {
		return false
	}
	a, b := candidates[0], candidates[1]
	return (a == "Oo" && b == "oO") || (a == "oO" && b == "Oo")
}

// ResolveExpected picks the expected pattern among a word's dictionary
// candidates, given its POS tag and observed syllable count:
//   - mirror bisyllabic pair: stress-first for NOUN/ADJ, stress-second for
//     VERB, otherwise both candidates are kept (ambiguous);
//   - candidates differing by syllable count: the one matching the observed
//     count;
//   - single-syllable words of non-content categories are expected
//     unstressed regardless of the dictionary.
func ResolveExpected(candidates []lexicon.StressPattern, pos string, syllables int) ExpectedShape {
	e := ExpectedShape{Candidates: candidates}
	switch {
	case len(candidates) == 1:
		e.Pattern = candidates[0]
	case mirrorPair(candidates):
		switch {
		case pos == "NOUN" || pos == "ADJ":
			e.Pattern = "Oo"
		case pos == "VERB":
			e.Pattern = "oO"
		default:
			e.Ambiguous = true
		}
	default:
		for _, c := range candidates {
			if c.Syllables() == syllables {
				e.Pattern = c
			}
		}
		if e.Pattern == "" {
			e.Ambiguous = true
		}
	}
	if e.Pattern.Syllables() == 1 && !IsContentPOS(pos) {
		e.Pattern = lexicon.StressPattern([]byte{lexicon.Unstressed})
	}
	return e
}

// StressRecord is the terminal result of shape resolution for one word
// occurrence: chosen expectation, per-dimension and merged observed shapes,
// the rank vectors they were derived from, and the match flag.
type StressRecord struct {
	Word     *WordOccurrence
	Expected ExpectedShape

	PitchRanks     []int
	IntensityRanks []int
	DurationRanks  []int
	MergedRanks    []float64 // per-syllable mean of the three ranks, 1 decimal

	PitchShape     lexicon.StressPattern
	IntensityShape lexicon.StressPattern
	DurationShape  lexicon.StressPattern
	MergedShape    lexicon.StressPattern

	ExpectedStressPosition int
	ObservedStressPosition int
	Match                  bool
}

// Resolver derives observed stress shapes by ranking syllables on a
// speaker's percentile scales. MonoThreshold is the rank at or above which a
// lone syllable counts as stressed.
type Resolver struct {
	MonoThreshold int
}

// NewResolver returns a Resolver with the given mono-syllable threshold;
// values <= 0 select the default median threshold.
func NewResolver(monoThreshold int) *Resolver {
	if monoThreshold <= 0 {
		monoThreshold = DefaultMonoThreshold
	}
	return &Resolver{MonoThreshold: monoThreshold}
}

// Resolve runs the full per-word derivation. It requires the speaker's
// ScaleSet to be completely built; a missing scale fails with
// ErrScaleNotBuilt. Resolving the same word twice against the same scales
// yields identical records.
func (r *Resolver) Resolve(w *WordOccurrence, candidates []lexicon.StressPattern, scales *ScaleSet) (*StressRecord, error) {
	n := w.SyllableCount()
	rec := &StressRecord{
		Word:           w,
		Expected:       ResolveExpected(candidates, w.POS, n),
		PitchRanks:     make([]int, n),
		IntensityRanks: make([]int, n),
		DurationRanks:  make([]int, n),
		MergedRanks:    make([]float64, n),
	}

	for i := 0; i < n; i++ {
		var err error
		if rec.PitchRanks[i], err = scales.Rank(DimPitch, w.Value(i, DimPitch)); err != nil {
			return nil, fmt.Errorf("rank %q syllable %d: %w", w.Word, i, err)
		}
		if rec.IntensityRanks[i], err = scales.Rank(DimIntensity, w.Value(i, DimIntensity)); err != nil {
			return nil, fmt.Errorf("rank %q syllable %d: %w", w.Word, i, err)
		}
		if rec.DurationRanks[i], err = scales.Rank(DimDuration, w.Value(i, DimDuration)); err != nil {
			return nil, fmt.Errorf("rank %q syllable %d: %w", w.Word, i, err)
		}
		m := float64(rec.PitchRanks[i]+rec.IntensityRanks[i]+rec.DurationRanks[i]) / 3
		rec.MergedRanks[i] = math.Round(m*10) / 10
	}

	rec.PitchShape = r.shapeOfInts(rec.PitchRanks)
	rec.IntensityShape = r.shapeOfInts(rec.IntensityRanks)
	rec.DurationShape = r.shapeOfInts(rec.DurationRanks)
	rec.MergedShape = r.shapeOfFloats(rec.MergedRanks)

	rec.ExpectedStressPosition = rec.Expected.StressPosition()
	rec.ObservedStressPosition = rec.MergedShape.StressPosition()
	rec.Match = rec.Expected.Matches(rec.MergedShape)
	return rec, nil
}

// shapeOfInts marks the syllable(s) holding the maximum rank as stressed.
// All tied maxima are marked: an observed shape may carry more than one
// stress (known ambiguity, kept as-is). Single syllables use the threshold
// rule instead, since no maximum comparison is possible.
func (r *Resolver) shapeOfInts(ranks []int) lexicon.StressPattern {
	if len(ranks) == 1 {
		if ranks[0] >= r.MonoThreshold {
			return lexicon.StressPattern([]byte{lexicon.Stressed})
		}
		return lexicon.StressPattern([]byte{lexicon.Unstressed})
	}
	max := ranks[0]
	for _, v := range ranks[1:] {
		if v > max {
			max = v
		}
	}
	b := make([]byte, len(ranks))
	for i, v := range ranks {
		if v == max {
			b[i] = lexicon.Stressed
		} else {
			b[i] = lexicon.Unstressed
		}
	}
	return lexicon.StressPattern(b)
}

func (r *Resolver) shapeOfFloats(ranks []float64) lexicon.StressPattern {
	if len(ranks) == 1 {
		if ranks[0] >= float64(r.MonoThreshold) {
			return lexicon.StressPattern([]byte{lexicon.Stressed})
		}
		return lexicon.StressPattern([]byte{lexicon.Unstressed})
	}
	max := ranks[0]
	for _, v := range ranks[1:] {
		if v > max {
			max = v
		}
	}
	b := make([]byte, len(ranks))
	for i, v := range ranks {
		if v == max {
			b[i] = lexicon.Stressed
		} else {
			b[i] = lexicon.Unstressed
		}
	}
	return lexicon.StressPattern(b)
}
