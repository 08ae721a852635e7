package prosody

import (
	"errors"
	"sort"
)

var (
	// ErrNoValues is returned when a scale is requested over an empty sample.
	ErrNoValues = errors.New("prosody: no values to build percentile scale")
	// ErrScaleNotBuilt signals ranking against a speaker dimension whose
	// scale was never built; a contract violation of the two-pass design.
	ErrScaleNotBuilt = errors.New("prosody: percentile scale not built")
)

// Scale is an immutable per-speaker, per-dimension percentile scale:
// 101 non-decreasing boundaries, index 0 the observed minimum, 1..99 the
// percentile cut points, 100 the observed maximum. Built once after all of a
// speaker's syllables are collected; safe for concurrent readers.
type Scale struct {
	boundaries []float64
}

// BuildScale computes the 101-boundary scale over values.
func BuildScale(values []float64) (*Scale, error) {
	if len(values) == 0 {
		return nil, ErrNoValues
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	b := make([]float64, 0, 101)
	b = append(b, sorted[0])
	for i := 1; i <= 99; i++ {
		b = append(b, cutPoint(sorted, i, 100))
	}
	b = append(b, sorted[len(sorted)-1])

	// interpolation over fewer than ~100 samples can dip at the index-clamp
	// seam; boundaries must stay non-decreasing
	for i := 1; i < len(b); i++ {
		if b[i] < b[i-1] {
			b[i] = b[i-1]
		}
	}
	return &Scale{boundaries: b}, nil
}

// cutPoint is the i-th of n-1 exclusive-method quantile cut points over
// sorted data (linear interpolation between closest ranks).
func cutPoint(sorted []float64, i, n int) float64 {
	ld := len(sorted)
	if ld == 1 {
		return sorted[0]
	}
	j := i * (ld + 1) / n
	delta := i * (ld + 1) % n
	if j < 1 {
		j = 1
	} else if j > ld-1 {
		j = ld - 1
	}
	return (sorted[j-1]*float64(n-delta) + sorted[j]*float64(delta)) / float64(n)
}

// Rank maps a value to its zero-based percentile bucket in [0,99], or -1 for
// a value below the observed minimum. The minimum ranks 0 and the maximum 99.
func (s *Scale) Rank(v float64) int {
	for d, upper := range s.boundaries {
		if v < upper {
			return d - 1
		}
		if d == 100 && v == upper {
			return 99
		}
	}
	// above the built maximum; only reachable for values the scale was not
	// built from
	return 99
}

// Min returns the lowest observed value.
func (s *Scale) Min() float64 { return s.boundaries[0] }

// Max returns the highest observed value.
func (s *Scale) Max() float64 { return s.boundaries[100] }

// ScaleSet holds one speaker's scales for the three acoustic dimensions.
type ScaleSet struct {
	scales [numDimensions]*Scale
}

// Rank ranks v on dimension d, or ErrScaleNotBuilt when the dimension's
// scale is missing.
func (s *ScaleSet) Rank(d Dimension, v float64) (int, error) {
	if s == nil || s.scales[d] == nil {
		return 0, ErrScaleNotBuilt
	}
	return s.scales[d].Rank(v), nil
}

// Accumulator gathers every syllable value of one speaker across the whole
// session; the first pass of the two-pass design. Build closes the barrier.
type Accumulator struct {
	values [numDimensions][]float64
}

// Add records all syllable values of one word occurrence.
func (a *Accumulator) Add(w *WordOccurrence) {
	for _, s := range w.Syllables {
		a.values[DimPitch] = append(a.values[DimPitch], s.PitchMean)
		a.values[DimIntensity] = append(a.values[DimIntensity], s.IntensityPeak)
		a.values[DimDuration] = append(a.values[DimDuration], s.Duration)
	}
}

// Build constructs the immutable ScaleSet; the accumulator must not be added
// to afterwards.
func (a *Accumulator) Build() (*ScaleSet, error) {
	set := &ScaleSet{}
	for d := Dimension(0); d < numDimensions; d++ {
		sc, err := BuildScale(a.values[d])
		if err != nil {
			return nil, err
		}
		set.scales[d] = sc
	}
	return set, nil
}
