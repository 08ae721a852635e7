package prosody

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/speechlab/fluency-pipeline/lexicon"
)

// constTrack returns the same value at every time.
type constTrack float64

func (c constTrack) At(float64) float64 { return float64(c) }

func testDictionary(t *testing.T) *lexicon.Dictionary {
	t.Helper()
	d, err := lexicon.Load(strings.NewReader(
		"CAMERA  K AE1 M ER0 AH0\nRECORD  R EH1 K ER0 D\nRECORD(2)  R IH0 K AO1 R D\n"))
	require.NoError(t, err)
	return d
}

func TestSampledTrackInterpolation(t *testing.T) {
	tr := &SampledTrack{Start: 0, Step: 0.01, Values: []float64{100, 110, 120}}

	assert.InDelta(t, 100, tr.At(0), 1e-9)
	assert.InDelta(t, 105, tr.At(0.005), 1e-9)
	assert.InDelta(t, 110, tr.At(0.01), 1e-9)
	assert.InDelta(t, 120, tr.At(0.02), 1e-9)

	// out-of-span queries clamp
	assert.InDelta(t, 100, tr.At(-1), 1e-9)
	assert.InDelta(t, 120, tr.At(5), 1e-9)
}

func TestCollectWordMeasures(t *testing.T) {
	c := NewCollector(testDictionary(t), 0)
	pitch := &SampledTrack{Start: 0, Step: 0.01, Values: []float64{
		200, 200, 200, 200, 200, 180, 180, 180, 180, 180, 180, 180, 180, 180, 180,
	}}
	vowels := []Interval{
		{Label: "EH1", Start: 0.00, End: 0.05},
		{Label: "ER0", Start: 0.06, End: 0.14},
	}

	w, ok := c.CollectWord("s1", "f1", "record", "NOUN", 0, 0.15, vowels, 2, pitch, constTrack(70))
	require.True(t, ok)
	require.Equal(t, 2, w.SyllableCount())

	assert.InDelta(t, 200, w.Syllables[0].PitchMean, 1e-9)
	assert.InDelta(t, 180, w.Syllables[1].PitchMean, 1e-9)
	assert.InDelta(t, 70, w.Syllables[0].IntensityPeak, 1e-9)
	assert.InDelta(t, 0.05, w.Syllables[0].Duration, 1e-9)
	assert.InDelta(t, 0.08, w.Syllables[1].Duration, 1e-9)
	assert.True(t, w.NucleiAgree)

	// nucleus detector disagreement is recorded, not fatal
	w, ok = c.CollectWord("s1", "f1", "record", "NOUN", 0, 0.15, vowels, 3, pitch, constTrack(70))
	require.True(t, ok)
	assert.False(t, w.NucleiAgree)
}

func TestCollectWordFiltersNonTargets(t *testing.T) {
	c := NewCollector(testDictionary(t), 0)
	vowels2 := []Interval{{Start: 0, End: 0.05}, {Start: 0.06, End: 0.12}}

	// unknown word
	_, ok := c.CollectWord("s1", "f1", "zzz", "NOUN", 0, 0.2, vowels2, 2, constTrack(200), constTrack(70))
	assert.False(t, ok)

	// syllable count matching no candidate: camera is 3 syllables
	_, ok = c.CollectWord("s1", "f1", "camera", "NOUN", 0, 0.2, vowels2, 2, constTrack(200), constTrack(70))
	assert.False(t, ok)

	// fully unvoiced vowel
	_, ok = c.CollectWord("s1", "f1", "record", "NOUN", 0, 0.2, vowels2, 2, constTrack(0), constTrack(70))
	assert.False(t, ok)

	// no vowels at all
	_, ok = c.CollectWord("s1", "f1", "record", "NOUN", 0, 0.2, nil, 0, constTrack(200), constTrack(70))
	assert.False(t, ok)
}

func TestIsVowelPhone(t *testing.T) {
	assert.True(t, IsVowelPhone("AE1"))
	assert.True(t, IsVowelPhone("ER0"))
	assert.True(t, IsVowelPhone("IY"))
	assert.False(t, IsVowelPhone("K"))
	assert.False(t, IsVowelPhone("DH"))
	assert.False(t, IsVowelPhone(""))
}
