package prosody

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildScaleEmpty(t *testing.T) {
	_, err := BuildScale(nil)
	assert.ErrorIs(t, err, ErrNoValues)
}

func TestScaleBoundaryInclusivity(t *testing.T) {
	values := []float64{180, 210, 195, 240, 172, 205, 188, 231, 199, 226}
	s, err := BuildScale(values)
	require.NoError(t, err)

	// min ranks 0, max ranks 99
	assert.Equal(t, 0, s.Rank(172))
	assert.Equal(t, 99, s.Rank(240))
	assert.Equal(t, 172.0, s.Min())
	assert.Equal(t, 240.0, s.Max())

	// below the minimum is out of scale
	assert.Equal(t, -1, s.Rank(100))

	// interior values land strictly between
	r := s.Rank(205)
	assert.Greater(t, r, 0)
	assert.Less(t, r, 99)
}

func TestScaleBoundariesMonotonic(t *testing.T) {
	values := []float64{3, 1, 4, 1, 5, 9, 2, 6, 5, 3, 5, 8, 9, 7}
	s, err := BuildScale(values)
	require.NoError(t, err)

	require.Len(t, s.boundaries, 101)
	for i := 1; i < len(s.boundaries); i++ {
		assert.GreaterOrEqual(t, s.boundaries[i], s.boundaries[i-1], "boundary %d", i)
	}
}

func TestScaleSingleValue(t *testing.T) {
	s, err := BuildScale([]float64{42})
	require.NoError(t, err)
	assert.Equal(t, 99, s.Rank(42))
	assert.Equal(t, -1, s.Rank(41))
}

func TestScaleRankOrdering(t *testing.T) {
	values := make([]float64, 0, 200)
	for i := 0; i < 200; i++ {
		values = append(values, float64(i))
	}
	s, err := BuildScale(values)
	require.NoError(t, err)

	prev := -1
	for i := 0; i < 200; i++ {
		r := s.Rank(float64(i))
		assert.GreaterOrEqual(t, r, prev)
		assert.LessOrEqual(t, r, 99)
		prev = r
	}
}

func TestScaleSetUnbuilt(t *testing.T) {
	var set *ScaleSet
	_, err := set.Rank(DimPitch, 1)
	assert.ErrorIs(t, err, ErrScaleNotBuilt)

	_, err = (&ScaleSet{}).Rank(DimDuration, 1)
	assert.ErrorIs(t, err, ErrScaleNotBuilt)
}

func TestAccumulatorBuild(t *testing.T) {
	var acc Accumulator
	acc.Add(&WordOccurrence{Syllables: []Syllable{
		{PitchMean: 200, IntensityPeak: 70, Duration: 0.08},
		{PitchMean: 180, IntensityPeak: 65, Duration: 0.12},
	}})
	acc.Add(&WordOccurrence{Syllables: []Syllable{
		{PitchMean: 220, IntensityPeak: 72, Duration: 0.10},
	}})

	set, err := acc.Build()
	require.NoError(t, err)

	r, err := set.Rank(DimPitch, 180)
	require.NoError(t, err)
	assert.Equal(t, 0, r)
	r, err = set.Rank(DimPitch, 220)
	require.NoError(t, err)
	assert.Equal(t, 99, r)
	r, err = set.Rank(DimDuration, 0.12)
	require.NoError(t, err)
	assert.Equal(t, 99, r)
}
