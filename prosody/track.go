package prosody

import "math"

// Track is an acoustic contour supplied by the extraction collaborator,
// queryable at arbitrary times.
type Track interface {
	At(t float64) float64
}

// SampledTrack is a uniformly sampled contour with linear interpolation
// between samples. Queries outside the sampled span clamp to the edges.
type SampledTrack struct {
	Start  float64   `json:"start"` // time of Values[0], sec
	Step   float64   `json:"step"`  // sec between samples
	Values []float64 `json:"values"`
}

func (s *SampledTrack) At(t float64) float64 {
	if len(s.Values) == 0 || s.Step <= 0 {
		return 0
	}
	pos := (t - s.Start) / s.Step
	if pos <= 0 {
		return s.Values[0]
	}
	i := int(math.Floor(pos))
	if i >= len(s.Values)-1 {
		return s.Values[len(s.Values)-1]
	}
	frac := pos - float64(i)
	return s.Values[i]*(1-frac) + s.Values[i+1]*frac
}
