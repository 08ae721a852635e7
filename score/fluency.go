package score

import (
	"math"

	"github.com/speechlab/fluency-pipeline/pause"
	"github.com/speechlab/fluency-pipeline/prosody"
)

const (
	// DefaultSignificantPause is the minimum duration for a pause to count
	// against the pause sub-score; independent from the classifier's
	// syntactic-tagging window.
	DefaultSignificantPause = 0.5 // sec

	longPause         = 1.5 // sec, threshold of the per-pause penalty
	longPausePenalty  = 2
	durationRatioGood = 1.2 // stressed syllable long enough vs unstressed mean
)

// DurationPair is one word's stressed syllable duration against the mean of
// its unstressed syllables.
type DurationPair struct {
	Stressed       float64
	MeanUnstressed float64
}

// SpeakerRecord aggregates everything one speaker's session contributes to
// the composite score. Built once per full analysis, never mutated after.
type SpeakerRecord struct {
	Speaker string

	PauseDurations []float64 // classified gaps only
	SpeechSeconds  float64   // summed target-word spans
	TotalSyllables int

	StressedPitch   []float64 // pooled across words
	UnstressedPitch []float64
	DurationPairs   []DurationPair // multi-syllable words only

	Matched    int
	TotalWords int
}

// BuildRecord derives a SpeakerRecord from resolved stress records and the
// speaker's classified gaps. Pitch pooling follows the expected stress
// position (first candidate for ambiguous expectations); voiceless pitch
// means are skipped.
func BuildRecord(speaker string, records []*prosody.StressRecord, gaps []pause.ClassifiedGap) *SpeakerRecord {
	rec := &SpeakerRecord{Speaker: speaker}

	for _, g := range gaps {
		rec.PauseDurations = append(rec.PauseDurations, g.Duration)
	}

	for _, r := range records {
		w := r.Word
		rec.SpeechSeconds += w.End - w.Start
		rec.TotalSyllables += w.SyllableCount()
		rec.TotalWords++
		if r.Match {
			rec.Matched++
		}

		pos := r.ExpectedStressPosition
		for i, s := range w.Syllables {
			if s.PitchMean <= 0 {
				continue
			}
			if i+1 == pos {
				rec.StressedPitch = append(rec.StressedPitch, s.PitchMean)
			} else {
				rec.UnstressedPitch = append(rec.UnstressedPitch, s.PitchMean)
			}
		}

		if n := w.SyllableCount(); n >= 2 && pos >= 1 && pos <= n {
			var unstressed []float64
			for i, s := range w.Syllables {
				if i+1 != pos {
					unstressed = append(unstressed, s.Duration)
				}
			}
			rec.DurationPairs = append(rec.DurationPairs, DurationPair{
				Stressed:       w.Syllables[pos-1].Duration,
				MeanUnstressed: mean(unstressed),
			})
		}
	}
	return rec
}

// Result is the complete five-field score bundle for one speaker. Every
// field is always populated; impossible computations yield their defined
// defaults rather than omitting the speaker.
type Result struct {
	Speaker string `json:"speaker"`

	Pause    int `json:"pause_score"`     // 0-20
	Speed    int `json:"speed_score"`     // 0-20
	Pitch    int `json:"f0_score"`        // 0-30
	Duration int `json:"duration_score"`  // 0-15
	Accuracy int `json:"stress_accuracy"` // 0-15

	Raw      int     `json:"raw_score"`      // 0-100
	Rescaled float64 `json:"rescaled_score"` // 0-30
	Bracket  int     `json:"final_score"`    // snapped grade band
	Label    string  `json:"final_grade"`
	Grade    int     `json:"grade_numeric"` // 6 (best) .. 1
}

// Scorer computes the five prosodic fluency sub-scores and the bracketed
// composite. Stateless; a pure function of the SpeakerRecord.
type Scorer struct {
	SignificantPause float64
}

// NewScorer returns a scorer; a non-positive threshold selects the default
// significant-pause filter.
func NewScorer(significantPause float64) *Scorer {
	if significantPause <= 0 {
		significantPause = DefaultSignificantPause
	}
	return &Scorer{SignificantPause: significantPause}
}

// PauseScore rates mean significant-pause duration on a 0-20 band, with a
// per-long-pause penalty. No significant pause at all is full marks.
func (s *Scorer) PauseScore(rec *SpeakerRecord) int {
	var significant []float64
	for _, d := range rec.PauseDurations {
		if d >= s.SignificantPause {
			significant = append(significant, d)
		}
	}
	if len(significant) == 0 {
		return 20
	}

	avg := mean(significant)
	base := 5
	switch {
	case avg <= 0.7:
		base = 20
	case avg <= longPause:
		base = 10
	}

	for _, d := range significant {
		if d >= longPause {
			base -= longPausePenalty
		}
	}
	if base < 0 {
		base = 0
	}
	return base
}

// SpeedScore rates syllables per minute over the summed target-word time.
func (s *Scorer) SpeedScore(rec *SpeakerRecord) int {
	if rec.SpeechSeconds <= 0 {
		return 0
	}
	spm := float64(rec.TotalSyllables) / (rec.SpeechSeconds / 60.0)
	switch {
	case spm >= 260:
		return 20
	case spm >= 230:
		return 17
	case spm >= 200:
		return 15
	case spm >= 170:
		return 12
	case spm >= 140:
		return 10
	case spm >= 110:
		return 7
	case spm >= 100:
		return 5
	default:
		return 0
	}
}

// PitchScore rates the semitone contrast between pooled stressed and
// unstressed syllable pitch means. Both pools must be non-empty.
func (s *Scorer) PitchScore(rec *SpeakerRecord) int {
	if len(rec.StressedPitch) == 0 || len(rec.UnstressedPitch) == 0 {
		return 0
	}
	stressed := mean(rec.StressedPitch)
	unstressed := mean(rec.UnstressedPitch)
	if unstressed <= 0 {
		return 0
	}
	st := 12 * math.Log2(stressed/unstressed)
	switch {
	case st <= 0:
		return 0
	case st <= 0.5:
		return 10
	case st <= 1.0:
		return 20
	default:
		return 30
	}
}

// DurationScore rates how often the stressed syllable is at least 1.2x the
// mean unstressed syllable duration.
func (s *Scorer) DurationScore(rec *SpeakerRecord) int {
	if len(rec.DurationPairs) == 0 {
		return 0
	}
	correct := 0
	for _, p := range rec.DurationPairs {
		if p.MeanUnstressed > 0 && p.Stressed/p.MeanUnstressed >= durationRatioGood {
			correct++
		}
	}
	pct := 100 * float64(correct) / float64(len(rec.DurationPairs))
	switch {
	case pct >= 80:
		return 15
	case pct >= 60:
		return 10
	case pct >= 40:
		return 5
	default:
		return 0
	}
}

// AccuracyScore rates the share of words whose merged observed shape matched
// the expectation.
func (s *Scorer) AccuracyScore(rec *SpeakerRecord) int {
	if rec.TotalWords == 0 {
		return 0
	}
	pct := 100 * float64(rec.Matched) / float64(rec.TotalWords)
	switch {
	case pct >= 70:
		return 15
	case pct >= 55:
		return 10
	case pct >= 40:
		return 5
	default:
		return 0
	}
}

// Score computes the complete composite for one speaker.
func (s *Scorer) Score(rec *SpeakerRecord) Result {
	r := Result{
		Speaker:  rec.Speaker,
		Pause:    s.PauseScore(rec),
		Speed:    s.SpeedScore(rec),
		Pitch:    s.PitchScore(rec),
		Duration: s.DurationScore(rec),
		Accuracy: s.AccuracyScore(rec),
	}
	r.Raw = r.Pause + r.Speed + r.Pitch + r.Duration + r.Accuracy
	r.Rescaled = float64(r.Raw) * 0.3
	r.Bracket, r.Label, r.Grade = BracketOf(r.Rescaled)
	return r
}

// BracketOf snaps a rescaled 0-30 score to its grade band.
func BracketOf(rescaled float64) (bracket int, label string, grade int) {
	switch {
	case rescaled >= 25:
		return 30, "excellent", 6
	case rescaled >= 20:
		return 26, "good", 5
	case rescaled >= 15:
		return 21, "average", 4
	case rescaled >= 10:
		return 15, "poor", 3
	case rescaled >= 5:
		return 10, "insufficient", 2
	default:
		return 0, "fail", 1
	}
}

func mean(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range v {
		sum += x
	}
	return sum / float64(len(v))
}
