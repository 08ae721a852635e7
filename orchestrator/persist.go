package orchestrator

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/speechlab/fluency-pipeline/pause"
	"github.com/speechlab/fluency-pipeline/prosody"
	"github.com/speechlab/fluency-pipeline/score"
)

// stressRow is the serialized form of one resolved word occurrence.
type stressRow struct {
	Speaker   string `json:"speaker"`
	File      string `json:"file"`
	Word      string `json:"word"`
	POS       string `json:"pos"`
	Syllables int    `json:"syllables"`

	ExpectedShapes string `json:"expected_shapes"` // all candidates, "/"-joined
	ExpectedShape  string `json:"expected_shape"`
	ObservedShape  string `json:"observed_shape"` // merged across dimensions
	PitchShape     string `json:"f0_shape"`
	IntensityShape string `json:"db_shape"`
	DurationShape  string `json:"dur_shape"`

	PitchRanks     []int     `json:"f0_ranks"`
	IntensityRanks []int     `json:"db_ranks"`
	DurationRanks  []int     `json:"dur_ranks"`
	MergedRanks    []float64 `json:"merged_ranks"`

	ExpectedStressPosition int  `json:"expected_stress_position"`
	ObservedStressPosition int  `json:"observed_stress_position"`
	Match                  bool `json:"expected_is_observed"`
	NucleiAgree            bool `json:"nuclei_agree"`

	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

func toStressRow(r *prosody.StressRecord) stressRow {
	return stressRow{
		Speaker:                r.Word.Speaker,
		File:                   r.Word.File,
		Word:                   r.Word.Word,
		POS:                    r.Word.POS,
		Syllables:              r.Word.SyllableCount(),
		ExpectedShapes:         r.Expected.CandidatesLabel(),
		ExpectedShape:          r.Expected.Label(),
		ObservedShape:          string(r.MergedShape),
		PitchShape:             string(r.PitchShape),
		IntensityShape:         string(r.IntensityShape),
		DurationShape:          string(r.DurationShape),
		PitchRanks:             r.PitchRanks,
		IntensityRanks:         r.IntensityRanks,
		DurationRanks:          r.DurationRanks,
		MergedRanks:            r.MergedRanks,
		ExpectedStressPosition: r.ExpectedStressPosition,
		ObservedStressPosition: r.ObservedStressPosition,
		Match:                  r.Match,
		NucleiAgree:            r.Word.NucleiAgree,
		Start:                  r.Word.Start,
		End:                    r.Word.End,
	}
}

// Evaluation is one speaker's persisted score bundle.
type Evaluation struct {
	EvaluationID string `json:"evaluation_id"`
	score.Result
	PauseStats  map[string]pause.ClassStats `json:"pause_stats"`
	Diagnostics Diagnostics                 `json:"diagnostics"`
}

// Summary aggregates the session across speakers.
type Summary struct {
	TotalSpeakers int            `json:"total_speakers"`
	AverageScore  float64        `json:"average_score"`
	MaxScore      int            `json:"max_score"`
	MinScore      int            `json:"min_score"`
	GradeCounts   map[string]int `json:"grade_counts"`
}

// ScoreBundle is the scores.json layout.
type ScoreBundle struct {
	SessionID   string       `json:"session_id"`
	GeneratedAt time.Time    `json:"generated_at"`
	Evaluations []Evaluation `json:"evaluations"`
	Summary     *Summary     `json:"summary,omitempty"`
}

func mkSessionDir(outputsRoot string) (string, string, error) {
	ts := time.Now().Format("20060102-150405")
	sid := "session_" + ts
	dir := filepath.Join(outputsRoot, sid)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", err
	}
	return sid, dir, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// persist writes stress_table.json, pause_table.json and scores.json into a
// fresh session directory and returns the session id and its path.
func persist(outputsRoot string, out map[string]*speakerOutput) (string, string, error) {
	sid, dir, err := mkSessionDir(outputsRoot)
	if err != nil {
		return "", "", err
	}

	speakers := make([]string, 0, len(out))
	for spk := range out {
		speakers = append(speakers, spk)
	}
	sort.Strings(speakers)

	var (
		stressRows []stressRow
		pauseRows  []pause.ClassifiedGap
		bundle     = ScoreBundle{SessionID: sid, GeneratedAt: time.Now()}
	)
	for _, spk := range speakers {
		o := out[spk]
		for _, r := range o.records {
			stressRows = append(stressRows, toStressRow(r))
		}
		pauseRows = append(pauseRows, o.gaps...)

		stats := make(map[string]pause.ClassStats, len(o.pauseStats))
		for cl, s := range o.pauseStats {
			stats[cl.String()] = s
		}
		bundle.Evaluations = append(bundle.Evaluations, Evaluation{
			EvaluationID: "eval_" + uuid.NewString(),
			Result:       o.result,
			PauseStats:   stats,
			Diagnostics:  o.diag,
		})
	}
	bundle.Summary = summarize(bundle.Evaluations)

	if err := writeJSON(filepath.Join(dir, "stress_table.json"), stressRows); err != nil {
		return "", "", err
	}
	if err := writeJSON(filepath.Join(dir, "pause_table.json"), pauseRows); err != nil {
		return "", "", err
	}
	if err := writeJSON(filepath.Join(dir, "scores.json"), bundle); err != nil {
		return "", "", err
	}
	return sid, dir, nil
}

func summarize(evals []Evaluation) *Summary {
	if len(evals) == 0 {
		return nil
	}
	s := &Summary{
		TotalSpeakers: len(evals),
		MaxScore:      evals[0].Bracket,
		MinScore:      evals[0].Bracket,
		GradeCounts:   map[string]int{},
	}
	sum := 0
	for _, e := range evals {
		sum += e.Bracket
		if e.Bracket > s.MaxScore {
			s.MaxScore = e.Bracket
		}
		if e.Bracket < s.MinScore {
			s.MinScore = e.Bracket
		}
		s.GradeCounts[e.Label]++
	}
	s.AverageScore = float64(sum) / float64(len(evals))
	return s
}
