package orchestrator

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/speechlab/fluency-pipeline/clients"
	"github.com/speechlab/fluency-pipeline/lexicon"
	"github.com/speechlab/fluency-pipeline/pause"
	"github.com/speechlab/fluency-pipeline/prosody"
	"github.com/speechlab/fluency-pipeline/score"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.ErrorLevel)
	return l
}

func testPipeline(t *testing.T) *Pipeline {
	t.Helper()
	dict, err := lexicon.Load(strings.NewReader(
		"RECORD  R EH1 K ER0 D\nRECORD(2)  R IH0 K AO1 R D\nAGREE  AH0 G R IY1\n"))
	require.NoError(t, err)
	return &Pipeline{
		dict:       dict,
		collector:  prosody.NewCollector(dict, 0),
		resolver:   prosody.NewResolver(0),
		classifier: pause.NewClassifier(0, 0),
		scorer:     score.NewScorer(0),
		log:        testLogger(),
	}
}

func TestSpeakerOf(t *testing.T) {
	assert.Equal(t, "alice", speakerOf("/data/alice_3.wav"))
	assert.Equal(t, "alice", speakerOf("alice.wav"))
	assert.Equal(t, "SPEAKER_00_a", speakerOf("SPEAKER_00_a_12.wav"))
}

func TestVowelsWithin(t *testing.T) {
	phones := []clients.AlignedPhone{
		{Label: "R", Start: 0.00, End: 0.04},
		{Label: "EH1", Start: 0.04, End: 0.10},
		{Label: "K", Start: 0.10, End: 0.13},
		{Label: "ER0", Start: 0.13, End: 0.20},
		{Label: "D", Start: 0.20, End: 0.24},
		{Label: "AY1", Start: 0.30, End: 0.40}, // next word
	}
	vowels := vowelsWithin(phones, 0, 0.24)
	require.Len(t, vowels, 2)
	assert.Equal(t, "EH1", vowels[0].Label)
	assert.Equal(t, "ER0", vowels[1].Label)

	assert.Equal(t, 2, nucleiWithin([]float64{0.06, 0.15, 0.35}, 0, 0.24))
}

func speakerStateWith(t *testing.T, p *Pipeline) *speakerState {
	t.Helper()
	st := &speakerState{}

	pitch := func(levels ...float64) []prosody.Syllable {
		sylls := make([]prosody.Syllable, len(levels))
		for i, f0 := range levels {
			sylls[i] = prosody.Syllable{
				PitchMean:     f0,
				IntensityPeak: f0 / 3,
				Duration:      f0 / 2000,
			}
		}
		return sylls
	}

	words := []*prosody.WordOccurrence{
		{Speaker: "s1", Word: "record", POS: "NOUN", Start: 0.0, End: 0.4, Syllables: pitch(230, 180)},
		{Speaker: "s1", Word: "record", POS: "VERB", Start: 1.0, End: 1.4, Syllables: pitch(175, 225)},
		{Speaker: "s1", Word: "agree", POS: "VERB", Start: 2.0, End: 2.4, Syllables: pitch(190, 210)},
	}
	for _, w := range words {
		st.acc.Add(w)
		st.words = append(st.words, candidateWord{occ: w, candidates: p.dict.Lookup(w.Word)})
		st.diag.KnownWords++
		st.diag.TargetWords++
	}
	st.gaps = []pause.Gap{
		{Speaker: "s1", Duration: 0.6, LeftLabel: "S"},
		{Speaker: "s1", Duration: 0.1}, // below window, dropped
	}
	return st
}

func TestScoreSpeaker(t *testing.T) {
	p := testPipeline(t)
	st := speakerStateWith(t, p)

	o := p.scoreSpeaker("s1", st)
	require.Len(t, o.records, 3)
	require.Len(t, o.gaps, 1)
	assert.Equal(t, 1, o.pauseStats[pause.BetweenClause].Count)

	// noun keeps stress-first, verb stress-second; both realized correctly
	assert.Equal(t, "Oo", string(o.records[0].MergedShape))
	assert.True(t, o.records[0].Match)
	assert.Equal(t, "oO", string(o.records[1].MergedShape))
	assert.True(t, o.records[1].Match)

	r := o.result
	assert.Equal(t, "s1", r.Speaker)
	assert.Equal(t, 20, r.Pause) // single 0.6s significant pause
	assert.Equal(t, r.Pause+r.Speed+r.Pitch+r.Duration+r.Accuracy, r.Raw)
	assert.NotEmpty(t, r.Label)
}

func TestScoreSpeakerNoWords(t *testing.T) {
	p := testPipeline(t)
	st := &speakerState{gaps: []pause.Gap{{Speaker: "s2", Duration: 0.3, LeftLabel: "NP"}}}

	o := p.scoreSpeaker("s2", st)
	assert.Empty(t, o.records)
	// the result is still complete
	assert.Equal(t, 20, o.result.Pause) // 0.3s is not significant
	assert.Equal(t, 0, o.result.Speed)
	assert.Equal(t, 0, o.result.Pitch)
}

func TestPersist(t *testing.T) {
	p := testPipeline(t)
	st := speakerStateWith(t, p)
	out := map[string]*speakerOutput{"s1": p.scoreSpeaker("s1", st)}

	root := t.TempDir()
	sid, dir, err := persist(root, out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sid, "session_"))

	raw, err := os.ReadFile(filepath.Join(dir, "scores.json"))
	require.NoError(t, err)
	var bundle ScoreBundle
	require.NoError(t, json.Unmarshal(raw, &bundle))
	require.Len(t, bundle.Evaluations, 1)
	assert.Equal(t, "s1", bundle.Evaluations[0].Speaker)
	assert.True(t, strings.HasPrefix(bundle.Evaluations[0].EvaluationID, "eval_"))
	require.NotNil(t, bundle.Summary)
	assert.Equal(t, 1, bundle.Summary.TotalSpeakers)

	var rows []stressRow
	raw, err = os.ReadFile(filepath.Join(dir, "stress_table.json"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &rows))
	require.Len(t, rows, 3)
	assert.Equal(t, "record", rows[0].Word)
	assert.Equal(t, "Oo/oO", rows[0].ExpectedShapes)
	assert.Equal(t, "Oo", rows[0].ExpectedShape)
}
