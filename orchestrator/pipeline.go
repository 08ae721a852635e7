package orchestrator

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/speechlab/fluency-pipeline/clients"
	cfg "github.com/speechlab/fluency-pipeline/config"
	"github.com/speechlab/fluency-pipeline/lexicon"
	"github.com/speechlab/fluency-pipeline/pause"
	"github.com/speechlab/fluency-pipeline/prosody"
	"github.com/speechlab/fluency-pipeline/score"
)

// candidateWord pairs a measured occurrence with its dictionary candidates,
// carried from the collection pass into the resolution pass.
type candidateWord struct {
	occ        *prosody.WordOccurrence
	candidates []lexicon.StressPattern
}

// Diagnostics are the per-speaker word counts kept alongside the scores.
type Diagnostics struct {
	KnownWords      int `json:"known_words"`        // words found in the dictionary
	TargetWords     int `json:"target_words"`       // syllable count matched a candidate
	PolysyllabicWds int `json:"polysyllabic_words"` // target words with two or more syllables
	ContentTargets  int `json:"content_targets"`    // target words with a content POS
	FilesProcessed  int `json:"files_processed"`
}

// speakerState is everything accumulated for one speaker during pass 1.
type speakerState struct {
	acc   prosody.Accumulator
	words []candidateWord
	gaps  []pause.Gap
	diag  Diagnostics
}

// speakerOutput is one speaker's terminal pipeline result.
type speakerOutput struct {
	records    []*prosody.StressRecord
	gaps       []pause.ClassifiedGap
	pauseStats map[pause.Class]pause.ClassStats
	result     score.Result
	diag       Diagnostics
}

type Pipeline struct {
	cfg        *cfg.Root
	http       *clients.HTTP
	dict       *lexicon.Dictionary
	collector  *prosody.Collector
	resolver   *prosody.Resolver
	classifier *pause.Classifier
	scorer     *score.Scorer
	log        *logrus.Logger
}

func NewPipeline(c *cfg.Root, log *logrus.Logger) (*Pipeline, error) {
	dict, err := lexicon.LoadFile(c.Paths.Dictionary)
	if err != nil {
		return nil, fmt.Errorf("load dictionary: %w", err)
	}
	log.WithField("words", dict.Len()).Info("stress dictionary loaded")

	classifier := pause.NewClassifier(c.Pause.Min, c.Pause.Max)
	if c.Pause.TagSetFile != "" {
		if err := classifier.LoadTagSets(c.Pause.TagSetFile); err != nil {
			return nil, fmt.Errorf("load tag sets: %w", err)
		}
	}

	return &Pipeline{
		cfg:        c,
		http:       clients.NewHTTP(),
		dict:       dict,
		collector:  prosody.NewCollector(dict, c.Analysis.TimeStep),
		resolver:   prosody.NewResolver(c.Analysis.MonoStressThreshold),
		classifier: classifier,
		scorer:     score.NewScorer(c.Score.SignificantPause),
		log:        log,
	}, nil
}

// fileSuffix strips the segment counter and extension of a session file name;
// what remains is the speaker id.
var fileSuffix = regexp.MustCompile(`(_\d+)?\.wav$`)

func speakerOf(wavPath string) string {
	return fileSuffix.ReplaceAllString(filepath.Base(wavPath), "")
}

// Run analyzes every wav file under audioDir and persists per-word stress
// records, classified pauses and per-speaker scores. Failures stay local: a
// bad file drops its words, a bad speaker never aborts the others.
func (p *Pipeline) Run(ctx context.Context, audioDir string) error {
	files, err := filepath.Glob(filepath.Join(audioDir, "*.wav"))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no wav files under %s", audioDir)
	}
	sort.Strings(files)

	// pass 1: collect every speaker's words, syllable values and gaps
	states := map[string]*speakerState{}
	for _, f := range files {
		if err := p.collectFile(ctx, f, states); err != nil {
			p.log.WithError(err).WithField("file", f).Warn("file excluded from analysis")
		}
	}

	// barrier: all syllable values are in; build the immutable scales and
	// resolve/score each speaker independently
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		out = map[string]*speakerOutput{}
	)
	for spk, st := range states {
		wg.Add(1)
		go func(spk string, st *speakerState) {
			defer wg.Done()
			o := p.scoreSpeaker(spk, st)
			mu.Lock()
			out[spk] = o
			mu.Unlock()
		}(spk, st)
	}
	wg.Wait()

	sessionID, dir, err := persist(p.cfg.Paths.Outputs, out)
	if err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	p.log.WithFields(logrus.Fields{
		"session":  sessionID,
		"dir":      dir,
		"speakers": len(out),
	}).Info("session analysis complete")

	for spk, o := range out {
		p.log.WithFields(logrus.Fields{
			"speaker": spk,
			"raw":     o.result.Raw,
			"final":   o.result.Bracket,
			"grade":   o.result.Label,
		}).Info("speaker scored")
	}
	return nil
}

// collectFile runs the collaborators for one audio file and folds the result
// into the owning speaker's state.
func (p *Pipeline) collectFile(ctx context.Context, wavPath string, states map[string]*speakerState) error {
	align, err := p.http.Align(ctx, p.cfg.Services.Align.URL, wavPath)
	if err != nil {
		return err
	}

	var parsed []pause.WordContext
	if p.cfg.Services.Parse.URL != "" && align.Transcript != "" {
		pr, err := p.http.Parse(ctx, p.cfg.Services.Parse.URL, align.Transcript)
		if err != nil {
			p.log.WithError(err).WithField("file", wavPath).Warn("no constituency context for this file")
		} else {
			parsed = pause.ParseBrackets(pr.Brackets)
		}
	}

	spk := speakerOf(wavPath)
	st := states[spk]
	if st == nil {
		st = &speakerState{}
		states[spk] = st
	}
	file := filepath.Base(wavPath)
	st.diag.FilesProcessed++

	timed := make([]pause.TimedWord, 0, len(align.Words))
	for _, w := range align.Words {
		timed = append(timed, pause.TimedWord{Text: w.Text, Start: w.Start, End: w.End})
	}

	for _, w := range align.Words {
		if (pause.TimedWord{Text: w.Text}).IsSilence() {
			continue
		}
		candidates := p.dict.Lookup(w.Text)
		if len(candidates) == 0 {
			continue
		}
		st.diag.KnownWords++

		vowels := vowelsWithin(align.Phones, w.Start, w.End)
		nuclei := nucleiWithin(align.Nuclei, w.Start, w.End)
		occ, ok := p.collector.CollectWord(spk, file, w.Text, w.POS, w.Start, w.End,
			vowels, nuclei, &align.Pitch, &align.Intensity)
		if !ok {
			continue
		}
		st.diag.TargetWords++
		if occ.SyllableCount() >= 2 {
			st.diag.PolysyllabicWds++
		}
		if prosody.IsContentPOS(w.POS) {
			st.diag.ContentTargets++
		}
		st.acc.Add(occ)
		st.words = append(st.words, candidateWord{occ: occ, candidates: candidates})
	}

	st.gaps = append(st.gaps, pause.BuildGaps(spk, file, timed, parsed)...)
	return nil
}

// vowelsWithin picks the vowel-nucleus phone intervals inside a word span.
func vowelsWithin(phones []clients.AlignedPhone, start, end float64) []prosody.Interval {
	var out []prosody.Interval
	for _, ph := range phones {
		if ph.Start >= start && ph.End <= end && prosody.IsVowelPhone(ph.Label) {
			out = append(out, prosody.Interval{Label: ph.Label, Start: ph.Start, End: ph.End})
		}
	}
	return out
}

// nucleiWithin counts independently detected syllable nuclei inside a span.
func nucleiWithin(nuclei []float64, start, end float64) int {
	n := 0
	for _, t := range nuclei {
		if t >= start && t <= end {
			n++
		}
	}
	return n
}

// scoreSpeaker is pass 2 for one speaker: build scales, resolve shapes,
// classify gaps, score. Always yields a complete result; resolution failures
// degrade to whatever was resolvable.
func (p *Pipeline) scoreSpeaker(spk string, st *speakerState) *speakerOutput {
	o := &speakerOutput{diag: st.diag}
	o.gaps = p.classifier.ClassifyAll(st.gaps)
	o.pauseStats = pause.Stats(o.gaps)

	scales, err := st.acc.Build()
	if err != nil {
		p.log.WithError(err).WithField("speaker", spk).Warn("no measurable syllables; scoring on pauses only")
	} else {
		for _, cw := range st.words {
			rec, err := p.resolver.Resolve(cw.occ, cw.candidates, scales)
			if err != nil {
				p.log.WithError(err).WithFields(logrus.Fields{
					"speaker": spk,
					"word":    cw.occ.Word,
				}).Error("stress resolution failed")
				break
			}
			o.records = append(o.records, rec)
		}
	}

	o.result = p.scorer.Score(score.BuildRecord(spk, o.records, o.gaps))
	return o
}
