package pause

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Class is the syntactic strength of an inter-word pause.
type Class int

const (
	WithinPhrase Class = iota
	BetweenPhrase
	BetweenClause
)

func (c Class) String() string {
	switch c {
	case BetweenClause:
		return "BC"
	case BetweenPhrase:
		return "BP"
	default:
		return "WP"
	}
}

// Default constituent tag sets of the Penn Treebank inventory.
var (
	defaultClauseTags = []string{"S", "SBAR", "SBARQ", "SINV", "SQ"}
	defaultPhraseTags = []string{
		"ADJP", "ADVP", "CONJP", "FRAG", "INTJ", "LST", "NAC", "NP", "NX",
		"PP", "PRN", "PRT", "QP", "RRC", "UCP", "VP", "WHADJP", "WHAVP",
		"WHNP", "WHPP", "X",
	}
)

const (
	// DefaultMinDuration and DefaultMaxDuration bound the gaps eligible for
	// syntactic classification; shorter or longer gaps are excluded from all
	// pause statistics.
	DefaultMinDuration = 0.18 // sec
	DefaultMaxDuration = 2.0  // sec
)

// Classifier assigns a syntactic boundary class to inter-word gaps within a
// duration window.
type Classifier struct {
	Min float64
	Max float64

	clause map[string]bool
	phrase map[string]bool
}

// NewClassifier returns a classifier with the default tag sets; non-positive
// bounds select the defaults.
func NewClassifier(min, max float64) *Classifier {
	if min <= 0 {
		min = DefaultMinDuration
	}
	if max <= 0 {
		max = DefaultMaxDuration
	}
	return &Classifier{
		Min:    min,
		Max:    max,
		clause: tagSet(defaultClauseTags),
		phrase: tagSet(defaultPhraseTags),
	}
}

func tagSet(tags []string) map[string]bool {
	m := make(map[string]bool, len(tags))
	for _, t := range tags {
		m[t] = true
	}
	return m
}

// tagSetFile is the YAML layout of a tag-set override file.
type tagSetFile struct {
	Clause []string `yaml:"clause"`
	Phrase []string `yaml:"phrase"`
}

// LoadTagSets replaces the clause/phrase tag sets from a YAML file.
func (c *Classifier) LoadTagSets(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var f tagSetFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("tag set %s: %w", path, err)
	}
	if len(f.Clause) > 0 {
		c.clause = tagSet(f.Clause)
	}
	if len(f.Phrase) > 0 {
		c.phrase = tagSet(f.Phrase)
	}
	return nil
}

// Classify returns the gap's class, or false when its duration falls outside
// [Min, Max). A clause-level label on either side wins over a phrase-level
// one.
func (c *Classifier) Classify(g Gap) (Class, bool) {
	if g.Duration < c.Min || g.Duration >= c.Max {
		return WithinPhrase, false
	}
	switch {
	case c.clause[g.LeftLabel] || c.clause[g.RightLabel]:
		return BetweenClause, true
	case c.phrase[g.LeftLabel] || c.phrase[g.RightLabel]:
		return BetweenPhrase, true
	default:
		return WithinPhrase, true
	}
}

// ClassifiedGap is a gap that passed the duration window.
type ClassifiedGap struct {
	Gap
	Class Class `json:"class"`
}

// ClassifyAll filters and classifies a gap list, preserving order.
func (c *Classifier) ClassifyAll(gaps []Gap) []ClassifiedGap {
	var out []ClassifiedGap
	for _, g := range gaps {
		if cl, ok := c.Classify(g); ok {
			out = append(out, ClassifiedGap{Gap: g, Class: cl})
		}
	}
	return out
}

// ClassStats aggregates pause behavior for one class.
type ClassStats struct {
	Count int     `json:"count"`
	Total float64 `json:"total"` // sec
	Mean  float64 `json:"mean"`  // sec
}

// Stats summarizes classified gaps per class.
func Stats(gaps []ClassifiedGap) map[Class]ClassStats {
	out := make(map[Class]ClassStats)
	for _, g := range gaps {
		s := out[g.Class]
		s.Count++
		s.Total += g.Duration
		out[g.Class] = s
	}
	for cl, s := range out {
		s.Mean = s.Total / float64(s.Count)
		out[cl] = s
	}
	return out
}
