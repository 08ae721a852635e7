package pause

// TimedWord is one interval of the aligner word tier. Silences carry an
// empty label or the aligner's pause marker.
type TimedWord struct {
	Text  string
	Start float64
	End   float64
}

// pauseMarker is the explicit silence label some aligners emit.
const pauseMarker = "<p:>"

// IsSilence reports whether a word-tier interval is an inter-word gap.
func (w TimedWord) IsSilence() bool {
	return w.Text == "" || w.Text == pauseMarker
}

// Gap is one inter-word silence together with its syntactic context.
type Gap struct {
	Speaker  string  `json:"speaker"`
	File     string  `json:"file"`
	Index    int     `json:"index"` // position in the word tier
	Duration float64 `json:"duration"`
	Start    float64 `json:"start"`
	End      float64 `json:"end"`

	// LeftLabel is the outermost constituent closing after the word left of
	// the gap; RightLabel the outermost constituent opening before the word
	// right of it.
	LeftLabel  string `json:"left_label"`
	RightLabel string `json:"right_label"`

	// BoundaryStrength counts the tree brackets closing plus opening at this
	// position.
	BoundaryStrength int `json:"boundary_strength"`
}

// BuildGaps walks an aligned word tier against the parse-derived word
// contexts and emits one Gap per silence, annotated with the adjacent
// boundary labels. Parse tokens that cannot be re-aligned to the word tier
// (aligner/parser disagreement) cause the affected gap to be skipped.
func BuildGaps(speaker, file string, words []TimedWord, parse []WordContext) []Gap {
	var gaps []Gap
	cursor := 0 // index into parse of the word left of the current position

	for i, w := range words {
		if !w.IsSilence() {
			continue
		}

		var leftCtx, rightCtx WordContext
		haveLeft := false
		if i > 0 {
			left := words[i-1].Text
			// contractions occupy two parse tokens; advance to the last one
			for cursor < len(parse) && !matchesWord(left, parse[cursor].Word) {
				cursor++
			}
			if cursor >= len(parse) {
				continue
			}
			leftCtx = parse[cursor]
			haveLeft = true
		}
		if j := cursor + 1; haveLeft && j < len(parse) {
			rightCtx = parse[j]
		} else if !haveLeft && len(parse) > 0 {
			rightCtx = parse[0]
		}

		strength := len(leftCtx.Closing) + len(rightCtx.Opening)
		gaps = append(gaps, Gap{
			Speaker:          speaker,
			File:             file,
			Index:            i,
			Duration:         w.End - w.Start,
			Start:            w.Start,
			End:              w.End,
			LeftLabel:        leftCtx.OutermostClosing(),
			RightLabel:       rightCtx.OutermostOpening(),
			BoundaryStrength: strength,
		})
	}
	return gaps
}
