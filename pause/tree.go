package pause

import (
	"regexp"
	"strings"
)

// WordContext is one word's position in a constituency tree: the constituent
// labels opening immediately before it (outermost first), those closing
// immediately after it (innermost first), its word-level tag and tree depth.
type WordContext struct {
	Word    string
	Opening []string
	Closing []string
	Tag     string
	Depth   int
}

// OutermostClosing returns the largest constituent ending after this word,
// or "" when none closes here.
func (w WordContext) OutermostClosing() string {
	if len(w.Closing) == 0 {
		return ""
	}
	return w.Closing[len(w.Closing)-1]
}

// OutermostOpening returns the largest constituent starting before this
// word, or "" when none opens here.
func (w WordContext) OutermostOpening() string {
	if len(w.Opening) == 0 {
		return ""
	}
	return w.Opening[0]
}

var (
	punctConstituent = regexp.MustCompile(`\[[.,!?] [., !?]\]`)
	// one token per match: a word-level leaf "[TAG word]", an opening
	// constituent "[TAG", or a closing bracket "]"
	bracketToken = regexp.MustCompile(`\[([A-Z.$:',-]+)\s+([^\]\[ ]+)\]|\[([A-Z$]+)|(\])`)
)

// ParseBrackets reads a squared-bracket constituency string, e.g.
// "[S [NP [PRP i]] [VP [VBP agree]]]", and yields the word sequence with its
// opening/closing constituent context. Punctuation constituents are dropped.
func ParseBrackets(text string) []WordContext {
	text = punctConstituent.ReplaceAllString(text, "")

	var (
		words []WordContext
		stack []string // open constituent labels, outermost first
		head  []string // labels opened since the previous word
	)
	for _, m := range bracketToken.FindAllStringSubmatch(text, -1) {
		tag, word, opening, closing := m[1], m[2], m[3], m[4]

		switch {
		case opening != "":
			stack = append(stack, opening)
			head = append(head, opening)
		case tag != "":
			words = append(words, WordContext{
				Word:    word,
				Opening: head,
				Tag:     tag,
				Depth:   len(stack),
			})
			head = nil
		case closing != "" && len(stack) > 0:
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if len(words) > 0 {
				last := &words[len(words)-1]
				last.Closing = append(last.Closing, top)
			}
		}
	}
	return words
}

// matchesWord reports whether an aligner word label corresponds to a parse
// token. Contractions are split into two parse tokens ("don't" -> do + n't),
// so the aligner label only has to end with the token.
func matchesWord(alignerLabel, parseToken string) bool {
	return strings.HasSuffix(strings.ToLower(alignerLabel), strings.ToLower(parseToken))
}
