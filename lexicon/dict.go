package lexicon

import (
	"bufio"
	"io"
	"os"
	"regexp"
	"strings"
)

// StressPattern encodes the abstract stress shape of a word, one byte per
// syllable: 'O' for a stressed syllable, 'o' for an unstressed one.
// Secondary stress counts as unstressed.
type StressPattern string

const (
	Stressed   byte = 'O'
	Unstressed byte = 'o'
)

// Syllables returns the number of syllables the pattern covers.
func (p StressPattern) Syllables() int { return len(p) }

// StressPosition returns the 1-based index of the first stressed syllable,
// or 0 when the pattern carries no stress at all.
func (p StressPattern) StressPosition() int {
	for i := 0; i < len(p); i++ {
		if p[i] == Stressed {
			return i + 1
		}
	}
	return 0
}

// Dictionary maps lowercase words to their candidate stress patterns, built
// from a CMU-format pronunciation lexicon. A word may carry several patterns
// (homographs, optional syllables, inflected forms).
type Dictionary struct {
	patterns map[string][]StressPattern
}

// variantSuffix matches CMU alternative-pronunciation markers like "word(2)".
var variantSuffix = regexp.MustCompile(`\(\d+\)$`)

// Load reads a phonetic dictionary where each line is
// "WORD  PHONE1 PHONE2 ..." (two spaces between word and phones) and every
// vowel phone carries a stress digit. Lines starting with ";;;" are comments.
// Malformed lines are skipped; only the read itself can fail.
func Load(r io.Reader) (*Dictionary, error) {
	d := &Dictionary{patterns: make(map[string][]StressPattern)}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, ";;;") {
			continue
		}
		parts := strings.Split(line, "  ")
		if len(parts) != 2 {
			continue
		}
		word := variantSuffix.ReplaceAllString(strings.ToLower(parts[0]), "")
		pat := patternOf(parts[1])
		if word == "" || len(pat) == 0 {
			continue
		}
		d.add(word, pat)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return d, nil
}

// LoadFile opens path and calls Load.
func LoadFile(path string) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// patternOf extracts the stress digits of a phone sequence in order,
// mapping 0 and 2 to unstressed and 1 to stressed.
func patternOf(phones string) StressPattern {
	var b strings.Builder
	for i := 0; i < len(phones); i++ {
		switch phones[i] {
		case '0', '2':
			b.WriteByte(Unstressed)
		case '1':
			b.WriteByte(Stressed)
		}
	}
	return StressPattern(b.String())
}

func (d *Dictionary) add(word string, pat StressPattern) {
	for _, existing := range d.patterns[word] {
		if existing == pat {
			return
		}
	}
	d.patterns[word] = append(d.patterns[word], pat)
}

// Lookup returns all candidate stress patterns for a word (case-insensitive),
// or nil when the word is unknown.
func (d *Dictionary) Lookup(word string) []StressPattern {
	return d.patterns[strings.ToLower(word)]
}

// HasSyllableCount reports whether any candidate pattern for word has exactly
// n syllables. Words failing this test are not target words.
func (d *Dictionary) HasSyllableCount(word string, n int) bool {
	for _, p := range d.Lookup(word) {
		if p.Syllables() == n {
			return true
		}
	}
	return false
}

// Len returns the number of distinct words in the dictionary.
func (d *Dictionary) Len() int { return len(d.patterns) }
