// Package data turns labelled documents into fixed-length token id
// sequences: tokenization, vocabulary, pretrained vectors and corpus I/O.
package data

import (
	"sort"
	"strings"
	"unicode"
)

// Stopwords are removed before truncation.
var Stopwords = map[string]bool{
	"a": true, "and": true, "for": true, "in": true, "of": true, "the": true, "to": true,
}

// Tokenize returns the maximal runs of letters in text, lowercased.
// Digits and punctuation separate tokens and are discarded.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
}

// PadToken owns id 0.
const PadToken = "<pad>"

// Vocab maps words to dense ids. Id 0 is padding.
type Vocab struct {
	Words []string
	index map[string]int
}

// NewVocab rebuilds a vocabulary from its word list, e.g. from a checkpoint.
// words[0] must be PadToken.
func NewVocab(words []string) *Vocab {
	v := &Vocab{Words: append([]string(nil), words...), index: make(map[string]int, len(words))}
	if len(v.Words) == 0 || v.Words[0] != PadToken {
		v.Words = append([]string{PadToken}, v.Words...)
	}
	for i, w := range v.Words {
		v.index[w] = i
	}
	return v
}

// BuildVocab collects every non-stopword token seen at least minCount times.
// When vectors is non-nil only words with a pretrained vector are kept.
// Ids are assigned by descending frequency, ties alphabetically.
func BuildVocab(texts []string, minCount int, vectors *Vectors) *Vocab {
	counts := make(map[string]int)
	for _, text := range texts {
		for _, tok := range Tokenize(text) {
			if Stopwords[tok] {
				continue
			}
			counts[tok]++
		}
	}
	words := make([]string, 0, len(counts))
	for w, c := range counts {
		if c < minCount {
			continue
		}
		if vectors != nil && !vectors.Has(w) {
			continue
		}
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return words[i] < words[j]
	})
	return NewVocab(append([]string{PadToken}, words...))
}

func (v *Vocab) Size() int { return len(v.Words) }

// ID returns the id of w and whether it is known.
func (v *Vocab) ID(w string) (int, bool) {
	id, ok := v.index[w]
	return id, ok && id != 0
}

// Encode tokenizes text, keeps known non-stopword tokens, truncates to
// length and zero-pads the remainder.
func (v *Vocab) Encode(text string, length int) []int {
	ids := make([]int, length)
	n := 0
	for _, tok := range Tokenize(text) {
		if n == length {
			break
		}
		if Stopwords[tok] {
			continue
		}
		if id, ok := v.ID(tok); ok {
			ids[n] = id
			n++
		}
	}
	return ids
}
