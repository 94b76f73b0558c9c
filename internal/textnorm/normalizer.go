// Package textnorm turns free-text search queries into content tokens.
package textnorm

import (
	"strings"
	"unicode"

	"github.com/blevesearch/segment"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Normalizer is immutable and safe for concurrent use.
type Normalizer struct {
	stop StopWords
	lem  Lemmatizer
}

func New(stop StopWords, lem Lemmatizer) *Normalizer {
	if lem == nil {
		lem = defaultLemmatizer()
	}
	return &Normalizer{stop: stop, lem: lem}
}

func (n *Normalizer) StopWords() StopWords { return n.stop }

// Normalize lowercases text, splits it on Unicode word boundaries and returns
// the lemmas of the alphabetic, non stop word tokens in input order.
// Contractions and possessives are split at the apostrophe, so "men's" yields
// "men" and the clitic "s", which the stop word list drops.
func (n *Normalizer) Normalize(text string) []string {
	if text == "" {
		return nil
	}
	// Casers carry state; one per call keeps Normalizer shareable.
	lower := cases.Lower(language.English).String(norm.NFC.String(text))

	var out []string
	seg := segment.NewWordSegmenterDirect([]byte(lower))
	for seg.Segment() {
		if seg.Type() != segment.Letter {
			continue
		}
		for _, tok := range strings.FieldsFunc(string(seg.Bytes()), isApostrophe) {
			if !isAlpha(tok) || n.stop.Contains(tok) {
				continue
			}
			out = append(out, n.lem.Lemma(tok))
		}
	}
	return out
}

func isApostrophe(r rune) bool { return r == '\'' || r == '\u2019' }

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// Configure builds a normalizer from the default stop words plus extra, using
// the named lemmatizer.
func Configure(lemmatizer string, extra []string) (*Normalizer, error) {
	lem, err := NewLemmatizer(lemmatizer)
	if err != nil {
		return nil, err
	}
	return New(DefaultStopWords().With(extra...), lem), nil
}
