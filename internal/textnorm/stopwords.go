package textnorm

import (
	"sort"
	"strings"
)

// englishStopWords is the standard general-purpose English list.
var englishStopWords = []string{
	"i", "me", "my", "myself", "we", "our", "ours", "ourselves", "you", "you're",
	"you've", "you'll", "you'd", "your", "yours", "yourself", "yourselves", "he",
	"him", "his", "himself", "she", "she's", "her", "hers", "herself", "it", "it's",
	"its", "itself", "they", "them", "their", "theirs", "themselves", "what", "which",
	"who", "whom", "this", "that", "that'll", "these", "those", "am", "is", "are",
	"was", "were", "be", "been", "being", "have", "has", "had", "having", "do",
	"does", "did", "doing", "a", "an", "the", "and", "but", "if", "or", "because",
	"as", "until", "while", "of", "at", "by", "for", "with", "about", "against",
	"between", "into", "through", "during", "before", "after", "above", "below",
	"to", "from", "up", "down", "in", "out", "on", "off", "over", "under", "again",
	"further", "then", "once", "here", "there", "when", "where", "why", "how", "all",
	"any", "both", "each", "few", "more", "most", "other", "some", "such", "no",
	"nor", "not", "only", "own", "same", "so", "than", "too", "very", "s", "t",
	"can", "will", "just", "don", "don't", "should", "should've", "now", "d", "ll",
	"m", "o", "re", "ve", "y", "ain", "aren", "aren't", "couldn", "couldn't",
	"didn", "didn't", "doesn", "doesn't", "hadn", "hadn't", "hasn", "hasn't",
	"haven", "haven't", "isn", "isn't", "ma", "mightn", "mightn't", "mustn",
	"mustn't", "needn", "needn't", "shan", "shan't", "shouldn", "shouldn't",
	"wasn", "wasn't", "weren", "weren't", "won", "won't", "wouldn", "wouldn't",
}

// supplementaryStopWords are short function words frequent in marketplace queries.
var supplementaryStopWords = []string{"in", "for", "the", "of", "if", "when", "and", "de", "para"}

// StopWords is an immutable set of lowercase words.
type StopWords struct{ set map[string]struct{} }

func NewStopWords(words ...string) StopWords {
	sw := StopWords{set: make(map[string]struct{}, len(words))}
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			sw.set[w] = struct{}{}
		}
	}
	return sw
}

// DefaultStopWords returns the English list plus the supplementary set.
func DefaultStopWords() StopWords {
	all := make([]string, 0, len(englishStopWords)+len(supplementaryStopWords))
	all = append(all, englishStopWords...)
	all = append(all, supplementaryStopWords...)
	return NewStopWords(all...)
}

// With returns a new set holding sw plus extra; sw is left untouched.
func (sw StopWords) With(extra ...string) StopWords {
	words := make([]string, 0, len(sw.set)+len(extra))
	for w := range sw.set {
		words = append(words, w)
	}
	return NewStopWords(append(words, extra...)...)
}

func (sw StopWords) Contains(w string) bool {
	_, ok := sw.set[w]
	return ok
}

func (sw StopWords) Len() int { return len(sw.set) }

// Words returns the set sorted alphabetically.
func (sw StopWords) Words() []string {
	out := make([]string, 0, len(sw.set))
	for w := range sw.set {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}
