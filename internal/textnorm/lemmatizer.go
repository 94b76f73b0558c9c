package textnorm

import (
	"fmt"
	"strings"
	"sync"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
	"github.com/kljensen/snowball"
)

// Lemmatizer reduces a lowercase word to its base form.
type Lemmatizer interface {
	Lemma(word string) string
}

const (
	LemmatizerDict     = "dict"
	LemmatizerNoun     = "noun"
	LemmatizerSnowball = "snowball"
)

// NewLemmatizer resolves a configured lemmatizer name. The empty name selects
// the dictionary lemmatizer.
func NewLemmatizer(name string) (Lemmatizer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", LemmatizerDict:
		return NewDictLemmatizer()
	case LemmatizerNoun:
		return NounLemmatizer{}, nil
	case LemmatizerSnowball:
		return StemLemmatizer{}, nil
	}
	return nil, fmt.Errorf("unknown lemmatizer %q", name)
}

// The English dictionary takes a while to decompress, so it is loaded once
// and shared. golem only reads from it after construction.
var loadDict = sync.OnceValues(func() (*golem.Lemmatizer, error) {
	return golem.New(en.New())
})

// DictLemmatizer looks words up in the golem English dictionary. Words the
// dictionary does not list go through NounLemmatizer, and the result is kept
// only when the dictionary knows it, so unknown singulars such as brand names
// pass through unchanged.
type DictLemmatizer struct {
	dict     *golem.Lemmatizer
	fallback NounLemmatizer
}

func NewDictLemmatizer() (*DictLemmatizer, error) {
	d, err := loadDict()
	if err != nil {
		return nil, fmt.Errorf("load english dictionary: %w", err)
	}
	return &DictLemmatizer{dict: d}, nil
}

func (l *DictLemmatizer) Lemma(w string) string {
	if l.dict.InDict(w) {
		return l.dict.Lemma(w)
	}
	if c := l.fallback.Lemma(w); c != w && l.dict.InDict(c) {
		return c
	}
	return w
}

// defaultLemmatizer is used by New when no lemmatizer is given. It degrades
// to the rule table if the dictionary cannot be loaded.
func defaultLemmatizer() Lemmatizer {
	if l, err := NewDictLemmatizer(); err == nil {
		return l
	}
	return NounLemmatizer{}
}

// NounLemmatizer assumes every word is a noun and reverses plural inflection
// with suffix rules and an irregular plural table. It is the fallback for
// words missing from the dictionary.
type NounLemmatizer struct{}

var nounExceptions = map[string]string{
	"children": "child",
	"criteria": "criterion",
	"data":     "datum",
	"echoes":   "echo",
	"feet":     "foot",
	"geese":    "goose",
	"halves":   "half",
	"heroes":   "hero",
	"indices":  "index",
	"knives":   "knife",
	"leaves":   "leaf",
	"lives":    "life",
	"loaves":   "loaf",
	"matrices": "matrix",
	"men":      "man",
	"mice":     "mouse",
	"news":     "news",
	"potatoes": "potato",
	"series":   "series",
	"shelves":  "shelf",
	"species":  "species",
	"teeth":    "tooth",
	"tomatoes": "tomato",
	"wives":    "wife",
	"wolves":   "wolf",
	"women":    "woman",

	// -ie nouns the ies rule would turn into -y
	"beanies":   "beanie",
	"brownies":  "brownie",
	"calories":  "calorie",
	"cookies":   "cookie",
	"hoodies":   "hoodie",
	"movies":    "movie",
	"onesies":   "onesie",
	"selfies":   "selfie",
	"smoothies": "smoothie",
	"zombies":   "zombie",

	// singular nouns ending in men
	"abdomen":  "abdomen",
	"ramen":    "ramen",
	"specimen": "specimen",
}

// suffix rules, first match wins
var nounRules = []struct{ suffix, repl string }{
	{"sses", "ss"},
	{"ches", "ch"},
	{"shes", "sh"},
	{"xes", "x"},
	{"ies", "y"},
	{"men", "man"},
	{"s", ""},
}

var nounKeep = []string{"ss", "us", "is", "ous", "ics"}

func (NounLemmatizer) Lemma(w string) string {
	if l, ok := nounExceptions[w]; ok {
		return l
	}
	if len(w) <= 3 {
		return w
	}
	for _, k := range nounKeep {
		if strings.HasSuffix(w, k) {
			return w
		}
	}
	for _, r := range nounRules {
		if !strings.HasSuffix(w, r.suffix) {
			continue
		}
		stem := w[:len(w)-len(r.suffix)]
		if len(stem) < 2 {
			return w
		}
		return stem + r.repl
	}
	return w
}

// StemLemmatizer uses the Snowball English stemmer. Stems are coarser than
// lemmas but group inflected forms of verbs and adjectives too.
type StemLemmatizer struct{}

func (StemLemmatizer) Lemma(w string) string {
	stem, err := snowball.Stem(w, "english", true)
	if err != nil || stem == "" {
		return w
	}
	return stem
}
