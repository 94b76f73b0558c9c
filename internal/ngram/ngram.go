// Package ngram builds contiguous token windows.
package ngram

import "github.com/AngelCh415/ngram-report/internal/models"

// Order is an n-gram length.
type Order int

const (
	Mono Order = 1
	Bi   Order = 2
	Tri  Order = 3
)

// Orders lists the orders of a report, in sheet order.
var Orders = [...]Order{Mono, Bi, Tri}

func (o Order) Label() string {
	switch o {
	case Mono:
		return "Monograms"
	case Bi:
		return "Bigrams"
	case Tri:
		return "Trigrams"
	}
	return ""
}

func (o Order) Valid() bool { return o >= Mono && o <= Tri }

// Generate returns every contiguous window of length order, sliding by one.
// Short inputs and invalid orders produce nil.
func Generate(tokens []string, order Order) []models.NGram {
	n := int(order)
	if !order.Valid() || len(tokens) < n {
		return nil
	}
	out := make([]models.NGram, 0, len(tokens)-n+1)
	for i := 0; i+n <= len(tokens); i++ {
		g := make(models.NGram, n)
		copy(g, tokens[i:i+n])
		out = append(out, g)
	}
	return out
}
