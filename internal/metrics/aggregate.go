// Package metrics aggregates search-term performance per n-gram.
package metrics

import (
	"math"
	"sort"

	"github.com/AngelCh415/ngram-report/internal/models"
	"github.com/AngelCh415/ngram-report/internal/ngram"
	"github.com/AngelCh415/ngram-report/internal/store"
)

// Tokenizer is the part of textnorm.Normalizer the aggregator needs.
type Tokenizer interface {
	Normalize(text string) []string
}

type Aggregator struct{ tok Tokenizer }

func NewAggregator(tok Tokenizer) *Aggregator { return &Aggregator{tok: tok} }

// Aggregate explodes rows into n-grams of the given order, sums each row's
// full metrics once per occurrence and returns the groups sorted by spend,
// highest first. Groups with equal spend keep first-seen order. The result is
// never nil, so an order without n-grams encodes as an empty JSON array.
func (a *Aggregator) Aggregate(rows []models.SearchTermRow, order ngram.Order, includeCampaignIDs bool) []models.AggregatedMetrics {
	tb := store.NewGroupTable()
	for _, r := range rows {
		for _, g := range ngram.Generate(a.tok.Normalize(r.SearchTerm), order) {
			tb.Add(g, r)
		}
	}
	out := make([]models.AggregatedMetrics, 0, tb.Len())
	for _, g := range tb.All() {
		m := models.AggregatedMetrics{
			NGram:          g.NGram,
			Term:           g.NGram.String(),
			Impressions:    g.Impressions,
			Clicks:         g.Clicks,
			Spend:          g.Spend,
			Sales:          g.Sales,
			Units:          g.Units,
			CTR:            SafeRatio(float64(g.Clicks), float64(g.Impressions)),
			ConversionRate: SafeRatio(float64(g.Units), float64(g.Clicks)),
			ACOS:           SafeRatio(g.Spend, g.Sales),
			CPA:            SafeRatio(g.Spend, float64(g.Units)),
			CPC:            SafeRatio(g.Spend, float64(g.Clicks)),
		}
		if includeCampaignIDs {
			m.CampaignIDs = g.CampaignIDs()
		}
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Spend > out[j].Spend })
	return out
}

// SafeRatio divides, yielding NaN instead of Inf or a panic on a zero denominator.
func SafeRatio(num, den float64) models.Ratio {
	if den == 0 {
		return models.Ratio(math.NaN())
	}
	return models.Ratio(num / den)
}
